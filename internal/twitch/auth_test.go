package twitch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tugochat/tugochat/internal/dependencies/mocks"
	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/statestore/memory"
)

type AuthSuite struct {
	suite.Suite
	server  *httptest.Server
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	states  *memory.Store
	service *AuthService
	ctx     context.Context

	// Behavior knobs for the fake Twitch endpoints
	streamOnline bool
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.streamOnline = true
	s.server = httptest.NewServer(s.fakeTwitch())
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.states = memory.New(s.clock)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	s.service = NewAuthService(AuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:3000/auth/callback",
		AuthBaseURL:  s.server.URL,
		APIBaseURL:   s.server.URL,
	}, s.states, s.random, logger)
	s.ctx = context.Background()
}

func (s *AuthSuite) TearDownTest() {
	s.server.Close()
}

func (s *AuthSuite) fakeTwitch() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseForm())
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_id") != "client-id" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-123"})
	})

	mux.HandleFunc("GET /helix/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" || r.Header.Get("Client-Id") != "client-id" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{
			"id":                "42",
			"login":             "teststreamer",
			"display_name":      "TestStreamer",
			"profile_image_url": "https://example.com/avatar.png",
		}}})
	})

	mux.HandleFunc("GET /helix/streams", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("user_id") != "42" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data := []map[string]any{}
		if s.streamOnline {
			data = append(data, map[string]any{"viewer_count": 123})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	})

	mux.HandleFunc("GET /oauth2/validate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth token-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"login":      "teststreamer",
			"user_id":    "42",
			"expires_in": 3600,
		})
	})

	return mux
}

func (s *AuthSuite) TestLoginURL() {
	s.random.QueueToken("state-abc")

	authURL, err := s.service.LoginURL(s.ctx)
	s.Require().NoError(err)

	s.Contains(authURL, s.server.URL+"/oauth2/authorize?")
	s.Contains(authURL, "client_id=client-id")
	s.Contains(authURL, "state=state-abc")
	s.Contains(authURL, "response_type=code")

	// The state token is recorded for the later callback
	value, err := s.states.Take(s.ctx, "state-abc")
	s.Require().NoError(err)
	s.Equal("pending", value)
}

func (s *AuthSuite) TestExchange() {
	s.Require().NoError(s.states.Put(s.ctx, "state-abc", "pending", time.Minute))

	player, err := s.service.Exchange(s.ctx, "good-code", "state-abc")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("42"), player.ID)
	s.Equal("TestStreamer", player.Username)
	s.Equal("teststreamer", player.ChannelName)
	s.Equal("https://example.com/avatar.png", player.ProfileImage)
	s.Equal("token-123", player.AccessToken)
	s.Equal(123, player.ViewerCount)
}

func (s *AuthSuite) TestExchangeOfflineChannel() {
	s.streamOnline = false
	s.Require().NoError(s.states.Put(s.ctx, "state-abc", "pending", time.Minute))

	player, err := s.service.Exchange(s.ctx, "good-code", "state-abc")
	s.Require().NoError(err)

	s.Equal(0, player.ViewerCount)
}

func (s *AuthSuite) TestExchangeUnknownState() {
	_, err := s.service.Exchange(s.ctx, "good-code", "never-issued")
	s.ErrorIs(err, model.ErrInvalidStateToken)
}

func (s *AuthSuite) TestExchangeStateIsOneTime() {
	s.Require().NoError(s.states.Put(s.ctx, "state-abc", "pending", time.Minute))

	_, err := s.service.Exchange(s.ctx, "good-code", "state-abc")
	s.Require().NoError(err)

	_, err = s.service.Exchange(s.ctx, "good-code", "state-abc")
	s.ErrorIs(err, model.ErrInvalidStateToken)
}

func (s *AuthSuite) TestExchangeExpiredState() {
	s.Require().NoError(s.states.Put(s.ctx, "state-abc", "pending", time.Minute))
	s.clock.Advance(2 * time.Minute)

	_, err := s.service.Exchange(s.ctx, "good-code", "state-abc")
	s.ErrorIs(err, model.ErrInvalidStateToken)
}

func (s *AuthSuite) TestExchangeBadCode() {
	s.Require().NoError(s.states.Put(s.ctx, "state-abc", "pending", time.Minute))

	_, err := s.service.Exchange(s.ctx, "bad-code", "state-abc")
	s.ErrorIs(err, model.ErrAuthenticationFailed)
}

func (s *AuthSuite) TestValidate() {
	result, err := s.service.Validate(s.ctx, "token-123")
	s.Require().NoError(err)

	s.Equal("teststreamer", result.Login)
	s.Equal("42", result.UserID)
	s.Equal(3600, result.ExpiresIn)
}

func (s *AuthSuite) TestValidateRejectedToken() {
	_, err := s.service.Validate(s.ctx, "stale-token")
	s.ErrorIs(err, model.ErrAuthenticationFailed)
}
