package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tugochat/tugochat/internal/dependencies/random"
	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/statestore"
)

const (
	defaultAuthBaseURL = "https://id.twitch.tv"
	defaultAPIBaseURL  = "https://api.twitch.tv"
	defaultStateTTL    = 10 * time.Minute

	oauthScopes = "user:read:email channel:read:subscriptions chat:read"
)

// AuthConfig holds Twitch OAuth application settings
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// AuthBaseURL and APIBaseURL override the Twitch endpoints (for testing)
	AuthBaseURL string
	APIBaseURL  string

	// StateTTL bounds how long a login may stay pending
	StateTTL time.Duration
}

// AuthService runs the Twitch OAuth handshake: login URL construction,
// code-for-token exchange, profile and viewer-count lookup, and token
// validation. State tokens are one-time-use and live in the token store.
type AuthService struct {
	cfg    AuthConfig
	http   *http.Client
	states statestore.Store
	random random.Random
	logger *slog.Logger
}

// NewAuthService creates an auth service
func NewAuthService(cfg AuthConfig, states statestore.Store, rnd random.Random, logger *slog.Logger) *AuthService {
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = defaultAuthBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.StateTTL == 0 {
		cfg.StateTTL = defaultStateTTL
	}
	return &AuthService{
		cfg:    cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
		states: states,
		random: rnd,
		logger: logger,
	}
}

// LoginURL builds the authorization URL for a new login attempt and records
// its state token
func (s *AuthService) LoginURL(ctx context.Context) (string, error) {
	state := s.random.Token(32)
	if err := s.states.Put(ctx, state, "pending", s.cfg.StateTTL); err != nil {
		return "", fmt.Errorf("storing state token: %w", err)
	}

	params := url.Values{
		"client_id":     {s.cfg.ClientID},
		"redirect_uri":  {s.cfg.RedirectURI},
		"response_type": {"code"},
		"scope":         {oauthScopes},
		"state":         {state},
	}
	return s.cfg.AuthBaseURL + "/oauth2/authorize?" + params.Encode(), nil
}

// Exchange redeems an authorization code for an access token and resolves
// the player's identity and current viewer count. A missing or reused state
// token, or any failure resolving the identity, surfaces as an
// authentication error; it never silently produces a zero-viewer player.
func (s *AuthService) Exchange(ctx context.Context, code, state string) (*model.Player, error) {
	if _, err := s.states.Take(ctx, state); err != nil {
		return nil, model.ErrInvalidStateToken
	}

	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	viewerCount, err := s.fetchViewerCount(ctx, accessToken, user.ID)
	if err != nil {
		// An offline channel is fine; failing to ask is only worth a warning
		s.logger.Warn("viewer count lookup failed",
			slog.String("channel", user.Login),
			slog.String("error", err.Error()),
		)
	}

	return &model.Player{
		ID:           model.PlayerID(user.ID),
		Username:     user.DisplayName,
		ChannelName:  user.Login,
		ProfileImage: user.ProfileImageURL,
		AccessToken:  accessToken,
		ViewerCount:  viewerCount,
	}, nil
}

// ValidateResult describes a validated access token
type ValidateResult struct {
	Login     string `json:"login"`
	UserID    string `json:"user_id"`
	ExpiresIn int    `json:"expires_in"`
}

// Validate checks an access token against Twitch
func (s *AuthService) Validate(ctx context.Context, accessToken string) (*ValidateResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.AuthBaseURL+"/oauth2/validate", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validating token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.ErrAuthenticationFailed
	}

	var result ValidateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding validate response: %w", err)
	}
	return &result, nil
}

type helixUser struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

func (s *AuthService) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {s.cfg.RedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.AuthBaseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchanging code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token exchange returned %d", model.ErrAuthenticationFailed, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", model.ErrAuthenticationFailed
	}
	return body.AccessToken, nil
}

func (s *AuthService) fetchUser(ctx context.Context, accessToken string) (*helixUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIBaseURL+"/helix/users", nil)
	if err != nil {
		return nil, err
	}
	s.setHelixHeaders(req, accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user lookup returned %d", model.ErrAuthenticationFailed, resp.StatusCode)
	}

	var body struct {
		Data []helixUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding user response: %w", err)
	}
	if len(body.Data) == 0 {
		return nil, model.ErrAuthenticationFailed
	}
	return &body.Data[0], nil
}

func (s *AuthService) fetchViewerCount(ctx context.Context, accessToken, userID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.cfg.APIBaseURL+"/helix/streams?user_id="+url.QueryEscape(userID), nil)
	if err != nil {
		return 0, err
	}
	s.setHelixHeaders(req, accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stream lookup returned %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ViewerCount int `json:"viewer_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decoding stream response: %w", err)
	}
	if len(body.Data) == 0 {
		// Channel is offline
		return 0, nil
	}
	return body.Data[0].ViewerCount, nil
}

func (s *AuthService) setHelixHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Client-Id", s.cfg.ClientID)
}
