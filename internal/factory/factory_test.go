package factory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tugochat/tugochat/internal/config"
	"github.com/tugochat/tugochat/internal/dependencies/mocks"
	"github.com/tugochat/tugochat/internal/model"
	memorystore "github.com/tugochat/tugochat/internal/statestore/memory"
)

type AppSuite struct {
	suite.Suite
	clock *mocks.MockClock
	app   *App
	ctx   context.Context
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := &config.Config{
		TwitchClientID:     "client-id",
		TwitchClientSecret: "client-secret",
		TwitchRedirectURI:  "http://localhost:3000/auth/callback",
		GameDuration:       2 * time.Minute,
		EngagementWindow:   30 * time.Second,
		TickInterval:       100 * time.Millisecond,
		GracePeriod:        20 * time.Millisecond,
		PullCooldown:       500 * time.Millisecond,
		BasePullStrength:   1.0,
		WinThreshold:       0.05,
		MatchInterval:      time.Second,
		MatchStartDelay:    0,
	}

	s.app = newWithDependencies(cfg, memorystore.New(s.clock), s.clock, rnd, logger)
	s.ctx = context.Background()
}

func (s *AppSuite) enqueue(username string, sessionID model.SessionID) {
	s.Require().NoError(s.app.Queue.Enqueue(model.Player{
		ID:          model.PlayerID("id-" + username),
		Username:    username,
		ChannelName: username,
		ViewerCount: 1,
		SessionID:   sessionID,
	}))
}

func (s *AppSuite) TestNewWiresEverything() {
	s.NotNil(s.app.Registry)
	s.NotNil(s.app.Queue)
	s.NotNil(s.app.Service)
	s.NotNil(s.app.Loop)
	s.NotNil(s.app.Scheduler)
	s.NotNil(s.app.Auth)
	s.NotNil(s.app.Monitors)
	s.NotNil(s.app.Hub)
	s.NotNil(s.app.Tokens)
}

func (s *AppSuite) TestFullMatchLifecycle() {
	s.enqueue("alice", "sess-1")
	s.enqueue("bob", "sess-2")

	// Pairing promotes both players into an active room
	s.app.Scheduler.Pair(s.ctx)
	s.Require().Equal(1, s.app.Registry.Len())
	s.Equal(0, s.app.Queue.Len())

	room, err := s.app.Registry.GetBySession("sess-1")
	s.Require().NoError(err)
	s.Equal(model.StatusActive, room.Status())

	// Crowd pulls arrive through the ingestion service
	s.app.Service.SubmitPull(room.ID(), model.SideA, "viewer1")
	s.app.Service.SubmitPull(room.ID(), model.SideA, "viewer2")

	// One tick is enough to cross the tiny win threshold
	s.app.Loop.Step(s.ctx)

	s.Equal(model.StatusFinished, room.Status())
	s.Equal(model.PlayerID("id-alice"), room.Winner())

	// The grace period elapses and the room is cleaned up
	s.Require().Eventually(func() bool {
		return s.app.Registry.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func (s *AppSuite) TestDisconnectDuringMatchForfeits() {
	s.enqueue("alice", "sess-1")
	s.enqueue("bob", "sess-2")
	s.app.Scheduler.Pair(s.ctx)

	room, err := s.app.Registry.GetBySession("sess-2")
	s.Require().NoError(err)

	s.app.Service.NotifyDisconnect("sess-2")

	s.Equal(model.StatusAbandoned, room.Status())
	s.Equal(model.PlayerID("id-alice"), room.Winner())

	s.app.Loop.Step(s.ctx)
	s.Require().Eventually(func() bool {
		return s.app.Registry.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func (s *AppSuite) TestMatchRunsToTimeoutDraw() {
	s.enqueue("alice", "sess-1")
	s.enqueue("bob", "sess-2")
	s.app.Scheduler.Pair(s.ctx)

	room, err := s.app.Registry.GetBySession("sess-1")
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)
	s.app.Loop.Step(s.ctx)

	snap := room.Snapshot()
	s.Equal(model.StatusFinished, snap.Status)
	s.True(snap.Draw)
	s.Empty(snap.WinnerID)
}

func (s *AppSuite) TestLoginFlowUsesTokenStore() {
	authURL, err := s.app.Auth.LoginURL(s.ctx)
	s.Require().NoError(err)
	s.Contains(authURL, "client_id=client-id")
	s.Contains(authURL, "state=mock-token-1")
}
