package matchmaking

import (
	"context"
	"log/slog"
	"time"

	"github.com/tugochat/tugochat/internal/engine"
	"github.com/tugochat/tugochat/internal/gateway"
	"github.com/tugochat/tugochat/internal/model"
)

// RoomCreator promotes a matched pair into a new room
type RoomCreator interface {
	Create(playerA, playerB model.Player) *engine.Room
}

// SchedulerConfig holds the pairing cadence and start delay
type SchedulerConfig struct {
	// Interval is how often a pairing attempt runs
	Interval time.Duration
	// StartDelay is the pause between announcing a match and starting the
	// game, giving both clients time to prepare
	StartDelay time.Duration
}

// DefaultSchedulerConfig returns the standard 1s cadence with a 5s start delay
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:   time.Second,
		StartDelay: 5 * time.Second,
	}
}

// Scheduler is the background pairing process: on a fixed cadence it pops
// the two longest-waiting players, creates their room, notifies each of the
// other's profile, and starts the game after the prepare delay. An error in
// one pairing attempt never stops the scheduler.
type Scheduler struct {
	queue  *Queue
	rooms  RoomCreator
	gw     gateway.Gateway
	cfg    SchedulerConfig
	logger *slog.Logger
}

// NewScheduler creates a matchmaking scheduler
func NewScheduler(queue *Queue, rooms RoomCreator, gw gateway.Gateway, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queue:  queue,
		rooms:  rooms,
		gw:     gw,
		cfg:    cfg,
		logger: logger,
	}
}

// Run drives pairing attempts until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("matchmaking scheduler started", slog.Duration("interval", s.cfg.Interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("matchmaking scheduler stopped")
			return
		case <-ticker.C:
			s.Pair(ctx)
		}
	}
}

// Pair performs one pairing attempt. Exported for tests.
func (s *Scheduler) Pair(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic in pairing attempt", slog.Any("panic", rec))
		}
	}()

	playerA, playerB, ok := s.queue.TryMatch()
	if !ok {
		return
	}

	room := s.rooms.Create(playerA, playerB)

	if err := s.gw.SendToSession(ctx, playerA.SessionID, model.NewMatchFound(room.ID(), playerB.Profile())); err != nil {
		s.logger.Warn("match notification failed",
			slog.String("room_id", string(room.ID())),
			slog.String("username", playerA.Username),
			slog.String("error", err.Error()),
		)
	}
	if err := s.gw.SendToSession(ctx, playerB.SessionID, model.NewMatchFound(room.ID(), playerA.Profile())); err != nil {
		s.logger.Warn("match notification failed",
			slog.String("room_id", string(room.ID())),
			slog.String("username", playerB.Username),
			slog.String("error", err.Error()),
		)
	}

	// Let both clients set up before the rope starts moving
	if s.cfg.StartDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.StartDelay):
		}
	}

	room.Start()
	s.logger.Info("game started",
		slog.String("room_id", string(room.ID())),
		slog.String("player1", playerA.Username),
		slog.String("player2", playerB.Username),
	)

	if err := s.gw.BroadcastToRoom(ctx, room.Sessions(), model.NewGameStarted()); err != nil {
		s.logger.Warn("start announcement failed",
			slog.String("room_id", string(room.ID())),
			slog.String("error", err.Error()),
		)
	}
}
