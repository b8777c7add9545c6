package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tugochat/tugochat/internal/gateway"
	"github.com/tugochat/tugochat/internal/model"
)

// RoomSource is the view of the room registry the loop needs
type RoomSource interface {
	Rooms() []*Room
	Remove(id model.RoomID)
}

// LoopConfig holds the scheduler timings
type LoopConfig struct {
	// TickInterval is the fixed physics period
	TickInterval time.Duration
	// GracePeriod is how long a finished room stays registered before
	// removal, allowing final-state delivery and late reconnects
	GracePeriod time.Duration
}

// DefaultLoopConfig returns the standard 10 Hz loop with a 30s grace period
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TickInterval: 100 * time.Millisecond,
		GracePeriod:  30 * time.Second,
	}
}

// Loop is the fixed-interval scheduler that advances every active room's
// physics and broadcasts snapshots. A failure while processing one room is
// logged and skipped; the loop only stops when its context is cancelled.
type Loop struct {
	rooms  RoomSource
	gw     gateway.Gateway
	cfg    LoopConfig
	logger *slog.Logger

	mu        sync.Mutex
	scheduled map[model.RoomID]bool
}

// NewLoop creates a game loop over the given room source
func NewLoop(rooms RoomSource, gw gateway.Gateway, cfg LoopConfig, logger *slog.Logger) *Loop {
	return &Loop{
		rooms:     rooms,
		gw:        gw,
		cfg:       cfg,
		logger:    logger,
		scheduled: make(map[model.RoomID]bool),
	}
}

// Run drives the loop until the context is cancelled
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	l.logger.Info("game loop started", slog.Duration("tick_interval", l.cfg.TickInterval))

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("game loop stopped")
			return
		case <-ticker.C:
			l.Step(ctx)
		}
	}
}

// Step processes a single tick across every registered room. Snapshots are
// broadcast for every room still known, including the terminal tick of a
// room that just finished and rooms sitting out their grace period.
func (l *Loop) Step(ctx context.Context) {
	for _, room := range l.rooms.Rooms() {
		l.processRoom(ctx, room)
	}
}

func (l *Loop) processRoom(ctx context.Context, room *Room) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("panic while processing room",
				slog.String("room_id", string(room.ID())),
				slog.Any("panic", rec),
			)
		}
	}()

	if room.Status() == model.StatusActive {
		if result := room.Tick(); result.Terminal {
			room.Finish()
			snap := room.Snapshot()
			l.logger.Info("game ended",
				slog.String("room_id", string(room.ID())),
				slog.String("reason", string(result.Reason)),
				slog.String("winner_id", string(snap.WinnerID)),
				slog.Bool("draw", snap.Draw),
			)
		}
	}

	if room.Status().Terminal() {
		l.scheduleCleanup(room.ID())
	}

	msg := model.NewGameUpdate(room.Snapshot())
	if err := l.gw.BroadcastToRoom(ctx, room.Sessions(), msg); err != nil {
		l.logger.Warn("snapshot broadcast failed",
			slog.String("room_id", string(room.ID())),
			slog.String("error", err.Error()),
		)
	}
}

// scheduleCleanup arranges for a terminal room to be removed from the
// registry after the grace period. Scheduling is once per room; removal is
// idempotent so a shutdown racing the timer is harmless.
func (l *Loop) scheduleCleanup(id model.RoomID) {
	l.mu.Lock()
	if l.scheduled[id] {
		l.mu.Unlock()
		return
	}
	l.scheduled[id] = true
	l.mu.Unlock()

	l.logger.Info("room cleanup scheduled",
		slog.String("room_id", string(id)),
		slog.Duration("grace_period", l.cfg.GracePeriod),
	)

	time.AfterFunc(l.cfg.GracePeriod, func() {
		l.rooms.Remove(id)
		l.mu.Lock()
		delete(l.scheduled, id)
		l.mu.Unlock()
	})
}
