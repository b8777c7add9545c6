package twitch

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/tugochat/tugochat/internal/dependencies/clock"
	"github.com/tugochat/tugochat/internal/model"
)

// MonitorManager owns the chat monitors for connected players, keyed by
// session. At most one monitor runs per session; starting a new one replaces
// the old.
type MonitorManager struct {
	onPull   PullFunc
	cooldown time.Duration
	ircURL   string
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	monitors map[model.SessionID]*Monitor
}

// NewMonitorManager creates an empty monitor manager
func NewMonitorManager(onPull PullFunc, cooldown time.Duration, clk clock.Clock, logger *slog.Logger) *MonitorManager {
	return &MonitorManager{
		onPull:   onPull,
		cooldown: cooldown,
		clock:    clk,
		logger:   logger,
		monitors: make(map[model.SessionID]*Monitor),
	}
}

// Start begins monitoring a player's channel for the given room and side,
// replacing any monitor already running for the session
func (m *MonitorManager) Start(ctx context.Context, player model.Player, roomID model.RoomID, side model.Side) {
	monitor := NewMonitor(MonitorConfig{
		Channel:     player.ChannelName,
		AccessToken: player.AccessToken,
		RoomID:      roomID,
		Side:        side,
		Cooldown:    m.cooldown,
		IRCURL:      m.ircURL,
	}, m.onPull, m.clock, m.logger)

	m.mu.Lock()
	if existing, ok := m.monitors[player.SessionID]; ok {
		existing.Stop()
	}
	m.monitors[player.SessionID] = monitor
	m.mu.Unlock()

	go func() {
		if err := monitor.Run(ctx); err != nil && !isClosedErr(err) {
			m.logger.Error("chat monitor failed",
				slog.String("channel", player.ChannelName),
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Stop shuts down the monitor for a session, if any. Idempotent.
func (m *MonitorManager) Stop(sessionID model.SessionID) {
	m.mu.Lock()
	monitor, ok := m.monitors[sessionID]
	if ok {
		delete(m.monitors, sessionID)
	}
	m.mu.Unlock()

	if ok {
		monitor.Stop()
	}
}

// StopAll shuts down every running monitor
func (m *MonitorManager) StopAll() {
	m.mu.Lock()
	monitors := m.monitors
	m.monitors = make(map[model.SessionID]*Monitor)
	m.mu.Unlock()

	for _, monitor := range monitors {
		monitor.Stop()
	}
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
