package twitch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tugochat/tugochat/internal/dependencies/clock"
	"github.com/tugochat/tugochat/internal/model"
)

const (
	defaultIRCURL   = "wss://irc-ws.chat.twitch.tv:443"
	defaultCooldown = 500 * time.Millisecond

	pullCommand = "!pull"
)

// PullFunc receives a rate-limited pull command from chat
type PullFunc func(roomID model.RoomID, side model.Side, username string)

// MonitorConfig holds the settings for one channel's chat monitor
type MonitorConfig struct {
	Channel     string
	AccessToken string
	RoomID      model.RoomID
	Side        model.Side

	// Cooldown is the minimum gap between pulls per chat user
	Cooldown time.Duration
	// IRCURL overrides the Twitch IRC endpoint (for testing)
	IRCURL string
}

// Monitor watches one channel's chat over IRC-on-WebSocket and forwards
// each qualifying !pull command, throttled per user, to the pull callback.
type Monitor struct {
	cfg    MonitorConfig
	onPull PullFunc
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	lastPull map[string]time.Time
	stopped  bool
}

// NewMonitor creates a chat monitor for one channel
func NewMonitor(cfg MonitorConfig, onPull PullFunc, clk clock.Clock, logger *slog.Logger) *Monitor {
	if cfg.Cooldown == 0 {
		cfg.Cooldown = defaultCooldown
	}
	if cfg.IRCURL == "" {
		cfg.IRCURL = defaultIRCURL
	}
	return &Monitor{
		cfg:      cfg,
		onPull:   onPull,
		clock:    clk,
		logger:   logger.With(slog.String("channel", cfg.Channel)),
		lastPull: make(map[string]time.Time),
	}
}

// Run connects to chat and processes messages until Stop is called or the
// connection drops
func (m *Monitor) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.cfg.IRCURL, nil)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return conn.Close()
	}
	m.conn = conn
	m.mu.Unlock()

	channel := strings.ToLower(m.cfg.Channel)
	handshake := []string{
		"PASS oauth:" + m.cfg.AccessToken,
		"NICK " + channel,
		"JOIN #" + channel,
	}
	for _, line := range handshake {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return err
		}
	}

	m.logger.Info("chat monitor connected", slog.String("room_id", string(m.cfg.RoomID)))

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if m.isStopped() {
				return nil
			}
			return err
		}
		for _, line := range strings.Split(string(payload), "\r\n") {
			if line != "" {
				m.handleLine(line)
			}
		}
	}
}

// Stop disconnects the monitor. Safe to call more than once and before Run.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	if m.conn != nil {
		_ = m.conn.Close()
	}
}

func (m *Monitor) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func (m *Monitor) handleLine(line string) {
	if strings.HasPrefix(line, "PING") {
		m.mu.Lock()
		if m.conn != nil {
			_ = m.conn.WriteMessage(websocket.TextMessage, []byte("PONG :tmi.twitch.tv"))
		}
		m.mu.Unlock()
		return
	}

	username, text, ok := parsePrivmsg(line)
	if !ok || !isPullCommand(text) {
		return
	}
	if m.allowPull(username) {
		m.onPull(m.cfg.RoomID, m.cfg.Side, username)
	}
}

// allowPull enforces the per-user cooldown between pulls
func (m *Monitor) allowPull(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if last, ok := m.lastPull[username]; ok && now.Sub(last) < m.cfg.Cooldown {
		return false
	}
	m.lastPull[username] = now
	return true
}

// parsePrivmsg extracts the sender and text from an IRC PRIVMSG line of the
// form ":nick!user@host PRIVMSG #channel :text". Tag prefixes are stripped.
func parsePrivmsg(line string) (username, text string, ok bool) {
	// IRCv3 tags, if present, come before the prefix
	if strings.HasPrefix(line, "@") {
		idx := strings.Index(line, " ")
		if idx < 0 {
			return "", "", false
		}
		line = line[idx+1:]
	}

	if !strings.HasPrefix(line, ":") {
		return "", "", false
	}

	parts := strings.SplitN(line, " ", 4)
	if len(parts) < 4 || parts[1] != "PRIVMSG" {
		return "", "", false
	}

	prefix := parts[0][1:]
	bang := strings.Index(prefix, "!")
	if bang < 0 {
		return "", "", false
	}

	return prefix[:bang], strings.TrimPrefix(parts[3], ":"), true
}

// isPullCommand reports whether a chat message invokes the pull command,
// case-insensitively
func isPullCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && strings.EqualFold(fields[0], pullCommand)
}
