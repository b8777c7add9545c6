package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tugochat/tugochat/internal/engine"
	"github.com/tugochat/tugochat/internal/gateway"
	"github.com/tugochat/tugochat/internal/matchmaking"
	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/twitch"
)

// Hub is the websocket transport: it tracks connected sessions, dispatches
// validated inbound messages into the matchmaking and ingestion layers, and
// implements the Gateway the core broadcasts through.
type Hub struct {
	queue    *matchmaking.Queue
	service  *engine.Service
	rooms    engine.RoomLookup
	monitors *twitch.MonitorManager
	validate *validator.Validate
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[model.SessionID]*client
}

// Ensure Hub implements the gateway contract
var _ gateway.Gateway = (*Hub)(nil)

// NewHub creates a websocket hub
func NewHub(queue *matchmaking.Queue, service *engine.Service, rooms engine.RoomLookup, monitors *twitch.MonitorManager, logger *slog.Logger) *Hub {
	return &Hub{
		queue:    queue,
		service:  service,
		rooms:    rooms,
		monitors: monitors,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The frontend is served from a different origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[model.SessionID]*client),
	}
}

// ServeHTTP upgrades /ws/{session_id} requests and runs the connection until
// it drops
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["session_id"])
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newClient(sessionID, conn, h.logger)
	h.register(c)
	go c.writePump()

	h.readLoop(r.Context(), c)

	h.unregister(c)
	h.monitors.Stop(sessionID)
	h.service.NotifyDisconnect(sessionID)
	h.logger.Info("websocket disconnected", slog.String("session_id", string(sessionID)))
}

// SendToSession queues a message for one session. A session that is no
// longer connected drops the message silently; a session whose buffer is
// full drops it with a warning.
func (h *Hub) SendToSession(_ context.Context, sessionID model.SessionID, msg model.Message) error {
	h.mu.RLock()
	c, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	select {
	case c.send <- msg:
	default:
		h.logger.Warn("outbound message dropped - client buffer full",
			slog.String("session_id", string(sessionID)),
			slog.String("type", string(msg.Type)),
		)
	}
	return nil
}

// BroadcastToRoom queues a message for every given session
func (h *Hub) BroadcastToRoom(ctx context.Context, sessionIDs []model.SessionID, msg model.Message) error {
	for _, sid := range sessionIDs {
		if err := h.SendToSession(ctx, sid, msg); err != nil {
			return err
		}
	}
	return nil
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[model.SessionID]*client)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
	}
}

// ClientCount returns the number of connected sessions
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	if old, ok := h.clients[c.sessionID]; ok {
		close(old.send)
	}
	h.clients[c.sessionID] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket connected",
		slog.String("session_id", string(c.sessionID)),
		slog.Int("total_clients", total),
	)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if current, ok := h.clients[c.sessionID]; ok && current == c {
		delete(h.clients, c.sessionID)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Warn("malformed inbound message", slog.String("error", err.Error()))
			continue
		}
		if err := h.validate.Struct(msg); err != nil {
			c.logger.Warn("inbound message failed validation",
				slog.String("type", msg.Type),
				slog.String("error", err.Error()),
			)
			continue
		}

		h.dispatch(ctx, c, msg)
	}
}

func (h *Hub) dispatch(ctx context.Context, c *client, msg inboundMessage) {
	switch msg.Type {
	case inboundJoinQueue:
		player := model.Player{
			ID:          model.PlayerID(msg.Player.ID),
			Username:    msg.Player.Username,
			ChannelName: msg.Player.ChannelName,
			AccessToken: msg.Player.AccessToken,
			ViewerCount: msg.Player.ViewerCount,
			SessionID:   c.sessionID,
		}
		// Re-enqueueing is a logged no-op; the ack is sent either way
		_ = h.queue.Enqueue(player)
		_ = h.SendToSession(ctx, c.sessionID, model.NewQueueJoined())

	case inboundLeaveQueue:
		h.queue.Dequeue(c.sessionID)
		_ = h.SendToSession(ctx, c.sessionID, model.NewQueueLeft())

	case inboundGameReady:
		h.handleGameReady(c, model.RoomID(msg.RoomID))
	}
}

// handleGameReady starts chat monitoring for the requesting player once
// their client has loaded the match
func (h *Hub) handleGameReady(c *client, roomID model.RoomID) {
	room, err := h.rooms.Get(roomID)
	if err != nil {
		c.logger.Warn("game_ready for unknown room", slog.String("room_id", string(roomID)))
		return
	}
	side, ok := room.SideOfSession(c.sessionID)
	if !ok {
		c.logger.Warn("game_ready from non-participant", slog.String("room_id", string(roomID)))
		return
	}

	h.monitors.Start(context.Background(), room.Player(side), roomID, side)
}
