package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tugochat/tugochat/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// client is one connected websocket session
type client struct {
	sessionID model.SessionID
	conn      *websocket.Conn
	send      chan model.Message
	logger    *slog.Logger
}

func newClient(sessionID model.SessionID, conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan model.Message, sendBufferSize),
		logger:    logger.With(slog.String("session_id", string(sessionID))),
	}
}

// writePump serializes outbound messages onto the connection and keeps the
// connection alive with pings. Exits when the send channel closes.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				c.logger.Error("marshaling outbound message", slog.String("error", err.Error()))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
