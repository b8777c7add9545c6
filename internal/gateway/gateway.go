package gateway

import (
	"context"

	"github.com/tugochat/tugochat/internal/model"
)

// Gateway is the sink the core pushes lifecycle and state messages into.
// The engine and matchmaking layers depend on this capability only; the
// transport implementation lives behind it and never reaches back.
type Gateway interface {
	// SendToSession delivers a message to a single session. Sending to a
	// session that is no longer connected is not an error; the message is
	// dropped.
	SendToSession(ctx context.Context, sessionID model.SessionID, msg model.Message) error

	// BroadcastToRoom delivers a message to every given session
	BroadcastToRoom(ctx context.Context, sessionIDs []model.SessionID, msg model.Message) error
}

// Nop is a Gateway that discards everything, for tests and tooling
type Nop struct{}

// SendToSession discards the message
func (Nop) SendToSession(context.Context, model.SessionID, model.Message) error { return nil }

// BroadcastToRoom discards the message
func (Nop) BroadcastToRoom(context.Context, []model.SessionID, model.Message) error { return nil }
