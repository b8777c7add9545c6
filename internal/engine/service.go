package engine

import (
	"log/slog"

	"github.com/tugochat/tugochat/internal/model"
)

// RoomLookup is the view of the room registry the ingestion paths need
type RoomLookup interface {
	Get(id model.RoomID) (*Room, error)
	GetBySession(sessionID model.SessionID) (*Room, error)
}

// QueueLeaver removes a session from the matchmaking queue
type QueueLeaver interface {
	Dequeue(sessionID model.SessionID)
}

// Service is the ingestion entry point for externally-sourced events: pull
// commands from the chat binding and disconnect notifications from the
// transport layer.
type Service struct {
	rooms  RoomLookup
	queue  QueueLeaver
	logger *slog.Logger
}

// NewService creates an ingestion service
func NewService(rooms RoomLookup, queue QueueLeaver, logger *slog.Logger) *Service {
	return &Service{
		rooms:  rooms,
		queue:  queue,
		logger: logger,
	}
}

// SubmitPull records one already-rate-limited chat pull against a room. A
// pull for an unknown room or a non-active room is silently dropped: pulls
// racing the end of a match are expected.
func (s *Service) SubmitPull(roomID model.RoomID, side model.Side, username string) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return
	}
	room.RegisterPull(side, username)
}

// NotifyDisconnect handles a dropped connection: the session leaves the
// matchmaking queue, and if it was in an active match the other side wins
// by forfeit. Unknown sessions are a no-op.
func (s *Service) NotifyDisconnect(sessionID model.SessionID) {
	s.queue.Dequeue(sessionID)

	room, err := s.rooms.GetBySession(sessionID)
	if err != nil {
		return
	}
	side, ok := room.SideOfSession(sessionID)
	if !ok {
		return
	}

	room.Forfeit(side)
	s.logger.Info("player disconnected",
		slog.String("room_id", string(room.ID())),
		slog.String("side", string(side)),
		slog.String("status", string(room.Status())),
	)
}
