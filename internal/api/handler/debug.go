package handler

import (
	"net/http"
	"time"

	"github.com/tugochat/tugochat/internal/matchmaking"
	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/registry"
)

// DebugHandler exposes operator visibility into the live rooms and queue
type DebugHandler struct {
	registry *registry.Registry
	queue    *matchmaking.Queue
}

// NewDebugHandler creates a debug handler
func NewDebugHandler(reg *registry.Registry, queue *matchmaking.Queue) *DebugHandler {
	return &DebugHandler{
		registry: reg,
		queue:    queue,
	}
}

// RoomInfo is the operator-facing view of one room
type RoomInfo struct {
	RoomID       model.RoomID     `json:"room_id"`
	Status       model.GameStatus `json:"status"`
	RopePosition float64          `json:"rope_position"`
	Player1      string           `json:"player1"`
	Player2      string           `json:"player2"`
	WinnerID     model.PlayerID   `json:"winner_id,omitempty"`
}

// Rooms lists every registered room
func (h *DebugHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.registry.Rooms()
	infos := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		snap := room.Snapshot()
		infos = append(infos, RoomInfo{
			RoomID:       room.ID(),
			Status:       snap.Status,
			RopePosition: snap.RopePosition,
			Player1:      room.Player(model.SideA).Username,
			Player2:      room.Player(model.SideB).Username,
			WinnerID:     snap.WinnerID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": infos})
}

// QueueEntryInfo is the operator-facing view of one waiting player
type QueueEntryInfo struct {
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// Queue lists the waiting players, longest-waiting first
func (h *DebugHandler) Queue(w http.ResponseWriter, r *http.Request) {
	entries := h.queue.Entries()
	infos := make([]QueueEntryInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, QueueEntryInfo{
			Username: entry.Player.Username,
			JoinedAt: entry.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"queue": infos})
}
