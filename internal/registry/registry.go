package registry

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tugochat/tugochat/internal/dependencies/clock"
	"github.com/tugochat/tugochat/internal/engine"
	"github.com/tugochat/tugochat/internal/model"
)

// Registry is the concurrency-safe store of all live rooms, indexed by room
// id and by participant session. It owns the set of room aggregates but
// never mutates their state; lookups may proceed while other rooms are
// created or removed.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[model.RoomID]*engine.Room
	sessions map[model.SessionID]model.RoomID

	rules  engine.Ruleset
	clock  clock.Clock
	logger *slog.Logger
}

// New creates an empty registry
func New(rules engine.Ruleset, clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:    make(map[model.RoomID]*engine.Room),
		sessions: make(map[model.SessionID]model.RoomID),
		rules:    rules,
		clock:    clk,
		logger:   logger,
	}
}

// Create builds a new waiting room for the two players and indexes it by id
// and by both session handles. A session maps to at most one room: indexing
// overwrites any stale mapping for the same session.
func (r *Registry) Create(playerA, playerB model.Player) *engine.Room {
	id := model.RoomID(uuid.NewString())
	room := engine.NewRoom(id, playerA, playerB, r.rules, r.clock)

	r.mu.Lock()
	r.rooms[id] = room
	if playerA.SessionID != "" {
		r.sessions[playerA.SessionID] = id
	}
	if playerB.SessionID != "" {
		r.sessions[playerB.SessionID] = id
	}
	r.mu.Unlock()

	r.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("player1", playerA.Username),
		slog.String("player2", playerB.Username),
	)

	return room
}

// Get returns the room with the given id
func (r *Registry) Get(id model.RoomID) (*engine.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// GetBySession returns the room a session is participating in
func (r *Registry) GetBySession(sessionID model.SessionID) (*engine.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sessions[sessionID]
	if !ok {
		return nil, model.ErrSessionNotInRoom
	}
	room, ok := r.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Remove deletes a room and clears both indexes atomically, so no stale
// session mapping survives a removed room. Removing an unknown id is a
// no-op.
func (r *Registry) Remove(id model.RoomID) {
	r.mu.Lock()
	room, ok := r.rooms[id]
	if ok {
		delete(r.rooms, id)
		for _, sid := range room.Sessions() {
			if r.sessions[sid] == id {
				delete(r.sessions, sid)
			}
		}
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("room removed", slog.String("room_id", string(id)))
	}
}

// RemoveAll forcibly removes every room. Shutdown hook; in-flight grace
// periods are abandoned.
func (r *Registry) RemoveAll() int {
	r.mu.Lock()
	n := len(r.rooms)
	r.rooms = make(map[model.RoomID]*engine.Room)
	r.sessions = make(map[model.SessionID]model.RoomID)
	r.mu.Unlock()

	if n > 0 {
		r.logger.Info("registry cleared", slog.Int("rooms", n))
	}
	return n
}

// Rooms returns a point-in-time slice of every registered room
func (r *Registry) Rooms() []*engine.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*engine.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Len returns the number of registered rooms
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
