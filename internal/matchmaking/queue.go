package matchmaking

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/tugochat/tugochat/internal/dependencies/clock"
	"github.com/tugochat/tugochat/internal/model"
)

// Queue is the FIFO waiting list for matchmaking. Every read-modify-write
// sequence holds the queue mutex for its whole duration; the expected queue
// depth is small enough that a single critical section suffices.
type Queue struct {
	mu      sync.Mutex
	entries []model.QueueEntry

	clock  clock.Clock
	logger *slog.Logger
}

// NewQueue creates an empty queue
func NewQueue(clk clock.Clock, logger *slog.Logger) *Queue {
	return &Queue{
		clock:  clk,
		logger: logger,
	}
}

// Enqueue adds a player to the back of the queue. A player without a session
// handle is rejected, and re-enqueueing a session already waiting is a
// logged no-op.
func (q *Queue) Enqueue(player model.Player) error {
	if player.SessionID == "" {
		q.logger.Error("player has no session handle", slog.String("username", player.Username))
		return model.ErrNoSession
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entry := range q.entries {
		if entry.SessionID == player.SessionID {
			q.logger.Info("player already in queue", slog.String("username", player.Username))
			return model.ErrAlreadyQueued
		}
	}

	q.entries = append(q.entries, model.QueueEntry{
		Player:    player,
		JoinedAt:  q.clock.Now(),
		SessionID: player.SessionID,
	})
	q.logger.Info("player joined matchmaking queue",
		slog.String("username", player.Username),
		slog.Int("queue_depth", len(q.entries)),
	)
	return nil
}

// Dequeue removes a session from the queue. Idempotent; removing a session
// that is not queued does nothing.
func (q *Queue) Dequeue(sessionID model.SessionID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = lo.Reject(q.entries, func(entry model.QueueEntry, _ int) bool {
		return entry.SessionID == sessionID
	})
}

// TryMatch pops the two longest-waiting entries in arrival order. Pairing is
// strict FIFO with no balancing. Returns false when fewer than two players
// are waiting.
func (q *Queue) TryMatch() (model.Player, model.Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) < 2 {
		return model.Player{}, model.Player{}, false
	}

	first, second := q.entries[0], q.entries[1]
	q.entries = q.entries[2:]
	return first.Player, second.Player, true
}

// Len returns the number of waiting players
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a copy of the current waiting list, longest-waiting first
func (q *Queue) Entries() []model.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.QueueEntry(nil), q.entries...)
}
