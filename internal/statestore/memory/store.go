package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tugochat/tugochat/internal/dependencies/clock"
	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/statestore"
)

// Store is an in-memory implementation of the token store
type Store struct {
	mu     sync.Mutex
	tokens map[string]entry
	clock  clock.Clock
}

type entry struct {
	value     string
	expiresAt time.Time
}

// New creates an empty in-memory token store
func New(clk clock.Clock) *Store {
	return &Store{
		tokens: make(map[string]entry),
		clock:  clk,
	}
}

// Ensure Store implements the interface
var _ statestore.Store = (*Store)(nil)

// Put stores a token value under key for at most ttl
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = entry{
		value:     value,
		expiresAt: s.clock.Now().Add(ttl),
	}
	return nil
}

// Take retrieves and deletes a token in one step
func (s *Store) Take(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[key]
	if !ok {
		return "", model.ErrTokenNotFound
	}
	delete(s.tokens, key)

	if !s.clock.Now().Before(e.expiresAt) {
		return "", model.ErrTokenNotFound
	}
	return e.value, nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}
