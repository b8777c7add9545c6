package statestore

import (
	"context"
	"time"
)

// Store holds short-lived one-time tokens (OAuth state, pending session
// handles) with a TTL. Game state never goes through here; the store exists
// so the auth handshake survives a multi-instance deployment when backed by
// Redis.
type Store interface {
	// Put stores a token value under key for at most ttl
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Take retrieves and deletes a token in one step, so a token can only
	// be redeemed once. Returns model.ErrTokenNotFound for unknown or
	// expired keys.
	Take(ctx context.Context, key string) (string, error)

	// Close releases any underlying resources
	Close() error
}
