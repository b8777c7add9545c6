package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/statestore"
)

// Store is a Redis-backed implementation of the token store
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a Redis token store and verifies the connection
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis token store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
	}
}

// Ensure Store implements the interface
var _ statestore.Store = (*Store)(nil)

// Put stores a token value under key for at most ttl
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(key), value, ttl).Err()
}

// Take retrieves and deletes a token in one step
func (s *Store) Take(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, tokenKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrTokenNotFound
		}
		return "", err
	}
	return value, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func tokenKey(key string) string {
	return "tugochat:token:" + key
}
