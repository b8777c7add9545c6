package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/tugochat/tugochat/internal/model"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.store = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StoreSuite) TestPutAndTake() {
	err := s.store.Put(s.ctx, "state-1", "pending", time.Minute)
	s.Require().NoError(err)

	value, err := s.store.Take(s.ctx, "state-1")
	s.Require().NoError(err)
	s.Equal("pending", value)
}

func (s *StoreSuite) TestTakeIsOneTime() {
	s.Require().NoError(s.store.Put(s.ctx, "state-1", "pending", time.Minute))

	_, err := s.store.Take(s.ctx, "state-1")
	s.Require().NoError(err)

	_, err = s.store.Take(s.ctx, "state-1")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StoreSuite) TestTakeUnknownKey() {
	_, err := s.store.Take(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StoreSuite) TestKeysAreNamespaced() {
	s.Require().NoError(s.store.Put(s.ctx, "state-1", "pending", time.Minute))

	s.True(s.mini.Exists("tugochat:token:state-1"))
}

func (s *StoreSuite) TestTokenExpires() {
	s.Require().NoError(s.store.Put(s.ctx, "state-1", "pending", time.Minute))

	s.mini.FastForward(2 * time.Minute)

	_, err := s.store.Take(s.ctx, "state-1")
	s.ErrorIs(err, model.ErrTokenNotFound)
}
