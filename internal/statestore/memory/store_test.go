package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tugochat/tugochat/internal/dependencies/mocks"
	"github.com/tugochat/tugochat/internal/model"
)

type StoreSuite struct {
	suite.Suite
	clock *mocks.MockClock
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.store = New(s.clock)
	s.ctx = context.Background()
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

func (s *StoreSuite) TestExpiredTokenIsGone() {
	s.Require().NoError(s.store.Put(s.ctx, "state-1", "pending", time.Minute))

	s.clock.Advance(time.Minute)

	_, err := s.store.Take(s.ctx, "state-1")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StoreSuite) TestPutOverwrites() {
	s.Require().NoError(s.store.Put(s.ctx, "state-1", "first", time.Minute))
	s.Require().NoError(s.store.Put(s.ctx, "state-1", "second", time.Minute))

	value, err := s.store.Take(s.ctx, "state-1")
	s.Require().NoError(err)
	s.Equal("second", value)
}

func (s *StoreSuite) TestClose() {
	s.NoError(s.store.Close())
}
