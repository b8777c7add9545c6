package mocks

import (
	"fmt"

	"github.com/tugochat/tugochat/internal/dependencies/random"
)

// MockRandom is a deterministic Random implementation for testing
type MockRandom struct {
	tokens  []string
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// QueueToken adds a token to be returned by the next Token call
func (r *MockRandom) QueueToken(token string) {
	r.tokens = append(r.tokens, token)
}

// Intn always returns 0
func (r *MockRandom) Intn(n int) int {
	return 0
}

// Token returns the next queued token, or a deterministic fallback
func (r *MockRandom) Token(length int) string {
	if len(r.tokens) > 0 {
		token := r.tokens[0]
		r.tokens = r.tokens[1:]
		return token
	}
	r.counter++
	return fmt.Sprintf("mock-token-%d", r.counter)
}
