// Package store keeps pending enrollments in memory. State here is
// deliberately ephemeral: a process restart drops every half-finished
// enrollment and users simply press the button again.
package store

import (
	"sync"
	"time"

	"github.com/verifygate/verifygate/model"
)

// SecretStore maps user ids to their in-flight enrollment. Discord event
// handlers run on separate goroutines, so access is mutex-guarded.
type SecretStore struct {
	mu      sync.Mutex
	pending map[string]model.Pending
}

func New() *SecretStore {
	return &SecretStore{pending: make(map[string]model.Pending)}
}

// Begin records a fresh enrollment for the user, silently invalidating any
// prior pending secret and resetting the attempt count.
func (s *SecretStore) Begin(userID, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = model.Pending{Secret: secret, IssuedAt: time.Now()}
}

// Get returns the user's pending enrollment, if any.
func (s *SecretStore) Get(userID string) (model.Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[userID]
	return p, ok
}

// Fail counts a wrong code against the user's enrollment and returns the
// new attempt total. Counting against a user with no enrollment is a no-op.
func (s *SecretStore) Fail(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[userID]
	if !ok {
		return 0
	}
	p.Attempts++
	s.pending[userID] = p
	return p.Attempts
}

// Remove drops the user's pending enrollment.
func (s *SecretStore) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userID)
}
