package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-process user store. FindAll returns insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []User
	byEmail map[string]int
}

// NewMemoryStore returns a store pre-populated with users (in order).
// Duplicate emails among users are rejected.
func NewMemoryStore(users ...User) (*MemoryStore, error) {
	s := &MemoryStore{byEmail: make(map[string]int, len(users))}
	for _, u := range users {
		if err := s.Insert(context.Background(), u); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Insert appends u. One user per email.
func (s *MemoryStore) Insert(ctx context.Context, u User) error {
	const op = "identity.MemoryStore.Insert"
	if err := ctx.Err(); err != nil {
		return StoreError{Op: op, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ConflictError{Op: op, Field: "email"}
	}
	s.byEmail[u.Email] = len(s.users)
	s.users = append(s.users, u)
	return nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	if err := ctx.Err(); err != nil {
		return User{}, false, StoreError{Op: "identity.MemoryStore.FindByEmail", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byEmail[email]
	if !ok {
		return User{}, false, nil
	}
	return s.users[i], true, nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, StoreError{Op: "identity.MemoryStore.FindAll", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, len(s.users))
	copy(out, s.users)
	return out, nil
}
