package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// NotFoundError is returned when no user matches the lookup key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("usuario no encontrado: %s", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

type Store interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Save(ctx context.Context, u User) error
	CountByRole(ctx context.Context, r Role) (int, error)
}

// MemoryStore keeps users in process memory. Used by tests and by the
// memory store driver.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]User)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) FindByID(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, &NotFoundError{Key: id}
	}
	return u, nil
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, &NotFoundError{Key: username}
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, &NotFoundError{Key: email}
}

func (s *MemoryStore) Save(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.ID] = u
	return nil
}

func (s *MemoryStore) CountByRole(ctx context.Context, r Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.byID {
		if u.HasRole(r) {
			n++
		}
	}
	return n, nil
}

// All returns every user ordered by username. Seeding uses it to report what
// already exists.
func (s *MemoryStore) All() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
