package approval

import (
	"sync"

	"timebridge/internal/util/app_errors"
)

// MemoryStatusStore is an in-memory StatusStore for tests.
type MemoryStatusStore struct {
	mu        sync.Mutex
	entity    string
	statuses  map[string]Status
	feedbacks map[string]*string
}

func NewMemoryStatusStore(entity string) *MemoryStatusStore {
	return &MemoryStatusStore{
		entity:    entity,
		statuses:  make(map[string]Status),
		feedbacks: make(map[string]*string),
	}
}

func (s *MemoryStatusStore) Put(id string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[id] = status
}

func (s *MemoryStatusStore) Feedback(id string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.feedbacks[id]
}

func (s *MemoryStatusStore) GetStatus(id string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[id]
	if !ok {
		return "", app_errors.NewNotFoundError(s.entity, id)
	}

	return status, nil
}

func (s *MemoryStatusStore) CompareAndSwapStatus(id string, expected, next Status, feedback *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statuses[id] != expected {
		return false, nil
	}

	s.statuses[id] = next
	s.feedbacks[id] = feedback

	return true, nil
}
