package session

import (
	"context"
	"sync"

	"github.com/avolkov/authgate/internal/common"
)

// MemoryStore is an in-process Store used in tests and when no Redis
// address is configured. Principals are stored by value so callers cannot
// mutate an attached principal without going through Replace.
type MemoryStore struct {
	mu         sync.RWMutex
	principals map[string]Principal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{principals: make(map[string]Principal)}
}

func (s *MemoryStore) Attach(ctx context.Context, handle string, p *Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[handle] = *p
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, handle string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[handle]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) Replace(ctx context.Context, handle string, p *Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[handle]; !ok {
		return common.ErrNotFound
	}
	s.principals[handle] = *p
	return nil
}

func (s *MemoryStore) Destroy(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.principals, handle)
	return nil
}
