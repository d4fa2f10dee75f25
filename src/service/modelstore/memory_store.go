package modelstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps models in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, handle string, data []byte) error {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[handle] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, handle string) ([]byte, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handles := make([]string, 0, len(s.blobs))
	for h := range s.blobs {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles, nil
}
