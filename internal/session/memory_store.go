package session

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu    sync.RWMutex
	store map[string]map[string]string // sessionID -> key -> value
}

// NewMemoryBackend returns an in-memory session backend intended for local development and tests.
func NewMemoryBackend() Backend {
	return &memoryBackend{store: make(map[string]map[string]string)}
}

func (b *memoryBackend) Scope(sessionID string) Store {
	return &memoryStore{backend: b, sessionID: sessionID}
}

type memoryStore struct {
	backend   *memoryBackend
	sessionID string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	values, ok := s.backend.store[s.sessionID]
	if !ok {
		return "", false, nil
	}
	value, ok := values[key]
	return value, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	values, ok := s.backend.store[s.sessionID]
	if !ok {
		values = make(map[string]string)
		s.backend.store[s.sessionID] = values
	}
	values[key] = value
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	values, ok := s.backend.store[s.sessionID]
	if !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(s.backend.store, s.sessionID)
	}
	return nil
}
