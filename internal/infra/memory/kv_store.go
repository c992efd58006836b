package memory

import (
	"context"
	"errors"
	"sync"

	"quiz-progress-service/internal/app"
)

// ErrInjected is returned by a KVStore with failure injection switched on.
var ErrInjected = errors.New("memory kv: injected failure")

// KVStore is an in-memory implementation of app.KeyValueStore.
type KVStore struct {
	mu         sync.RWMutex
	data       map[string]string
	failReads  bool
	failWrites bool
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]string)}
}

func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failReads {
		return "", false, ErrInjected
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrInjected
	}
	s.data[key] = value
	return nil
}

func (s *KVStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrInjected
	}
	delete(s.data, key)
	return nil
}

func (s *KVStore) Apply(_ context.Context, mutations []app.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrInjected
	}
	for _, m := range mutations {
		if m.Delete {
			delete(s.data, m.Key)
			continue
		}
		s.data[m.Key] = m.Value
	}
	return nil
}

// FailReads makes every Get return ErrInjected (tests only).
func (s *KVStore) FailReads(fail bool) {
	s.mu.Lock()
	s.failReads = fail
	s.mu.Unlock()
}

// FailWrites makes every write return ErrInjected (tests only).
func (s *KVStore) FailWrites(fail bool) {
	s.mu.Lock()
	s.failWrites = fail
	s.mu.Unlock()
}

// Keys returns the stored keys.
func (s *KVStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
