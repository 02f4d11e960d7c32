package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Default backend when no
// database or object store is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func key(sessionID, path string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	path = strings.TrimSpace(path)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	return sessionID + "/" + path, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID, path string, content []byte) error {
	k, err := key(sessionID, path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[k] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID, path string) ([]byte, error) {
	k, err := key(sessionID, path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.data[k]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), content...), nil
}

func (s *MemoryStore) GetURL(_ context.Context, _, _ string) (string, error) {
	// memory store has no addressable URLs
	return "", nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string) ([]string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	prefix := sessionID + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	var paths []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			paths = append(paths, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
