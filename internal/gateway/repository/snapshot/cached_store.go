package snapshot

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type CacheConfig struct {
	BlobTTL        time.Duration
	BlobMaxEntries int
	ListTTL        time.Duration
	ListMaxEntries int
	URLTTL         time.Duration
	URLMaxEntries  int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		BlobTTL:        5 * time.Minute,
		BlobMaxEntries: 1024,
		ListTTL:        30 * time.Second,
		ListMaxEntries: 512,
		URLTTL:         5 * time.Minute,
		URLMaxEntries:  1024,
	}
}

// CachedStore is a read-through cache in front of the origin store. Writes
// go to the origin first; the cache is updated only on success.
type CachedStore struct {
	origin Store

	blobs *expirable.LRU[string, []byte]
	lists *expirable.LRU[string, []string]
	urls  *expirable.LRU[string, string]
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	if cfg.BlobMaxEntries <= 0 {
		cfg = DefaultCacheConfig()
	}
	return &CachedStore{
		origin: origin,
		blobs:  expirable.NewLRU[string, []byte](cfg.BlobMaxEntries, nil, cfg.BlobTTL),
		lists:  expirable.NewLRU[string, []string](cfg.ListMaxEntries, nil, cfg.ListTTL),
		urls:   expirable.NewLRU[string, string](cfg.URLMaxEntries, nil, cfg.URLTTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, sessionID, path string, content []byte) error {
	k, err := key(sessionID, path)
	if err != nil {
		return err
	}
	if err := s.origin.Put(ctx, sessionID, path, content); err != nil {
		return err
	}
	s.blobs.Add(k, append([]byte(nil), content...))
	// a successful write invalidates the session's cached listing
	s.lists.Remove(sessionID)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, sessionID, path string) ([]byte, error) {
	k, err := key(sessionID, path)
	if err != nil {
		return nil, err
	}
	if content, ok := s.blobs.Get(k); ok {
		return append([]byte(nil), content...), nil
	}
	content, err := s.origin.Get(ctx, sessionID, path)
	if err != nil {
		return nil, err
	}
	s.blobs.Add(k, append([]byte(nil), content...))
	return content, nil
}

func (s *CachedStore) GetURL(ctx context.Context, sessionID, path string) (string, error) {
	k, err := key(sessionID, path)
	if err != nil {
		return "", err
	}
	if u, ok := s.urls.Get(k); ok {
		return u, nil
	}
	u, err := s.origin.GetURL(ctx, sessionID, path)
	if err != nil {
		return "", err
	}
	if u != "" {
		s.urls.Add(k, u)
	}
	return u, nil
}

func (s *CachedStore) List(ctx context.Context, sessionID string) ([]string, error) {
	if paths, ok := s.lists.Get(sessionID); ok {
		return append([]string(nil), paths...), nil
	}
	paths, err := s.origin.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.lists.Add(sessionID, append([]string(nil), paths...))
	return paths, nil
}
