// Package snapshot persists generated artifacts and execution results so
// the UI can fetch them after the conversation turn that produced them.
package snapshot

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("snapshot not found")

// Store defines operations for persisting per-session snapshot files.
type Store interface {
	Put(ctx context.Context, sessionID, path string, content []byte) error
	Get(ctx context.Context, sessionID, path string) ([]byte, error)
	GetURL(ctx context.Context, sessionID, path string) (string, error)
	List(ctx context.Context, sessionID string) ([]string, error)
}
