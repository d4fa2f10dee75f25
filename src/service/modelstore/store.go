// Package modelstore persists serialized classifier models under a handle.
package modelstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smell-bot/src/config"
)

// ErrNotFound is returned when no model exists under a handle
var ErrNotFound = errors.New("model not found")

// Store defines operations for persisting model blobs
type Store interface {
	Put(ctx context.Context, handle string, data []byte) error
	Get(ctx context.Context, handle string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// New builds the store selected by cfg.Backend
func New(cfg config.ModelStoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Store(cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown model store backend %q", cfg.Backend)
	}
}

// normalizeHandle rejects empty handles and anything that could escape the store root
func normalizeHandle(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", fmt.Errorf("model handle is required")
	}
	if strings.ContainsAny(handle, `/\`) || handle == "." || handle == ".." {
		return "", fmt.Errorf("invalid model handle %q", handle)
	}
	return handle, nil
}
