package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".json"

// FileStore keeps one JSON file per handle in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating model directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing a handle
func (s *FileStore) Path(handle string) string {
	return filepath.Join(s.dir, handle+fileExt)
}

// Put writes the blob through a temp file and rename so readers never see partial models
func (s *FileStore) Put(ctx context.Context, handle string, data []byte) error {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, handle+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(handle)); err != nil {
		return fmt.Errorf("installing model file: %w", err)
	}
	return nil
}

// Get reads the blob stored under handle
func (s *FileStore) Get(ctx context.Context, handle string) ([]byte, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(handle))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	return data, nil
}

// List returns the stored handles in sorted order
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	var handles []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		handles = append(handles, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(handles)
	return handles, nil
}
