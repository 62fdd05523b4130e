package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps each bucket as a directory under Root. Content types are
// not persisted.
type FSStore struct {
	Root string
}

// NewFSStore creates the root directory if needed.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("fs: create root %q: %w", root, err)
	}
	return &FSStore{Root: root}, nil
}

func (s *FSStore) Put(_ context.Context, bucket, key string, body []byte, _ string) error {
	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("fs: create bucket dir: %w", err)
	}

	// write then rename so a reader never sees a half-written artifact
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return fmt.Errorf("fs: write %q: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("fs: rename %q: %w", path, err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	path, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("fs: get %s/%s: %w", bucket, key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fs: read %q: %w", path, err)
	}
	return body, nil
}

func (s *FSStore) path(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("fs: empty bucket or key (%q, %q)", bucket, key)
	}
	root := filepath.Clean(s.Root)
	p := filepath.Join(root, bucket, filepath.FromSlash(key))
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("fs: key %q escapes store root", key)
	}
	return p, nil
}
