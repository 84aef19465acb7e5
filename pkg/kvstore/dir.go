package kvstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Dir persists each key as a file in a directory, so a second process (the
// results page of the CLI flow) can consume what the questionnaire published.
type Dir struct {
	root string
}

// NewDir ensures the directory exists and returns the store.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("kvstore: directory path is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: mkdir %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Get reads the file backing key or returns ErrNotFound.
func (d *Dir) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.path(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: read %q: %w", key, err)
	}
	return data, nil
}

// Set writes value to the file backing key, overwriting it.
func (d *Dir) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("kvstore: empty key")
	}
	if err := os.WriteFile(d.path(key), value, 0o644); err != nil {
		return fmt.Errorf("kvstore: write %q: %w", key, err)
	}
	return nil
}

// Delete removes the file backing key. Absent keys are not an error.
func (d *Dir) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(d.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kvstore: delete %q: %w", key, err)
	}
	return nil
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.root, url.PathEscape(key)+".json")
}
