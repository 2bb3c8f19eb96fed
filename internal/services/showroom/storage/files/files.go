// Package files stores uploaded product model assets on the local
// filesystem under a configured root directory.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a requested model asset does not exist.
var ErrNotFound = errors.New("files: model not found")

// Store writes and reads model assets below its root directory. Asset
// paths handed to callers are always relative to the root so the
// database never records an absolute host path.
type Store struct {
	root string
}

// NewStore creates a file store rooted at dir, creating the directory
// when it is missing.
func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("files: root directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model root: %w", err)
	}
	return &Store{root: dir}, nil
}

// SaveModel streams a model asset to disk for the given product and
// returns the relative path to persist on the product record. An
// existing asset for the product is replaced.
func (s *Store) SaveModel(productID, filename string, r io.Reader) (string, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return "", errors.New("files: product id required")
	}
	ext := filepath.Ext(filepath.Base(filename))
	rel := filepath.Join("models", productID+ext)

	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create model file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(abs)
		return "", fmt.Errorf("write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close model file: %w", err)
	}
	return rel, nil
}

// StatModel reports whether the asset at the relative path exists and
// its size in bytes.
func (s *Store) StatModel(rel string) (int64, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return 0, ErrNotFound
	}
	info, err := os.Stat(filepath.Join(s.root, rel))
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("stat model file: %w", err)
	}
	return info.Size(), nil
}

// OpenModel opens the asset at the relative path for reading. The
// caller closes the returned file.
func (s *Store) OpenModel(rel string) (io.ReadCloser, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.root, rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	return f, nil
}

// DeleteModel removes the asset at the relative path. Deleting a
// missing asset is not an error.
func (s *Store) DeleteModel(rel string) error {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete model file: %w", err)
	}
	return nil
}
