package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

// BlobStore persists whole objects addressed by slash-separated keys
//
//go:generate mockgen -source=blob.go -destination=../mocks/blob_store.go -package=mocks -mock_names=BlobStore=MockBlobStore
type BlobStore interface {
	// Get returns the object content, or domain.ErrTableNotFound if it does not exist
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the object content
	Put(ctx context.Context, key string, data []byte) error
	// Exists reports whether the object exists
	Exists(ctx context.Context, key string) (bool, error)
	// List returns the keys of the objects directly under prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)
}

type localBlobStore struct {
	root string
	fs   adapter.FileSystem
}

// NewLocalBlobStore creates a blob store rooted at a local directory
func NewLocalBlobStore(root string, fs adapter.FileSystem) BlobStore {
	return &localBlobStore{root: root, fs: fs}
}

func (s *localBlobStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get returns the object content
func (s *localBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := s.fs.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put writes the content to a uniquely named temp file and renames it over the target,
// so readers never observe a partially written table
func (s *localBlobStore) Put(_ context.Context, key string, data []byte) error {
	target := s.path(key)
	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp := filepath.Join(filepath.Dir(target), fmt.Sprintf(".%s.%s.tmp", filepath.Base(target), uuid.NewString()))
	if err := s.fs.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the object exists
func (s *localBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := s.fs.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", key, err)
}

// List returns the keys of the regular files directly under prefix
func (s *localBlobStore) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := s.fs.ReadDir(s.path(prefix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		keys = append(keys, path.Join(prefix, e.Name()))
	}
	sort.Strings(keys)
	return keys, nil
}
