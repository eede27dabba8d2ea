package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists records as JSON files for CLI usage. Records are
// sharded into subdirectories by the leading bytes of the family hash to
// avoid very large directories. Layout writes are serialized with an
// in-process mutex; concurrent access from multiple processes is not
// supported.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a file-backed store rooted at dir.
// The directory is created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	for _, sub := range []string{"families", "layouts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, err
		}
	}
	return &FileStore{dir: dir}, nil
}

// PutFamily registers or replaces a family record.
func (s *FileStore) PutFamily(ctx context.Context, f FamilyRecord) error {
	return s.write(s.path("families", f.Hash), f)
}

// GetFamily returns the family with the given hash, or ErrNotFound.
func (s *FileStore) GetFamily(ctx context.Context, hash string) (FamilyRecord, error) {
	var f FamilyRecord
	err := s.read(s.path("families", hash), &f)
	return f, err
}

// ListFamilies returns all registered families.
func (s *FileStore) ListFamilies(ctx context.Context) ([]FamilyRecord, error) {
	var out []FamilyRecord
	root := filepath.Join(s.dir, "families")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		var f FamilyRecord
		if err := s.read(path, &f); err != nil {
			// Unreadable entries are skipped, not fatal; the next
			// discovery pass rewrites them.
			return nil
		}
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFamily removes a family and its layout.
func (s *FileStore) DeleteFamily(ctx context.Context, hash string) error {
	for _, sub := range []string{"families", "layouts"} {
		if err := os.Remove(s.path(sub, hash)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// PutLayout stores or replaces the layout for a family.
func (s *FileStore) PutLayout(ctx context.Context, l LayoutRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.path("layouts", l.FamilyHash), l)
}

// CompleteLayout persists an optimization result, keeping the stale flag
// and epoch of any mark that advanced the stored record past l.
func (s *FileStore) CompleteLayout(ctx context.Context, l LayoutRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur LayoutRecord
	err := s.read(s.path("layouts", l.FamilyHash), &cur)
	if err == nil && cur.StaleEpoch > l.StaleEpoch {
		l.Stale = true
		l.StaleEpoch = cur.StaleEpoch
	}
	if err != nil && err != ErrNotFound {
		return err
	}
	return s.write(s.path("layouts", l.FamilyHash), l)
}

// GetLayout returns the layout for the given family hash, or ErrNotFound.
func (s *FileStore) GetLayout(ctx context.Context, hash string) (LayoutRecord, error) {
	var l LayoutRecord
	err := s.read(s.path("layouts", hash), &l)
	return l, err
}

// MarkStale flags the family's layout as stale, if one exists.
func (s *FileStore) MarkStale(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var l LayoutRecord
	err := s.read(s.path("layouts", hash), &l)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	l.Stale = true
	l.StaleEpoch++
	return s.write(s.path("layouts", hash), l)
}

// Ping verifies the store directory is accessible.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) write(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *FileStore) read(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// path shards records by the leading bytes of the hash so no single
// directory grows too large.
func (s *FileStore) path(sub, hash string) string {
	shard := hash
	if len(shard) > 2 {
		shard = shard[:2]
	}
	name := hash
	if len(hash) > 2 {
		name = hash[2:]
	}
	return filepath.Join(s.dir, sub, shard, name+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
