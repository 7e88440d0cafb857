package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

// FileSnapshotStore keeps one JSON file per key under dir.
type FileSnapshotStore struct {
	dir    string
	mu     sync.RWMutex
	logger internal.Logger
}

func NewFileSnapshotStore(dir string, logger internal.Logger) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Errorf("storage: failed to create snapshot dir: %v", err)
		return nil, err
	}
	return &FileSnapshotStore{dir: dir, logger: logger}, nil
}

func (s *FileSnapshotStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *FileSnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := atomicWriteFile(s.path(key), data); err != nil {
		s.logger.Errorf("storage: error saving snapshot %s: %v", key, err)
		return err
	}
	return nil
}

func (s *FileSnapshotStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete snapshot %s: %w", key, err)
	}
	return nil
}

func atomicWriteFile(filePath string, data []byte) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

// --- Compile-time assertions ---
var _ SnapshotStore = (*FileSnapshotStore)(nil)
