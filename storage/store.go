package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
)

const snapshotKey = "snapshot:latest"

// ErrNoSnapshot indicates the store holds no persisted snapshot yet, the
// normal condition on first boot.
var ErrNoSnapshot = errors.New("storage: no snapshot")

// Store persists the node snapshot in a LevelDB database.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the LevelDB database at the provided path.
func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("storage: database path required")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	db, err := leveldb.OpenFile(abs, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying LevelDB resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot serialises v as JSON and replaces the stored snapshot.
func (s *Store) SaveSnapshot(v interface{}) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage: store not open")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}
	if err := s.db.Put([]byte(snapshotKey), raw, nil); err != nil {
		return fmt.Errorf("storage: write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot decodes the stored snapshot into v. Returns ErrNoSnapshot when
// nothing has been saved yet.
func (s *Store) LoadSnapshot(v interface{}) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage: store not open")
	}
	raw, err := s.db.Get([]byte(snapshotKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return ErrNoSnapshot
	}
	if err != nil {
		return fmt.Errorf("storage: read snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("storage: decode snapshot: %w", err)
	}
	return nil
}
