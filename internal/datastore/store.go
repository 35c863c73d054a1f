package datastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
)

// SnapshotStore persists the full catalog as one snapshot. Save replaces
// whatever was stored before; Load returns records in insertion order.
type SnapshotStore interface {
	Load(ctx context.Context) ([]models.FileRecord, error)
	Save(ctx context.Context, records []models.FileRecord) error
	Close() error
}

// Open builds the store selected by the storage_config section. With
// LockFile set, the store holds an exclusive lock on "<path>.lock" until
// Close so that two processes never write the same snapshot.
func Open(cfg config.StorageConfig, logger zerolog.Logger) (SnapshotStore, error) {
	backend := strings.ToLower(cfg.Backend)

	if backend == "memory" {
		return NewMemoryStore(), nil
	}

	var lock *FileLock
	if cfg.LockFile {
		l, err := AcquireLock(cfg.Path+".lock", logger)
		if err != nil {
			return nil, err
		}
		lock = l
	}

	var (
		store SnapshotStore
		err   error
	)
	switch backend {
	case "", "sqlite":
		store, err = NewSQLiteStore(cfg.Path, logger)
	case "parquet":
		store, err = NewParquetStore(cfg.Path, cfg.CompressionCodec, logger)
	default:
		err = fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
	if err != nil {
		if lock != nil {
			_ = lock.Release()
		}
		return nil, err
	}

	if lock == nil {
		return store, nil
	}
	return &lockedStore{SnapshotStore: store, lock: lock}, nil
}

type lockedStore struct {
	SnapshotStore
	lock *FileLock
}

func (s *lockedStore) Close() error {
	err := s.SnapshotStore.Close()
	if lerr := s.lock.Release(); err == nil {
		err = lerr
	}
	return err
}
