package datastore

import (
	"os"
	"path/filepath"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// FileLock is an advisory, process-exclusive lock next to the store file.
type FileLock struct {
	lock   *flock.Flock
	logger zerolog.Logger
}

// AcquireLock takes the lock without waiting. A lock held elsewhere yields
// common.ErrLocked.
func AcquireLock(path string, logger zerolog.Logger) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, common.WrapErrorf(err, "failed to create lock directory for %s", path)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to acquire lock %s", path)
	}
	if !locked {
		return nil, common.WrapErrorf(common.ErrLocked, "lock %s", path)
	}

	logger.Debug().Str("lock_file", path).Msg("Acquired store lock")
	return &FileLock{lock: lock, logger: logger}, nil
}

// Release unlocks and removes the lock file.
func (l *FileLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	path := l.lock.Path()
	if err := l.lock.Unlock(); err != nil {
		return common.WrapErrorf(err, "failed to release lock %s", path)
	}
	_ = os.Remove(path)
	l.logger.Debug().Str("lock_file", path).Msg("Released store lock")
	return nil
}
