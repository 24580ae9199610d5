package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	homedir "github.com/mitchellh/go-homedir"
)

// lockRetry is how often a waiting process retries the storage lock.
const lockRetry = 250 * time.Millisecond

// StorageLock keeps two marketerz processes from writing the same storage file at once.
// The lock lives next to the file as "<file>.lock".
type StorageLock struct {
	flock *flock.Flock
	file  string
}

// NewStorageLock prepares the lock for storagePath without taking it.
func NewStorageLock(storagePath string) (*StorageLock, error) {
	p, err := StoragePath(storagePath)
	if err != nil {
		return nil, fmt.Errorf("resolving storage path: %w", err)
	}
	return &StorageLock{flock: flock.New(p + ".lock"), file: p + ".lock"}, nil
}

// Acquire takes the lock, waiting for other processes until ctx is done.
func (l *StorageLock) Acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.file), 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}
	ok, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.file, err)
	}
	if ok {
		return nil
	}

	Log.Warn("Storage is in use by another marketerz process, waiting")
	ok, err = l.flock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", l.file, err)
	}
	if !ok {
		return fmt.Errorf("storage lock %s is still held", l.file)
	}
	return nil
}

// Release drops the lock. Releasing a lock that was never taken is not an error.
func (l *StorageLock) Release() error {
	err := l.flock.Unlock()
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("unlocking %s: %w", l.file, err)
}

// StoragePath returns the absolute storage file path. An empty path selects
// ~/.config/marketerz/marketerz.sqlite.
func StoragePath(p string) (string, error) {
	if p != "" {
		return filepath.Abs(p)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "marketerz", "marketerz.sqlite"), nil
}
