package fileutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// OutputLock is an advisory lock on one output path, shared with other
// tes3conv processes through a lock file.
type OutputLock struct {
	path string
	lock *flock.Flock
}

// LockOutput blocks until it holds the lock for output or ctx is done. Lock
// files live in lockDir, named after a hash of the absolute output path so
// the output's own directory is never touched.
func LockOutput(ctx context.Context, lockDir, output string) (*OutputLock, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	lockPath := filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")

	fl := flock.New(lockPath)
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock for %s: %w", output, err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire lock for %s: not acquired", output)
	}
	return &OutputLock{path: lockPath, lock: fl}, nil
}

// Path returns the lock file location.
func (l *OutputLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Unlock releases the lock. The lock file is left in place for reuse.
func (l *OutputLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
