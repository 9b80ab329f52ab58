package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned by Acquire when another process holds the lock.
var ErrAlreadyRunning = errors.New("another instance with the same configuration is already running")

const lockPrefix = "mjhnkn-"

// Lock is the exclusivity token for one fingerprint.
type Lock struct {
	path string
	lock *flock.Flock
}

// New returns an unacquired lock for fingerprint inside dir. An empty dir
// means the system temp directory.
func New(dir, fingerprint string) *Lock {
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, lockPrefix+fingerprint+".lock")
	return &Lock{
		path: path,
		lock: flock.New(path),
	}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, l.path)
	}
	return nil
}

// Held reports whether this process currently holds the lock.
func (l *Lock) Held() bool {
	return l.lock.Locked()
}

// Release drops the lock. The lock file is left in place; removing it would
// let a concurrent starter lock a different inode under the same name.
func (l *Lock) Release() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
