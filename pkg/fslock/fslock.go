// Package fslock provides advisory, process-level file locks used to
// serialize read-modify-write cycles on shared files.
package fslock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock acquires an exclusive lock on path, creating the lock file if needed.
// The returned function releases the lock and must be called exactly once.
func Lock(path string) (func(), error) {
	return acquire(path, true)
}

// RLock acquires a shared lock on path. Multiple readers may hold the lock
// concurrently; writers holding Lock exclude them.
func RLock(path string) (func(), error) {
	return acquire(path, false)
}

func acquire(path string, exclusive bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	fl := flock.New(path, flock.SetPermissions(0o644))

	lock := fl.RLock
	if exclusive {
		lock = fl.Lock
	}
	if err := lock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	return func() {
		_ = fl.Unlock()
		_ = fl.Close()
	}, nil
}
