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

const lockRetryDelay = 100 * time.Millisecond

// StatePath resolves the local state database path. An empty value selects
// $HOME/.config/acvora/acvora.sqlite.
func StatePath(configured string) (string, error) {
	if configured == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "acvora", "acvora.sqlite"), nil
	}
	return filepath.Abs(configured)
}

// WithStateLock runs fn while holding the write lock next to the state
// database at statePath. Saved-course toggles and cache rewrites from
// concurrent acvora processes are serialized this way.
func WithStateLock(ctx context.Context, statePath string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return err
	}
	lock := flock.New(statePath + ".lock")

	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock local state %s: %w", statePath, err)
	}
	if !locked {
		Log.Warn("Another acvora process is updating saved courses, waiting for it to finish...")
		if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
			return fmt.Errorf("failed to lock local state %s: %w", statePath, err)
		}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			Log.Debugf("Could not release state lock: %v", err)
		}
	}()
	return fn()
}
