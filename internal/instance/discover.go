// pattern: Imperative Shell
package instance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"wsroot/internal/resolver"
)

// Current returns the root published by a running watcher. Returns an error
// if no watcher holds the lock or the root file is missing or unreadable.
func Current(dataDir string) (resolver.Result, error) {
	// Try to acquire the lock. If we succeed, no watcher is running.
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return resolver.Result{}, fmt.Errorf("failed to check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return resolver.Result{}, fmt.Errorf("no running wsroot watcher found (start 'wsroot watch --publish' first)")
	}

	data, err := os.ReadFile(filepath.Join(dataDir, rootFileName))
	if err != nil {
		return resolver.Result{}, fmt.Errorf("wsroot watcher detected but root file missing (try 'wsroot cleanup'): %w", err)
	}

	var res resolver.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return resolver.Result{}, fmt.Errorf("wsroot root file is corrupt (try 'wsroot cleanup'): %w", err)
	}
	if res.Root == "" {
		return resolver.Result{}, fmt.Errorf("wsroot root file is empty (try 'wsroot cleanup')")
	}
	return res, nil
}
