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

const (
	lockFileName = "wsroot.lock"
	rootFileName = "wsroot.root"
)

// Lock acquires an exclusive file lock so only one publishing watcher runs
// per data dir. Returns the flock handle (caller must defer Cleanup) or an
// error if another watcher already holds the lock.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another wsroot watcher is already publishing to %s", dataDir)
	}
	return fl, nil
}

// WriteRoot publishes the latest resolution as JSON. The file is replaced
// atomically so readers never see a partial write.
func WriteRoot(dataDir string, res resolver.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dataDir, rootFileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dataDir, rootFileName))
}

// ClearRoot removes the published root, e.g. while resolution is failing.
func ClearRoot(dataDir string) error {
	err := os.Remove(filepath.Join(dataDir, rootFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Cleanup removes the root file and releases the file lock.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = ClearRoot(dataDir)
	if fl != nil {
		_ = fl.Unlock()
	}
}
