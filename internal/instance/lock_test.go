package instance

import (
	"os"
	"path/filepath"
	"testing"

	"wsroot/internal/resolver"
)

func TestLockAndCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	// First lock should succeed and create the data dir
	fl, err := Lock(dir)
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	if fl == nil {
		t.Fatal("Lock() returned nil flock")
	}

	// Second lock should fail
	if _, err := Lock(dir); err == nil {
		t.Fatal("second Lock() should have failed")
	}

	res := resolver.Result{
		Start:          "/tmp/t/parent/child/src",
		Root:           "/tmp/t/parent/child",
		Classification: resolver.VersionControlBoundary,
		Marker:         "/tmp/t/parent/child/.git",
	}
	if err := WriteRoot(dir, res); err != nil {
		t.Fatalf("WriteRoot() failed: %v", err)
	}

	rootPath := filepath.Join(dir, rootFileName)
	if _, err := os.Stat(rootPath); err != nil {
		t.Fatalf("root file not found: %v", err)
	}

	// Cleanup should remove root file and release lock
	Cleanup(dir, fl)

	if _, err := os.Stat(rootPath); !os.IsNotExist(err) {
		t.Fatal("root file should have been removed after Cleanup")
	}

	fl2, err := Lock(dir)
	if err != nil {
		t.Fatalf("Lock() after Cleanup should succeed: %v", err)
	}
	Cleanup(dir, fl2)
}

func TestWriteRoot_Replaces(t *testing.T) {
	dir := t.TempDir()

	first := resolver.Result{Root: "/a", Classification: resolver.Fallback}
	second := resolver.Result{Root: "/b", Classification: resolver.WorkspaceMarker, Marker: "/b/pnpm-workspace.yaml"}

	if err := WriteRoot(dir, first); err != nil {
		t.Fatalf("WriteRoot(first) failed: %v", err)
	}
	if err := WriteRoot(dir, second); err != nil {
		t.Fatalf("WriteRoot(second) failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != rootFileName {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("data dir entries = %v, want only %s", names, rootFileName)
	}

	data, err := os.ReadFile(filepath.Join(dir, rootFileName))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"start":"","root":"/b","classification":"workspace-marker","marker":"/b/pnpm-workspace.yaml"}` + "\n"
	if string(data) != want {
		t.Errorf("root file = %q, want %q", string(data), want)
	}
}

func TestClearRoot(t *testing.T) {
	dir := t.TempDir()

	if err := ClearRoot(dir); err != nil {
		t.Fatalf("ClearRoot() on empty dir: %v", err)
	}
	if err := WriteRoot(dir, resolver.Result{Root: "/a"}); err != nil {
		t.Fatal(err)
	}
	if err := ClearRoot(dir); err != nil {
		t.Fatalf("ClearRoot() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, rootFileName)); !os.IsNotExist(err) {
		t.Error("root file should be gone after ClearRoot")
	}
}
