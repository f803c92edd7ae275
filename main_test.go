package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wsroot/internal/cli"
	"wsroot/internal/config"
)

func runWith(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_ResolveWritesLogFile(t *testing.T) {
	configDir := t.TempDir()
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(base, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runWith(t, "-c", configDir, "--ceiling", base, "resolve", sub)
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	if want := base + "\tvcs-boundary\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}

	data, err := os.ReadFile(filepath.Join(configDir, "wsroot.log"))
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"resolved root"`) {
		t.Errorf("log file missing resolver decision:\n%s", data)
	}
	if !strings.Contains(string(data), `"logger":"resolver"`) {
		t.Errorf("log file missing resolver scope:\n%s", data)
	}
}

func TestRun_ConfigMarkersAndCeilings(t *testing.T) {
	configDir := t.TempDir()
	base := t.TempDir()
	workspace := filepath.Join(base, "ws")
	pkg := filepath.Join(workspace, "pkg")
	if err := os.MkdirAll(pkg, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "turbo.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	cfgYAML := "ceilings: [" + base + "]\nmarkers:\n  workspace: [turbo.json]\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(cfgYAML), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runWith(t, "-c", configDir, "resolve", pkg)
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	if want := workspace + "\tworkspace-marker\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestRun_EnvCeiling(t *testing.T) {
	base := t.TempDir()
	start := filepath.Join(base, "a", "b")
	if err := os.MkdirAll(start, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.CeilingEnvVar, filepath.Join(base, "a"))

	code, stdout, stderr := runWith(t, "-c", t.TempDir(), "resolve", start)
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	if want := start + "\tfallback\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestRun_InvalidConfigWarnsAndContinues(t *testing.T) {
	configDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("log_level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runWith(t, "-c", configDir, "version")
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if stdout != "dev\n" {
		t.Errorf("stdout = %q, want %q", stdout, "dev\n")
	}
	if !strings.Contains(stderr, "Warning: failed to load config") {
		t.Errorf("stderr = %q, want config warning", stderr)
	}
}

func TestRun_NotFoundExitCode(t *testing.T) {
	code, _, stderr := runWith(t, "-c", t.TempDir(), "resolve", "/nonexistent/path")
	if code != cli.ExitNotFound {
		t.Errorf("exit code = %d, want %d", code, cli.ExitNotFound)
	}
	if !strings.Contains(stderr, "not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_VerboseTeesLogsToStderr(t *testing.T) {
	base := t.TempDir()
	code, _, stderr := runWith(t, "-c", t.TempDir(), "-v", "--ceiling", base, "resolve", base)
	if code != cli.ExitOK {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stderr, "inspected directory") {
		t.Errorf("verbose stderr should include debug walk logs, got %q", stderr)
	}
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runWith(t, "--help")
	if code != cli.ExitOK {
		t.Errorf("exit code = %d, want %d", code, cli.ExitOK)
	}
	for _, want := range []string{"Usage: wsroot", "resolve", "explain", "--ceiling"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("help missing %q:\n%s", want, stderr)
		}
	}
}
