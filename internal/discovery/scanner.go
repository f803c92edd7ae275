// pattern: Imperative Shell

package discovery

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"wsroot/internal/logging"
	"wsroot/internal/resolver"
)

// Resolver is the subset of resolver.Resolver the scanner needs.
type Resolver interface {
	ResolveAll(starts []string) []resolver.Outcome
}

// Scanner discovers workspace roots in configured scan paths.
type Scanner struct {
	res    Resolver
	fs     afero.Fs
	logger *logging.ScopedLogger
}

// NewScanner creates a new scanner. A nil fs reads the OS filesystem.
func NewScanner(res Resolver, fs afero.Fs, logger *logging.ScopedLogger) *Scanner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scanner{res: res, fs: fs, logger: logger}
}

// ScanAll walks each path one level deep, resolves every child directory and
// groups the children by root. Hidden directories are skipped, and so are
// children that only resolved to themselves as a fallback. Projects are
// returned in the order their first member was found.
func (s *Scanner) ScanAll(paths []string) ([]Project, []Failure) {
	candidates := s.candidates(paths)
	outcomes := s.res.ResolveAll(candidates)

	var projects []Project
	var failures []Failure
	byRoot := make(map[string]int)

	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, Failure{Path: o.Start, Err: o.Err})
			continue
		}
		if o.Result.Classification == resolver.Fallback {
			continue
		}

		idx, ok := byRoot[o.Result.Root]
		if !ok {
			idx = len(projects)
			byRoot[o.Result.Root] = idx
			projects = append(projects, Project{
				Name:           filepath.Base(o.Result.Root),
				Root:           o.Result.Root,
				Classification: o.Result.Classification,
				Marker:         o.Result.Marker,
			})
		}
		projects[idx].Members = append(projects[idx].Members, o.Start)
	}

	s.logger.Info("scan complete",
		"paths", len(paths), "candidates", len(candidates),
		"projects", len(projects), "failures", len(failures))
	return projects, failures
}

// candidates lists the child directories of every scan path, deduplicated.
func (s *Scanner) candidates(paths []string) []string {
	var dirs []string
	seen := make(map[string]bool)

	for _, scanPath := range paths {
		scanPath, err := filepath.Abs(scanPath)
		if err != nil {
			continue
		}
		entries, err := afero.ReadDir(s.fs, scanPath)
		if err != nil {
			// Skip inaccessible directories
			s.logger.Warn("cannot read scan path", "path", scanPath, "error", err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			dir := filepath.Join(scanPath, entry.Name())
			if seen[dir] {
				continue
			}
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
