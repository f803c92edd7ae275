// pattern: Imperative Shell

package resolver

import (
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"wsroot/internal/logging"
)

// maxParallel bounds the concurrent walks started by ResolveAll.
const maxParallel = 16

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs sets the filesystem the resolver reads from. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithCeilings sets directories above which the walk never goes. A ceiling is
// itself still inspected. Relative paths are made absolute; unusable ones are dropped.
func WithCeilings(dirs ...string) Option {
	return func(r *Resolver) {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				continue
			}
			r.ceilings[abs] = true
		}
	}
}

// WithVCSMarkers replaces the entry names that mark a repository boundary.
func WithVCSMarkers(names ...string) Option {
	return func(r *Resolver) {
		if len(names) > 0 {
			r.vcsMarkers = append([]string(nil), names...)
		}
	}
}

// WithWorkspaceMarkers adds file names whose mere presence marks a workspace root.
// They are checked after pnpm-workspace.yaml and package.json.
func WithWorkspaceMarkers(names ...string) Option {
	return func(r *Resolver) {
		r.extraMarkers = append(r.extraMarkers, names...)
	}
}

// WithLogger sets the logger used for walk tracing.
func WithLogger(logger *logging.ScopedLogger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver finds the logical monorepo root for a directory. It is immutable
// after New and safe for concurrent use.
type Resolver struct {
	fs           afero.Fs
	ceilings     map[string]bool
	vcsMarkers   []string
	extraMarkers []string
	logger       *logging.ScopedLogger
}

// New creates a Resolver with the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		fs:         afero.NewOsFs(),
		ceilings:   make(map[string]bool),
		vcsMarkers: append([]string(nil), DefaultVCSMarkers...),
		logger:     logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MarkerNames returns every entry name that can influence a resolution.
func (r *Resolver) MarkerNames() []string {
	names := []string{PnpmWorkspaceFile, PackageJSONFile}
	names = append(names, r.extraMarkers...)
	return append(names, r.vcsMarkers...)
}

// Resolve walks upward from startDir and returns the directory that should be
// treated as the monorepo root. A valid workspace marker wins immediately;
// otherwise the nearest version-control boundary wins; otherwise startDir.
// The filesystem is only read, never written.
func (r *Resolver) Resolve(startDir string) (Result, error) {
	if startDir == "" {
		return Result{}, &Error{Op: "resolve", Path: startDir, Kind: ErrNotFound, Err: errEmptyStart}
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return Result{}, &Error{Op: "resolve", Path: startDir, Err: err}
	}

	info, err := r.fs.Stat(start)
	if err != nil {
		return Result{}, fsError("stat", start, err)
	}
	if !info.IsDir() {
		return Result{}, &Error{Op: "stat", Path: start, Kind: ErrNotFound, Err: errNotDirectory}
	}

	result := Result{Start: start}
	var nearestVCS, nearestVCSMarker string

	dir := start
	for {
		names, err := r.entries(dir)
		if err != nil {
			return Result{}, err
		}

		marker, err := r.workspaceMarker(dir, names)
		if err != nil {
			return Result{}, err
		}
		step := Step{Dir: dir, WorkspaceMarker: marker, VCSMarker: r.vcsMarker(dir, names)}
		result.Steps = append(result.Steps, step)
		r.logger.Debug("inspected directory",
			"dir", dir, "workspace_marker", step.WorkspaceMarker, "vcs_marker", step.VCSMarker)

		if marker != "" {
			result.Root = dir
			result.Classification = WorkspaceMarker
			result.Marker = marker
			r.logDecision(result)
			return result, nil
		}
		if step.VCSMarker != "" && nearestVCS == "" {
			nearestVCS = dir
			nearestVCSMarker = step.VCSMarker
		}

		if r.IsCeiling(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if nearestVCS != "" {
		result.Root = nearestVCS
		result.Classification = VersionControlBoundary
		result.Marker = nearestVCSMarker
	} else {
		result.Root = start
		result.Classification = Fallback
	}
	r.logDecision(result)
	return result, nil
}

// IsCeiling reports whether dir is a configured ceiling.
func (r *Resolver) IsCeiling(dir string) bool {
	return r.ceilings[filepath.Clean(dir)]
}

// ResolveAll resolves each start directory concurrently, at most maxParallel
// at a time, and returns the outcomes in input order. A failed start does not
// stop the others.
func (r *Resolver) ResolveAll(starts []string) []Outcome {
	outcomes := make([]Outcome, len(starts))
	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, start := range starts {
		g.Go(func() error {
			res, err := r.Resolve(start)
			outcomes[i] = Outcome{Start: start, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// entries lists the names in dir. Unreadable directories are an error, not a skip.
func (r *Resolver) entries(dir string) (map[string]bool, error) {
	f, err := r.fs.Open(dir)
	if err != nil {
		return nil, fsError("open", dir, err)
	}
	defer func() { _ = f.Close() }()

	list, err := f.Readdirnames(-1)
	if err != nil {
		return nil, fsError("readdir", dir, err)
	}
	names := make(map[string]bool, len(list))
	for _, name := range list {
		names[name] = true
	}
	return names, nil
}

// workspaceMarker returns the path of the first valid workspace marker in dir.
func (r *Resolver) workspaceMarker(dir string, names map[string]bool) (string, error) {
	if names[PnpmWorkspaceFile] {
		path := filepath.Join(dir, PnpmWorkspaceFile)
		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return "", fsError("read", path, err)
		}
		if _, err := ParsePnpmWorkspace(data); err != nil {
			return "", invalidMarker(path, err)
		}
		return path, nil
	}

	if names[PackageJSONFile] {
		path := filepath.Join(dir, PackageJSONFile)
		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return "", fsError("read", path, err)
		}
		_, declared, err := ParsePackageJSON(data)
		if err != nil {
			return "", invalidMarker(path, err)
		}
		if declared {
			return path, nil
		}
	}

	for _, name := range r.extraMarkers {
		if names[name] {
			return filepath.Join(dir, name), nil
		}
	}
	return "", nil
}

func (r *Resolver) vcsMarker(dir string, names map[string]bool) string {
	for _, name := range r.vcsMarkers {
		if names[name] {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

func (r *Resolver) logDecision(res Result) {
	r.logger.Info("resolved root",
		"start", res.Start,
		"root", res.Root,
		"classification", res.Classification.String(),
		"marker", res.Marker,
		"inspected", len(res.Steps))
}
