// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	flag "github.com/spf13/pflag"

	"wsroot/internal/discovery"
	"wsroot/internal/instance"
	"wsroot/internal/logging"
	"wsroot/internal/resolver"
	"wsroot/internal/watch"
)

// Env carries the process-wide dependencies commands run against.
type Env struct {
	Out       io.Writer
	Err       io.Writer
	Context   context.Context
	Resolver  *resolver.Resolver
	Logs      logging.LoggerProvider
	DataDir   string   // Holds the lock and published root files
	Theme     string   // Catppuccin flavor for explain
	ScanPaths []string // Default directories for scan
}

func (e *Env) fillDefaults() {
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Err == nil {
		e.Err = os.Stderr
	}
	if e.Context == nil {
		e.Context = context.Background()
	}
	if e.Resolver == nil {
		e.Resolver = resolver.New()
	}
	if e.Logs == nil {
		e.Logs = nopProvider{}
	}
}

type nopProvider struct{}

func (nopProvider) For(string) *logging.ScopedLogger { return logging.NopLogger() }

// BuildApp creates and configures the CLI application with all commands.
func BuildApp(version string, env Env) *App {
	env.fillDefaults()
	app := NewApp(version)
	app.SetStderr(env.Err)

	app.AddCommand(&Command{
		Name:    "resolve",
		Summary: "Print the workspace root of each directory",
		Usage:   "Usage: wsroot resolve [--json] [dir...]",
		Run: func(args []string) error {
			return runResolve(env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "explain",
		Summary: "Show every directory inspected and why the root was chosen",
		Usage:   "Usage: wsroot explain [--plain] [dir]",
		Run: func(args []string) error {
			return runExplain(env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "watch",
		Summary: "Print the root again whenever it changes",
		Usage:   "Usage: wsroot watch [--json] [--publish] [--poll <interval>] [dir]",
		Run: func(args []string) error {
			return runWatch(env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "scan",
		Summary: "List the workspace roots of directories one level below each path",
		Usage:   "Usage: wsroot scan [--json] [path...]",
		Run: func(args []string) error {
			return runScan(env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "current",
		Summary: "Print the root published by a running 'watch --publish'",
		Usage:   "Usage: wsroot current [--json]",
		Run: func(args []string) error {
			return runCurrent(env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/root files from a crashed watcher",
		Usage:   "Usage: wsroot cleanup",
		Run: func(args []string) error {
			return runCleanup(env)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: wsroot version",
		Run: func(args []string) error {
			_, err := fmt.Fprintln(env.Out, version)
			return err
		},
	})

	app.SetDefault("resolve")
	return app
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// singleDir returns the optional directory argument, defaulting to ".".
func singleDir(fs *flag.FlagSet) (string, error) {
	switch fs.NArg() {
	case 0:
		return ".", nil
	case 1:
		return fs.Arg(0), nil
	default:
		return "", fmt.Errorf("%s takes at most one directory, got %d", fs.Name(), fs.NArg())
	}
}

func printResult(w io.Writer, res resolver.Result, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(res)
	}
	_, err := fmt.Fprintf(w, "%s\t%s\n", res.Root, res.Classification)
	return err
}

type failedResolution struct {
	Start string `json:"start"`
	Error string `json:"error"`
}

func runResolve(env Env, args []string) error {
	fs := newFlagSet("resolve")
	asJSON := fs.Bool("json", false, "print one JSON object per directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	starts := fs.Args()
	if len(starts) == 0 {
		starts = []string{"."}
	}

	var errs []error
	for _, o := range env.Resolver.ResolveAll(starts) {
		if o.Err != nil {
			errs = append(errs, o.Err)
			if *asJSON {
				if err := json.NewEncoder(env.Out).Encode(failedResolution{Start: o.Start, Error: o.Err.Error()}); err != nil {
					return err
				}
			}
			continue
		}
		if err := printResult(env.Out, o.Result, *asJSON); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func runExplain(env Env, args []string) error {
	fs := newFlagSet("explain")
	plain := fs.Bool("plain", false, "disable colors and styling escapes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir, err := singleDir(fs)
	if err != nil {
		return err
	}

	res, err := env.Resolver.Resolve(dir)
	if err != nil {
		return err
	}

	out := renderExplain(NewStyles(env.Theme, lipgloss.NewRenderer(env.Out)), res)
	if *plain {
		out = ansi.Strip(out)
	}
	_, err = fmt.Fprintln(env.Out, out)
	return err
}

// renderExplain lists each inspected directory, start first, followed by a
// summary box with the decision.
func renderExplain(s *Styles, res resolver.Result) string {
	var b strings.Builder
	b.WriteString(s.TitleStyle().Render("wsroot explain"))
	b.WriteString("\n")
	b.WriteString(s.MutedStyle().Render("start " + res.Start))
	b.WriteString("\n\n")

	for _, step := range res.Steps {
		line := "  " + s.DirStyle().Render(step.Dir)
		if step.WorkspaceMarker != "" {
			line += "  " + s.WorkspaceStyle().Render("workspace "+filepath.Base(step.WorkspaceMarker))
		}
		if step.VCSMarker != "" {
			label := "boundary " + filepath.Base(step.VCSMarker)
			if res.Classification != resolver.VersionControlBoundary || step.Dir != res.Root {
				label += " (ignored)"
			}
			line += "  " + s.BoundaryStyle().Render(label)
		}
		if step.Dir == res.Root {
			line += "  " + s.RootStyle().Render("<- root")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("root            %s\nclassification  %s", res.Root, res.Classification)
	if res.Marker != "" {
		summary += "\nmarker          " + res.Marker
	}
	b.WriteString("\n")
	b.WriteString(s.BoxStyle().Render(summary))
	return b.String()
}

func runWatch(env Env, args []string) error {
	fs := newFlagSet("watch")
	asJSON := fs.Bool("json", false, "print one JSON object per change")
	publish := fs.Bool("publish", false, "publish the root for 'wsroot current'")
	poll := fs.Duration("poll", watch.DefaultPollInterval, "re-resolve interval for missed events (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir, err := singleDir(fs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(env.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := env.Logs.For("watch")

	if *publish {
		fl, err := instance.Lock(env.DataDir)
		if err != nil {
			return err
		}
		defer instance.Cleanup(env.DataDir, fl)
		logger.Info("publishing root", "data_dir", env.DataDir)
	}

	interval := *poll
	if interval <= 0 {
		interval = -time.Second
	}
	w, err := watch.New(env.Resolver, watch.Config{Start: dir, PollInterval: interval}, logger)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for ev := range w.Events() {
		if ev.Err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", ev.Err)
			if *publish {
				if err := instance.ClearRoot(env.DataDir); err != nil {
					logger.Error("failed to clear published root", "error", err)
				}
			}
			continue
		}
		if *publish {
			if err := instance.WriteRoot(env.DataDir, ev.Result); err != nil {
				logger.Error("failed to publish root", "error", err)
			}
		}
		if err := printResult(env.Out, ev.Result, *asJSON); err != nil {
			stop()
			<-done
			return err
		}
	}

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runScan(env Env, args []string) error {
	fs := newFlagSet("scan")
	asJSON := fs.Bool("json", false, "print one JSON object per project")
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = env.ScanPaths
	}
	if len(paths) == 0 {
		return fmt.Errorf("no scan paths: pass directories or set scan_paths in config")
	}

	scanner := discovery.NewScanner(env.Resolver, nil, env.Logs.For("scan"))
	projects, failures := scanner.ScanAll(paths)

	for _, p := range projects {
		var err error
		if *asJSON {
			err = json.NewEncoder(env.Out).Encode(p)
		} else {
			_, err = fmt.Fprintf(env.Out, "%s\t%s\t%d\n", p.Root, p.Classification, len(p.Members))
		}
		if err != nil {
			return err
		}
	}

	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

func runCurrent(env Env, args []string) error {
	fs := newFlagSet("current")
	asJSON := fs.Bool("json", false, "print a JSON object")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := instance.Current(env.DataDir)
	if err != nil {
		return err
	}
	return printResult(env.Out, res, *asJSON)
}

// runCleanup removes stale lock and root files from a crashed watcher.
func runCleanup(env Env) error {
	// Acquiring the lock proves no watcher is actually running.
	fl, err := instance.Lock(env.DataDir)
	if err != nil {
		return fmt.Errorf("a wsroot watcher appears to be running, stop it first: %w", err)
	}
	instance.Cleanup(env.DataDir, fl)
	_, err = fmt.Fprintln(env.Out, "Cleaned up stale lock and root files.")
	return err
}
