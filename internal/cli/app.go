// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"wsroot/internal/resolver"
)

// Exit codes returned by Execute.
const (
	ExitOK               = 0
	ExitError            = 1
	ExitNotFound         = 2
	ExitPermissionDenied = 3
	ExitInvalidMarker    = 4
)

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// App represents the top-level CLI application.
type App struct {
	commands map[string]*Command
	order    []string
	fallback string
	version  string
	stderr   io.Writer
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		commands: make(map[string]*Command),
		version:  version,
		stderr:   os.Stderr,
	}
}

// SetStderr redirects help and error output.
func (a *App) SetStderr(w io.Writer) {
	if w != nil {
		a.stderr = w
	}
}

// AddCommand registers a command. Help lists commands in registration order.
func (a *App) AddCommand(cmd *Command) {
	if _, ok := a.commands[cmd.Name]; !ok {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// SetDefault names the command run when no command is given.
func (a *App) SetDefault(name string) {
	a.fallback = name
}

// Execute dispatches the CLI arguments to the appropriate command and
// returns the process exit code.
func (a *App) Execute(args []string) int {
	if len(args) == 0 {
		if a.fallback == "" {
			a.PrintHelp(a.stderr)
			return ExitError
		}
		args = []string{a.fallback}
	}

	switch args[0] {
	case "help", "--help", "-h":
		a.PrintHelp(a.stderr)
		return ExitOK
	}

	cmd, ok := a.commands[args[0]]
	if !ok {
		fmt.Fprintf(a.stderr, "unknown command %q\n\n", args[0])
		a.PrintHelp(a.stderr)
		return ExitError
	}

	err := cmd.Run(args[1:])
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(a.stderr, "%s\n", cmd.Usage)
		return ExitOK
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
	}
	return ExitCode(err)
}

// ExitCode maps an error to the process exit code for its failure kind.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, resolver.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, resolver.ErrPermissionDenied):
		return ExitPermissionDenied
	case errors.Is(err, resolver.ErrInvalidMarker):
		return ExitInvalidMarker
	default:
		return ExitError
	}
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: wsroot [options] [command]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range a.order {
		cmd := a.commands[name]
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	if a.fallback != "" {
		fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Same as \""+a.fallback+"\"")
	}
	fmt.Fprintf(w, "\nUse \"wsroot <command> --help\" for command details.\n\n")
	fmt.Fprintf(w, "Options:\n")
}
