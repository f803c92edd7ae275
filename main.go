// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"wsroot/internal/cli"
	"wsroot/internal/config"
	"wsroot/internal/logging"
	"wsroot/internal/resolver"
)

var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run parses global flags, wires config, logging and the resolver, then
// dispatches to the CLI. It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wsroot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	fs.SetInterspersed(false)

	configDir := fs.StringP("config-dir", "c", "", "config directory (default: ~/.config/wsroot)")
	verbose := fs.BoolP("verbose", "v", false, "also write logs to stderr")
	ceilings := fs.StringArray("ceiling", nil, "directory the walk never goes above (repeatable)")

	fs.Usage = func() {
		cli.BuildApp(version, cli.Env{Out: stdout, Err: stderr}).PrintHelp(stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to load config: %v\n", err)
	}

	dataDir := config.DataDir(*configDir)

	logCfg := logging.Config{
		FilePath:   filepath.Join(dataDir, "wsroot.log"),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
	}
	if *verbose {
		logCfg.Console = stderr
		logCfg.Level = "debug"
	}

	logManager, err := logging.NewManager(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return cli.ExitError
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Debug("starting", "version", version, "args", fs.Args(), "data_dir", dataDir)

	res := resolver.New(resolverOptions(cfg, *ceilings, logManager)...)

	app := cli.BuildApp(version, cli.Env{
		Out:       stdout,
		Err:       stderr,
		Context:   ctx,
		Resolver:  res,
		Logs:      logManager,
		DataDir:   dataDir,
		Theme:     cfg.Theme,
		ScanPaths: cfg.ResolveScanPaths(),
	})

	code := app.Execute(fs.Args())
	appLogger.Debug("exiting", "code", code)
	return code
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// resolverOptions merges config file ceilings, the environment and --ceiling flags.
func resolverOptions(cfg config.Config, flagCeilings []string, logs logging.LoggerProvider) []resolver.Option {
	ceilings := cfg.ResolvedCeilings()
	for _, dir := range flagCeilings {
		ceilings = append(ceilings, config.ExpandPath(dir))
	}
	return []resolver.Option{
		resolver.WithCeilings(ceilings...),
		resolver.WithVCSMarkers(cfg.Markers.VCS...),
		resolver.WithWorkspaceMarkers(cfg.Markers.Workspace...),
		resolver.WithLogger(logs.For("resolver")),
	}
}
