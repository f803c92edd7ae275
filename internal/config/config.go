package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"wsroot/internal/logging"
)

// CeilingEnvVar holds extra ceiling directories, separated by os.PathListSeparator.
const CeilingEnvVar = "WSROOT_CEILING_DIRECTORIES"

type Config struct {
	LogLevel  string        `yaml:"log_level"`
	Theme     string        `yaml:"theme"`
	Ceilings  []string      `yaml:"ceilings"`
	ScanPaths []string      `yaml:"scan_paths"`
	Markers   MarkersConfig `yaml:"markers"`
}

type MarkersConfig struct {
	VCS       []string `yaml:"vcs"`
	Workspace []string `yaml:"workspace"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Theme:    "mocha",
		Markers: MarkersConfig{
			VCS: []string{".git", ".hg"},
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir loads config.yaml from the given directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", configPath, err)
	}

	defaults := DefaultConfig()
	if cfg.Theme == "" {
		cfg.Theme = defaults.Theme
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if len(cfg.Markers.VCS) == 0 {
		cfg.Markers.VCS = defaults.Markers.VCS
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks values the resolver and logger cannot interpret.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got: %s", c.LogLevel)
	}
	for _, name := range append(append([]string(nil), c.Markers.VCS...), c.Markers.Workspace...) {
		if err := validateMarkerName(name); err != nil {
			return err
		}
	}
	return nil
}

// ResolvedCeilings returns configured ceilings plus those from the environment,
// with ~ expanded. Empty entries are dropped.
func (c *Config) ResolvedCeilings() []string {
	return c.ResolvedCeilingsWith(os.Getenv(CeilingEnvVar))
}

// ResolvedCeilingsWith is ResolvedCeilings with an explicit environment value.
func (c *Config) ResolvedCeilingsWith(env string) []string {
	var dirs []string
	for _, dir := range c.Ceilings {
		if dir != "" {
			dirs = append(dirs, ExpandPath(dir))
		}
	}
	for _, dir := range filepath.SplitList(env) {
		if dir != "" {
			dirs = append(dirs, ExpandPath(dir))
		}
	}
	return dirs
}

// ResolveScanPaths returns scan_paths with ~ expanded. Empty entries are dropped.
func (c *Config) ResolveScanPaths() []string {
	var dirs []string
	for _, dir := range c.ScanPaths {
		if dir != "" {
			dirs = append(dirs, ExpandPath(dir))
		}
	}
	return dirs
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// DataDir returns the directory for the log, lock and root files.
// If configDir is specified, uses that; otherwise the directory holding config.yaml.
func DataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return filepath.Dir(getConfigPath())
}

func validateMarkerName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("marker names must be plain file names, got: %q", name)
	}
	return nil
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wsroot", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "wsroot", "config.yaml")
	}

	return filepath.Join(home, ".config", "wsroot", "config.yaml")
}
