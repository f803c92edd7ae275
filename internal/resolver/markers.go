// pattern: Functional Core

package resolver

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	// PnpmWorkspaceFile declares a pnpm workspace root.
	PnpmWorkspaceFile = "pnpm-workspace.yaml"
	// PackageJSONFile declares an npm/yarn workspace root when it has a
	// "workspaces" field.
	PackageJSONFile = "package.json"
)

// DefaultVCSMarkers are the entries that make a directory a repository boundary.
// Both directories and files count (git worktrees and submodules use a .git file).
var DefaultVCSMarkers = []string{".git", ".hg"}

// ParsePnpmWorkspace validates a pnpm-workspace.yaml document and returns its
// package globs. An empty document is valid and declares no packages.
func ParsePnpmWorkspace(data []byte) ([]string, error) {
	var doc struct {
		Packages any `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	globs, err := packageGlobs(doc.Packages)
	if err != nil {
		return nil, fmt.Errorf("packages: %w", err)
	}
	return globs, nil
}

// ParsePackageJSON reports whether a package.json declares workspaces and
// returns the declared globs. Comments and trailing commas are tolerated.
// Both the array form and the yarn object form ({"packages": [...]}) are accepted.
func ParsePackageJSON(data []byte) (globs []string, declared bool, err error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, false, err
	}
	raw, ok := doc["workspaces"]
	if !ok {
		return nil, false, nil
	}

	var workspaces any
	if err := json.Unmarshal(raw, &workspaces); err != nil {
		return nil, true, fmt.Errorf("workspaces: %w", err)
	}

	switch w := workspaces.(type) {
	case []any:
		globs, err = packageGlobs(w)
	case map[string]any:
		pkgs, ok := w["packages"]
		if !ok {
			return nil, true, errors.New("workspaces: object form requires a packages field")
		}
		globs, err = packageGlobs(pkgs)
	default:
		return nil, true, fmt.Errorf("workspaces: expected array or object, got %s", typeName(workspaces))
	}
	if err != nil {
		return nil, true, fmt.Errorf("workspaces: %w", err)
	}
	return globs, true, nil
}

// packageGlobs checks that v is absent or a list of non-empty strings.
func packageGlobs(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of globs, got %s", typeName(v))
	}
	globs := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected string, got %s", i, typeName(item))
		}
		if s == "" {
			return nil, fmt.Errorf("entry %d: empty glob", i)
		}
		globs = append(globs, s)
	}
	return globs, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
