// pattern: Functional Core

package resolver

import "fmt"

// Classification records why a directory was chosen as the root.
type Classification int

const (
	// Fallback means no marker was found; the start directory is the root.
	Fallback Classification = iota
	// VersionControlBoundary means the nearest repository boundary is the root.
	VersionControlBoundary
	// WorkspaceMarker means a workspace configuration file declared the root.
	WorkspaceMarker
)

// String returns the stable name used in text and JSON output.
func (c Classification) String() string {
	switch c {
	case Fallback:
		return "fallback"
	case VersionControlBoundary:
		return "vcs-boundary"
	case WorkspaceMarker:
		return "workspace-marker"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	switch c {
	case Fallback, VersionControlBoundary, WorkspaceMarker:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("unknown classification %d", int(c))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Classification) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fallback":
		*c = Fallback
	case "vcs-boundary":
		*c = VersionControlBoundary
	case "workspace-marker":
		*c = WorkspaceMarker
	default:
		return fmt.Errorf("unknown classification %q", string(text))
	}
	return nil
}

// Step is one directory inspected during the upward walk.
type Step struct {
	Dir             string // Absolute directory path
	WorkspaceMarker string // Path of a valid workspace marker in Dir, if any
	VCSMarker       string // Path of a version-control marker in Dir, if any
}

// Result is the outcome of a single resolution.
type Result struct {
	Start          string         `json:"start"`
	Root           string         `json:"root"`
	Classification Classification `json:"classification"`
	Marker         string         `json:"marker,omitempty"`

	// Steps lists every inspected directory, start first.
	Steps []Step `json:"-"`
}

// Same reports whether two results chose the same root for the same reason.
func (r Result) Same(other Result) bool {
	return r.Root == other.Root &&
		r.Classification == other.Classification &&
		r.Marker == other.Marker
}

// Outcome pairs a start directory with its result or error.
type Outcome struct {
	Start  string
	Result Result
	Err    error
}
