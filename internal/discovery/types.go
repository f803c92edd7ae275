// pattern: Functional Core

package discovery

import "wsroot/internal/resolver"

// Project is a workspace root found under a scan path.
type Project struct {
	Name           string                  `json:"name"` // Base name of Root
	Root           string                  `json:"root"`
	Classification resolver.Classification `json:"classification"`
	Marker         string                  `json:"marker,omitempty"`
	Members        []string                `json:"members"` // Scanned directories that resolved to Root
}

// Failure records a scanned directory whose resolution failed.
type Failure struct {
	Path string
	Err  error
}
