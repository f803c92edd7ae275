// pattern: Functional Core

package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	// ErrNotFound reports a start directory that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied reports a directory or marker that cannot be read.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidMarker reports a workspace marker that exists but is malformed.
	ErrInvalidMarker = errors.New("invalid workspace marker")

	errNotDirectory = errors.New("not a directory")
	errEmptyStart   = errors.New("empty start directory")
)

// Error describes a failed resolution. Kind is one of the sentinel errors
// above, or nil for unexpected filesystem failures; Err is the underlying cause.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// fsError classifies a filesystem error from op on path. A PathError is
// unwrapped since op and path are already recorded.
func fsError(op, path string, err error) error {
	var perr *fs.PathError
	if errors.As(err, &perr) {
		err = perr.Err
	}
	var kind error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	case op == "stat" && errors.Is(err, syscall.ENOTDIR):
		// A file somewhere in the path: the directory cannot exist.
		kind = ErrNotFound
	}
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

func invalidMarker(path string, err error) error {
	return &Error{Op: "parse", Path: path, Kind: ErrInvalidMarker, Err: err}
}
