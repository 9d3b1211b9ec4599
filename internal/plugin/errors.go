package plugin

import (
	"errors"
	"fmt"
)

// ErrAlreadyInstalled rejects an install whose content hash or claimed
// extensions collide with an existing record. Nothing is modified when
// an install fails with it.
var ErrAlreadyInstalled = errors.New("plugin already installed")

// ErrNotFound rejects an uninstall referencing an unknown plugin id.
var ErrNotFound = errors.New("plugin not installed")

// ErrNotRegularFile reports a stored plugin path that exists but is not
// a regular file, so it cannot be safely deleted.
var ErrNotRegularFile = errors.New("stored plugin path is not a regular file")

// InvalidPluginError reports an artifact that loaded but does not
// satisfy the parser plugin contract. During registry construction it is
// a skip, not an abort.
type InvalidPluginError struct {
	Path   string
	Reason string
}

func (e *InvalidPluginError) Error() string {
	return fmt.Sprintf("invalid plugin %s: %s", e.Path, e.Reason)
}

// LoadError reports an artifact that could not be loaded at all: the
// path is missing, is a directory, or executing the artifact failed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading plugin %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
