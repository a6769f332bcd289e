package domain

import (
	"errors"
	"fmt"
)

// ErrConfiguration classifies every malformed-tree error (see ConfigurationError).
var ErrConfiguration = errors.New("configuration error")

// ErrTreeFailed is returned by a tree that already surfaced a configuration error.
var ErrTreeFailed = errors.New("tree failed")

// ErrSnapshotNotFound is returned when no snapshot is stored for a tree ID.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ConfigurationError reports a malformed node: a missing transition rule, an
// empty composite, an invalid policy threshold. It is fatal to the tree instance.
type ConfigurationError struct {
	Node   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error in %q: %s", e.Node, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrConfiguration) hold for every ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Misconfigured builds a *ConfigurationError for node.
func Misconfigured(node string, format string, args ...any) error {
	return &ConfigurationError{Node: node, Reason: fmt.Sprintf(format, args...)}
}
