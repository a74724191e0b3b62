package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// PermissionError is returned when delta-ego cannot read or write its
// configuration file or the directory holding it.
type PermissionError struct {
	Path string
	Op   string // "read" or "write"

	// Reason says which check failed, e.g. "config file is read-only".
	Reason string

	// Mode holds the permission bits seen on Path; zero when unknown.
	Mode os.FileMode

	// Fix is a platform-specific command that resolves the problem.
	Fix string
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("delta-ego cannot %s its config: %s\n", e.Op, e.Path)
	if e.Reason != "" {
		msg += e.Reason + "\n"
	}
	if e.Mode != 0 {
		msg += fmt.Sprintf("Current permissions: %04o\n", e.Mode.Perm())
	}
	msg += "💡 Fix: " + e.Fix
	return msg
}

// ConfigNotFoundError is returned by LoadFrom when no file exists at Path.
// LoadOrDefault and LoadOrCreate treat it as "use the defaults".
type ConfigNotFoundError struct {
	Path string

	// FromEnv is set when Path came from $DELTA_EGO_CONFIG.
	FromEnv bool
}

// Hint suggests how to get a configuration in place.
func (e *ConfigNotFoundError) Hint() string {
	if e.FromEnv {
		return fmt.Sprintf("%s points at a missing file; run 'delta-ego init' or unset it", EnvConfigPath)
	}
	return "Run 'delta-ego init' to create a default configuration"
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint())
}

// ValidationError lists every invalid field Validate found, one problem
// per entry in the form "section.field: reason".
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "\n")
}

// InvalidConfigError is returned when a config file cannot be decoded or
// holds values the search and ego engines would reject.
type InvalidConfigError struct {
	Path string

	// Problems are the individual defects, one per invalid field or a
	// single decoder message.
	Problems []string
	Hint     string

	err error
}

// newInvalidConfigError wraps err for path, flattening a *ValidationError
// into its problem list.
func newInvalidConfigError(path string, err error, hint string) *InvalidConfigError {
	e := &InvalidConfigError{Path: path, Hint: hint, err: err}
	var verr *ValidationError
	if errors.As(err, &verr) {
		e.Problems = verr.Problems
	} else {
		e.Problems = []string{err.Error()}
	}
	return e
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	for _, p := range e.Problems {
		msg += "  " + p + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}

func (e *InvalidConfigError) Unwrap() error {
	return e.err
}
