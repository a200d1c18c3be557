package cleaner

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// Target is the watched process and the redirection it guards.
// Immutable for the lifetime of a run.
type Target struct {
	PID  int32
	Path string
}

// ValidationError is returned before any polling starts
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %s: %v", e.Field, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseTarget builds a Target from the two positional arguments
func ParseTarget(pidArg, pathArg string) (Target, error) {
	pid, err := strconv.ParseInt(pidArg, 10, 32)
	if err != nil {
		return Target{}, &ValidationError{Field: "pid", Value: pidArg, Reason: "not a process id", Err: err}
	}
	return Target{PID: int32(pid), Path: pathArg}, nil
}

// Validate checks the target against the expected folder name
func (t Target) Validate(expectedName string) error {
	if t.PID <= 0 {
		return &ValidationError{Field: "pid", Value: strconv.Itoa(int(t.PID)), Reason: "must be positive"}
	}
	if filepath.Base(filepath.Clean(t.Path)) != expectedName {
		return &ValidationError{Field: "path", Value: t.Path, Reason: "directory name is not " + expectedName}
	}
	return nil
}
