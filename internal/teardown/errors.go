package teardown

import (
	"errors"
	"fmt"
)

// Kind categorizes why a teardown did not happen
type Kind int

const (
	KindPathMissing Kind = iota + 1
	KindNotASymlink
	KindRemovalFailed
)

func (k Kind) String() string {
	switch k {
	case KindPathMissing:
		return "path_missing"
	case KindNotASymlink:
		return "not_a_symlink"
	case KindRemovalFailed:
		return "removal_failed"
	default:
		return "unknown"
	}
}

var (
	ErrPathMissing   = errors.New("path missing")
	ErrNotASymlink   = errors.New("path is not a symlink")
	ErrRemovalFailed = errors.New("removal failed")
)

// Error wraps a teardown failure with the path and the underlying cause
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("teardown %s: %s: %v", e.Path, e.sentinel(), e.Err)
	}
	return fmt.Sprintf("teardown %s: %s", e.Path, e.sentinel())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for this kind
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindPathMissing:
		return ErrPathMissing
	case KindNotASymlink:
		return ErrNotASymlink
	default:
		return ErrRemovalFailed
	}
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
