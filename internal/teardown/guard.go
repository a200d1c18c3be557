// Package teardown removes a redirection symlink, and only a symlink.
package teardown

// If something is not a symlink, DO NOT TOUCH IT.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects what a successful teardown removes
type Mode string

const (
	// ModeTarget removes the directory tree the link resolves to, then the link.
	ModeTarget Mode = "target"

	// ModeLink removes only the link entry.
	ModeLink Mode = "link"
)

// ParseMode validates a mode string
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTarget, ModeLink:
		return Mode(s), nil
	case "":
		return ModeTarget, nil
	default:
		return "", fmt.Errorf("invalid teardown mode %q (want %q or %q)", s, ModeTarget, ModeLink)
	}
}

// Filesystem calls, replaced in tests to act between the checks.
var (
	lstat        = os.Lstat
	evalSymlinks = filepath.EvalSymlinks
)

// Guard performs the check-then-remove sequence
type Guard struct {
	Mode Mode

	// Reverify re-reads the link metadata right before removal
	Reverify bool
}

// NewGuard creates a guard. Zero mode means ModeTarget.
func NewGuard(mode Mode, reverify bool) *Guard {
	if mode == "" {
		mode = ModeTarget
	}
	return &Guard{Mode: mode, Reverify: reverify}
}

// Teardown removes path if, and only if, path itself is a symlink.
// The link itself is inspected with Lstat, never its target.
func (g *Guard) Teardown(path string) error {
	if err := checkSymlink(path); err != nil {
		return err
	}

	// Resolve before anything is removed. Only a missing target is dangling.
	target, resolveErr := evalSymlinks(path)
	dangling := errors.Is(resolveErr, fs.ErrNotExist)
	if g.Mode != ModeLink && resolveErr != nil && !dangling {
		return newError(KindRemovalFailed, path, fmt.Errorf("resolve link: %w", resolveErr))
	}

	if g.Reverify {
		if err := checkSymlink(path); err != nil {
			return err
		}
	}

	if g.Mode != ModeLink && resolveErr == nil {
		if containsLink(target, path) {
			return newError(KindRemovalFailed, path, fmt.Errorf("link resolves to %s, which contains the link itself", target))
		}
		if err := os.RemoveAll(target); err != nil {
			return newError(KindRemovalFailed, path, fmt.Errorf("remove target %s: %w", target, err))
		}
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return newError(KindRemovalFailed, path, fmt.Errorf("remove link: %w", err))
	}

	return nil
}

func checkSymlink(path string) error {
	info, err := lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(KindPathMissing, path, nil)
		}
		return newError(KindPathMissing, path, err)
	}
	if !isLink(path, info) {
		return newError(KindNotASymlink, path, nil)
	}
	return nil
}

// containsLink reports whether removing target would also remove the
// directory holding link (a link to "/" or to one of its own ancestors).
func containsLink(target, link string) bool {
	parent, err := filepath.Abs(filepath.Dir(link))
	if err != nil {
		return true
	}
	if resolved, err := filepath.EvalSymlinks(parent); err == nil {
		parent = resolved
	}
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	rel, err := filepath.Rel(target, parent)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
