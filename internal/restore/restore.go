// Package restore puts a backup directory back into the slot a
// redirection symlink used to occupy.
package restore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBackupSuffix is appended to the expected name, after a dot
const DefaultBackupSuffix = "bsmbak"

// Kind categorizes why a restore did not happen
type Kind int

const (
	KindBackupNotFound Kind = iota + 1
	KindRenameFailed
)

func (k Kind) String() string {
	switch k {
	case KindBackupNotFound:
		return "backup_not_found"
	case KindRenameFailed:
		return "rename_failed"
	default:
		return "unknown"
	}
}

var (
	ErrBackupNotFound = errors.New("backup directory not found")
	ErrRenameFailed   = errors.New("rename failed")
)

// Error wraps a restore failure with the backup path and cause
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("restore %s: %s: %v", e.Path, e.sentinel(), e.Err)
	}
	return fmt.Sprintf("restore %s: %s", e.Path, e.sentinel())
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.sentinel() }

func (e *Error) sentinel() error {
	if e.Kind == KindBackupNotFound {
		return ErrBackupNotFound
	}
	return ErrRenameFailed
}

// Restorer renames <parent>/<name>.<suffix> to <parent>/<name>
type Restorer struct {
	Name   string
	Suffix string
}

// NewRestorer creates a restorer for the managed folder name
func NewRestorer(name, suffix string) *Restorer {
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	return &Restorer{Name: name, Suffix: suffix}
}

// BackupPath returns where the backup is expected under parent
func (r *Restorer) BackupPath(parent string) string {
	return filepath.Join(parent, r.Name+"."+r.Suffix)
}

// SlotPath returns the path the backup is restored to
func (r *Restorer) SlotPath(parent string) string {
	return filepath.Join(parent, r.Name)
}

// Restore moves the backup into the slot. It never undoes a teardown;
// a missing backup leaves the filesystem untouched.
func (r *Restorer) Restore(parent string) error {
	backup := r.BackupPath(parent)

	// The backup entry itself must be a directory. A link to one would
	// recreate the redirection.
	info, err := os.Lstat(backup)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Error{Kind: KindBackupNotFound, Path: backup}
		}
		return &Error{Kind: KindBackupNotFound, Path: backup, Err: err}
	}
	if !info.IsDir() {
		return &Error{Kind: KindBackupNotFound, Path: backup, Err: errors.New("not a directory")}
	}

	if err := os.Rename(backup, r.SlotPath(parent)); err != nil {
		return &Error{Kind: KindRenameFailed, Path: backup, Err: err}
	}
	return nil
}
