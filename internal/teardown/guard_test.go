package teardown

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linkName = "hyperbolic-magnetism-beat-saber"

// makeLinkedTree creates <root>/real/{data.txt,sub/nested.txt} and a
// symlink <root>/<linkName> pointing at it.
func makeLinkedTree(t *testing.T) (root, targetDir, link string) {
	t.Helper()

	root = t.TempDir()
	targetDir = filepath.Join(root, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(targetDir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "data.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "sub", "nested.txt"), []byte("y"), 0o644))

	link = filepath.Join(root, linkName)
	if err := os.Symlink(targetDir, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	return root, targetDir, link
}

func TestTeardownRemovesLinkAndTarget(t *testing.T) {
	_, targetDir, link := makeLinkedTree(t)

	err := NewGuard(ModeTarget, true).Teardown(link)
	require.NoError(t, err)

	_, err = os.Lstat(link)
	assert.True(t, errors.Is(err, os.ErrNotExist), "link should be gone, got %v", err)
	_, err = os.Stat(targetDir)
	assert.True(t, errors.Is(err, os.ErrNotExist), "target tree should be gone, got %v", err)
}

func TestTeardownLinkModeKeepsTarget(t *testing.T) {
	_, targetDir, link := makeLinkedTree(t)

	require.NoError(t, NewGuard(ModeLink, false).Teardown(link))

	_, err := os.Lstat(link)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(filepath.Join(targetDir, "sub", "nested.txt"))
	assert.NoError(t, err, "target tree must survive link-only teardown")
}

func TestTeardownRefusesRealDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), linkName)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "keep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep", "save.dat"), []byte("save"), 0o644))

	err := NewGuard(ModeTarget, true).Teardown(dir)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotASymlink))
	var tErr *Error
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, KindNotASymlink, tErr.Kind)
	assert.Equal(t, dir, tErr.Path)

	data, err := os.ReadFile(filepath.Join(dir, "keep", "save.dat"))
	require.NoError(t, err, "directory must be left intact")
	assert.Equal(t, "save", string(data))
}

func TestTeardownRefusesRegularFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), linkName)
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := NewGuard(ModeTarget, true).Teardown(file)
	assert.True(t, errors.Is(err, ErrNotASymlink))

	_, err = os.Stat(file)
	assert.NoError(t, err)
}

func TestTeardownMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), linkName)

	err := NewGuard(ModeTarget, true).Teardown(missing)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathMissing))
	assert.False(t, errors.Is(err, ErrNotASymlink))
}

func TestTeardownDanglingLink(t *testing.T) {
	root := t.TempDir()
	link := filepath.Join(root, linkName)
	if err := os.Symlink(filepath.Join(root, "gone"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	require.NoError(t, NewGuard(ModeTarget, true).Teardown(link))

	_, err := os.Lstat(link)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeTarget, false},
		{"target", ModeTarget, false},
		{"link", ModeLink, false},
		{"everything", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("permission denied")
	err := newError(KindRemovalFailed, "/x/y", cause)

	assert.Equal(t, "teardown /x/y: removal failed: permission denied", err.Error())
	assert.True(t, errors.Is(err, ErrRemovalFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "removal_failed", err.Kind.String())
}

func TestTeardownRefusesLinkToAncestor(t *testing.T) {
	root := t.TempDir()
	parent := filepath.Join(root, "Software")
	require.NoError(t, os.MkdirAll(parent, 0o755))
	link := filepath.Join(parent, linkName)
	if err := os.Symlink(root, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := NewGuard(ModeTarget, true).Teardown(link)

	assert.True(t, errors.Is(err, ErrRemovalFailed))
	_, err = os.Stat(parent)
	assert.NoError(t, err, "ancestor directory must survive")
}

// stubEvalSymlinks swaps the resolver for the duration of the test.
func stubEvalSymlinks(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	orig := evalSymlinks
	evalSymlinks = fn
	t.Cleanup(func() { evalSymlinks = orig })
}

func TestTeardownResolveFailureKeepsTree(t *testing.T) {
	_, targetDir, link := makeLinkedTree(t)
	denied := &os.PathError{Op: "lstat", Path: targetDir, Err: os.ErrPermission}
	stubEvalSymlinks(t, func(string) (string, error) { return "", denied })

	err := NewGuard(ModeTarget, true).Teardown(link)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemovalFailed))
	assert.True(t, errors.Is(err, os.ErrPermission))

	_, err = os.Lstat(link)
	assert.NoError(t, err, "link must stay when its target cannot be resolved")
	_, err = os.Stat(filepath.Join(targetDir, "sub", "nested.txt"))
	assert.NoError(t, err, "target tree must stay")
}

func TestTeardownLinkLoop(t *testing.T) {
	link := filepath.Join(t.TempDir(), linkName)
	if err := os.Symlink(link, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := NewGuard(ModeTarget, true).Teardown(link)
	assert.True(t, errors.Is(err, ErrRemovalFailed), "got %v", err)
	_, err = os.Lstat(link)
	assert.NoError(t, err)

	// Link mode never needs the target.
	require.NoError(t, NewGuard(ModeLink, true).Teardown(link))
	_, err = os.Lstat(link)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTeardownReverifyRefusesSwappedEntry(t *testing.T) {
	_, targetDir, link := makeLinkedTree(t)

	// Between the first check and the removal the link becomes a real directory.
	stubEvalSymlinks(t, func(path string) (string, error) {
		if err := os.Remove(path); err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Join(path, "saves"), 0o755); err != nil {
			return "", err
		}
		return targetDir, nil
	})

	err := NewGuard(ModeTarget, true).Teardown(link)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotASymlink))
	_, err = os.Stat(filepath.Join(link, "saves"))
	assert.NoError(t, err, "swapped directory must be left intact")
	_, err = os.Stat(filepath.Join(targetDir, "data.txt"))
	assert.NoError(t, err, "nothing may be removed after a failed re-check")
}

func TestTeardownWithoutReverifyUsesFirstCheck(t *testing.T) {
	_, targetDir, link := makeLinkedTree(t)
	checks := 0
	orig := lstat
	lstat = func(name string) (os.FileInfo, error) {
		checks++
		return orig(name)
	}
	t.Cleanup(func() { lstat = orig })

	require.NoError(t, NewGuard(ModeTarget, false).Teardown(link))
	assert.Equal(t, 1, checks)

	checks = 0
	_, _, link = makeLinkedTree(t)
	require.NoError(t, NewGuard(ModeTarget, true).Teardown(link))
	assert.Equal(t, 2, checks)

	_, err := os.Stat(targetDir)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
