//go:build windows

package teardown

import "os"

// Directory junctions report ModeIrregular rather than ModeSymlink.
// Accept them when they still read back as a link.
func isLink(path string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink != 0 {
		return true
	}
	if info.Mode()&os.ModeIrregular == 0 {
		return false
	}
	_, err := os.Readlink(path)
	return err == nil
}
