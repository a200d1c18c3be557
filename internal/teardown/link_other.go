//go:build !windows

package teardown

import "os"

func isLink(path string, info os.FileInfo) bool {
	return info.Mode()&os.ModeSymlink != 0
}
