//go:build windows

package vfs

import "errors"

// FileSystemBlockSize is not implemented on Windows; it always returns an
// error.
func FileSystemBlockSize(path string) (int64, error) {
	return 0, errors.New("vfs: FileSystemBlockSize is not implemented on windows")
}
