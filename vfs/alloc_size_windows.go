//go:build windows

package vfs

import "os"

// AllocatedSize returns fi.Size() on Windows, where logical and physical
// file size are treated as equal.
func AllocatedSize(fi os.FileInfo) int64 {
	return fi.Size()
}
