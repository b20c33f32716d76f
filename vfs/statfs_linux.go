//go:build linux

package vfs

import "golang.org/x/sys/unix"

// FileSystemBlockSize returns the allocation unit of the filesystem
// containing path, as reported by statfs(2).
//
// Frsize (not Bsize) is used because on Linux Bfree/Bavail are counted in
// Frsize units; Bsize can report the "optimal transfer block size" instead
// of the true allocation unit on some filesystems.
func FileSystemBlockSize(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Frsize), nil
}
