//go:build darwin || dragonfly || freebsd || netbsd || openbsd || solaris

package vfs

import "golang.org/x/sys/unix"

// FileSystemBlockSize returns the allocation unit of the filesystem
// containing path, as reported by statfs(2).
func FileSystemBlockSize(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bsize), nil
}
