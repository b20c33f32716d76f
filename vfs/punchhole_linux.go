//go:build linux

package vfs

import "golang.org/x/sys/unix"

// errHolePunchNotSupported is the error fallocate(2) reports when the
// underlying filesystem does not support FALLOC_FL_PUNCH_HOLE.
//
// punchHole maps it to nil, so the reclaimer degrades to a no-op
// reclamation pass rather than failing the checkpoint.
var errHolePunchNotSupported = unix.ENOTSUP

// punchHole deallocates the byte range [offset, offset+length) of the file
// backing fd while preserving the file's apparent length, producing a
// sparse region. It is the Linux fallocate(2) FALLOC_FL_PUNCH_HOLE mode.
func punchHole(fd uintptr, offset, length int64) error {
	err := unix.Fallocate(int(fd), unix.FALLOC_FL_PUNCH_HOLE|unix.FALLOC_FL_KEEP_SIZE, offset, length)
	if err == errHolePunchNotSupported {
		return nil
	}
	return err
}

// holePunchSupported is true on platforms where punchHole can do real work.
const holePunchSupported = true
