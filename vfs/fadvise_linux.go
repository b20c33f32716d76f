//go:build linux

package vfs

import "golang.org/x/sys/unix"

// Advice is a hint passed to fadvise(2) about future access patterns.
type Advice int32

const (
	// AdviseNormal has no special hint.
	AdviseNormal Advice = unix.FADV_NORMAL
	// AdviseRandom disables readahead.
	AdviseRandom Advice = unix.FADV_RANDOM
	// AdviseDontNeed tells the kernel the range is no longer needed and may
	// be evicted from the page cache.
	AdviseDontNeed Advice = unix.FADV_DONTNEED
)

func fadvise(fd uintptr, advice Advice) error {
	return unix.Fadvise(int(fd), 0, 0, int(advice))
}
