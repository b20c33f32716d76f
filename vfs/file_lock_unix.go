//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package vfs

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Lock implements FS.Lock using flock(2) advisory locking, matching the
// original checkpoint file's per-split lock-for-the-lifetime-of-the-open
// contract. The lock is held on a descriptor of its own and is released
// only when the returned Closer is closed.
func (defaultFS) Lock(name string) (io.Closer, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, err
	}
	return &unixFileLock{f: f}, nil
}

type unixFileLock struct {
	f *os.File
}

func (l *unixFileLock) Close() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
