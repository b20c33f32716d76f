//go:build windows

package vfs

import "io"

// Lock is a no-op on Windows: advisory exclusive locking is only
// specified for non-Windows platforms, so callers on Windows get a
// closer that does nothing rather than a locking implementation.
func (defaultFS) Lock(name string) (io.Closer, error) {
	return io.NopCloser(nil), nil
}
