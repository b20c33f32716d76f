package vfs

// fder is implemented by File implementations backed by a real OS file
// descriptor. Memory-backed test files do not implement it.
type fder interface {
	Fd() uintptr
}

// PunchHole deallocates the byte range [offset, offset+length) of f while
// preserving its apparent length. It is a silent no-op if f is not backed
// by a real file descriptor, if the platform lacks hole-punching support,
// or if length is zero.
func PunchHole(f File, offset, length int64) error {
	if length <= 0 {
		return nil
	}
	fd, ok := f.(fder)
	if !ok {
		return nil
	}
	return punchHole(fd.Fd(), offset, length)
}

// HolePunchSupported reports whether PunchHole can do real work on this
// platform.
func HolePunchSupported() bool { return holePunchSupported }

// Advise passes an access-pattern hint to the OS for f's underlying page
// cache entries. It is best-effort: failures should be logged by the
// caller, never propagated.
func Advise(f File, advice Advice) error {
	fd, ok := f.(fder)
	if !ok {
		return nil
	}
	return fadvise(fd.Fd(), advice)
}

// WithFd returns wrapped, upgraded to also implement fder by forwarding
// to original's descriptor, if original is fd-backed. File wrappers
// (disk-health checking, error injection, ...) otherwise hide the
// underlying descriptor from PunchHole and Advise, silently turning
// hole-punch reclamation into a no-op once a wrapper is installed.
func WithFd(original, wrapped File) File {
	fd, ok := original.(fder)
	if !ok {
		return wrapped
	}
	return &fdForwardingFile{File: wrapped, fd: fd.Fd()}
}

// fdForwardingFile pairs a wrapper's File behavior with a descriptor
// captured from the file it wraps, so both survive a chain of wrapping.
type fdForwardingFile struct {
	File
	fd uintptr
}

func (f *fdForwardingFile) Fd() uintptr { return f.fd }
