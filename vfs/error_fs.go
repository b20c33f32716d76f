package vfs

import (
	"io"
	"math/rand"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrorFSMode is a bit field selecting which operation types get errors
// injected by an errorFS.
type ErrorFSMode int

const (
	// ErrorFSRead injects errors on reads.
	ErrorFSRead ErrorFSMode = 1 << iota
	// ErrorFSWrite injects errors on writes.
	ErrorFSWrite
)

// ErrInjected is returned by an errorFS-wrapped operation chosen for
// injection.
var ErrInjected = errors.New("vfs: injected error")

// NewErrorFS wraps fs so that, after *countdown matching operations have
// gone through, the next one (or, if prob > 0, a randomly sampled
// fraction of matching operations) fails with ErrInjected. Used to
// exercise the store's I/O error paths deterministically.
func NewErrorFS(fs FS, countdown *int32, prob float64, mode ErrorFSMode) FS {
	return &errorFS{FS: fs, countdown: countdown, prob: prob, mode: mode}
}

type errorFS struct {
	FS
	countdown *int32
	prob      float64
	mode      ErrorFSMode
}

func (fs *errorFS) maybeErr(mode ErrorFSMode) error {
	if fs.mode&mode == 0 {
		return nil
	}
	if fs.countdown != nil && atomic.AddInt32(fs.countdown, -1) == -1 {
		return ErrInjected
	}
	if fs.prob > 0 && rand.Float64() < fs.prob {
		return ErrInjected
	}
	return nil
}

func (fs *errorFS) Create(name string) (File, error) {
	if err := fs.maybeErr(ErrorFSWrite); err != nil {
		return nil, err
	}
	f, err := fs.FS.Create(name)
	if err != nil {
		return nil, err
	}
	return &errorFile{File: f, fs: fs}, nil
}

func (fs *errorFS) OpenReadWrite(name string) (File, error) {
	if err := fs.maybeErr(ErrorFSWrite); err != nil {
		return nil, err
	}
	f, err := fs.FS.OpenReadWrite(name)
	if err != nil {
		return nil, err
	}
	return &errorFile{File: f, fs: fs}, nil
}

func (fs *errorFS) Open(name string, opts ...OpenOption) (File, error) {
	if err := fs.maybeErr(ErrorFSRead); err != nil {
		return nil, err
	}
	f, err := fs.FS.Open(name, opts...)
	if err != nil {
		return nil, err
	}
	return &errorFile{File: f, fs: fs}, nil
}

type errorFile struct {
	File
	fs *errorFS
}

func (f *errorFile) Read(p []byte) (int, error) {
	if err := f.fs.maybeErr(ErrorFSRead); err != nil {
		return 0, err
	}
	return f.File.Read(p)
}

func (f *errorFile) ReadAt(p []byte, off int64) (int, error) {
	if err := f.fs.maybeErr(ErrorFSRead); err != nil {
		return 0, err
	}
	return f.File.ReadAt(p, off)
}

func (f *errorFile) Write(p []byte) (int, error) {
	if err := f.fs.maybeErr(ErrorFSWrite); err != nil {
		return 0, err
	}
	return f.File.Write(p)
}

func (f *errorFile) WriteAt(p []byte, off int64) (int, error) {
	if err := f.fs.maybeErr(ErrorFSWrite); err != nil {
		return 0, err
	}
	return f.File.WriteAt(p, off)
}

var _ io.Closer = (*errorFile)(nil)
