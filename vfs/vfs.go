// Package vfs abstracts the filesystem operations the checkpoint store
// depends on, so that tests can substitute an in-memory implementation and
// so that the store never imports the os package directly.
package vfs

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// File is a readable, writable, positionable sequence of bytes backed by
// the filesystem. Typically it is an *os.File, but test code substitutes
// memory-backed implementations.
type File interface {
	io.Closer
	io.Reader
	io.ReaderAt
	io.Writer
	io.WriterAt
	Stat() (os.FileInfo, error)
	Sync() error
}

// OpenOption does work on a file handle after it's opened.
type OpenOption interface {
	Apply(File)
}

// FS is a namespace for files.
//
// Names are filepath names: they may be / separated or \ separated,
// depending on the underlying operating system.
type FS interface {
	// Create creates the named file for reading and writing, truncating it
	// if it already exists.
	Create(name string) (File, error)

	// OpenReadWrite opens the named file for reading and writing, creating
	// it if it does not already exist. It does not truncate an existing
	// file.
	OpenReadWrite(name string) (File, error)

	// Open opens the named file for reading. opts is applied to the
	// resulting handle.
	Open(name string, opts ...OpenOption) (File, error)

	// OpenDir opens the named directory for syncing.
	OpenDir(name string) (File, error)

	// Remove removes the named file or directory.
	Remove(name string) error

	// Rename renames a file, overwriting the destination if it exists.
	Rename(oldname, newname string) error

	// MkdirAll creates a directory and all necessary parents. If the
	// directory already exists, MkdirAll does nothing.
	MkdirAll(dir string, perm os.FileMode) error

	// Lock takes an advisory exclusive lock on the named file, creating it
	// if necessary. A nil Closer is returned if an error occurred;
	// otherwise close the returned Closer to release the lock.
	//
	// On Unix platforms this is flock(2) on a descriptor Lock opens for
	// itself, so closing any other descriptor for the same file leaves the
	// lock in place. Locking a file that is already locked fails, even
	// from the current process.
	Lock(name string) (io.Closer, error)

	// List returns the names of the entries in dir, relative to dir.
	List(dir string) ([]string, error)

	// Stat returns information describing the named file.
	Stat(name string) (os.FileInfo, error)

	// Exists reports whether name exists.
	Exists(name string) bool

	// IsDir reports whether name exists and is a directory.
	IsDir(name string) bool

	// PathBase returns the last element of path.
	PathBase(path string) string

	// PathDir returns all but the last element of path.
	PathDir(path string) string

	// PathJoin joins path elements into a single path, adding separators
	// as necessary.
	PathJoin(elem ...string) string
}

// Default is the FS backed by the operating system's real filesystem.
var Default FS = defaultFS{}

type defaultFS struct{}

func (defaultFS) Create(name string) (File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC|syscall.O_CLOEXEC, 0666)
}

func (defaultFS) OpenReadWrite(name string) (File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|syscall.O_CLOEXEC, 0666)
}

func (defaultFS) Open(name string, opts ...OpenOption) (File, error) {
	f, err := os.OpenFile(name, os.O_RDONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt.Apply(f)
	}
	return f, nil
}

func (defaultFS) OpenDir(name string) (File, error) {
	return os.OpenFile(name, os.O_RDONLY|syscall.O_CLOEXEC, 0)
}

func (defaultFS) Remove(name string) error {
	return os.Remove(name)
}

func (defaultFS) Rename(oldname, newname string) error {
	return os.Rename(oldname, newname)
}

func (defaultFS) MkdirAll(dir string, perm os.FileMode) error {
	return os.MkdirAll(dir, perm)
}

func (defaultFS) List(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

func (defaultFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (defaultFS) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (defaultFS) IsDir(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.IsDir()
}

func (defaultFS) PathBase(path string) string {
	return filepath.Base(path)
}

func (defaultFS) PathDir(path string) string {
	return filepath.Dir(path)
}

func (defaultFS) PathJoin(elem ...string) string {
	return filepath.Join(elem...)
}

type randomReadsOption struct{}

// RandomReadsOption is an OpenOption that calls fadvise(POSIX_FADV_RANDOM)
// on the opened file to disable readahead. Only effective against
// defaultFS.
var RandomReadsOption OpenOption = randomReadsOption{}

// Apply implements OpenOption.
func (randomReadsOption) Apply(f File) {
	if osFile, ok := f.(*os.File); ok {
		_ = fadvise(osFile.Fd(), AdviseRandom)
	}
}
