package vfs

import (
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// NewMem returns a new memory-backed FS implementation, for use in tests
// that exercise file-layout and bitmap logic without touching the real
// filesystem.
func NewMem() *MemFS {
	return &MemFS{
		dirs:  map[string]bool{"": true, ".": true, "/": true},
		files: map[string]*memNode{},
	}
}

// MemFS is a memory-backed FS implementation. It does not model a real
// directory tree: any path may be created as either a directory (via
// MkdirAll) or a file, and List returns only the files/dirs that were
// explicitly created directly under the given path.
type MemFS struct {
	mu      sync.Mutex
	dirs    map[string]bool
	files   map[string]*memNode
	locked  map[string]bool
}

var _ FS = (*MemFS)(nil)

type memNode struct {
	mu      sync.Mutex
	data    []byte
	modTime time.Time
}

func (m *MemFS) clean(name string) string {
	return path.Clean(strings.ReplaceAll(name, `\`, "/"))
}

func (m *MemFS) Create(name string) (File, error) {
	name = m.clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := &memNode{modTime: time.Now()}
	m.files[name] = n
	return &memFile{n: n, name: name, fs: m, read: true, write: true}, nil
}

func (m *MemFS) OpenReadWrite(name string) (File, error) {
	name = m.clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.files[name]
	if !ok {
		n = &memNode{modTime: time.Now()}
		m.files[name] = n
	}
	return &memFile{n: n, name: name, fs: m, read: true, write: true}, nil
}

func (m *MemFS) Open(name string, opts ...OpenOption) (File, error) {
	name = m.clean(name)
	m.mu.Lock()
	n, ok := m.files[name]
	m.mu.Unlock()
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	f := &memFile{n: n, name: name, fs: m, read: true}
	for _, opt := range opts {
		opt.Apply(f)
	}
	return f, nil
}

func (m *MemFS) OpenDir(name string) (File, error) {
	name = m.clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirs[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	return &memFile{name: name, fs: m, isDir: true}, nil
}

func (m *MemFS) Remove(name string) error {
	name = m.clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if m.dirs[name] {
		delete(m.dirs, name)
		return nil
	}
	return &os.PathError{Op: "remove", Path: name, Err: os.ErrNotExist}
}

func (m *MemFS) Rename(oldname, newname string) error {
	oldname, newname = m.clean(oldname), m.clean(newname)
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.files[oldname]
	if !ok {
		return &os.PathError{Op: "rename", Path: oldname, Err: os.ErrNotExist}
	}
	delete(m.files, oldname)
	m.files[newname] = n
	return nil
}

func (m *MemFS) MkdirAll(dir string, perm os.FileMode) error {
	dir = m.clean(dir)
	m.mu.Lock()
	defer m.mu.Unlock()
	for d := dir; d != "." && d != "/" && d != ""; d = path.Dir(d) {
		m.dirs[d] = true
	}
	return nil
}

func (m *MemFS) Lock(name string) (io.Closer, error) {
	name = m.clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked == nil {
		m.locked = map[string]bool{}
	}
	if m.locked[name] {
		return nil, errors.Newf("vfs: %s already locked", name)
	}
	if _, ok := m.files[name]; !ok {
		m.files[name] = &memNode{modTime: time.Now()}
	}
	m.locked[name] = true
	return &memFileLock{fs: m, name: name}, nil
}

type memFileLock struct {
	fs   *MemFS
	name string
}

func (l *memFileLock) Close() error {
	l.fs.mu.Lock()
	defer l.fs.mu.Unlock()
	delete(l.fs.locked, l.name)
	return nil
}

func (m *MemFS) List(dir string) ([]string, error) {
	dir = m.clean(dir)
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	seen := map[string]bool{}
	var out []string
	for name := range m.files {
		if rest, ok := strings.CutPrefix(name, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			if !seen[rest] {
				seen[rest] = true
				out = append(out, rest)
			}
		}
	}
	for name := range m.dirs {
		if rest, ok := strings.CutPrefix(name, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			if !seen[rest] {
				seen[rest] = true
				out = append(out, rest)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemFS) Stat(name string) (os.FileInfo, error) {
	name = m.clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.files[name]; ok {
		n.mu.Lock()
		defer n.mu.Unlock()
		return &memFileInfo{name: path.Base(name), size: int64(len(n.data)), modTime: n.modTime}, nil
	}
	if m.dirs[name] {
		return &memFileInfo{name: path.Base(name), isDir: true}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
}

func (m *MemFS) Exists(name string) bool {
	_, err := m.Stat(name)
	return err == nil
}

func (m *MemFS) IsDir(name string) bool {
	name = m.clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[name]
}

func (m *MemFS) PathBase(p string) string { return path.Base(p) }
func (m *MemFS) PathDir(p string) string  { return path.Dir(p) }
func (m *MemFS) PathJoin(elem ...string) string {
	return path.Join(elem...)
}

type memFile struct {
	n            *memNode
	name         string
	fs           *MemFS
	pos          int64
	read, write  bool
	isDir        bool
}

func (f *memFile) Close() error { return nil }

func (f *memFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	if !f.read {
		return 0, errors.New("vfs: file not open for reading")
	}
	f.n.mu.Lock()
	defer f.n.mu.Unlock()
	if off >= int64(len(f.n.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.n.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	if !f.write {
		return 0, errors.New("vfs: file not open for writing")
	}
	f.n.mu.Lock()
	defer f.n.mu.Unlock()
	end := off + int64(len(p))
	if end > int64(len(f.n.data)) {
		grown := make([]byte, end)
		copy(grown, f.n.data)
		f.n.data = grown
	}
	copy(f.n.data[off:end], p)
	f.n.modTime = time.Now()
	return len(p), nil
}

func (f *memFile) Stat() (os.FileInfo, error) {
	if f.isDir {
		return &memFileInfo{name: path.Base(f.name), isDir: true}, nil
	}
	f.n.mu.Lock()
	defer f.n.mu.Unlock()
	return &memFileInfo{name: path.Base(f.name), size: int64(len(f.n.data)), modTime: f.n.modTime}, nil
}

func (f *memFile) Sync() error { return nil }

// Truncate resizes the file's data buffer, zero-filling when it grows.
func (f *memFile) Truncate(size int64) error {
	f.n.mu.Lock()
	defer f.n.mu.Unlock()
	if size <= int64(len(f.n.data)) {
		f.n.data = f.n.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, f.n.data)
		f.n.data = grown
	}
	return nil
}

type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() os.FileMode  { return 0666 }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.isDir }
func (fi *memFileInfo) Sys() any           { return nil }
