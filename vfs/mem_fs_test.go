package vfs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemFSReadWrite(t *testing.T) {
	fs := NewMem()
	f, err := fs.Create("/dir/a.dat")
	require.NoError(t, err)

	n, err := f.WriteAt([]byte("hello"), 10)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = f.ReadAt(buf, 10)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))

	// Bytes before the write are zero-filled (sparse semantics).
	head := make([]byte, 10)
	n, err = f.ReadAt(head, 0)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	for _, b := range head {
		require.Equal(t, byte(0), b)
	}

	require.NoError(t, f.Close())
}

func TestMemFSReadPastEOF(t *testing.T) {
	fs := NewMem()
	f, err := fs.Create("/a.dat")
	require.NoError(t, err)
	_, err = f.WriteAt([]byte("abc"), 0)
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := f.ReadAt(buf, 0)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 3, n)
}

func TestMemFSLock(t *testing.T) {
	fs := NewMem()
	closer, err := fs.Lock("/lock")
	require.NoError(t, err)

	_, err = fs.Lock("/lock")
	require.Error(t, err)

	require.NoError(t, closer.Close())

	closer2, err := fs.Lock("/lock")
	require.NoError(t, err)
	require.NoError(t, closer2.Close())
}

func TestMemFSExistsAndList(t *testing.T) {
	fs := NewMem()
	require.False(t, fs.Exists("/dir"))
	require.NoError(t, fs.MkdirAll("/dir", 0755))
	require.True(t, fs.IsDir("/dir"))

	_, err := fs.Create("/dir/a.dat")
	require.NoError(t, err)
	_, err = fs.Create("/dir/b.dat")
	require.NoError(t, err)

	names, err := fs.List("/dir")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.dat", "b.dat"}, names)
}

func TestMemFSRemoveAndRename(t *testing.T) {
	fs := NewMem()
	_, err := fs.Create("/a.dat")
	require.NoError(t, err)

	require.NoError(t, fs.Rename("/a.dat", "/b.dat"))
	require.False(t, fs.Exists("/a.dat"))
	require.True(t, fs.Exists("/b.dat"))

	require.NoError(t, fs.Remove("/b.dat"))
	require.False(t, fs.Exists("/b.dat"))
}
