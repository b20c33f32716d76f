package vfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFSLockExcludesSecondLocker(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "LOCK")

	closer, err := Default.Lock(name)
	require.NoError(t, err)

	_, err = Default.Lock(name)
	require.Error(t, err)

	require.NoError(t, closer.Close())
}

func TestDefaultFSPathHelpers(t *testing.T) {
	require.Equal(t, "b.dat", Default.PathBase("/a/b.dat"))
	require.Equal(t, "/a", Default.PathDir("/a/b.dat"))
	require.Equal(t, "/a/b.dat", Default.PathJoin("/a", "b.dat"))
}

func TestPunchHoleNoopOnMemFile(t *testing.T) {
	fs := NewMem()
	f, err := fs.Create("/a.dat")
	require.NoError(t, err)
	// memFile does not implement Fd(), so PunchHole must be a silent no-op
	// rather than an error, matching the store's "no-op on platforms
	// lacking support" contract.
	require.NoError(t, PunchHole(f, 0, 4096))
	require.NoError(t, Advise(f, AdviseDontNeed))
}
