package checkpoint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dendrite-db/checkpointfile/vfs"
)

// TestWriteBlockSurfacesInjectedIOError drives a write through an
// error-injecting FS and checks the failure comes back classified as
// KindIoError with the underlying injected error still reachable via
// errors.Is, rather than being swallowed or misclassified.
func TestWriteBlockSurfacesInjectedIOError(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.MkdirAll("/cp", 0755))

	// countdown=1 lets Open's single OpenReadWrite call through, then
	// fails the very next write-mode operation: the WriteBlock call below.
	countdown := int32(1)
	fs := vfs.NewErrorFS(mem, &countdown, 0, vfs.ErrorFSWrite)

	cfg := Config{BlockExp: 12, PgID: 1, SplitCount: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)

	buf := make([]byte, 1<<12)
	_, err = f.WriteBlock(buf, 1, 0)
	require.Error(t, err)
	require.Equal(t, KindIoError, Kind(err))
	require.True(t, errors.Is(err, vfs.ErrInjected))
}

// TestReadBlockCleanReadCountsNoRetries checks that ReadRetryCount starts
// at zero and stays there for a clean read, establishing the baseline the
// EINTR-retry accounting in readAllAt is measured against.
func TestReadBlockCleanReadCountsNoRetries(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.MkdirAll("/cp", 0755))

	cfg := Config{BlockExp: 12, PgID: 1, SplitCount: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, mem)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)
	_, err = f.WriteBlock(make([]byte, 1<<12), 1, 0)
	require.NoError(t, err)

	buf := make([]byte, 1<<12)
	_, err = f.ReadBlock(buf, 1, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, f.ReadRetryCount())
}
