package checkpoint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dendrite-db/checkpointfile/vfs"
)

func newTestFS(t *testing.T, dirs ...string) *vfs.MemFS {
	t.Helper()
	fs := vfs.NewMem()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d, 0755))
	}
	return fs
}

func TestFreshSingleFileStoreBoundaryScenario(t *testing.T) {
	fs := newTestFS(t, "/tmp/cp")
	cfg := Config{
		BlockExp:   16,
		PgID:       3,
		SplitCount: 1,
		Dirs:       []string{"/tmp/cp"},
	}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	fresh, err := f.Open(false, true)
	require.NoError(t, err)
	require.True(t, fresh)
	require.True(t, fs.Exists("/tmp/cp/gs_cp_3_1.dat"))

	size, err := f.GetFileSize()
	require.NoError(t, err)
	require.EqualValues(t, 0, size)
}

func TestSplitAddressingBoundaryScenario(t *testing.T) {
	fs := newTestFS(t, "/cp")
	cfg := Config{
		BlockExp:   10, // 1 KiB
		PgID:       1,
		SplitCount: 3,
		StripeSize: 2,
		Dirs:       []string{"/cp"},
	}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)

	splitIndex, fileOffset := f.layout.Resolve(f.layout.ByteOffset(5))
	require.Equal(t, 2, splitIndex)
	require.EqualValues(t, 1024, fileOffset)

	splitIndex, fileOffset = f.layout.Resolve(f.layout.ByteOffset(7))
	require.Equal(t, 0, splitIndex)
	require.EqualValues(t, 3072, fileOffset)
}

func TestWriteReadRoundTripAcrossStripeBoundary(t *testing.T) {
	fs := newTestFS(t, "/cp")
	cfg := Config{
		BlockExp:   10,
		PgID:       1,
		SplitCount: 3,
		StripeSize: 2,
		Dirs:       []string{"/cp"},
	}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)

	pattern1 := bytes.Repeat([]byte{0xAB}, 1024)
	pattern2 := bytes.Repeat([]byte{0xCD}, 1024)

	_, err = f.WriteBlock(pattern1, 1, 1)
	require.NoError(t, err)
	_, err = f.WriteBlock(pattern2, 1, 2)
	require.NoError(t, err)

	buf1 := make([]byte, 1024)
	_, err = f.ReadBlock(buf1, 1, 1)
	require.NoError(t, err)
	require.Equal(t, pattern1, buf1)

	buf2 := make([]byte, 1024)
	_, err = f.ReadBlock(buf2, 1, 2)
	require.NoError(t, err)
	require.Equal(t, pattern2, buf2)
}

func TestAllocateThenFreeThenAllocateViaFacade(t *testing.T) {
	fs := newTestFS(t, "/cp")
	cfg := Config{BlockExp: 16, PgID: 3, SplitCount: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)

	b0 := f.AllocateBlock()
	b1 := f.AllocateBlock()
	require.NotEqual(t, b0, b1)
	f.FreeBlock(b0)
	b2 := f.AllocateBlock()
	require.Equal(t, b0, b2)
	require.EqualValues(t, 0, f.FreeUseBitNum())
}

func TestTruncateResetsState(t *testing.T) {
	fs := newTestFS(t, "/cp")
	cfg := Config{BlockExp: 16, PgID: 3, SplitCount: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)

	buf := bytes.Repeat([]byte{1}, 1<<16)
	_, err = f.WriteBlock(buf, 1, 0)
	require.NoError(t, err)
	f.AllocateBlock()

	require.NoError(t, f.Truncate())
	require.EqualValues(t, 0, f.BlockNum())
	require.EqualValues(t, 0, f.FreeUseBitNum())

	size, err := f.GetFileSize()
	require.NoError(t, err)
	require.EqualValues(t, 0, size)
}

func TestReclamationLeavesFileSizeUnchanged(t *testing.T) {
	fs := newTestFS(t, "/cp")
	cfg := Config{BlockExp: 12, PgID: 1, SplitCount: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)

	buf := make([]byte, 1<<12)
	blocks := make([]int64, 0, 100)
	for i := 0; i < 100; i++ {
		b := f.AllocateBlock()
		_, err := f.WriteBlock(buf, 1, b)
		require.NoError(t, err)
		blocks = append(blocks, b)
	}
	for _, b := range []int64{5, 17, 42} {
		f.FreeBlock(blocks[b])
	}

	before, err := f.GetFileSize()
	require.NoError(t, err)
	require.NoError(t, f.ZerofillUnusedBlock())
	after, err := f.GetFileSize()
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestReclamationShrinksAllocatedSizeOnRealFilesystem(t *testing.T) {
	if !vfs.HolePunchSupported() {
		t.Skip("hole punching not supported on this platform")
	}
	dir := t.TempDir()
	cfg := Config{BlockExp: 16, PgID: 1, SplitCount: 1, Dirs: []string{dir}}
	f, err := New(cfg, vfs.Default)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)
	defer f.Close()

	buf := bytes.Repeat([]byte{0x7A}, 1<<16)
	blocks := make([]int64, 0, 64)
	for i := 0; i < 64; i++ {
		b := f.AllocateBlock()
		_, err := f.WriteBlock(buf, 1, b)
		require.NoError(t, err)
		blocks = append(blocks, b)
	}
	for _, b := range blocks[:60] {
		f.FreeBlock(b)
	}

	before, err := f.GetFileAllocateSize()
	require.NoError(t, err)
	require.NoError(t, f.ZerofillUnusedBlock())
	after, err := f.GetFileAllocateSize()
	require.NoError(t, err)
	require.Less(t, after, before)

	size, err := f.GetFileSize()
	require.NoError(t, err)
	require.EqualValues(t, 64<<16, size)
}

func TestReadBlockReturnsZeroForNeverWrittenSplit(t *testing.T) {
	// Deliberately skip Open: every split's file is untouched and every
	// splitHandle.file is nil, matching the "not yet opened, doesn't
	// exist on disk" state readBlock is specified to tolerate.
	fs := newTestFS(t, "/cp")
	cfg := Config{BlockExp: 10, PgID: 1, SplitCount: 3, StripeSize: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	f.blockNum = 10 // simulate a logically-extended store spanning unopened splits

	buf := make([]byte, 1024)
	n, err := f.ReadBlock(buf, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestReadBlockOffByOnePreservedQuirk(t *testing.T) {
	fs := newTestFS(t, "/cp")
	cfg := Config{BlockExp: 12, PgID: 1, SplitCount: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.NoError(t, err)

	pattern := bytes.Repeat([]byte{0x42}, 1<<12)
	_, err = f.WriteBlock(make([]byte, 1<<12), 1, 0)
	require.NoError(t, err)
	_, err = f.WriteBlock(pattern, 1, 1)
	require.NoError(t, err)

	// The file physically holds 2 blocks, but pretend blockNum only
	// advanced to 1 (as could happen if metadata lagged an extending
	// write). Reading blockNo == blockNum with sizeBlocks == 1 is one
	// block past what blockNum reports, but the preserved off-by-one
	// check accepts the request rather than rejecting it up front.
	f.blockNum = 1

	buf := make([]byte, 1<<12)
	_, err = f.ReadBlock(buf, 1, 1)
	require.NoError(t, err)
	require.Equal(t, pattern, buf)
}

func TestCheckOnlyOpenFailsWhenFileMissing(t *testing.T) {
	fs := newTestFS(t, "/cp")
	cfg := Config{BlockExp: 16, PgID: 9, SplitCount: 1, Dirs: []string{"/cp"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(true, false)
	require.Error(t, err)
	require.Equal(t, KindFileNotFound, Kind(err))
}

func TestOpenFailsOnInvalidDirectory(t *testing.T) {
	fs := vfs.NewMem() // /nope is never created
	cfg := Config{BlockExp: 16, PgID: 9, SplitCount: 1, Dirs: []string{"/nope"}}
	f, err := New(cfg, fs)
	require.NoError(t, err)
	_, err = f.Open(false, true)
	require.Error(t, err)
	require.Equal(t, KindInvalidDirectory, Kind(err))
}
