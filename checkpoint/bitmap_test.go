package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetUsedBlockInfoTracksFreeCount(t *testing.T) {
	p := newBitmapPair()
	p.initializeUsedBlockInfo(4)
	require.Equal(t, 4, p.freeUseBitNum)

	p.setUsedBlockInfo(1, true)
	require.Equal(t, 3, p.freeUseBitNum)

	// Setting an already-true bit true again must not double-count.
	p.setUsedBlockInfo(1, true)
	require.Equal(t, 3, p.freeUseBitNum)

	p.setUsedBlockInfo(1, false)
	require.Equal(t, 4, p.freeUseBitNum)
}

func TestValidBitmapIndependentOfUsed(t *testing.T) {
	p := newBitmapPair()
	p.initializeUsedBlockInfo(4)
	p.initializeValidBlockInfo(4)
	p.setUsedBlockInfo(2, true)
	require.False(t, p.getValidBlockInfo(2))

	p.setValidBlockInfo(2, true)
	require.True(t, p.getUsedBlockInfo(2))
	require.True(t, p.getValidBlockInfo(2))
}

func TestTruncateEmptiesBitmaps(t *testing.T) {
	p := newBitmapPair()
	p.initializeUsedBlockInfo(10)
	p.setUsedBlockInfo(3, true)
	p.truncate()
	require.Equal(t, 0, p.used.Length())
	require.Equal(t, 0, p.valid.Length())
	require.Equal(t, 0, p.freeUseBitNum)
}
