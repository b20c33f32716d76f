package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// openGrowHint reproduces the exact bitmap shape File.Open leaves behind
// for a store with totalBlockCount blocks: length totalBlockCount+2,
// freeUseBitNum equal to that length.
func openGrowHint(totalBlockCount int) *allocator {
	p := newBitmapPair()
	p.used.Reserve(totalBlockCount + 1)
	p.used.Set(totalBlockCount+1, false)
	p.valid.Reserve(totalBlockCount + 1)
	p.valid.Set(totalBlockCount+1, false)
	p.freeUseBitNum = p.used.Length()
	return newAllocator(p)
}

func TestAllocateThenFreeBoundaryScenario(t *testing.T) {
	a := openGrowHint(0)

	require.Equal(t, 0, a.allocateBlock())
	require.Equal(t, 1, a.allocateBlock())
	a.freeBlock(0)
	require.Equal(t, 0, a.allocateBlock())
	require.Equal(t, 0, a.bitmap.freeUseBitNum)
}

func TestAllocateBlockReturnsUniqueBlocksUntilFreed(t *testing.T) {
	a := openGrowHint(0)
	seen := make(map[int]bool)
	for i := 0; i < 20; i++ {
		b := a.allocateBlock()
		require.Falsef(t, seen[b], "allocateBlock() returned duplicate %d on call %d", b, i)
		seen[b] = true
	}
}

func TestAllocateBlockSetsUsedBit(t *testing.T) {
	a := openGrowHint(0)
	b := a.allocateBlock()
	require.True(t, a.bitmap.getUsedBlockInfo(b))
	a.freeBlock(b)
	require.False(t, a.bitmap.getUsedBlockInfo(b))
}

func TestFreeUseBitNumMatchesZeroCount(t *testing.T) {
	a := openGrowHint(5)
	for i := 0; i < 8; i++ {
		a.allocateBlock()
	}
	a.freeBlock(1)
	a.freeBlock(3)
	require.Equal(t, a.bitmap.used.CountZeros(), a.bitmap.freeUseBitNum)
}
