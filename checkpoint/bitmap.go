package checkpoint

import "github.com/dendrite-db/checkpointfile/internal/bitset"

// bitmapPair holds the used and valid bitmaps as two independently
// mutated arrays rather than a struct-of-bits, since their access
// patterns diverge: the allocator scans used only, while valid is set
// and cleared entirely by the higher checkpoint layer.
type bitmapPair struct {
	used  *bitset.Set
	valid *bitset.Set

	// freeUseBitNum is the number of zero bits in used. It is maintained
	// solely through setUsedBlockInfo so it never drifts from the
	// bitmap's actual contents.
	freeUseBitNum int
}

func newBitmapPair() *bitmapPair {
	return &bitmapPair{used: bitset.New(0), valid: bitset.New(0)}
}

// initializeUsedBlockInfo resizes used to blockNum, zero-filled, and
// resets freeUseBitNum to blockNum.
func (p *bitmapPair) initializeUsedBlockInfo(blockNum int) {
	p.used = bitset.New(blockNum)
	for i := 0; i < blockNum; i++ {
		p.used.Set(i, false)
	}
	p.freeUseBitNum = blockNum
}

// initializeValidBlockInfo resizes valid to blockNum, zero-filled.
func (p *bitmapPair) initializeValidBlockInfo(blockNum int) {
	p.valid = bitset.New(blockNum)
	for i := 0; i < blockNum; i++ {
		p.valid.Set(i, false)
	}
}

func (p *bitmapPair) getUsedBlockInfo(blockNo int) bool {
	if blockNo >= p.used.Length() {
		return false
	}
	return p.used.Get(blockNo)
}

// setUsedBlockInfo is the single chokepoint that mutates used and keeps
// freeUseBitNum consistent with the bit's old/new value: decremented on a
// 0->1 transition, incremented on a 1->0 transition.
func (p *bitmapPair) setUsedBlockInfo(blockNo int, flag bool) {
	var old bool
	if blockNo < p.used.Length() {
		old = p.used.Get(blockNo)
	} else {
		// Growing the bitmap implicitly zero-fills, so every newly
		// covered index starts as a free (zero) bit.
		grown := blockNo + 1 - p.used.Length()
		p.freeUseBitNum += grown
	}
	p.used.Set(blockNo, flag)
	if old == flag {
		return
	}
	if flag {
		p.freeUseBitNum--
	} else {
		p.freeUseBitNum++
	}
}

func (p *bitmapPair) getValidBlockInfo(blockNo int) bool {
	if blockNo >= p.valid.Length() {
		return false
	}
	return p.valid.Get(blockNo)
}

func (p *bitmapPair) setValidBlockInfo(blockNo int, flag bool) {
	p.valid.Set(blockNo, flag)
}

// truncate empties both bitmaps and resets the free counter.
func (p *bitmapPair) truncate() {
	p.used = bitset.New(0)
	p.valid = bitset.New(0)
	p.freeUseBitNum = 0
}
