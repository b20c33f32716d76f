package checkpoint

// allocator tracks free blocks over a bitmapPair's used bitmap using a
// rotating search cursor, so that reuse is spread across the file instead
// of always reclaiming the lowest free index (which would defeat
// striping across splits).
type allocator struct {
	bitmap *bitmapPair
	cursor int
}

func newAllocator(bitmap *bitmapPair) *allocator {
	return &allocator{bitmap: bitmap}
}

// allocateBlock finds a free block, marks it used, and returns its
// index.
//
// When freeUseBitNum is positive, it scans up to searchLimit bits
// starting at the cursor, then wraps and scans [0, cursor) for the
// remainder of the budget. The first zero bit found wins. Regardless of
// whether the scan found anything, the cursor advances to pos+1 (wrapping
// to 0 at the end of the bitmap) — including when the scan aborted on
// budget exhaustion, not just on a hit. That bias against re-scanning the
// same region is deliberate, not a bug to fix.
//
// If the scan finds nothing (or freeUseBitNum is already zero), a new
// bit is appended and its corresponding valid bit is cleared.
//
// Either way, the chosen block's used bit is finally set through
// setUsedBlockInfo, which is what actually keeps freeUseBitNum accurate;
// for the appended case the bit is already 1 from Append, so this is a
// no-op on the counter.
func (a *allocator) allocateBlock() int {
	length := a.bitmap.used.Length()
	pos := a.cursor
	count := 0
	allocatePos := -1

	if a.bitmap.freeUseBitNum > 0 {
		startPos := a.cursor
		for pos = a.cursor; pos < length; pos, count = pos+1, count+1 {
			if !a.bitmap.used.Get(pos) {
				allocatePos = pos
				break
			}
			if count > searchLimit {
				break
			}
		}
		if allocatePos == -1 && count <= searchLimit {
			for pos = 0; pos < startPos; pos, count = pos+1, count+1 {
				if !a.bitmap.used.Get(pos) {
					allocatePos = pos
					break
				}
				if count > searchLimit {
					break
				}
			}
		}
		a.cursor = pos + 1
		if a.cursor >= length {
			a.cursor = 0
		}
	}

	if allocatePos == -1 {
		allocatePos = a.bitmap.used.Append(true)
		a.bitmap.valid.Set(allocatePos, false)
	}

	a.bitmap.setUsedBlockInfo(allocatePos, true)
	return allocatePos
}

// freeBlock clears used[blockNo]. The caller must ensure the bit was
// previously set; it does not touch valid.
func (a *allocator) freeBlock(blockNo int) {
	a.bitmap.setUsedBlockInfo(blockNo, false)
}
