// Package blockaddr maps a logical block number in a striped checkpoint
// file to the split file that holds it and the byte offset within that
// split. It is pure arithmetic: no I/O, no state beyond the layout
// parameters fixed at construction.
package blockaddr

// Layout describes how a logical block store is striped across splitCount
// files, stripeSize blocks at a time. It is immutable once constructed.
type Layout struct {
	blockExp    uint
	splitCount  int
	stripeSize  int
	stripeBytes int64
}

// NewLayout builds a Layout for the given block size exponent, split count
// and stripe size (in blocks). splitCount must be at least 1, and so must
// stripeSize when splitCount > 1 (a single split ignores it); callers
// validate the configured limits before calling this.
func NewLayout(blockExp uint, splitCount, stripeSize int) Layout {
	return Layout{
		blockExp:    blockExp,
		splitCount:  splitCount,
		stripeSize:  stripeSize,
		stripeBytes: int64(stripeSize) << blockExp,
	}
}

// BlockSize returns 1 << blockExp.
func (l Layout) BlockSize() int64 {
	return 1 << l.blockExp
}

// SplitCount returns the number of splits in the layout.
func (l Layout) SplitCount() int {
	return l.splitCount
}

// StripeSize returns the stripe size, in blocks.
func (l Layout) StripeSize() int {
	return l.stripeSize
}

// ByteOffset returns the logical byte offset of a block number, ignoring
// striping: blockNo * BlockSize.
func (l Layout) ByteOffset(blockNo int64) int64 {
	return blockNo << l.blockExp
}

// SplitIndexOf returns the split index that holds the block starting at
// the given logical byte offset.
func (l Layout) SplitIndexOf(byteOffset int64) int {
	if l.splitCount == 1 {
		return 0
	}
	stripeNo := byteOffset / l.stripeBytes
	return int(stripeNo % int64(l.splitCount))
}

// FileOffsetOf returns the byte offset within the target split file for
// the block starting at the given logical byte offset.
func (l Layout) FileOffsetOf(byteOffset int64) int64 {
	if l.splitCount == 1 {
		return byteOffset
	}
	stripeNo := byteOffset / l.stripeBytes
	superStripe := stripeNo / int64(l.splitCount)
	return superStripe*l.stripeBytes + byteOffset%l.stripeBytes
}

// Resolve is a convenience that returns both SplitIndexOf and FileOffsetOf
// for a single byte offset, since callers almost always need both.
func (l Layout) Resolve(byteOffset int64) (splitIndex int, fileOffset int64) {
	return l.SplitIndexOf(byteOffset), l.FileOffsetOf(byteOffset)
}
