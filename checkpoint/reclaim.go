package checkpoint

import (
	"golang.org/x/sync/errgroup"
)

// zerofillUnusedBlock scans f's used bitmap and punches a hole for every
// unused block, skipping block 0 by convention. The scan itself is
// single-threaded, matching the store's single-threaded bitmap access
// model; the actual hole-punch syscalls are fanned out one goroutine per
// split, since punches against different splits target different files
// and don't contend with each other.
func zerofillUnusedBlock(f *File) error {
	blockSize := int64(1) << f.cfg.BlockExp
	length := f.bitmap.used.Length()

	perSplit := make(map[int][]int64, f.cfg.SplitCount)
	var punchCount, totalCount int
	for i := 1; i < length; i++ {
		if f.bitmap.used.Get(i) {
			continue
		}
		offset := int64(i) * blockSize
		splitIndex, fileOffset := f.layout.Resolve(offset)
		perSplit[splitIndex] = append(perSplit[splitIndex], fileOffset)
		totalCount++
		punchCount++
	}

	var g errgroup.Group
	for splitIndex, offsets := range perSplit {
		splitIndex, offsets := splitIndex, offsets
		g.Go(func() error {
			for _, fileOffset := range offsets {
				if err := f.splits.punchHole(splitIndex, fileOffset, blockSize); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.cfg.ioMonitor().Infof(
		"Punching hole,pgId,%s,holePunchCount,%d,holeBlockCount,%d,totalBlockCount,%d",
		f.cfg.PgID, punchCount, totalCount, length)
	return nil
}
