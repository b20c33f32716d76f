package checkpoint

// Metrics is a point-in-time snapshot of a File's counters, copied out
// the way pebble.Metrics snapshots its own internal counters rather than
// handing out live references.
type Metrics struct {
	ReadBlockCount  uint64
	WriteBlockCount uint64
	ReadRetryCount  uint64
	WriteRetryCount uint64
	FreeUseBitNum   int64
	BlockNum        int64
}

// Metrics returns a snapshot of f's counters.
func (f *File) Metrics() Metrics {
	return Metrics{
		ReadBlockCount:  f.ReadBlockCount(),
		WriteBlockCount: f.WriteBlockCount(),
		ReadRetryCount:  f.ReadRetryCount(),
		WriteRetryCount: f.WriteRetryCount(),
		FreeUseBitNum:   f.FreeUseBitNum(),
		BlockNum:        f.BlockNum(),
	}
}
