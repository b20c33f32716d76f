package checkpoint

import (
	"time"

	"github.com/dendrite-db/checkpointfile/internal/base"
)

// Logger receives general operational traces, matching internal/base's
// injected-logger idiom.
type Logger = base.Logger

// InfoWarner receives latency-warning and hole-punch-summary traces on
// the store's second logical trace sink.
type InfoWarner = base.InfoWarner

// DefaultLogger logs to the standard log package.
type DefaultLogger = base.DefaultLogger

// DefaultInfoWarner logs to the standard log package, prefixing warnings.
type DefaultInfoWarner = base.DefaultInfoWarner

const (
	// SplitCountLimit bounds splitCount to keep the directory-cycling and
	// per-split handle bookkeeping cheap.
	SplitCountLimit = 128
	// StripeSizeLimit bounds stripeSize, in blocks, for the same reason.
	StripeSizeLimit = 1 << 20

	// searchLimit bounds how many bits the allocator probes per
	// allocateBlock call before falling back to appending a new block. It
	// is a latency bound, not a correctness requirement.
	searchLimit = 4096

	// defaultIOWarningThreshold is used when a Config leaves
	// IOWarningThreshold at its zero value.
	defaultIOWarningThreshold = 500 * time.Millisecond
)

// Config is the immutable shape of a checkpoint store, fixed at
// construction. It never changes for the lifetime of a File.
type Config struct {
	// BlockExp fixes BLOCK_SIZE = 1 << BlockExp.
	BlockExp uint
	// PgID is the opaque partition group identifier embedded in file
	// names.
	PgID PartitionGroupID
	// SplitCount is the number of physical files backing the store. 1
	// means non-split addressing.
	SplitCount int
	// StripeSize is the number of consecutive blocks placed in one split
	// before moving to the next, in blocks. Ignored when SplitCount == 1.
	StripeSize int
	// Dirs cycles modulo its own length to assign a directory to each
	// split index.
	Dirs []string
	// IOWarningThreshold is the elapsed-time threshold past which a
	// single I/O operation triggers a warning trace instead of aborting.
	// Zero selects defaultIOWarningThreshold.
	IOWarningThreshold time.Duration
	// Logger receives general operational traces.
	Logger Logger
	// IOMonitor receives latency-warning and hole-punch-summary traces on
	// a channel distinct from Logger.
	IOMonitor InfoWarner
}

// validate checks the configuration eagerly at construction, the way
// internal/base's Options validation rejects a bad configuration before
// any file is touched, rather than failing lazily deep inside an I/O
// path.
func (c *Config) validate() error {
	if len(c.Dirs) == 0 {
		return newKindError(KindInvalidDirectory, "checkpoint: no directories configured")
	}
	if c.SplitCount < 1 {
		return newKindError(KindInvalidDirectory, "checkpoint: splitCount must be >= 1, got %d", c.SplitCount)
	}
	if c.SplitCount > SplitCountLimit {
		return newKindError(KindInvalidDirectory, "checkpoint: splitCount %d exceeds limit %d", c.SplitCount, SplitCountLimit)
	}
	if c.SplitCount > 1 {
		if c.StripeSize < 1 {
			return newKindError(KindInvalidDirectory, "checkpoint: stripeSize must be >= 1, got %d", c.StripeSize)
		}
		if c.StripeSize > StripeSizeLimit {
			return newKindError(KindInvalidDirectory, "checkpoint: stripeSize %d exceeds limit %d", c.StripeSize, StripeSizeLimit)
		}
	}
	if c.BlockExp == 0 {
		return newKindError(KindInvalidDirectory, "checkpoint: blockExp must be > 0")
	}
	return nil
}

func (c *Config) ioWarningThreshold() time.Duration {
	if c.IOWarningThreshold <= 0 {
		return defaultIOWarningThreshold
	}
	return c.IOWarningThreshold
}

func (c *Config) logger() Logger {
	if c.Logger == nil {
		return DefaultLogger{}
	}
	return c.Logger
}

func (c *Config) ioMonitor() InfoWarner {
	if c.IOMonitor == nil {
		return DefaultInfoWarner{}
	}
	return c.IOMonitor
}

// dirFor cycles Dirs modulo its length, the way the split file set
// assigns a directory to each split index.
func (c *Config) dirFor(splitIndex int) string {
	return c.Dirs[splitIndex%len(c.Dirs)]
}
