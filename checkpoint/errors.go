package checkpoint

import (
	"github.com/cockroachdb/errors"
)

// ErrorKind classifies a checkpoint store failure the way the higher
// checkpoint orchestrator needs to react to it (retry, surface to the
// operator, treat as corruption, ...).
type ErrorKind int

const (
	// KindUnknown is the zero value; never intentionally returned.
	KindUnknown ErrorKind = iota
	// KindInvalidDirectory covers a missing/non-directory split directory,
	// split-mode config inconsistencies, and configured limits exceeded.
	KindInvalidDirectory
	// KindFileNotFound covers an expected checkpoint file absent under
	// checkOnly or a non-create open.
	KindFileNotFound
	// KindIoError covers a read/write/fsync/hole-punch failure, including
	// partial I/O that exhausts its retry budget.
	KindIoError
	// KindReadChunkFailed covers a readBlock precondition violation.
	KindReadChunkFailed
	// KindWriteFailed covers a writeBlock/writePartialBlock terminal
	// failure.
	KindWriteFailed
	// KindOutOfSpace covers a block write, or the lazy open-for-write
	// before it, that the underlying filesystem fails for exhausted disk
	// space. Retrying this kind without freeing space is pointless.
	KindOutOfSpace
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidDirectory:
		return "InvalidDirectory"
	case KindFileNotFound:
		return "FileNotFound"
	case KindIoError:
		return "IoError"
	case KindReadChunkFailed:
		return "ReadChunkFailed"
	case KindWriteFailed:
		return "WriteFailed"
	case KindOutOfSpace:
		return "OutOfSpace"
	default:
		return "Unknown"
	}
}

var (
	markInvalidDirectory = errors.New("checkpoint: invalid directory")
	markFileNotFound     = errors.New("checkpoint: file not found")
	markIoError          = errors.New("checkpoint: io error")
	markReadChunkFailed  = errors.New("checkpoint: read chunk failed")
	markWriteFailed      = errors.New("checkpoint: write failed")
	markOutOfSpace       = errors.New("checkpoint: out of space")
)

func markerFor(kind ErrorKind) error {
	switch kind {
	case KindInvalidDirectory:
		return markInvalidDirectory
	case KindFileNotFound:
		return markFileNotFound
	case KindIoError:
		return markIoError
	case KindReadChunkFailed:
		return markReadChunkFailed
	case KindWriteFailed:
		return markWriteFailed
	case KindOutOfSpace:
		return markOutOfSpace
	default:
		return nil
	}
}

// kindError wraps an underlying error with its ErrorKind and enough
// context to reconstruct which file, block, or offset the failure
// occurred at: the fileName/pgId/blockNo|offset|size fields carried in the
// formatted message.
type kindError struct {
	kind ErrorKind
	err  error
}

// Error implements the error interface.
func (e *kindError) Error() string { return e.err.Error() }

// Unwrap allows errors.Is/errors.As to see through to the wrapped error
// and the kind marker.
func (e *kindError) Unwrap() error { return e.err }

// Kind reports the ErrorKind classifying err, or KindUnknown if err was
// not produced by this package.
func Kind(err error) ErrorKind {
	for _, k := range []ErrorKind{
		KindOutOfSpace,
		KindInvalidDirectory, KindFileNotFound, KindIoError,
		KindReadChunkFailed, KindWriteFailed,
	} {
		if errors.Is(err, markerFor(k)) {
			return k
		}
	}
	return KindUnknown
}

// newKindError builds a new error of the given kind with a formatted
// message, marked so that Kind and errors.Is can classify it later.
func newKindError(kind ErrorKind, format string, args ...interface{}) error {
	return &kindError{
		kind: kind,
		err:  errors.Mark(errors.Newf(format, args...), markerFor(kind)),
	}
}

// wrapKindError wraps a lower-level error (typically from vfs) with a
// context string and a kind marker, the way the C++ checkpoint file
// rethrew system errors with fileName/pgId/blockNo context attached.
func wrapKindError(kind ErrorKind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &kindError{
		kind: kind,
		err:  errors.Mark(errors.Wrapf(err, format, args...), markerFor(kind)),
	}
}
