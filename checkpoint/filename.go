package checkpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/redact"
)

const (
	fileNameBase = "gs_cp_"
	fileNameExt  = ".dat"

	// nonSplitLiteralSuffix is the split id written into the file name
	// when the store has only one split. It is 1, not 0, for on-disk
	// compatibility with stores created before split addressing existed.
	nonSplitLiteralSuffix = 1
)

// PartitionGroupID is the caller-supplied opaque identifier embedded in a
// checkpoint file's name.
type PartitionGroupID int64

// SafeFormat implements redact.SafeFormatter.
func (id PartitionGroupID) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(id.String()))
}

// String implements fmt.Stringer.
func (id PartitionGroupID) String() string { return strconv.FormatInt(int64(id), 10) }

// SplitID identifies one physical file backing a striped checkpoint
// store.
type SplitID int

// SafeFormat implements redact.SafeFormatter.
func (id SplitID) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(id.String()))
}

// String implements fmt.Stringer.
func (id SplitID) String() string { return strconv.Itoa(int(id)) }

// fileName builds the on-disk name for the given partition group and
// split, following "<base><pgId>_<splitId><ext>". When splitCount == 1,
// splitId is not passed through: the name always carries the literal
// non-split suffix instead, for historical on-disk compatibility.
func fileName(pgID PartitionGroupID, splitID SplitID, splitCount int) string {
	if splitCount <= 1 {
		return fmt.Sprintf("%s%d_%d%s", fileNameBase, pgID, nonSplitLiteralSuffix, fileNameExt)
	}
	return fmt.Sprintf("%s%d_%d%s", fileNameBase, pgID, splitID, fileNameExt)
}

// CheckFileName is a pure predicate: it reports whether name looks like a
// checkpoint file name and, if so, extracts its partition group and split
// ids. It accepts both split-addressed names (any non-negative splitId)
// and the historical non-split literal "_1" suffix; it does not care
// which convention was used to produce the number.
//
// name must begin with "gs_cp_", end with ".dat", and contain exactly two
// integers separated by a single '_' in between. Anything else, including
// a name with trailing garbage after the extension, returns ok == false.
func CheckFileName(name string) (pgID PartitionGroupID, splitID SplitID, ok bool) {
	if !strings.HasPrefix(name, fileNameBase) || !strings.HasSuffix(name, fileNameExt) {
		return 0, 0, false
	}
	middle := strings.TrimSuffix(strings.TrimPrefix(name, fileNameBase), fileNameExt)
	underscore := strings.IndexByte(middle, '_')
	if underscore < 0 || strings.IndexByte(middle[underscore+1:], '_') >= 0 {
		return 0, 0, false
	}
	pgPart, splitPart := middle[:underscore], middle[underscore+1:]
	if pgPart == "" || splitPart == "" {
		return 0, 0, false
	}
	pg, err := strconv.ParseInt(pgPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	split, err := strconv.Atoi(splitPart)
	if err != nil {
		return 0, 0, false
	}
	return PartitionGroupID(pg), SplitID(split), true
}
