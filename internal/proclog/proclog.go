// Package proclog provides the append-only processing log attached to column
// metadata.
//
// Every operation over annotated series (arithmetic, reshaping, loading,
// saving) is recorded as one Entry naming the resulting column, the operands
// it consumed, and the operation performed. Logs from multiple operands are
// concatenated in encounter order when columns are combined, so the full
// derivation history of any column can be reconstructed from its metadata
// alone.
package proclog

import (
	"github.com/google/uuid"
)

// Operation tags the kind of transformation recorded in a log entry.
//
// The vocabulary is fixed: the merge algebra switches on these tags to decide
// field-resolution rules (division, for example, has asymmetric rules), so
// new tags must be added here rather than passed as free-form strings.
type Operation string

// Operation vocabulary.
const (
	OpAdd      Operation = "+"
	OpSub      Operation = "-"
	OpMul      Operation = "*"
	OpDiv      Operation = "/"
	OpPow      Operation = "**"
	OpFloorDiv Operation = "//"
	OpMod      Operation = "%"

	OpFillNA    Operation = "fillna"
	OpDropNA    Operation = "dropna"
	OpPctChange Operation = "pct_change"

	OpLoad   Operation = "load"
	OpCreate Operation = "create"
	OpSave   Operation = "save"
	OpMerge  Operation = "merge"
	OpRename Operation = "rename"
	OpMelt   Operation = "melt"
	OpPivot  Operation = "pivot"
	OpConcat Operation = "concat"
	OpSort   Operation = "sort"
)

// validOperations is the closed set accepted by IsValid.
var validOperations = map[Operation]struct{}{
	OpAdd: {}, OpSub: {}, OpMul: {}, OpDiv: {}, OpPow: {}, OpFloorDiv: {}, OpMod: {},
	OpFillNA: {}, OpDropNA: {}, OpPctChange: {},
	OpLoad: {}, OpCreate: {}, OpSave: {}, OpMerge: {}, OpRename: {},
	OpMelt: {}, OpPivot: {}, OpConcat: {}, OpSort: {},
}

// IsValid reports whether the operation belongs to the fixed vocabulary.
func (op Operation) IsValid() bool {
	_, ok := validOperations[op]

	return ok
}

// IsArithmetic reports whether the operation is a binary arithmetic operator.
func (op Operation) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow, OpFloorDiv, OpMod:
		return true
	default:
		return false
	}
}

type (
	// Entry records one operation that produced or transformed a column.
	Entry struct {
		// ID uniquely identifies this entry across logs and snapshots.
		ID string `json:"id" yaml:"id"`

		// Variable is the name of the column the operation produced.
		Variable string `json:"variable" yaml:"variable"`

		// Parents identifies every operand the operation consumed, in
		// operand order. Scalar operands appear as their formatted value,
		// annotated operands as their column name.
		Parents []string `json:"parents" yaml:"parents"`

		// Operation is the tag from the fixed vocabulary above.
		Operation Operation `json:"operation" yaml:"operation"`

		// Comment is an optional human note attached by producer code.
		Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	}

	// Log is an append-only sequence of entries, oldest first.
	Log []Entry
)

// NewEntry builds a log entry with a fresh ID.
func NewEntry(variable string, parents []string, op Operation, comment string) Entry {
	return Entry{
		ID:        uuid.New().String(),
		Variable:  variable,
		Parents:   append([]string(nil), parents...),
		Operation: op,
		Comment:   comment,
	}
}

// Append returns the log with one entry added. The receiver is not mutated.
func (l Log) Append(entry Entry) Log {
	out := make(Log, 0, len(l)+1)
	out = append(out, l...)
	out = append(out, entry)

	return out
}

// Copy returns an independent copy of the log; entry parent slices are
// copied so mutations on one log can never leak into another.
func (l Log) Copy() Log {
	if l == nil {
		return nil
	}

	out := make(Log, len(l))
	for i, e := range l {
		e.Parents = append([]string(nil), e.Parents...)
		out[i] = e
	}

	return out
}

// Equal reports whether two logs record the same history, ignoring entry IDs.
func (l Log) Equal(other Log) bool {
	if len(l) != len(other) {
		return false
	}

	for i := range l {
		if !l[i].sameRecord(other[i]) {
			return false
		}
	}

	return true
}

func (e Entry) sameRecord(other Entry) bool {
	if e.Variable != other.Variable || e.Operation != other.Operation || e.Comment != other.Comment {
		return false
	}

	if len(e.Parents) != len(other.Parents) {
		return false
	}

	for i := range e.Parents {
		if e.Parents[i] != other.Parents[i] {
			return false
		}
	}

	return true
}

// Combine concatenates the given logs in argument order into one log.
// Nil and empty logs contribute nothing.
func Combine(logs ...Log) Log {
	total := 0
	for _, l := range logs {
		total += len(l)
	}

	if total == 0 {
		return nil
	}

	out := make(Log, 0, total)
	for _, l := range logs {
		out = append(out, l...)
	}

	return out
}
