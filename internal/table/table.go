// Package table provides the annotated table: an ordered collection of
// annotated series sharing one row index.
//
// The table guarantees that the column-name to metadata mapping stays
// consistent across rename, selection, concatenation, and join operations:
// a column's metadata record always travels with its series, and structural
// operations append the appropriate processing-log entries.
package table

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tabular-io/tabular/internal/merge"
	"github.com/tabular-io/tabular/internal/proclog"
	"github.com/tabular-io/tabular/internal/series"
)

// Sentinel errors for table operations.
var (
	// ErrColumnExists is returned when adding a column under a taken name.
	ErrColumnExists = errors.New("column already exists")

	// ErrColumnNotFound is returned when operating on a missing column.
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnUnnamed is returned when adding a series without a name.
	ErrColumnUnnamed = errors.New("column series must be named")

	// ErrIndexMismatch is returned when a column's row index does not match
	// the table's.
	ErrIndexMismatch = errors.New("column index does not match table index")

	// ErrNilTable is returned when an operand table is nil.
	ErrNilTable = errors.New("table cannot be nil")

	// ErrDuplicateColumn is returned when joining tables that share a
	// column name.
	ErrDuplicateColumn = errors.New("joined tables must not share column names")
)

// Meta is the table-level metadata record, serialized alongside the
// per-column records in a sidecar.
type Meta struct {
	ShortName   string `json:"short_name,omitempty" yaml:"short_name,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Table is a two-dimensional container of annotated series sharing a row
// index. Column order is preserved.
type Table struct {
	meta  Meta
	names []string
	cols  map[string]*series.Series
	index []int
	opts  merge.Options
}

// New creates an empty table over the given row index.
func New(index []int, opts merge.Options) *Table {
	return &Table{
		cols:  make(map[string]*series.Series),
		index: append([]int(nil), index...),
		opts:  opts,
	}
}

// Meta returns the table-level metadata.
func (t *Table) Meta() Meta { return t.meta }

// SetMeta replaces the table-level metadata.
func (t *Table) SetMeta(m Meta) { t.meta = m }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.names) }

// Index returns a copy of the row index.
func (t *Table) Index() []int { return append([]int(nil), t.index...) }

// Columns returns the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.names...) }

// Column returns the series stored under the given name.
func (t *Table) Column(name string) (*series.Series, error) {
	s, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	return s, nil
}

// AddColumn adds a named series. The series' row index must match the
// table's; an empty table adopts the first column's index.
func (t *Table) AddColumn(s *series.Series) error {
	if s == nil {
		return series.ErrNilSeries
	}

	if s.Name() == "" {
		return ErrColumnUnnamed
	}

	if _, ok := t.cols[s.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrColumnExists, s.Name())
	}

	if len(t.names) == 0 && len(t.index) == 0 {
		t.index = s.Index()
	} else if !sameInts(t.index, s.Index()) {
		return fmt.Errorf("%w: column %q", ErrIndexMismatch, s.Name())
	}

	t.names = append(t.names, s.Name())
	t.cols[s.Name()] = s

	return nil
}

// RenameColumn moves a column (and its metadata record, intact) under a new
// name and records the rename in the column's processing log.
func (t *Table) RenameColumn(oldName, newName string) error {
	s, ok := t.cols[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, oldName)
	}

	if oldName == newName {
		return nil
	}

	if _, taken := t.cols[newName]; taken {
		return fmt.Errorf("%w: %q", ErrColumnExists, newName)
	}

	delete(t.cols, oldName)
	t.cols[newName] = s

	for i, n := range t.names {
		if n == oldName {
			t.names[i] = newName

			break
		}
	}

	s.SetName(newName)

	if t.opts.ProcessingLog {
		m, err := s.Metadata()
		if err != nil {
			return err
		}

		m.ProcessingLog = m.ProcessingLog.Append(
			proclog.NewEntry(newName, []string{oldName}, proclog.OpRename, ""))
	}

	return nil
}

// Drop removes a column.
func (t *Table) Drop(name string) error {
	if _, ok := t.cols[name]; !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	delete(t.cols, name)

	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)

			break
		}
	}

	return nil
}

// Select returns a new table holding the named columns in the given order.
// Selection is non-structural: the series (and their metadata records) are
// shared with the receiver.
func (t *Table) Select(names ...string) (*Table, error) {
	out := New(t.index, t.opts)
	out.meta = t.meta

	for _, name := range names {
		s, ok := t.cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}

		out.names = append(out.names, name)
		out.cols[name] = s
	}

	return out, nil
}

// Concat stacks tables vertically. The result's columns are the union of all
// tables' columns in first-appearance order; positions a table does not
// cover are null. Shared columns merge their metadata under the concat
// operation. The receiver's engine options govern the merge.
func (t *Table) Concat(others ...*Table) (*Table, error) {
	tables := append([]*Table{t}, others...)

	var index []int

	var names []string

	seen := make(map[string]struct{})

	for _, tb := range tables {
		if tb == nil {
			return nil, ErrNilTable
		}

		index = append(index, tb.index...)

		for _, n := range tb.names {
			if _, ok := seen[n]; ok {
				continue
			}

			seen[n] = struct{}{}
			names = append(names, n)
		}
	}

	out := New(index, t.opts)
	out.meta = t.meta

	for _, name := range names {
		values := make([]float64, 0, len(index))
		valid := make([]bool, 0, len(index))

		var operands []merge.Operand

		for _, tb := range tables {
			s, ok := tb.cols[name]
			if !ok {
				values = append(values, make([]float64, tb.Len())...)
				valid = append(valid, make([]bool, tb.Len())...)

				continue
			}

			for i := range tb.index {
				v, def := s.Value(i)
				values = append(values, v)
				valid = append(valid, def)
			}

			operands = append(operands, operandOf(s))
		}

		combined, err := merge.Combine(name, proclog.OpConcat, operands, t.opts)
		if err != nil {
			return nil, err
		}

		col, err := series.New(values,
			series.WithName(name),
			series.WithValid(valid),
			series.WithIndex(index),
			series.WithMeta(combined),
			series.WithOptions(t.opts),
		)
		if err != nil {
			return nil, err
		}

		out.names = append(out.names, name)
		out.cols[name] = col
	}

	return out, nil
}

// Join combines two tables column-wise over the rows whose index labels
// appear in both, in the receiver's row order. Column names must not
// overlap. Every joined column's metadata gains a merge log entry.
func (t *Table) Join(other *Table) (*Table, error) {
	if other == nil {
		return nil, ErrNilTable
	}

	for _, n := range other.names {
		if _, ok := t.cols[n]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
	}

	otherRows := make(map[int]int, len(other.index))
	for pos, label := range other.index {
		otherRows[label] = pos
	}

	var (
		index     []int
		leftPos   []int
		rightPos  []int
	)

	for pos, label := range t.index {
		rp, ok := otherRows[label]
		if !ok {
			continue
		}

		index = append(index, label)
		leftPos = append(leftPos, pos)
		rightPos = append(rightPos, rp)
	}

	out := New(index, t.opts)
	out.meta = t.meta

	appendSide := func(tb *Table, rows []int) error {
		for _, name := range tb.names {
			s := tb.cols[name]

			values := make([]float64, len(rows))
			valid := make([]bool, len(rows))

			for i, pos := range rows {
				values[i], valid[i] = s.Value(pos)
			}

			combined, err := merge.Combine(name, proclog.OpMerge, []merge.Operand{operandOf(s)}, t.opts)
			if err != nil {
				return err
			}

			col, err := series.New(values,
				series.WithName(name),
				series.WithValid(valid),
				series.WithIndex(index),
				series.WithMeta(combined),
				series.WithOptions(t.opts),
			)
			if err != nil {
				return err
			}

			out.names = append(out.names, name)
			out.cols[name] = col
		}

		return nil
	}

	if err := appendSide(t, leftPos); err != nil {
		return nil, err
	}

	if err := appendSide(other, rightPos); err != nil {
		return nil, err
	}

	return out, nil
}

// SortBy returns the table with rows reordered by the given column's values
// (nulls last, original order preserved among equals). Every column's
// metadata gains a sort log entry.
func (t *Table) SortBy(column string, ascending bool) (*Table, error) {
	key, ok := t.cols[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	perm := make([]int, t.Len())
	for i := range perm {
		perm[i] = i
	}

	sort.SliceStable(perm, func(a, b int) bool {
		va, okA := key.Value(perm[a])
		vb, okB := key.Value(perm[b])

		if okA != okB {
			return okA
		}

		if !okA {
			return false
		}

		if ascending {
			return va < vb
		}

		return va > vb
	})

	index := make([]int, t.Len())
	for i, p := range perm {
		index[i] = t.index[p]
	}

	out := New(index, t.opts)
	out.meta = t.meta

	for _, name := range t.names {
		s := t.cols[name]

		values := make([]float64, t.Len())
		valid := make([]bool, t.Len())

		for i, p := range perm {
			values[i], valid[i] = s.Value(p)
		}

		combined, err := merge.Combine(name, proclog.OpSort, []merge.Operand{operandOf(s)}, t.opts)
		if err != nil {
			return nil, err
		}

		col, err := series.New(values,
			series.WithName(name),
			series.WithValid(valid),
			series.WithIndex(index),
			series.WithMeta(combined),
			series.WithOptions(t.opts),
		)
		if err != nil {
			return nil, err
		}

		out.names = append(out.names, name)
		out.cols[name] = col
	}

	return out, nil
}

// operandOf wraps a table column for the merge algebra. Columns without a
// metadata record participate as bare parents.
func operandOf(s *series.Series) merge.Operand {
	m, err := s.Metadata()
	if err != nil {
		return merge.Operand{Parent: s.Name()}
	}

	return merge.Annotated(s.Name(), m)
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
