// Package series provides the annotated value: a named, nullable,
// row-indexed column of numeric values that owns one metadata record and
// propagates it correctly through every operation.
//
// The metadata record lives directly on the Series and travels with it
// through renames; there is no shared name-keyed dictionary that a rename
// could silently desynchronize. Arithmetic and reshaping operations never
// mutate their operands: each produces a new Series whose metadata is
// computed by the merge algebra in internal/merge.
package series

import (
	"errors"
	"fmt"

	"github.com/tabular-io/tabular/internal/merge"
	"github.com/tabular-io/tabular/internal/meta"
)

// UnnamedLabel names the result of an operation whose left operand has no
// name yet.
const UnnamedLabel = "unnamed"

// Sentinel errors for series construction and use.
var (
	// ErrUnnamed is returned when metadata is accessed or set on a series
	// that has no name. Enforced eagerly so bugs surface at the point of
	// misuse rather than downstream.
	ErrUnnamed = errors.New("series must be named to have metadata")

	// ErrMetadataWithoutName is returned when a series is constructed with
	// metadata but no resolvable name.
	ErrMetadataWithoutName = errors.New("metadata requires a series name")

	// ErrNilSeries is returned when an operand series is nil.
	ErrNilSeries = errors.New("series cannot be nil")

	// ErrLengthMismatch is returned when a validity mask or row index does
	// not match the number of values.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrIndexMismatch is returned when two operands do not share the same
	// row index.
	ErrIndexMismatch = errors.New("operands must share the same row index")

	// ErrInvalidWindow is returned for a rolling window smaller than one.
	ErrInvalidWindow = errors.New("rolling window must be at least 1")

	// ErrInvalidPeriods is returned for a non-positive pct_change period.
	ErrInvalidPeriods = errors.New("periods must be at least 1")
)

// Series is a named one-dimensional column of nullable float64 values
// aligned to an explicit integer row index.
type Series struct {
	name   string
	values []float64
	valid  []bool
	index  []int

	// metadata is owned exclusively by this series; nil until first access.
	metadata *meta.Meta

	// opts configures merge-algebra behavior for every operation this
	// series is the left operand of.
	opts merge.Options
}

// Option configures a series at construction time.
type Option func(*Series)

// WithName sets the series name.
func WithName(name string) Option {
	return func(s *Series) { s.name = name }
}

// WithMeta attaches an initial metadata record. Construction fails unless a
// name is also resolvable.
func WithMeta(m *meta.Meta) Option {
	return func(s *Series) { s.metadata = m }
}

// WithValid sets the validity mask; false marks a null position.
func WithValid(valid []bool) Option {
	return func(s *Series) { s.valid = valid }
}

// WithIndex sets the row index; defaults to 0..n-1.
func WithIndex(index []int) Option {
	return func(s *Series) { s.index = index }
}

// WithOptions sets the merge-algebra configuration (processing-log tracking,
// diagnostics collector) used by every operation on this series.
func WithOptions(opts merge.Options) Option {
	return func(s *Series) { s.opts = opts }
}

// New constructs a series over the given values. Values are copied; the
// series never aliases caller-owned slices.
func New(values []float64, options ...Option) (*Series, error) {
	s := &Series{
		values: append([]float64(nil), values...),
		opts:   merge.DefaultOptions(),
	}

	for _, opt := range options {
		opt(s)
	}

	if s.metadata != nil && s.name == "" {
		return nil, ErrMetadataWithoutName
	}

	if s.valid == nil {
		s.valid = make([]bool, len(s.values))
		for i := range s.valid {
			s.valid[i] = true
		}
	} else {
		if len(s.valid) != len(s.values) {
			return nil, fmt.Errorf("%w: %d values, %d validity flags", ErrLengthMismatch, len(s.values), len(s.valid))
		}

		s.valid = append([]bool(nil), s.valid...)
	}

	if s.index == nil {
		s.index = make([]int, len(s.values))
		for i := range s.index {
			s.index[i] = i
		}
	} else {
		if len(s.index) != len(s.values) {
			return nil, fmt.Errorf("%w: %d values, %d index labels", ErrLengthMismatch, len(s.values), len(s.index))
		}

		s.index = append([]int(nil), s.index...)
	}

	return s, nil
}

// MustNew is New for statically known-good inputs; it panics on error.
// Intended for tests and literals.
func MustNew(values []float64, options ...Option) *Series {
	s, err := New(values, options...)
	if err != nil {
		panic(err)
	}

	return s
}

// Name returns the series name, empty if unnamed.
func (s *Series) Name() string { return s.name }

// SetName renames the series. The metadata record moves with the series
// unchanged; a fresh empty record is allocated if none exists yet. Setting
// the empty name is a transient state used during reshapes and leaves
// metadata untouched.
func (s *Series) SetName(name string) {
	if name == "" {
		s.name = ""

		return
	}

	s.name = name

	if s.metadata == nil {
		s.metadata = meta.New()
	}
}

// displayName is how this series appears in processing-log entries.
func (s *Series) displayName() string {
	if s.name == "" {
		return UnnamedLabel
	}

	return s.name
}

// Metadata returns the series' metadata record, allocating an empty one on
// first access. Fails on an unnamed series.
func (s *Series) Metadata() (*meta.Meta, error) {
	if s.name == "" {
		return nil, fmt.Errorf("%w (set a name before reading metadata)", ErrUnnamed)
	}

	if s.metadata == nil {
		s.metadata = meta.New()
	}

	return s.metadata, nil
}

// SetMetadata replaces the series' metadata record. Fails on an unnamed
// series.
func (s *Series) SetMetadata(m *meta.Meta) error {
	if s.name == "" {
		return fmt.Errorf("%w (set a name before setting metadata)", ErrUnnamed)
	}

	s.metadata = m

	return nil
}

// CopyMetadataFrom replaces this series' metadata with a deep copy of
// another series' record.
func (s *Series) CopyMetadataFrom(other *Series) error {
	if other == nil {
		return ErrNilSeries
	}

	m, err := other.Metadata()
	if err != nil {
		return err
	}

	return s.SetMetadata(m.Copy())
}

// Len returns the number of rows.
func (s *Series) Len() int { return len(s.values) }

// Value returns the value at position i and whether it is non-null.
func (s *Series) Value(i int) (float64, bool) {
	return s.values[i], s.valid[i]
}

// IsNull reports whether position i is null.
func (s *Series) IsNull(i int) bool { return !s.valid[i] }

// NullCount returns the number of null positions.
func (s *Series) NullCount() int {
	n := 0

	for _, ok := range s.valid {
		if !ok {
			n++
		}
	}

	return n
}

// Values returns a copy of the raw values; null positions hold their
// placeholder value and must be checked via the validity mask.
func (s *Series) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Index returns a copy of the row index.
func (s *Series) Index() []int {
	return append([]int(nil), s.index...)
}

// Options returns the merge-algebra configuration carried by this series.
func (s *Series) Options() merge.Options { return s.opts }

// SetOptions replaces the merge-algebra configuration.
func (s *Series) SetOptions(opts merge.Options) { s.opts = opts }

// Copy duplicates the series. A deep copy also duplicates the metadata
// record, so the two series share no mutable state; a shallow copy shares
// the metadata record and underlying data.
func (s *Series) Copy(deep bool) *Series {
	out := &Series{
		name: s.name,
		opts: s.opts,
	}

	if deep {
		out.values = append([]float64(nil), s.values...)
		out.valid = append([]bool(nil), s.valid...)
		out.index = append([]int(nil), s.index...)
		out.metadata = s.metadata.Copy()
	} else {
		out.values = s.values
		out.valid = s.valid
		out.index = s.index
		out.metadata = s.metadata
	}

	return out
}

// Head returns the first n rows (all rows when n exceeds the length).
// Slicing is non-structural: the result shares the metadata record.
func (s *Series) Head(n int) *Series {
	if n > s.Len() {
		n = s.Len()
	}

	if n < 0 {
		n = 0
	}

	return s.slice(0, n)
}

// Tail returns the last n rows.
func (s *Series) Tail(n int) *Series {
	if n > s.Len() {
		n = s.Len()
	}

	if n < 0 {
		n = 0
	}

	return s.slice(s.Len()-n, s.Len())
}

func (s *Series) slice(lo, hi int) *Series {
	return &Series{
		name:     s.name,
		values:   append([]float64(nil), s.values[lo:hi]...),
		valid:    append([]bool(nil), s.valid[lo:hi]...),
		index:    append([]int(nil), s.index[lo:hi]...),
		metadata: s.metadata,
		opts:     s.opts,
	}
}

// Where returns the rows for which keep returns true, preserving row index
// and metadata unchanged.
func (s *Series) Where(keep func(i int, v float64, ok bool) bool) *Series {
	out := &Series{name: s.name, metadata: s.metadata, opts: s.opts}

	for i := range s.values {
		if keep(i, s.values[i], s.valid[i]) {
			out.values = append(out.values, s.values[i])
			out.valid = append(out.valid, s.valid[i])
			out.index = append(out.index, s.index[i])
		}
	}

	return out
}

// Reindex replaces the row index. Used by table operations after row-order
// changes; lengths must match.
func (s *Series) Reindex(index []int) error {
	if len(index) != s.Len() {
		return fmt.Errorf("%w: %d values, %d index labels", ErrLengthMismatch, s.Len(), len(index))
	}

	s.index = append([]int(nil), index...)

	return nil
}

// operand wraps the series for the merge algebra, materializing the lazy
// empty record first: a series whose metadata was never touched must still
// participate as an annotated operand, or the division first-operand rule
// would see the divisor as the first operand.
func (s *Series) operand() merge.Operand {
	if s.metadata == nil {
		s.metadata = meta.New()
	}

	return merge.Operand{Meta: s.metadata, Parent: s.displayName()}
}

// sameIndex reports whether two series are aligned row for row.
func (s *Series) sameIndex(other *Series) bool {
	if s.Len() != other.Len() {
		return false
	}

	for i := range s.index {
		if s.index[i] != other.index[i] {
			return false
		}
	}

	return true
}
