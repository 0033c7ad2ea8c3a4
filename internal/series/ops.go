package series

import (
	"fmt"
	"math"

	"github.com/tabular-io/tabular/internal/diag"
	"github.com/tabular-io/tabular/internal/merge"
	"github.com/tabular-io/tabular/internal/proclog"
)

// binaryFn combines two non-null values; ok=false marks the result null.
type binaryFn func(a, b float64) (v float64, ok bool)

var arithmetic = map[proclog.Operation]binaryFn{
	proclog.OpAdd: func(a, b float64) (float64, bool) { return a + b, true },
	proclog.OpSub: func(a, b float64) (float64, bool) { return a - b, true },
	proclog.OpMul: func(a, b float64) (float64, bool) { return a * b, true },
	proclog.OpPow: func(a, b float64) (float64, bool) { return math.Pow(a, b), true },

	// Nullable division: 0/0 is null, not NaN; x/0 for x != 0 is the usual
	// signed infinity.
	proclog.OpDiv: func(a, b float64) (float64, bool) {
		if a == 0 && b == 0 {
			return 0, false
		}

		return a / b, true
	},
	proclog.OpFloorDiv: func(a, b float64) (float64, bool) {
		if a == 0 && b == 0 {
			return 0, false
		}

		return math.Floor(a / b), true
	},
	proclog.OpMod: func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}

		return math.Mod(a, b), true
	},
}

// Add returns self + other with merged metadata.
func (s *Series) Add(other *Series) (*Series, error) { return s.binary(proclog.OpAdd, other) }

// Sub returns self - other with merged metadata.
func (s *Series) Sub(other *Series) (*Series, error) { return s.binary(proclog.OpSub, other) }

// Mul returns self * other with merged metadata.
func (s *Series) Mul(other *Series) (*Series, error) { return s.binary(proclog.OpMul, other) }

// Div returns self / other with merged metadata. Division metadata follows
// the first-operand rule; see internal/merge.
func (s *Series) Div(other *Series) (*Series, error) { return s.binary(proclog.OpDiv, other) }

// Pow returns self ** other with merged metadata.
func (s *Series) Pow(other *Series) (*Series, error) { return s.binary(proclog.OpPow, other) }

// FloorDiv returns self // other with merged metadata.
func (s *Series) FloorDiv(other *Series) (*Series, error) { return s.binary(proclog.OpFloorDiv, other) }

// Mod returns self % other with merged metadata.
func (s *Series) Mod(other *Series) (*Series, error) { return s.binary(proclog.OpMod, other) }

// AddScalar returns self + x.
func (s *Series) AddScalar(x float64) (*Series, error) { return s.scalar(proclog.OpAdd, x) }

// SubScalar returns self - x.
func (s *Series) SubScalar(x float64) (*Series, error) { return s.scalar(proclog.OpSub, x) }

// MulScalar returns self * x.
func (s *Series) MulScalar(x float64) (*Series, error) { return s.scalar(proclog.OpMul, x) }

// DivScalar returns self / x.
func (s *Series) DivScalar(x float64) (*Series, error) { return s.scalar(proclog.OpDiv, x) }

// PowScalar returns self ** x.
func (s *Series) PowScalar(x float64) (*Series, error) { return s.scalar(proclog.OpPow, x) }

// FloorDivScalar returns self // x.
func (s *Series) FloorDivScalar(x float64) (*Series, error) { return s.scalar(proclog.OpFloorDiv, x) }

// ModScalar returns self % x.
func (s *Series) ModScalar(x float64) (*Series, error) { return s.scalar(proclog.OpMod, x) }

// binary applies an arithmetic operation against another series. The result
// is named after the left operand (or the unnamed placeholder) and carries
// the left operand's engine options.
func (s *Series) binary(op proclog.Operation, other *Series) (*Series, error) {
	if other == nil {
		return nil, ErrNilSeries
	}

	if s.Len() != other.Len() {
		return nil, fmt.Errorf("%w: %d vs %d rows", ErrLengthMismatch, s.Len(), other.Len())
	}

	if !s.sameIndex(other) {
		return nil, ErrIndexMismatch
	}

	fn := arithmetic[op]
	values := make([]float64, s.Len())
	valid := make([]bool, s.Len())

	for i := range s.values {
		if !s.valid[i] || !other.valid[i] {
			continue
		}

		values[i], valid[i] = fn(s.values[i], other.values[i])
	}

	return s.derived(op, values, valid, s.operand(), other.operand())
}

// scalar applies an arithmetic operation against a plain value. The scalar
// contributes no metadata but is recorded as a parent in the processing log.
func (s *Series) scalar(op proclog.Operation, x float64) (*Series, error) {
	fn := arithmetic[op]
	values := make([]float64, s.Len())
	valid := make([]bool, s.Len())

	for i := range s.values {
		if !s.valid[i] {
			continue
		}

		values[i], valid[i] = fn(s.values[i], x)
	}

	return s.derived(op, values, valid, s.operand(), merge.Scalar(x))
}

// derived assembles the result series of an operation: data, left operand's
// name and index, and merge-algebra metadata over the given operands.
func (s *Series) derived(op proclog.Operation, values []float64, valid []bool, operands ...merge.Operand) (*Series, error) {
	name := s.displayName()

	combined, err := merge.Combine(name, op, operands, s.opts)
	if err != nil {
		return nil, err
	}

	return &Series{
		name:     name,
		values:   values,
		valid:    valid,
		index:    append([]int(nil), s.index...),
		metadata: combined,
		opts:     s.opts,
	}, nil
}

// FillNA returns a copy with null positions replaced by x.
func (s *Series) FillNA(x float64) (*Series, error) {
	values := append([]float64(nil), s.values...)
	valid := make([]bool, s.Len())

	for i := range values {
		valid[i] = true

		if !s.valid[i] {
			values[i] = x
		}
	}

	return s.derived(proclog.OpFillNA, values, valid, s.operand(), merge.Scalar(x))
}

// FillNAWith returns a copy with null positions replaced position-wise from
// an annotated fill series, whose metadata participates in the merge.
func (s *Series) FillNAWith(fill *Series) (*Series, error) {
	if fill == nil {
		return nil, ErrNilSeries
	}

	if s.Len() != fill.Len() {
		return nil, fmt.Errorf("%w: %d vs %d rows", ErrLengthMismatch, s.Len(), fill.Len())
	}

	if !s.sameIndex(fill) {
		return nil, ErrIndexMismatch
	}

	values := append([]float64(nil), s.values...)
	valid := append([]bool(nil), s.valid...)

	for i := range values {
		if !s.valid[i] && fill.valid[i] {
			values[i] = fill.values[i]
			valid[i] = true
		}
	}

	return s.derived(proclog.OpFillNA, values, valid, s.operand(), fill.operand())
}

// FillNAInPlace replaces null positions with x without producing a new
// series. The metadata record is left untouched, which is a known foot-gun:
// a diagnostic is emitted so callers notice.
func (s *Series) FillNAInPlace(x float64) {
	s.warnInPlace(proclog.OpFillNA)

	for i := range s.values {
		if !s.valid[i] {
			s.values[i] = x
			s.valid[i] = true
		}
	}
}

// DropNA returns a copy without null rows, preserving the row index of the
// surviving rows.
func (s *Series) DropNA() (*Series, error) {
	var (
		values []float64
		valid  []bool
		index  []int
	)

	for i := range s.values {
		if !s.valid[i] {
			continue
		}

		values = append(values, s.values[i])
		valid = append(valid, true)
		index = append(index, s.index[i])
	}

	out, err := s.derived(proclog.OpDropNA, values, valid, s.operand())
	if err != nil {
		return nil, err
	}

	out.index = index

	return out, nil
}

// DropNAInPlace removes null rows without producing a new series, leaving
// metadata untouched; a diagnostic is emitted.
func (s *Series) DropNAInPlace() {
	s.warnInPlace(proclog.OpDropNA)

	kept := 0

	for i := range s.values {
		if !s.valid[i] {
			continue
		}

		s.values[kept] = s.values[i]
		s.valid[kept] = true
		s.index[kept] = s.index[i]
		kept++
	}

	s.values = s.values[:kept]
	s.valid = s.valid[:kept]
	s.index = s.index[:kept]
}

func (s *Series) warnInPlace(op proclog.Operation) {
	collector := s.opts.Diagnostics
	if collector == nil {
		collector = diag.Discard
	}

	collector.Warn(diag.Diagnostic{
		Category: diag.CategoryInPlaceMutation,
		Message:  fmt.Sprintf("%s in place mutates data without updating metadata", op),
		Detail: map[string]string{
			"operation": string(op),
			"series":    s.displayName(),
		},
	})
}

// PctChange returns the fractional change between each value and the value
// periods rows earlier. The first periods rows are null, as is any position
// whose baseline is null.
func (s *Series) PctChange(periods int) (*Series, error) {
	if periods < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriods, periods)
	}

	values := make([]float64, s.Len())
	valid := make([]bool, s.Len())

	for i := periods; i < s.Len(); i++ {
		if !s.valid[i] || !s.valid[i-periods] {
			continue
		}

		prev := s.values[i-periods]
		cur := s.values[i]

		if prev == 0 && cur == 0 {
			continue
		}

		values[i] = (cur - prev) / prev
		valid[i] = true
	}

	return s.derived(proclog.OpPctChange, values, valid, s.operand())
}
