package series

import (
	"fmt"
	"math"
)

// Rolling aggregates a series over a fixed-size trailing window.
//
// Rolling aggregates are metadata-preserving, not metadata-combining: there
// is exactly one input series, so every aggregation re-attaches a copy of the
// original metadata record and the original name unchanged.
type Rolling struct {
	src    *Series
	window int
}

// Rolling returns a window aggregator over the series.
func (s *Series) Rolling(window int) (*Rolling, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	return &Rolling{src: s, window: window}, nil
}

// Mean returns the trailing-window mean.
func (r *Rolling) Mean() *Series {
	return r.aggregate(func(window []float64) float64 {
		sum := 0.0
		for _, v := range window {
			sum += v
		}

		return sum / float64(len(window))
	})
}

// Sum returns the trailing-window sum.
func (r *Rolling) Sum() *Series {
	return r.aggregate(func(window []float64) float64 {
		sum := 0.0
		for _, v := range window {
			sum += v
		}

		return sum
	})
}

// Min returns the trailing-window minimum.
func (r *Rolling) Min() *Series {
	return r.aggregate(func(window []float64) float64 {
		best := window[0]
		for _, v := range window[1:] {
			if v < best {
				best = v
			}
		}

		return best
	})
}

// Max returns the trailing-window maximum.
func (r *Rolling) Max() *Series {
	return r.aggregate(func(window []float64) float64 {
		best := window[0]
		for _, v := range window[1:] {
			if v > best {
				best = v
			}
		}

		return best
	})
}

// Std returns the trailing-window sample standard deviation. Windows of one
// value yield null.
func (r *Rolling) Std() *Series {
	return r.aggregate(func(window []float64) float64 {
		n := float64(len(window))
		if n < 2 {
			return math.NaN()
		}

		mean := 0.0
		for _, v := range window {
			mean += v
		}

		mean /= n

		variance := 0.0
		for _, v := range window {
			variance += (v - mean) * (v - mean)
		}

		return math.Sqrt(variance / (n - 1))
	})
}

// aggregate applies fn over every complete window of non-null values. A
// position is null when fewer than window rows precede it or any of those
// rows is null.
func (r *Rolling) aggregate(fn func(window []float64) float64) *Series {
	s := r.src
	values := make([]float64, s.Len())
	valid := make([]bool, s.Len())
	buf := make([]float64, 0, r.window)

	for i := range s.values {
		if i+1 < r.window {
			continue
		}

		buf = buf[:0]
		complete := true

		for j := i + 1 - r.window; j <= i; j++ {
			if !s.valid[j] {
				complete = false

				break
			}

			buf = append(buf, s.values[j])
		}

		if !complete {
			continue
		}

		v := fn(buf)
		if math.IsNaN(v) {
			continue
		}

		values[i] = v
		valid[i] = true
	}

	return &Series{
		name:     s.name,
		values:   values,
		valid:    valid,
		index:    append([]int(nil), s.index...),
		metadata: s.metadata.Copy(),
		opts:     s.opts,
	}
}
