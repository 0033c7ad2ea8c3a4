// Package diag provides the non-fatal diagnostics channel of the metadata
// engine.
//
// Data-inconsistency conditions (operands disagreeing on a unit, an in-place
// fill that may desynchronize metadata) are warned about and never interrupt
// execution: the engine resolves the disputed field to "undefined" and keeps
// going. Diagnostics flow through an explicit Collector so tests can assert
// exactly which warnings fired, instead of scraping process-wide log output.
package diag

import (
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// Category classifies a diagnostic.
type Category string

// Diagnostic categories.
const (
	// CategoryDifferentValues fires when operands disagree on a field the
	// merge algebra expected to be consistent (unit, short unit, type,
	// license, dimensions).
	CategoryDifferentValues Category = "different_values"

	// CategoryInPlaceMutation fires when fillna/dropna is requested in
	// place: the data mutates but downstream holders of the old metadata
	// record are not updated.
	CategoryInPlaceMutation Category = "inplace_may_lose_metadata"
)

type (
	// Diagnostic is one non-fatal warning emitted by the engine.
	Diagnostic struct {
		Category Category
		Message  string

		// Detail carries structured context (field name, disputed values,
		// operation tag) for log sinks and assertions.
		Detail map[string]string
	}

	// Collector receives diagnostics. Implementations must tolerate
	// concurrent use when shared across goroutines.
	Collector interface {
		Warn(d Diagnostic)
	}
)

// Discard drops every diagnostic. It is the default collector when none is
// configured.
var Discard Collector = discard{}

type discard struct{}

func (discard) Warn(Diagnostic) {}

// Recorder collects diagnostics in memory for inspection, primarily in tests.
type Recorder struct {
	mu   sync.Mutex
	seen []Diagnostic
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Warn appends the diagnostic to the recorder.
func (r *Recorder) Warn(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen = append(r.seen, d)
}

// All returns a copy of every recorded diagnostic in emission order.
func (r *Recorder) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Diagnostic(nil), r.seen...)
}

// Count returns how many diagnostics of the given category were recorded.
func (r *Recorder) Count(c Category) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, d := range r.seen {
		if d.Category == c {
			n++
		}
	}

	return n
}

// Reset discards all recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen = nil
}

// LogSink forwards diagnostics to a structured logger, rate-limited so a hot
// loop combining thousands of disagreeing columns cannot flood the log. A
// token bucket is shared across categories; diagnostics over the limit are
// counted and dropped.
type LogSink struct {
	logger  *slog.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	dropped int
}

// NewLogSink creates a sink writing to the given logger, allowing at most
// warnsPerSecond diagnostics per second (with equal burst). A non-positive
// rate disables limiting.
func NewLogSink(logger *slog.Logger, warnsPerSecond int) *LogSink {
	var limiter *rate.Limiter
	if warnsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(warnsPerSecond), warnsPerSecond)
	}

	return &LogSink{logger: logger, limiter: limiter}
}

// Warn logs the diagnostic at warning level unless rate-limited.
func (s *LogSink) Warn(d Diagnostic) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()

		return
	}

	attrs := make([]any, 0, 2+len(d.Detail)*2)
	attrs = append(attrs, slog.String("category", string(d.Category)))

	for k, v := range d.Detail {
		attrs = append(attrs, slog.String(k, v))
	}

	s.logger.Warn(d.Message, attrs...)
}

// Dropped returns how many diagnostics were discarded by rate limiting.
func (s *LogSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dropped
}
