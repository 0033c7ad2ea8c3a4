package diag

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CollectsInOrder(t *testing.T) {
	r := NewRecorder()

	r.Warn(Diagnostic{Category: CategoryDifferentValues, Message: "unit mismatch"})
	r.Warn(Diagnostic{Category: CategoryInPlaceMutation, Message: "in-place fillna"})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "unit mismatch", all[0].Message)
	assert.Equal(t, CategoryInPlaceMutation, all[1].Category)
}

func TestRecorder_Count(t *testing.T) {
	r := NewRecorder()

	r.Warn(Diagnostic{Category: CategoryDifferentValues})
	r.Warn(Diagnostic{Category: CategoryDifferentValues})
	r.Warn(Diagnostic{Category: CategoryInPlaceMutation})

	assert.Equal(t, 2, r.Count(CategoryDifferentValues))
	assert.Equal(t, 1, r.Count(CategoryInPlaceMutation))
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder()
	r.Warn(Diagnostic{Category: CategoryDifferentValues})

	r.Reset()

	assert.Empty(t, r.All())
}

func TestDiscard_DoesNothing(t *testing.T) {
	// Must not panic.
	Discard.Warn(Diagnostic{Category: CategoryDifferentValues, Message: "ignored"})
}

func TestLogSink_WritesStructuredWarning(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewLogSink(logger, 0)

	sink.Warn(Diagnostic{
		Category: CategoryDifferentValues,
		Message:  "operands disagree on unit",
		Detail:   map[string]string{"field": "unit"},
	})

	out := buf.String()
	assert.Contains(t, out, "operands disagree on unit")
	assert.Contains(t, out, string(CategoryDifferentValues))
	assert.Contains(t, out, `"field":"unit"`)
}

func TestLogSink_RateLimitsAndCountsDropped(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewLogSink(logger, 1)

	for i := 0; i < 10; i++ {
		sink.Warn(Diagnostic{Category: CategoryDifferentValues, Message: "spam"})
	}

	logged := strings.Count(buf.String(), "spam")
	assert.LessOrEqual(t, logged, 2)
	assert.Equal(t, 10-logged, sink.Dropped())
}
