// Package merge implements the metadata merge algebra: the pure rules that
// decide, field by field, what metadata the result of an operation over
// annotated columns may keep.
//
// The rules fall into a small number of shapes:
//
//   - agree-or-forget: descriptive scalars (title, unit, type, ...) survive
//     only when every operand that defines them agrees; disagreement drops
//     the field, and for unit-like fields emits a diagnostic.
//   - set union: provenance collections (sources, origins, licenses, key
//     points) are concatenated with first-occurrence deduplication, so the
//     result is attributed to every contributing dataset exactly once.
//   - max by rank: the processing level of a derived column is the highest
//     level among its inputs.
//   - log concatenation: operand processing logs are concatenated in operand
//     order and extended with one entry for the operation itself.
//
// Division is asymmetric: when the first operand leaves a descriptive field
// undefined, the result leaves it undefined too, regardless of the divisor.
// Dividing a described quantity by an undescribed one must not inherit the
// divisor's description. This convention is deliberately not extended to any
// other operation.
package merge

import (
	"fmt"

	"github.com/tabular-io/tabular/internal/diag"
	"github.com/tabular-io/tabular/internal/meta"
	"github.com/tabular-io/tabular/internal/proclog"
)

type (
	// Operand is one participant in an operation. Plain scalars and raw
	// (un-annotated) sequences carry a nil Meta: they contribute nothing to
	// the merged metadata but still appear in the processing log as parents.
	Operand struct {
		// Meta is the operand's metadata record, nil for un-annotated
		// operands.
		Meta *meta.Meta

		// Parent is how the operand is named in processing-log entries:
		// the column name for annotated operands, the formatted value for
		// scalars.
		Parent string
	}

	// Options configures a Combine call. It is threaded explicitly through
	// every operation instead of living in process-wide state, so behavior
	// is deterministic and testable.
	Options struct {
		// ProcessingLog enables log concatenation and the per-operation
		// entry. Disabled logs are left exactly as they were, and
		// re-enabling later does not corrupt history.
		ProcessingLog bool

		// Diagnostics receives non-fatal warnings. Nil means discard.
		Diagnostics diag.Collector
	}
)

// DefaultOptions enables processing-log tracking and discards diagnostics.
func DefaultOptions() Options {
	return Options{ProcessingLog: true, Diagnostics: diag.Discard}
}

func (o Options) collector() diag.Collector {
	if o.Diagnostics == nil {
		return diag.Discard
	}

	return o.Diagnostics
}

// Annotated returns an operand for a column carrying metadata.
func Annotated(parent string, m *meta.Meta) Operand {
	return Operand{Meta: m, Parent: parent}
}

// Scalar returns an operand for a plain value with no metadata.
func Scalar(value any) Operand {
	return Operand{Parent: fmt.Sprintf("%v", value)}
}

// Combine computes the metadata record of the column named variable produced
// by applying op to the given operands, in order.
//
// Combine is pure up to the diagnostics side channel: it never mutates any
// operand's record, and the only error condition is a processing level
// outside the known ordinal set, which fails fast to surface producer bugs.
func Combine(variable string, op proclog.Operation, operands []Operand, opts Options) (*meta.Meta, error) {
	metas := annotatedMetas(operands)
	d := opts.collector()

	out := meta.New()

	out.Title = resolveString(metas, op, "title", d, silent,
		func(m *meta.Meta) string { return m.Title })
	out.Description = resolveString(metas, op, "description", d, silent,
		func(m *meta.Meta) string { return m.Description })
	out.DescriptionShort = resolveString(metas, op, "description_short", d, silent,
		func(m *meta.Meta) string { return m.DescriptionShort })
	out.DescriptionFromProducer = resolveString(metas, op, "description_from_producer", d, silent,
		func(m *meta.Meta) string { return m.DescriptionFromProducer })
	out.Unit = resolveString(metas, op, "unit", d, warned,
		func(m *meta.Meta) string { return m.Unit })
	out.ShortUnit = resolveString(metas, op, "short_unit", d, warned,
		func(m *meta.Meta) string { return m.ShortUnit })
	out.Type = meta.ValueType(resolveString(metas, op, "type", d, warned,
		func(m *meta.Meta) string { return string(m.Type) }))

	out.License = resolveLicense(metas, op, d)
	out.Dimensions = resolveDict(metas, op, "dimensions", d, warned,
		func(m *meta.Meta) map[string]any { return m.Dimensions })

	out.Display = resolveDict(metas, op, "display", d, silent,
		func(m *meta.Meta) map[string]any { return m.Display })
	out.Presentation = resolveDict(metas, op, "presentation", d, silent,
		func(m *meta.Meta) map[string]any { return m.Presentation })

	out.Sources = uniqueSources(metas)
	out.Origins = uniqueOrigins(metas)
	out.Licenses = uniqueLicenses(metas)
	out.DescriptionKey = uniqueStrings(metas, func(m *meta.Meta) []string { return m.DescriptionKey })

	level, err := combineProcessingLevel(metas)
	if err != nil {
		return nil, err
	}

	out.ProcessingLevel = level
	out.Sort = combineSort(metas)

	if opts.ProcessingLog {
		out.ProcessingLog = combineLogs(variable, op, operands, metas)
	}

	return out, nil
}

// annotatedMetas filters operands down to the metadata records that actually
// participate in field resolution.
func annotatedMetas(operands []Operand) []*meta.Meta {
	metas := make([]*meta.Meta, 0, len(operands))

	for _, o := range operands {
		if o.Meta != nil {
			metas = append(metas, o.Meta)
		}
	}

	return metas
}

// Warning policy for agree-or-forget fields. Unit-like fields warn on
// disagreement except under multiply/divide, where mismatched units are
// expected and the result legitimately has none.
const (
	silent = false
	warned = true
)

func shouldWarn(warnable bool, op proclog.Operation) bool {
	return warnable && op != proclog.OpMul && op != proclog.OpDiv
}

func warnDifferent(d diag.Collector, field string, op proclog.Operation, a, b string) {
	d.Warn(diag.Diagnostic{
		Category: diag.CategoryDifferentValues,
		Message:  fmt.Sprintf("operands have different values for %s, dropping it from the result", field),
		Detail: map[string]string{
			"field":     field,
			"operation": string(op),
			"values":    fmt.Sprintf("%q != %q", a, b),
		},
	})
}

// resolveString applies the agree-or-forget rule to an optional string field.
func resolveString(metas []*meta.Meta, op proclog.Operation, field string, d diag.Collector, warnable bool, get func(*meta.Meta) string) string {
	if op == proclog.OpDiv && len(metas) > 0 && get(metas[0]) == "" {
		return ""
	}

	first := ""

	for _, m := range metas {
		v := get(m)
		if v == "" {
			continue
		}

		if first == "" {
			first = v

			continue
		}

		if v != first {
			if shouldWarn(warnable, op) {
				warnDifferent(d, field, op, first, v)
			}

			return ""
		}
	}

	return first
}

// resolveLicense applies the agree-or-forget rule to the legacy single
// license field, comparing by content.
func resolveLicense(metas []*meta.Meta, op proclog.Operation, d diag.Collector) *meta.License {
	if op == proclog.OpDiv && len(metas) > 0 && metas[0].License == nil {
		return nil
	}

	var first *meta.License

	for _, m := range metas {
		if m.License == nil {
			continue
		}

		if first == nil {
			first = m.License

			continue
		}

		if !first.Equal(*m.License) {
			if shouldWarn(warned, op) {
				warnDifferent(d, "license", op, first.Name, m.License.Name)
			}

			return nil
		}
	}

	if first == nil {
		return nil
	}

	lic := *first

	return &lic
}

// resolveDict applies the agree-or-forget rule to an opaque dictionary field,
// comparing by content hash.
func resolveDict(metas []*meta.Meta, op proclog.Operation, field string, d diag.Collector, warnable bool, get func(*meta.Meta) map[string]any) map[string]any {
	if op == proclog.OpDiv && len(metas) > 0 && get(metas[0]) == nil {
		return nil
	}

	var first map[string]any

	for _, m := range metas {
		v := get(m)
		if v == nil {
			continue
		}

		if first == nil {
			first = v

			continue
		}

		if !meta.DictEqual(first, v) {
			if shouldWarn(warnable, op) {
				warnDifferent(d, field, op, fmt.Sprintf("%v", first), fmt.Sprintf("%v", v))
			}

			return nil
		}
	}

	return meta.CloneDict(first)
}

func combineProcessingLevel(metas []*meta.Meta) (meta.ProcessingLevel, error) {
	levels := make([]meta.ProcessingLevel, 0, len(metas))
	for _, m := range metas {
		levels = append(levels, m.ProcessingLevel)
	}

	level, err := meta.MaxProcessingLevel(levels...)
	if err != nil {
		return "", fmt.Errorf("failed to combine processing levels: %w", err)
	}

	return level, nil
}

// combineSort keeps the sort labels only when every operand that defines
// them agrees exactly; any disagreement resets chart ordering to default.
func combineSort(metas []*meta.Meta) []string {
	var first []string

	for _, m := range metas {
		if len(m.Sort) == 0 {
			continue
		}

		if first == nil {
			first = m.Sort

			continue
		}

		if !sameStrings(first, m.Sort) {
			return nil
		}
	}

	return append([]string(nil), first...)
}

func combineLogs(variable string, op proclog.Operation, operands []Operand, metas []*meta.Meta) proclog.Log {
	logs := make([]proclog.Log, 0, len(metas))
	for _, m := range metas {
		logs = append(logs, m.ProcessingLog)
	}

	parents := make([]string, 0, len(operands))
	for _, o := range operands {
		parents = append(parents, o.Parent)
	}

	return proclog.Combine(logs...).Append(proclog.NewEntry(variable, parents, op, ""))
}

func sameStrings(a, b []string) bool {
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
