package meta

import (
	"github.com/tabular-io/tabular/internal/proclog"
)

// ValueType declares how a column's values should be interpreted downstream.
type ValueType string

// Declared value types.
const (
	TypeNumeric ValueType = "numeric"
	TypeOrdinal ValueType = "ordinal"
	TypeNominal ValueType = "nominal"
)

// Meta is the metadata record attached to a single column.
//
// A zero-valued field means "undefined": no operand contributed it. The merge
// algebra never writes sentinel strings, so empty string / nil collection is
// the only representation of absence. The record is immutable by convention:
// operations build new records rather than editing one in place, and Copy
// guarantees no aliasing when an explicit duplicate is needed.
type Meta struct {
	// Title is the short human-readable name of the column.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Description is the long-form description shown to chart readers.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// DescriptionShort is a one-sentence summary.
	DescriptionShort string `json:"description_short,omitempty" yaml:"description_short,omitempty"`

	// DescriptionFromProducer is the producer's own wording, kept verbatim.
	DescriptionFromProducer string `json:"description_from_producer,omitempty" yaml:"description_from_producer,omitempty"`

	// DescriptionKey lists key points, unique and insertion-ordered.
	DescriptionKey []string `json:"description_key,omitempty" yaml:"description_key,omitempty"`

	// Unit and ShortUnit describe the column's measurement unit
	// (e.g. "international dollars" / "$"). They must be consistent across
	// combined operands or become undefined.
	Unit      string `json:"unit,omitempty" yaml:"unit,omitempty"`
	ShortUnit string `json:"short_unit,omitempty" yaml:"short_unit,omitempty"`

	// Sources is the legacy provenance list, unique and insertion-ordered.
	Sources []Source `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Origins is the structured provenance list, unique and insertion-ordered.
	Origins []Origin `json:"origins,omitempty" yaml:"origins,omitempty"`

	// Licenses lists the redistribution terms of every contributing dataset.
	Licenses []License `json:"licenses,omitempty" yaml:"licenses,omitempty"`

	// Display and Presentation are opaque rendering hints (grapher config,
	// public title overrides). The merge algebra treats them as indivisible
	// dictionaries: kept when identical across operands, dropped otherwise.
	Display      map[string]any `json:"display,omitempty" yaml:"display,omitempty"`
	Presentation map[string]any `json:"presentation,omitempty" yaml:"presentation,omitempty"`

	// ProcessingLevel records how much transformation the column has
	// undergone; combining columns takes the maximum.
	ProcessingLevel ProcessingLevel `json:"processing_level,omitempty" yaml:"processing_level,omitempty"`

	// Type optionally declares the column's value type.
	Type ValueType `json:"type,omitempty" yaml:"type,omitempty"`

	// Sort lists category labels in display order, for ordinal columns.
	Sort []string `json:"sort,omitempty" yaml:"sort,omitempty"`

	// License is the legacy single-license field.
	License *License `json:"license,omitempty" yaml:"license,omitempty"`

	// Dimensions describes faceted breakdowns (age, sex) as an opaque
	// structure compared by content hash.
	Dimensions map[string]any `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// ProcessingLog is the column's append-only derivation history.
	ProcessingLog proclog.Log `json:"processing_log,omitempty" yaml:"processing_log,omitempty"`
}

// New returns an empty metadata record.
func New() *Meta {
	return &Meta{}
}

// Copy returns a deep copy: no slice, map, or nested record is shared with
// the receiver.
func (m *Meta) Copy() *Meta {
	if m == nil {
		return nil
	}

	out := *m

	out.DescriptionKey = append([]string(nil), m.DescriptionKey...)
	out.Sort = append([]string(nil), m.Sort...)

	if m.Sources != nil {
		out.Sources = append([]Source(nil), m.Sources...)
	}

	if m.Origins != nil {
		out.Origins = make([]Origin, len(m.Origins))
		for i, o := range m.Origins {
			out.Origins[i] = o.Copy()
		}
	}

	if m.Licenses != nil {
		out.Licenses = append([]License(nil), m.Licenses...)
	}

	if m.License != nil {
		lic := *m.License
		out.License = &lic
	}

	out.Display = CloneDict(m.Display)
	out.Presentation = CloneDict(m.Presentation)
	out.Dimensions = CloneDict(m.Dimensions)
	out.ProcessingLog = m.ProcessingLog.Copy()

	return &out
}

// Equal reports whether two records carry the same content. Opaque
// dictionaries and provenance records are compared by content hash; the
// processing log is compared by history, ignoring entry IDs.
func (m *Meta) Equal(other *Meta) bool {
	if m == nil || other == nil {
		return m == other
	}

	if m.Title != other.Title ||
		m.Description != other.Description ||
		m.DescriptionShort != other.DescriptionShort ||
		m.DescriptionFromProducer != other.DescriptionFromProducer ||
		m.Unit != other.Unit ||
		m.ShortUnit != other.ShortUnit ||
		m.ProcessingLevel != other.ProcessingLevel ||
		m.Type != other.Type {
		return false
	}

	if !stringSlicesEqual(m.DescriptionKey, other.DescriptionKey) ||
		!stringSlicesEqual(m.Sort, other.Sort) {
		return false
	}

	if (m.License == nil) != (other.License == nil) {
		return false
	}

	if m.License != nil && *m.License != *other.License {
		return false
	}

	if !contentEqual(m.Sources, other.Sources) ||
		!contentEqual(m.Origins, other.Origins) ||
		!contentEqual(m.Licenses, other.Licenses) {
		return false
	}

	if !DictEqual(m.Display, other.Display) ||
		!DictEqual(m.Presentation, other.Presentation) ||
		!DictEqual(m.Dimensions, other.Dimensions) {
		return false
	}

	return m.ProcessingLog.Equal(other.ProcessingLog)
}

// IsEmpty reports whether no field of the record is defined.
func (m *Meta) IsEmpty() bool {
	return m == nil || m.Equal(&Meta{})
}

func stringSlicesEqual(a, b []string) bool {
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

func contentEqual(a, b any) bool {
	ha, errA := ContentHash(a)
	hb, errB := ContentHash(b)

	if errA != nil || errB != nil {
		return false
	}

	return ha == hb
}
