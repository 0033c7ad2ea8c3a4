package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabular-io/tabular/internal/diag"
	"github.com/tabular-io/tabular/internal/meta"
	"github.com/tabular-io/tabular/internal/proclog"
)

func combine(t *testing.T, op proclog.Operation, opts Options, operands ...Operand) *meta.Meta {
	t.Helper()

	m, err := Combine("result", op, operands, opts)
	require.NoError(t, err)
	require.NotNil(t, m)

	return m
}

func TestCombine_IdenticalUnitKept(t *testing.T) {
	a := Annotated("a", &meta.Meta{Unit: "people"})
	b := Annotated("b", &meta.Meta{Unit: "people"})

	m := combine(t, proclog.OpAdd, Options{}, a, b)

	assert.Equal(t, "people", m.Unit)
}

func TestCombine_DifferentTitle_DroppedSilently(t *testing.T) {
	rec := diag.NewRecorder()
	a := Annotated("a", &meta.Meta{Title: "Exports"})
	b := Annotated("b", &meta.Meta{Title: "Imports"})

	m := combine(t, proclog.OpAdd, Options{Diagnostics: rec}, a, b)

	assert.Empty(t, m.Title)
	assert.Zero(t, rec.Count(diag.CategoryDifferentValues))
}

func TestCombine_DifferentUnit_WarnsOutsideMulDiv(t *testing.T) {
	for _, op := range []proclog.Operation{proclog.OpAdd, proclog.OpSub, proclog.OpFillNA} {
		rec := diag.NewRecorder()
		a := Annotated("a", &meta.Meta{Unit: "people"})
		b := Annotated("b", &meta.Meta{Unit: "households"})

		m := combine(t, op, Options{Diagnostics: rec}, a, b)

		assert.Empty(t, m.Unit, "op %s", op)
		assert.Equal(t, 1, rec.Count(diag.CategoryDifferentValues), "op %s", op)
	}
}

func TestCombine_DifferentUnit_SilentUnderMulDiv(t *testing.T) {
	for _, op := range []proclog.Operation{proclog.OpMul, proclog.OpDiv} {
		rec := diag.NewRecorder()
		a := Annotated("a", &meta.Meta{Unit: "dollars"})
		b := Annotated("b", &meta.Meta{Unit: "people"})

		m := combine(t, op, Options{Diagnostics: rec}, a, b)

		assert.Empty(t, m.Unit, "op %s", op)
		assert.Zero(t, rec.Count(diag.CategoryDifferentValues), "op %s", op)
	}
}

func TestCombine_Division_FirstOperandUndefinedWins(t *testing.T) {
	a := Annotated("a", &meta.Meta{})
	b := Annotated("b", &meta.Meta{
		Unit:    "USD",
		Title:   "GDP",
		Display: map[string]any{"numDecimalPlaces": 0},
	})

	m := combine(t, proclog.OpDiv, Options{}, a, b)

	assert.Empty(t, m.Unit)
	assert.Empty(t, m.Title)
	assert.Nil(t, m.Display)
}

func TestCombine_Division_FirstOperandDefinedKeepsAgreement(t *testing.T) {
	a := Annotated("a", &meta.Meta{Unit: "USD"})
	b := Annotated("b", &meta.Meta{Unit: "USD"})

	m := combine(t, proclog.OpDiv, Options{}, a, b)

	assert.Equal(t, "USD", m.Unit)
}

func TestCombine_SourcesUnionFirstOccurrence(t *testing.T) {
	wb := meta.Source{Name: "World Bank"}
	un := meta.Source{Name: "UN"}
	who := meta.Source{Name: "WHO"}

	a := Annotated("a", &meta.Meta{Sources: []meta.Source{wb, un}})
	b := Annotated("b", &meta.Meta{Sources: []meta.Source{un, who}})

	m := combine(t, proclog.OpAdd, Options{}, a, b)

	require.Len(t, m.Sources, 3)
	assert.Equal(t, []meta.Source{wb, un, who}, m.Sources)
}

func TestUniqueSources_OrderAndDedup(t *testing.T) {
	wb := meta.Source{Name: "World Bank", URL: "https://data.worldbank.org"}
	un := meta.Source{Name: "UN"}

	a := Annotated("a", &meta.Meta{Sources: []meta.Source{wb, un}})
	b := Annotated("b", &meta.Meta{Sources: []meta.Source{wb}})

	sources := UniqueSources([]Operand{a, b})

	require.Len(t, sources, 2)
	assert.Equal(t, "World Bank", sources[0].Name)
	assert.Equal(t, "UN", sources[1].Name)
}

func TestUniqueOrigins_CopiesRecords(t *testing.T) {
	origin := meta.Origin{Producer: "Eurostat", License: &meta.License{Name: "CC BY 4.0"}}
	a := Annotated("a", &meta.Meta{Origins: []meta.Origin{origin}})

	origins := UniqueOrigins([]Operand{a})

	require.Len(t, origins, 1)

	origins[0].License.Name = "changed"
	assert.Equal(t, "CC BY 4.0", origin.License.Name)
}

func TestCombine_DescriptionKeyUnion(t *testing.T) {
	a := Annotated("a", &meta.Meta{DescriptionKey: []string{"k1", "k2"}})
	b := Annotated("b", &meta.Meta{DescriptionKey: []string{"k2", "k3"}})

	m := combine(t, proclog.OpAdd, Options{}, a, b)

	assert.Equal(t, []string{"k1", "k2", "k3"}, m.DescriptionKey)
}

func TestCombine_DisplayIdenticalCopied(t *testing.T) {
	display := map[string]any{"numDecimalPlaces": 1}
	a := Annotated("a", &meta.Meta{Display: display})
	b := Annotated("b", &meta.Meta{Display: map[string]any{"numDecimalPlaces": 1}})

	m := combine(t, proclog.OpAdd, Options{}, a, b)

	require.NotNil(t, m.Display)

	m.Display["numDecimalPlaces"] = 5
	assert.Equal(t, 1, display["numDecimalPlaces"])
}

func TestCombine_DisplayDifferent_DroppedSilently(t *testing.T) {
	rec := diag.NewRecorder()
	a := Annotated("a", &meta.Meta{Display: map[string]any{"numDecimalPlaces": 1}})
	b := Annotated("b", &meta.Meta{Display: map[string]any{"numDecimalPlaces": 2}})

	m := combine(t, proclog.OpAdd, Options{Diagnostics: rec}, a, b)

	assert.Nil(t, m.Display)
	assert.Zero(t, rec.Count(diag.CategoryDifferentValues))
}

func TestCombine_DimensionsDifferent_Warns(t *testing.T) {
	rec := diag.NewRecorder()
	a := Annotated("a", &meta.Meta{Dimensions: map[string]any{"sex": "male"}})
	b := Annotated("b", &meta.Meta{Dimensions: map[string]any{"sex": "female"}})

	m := combine(t, proclog.OpAdd, Options{Diagnostics: rec}, a, b)

	assert.Nil(t, m.Dimensions)
	assert.Equal(t, 1, rec.Count(diag.CategoryDifferentValues))
}

func TestCombine_LicenseAgreement(t *testing.T) {
	lic := meta.License{Name: "CC BY 4.0"}
	a := Annotated("a", &meta.Meta{License: &lic})
	b := Annotated("b", &meta.Meta{License: &meta.License{Name: "CC BY 4.0"}})

	m := combine(t, proclog.OpAdd, Options{}, a, b)

	require.NotNil(t, m.License)
	assert.Equal(t, "CC BY 4.0", m.License.Name)
	assert.NotSame(t, &lic, m.License)
}

func TestCombine_LicenseDisagreement_Warns(t *testing.T) {
	rec := diag.NewRecorder()
	a := Annotated("a", &meta.Meta{License: &meta.License{Name: "CC BY 4.0"}})
	b := Annotated("b", &meta.Meta{License: &meta.License{Name: "MIT"}})

	m := combine(t, proclog.OpSub, Options{Diagnostics: rec}, a, b)

	assert.Nil(t, m.License)
	assert.Equal(t, 1, rec.Count(diag.CategoryDifferentValues))
}

func TestCombine_ProcessingLevelMax(t *testing.T) {
	a := Annotated("a", &meta.Meta{ProcessingLevel: meta.ProcessingRaw})
	b := Annotated("b", &meta.Meta{ProcessingLevel: meta.ProcessingMajor})

	m := combine(t, proclog.OpAdd, Options{}, a, b)
	assert.Equal(t, meta.ProcessingMajor, m.ProcessingLevel)

	m = combine(t, proclog.OpAdd, Options{}, a)
	assert.Equal(t, meta.ProcessingRaw, m.ProcessingLevel)

	m = combine(t, proclog.OpAdd, Options{}, Annotated("a", &meta.Meta{}), Annotated("b", &meta.Meta{}))
	assert.Empty(t, m.ProcessingLevel)
}

func TestCombine_UnknownProcessingLevelFails(t *testing.T) {
	a := Annotated("a", &meta.Meta{ProcessingLevel: "experimental"})

	_, err := Combine("result", proclog.OpAdd, []Operand{a}, Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, meta.ErrUnknownProcessingLevel)
}

func TestCombine_SortRules(t *testing.T) {
	agree := []string{"low", "medium", "high"}

	a := Annotated("a", &meta.Meta{Sort: agree})
	b := Annotated("b", &meta.Meta{Sort: []string{"low", "medium", "high"}})
	m := combine(t, proclog.OpAdd, Options{}, a, b)
	assert.Equal(t, agree, m.Sort)

	c := Annotated("c", &meta.Meta{Sort: []string{"high", "low"}})
	m = combine(t, proclog.OpAdd, Options{}, a, c)
	assert.Empty(t, m.Sort)

	m = combine(t, proclog.OpAdd, Options{}, Annotated("a", &meta.Meta{}))
	assert.Empty(t, m.Sort)
}

func TestCombine_ProcessingLogEnabled(t *testing.T) {
	a := Annotated("a", &meta.Meta{ProcessingLog: proclog.Log{proclog.NewEntry("a", nil, proclog.OpCreate, "")}})
	b := Annotated("b", &meta.Meta{ProcessingLog: proclog.Log{proclog.NewEntry("b", nil, proclog.OpCreate, "")}})
	c := Annotated("c", &meta.Meta{ProcessingLog: proclog.Log{proclog.NewEntry("c", nil, proclog.OpCreate, "")}})

	m := combine(t, proclog.OpConcat, Options{ProcessingLog: true}, a, b, c)

	require.Len(t, m.ProcessingLog, 4)
	assert.Equal(t, "a", m.ProcessingLog[0].Variable)
	assert.Equal(t, "b", m.ProcessingLog[1].Variable)
	assert.Equal(t, "c", m.ProcessingLog[2].Variable)

	last := m.ProcessingLog[3]
	assert.Equal(t, "result", last.Variable)
	assert.Equal(t, proclog.OpConcat, last.Operation)
	assert.Equal(t, []string{"a", "b", "c"}, last.Parents)
}

func TestCombine_ProcessingLogDisabled(t *testing.T) {
	a := Annotated("a", &meta.Meta{ProcessingLog: proclog.Log{proclog.NewEntry("a", nil, proclog.OpCreate, "")}})
	b := Annotated("b", &meta.Meta{ProcessingLog: proclog.Log{proclog.NewEntry("b", nil, proclog.OpCreate, "")}})

	m := combine(t, proclog.OpAdd, Options{ProcessingLog: false}, a, b)

	assert.Empty(t, m.ProcessingLog)
}

func TestCombine_ScalarOperandsIgnoredForMetadataButLogged(t *testing.T) {
	a := Annotated("a", &meta.Meta{Unit: "people"})

	m := combine(t, proclog.OpMul, Options{ProcessingLog: true}, a, Scalar(2.5))

	assert.Equal(t, "people", m.Unit)
	require.Len(t, m.ProcessingLog, 1)
	assert.Equal(t, []string{"a", "2.5"}, m.ProcessingLog[0].Parents)
}

func TestCombine_NoOperands_EmptyFields(t *testing.T) {
	m := combine(t, proclog.OpCreate, Options{}, Scalar(1))

	assert.Empty(t, m.Title)
	assert.Empty(t, m.Unit)
	assert.Nil(t, m.Sources)
	assert.Nil(t, m.Display)
	assert.Empty(t, m.ProcessingLevel)
}
