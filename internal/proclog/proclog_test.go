package proclog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry_CopiesParents(t *testing.T) {
	parents := []string{"gdp", "population"}

	e := NewEntry("gdp_per_capita", parents, OpDiv, "")

	parents[0] = "mutated"

	require.Len(t, e.Parents, 2)
	assert.Equal(t, "gdp", e.Parents[0])
	assert.NotEmpty(t, e.ID)
}

func TestOperation_IsValid(t *testing.T) {
	assert.True(t, OpAdd.IsValid())
	assert.True(t, OpPctChange.IsValid())
	assert.True(t, OpConcat.IsValid())
	assert.False(t, Operation("explode").IsValid())
	assert.False(t, Operation("").IsValid())
}

func TestOperation_IsArithmetic(t *testing.T) {
	assert.True(t, OpDiv.IsArithmetic())
	assert.True(t, OpMod.IsArithmetic())
	assert.False(t, OpFillNA.IsArithmetic())
	assert.False(t, OpConcat.IsArithmetic())
}

func TestLog_Append_DoesNotMutateReceiver(t *testing.T) {
	l := Log{NewEntry("a", nil, OpCreate, "")}

	l2 := l.Append(NewEntry("b", []string{"a"}, OpRename, ""))

	assert.Len(t, l, 1)
	require.Len(t, l2, 2)
	assert.Equal(t, "b", l2[1].Variable)
}

func TestCombine_PreservesArgumentOrder(t *testing.T) {
	la := Log{NewEntry("a", nil, OpCreate, "")}
	lb := Log{NewEntry("b", nil, OpCreate, "")}
	lc := Log{NewEntry("c", nil, OpCreate, "")}

	combined := Combine(la, lb, lc)

	require.Len(t, combined, 3)
	assert.Equal(t, "a", combined[0].Variable)
	assert.Equal(t, "b", combined[1].Variable)
	assert.Equal(t, "c", combined[2].Variable)
}

func TestCombine_EmptyLogs(t *testing.T) {
	assert.Nil(t, Combine())
	assert.Nil(t, Combine(nil, Log{}))
}

func TestLog_Copy_Independent(t *testing.T) {
	l := Log{NewEntry("a", []string{"x", "y"}, OpAdd, "")}

	cp := l.Copy()
	cp[0].Parents[0] = "mutated"
	cp[0].Variable = "b"

	assert.Equal(t, "x", l[0].Parents[0])
	assert.Equal(t, "a", l[0].Variable)
}

func TestLog_Equal_IgnoresIDs(t *testing.T) {
	a := Log{NewEntry("a", []string{"x"}, OpAdd, "note")}
	b := Log{NewEntry("a", []string{"x"}, OpAdd, "note")}

	assert.NotEqual(t, a[0].ID, b[0].ID)
	assert.True(t, a.Equal(b))
}

func TestLog_Equal_DifferentHistory(t *testing.T) {
	a := Log{NewEntry("a", []string{"x"}, OpAdd, "")}
	b := Log{NewEntry("a", []string{"x"}, OpSub, "")}

	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}
