package value

import "testing"

import "github.com/stretchr/testify/require"

func TestPrimitiveSizes(t *testing.T) {
	require.EqualValues(t, 1, Bool.Size())
	require.EqualValues(t, 4, Char.Size())
	require.EqualValues(t, 8, Int.Size())
	require.EqualValues(t, 8, Float.Size())
	require.EqualValues(t, 16, Str.Size())
	require.EqualValues(t, 0, Void.Size())
}

func TestArraySizeAlignsToWord(t *testing.T) {
	arr := NewArray(Char, 3) // 3*4 = 12 bytes, rounds to 16
	require.EqualValues(t, 16, arr.Size())
}

func TestTupleOffsetsStableOnAppend(t *testing.T) {
	elems := []*Type{Int, Bool}
	offsets := OffsetsOfTuple(elems)
	require.Equal(t, []int64{0, 8}, offsets)

	elems2 := append(append([]*Type{}, elems...), Char)
	offsets2 := OffsetsOfTuple(elems2)
	// earlier offsets unaffected by the appended field
	require.Equal(t, offsets[0], offsets2[0])
	require.Equal(t, offsets[1], offsets2[1])
}

func TestEqualityReflexiveSymmetricTransitive(t *testing.T) {
	a := NewPointer(Int, true)
	b := NewPointer(Int, true)
	c := NewPointer(Int, true)

	require.True(t, a.Eq(a))
	require.Equal(t, a.Eq(b), b.Eq(a))
	if a.Eq(b) && b.Eq(c) {
		require.True(t, a.Eq(c))
	}
}

func TestAssignableFromRequiresTargetMut(t *testing.T) {
	mutInt := Int.Mut()
	immutInt := Int.Immut()

	require.True(t, mutInt.AssignableFrom(immutInt))
	require.False(t, immutInt.AssignableFrom(mutInt))
}

func TestAssignableFromRespectsPointerChildMutability(t *testing.T) {
	dst := NewPointer(Int, true).Mut()  // *mut int, mut place
	srcOK := NewPointer(Int, true)      // *mut int
	srcBad := NewPointer(Int, false)    // *int

	require.True(t, dst.AssignableFrom(srcOK))
	require.False(t, dst.AssignableFrom(srcBad))
}

func TestDisplayStr(t *testing.T) {
	require.Equal(t, "*mut int", NewPointer(Int, true).DisplayStr())
	require.Equal(t, "[3]char", NewArray(Char, 3).DisplayStr())
	require.Equal(t, "(int,bool)->void", NewFunction([]*Type{Int, Bool}, Void, false).DisplayStr())
}

func TestPartiallyMutable(t *testing.T) {
	tup := NewTuple([]*Type{Int, NewPointer(Int, true).Mut()})
	require.True(t, tup.IsPartiallyMutable())

	tup2 := NewTuple([]*Type{Int, Bool})
	require.False(t, tup2.IsPartiallyMutable())
}
