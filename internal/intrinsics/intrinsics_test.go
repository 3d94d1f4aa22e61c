package intrinsics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foxlang/fox/internal/value"
)

func TestLookupResolvesOverloadByArgumentType(t *testing.T) {
	printInt, ok := Lookup("print_int", value.Int)
	require.True(t, ok)

	printStr, ok := Lookup("print_str", value.Str)
	require.True(t, ok)

	require.NotEqual(t, printInt.ID, printStr.ID)
}

func TestLookupMissesOnWrongArgumentType(t *testing.T) {
	_, ok := Lookup("print_int", value.Str)
	require.False(t, ok)
}

func TestLookupStructPrintingKeysOnVoidPointer(t *testing.T) {
	voidPtr := value.NewPointer(value.Void, true)
	d, ok := Lookup("puts_struct", voidPtr)
	require.True(t, ok)
	require.Equal(t, "puts_struct", d.Name)
}

func TestByIDRoundTripsEveryRegisteredDescriptor(t *testing.T) {
	for id := 0; id < Count(); id++ {
		d, ok := ByID(uint32(id))
		require.True(t, ok)
		require.Equal(t, uint32(id), d.ID)
	}
	_, ok := ByID(uint32(Count()))
	require.False(t, ok)
}

func TestByNameFindsFreeOverloads(t *testing.T) {
	ptr, ok := ByName("free_ptr")
	require.True(t, ok)
	slice, ok := ByName("free_slice")
	require.True(t, ok)
	require.NotEqual(t, ptr.ID, slice.ID)
}

func TestPrimitiveNameCoversScalarKindsOnly(t *testing.T) {
	name, ok := PrimitiveName(value.Int)
	require.True(t, ok)
	require.Equal(t, "int", name)

	_, ok = PrimitiveName(value.NewPointer(value.Void, true))
	require.False(t, ok)
}
