package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/foxlang/fox/internal/value"
)

func TestNextIDNeverZeroAndUnique(t *testing.T) {
	r := New()
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		id := r.NextID()
		require.NotEqual(t, uuid.Nil, id)
		require.False(t, seen[id], "UUID collision at iteration %d", i)
		seen[id] = true
	}
}

func TestAddStructDuplicatePanics(t *testing.T) {
	r := New()
	id := r.NextID()
	s := &Struct{ID: id, Name: "Point"}
	r.AddStruct(s)

	require.Panics(t, func() {
		r.AddStruct(&Struct{ID: id, Name: "Point2"})
	})
}

func TestGetStructByUUIDAbsent(t *testing.T) {
	r := New()
	_, ok := r.GetStructByUUID(uuid.New())
	require.False(t, ok)
}

func TestStructFieldOffsetsStableOnAppend(t *testing.T) {
	s := &Struct{
		Fields: []StructField{
			{Name: "x", Offset: 0, Type: value.Int},
			{Name: "y", Offset: 8, Type: value.Int},
		},
	}
	before := s.FindField("x").Offset
	s.Fields = append(s.Fields, StructField{Name: "z", Offset: 16, Type: value.Int})
	require.Equal(t, before, s.FindField("x").Offset)
	require.EqualValues(t, 24, s.DefSize())
}

func TestEnumFindVariantByTagTotalAndPartial(t *testing.T) {
	e := &Enum{
		Variants: []EnumVariant{
			{Tag: 0, Name: "A"},
			{Tag: 1, Name: "B", Payload: []EnumPayloadField{{Offset: 0, Type: value.Int}}},
		},
	}
	v, ok := e.FindVariantByTag(1)
	require.True(t, ok)
	require.Equal(t, "B", v.Name)

	_, ok = e.FindVariantByTag(99)
	require.False(t, ok)

	require.EqualValues(t, 16, e.DefSize()) // tag(8) + int payload(8)
}
