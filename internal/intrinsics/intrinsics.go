// Package intrinsics is the built-in function table: each
// intrinsic declares its signature as a value.Type (function kind) and
// is invoked by generated code via Call_Builtin, never allocating a
// call frame of its own.
// Intrinsics are name-overloaded on their argument's static type
// (print/puts/free accept any of several primitive shapes) since Fox
// has no sound generics; the type checker records the intrinsic's name,
// and the code generator resolves the call to a concrete Descriptor by
// matching both name and argument type and emits the Descriptor's ID as
// Call_Builtin's intrinsic-table index.
package intrinsics

import "github.com/foxlang/fox/internal/value"

// Descriptor is one resolved intrinsic: its dense dispatch ID (the
// operand Call_Builtin carries), its display name, and its signature.
type Descriptor struct {
	ID   uint32
	Name string
	Sig  *value.Type // KindFunction
}

var (
	byKey = map[string]*Descriptor{} // "name:argKind" -> descriptor
	byID  []*Descriptor
)

func register(name string, params []*value.Type, ret *value.Type) *Descriptor {
	d := &Descriptor{ID: uint32(len(byID)), Name: name, Sig: value.NewFunction(params, ret, false)}
	byID = append(byID, d)
	key := name
	if len(params) > 0 {
		key = name + ":" + params[0].DisplayStr()
	}
	byKey[key] = d
	return d
}

// voidPtr is Fox source's "*void", the pointee type alloc/free operate
// over at the type-checker level (alloc returns *void, free takes one).
var voidPtr = value.NewPointer(value.Void, true)

func init() {
	register("alloc", []*value.Type{value.Int}, voidPtr)
	register("panic", []*value.Type{value.Str}, value.Void)

	register("free_ptr", []*value.Type{voidPtr}, value.Void)
	register("free_slice", []*value.Type{value.NewSlice(value.Void)}, value.Void)
	register("free_str", []*value.Type{value.Str}, value.Void)

	register("str_len", []*value.Type{value.Str}, value.Int)
	register("str_is_empty", []*value.Type{value.Str}, value.Bool)

	for _, prim := range []*value.Type{value.Bool, value.Char, value.Int, value.Float, value.Str} {
		register("print_"+prim.DisplayStr(), []*value.Type{prim}, value.Void)
		register("puts_"+prim.DisplayStr(), []*value.Type{prim}, value.Void)
	}

	// Struct/enum printing takes the value's address plus a dense
	// definition-table index (the code generator's registry-parallel
	// StructTable/EnumTable, mirroring FuncTable) since the VM needs the
	// field/variant layout to recurse into nested values.
	register("print_struct", []*value.Type{voidPtr, value.Int}, value.Void)
	register("puts_struct", []*value.Type{voidPtr, value.Int}, value.Void)
	register("print_enum", []*value.Type{voidPtr, value.Int}, value.Void)
	register("puts_enum", []*value.Type{voidPtr, value.Int}, value.Void)
}

// Lookup finds the intrinsic overload matching name and the static
// type of its first argument (or, for zero-arg intrinsics, name alone).
func Lookup(name string, argKind *value.Type) (*Descriptor, bool) {
	key := name
	if argKind != nil {
		key = name + ":" + argKind.DisplayStr()
	}
	d, ok := byKey[key]
	return d, ok
}

// ByName finds the (unique, non-overloaded) intrinsic registered under
// name, for callers that have already resolved which concrete overload
// they want (e.g. "free_ptr" vs "free_slice") and just need its ID.
func ByName(name string) (*Descriptor, bool) {
	for _, d := range byID {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// ByID returns the descriptor with dispatch id, used by the VM to map
// a Call_Builtin operand back to an implementation.
func ByID(id uint32) (*Descriptor, bool) {
	if int(id) >= len(byID) {
		return nil, false
	}
	return byID[id], true
}

// Count returns the number of registered intrinsics.
func Count() int { return len(byID) }

// PrimitiveName resolves the print/puts intrinsic name suffix for a
// primitive kind, or "" if none exists (struct/enum printing is handled
// recursively by the VM itself via the definitions registry, spec
// §4.5 "Struct and enum printing").
func PrimitiveName(t *value.Type) (string, bool) {
	switch t.Kind {
	case value.KindBool, value.KindChar, value.KindInt, value.KindFloat, value.KindStr:
		return t.DisplayStr(), true
	default:
		return "", false
	}
}
