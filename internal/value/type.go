// Package value implements the Value & Type Model shared by the type
// checker, code generator, and virtual machine: the
// compiler's static description of a value's kind, size, mutability,
// and layout.
package value

import (
	"fmt"
	"strings"
)

// Kind identifies which variant of Type a value carries.
type Kind int

const (
	KindUnresolved Kind = iota
	KindNone
	KindVoid
	KindBool
	KindChar
	KindInt
	KindFloat
	KindStr
	KindPointer
	KindArray
	KindSlice
	KindTuple
	KindRange
	KindFunction
	KindStruct
	KindEnum
	KindType
)

// wordSize is the VM's native pointer/word width in bytes.
const wordSize = 8

// Type is the tagged variant describing a Fox value's static type.
// Each instance owns its children directly, so the whole graph is
// tree-shaped and structural equality is a cheap recursive compare.
type Type struct {
	Kind Kind
	// IsMut marks the value itself as mutable.
	IsMut bool

	// KindUnresolved
	UnresolvedName string

	// KindPointer: child type and the mutability of the pointee.
	Elem *Type

	// KindArray
	ArrayLen int64

	// KindTuple: ordered children; their offsets come from OffsetsOfTuple.
	Tuple []*Type

	// KindRange
	Inclusive bool

	// KindFunction
	Params  []*Type
	Return  *Type
	Varargs bool

	// KindStruct / KindEnum: opaque pointer to the definitions registry
	// record (kept as interface{} to avoid an import cycle with
	// internal/registry; registry.Struct/registry.Enum are stored here).
	Def interface{}
}

// Common singleton instances for the primitive kinds: they carry no
// mutable state, so one shared instance per kind is sufficient and
// makes equality checks cheap.
var (
	Unresolved = &Type{Kind: KindUnresolved}
	None       = &Type{Kind: KindNone}
	Void       = &Type{Kind: KindVoid}
	Bool       = &Type{Kind: KindBool}
	Char       = &Type{Kind: KindChar}
	Int        = &Type{Kind: KindInt}
	Float      = &Type{Kind: KindFloat}
	Str        = &Type{Kind: KindStr}
)

// NewUnresolved creates a placeholder type bound to an identifier
// awaiting resolution.
func NewUnresolved(name string) *Type {
	return &Type{Kind: KindUnresolved, UnresolvedName: name}
}

// Mut returns a copy of t with IsMut set, used when binding a mutable
// place.
func (t *Type) Mut() *Type {
	cp := *t
	cp.IsMut = true
	return &cp
}

// Immut returns a copy of t with IsMut cleared.
func (t *Type) Immut() *Type {
	cp := *t
	cp.IsMut = false
	return &cp
}

// NewPointer constructs a pointer-to type; childMut records the
// mutability of the pointee.
func NewPointer(elem *Type, childMut bool) *Type {
	return &Type{Kind: KindPointer, Elem: elem.withMut(childMut)}
}

func (t *Type) withMut(mut bool) *Type {
	cp := *t
	cp.IsMut = mut
	return &cp
}

// NewArray constructs a fixed-size array-of type.
func NewArray(elem *Type, length int64) *Type {
	return &Type{Kind: KindArray, Elem: elem, ArrayLen: length}
}

// NewSlice constructs a slice-of type.
func NewSlice(elem *Type) *Type {
	return &Type{Kind: KindSlice, Elem: elem}
}

// NewTuple constructs a tuple-of type from ordered element types. The
// Type itself does not cache offsets; callers needing repeated offset
// lookups compute them once with OffsetsOfTuple.
func NewTuple(elems []*Type) *Type {
	return &Type{Kind: KindTuple, Tuple: elems}
}

// NewRange constructs a range type over elem, inclusive or exclusive.
func NewRange(elem *Type, inclusive bool) *Type {
	return &Type{Kind: KindRange, Elem: elem, Inclusive: inclusive}
}

// NewFunction constructs a function type.
func NewFunction(params []*Type, ret *Type, varargs bool) *Type {
	return &Type{Kind: KindFunction, Params: params, Return: ret, Varargs: varargs}
}

// NewStruct constructs a struct-kind type wrapping a registry.Struct
// (passed as interface{} to avoid an import cycle).
func NewStruct(def interface{}) *Type {
	return &Type{Kind: KindStruct, Def: def}
}

// NewEnum constructs an enum-kind type wrapping a registry.Enum.
func NewEnum(def interface{}) *Type {
	return &Type{Kind: KindEnum, Def: def}
}

// NewTypeValue constructs a first-class "type" type (used only during
// type-checking, e.g. for `Channel::new[int]`-style expressions).
func NewTypeValue(of *Type) *Type {
	return &Type{Kind: KindType, Elem: of}
}

// ChildType returns the element/payload type for parametric kinds, or
// nil if t has none.
func (t *Type) ChildType() *Type {
	switch t.Kind {
	case KindPointer, KindArray, KindSlice, KindRange, KindType:
		return t.Elem
	default:
		return nil
	}
}

// alignUp rounds n up to the next multiple of align.
func alignUp(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	if rem := n % align; rem != 0 {
		return n + (align - rem)
	}
	return n
}

// Size computes the in-memory size in bytes of a value of type t,
// word-aligning composites.
func (t *Type) Size() int64 {
	switch t.Kind {
	case KindVoid, KindNone:
		return 0
	case KindBool:
		return 1
	case KindChar:
		return 4
	case KindInt, KindFloat:
		return 8
	case KindStr:
		return wordSize + wordSize // {data ptr, len}
	case KindPointer, KindFunction, KindType:
		return wordSize
	case KindArray:
		return alignUp(t.Elem.Size()*t.ArrayLen, wordSize)
	case KindSlice:
		return wordSize + wordSize // {data ptr, len}
	case KindTuple:
		var total int64
		for _, f := range t.Tuple {
			total = alignUp(total, fieldAlign(f)) + f.Size()
		}
		return alignUp(total, wordSize)
	case KindRange:
		return 2 * t.Elem.Size() // {start, end}; the inclusive bit lives in the type
	case KindStruct, KindEnum:
		if sz, ok := t.definitionSize(); ok {
			return sz
		}
		return 0
	default:
		return 0
	}
}

// fieldAlign returns the natural alignment of a field of type f: its
// own size, capped at the word size.
func fieldAlign(f *Type) int64 {
	sz := f.Size()
	if sz == 0 {
		return 1
	}
	if sz > wordSize {
		return wordSize
	}
	return sz
}

// OffsetsOfTuple computes the per-field byte offsets of a tuple type
// in declaration order, with natural alignment; offsets are
// deterministic and computed once.
func OffsetsOfTuple(elems []*Type) []int64 {
	offsets := make([]int64, len(elems))
	var cur int64
	for i, f := range elems {
		cur = alignUp(cur, fieldAlign(f))
		offsets[i] = cur
		cur += f.Size()
	}
	return offsets
}

// DisplayStr produces the type's canonical spelling, e.g. "*mut int",
// "[3]char", "(int,bool)->void".
func (t *Type) DisplayStr() string {
	switch t.Kind {
	case KindUnresolved:
		return "<unresolved:" + t.UnresolvedName + ">"
	case KindNone:
		return "none"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindPointer:
		if t.Elem.IsMut {
			return "*mut " + t.Elem.DisplayStr()
		}
		return "*" + t.Elem.DisplayStr()
	case KindArray:
		return fmt.Sprintf("[%d]%s", t.ArrayLen, t.Elem.DisplayStr())
	case KindSlice:
		return "[]" + t.Elem.DisplayStr()
	case KindTuple:
		parts := make([]string, len(t.Tuple))
		for i, f := range t.Tuple {
			parts[i] = f.DisplayStr()
		}
		return "(" + strings.Join(parts, ",") + ")"
	case KindRange:
		op := ".."
		if t.Inclusive {
			op = "..."
		}
		return t.Elem.DisplayStr() + op + t.Elem.DisplayStr()
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.DisplayStr()
		}
		ret := "void"
		if t.Return != nil {
			ret = t.Return.DisplayStr()
		}
		return "(" + strings.Join(parts, ",") + ")->" + ret
	case KindStruct:
		return t.definitionName()
	case KindEnum:
		return t.definitionName()
	case KindType:
		return "type(" + t.Elem.DisplayStr() + ")"
	default:
		return "?"
	}
}

// Eq reports structural equality, respecting mutability.
func (t *Type) Eq(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.IsMut != o.IsMut {
		return false
	}
	return t.eqIgnoringMutBit(o)
}

// EqIgnoringMutability reports structural equality while ignoring the
// top-level and all nested is_mut bits.
func (t *Type) EqIgnoringMutability(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.eqIgnoringMutBit(o)
}

func (t *Type) eqIgnoringMutBit(o *Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindUnresolved:
		return t.UnresolvedName == o.UnresolvedName
	case KindPointer:
		return t.Elem.EqIgnoringMutability(o.Elem) && t.Elem.IsMut == o.Elem.IsMut
	case KindArray:
		return t.ArrayLen == o.ArrayLen && t.Elem.EqIgnoringMutability(o.Elem)
	case KindSlice:
		return t.Elem.EqIgnoringMutability(o.Elem)
	case KindTuple:
		if len(t.Tuple) != len(o.Tuple) {
			return false
		}
		for i := range t.Tuple {
			if !t.Tuple[i].EqIgnoringMutability(o.Tuple[i]) {
				return false
			}
		}
		return true
	case KindRange:
		return t.Inclusive == o.Inclusive && t.Elem.EqIgnoringMutability(o.Elem)
	case KindFunction:
		if t.Varargs != o.Varargs || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].EqIgnoringMutability(o.Params[i]) {
				return false
			}
		}
		return t.Return.EqIgnoringMutability(o.Return)
	case KindStruct, KindEnum:
		return t.Def == o.Def
	case KindType:
		return t.Elem.EqIgnoringMutability(o.Elem)
	default:
		return true // primitives with matching Kind are equal
	}
}

// AssignableFrom reports whether a value of type src may be written
// into a place of type t: target
// must be mutable, source type must match ignoring mutability, pointer
// depth and child mutability must be respected.
func (t *Type) AssignableFrom(src *Type) bool {
	if !t.IsMut {
		return false
	}
	if !t.EqIgnoringMutability(src) {
		return false
	}
	if t.Kind == KindPointer {
		// target's pointer child mut implies source's child mut
		if t.Elem.IsMut && !src.Elem.IsMut {
			return false
		}
	}
	return true
}

// IsPartiallyMutable detects interior mutability: any mut child nested
// inside tuples/arrays/slices.
func (t *Type) IsPartiallyMutable() bool {
	switch t.Kind {
	case KindTuple:
		for _, f := range t.Tuple {
			if f.IsMut || f.IsPartiallyMutable() {
				return true
			}
		}
		return false
	case KindArray, KindSlice:
		return t.Elem.IsMut || t.Elem.IsPartiallyMutable()
	default:
		return false
	}
}
