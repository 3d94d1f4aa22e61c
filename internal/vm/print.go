package vm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/value"
)

// printStructOrEnum implements print_struct/puts_struct/print_enum/
// puts_enum: args is (pointer, dense-index) as packed by
// compilePrintCall. The VM walks the registry's field/variant layout
// to recurse into nested structs and enums.
func (v *VM) printStructOrEnum(args []byte, newline, isStruct bool) {
	ptr := binary.LittleEndian.Uint64(args[:8])
	idx := binary.LittleEndian.Uint64(args[8:])
	var s string
	if isStruct {
		s = v.formatStruct(v.structByIndex(idx), ptr)
	} else {
		s = v.formatEnum(v.enumByIndex(idx), ptr)
	}
	if newline {
		fmt.Fprintln(v.Out, s)
	} else {
		fmt.Fprint(v.Out, s)
	}
}

func (v *VM) formatStruct(def *registry.Struct, ptr uint64) string {
	var b strings.Builder
	b.WriteString(def.Name)
	b.WriteString(" { ")
	for i, fld := range def.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fld.Name)
		b.WriteString(": ")
		b.WriteString(v.formatValue(fld.Type, ptr, fld.Offset))
	}
	b.WriteString(" }")
	return b.String()
}

func (v *VM) formatEnum(def *registry.Enum, ptr uint64) string {
	tagBytes := v.readMem(ptr, 8)
	tag := int64(binary.LittleEndian.Uint64(tagBytes))
	variant, ok := def.FindVariantByTag(tag)
	if !ok {
		panic(&registry.InternalError{Message: "vm: enum value carries an unregistered tag"})
	}
	if len(variant.Payload) == 0 {
		return def.Name + "::" + variant.Name
	}
	var b strings.Builder
	b.WriteString(def.Name)
	b.WriteString("::")
	b.WriteString(variant.Name)
	b.WriteString("(")
	for i, fld := range variant.Payload {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.formatValue(fld.Type, ptr, enumTagSize+fld.Offset))
	}
	b.WriteString(")")
	return b.String()
}

// enumTagSize mirrors codegen's constant: an enum's tag is always an
// 8-byte int stored at offset 0 ahead of its payload.
const enumTagSize = 8

// formatValue renders the value of type t living at ptr+offset,
// recursing into composite kinds the way the struct/enum pretty
// printer above recurses into its own fields.
func (v *VM) formatValue(t *value.Type, ptr uint64, offset int64) string {
	base := taggedAddr(addrTag(ptr), addrOffset(ptr)+offset)
	switch t.Kind {
	case value.KindBool:
		return strconv.FormatBool(v.readMem(base, 1)[0] != 0)
	case value.KindChar:
		return string(rune(binary.LittleEndian.Uint32(v.readMem(base, 4))))
	case value.KindInt:
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(v.readMem(base, 8))), 10)
	case value.KindFloat:
		bits := binary.LittleEndian.Uint64(v.readMem(base, 8))
		return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64)
	case value.KindStr:
		raw := v.readMem(base, 16)
		sp := binary.LittleEndian.Uint64(raw[:8])
		length := int64(binary.LittleEndian.Uint64(raw[8:]))
		if length == 0 {
			return `""`
		}
		return strconv.Quote(string(v.readMem(sp, length)))
	case value.KindPointer:
		p := binary.LittleEndian.Uint64(v.readMem(base, 8))
		return fmt.Sprintf("0x%x", p)
	case value.KindArray:
		return v.formatSequence(t.Elem, base, t.ArrayLen)
	case value.KindSlice:
		raw := v.readMem(base, 16)
		dp := binary.LittleEndian.Uint64(raw[:8])
		length := int64(binary.LittleEndian.Uint64(raw[8:]))
		return v.formatSequence(t.Elem, dp, length)
	case value.KindTuple:
		offsets := value.OffsetsOfTuple(t.Tuple)
		var b strings.Builder
		b.WriteString("(")
		for i, elem := range t.Tuple {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.formatValue(elem, base, offsets[i]))
		}
		b.WriteString(")")
		return b.String()
	case value.KindStruct:
		return v.formatStruct(t.Def.(*registry.Struct), base)
	case value.KindEnum:
		return v.formatEnum(t.Def.(*registry.Enum), base)
	default:
		return "<" + t.DisplayStr() + ">"
	}
}

func (v *VM) formatSequence(elem *value.Type, base uint64, length int64) string {
	var b strings.Builder
	b.WriteString("[")
	for i := int64(0); i < length; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.formatValue(elem, base, i*elem.Size()))
	}
	b.WriteString("]")
	return b.String()
}
