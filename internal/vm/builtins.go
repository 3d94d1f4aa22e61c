package vm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/intrinsics"
	"github.com/foxlang/fox/internal/value"
)

// callBuiltin executes the intrinsic identified by id against the
// argSize bytes sitting on top of the stack:
// it never pushes a call frame of its own, only consuming its raw
// argument bytes and pushing back whatever its signature's return type
// expects.
func (v *VM) callBuiltin(f *frame, instrStart int, id uint32, argSize uint32) {
	desc, ok := intrinsics.ByID(id)
	if !ok {
		v.internalError("call to unknown intrinsic id %d", id)
	}
	args := v.popBytes(int64(argSize))

	switch desc.Name {
	case "alloc":
		n := int64(binary.LittleEndian.Uint64(args))
		off := v.heap.alloc(n)
		v.pushUint64(taggedAddr(tagHeap, off))
	case "panic":
		ptr := binary.LittleEndian.Uint64(args[:8])
		length := int64(binary.LittleEndian.Uint64(args[8:]))
		msg := ""
		if length > 0 {
			msg = string(v.readMem(ptr, length))
		}
		v.panicAt(f, instrStart, msg)

	case "free_ptr":
		v.freePointer(binary.LittleEndian.Uint64(args))
	case "free_slice", "free_str":
		v.freePointer(binary.LittleEndian.Uint64(args[:8]))

	case "str_len":
		length := int64(binary.LittleEndian.Uint64(args[8:]))
		v.pushInt64(length)
	case "str_is_empty":
		length := int64(binary.LittleEndian.Uint64(args[8:]))
		v.pushBool(length == 0)

	case "print_struct", "puts_struct":
		v.printStructOrEnum(args, desc.Name == "print_struct", true)
	case "print_enum", "puts_enum":
		v.printStructOrEnum(args, desc.Name == "print_enum", false)

	default:
		v.printPrimitive(desc, args)
	}
}

// freePointer returns a heap allocation to its arena's freelist. A
// pointer into the stack or string-constant pool is never something
// alloc() could have produced, so freeing one is silently ignored
// rather than crashing a program that frees a borrowed reference by
// mistake.
func (v *VM) freePointer(p uint64) {
	if addrTag(p) != tagHeap {
		return
	}
	v.heap.free(addrOffset(p))
}

// printPrimitive implements print_<T>/puts_<T> for T in
// {bool,char,int,float,str}: puts writes the bare value, print adds a
// trailing newline.
func (v *VM) printPrimitive(desc *intrinsics.Descriptor, args []byte) {
	t := desc.Sig.Params[0]
	var s string
	switch t.Kind {
	case value.KindBool:
		s = strconv.FormatBool(args[0] != 0)
	case value.KindChar:
		s = string(rune(binary.LittleEndian.Uint32(args)))
	case value.KindInt:
		s = strconv.FormatInt(int64(binary.LittleEndian.Uint64(args)), 10)
	case value.KindFloat:
		s = strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(args)), 'g', -1, 64)
	case value.KindStr:
		ptr := binary.LittleEndian.Uint64(args[:8])
		length := int64(binary.LittleEndian.Uint64(args[8:]))
		if length > 0 {
			s = string(v.readMem(ptr, length))
		}
	default:
		v.internalError("print/puts over unsupported primitive kind")
	}
	if strings.HasPrefix(desc.Name, "print_") {
		fmt.Fprintln(v.Out, s)
	} else {
		fmt.Fprint(v.Out, s)
	}
}

// panicAt raises a fatal RUNTIME_PANIC diagnostic carrying msg,
// attributing it to the call site's source span when the compiler
// recorded one.
func (v *VM) panicAt(f *frame, instrStart int, msg string) {
	d := diag.Diagnostic{
		Stage:    diag.StageVM,
		Severity: diag.SeverityError,
		Code:     diag.CodeRuntimePanic,
		Message:  msg,
	}
	if f.fn != nil && f.fn.PanicSites != nil {
		if span, ok := f.fn.PanicSites[instrStart]; ok {
			d.Span = diag.Span{
				Filename: span.Filename,
				Line:     span.Line,
				Column:   span.Column,
				Start:    span.Start,
				End:      span.End,
			}
		}
	}
	panic(&PanicError{Diagnostic: d})
}
