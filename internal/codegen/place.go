package codegen

import (
	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// staticAddr computes e's compile-time-known byte address, per spec
// §4.4 "Place expressions": a variable, a field/tuple-access chain
// through non-deref targets, or a constant-indexed array subscript.
// Constant negative array indices resolve here too, since the array's length is known at
// generation time; a runtime-valued negative index instead falls
// through to the dynamic path in compilePlaceAddress.
func (g *Generator) staticAddr(f *frame, e typedast.Expr) (int64, bool) {
	switch ex := e.(type) {
	case *typedast.Local:
		return f.addrOf(ex.Slot), true
	case *typedast.FieldExpr:
		base, ok := g.staticAddr(f, ex.Target)
		if !ok {
			return 0, false
		}
		return base + ex.Offset, true
	case *typedast.IndexExpr:
		if ex.Target.Type().Kind != value.KindArray {
			return 0, false
		}
		lit, ok := ex.Index.(*typedast.IntLit)
		if !ok {
			return 0, false
		}
		base, ok := g.staticAddr(f, ex.Target)
		if !ok {
			return 0, false
		}
		idx := lit.Value
		if idx < 0 {
			idx += ex.Target.Type().ArrayLen
		}
		return base + idx*ex.Target.Type().Elem.Size(), true
	default:
		return 0, false
	}
}

// compilePlaceAddress emits the dynamic-address-computation recipe for
// e, leaving an 8-byte
// pointer value on top of the stack.
func (g *Generator) compilePlaceAddress(chunk *bytecode.Chunk, f *frame, e typedast.Expr) {
	if addr, ok := g.staticAddr(f, e); ok {
		chunk.EmitAddress(bytecode.OpPushPointer, addr)
		f.push(bytecode.PointerWidth)
		return
	}
	switch ex := e.(type) {
	case *typedast.UnaryExpr:
		if ex.Op != lexer.STAR {
			panic(&registry.InternalError{Message: "codegen: non-place unary expression used as a place"})
		}
		g.compileExpr(chunk, f, ex.Operand)
	case *typedast.FieldExpr:
		g.compilePlaceAddress(chunk, f, ex.Target)
		if ex.Offset != 0 {
			chunk.EmitInt(ex.Offset)
			f.push(bytecode.IntWidth)
			chunk.Emit(bytecode.OpIntAdd)
			f.pop(bytecode.IntWidth)
		}
	case *typedast.IndexExpr:
		g.compileIndexAddress(chunk, f, ex)
	default:
		panic(&registry.InternalError{Message: "codegen: expression is not an addressable place"})
	}
}

// compileIndexAddress implements the array/slice subscript recipe
//: "push address of a, push i, multiply by element size,
// add" for arrays; for slices, evaluate the slice value and discard
// its length field, leaving the data pointer to scale and add to. A
// constant negative slice index instead keeps the length field and
// rewrites it to count - k before scaling.
func (g *Generator) compileIndexAddress(chunk *bytecode.Chunk, f *frame, ex *typedast.IndexExpr) {
	targetType := ex.Target.Type()
	if ex.Index.Type().Kind == value.KindRange {
		panic(&registry.InternalError{Message: "unsupported: runtime slice-range subscript"})
	}
	switch targetType.Kind {
	case value.KindArray:
		g.compilePlaceAddress(chunk, f, ex.Target)
	case value.KindSlice:
		g.compileExpr(chunk, f, ex.Target)
		if lit, ok := ex.Index.(*typedast.IntLit); ok && lit.Value < 0 {
			// Stack holds {data_ptr, count}; fold the index into
			// count - k, then scale and add as usual.
			chunk.EmitInt(-lit.Value)
			f.push(bytecode.IntWidth)
			chunk.Emit(bytecode.OpIntSub)
			f.pop(bytecode.IntWidth)
			g.scaleAndAddIndex(chunk, f, targetType.Elem.Size())
			return
		}
		chunk.EmitSize(bytecode.OpPop, bytecode.PointerWidth) // drop the length field, keep data ptr
		f.pop(bytecode.PointerWidth)
	default:
		panic(&registry.InternalError{Message: "codegen: subscript on non-array/slice type"})
	}
	g.compileExpr(chunk, f, ex.Index)
	g.scaleAndAddIndex(chunk, f, targetType.Elem.Size())
}

// scaleAndAddIndex folds the element index on top of the stack into the
// base pointer below it: index * elemSize, then pointer + offset.
func (g *Generator) scaleAndAddIndex(chunk *bytecode.Chunk, f *frame, elemSize int64) {
	chunk.EmitInt(elemSize)
	f.push(bytecode.IntWidth)
	chunk.Emit(bytecode.OpIntMul)
	f.pop(bytecode.IntWidth)
	chunk.Emit(bytecode.OpIntAdd)
	f.pop(bytecode.IntWidth)
}

// isPlace reports whether e is addressable at all (a Local, a
// field/tuple access, a subscript, or a pointer dereference).
func isPlace(e typedast.Expr) bool {
	switch ex := e.(type) {
	case *typedast.Local, *typedast.FieldExpr, *typedast.IndexExpr:
		return true
	case *typedast.UnaryExpr:
		return ex.Op == lexer.STAR
	default:
		return false
	}
}

// compileLoad reads e's value, taking the single-instruction
// Push_Value path when e has a static address and the address+Load
// path otherwise: static-address loads emit a single Push_Value;
// dynamic-address loads emit the address-computation sequence
// followed by Load(size).
func (g *Generator) compileLoad(chunk *bytecode.Chunk, f *frame, e typedast.Expr) int64 {
	size := e.Type().Size()
	if addr, ok := g.staticAddr(f, e); ok {
		chunk.EmitSizeAddress(bytecode.OpPushValue, uint32(size), addr)
		f.push(size)
		return size
	}
	g.compilePlaceAddress(chunk, f, e)
	chunk.EmitSize(bytecode.OpLoad, uint32(size))
	f.stackTop += size - bytecode.PointerWidth
	return size
}

// compileAssign lowers assignment: evaluate RHS
// (pushes the value), compute LHS address (pushes pointer), emit
// Move(size).
func (g *Generator) compileAssign(chunk *bytecode.Chunk, f *frame, target, val typedast.Expr) int64 {
	size := val.Type().Size()
	g.compileExpr(chunk, f, val)
	g.compilePlaceAddress(chunk, f, target)
	chunk.EmitSize(bytecode.OpMove, uint32(size))
	f.stackTop -= size + bytecode.PointerWidth
	return 0
}
