package codegen

import (
	"sort"

	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/intrinsics"
	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// compileExpr lowers e, leaving its value (e.Type().Size() bytes) on
// top of the stack, and returns that size. Every emission keeps f's
// stack_top bookkeeping exact.
func (g *Generator) compileExpr(chunk *bytecode.Chunk, f *frame, e typedast.Expr) int64 {
	switch ex := e.(type) {
	case *typedast.IntLit:
		chunk.EmitInt(ex.Value)
		f.push(bytecode.IntWidth)
		return bytecode.IntWidth
	case *typedast.FloatLit:
		chunk.EmitFloat(ex.Value)
		f.push(bytecode.FloatWidth)
		return bytecode.FloatWidth
	case *typedast.BoolLit:
		if ex.Value {
			chunk.Emit(bytecode.OpLitTrue)
		} else {
			chunk.Emit(bytecode.OpLitFalse)
		}
		f.push(1)
		return 1
	case *typedast.CharLit:
		chunk.EmitChar(ex.Value)
		f.push(bytecode.CharWidth)
		return bytecode.CharWidth
	case *typedast.StringLit:
		off := g.mod.Constants.InternString(ex.Value)
		chunk.EmitAddress(bytecode.OpLoadConstString, int64(off))
		f.push(value.Str.Size())
		return value.Str.Size()
	case *typedast.GlobalFunc:
		chunk.EmitPointer(g.FuncIndex(ex.ID))
		f.push(bytecode.PointerWidth)
		return bytecode.PointerWidth
	case *typedast.Local, *typedast.FieldExpr, *typedast.IndexExpr:
		return g.compileLoad(chunk, f, e)
	case *typedast.UnaryExpr:
		return g.compileUnaryExpr(chunk, f, ex)
	case *typedast.BinaryExpr:
		return g.compileBinaryExpr(chunk, f, ex)
	case *typedast.AssignExpr:
		return g.compileAssign(chunk, f, ex.Target, ex.Value)
	case *typedast.ArrayLit:
		return g.compileArrayLit(chunk, f, ex)
	case *typedast.TupleLit:
		return g.compileAggregate(chunk, f, ex.Type().Size(), elemsOf(ex.Elements), ex.Offsets)
	case *typedast.StructLit:
		return g.compileStructLit(chunk, f, ex)
	case *typedast.EnumLit:
		return g.compileEnumLit(chunk, f, ex)
	case *typedast.RangeExpr:
		return g.compileRangeExpr(chunk, f, ex)
	case *typedast.CallExpr:
		return g.compileCallExpr(chunk, f, ex)
	case *typedast.BuiltinCallExpr:
		return g.compileBuiltinCallExpr(chunk, f, ex)
	case *typedast.IfExpr:
		return g.compileIfExpr(chunk, f, ex)
	case *typedast.MatchExpr:
		return g.compileMatchExpr(chunk, f, ex)
	case *typedast.CastExpr:
		return g.compileCastExpr(chunk, f, ex)
	default:
		panic(&registry.InternalError{Message: "codegen: unsupported expression node"})
	}
}

func elemsOf(exprs []typedast.Expr) []typedast.Expr { return exprs }

// compileAggregate lays out elems contiguously starting at the current
// stack_top, inserting Allocate padding wherever a field's precomputed
// offset leaves a gap (struct/tuple alignment), and pads the tail up to
// totalSize. Since each element is pushed at exactly its own offset,
// the resulting stack region is byte-identical to the type's layout, so
// no further instructions are needed to "assemble" it.
func (g *Generator) compileAggregate(chunk *bytecode.Chunk, f *frame, totalSize int64, elems []typedast.Expr, offsets []int64) int64 {
	start := f.stackTop
	for i, el := range elems {
		want := start + offsets[i]
		if pad := want - f.stackTop; pad > 0 {
			chunk.EmitSize(bytecode.OpAllocate, uint32(pad))
			f.push(pad)
		}
		g.compileExpr(chunk, f, el)
	}
	if pad := start + totalSize - f.stackTop; pad > 0 {
		chunk.EmitSize(bytecode.OpAllocate, uint32(pad))
		f.push(pad)
	}
	return totalSize
}

func (g *Generator) compileArrayLit(chunk *bytecode.Chunk, f *frame, ex *typedast.ArrayLit) int64 {
	elemSize := ex.Type().Elem.Size()
	offsets := make([]int64, len(ex.Elements))
	for i := range offsets {
		offsets[i] = int64(i) * elemSize
	}
	return g.compileAggregate(chunk, f, ex.Type().Size(), ex.Elements, offsets)
}

// compileStructLit lays the fields out in offset order regardless of
// the order they were written in source, since compileAggregate can
// only push upward through the value's layout.
func (g *Generator) compileStructLit(chunk *bytecode.Chunk, f *frame, ex *typedast.StructLit) int64 {
	fields := make([]typedast.StructLitField, len(ex.Fields))
	copy(fields, ex.Fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Offset < fields[j].Offset })

	elems := make([]typedast.Expr, len(fields))
	offsets := make([]int64, len(fields))
	for i, fl := range fields {
		elems[i] = fl.Value
		offsets[i] = fl.Offset
	}
	return g.compileAggregate(chunk, f, ex.Type().Size(), elems, offsets)
}

// compileEnumLit writes the tag (as an 8-byte int) followed by the
// payload fields at their registry-computed offsets.
func (g *Generator) compileEnumLit(chunk *bytecode.Chunk, f *frame, ex *typedast.EnumLit) int64 {
	total := ex.Type().Size()
	start := f.stackTop
	chunk.EmitInt(ex.VariantTag)
	f.push(bytecode.IntWidth)
	offsets := make([]int64, len(ex.Payload))
	for i, off := range ex.Offsets {
		offsets[i] = enumTagSize + off
	}
	for i, el := range ex.Payload {
		want := start + offsets[i]
		if pad := want - f.stackTop; pad > 0 {
			chunk.EmitSize(bytecode.OpAllocate, uint32(pad))
			f.push(pad)
		}
		g.compileExpr(chunk, f, el)
	}
	if pad := start + total - f.stackTop; pad > 0 {
		chunk.EmitSize(bytecode.OpAllocate, uint32(pad))
		f.push(pad)
	}
	return total
}

// compileRangeExpr lays out a range value as {start, end} (both int),
// matching value.Type's KindRange size.
func (g *Generator) compileRangeExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.RangeExpr) int64 {
	g.compileExpr(chunk, f, ex.Start)
	g.compileExpr(chunk, f, ex.End)
	return 2 * bytecode.IntWidth
}

func (g *Generator) compileUnaryExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.UnaryExpr) int64 {
	switch ex.Op {
	case lexer.AMPERSAND, lexer.REF_MUT:
		g.compilePlaceAddress(chunk, f, ex.Operand)
		return bytecode.PointerWidth
	case lexer.STAR:
		return g.compileLoad(chunk, f, ex)
	case lexer.MINUS:
		g.compileExpr(chunk, f, ex.Operand)
		if ex.Type().Kind == value.KindFloat {
			chunk.Emit(bytecode.OpFloatNeg)
		} else {
			chunk.Emit(bytecode.OpIntNeg)
		}
		return ex.Type().Size()
	case lexer.BANG:
		g.compileExpr(chunk, f, ex.Operand)
		chunk.Emit(bytecode.OpNot)
		return 1
	default:
		panic(&registry.InternalError{Message: "codegen: unsupported unary operator"})
	}
}

// compileBinaryExpr dispatches arithmetic/comparison ops by operand
// kind (int vs float vs str) and lowers "and"/"or" to the No_Pop
// short-circuit jumps.
func (g *Generator) compileBinaryExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.BinaryExpr) int64 {
	if ex.Op == lexer.AND || ex.Op == lexer.OR {
		return g.compileShortCircuit(chunk, f, ex)
	}

	opType := ex.Left.Type()
	g.compileExpr(chunk, f, ex.Left)
	g.compileExpr(chunk, f, ex.Right)

	isFloat := opType.Kind == value.KindFloat
	isStr := opType.Kind == value.KindStr

	switch ex.Op {
	case lexer.PLUS:
		switch {
		case isStr:
			chunk.Emit(bytecode.OpStrAdd)
		case isFloat:
			chunk.Emit(bytecode.OpFloatAdd)
		default:
			chunk.Emit(bytecode.OpIntAdd)
		}
	case lexer.MINUS:
		if isFloat {
			chunk.Emit(bytecode.OpFloatSub)
		} else {
			chunk.Emit(bytecode.OpIntSub)
		}
	case lexer.STAR:
		if isFloat {
			chunk.Emit(bytecode.OpFloatMul)
		} else {
			chunk.Emit(bytecode.OpIntMul)
		}
	case lexer.SLASH:
		if isFloat {
			chunk.Emit(bytecode.OpFloatDiv)
		} else {
			chunk.Emit(bytecode.OpIntDiv)
		}
	case lexer.PERCENT:
		chunk.Emit(bytecode.OpMod)
	case lexer.EQ:
		if isStr {
			chunk.Emit(bytecode.OpStrEqual)
		} else {
			chunk.EmitSize(bytecode.OpEqual, uint32(opType.Size()))
		}
	case lexer.NOT_EQ:
		if isStr {
			chunk.Emit(bytecode.OpStrNotEqual)
		} else {
			chunk.EmitSize(bytecode.OpNotEqual, uint32(opType.Size()))
		}
	case lexer.LT:
		if isFloat {
			chunk.Emit(bytecode.OpFloatLessThan)
		} else {
			chunk.Emit(bytecode.OpIntLessThan)
		}
	case lexer.LE:
		if isFloat {
			chunk.Emit(bytecode.OpFloatLessEqual)
		} else {
			chunk.Emit(bytecode.OpIntLessEqual)
		}
	case lexer.GT:
		if isFloat {
			chunk.Emit(bytecode.OpFloatGreaterThan)
		} else {
			chunk.Emit(bytecode.OpIntGreaterThan)
		}
	case lexer.GE:
		if isFloat {
			chunk.Emit(bytecode.OpFloatGreaterEqual)
		} else {
			chunk.Emit(bytecode.OpIntGreaterEqual)
		}
	default:
		panic(&registry.InternalError{Message: "codegen: unsupported binary operator"})
	}
	f.stackTop = f.stackTop - ex.Left.Type().Size() - ex.Right.Type().Size() + ex.Type().Size()
	return ex.Type().Size()
}

// compileShortCircuit implements "and"/"or": evaluate left; peek it
// with a No_Pop jump that skips evaluating right when it already
// decides the result; otherwise pop left and evaluate right as the
// result.
func (g *Generator) compileShortCircuit(chunk *bytecode.Chunk, f *frame, ex *typedast.BinaryExpr) int64 {
	g.compileExpr(chunk, f, ex.Left)
	var skip int
	if ex.Op == lexer.OR {
		skip = chunk.EmitJump(bytecode.OpJumpTrueNoPop)
	} else {
		skip = chunk.EmitJump(bytecode.OpJumpFalseNoPop)
	}
	chunk.EmitSize(bytecode.OpPop, 1)
	f.pop(1)
	g.compileExpr(chunk, f, ex.Right)
	chunk.PatchJump(skip, chunk.Len())
	return 1
}

func (g *Generator) compileCastExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.CastExpr) int64 {
	fromSize := ex.Value.Type().Size()
	g.compileExpr(chunk, f, ex.Value)
	switch ex.Kind {
	case typedast.CastBoolInt:
		chunk.Emit(bytecode.OpCastBoolInt)
	case typedast.CastCharInt:
		chunk.Emit(bytecode.OpCastCharInt)
	case typedast.CastIntFloat:
		chunk.Emit(bytecode.OpCastIntFloat)
	case typedast.CastFloatInt:
		chunk.Emit(bytecode.OpCastFloatInt)
	default:
		panic(&registry.InternalError{Message: "codegen: unsupported cast kind"})
	}
	f.stackTop = f.stackTop - fromSize + ex.Type().Size()
	return ex.Type().Size()
}

// compileCallExpr lowers the calling convention: arguments
// are pushed left to right, the callee's function pointer is pushed
// last, and Call(arg_size) transfers control, leaving only the return
// value behind once the callee returns. A variadic callee additionally
// gets the trailing argument count (in bytes) packed in as an Int
// right after its fixed parameters, before the variadic payload.
func (g *Generator) compileCallExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.CallExpr) int64 {
	start := f.stackTop
	calleeType := ex.Callee.Type()
	fixed := len(ex.Args)
	if calleeType.Kind == value.KindFunction && calleeType.Varargs {
		fixed = len(calleeType.Params)
	}

	var argSize int64
	for _, a := range ex.Args[:fixed] {
		argSize += g.compileExpr(chunk, f, a)
	}
	if calleeType.Kind == value.KindFunction && calleeType.Varargs {
		var trailSize int64
		for _, a := range ex.Args[fixed:] {
			trailSize += a.Type().Size()
		}
		chunk.EmitInt(trailSize)
		f.push(bytecode.IntWidth)
		argSize += bytecode.IntWidth
		for _, a := range ex.Args[fixed:] {
			argSize += g.compileExpr(chunk, f, a)
		}
	}
	g.compileExpr(chunk, f, ex.Callee)
	chunk.EmitSize(bytecode.OpCall, uint32(argSize))
	retSize := ex.Type().Size()
	f.stackTop = start + retSize
	return retSize
}

// compileBuiltinCallExpr resolves a BuiltinCallExpr to a concrete
// intrinsics.Descriptor and emits Call_Builtin. print/puts over a
// struct/enum value are special-cased into the two-argument
// (pointer, dense-index) form print_struct/print_enum expect (spec
// §4.5 "Struct and enum printing (recursive)").
func (g *Generator) compileBuiltinCallExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.BuiltinCallExpr) int64 {
	if ex.Name == "print" || ex.Name == "puts" {
		return g.compilePrintCall(chunk, f, ex)
	}

	start := f.stackTop
	var argSize int64
	var argType *value.Type
	for i, a := range ex.Args {
		if i == 0 {
			argType = a.Type()
		}
		argSize += g.compileExpr(chunk, f, a)
	}
	desc, ok := intrinsics.Lookup(ex.Name, argType)
	if !ok {
		desc, ok = intrinsics.ByName(ex.Name)
	}
	if !ok {
		panic(&registry.InternalError{Message: "codegen: unresolved intrinsic " + ex.Name})
	}
	site := chunk.EmitCallBuiltin(desc.ID, uint32(argSize))
	if ex.Name == "panic" {
		g.recordPanicSite(site, ex.Span())
	}
	retSize := ex.Type().Size()
	f.stackTop = start + retSize
	return retSize
}

// recordPanicSite remembers which source span emitted the Call_Builtin
// at chunk offset site, consulted by the function record's PanicSites
// once the enclosing chunk is installed.
func (g *Generator) recordPanicSite(site int, span lexer.Span) {
	if g.curPanicSites == nil {
		g.curPanicSites = make(map[int]lexer.Span)
	}
	g.curPanicSites[site] = span
}

func (g *Generator) compilePrintCall(chunk *bytecode.Chunk, f *frame, ex *typedast.BuiltinCallExpr) int64 {
	arg := ex.Args[0]
	t := arg.Type()
	start := f.stackTop

	if primName, ok := intrinsics.PrimitiveName(t); ok {
		sz := g.compileExpr(chunk, f, arg)
		desc, ok := intrinsics.Lookup(ex.Name+"_"+primName, t)
		if !ok {
			panic(&registry.InternalError{Message: "codegen: unresolved intrinsic " + ex.Name + "_" + primName})
		}
		chunk.EmitCallBuiltin(desc.ID, uint32(sz))
		f.stackTop = start
		return 0
	}

	valAddr := f.stackTop
	g.compileExpr(chunk, f, arg)
	chunk.EmitAddress(bytecode.OpPushPointer, valAddr)
	f.push(bytecode.PointerWidth)

	var idx uint64
	var sub string
	switch t.Kind {
	case value.KindStruct:
		idx = g.StructIndex(t.Def.(*registry.Struct).ID)
		sub = ex.Name + "_struct"
	case value.KindEnum:
		idx = g.EnumIndex(t.Def.(*registry.Enum).ID)
		sub = ex.Name + "_enum"
	default:
		panic(&registry.InternalError{Message: "codegen: print on unsupported type " + t.DisplayStr()})
	}
	chunk.EmitInt(int64(idx))
	f.push(bytecode.IntWidth)

	voidPtr := value.NewPointer(value.Void, true)
	desc, ok := intrinsics.Lookup(sub, voidPtr)
	if !ok {
		panic(&registry.InternalError{Message: "codegen: unresolved intrinsic " + sub})
	}
	chunk.EmitCallBuiltin(desc.ID, uint32(bytecode.PointerWidth+bytecode.IntWidth))
	// The builtin consumed only its (pointer, index) arguments; the
	// printed value itself is still sitting at valAddr.
	chunk.EmitSize(bytecode.OpPop, uint32(t.Size()))
	f.stackTop = start
	return 0
}
