package codegen

import (
	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// compileBlockAsValue compiles b the way an if/match arm needs: every
// statement but a trailing expression statement runs exactly like
// compileBlock, but the trailing value is relocated down to the
// scope's bottom address before the scope's locals are flushed, so it
// survives past the Flush that discards everything else the arm
// allocated.
func (g *Generator) compileBlockAsValue(chunk *bytecode.Chunk, f *frame, b *typedast.Block) int64 {
	bottom := f.stackTop
	f.pushScope()

	body := b.Stmts
	var tail *typedast.ExprStmt
	if n := len(body); n > 0 {
		if es, ok := body[n-1].(*typedast.ExprStmt); ok && es.Expr != nil {
			tail = es
			body = body[:n-1]
		}
	}
	for _, stmt := range body {
		g.compileStmt(chunk, f, stmt)
	}

	var size int64
	var valAddr int64
	if tail != nil {
		valAddr = f.stackTop
		size = g.compileExpr(chunk, f, tail.Expr)
	}

	g.runDefers(chunk, f, f.popScope())

	if tail == nil || size == 0 {
		if f.stackTop != bottom {
			chunk.EmitAddress(bytecode.OpFlush, bottom)
			f.stackTop = bottom
		}
		return 0
	}

	if valAddr != bottom {
		chunk.EmitAddress(bytecode.OpPushPointer, valAddr)
		f.push(bytecode.PointerWidth)
		chunk.EmitAddress(bytecode.OpPushPointer, bottom)
		f.push(bytecode.PointerWidth)
		chunk.EmitSize(bytecode.OpCopy, uint32(size))
		f.pop(2 * bytecode.PointerWidth)
	}
	if f.stackTop != bottom+size {
		chunk.EmitAddress(bytecode.OpFlush, bottom+size)
		f.stackTop = bottom + size
	}
	return size
}

// compileIfExpr lowers an if/else-if/else chain: each
// else-if is a nested IfExpr compiled as the else branch's sole
// content, so the jump-patching recurses naturally.
func (g *Generator) compileIfExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.IfExpr) int64 {
	g.compileExpr(chunk, f, ex.Cond)
	elseJump := chunk.EmitJump(bytecode.OpJumpFalse)
	f.pop(1)

	resultSize := ex.Type().Size()
	start := f.stackTop
	thenSize := g.compileBlockAsValue(chunk, f, ex.Then)
	g.discardExtra(chunk, f, start, thenSize, resultSize)

	hasElse := ex.Else != nil || ex.ElseIf != nil
	var exitJump int
	if hasElse {
		exitJump = chunk.EmitJump(bytecode.OpJump)
	}
	chunk.PatchJump(elseJump, chunk.Len())
	f.stackTop = start

	switch {
	case ex.ElseIf != nil:
		g.compileIfExpr(chunk, f, ex.ElseIf)
	case ex.Else != nil:
		elseSize := g.compileBlockAsValue(chunk, f, ex.Else)
		g.discardExtra(chunk, f, start, elseSize, resultSize)
	}
	if hasElse {
		chunk.PatchJump(exitJump, chunk.Len())
	}
	f.stackTop = start + resultSize
	return resultSize
}

// discardExtra drops any bytes a block left behind beyond what the
// surrounding expression actually expects, covering the case where an
// else-less "if"'s Then arm still carried a trailing expression value
// (the checker reports the whole expression as void in that case).
func (g *Generator) discardExtra(chunk *bytecode.Chunk, f *frame, start, got, want int64) {
	if got <= want {
		return
	}
	chunk.EmitAddress(bytecode.OpFlush, start+want)
	f.stackTop = start + want
}

func (g *Generator) compileWhileStmt(chunk *bytecode.Chunk, f *frame, s *typedast.WhileStmt) {
	f.loops = append(f.loops, loopCtx{})
	loopStart := chunk.Len()

	g.compileExpr(chunk, f, s.Cond)
	exitJump := chunk.EmitJump(bytecode.OpJumpFalse)
	f.pop(1)

	g.compileBlock(chunk, f, s.Body)

	lc := f.loops[len(f.loops)-1]
	for _, site := range lc.continueSites {
		chunk.PatchJump(site, loopStart)
	}

	back := chunk.EmitJump(bytecode.OpLoop)
	chunk.PatchJump(back, loopStart)
	chunk.PatchJump(exitJump, chunk.Len())

	for _, site := range lc.breakSites {
		chunk.PatchJump(site, chunk.Len())
	}
	f.loops = f.loops[:len(f.loops)-1]
}

// compileForStmt dispatches to the array/slice recipe or the range
// recipe depending on
// which typed-AST form the checker desugared this loop into.
func (g *Generator) compileForStmt(chunk *bytecode.Chunk, f *frame, s *typedast.ForStmt) {
	if s.Range != nil {
		g.compileForRange(chunk, f, s)
		return
	}
	g.compileForEach(chunk, f, s)
}

// elemAddr resolves e's container address as a compile-time-static
// int, evaluating e into a fresh temporary only if it is not already
// an addressable local that can simply be aliased.
func (g *Generator) elemAddr(chunk *bytecode.Chunk, f *frame, e typedast.Expr) int64 {
	if loc, ok := e.(*typedast.Local); ok {
		return f.addrOf(loc.Slot)
	}
	addr := f.stackTop
	g.compileExpr(chunk, f, e)
	return addr
}

func (g *Generator) compileForEach(chunk *bytecode.Chunk, f *frame, s *typedast.ForStmt) {
	iterType := s.Iterable.Type()
	elemSize := iterType.Elem.Size()

	counterAddr := f.stackTop
	chunk.Emit(bytecode.OpLit0)
	f.push(bytecode.IntWidth)
	if s.Counter != nil {
		f.slotAddr[*s.Counter] = counterAddr
	}

	containerAddr := g.elemAddr(chunk, f, s.Iterable)

	targetAddr := f.stackTop
	chunk.EmitSize(bytecode.OpClearAllocate, uint32(elemSize))
	f.push(elemSize)
	g.assignPatternAddrs(f, &s.Binding, targetAddr)

	f.loops = append(f.loops, loopCtx{})
	loopStart := chunk.Len()

	chunk.EmitSizeAddress(bytecode.OpPushValue, bytecode.IntWidth, counterAddr)
	f.push(bytecode.IntWidth)
	if iterType.Kind == value.KindArray {
		chunk.EmitInt(iterType.ArrayLen)
	} else {
		chunk.EmitSizeAddress(bytecode.OpPushValue, bytecode.IntWidth, containerAddr+bytecode.PointerWidth)
	}
	f.push(bytecode.IntWidth)
	chunk.Emit(bytecode.OpIntLessThan)
	f.pop(2 * bytecode.IntWidth)
	f.push(1)
	exitJump := chunk.EmitJump(bytecode.OpJumpFalse)
	f.pop(1)

	if iterType.Kind == value.KindArray {
		chunk.EmitAddress(bytecode.OpPushPointer, containerAddr)
	} else {
		chunk.EmitSizeAddress(bytecode.OpPushValue, bytecode.PointerWidth, containerAddr)
	}
	f.push(bytecode.PointerWidth)
	chunk.EmitSizeAddress(bytecode.OpPushValue, bytecode.IntWidth, counterAddr)
	f.push(bytecode.IntWidth)
	chunk.EmitInt(elemSize)
	f.push(bytecode.IntWidth)
	chunk.Emit(bytecode.OpIntMul)
	f.pop(bytecode.IntWidth)
	chunk.Emit(bytecode.OpIntAdd)
	f.pop(bytecode.IntWidth)
	chunk.EmitAddress(bytecode.OpPushPointer, targetAddr)
	f.push(bytecode.PointerWidth)
	chunk.EmitSize(bytecode.OpCopy, uint32(elemSize))
	f.pop(2 * bytecode.PointerWidth)

	g.compileBlock(chunk, f, s.Body)

	lc := f.loops[len(f.loops)-1]
	incrementStart := chunk.Len()
	for _, site := range lc.continueSites {
		chunk.PatchJump(site, incrementStart)
	}

	chunk.EmitAddress(bytecode.OpPushPointer, counterAddr)
	chunk.Emit(bytecode.OpInc)

	back := chunk.EmitJump(bytecode.OpLoop)
	chunk.PatchJump(back, loopStart)
	chunk.PatchJump(exitJump, chunk.Len())

	for _, site := range lc.breakSites {
		chunk.PatchJump(site, chunk.Len())
	}
	f.loops = f.loops[:len(f.loops)-1]
}

func (g *Generator) compileForRange(chunk *bytecode.Chunk, f *frame, s *typedast.ForStmt) {
	targetAddr := f.stackTop
	g.compileExpr(chunk, f, s.Range.Start)
	g.assignPatternAddrs(f, &s.Binding, targetAddr)

	var counterAddr int64
	if s.Counter != nil {
		counterAddr = f.stackTop
		chunk.Emit(bytecode.OpLit0)
		f.push(bytecode.IntWidth)
		f.slotAddr[*s.Counter] = counterAddr
	}

	endAddr := f.stackTop
	g.compileExpr(chunk, f, s.Range.End)

	f.loops = append(f.loops, loopCtx{})
	loopStart := chunk.Len()

	chunk.EmitSizeAddress(bytecode.OpPushValue, bytecode.IntWidth, targetAddr)
	f.push(bytecode.IntWidth)
	chunk.EmitSizeAddress(bytecode.OpPushValue, bytecode.IntWidth, endAddr)
	f.push(bytecode.IntWidth)
	if s.Range.Inclusive {
		chunk.Emit(bytecode.OpIntLessEqual)
	} else {
		chunk.Emit(bytecode.OpIntLessThan)
	}
	f.pop(2 * bytecode.IntWidth)
	f.push(1)
	exitJump := chunk.EmitJump(bytecode.OpJumpFalse)
	f.pop(1)

	g.compileBlock(chunk, f, s.Body)

	lc := f.loops[len(f.loops)-1]
	incrementStart := chunk.Len()
	for _, site := range lc.continueSites {
		chunk.PatchJump(site, incrementStart)
	}

	chunk.EmitAddress(bytecode.OpPushPointer, targetAddr)
	chunk.Emit(bytecode.OpInc)
	if s.Counter != nil {
		chunk.EmitAddress(bytecode.OpPushPointer, counterAddr)
		chunk.Emit(bytecode.OpInc)
	}

	back := chunk.EmitJump(bytecode.OpLoop)
	chunk.PatchJump(back, loopStart)
	chunk.PatchJump(exitJump, chunk.Len())

	for _, site := range lc.breakSites {
		chunk.PatchJump(site, chunk.Len())
	}
	f.loops = f.loops[:len(f.loops)-1]
}

// compileMatchExpr evaluates the subject into a temporary, then tries
// each arm's pattern in order: a value/structural test followed (on
// success) by binding and the arm body, with a jump to the shared exit
// once any arm matches.
func (g *Generator) compileMatchExpr(chunk *bytecode.Chunk, f *frame, ex *typedast.MatchExpr) int64 {
	subjAddr := f.stackTop
	g.compileExpr(chunk, f, ex.Subject)

	resultSize := ex.Type().Size()
	start := f.stackTop

	var exitJumps []int
	for i := range ex.Arms {
		arm := &ex.Arms[i]
		f.stackTop = start
		fails := g.compilePatternTest(chunk, f, &arm.Pattern, subjAddr)

		g.assignPatternAddrs(f, &arm.Pattern, subjAddr)
		size := g.compileBlockAsValue(chunk, f, arm.Body)
		if size < resultSize {
			chunk.EmitSize(bytecode.OpAllocate, uint32(resultSize-size))
			f.push(resultSize - size)
		}

		if i < len(ex.Arms)-1 {
			exitJumps = append(exitJumps, chunk.EmitJump(bytecode.OpJump))
		}
		for _, site := range fails {
			chunk.PatchJump(site, chunk.Len())
		}
	}
	for _, site := range exitJumps {
		chunk.PatchJump(site, chunk.Len())
	}

	// The subject still occupies [subjAddr, start); relocate the result
	// down over it so the match's value ends up contiguous at the
	// expression's own entry stack_top, the invariant every other
	// compileExpr case maintains.
	if start != subjAddr {
		if resultSize > 0 {
			chunk.EmitAddress(bytecode.OpPushPointer, start)
			f.push(bytecode.PointerWidth)
			chunk.EmitAddress(bytecode.OpPushPointer, subjAddr)
			f.push(bytecode.PointerWidth)
			chunk.EmitSize(bytecode.OpCopy, uint32(resultSize))
			f.pop(2 * bytecode.PointerWidth)
		}
		chunk.EmitAddress(bytecode.OpFlush, subjAddr+resultSize)
	}
	f.stackTop = subjAddr + resultSize
	return resultSize
}

// compilePatternTest emits the runtime test(s) deciding whether patt
// matches the value at subjAddr, returning every jump-to-next-arm site
// the test emitted (empty when the pattern always matches, i.e.
// Ident/Wildcard) for the caller to patch once the arm's fall-through
// point is known.
func (g *Generator) compilePatternTest(chunk *bytecode.Chunk, f *frame, patt *typedast.ProcessedPattern, subjAddr int64) []int {
	switch patt.Kind {
	case typedast.PatternIdent, typedast.PatternWildcard:
		return nil
	case typedast.PatternValue:
		size := patt.Type.Size()
		chunk.EmitSizeAddress(bytecode.OpPushValue, uint32(size), subjAddr)
		f.push(size)
		g.compileExpr(chunk, f, patt.Value)
		if patt.Type.Kind == value.KindStr {
			chunk.Emit(bytecode.OpStrEqual)
		} else {
			chunk.EmitSize(bytecode.OpEqual, uint32(size))
		}
		f.stackTop -= 2 * size
		f.push(1)
		jump := chunk.EmitJump(bytecode.OpJumpFalse)
		f.pop(1)
		return []int{jump}
	case typedast.PatternTuple, typedast.PatternStruct:
		var fails []int
		for i := range patt.Elems {
			fails = append(fails, g.compilePatternTest(chunk, f, &patt.Elems[i], subjAddr+patt.Offsets[i])...)
		}
		return fails
	case typedast.PatternEnum:
		return g.compileEnumPatternTest(chunk, f, patt, subjAddr)
	default:
		panic(&registry.InternalError{Message: "codegen: unsupported pattern kind"})
	}
}

// compileEnumPatternTest compares the subject's tag against the pattern's variant before recursing
// into any payload sub-patterns at the variant's registry-computed
// offsets.
func (g *Generator) compileEnumPatternTest(chunk *bytecode.Chunk, f *frame, patt *typedast.ProcessedPattern, subjAddr int64) []int {
	chunk.EmitSizeAddress(bytecode.OpPushValue, bytecode.IntWidth, subjAddr)
	f.push(bytecode.IntWidth)
	chunk.EmitInt(patt.VariantTag)
	f.push(bytecode.IntWidth)
	chunk.EmitSize(bytecode.OpEqual, bytecode.IntWidth)
	f.stackTop -= 2 * bytecode.IntWidth
	f.push(1)
	tagFail := chunk.EmitJump(bytecode.OpJumpFalse)
	f.pop(1)

	fails := []int{tagFail}
	if len(patt.Payload) > 0 {
		enumDef, ok := patt.Type.Def.(*registry.Enum)
		if !ok {
			panic(&registry.InternalError{Message: "codegen: enum pattern over non-enum type"})
		}
		variant, ok := enumDef.FindVariantByName(patt.VariantName)
		if !ok {
			panic(&registry.InternalError{Message: "codegen: unknown enum variant " + patt.VariantName})
		}
		for i := range patt.Payload {
			payloadAddr := subjAddr + enumTagSize + variant.Payload[i].Offset
			fails = append(fails, g.compilePatternTest(chunk, f, &patt.Payload[i], payloadAddr)...)
		}
	}
	return fails
}
