package codegen

import (
	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
)

// compileFunction lowers one checked function body to a Chunk: parameters are bound to addresses starting at
// the frame base, the body is compiled, and either the body's tail
// expression becomes the return value or a trailing Return(0) is
// appended for a void function whose control can fall off the end.
func (g *Generator) compileFunction(fn *typedast.Function) (*bytecode.Chunk, error) {
	chunk := &bytecode.Chunk{}
	f := newFrame()

	for i := range fn.Params {
		g.bindPattern(chunk, f, &fn.Params[i])
	}
	// The caller packs a trailing arg count (as an Int) right after the
	// fixed parameters, ahead of the variadic payload itself, so its
	// address is static even though the payload's length is not.
	if fn.Varargs {
		addr := f.alloc(bytecode.IntWidth)
		f.slotAddr[fn.ArgCountSlot] = addr
	}

	retSize := fn.Return.Size()
	size := g.compileBlockAsValue(chunk, f, fn.Body)

	if retSize > 0 && size == retSize {
		chunk.EmitSize(bytecode.OpReturn, uint32(size))
	} else if !endsInReturn(fn.Body) {
		chunk.EmitSize(bytecode.OpReturn, 0)
	}
	return chunk, nil
}

// endsInReturn reports whether b's last statement is a Return, so
// compileFunction can skip the synthetic trailing one rather than
// emit dead code after an explicit return.
func endsInReturn(b *typedast.Block) bool {
	if b == nil || len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*typedast.ReturnStmt)
	return ok
}

// compileBlock opens a scope, compiles every statement, runs this
// scope's defers in reverse registration order, and flushes the scope
// on exit.
func (g *Generator) compileBlock(chunk *bytecode.Chunk, f *frame, b *typedast.Block) {
	bottom := f.stackTop
	f.pushScope()
	for _, stmt := range b.Stmts {
		g.compileStmt(chunk, f, stmt)
	}
	g.runDefers(chunk, f, f.popScope())
	if f.stackTop != bottom {
		chunk.EmitAddress(bytecode.OpFlush, bottom)
		f.stackTop = bottom
	}
}

// runDefers compiles defers in reverse registration order, discarding
// each call's result.
func (g *Generator) runDefers(chunk *bytecode.Chunk, f *frame, defers []typedast.Expr) {
	for i := len(defers) - 1; i >= 0; i-- {
		sz := g.compileExpr(chunk, f, defers[i])
		if sz > 0 {
			chunk.EmitSize(bytecode.OpPop, uint32(sz))
			f.pop(sz)
		}
	}
}

func (g *Generator) compileStmt(chunk *bytecode.Chunk, f *frame, stmt typedast.Stmt) {
	switch s := stmt.(type) {
	case *typedast.ExprStmt:
		sz := g.compileExpr(chunk, f, s.Expr)
		if sz > 0 {
			chunk.EmitSize(bytecode.OpPop, uint32(sz))
			f.pop(sz)
		}
	case *typedast.LetStmt:
		g.compileLetStmt(chunk, f, s)
	case *typedast.ReturnStmt:
		g.compileReturnStmt(chunk, f, s)
	case *typedast.BreakStmt:
		g.compileBreakStmt(chunk, f, s)
	case *typedast.ContinueStmt:
		g.compileContinueStmt(chunk, f, s)
	case *typedast.DeferStmt:
		g.compileDeferStmt(chunk, f, s)
	case *typedast.BlockStmt:
		g.compileBlock(chunk, f, s.Block)
	case *typedast.WhileStmt:
		g.compileWhileStmt(chunk, f, s)
	case *typedast.ForStmt:
		g.compileForStmt(chunk, f, s)
	case *typedast.IfExpr:
		sz := g.compileIfExpr(chunk, f, s)
		if sz > 0 {
			chunk.EmitSize(bytecode.OpPop, uint32(sz))
			f.pop(sz)
		}
	case *typedast.MatchExpr:
		sz := g.compileMatchExpr(chunk, f, s)
		if sz > 0 {
			chunk.EmitSize(bytecode.OpPop, uint32(sz))
			f.pop(sz)
		}
	default:
		panic(&registry.InternalError{Message: "codegen: unsupported statement"})
	}
}

func (g *Generator) compileReturnStmt(chunk *bytecode.Chunk, f *frame, s *typedast.ReturnStmt) {
	var sz int64
	if s.Value != nil {
		sz = g.compileExpr(chunk, f, s.Value)
	}
	for i := len(f.deferStack) - 1; i >= 0; i-- {
		g.runDefers(chunk, f, f.deferStack[i])
	}
	chunk.EmitSize(bytecode.OpReturn, uint32(sz))
}

func (g *Generator) compileBreakStmt(chunk *bytecode.Chunk, f *frame, _ *typedast.BreakStmt) {
	lc := &f.loops[len(f.loops)-1]
	site := chunk.EmitJump(bytecode.OpJump)
	lc.breakSites = append(lc.breakSites, site)
}

func (g *Generator) compileContinueStmt(chunk *bytecode.Chunk, f *frame, _ *typedast.ContinueStmt) {
	lc := &f.loops[len(f.loops)-1]
	site := chunk.EmitJump(bytecode.OpJump)
	lc.continueSites = append(lc.continueSites, site)
}

// compileDeferStmt registers s.Call to run when its enclosing scope
// exits, in reverse order relative to other defers in that scope.
func (g *Generator) compileDeferStmt(_ *bytecode.Chunk, f *frame, s *typedast.DeferStmt) {
	f.addDefer(s.Call)
}
