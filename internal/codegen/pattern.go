package codegen

import (
	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// enumTagSize is the fixed width of an enum's leading tag field.
const enumTagSize = 8

// bindPattern binds a function parameter's pattern: the argument bytes
// already live on the stack at the frame base, so this only
// performs address bookkeeping, with no bytecode emitted.
func (g *Generator) bindPattern(_ *bytecode.Chunk, f *frame, patt *typedast.ProcessedPattern) {
	base := f.alloc(patt.Type.Size())
	g.assignPatternAddrs(f, patt, base)
}

// bindLetPattern binds a let pattern over a value that already
// occupies [valueAddr, valueAddr+patt.Type.Size()) on the stack (either
// just pushed by the initializer or reserved by Allocate/Clear_Allocate
// for a "noinit" binding).
func (g *Generator) bindLetPattern(f *frame, patt *typedast.ProcessedPattern, valueAddr int64) {
	g.assignPatternAddrs(f, patt, valueAddr)
}

// assignPatternAddrs walks patt's nested shape, recording the frame
// address of every flattened binding relative to base.
func (g *Generator) assignPatternAddrs(f *frame, patt *typedast.ProcessedPattern, base int64) {
	switch patt.Kind {
	case typedast.PatternIdent:
		f.slotAddr[patt.Binding.Slot] = base
	case typedast.PatternWildcard, typedast.PatternValue:
		// Nothing to bind.
	case typedast.PatternTuple, typedast.PatternStruct:
		for i := range patt.Elems {
			g.assignPatternAddrs(f, &patt.Elems[i], base+patt.Offsets[i])
		}
	case typedast.PatternEnum:
		enumDef, ok := patt.Type.Def.(*registry.Enum)
		if !ok {
			panic(&registry.InternalError{Message: "codegen: enum pattern over non-enum type"})
		}
		variant, ok := enumDef.FindVariantByName(patt.VariantName)
		if !ok {
			panic(&registry.InternalError{Message: "codegen: unknown enum variant " + patt.VariantName})
		}
		for i := range patt.Payload {
			g.assignPatternAddrs(f, &patt.Payload[i], base+enumTagSize+variant.Payload[i].Offset)
		}
	}
}

// compileLetStmt evaluates (or reserves) the
// bound value, then bind the pattern over its address. A const binding
// is pre-evaluated into the deduplicated constant pool and loaded with
// a single Load_Const/Load_Const_Array.
func (g *Generator) compileLetStmt(chunk *bytecode.Chunk, f *frame, s *typedast.LetStmt) {
	size := s.Pattern.Type.Size()
	addr := f.stackTop
	if s.IsConst && s.Value != nil {
		if data, ok := g.constEval(s.Value); ok {
			op := bytecode.OpLoadConst
			if s.Pattern.Type.Kind == value.KindArray {
				op = bytecode.OpLoadConstArray
			}
			off := g.mod.Constants.Intern(data)
			chunk.EmitSizeAddress(op, uint32(len(data)), int64(off))
			f.push(int64(len(data)))
			g.bindLetPattern(f, &s.Pattern, addr)
			return
		}
	}
	if s.NoInit {
		chunk.EmitSize(bytecode.OpAllocate, uint32(size))
		f.push(size)
	} else {
		got := g.compileExpr(chunk, f, s.Value)
		if got != size {
			// A mismatch here means the checker produced a pattern/value
			// type pair codegen doesn't know how to reconcile.
			panic(&registry.InternalError{Message: "codegen: let value size does not match pattern type size"})
		}
	}
	g.bindLetPattern(f, &s.Pattern, addr)
}
