// Package codegen lowers the typed AST to bytecode: a
// growing byte vector per function, a shared constant pool and
// string-constant pool, and a generation-time `stack_top` that tracks
// what the VM's stack looks like at each point so addresses can be
// computed statically.
package codegen

import (
	"github.com/google/uuid"

	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
)

// Module is the generator's output: the constant pools plus a table
// mapping small, dense function indices (what a "function pointer"
// value on the VM stack actually holds, since a uuid.UUID is 16 bytes
// and the VM's native pointer width is 8) back to
// registry UUIDs.
type Module struct {
	Constants   bytecode.ConstantPool
	FuncTable   []uuid.UUID
	StructTable []uuid.UUID
	EnumTable   []uuid.UUID
}

// Generator compiles a typedast.Program into bytecode, writing each
// function's compiled Chunk into its registry.Function record.
type Generator struct {
	reg         *registry.Registry
	mod         *Module
	funcIndex   map[uuid.UUID]uint64
	structIndex map[uuid.UUID]uint64
	enumIndex   map[uuid.UUID]uint64

	// curPanicSites accumulates panic(...) call sites for the function
	// currently being compiled; compile resets it before each function
	// and copies it onto the registry record once the function is done.
	curPanicSites map[int]lexer.Span
}

// NewGenerator creates a Generator that resolves struct/enum/function
// records through reg.
func NewGenerator(reg *registry.Registry) *Generator {
	return &Generator{
		reg:         reg,
		mod:         &Module{},
		funcIndex:   make(map[uuid.UUID]uint64),
		structIndex: make(map[uuid.UUID]uint64),
		enumIndex:   make(map[uuid.UUID]uint64),
	}
}

// StructIndex assigns (or returns the existing) dense index identifying
// a struct definition for the print_struct intrinsic (mirrors
// FuncIndex).
func (g *Generator) StructIndex(id uuid.UUID) uint64 {
	if idx, ok := g.structIndex[id]; ok {
		return idx
	}
	idx := uint64(len(g.mod.StructTable))
	g.mod.StructTable = append(g.mod.StructTable, id)
	g.structIndex[id] = idx
	return idx
}

// EnumIndex is StructIndex's counterpart for enum definitions.
func (g *Generator) EnumIndex(id uuid.UUID) uint64 {
	if idx, ok := g.enumIndex[id]; ok {
		return idx
	}
	idx := uint64(len(g.mod.EnumTable))
	g.mod.EnumTable = append(g.mod.EnumTable, id)
	g.enumIndex[id] = idx
	return idx
}

// FuncIndex assigns (or returns the existing) dense function index
// used to represent id as an 8-byte "function pointer" value on the
// VM stack.
func (g *Generator) FuncIndex(id uuid.UUID) uint64 {
	if idx, ok := g.funcIndex[id]; ok {
		return idx
	}
	idx := uint64(len(g.mod.FuncTable))
	g.mod.FuncTable = append(g.mod.FuncTable, id)
	g.funcIndex[id] = idx
	return idx
}

// Compile lowers every function in prog, storing each one's bytecode
// back onto its registry.Function record, and returns the shared
// Module (constant pools + function table) the VM needs alongside the
// registry to execute the result. Internal invariant violations raised
// during lowering surface as the returned error rather than crashing
// the embedding process.
func (g *Generator) Compile(prog *typedast.Program) (mod *Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*registry.InternalError)
			if !ok {
				panic(r)
			}
			mod, err = nil, ie
		}
	}()
	return g.compile(prog)
}

func (g *Generator) compile(prog *typedast.Program) (*Module, error) {
	// Pre-assign a function index for every function up front so that
	// forward/recursive calls resolve regardless of compilation order.
	for _, fn := range prog.Functions {
		g.FuncIndex(fn.ID)
	}
	for _, fn := range prog.Functions {
		g.curPanicSites = nil
		chunk, err := g.compileFunction(fn)
		if err != nil {
			return nil, err
		}
		rf, ok := g.reg.GetFunctionByUUID(fn.ID)
		if !ok {
			panic(&registry.InternalError{Message: "codegen: function " + fn.ID.String() + " missing from registry"})
		}
		rf.Bytecode = chunk.Code
		rf.PanicSites = g.curPanicSites
	}
	return g.mod, nil
}

// frame tracks one function's generation-time address bookkeeping: a
// monotonically-updated `stack_top` and the byte address assigned to
// each typechecker-issued frame slot the first time it is bound.
type frame struct {
	stackTop int64
	slotAddr map[int]int64

	loops []loopCtx

	// deferStack holds one defer list per currently-open scope,
	// innermost last.
	deferStack [][]typedast.Expr
}

func (f *frame) pushScope() { f.deferStack = append(f.deferStack, nil) }

// popScope pops and returns the innermost scope's defer list.
func (f *frame) popScope() []typedast.Expr {
	top := f.deferStack[len(f.deferStack)-1]
	f.deferStack = f.deferStack[:len(f.deferStack)-1]
	return top
}

func (f *frame) addDefer(call typedast.Expr) {
	i := len(f.deferStack) - 1
	f.deferStack[i] = append(f.deferStack[i], call)
}

type loopCtx struct {
	breakSites    []int
	continueSites []int
}

func newFrame() *frame {
	return &frame{slotAddr: make(map[int]int64)}
}

// alloc reserves n bytes at the current stack top and returns their
// address, advancing stack_top (mirrors the code generator's `Allocate`
// bookkeeping).
func (f *frame) alloc(n int64) int64 {
	addr := f.stackTop
	f.stackTop += n
	return addr
}

// push/pop adjust the virtual stack_top to track pushes/pops emitted
// by the instruction stream without allocating a new named slot.
func (f *frame) push(n int64) { f.stackTop += n }
func (f *frame) pop(n int64)  { f.stackTop -= n }

// bind assigns slot its address if this is the first time it is seen,
// matching the order the type checker issued slots in.
func (f *frame) bind(slot int, size int64) int64 {
	if addr, ok := f.slotAddr[slot]; ok {
		return addr
	}
	addr := f.alloc(size)
	f.slotAddr[slot] = addr
	return addr
}

func (f *frame) addrOf(slot int) int64 {
	addr, ok := f.slotAddr[slot]
	if !ok {
		panic(&registry.InternalError{Message: "codegen: read of unbound frame slot"})
	}
	return addr
}
