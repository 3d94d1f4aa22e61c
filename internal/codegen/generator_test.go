package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/parser"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typecheck"
)

// compileSource drives src through parse and typecheck into a compiled
// Module, failing the test on any front-end diagnostic.
func compileSource(t *testing.T, src string) (*registry.Registry, *Module) {
	t.Helper()
	p := parser.New(src, "test.fox")
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "unexpected parse errors: %+v", p.Errors())

	reg := registry.New()
	c := typecheck.NewChecker(reg, "test")
	prog := c.CheckFile(file)
	require.Empty(t, c.Errors(), "unexpected type errors: %+v", c.Errors())

	g := NewGenerator(reg)
	mod, err := g.Compile(prog)
	require.NoError(t, err)
	return reg, mod
}

// instructionBoundaries decodes code with the fixed operand-width
// table, failing if any opcode is unknown or its operand runs past the
// end of the stream, and returns the set of valid instruction starts.
func instructionBoundaries(t *testing.T, code []byte) map[int]bool {
	t.Helper()
	bounds := make(map[int]bool)
	pc := 0
	for pc < len(code) {
		bounds[pc] = true
		op := bytecode.Op(code[pc])
		require.NotEqual(t, "Unknown", op.String(), "undecodable opcode %d at offset %d", code[pc], pc)
		next := pc + 1 + bytecode.OperandWidth(op)
		require.LessOrEqual(t, next, len(code), "operand of %s at %d runs past end of stream", op, pc)
		pc = next
	}
	bounds[len(code)] = true
	return bounds
}

// TestBytecodeStreamsDecodeExactly checks that every compiled function
// produces a stream whose opcode bytes each carry operands of exactly
// the width the fixed decoder table expects.
func TestBytecodeStreamsDecodeExactly(t *testing.T) {
	reg, mod := compileSource(t, `
struct P { x: int, y: int }
enum E { A, B(int) }
fn helper(a: int, b: int) -> int { return a + b; }
fn main() {
	let p = P { x: 1, y: 2 };
	let e = E::B(p.x + p.y);
	let xs = [10, 20, 30];
	let mut total = 0;
	for x in xs { total += x; }
	for i in 0..3 { total += i; }
	while total > 50 { total -= 1; }
	match e {
		E::A => { print(0); },
		E::B(n) => { print(helper(n, total)); },
	}
}`)
	for _, id := range mod.FuncTable {
		fn, ok := reg.GetFunctionByUUID(id)
		require.True(t, ok)
		instructionBoundaries(t, fn.Bytecode)
	}
}

// TestJumpOffsetsLandOnInstructionBoundaries checks that every emitted
// jump, applied to its site, lands on the first byte of a valid
// instruction (or one past the end, for a jump to the stream's exit).
func TestJumpOffsetsLandOnInstructionBoundaries(t *testing.T) {
	reg, mod := compileSource(t, `
fn main() {
	let mut n = 0;
	while n < 10 {
		if n % 2 == 0 { print(n); } else { print(0 - n); }
		n += 1;
	}
	for i in 0...3 {
		if i == 2 { continue; }
		if i == 3 { break; }
	}
}`)
	jumpOps := map[bytecode.Op]bool{
		bytecode.OpJump: true, bytecode.OpLoop: true,
		bytecode.OpJumpTrue: true, bytecode.OpJumpFalse: true,
		bytecode.OpJumpTrueNoPop: true, bytecode.OpJumpFalseNoPop: true,
	}
	for _, id := range mod.FuncTable {
		fn, _ := reg.GetFunctionByUUID(id)
		bounds := instructionBoundaries(t, fn.Bytecode)
		pc := 0
		for pc < len(fn.Bytecode) {
			op, operand, next := bytecode.ReadOp(fn.Bytecode, pc)
			if jumpOps[op] {
				target := next + int(bytecode.ReadAddress(operand))
				require.True(t, bounds[target], "%s at %d jumps to %d, not an instruction boundary", op, pc, target)
			}
			pc = next
		}
	}
}

// TestConstBindingsDeduplicateAgainstPool checks spec's constant-pool
// property: a repeated const literal is issued the same pool bytes.
func TestConstBindingsDeduplicateAgainstPool(t *testing.T) {
	_, mod := compileSource(t, `
fn main() {
	const a = 42;
	const b = 42;
	print(a + b);
}`)
	// One 8-byte entry serves both bindings.
	require.Len(t, mod.Constants.Data, 8)
}

// TestStringConstantsDeduplicate checks the same property for the
// length-prefixed string pool.
func TestStringConstantsDeduplicate(t *testing.T) {
	_, mod := compileSource(t, `
fn main() {
	let a = "hello";
	let b = "hello";
	print(a + b);
}`)
	require.Len(t, mod.Constants.Strings, 8+len("hello"))
}

// TestScopeExitRestoresStackTop compiles nested scopes and then decodes
// main's stream asserting a Flush mirrors every scope that allocated
// anything, ending at the function's own Return(0).
func TestScopeExitRestoresStackTop(t *testing.T) {
	reg, mod := compileSource(t, `
fn main() {
	let x = 1;
	{
		let y = 2;
		print(x + y);
	}
	print(x);
}`)
	var main *registry.Function
	for _, id := range mod.FuncTable {
		fn, _ := reg.GetFunctionByUUID(id)
		if fn.Name == "main" {
			main = fn
		}
	}
	require.NotNil(t, main)

	var flushes int
	var lastOp bytecode.Op
	pc := 0
	for pc < len(main.Bytecode) {
		op, _, next := bytecode.ReadOp(main.Bytecode, pc)
		if op == bytecode.OpFlush {
			flushes++
		}
		lastOp = op
		pc = next
	}
	require.GreaterOrEqual(t, flushes, 1, "inner scope must flush its allocations on exit")
	require.Equal(t, bytecode.OpReturn, lastOp)
}

// TestRuntimeSliceRangeSubscriptIsRejected checks the deferred-feature
// decision: a[i..j] parses and type-checks but codegen refuses it.
func TestRuntimeSliceRangeSubscriptIsRejected(t *testing.T) {
	src := `
fn tail(xs: []int) -> []int {
	return xs[1..2];
}`
	p := parser.New(src, "test.fox")
	file := p.ParseFile()
	require.Empty(t, p.Errors())

	reg := registry.New()
	c := typecheck.NewChecker(reg, "test")
	prog := c.CheckFile(file)
	require.Empty(t, c.Errors())

	g := NewGenerator(reg)
	_, err := g.Compile(prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "slice-range subscript")
}