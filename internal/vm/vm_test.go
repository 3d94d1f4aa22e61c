package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/codegen"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/intrinsics"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/value"
)

// newTestReg creates a registry plus an empty Module ready to hold one
// or more hand-assembled functions.
func newTestReg() (*registry.Registry, *codegen.Module) {
	return registry.New(), &codegen.Module{}
}

// addFunc registers fn under a fresh UUID, appends it to mod's
// FuncTable, and returns the dense index OpCall's operand would carry
// for it.
func addFunc(reg *registry.Registry, mod *codegen.Module, name string, code []byte) uint64 {
	id := reg.NextID()
	reg.AddFunction(&registry.Function{
		ID:       id,
		Name:     name,
		Type:     value.NewFunction(nil, value.Void, false),
		Bytecode: code,
	})
	idx := uint64(len(mod.FuncTable))
	mod.FuncTable = append(mod.FuncTable, id)
	return idx
}

func builtinID(t *testing.T, name string, argKind *value.Type) uint32 {
	t.Helper()
	d, ok := intrinsics.Lookup(name, argKind)
	require.True(t, ok, "no such intrinsic %s", name)
	return d.ID
}

func TestRunHaltsWhenFramesEmpty(t *testing.T) {
	reg, mod := newTestReg()
	var c bytecode.Chunk
	c.EmitSize(bytecode.OpReturn, 0)
	addFunc(reg, mod, "main", c.Code)

	fn, _ := reg.GetFunctionByUUID(mod.FuncTable[0])
	v := New(reg, mod)
	require.NoError(t, v.Run(fn))
	require.Equal(t, int64(0), v.sp)
}

func TestIntArithmeticAndPrint(t *testing.T) {
	reg, mod := newTestReg()
	var c bytecode.Chunk
	c.EmitInt(2)
	c.EmitInt(3)
	c.Emit(bytecode.OpIntAdd)
	c.EmitInt(4)
	c.Emit(bytecode.OpIntMul)
	c.EmitCallBuiltin(builtinID(t, "print_int", value.Int), 8)
	c.EmitSize(bytecode.OpReturn, 0)
	addFunc(reg, mod, "main", c.Code)

	fn, _ := reg.GetFunctionByUUID(mod.FuncTable[0])
	var out bytes.Buffer
	v := New(reg, mod, WithOutput(&out))
	require.NoError(t, v.Run(fn))
	require.Equal(t, "20\n", out.String())
}

func TestIntDivByZeroPanics(t *testing.T) {
	reg, mod := newTestReg()
	var c bytecode.Chunk
	c.EmitInt(1)
	c.EmitInt(0)
	c.Emit(bytecode.OpIntDiv)
	c.EmitSize(bytecode.OpReturn, 0)
	addFunc(reg, mod, "main", c.Code)

	fn, _ := reg.GetFunctionByUUID(mod.FuncTable[0])
	v := New(reg, mod)
	err := v.Run(fn)
	require.Error(t, err)
	pe, ok := err.(*PanicError)
	require.True(t, ok)
	require.Equal(t, diag.CodeRuntimeDivByZero, pe.Diagnostic.Code)
}

func TestModByZeroPanics(t *testing.T) {
	reg, mod := newTestReg()
	var c bytecode.Chunk
	c.EmitInt(7)
	c.EmitInt(0)
	c.Emit(bytecode.OpMod)
	c.EmitSize(bytecode.OpReturn, 0)
	addFunc(reg, mod, "main", c.Code)

	fn, _ := reg.GetFunctionByUUID(mod.FuncTable[0])
	v := New(reg, mod)
	err := v.Run(fn)
	require.Error(t, err)
	pe := err.(*PanicError)
	require.Equal(t, diag.CodeRuntimeDivByZero, pe.Diagnostic.Code)
}

// TestCallAndReturnValue compiles double(n) { return n + n } by hand
// and calls it with Call's frame-relative addressing, exercising the
// stack_bottom/argSize call convention end to end.
func TestCallAndReturnValue(t *testing.T) {
	reg, mod := newTestReg()

	var doubleChunk bytecode.Chunk
	doubleChunk.EmitSizeAddress(bytecode.OpPushValue, 8, 0)
	doubleChunk.EmitSizeAddress(bytecode.OpPushValue, 8, 0)
	doubleChunk.Emit(bytecode.OpIntAdd)
	doubleChunk.EmitSize(bytecode.OpReturn, 8)
	doubleIdx := addFunc(reg, mod, "double", doubleChunk.Code)

	var mainChunk bytecode.Chunk
	mainChunk.EmitInt(21)
	mainChunk.EmitPointer(doubleIdx)
	mainChunk.EmitSize(bytecode.OpCall, 8)
	mainChunk.EmitCallBuiltin(builtinID(t, "print_int", value.Int), 8)
	mainChunk.EmitSize(bytecode.OpReturn, 0)
	addFunc(reg, mod, "main", mainChunk.Code)

	mainFn, _ := reg.GetFunctionByUUID(mod.FuncTable[1])
	var out bytes.Buffer
	v := New(reg, mod, WithOutput(&out))
	require.NoError(t, v.Run(mainFn))
	require.Equal(t, "42\n", out.String())
}

func TestStackOverflowIsFatal(t *testing.T) {
	reg, mod := newTestReg()
	var c bytecode.Chunk
	loopStart := c.Len()
	c.EmitSize(bytecode.OpAllocate, 64)
	jumpSite := c.EmitJump(bytecode.OpLoop)
	c.PatchJump(jumpSite, loopStart)
	addFunc(reg, mod, "main", c.Code)

	fn, _ := reg.GetFunctionByUUID(mod.FuncTable[0])
	v := New(reg, mod, WithStackSize(256))
	err := v.Run(fn)
	require.Error(t, err)
	pe := err.(*PanicError)
	require.Equal(t, diag.CodeRuntimeStackOverflow, pe.Diagnostic.Code)
}

func TestAllocFreeRoundTripsSameOffset(t *testing.T) {
	h := newHeapArena()
	first := h.alloc(16)
	h.free(first)
	second := h.alloc(16)
	require.Equal(t, first, second)
}

func TestPanicBuiltinCarriesMessage(t *testing.T) {
	reg, mod := newTestReg()

	var cp bytecode.ConstantPool
	off := cp.InternString("boom")
	mod.Constants = cp

	var c bytecode.Chunk
	c.EmitAddress(bytecode.OpLoadConstString, int64(off))
	c.EmitCallBuiltin(builtinID(t, "panic", value.Str), 16)
	c.EmitSize(bytecode.OpReturn, 0)
	addFunc(reg, mod, "main", c.Code)

	fn, _ := reg.GetFunctionByUUID(mod.FuncTable[0])
	v := New(reg, mod)
	err := v.Run(fn)
	require.Error(t, err)
	pe := err.(*PanicError)
	require.Equal(t, diag.CodeRuntimePanic, pe.Diagnostic.Code)
	require.Equal(t, "boom", pe.Diagnostic.Message)
}

// TestFormatStructRecursesIntoFields builds a Point{x,y} on the stack
// field-by-field with Move, then exercises puts_struct's recursive
// field formatter (puts writes the bare value; print adds a newline).
func TestFormatStructRecursesIntoFields(t *testing.T) {
	reg, mod := newTestReg()

	pointDef := &registry.Struct{
		ID:   reg.NextID(),
		Name: "Point",
		Fields: []registry.StructField{
			{Name: "x", Offset: 0, Type: value.Int},
			{Name: "y", Offset: 8, Type: value.Int},
		},
	}
	reg.AddStruct(pointDef)
	structIdx := uint64(len(mod.StructTable))
	mod.StructTable = append(mod.StructTable, pointDef.ID)

	var c bytecode.Chunk
	c.EmitSize(bytecode.OpAllocate, 16)

	c.EmitInt(3)
	c.EmitAddress(bytecode.OpPushPointer, 0)
	c.EmitSize(bytecode.OpMove, 8)

	c.EmitInt(4)
	c.EmitAddress(bytecode.OpPushPointer, 8)
	c.EmitSize(bytecode.OpMove, 8)

	c.EmitAddress(bytecode.OpPushPointer, 0)
	c.EmitPointer(structIdx)
	voidPtr := value.NewPointer(value.Void, true)
	c.EmitCallBuiltin(builtinID(t, "puts_struct", voidPtr), 16)

	c.EmitAddress(bytecode.OpFlush, 0)
	c.EmitSize(bytecode.OpReturn, 0)
	addFunc(reg, mod, "main", c.Code)

	fn, _ := reg.GetFunctionByUUID(mod.FuncTable[0])
	var out bytes.Buffer
	v := New(reg, mod, WithOutput(&out))
	require.NoError(t, v.Run(fn))
	require.Equal(t, "Point { x: 3, y: 4 }", out.String())
}

func TestRunFuncNameMissingFunctionErrors(t *testing.T) {
	reg, mod := newTestReg()
	err := RunFuncName(reg, mod, "main")
	require.Error(t, err)
}
