package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitAndReadSizeOperand(t *testing.T) {
	var c Chunk
	c.EmitSize(OpPop, 8)
	op, operand, next := ReadOp(c.Code, 0)
	require.Equal(t, OpPop, op)
	require.Equal(t, uint32(8), ReadSize(operand))
	require.Equal(t, len(c.Code), next)
}

func TestEmitSizeAddressOperand(t *testing.T) {
	var c Chunk
	c.EmitSizeAddress(OpPushValue, 8, 24)
	op, operand, _ := ReadOp(c.Code, 0)
	require.Equal(t, OpPushValue, op)
	require.Equal(t, uint32(8), ReadSize(operand[:SizeWidth]))
	require.Equal(t, int64(24), ReadAddress(operand[SizeWidth:]))
}

func TestPatchJumpComputesSelfRelativeOffset(t *testing.T) {
	var c Chunk
	site := c.EmitJump(OpJumpFalse)
	c.Emit(OpLitTrue)
	c.Emit(OpLitFalse)
	target := c.Len()
	c.PatchJump(site, target)

	_, operand, next := ReadOp(c.Code, site)
	rel := ReadAddress(operand)
	pcAfterOperand := site + 1 + AddressWidth
	require.Equal(t, int64(target-pcAfterOperand), rel)
	require.Equal(t, pcAfterOperand+int(rel), target)
	require.Equal(t, pcAfterOperand, next)
}

func TestEmitIntFloatCharPointerLiterals(t *testing.T) {
	var c Chunk
	c.EmitInt(-7)
	c.EmitFloat(3.5)
	c.EmitChar('z')
	c.EmitPointer(0xdeadbeef)

	op, operand, next := ReadOp(c.Code, 0)
	require.Equal(t, OpLitInt, op)
	require.Equal(t, int64(-7), ReadInt(operand))

	op, operand, next = ReadOp(c.Code, next)
	require.Equal(t, OpLitFloat, op)
	require.Equal(t, 3.5, ReadFloat(operand))

	op, operand, next = ReadOp(c.Code, next)
	require.Equal(t, OpLitChar, op)
	require.Equal(t, 'z', ReadChar(operand))

	op, operand, _ = ReadOp(c.Code, next)
	require.Equal(t, OpLitPointer, op)
	require.Equal(t, uint64(0xdeadbeef), ReadPointer(operand))
}

func TestEmitCallBuiltin(t *testing.T) {
	var c Chunk
	c.EmitCallBuiltin(3, 16)
	op, operand, _ := ReadOp(c.Code, 0)
	require.Equal(t, OpCallBuiltin, op)
	require.Equal(t, uint32(3), ReadSize(operand[:SizeWidth]))
	require.Equal(t, uint32(16), ReadSize(operand[SizeWidth:]))
}

func TestConstantPoolDeduplicatesByteExactRuns(t *testing.T) {
	var pool ConstantPool
	a := pool.Intern([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	b := pool.Intern([]byte{9, 9, 9, 9, 9, 9, 9, 9})
	c := pool.Intern([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.Equal(t, a, c)
	require.NotEqual(t, a, b)
}

func TestConstantPoolInternStringIsLengthPrefixed(t *testing.T) {
	var pool ConstantPool
	off := pool.InternString("hi")
	require.Equal(t, int64(2), ReadAddress(pool.Strings[off:off+8]))
	require.Equal(t, "hi", string(pool.Strings[off+8:off+10]))
}

func TestOpcodeStringMnemonics(t *testing.T) {
	require.Equal(t, "Int_Add", OpIntAdd.String())
	require.Equal(t, "Jump_False", OpJumpFalse.String())
	require.Equal(t, "Unknown", Op(255).String())
}
