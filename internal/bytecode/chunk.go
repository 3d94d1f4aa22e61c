package bytecode

import (
	"encoding/binary"
	"math"
)

// Chunk is a function's compiled bytecode: an append-only byte vector.
type Chunk struct {
	Code []byte
}

// Len returns the current write position, used as a jump-patch site
// or branch target.
func (c *Chunk) Len() int { return len(c.Code) }

// Emit appends a bare opcode with no operand (e.g. Lit_True, Int_Add).
func (c *Chunk) Emit(op Op) int {
	pos := len(c.Code)
	c.Code = append(c.Code, byte(op))
	return pos
}

func (c *Chunk) grow(op Op, n int) (pos int) {
	pos = len(c.Code)
	c.Code = append(c.Code, make([]byte, 1+n)...)
	c.Code[pos] = byte(op)
	return pos
}

// EmitSize appends op followed by a 4-byte unsigned Size operand
// (Move/Copy/Load/Pop/Allocate/etc.).
func (c *Chunk) EmitSize(op Op, size uint32) int {
	pos := c.grow(op, SizeWidth)
	binary.LittleEndian.PutUint32(c.Code[pos+1:], size)
	return pos
}

// EmitAddress appends op followed by an 8-byte Address operand
// (Push_Pointer, Flush, constant-pool indices).
func (c *Chunk) EmitAddress(op Op, addr int64) int {
	pos := c.grow(op, AddressWidth)
	binary.LittleEndian.PutUint64(c.Code[pos+1:], uint64(addr))
	return pos
}

// EmitSizeAddress appends op followed by a Size then an Address
// operand (Load_Const, Push_Value and their global variants).
func (c *Chunk) EmitSizeAddress(op Op, size uint32, addr int64) int {
	pos := c.grow(op, SizeWidth+AddressWidth)
	binary.LittleEndian.PutUint32(c.Code[pos+1:], size)
	binary.LittleEndian.PutUint64(c.Code[pos+1+SizeWidth:], uint64(addr))
	return pos
}

// EmitInt appends Lit_Int with its i64 operand.
func (c *Chunk) EmitInt(v int64) int {
	pos := c.grow(OpLitInt, IntWidth)
	binary.LittleEndian.PutUint64(c.Code[pos+1:], uint64(v))
	return pos
}

// EmitFloat appends Lit_Float with its f64 operand.
func (c *Chunk) EmitFloat(v float64) int {
	pos := c.grow(OpLitFloat, FloatWidth)
	binary.LittleEndian.PutUint64(c.Code[pos+1:], math.Float64bits(v))
	return pos
}

// EmitChar appends Lit_Char with its u32 operand.
func (c *Chunk) EmitChar(v rune) int {
	pos := c.grow(OpLitChar, CharWidth)
	binary.LittleEndian.PutUint32(c.Code[pos+1:], uint32(v))
	return pos
}

// EmitPointer appends Lit_Pointer with its native-width operand.
func (c *Chunk) EmitPointer(v uint64) int {
	pos := c.grow(OpLitPointer, PointerWidth)
	binary.LittleEndian.PutUint64(c.Code[pos+1:], v)
	return pos
}

// EmitJump appends a placeholder jump instruction (Jump/Loop/Jump_*)
// with a zeroed offset, returning the patch site.
func (c *Chunk) EmitJump(op Op) int {
	return c.grow(op, AddressWidth)
}

// EmitCallBuiltin appends Call_Builtin(id, arg_size): a Size-width
// intrinsic table index followed by a Size-width argument byte count.
func (c *Chunk) EmitCallBuiltin(id uint32, argSize uint32) int {
	pos := c.grow(OpCallBuiltin, SizeWidth+SizeWidth)
	binary.LittleEndian.PutUint32(c.Code[pos+1:], id)
	binary.LittleEndian.PutUint32(c.Code[pos+1+SizeWidth:], argSize)
	return pos
}

// PatchJump overwrites the placeholder offset at site (the position
// returned by EmitJump) so that decoding it from the PC immediately
// following the operand lands on target.
func (c *Chunk) PatchJump(site int, target int) {
	pcAfterOperand := site + 1 + AddressWidth
	rel := int64(target - pcAfterOperand)
	binary.LittleEndian.PutUint64(c.Code[site+1:], uint64(rel))
}

// ReadOp decodes the opcode and its fixed-width operand bytes at pc,
// returning the opcode, its raw operand slice, and the pc of the next
// instruction.
func ReadOp(code []byte, pc int) (Op, []byte, int) {
	op := Op(code[pc])
	w := OperandWidth(op)
	operand := code[pc+1 : pc+1+w]
	return op, operand, pc + 1 + w
}

func ReadSize(b []byte) uint32    { return binary.LittleEndian.Uint32(b) }
func ReadAddress(b []byte) int64  { return int64(binary.LittleEndian.Uint64(b)) }
func ReadInt(b []byte) int64      { return int64(binary.LittleEndian.Uint64(b)) }
func ReadFloat(b []byte) float64  { return math.Float64frombits(binary.LittleEndian.Uint64(b)) }
func ReadChar(b []byte) rune      { return rune(binary.LittleEndian.Uint32(b)) }
func ReadPointer(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// ConstantPool is the shared constant pool a code-gen unit
// accumulates: a byte-exact, linearly-deduplicated, 8-byte-aligned
// byte buffer plus a separate length-prefixed pool for string
// constants.
type ConstantPool struct {
	Data    []byte
	Strings []byte
}

// Intern appends data (padded to an 8-byte boundary first) to the
// pool unless an identical byte run already exists, returning the
// byte offset either way. Deduplication is a linear scan comparing
// byte-exact runs at aligned offsets only, so every offset the pool
// ever hands out is 8-byte aligned.
func (p *ConstantPool) Intern(data []byte) uint32 {
	for i := 0; i+len(data) <= len(p.Data); i += 8 {
		if bytesEqual(p.Data[i:i+len(data)], data) {
			return uint32(i)
		}
	}
	if rem := len(p.Data) % 8; rem != 0 {
		p.Data = append(p.Data, make([]byte, 8-rem)...)
	}
	off := uint32(len(p.Data))
	p.Data = append(p.Data, data...)
	return off
}

// InternString appends s, length-prefixed (8 bytes), to the string
// pool unless an identical entry already exists, returning the entry's
// offset either way. No alignment is inserted between entries.
func (p *ConstantPool) InternString(s string) uint32 {
	for off := 0; off+8 <= len(p.Strings); {
		n := int(binary.LittleEndian.Uint64(p.Strings[off:]))
		if n == len(s) && string(p.Strings[off+8:off+8+n]) == s {
			return uint32(off)
		}
		off += 8 + n
	}
	off := uint32(len(p.Strings))
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	p.Strings = append(p.Strings, lenBuf[:]...)
	p.Strings = append(p.Strings, s...)
	return off
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
