package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/diag"
)

// dispatch runs instructions from the top frame until the call stack
// empties. It is the VM's single
// instruction loop; every opcode in internal/bytecode is handled here.
func (v *VM) dispatch() {
	for len(v.frames) > 0 {
		f := v.curFrame()
		if f.pc >= len(f.code) {
			v.internalError("program counter ran past the end of %s's bytecode", f.fn.Name)
		}
		instrStart := f.pc
		op, operand, next := bytecode.ReadOp(f.code, f.pc)
		f.pc = next

		if v.Trace {
			fmt.Fprintf(v.Out, "%s  %4d  %s\n", f.fn.Name, instrStart, op)
		}

		switch op {
		case bytecode.OpLitTrue:
			v.pushByte(1)
		case bytecode.OpLitFalse:
			v.pushByte(0)
		case bytecode.OpLit0:
			v.pushInt64(0)
		case bytecode.OpLit1:
			v.pushInt64(1)
		case bytecode.OpLitChar:
			v.pushBytes(operand)
		case bytecode.OpLitInt:
			v.pushBytes(operand)
		case bytecode.OpLitFloat:
			v.pushBytes(operand)
		case bytecode.OpLitPointer:
			v.pushBytes(operand)

		case bytecode.OpLoadConst:
			size, addr := bytecode.ReadSize(operand[:bytecode.SizeWidth]), bytecode.ReadAddress(operand[bytecode.SizeWidth:])
			v.pushBytes(v.constants.Data[addr : addr+int64(size)])
		case bytecode.OpLoadConstArray:
			size, addr := bytecode.ReadSize(operand[:bytecode.SizeWidth]), bytecode.ReadAddress(operand[bytecode.SizeWidth:])
			v.pushBytes(v.constants.Data[addr : addr+int64(size)])
		case bytecode.OpLoadConstString:
			addr := bytecode.ReadAddress(operand)
			v.pushStringConst(addr)

		case bytecode.OpIntAdd:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a + b)
		case bytecode.OpIntSub:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a - b)
		case bytecode.OpIntMul:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a * b)
		case bytecode.OpIntDiv:
			b, a := v.popInt64(), v.popInt64()
			if b == 0 {
				v.panicUser(diag.CodeRuntimeDivByZero, "division by zero in '/'")
			}
			v.pushInt64(a / b)
		case bytecode.OpIntNeg:
			v.pushInt64(-v.popInt64())
		case bytecode.OpMod:
			b, a := v.popInt64(), v.popInt64()
			if b == 0 {
				v.panicUser(diag.CodeRuntimeDivByZero, "modulo by zero in '%%'")
			}
			v.pushInt64(a % b)
		case bytecode.OpInc:
			v.addToPointee(v.popUint64(), 1)
		case bytecode.OpDec:
			v.addToPointee(v.popUint64(), -1)

		case bytecode.OpFloatAdd:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushFloat64(a + b)
		case bytecode.OpFloatSub:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushFloat64(a - b)
		case bytecode.OpFloatMul:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushFloat64(a * b)
		case bytecode.OpFloatDiv:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushFloat64(a / b)
		case bytecode.OpFloatNeg:
			v.pushFloat64(-v.popFloat64())

		case bytecode.OpStrAdd:
			b := v.popStr()
			a := v.popStr()
			v.pushStr(v.concatStr(a, b))

		case bytecode.OpBitNot:
			v.pushInt64(^v.popInt64())
		case bytecode.OpShiftLeft:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a << uint(b))
		case bytecode.OpShiftRight:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a >> uint(b))
		case bytecode.OpBitAnd:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a & b)
		case bytecode.OpXor:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a ^ b)
		case bytecode.OpBitOr:
			b, a := v.popInt64(), v.popInt64()
			v.pushInt64(a | b)

		case bytecode.OpAnd:
			b, a := v.popByte(), v.popByte()
			v.pushBool(a != 0 && b != 0)
		case bytecode.OpOr:
			b, a := v.popByte(), v.popByte()
			v.pushBool(a != 0 || b != 0)
		case bytecode.OpNot:
			v.pushBool(v.popByte() == 0)

		case bytecode.OpEqual:
			size := int64(bytecode.ReadSize(operand))
			b, a := v.popBytes(size), v.popBytes(size)
			v.pushBool(bytes.Equal(a, b))
		case bytecode.OpNotEqual:
			size := int64(bytecode.ReadSize(operand))
			b, a := v.popBytes(size), v.popBytes(size)
			v.pushBool(!bytes.Equal(a, b))
		case bytecode.OpStrEqual:
			b, a := v.popStr(), v.popStr()
			v.pushBool(v.strsEqual(a, b))
		case bytecode.OpStrNotEqual:
			b, a := v.popStr(), v.popStr()
			v.pushBool(!v.strsEqual(a, b))

		case bytecode.OpIntLessThan:
			b, a := v.popInt64(), v.popInt64()
			v.pushBool(a < b)
		case bytecode.OpIntLessEqual:
			b, a := v.popInt64(), v.popInt64()
			v.pushBool(a <= b)
		case bytecode.OpIntGreaterThan:
			b, a := v.popInt64(), v.popInt64()
			v.pushBool(a > b)
		case bytecode.OpIntGreaterEqual:
			b, a := v.popInt64(), v.popInt64()
			v.pushBool(a >= b)

		case bytecode.OpFloatLessThan:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushBool(a < b)
		case bytecode.OpFloatLessEqual:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushBool(a <= b)
		case bytecode.OpFloatGreaterThan:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushBool(a > b)
		case bytecode.OpFloatGreaterEqual:
			b, a := v.popFloat64(), v.popFloat64()
			v.pushBool(a >= b)

		case bytecode.OpMove:
			size := int64(bytecode.ReadSize(operand))
			ptr := v.popUint64()
			val := v.popBytes(size)
			v.writeMem(ptr, val)
		case bytecode.OpMovePushPointer:
			size := int64(bytecode.ReadSize(operand))
			ptr := v.popUint64()
			val := v.popBytes(size)
			v.writeMem(ptr, val)
			v.pushUint64(ptr)
		case bytecode.OpCopy:
			size := int64(bytecode.ReadSize(operand))
			dst := v.popUint64()
			src := v.popUint64()
			v.writeMem(dst, v.readMem(src, size))
		case bytecode.OpLoad:
			size := int64(bytecode.ReadSize(operand))
			ptr := v.popUint64()
			v.pushBytes(v.readMem(ptr, size))

		case bytecode.OpPushPointer:
			addr := bytecode.ReadAddress(operand)
			v.pushUint64(taggedAddr(tagStack, f.stackBottom+addr))
		case bytecode.OpPushValue:
			size, addr := int64(bytecode.ReadSize(operand[:bytecode.SizeWidth])), bytecode.ReadAddress(operand[bytecode.SizeWidth:])
			abs := f.stackBottom + addr
			v.pushBytes(v.Stack[abs : abs+size])
		case bytecode.OpPushGlobalPointer:
			addr := bytecode.ReadAddress(operand)
			v.pushUint64(taggedAddr(tagGlobal, addr))
		case bytecode.OpPushGlobalValue:
			size, addr := int64(bytecode.ReadSize(operand[:bytecode.SizeWidth])), bytecode.ReadAddress(operand[bytecode.SizeWidth:])
			v.pushBytes(v.constants.Data[addr : addr+size])

		case bytecode.OpPop:
			v.dropBytes(int64(bytecode.ReadSize(operand)))
		case bytecode.OpAllocate:
			v.growStack(int64(bytecode.ReadSize(operand)))
		case bytecode.OpClearAllocate:
			v.growStackZeroed(int64(bytecode.ReadSize(operand)))
		case bytecode.OpHeapAllocate:
			size := int64(bytecode.ReadSize(operand))
			v.pushUint64(taggedAddr(tagHeap, v.heap.alloc(size)))
		case bytecode.OpFlush:
			addr := bytecode.ReadAddress(operand)
			v.sp = f.stackBottom + addr

		case bytecode.OpJump:
			f.pc = next + int(bytecode.ReadAddress(operand))
		case bytecode.OpLoop:
			f.pc = next + int(bytecode.ReadAddress(operand))
		case bytecode.OpJumpTrue:
			cond := v.popByte()
			if cond != 0 {
				f.pc = next + int(bytecode.ReadAddress(operand))
			}
		case bytecode.OpJumpFalse:
			cond := v.popByte()
			if cond == 0 {
				f.pc = next + int(bytecode.ReadAddress(operand))
			}
		case bytecode.OpJumpTrueNoPop:
			if v.peekByte() != 0 {
				f.pc = next + int(bytecode.ReadAddress(operand))
			}
		case bytecode.OpJumpFalseNoPop:
			if v.peekByte() == 0 {
				f.pc = next + int(bytecode.ReadAddress(operand))
			}

		case bytecode.OpCall:
			argSize := int64(bytecode.ReadSize(operand))
			fnIdx := v.popUint64()
			callee := v.funcByIndex(fnIdx)
			v.pushFrame(callee, argSize)
		case bytecode.OpCallBuiltin:
			id := bytecode.ReadSize(operand[:bytecode.SizeWidth])
			argSize := bytecode.ReadSize(operand[bytecode.SizeWidth:])
			v.callBuiltin(f, instrStart, id, argSize)
		case bytecode.OpReturn, bytecode.OpVariadicReturn:
			// Variadic_Return is never emitted differently from Return in
			// this codebase: a variadic call's trailing argument count is
			// just an ordinary frame local, so the ordinary reset-to-
			// stack_bottom already discards the whole varargs payload.
			size := int64(bytecode.ReadSize(operand))
			ret := v.popBytes(size)
			v.sp = f.stackBottom
			v.pushBytes(ret)
			v.popFrame()

		case bytecode.OpCastBoolInt:
			if v.popByte() != 0 {
				v.pushInt64(1)
			} else {
				v.pushInt64(0)
			}
		case bytecode.OpCastCharInt:
			var buf [4]byte
			copy(buf[:], v.popBytes(bytecode.CharWidth))
			v.pushInt64(int64(binary.LittleEndian.Uint32(buf[:])))
		case bytecode.OpCastIntFloat:
			v.pushFloat64(float64(v.popInt64()))
		case bytecode.OpCastFloatInt:
			v.pushInt64(int64(v.popFloat64()))

		default:
			v.internalError("unknown opcode %d", byte(op))
		}
	}
}

// addToPointee adds delta to the 8-byte int stored at the tagged
// pointer ptr, in place.
func (v *VM) addToPointee(ptr uint64, delta int64) {
	base, off := v.memAt(ptr)
	cur := int64(binary.LittleEndian.Uint64(base[off:]))
	binary.LittleEndian.PutUint64(base[off:], uint64(cur+delta))
}

func (v *VM) readMem(ptr uint64, size int64) []byte {
	base, off := v.memAt(ptr)
	if off < 0 || off+size > int64(len(base)) {
		v.internalError("memory access out of bounds")
	}
	out := make([]byte, size)
	copy(out, base[off:off+size])
	return out
}

func (v *VM) writeMem(ptr uint64, data []byte) {
	base, off := v.memAt(ptr)
	if off < 0 || off+int64(len(data)) > int64(len(base)) {
		v.internalError("memory access out of bounds")
	}
	copy(base[off:], data)
}

// strHandle is the in-flight representation of a Str value popped off
// the stack: {dataPtr, len}, matching value.Type's KindStr layout.
type strHandle struct {
	ptr uint64
	len int64
}

func (v *VM) popStr() strHandle {
	b := v.popBytes(bytecode.PointerWidth + bytecode.IntWidth)
	return strHandle{
		ptr: binary.LittleEndian.Uint64(b[:bytecode.PointerWidth]),
		len: bytecode.ReadInt(b[bytecode.PointerWidth:]),
	}
}

func (v *VM) pushStr(s strHandle) {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], s.ptr)
	binary.LittleEndian.PutUint64(buf[8:], uint64(s.len))
	v.pushBytes(buf[:])
}

func (v *VM) strBytes(s strHandle) []byte {
	if s.len == 0 {
		return nil
	}
	return v.readMem(s.ptr, s.len)
}

func (v *VM) strsEqual(a, b strHandle) bool {
	if a.len != b.len {
		return false
	}
	return bytes.Equal(v.strBytes(a), v.strBytes(b))
}

// concatStr implements Str_Add: allocate a fresh heap buffer sized
// a.len+b.len and copy both operands into it.
func (v *VM) concatStr(a, b strHandle) strHandle {
	total := a.len + b.len
	off := v.heap.alloc(total)
	if a.len > 0 {
		copy(v.heap.bytes[off:], v.strBytes(a))
	}
	if b.len > 0 {
		copy(v.heap.bytes[off+a.len:], v.strBytes(b))
	}
	return strHandle{ptr: taggedAddr(tagHeap, off), len: total}
}

// pushStringConst reads a length-prefixed entry from the string
// constant pool at addr and pushes it as a Str value whose data
// pointer addresses the pool directly, just past the length prefix.
func (v *VM) pushStringConst(addr int64) {
	length := int64(binary.LittleEndian.Uint64(v.Strings[addr:]))
	v.pushStr(strHandle{ptr: taggedAddr(tagString, addr+8), len: length})
}
