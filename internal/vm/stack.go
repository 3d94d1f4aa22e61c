package vm

import (
	"encoding/binary"
	"math"

	"github.com/foxlang/fox/internal/diag"
)

// growStack reserves n uninitialized bytes at the current stack top
// (Allocate): whatever bytes already live there are about
// to be overwritten by the instructions that follow, so they are left
// untouched.
func (v *VM) growStack(n int64) {
	v.reserve(n)
	v.sp += n
}

// growStackZeroed reserves n zeroed bytes (Clear_Allocate), used
// wherever generated code relies on a fresh binding starting at zero
// (e.g. a for-each loop's element buffer).
func (v *VM) growStackZeroed(n int64) {
	v.reserve(n)
	for i := v.sp; i < v.sp+n; i++ {
		v.Stack[i] = 0
	}
	v.sp += n
}

func (v *VM) reserve(n int64) {
	if v.sp+n > int64(len(v.Stack)) {
		v.panicUser(diag.CodeRuntimeStackOverflow, "stack overflow")
	}
}

// pushBytes appends b to the stack top.
func (v *VM) pushBytes(b []byte) {
	v.reserve(int64(len(b)))
	copy(v.Stack[v.sp:], b)
	v.sp += int64(len(b))
}

// popBytes removes and returns (a copy of) the top n bytes.
func (v *VM) popBytes(n int64) []byte {
	if v.sp-n < 0 {
		v.internalError("stack underflow popping %d bytes", n)
	}
	v.sp -= n
	out := make([]byte, n)
	copy(out, v.Stack[v.sp:v.sp+n])
	return out
}

// dropBytes discards the top n bytes without copying them out.
func (v *VM) dropBytes(n int64) {
	if v.sp-n < 0 {
		v.internalError("stack underflow popping %d bytes", n)
	}
	v.sp -= n
}

func (v *VM) pushByte(b byte) { v.pushBytes([]byte{b}) }

func (v *VM) popByte() byte {
	b := v.popBytes(1)
	return b[0]
}

// peekByte reads the top byte without popping it (Jump_*_No_Pop).
func (v *VM) peekByte() byte {
	if v.sp < 1 {
		v.internalError("stack underflow peeking a byte")
	}
	return v.Stack[v.sp-1]
}

func (v *VM) pushBool(b bool) {
	if b {
		v.pushByte(1)
	} else {
		v.pushByte(0)
	}
}

func (v *VM) pushInt64(x int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(x))
	v.pushBytes(buf[:])
}

func (v *VM) popInt64() int64 {
	return int64(binary.LittleEndian.Uint64(v.popBytes(8)))
}

func (v *VM) pushUint64(x uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	v.pushBytes(buf[:])
}

func (v *VM) popUint64() uint64 {
	return binary.LittleEndian.Uint64(v.popBytes(8))
}

func (v *VM) pushFloat64(f float64) {
	v.pushUint64(math.Float64bits(f))
}

func (v *VM) popFloat64() float64 {
	return math.Float64frombits(v.popUint64())
}
