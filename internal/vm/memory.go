package vm

import (
	"encoding/binary"

	"github.com/foxlang/fox/internal/registry"
)

// Fox's VM has no single flat address space: a pointer value's top
// nibble tags which byte arena it indexes into, and the low 60 bits
// are the offset within that arena. This keeps Push_Pointer/Load/
// Move/Copy generic over the stack, the heap, and the string constant
// pool without needing a real OS-backed address space.
const (
	tagShift = 60
	tagMask  = uint64(0xF) << tagShift
	offMask  = ^tagMask

	tagStack  = uint64(0) << tagShift
	tagHeap   = uint64(1) << tagShift
	tagString = uint64(2) << tagShift
	tagGlobal = uint64(3) << tagShift
)

func taggedAddr(tag uint64, off int64) uint64 {
	return tag | (uint64(off) & offMask)
}

func addrOffset(p uint64) int64 { return int64(p & offMask) }
func addrTag(p uint64) uint64   { return p & tagMask }

// memAt resolves a tagged pointer to the live byte slice and offset it
// refers to, panicking with an InternalError on a tag the VM doesn't
// recognize.
func (m *VM) memAt(p uint64) ([]byte, int64) {
	switch addrTag(p) {
	case tagStack:
		return m.Stack, addrOffset(p)
	case tagHeap:
		return m.heap.bytes, addrOffset(p)
	case tagString:
		return m.Strings, addrOffset(p)
	case tagGlobal:
		return m.constants.Data, addrOffset(p)
	default:
		panic(&registry.InternalError{Message: "vm: pointer with unrecognized memory tag"})
	}
}

// heapArena is a simple bump allocator with a size-keyed freelist, so
// that a buffer of size N allocated then freed is handed back out
// again on the next same-size request rather than growing the arena
// further. Fox's *void carries no size, so every live allocation is
// preceded by an 8-byte size header the way a C allocator's block
// header works; free_ptr/free_slice/free_str read it back rather than
// requiring the caller to remember how big its allocation was.
const heapHeaderSize = 8

type heapArena struct {
	bytes    []byte
	freeList map[int64][]int64
}

func newHeapArena() *heapArena {
	return &heapArena{freeList: make(map[int64][]int64)}
}

// alloc returns the offset of a zeroed size-byte region (the data
// start, just past its header) and records size in the header so free
// can find it again.
func (h *heapArena) alloc(size int64) int64 {
	if free := h.freeList[size]; len(free) > 0 {
		dataOff := free[len(free)-1]
		h.freeList[size] = free[:len(free)-1]
		clear := h.bytes[dataOff : dataOff+size]
		for i := range clear {
			clear[i] = 0
		}
		return dataOff
	}
	headerOff := int64(len(h.bytes))
	h.bytes = append(h.bytes, make([]byte, heapHeaderSize+size)...)
	binary.LittleEndian.PutUint64(h.bytes[headerOff:], uint64(size))
	return headerOff + heapHeaderSize
}

// free returns the block whose data starts at dataOff to the freelist,
// keyed by the size recorded in its header.
func (h *heapArena) free(dataOff int64) {
	if dataOff < heapHeaderSize || dataOff > int64(len(h.bytes)) {
		return
	}
	size := int64(binary.LittleEndian.Uint64(h.bytes[dataOff-heapHeaderSize:]))
	h.freeList[size] = append(h.freeList[size], dataOff)
}
