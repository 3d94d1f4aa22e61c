package typecheck

import "github.com/foxlang/fox/internal/value"

// alignUp and fieldAlign mirror internal/value's unexported layout
// helpers: the checker needs to precompute struct field and enum
// payload offsets before registry.Struct/Enum.DefSize() can report a
// size, so it duplicates the same natural-alignment rule rather than
// exporting value's internals solely for this one caller.
func alignUp(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	if rem := n % align; rem != 0 {
		return n + (align - rem)
	}
	return n
}

func fieldAlign(t *value.Type) int64 {
	sz := t.Size()
	if sz == 0 {
		return 1
	}
	if sz > 8 {
		return 8
	}
	return sz
}

// offsetsOf computes sequential natural-alignment offsets for an
// ordered list of field types; offsets are deterministic and
// computed once.
func offsetsOf(types []*value.Type) []int64 {
	offsets := make([]int64, len(types))
	var cur int64
	for i, t := range types {
		cur = alignUp(cur, fieldAlign(t))
		offsets[i] = cur
		cur += t.Size()
	}
	return offsets
}
