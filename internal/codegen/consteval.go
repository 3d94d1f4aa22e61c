package codegen

import (
	"encoding/binary"
	"math"

	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// constEval pre-evaluates a const binding's initializer into the raw
// bytes of its in-memory layout. ok is false for anything it does not handle, in which case
// the caller falls back to ordinary expression compilation.
func (g *Generator) constEval(e typedast.Expr) ([]byte, bool) {
	size := e.Type().Size()
	if size == 0 {
		return nil, false
	}
	buf := make([]byte, size)
	if !g.constEvalInto(buf, e) {
		return nil, false
	}
	return buf, true
}

func (g *Generator) constEvalInto(buf []byte, e typedast.Expr) bool {
	switch ex := e.(type) {
	case *typedast.IntLit:
		binary.LittleEndian.PutUint64(buf, uint64(ex.Value))
		return true
	case *typedast.FloatLit:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(ex.Value))
		return true
	case *typedast.BoolLit:
		if ex.Value {
			buf[0] = 1
		}
		return true
	case *typedast.CharLit:
		binary.LittleEndian.PutUint32(buf, uint32(ex.Value))
		return true
	case *typedast.UnaryExpr:
		if ex.Op != lexer.MINUS || !g.constEvalInto(buf, ex.Operand) {
			return false
		}
		switch ex.Type().Kind {
		case value.KindInt:
			binary.LittleEndian.PutUint64(buf, uint64(-int64(binary.LittleEndian.Uint64(buf))))
		case value.KindFloat:
			binary.LittleEndian.PutUint64(buf, math.Float64bits(-math.Float64frombits(binary.LittleEndian.Uint64(buf))))
		default:
			return false
		}
		return true
	case *typedast.TupleLit:
		for i, el := range ex.Elements {
			off := ex.Offsets[i]
			if !g.constEvalInto(buf[off:off+el.Type().Size()], el) {
				return false
			}
		}
		return true
	case *typedast.RangeExpr:
		if !g.constEvalInto(buf[:8], ex.Start) {
			return false
		}
		return g.constEvalInto(buf[8:16], ex.End)
	case *typedast.ArrayLit:
		elemSize := e.Type().Elem.Size()
		for i, el := range ex.Elements {
			off := int64(i) * elemSize
			if !g.constEvalInto(buf[off:off+elemSize], el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
