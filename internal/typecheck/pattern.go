package typecheck

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// processPattern resolves a source pattern against typ, binding any
// introduced names into scope with fresh frame slots.
func (c *Checker) processPattern(pat ast.Pattern, typ *value.Type, scope *Scope) typedast.ProcessedPattern {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		slot := c.allocSlot()
		bindType := typ
		if p.Mut {
			bindType = typ.Mut()
		}
		scope.Insert(&Symbol{Name: p.Name.Name, Type: bindType, IsMut: p.Mut, Slot: slot})
		b := typedast.Binding{Name: p.Name.Name, Slot: slot, Type: bindType, IsMut: p.Mut}
		return typedast.ProcessedPattern{Kind: typedast.PatternIdent, Type: bindType, Binding: b, Bindings: []typedast.Binding{b}}

	case *ast.WildcardPattern:
		return typedast.ProcessedPattern{Kind: typedast.PatternWildcard, Type: typ}

	case *ast.TuplePattern:
		if typ.Kind != value.KindTuple {
			c.errorf(p.Span(), diag.CodeTypeMismatch, "tuple pattern against non-tuple type %s", typ.DisplayStr())
			return typedast.ProcessedPattern{Kind: typedast.PatternWildcard, Type: typ}
		}
		if len(p.Elems) != len(typ.Tuple) {
			c.errorf(p.Span(), diag.CodePatternArity, "tuple pattern has %d elements, value has %d", len(p.Elems), len(typ.Tuple))
		}
		offsets := value.OffsetsOfTuple(typ.Tuple)
		n := len(p.Elems)
		if len(typ.Tuple) < n {
			n = len(typ.Tuple)
		}
		var elems []typedast.ProcessedPattern
		var bindings []typedast.Binding
		for i := 0; i < n; i++ {
			sub := c.processPattern(p.Elems[i], typ.Tuple[i], scope)
			elems = append(elems, sub)
			bindings = append(bindings, sub.Bindings...)
		}
		return typedast.ProcessedPattern{Kind: typedast.PatternTuple, Type: typ, Elems: elems, Offsets: offsets[:n], Bindings: bindings}

	case *ast.StructPattern:
		if typ.Kind != value.KindStruct {
			c.errorf(p.Span(), diag.CodeTypeMismatch, "struct pattern against non-struct type %s", typ.DisplayStr())
			return typedast.ProcessedPattern{Kind: typedast.PatternWildcard, Type: typ}
		}
		s, _ := typ.Def.(*registry.Struct)
		var elems []typedast.ProcessedPattern
		var offsets []int64
		var bindings []typedast.Binding
		for _, f := range p.Fields {
			sf := s.FindField(f.Name.Name)
			if sf == nil {
				c.errorf(f.Name.Span(), diag.CodeMissingField, "struct %q has no field %q", s.Name, f.Name.Name)
				continue
			}
			var sub typedast.ProcessedPattern
			if f.Value != nil {
				sub = c.processPattern(f.Value, sf.Type, scope)
			} else {
				sub = c.processPattern(ast.NewIdentPattern(f.Name, false, f.Name.Span()), sf.Type, scope)
			}
			elems = append(elems, sub)
			offsets = append(offsets, sf.Offset)
			bindings = append(bindings, sub.Bindings...)
		}
		return typedast.ProcessedPattern{Kind: typedast.PatternStruct, Type: typ, Elems: elems, Offsets: offsets, Bindings: bindings}

	case *ast.EnumPattern:
		if typ.Kind != value.KindEnum {
			c.errorf(p.Span(), diag.CodeTypeMismatch, "enum pattern against non-enum type %s", typ.DisplayStr())
			return typedast.ProcessedPattern{Kind: typedast.PatternWildcard, Type: typ}
		}
		e, _ := typ.Def.(*registry.Enum)
		v, ok := e.FindVariantByName(p.Variant.Name)
		if !ok {
			c.errorf(p.Variant.Span(), diag.CodeMissingField, "enum %q has no variant %q", e.Name, p.Variant.Name)
			return typedast.ProcessedPattern{Kind: typedast.PatternWildcard, Type: typ}
		}
		if len(p.Payload) != len(v.Payload) {
			c.errorf(p.Span(), diag.CodePatternArity, "variant %q expects %d payload fields, pattern has %d", v.Name, len(v.Payload), len(p.Payload))
		}
		n := len(p.Payload)
		if len(v.Payload) < n {
			n = len(v.Payload)
		}
		var payload []typedast.ProcessedPattern
		var bindings []typedast.Binding
		for i := 0; i < n; i++ {
			sub := c.processPattern(p.Payload[i], v.Payload[i].Type, scope)
			payload = append(payload, sub)
			bindings = append(bindings, sub.Bindings...)
		}
		return typedast.ProcessedPattern{
			Kind: typedast.PatternEnum, Type: typ,
			VariantName: v.Name, VariantTag: v.Tag,
			Payload: payload, Bindings: bindings,
		}

	case *ast.ValuePattern:
		val := c.checkExpr(p.Value, scope)
		if val != nil && !typ.EqIgnoringMutability(val.Type()) {
			c.errorf(p.Span(), diag.CodeTypeMismatch, "value pattern type %s does not match matched type %s", val.Type().DisplayStr(), typ.DisplayStr())
		}
		return typedast.ProcessedPattern{Kind: typedast.PatternValue, Type: typ, Value: val}

	default:
		c.errorf(pat.Span(), diag.CodeParserBadPattern, "unsupported pattern")
		return typedast.ProcessedPattern{Kind: typedast.PatternWildcard, Type: typ}
	}
}
