package typecheck

import (
	"strconv"

	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// checkExpr dispatches on the untyped expression's concrete type;
// everything is a top-level switch on node kind rather than a virtual
// "check()" method per AST node.
func (c *Checker) checkExpr(e ast.Expr, scope *Scope) typedast.Expr {
	switch ex := e.(type) {
	case *ast.IntLit:
		n, err := strconv.ParseInt(stripUnderscores(ex.Text), 10, 64)
		if err != nil {
			c.errorf(ex.Span(), diag.CodeSemanticError, "invalid integer literal %q", ex.Text)
		}
		return typedast.NewIntLit(n, ex.Span())
	case *ast.FloatLit:
		f, err := strconv.ParseFloat(stripUnderscores(ex.Text), 64)
		if err != nil {
			c.errorf(ex.Span(), diag.CodeSemanticError, "invalid float literal %q", ex.Text)
		}
		return typedast.NewFloatLit(f, ex.Span())
	case *ast.BoolLit:
		return typedast.NewBoolLit(ex.Value, ex.Span())
	case *ast.CharLit:
		return typedast.NewCharLit(ex.Value, ex.Span())
	case *ast.StringLit:
		return typedast.NewStringLit(ex.Value, ex.Span())
	case *ast.Ident:
		return c.checkIdent(ex, scope)
	case *ast.Path:
		return c.checkBarePath(ex, scope)
	case *ast.UnaryExpr:
		return c.checkUnaryExpr(ex, scope)
	case *ast.BinaryExpr:
		return c.checkBinaryExpr(ex, scope)
	case *ast.AssignExpr:
		return c.checkAssignExpr(ex, scope)
	case *ast.ArrayLit:
		return c.checkArrayLit(ex, scope)
	case *ast.TupleLit:
		return c.checkTupleLit(ex, scope)
	case *ast.StructLit:
		return c.checkStructLit(ex, scope)
	case *ast.RangeExpr:
		return c.checkRangeExpr(ex, scope)
	case *ast.FieldExpr:
		return c.checkFieldExpr(ex, scope)
	case *ast.IndexExpr:
		return c.checkIndexExpr(ex, scope)
	case *ast.CallExpr:
		return c.checkCallExpr(ex, scope)
	case *ast.IfExpr:
		return c.checkIfExpr(ex, scope)
	case *ast.MatchExpr:
		return c.checkMatchExpr(ex, scope)
	case *ast.CastExpr:
		return c.checkCastExpr(ex, scope)
	default:
		c.errorf(e.Span(), diag.CodeSemanticError, "unsupported expression")
		return nil
	}
}

// checkCastExpr validates "expr as Type" against the four conversions
// codegen knows how to emit; every other
// source/target pair is a type error.
func (c *Checker) checkCastExpr(ex *ast.CastExpr, scope *Scope) typedast.Expr {
	val := c.checkExpr(ex.Value, scope)
	target := c.resolveTypeExpr(ex.Target, nil)
	if val == nil || target == nil {
		return nil
	}
	from := val.Type()
	var kind typedast.CastKind
	switch {
	case from.Kind == value.KindBool && target.Kind == value.KindInt:
		kind = typedast.CastBoolInt
	case from.Kind == value.KindChar && target.Kind == value.KindInt:
		kind = typedast.CastCharInt
	case from.Kind == value.KindInt && target.Kind == value.KindFloat:
		kind = typedast.CastIntFloat
	case from.Kind == value.KindFloat && target.Kind == value.KindInt:
		kind = typedast.CastFloatInt
	default:
		c.errorf(ex.Span(), diag.CodeTypeMismatch, "cannot cast %s as %s", from.DisplayStr(), target.DisplayStr())
		return typedast.NewCastExpr(val, typedast.CastBoolInt, target, ex.Span())
	}
	return typedast.NewCastExpr(val, kind, target, ex.Span())
}

func (c *Checker) checkIdent(id *ast.Ident, scope *Scope) typedast.Expr {
	if sym := scope.Lookup(id.Name); sym != nil {
		return typedast.NewLocal(id.Name, sym.Slot, sym.Type, id.Span())
	}
	if e, ok := c.globalConsts[id.Name]; ok {
		return e
	}
	if fn, ok := c.funcsByName[id.Name]; ok {
		return typedast.NewGlobalFunc(id.Name, fn.ID, fn.Type, id.Span())
	}
	c.errorf(id.Span(), diag.CodeNameUnresolved, "unresolved identifier %q", id.Name)
	return typedast.NewLocal(id.Name, -1, value.Unresolved, id.Span())
}

// checkBarePath resolves "Enum::Variant" appearing outside call
// position as a unit-variant construction.
func (c *Checker) checkBarePath(p *ast.Path, scope *Scope) typedast.Expr {
	if len(p.Parts) != 2 {
		c.errorf(p.Span(), diag.CodeSemanticError, "unsupported path expression %q", pathString(p))
		return typedast.NewIntLit(0, p.Span())
	}
	enumName, variantName := p.Parts[0].Name, p.Parts[1].Name
	e, ok := c.enumsByName[enumName]
	if !ok {
		c.errorf(p.Span(), diag.CodeNameUnresolved, "unresolved type %q", enumName)
		return typedast.NewIntLit(0, p.Span())
	}
	v, ok := e.FindVariantByName(variantName)
	if !ok {
		c.errorf(p.Span(), diag.CodeMissingField, "enum %q has no variant %q", enumName, variantName)
		return typedast.NewIntLit(0, p.Span())
	}
	if len(v.Payload) != 0 {
		c.errorf(p.Span(), diag.CodeSemanticError, "variant %q carries a payload; use call syntax", variantName)
	}
	return typedast.NewEnumLit(variantName, v.Tag, nil, nil, value.NewEnum(e), p.Span())
}

func pathString(p *ast.Path) string {
	s := ""
	for i, part := range p.Parts {
		if i > 0 {
			s += "::"
		}
		s += part.Name
	}
	return s
}

// checkUnaryExpr types the unary operators: "-" on int/float,
// "!" on bool, "&"/"&mut" producing (im)mutable pointers, "*"
// dereferencing a pointer.
func (c *Checker) checkUnaryExpr(e *ast.UnaryExpr, scope *Scope) typedast.Expr {
	operand := c.checkExpr(e.Operand, scope)
	if operand == nil {
		return nil
	}
	ot := operand.Type()
	var result *value.Type
	switch e.Op {
	case lexer.MINUS:
		if ot.Kind != value.KindInt && ot.Kind != value.KindFloat {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "unary '-' requires int or float, found %s", ot.DisplayStr())
		}
		// Fold negated literals so constant negative subscripts stay
		// recognizable to the code generator's static-address and
		// slice-tail recipes.
		if lit, ok := operand.(*typedast.IntLit); ok {
			return typedast.NewIntLit(-lit.Value, e.Span())
		}
		if lit, ok := operand.(*typedast.FloatLit); ok {
			return typedast.NewFloatLit(-lit.Value, e.Span())
		}
		result = ot
	case lexer.BANG:
		if ot.Kind != value.KindBool {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "unary '!' requires bool, found %s", ot.DisplayStr())
		}
		result = value.Bool
	case lexer.AMPERSAND:
		if !isTypedPlace(operand) {
			c.errorf(e.Span(), diag.CodeSemanticError, "'&' requires an addressable place")
		}
		result = value.NewPointer(ot, false)
	case lexer.REF_MUT:
		if !isAssignablePlace(e.Operand, scope) {
			c.errorf(e.Span(), diag.CodeMutabilityViolation, "'&mut' requires a mutable place")
		}
		result = value.NewPointer(ot, true)
	case lexer.STAR:
		if ot.Kind != value.KindPointer {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "unary '*' requires a pointer, found %s", ot.DisplayStr())
			result = value.Unresolved
		} else {
			result = ot.Elem
		}
	default:
		result = value.Unresolved
	}
	return typedast.NewUnaryExpr(e.Op, operand, result, e.Span())
}

// checkBinaryExpr types binary arithmetic, comparison, and logical
// operators.
func (c *Checker) checkBinaryExpr(e *ast.BinaryExpr, scope *Scope) typedast.Expr {
	left := c.checkExpr(e.Left, scope)
	right := c.checkExpr(e.Right, scope)
	if left == nil || right == nil {
		return nil
	}
	lt, rt := left.Type(), right.Type()

	switch e.Op {
	case lexer.AND, lexer.OR:
		if lt.Kind != value.KindBool || rt.Kind != value.KindBool {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "logical operator requires bool operands")
		}
		return typedast.NewBinaryExpr(e.Op, left, right, value.Bool, e.Span())
	case lexer.EQ, lexer.NOT_EQ:
		if !lt.EqIgnoringMutability(rt) {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "'==' / '!=' require operands of the same type, found %s and %s", lt.DisplayStr(), rt.DisplayStr())
		}
		return typedast.NewBinaryExpr(e.Op, left, right, value.Bool, e.Span())
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		if !isNumeric(lt) || !lt.EqIgnoringMutability(rt) {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "ordered comparison requires matching int or float operands")
		}
		return typedast.NewBinaryExpr(e.Op, left, right, value.Bool, e.Span())
	case lexer.PERCENT:
		if lt.Kind != value.KindInt || rt.Kind != value.KindInt {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "'%%' requires int operands")
		}
		return typedast.NewBinaryExpr(e.Op, left, right, value.Int, e.Span())
	case lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH:
		if e.Op == lexer.PLUS && lt.Kind == value.KindStr && rt.Kind == value.KindStr {
			return typedast.NewBinaryExpr(e.Op, left, right, value.Str, e.Span())
		}
		if !isNumeric(lt) || !lt.EqIgnoringMutability(rt) {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "arithmetic requires matching int or float operands, found %s and %s", lt.DisplayStr(), rt.DisplayStr())
			return typedast.NewBinaryExpr(e.Op, left, right, lt, e.Span())
		}
		return typedast.NewBinaryExpr(e.Op, left, right, lt, e.Span())
	default:
		c.errorf(e.Span(), diag.CodeSemanticError, "unsupported binary operator %q", e.Op)
		return typedast.NewBinaryExpr(e.Op, left, right, value.Unresolved, e.Span())
	}
}

func isNumeric(t *value.Type) bool { return t.Kind == value.KindInt || t.Kind == value.KindFloat }

// checkAssignExpr types assignment: the LHS must be
// an assignable place; compound operators lower to "lhs = lhs OP rhs"
// over the same place machinery.
func (c *Checker) checkAssignExpr(e *ast.AssignExpr, scope *Scope) typedast.Expr {
	target := c.checkExpr(e.Target, scope)
	rhs := c.checkExpr(e.Value, scope)
	if target == nil || rhs == nil {
		return nil
	}
	if !isAssignablePlace(e.Target, scope) {
		c.errorf(e.Span(), diag.CodeMutabilityViolation, "left-hand side of assignment is not a mutable place")
	}

	value_ := rhs
	if e.Op != lexer.ASSIGN {
		op := compoundOpToBinary(e.Op)
		value_ = typedast.NewBinaryExpr(op, target, rhs, target.Type(), e.Span())
	}
	if !target.Type().AssignableFrom(value_.Type()) && !target.Type().EqIgnoringMutability(value_.Type()) {
		c.errorf(e.Span(), diag.CodeNotAssignable, "cannot assign %s to place of type %s", value_.Type().DisplayStr(), target.Type().DisplayStr())
	}
	// An assignment is a statement-shaped expression: it leaves nothing
	// on the stack, so its type is void rather than the target's.
	return typedast.NewAssignExpr(target, value_, value.Void, e.Span())
}

func compoundOpToBinary(op lexer.TokenType) lexer.TokenType {
	switch op {
	case lexer.PLUS_EQ:
		return lexer.PLUS
	case lexer.MINUS_EQ:
		return lexer.MINUS
	case lexer.STAR_EQ:
		return lexer.STAR
	case lexer.SLASH_EQ:
		return lexer.SLASH
	case lexer.PERCENT_EQ:
		return lexer.PERCENT
	default:
		return op
	}
}

// isTypedPlace reports whether the checked expression denotes a memory
// location at all, regardless of mutability: the requirement for '&'
// (and for receiving a method call, whose lowering takes the
// receiver's address). Operating on the typed node means identifiers
// the checker substituted away (global consts) are correctly excluded.
func isTypedPlace(e typedast.Expr) bool {
	switch ex := e.(type) {
	case *typedast.Local, *typedast.FieldExpr, *typedast.IndexExpr:
		return true
	case *typedast.UnaryExpr:
		return ex.Op == lexer.STAR
	default:
		return false
	}
}

// isAssignablePlace reports whether e is an assignable place: an
// identifier bound mut, a subscript into a mut container, a field
// access through a mut chain, or a dereference of a *mut T.
func isAssignablePlace(e ast.Expr, scope *Scope) bool {
	switch ex := e.(type) {
	case *ast.Ident:
		sym := scope.Lookup(ex.Name)
		return sym != nil && sym.IsMut
	case *ast.IndexExpr:
		return isAssignablePlace(ex.Target, scope)
	case *ast.FieldExpr:
		return isAssignablePlace(ex.Target, scope)
	case *ast.UnaryExpr:
		return ex.Op == lexer.STAR
	default:
		return false
	}
}

func (c *Checker) checkArrayLit(e *ast.ArrayLit, scope *Scope) typedast.Expr {
	elems := make([]typedast.Expr, len(e.Elements))
	var elemType *value.Type
	for i, el := range e.Elements {
		te := c.checkExpr(el, scope)
		elems[i] = te
		if te == nil {
			continue
		}
		if i == 0 {
			elemType = te.Type()
		} else if !elemType.EqIgnoringMutability(te.Type()) {
			c.errorf(el.Span(), diag.CodeTypeMismatch, "array element type %s does not match first element's type %s", te.Type().DisplayStr(), elemType.DisplayStr())
		}
	}
	if elemType == nil {
		if e.ElemType != nil {
			elemType = c.resolveTypeExpr(e.ElemType, nil)
		} else {
			c.errorf(e.Span(), diag.CodeSemanticError, "empty array literal needs an element type")
			elemType = value.Unresolved
		}
	}
	if e.Count != nil {
		n := c.constEvalArrayLen(e.Count)
		if n != int64(len(elems)) {
			c.errorf(e.Span(), diag.CodeSemanticError, "declared array count %d does not match %d elements", n, len(elems))
		}
	}
	return typedast.NewArrayLit(elems, value.NewArray(elemType, int64(len(elems))), e.Span())
}

func (c *Checker) checkTupleLit(e *ast.TupleLit, scope *Scope) typedast.Expr {
	elems := make([]typedast.Expr, len(e.Elements))
	types := make([]*value.Type, len(e.Elements))
	for i, el := range e.Elements {
		te := c.checkExpr(el, scope)
		elems[i] = te
		if te != nil {
			types[i] = te.Type()
		} else {
			types[i] = value.Unresolved
		}
	}
	offsets := value.OffsetsOfTuple(types)
	return typedast.NewTupleLit(elems, offsets, value.NewTuple(types), e.Span())
}

// checkStructLit types a struct literal: every named
// field must exist on the struct; every field present must be
// assignable to its declared type; required fields must be bound
// exactly once.
func (c *Checker) checkStructLit(e *ast.StructLit, scope *Scope) typedast.Expr {
	ident, ok := e.Name.(*ast.Ident)
	if !ok {
		c.errorf(e.Span(), diag.CodeSemanticError, "qualified struct literal names are unsupported")
		return nil
	}
	s, ok := c.structsByName[ident.Name]
	if !ok {
		c.errorf(e.Span(), diag.CodeNameUnresolved, "unresolved struct type %q", ident.Name)
		return nil
	}
	if c.genericStructs[ident.Name] {
		c.errorf(e.Span(), diag.CodeSemanticError, "generic struct %q must be instantiated", ident.Name)
	}

	seen := make(map[string]bool)
	var fields []typedast.StructLitField
	for _, f := range e.Fields {
		sf := s.FindField(f.Name.Name)
		if sf == nil {
			c.errorf(f.Name.Span(), diag.CodeMissingField, "struct %q has no field %q", s.Name, f.Name.Name)
			continue
		}
		if seen[f.Name.Name] {
			c.errorf(f.Name.Span(), diag.CodeDuplicateField, "field %q bound more than once", f.Name.Name)
		}
		seen[f.Name.Name] = true
		val := c.checkExpr(f.Value, scope)
		if val != nil && !sf.Type.EqIgnoringMutability(val.Type()) {
			c.errorf(f.Value.Span(), diag.CodeTypeMismatch, "field %q expects %s, found %s", f.Name.Name, sf.Type.DisplayStr(), val.Type().DisplayStr())
		}
		fields = append(fields, typedast.StructLitField{Offset: sf.Offset, Value: val})
	}
	for _, sf := range s.Fields {
		if !seen[sf.Name] {
			c.errorf(e.Span(), diag.CodeMissingField, "struct %q literal is missing field %q", s.Name, sf.Name)
		}
	}
	return typedast.NewStructLit(fields, value.NewStruct(s), e.Span())
}

func (c *Checker) checkRangeExpr(e *ast.RangeExpr, scope *Scope) typedast.Expr {
	start := c.checkExpr(e.Start, scope)
	end := c.checkExpr(e.End, scope)
	if start == nil || end == nil {
		return nil
	}
	if start.Type().Kind != value.KindInt || end.Type().Kind != value.KindInt {
		c.errorf(e.Span(), diag.CodeTypeMismatch, "range bounds must be int")
	}
	return typedast.NewRangeExpr(start, end, e.Inclusive, value.NewRange(value.Int, e.Inclusive), e.Span())
}

// checkFieldExpr types field access: named field
// access auto-dereferences a single pointer layer; tuple field access
// requires an in-bounds literal index.
func (c *Checker) checkFieldExpr(e *ast.FieldExpr, scope *Scope) typedast.Expr {
	target := c.checkExpr(e.Target, scope)
	if target == nil {
		return nil
	}
	t := target.Type()
	if t.Kind == value.KindPointer {
		target = typedast.NewUnaryExpr(lexer.STAR, target, t.Elem, e.Span())
		t = t.Elem
	}

	if e.IsTupleIndex {
		if t.Kind != value.KindTuple {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "tuple field access on non-tuple type %s", t.DisplayStr())
			return typedast.NewFieldExpr(target, 0, "", value.Unresolved, e.Span())
		}
		if e.Index < 0 || e.Index >= len(t.Tuple) {
			c.errorf(e.Span(), diag.CodeTupleIndexOutOfRange, "tuple index %d out of range for %d-element tuple", e.Index, len(t.Tuple))
			return typedast.NewFieldExpr(target, 0, "", value.Unresolved, e.Span())
		}
		offsets := value.OffsetsOfTuple(t.Tuple)
		return typedast.NewFieldExpr(target, offsets[e.Index], strconv.Itoa(e.Index), t.Tuple[e.Index], e.Span())
	}

	if t.Kind != value.KindStruct {
		c.errorf(e.Span(), diag.CodeTypeMismatch, "field access on non-struct type %s", t.DisplayStr())
		return typedast.NewFieldExpr(target, 0, e.Field.Name, value.Unresolved, e.Span())
	}
	s, _ := t.Def.(*registry.Struct)
	sf := s.FindField(e.Field.Name)
	if sf == nil {
		c.errorf(e.Field.Span(), diag.CodeMissingField, "struct %q has no field %q", s.Name, e.Field.Name)
		return typedast.NewFieldExpr(target, 0, e.Field.Name, value.Unresolved, e.Span())
	}
	return typedast.NewFieldExpr(target, sf.Offset, e.Field.Name, sf.Type, e.Span())
}

// checkIndexExpr types subscripts: array/slice LHS, int or range
// RHS; a range subscript yields a slice of the element type (its
// lowering is rejected later by codegen, which has no recipe for it
// yet).
func (c *Checker) checkIndexExpr(e *ast.IndexExpr, scope *Scope) typedast.Expr {
	target := c.checkExpr(e.Target, scope)
	idx := c.checkExpr(e.Index, scope)
	if target == nil || idx == nil {
		return nil
	}
	t := target.Type()
	if t.Kind != value.KindArray && t.Kind != value.KindSlice {
		c.errorf(e.Span(), diag.CodeTypeMismatch, "subscript target must be an array or slice, found %s", t.DisplayStr())
		return typedast.NewIndexExpr(target, idx, value.Unresolved, e.Span())
	}
	elem := t.ChildType()
	switch idx.Type().Kind {
	case value.KindInt:
		return typedast.NewIndexExpr(target, idx, elem, e.Span())
	case value.KindRange:
		return typedast.NewIndexExpr(target, idx, value.NewSlice(elem), e.Span())
	default:
		c.errorf(e.Index.Span(), diag.CodeTypeMismatch, "subscript index must be int or a range")
		return typedast.NewIndexExpr(target, idx, elem, e.Span())
	}
}

// checkCallExpr types calls: the callee shape decides
// what kind of call this is. A bare identifier or single-part path is
// a plain function call. A two-part path whose first part names an
// enum is payload-variant construction (Shape::Circle(r)); a two-part
// path whose first part names a struct is a static method call
// (Counter::new()). A field-expr callee with a named field is an
// instance method call, lowered here into a plain call with the
// receiver's address injected as a synthetic first argument, since
// Fox's codegen and VM know only function calls, not method dispatch.
func (c *Checker) checkCallExpr(e *ast.CallExpr, scope *Scope) typedast.Expr {
	switch callee := e.Callee.(type) {
	case *ast.Path:
		if len(callee.Parts) == 2 {
			first, second := callee.Parts[0].Name, callee.Parts[1].Name
			if en, ok := c.enumsByName[first]; ok {
				return c.checkEnumVariantCall(e, en, second, scope)
			}
			if s, ok := c.structsByName[first]; ok {
				return c.checkStaticMethodCall(e, s, second, scope)
			}
		}
		c.errorf(e.Span(), diag.CodeNameUnresolved, "unresolved path %q in call position", pathString(callee))
		return nil

	case *ast.FieldExpr:
		if !callee.IsTupleIndex && callee.Field != nil {
			recv := c.checkExpr(callee.Target, scope)
			if recv == nil {
				return nil
			}
			if be, ok := c.checkStrMethodCall(e, callee, recv, scope); ok {
				return be
			}
			return c.checkMethodCall(e, callee, recv, scope)
		}
		c.errorf(e.Span(), diag.CodeSemanticError, "cannot call a tuple field")
		return nil

	case *ast.Ident:
		if be, ok := c.checkBuiltinCall(e, callee.Name, scope); ok {
			return be
		}
		fn, ok := c.funcsByName[callee.Name]
		if !ok {
			c.errorf(callee.Span(), diag.CodeNameUnresolved, "unresolved function %q", callee.Name)
			return nil
		}
		if c.genericFuncs[callee.Name] {
			c.errorf(e.Span(), diag.CodeSemanticError, "generic function %q must be instantiated", callee.Name)
		}
		args := c.checkCallArgs(e, fn.Type, scope)
		return typedast.NewCallExpr(typedast.NewGlobalFunc(callee.Name, fn.ID, fn.Type, callee.Span()), args, fn.Type.Return, e.Span())

	default:
		callee2 := c.checkExpr(e.Callee, scope)
		if callee2 == nil || callee2.Type().Kind != value.KindFunction {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "called value is not a function")
			return nil
		}
		args := c.checkCallArgs(e, callee2.Type(), scope)
		return typedast.NewCallExpr(callee2, args, callee2.Type().Return, e.Span())
	}
}

func (c *Checker) checkEnumVariantCall(e *ast.CallExpr, en *registry.Enum, variantName string, scope *Scope) typedast.Expr {
	v, ok := en.FindVariantByName(variantName)
	if !ok {
		c.errorf(e.Span(), diag.CodeMissingField, "enum %q has no variant %q", en.Name, variantName)
		return nil
	}
	if len(e.Args) != len(v.Payload) {
		c.errorf(e.Span(), diag.CodePatternArity, "variant %q expects %d payload values, found %d", variantName, len(v.Payload), len(e.Args))
	}
	n := len(e.Args)
	if len(v.Payload) < n {
		n = len(v.Payload)
	}
	payload := make([]typedast.Expr, n)
	offsets := make([]int64, n)
	for i := 0; i < n; i++ {
		arg := c.checkExpr(e.Args[i], scope)
		payload[i] = arg
		offsets[i] = v.Payload[i].Offset
		if arg != nil && !v.Payload[i].Type.EqIgnoringMutability(arg.Type()) {
			c.errorf(e.Args[i].Span(), diag.CodeTypeMismatch, "payload field %d of %q expects %s, found %s", i, variantName, v.Payload[i].Type.DisplayStr(), arg.Type().DisplayStr())
		}
	}
	return typedast.NewEnumLit(variantName, v.Tag, payload, offsets, value.NewEnum(en), e.Span())
}

func (c *Checker) checkStaticMethodCall(e *ast.CallExpr, s *registry.Struct, methodName string, scope *Scope) typedast.Expr {
	m, ok := s.Methods[methodName]
	if !ok {
		c.errorf(e.Span(), diag.CodeMissingField, "struct %q has no method %q", s.Name, methodName)
		return nil
	}
	if !m.IsStatic {
		c.errorf(e.Span(), diag.CodeSemanticError, "%q is an instance method; call it through a value of type %s", methodName, s.Name)
	}
	key := s.Name + "." + methodName
	fn := c.methodFuncs[key]
	if fn == nil {
		c.errorf(e.Span(), diag.CodeMissingField, "unresolved method %q", key)
		return nil
	}
	if c.genericStructs[s.Name] {
		c.errorf(e.Span(), diag.CodeSemanticError, "generic struct %q must be instantiated before calling %q", s.Name, methodName)
	}
	args := c.checkCallArgs(e, fn.Type, scope)
	return typedast.NewCallExpr(typedast.NewGlobalFunc(key, fn.ID, fn.Type, e.Callee.Span()), args, fn.Type.Return, e.Span())
}

// checkMethodCall lowers "obj.method(args)" into a plain call with
// &obj injected as the synthetic receiver argument.
func (c *Checker) checkMethodCall(e *ast.CallExpr, callee *ast.FieldExpr, recv typedast.Expr, scope *Scope) typedast.Expr {
	rt := recv.Type()
	derefed := false
	for rt.Kind == value.KindPointer {
		recv = typedast.NewUnaryExpr(lexer.STAR, recv, rt.Elem, callee.Span())
		rt = rt.Elem
		derefed = true
	}
	if !derefed && !isTypedPlace(recv) {
		c.errorf(callee.Span(), diag.CodeSemanticError, "cannot call a method on a temporary value; bind it to a variable first")
		return nil
	}
	if rt.Kind != value.KindStruct {
		c.errorf(callee.Span(), diag.CodeTypeMismatch, "method call on non-struct type %s", rt.DisplayStr())
		return nil
	}
	s, _ := rt.Def.(*registry.Struct)
	m, ok := s.Methods[callee.Field.Name]
	if !ok {
		c.errorf(callee.Field.Span(), diag.CodeMissingField, "struct %q has no method %q", s.Name, callee.Field.Name)
		return nil
	}
	if m.IsStatic {
		c.errorf(e.Span(), diag.CodeSemanticError, "%q is a static method; call it as %s::%s(...)", callee.Field.Name, s.Name, callee.Field.Name)
	}
	if c.genericStructs[s.Name] {
		c.errorf(e.Span(), diag.CodeSemanticError, "generic struct %q must be instantiated before calling %q", s.Name, callee.Field.Name)
	}
	key := s.Name + "." + callee.Field.Name
	fn := c.methodFuncs[key]
	if fn == nil {
		c.errorf(e.Span(), diag.CodeMissingField, "unresolved method %q", key)
		return nil
	}

	recvArg := typedast.NewUnaryExpr(lexer.AMPERSAND, recv, value.NewPointer(rt, rt.IsMut), callee.Span())
	args := make([]typedast.Expr, 0, len(e.Args)+1)
	args = append(args, recvArg)
	params := fn.Type.Params
	if len(params) > 0 {
		params = params[1:]
	}
	args = append(args, c.checkArgsAgainst(e.Args, params, fn.Type.Varargs, scope)...)

	return typedast.NewCallExpr(typedast.NewGlobalFunc(key, fn.ID, fn.Type, callee.Field.Span()), args, fn.Type.Return, e.Span())
}

// checkCallArgs type-checks a plain call's arguments against fnType's
// declared parameters, permitting (and counting) extra trailing
// arguments when fnType.Varargs is set.
func (c *Checker) checkCallArgs(e *ast.CallExpr, fnType *value.Type, scope *Scope) []typedast.Expr {
	return c.checkArgsAgainst(e.Args, fnType.Params, fnType.Varargs, scope)
}

func (c *Checker) checkArgsAgainst(argExprs []ast.Expr, params []*value.Type, varargs bool, scope *Scope) []typedast.Expr {
	args := make([]typedast.Expr, len(argExprs))
	for i, ae := range argExprs {
		arg := c.checkExpr(ae, scope)
		args[i] = arg
		if arg == nil {
			continue
		}
		if i < len(params) {
			if !params[i].EqIgnoringMutability(arg.Type()) {
				c.errorf(ae.Span(), diag.CodeTypeMismatch, "argument %d expects %s, found %s", i, params[i].DisplayStr(), arg.Type().DisplayStr())
			}
		} else if !varargs {
			c.errorf(ae.Span(), diag.CodeSemanticError, "too many arguments: function takes %d", len(params))
		}
	}
	if len(argExprs) < len(params) {
		c.errorf(argsSpan(argExprs), diag.CodeSemanticError, "too few arguments: expected %d, found %d", len(params), len(argExprs))
	}
	return args
}

func argsSpan(args []ast.Expr) lexer.Span {
	if len(args) == 0 {
		return lexer.Span{}
	}
	return args[0].Span()
}
