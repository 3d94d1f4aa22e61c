package typecheck

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// checkForStmt checks both for-forms: array/slice
// iteration (target pattern matches the element type) and range
// iteration (target must be a single int-typed identifier).
func (c *Checker) checkForStmt(st *ast.ForStmt, scope *Scope) typedast.Stmt {
	loopScope := NewScope(scope)
	c.curFn.loopDepth++
	defer func() { c.curFn.loopDepth-- }()

	if st.Range != nil {
		rng, ok := c.checkExpr(st.Range, loopScope).(*typedast.RangeExpr)
		if !ok {
			// The bound expressions already produced diagnostics; keep a
			// well-formed placeholder so checking can continue.
			zero := typedast.NewIntLit(0, st.Range.Span())
			rng = typedast.NewRangeExpr(zero, zero, false, value.NewRange(value.Int, false), st.Range.Span())
		}
		ident, ok := st.Pattern.(*ast.IdentPattern)
		if !ok {
			c.errorf(st.Pattern.Span(), diag.CodeSemanticError, "range for-loop binding must be a single identifier")
		} else if rng.Type().ChildType().Kind != value.KindInt {
			c.errorf(st.Pattern.Span(), diag.CodeTypeMismatch, "range for-loop target must be int")
		}
		var pat typedast.ProcessedPattern
		if ident != nil {
			pat = c.processPattern(ident, value.Int, loopScope)
		}
		var counter *int
		if st.Counter != nil {
			slot := c.allocSlot()
			loopScope.Insert(&Symbol{Name: st.Counter.Name, Type: value.Int, Slot: slot})
			counter = &slot
		}
		body, _ := c.checkBlock(st.Body, loopScope)
		return typedast.NewForStmt(pat, counter, nil, rng, body, st.Span())
	}

	iter := c.checkExpr(st.Iterable, loopScope)
	var elemType *value.Type
	switch {
	case iter == nil:
		elemType = value.Unresolved
	case iter.Type().Kind == value.KindArray || iter.Type().Kind == value.KindSlice:
		elemType = iter.Type().ChildType()
	default:
		c.errorf(st.Iterable.Span(), diag.CodeTypeMismatch, "for-loop target must be an array or slice, found %s", iter.Type().DisplayStr())
		elemType = value.Unresolved
	}
	pat := c.processPattern(st.Pattern, elemType, loopScope)
	var counter *int
	if st.Counter != nil {
		slot := c.allocSlot()
		loopScope.Insert(&Symbol{Name: st.Counter.Name, Type: value.Int, Slot: slot})
		counter = &slot
	}
	body, _ := c.checkBlock(st.Body, loopScope)
	return typedast.NewForStmt(pat, counter, iter, nil, body, st.Span())
}

// checkIfExpr checks "if"/"else if"/"else":
// condition must be bool; both arms must agree in type, or the whole
// expression is void when the else is absent.
func (c *Checker) checkIfExpr(e *ast.IfExpr, scope *Scope) *typedast.IfExpr {
	cond := c.checkExpr(e.Cond, scope)
	if cond != nil && cond.Type().Kind != value.KindBool {
		c.errorf(e.Cond.Span(), diag.CodeTypeMismatch, "if condition must be bool, found %s", cond.Type().DisplayStr())
	}
	then, thenType := c.checkBlock(e.Then, scope)

	var elseBlock *typedast.Block
	var elseIf *typedast.IfExpr
	resultType := value.Void

	switch els := e.Else.(type) {
	case nil:
		resultType = value.Void
	case *ast.Block:
		var elseType *value.Type
		elseBlock, elseType = c.checkBlock(els, scope)
		if !thenType.EqIgnoringMutability(elseType) {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "if/else arms have mismatched types: %s vs %s", thenType.DisplayStr(), elseType.DisplayStr())
		}
		resultType = thenType
	case *ast.IfExpr:
		elseIf = c.checkIfExpr(els, scope)
		if !thenType.EqIgnoringMutability(elseIf.Type()) {
			c.errorf(e.Span(), diag.CodeTypeMismatch, "if/else-if arms have mismatched types: %s vs %s", thenType.DisplayStr(), elseIf.Type().DisplayStr())
		}
		resultType = thenType
	}

	return typedast.NewIfExpr(cond, then, elseBlock, elseIf, resultType, e.Span())
}

// checkMatchExpr checks "match": the subject must
// be equatable; all non-default arm patterns must be compatible with
// its type; every arm's body type must agree; at most one wildcard arm.
func (c *Checker) checkMatchExpr(e *ast.MatchExpr, scope *Scope) *typedast.MatchExpr {
	subject := c.checkExpr(e.Subject, scope)
	var subjType *value.Type = value.Unresolved
	if subject != nil {
		subjType = subject.Type()
	}

	var arms []typedast.MatchArm
	var resultType *value.Type
	wildcards := 0
	for i, arm := range e.Arms {
		if _, ok := arm.Pattern.(*ast.WildcardPattern); ok {
			wildcards++
		}
		armScope := NewScope(scope)
		pat := c.processPattern(arm.Pattern, subjType, armScope)
		body, bodyType := c.checkBlock(arm.Body, armScope)
		if i == 0 {
			resultType = bodyType
		} else if !resultType.EqIgnoringMutability(bodyType) {
			c.errorf(arm.Body.Span(), diag.CodeTypeMismatch, "match arm type %s does not match first arm's type %s", bodyType.DisplayStr(), resultType.DisplayStr())
		}
		arms = append(arms, typedast.MatchArm{Pattern: pat, Body: body})
	}
	if wildcards > 1 {
		c.errorf(e.Span(), diag.CodeSemanticError, "match has more than one wildcard arm")
	}
	if resultType == nil {
		resultType = value.Void
	}
	return typedast.NewMatchExpr(subject, arms, resultType, e.Span())
}
