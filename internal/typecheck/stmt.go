package typecheck

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// checkBlock checks every statement of b in a fresh child scope,
// returning the block's value type: the type of its final expression
// statement if present, else void.
func (c *Checker) checkBlock(b *ast.Block, parent *Scope) (*typedast.Block, *value.Type) {
	scope := NewScope(parent)
	stmts := make([]typedast.Stmt, 0, len(b.Stmts))
	var last typedast.Stmt
	for _, s := range b.Stmts {
		ts := c.checkStmt(s, scope)
		if ts == nil {
			continue
		}
		stmts = append(stmts, ts)
		last = ts
	}
	bodyType := value.Void
	if es, ok := last.(*typedast.ExprStmt); ok && es.Expr != nil {
		bodyType = es.Expr.Type()
	}
	return typedast.NewBlock(stmts, b.Span()), bodyType
}

func (c *Checker) checkStmt(s ast.Stmt, scope *Scope) typedast.Stmt {
	switch st := s.(type) {
	case *ast.LetStmt:
		return c.checkLetStmt(st, scope)
	case *ast.ExprStmt:
		e := c.checkExpr(st.Expr, scope)
		return typedast.NewExprStmt(e, st.Span())
	case *ast.ReturnStmt:
		return c.checkReturnStmt(st, scope)
	case *ast.BreakStmt:
		if c.curFn.loopDepth == 0 {
			c.errorf(st.Span(), diag.CodeSemanticError, "break outside of a loop")
		}
		return typedast.NewBreakStmt(st.Span())
	case *ast.ContinueStmt:
		if c.curFn.loopDepth == 0 {
			c.errorf(st.Span(), diag.CodeSemanticError, "continue outside of a loop")
		}
		return typedast.NewContinueStmt(st.Span())
	case *ast.DeferStmt:
		call := c.checkExpr(st.Call, scope)
		return typedast.NewDeferStmt(call, st.Span())
	case *ast.WhileStmt:
		return c.checkWhileStmt(st, scope)
	case *ast.ForStmt:
		return c.checkForStmt(st, scope)
	case *ast.BlockStmt:
		blk, _ := c.checkBlock(st.Block, scope)
		return typedast.NewBlockStmt(blk, st.Span())
	case *ast.IfExpr:
		// Wrapped as an expression statement so a trailing if supplies
		// the enclosing block's value like any other tail expression.
		return typedast.NewExprStmt(c.checkIfExpr(st, scope), st.Span())
	case *ast.MatchExpr:
		return typedast.NewExprStmt(c.checkMatchExpr(st, scope), st.Span())
	default:
		c.errorf(s.Span(), diag.CodeSemanticError, "unsupported statement")
		return nil
	}
}

// checkLetStmt type-checks `let`/`const`: an
// initializer or a declared type annotation is mandatory; an
// uninitialized let requires the pattern (or a field of its type) to
// be mut; const requires a non-mut pattern and rejects non-primitive,
// non-aggregate-of-constants types.
func (c *Checker) checkLetStmt(st *ast.LetStmt, scope *Scope) typedast.Stmt {
	var declType *value.Type
	if st.Type != nil {
		declType = c.resolveTypeExpr(st.Type, nil)
	}

	var val typedast.Expr
	if st.Value != nil {
		val = c.checkExpr(st.Value, scope)
	}

	switch {
	case declType == nil && val == nil && st.NoInit:
		c.errorf(st.Span(), diag.CodeSemanticError, "noinit binding needs a declared type")
		declType = value.Unresolved
	case declType == nil && val == nil:
		c.errorf(st.Span(), diag.CodeSemanticError, "let binding needs an initializer or a declared type")
		declType = value.Unresolved
	case declType == nil:
		declType = val.Type()
	case val != nil:
		if !declType.EqIgnoringMutability(val.Type()) {
			c.errorf(st.Span(), diag.CodeTypeMismatch, "declared type %s does not match initializer type %s", declType.DisplayStr(), val.Type().DisplayStr())
		}
	}

	if st.Const {
		if patternRequestsMut(st.Pattern) {
			c.errorf(st.Span(), diag.CodeMutabilityViolation, "const binding cannot be declared mut")
		}
		if val == nil {
			c.errorf(st.Span(), diag.CodeSemanticError, "const binding requires an initializer")
		} else if !isConstEvaluable(declType) {
			c.errorf(st.Span(), diag.CodeSemanticError, "const of type %s is not constant-evaluable", declType.DisplayStr())
		}
	}

	if val == nil && declType.Kind != value.KindUnresolved && !patternOrFieldIsMut(st.Pattern, declType) {
		c.errorf(st.Span(), diag.CodeMutabilityViolation, "uninitialized let requires a mut binding or field")
	}

	pp := c.processPattern(st.Pattern, declType, scope)
	return typedast.NewLetStmt(pp, val, val == nil, st.Const, st.Span())
}

func patternRequestsMut(p ast.Pattern) bool {
	ip, ok := p.(*ast.IdentPattern)
	return ok && ip.Mut
}

func patternOrFieldIsMut(p ast.Pattern, t *value.Type) bool {
	if patternRequestsMut(p) {
		return true
	}
	return t != nil && (t.IsMut || t.IsPartiallyMutable())
}

// isConstEvaluable restricts const bindings to primitives, tuples,
// ranges, and fixed-size arrays of constant-evaluable elements.
func isConstEvaluable(t *value.Type) bool {
	switch t.Kind {
	case value.KindBool, value.KindChar, value.KindInt, value.KindFloat, value.KindStr:
		return true
	case value.KindTuple:
		for _, f := range t.Tuple {
			if !isConstEvaluable(f) {
				return false
			}
		}
		return true
	case value.KindRange:
		return isConstEvaluable(t.Elem)
	case value.KindArray:
		return isConstEvaluable(t.Elem)
	default:
		return false
	}
}

func (c *Checker) checkReturnStmt(st *ast.ReturnStmt, scope *Scope) typedast.Stmt {
	var val typedast.Expr
	if st.Value != nil {
		val = c.checkExpr(st.Value, scope)
	}
	want := c.curFn.returnType
	got := value.Void
	if val != nil {
		got = val.Type()
	}
	if !want.EqIgnoringMutability(got) {
		c.errorf(st.Span(), diag.CodeTypeMismatch, "return type %s does not match function's declared return type %s", got.DisplayStr(), want.DisplayStr())
	}
	return typedast.NewReturnStmt(val, st.Span())
}

func (c *Checker) checkWhileStmt(st *ast.WhileStmt, scope *Scope) typedast.Stmt {
	cond := c.checkExpr(st.Cond, scope)
	if cond != nil && cond.Type().Kind != value.KindBool {
		c.errorf(st.Cond.Span(), diag.CodeTypeMismatch, "while condition must be bool, found %s", cond.Type().DisplayStr())
	}
	c.curFn.loopDepth++
	body, _ := c.checkBlock(st.Body, scope)
	c.curFn.loopDepth--
	return typedast.NewWhileStmt(cond, body, st.Span())
}
