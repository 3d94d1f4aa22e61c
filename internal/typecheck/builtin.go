package typecheck

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/intrinsics"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// builtinNames is the set of free-function intrinsic names recognized
// in call position ahead of user-defined functions.
var builtinNames = map[string]bool{
	"print": true, "puts": true, "alloc": true, "panic": true, "free": true,
}

// checkBuiltinCall resolves a call to one of Fox's compiler
// intrinsics. It returns ok=false when name does not
// name a builtin, so the caller falls through to ordinary function
// lookup.
func (c *Checker) checkBuiltinCall(e *ast.CallExpr, name string, scope *Scope) (typedast.Expr, bool) {
	if !builtinNames[name] {
		return nil, false
	}
	switch name {
	case "print", "puts":
		return c.checkPrintCall(e, name, scope), true
	case "alloc":
		return c.checkAllocCall(e, scope), true
	case "panic":
		return c.checkPanicCall(e, scope), true
	case "free":
		return c.checkFreeCall(e, scope), true
	default:
		return nil, false
	}
}

func (c *Checker) checkPrintCall(e *ast.CallExpr, name string, scope *Scope) typedast.Expr {
	if len(e.Args) != 1 {
		c.errorf(e.Span(), diag.CodeSemanticError, "%q takes exactly one argument", name)
		return typedast.NewBuiltinCallExpr(name, nil, value.Void, e.Span())
	}
	arg := c.checkExpr(e.Args[0], scope)
	if arg == nil {
		return typedast.NewBuiltinCallExpr(name, nil, value.Void, e.Span())
	}
	t := arg.Type()
	if _, ok := intrinsics.PrimitiveName(t); !ok && t.Kind != value.KindStruct && t.Kind != value.KindEnum {
		c.errorf(e.Args[0].Span(), diag.CodeTypeMismatch, "%q does not support values of type %s", name, t.DisplayStr())
	}
	return typedast.NewBuiltinCallExpr(name, []typedast.Expr{arg}, value.Void, e.Span())
}

func (c *Checker) checkAllocCall(e *ast.CallExpr, scope *Scope) typedast.Expr {
	if len(e.Args) != 1 {
		c.errorf(e.Span(), diag.CodeSemanticError, "%q takes exactly one argument", "alloc")
		return typedast.NewBuiltinCallExpr("alloc", nil, value.NewPointer(value.Void, true), e.Span())
	}
	arg := c.checkExpr(e.Args[0], scope)
	if arg != nil && arg.Type().Kind != value.KindInt {
		c.errorf(e.Args[0].Span(), diag.CodeTypeMismatch, "%q expects an int byte count, found %s", "alloc", arg.Type().DisplayStr())
	}
	var args []typedast.Expr
	if arg != nil {
		args = []typedast.Expr{arg}
	}
	return typedast.NewBuiltinCallExpr("alloc", args, value.NewPointer(value.Void, true), e.Span())
}

func (c *Checker) checkPanicCall(e *ast.CallExpr, scope *Scope) typedast.Expr {
	if len(e.Args) != 1 {
		c.errorf(e.Span(), diag.CodeSemanticError, "%q takes exactly one argument", "panic")
		return typedast.NewBuiltinCallExpr("panic", nil, value.Void, e.Span())
	}
	arg := c.checkExpr(e.Args[0], scope)
	if arg != nil && arg.Type().Kind != value.KindStr {
		c.errorf(e.Args[0].Span(), diag.CodeTypeMismatch, "%q expects a str message, found %s", "panic", arg.Type().DisplayStr())
	}
	var args []typedast.Expr
	if arg != nil {
		args = []typedast.Expr{arg}
	}
	return typedast.NewBuiltinCallExpr("panic", args, value.Void, e.Span())
}

// checkFreeCall dispatches to free_ptr/free_slice/free_str based on
// the argument's static type, matching the three-way "<free-ptr/slice/str>"
// intrinsic family.
func (c *Checker) checkFreeCall(e *ast.CallExpr, scope *Scope) typedast.Expr {
	if len(e.Args) != 1 {
		c.errorf(e.Span(), diag.CodeSemanticError, "%q takes exactly one argument", "free")
		return typedast.NewBuiltinCallExpr("free_ptr", nil, value.Void, e.Span())
	}
	arg := c.checkExpr(e.Args[0], scope)
	if arg == nil {
		return typedast.NewBuiltinCallExpr("free_ptr", nil, value.Void, e.Span())
	}
	var sub string
	switch arg.Type().Kind {
	case value.KindPointer:
		sub = "free_ptr"
	case value.KindSlice:
		sub = "free_slice"
	case value.KindStr:
		sub = "free_str"
	default:
		c.errorf(e.Args[0].Span(), diag.CodeTypeMismatch, "%q cannot free a value of type %s", "free", arg.Type().DisplayStr())
		sub = "free_ptr"
	}
	return typedast.NewBuiltinCallExpr(sub, []typedast.Expr{arg}, value.Void, e.Span())
}

// checkStrMethodCall recognizes "str" concrete methods len()/is_empty()
//, the only methods callable
// on a non-struct receiver.
func (c *Checker) checkStrMethodCall(e *ast.CallExpr, callee *ast.FieldExpr, recv typedast.Expr, scope *Scope) (typedast.Expr, bool) {
	if recv.Type().Kind != value.KindStr {
		return nil, false
	}
	switch callee.Field.Name {
	case "len":
		if len(e.Args) != 0 {
			c.errorf(e.Span(), diag.CodeSemanticError, "str.len() takes no arguments")
		}
		return typedast.NewBuiltinCallExpr("str_len", []typedast.Expr{recv}, value.Int, e.Span()), true
	case "is_empty":
		if len(e.Args) != 0 {
			c.errorf(e.Span(), diag.CodeSemanticError, "str.is_empty() takes no arguments")
		}
		return typedast.NewBuiltinCallExpr("str_is_empty", []typedast.Expr{recv}, value.Bool, e.Span()), true
	default:
		c.errorf(callee.Field.Span(), diag.CodeMissingField, "str has no method %q", callee.Field.Name)
		return typedast.NewBuiltinCallExpr("str_len", []typedast.Expr{recv}, value.Int, e.Span()), true
	}
}
