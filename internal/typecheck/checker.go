// Package typecheck walks the untyped AST and produces the typed AST
//: a single Checker instance owns the global scope, the
// definitions registry being populated, and the accumulated
// diagnostics for one compilation.
package typecheck

import (
	"github.com/google/uuid"

	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// fnCtx tracks the state local to the function body currently being checked.
type fnCtx struct {
	returnType   *value.Type
	nextSlot     int
	varargs      bool
	argCountSlot int
	loopDepth    int
}

// Checker is the Fox type checker, deliberately thin: a scope chain,
// the registry it populates, and an error sink. Fox's generics are
// parsed but never instantiated, so there is no trait-impl
// environment or kind inference to track here.
type Checker struct {
	reg      *registry.Registry
	moduleID uuid.UUID

	global *Scope

	structsByName map[string]*registry.Struct
	enumsByName   map[string]*registry.Enum
	funcsByName   map[string]*registry.Function
	methodFuncs   map[string]*registry.Function // "Struct.Method" -> Function

	genericStructs map[string]bool
	genericFuncs   map[string]bool

	// globalConsts maps each top-level const binding's name to its
	// checked initializer, substituted at every use site (the codegen
	// const path then interns the evaluated bytes in the constant pool).
	globalConsts map[string]typedast.Expr

	curFn *fnCtx

	errors []diag.Diagnostic
}

// NewChecker creates a Checker that populates reg as it walks decls
// belonging to modulePath.
func NewChecker(reg *registry.Registry, modulePath string) *Checker {
	c := &Checker{
		reg:            reg,
		global:         NewScope(nil),
		structsByName:  make(map[string]*registry.Struct),
		enumsByName:    make(map[string]*registry.Enum),
		funcsByName:    make(map[string]*registry.Function),
		methodFuncs:    make(map[string]*registry.Function),
		genericStructs: make(map[string]bool),
		genericFuncs:   make(map[string]bool),
		globalConsts:   make(map[string]typedast.Expr),
	}
	mod := &registry.Module{
		ID:      reg.NextID(),
		Path:    modulePath,
		Structs: make(map[uuid.UUID]bool),
		Enums:   make(map[uuid.UUID]bool),
		Funcs:   make(map[uuid.UUID]bool),
	}
	reg.AddModule(mod)
	c.moduleID = mod.ID
	return c
}

// Errors returns every diagnostic accumulated so far.
func (c *Checker) Errors() []diag.Diagnostic { return c.errors }

func (c *Checker) errorf(span lexer.Span, code diag.Code, format string, args ...interface{}) {
	c.errors = append(c.errors, diag.Diagnostic{
		Stage:    diag.StageTypecheck,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  sprintf(format, args...),
		Span:     toDiagSpan(span),
	})
}

func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{Filename: s.Filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
}

func (c *Checker) allocSlot() int {
	slot := c.curFn.nextSlot
	c.curFn.nextSlot++
	return slot
}

// CheckFile walks file in two passes: pass one registers every
// struct/enum/function signature (so mutual recursion and forward
// references resolve), pass two type-checks every function body.
func (c *Checker) CheckFile(file *ast.File) *typedast.Program {
	c.registerTypeNames(file)
	c.resolveAggregateBodies(file)
	c.registerFunctionSignatures(file)
	for _, d := range file.Decls {
		if ls, ok := d.(*ast.LetStmt); ok {
			c.checkGlobalConst(ls)
		}
	}

	prog := &typedast.Program{}
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			fn := c.funcsByName[decl.Name.Name]
			if fn == nil {
				continue
			}
			if c.genericFuncs[decl.Name.Name] {
				continue
			}
			prog.Functions = append(prog.Functions, c.checkFunctionBody(decl, fn, nil))
		case *ast.ImplDecl:
			targetName := typeExprName(decl.Target)
			if c.genericStructs[targetName] {
				continue
			}
			for _, m := range decl.Methods {
				key := targetName + "." + m.Name.Name
				fn := c.methodFuncs[key]
				if fn == nil {
					continue
				}
				prog.Functions = append(prog.Functions, c.checkFunctionBody(m, fn, &targetName))
			}
		}
	}
	return prog
}

// checkGlobalConst checks one top-level const declaration. The binding
// itself occupies no storage: every use site inlines the checked
// initializer, which the codegen const path pre-evaluates into the
// constant pool.
func (c *Checker) checkGlobalConst(st *ast.LetStmt) {
	c.curFn = &fnCtx{returnType: value.Void, argCountSlot: -1}
	if !st.Const {
		c.errorf(st.Span(), diag.CodeSemanticError, "top-level bindings must be const")
		return
	}
	ip, ok := st.Pattern.(*ast.IdentPattern)
	if !ok {
		c.errorf(st.Pattern.Span(), diag.CodeParserBadPattern, "top-level const pattern must be a single identifier")
		return
	}
	if ip.Mut {
		c.errorf(st.Span(), diag.CodeMutabilityViolation, "const binding cannot be declared mut")
	}
	if st.Value == nil {
		c.errorf(st.Span(), diag.CodeSemanticError, "const binding requires an initializer")
		return
	}
	val := c.checkExpr(st.Value, NewScope(c.global))
	if val == nil {
		return
	}
	if st.Type != nil {
		declType := c.resolveTypeExpr(st.Type, nil)
		if !declType.EqIgnoringMutability(val.Type()) {
			c.errorf(st.Span(), diag.CodeTypeMismatch, "declared type %s does not match initializer type %s", declType.DisplayStr(), val.Type().DisplayStr())
		}
	}
	if !isConstEvaluable(val.Type()) {
		c.errorf(st.Span(), diag.CodeSemanticError, "const of type %s is not constant-evaluable", val.Type().DisplayStr())
	}
	c.globalConsts[ip.Name.Name] = val
}

// typeExprName extracts the bare name from a NamedType/PointerType,
// used to resolve an `impl` block's target struct.
func typeExprName(t ast.TypeExpr) string {
	switch n := t.(type) {
	case *ast.NamedType:
		return n.Name.Name
	case *ast.PointerType:
		return typeExprName(n.Elem)
	default:
		return ""
	}
}
