package typecheck

import (
	"strconv"

	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
	"github.com/foxlang/fox/internal/value"
)

// registerTypeNames creates a registry.Struct/Enum skeleton (UUID and
// name only) for every struct/enum decl, so field/variant resolution
// in the next pass can see every type name regardless of declaration
// order.
func (c *Checker) registerTypeNames(file *ast.File) {
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			s := &registry.Struct{
				ID:      c.reg.NextID(),
				Module:  c.moduleID,
				Name:    decl.Name.Name,
				Methods: make(map[string]registry.Method),
			}
			c.reg.AddStruct(s)
			c.structsByName[decl.Name.Name] = s
			if len(decl.TypeParams) > 0 {
				c.genericStructs[decl.Name.Name] = true
			}
		case *ast.EnumDecl:
			e := &registry.Enum{
				ID:        c.reg.NextID(),
				Module:    c.moduleID,
				Name:      decl.Name.Name,
				IsSumtype: true,
				Methods:   make(map[string]registry.Method),
			}
			c.reg.AddEnum(e)
			c.enumsByName[decl.Name.Name] = e
			if len(decl.TypeParams) > 0 {
				c.genericStructs[decl.Name.Name] = true
			}
		}
	}
}

// resolveAggregateBodies fills in the field/variant lists (and thus
// layouts) of every struct/enum registered in pass one, now that every
// type name is resolvable.
func (c *Checker) resolveAggregateBodies(file *ast.File) {
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			s := c.structsByName[decl.Name.Name]
			generics := genericParamSet(decl.TypeParams)
			var fieldTypes []*value.Type
			var names []string
			seen := make(map[string]bool)
			for _, f := range decl.Fields {
				if seen[f.Name.Name] {
					c.errorf(f.Name.Span(), diag.CodeDuplicateField, "duplicate field %q in struct %q", f.Name.Name, decl.Name.Name)
					continue
				}
				seen[f.Name.Name] = true
				names = append(names, f.Name.Name)
				fieldTypes = append(fieldTypes, c.resolveTypeExpr(f.Type, generics))
			}
			offsets := offsetsOf(fieldTypes)
			for i, name := range names {
				s.Fields = append(s.Fields, registry.StructField{Name: name, Offset: offsets[i], Type: fieldTypes[i]})
			}
		case *ast.EnumDecl:
			e := c.enumsByName[decl.Name.Name]
			generics := genericParamSet(decl.TypeParams)
			for tag, v := range decl.Variants {
				var payloadTypes []*value.Type
				for _, pt := range v.Payload {
					payloadTypes = append(payloadTypes, c.resolveTypeExpr(pt, generics))
				}
				offsets := offsetsOf(payloadTypes)
				var fields []registry.EnumPayloadField
				for i, t := range payloadTypes {
					fields = append(fields, registry.EnumPayloadField{Offset: offsets[i], Type: t})
				}
				e.Variants = append(e.Variants, registry.EnumVariant{Tag: int64(tag), Name: v.Name.Name, Payload: fields})
			}
		}
	}
}

// registerFunctionSignatures registers every top-level function and
// impl-block method's Function record (UUID, resolved Type, parameter
// names) without checking bodies, so calls anywhere in the file
// (including forward references and recursion) resolve in pass two.
func (c *Checker) registerFunctionSignatures(file *ast.File) {
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			fn := c.buildFunctionSignature(decl, nil, false)
			c.reg.AddFunction(fn)
			c.funcsByName[decl.Name.Name] = fn
			if len(decl.TypeParams) > 0 {
				c.genericFuncs[decl.Name.Name] = true
			}
		case *ast.ImplDecl:
			targetName := typeExprName(decl.Target)
			s := c.structsByName[targetName]
			for _, m := range decl.Methods {
				isStatic := !isSelfMethod(m)
				fn := c.buildFunctionSignature(m, &targetName, isStatic)
				c.reg.AddFunction(fn)
				c.methodFuncs[targetName+"."+m.Name.Name] = fn
				if s != nil {
					s.Methods[m.Name.Name] = registry.Method{FuncID: fn.ID, IsStatic: isStatic}
				}
			}
		}
	}
}

// isSelfMethod reports whether m's first parameter is named "self",
// the syntactic marker for an instance method.
func isSelfMethod(m *ast.FnDecl) bool {
	return len(m.Params) > 0 && m.Params[0].Name.Name == "self"
}

func (c *Checker) buildFunctionSignature(d *ast.FnDecl, receiverOf *string, isStatic bool) *registry.Function {
	generics := genericParamSet(d.TypeParams)
	var params []*value.Type
	var names []string
	for i, p := range d.Params {
		if i == 0 && receiverOf != nil && !isStatic {
			// "self" is typed *Target or *mut Target; trust the
			// declared annotation if present, else default to *mut Self.
			if p.Type != nil {
				params = append(params, c.resolveTypeExpr(p.Type, generics))
			} else if s := c.structsByName[*receiverOf]; s != nil {
				params = append(params, value.NewPointer(value.NewStruct(s), true))
			}
			names = append(names, p.Name.Name)
			continue
		}
		names = append(names, p.Name.Name)
		params = append(params, c.resolveTypeExpr(p.Type, generics))
	}
	ret := value.Void
	if d.ReturnType != nil {
		ret = c.resolveTypeExpr(d.ReturnType, generics)
	}
	return &registry.Function{
		ID:         c.reg.NextID(),
		Module:     c.moduleID,
		Name:       d.Name.Name,
		Type:       value.NewFunction(params, ret, d.Varargs),
		ParamNames: names,
		Varargs:    d.Varargs,
	}
}

func genericParamSet(params []ast.GenericParam) map[string]*value.Type {
	if len(params) == 0 {
		return nil
	}
	m := make(map[string]*value.Type, len(params))
	for _, p := range params {
		m[p.Name.Name] = value.NewUnresolved(p.Name.Name)
	}
	return m
}

// resolveTypeExpr maps an ast.TypeExpr to its value.Type, consulting
// generics (type parameters bound in the enclosing decl) before
// primitives and the registry.
func (c *Checker) resolveTypeExpr(t ast.TypeExpr, generics map[string]*value.Type) *value.Type {
	switch te := t.(type) {
	case *ast.NamedType:
		return c.resolveNamedType(te, generics)
	case *ast.PointerType:
		return value.NewPointer(c.resolveTypeExpr(te.Elem, generics), te.Mut)
	case *ast.ArrayType:
		elem := c.resolveTypeExpr(te.Elem, generics)
		n := c.constEvalArrayLen(te.Len)
		return value.NewArray(elem, n)
	case *ast.SliceType:
		return value.NewSlice(c.resolveTypeExpr(te.Elem, generics))
	case *ast.TupleType:
		elems := make([]*value.Type, len(te.Elems))
		for i, e := range te.Elems {
			elems[i] = c.resolveTypeExpr(e, generics)
		}
		return value.NewTuple(elems)
	case *ast.FunctionType:
		params := make([]*value.Type, len(te.Params))
		for i, p := range te.Params {
			params[i] = c.resolveTypeExpr(p, generics)
		}
		ret := value.Void
		if te.Return != nil {
			ret = c.resolveTypeExpr(te.Return, generics)
		}
		return value.NewFunction(params, ret, false)
	default:
		return value.Unresolved
	}
}

func (c *Checker) resolveNamedType(te *ast.NamedType, generics map[string]*value.Type) *value.Type {
	name := te.Name.Name
	switch name {
	case "int":
		return value.Int
	case "float":
		return value.Float
	case "bool":
		return value.Bool
	case "char":
		return value.Char
	case "str":
		return value.Str
	case "void":
		return value.Void
	}
	if generics != nil {
		if g, ok := generics[name]; ok {
			return g
		}
	}
	if s, ok := c.structsByName[name]; ok {
		return value.NewStruct(s)
	}
	if e, ok := c.enumsByName[name]; ok {
		return value.NewEnum(e)
	}
	c.errorf(te.Span(), diag.CodeNameUnresolved, "unresolved type name %q", name)
	return value.NewUnresolved(name)
}

// constEvalArrayLen evaluates an array type's length expression, which
// must be an integer literal.
func (c *Checker) constEvalArrayLen(e ast.Expr) int64 {
	lit, ok := e.(*ast.IntLit)
	if !ok {
		c.errorf(e.Span(), diag.CodeSemanticError, "array length must be an integer literal")
		return 0
	}
	n, err := strconv.ParseInt(stripUnderscores(lit.Text), 10, 64)
	if err != nil {
		c.errorf(e.Span(), diag.CodeSemanticError, "invalid array length literal %q", lit.Text)
		return 0
	}
	return n
}

func stripUnderscores(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// checkFunctionBody type-checks one function/method body against its
// already-registered signature, producing a typedast.Function ready
// for code generation.
func (c *Checker) checkFunctionBody(d *ast.FnDecl, fn *registry.Function, receiverOf *string) *typedast.Function {
	scope := NewScope(c.global)
	c.curFn = &fnCtx{returnType: fn.Type.Return, varargs: fn.Varargs, argCountSlot: -1}

	var paramPatterns []typedast.ProcessedPattern
	for i, p := range d.Params {
		typ := fn.Type.Params[i]
		slot := c.allocSlot()
		isMut := typ.IsMut || (p.Name.Name == "self" && receiverOf != nil)
		sym := &Symbol{Name: p.Name.Name, Type: typ, IsMut: isMut, Slot: slot}
		scope.Insert(sym)
		b := typedast.Binding{Name: p.Name.Name, Slot: slot, Type: typ, IsMut: isMut}
		paramPatterns = append(paramPatterns, typedast.ProcessedPattern{Kind: typedast.PatternIdent, Type: typ, Binding: b, Bindings: []typedast.Binding{b}})
	}
	if fn.Varargs {
		slot := c.allocSlot()
		scope.Insert(&Symbol{Name: "__vararg_bytes", Type: value.Int, Slot: slot})
		c.curFn.argCountSlot = slot
	}

	body, bodyType := c.checkBlock(d.Body, scope)
	if fn.Type.Return != value.Void && !fn.Type.Return.EqIgnoringMutability(bodyType) && !bodyReturnsOnEveryPath(body, fn.Type.Return) {
		c.errorf(d.Span(), diag.CodeTypeMismatch,
			"function %q declares return type %s but its body does not always return a matching value",
			d.Name.Name, fn.Type.Return.DisplayStr())
	}

	return &typedast.Function{
		ID:           fn.ID,
		Name:         fn.Name,
		Params:       paramPatterns,
		Varargs:      fn.Varargs,
		ArgCountSlot: c.curFn.argCountSlot,
		Return:       fn.Type.Return,
		Body:         body,
		FrameSize:    c.curFn.nextSlot,
	}
}

// bodyReturnsOnEveryPath is a coarse syntactic check (not full
// control-flow analysis): the block's last statement must be a Return,
// a tail expression of the wanted type, or an if/match whose every arm
// satisfies the same rule.
func bodyReturnsOnEveryPath(b *typedast.Block, want *value.Type) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	return stmtReturns(b.Stmts[len(b.Stmts)-1], want)
}

func stmtReturns(s typedast.Stmt, want *value.Type) bool {
	switch last := s.(type) {
	case *typedast.ReturnStmt:
		return true
	case *typedast.ExprStmt:
		if last.Expr == nil {
			return false
		}
		if want.EqIgnoringMutability(last.Expr.Type()) {
			return true
		}
		switch e := last.Expr.(type) {
		case *typedast.IfExpr:
			return ifReturnsOnEveryPath(e, want)
		case *typedast.MatchExpr:
			return matchReturnsOnEveryPath(e, want)
		}
		return false
	default:
		return false
	}
}

func ifReturnsOnEveryPath(e *typedast.IfExpr, want *value.Type) bool {
	if e.Else == nil && e.ElseIf == nil {
		return false
	}
	thenOK := bodyReturnsOnEveryPath(e.Then, want)
	if e.ElseIf != nil {
		return thenOK && ifReturnsOnEveryPath(e.ElseIf, want)
	}
	return thenOK && bodyReturnsOnEveryPath(e.Else, want)
}

func matchReturnsOnEveryPath(e *typedast.MatchExpr, want *value.Type) bool {
	if len(e.Arms) == 0 {
		return false
	}
	for i := range e.Arms {
		if !bodyReturnsOnEveryPath(e.Arms[i].Body, want) {
			return false
		}
	}
	return true
}
