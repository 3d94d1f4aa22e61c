// Package ast defines the untyped AST produced by the parser for the subset of Fox syntax the type
// checker and code generator consume.
package ast

import "github.com/foxlang/fox/internal/lexer"

// Node is any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// TypeExpr is a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// File is a parsed compilation unit.
type File struct {
	Decls []Decl
	span  lexer.Span
}

func NewFile(decls []Decl, span lexer.Span) *File { return &File{Decls: decls, span: span} }
func (f *File) Span() lexer.Span                  { return f.span }

// ---- Identifiers & paths ----

type Ident struct {
	Name string
	span lexer.Span
}

func NewIdent(name string, span lexer.Span) *Ident { return &Ident{Name: name, span: span} }
func (i *Ident) Span() lexer.Span                  { return i.span }
func (*Ident) exprNode()                           {}
func (*Ident) typeNode()                           {}

// Path represents "A::B::C"-style qualified access.
type Path struct {
	Parts []*Ident
	span  lexer.Span
}

func NewPath(parts []*Ident, span lexer.Span) *Path { return &Path{Parts: parts, span: span} }
func (p *Path) Span() lexer.Span                    { return p.span }
func (*Path) exprNode()                             {}
func (*Path) typeNode()                             {}

// ---- Literals ----

type IntLit struct {
	Text string
	span lexer.Span
}

func NewIntLit(text string, span lexer.Span) *IntLit { return &IntLit{Text: text, span: span} }
func (l *IntLit) Span() lexer.Span                    { return l.span }
func (*IntLit) exprNode()                             {}

type FloatLit struct {
	Text string
	span lexer.Span
}

func NewFloatLit(text string, span lexer.Span) *FloatLit { return &FloatLit{Text: text, span: span} }
func (l *FloatLit) Span() lexer.Span                      { return l.span }
func (*FloatLit) exprNode()                               {}

type BoolLit struct {
	Value bool
	span  lexer.Span
}

func NewBoolLit(v bool, span lexer.Span) *BoolLit { return &BoolLit{Value: v, span: span} }
func (l *BoolLit) Span() lexer.Span               { return l.span }
func (*BoolLit) exprNode()                        {}

type CharLit struct {
	Value rune
	span  lexer.Span
}

func NewCharLit(v rune, span lexer.Span) *CharLit { return &CharLit{Value: v, span: span} }
func (l *CharLit) Span() lexer.Span               { return l.span }
func (*CharLit) exprNode()                        {}

type StringLit struct {
	Value string
	span  lexer.Span
}

func NewStringLit(v string, span lexer.Span) *StringLit { return &StringLit{Value: v, span: span} }
func (l *StringLit) Span() lexer.Span                    { return l.span }
func (*StringLit) exprNode()                             {}

// ---- Operators ----

type UnaryExpr struct {
	Op      lexer.TokenType // MINUS, BANG, AMPERSAND, REF_MUT, STAR
	Operand Expr
	span    lexer.Span
}

func NewUnaryExpr(op lexer.TokenType, operand Expr, span lexer.Span) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand, span: span}
}
func (e *UnaryExpr) Span() lexer.Span { return e.span }
func (*UnaryExpr) exprNode()          {}

type BinaryExpr struct {
	Op          lexer.TokenType
	Left, Right Expr
	span        lexer.Span
}

func NewBinaryExpr(op lexer.TokenType, left, right Expr, span lexer.Span) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right, span: span}
}
func (e *BinaryExpr) Span() lexer.Span { return e.span }
func (*BinaryExpr) exprNode()          {}

// CastExpr is "expr as Type".
type CastExpr struct {
	Value  Expr
	Target TypeExpr
	span   lexer.Span
}

func NewCastExpr(value Expr, target TypeExpr, span lexer.Span) *CastExpr {
	return &CastExpr{Value: value, Target: target, span: span}
}
func (e *CastExpr) Span() lexer.Span { return e.span }
func (*CastExpr) exprNode()          {}

// AssignExpr covers "=" and compound assignment ("+=" etc; the
// supplemented feature).
type AssignExpr struct {
	Op     lexer.TokenType // ASSIGN, PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, PERCENT_EQ
	Target Expr
	Value  Expr
	span   lexer.Span
}

func NewAssignExpr(op lexer.TokenType, target, value Expr, span lexer.Span) *AssignExpr {
	return &AssignExpr{Op: op, Target: target, Value: value, span: span}
}
func (e *AssignExpr) Span() lexer.Span { return e.span }
func (*AssignExpr) exprNode()          {}

// ---- Aggregates ----

type ArrayLit struct {
	ElemType TypeExpr // optional declared element type
	Count    Expr     // optional declared count literal
	Elements []Expr
	span     lexer.Span
}

func NewArrayLit(elemType TypeExpr, count Expr, elements []Expr, span lexer.Span) *ArrayLit {
	return &ArrayLit{ElemType: elemType, Count: count, Elements: elements, span: span}
}
func (e *ArrayLit) Span() lexer.Span { return e.span }
func (*ArrayLit) exprNode()          {}

type TupleLit struct {
	Elements []Expr
	span     lexer.Span
}

func NewTupleLit(elements []Expr, span lexer.Span) *TupleLit {
	return &TupleLit{Elements: elements, span: span}
}
func (e *TupleLit) Span() lexer.Span { return e.span }
func (*TupleLit) exprNode()          {}

type StructLitField struct {
	Name  *Ident
	Value Expr
}

type StructLit struct {
	Name   Expr // Ident or Path naming the struct type
	Fields []StructLitField
	span   lexer.Span
}

func NewStructLit(name Expr, fields []StructLitField, span lexer.Span) *StructLit {
	return &StructLit{Name: name, Fields: fields, span: span}
}
func (e *StructLit) Span() lexer.Span { return e.span }
func (*StructLit) exprNode()          {}

type RangeExpr struct {
	Start, End Expr
	Inclusive  bool
	span       lexer.Span
}

func NewRangeExpr(start, end Expr, inclusive bool, span lexer.Span) *RangeExpr {
	return &RangeExpr{Start: start, End: end, Inclusive: inclusive, span: span}
}
func (e *RangeExpr) Span() lexer.Span { return e.span }
func (*RangeExpr) exprNode()          {}

// ---- Access ----

type FieldExpr struct {
	Target       Expr
	Field        *Ident // named field access: x.f
	Index        int    // tuple field access: x.0  (Field == nil when this applies)
	IsTupleIndex bool
	span         lexer.Span
}

func NewFieldAccess(target Expr, field *Ident, span lexer.Span) *FieldExpr {
	return &FieldExpr{Target: target, Field: field, span: span}
}
func NewTupleFieldAccess(target Expr, index int, span lexer.Span) *FieldExpr {
	return &FieldExpr{Target: target, Index: index, IsTupleIndex: true, span: span}
}
func (e *FieldExpr) Span() lexer.Span { return e.span }
func (*FieldExpr) exprNode()          {}

type IndexExpr struct {
	Target Expr
	Index  Expr // int or RangeExpr
	span   lexer.Span
}

func NewIndexExpr(target, index Expr, span lexer.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}
func (e *IndexExpr) Span() lexer.Span { return e.span }
func (*IndexExpr) exprNode()          {}

type CallExpr struct {
	Callee Expr
	Args   []Expr
	span   lexer.Span
}

func NewCallExpr(callee Expr, args []Expr, span lexer.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}
func (e *CallExpr) Span() lexer.Span { return e.span }
func (*CallExpr) exprNode()          {}

// ---- Control flow expressions ----

type Block struct {
	Stmts []Stmt
	span  lexer.Span
}

func NewBlock(stmts []Stmt, span lexer.Span) *Block { return &Block{Stmts: stmts, span: span} }
func (b *Block) Span() lexer.Span                   { return b.span }

type IfExpr struct {
	Cond Expr
	Then *Block
	// Else may be *Block or *IfExpr (else-if chaining), or nil.
	Else Node
	span lexer.Span
}

func NewIfExpr(cond Expr, then *Block, els Node, span lexer.Span) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els, span: span}
}
func (e *IfExpr) Span() lexer.Span { return e.span }
func (*IfExpr) exprNode()          {}
func (*IfExpr) stmtNode()          {}

type WhileStmt struct {
	Cond Expr
	Body *Block
	span lexer.Span
}

func NewWhileStmt(cond Expr, body *Block, span lexer.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, span: span}
}
func (s *WhileStmt) Span() lexer.Span { return s.span }
func (*WhileStmt) stmtNode()          {}

// ForStmt covers both for-loop forms: array/slice form
// (Iterable set) and range form (Range set).
type ForStmt struct {
	Pattern  Pattern
	Counter  *Ident     // optional
	Iterable Expr       // array/slice form
	Range    *RangeExpr // range form
	Body     *Block
	span     lexer.Span
}

func NewForStmt(pattern Pattern, counter *Ident, iterable Expr, rng *RangeExpr, body *Block, span lexer.Span) *ForStmt {
	return &ForStmt{Pattern: pattern, Counter: counter, Iterable: iterable, Range: rng, Body: body, span: span}
}
func (s *ForStmt) Span() lexer.Span { return s.span }
func (*ForStmt) stmtNode()          {}

type MatchArm struct {
	Pattern Pattern
	Body    *Block
}

type MatchExpr struct {
	Subject Expr
	Arms    []MatchArm
	span    lexer.Span
}

func NewMatchExpr(subject Expr, arms []MatchArm, span lexer.Span) *MatchExpr {
	return &MatchExpr{Subject: subject, Arms: arms, span: span}
}
func (e *MatchExpr) Span() lexer.Span { return e.span }
func (*MatchExpr) exprNode()          {}
func (*MatchExpr) stmtNode()          {}

// ---- Statements ----

type ExprStmt struct {
	Expr Expr
	span lexer.Span
}

func NewExprStmt(e Expr, span lexer.Span) *ExprStmt { return &ExprStmt{Expr: e, span: span} }
func (s *ExprStmt) Span() lexer.Span                { return s.span }
func (*ExprStmt) stmtNode()                         {}

// LetStmt covers both `let` and `const` (Const distinguishes them).
type LetStmt struct {
	Const   bool
	Pattern Pattern
	Type    TypeExpr // optional declared type
	Value   Expr     // optional initializer
	NoInit  bool     // `noinit` marker
	span    lexer.Span
}

func NewLetStmt(isConst bool, pattern Pattern, typ TypeExpr, value Expr, noInit bool, span lexer.Span) *LetStmt {
	return &LetStmt{Const: isConst, Pattern: pattern, Type: typ, Value: value, NoInit: noInit, span: span}
}
func (s *LetStmt) Span() lexer.Span { return s.span }
func (*LetStmt) stmtNode()          {}

// A top-level "const" declaration shares LetStmt's shape with a local
// one, so LetStmt also satisfies Decl; declNode on a non-const LetStmt
// is simply never called by the parser.
func (*LetStmt) declNode() {}

type ReturnStmt struct {
	Value Expr // optional
	span  lexer.Span
}

func NewReturnStmt(value Expr, span lexer.Span) *ReturnStmt { return &ReturnStmt{Value: value, span: span} }
func (s *ReturnStmt) Span() lexer.Span                      { return s.span }
func (*ReturnStmt) stmtNode()                               {}

type BreakStmt struct{ span lexer.Span }

func NewBreakStmt(span lexer.Span) *BreakStmt { return &BreakStmt{span: span} }
func (s *BreakStmt) Span() lexer.Span         { return s.span }
func (*BreakStmt) stmtNode()                  {}

type ContinueStmt struct{ span lexer.Span }

func NewContinueStmt(span lexer.Span) *ContinueStmt { return &ContinueStmt{span: span} }
func (s *ContinueStmt) Span() lexer.Span            { return s.span }
func (*ContinueStmt) stmtNode()                      {}

// DeferStmt registers an expression to run at scope exit in reverse
// order.
type DeferStmt struct {
	Call Expr
	span lexer.Span
}

func NewDeferStmt(call Expr, span lexer.Span) *DeferStmt { return &DeferStmt{Call: call, span: span} }
func (s *DeferStmt) Span() lexer.Span                    { return s.span }
func (*DeferStmt) stmtNode()                             {}

type BlockStmt struct {
	Block *Block
	span  lexer.Span
}

func NewBlockStmt(b *Block, span lexer.Span) *BlockStmt { return &BlockStmt{Block: b, span: span} }
func (s *BlockStmt) Span() lexer.Span                   { return s.span }
func (*BlockStmt) stmtNode()                            {}

// ---- Type expressions ----

type NamedType struct {
	Name *Ident
	span lexer.Span
}

func NewNamedType(name *Ident, span lexer.Span) *NamedType { return &NamedType{Name: name, span: span} }
func (t *NamedType) Span() lexer.Span                      { return t.span }
func (*NamedType) typeNode()                               {}

type PointerType struct {
	Elem TypeExpr
	Mut  bool
	span lexer.Span
}

func NewPointerType(elem TypeExpr, mut bool, span lexer.Span) *PointerType {
	return &PointerType{Elem: elem, Mut: mut, span: span}
}
func (t *PointerType) Span() lexer.Span { return t.span }
func (*PointerType) typeNode()          {}

type ArrayType struct {
	Elem TypeExpr
	Len  Expr // integer literal expression
	span lexer.Span
}

func NewArrayType(elem TypeExpr, length Expr, span lexer.Span) *ArrayType {
	return &ArrayType{Elem: elem, Len: length, span: span}
}
func (t *ArrayType) Span() lexer.Span { return t.span }
func (*ArrayType) typeNode()          {}

type SliceType struct {
	Elem TypeExpr
	span lexer.Span
}

func NewSliceType(elem TypeExpr, span lexer.Span) *SliceType { return &SliceType{Elem: elem, span: span} }
func (t *SliceType) Span() lexer.Span                        { return t.span }
func (*SliceType) typeNode()                                 {}

type TupleType struct {
	Elems []TypeExpr
	span  lexer.Span
}

func NewTupleType(elems []TypeExpr, span lexer.Span) *TupleType {
	return &TupleType{Elems: elems, span: span}
}
func (t *TupleType) Span() lexer.Span { return t.span }
func (*TupleType) typeNode()          {}

type FunctionType struct {
	Params []TypeExpr
	Return TypeExpr
	span   lexer.Span
}

func NewFunctionType(params []TypeExpr, ret TypeExpr, span lexer.Span) *FunctionType {
	return &FunctionType{Params: params, Return: ret, span: span}
}
func (t *FunctionType) Span() lexer.Span { return t.span }
func (*FunctionType) typeNode()          {}

// ---- Declarations ----

type Param struct {
	Name *Ident
	Type TypeExpr
}

type GenericParam struct {
	Name *Ident
}

type FnDecl struct {
	Name       *Ident
	TypeParams []GenericParam
	Params     []*Param
	ReturnType TypeExpr // nil means void
	Varargs    bool
	Body       *Block
	span       lexer.Span
}

func NewFnDecl(name *Ident, typeParams []GenericParam, params []*Param, ret TypeExpr, varargs bool, body *Block, span lexer.Span) *FnDecl {
	return &FnDecl{Name: name, TypeParams: typeParams, Params: params, ReturnType: ret, Varargs: varargs, Body: body, span: span}
}
func (d *FnDecl) Span() lexer.Span { return d.span }
func (*FnDecl) declNode()          {}

type FieldDecl struct {
	Name *Ident
	Type TypeExpr
}

type StructDecl struct {
	Name       *Ident
	TypeParams []GenericParam
	Fields     []FieldDecl
	span       lexer.Span
}

func NewStructDecl(name *Ident, typeParams []GenericParam, fields []FieldDecl, span lexer.Span) *StructDecl {
	return &StructDecl{Name: name, TypeParams: typeParams, Fields: fields, span: span}
}
func (d *StructDecl) Span() lexer.Span { return d.span }
func (*StructDecl) declNode()          {}

type VariantDecl struct {
	Name    *Ident
	Payload []TypeExpr
}

type EnumDecl struct {
	Name       *Ident
	TypeParams []GenericParam
	Variants   []VariantDecl
	span       lexer.Span
}

func NewEnumDecl(name *Ident, typeParams []GenericParam, variants []VariantDecl, span lexer.Span) *EnumDecl {
	return &EnumDecl{Name: name, TypeParams: typeParams, Variants: variants, span: span}
}
func (d *EnumDecl) Span() lexer.Span { return d.span }
func (*EnumDecl) declNode()          {}

// ImplDecl registers methods on Target; Trait is non-nil for `impl Trait for T`
// (the trait itself is not checked: its methods are registered and
// type-checked as plain methods on Target).
type ImplDecl struct {
	Trait   TypeExpr
	Target  TypeExpr
	Methods []*FnDecl
	span    lexer.Span
}

func NewImplDecl(trait, target TypeExpr, methods []*FnDecl, span lexer.Span) *ImplDecl {
	return &ImplDecl{Trait: trait, Target: target, Methods: methods, span: span}
}
func (d *ImplDecl) Span() lexer.Span { return d.span }
func (*ImplDecl) declNode()          {}

// TraitDecl is parsed and registered as a name only.
type TraitDecl struct {
	Name *Ident
	span lexer.Span
}

func NewTraitDecl(name *Ident, span lexer.Span) *TraitDecl { return &TraitDecl{Name: name, span: span} }
func (d *TraitDecl) Span() lexer.Span                      { return d.span }
func (*TraitDecl) declNode()                               {}
