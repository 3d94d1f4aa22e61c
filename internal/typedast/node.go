// Package typedast is the output of type checking — the bridge between the untyped ast package
// and the code generator.
package typedast

import (
	"github.com/google/uuid"

	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/value"
)

// Expr is a type-checked expression: every node knows its own
// resolved Value_Type and source span.
type Expr interface {
	Type() *value.Type
	Span() lexer.Span
}

// Stmt is a type-checked statement.
type Stmt interface {
	Span() lexer.Span
}

type base struct {
	typ  *value.Type
	span lexer.Span
}

func (b base) Type() *value.Type { return b.typ }
func (b base) Span() lexer.Span  { return b.span }

// ---- Literals ----

type IntLit struct {
	base
	Value int64
}

func NewIntLit(v int64, span lexer.Span) *IntLit {
	return &IntLit{base: base{typ: value.Int, span: span}, Value: v}
}

type FloatLit struct {
	base
	Value float64
}

func NewFloatLit(v float64, span lexer.Span) *FloatLit {
	return &FloatLit{base: base{typ: value.Float, span: span}, Value: v}
}

type BoolLit struct {
	base
	Value bool
}

func NewBoolLit(v bool, span lexer.Span) *BoolLit {
	return &BoolLit{base: base{typ: value.Bool, span: span}, Value: v}
}

type CharLit struct {
	base
	Value rune
}

func NewCharLit(v rune, span lexer.Span) *CharLit {
	return &CharLit{base: base{typ: value.Char, span: span}, Value: v}
}

type StringLit struct {
	base
	Value string
}

func NewStringLit(v string, span lexer.Span) *StringLit {
	return &StringLit{base: base{typ: value.Str, span: span}, Value: v}
}

// ---- Places ----

// Local refers to a function-local binding by its frame-relative slot.
type Local struct {
	base
	Name string
	Slot int
}

func NewLocal(name string, slot int, typ *value.Type, span lexer.Span) *Local {
	return &Local{base: base{typ: typ, span: span}, Name: name, Slot: slot}
}

// GlobalFunc refers to a resolved top-level function by its registry
// UUID.
type GlobalFunc struct {
	base
	Name string
	ID   uuid.UUID
}

func NewGlobalFunc(name string, id uuid.UUID, typ *value.Type, span lexer.Span) *GlobalFunc {
	return &GlobalFunc{base: base{typ: typ, span: span}, Name: name, ID: id}
}

// ---- Operators ----

type UnaryExpr struct {
	base
	Op      lexer.TokenType
	Operand Expr
}

func NewUnaryExpr(op lexer.TokenType, operand Expr, typ *value.Type, span lexer.Span) *UnaryExpr {
	return &UnaryExpr{base: base{typ: typ, span: span}, Op: op, Operand: operand}
}

type BinaryExpr struct {
	base
	Op          lexer.TokenType
	Left, Right Expr
}

func NewBinaryExpr(op lexer.TokenType, left, right Expr, typ *value.Type, span lexer.Span) *BinaryExpr {
	return &BinaryExpr{base: base{typ: typ, span: span}, Op: op, Left: left, Right: right}
}

// AssignExpr always lowers compound assignment ("+=" etc) into the
// equivalent "target = target op value" shape during type checking,
// so codegen only ever handles plain assignment.
type AssignExpr struct {
	base
	Target Expr
	Value  Expr
}

func NewAssignExpr(target, value Expr, typ *value.Type, span lexer.Span) *AssignExpr {
	return &AssignExpr{base: base{typ: typ, span: span}, Target: target, Value: value}
}

// CastExpr is one of the four concrete "as" conversions the type
// checker accepts; Kind picks the bytecode
// op codegen must emit.
type CastExpr struct {
	base
	Value Expr
	Kind  CastKind
}

type CastKind int

const (
	CastBoolInt CastKind = iota
	CastCharInt
	CastIntFloat
	CastFloatInt
)

func NewCastExpr(value Expr, kind CastKind, typ *value.Type, span lexer.Span) *CastExpr {
	return &CastExpr{base: base{typ: typ, span: span}, Value: value, Kind: kind}
}

// ---- Aggregates ----

type ArrayLit struct {
	base
	Elements []Expr
}

func NewArrayLit(elems []Expr, typ *value.Type, span lexer.Span) *ArrayLit {
	return &ArrayLit{base: base{typ: typ, span: span}, Elements: elems}
}

type TupleLit struct {
	base
	Elements []Expr
	Offsets  []int64
}

func NewTupleLit(elems []Expr, offsets []int64, typ *value.Type, span lexer.Span) *TupleLit {
	return &TupleLit{base: base{typ: typ, span: span}, Elements: elems, Offsets: offsets}
}

type StructLitField struct {
	Offset int64
	Value  Expr
}

type StructLit struct {
	base
	Fields []StructLitField
}

func NewStructLit(fields []StructLitField, typ *value.Type, span lexer.Span) *StructLit {
	return &StructLit{base: base{typ: typ, span: span}, Fields: fields}
}

// EnumLit constructs a tagged enum value: a variant tag plus its
// positional payload expressions.
type EnumLit struct {
	base
	VariantName string
	VariantTag  int64
	Payload     []Expr
	Offsets     []int64
}

func NewEnumLit(variantName string, tag int64, payload []Expr, offsets []int64, typ *value.Type, span lexer.Span) *EnumLit {
	return &EnumLit{base: base{typ: typ, span: span}, VariantName: variantName, VariantTag: tag, Payload: payload, Offsets: offsets}
}

type RangeExpr struct {
	base
	Start, End Expr
	Inclusive  bool
}

func NewRangeExpr(start, end Expr, inclusive bool, typ *value.Type, span lexer.Span) *RangeExpr {
	return &RangeExpr{base: base{typ: typ, span: span}, Start: start, End: end, Inclusive: inclusive}
}

// ---- Access ----

// FieldExpr is a static place: the field's byte offset within Target
// is known at type-check time.
type FieldExpr struct {
	base
	Target Expr
	Offset int64
	Name   string
}

func NewFieldExpr(target Expr, offset int64, name string, typ *value.Type, span lexer.Span) *FieldExpr {
	return &FieldExpr{base: base{typ: typ, span: span}, Target: target, Offset: offset, Name: name}
}

// IndexExpr is a place whose element address is usually computed at
// run time; a constant index into a fixed array (including a negative
// one) resolves statically in the code generator instead.
type IndexExpr struct {
	base
	Target Expr
	Index  Expr
}

func NewIndexExpr(target, index Expr, typ *value.Type, span lexer.Span) *IndexExpr {
	return &IndexExpr{base: base{typ: typ, span: span}, Target: target, Index: index}
}

type CallExpr struct {
	base
	Callee   Expr
	Args     []Expr
	ArgCount int // runtime arg count passed to varargs functions
}

func NewCallExpr(callee Expr, args []Expr, typ *value.Type, span lexer.Span) *CallExpr {
	return &CallExpr{base: base{typ: typ, span: span}, Callee: callee, Args: args, ArgCount: len(args)}
}

// BuiltinCallExpr invokes an intrinsic by name rather than a
// registered Function UUID.
type BuiltinCallExpr struct {
	base
	Name string
	Args []Expr
}

func NewBuiltinCallExpr(name string, args []Expr, typ *value.Type, span lexer.Span) *BuiltinCallExpr {
	return &BuiltinCallExpr{base: base{typ: typ, span: span}, Name: name, Args: args}
}

// ---- Control flow ----

type Block struct {
	Stmts []Stmt
	span  lexer.Span
}

func NewBlock(stmts []Stmt, span lexer.Span) *Block { return &Block{Stmts: stmts, span: span} }
func (b *Block) Span() lexer.Span                   { return b.span }

type IfExpr struct {
	base
	Cond   Expr
	Then   *Block
	Else   *Block // may be nil; else-if chains are pre-flattened into nested IfExpr blocks
	ElseIf *IfExpr
}

func NewIfExpr(cond Expr, then, els *Block, elseIf *IfExpr, typ *value.Type, span lexer.Span) *IfExpr {
	return &IfExpr{base: base{typ: typ, span: span}, Cond: cond, Then: then, Else: els, ElseIf: elseIf}
}

type WhileStmt struct {
	Cond Expr
	Body *Block
	span lexer.Span
}

func NewWhileStmt(cond Expr, body *Block, span lexer.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, span: span}
}
func (s *WhileStmt) Span() lexer.Span { return s.span }

// ForStmt is fully desugared by type checking: either ArrayLen is set
// (array/slice form, iterating index 0..ArrayLen over Iterable) or
// Range is set (range form).
type ForStmt struct {
	Binding  ProcessedPattern
	Counter  *int // frame slot for the optional counter binding
	Iterable Expr
	Range    *RangeExpr
	Body     *Block
	span     lexer.Span
}

func NewForStmt(binding ProcessedPattern, counter *int, iterable Expr, rng *RangeExpr, body *Block, span lexer.Span) *ForStmt {
	return &ForStmt{Binding: binding, Counter: counter, Iterable: iterable, Range: rng, Body: body, span: span}
}
func (s *ForStmt) Span() lexer.Span { return s.span }

type MatchArm struct {
	Pattern ProcessedPattern
	Body    *Block
}

type MatchExpr struct {
	base
	Subject Expr
	Arms    []MatchArm
}

func NewMatchExpr(subject Expr, arms []MatchArm, typ *value.Type, span lexer.Span) *MatchExpr {
	return &MatchExpr{base: base{typ: typ, span: span}, Subject: subject, Arms: arms}
}

// ---- Statements ----

type ExprStmt struct {
	Expr Expr
	span lexer.Span
}

func NewExprStmt(e Expr, span lexer.Span) *ExprStmt { return &ExprStmt{Expr: e, span: span} }
func (s *ExprStmt) Span() lexer.Span                { return s.span }

type LetStmt struct {
	Pattern ProcessedPattern
	Value   Expr // nil when NoInit is set
	NoInit  bool
	IsConst bool // const bindings take the pre-evaluated constant-pool path
	span    lexer.Span
}

func NewLetStmt(pattern ProcessedPattern, value Expr, noInit, isConst bool, span lexer.Span) *LetStmt {
	return &LetStmt{Pattern: pattern, Value: value, NoInit: noInit, IsConst: isConst, span: span}
}
func (s *LetStmt) Span() lexer.Span { return s.span }

type ReturnStmt struct {
	Value Expr
	span  lexer.Span
}

func NewReturnStmt(value Expr, span lexer.Span) *ReturnStmt { return &ReturnStmt{Value: value, span: span} }
func (s *ReturnStmt) Span() lexer.Span                      { return s.span }

type BreakStmt struct{ span lexer.Span }

func NewBreakStmt(span lexer.Span) *BreakStmt { return &BreakStmt{span: span} }
func (s *BreakStmt) Span() lexer.Span         { return s.span }

type ContinueStmt struct{ span lexer.Span }

func NewContinueStmt(span lexer.Span) *ContinueStmt { return &ContinueStmt{span: span} }
func (s *ContinueStmt) Span() lexer.Span            { return s.span }

// DeferStmt's Call runs at scope exit, in reverse order relative to
// other defers registered in the same scope.
type DeferStmt struct {
	Call Expr
	span lexer.Span
}

func NewDeferStmt(call Expr, span lexer.Span) *DeferStmt { return &DeferStmt{Call: call, span: span} }
func (s *DeferStmt) Span() lexer.Span                    { return s.span }

type BlockStmt struct {
	Block *Block
	span  lexer.Span
}

func NewBlockStmt(b *Block, span lexer.Span) *BlockStmt { return &BlockStmt{Block: b, span: span} }
func (s *BlockStmt) Span() lexer.Span                   { return s.span }

// ---- Function ----

// Function is a fully checked function body ready for code
// generation: its Params are already assigned frame slots 0..len(Params)-1.
type Function struct {
	ID           uuid.UUID
	Name         string
	Params       []ProcessedPattern
	Varargs      bool
	ArgCountSlot int // frame slot holding the synthetic varargs count, -1 if Varargs is false
	Return       *value.Type
	Body         *Block
	FrameSize    int // total frame slots issued by the checker
}

// Program is the complete checked unit handed to code generation.
type Program struct {
	Functions []*Function
}
