package ast

import "github.com/foxlang/fox/internal/lexer"

// Pattern is a source-level pattern as it appears in let/const
// bindings, for-loop bindings, and match arms.
type Pattern interface {
	Node
	patternNode()
}

// IdentPattern binds the matched value to a new name, optionally
// requesting a mutable binding ("mut x").
type IdentPattern struct {
	Name *Ident
	Mut  bool
	span lexer.Span
}

func NewIdentPattern(name *Ident, mut bool, span lexer.Span) *IdentPattern {
	return &IdentPattern{Name: name, Mut: mut, span: span}
}
func (p *IdentPattern) Span() lexer.Span { return p.span }
func (*IdentPattern) patternNode()       {}

// WildcardPattern is "_": matches anything, binds nothing.
type WildcardPattern struct{ span lexer.Span }

func NewWildcardPattern(span lexer.Span) *WildcardPattern { return &WildcardPattern{span: span} }
func (p *WildcardPattern) Span() lexer.Span               { return p.span }
func (*WildcardPattern) patternNode()                     {}

// TuplePattern destructures a tuple value element-wise.
type TuplePattern struct {
	Elems []Pattern
	span  lexer.Span
}

func NewTuplePattern(elems []Pattern, span lexer.Span) *TuplePattern {
	return &TuplePattern{Elems: elems, span: span}
}
func (p *TuplePattern) Span() lexer.Span { return p.span }
func (*TuplePattern) patternNode()       {}

// StructFieldPattern binds one named field of a struct pattern.
type StructFieldPattern struct {
	Name  *Ident
	Value Pattern // nil means shorthand "field" binds to a same-named ident
}

// StructPattern destructures a struct value field-wise.
type StructPattern struct {
	Name   Expr // Ident or Path naming the struct type
	Fields []StructFieldPattern
	span   lexer.Span
}

func NewStructPattern(name Expr, fields []StructFieldPattern, span lexer.Span) *StructPattern {
	return &StructPattern{Name: name, Fields: fields, span: span}
}
func (p *StructPattern) Span() lexer.Span { return p.span }
func (*StructPattern) patternNode()       {}

// EnumPattern matches a specific variant of an enum, optionally
// binding its payload fields.
type EnumPattern struct {
	Name    Expr // Ident or Path naming the enum type, may be nil when inferred from match subject
	Variant *Ident
	Payload []Pattern // positional payload bindings, empty for unit variants
	span    lexer.Span
}

func NewEnumPattern(name Expr, variant *Ident, payload []Pattern, span lexer.Span) *EnumPattern {
	return &EnumPattern{Name: name, Variant: variant, Payload: payload, span: span}
}
func (p *EnumPattern) Span() lexer.Span { return p.span }
func (*EnumPattern) patternNode()       {}

// ValuePattern matches a literal value exactly (int, float, string,
// char, bool literal patterns).
type ValuePattern struct {
	Value Expr
	span  lexer.Span
}

func NewValuePattern(value Expr, span lexer.Span) *ValuePattern {
	return &ValuePattern{Value: value, span: span}
}
func (p *ValuePattern) Span() lexer.Span { return p.span }
func (*ValuePattern) patternNode()       {}
