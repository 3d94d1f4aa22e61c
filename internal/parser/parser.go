// Package parser implements a Pratt-style recursive descent parser
// that turns Fox source into the untyped AST.
package parser

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

const (
	precLowest = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
	precPostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:       precAssign,
	lexer.PLUS_EQ:      precAssign,
	lexer.MINUS_EQ:     precAssign,
	lexer.STAR_EQ:      precAssign,
	lexer.SLASH_EQ:     precAssign,
	lexer.PERCENT_EQ:   precAssign,
	lexer.OR:           precOr,
	lexer.AND:          precAnd,
	lexer.EQ:           precEquality,
	lexer.NOT_EQ:       precEquality,
	lexer.LT:           precComparison,
	lexer.LE:           precComparison,
	lexer.GT:           precComparison,
	lexer.GE:           precComparison,
	lexer.PLUS:         precSum,
	lexer.MINUS:        precSum,
	lexer.STAR:         precProduct,
	lexer.SLASH:        precProduct,
	lexer.PERCENT:      precProduct,
	lexer.DOT_DOT:      precComparison,
	lexer.DOT_DOT_DOT:  precComparison,
	lexer.AS:           precProduct,
	lexer.LPAREN:       precPostfix,
	lexer.LBRACKET:     precPostfix,
	lexer.DOT:          precPostfix,
	lexer.DOUBLE_COLON: precPostfix,
	lexer.LBRACE:       precPostfix,
}

// ParseError is a recoverable parse diagnostic.
type ParseError struct {
	Message string
	Span    lexer.Span
	Code    diag.Code
	Help    string
}

func (e ParseError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     e.Code,
		Message:  e.Message,
		Help:     e.Help,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// Parser drives token-by-token recursive descent over a two-token
// lookahead window (curTok/peekTok), accumulating recoverable errors
// rather than aborting at the first one.
type Parser struct {
	lx      *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token

	filename string
	errors   []ParseError

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn

	// noStructLit suppresses the "Ident/Path '{' ... '}'" struct-literal
	// suffix while parsing the condition/subject of if/while/for/match,
	// where a bare "{" must start that construct's body instead (the
	// same ambiguity Rust resolves by forbidding struct literals in
	// those positions without parentheses).
	noStructLit bool
}

// New creates a Parser over src, attributing diagnostics to filename.
func New(src, filename string) *Parser {
	p := &Parser{
		lx:        lexer.New(src, filename),
		filename:  filename,
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentOrPathExpr)
	p.registerPrefix(lexer.INT, p.parseIntLit)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLit)
	p.registerPrefix(lexer.STRING, p.parseStringLit)
	p.registerPrefix(lexer.CHAR, p.parseCharLit)
	p.registerPrefix(lexer.TRUE, p.parseBoolLit)
	p.registerPrefix(lexer.FALSE, p.parseBoolLit)
	p.registerPrefix(lexer.MINUS, p.parseUnaryExpr)
	p.registerPrefix(lexer.BANG, p.parseUnaryExpr)
	p.registerPrefix(lexer.AMPERSAND, p.parseUnaryExpr)
	p.registerPrefix(lexer.REF_MUT, p.parseUnaryExpr)
	p.registerPrefix(lexer.STAR, p.parseUnaryExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrTupleExpr)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLit)
	p.registerPrefix(lexer.IF, p.parseIfExprAsExpr)
	p.registerPrefix(lexer.MATCH, p.parseMatchExprAsExpr)

	p.registerInfix(lexer.ASSIGN, p.parseAssignExpr)
	p.registerInfix(lexer.PLUS_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.MINUS_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.STAR_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.SLASH_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.PERCENT_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.PLUS, p.parseBinaryExpr)
	p.registerInfix(lexer.MINUS, p.parseBinaryExpr)
	p.registerInfix(lexer.STAR, p.parseBinaryExpr)
	p.registerInfix(lexer.SLASH, p.parseBinaryExpr)
	p.registerInfix(lexer.PERCENT, p.parseBinaryExpr)
	p.registerInfix(lexer.AND, p.parseBinaryExpr)
	p.registerInfix(lexer.OR, p.parseBinaryExpr)
	p.registerInfix(lexer.EQ, p.parseBinaryExpr)
	p.registerInfix(lexer.NOT_EQ, p.parseBinaryExpr)
	p.registerInfix(lexer.LT, p.parseBinaryExpr)
	p.registerInfix(lexer.LE, p.parseBinaryExpr)
	p.registerInfix(lexer.GT, p.parseBinaryExpr)
	p.registerInfix(lexer.GE, p.parseBinaryExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpr)
	p.registerInfix(lexer.DOT, p.parseFieldOrTupleIndexExpr)
	p.registerInfix(lexer.DOT_DOT, p.parseRangeExpr)
	p.registerInfix(lexer.DOT_DOT_DOT, p.parseRangeExpr)
	p.registerInfix(lexer.LBRACE, p.parseStructLitSuffix)
	p.registerInfix(lexer.AS, p.parseCastExpr)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t lexer.TokenType, fn prefixParseFn) { p.prefixFns[t] = fn }
func (p *Parser) registerInfix(t lexer.TokenType, fn infixParseFn)   { p.infixFns[t] = fn }

// Errors returns all recoverable parse errors accumulated so far.
func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curTok.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekTok.Type == t }

func (p *Parser) peekPrecedence() int {
	if p.peekTok.Type == lexer.LBRACE && p.noStructLit {
		return precLowest
	}
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return precLowest
}

// withNoStructLit parses fn with struct-literal suffix parsing
// suppressed, restoring the prior setting afterward (nesting-safe).
func (p *Parser) withNoStructLit(fn func() ast.Expr) ast.Expr {
	prev := p.noStructLit
	p.noStructLit = true
	defer func() { p.noStructLit = prev }()
	return fn()
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return precLowest
}

// expect consumes the current token if it matches t, else records an
// error and leaves the stream positioned at the offending token.
func (p *Parser) expect(t lexer.TokenType, what string) bool {
	if p.curIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(diag.CodeParserUnexpectedToken, p.curTok.Span,
		"expected %s, found %q", what, p.curTok.Raw)
	return false
}

// requireCur reports an error if the current token doesn't match t,
// without advancing. Used at the close of a bracketed production
// (call args, array/tuple literals, index) where the production must
// finish with curTok resting ON its last token so the enclosing
// Pratt loop sees the right lookahead in peekTok.
func (p *Parser) requireCur(t lexer.TokenType, what string) bool {
	if p.curIs(t) {
		return true
	}
	p.errorf(diag.CodeParserUnexpectedToken, p.curTok.Span,
		"expected %s, found %q", what, p.curTok.Raw)
	return false
}

func (p *Parser) errorf(code diag.Code, span lexer.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{
		Message: sprintf(format, args...),
		Span:    span,
		Code:    code,
	})
}

func mergeSpan(a, b lexer.Span) lexer.Span {
	return lexer.Span{Filename: a.Filename, Line: a.Line, Column: a.Column, Start: a.Start, End: b.End}
}

// ParseFile parses a whole source file into a File AST node. Parsing
// never aborts on a recoverable error: it synchronizes at the next
// top-level declaration keyword and continues, so Errors() can report
// every problem found in one pass.
func (p *Parser) ParseFile() *ast.File {
	start := p.curTok.Span
	var decls []ast.Decl
	for !p.curIs(lexer.EOF) {
		before := p.curTok
		d := p.parseDecl()
		if d != nil {
			decls = append(decls, d)
		}
		if p.curTok == before {
			// Guarantee forward progress even if a production failed
			// to consume anything.
			p.nextToken()
		}
	}
	end := start
	if len(decls) > 0 {
		end = decls[len(decls)-1].Span()
	}
	return ast.NewFile(decls, mergeSpan(start, end))
}
