package parser

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
)

// parseExpr is the Pratt entry point: parse a prefix production, then
// repeatedly fold in infix/postfix productions while the next token
// binds tighter than minPrec. Every prefix/infix production must
// leave curTok resting on the last token it consumed, so that peekTok
// is always the correct one-token lookahead for this loop.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	prefix, ok := p.prefixFns[p.curTok.Type]
	if !ok {
		p.errorf(diag.CodeParserUnexpectedToken, p.curTok.Span,
			"unexpected token %q in expression", p.curTok.Raw)
		return nil
	}
	left := prefix()

	for !p.peekIs(lexer.SEMICOLON) && minPrec < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekTok.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentOrPathExpr() ast.Expr {
	start := p.curTok.Span
	first := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	if !p.peekIs(lexer.DOUBLE_COLON) {
		return first
	}
	parts := []*ast.Ident{first}
	for p.peekIs(lexer.DOUBLE_COLON) {
		p.nextToken() // curTok = ::
		p.nextToken() // curTok = should be IDENT
		if !p.requireCur(lexer.IDENT, "identifier after '::'") {
			break
		}
		parts = append(parts, ast.NewIdent(p.curTok.Raw, p.curTok.Span))
	}
	return ast.NewPath(parts, mergeSpan(start, parts[len(parts)-1].Span()))
}

func (p *Parser) parseIntLit() ast.Expr   { return ast.NewIntLit(p.curTok.Raw, p.curTok.Span) }
func (p *Parser) parseFloatLit() ast.Expr { return ast.NewFloatLit(p.curTok.Raw, p.curTok.Span) }
func (p *Parser) parseStringLit() ast.Expr {
	return ast.NewStringLit(p.curTok.Value, p.curTok.Span)
}

func (p *Parser) parseCharLit() ast.Expr {
	r := lexer.DecodeRune(p.curTok.Value)
	return ast.NewCharLit(r, p.curTok.Span)
}

func (p *Parser) parseBoolLit() ast.Expr {
	return ast.NewBoolLit(p.curTok.Type == lexer.TRUE, p.curTok.Span)
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	op := p.curTok.Type
	start := p.curTok.Span
	p.nextToken()
	operand := p.parseExpr(precPrefix)
	end := start
	if operand != nil {
		end = operand.Span()
	}
	return ast.NewUnaryExpr(op, operand, mergeSpan(start, end))
}

// parseGroupedOrTupleExpr handles "(" expr ")" and "(" expr "," ... ")"
// tuple literals; "()" is the empty tuple. Trailing commas are not
// accepted.
func (p *Parser) parseGroupedOrTupleExpr() ast.Expr {
	start := p.curTok.Span
	p.nextToken() // consume (

	if p.curIs(lexer.RPAREN) {
		return ast.NewTupleLit(nil, mergeSpan(start, p.curTok.Span))
	}

	first := p.parseExpr(precLowest)
	if !p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.requireCur(lexer.RPAREN, "')'")
		return first
	}

	elems := []ast.Expr{first}
	for p.peekIs(lexer.COMMA) {
		p.nextToken() // curTok = ,
		p.nextToken() // curTok = first token of next elem
		elems = append(elems, p.parseExpr(precLowest))
	}
	p.nextToken()
	p.requireCur(lexer.RPAREN, "')'")
	return ast.NewTupleLit(elems, mergeSpan(start, p.curTok.Span))
}

// parseArrayLit parses the bare "[" expr "," ... "]" element-list form
// and the typed forms "[N]Type { ... }" / "[]Type { ... }", where the
// bracket prefix carries a declared count (or nothing) instead of
// elements. Trailing commas are not accepted in the bare form.
func (p *Parser) parseArrayLit() ast.Expr {
	start := p.curTok.Span
	p.nextToken() // consume [

	if p.curIs(lexer.RBRACKET) {
		if isTypeStart(p.peekTok.Type) {
			return p.parseTypedArrayLit(start, nil)
		}
		return ast.NewArrayLit(nil, nil, nil, mergeSpan(start, p.curTok.Span))
	}
	if p.curIs(lexer.INT) && p.peekIs(lexer.RBRACKET) {
		count := ast.NewIntLit(p.curTok.Raw, p.curTok.Span)
		p.nextToken() // curTok = ]
		if isTypeStart(p.peekTok.Type) {
			return p.parseTypedArrayLit(start, count)
		}
		// Plain one-element "[N]" literal after all.
		return ast.NewArrayLit(nil, nil, []ast.Expr{count}, mergeSpan(start, p.curTok.Span))
	}

	var elems []ast.Expr
	elems = append(elems, p.parseExpr(precLowest))
	for p.peekIs(lexer.COMMA) {
		p.nextToken() // curTok = ,
		p.nextToken() // curTok = first token of next elem
		elems = append(elems, p.parseExpr(precLowest))
	}
	p.nextToken()
	p.requireCur(lexer.RBRACKET, "']'")
	return ast.NewArrayLit(nil, nil, elems, mergeSpan(start, p.curTok.Span))
}

func isTypeStart(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENT, lexer.STAR, lexer.AMPERSAND, lexer.LBRACKET, lexer.LPAREN:
		return true
	default:
		return false
	}
}

// parseTypedArrayLit finishes a "[N]Type { ... }" / "[]Type { ... }"
// literal with curTok on the closing bracket of the count prefix.
// Trailing commas are accepted.
func (p *Parser) parseTypedArrayLit(start lexer.Span, count ast.Expr) ast.Expr {
	p.nextToken() // first token of the element type
	elemType := p.parseTypeExpr()
	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewArrayLit(elemType, count, nil, mergeSpan(start, p.curTok.Span))
	}
	p.nextToken() // consume {

	var elems []ast.Expr
	if !p.curIs(lexer.RBRACE) {
		elems = append(elems, p.parseExpr(precLowest))
		for p.peekIs(lexer.COMMA) {
			p.nextToken() // ,
			p.nextToken()
			if p.curIs(lexer.RBRACE) {
				return ast.NewArrayLit(elemType, count, elems, mergeSpan(start, p.curTok.Span))
			}
			elems = append(elems, p.parseExpr(precLowest))
		}
		p.nextToken()
	}
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewArrayLit(elemType, count, elems, mergeSpan(start, p.curTok.Span))
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Type
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpr(prec)
	span := left.Span()
	if right != nil {
		span = mergeSpan(left.Span(), right.Span())
	}
	return ast.NewBinaryExpr(op, left, right, span)
}

func (p *Parser) parseAssignExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Type
	p.nextToken()
	value := p.parseExpr(precLowest)
	span := left.Span()
	if value != nil {
		span = mergeSpan(left.Span(), value.Span())
	}
	return ast.NewAssignExpr(op, left, value, span)
}

func (p *Parser) parseRangeExpr(left ast.Expr) ast.Expr {
	inclusive := p.curIs(lexer.DOT_DOT_DOT)
	p.nextToken()
	right := p.parseExpr(precComparison)
	span := left.Span()
	if right != nil {
		span = mergeSpan(left.Span(), right.Span())
	}
	return ast.NewRangeExpr(left, right, inclusive, span)
}

// parseCallExpr parses "(" arg "," ... ")" following a callee.
// Trailing commas are not accepted.
func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	start := callee.Span()
	p.nextToken() // consume (
	var args []ast.Expr
	if !p.curIs(lexer.RPAREN) {
		args = append(args, p.parseExpr(precLowest))
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			args = append(args, p.parseExpr(precLowest))
		}
		p.nextToken()
	}
	p.requireCur(lexer.RPAREN, "')'")
	return ast.NewCallExpr(callee, args, mergeSpan(start, p.curTok.Span))
}

// parseCastExpr parses the "as" postfix conversion operator.
func (p *Parser) parseCastExpr(left ast.Expr) ast.Expr {
	start := left.Span()
	p.nextToken() // consume the type's first token
	target := p.parseTypeExpr()
	end := start
	if target != nil {
		end = target.Span()
	}
	return ast.NewCastExpr(left, target, mergeSpan(start, end))
}

func (p *Parser) parseIndexExpr(target ast.Expr) ast.Expr {
	start := target.Span()
	p.nextToken() // consume [
	idx := p.parseExpr(precLowest)
	p.nextToken()
	p.requireCur(lexer.RBRACKET, "']'")
	return ast.NewIndexExpr(target, idx, mergeSpan(start, p.curTok.Span))
}

// parseStructLitSuffix parses the "{" field ":" value, ... "}" suffix
// that turns a preceding Ident/Path expression into a struct literal.
// Trailing commas are accepted.
func (p *Parser) parseStructLitSuffix(name ast.Expr) ast.Expr {
	start := name.Span()
	p.nextToken() // consume {

	var fields []ast.StructLitField
	if !p.curIs(lexer.RBRACE) {
		fields = append(fields, p.parseStructLitField())
		for p.peekIs(lexer.COMMA) {
			p.nextToken() // ,
			p.nextToken()
			if p.curIs(lexer.RBRACE) {
				// Trailing comma: curTok already rests on the closing brace.
				return ast.NewStructLit(name, fields, mergeSpan(start, p.curTok.Span))
			}
			fields = append(fields, p.parseStructLitField())
		}
		p.nextToken()
	}
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewStructLit(name, fields, mergeSpan(start, p.curTok.Span))
}

func (p *Parser) parseStructLitField() ast.StructLitField {
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	p.nextToken() // :
	p.expect(lexer.COLON, "':'")
	value := p.parseExpr(precLowest)
	return ast.StructLitField{Name: name, Value: value}
}

func (p *Parser) parseFieldOrTupleIndexExpr(target ast.Expr) ast.Expr {
	start := target.Span()
	p.nextToken() // consume .
	if p.curIs(lexer.INT) {
		idx := 0
		for _, c := range p.curTok.Raw {
			idx = idx*10 + int(c-'0')
		}
		return ast.NewTupleFieldAccess(target, idx, mergeSpan(start, p.curTok.Span))
	}
	if !p.curIs(lexer.IDENT) {
		p.errorf(diag.CodeParserUnexpectedToken, p.curTok.Span,
			"expected field name, found %q", p.curTok.Raw)
		return target
	}
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	return ast.NewFieldAccess(target, name, mergeSpan(start, p.curTok.Span))
}
