package parser

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
)

// parseTypeExpr parses a type annotation with curTok on its first
// token; on return curTok rests on the type's last token.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.curTok.Type {
	case lexer.STAR:
		return p.parsePointerType()
	case lexer.AMPERSAND:
		return p.parsePointerType()
	case lexer.LBRACKET:
		return p.parseArrayOrSliceType()
	case lexer.LPAREN:
		return p.parseTupleOrFunctionType()
	case lexer.IDENT:
		return p.parseNamedType()
	default:
		p.errorf(diag.CodeParserBadTypeSig, p.curTok.Span, "unexpected token %q in type", p.curTok.Raw)
		return ast.NewNamedType(ast.NewIdent("<error>", p.curTok.Span), p.curTok.Span)
	}
}

func (p *Parser) parsePointerType() ast.TypeExpr {
	start := p.curTok.Span
	mut := false
	p.nextToken() // consume * or &
	if p.curIs(lexer.MUT) {
		mut = true
		p.nextToken()
	}
	elem := p.parseTypeExpr()
	return ast.NewPointerType(elem, mut, mergeSpan(start, elem.Span()))
}

func (p *Parser) parseArrayOrSliceType() ast.TypeExpr {
	start := p.curTok.Span
	p.nextToken() // consume [
	if p.curIs(lexer.RBRACKET) {
		p.nextToken()
		elem := p.parseTypeExpr()
		return ast.NewSliceType(elem, mergeSpan(start, elem.Span()))
	}
	count := p.parseExpr(precLowest)
	p.nextToken()
	p.requireCur(lexer.RBRACKET, "']'")
	p.nextToken()
	elem := p.parseTypeExpr()
	return ast.NewArrayType(elem, count, mergeSpan(start, elem.Span()))
}

// parseTupleOrFunctionType parses "(" TypeExpr,... ")" ["->" TypeExpr].
// Without an arrow it's a tuple type; with one it's a function type.
func (p *Parser) parseTupleOrFunctionType() ast.TypeExpr {
	start := p.curTok.Span
	p.nextToken() // consume (
	var elems []ast.TypeExpr
	if !p.curIs(lexer.RPAREN) {
		elems = append(elems, p.parseTypeExpr())
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			elems = append(elems, p.parseTypeExpr())
		}
		p.nextToken()
	}
	p.requireCur(lexer.RPAREN, "')'")
	end := p.curTok.Span

	if p.peekIs(lexer.ARROW) {
		p.nextToken() // ->
		p.nextToken()
		ret := p.parseTypeExpr()
		return ast.NewFunctionType(elems, ret, mergeSpan(start, ret.Span()))
	}
	return ast.NewTupleType(elems, mergeSpan(start, end))
}

func (p *Parser) parseNamedType() ast.TypeExpr {
	start := p.curTok.Span
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	return ast.NewNamedType(name, mergeSpan(start, p.curTok.Span))
}
