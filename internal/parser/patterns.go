package parser

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
)

// parsePattern parses a single pattern with curTok on its first
// token; on return curTok rests on the pattern's last token.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curTok.Type {
	case lexer.UNDER:
		return ast.NewWildcardPattern(p.curTok.Span)
	case lexer.MUT:
		start := p.curTok.Span
		p.nextToken() // consume mut
		name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
		return ast.NewIdentPattern(name, true, mergeSpan(start, p.curTok.Span))
	case lexer.LPAREN:
		return p.parseTuplePattern()
	case lexer.MINUS, lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE:
		return p.parseValuePattern()
	case lexer.IDENT:
		return p.parseIdentPathEnumOrStructPattern()
	default:
		p.errorf(diag.CodeParserBadPattern, p.curTok.Span, "unexpected token %q in pattern", p.curTok.Raw)
		return ast.NewWildcardPattern(p.curTok.Span)
	}
}

func (p *Parser) parseValuePattern() ast.Pattern {
	start := p.curTok.Span
	e := p.parseExpr(precPrefix)
	end := start
	if e != nil {
		end = e.Span()
	}
	return ast.NewValuePattern(e, mergeSpan(start, end))
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.curTok.Span
	p.nextToken() // consume (
	var elems []ast.Pattern
	if !p.curIs(lexer.RPAREN) {
		elems = append(elems, p.parsePattern())
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			elems = append(elems, p.parsePattern())
		}
		p.nextToken()
	}
	p.requireCur(lexer.RPAREN, "')'")
	return ast.NewTuplePattern(elems, mergeSpan(start, p.curTok.Span))
}

// parseIdentPathEnumOrStructPattern disambiguates, from a leading
// identifier or path, between a plain binding ("x"), an enum variant
// pattern ("Color::Red", "Shape::Circle(r)"), and a struct pattern
// ("Point{x, y}").
func (p *Parser) parseIdentPathEnumOrStructPattern() ast.Pattern {
	start := p.curTok.Span
	name := ast.Expr(ast.NewIdent(p.curTok.Raw, p.curTok.Span))

	for p.peekIs(lexer.DOUBLE_COLON) {
		p.nextToken() // ::
		p.nextToken() // ident
		switch n := name.(type) {
		case *ast.Ident:
			name = ast.NewPath([]*ast.Ident{n, ast.NewIdent(p.curTok.Raw, p.curTok.Span)}, mergeSpan(start, p.curTok.Span))
		case *ast.Path:
			name = ast.NewPath(append(append([]*ast.Ident{}, n.Parts...), ast.NewIdent(p.curTok.Raw, p.curTok.Span)), mergeSpan(start, p.curTok.Span))
		}
	}

	if path, ok := name.(*ast.Path); ok {
		variant := path.Parts[len(path.Parts)-1]
		enumName := ast.Expr(ast.NewPath(path.Parts[:len(path.Parts)-1], start))
		if len(path.Parts) == 2 {
			enumName = path.Parts[0]
		}
		var payload []ast.Pattern
		end := p.curTok.Span
		if p.peekIs(lexer.LPAREN) {
			p.nextToken() // (
			p.nextToken()
			if !p.curIs(lexer.RPAREN) {
				payload = append(payload, p.parsePattern())
				for p.peekIs(lexer.COMMA) {
					p.nextToken()
					p.nextToken()
					payload = append(payload, p.parsePattern())
				}
				p.nextToken()
			}
			p.requireCur(lexer.RPAREN, "')'")
			end = p.curTok.Span
		}
		return ast.NewEnumPattern(enumName, variant, payload, mergeSpan(start, end))
	}

	if p.peekIs(lexer.LBRACE) {
		return p.parseStructPatternFields(name, start)
	}

	ident := name.(*ast.Ident)
	return ast.NewIdentPattern(ident, false, ident.Span())
}

func (p *Parser) parseStructPatternFields(name ast.Expr, start lexer.Span) ast.Pattern {
	p.nextToken() // {
	p.nextToken()
	var fields []ast.StructFieldPattern
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fieldName := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
		var value ast.Pattern
		if p.peekIs(lexer.COLON) {
			p.nextToken() // :
			p.nextToken()
			value = p.parsePattern()
		}
		fields = append(fields, ast.StructFieldPattern{Name: fieldName, Value: value})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
			break
		}
	}
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewStructPattern(name, fields, mergeSpan(start, p.curTok.Span))
}
