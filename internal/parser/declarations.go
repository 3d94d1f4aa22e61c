package parser

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
)

// parseDecl parses one top-level declaration with curTok on its first
// token; on return curTok rests past the declaration (positioned on
// the first token of whatever follows), matching ParseFile's loop
// convention of not calling nextToken() again itself.
func (p *Parser) parseDecl() ast.Decl {
	switch p.curTok.Type {
	case lexer.FN:
		d := p.parseFnDecl()
		p.nextToken()
		return d
	case lexer.STRUCT:
		d := p.parseStructDecl()
		p.nextToken()
		return d
	case lexer.ENUM:
		d := p.parseEnumDecl()
		p.nextToken()
		return d
	case lexer.IMPL:
		d := p.parseImplDecl()
		p.nextToken()
		return d
	case lexer.TRAIT:
		d := p.parseTraitDecl()
		p.nextToken()
		return d
	case lexer.CONST:
		d := p.parseLetStmt()
		p.nextToken()
		ls, _ := d.(*ast.LetStmt)
		return ls
	default:
		p.errorf(diag.CodeParserUnexpectedToken, p.curTok.Span,
			"expected a declaration, found %q", p.curTok.Raw)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseGenericParams() []ast.GenericParam {
	if !p.peekIs(lexer.LT) {
		return nil
	}
	p.nextToken() // <
	p.nextToken()
	var params []ast.GenericParam
	for !p.curIs(lexer.GT) && !p.curIs(lexer.EOF) {
		params = append(params, ast.GenericParam{Name: ast.NewIdent(p.curTok.Raw, p.curTok.Span)})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
			break
		}
	}
	p.requireCur(lexer.GT, "'>'")
	return params
}

// parseParams parses "(" (ident ":" type | "..." ident ":" type),* ")"
// with curTok on "(" on entry; on return curTok rests on ")".
func (p *Parser) parseParams() (params []*ast.Param, varargs bool) {
	p.nextToken() // consume (
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DOT_DOT_DOT) {
			varargs = true
			p.nextToken()
		}
		name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
		var typ ast.TypeExpr
		if p.peekIs(lexer.COLON) {
			p.nextToken() // :
			p.nextToken()
			typ = p.parseTypeExpr()
		}
		params = append(params, &ast.Param{Name: name, Type: typ})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
			break
		}
	}
	p.requireCur(lexer.RPAREN, "')'")
	return params, varargs
}

// parseFnDecl parses "fn" name ["<" generics ">"] "(" params ")" ["->" type] block.
func (p *Parser) parseFnDecl() *ast.FnDecl {
	start := p.curTok.Span
	p.nextToken() // consume fn
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)

	typeParams := p.parseGenericParams()

	p.nextToken()
	var params []*ast.Param
	var varargs bool
	if p.requireCur(lexer.LPAREN, "'('") {
		params, varargs = p.parseParams()
	}

	var ret ast.TypeExpr
	if p.peekIs(lexer.ARROW) {
		p.nextToken() // ->
		p.nextToken()
		ret = p.parseTypeExpr()
	}

	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewFnDecl(name, typeParams, params, ret, varargs, ast.NewBlock(nil, p.curTok.Span), mergeSpan(start, p.curTok.Span))
	}
	body := p.parseBlock()
	return ast.NewFnDecl(name, typeParams, params, ret, varargs, body, mergeSpan(start, body.Span()))
}

// parseStructDecl parses "struct" name ["<" generics ">"] "{" (name ":" type),* "}".
func (p *Parser) parseStructDecl() *ast.StructDecl {
	start := p.curTok.Span
	p.nextToken() // consume struct
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	typeParams := p.parseGenericParams()

	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewStructDecl(name, typeParams, nil, mergeSpan(start, p.curTok.Span))
	}
	p.nextToken() // consume {

	var fields []ast.FieldDecl
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fname := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
		p.nextToken()
		p.expect(lexer.COLON, "':'")
		ftype := p.parseTypeExpr()
		fields = append(fields, ast.FieldDecl{Name: fname, Type: ftype})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
			break
		}
	}
	end := p.curTok.Span
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewStructDecl(name, typeParams, fields, mergeSpan(start, end))
}

// parseEnumDecl parses "enum" name ["<" generics ">"] "{" (name ["(" type,* ")"]),* "}".
func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	start := p.curTok.Span
	p.nextToken() // consume enum
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	typeParams := p.parseGenericParams()

	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewEnumDecl(name, typeParams, nil, mergeSpan(start, p.curTok.Span))
	}
	p.nextToken() // consume {

	var variants []ast.VariantDecl
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		vname := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
		var payload []ast.TypeExpr
		if p.peekIs(lexer.LPAREN) {
			p.nextToken() // (
			p.nextToken()
			if !p.curIs(lexer.RPAREN) {
				payload = append(payload, p.parseTypeExpr())
				for p.peekIs(lexer.COMMA) {
					p.nextToken()
					p.nextToken()
					payload = append(payload, p.parseTypeExpr())
				}
				p.nextToken()
			}
			p.requireCur(lexer.RPAREN, "')'")
		}
		variants = append(variants, ast.VariantDecl{Name: vname, Payload: payload})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
			break
		}
	}
	end := p.curTok.Span
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewEnumDecl(name, typeParams, variants, mergeSpan(start, end))
}

// parseImplDecl parses "impl" [Trait "for"] Target "{" fnDecl* "}"
func (p *Parser) parseImplDecl() *ast.ImplDecl {
	start := p.curTok.Span
	p.nextToken() // consume impl

	first := p.parseTypeExpr()
	var trait, target ast.TypeExpr
	if p.peekIs(lexer.FOR) {
		trait = first
		p.nextToken() // for
		p.nextToken()
		target = p.parseTypeExpr()
	} else {
		target = first
	}

	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewImplDecl(trait, target, nil, mergeSpan(start, p.curTok.Span))
	}
	p.nextToken() // consume {

	var methods []*ast.FnDecl
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.FN) {
			p.errorf(diag.CodeParserUnexpectedToken, p.curTok.Span, "expected method declaration, found %q", p.curTok.Raw)
			p.nextToken()
			continue
		}
		methods = append(methods, p.parseFnDecl())
		p.nextToken()
	}
	end := p.curTok.Span
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewImplDecl(trait, target, methods, mergeSpan(start, end))
}

// parseTraitDecl registers a trait by name only; trait bodies are
// parsed and discarded.
func (p *Parser) parseTraitDecl() *ast.TraitDecl {
	start := p.curTok.Span
	p.nextToken() // consume trait
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)

	p.nextToken()
	if p.curIs(lexer.LBRACE) {
		depth := 1
		p.nextToken()
		for depth > 0 && !p.curIs(lexer.EOF) {
			if p.curIs(lexer.LBRACE) {
				depth++
			} else if p.curIs(lexer.RBRACE) {
				depth--
			}
			if depth > 0 {
				p.nextToken()
			}
		}
	}
	return ast.NewTraitDecl(name, mergeSpan(start, p.curTok.Span))
}
