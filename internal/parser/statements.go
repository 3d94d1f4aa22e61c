package parser

import (
	"github.com/foxlang/fox/internal/ast"
	"github.com/foxlang/fox/internal/lexer"
)

// parseBlock parses "{" stmt* "}". curTok must be LBRACE on entry;
// on return curTok rests on the closing RBRACE.
func (p *Parser) parseBlock() *ast.Block {
	start := p.curTok.Span
	p.nextToken() // consume {

	var stmts []ast.Stmt
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		before := p.curTok
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.nextToken()
		if p.curTok == before {
			p.nextToken()
		}
	}
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewBlock(stmts, mergeSpan(start, p.curTok.Span))
}

// parseStmt parses one statement with curTok on its first token; on
// return curTok rests on the statement's last token (mirroring
// expression parsing so the caller's nextToken() advances cleanly).
func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok.Type {
	case lexer.LET, lexer.CONST:
		return p.parseLetStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		span := p.curTok.Span
		if p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
			span = mergeSpan(span, p.curTok.Span)
		}
		return ast.NewBreakStmt(span)
	case lexer.CONTINUE:
		span := p.curTok.Span
		if p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
			span = mergeSpan(span, p.curTok.Span)
		}
		return ast.NewContinueStmt(span)
	case lexer.DEFER:
		return p.parseDeferStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.IF:
		return p.parseIfExpr()
	case lexer.MATCH:
		return p.parseMatchExpr()
	case lexer.LBRACE:
		b := p.parseBlock()
		return ast.NewBlockStmt(b, b.Span())
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	start := p.curTok.Span
	e := p.parseExpr(precLowest)
	end := start
	if e != nil {
		end = e.Span()
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		end = p.curTok.Span
	}
	return ast.NewExprStmt(e, mergeSpan(start, end))
}

// parseLetStmt parses "let"/"const" pattern (":" type)? ("=" (expr |
// "noinit"))? ";".
func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.curTok.Span
	isConst := p.curIs(lexer.CONST)
	p.nextToken() // consume let/const

	pattern := p.parsePattern()

	var typ ast.TypeExpr
	if p.peekIs(lexer.COLON) {
		p.nextToken() // :
		p.nextToken() // first token of type
		typ = p.parseTypeExpr()
	}

	var value ast.Expr
	noInit := false
	if p.peekIs(lexer.ASSIGN) {
		p.nextToken() // =
		p.nextToken() // first token of value
		if p.curIs(lexer.NOINIT) {
			noInit = true
		} else {
			value = p.parseExpr(precLowest)
		}
	}

	end := p.curTok.Span
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		end = p.curTok.Span
	}
	return ast.NewLetStmt(isConst, pattern, typ, value, noInit, mergeSpan(start, end))
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.curTok.Span
	var value ast.Expr
	if !p.peekIs(lexer.SEMICOLON) && !p.peekIs(lexer.RBRACE) {
		p.nextToken()
		value = p.parseExpr(precLowest)
	}
	end := start
	if value != nil {
		end = value.Span()
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		end = p.curTok.Span
	}
	return ast.NewReturnStmt(value, mergeSpan(start, end))
}

// parseDeferStmt parses "defer" call_expr ";".
func (p *Parser) parseDeferStmt() ast.Stmt {
	start := p.curTok.Span
	p.nextToken() // consume defer
	call := p.parseExpr(precLowest)
	end := start
	if call != nil {
		end = call.Span()
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		end = p.curTok.Span
	}
	return ast.NewDeferStmt(call, mergeSpan(start, end))
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.curTok.Span
	p.nextToken() // consume while
	cond := p.withNoStructLit(func() ast.Expr { return p.parseExpr(precLowest) })
	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewWhileStmt(cond, ast.NewBlock(nil, p.curTok.Span), mergeSpan(start, p.curTok.Span))
	}
	body := p.parseBlock()
	return ast.NewWhileStmt(cond, body, mergeSpan(start, body.Span()))
}

// parseForStmt parses both for-forms: the array/slice
// form "for pat[, counter] in iterable { ... }" and the range form
// "for pat in a..b { ... }" / "for pat in a...b { ... }".
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.curTok.Span
	p.nextToken() // consume for

	pattern := p.parsePattern()

	var counter *ast.Ident
	if p.peekIs(lexer.COMMA) {
		p.nextToken() // ,
		p.nextToken() // ident
		counter = ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	}

	p.nextToken() // consume in (or error recovery lands here)
	p.expect(lexer.IN, "'in'")

	iter := p.withNoStructLit(func() ast.Expr { return p.parseExpr(precLowest) })
	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewForStmt(pattern, counter, iter, nil, ast.NewBlock(nil, p.curTok.Span), mergeSpan(start, p.curTok.Span))
	}
	body := p.parseBlock()

	if rng, ok := iter.(*ast.RangeExpr); ok {
		return ast.NewForStmt(pattern, counter, nil, rng, body, mergeSpan(start, body.Span()))
	}
	return ast.NewForStmt(pattern, counter, iter, nil, body, mergeSpan(start, body.Span()))
}

// parseIfExpr parses "if" cond "{" ... "}" ("else" ("if" ... | "{" ... "}"))?.
func (p *Parser) parseIfExpr() *ast.IfExpr {
	start := p.curTok.Span
	p.nextToken() // consume if
	cond := p.withNoStructLit(func() ast.Expr { return p.parseExpr(precLowest) })
	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewIfExpr(cond, ast.NewBlock(nil, p.curTok.Span), nil, mergeSpan(start, p.curTok.Span))
	}
	then := p.parseBlock()

	var els ast.Node
	end := then.Span()
	if p.peekIs(lexer.ELSE) {
		p.nextToken() // else
		if p.peekIs(lexer.IF) {
			p.nextToken()
			elsIf := p.parseIfExpr()
			els = elsIf
			end = elsIf.Span()
		} else {
			p.nextToken()
			if p.requireCur(lexer.LBRACE, "'{'") {
				elseBlock := p.parseBlock()
				els = elseBlock
				end = elseBlock.Span()
			}
		}
	}
	return ast.NewIfExpr(cond, then, els, mergeSpan(start, end))
}

func (p *Parser) parseIfExprAsExpr() ast.Expr { return p.parseIfExpr() }

// parseMatchExpr parses "match" subject "{" (pattern "=>" "{" ... "}")* "}".
func (p *Parser) parseMatchExpr() *ast.MatchExpr {
	start := p.curTok.Span
	p.nextToken() // consume match
	subject := p.withNoStructLit(func() ast.Expr { return p.parseExpr(precLowest) })
	p.nextToken()
	if !p.requireCur(lexer.LBRACE, "'{'") {
		return ast.NewMatchExpr(subject, nil, mergeSpan(start, p.curTok.Span))
	}
	p.nextToken() // consume {

	var arms []ast.MatchArm
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		pat := p.parsePattern()
		p.nextToken()
		p.expect(lexer.FATARROW, "'=>'")
		if !p.requireCur(lexer.LBRACE, "'{' starting match arm body") {
			break
		}
		body := p.parseBlock()
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})

		p.nextToken()
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	end := p.curTok.Span
	p.requireCur(lexer.RBRACE, "'}'")
	return ast.NewMatchExpr(subject, arms, mergeSpan(start, end))
}

func (p *Parser) parseMatchExprAsExpr() ast.Expr { return p.parseMatchExpr() }
