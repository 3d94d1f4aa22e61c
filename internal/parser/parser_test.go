package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foxlang/fox/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.File {
	t.Helper()
	p := New(src, "test.fox")
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "unexpected parse errors: %+v", p.Errors())
	return file
}

func TestParseFnDeclWithArithmetic(t *testing.T) {
	file := parseOK(t, `fn add(a: int, b: int) -> int { return a + b; }`)
	require.Len(t, file.Decls, 1)
	fn, ok := file.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	require.Len(t, fn.Body.Stmts, 1)
}

func TestParseStructDeclAndLiteral(t *testing.T) {
	file := parseOK(t, `
struct Point { x: int, y: int }
fn make() -> Point {
	let p = Point{x: 1, y: 2};
	return p;
}`)
	require.Len(t, file.Decls, 2)
	sd, ok := file.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Len(t, sd.Fields, 2)
}

func TestParseEnumDeclWithPayload(t *testing.T) {
	file := parseOK(t, `
enum Shape {
	Circle(int),
	Point,
}`)
	ed, ok := file.Decls[0].(*ast.EnumDecl)
	require.True(t, ok)
	require.Len(t, ed.Variants, 2)
	require.Len(t, ed.Variants[0].Payload, 1)
	require.Len(t, ed.Variants[1].Payload, 0)
}

func TestParseMatchWithPayloadBinding(t *testing.T) {
	file := parseOK(t, `
fn area(s: Shape) -> int {
	match s {
		Shape::Circle(r) => { return r * r; }
		Shape::Point => { return 0; }
	}
}`)
	fn := file.Decls[0].(*ast.FnDecl)
	me, ok := fn.Body.Stmts[0].(*ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, me.Arms, 2)
	enumPat, ok := me.Arms[0].Pattern.(*ast.EnumPattern)
	require.True(t, ok)
	require.Equal(t, "Circle", enumPat.Variant.Name)
	require.Len(t, enumPat.Payload, 1)
}

func TestParseForRangeAndArrayForms(t *testing.T) {
	file := parseOK(t, `
fn sum(xs: [5]int) -> int {
	let total = 0;
	for x in xs { total += x; }
	for i in 0..5 { total += i; }
	return total;
}`)
	fn := file.Decls[0].(*ast.FnDecl)
	forArr, ok := fn.Body.Stmts[1].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, forArr.Iterable)
	require.Nil(t, forArr.Range)

	forRange, ok := fn.Body.Stmts[2].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, forRange.Range)
	require.False(t, forRange.Range.Inclusive)
}

func TestParseTypedArrayLiteral(t *testing.T) {
	file := parseOK(t, `fn f() { let xs = [3]int { 10, 20, 30 }; }`)
	fn := file.Decls[0].(*ast.FnDecl)
	let, ok := fn.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	arr, ok := let.Value.(*ast.ArrayLit)
	require.True(t, ok)
	require.NotNil(t, arr.Count)
	require.NotNil(t, arr.ElemType)
	require.Len(t, arr.Elements, 3)
}

func TestParseEmptyTypedArrayLiteral(t *testing.T) {
	file := parseOK(t, `fn f() { let xs = []int {}; }`)
	fn := file.Decls[0].(*ast.FnDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	arr, ok := let.Value.(*ast.ArrayLit)
	require.True(t, ok)
	require.Nil(t, arr.Count)
	require.NotNil(t, arr.ElemType)
	require.Empty(t, arr.Elements)
}

func TestParseStructLiteralTrailingComma(t *testing.T) {
	file := parseOK(t, `
struct Point { x: int, y: int }
fn f() { let p = Point{x: 1, y: 2,}; }`)
	fn := file.Decls[1].(*ast.FnDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	lit, ok := let.Value.(*ast.StructLit)
	require.True(t, ok)
	require.Len(t, lit.Fields, 2)
}

func TestParseCompoundAssignment(t *testing.T) {
	file := parseOK(t, `fn f() { let mut x = 0; x += 1; }`)
	fn := file.Decls[0].(*ast.FnDecl)
	es, ok := fn.Body.Stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := es.Expr.(*ast.AssignExpr)
	require.True(t, ok)
	require.Equal(t, "+=", string(assign.Op))
}

func TestParseDeferStatement(t *testing.T) {
	file := parseOK(t, `fn f() { defer close(); }`)
	fn := file.Decls[0].(*ast.FnDecl)
	_, ok := fn.Body.Stmts[0].(*ast.DeferStmt)
	require.True(t, ok)
}

func TestParseErrorRecoveryReportsAndContinues(t *testing.T) {
	p := New(`fn bad( { } fn good() -> int { return 1; }`, "test.fox")
	file := p.ParseFile()
	require.NotEmpty(t, p.Errors())
	require.NotEmpty(t, file.Decls)
}
