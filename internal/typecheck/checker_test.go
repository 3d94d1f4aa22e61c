package typecheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foxlang/fox/internal/parser"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typedast"
)

func checkOK(t *testing.T, src string) *typedast.Program {
	t.Helper()
	p := parser.New(src, "test.fox")
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "unexpected parse errors: %+v", p.Errors())

	c := NewChecker(registry.New(), "test")
	prog := c.CheckFile(file)
	require.Empty(t, c.Errors(), "unexpected type errors: %+v", c.Errors())
	return prog
}

func checkErr(t *testing.T, src string) []string {
	t.Helper()
	p := parser.New(src, "test.fox")
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "unexpected parse errors: %+v", p.Errors())

	c := NewChecker(registry.New(), "test")
	c.CheckFile(file)
	require.NotEmpty(t, c.Errors())
	var msgs []string
	for _, d := range c.Errors() {
		msgs = append(msgs, string(d.Code))
	}
	return msgs
}

func TestCheckArithmeticFunction(t *testing.T) {
	prog := checkOK(t, `fn add(a: int, b: int) -> int { return a + b; }`)
	require.Len(t, prog.Functions, 1)
	require.Equal(t, "add", prog.Functions[0].Name)
}

func TestCheckStructLiteralAndFieldAccess(t *testing.T) {
	prog := checkOK(t, `
struct Point { x: int, y: int }
fn sum(p: Point) -> int { return p.x + p.y; }
fn make() -> Point { return Point{x: 1, y: 2}; }
`)
	require.Len(t, prog.Functions, 2)
}

func TestCheckEnumVariantConstructionAndMatch(t *testing.T) {
	checkOK(t, `
enum Shape {
	Circle(int),
	Point,
}
fn area(s: Shape) -> int {
	match s {
		Shape::Circle(r) => { return r * r; }
		Shape::Point => { return 0; }
	}
}
fn mk() -> Shape { return Shape::Circle(3); }
`)
}

func TestCheckMethodCallLowersReceiverArg(t *testing.T) {
	prog := checkOK(t, `
struct Counter { n: int }
impl Counter {
	fn bump(self: *mut Counter) { self.n += 1; }
}
fn run(c: *mut Counter) { c.bump(); }
`)
	var bump *typedast.Function
	var call *typedast.CallExpr
	for _, fn := range prog.Functions {
		if fn.Name == "bump" {
			bump = fn
		}
		if fn.Name == "run" {
			for _, st := range fn.Body.Stmts {
				if es, ok := st.(*typedast.ExprStmt); ok {
					if ce, ok := es.Expr.(*typedast.CallExpr); ok {
						call = ce
					}
				}
			}
		}
	}
	require.NotNil(t, bump)
	require.NotNil(t, call)
	require.Len(t, call.Args, 1) // &*c injected as the receiver argument
}

func TestCheckStaticMethodCall(t *testing.T) {
	checkOK(t, `
struct Counter { n: int }
impl Counter {
	fn zero() -> Counter { return Counter{n: 0}; }
}
fn run() -> Counter { return Counter::zero(); }
`)
}

func TestCheckMismatchedIfArmsIsError(t *testing.T) {
	codes := checkErr(t, `
fn f(b: bool) -> int {
	let x = if b { 1 } else { true };
	return x;
}`)
	require.Contains(t, codes, "TYPE_MISMATCH")
}

func TestCheckAssignToImmutableIsError(t *testing.T) {
	codes := checkErr(t, `fn f() { let x = 0; x = 1; }`)
	require.Contains(t, codes, "TYPE_MUTABILITY_VIOLATION")
}

func TestCheckGenericFunctionCallWithoutInstantiationIsError(t *testing.T) {
	codes := checkErr(t, `
fn id<T>(x: T) -> T { return x; }
fn run() -> int { return id(1); }
`)
	require.Contains(t, codes, "SEMANTIC_ERROR")
}

func TestCheckMissingStructFieldIsError(t *testing.T) {
	codes := checkErr(t, `
struct Point { x: int, y: int }
fn make() -> Point { return Point{x: 1}; }
`)
	require.Contains(t, codes, "TYPE_MISSING_FIELD")
}

func TestCheckBreakOutsideLoopIsError(t *testing.T) {
	codes := checkErr(t, `fn f() { break; }`)
	require.Contains(t, codes, "SEMANTIC_ERROR")
}

func TestCheckUninitLetRequiresMut(t *testing.T) {
	codes := checkErr(t, `fn f() { let x: int; }`)
	require.Contains(t, codes, "TYPE_MUTABILITY_VIOLATION")

	checkOK(t, `fn f() { let mut x: int; x = 1; }`)
}

func TestCheckNoinitWithoutTypeIsError(t *testing.T) {
	codes := checkErr(t, `fn f() { let mut x = noinit; }`)
	require.Contains(t, codes, "SEMANTIC_ERROR")
}

func TestCheckTailExpressionSatisfiesReturnType(t *testing.T) {
	checkOK(t, `fn five() -> int { 5 }`)
	checkOK(t, `fn pick(b: bool) -> int { if b { 1 } else { 2 } }`)
}

func TestCheckWrongTailExpressionTypeIsError(t *testing.T) {
	codes := checkErr(t, `fn f() -> int { true }`)
	require.Contains(t, codes, "TYPE_MISMATCH")
}

func TestCheckEmptyArrayLiteralNeedsElementType(t *testing.T) {
	checkOK(t, `fn f() { let xs = []int {}; }`)
	codes := checkErr(t, `fn f() { let xs = []; }`)
	require.Contains(t, codes, "SEMANTIC_ERROR")
}

func TestCheckStringConcatenation(t *testing.T) {
	checkOK(t, `fn f() -> str { return "foo" + "bar"; }`)
	codes := checkErr(t, `fn f() -> str { return "foo" - "bar"; }`)
	require.Contains(t, codes, "TYPE_MISMATCH")
}

func TestCheckTopLevelConstResolvesInFunctions(t *testing.T) {
	checkOK(t, `
const N = 10;
fn f() -> int { return N + 1; }
`)
}

func TestCheckConstOfStructTypeIsError(t *testing.T) {
	codes := checkErr(t, `
struct P { x: int }
fn f() { const p = P{x: 1}; }
`)
	require.Contains(t, codes, "SEMANTIC_ERROR")
}

func TestCheckAddressOfTemporaryIsError(t *testing.T) {
	codes := checkErr(t, `fn f() { let p = &(1 + 2); }`)
	require.Contains(t, codes, "SEMANTIC_ERROR")
}
