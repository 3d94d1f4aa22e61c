package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFoxFile writes src to a fresh temp *.fox file and returns its path.
func writeFoxFile(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.fox")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// TestGoldenScenarios drives small end-to-end programs through the
// real lex/parse/typecheck/codegen/VM pipeline, wrapping each snippet
// in the top-level "fn main()" the entry point convention requires.
func TestGoldenScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arithmetic and print",
			src:  `fn main() { let x = 1 + 2; print(x); }`,
			want: "3\n",
		},
		{
			name: "array index",
			src:  `fn main() { let xs = [10, 20, 30]; print(xs[1]); }`,
			want: "20\n",
		},
		{
			name: "typed array literal",
			src:  `fn main() { let xs = [3]int { 10, 20, 30 }; print(xs[1]); }`,
			want: "20\n",
		},
		{
			name: "function call",
			src: `fn add(a: int, b: int) -> int { return a + b; }
			      fn main() { print(add(2, 40)); }`,
			want: "42\n",
		},
		{
			name: "struct field access",
			src: `struct P { x: int, y: int }
			      fn main() { let p = P { x: 3, y: 4 }; print(p.y); }`,
			want: "4\n",
		},
		{
			name: "enum match",
			src: `enum E { A, B(int) }
			      fn main() {
			          let e = E::B(7);
			          match e {
			              E::A => { print(0); },
			              E::B(n) => { print(n); },
			          }
			      }`,
			want: "7\n",
		},
		{
			name: "for range",
			src:  `fn main() { for i in 0..3 { print(i); } }`,
			want: "0\n1\n2\n",
		},
		{
			name: "inclusive for range",
			src:  `fn main() { for i in 1...3 { print(i); } }`,
			want: "1\n2\n3\n",
		},
		{
			name: "negative array index",
			src:  `fn main() { let xs = [10, 20, 30]; print(xs[-1]); }`,
			want: "30\n",
		},
		{
			name: "match as expression value",
			src: `enum E { A, B(int) }
			      fn main() {
			          let e = E::B(7);
			          let d = match e {
			              E::A => { 0 },
			              E::B(n) => { n },
			          };
			          print(d);
			      }`,
			want: "7\n",
		},
		{
			name: "if as expression value",
			src:  `fn main() { let big = 10 > 3; let x = if big { 1 } else { 2 }; print(x); }`,
			want: "1\n",
		},
		{
			name: "tail expression return",
			src: `fn five() -> int { 5 }
			      fn main() { print(five()); }`,
			want: "5\n",
		},
		{
			name: "while with compound assignment",
			src: `fn main() {
			          let mut n = 0;
			          while n < 3 { print(n); n += 1; }
			      }`,
			want: "0\n1\n2\n",
		},
		{
			name: "string concat and methods",
			src: `fn main() {
			          let s = "foo" + "bar";
			          print(s);
			          print(s.len());
			          print(s.is_empty());
			      }`,
			want: "foobar\n6\nfalse\n",
		},
		{
			name: "defer runs at scope exit in reverse order",
			src: `fn main() {
			          defer print(1);
			          defer print(2);
			          print(3);
			      }`,
			want: "3\n2\n1\n",
		},
		{
			name: "struct printing recurses into fields",
			src: `struct P { x: int, y: int }
			      fn main() { let p = P { x: 3, y: 4 }; print(p); }`,
			want: "P { x: 3, y: 4 }\n",
		},
		{
			name: "enum printing shows variant and payload",
			src: `enum E { A, B(int) }
			      fn main() { print(E::A); print(E::B(9)); }`,
			want: "E::A\nE::B(9)\n",
		},
		{
			name: "tuple field access",
			src:  `fn main() { let t = (41, true); print(t.0); print(t.1); }`,
			want: "41\ntrue\n",
		},
		{
			name: "pointer write through mut borrow",
			src: `fn main() {
			          let mut x = 1;
			          let p = &mut x;
			          *p = 5;
			          print(x);
			      }`,
			want: "5\n",
		},
		{
			name: "top-level const",
			src: `const N = 10;
			      fn main() { print(N + 1); }`,
			want: "11\n",
		},
		{
			name: "local const binding",
			src:  `fn main() { const k = 42; print(k); }`,
			want: "42\n",
		},
		{
			name: "method call through receiver",
			src: `struct Counter { n: int }
			      impl Counter {
			          fn bump(self: *mut Counter) { self.n += 1; }
			          fn get(self: *Counter) -> int { return self.n; }
			      }
			      fn main() {
			          let mut c = Counter { n: 40 };
			          c.bump();
			          c.bump();
			          print(c.get());
			      }`,
			want: "42\n",
		},
		{
			name: "for over array with element pattern",
			src: `fn main() {
			          let xs = [2, 4, 6];
			          for x in xs { print(x); }
			      }`,
			want: "2\n4\n6\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFoxFile(t, tc.src)
			var out bytes.Buffer
			err := runFile(path, &out)
			require.NoError(t, err)
			require.Equal(t, tc.want, out.String())
		})
	}
}

// TestDivisionByZeroExitsWithDiagnostic covers scenario 7: a
// division-by-zero program must fail runFile and the resulting
// PanicError's diagnostic must reference the offending operator.
func TestDivisionByZeroExitsWithDiagnostic(t *testing.T) {
	src := `fn main() { let x = 1; let y = 0; print(x / y); }`
	path := writeFoxFile(t, src)
	var out bytes.Buffer
	err := runFile(path, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "/")
}
