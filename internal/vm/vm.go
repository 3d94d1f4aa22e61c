// Package vm is Fox's Virtual Machine: a stack-based
// interpreter executing bytecode over a raw byte buffer, with
// per-call frames, constant data sections, and a fixed instruction
// dispatch table. It receives a root function definition plus the
// code generator's constant pool and string-constant pool.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/codegen"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/registry"
)

// DefaultStackSize is the VM's default fixed stack capacity in bytes.
// Overflowing it is a fatal user error.
const DefaultStackSize = 1 << 20

// DefaultMaxFrames bounds the call-frame stack.
const DefaultMaxFrames = 4096

// PanicError is raised (via Go panic, recovered by Run) for every
// fatal runtime condition, user-level or internal: there is no
// VM-level exception mechanism, only a
// single diagnostic and process abort.
type PanicError struct {
	Diagnostic diag.Diagnostic
}

func (e *PanicError) Error() string { return e.Diagnostic.Message }

// frame is the VM's per-call record: program counter,
// stack base, and the bytecode it is executing.
type frame struct {
	pc          int
	stackBottom int64
	code        []byte
	fn          *registry.Function
}

// VM owns the fixed-size byte stack and the call-frame stack. Constants, the string pool, and the definitions registry are
// read-only for the VM's entire lifetime.
type VM struct {
	Stack   []byte
	sp      int64
	heap    *heapArena
	Strings []byte

	frames []frame

	constants *bytecode.ConstantPool
	mod       *codegen.Module
	reg       *registry.Registry

	Out      io.Writer
	Trace    bool
	MaxFrame int
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithStackSize overrides DefaultStackSize.
func WithStackSize(n int) Option {
	return func(v *VM) { v.Stack = make([]byte, n) }
}

// WithOutput redirects the print/puts intrinsics' stdout stream
// (defaults to os.Stdout); tests use this to capture output.
func WithOutput(w io.Writer) Option {
	return func(v *VM) { v.Out = w }
}

// WithTrace enables per-instruction disassembly on Out, the VM-level
// analogue of cmd/fox's --trace-vm flag.
func WithTrace(on bool) Option {
	return func(v *VM) { v.Trace = on }
}

// New creates a VM ready to execute mod's functions against reg, the
// definitions registry code generation populated.
func New(reg *registry.Registry, mod *codegen.Module, opts ...Option) *VM {
	v := &VM{
		Stack:     make([]byte, DefaultStackSize),
		heap:      newHeapArena(),
		Strings:   mod.Constants.Strings,
		constants: &mod.Constants,
		mod:       mod,
		reg:       reg,
		Out:       os.Stdout,
		MaxFrame:  DefaultMaxFrames,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes fn as the program's root function with no argument
// bytes (every program starts at a no-argument "main").
// It returns the recovered PanicError on any fatal runtime condition,
// or nil on a clean halt.
func (v *VM) Run(fn *registry.Function) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *PanicError:
				err = e
			case *registry.InternalError:
				err = &PanicError{Diagnostic: diag.Diagnostic{
					Stage:    diag.StageVM,
					Severity: diag.SeverityError,
					Code:     diag.CodeInternalError,
					Message:  e.Message,
				}}
			default:
				panic(r)
			}
		}
	}()
	v.pushFrame(fn, 0)
	v.dispatch()
	return nil
}

// RunFuncName resolves name through reg's module-scoped function table
// exposed by mod and runs it, returning an error if no such function
// was compiled (used by cmd/fox to locate the program's entry point).
func RunFuncName(reg *registry.Registry, mod *codegen.Module, name string, opts ...Option) error {
	v := New(reg, mod, opts...)
	fn := v.lookupFuncByName(name)
	if fn == nil {
		return fmt.Errorf("vm: no function named %q was compiled", name)
	}
	return v.Run(fn)
}

func (v *VM) lookupFuncByName(name string) *registry.Function {
	for _, id := range v.mod.FuncTable {
		if f, ok := v.reg.GetFunctionByUUID(id); ok && f.Name == name {
			return f
		}
	}
	return nil
}

func (v *VM) funcByIndex(idx uint64) *registry.Function {
	if idx >= uint64(len(v.mod.FuncTable)) {
		v.internalError("call through invalid function index %d", idx)
	}
	f, ok := v.reg.GetFunctionByUUID(v.mod.FuncTable[idx])
	if !ok {
		v.internalError("function index %d has no registry record", idx)
	}
	return f
}

func (v *VM) structByIndex(idx uint64) *registry.Struct {
	if idx >= uint64(len(v.mod.StructTable)) {
		v.internalError("print_struct through invalid struct index %d", idx)
	}
	s, ok := v.reg.GetStructByUUID(v.mod.StructTable[idx])
	if !ok {
		v.internalError("struct index %d has no registry record", idx)
	}
	return s
}

func (v *VM) enumByIndex(idx uint64) *registry.Enum {
	if idx >= uint64(len(v.mod.EnumTable)) {
		v.internalError("print_enum through invalid enum index %d", idx)
	}
	e, ok := v.reg.GetEnumByUUID(v.mod.EnumTable[idx])
	if !ok {
		v.internalError("enum index %d has no registry record", idx)
	}
	return e
}

// curFrame returns the frame on top of the call stack.
func (v *VM) curFrame() *frame { return &v.frames[len(v.frames)-1] }

// pushFrame installs a new frame for a call into fn, whose arguments
// (argSize bytes) already occupy [stack_top-argSize, stack_top) — the
// new frame's stack_bottom is exactly that region's start, so the
// callee sees its arguments at offsets [0, argSize).
func (v *VM) pushFrame(fn *registry.Function, argSize int64) {
	if len(v.frames) >= v.MaxFrame {
		v.panicUser(diag.CodeRuntimeStackOverflow, "call stack overflow")
	}
	v.frames = append(v.frames, frame{
		pc:          0,
		stackBottom: v.sp - argSize,
		code:        fn.Bytecode,
		fn:          fn,
	})
}

func (v *VM) popFrame() {
	v.frames = v.frames[:len(v.frames)-1]
}

// internalError raises a fatal InternalError-shaped diagnostic: a violated compiler/VM invariant, never
// attributable to the user's program.
func (v *VM) internalError(format string, args ...interface{}) {
	panic(&PanicError{Diagnostic: diag.Diagnostic{
		Stage:    diag.StageVM,
		Severity: diag.SeverityError,
		Code:     diag.CodeInternalError,
		Message:  "internal error: " + fmt.Sprintf(format, args...),
	}})
}

// panicUser raises a fatal user-facing runtime diagnostic, optionally located at the current frame's nearest
// known panic(...) call site.
func (v *VM) panicUser(code diag.Code, format string, args ...interface{}) {
	d := diag.Diagnostic{
		Stage:    diag.StageVM,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
	if len(v.frames) > 0 {
		f := v.curFrame()
		if f.fn != nil && f.fn.PanicSites != nil {
			if span, ok := f.fn.PanicSites[f.pc]; ok {
				d.Span = diag.Span{
					Filename: span.Filename,
					Line:     span.Line,
					Column:   span.Column,
					Start:    span.Start,
					End:      span.End,
				}
			}
		}
	}
	panic(&PanicError{Diagnostic: d})
}
