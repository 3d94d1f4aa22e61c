package main

import (
	"fmt"
	"os"

	"github.com/foxlang/fox/internal/bytecode"
	"github.com/foxlang/fox/internal/codegen"
	"github.com/foxlang/fox/internal/registry"
)

// disassembleModule prints every compiled function's bytecode as
// "offset  mnemonic  operand" lines (--dump-bytecode).
func disassembleModule(reg *registry.Registry, mod *codegen.Module) {
	for _, id := range mod.FuncTable {
		fn, ok := reg.GetFunctionByUUID(id)
		if !ok {
			continue
		}
		fmt.Fprintf(os.Stderr, "fn %s:\n", fn.Name)
		disassembleChunk(fn.Bytecode)
	}
}

func disassembleChunk(code []byte) {
	pc := 0
	for pc < len(code) {
		start := pc
		op, operand, next := bytecode.ReadOp(code, pc)
		fmt.Fprintf(os.Stderr, "  %4d  %-20s%s\n", start, op, operandStr(op, operand))
		pc = next
	}
}

func operandStr(op bytecode.Op, operand []byte) string {
	switch op {
	case bytecode.OpLitChar:
		return fmt.Sprintf("%q", bytecode.ReadChar(operand))
	case bytecode.OpLitInt:
		return fmt.Sprintf("%d", bytecode.ReadInt(operand))
	case bytecode.OpLitFloat:
		return fmt.Sprintf("%g", bytecode.ReadFloat(operand))
	case bytecode.OpLitPointer:
		return fmt.Sprintf("0x%x", bytecode.ReadPointer(operand))
	case bytecode.OpLoadConst, bytecode.OpLoadConstArray, bytecode.OpPushValue, bytecode.OpPushGlobalValue:
		return fmt.Sprintf("size=%d addr=%d",
			bytecode.ReadSize(operand[:bytecode.SizeWidth]),
			bytecode.ReadAddress(operand[bytecode.SizeWidth:]))
	case bytecode.OpCallBuiltin:
		return fmt.Sprintf("id=%d arg_size=%d",
			bytecode.ReadSize(operand[:bytecode.SizeWidth]),
			bytecode.ReadSize(operand[bytecode.SizeWidth:]))
	}
	switch len(operand) {
	case 0:
		return ""
	case bytecode.SizeWidth:
		return fmt.Sprintf("%d", bytecode.ReadSize(operand))
	case bytecode.AddressWidth:
		return fmt.Sprintf("%d", bytecode.ReadAddress(operand))
	default:
		return fmt.Sprintf("% x", operand)
	}
}
