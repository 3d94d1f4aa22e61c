// Command fox drives Fox source files through the full pipeline:
// lex, parse, type-check, generate bytecode, and execute on the VM.
package main

func main() {
	execute()
}
