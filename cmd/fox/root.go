package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	traceVM      bool
	dumpBytecode bool
)

var rootCmd = &cobra.Command{
	Use:   "fox <file>",
	Short: "Compile and run a Fox source file",
	Long: `fox lexes, parses, type-checks, compiles, and executes a single
Fox source file. The program's entry point is its top-level "main"
function.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(args[0], os.Stdout)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVar(&traceVM, "trace-vm", false, "print every executed instruction")
	rootCmd.Flags().BoolVar(&dumpBytecode, "dump-bytecode", false, "disassemble compiled functions to stderr before running")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
