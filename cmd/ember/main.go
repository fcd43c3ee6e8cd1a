// Command ember is the CLI entrypoint for the ember language: a REPL, a
// file runner, and a bytecode disassembler.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emberlang/ember/pkg/value"
	"github.com/emberlang/ember/pkg/vm"
)

const version = "0.1.0"

var (
	stressGC  bool
	verbose   bool
	nanBoxing bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ember",
		Short: "ember is a bytecode-compiled scripting language",
		// With no subcommand, `ember` drops into the REPL.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), newVM())
		},
	}

	root.PersistentFlags().BoolVar(&stressGC, "stress-gc", false, "collect garbage on every allocation")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log internal GC/compiler diagnostics")
	root.PersistentFlags().BoolVar(&nanBoxing, "nan-boxing", false, "no-op: the value representation is selected at build time via -tags nanboxed and reported by `ember version`")

	root.AddCommand(newRunCmd(), newReplCmd(), newDisasmCmd(), newVersionCmd())
	return root
}

func newVM() *vm.VM {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	v := vm.New(log)
	v.StressGC = stressGC
	return v
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "compile and run a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runFile(cmd.Context(), args[0])
			return nil
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start the interactive prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), newVM())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print ember's version and Value representation",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ember %s (%s value representation)\n", version, value.Representation)
		},
	}
}

// runFile reads and interprets source. Exit codes: 0 success, 65 compile
// error, 70 runtime error, 74 unreadable file.
func runFile(ctx context.Context, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", path, err)
		os.Exit(74)
	}

	status, runErr := newVM().Interpret(ctx, string(source))
	switch status {
	case vm.CompileError:
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(65)
	case vm.RuntimeError:
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(70)
	}
}
