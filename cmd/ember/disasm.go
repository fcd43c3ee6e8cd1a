package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emberlang/ember/pkg/compiler"
	"github.com/emberlang/ember/pkg/disasm"
	"github.com/emberlang/ember/pkg/vm"
)

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file>",
		Short: "print the bytecode disassembly of a source file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disassembleFile(args[0])
		},
	}
}

// disassembleFile compiles path and prints its chunk, and every nested
// function's chunk, without executing anything.
func disassembleFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file %q: %w", path, err)
	}

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	v := vm.New(log)

	fn, err := compiler.NewCompiler(string(source), v, log).Run()
	if err != nil {
		return err
	}
	disasm.Chunk(os.Stdout, &fn.Chunk, "script")
	return nil
}
