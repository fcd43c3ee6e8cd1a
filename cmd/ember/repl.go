package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"github.com/emberlang/ember/pkg/vm"
)

// runREPL drives the read-eval-print loop: read a line, Interpret it,
// repeat. Compile and runtime errors are printed but do not exit the
// REPL; only EOF (Ctrl-D) or an interrupt on an empty line does. Line
// editing and history come from readline.
func runREPL(ctx context.Context, v *vm.VM) error {
	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("starting REPL: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if line == "" {
			continue
		}

		status, runErr := v.Interpret(ctx, line)
		if status != vm.OK {
			fmt.Println(runErr)
		}
	}
	return nil
}
