// Package disasm implements ember's bytecode disassembler: pure,
// side-effect-free formatting of a compiled Chunk to human-readable text,
// used by `ember disasm` and for compiler/VM debug tracing.
package disasm

import (
	"fmt"
	"io"

	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/value"
)

// Chunk prints name followed by every instruction in chunk, one per line,
// each prefixed with its byte offset and source line (or "|" when the
// line repeats the previous instruction's). Nested function prototypes
// found in the constant table are disassembled recursively, after the
// chunk that defines them.
func Chunk(w io.Writer, chunk *value.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	offset := 0
	lastLine := -1
	for offset < len(chunk.Code) {
		offset = Instruction(w, chunk, offset, &lastLine)
	}
	for _, c := range chunk.Constants {
		if value.IsFunction(c) {
			fn := value.AsFunction(c)
			fmt.Fprintln(w)
			name := fn.String()
			if fn.Name != nil {
				name = fn.Name.String()
			}
			Chunk(w, &fn.Chunk, name)
		}
	}
}

// Instruction prints the single instruction at offset and returns the
// offset of the next one. lastLine tracks the previous instruction's
// source line across calls so repeated lines collapse to "|".
func Instruction(w io.Writer, chunk *value.Chunk, offset int, lastLine *int) int {
	fmt.Fprintf(w, "%04d ", offset)

	line := chunk.Lines[offset]
	if offset > 0 && line == *lastLine {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}
	*lastLine = line

	op := bytecode.Opcode(chunk.Code[offset])
	switch op {
	case bytecode.Constant, bytecode.Class, bytecode.GetGlobal, bytecode.DefineGlobal,
		bytecode.SetGlobal, bytecode.GetSuper, bytecode.Method:
		return constantInstruction(w, op, chunk, offset)
	case bytecode.GetLocal, bytecode.SetLocal, bytecode.GetUpvalue, bytecode.SetUpvalue,
		bytecode.GetProperty, bytecode.SetProperty, bytecode.Call:
		return byteInstruction(w, op, chunk, offset)
	case bytecode.Jump, bytecode.JumpIfFalse:
		return jumpInstruction(w, op, 1, chunk, offset)
	case bytecode.Loop:
		return jumpInstruction(w, op, -1, chunk, offset)
	case bytecode.Invoke, bytecode.SuperInvoke:
		return invokeInstruction(w, op, chunk, offset)
	case bytecode.Closure:
		return closureInstruction(w, chunk, offset)
	default:
		return simple(w, op, offset)
	}
}

func simple(w io.Writer, op bytecode.Opcode, offset int) int {
	fmt.Fprintln(w, op)
	return offset + 1
}

func constantInstruction(w io.Writer, op bytecode.Opcode, chunk *value.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, value.Format(chunk.Constants[idx]))
	return offset + 2
}

func byteInstruction(w io.Writer, op bytecode.Opcode, chunk *value.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op bytecode.Opcode, sign int, chunk *value.Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func invokeInstruction(w io.Writer, op bytecode.Opcode, chunk *value.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argCount, idx, value.Format(chunk.Constants[idx]))
	return offset + 3
}

func closureInstruction(w io.Writer, chunk *value.Chunk, offset int) int {
	offset++
	idx := chunk.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", bytecode.Closure, idx, value.Format(chunk.Constants[idx]))

	fn := value.AsFunction(chunk.Constants[idx])
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
