package value

import (
	"errors"

	"github.com/emberlang/ember/pkg/bytecode"
)

// MaxConstants is the largest number of distinct constants a single chunk
// may hold: constant-table operands are one byte wide.
const MaxConstants = 256

// Chunk is a function body's bytecode: an ordered byte stream, a parallel
// line-number array (one entry per code byte, used only for error
// reporting), and a constant table addressed by 8-bit operand.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// Write appends a single instruction byte (opcode or operand byte) tagged
// with the source line it came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op bytecode.Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant table and returns its index.
// Constant tables are capped at MaxConstants entries.
func (c *Chunk) AddConstant(v Value) (byte, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, errors.New("too many constants in one chunk")
	}
	c.Constants = append(c.Constants, v)
	return byte(len(c.Constants) - 1), nil
}
