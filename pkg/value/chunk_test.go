package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/value"
)

func TestChunkWriteTracksLines(t *testing.T) {
	var c value.Chunk
	c.WriteOp(bytecode.Constant, 1)
	c.Write(0, 1)
	c.WriteOp(bytecode.Return, 2)

	require.Equal(t, []int{1, 1, 2}, c.Lines)
	require.Len(t, c.Code, 3)
}

func TestChunkAddConstantCapsAt256(t *testing.T) {
	var c value.Chunk
	for i := 0; i < value.MaxConstants; i++ {
		idx, err := c.AddConstant(value.NumberVal(float64(i)))
		require.NoError(t, err)
		require.Equal(t, byte(i), idx)
	}
	_, err := c.AddConstant(value.NumberVal(256))
	require.Error(t, err)
}
