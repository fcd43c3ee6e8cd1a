package disasm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/pkg/compiler"
	"github.com/emberlang/ember/pkg/disasm"
	"github.com/emberlang/ember/pkg/value"
)

type fakeAllocator struct{ interned map[string]*value.ObjString }

func newFakeAllocator() *fakeAllocator { return &fakeAllocator{interned: map[string]*value.ObjString{}} }

func (a *fakeAllocator) InternString(chars []byte) *value.ObjString {
	if s, ok := a.interned[string(chars)]; ok {
		return s
	}
	s := value.NewObjString(chars, value.HashBytes(chars))
	a.interned[string(chars)] = s
	return s
}

func (a *fakeAllocator) NewFunction() *value.ObjFunction { return value.NewObjFunction() }

func TestChunkDisassemblyIsDeterministic(t *testing.T) {
	fn, err := compiler.Compile("print 1 + 2 * 3;", newFakeAllocator())
	require.NoError(t, err)

	var first, second bytes.Buffer
	disasm.Chunk(&first, &fn.Chunk, "script")
	disasm.Chunk(&second, &fn.Chunk, "script")
	require.Equal(t, first.String(), second.String())
	require.Contains(t, first.String(), "CONSTANT")
	require.Contains(t, first.String(), "MULTIPLY")
	require.Contains(t, first.String(), "PRINT")
}

func TestChunkDisassemblyRecursesIntoFunctions(t *testing.T) {
	fn, err := compiler.Compile("fun f(x) { return x; }", newFakeAllocator())
	require.NoError(t, err)

	var buf bytes.Buffer
	disasm.Chunk(&buf, &fn.Chunk, "script")
	require.Contains(t, buf.String(), "== f ==")
	require.Contains(t, buf.String(), "RETURN")
}
