package compiler_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/compiler"
	"github.com/emberlang/ember/pkg/value"
)

// fakeAllocator is the minimal compiler.Allocator a test needs: plain
// interning with no GC bookkeeping, and an ObjFunction factory.
type fakeAllocator struct {
	interned map[string]*value.ObjString
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{interned: make(map[string]*value.ObjString)}
}

func (a *fakeAllocator) InternString(chars []byte) *value.ObjString {
	if s, ok := a.interned[string(chars)]; ok {
		return s
	}
	s := value.NewObjString(chars, value.HashBytes(chars))
	a.interned[string(chars)] = s
	return s
}

func (a *fakeAllocator) NewFunction() *value.ObjFunction { return value.NewObjFunction() }

func opcodes(t *testing.T, fn *value.ObjFunction) []bytecode.Opcode {
	t.Helper()
	var ops []bytecode.Opcode
	code := fn.Chunk.Code
	i := 0
	for i < len(code) {
		op := bytecode.Opcode(code[i])
		ops = append(ops, op)
		i += 1 + operandWidth(op)
		if op == bytecode.Closure {
			// CLOSURE is followed by one {isLocal, index} byte pair per upvalue.
			i += 2 * value.AsFunction(fn.Chunk.Constants[code[i-1]]).UpvalueCount
		}
	}
	return ops
}

// nestedFunctions returns the function prototypes stored in fn's constant
// table: the bodies of the functions and methods fn declares.
func nestedFunctions(fn *value.ObjFunction) []*value.ObjFunction {
	var fns []*value.ObjFunction
	for _, c := range fn.Chunk.Constants {
		if value.IsFunction(c) {
			fns = append(fns, value.AsFunction(c))
		}
	}
	return fns
}

// operandWidth returns how many operand bytes follow an opcode, enough to
// walk the instruction stream for these tests (not a full disassembler).
func operandWidth(op bytecode.Opcode) int {
	switch op {
	case bytecode.Constant, bytecode.GetLocal, bytecode.SetLocal, bytecode.GetGlobal,
		bytecode.DefineGlobal, bytecode.SetGlobal, bytecode.GetUpvalue, bytecode.SetUpvalue,
		bytecode.GetProperty, bytecode.SetProperty, bytecode.GetSuper, bytecode.Call,
		bytecode.Class, bytecode.Method, bytecode.Closure:
		return 1
	case bytecode.Jump, bytecode.JumpIfFalse, bytecode.Loop:
		return 2
	case bytecode.Invoke, bytecode.SuperInvoke:
		return 2
	default:
		return 0
	}
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	fn, err := compiler.Compile("1 + 2 * 3;", newFakeAllocator())
	require.NoError(t, err)
	require.Contains(t, opcodes(t, fn), bytecode.Multiply)
	require.Contains(t, opcodes(t, fn), bytecode.Add)
}

func TestCompileGlobalVariable(t *testing.T) {
	fn, err := compiler.Compile("var x = 1; print x;", newFakeAllocator())
	require.NoError(t, err)
	ops := opcodes(t, fn)
	require.Contains(t, ops, bytecode.DefineGlobal)
	require.Contains(t, ops, bytecode.GetGlobal)
	require.Contains(t, ops, bytecode.Print)
}

func TestCompileLocalVariableUsesSlotNotGlobal(t *testing.T) {
	fn, err := compiler.Compile("{ var x = 1; print x; }", newFakeAllocator())
	require.NoError(t, err)
	ops := opcodes(t, fn)
	require.Contains(t, ops, bytecode.GetLocal)
	require.NotContains(t, ops, bytecode.GetGlobal)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	src := `
	fun outer() {
		var x = 1;
		fun inner() { return x; }
		return inner;
	}
	`
	fn, err := compiler.Compile(src, newFakeAllocator())
	require.NoError(t, err)
	require.Contains(t, opcodes(t, fn), bytecode.Closure)

	outer := nestedFunctions(fn)[0]
	inner := nestedFunctions(outer)[0]
	require.Equal(t, 1, inner.UpvalueCount)
}

func TestCompileInvalidAssignmentTargetErrors(t *testing.T) {
	_, err := compiler.Compile("1 + 2 = 3;", newFakeAllocator())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestCompileAccumulatesMultipleErrors(t *testing.T) {
	_, err := compiler.Compile("var = 1; print ;", newFakeAllocator())
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(merr.Errors), 2)
}

func TestCompileClassWithMethodAndInit(t *testing.T) {
	src := `
	class Greeter {
		init(name) { this.name = name; }
		greet() { print this.name; }
	}
	`
	fn, err := compiler.Compile(src, newFakeAllocator())
	require.NoError(t, err)
	ops := opcodes(t, fn)
	require.Contains(t, ops, bytecode.Class)
	require.Contains(t, ops, bytecode.Method)
}

func TestCompileInheritanceEmitsInherit(t *testing.T) {
	src := `
	class A { greet() { print "a"; } }
	class B < A {}
	`
	fn, err := compiler.Compile(src, newFakeAllocator())
	require.NoError(t, err)
	require.Contains(t, opcodes(t, fn), bytecode.Inherit)
}

func TestCompileSuperInvoke(t *testing.T) {
	src := `
	class A { greet() { print "a"; } }
	class B < A { greet() { super.greet(); } }
	`
	fn, err := compiler.Compile(src, newFakeAllocator())
	require.NoError(t, err)
	// The super call lives in B.greet's own chunk, not the script's.
	var methodOps []bytecode.Opcode
	for _, m := range nestedFunctions(fn) {
		methodOps = append(methodOps, opcodes(t, m)...)
	}
	require.Contains(t, methodOps, bytecode.SuperInvoke)
}

func TestCompileForLoopDesugarsToLoopOpcode(t *testing.T) {
	src := `for (var i = 0; i < 3; i = i + 1) { print i; }`
	fn, err := compiler.Compile(src, newFakeAllocator())
	require.NoError(t, err)
	require.Contains(t, opcodes(t, fn), bytecode.Loop)
	require.Contains(t, opcodes(t, fn), bytecode.JumpIfFalse)
}

func TestCompileTooManyLocalsErrors(t *testing.T) {
	var b strings.Builder
	b.WriteString("{\n")
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "var a%d = 0;\n", i)
	}
	b.WriteString("}\n")
	_, err := compiler.Compile(b.String(), newFakeAllocator())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Too many local variables in function.")
}
