package vm_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/pkg/vm"
)

func newTestVM(t *testing.T) (*vm.VM, *bytes.Buffer) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	v := vm.New(log)
	var out bytes.Buffer
	v.Out = &out
	return v, &out
}

func run(t *testing.T, source string) (string, vm.Status, error) {
	t.Helper()
	v, out := newTestVM(t)
	status, err := v.Interpret(context.Background(), source)
	return out.String(), status, err
}

// End-to-end language scenarios, black-box through Interpret.

func TestArithmeticPrecedence(t *testing.T) {
	out, status, err := run(t, "print 1 + 2 * 3;")
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, status, err := run(t, `var a = "hi"; var b = "!"; print a + b;`)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "hi!\n", out)
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	src := `
	fun make(x) { fun inner() { return x; } return inner; }
	var f = make(42);
	print f();
	`
	out, status, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "42\n", out)
}

func TestInheritedMethodDispatch(t *testing.T) {
	src := `
	class A { greet() { print "hi"; } }
	class B < A {}
	B().greet();
	`
	out, status, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "hi\n", out)
}

func TestInitializerAndFieldMutation(t *testing.T) {
	src := `
	class Counter {
		init(n) { this.n = n; }
		bump() { this.n = this.n + 1; return this.n; }
	}
	var c = Counter(10);
	print c.bump();
	print c.bump();
	`
	out, status, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "11\n12\n", out)
}

func TestForLoop(t *testing.T) {
	out, status, err := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "0\n1\n2\n", out)
}

// Error scenarios.

func TestRuntimeErrorMixedAddOperands(t *testing.T) {
	_, status, err := run(t, `var a; a = 1 + "x";`)
	require.Equal(t, vm.RuntimeError, status)
	require.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestRuntimeErrorUndefinedGlobal(t *testing.T) {
	_, status, err := run(t, `print undefined_name;`)
	require.Equal(t, vm.RuntimeError, status)
	require.Contains(t, err.Error(), "Undefined variable 'undefined_name'.")
}

func TestCompileErrorInvalidAssignmentTarget(t *testing.T) {
	_, status, err := run(t, `a * b = c;`)
	require.Equal(t, vm.CompileError, status)
	require.Contains(t, err.Error(), "Invalid assignment target.")
}

// Additional behavioral coverage beyond the six canonical scenarios.

func TestSuperInvoke(t *testing.T) {
	src := `
	class A { greet() { print "a-greet"; } }
	class B < A { greet() { super.greet(); print "b-greet"; } }
	B().greet();
	`
	out, status, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "a-greet\nb-greet\n", out)
}

func TestClosuresSharingAnUpvalueObserveEachOthersMutations(t *testing.T) {
	src := `
	fun makePair() {
		var x = 0;
		fun set(v) { x = v; }
		fun get() { return x; }
		set(7);
		print get();
	}
	makePair();
	`
	out, status, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "7\n", out)
}

func TestFieldShadowsMethodOnInvoke(t *testing.T) {
	src := `
	fun shadow() { print "field wins"; }
	class Box {
		init() { this.speak = shadow; }
		speak() { print "method"; }
	}
	Box().speak();
	`
	out, status, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "field wins\n", out)
}

func TestWrongArityRuntimeError(t *testing.T) {
	_, status, err := run(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Equal(t, vm.RuntimeError, status)
	require.Contains(t, err.Error(), "Expected 2 arguments but got 1.")
}

func TestCallOfNonCallableIsRuntimeError(t *testing.T) {
	_, status, err := run(t, `var x = 1; x();`)
	require.Equal(t, vm.RuntimeError, status)
	require.Contains(t, err.Error(), "Can only call functions and classes.")
}

// rec(n) makes n+1 nested calls; together with the script's own frame
// that is a total call-frame depth of n+2, so rec(62) reaches exactly the
// frame capacity (64) and rec(63) overflows it by one.
func TestCallDepthAtFramesMaxAccepted(t *testing.T) {
	var b strings.Builder
	b.WriteString("fun rec(n) { if (n == 0) return 0; return rec(n - 1); } print rec(62);")
	out, status, err := run(t, b.String())
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "0\n", out)
}

func TestCallDepthOneOverFramesMaxRaisesStackOverflow(t *testing.T) {
	src := `fun rec(n) { if (n == 0) return 0; return rec(n - 1); } print rec(63);`
	_, status, err := run(t, src)
	require.Equal(t, vm.RuntimeError, status)
	require.Contains(t, err.Error(), "Stack overflow.")
}

func TestStressGCDoesNotCorruptExecution(t *testing.T) {
	v, out := newTestVM(t)
	v.StressGC = true
	src := `
	class Node { init(v) { this.v = v; } }
	var sum = 0;
	for (var i = 0; i < 50; i = i + 1) {
		var n = Node(i);
		sum = sum + n.v;
	}
	print sum;
	`
	status, err := v.Interpret(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "1225\n", out.String())
}

func TestClockNativeReturnsNumber(t *testing.T) {
	out, status, err := run(t, `print clock() > 0;`)
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "true\n", out)
}
