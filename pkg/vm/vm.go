// Package vm implements ember's stack-based bytecode virtual machine: a
// central dispatch loop over the compiler's output, a fixed-capacity value
// stack and call-frame stack, a globals table, and the precise mark-sweep
// collector in gc.go.
//
// The VM is also the compiler's Allocator: every heap object the compiler
// or the runtime ever creates is minted by one of the allocation methods
// in alloc.go, so bytesAllocated accounting and the all-objects sweep list
// never miss an object.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"
	"github.com/sirupsen/logrus"

	"github.com/emberlang/ember/pkg/compiler"
	"github.com/emberlang/ember/pkg/value"
)

// Status is the outcome of one Interpret call.
type Status int

const (
	OK Status = iota
	CompileError
	RuntimeError
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// callFrame is one activation record: the closure being executed, its
// instruction pointer, and the base index into the VM's shared value
// stack where its window begins. Slot base+0 holds the receiver (or the
// called function for plain calls); arguments and locals follow.
type callFrame struct {
	closure *value.ObjClosure
	ip      int
	base    int
}

// VM is ember's single execution engine: one value stack, one call-frame
// stack, one heap, shared by compilation and execution. A VM instance is
// not safe for concurrent use.
type VM struct {
	stack    []value.Value
	stackTop int
	frames   []callFrame

	globals      *swiss.Map[*value.ObjString, value.Value]
	strings      *value.InternTable
	initString   *value.ObjString
	openUpvalues *value.ObjUpvalue

	objects        *value.Obj
	bytesAllocated int
	nextGC         int
	grayStack      []*value.Obj

	log      *logrus.Logger
	StressGC bool
	Out      io.Writer

	activeCompiler *compiler.Compiler
}

// New returns a freshly initialized VM: empty stack and globals, the
// `init` string pre-interned (the GC roots it permanently), and the
// standard native functions defined.
func New(log *logrus.Logger) *VM {
	if log == nil {
		log = logrus.New()
	}
	vm := &VM{
		stack:   make([]value.Value, stackMax),
		frames:  make([]callFrame, 0, framesMax),
		globals: swiss.NewMap[*value.ObjString, value.Value](16),
		strings: value.NewInternTable(),
		log:     log,
		nextGC:  1024 * 1024,
		Out:     os.Stdout,
	}
	vm.initString = vm.InternString([]byte("init"))
	vm.defineNatives()
	return vm
}

func (vm *VM) push(v value.Value) {
	if vm.stackTop >= stackMax {
		panic(runtimeErr("stack overflow"))
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value { return vm.stack[vm.stackTop-1-distance] }

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

// runtimeErr is the sentinel type the dispatch loop panics with to unwind
// out of deeply nested Go call frames back to Interpret's recover.
type runtimeErr string

func (e runtimeErr) Error() string { return string(e) }

// Interpret compiles and runs source to completion, returning the VM's
// terminal status. ctx is checked at call-dispatch safepoints only: a
// running loop with no calls cannot be cancelled mid-iteration, since the
// dispatch loop has no other natural suspend point.
func (vm *VM) Interpret(ctx context.Context, source string) (status Status, err error) {
	comp := compiler.NewCompiler(source, vm, vm.log)
	vm.activeCompiler = comp
	fn, cerr := comp.Run()
	vm.activeCompiler = nil
	if cerr != nil {
		return CompileError, cerr
	}

	vm.resetStack()
	closure := vm.NewClosure(fn)
	vm.push(value.ClosureVal(closure))
	vm.frames = append(vm.frames, callFrame{closure: closure, base: 0})

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(runtimeErr)
			if !ok {
				panic(r)
			}
			status, err = RuntimeError, vm.runtimeError(string(rerr))
		}
	}()

	vm.run(ctx)
	return OK, nil
}

// runtimeError formats message with a call-stack backtrace: one line per
// live frame, innermost first, naming the function and the source line its
// instruction pointer was on. The stacks are reset to empty afterwards.
func (vm *VM) runtimeError(message string) error {
	vm.log.Error(message)
	var trace string
	for i := len(vm.frames) - 1; i >= 0; i-- {
		frame := vm.frames[i]
		fn := frame.closure.Function
		line := 0
		if frame.ip-1 >= 0 && frame.ip-1 < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[frame.ip-1]
		}
		name := "script"
		if fn.Name != nil {
			name = fn.Name.String() + "()"
		}
		trace += fmt.Sprintf("[line %d] in %s\n", line, name)
	}
	vm.resetStack()
	return fmt.Errorf("%s\n%s", message, trace)
}
