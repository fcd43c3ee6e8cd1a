package vm

import (
	"fmt"

	"github.com/emberlang/ember/pkg/value"
)

// callValue dispatches a call on argCount arguments sitting on top of the
// callee, by the callee's runtime kind: closure, native, class
// constructor, or bound method. Anything else is a runtime error.
func (vm *VM) callValue(callee value.Value, argCount int) {
	if value.IsObj(callee) {
		switch value.AsObj(callee).Type {
		case value.ObjClosureType:
			vm.call(value.AsClosure(callee), argCount)
			return
		case value.ObjNativeType:
			vm.callNative(value.AsNative(callee), argCount)
			return
		case value.ObjClassType:
			vm.instantiate(value.AsClass(callee), argCount)
			return
		case value.ObjBoundMethodType:
			bound := value.AsBoundMethod(callee)
			vm.stack[vm.stackTop-argCount-1] = bound.Receiver
			vm.call(bound.Method, argCount)
			return
		}
	}
	panic(runtimeErr("Can only call functions and classes."))
}

// call pushes a new frame for closure, whose window is the argCount
// arguments (plus the reserved receiver/callee slot 0) already sitting on
// top of the value stack.
func (vm *VM) call(closure *value.ObjClosure, argCount int) {
	if argCount != closure.Function.Arity {
		panic(runtimeErr(fmt.Sprintf("Expected %d arguments but got %d.", closure.Function.Arity, argCount)))
	}
	if len(vm.frames) == framesMax {
		panic(runtimeErr("Stack overflow."))
	}
	vm.frames = append(vm.frames, callFrame{closure: closure, base: vm.stackTop - argCount - 1})
}

func (vm *VM) callNative(native *value.ObjNative, argCount int) {
	args := vm.stack[vm.stackTop-argCount : vm.stackTop]
	result, err := native.Fn(args)
	if err != nil {
		panic(runtimeErr(err.Error()))
	}
	vm.stackTop -= argCount + 1
	vm.push(result)
}

// instantiate implements calling a class as its constructor: the receiver
// slot is replaced with a fresh Instance, and `init` (if the class defines
// one) is invoked implicitly with the supplied arguments; otherwise
// argCount must be zero.
func (vm *VM) instantiate(class *value.ObjClass, argCount int) {
	instance := vm.NewInstance(class)
	vm.stack[vm.stackTop-argCount-1] = value.InstanceVal(instance)
	if initializer, ok := class.Methods.Get(vm.initString); ok {
		vm.call(value.AsClosure(initializer), argCount)
		return
	}
	if argCount != 0 {
		panic(runtimeErr(fmt.Sprintf("Expected 0 arguments but got %d.", argCount)))
	}
}

// invoke implements the fused GET_PROPERTY+CALL for INVOKE: a field
// holding a callable shadows a same-named method, exactly as a plain
// GET_PROPERTY followed by CALL would.
func (vm *VM) invoke(name *value.ObjString, argCount int) {
	receiver := vm.peek(argCount)
	if !value.IsInstance(receiver) {
		panic(runtimeErr("Only instances have methods."))
	}
	instance := value.AsInstance(receiver)

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		vm.callValue(field, argCount)
		return
	}
	vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argCount int) {
	method, ok := class.Methods.Get(name)
	if !ok {
		panic(runtimeErr(fmt.Sprintf("Undefined property '%s'.", name)))
	}
	vm.call(value.AsClosure(method), argCount)
}

// bindMethod looks up name in class's method table and, if found, wraps it
// with the current receiver (top of stack) as an ObjBoundMethod.
func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) (value.Value, bool) {
	method, ok := class.Methods.Get(name)
	if !ok {
		return value.NilVal(), false
	}
	bound := vm.NewBoundMethod(vm.peek(0), value.AsClosure(method))
	return value.BoundMethodVal(bound), true
}
