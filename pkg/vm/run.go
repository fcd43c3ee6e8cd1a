package vm

import (
	"context"
	"fmt"

	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/value"
)

func (vm *VM) readByte(frame *callFrame) byte {
	b := frame.closure.Function.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readShort(frame *callFrame) int {
	hi := vm.readByte(frame)
	lo := vm.readByte(frame)
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant(frame *callFrame) value.Value {
	return frame.closure.Function.Chunk.Constants[vm.readByte(frame)]
}

func (vm *VM) readString(frame *callFrame) *value.ObjString {
	return value.AsString(vm.readConstant(frame))
}

// run is the VM's central dispatch loop: fetch the byte at ip, advance,
// dispatch. frame is re-fetched from vm.frames every time a
// CALL/INVOKE/SUPER_INVOKE/RETURN changes which frame is executing.
func (vm *VM) run(ctx context.Context) {
	frame := &vm.frames[len(vm.frames)-1]

	for {
		op := bytecode.Opcode(vm.readByte(frame))
		switch op {
		case bytecode.Constant:
			vm.push(vm.readConstant(frame))

		case bytecode.Nil:
			vm.push(value.NilVal())
		case bytecode.True:
			vm.push(value.BoolVal(true))
		case bytecode.False:
			vm.push(value.BoolVal(false))
		case bytecode.Pop:
			vm.pop()

		case bytecode.GetLocal:
			slot := vm.readByte(frame)
			vm.push(vm.stack[frame.base+int(slot)])
		case bytecode.SetLocal:
			slot := vm.readByte(frame)
			vm.stack[frame.base+int(slot)] = vm.peek(0)

		case bytecode.GetGlobal:
			name := vm.readString(frame)
			v, ok := vm.globals.Get(name)
			if !ok {
				panic(runtimeErr(fmt.Sprintf("Undefined variable '%s'.", name)))
			}
			vm.push(v)
		case bytecode.DefineGlobal:
			name := vm.readString(frame)
			vm.globals.Put(name, vm.peek(0))
			vm.pop()
		case bytecode.SetGlobal:
			name := vm.readString(frame)
			if _, ok := vm.globals.Get(name); !ok {
				panic(runtimeErr(fmt.Sprintf("Undefined variable '%s'.", name)))
			}
			vm.globals.Put(name, vm.peek(0))

		case bytecode.GetUpvalue:
			slot := vm.readByte(frame)
			vm.push(*frame.closure.Upvalues[slot].Location)
		case bytecode.SetUpvalue:
			slot := vm.readByte(frame)
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case bytecode.GetProperty:
			vm.getProperty(frame)
		case bytecode.SetProperty:
			vm.setProperty(frame)
		case bytecode.GetSuper:
			vm.getSuper(frame)

		case bytecode.Equal:
			b, a := vm.pop(), vm.pop()
			vm.push(value.BoolVal(value.Equal(a, b)))
		case bytecode.Greater:
			vm.numericCompare(func(a, b float64) bool { return a > b })
		case bytecode.Less:
			vm.numericCompare(func(a, b float64) bool { return a < b })

		case bytecode.Add:
			vm.add()
		case bytecode.Subtract:
			vm.numericBinary(func(a, b float64) float64 { return a - b })
		case bytecode.Multiply:
			vm.numericBinary(func(a, b float64) float64 { return a * b })
		case bytecode.Divide:
			vm.numericBinary(func(a, b float64) float64 { return a / b })

		case bytecode.Not:
			vm.push(value.BoolVal(value.IsFalsey(vm.pop())))
		case bytecode.Negate:
			if !value.IsNumber(vm.peek(0)) {
				panic(runtimeErr("Operand must be a number."))
			}
			vm.push(value.NumberVal(-value.AsNumber(vm.pop())))

		case bytecode.Print:
			fmt.Fprintln(vm.Out, value.Format(vm.pop()))

		case bytecode.Jump:
			offset := vm.readShort(frame)
			frame.ip += offset
		case bytecode.JumpIfFalse:
			offset := vm.readShort(frame)
			if value.IsFalsey(vm.peek(0)) {
				frame.ip += offset
			}
		case bytecode.Loop:
			offset := vm.readShort(frame)
			frame.ip -= offset

		case bytecode.Call:
			if err := ctx.Err(); err != nil {
				panic(runtimeErr(err.Error()))
			}
			argCount := int(vm.readByte(frame))
			vm.callValue(vm.peek(argCount), argCount)
			frame = &vm.frames[len(vm.frames)-1]

		case bytecode.Invoke:
			if err := ctx.Err(); err != nil {
				panic(runtimeErr(err.Error()))
			}
			name := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			vm.invoke(name, argCount)
			frame = &vm.frames[len(vm.frames)-1]

		case bytecode.SuperInvoke:
			if err := ctx.Err(); err != nil {
				panic(runtimeErr(err.Error()))
			}
			name := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			superclass := value.AsClass(vm.pop())
			vm.invokeFromClass(superclass, name, argCount)
			frame = &vm.frames[len(vm.frames)-1]

		case bytecode.Closure:
			fn := value.AsFunction(vm.readConstant(frame))
			closure := vm.NewClosure(fn)
			vm.push(value.ClosureVal(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(frame)
				index := vm.readByte(frame)
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[frame.base+int(index)])
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case bytecode.CloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case bytecode.Return:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop()
				return
			}
			vm.stackTop = frame.base
			vm.push(result)
			frame = &vm.frames[len(vm.frames)-1]

		case bytecode.Class:
			name := vm.readString(frame)
			vm.push(value.ClassVal(vm.NewClass(name)))

		case bytecode.Inherit:
			superVal := vm.peek(1)
			if !value.IsClass(superVal) {
				panic(runtimeErr("Superclass must be a class."))
			}
			superclass := value.AsClass(superVal)
			subclass := value.AsClass(vm.peek(0))
			superclass.Methods.Iter(func(name *value.ObjString, method value.Value) bool {
				subclass.Methods.Put(name, method)
				return false
			})
			vm.pop() // subclass

		case bytecode.Method:
			name := vm.readString(frame)
			method := vm.peek(0)
			class := value.AsClass(vm.peek(1))
			class.Methods.Put(name, method)
			vm.pop()

		default:
			panic(runtimeErr(fmt.Sprintf("Unknown opcode %d.", op)))
		}
	}
}

func (vm *VM) numericBinary(f func(a, b float64) float64) {
	if !value.IsNumber(vm.peek(0)) || !value.IsNumber(vm.peek(1)) {
		panic(runtimeErr("Operands must be numbers."))
	}
	b, a := value.AsNumber(vm.pop()), value.AsNumber(vm.pop())
	vm.push(value.NumberVal(f(a, b)))
}

func (vm *VM) numericCompare(f func(a, b float64) bool) {
	if !value.IsNumber(vm.peek(0)) || !value.IsNumber(vm.peek(1)) {
		panic(runtimeErr("Operands must be numbers."))
	}
	b, a := value.AsNumber(vm.pop()), value.AsNumber(vm.pop())
	vm.push(value.BoolVal(f(a, b)))
}

// add implements ADD's two overloads: numeric addition, or string
// concatenation. Neither operand is popped until the result is ready, so
// a GC triggered by allocating the concatenated string cannot collect them
// out from under it.
func (vm *VM) add() {
	a, b := vm.peek(1), vm.peek(0)
	switch {
	case value.IsNumber(a) && value.IsNumber(b):
		vm.pop()
		vm.pop()
		vm.push(value.NumberVal(value.AsNumber(a) + value.AsNumber(b)))
	case value.IsString(a) && value.IsString(b):
		vm.concatenate()
	default:
		panic(runtimeErr("Operands must be two numbers or two strings."))
	}
}

func (vm *VM) concatenate() {
	b := value.AsString(vm.peek(0))
	a := value.AsString(vm.peek(1))
	chars := make([]byte, 0, len(a.Chars)+len(b.Chars))
	chars = append(chars, a.Chars...)
	chars = append(chars, b.Chars...)
	result := vm.InternString(chars)
	vm.pop()
	vm.pop()
	vm.push(value.StringVal(result))
}

func (vm *VM) getProperty(frame *callFrame) {
	if !value.IsInstance(vm.peek(0)) {
		panic(runtimeErr("Only instances have properties."))
	}
	instance := value.AsInstance(vm.peek(0))
	name := vm.readString(frame)

	if v, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return
	}
	if bound, ok := vm.bindMethod(instance.Class, name); ok {
		vm.pop()
		vm.push(bound)
		return
	}
	panic(runtimeErr(fmt.Sprintf("Undefined property '%s'.", name)))
}

func (vm *VM) setProperty(frame *callFrame) {
	if !value.IsInstance(vm.peek(1)) {
		panic(runtimeErr("Only instances have fields."))
	}
	instance := value.AsInstance(vm.peek(1))
	name := vm.readString(frame)
	instance.Fields.Put(name, vm.peek(0))
	v := vm.pop()
	vm.pop()
	vm.push(v)
}

func (vm *VM) getSuper(frame *callFrame) {
	name := vm.readString(frame)
	superclass := value.AsClass(vm.pop())
	bound, ok := vm.bindMethod(superclass, name)
	if !ok {
		panic(runtimeErr(fmt.Sprintf("Undefined property '%s'.", name)))
	}
	vm.pop() // this
	vm.push(bound)
}
