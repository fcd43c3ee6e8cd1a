package vm

import (
	"github.com/emberlang/ember/pkg/value"
)

// Rough per-object byte costs used only to drive the allocation-watermark
// GC trigger. Not an exact sizeof; the watermark needs consistency, not
// precision.
const (
	sizeString      = 32
	sizeFunction    = 96
	sizeNative      = 48
	sizeClosure     = 48
	sizeUpvalue     = 32
	sizeClass       = 64
	sizeInstance    = 48
	sizeBoundMethod = 32
)

// track links obj into the all-objects list and charges size against the
// GC's allocation watermark, collecting if StressGC is set or the
// watermark has been crossed. Nothing references obj yet, so it is held on
// the value stack for the duration of that collection.
func (vm *VM) track(obj *value.Obj, size int) {
	obj.Next = vm.objects
	vm.objects = obj
	vm.bytesAllocated += size

	if vm.StressGC || vm.bytesAllocated > vm.nextGC {
		vm.push(value.ObjVal(obj))
		vm.collectGarbage()
		vm.pop()
	}
}

// InternString implements compiler.Allocator: it returns the canonical
// *ObjString for chars, allocating and tracking a new one only if no
// equal-content string is already interned.
func (vm *VM) InternString(chars []byte) *value.ObjString {
	hash := value.HashBytes(chars)
	if s := vm.strings.FindString(chars, hash); s != nil {
		return s
	}
	s := value.NewObjString(chars, hash)
	// Pushed before track can trigger a collection, so the new string is
	// reachable from a root while the intern table may resize.
	vm.push(value.StringVal(s))
	vm.track(&s.Obj, sizeString+len(chars))
	vm.strings.Insert(s)
	vm.pop()
	return s
}

// NewFunction implements compiler.Allocator.
func (vm *VM) NewFunction() *value.ObjFunction {
	fn := value.NewObjFunction()
	vm.track(&fn.Obj, sizeFunction)
	return fn
}

func (vm *VM) NewNative(name string, fn value.NativeFn) *value.ObjNative {
	n := value.NewObjNative(name, fn)
	vm.track(&n.Obj, sizeNative)
	return n
}

func (vm *VM) NewClosure(fn *value.ObjFunction) *value.ObjClosure {
	c := value.NewObjClosure(fn)
	vm.track(&c.Obj, sizeClosure)
	return c
}

func (vm *VM) NewUpvalue(slot *value.Value) *value.ObjUpvalue {
	u := value.NewObjUpvalue(slot)
	vm.track(&u.Obj, sizeUpvalue)
	return u
}

func (vm *VM) NewClass(name *value.ObjString) *value.ObjClass {
	c := value.NewObjClass(name)
	vm.track(&c.Obj, sizeClass)
	return c
}

func (vm *VM) NewInstance(class *value.ObjClass) *value.ObjInstance {
	i := value.NewObjInstance(class)
	vm.track(&i.Obj, sizeInstance)
	return i
}

func (vm *VM) NewBoundMethod(receiver value.Value, method *value.ObjClosure) *value.ObjBoundMethod {
	b := value.NewObjBoundMethod(receiver, method)
	vm.track(&b.Obj, sizeBoundMethod)
	return b
}
