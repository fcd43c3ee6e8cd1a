package vm

import (
	"github.com/sirupsen/logrus"

	"github.com/emberlang/ember/pkg/value"
)

// gcHeapGrowFactor scales the allocation watermark: after each collection
// the next one is triggered at 2x the live heap size.
const gcHeapGrowFactor = 2

// collectGarbage runs one full tricolor mark-sweep cycle: mark every root,
// drain the resulting gray worklist to black, weakly clean the string
// intern table, then sweep every unmarked object from the all-objects
// list.
func (vm *VM) collectGarbage() {
	before := vm.bytesAllocated
	vm.log.Debug("gc begin")

	vm.markRoots()
	vm.traceReferences()
	vm.strings.RemoveWhite()
	vm.sweep()

	vm.nextGC = vm.bytesAllocated * gcHeapGrowFactor

	vm.log.WithFields(logrus.Fields{
		"freed": before - vm.bytesAllocated,
		"live":  vm.bytesAllocated,
		"next":  vm.nextGC,
	}).Debug("gc end")
}

func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := range vm.frames {
		vm.markObject(&vm.frames[i].closure.Obj)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.Next {
		vm.markObject(&uv.Obj)
	}
	vm.globals.Iter(func(k *value.ObjString, v value.Value) bool {
		vm.markObject(&k.Obj)
		vm.markValue(v)
		return false
	})
	if vm.initString != nil {
		vm.markObject(&vm.initString.Obj)
	}
	if vm.activeCompiler != nil {
		vm.activeCompiler.MarkRoots(func(fn *value.ObjFunction) {
			vm.markObject(&fn.Obj)
		})
	}
}

func (vm *VM) markValue(v value.Value) {
	if value.IsObj(v) {
		vm.markObject(value.AsObj(v))
	}
}

func (vm *VM) markObject(obj *value.Obj) {
	if obj == nil || obj.Marked {
		return
	}
	obj.Marked = true
	vm.grayStack = append(vm.grayStack, obj)
}

// traceReferences drains the gray worklist, blackening each object by
// marking everything it references in turn.
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		obj := vm.grayStack[len(vm.grayStack)-1]
		vm.grayStack = vm.grayStack[:len(vm.grayStack)-1]
		vm.blackenObject(obj)
	}
}

// blackenObject marks everything a single object directly references.
// Every concrete type is recovered from the bare *Obj header by
// round-tripping through a Value.
func (vm *VM) blackenObject(obj *value.Obj) {
	v := value.ObjVal(obj)
	switch obj.Type {
	case value.ObjStringType, value.ObjNativeType:
		// no outgoing references
	case value.ObjUpvalueType:
		vm.markValue(value.AsUpvalue(v).Closed)
	case value.ObjFunctionType:
		fn := value.AsFunction(v)
		if fn.Name != nil {
			vm.markObject(&fn.Name.Obj)
		}
		for _, c := range fn.Chunk.Constants {
			vm.markValue(c)
		}
	case value.ObjClosureType:
		c := value.AsClosure(v)
		vm.markObject(&c.Function.Obj)
		for _, uv := range c.Upvalues {
			if uv != nil {
				vm.markObject(&uv.Obj)
			}
		}
	case value.ObjClassType:
		cl := value.AsClass(v)
		vm.markObject(&cl.Name.Obj)
		cl.Methods.Iter(func(k *value.ObjString, mv value.Value) bool {
			vm.markObject(&k.Obj)
			vm.markValue(mv)
			return false
		})
	case value.ObjInstanceType:
		inst := value.AsInstance(v)
		vm.markObject(&inst.Class.Obj)
		inst.Fields.Iter(func(k *value.ObjString, fv value.Value) bool {
			vm.markObject(&k.Obj)
			vm.markValue(fv)
			return false
		})
	case value.ObjBoundMethodType:
		bm := value.AsBoundMethod(v)
		vm.markValue(bm.Receiver)
		vm.markObject(&bm.Method.Obj)
	}
}

// sweep walks the all-objects intrusive list, unlinking and freeing every
// object that wasn't reached this cycle and resetting the mark bit on
// every survivor for the next cycle.
func (vm *VM) sweep() {
	var prev *value.Obj
	obj := vm.objects
	for obj != nil {
		if obj.Marked {
			obj.Marked = false
			prev = obj
			obj = obj.Next
			continue
		}
		unreached := obj
		obj = obj.Next
		if prev != nil {
			prev.Next = obj
		} else {
			vm.objects = obj
		}
		vm.freeObject(unreached)
	}
}

// freeObject refunds an object's size against the allocation watermark and
// drops its owned buffers so the host runtime can reclaim them. The object
// header itself stays valid: nothing live points at it anymore, or sweep
// would not have reached it unmarked.
func (vm *VM) freeObject(obj *value.Obj) {
	v := value.ObjVal(obj)
	size := 0
	switch obj.Type {
	case value.ObjStringType:
		s := value.AsString(v)
		size = sizeString + len(s.Chars)
		s.Chars = nil
	case value.ObjFunctionType:
		fn := value.AsFunction(v)
		size = sizeFunction
		fn.Chunk = value.Chunk{}
	case value.ObjNativeType:
		size = sizeNative
	case value.ObjClosureType:
		c := value.AsClosure(v)
		size = sizeClosure
		c.Upvalues = nil
	case value.ObjUpvalueType:
		size = sizeUpvalue
	case value.ObjClassType:
		cl := value.AsClass(v)
		size = sizeClass
		cl.Methods = nil
	case value.ObjInstanceType:
		inst := value.AsInstance(v)
		size = sizeInstance
		inst.Fields = nil
	case value.ObjBoundMethodType:
		size = sizeBoundMethod
	}
	vm.bytesAllocated -= size
}
