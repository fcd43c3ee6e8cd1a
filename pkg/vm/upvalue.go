package vm

import (
	"unsafe"

	"github.com/emberlang/ember/pkg/value"
)

// slotAddr orders two *Value pointers into the VM's single, fixed-capacity
// value stack. Go does not define <,> on pointer types directly, but the
// backing array never grows after New() allocates it, so converting to
// uintptr for this one transient comparison is safe; the pointers are
// never stored as uintptrs across a GC-observable point.
func slotAddr(p *value.Value) uintptr { return uintptr(unsafe.Pointer(p)) }

// captureUpvalue returns the open upvalue pointing at slot, creating one
// if none exists yet. The open-upvalue list is kept sorted by descending
// slot address so this walk can stop as soon as it passes slot, and so
// that two identifier references to the same captured variable share one
// Upvalue object.
func (vm *VM) captureUpvalue(slot *value.Value) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	uv := vm.openUpvalues
	for uv != nil && slotAddr(uv.Location) > slotAddr(slot) {
		prev = uv
		uv = uv.Next
	}
	if uv != nil && uv.Location == slot {
		return uv
	}

	created := vm.NewUpvalue(slot)
	created.Next = uv
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues hoists every open upvalue at or above boundary into its
// own closed Value, then unlinks it from the open list: called when a call
// frame returns, or when a block-scoped local captured by a closure goes
// out of scope (CLOSE_UPVALUE).
func (vm *VM) closeUpvalues(boundary int) {
	boundaryAddr := slotAddr(&vm.stack[boundary])
	for vm.openUpvalues != nil && slotAddr(vm.openUpvalues.Location) >= boundaryAddr {
		uv := vm.openUpvalues
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		vm.openUpvalues = uv.Next
		uv.Next = nil
	}
}
