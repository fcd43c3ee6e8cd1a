package vm

import (
	"fmt"
	"time"

	"github.com/emberlang/ember/pkg/value"
)

// defineNatives installs the VM's entire native-function surface: just
// `clock`. No file I/O or networking is exposed to the language.
func (vm *VM) defineNatives() {
	vm.defineNative("clock", clockNative)
}

func (vm *VM) defineNative(name string, fn value.NativeFn) {
	nameStr := vm.InternString([]byte(name))
	// The name string is rooted on the stack before the native allocates,
	// and both stay rooted through the global-table write; the intern table
	// alone would not keep the name alive.
	vm.push(value.StringVal(nameStr))
	native := vm.NewNative(name, fn)
	vm.push(value.NativeVal(native))
	vm.globals.Put(nameStr, vm.peek(0))
	vm.pop()
	vm.pop()
}

func clockNative(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return value.NilVal(), fmt.Errorf("Expected 0 arguments but got %d.", len(args))
	}
	return value.NumberVal(float64(time.Now().UnixNano()) / float64(time.Second)), nil
}
