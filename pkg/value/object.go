// Package value implements ember's data model: the Value representation
// (both a tagged-union build and a NaN-boxed build, selected by the
// `nanboxed` build tag, behind an identical function contract), the heap
// object variants, the bytecode Chunk, and the string intern table.
//
// Concrete object types are recovered from a bare *Obj header by
// reinterpreting the pointer once the caller has checked the Type tag.
// Obj is always embedded as the first field of a concrete object struct,
// which Go's compiler lays out at offset zero, making the reinterpret-cast
// sound.
package value

import "unsafe"

// ObjType tags which concrete heap object variant an Obj header belongs to.
type ObjType byte

const (
	ObjStringType ObjType = iota
	ObjFunctionType
	ObjNativeType
	ObjClosureType
	ObjUpvalueType
	ObjClassType
	ObjInstanceType
	ObjBoundMethodType
)

func (t ObjType) String() string {
	switch t {
	case ObjStringType:
		return "string"
	case ObjFunctionType:
		return "function"
	case ObjNativeType:
		return "native"
	case ObjClosureType:
		return "closure"
	case ObjUpvalueType:
		return "upvalue"
	case ObjClassType:
		return "class"
	case ObjInstanceType:
		return "instance"
	case ObjBoundMethodType:
		return "bound method"
	default:
		return "unknown"
	}
}

// Obj is the header every heap object shares: a type tag, the GC mark
// bit, and an intrusive link into the VM's all-objects list. It must be
// the first field of every concrete object struct.
type Obj struct {
	Type   ObjType
	Marked bool
	Next   *Obj
}

func newObj(t ObjType) Obj { return Obj{Type: t} }

// asString reinterprets o as *ObjString. Callers must have already checked
// o.Type == ObjStringType (via IsString or equivalent).
func (o *Obj) asString() *ObjString { return (*ObjString)(unsafe.Pointer(o)) }
func (o *Obj) asFunction() *ObjFunction { return (*ObjFunction)(unsafe.Pointer(o)) }
func (o *Obj) asNative() *ObjNative { return (*ObjNative)(unsafe.Pointer(o)) }
func (o *Obj) asClosure() *ObjClosure { return (*ObjClosure)(unsafe.Pointer(o)) }
func (o *Obj) asUpvalue() *ObjUpvalue { return (*ObjUpvalue)(unsafe.Pointer(o)) }
func (o *Obj) asClass() *ObjClass { return (*ObjClass)(unsafe.Pointer(o)) }
func (o *Obj) asInstance() *ObjInstance { return (*ObjInstance)(unsafe.Pointer(o)) }
func (o *Obj) asBoundMethod() *ObjBoundMethod { return (*ObjBoundMethod)(unsafe.Pointer(o)) }
