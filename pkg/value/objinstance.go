package value

import "github.com/dolthub/swiss"

// ObjInstance is an instance of a class: a reference to its class and a
// mapping from field name to Value. A field lookup that misses falls
// through to the class's method table and produces a bound method; that
// fallback lives in the VM, not here.
type ObjInstance struct {
	Obj
	Class  *ObjClass
	Fields *swiss.Map[*ObjString, Value]
}

func NewObjInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{
		Obj:    newObj(ObjInstanceType),
		Class:  class,
		Fields: swiss.NewMap[*ObjString, Value](4),
	}
}

func (i *ObjInstance) String() string { return i.Class.Name.String() + " instance" }

func IsInstance(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjInstanceType }
func AsInstance(v Value) *ObjInstance { return AsObj(v).asInstance() }
func InstanceVal(i *ObjInstance) Value { return ObjVal(&i.Obj) }

// ObjBoundMethod pairs a receiver with the Closure to invoke on it, so that
// extracting a method from an instance (`obj.method`) and calling it later
// still dispatches with the right `this`.
type ObjBoundMethod struct {
	Obj
	Receiver Value
	Method   *ObjClosure
}

func NewObjBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	return &ObjBoundMethod{Obj: newObj(ObjBoundMethodType), Receiver: receiver, Method: method}
}

func (b *ObjBoundMethod) String() string { return b.Method.String() }

func IsBoundMethod(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjBoundMethodType }
func AsBoundMethod(v Value) *ObjBoundMethod { return AsObj(v).asBoundMethod() }
func BoundMethodVal(b *ObjBoundMethod) Value { return ObjVal(&b.Obj) }
