package value

// ObjFunction is a compiled function prototype: its arity, the number of
// upvalues its closures must capture, its owned bytecode chunk, and an
// optional name (nil for the anonymous top-level script function).
type ObjFunction struct {
	Obj
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString
}

func NewObjFunction() *ObjFunction {
	return &ObjFunction{Obj: newObj(ObjFunctionType)}
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.String() + ">"
}

func IsFunction(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjFunctionType }
func AsFunction(v Value) *ObjFunction { return AsObj(v).asFunction() }
func FunctionVal(f *ObjFunction) Value { return ObjVal(&f.Obj) }

// NativeFn is the signature every host-language function exposed to ember
// scripts must implement: it receives the full argument window and returns
// a single result or an error, which the VM surfaces as a runtime error.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a host-language function so it can be called like any
// other callable value.
type ObjNative struct {
	Obj
	Name string
	Fn   NativeFn
}

func NewObjNative(name string, fn NativeFn) *ObjNative {
	return &ObjNative{Obj: newObj(ObjNativeType), Name: name, Fn: fn}
}

func (n *ObjNative) String() string { return "<native fn " + n.Name + ">" }

func IsNative(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjNativeType }
func AsNative(v Value) *ObjNative { return AsObj(v).asNative() }
func NativeVal(n *ObjNative) Value { return ObjVal(&n.Obj) }
