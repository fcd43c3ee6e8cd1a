package value

// ObjUpvalue is a captured variable. While open, Location points into a
// still-live call frame's stack slot; Next chains it into the VM's
// open-upvalues list, kept sorted by descending stack slot.
// Closing an upvalue copies *Location into Closed and repoints Location at
// Closed, after which Next is meaningless (the upvalue has left the list).
type ObjUpvalue struct {
	Obj
	Location *Value
	Closed   Value
	Next     *ObjUpvalue
}

func NewObjUpvalue(slot *Value) *ObjUpvalue {
	return &ObjUpvalue{Obj: newObj(ObjUpvalueType), Location: slot, Closed: NilVal()}
}

func (u *ObjUpvalue) String() string { return "upvalue" }

func IsUpvalue(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjUpvalueType }
func AsUpvalue(v Value) *ObjUpvalue { return AsObj(v).asUpvalue() }
func UpvalueVal(u *ObjUpvalue) Value { return ObjVal(&u.Obj) }

// ObjClosure binds a function prototype to the upvalues its nested
// functions captured from enclosing scopes.
type ObjClosure struct {
	Obj
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func NewObjClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		Obj:      newObj(ObjClosureType),
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

func (c *ObjClosure) String() string { return c.Function.String() }

func IsClosure(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjClosureType }
func AsClosure(v Value) *ObjClosure { return AsObj(v).asClosure() }
func ClosureVal(c *ObjClosure) Value { return ObjVal(&c.Obj) }
