package value

import "github.com/dolthub/swiss"

// ObjClass is a class: a name and a mapping from method name to Closure.
// Inheritance is resolved at INHERIT-time by copying the parent's method
// table into the child, so method dispatch never walks a
// superclass chain at call time; it is a flat lookup in the class's own
// table. Keyed by interned *ObjString so lookups never re-hash or
// re-compare string content; interning already gives unique pointers.
type ObjClass struct {
	Obj
	Name    *ObjString
	Methods *swiss.Map[*ObjString, Value]
}

func NewObjClass(name *ObjString) *ObjClass {
	return &ObjClass{
		Obj:     newObj(ObjClassType),
		Name:    name,
		Methods: swiss.NewMap[*ObjString, Value](8),
	}
}

func (c *ObjClass) String() string { return c.Name.String() }

func IsClass(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjClassType }
func AsClass(v Value) *ObjClass { return AsObj(v).asClass() }
func ClassVal(c *ObjClass) Value { return ObjVal(&c.Obj) }
