//go:build !nanboxed

// This file implements the tagged-union Value representation: a
// discriminator plus a payload. Go has no overlapping union storage
// without unsafe, so the payload is modeled as separate fields, only one
// of which is meaningful for any given kind. That is behaviorally
// identical to a real union. This is the default build; the `nanboxed`
// build tag switches to value_nanbox.go instead.
package value

// Representation names which Value build this binary was compiled with,
// reported by `ember version`, since the choice is made at build time via
// the `nanboxed` tag rather than at runtime.
const Representation = "tagged"

type kind byte

const (
	kindNil kind = iota
	kindBool
	kindNumber
	kindObj
)

// Value is a tagged dynamic value: nil, boolean, double-precision number,
// or a heap-object reference.
type Value struct {
	k       kind
	number  float64
	boolean bool
	obj     *Obj
}

var nilValue = Value{k: kindNil}

func NilVal() Value             { return nilValue }
func BoolVal(b bool) Value      { return Value{k: kindBool, boolean: b} }
func NumberVal(n float64) Value { return Value{k: kindNumber, number: n} }
func ObjVal(o *Obj) Value       { return Value{k: kindObj, obj: o} }

func IsNil(v Value) bool    { return v.k == kindNil }
func IsBool(v Value) bool   { return v.k == kindBool }
func IsNumber(v Value) bool { return v.k == kindNumber }
func IsObj(v Value) bool    { return v.k == kindObj }

func AsBool(v Value) bool      { return v.boolean }
func AsNumber(v Value) float64 { return v.number }
func AsObj(v Value) *Obj       { return v.obj }
