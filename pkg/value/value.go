package value

import (
	"fmt"
	"strconv"
)

// Equal implements the language's equality law, in terms of the shared
// IsX/AsX contract both Value builds provide, so the logic itself never
// branches on representation:
//
//	a == b iff (both numbers, numerically equal, neither NaN) or
//	(same non-number type and identical content); for strings, content
//	equality is reference equality (enabled by interning).
func Equal(a, b Value) bool {
	if IsNumber(a) && IsNumber(b) {
		return AsNumber(a) == AsNumber(b) // IEEE: NaN == NaN is false
	}
	switch {
	case IsNil(a):
		return IsNil(b)
	case IsBool(a):
		return IsBool(b) && AsBool(a) == AsBool(b)
	case IsObj(a):
		return IsObj(b) && AsObj(a) == AsObj(b)
	default:
		return false
	}
}

// IsFalsey reports whether v is "falsey": nil and false are, everything
// else (including 0 and the empty string) is truthy.
func IsFalsey(v Value) bool {
	return IsNil(v) || (IsBool(v) && !AsBool(v))
}

// TypeName returns a short, human-readable type name, used in runtime error
// messages.
func TypeName(v Value) string {
	switch {
	case IsNil(v):
		return "nil"
	case IsBool(v):
		return "boolean"
	case IsNumber(v):
		return "number"
	case IsObj(v):
		return AsObj(v).Type.String()
	default:
		return "unknown"
	}
}

// Format renders v the way PRINT does: the external representation used
// for program output and for the REPL's result echo.
func Format(v Value) string {
	switch {
	case IsNil(v):
		return "nil"
	case IsBool(v):
		if AsBool(v) {
			return "true"
		}
		return "false"
	case IsNumber(v):
		return strconv.FormatFloat(AsNumber(v), 'g', -1, 64)
	case IsObj(v):
		return formatObj(AsObj(v))
	default:
		return "<unknown value>"
	}
}

func formatObj(o *Obj) string {
	switch o.Type {
	case ObjStringType:
		return o.asString().String()
	case ObjFunctionType:
		return o.asFunction().String()
	case ObjNativeType:
		return o.asNative().String()
	case ObjClosureType:
		return o.asClosure().String()
	case ObjUpvalueType:
		return o.asUpvalue().String()
	case ObjClassType:
		return o.asClass().String()
	case ObjInstanceType:
		return o.asInstance().String()
	case ObjBoundMethodType:
		return o.asBoundMethod().String()
	default:
		return fmt.Sprintf("<obj %v>", o.Type)
	}
}
