package value

// ObjString is an interned, immutable byte sequence. Two live strings with
// identical bytes always share one allocation. The VM's allocator, not
// this type, is responsible for enforcing that via the intern table.
type ObjString struct {
	Obj
	Chars []byte
	Hash  uint32
}

// NewObjString builds an ObjString header around chars and its precomputed
// hash. It does not intern; callers (the VM allocator) must consult the
// intern table first.
func NewObjString(chars []byte, hash uint32) *ObjString {
	return &ObjString{Obj: newObj(ObjStringType), Chars: chars, Hash: hash}
}

func (s *ObjString) String() string { return string(s.Chars) }

func IsString(v Value) bool { return IsObj(v) && AsObj(v).Type == ObjStringType }
func AsString(v Value) *ObjString { return AsObj(v).asString() }
func StringVal(s *ObjString) Value { return ObjVal(&s.Obj) }
