package elab

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variants of a Value.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindEnum
	KindStruct
	KindArray
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "longint"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindRef:
		return "reference"
	default:
		return "unknown"
	}
}

// Value is the tagged union carried by parameters and properties.
// Exactly one payload field is meaningful, selected by Kind.
// Struct and array payloads are immutable once constructed.
type Value struct {
	Kind   Kind
	Int    int64
	Bool   bool
	Str    string
	Enum   EnumMember
	Struct *StructValue
	Array  *ArrayValue
	Ref    *Instance
}

// EnumMember is one member of a builtin RDL enumeration
// (AccessType, OnReadType, OnWriteType, AddressingType, PrecedenceType).
type EnumMember struct {
	Type string
	Name string
	Ord  int
}

// StructValue is an instance of a declared struct type.
// Fields is ordered to match Type.Members.
type StructValue struct {
	Type   *StructType
	Fields []Value
}

// Field returns the value of the named member.
func (s *StructValue) Field(name string) (Value, bool) {
	for i, m := range s.Type.Members {
		if m.Name == name {
			return s.Fields[i], true
		}
	}
	return Value{}, false
}

// ArrayValue is an ordered sequence of element values.
// Elem records the element type; it is the zero TypeRef for an
// empty literal whose element type could not be inferred.
type ArrayValue struct {
	Elem  TypeRef
	Elems []Value
}

func IntVal(v int64) Value  { return Value{Kind: KindInt, Int: v} }
func BoolVal(v bool) Value  { return Value{Kind: KindBool, Bool: v} }
func StrVal(v string) Value { return Value{Kind: KindString, Str: v} }

func EnumVal(m EnumMember) Value     { return Value{Kind: KindEnum, Enum: m} }
func StructVal(s *StructValue) Value { return Value{Kind: KindStruct, Struct: s} }
func ArrayVal(a *ArrayValue) Value   { return Value{Kind: KindArray, Array: a} }
func RefVal(inst *Instance) Value    { return Value{Kind: KindRef, Ref: inst} }

// Equal reports deep structural equality. Arrays and structs are compared
// element-wise; references compare by target identity.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return a.Int == b.Int
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.Str == b.Str
	case KindEnum:
		return a.Enum.Type == b.Enum.Type && a.Enum.Name == b.Enum.Name
	case KindStruct:
		if a.Struct.Type.Name != b.Struct.Type.Name {
			return false
		}
		if len(a.Struct.Fields) != len(b.Struct.Fields) {
			return false
		}
		for i := range a.Struct.Fields {
			if !Equal(a.Struct.Fields[i], b.Struct.Fields[i]) {
				return false
			}
		}
		return true
	case KindArray:
		if len(a.Array.Elems) != len(b.Array.Elems) {
			return false
		}
		for i := range a.Array.Elems {
			if !Equal(a.Array.Elems[i], b.Array.Elems[i]) {
				return false
			}
		}
		return true
	case KindRef:
		return a.Ref == b.Ref
	}
	return false
}

// appendKey writes a canonical encoding of v to b. Two values are
// structurally equal exactly when their encodings match, which makes the
// encoding usable as a specialization cache key.
func (v Value) appendKey(b *strings.Builder) {
	switch v.Kind {
	case KindInt:
		b.WriteByte('i')
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindBool:
		if v.Bool {
			b.WriteString("b1")
		} else {
			b.WriteString("b0")
		}
	case KindString:
		b.WriteByte('s')
		b.WriteString(strconv.Itoa(len(v.Str)))
		b.WriteByte(':')
		b.WriteString(v.Str)
	case KindEnum:
		b.WriteByte('e')
		b.WriteString(v.Enum.Type)
		b.WriteByte('.')
		b.WriteString(v.Enum.Name)
	case KindStruct:
		b.WriteByte('{')
		b.WriteString(v.Struct.Type.Name)
		for _, f := range v.Struct.Fields {
			b.WriteByte(',')
			f.appendKey(b)
		}
		b.WriteByte('}')
	case KindArray:
		b.WriteByte('[')
		for i, e := range v.Array.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			e.appendKey(b)
		}
		b.WriteByte(']')
	case KindRef:
		b.WriteByte('r')
		if v.Ref != nil {
			b.WriteString(v.Ref.Name)
		}
	}
}

// String renders the value in RDL-flavoured literal syntax.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return strconv.Quote(v.Str)
	case KindEnum:
		return v.Enum.Type + "::" + v.Enum.Name
	case KindStruct:
		var b strings.Builder
		b.WriteString(v.Struct.Type.Name)
		b.WriteString("'{")
		for i, m := range v.Struct.Type.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.Name)
			b.WriteString(": ")
			b.WriteString(v.Struct.Fields[i].String())
		}
		b.WriteByte('}')
		return b.String()
	case KindArray:
		var b strings.Builder
		b.WriteString("'{")
		for i, e := range v.Array.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteByte('}')
		return b.String()
	case KindRef:
		if v.Ref == nil {
			return "<nil ref>"
		}
		return fmt.Sprintf("&%s", v.Ref.Name)
	}
	return "<invalid>"
}
