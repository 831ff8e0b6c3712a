package elab

// TypeKind tags the variants of a declared type.
type TypeKind int

const (
	TypeNone TypeKind = iota // unspecified (empty array literals)
	TypeInt
	TypeBool
	TypeString
	TypeEnum
	TypeStruct
	TypeArray
	TypeCompRef
)

// TypeRef is a declared type: a formal parameter's type, a property's type,
// or a struct member's type. Name carries the enum or struct type name;
// Elem carries the element type of an array. Arrays are dynamically sized:
// a TypeRef never constrains array length.
type TypeRef struct {
	Kind TypeKind
	Name string
	Elem *TypeRef
}

func IntType() TypeRef    { return TypeRef{Kind: TypeInt} }
func BoolType() TypeRef   { return TypeRef{Kind: TypeBool} }
func StringType() TypeRef { return TypeRef{Kind: TypeString} }

func EnumType(name string) TypeRef      { return TypeRef{Kind: TypeEnum, Name: name} }
func StructTypeRef(name string) TypeRef { return TypeRef{Kind: TypeStruct, Name: name} }
func ArrayType(elem TypeRef) TypeRef {
	return TypeRef{Kind: TypeArray, Elem: &elem}
}

func (t TypeRef) String() string {
	switch t.Kind {
	case TypeInt:
		return "longint"
	case TypeBool:
		return "boolean"
	case TypeString:
		return "string"
	case TypeEnum, TypeStruct:
		return t.Name
	case TypeArray:
		return t.Elem.String() + "[]"
	case TypeCompRef:
		return "reference"
	}
	return "<none>"
}

// Accepts reports whether v is shape-compatible with the declared type:
// array types accept array values whose elements all conform, struct types
// accept struct instances of the same named type.
func (t TypeRef) Accepts(v Value) bool {
	switch t.Kind {
	case TypeInt:
		return v.Kind == KindInt
	case TypeBool:
		return v.Kind == KindBool
	case TypeString:
		return v.Kind == KindString
	case TypeEnum:
		return v.Kind == KindEnum && v.Enum.Type == t.Name
	case TypeStruct:
		return v.Kind == KindStruct && v.Struct.Type.Name == t.Name
	case TypeArray:
		if v.Kind != KindArray {
			return false
		}
		for _, e := range v.Array.Elems {
			if !t.Elem.Accepts(e) {
				return false
			}
		}
		return true
	case TypeCompRef:
		return v.Kind == KindRef
	}
	return false
}

// StructType is a named ordered sequence of typed members.
type StructType struct {
	Name    string
	Members []StructMember
}

type StructMember struct {
	Name string
	Type TypeRef
}

// Member returns the declared member with the given name and its position.
func (s *StructType) Member(name string) (StructMember, int, bool) {
	for i, m := range s.Members {
		if m.Name == name {
			return m, i, true
		}
	}
	return StructMember{}, -1, false
}

// PropertyType is a named typed property slot with an applicability
// predicate. A nil AppliesTo means the property may be assigned on any
// component kind (`component = all`).
type PropertyType struct {
	Name      string
	Type      TypeRef
	AppliesTo map[CompKind]bool
}

func (p *PropertyType) applicableTo(k CompKind) bool {
	return p.AppliesTo == nil || p.AppliesTo[k]
}

// ---------------------------------------------------------------------------
// Builtin RDL enumerations
// ---------------------------------------------------------------------------

// builtinEnums lists the members of each builtin enumeration, in the
// ordinal order defined by the SystemRDL specification.
var builtinEnums = map[string][]string{
	"AccessType":     {"na", "rw", "r", "w", "rw1", "w1"},
	"OnReadType":     {"rclr", "rset", "ruser"},
	"OnWriteType":    {"woset", "woclr", "wot", "wzs", "wzc", "wzt", "wclr", "wset", "wuser"},
	"AddressingType": {"compact", "regalign", "fullalign"},
	"PrecedenceType": {"hw", "sw"},
}

// LookupEnum resolves a builtin enum member by type and member name.
func LookupEnum(typeName, member string) (EnumMember, bool) {
	members, ok := builtinEnums[typeName]
	if !ok {
		return EnumMember{}, false
	}
	for i, m := range members {
		if m == member {
			return EnumMember{Type: typeName, Name: member, Ord: i + 1}, true
		}
	}
	return EnumMember{}, false
}

// IsBuiltinEnum reports whether the name denotes a builtin enumeration type.
func IsBuiltinEnum(name string) bool {
	_, ok := builtinEnums[name]
	return ok
}
