package elab

import "fmt"

// Registry holds the component, struct, and property definitions available
// during elaboration. Definitions are registered once at load time and are
// read-only afterwards, so a Registry may be shared across concurrent
// specializations without locking.
type Registry struct {
	components map[string]*ComponentDef
	structs    map[string]*StructType
	properties map[string]*PropertyType
}

// NewRegistry returns a Registry pre-populated with the builtin property
// set. User declarations are added on top via the Register methods.
func NewRegistry() *Registry {
	r := &Registry{
		components: make(map[string]*ComponentDef),
		structs:    make(map[string]*StructType),
		properties: make(map[string]*PropertyType),
	}
	registerBuiltinProperties(r)
	return r
}

// RegisterComponent adds a component definition.
// Returns ErrAlreadyDefined if the name is taken.
func (r *Registry) RegisterComponent(def *ComponentDef) error {
	if _, exists := r.components[def.Name]; exists {
		return fmt.Errorf("component %s: %w", def.Name, ErrAlreadyDefined)
	}
	r.components[def.Name] = def
	return nil
}

// RegisterStruct adds a struct type definition.
func (r *Registry) RegisterStruct(st *StructType) error {
	if _, exists := r.structs[st.Name]; exists {
		return fmt.Errorf("struct %s: %w", st.Name, ErrAlreadyDefined)
	}
	r.structs[st.Name] = st
	return nil
}

// RegisterProperty adds a user-defined property declaration.
func (r *Registry) RegisterProperty(p *PropertyType) error {
	if _, exists := r.properties[p.Name]; exists {
		return fmt.Errorf("property %s: %w", p.Name, ErrAlreadyDefined)
	}
	r.properties[p.Name] = p
	return nil
}

// Component returns the named component definition.
func (r *Registry) Component(name string) (*ComponentDef, bool) {
	def, ok := r.components[name]
	return def, ok
}

// Struct returns the named struct type.
func (r *Registry) Struct(name string) (*StructType, bool) {
	st, ok := r.structs[name]
	return st, ok
}

// Property returns the named property declaration.
func (r *Registry) Property(name string) (*PropertyType, bool) {
	p, ok := r.properties[name]
	return p, ok
}

// registerBuiltinProperties installs the subset of the SystemRDL builtin
// property set the elaborator needs. Applicability follows the standard's
// component tables; `name` and `desc` apply everywhere.
func registerBuiltinProperties(r *Registry) {
	regOnly := map[CompKind]bool{CompReg: true}
	memOnly := map[CompKind]bool{CompMem: true}
	fieldOnly := map[CompKind]bool{CompField: true}
	addrmapOnly := map[CompKind]bool{CompAddrmap: true}

	builtins := []*PropertyType{
		{Name: "name", Type: StringType()},
		{Name: "desc", Type: StringType()},
		{Name: "regwidth", Type: IntType(), AppliesTo: regOnly},
		{Name: "accesswidth", Type: IntType(), AppliesTo: regOnly},
		{Name: "shared", Type: BoolType(), AppliesTo: regOnly},
		{Name: "mementries", Type: IntType(), AppliesTo: memOnly},
		{Name: "memwidth", Type: IntType(), AppliesTo: memOnly},
		{Name: "fieldwidth", Type: IntType(), AppliesTo: fieldOnly},
		{Name: "reset", Type: IntType(), AppliesTo: fieldOnly},
		{Name: "sw", Type: EnumType("AccessType"), AppliesTo: fieldOnly},
		{Name: "hw", Type: EnumType("AccessType"), AppliesTo: fieldOnly},
		{Name: "onread", Type: EnumType("OnReadType"), AppliesTo: fieldOnly},
		{Name: "onwrite", Type: EnumType("OnWriteType"), AppliesTo: fieldOnly},
		{Name: "precedence", Type: EnumType("PrecedenceType"), AppliesTo: fieldOnly},
		{Name: "addressing", Type: EnumType("AddressingType"), AppliesTo: addrmapOnly},
		{Name: "hdl_path_slice", Type: ArrayType(StringType())},
	}
	for _, p := range builtins {
		r.properties[p.Name] = p
	}
}
