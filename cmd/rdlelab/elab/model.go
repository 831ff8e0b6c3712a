package elab

import "strconv"

// SpecializedComponent is the result of specializing one component
// definition under one parameter environment: the resolved property
// assignments from its body plus its expanded child instances. It is built
// once per distinct (definition, environment) pair, owned by the
// specialization cache, and shared by every instantiation site with a
// value-equal environment. Never mutated after construction.
type SpecializedComponent struct {
	DefName string
	Kind    CompKind

	propNames []string
	props     map[string]Value

	Children []*Instance
}

// Property returns the resolved value assigned to name in this
// specialization's own body.
func (s *SpecializedComponent) Property(name string) (Value, bool) {
	v, ok := s.props[name]
	return v, ok
}

// PropertyNames returns the assigned property names in first-assignment
// body order.
func (s *SpecializedComponent) PropertyNames() []string {
	return append([]string(nil), s.propNames...)
}

// Child returns the first child instance with the given name. For an
// instance array this is the element with ordinal 0.
func (s *SpecializedComponent) Child(name string) (*Instance, bool) {
	for _, c := range s.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s *SpecializedComponent) setProperty(name string, v Value) {
	if _, exists := s.props[name]; !exists {
		s.propNames = append(s.propNames, name)
	}
	s.props[name] = v
}

// Instance is one placement of a SpecializedComponent inside its parent:
// possibly one element of an instance array. Instances are the only
// entities carrying position; they are created during tree assembly and
// never mutated afterwards. Property assignments targeting a named child
// land in an instance-level overlay so that the shared definition stays
// untouched.
type Instance struct {
	Name    string
	Ordinal int // -1 for a scalar (non-array) instance
	Def     *SpecializedComponent

	overlayNames []string
	overlay      map[string]Value
}

// Kind returns the component kind of the underlying definition.
func (i *Instance) Kind() CompKind {
	return i.Def.Kind
}

// Property resolves name against the instance overlay first, then the
// shared definition.
func (i *Instance) Property(name string) (Value, bool) {
	if v, ok := i.overlay[name]; ok {
		return v, true
	}
	return i.Def.Property(name)
}

// PropertyNames returns every property name visible on this instance:
// definition-level assignments first, then overlay-only names, each in
// first-assignment order.
func (i *Instance) PropertyNames() []string {
	names := i.Def.PropertyNames()
	for _, n := range i.overlayNames {
		if _, inDef := i.Def.Property(n); !inDef {
			names = append(names, n)
		}
	}
	return names
}

// Children returns the ordered child instances of the underlying definition.
func (i *Instance) Children() []*Instance {
	return i.Def.Children
}

func (i *Instance) setProperty(name string, v Value) {
	if i.overlay == nil {
		i.overlay = make(map[string]Value)
	}
	if _, exists := i.overlay[name]; !exists {
		i.overlayNames = append(i.overlayNames, name)
	}
	i.overlay[name] = v
}

// ElaboratedTree is the engine's sole output: an immutable hierarchy of
// instances rooted at one top-level addrmap instantiation. It is handed as
// is to downstream collaborators (address allocators, generators).
type ElaboratedTree struct {
	Root *Instance
}

// Walk visits every instance depth-first in declaration order, passing the
// dotted path from the root. Array elements are addressed with an index
// suffix, e.g. "top.myRegInst[3]".
func (t *ElaboratedTree) Walk(fn func(path string, inst *Instance)) {
	var walk func(path string, inst *Instance)
	walk = func(path string, inst *Instance) {
		fn(path, inst)
		for _, c := range inst.Children() {
			walk(path+"."+c.PathSegment(), c)
		}
	}
	walk(t.Root.PathSegment(), t.Root)
}

// PathSegment returns the instance name, with the ordinal suffix for array
// elements.
func (i *Instance) PathSegment() string {
	if i.Ordinal < 0 {
		return i.Name
	}
	return i.Name + "[" + strconv.Itoa(i.Ordinal) + "]"
}
