package elab

import (
	"fmt"
	"sort"
	"strings"
)

// Scope is a flat mapping from name to resolved Value. The binder produces
// one per distinct instantiation as the parameter environment; the
// specializer extends a copy of it with body locals. Insertion order is
// retained so that canonical keys and rendering are deterministic.
type Scope struct {
	names []string
	vals  map[string]Value
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vals: make(map[string]Value)}
}

// Bind associates name with v. Rebinding an existing name overwrites the
// value in place (last write wins) without duplicating the name.
func (s *Scope) Bind(name string, v Value) {
	if _, exists := s.vals[name]; !exists {
		s.names = append(s.names, name)
	}
	s.vals[name] = v
}

// Lookup returns the value bound to name.
func (s *Scope) Lookup(name string) (Value, bool) {
	v, ok := s.vals[name]
	return v, ok
}

// Names returns the bound names in insertion order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.names...)
}

// clone returns an independent copy sharing no mutable state.
func (s *Scope) clone() *Scope {
	out := &Scope{
		names: append([]string(nil), s.names...),
		vals:  make(map[string]Value, len(s.vals)),
	}
	for k, v := range s.vals {
		out.vals[k] = v
	}
	return out
}

// key returns a canonical encoding of the scope's bindings. Bindings are
// keyed by sorted name so that two value-equal environments built in
// different orders encode identically.
func (s *Scope) key() string {
	names := append([]string(nil), s.names...)
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('=')
		s.vals[n].appendKey(&b)
		b.WriteByte(';')
	}
	return b.String()
}

// Bind resolves a component definition's formal parameters against
// caller-supplied overrides, producing the parameter environment for one
// instantiation.
//
// Formals are processed in declaration order. An overridden formal takes the
// caller's value after a type check; an omitted formal falls back to its
// default expression, evaluated against the environment built so far — a
// default may therefore reference earlier formals but never later ones.
// The result is a self-contained snapshot carrying no reference to def.
func Bind(reg *Registry, def *ComponentDef, overrides map[string]Value) (*Scope, error) {
	declared := make(map[string]int, len(def.Formals))
	for i, f := range def.Formals {
		declared[f.Name] = i
	}

	// Strict validation: any override not matching a declared formal is an
	// error, never silently dropped.
	for name := range overrides {
		if _, ok := declared[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
		}
	}

	env := NewScope()
	for i, f := range def.Formals {
		if v, provided := overrides[f.Name]; provided {
			if !f.Type.Accepts(v) {
				return nil, fmt.Errorf("%w: %s declared %s, got %s",
					ErrParameterTypeMismatch, f.Name, f.Type, v.Kind)
			}
			env.Bind(f.Name, v)
			continue
		}

		if f.Default == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, f.Name)
		}

		// A default referencing a formal declared after this one would
		// observe an unbound name; reject it explicitly rather than
		// surfacing a confusing undefined-reference error.
		for _, ref := range collectRefs(f.Default, nil) {
			if j, isFormal := declared[ref]; isFormal && j > i {
				return nil, fmt.Errorf("%w: default of %s references later formal %s",
					ErrForwardReference, f.Name, ref)
			}
		}

		v, err := Evaluate(reg, env, f.Default)
		if err != nil {
			return nil, fmt.Errorf("default of %s: %w", f.Name, err)
		}
		if !f.Type.Accepts(v) {
			return nil, fmt.Errorf("%w: default of %s declared %s, got %s",
				ErrParameterTypeMismatch, f.Name, f.Type, v.Kind)
		}
		env.Bind(f.Name, v)
	}

	return env, nil
}
