package elab

import "fmt"

// Engine elaborates registered definitions into immutable instance trees.
// One Engine owns one specialization cache; it is safe for concurrent use.
type Engine struct {
	reg  *Registry
	spec *specializer
}

func NewEngine(reg *Registry) *Engine {
	return &Engine{reg: reg, spec: newSpecializer(reg)}
}

// Registry returns the engine's definition registry.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Elaborate resolves the named top-level definition under the given
// parameter overrides and returns the elaborated tree rooted at a single
// instance of it.
func (e *Engine) Elaborate(top string, overrides map[string]Value) (*ElaboratedTree, error) {
	if err := validateRegistry(e.reg); err != nil {
		return nil, err
	}

	def, ok := e.reg.Component(top)
	if !ok {
		return nil, fmt.Errorf("phase=elaborate path=%s: %w", top, ErrUnknownComponent)
	}

	env, err := Bind(e.reg, def, overrides)
	if err != nil {
		return nil, fmt.Errorf("phase=elaborate path=%s: %w", top, err)
	}

	spec, err := e.spec.specialize(def, env, nil, top)
	if err != nil {
		return nil, err
	}

	root := &Instance{Name: top, Ordinal: -1, Def: spec}
	return &ElaboratedTree{Root: root}, nil
}

// Specialize resolves the named definition under the given overrides and
// returns the shared specialized component without wrapping it in a tree.
// Repeated calls with value-equal overrides return the identical cached
// object.
func (e *Engine) Specialize(name string, overrides map[string]Value) (*SpecializedComponent, error) {
	def, ok := e.reg.Component(name)
	if !ok {
		return nil, fmt.Errorf("phase=specialize path=%s: %w", name, ErrUnknownComponent)
	}
	env, err := Bind(e.reg, def, overrides)
	if err != nil {
		return nil, fmt.Errorf("phase=specialize path=%s: %w", name, err)
	}
	return e.spec.specialize(def, env, nil, name)
}
