package elab

import (
	"fmt"
	"sync"
)

// specializer executes component bodies under bound parameter environments
// and memoizes the results. The cache key is (definition name, canonical
// environment encoding), so two instantiation sites with textually
// different but value-equal overrides share one specialization.
//
// The cache is the only shared mutable state during elaboration. An entry
// is inserted before its build starts and published through a completion
// channel: concurrent requests for the same key block until the first build
// finishes, guaranteeing at-most-one construction per key and never
// exposing a partially-built component.
type specializer struct {
	reg *Registry

	mu    sync.Mutex
	cache map[string]*specEntry
}

type specEntry struct {
	done chan struct{}
	sc   *SpecializedComponent
	err  error
}

func newSpecializer(reg *Registry) *specializer {
	return &specializer{
		reg:   reg,
		cache: make(map[string]*specEntry),
	}
}

// specialize returns the specialization of def under env, building it on
// first use. stack holds the definition names currently being built along
// this walk; re-entering one of them is a cycle and is rejected before any
// recursion can grow unbounded.
func (s *specializer) specialize(def *ComponentDef, env *Scope, stack []string, path string) (*SpecializedComponent, error) {
	for _, name := range stack {
		if name == def.Name {
			return nil, fmt.Errorf("phase=specialize path=%s: %w: %s", path, ErrInstantiationCycle, def.Name)
		}
	}

	key := def.Name + "#" + env.key()

	s.mu.Lock()
	if e, ok := s.cache[key]; ok {
		s.mu.Unlock()
		<-e.done
		return e.sc, e.err
	}
	e := &specEntry{done: make(chan struct{})}
	s.cache[key] = e
	s.mu.Unlock()

	e.sc, e.err = s.build(def, env, append(stack, def.Name), path)
	close(e.done)
	return e.sc, e.err
}

// build executes the body statements in declaration order, fail-fast: the
// first error stops the walk for this body. Body locals and sub-component
// names extend a copy of env, never env itself.
func (s *specializer) build(def *ComponentDef, env *Scope, stack []string, path string) (*SpecializedComponent, error) {
	out := &SpecializedComponent{
		DefName: def.Name,
		Kind:    def.Kind,
		props:   make(map[string]Value),
	}
	sc := env.clone()

	for _, stmt := range def.Body {
		switch st := stmt.(type) {
		case LocalStmt:
			v, err := Evaluate(s.reg, sc, st.Value)
			if err != nil {
				return nil, fmt.Errorf("phase=specialize path=%s: local %s: %w", path, st.Name, err)
			}
			sc.Bind(st.Name, v)

		case InstStmt:
			insts, err := s.instantiate(st, sc, stack, path)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, insts...)
			// A scalar sub-component is referenceable by name in later
			// statements of the same body.
			if st.Extent == nil && len(insts) == 1 {
				sc.Bind(st.Name, RefVal(insts[0]))
			}

		case AssignStmt:
			if err := s.assign(st, sc, out, path); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("phase=specialize path=%s: %w: unsupported statement %T", path, ErrInvalidDefinition, stmt)
		}
	}

	return out, nil
}

// instantiate binds a sub-definition's formals against the evaluated
// overrides, recursively specializes it, and expands the declared extent.
func (s *specializer) instantiate(st InstStmt, sc *Scope, stack []string, path string) ([]*Instance, error) {
	subDef, ok := s.reg.Component(st.Def)
	if !ok {
		return nil, fmt.Errorf("phase=specialize path=%s: %w: %s", path, ErrUnknownComponent, st.Def)
	}

	overrides := make(map[string]Value, len(st.Overrides))
	for _, o := range st.Overrides {
		v, err := Evaluate(s.reg, sc, o.Value)
		if err != nil {
			return nil, fmt.Errorf("phase=specialize path=%s: override .%s: %w", path, o.Formal, err)
		}
		overrides[o.Formal] = v
	}

	subEnv, err := Bind(s.reg, subDef, overrides)
	if err != nil {
		return nil, fmt.Errorf("phase=specialize path=%s: inst %s: %w", path, st.Name, err)
	}

	childPath := joinPath(path, st.Name)
	spec, err := s.specialize(subDef, subEnv, stack, childPath)
	if err != nil {
		return nil, err
	}

	var extent *int
	if st.Extent != nil {
		v, err := Evaluate(s.reg, sc, st.Extent)
		if err != nil {
			return nil, fmt.Errorf("phase=specialize path=%s: extent of %s: %w", path, st.Name, err)
		}
		if v.Kind != KindInt {
			return nil, fmt.Errorf("phase=specialize path=%s: extent of %s: %w: got %s",
				path, st.Name, ErrInvalidExtent, v.Kind)
		}
		k := int(v.Int)
		extent = &k
	}

	insts, err := Expand(spec, st.Name, extent)
	if err != nil {
		return nil, fmt.Errorf("phase=specialize path=%s: %w", path, err)
	}
	return insts, nil
}

// assign resolves one property assignment: on the component being built
// when Target is empty, otherwise on a previously instantiated child.
// Child assignments land in the instance overlay so the child's shared
// definition is never touched. Later assignments to the same (target,
// property) pair overwrite earlier ones.
func (s *specializer) assign(st AssignStmt, sc *Scope, out *SpecializedComponent, path string) error {
	v, err := Evaluate(s.reg, sc, st.Value)
	if err != nil {
		return fmt.Errorf("phase=specialize path=%s: %s: %w", path, st.Prop, err)
	}

	if st.Target == "" {
		if err := s.checkProperty(st.Prop, out.Kind, v); err != nil {
			return fmt.Errorf("phase=specialize path=%s: %w", path, err)
		}
		out.setProperty(st.Prop, v)
		return nil
	}

	assigned := false
	for _, c := range out.Children {
		if c.Name != st.Target {
			continue
		}
		if err := s.checkProperty(st.Prop, c.Kind(), v); err != nil {
			return fmt.Errorf("phase=specialize path=%s: %s: %w", path, st.Target, err)
		}
		c.setProperty(st.Prop, v)
		assigned = true
	}
	if !assigned {
		return fmt.Errorf("phase=specialize path=%s: target %s: %w", path, st.Target, ErrUndefinedReference)
	}
	return nil
}

// checkProperty validates a property assignment against the registry:
// the property must be declared and applicable to the target's component
// kind, and the value must match its declared type.
func (s *specializer) checkProperty(prop string, kind CompKind, v Value) error {
	p, ok := s.reg.Property(prop)
	if !ok || !p.applicableTo(kind) {
		return fmt.Errorf("%w: %s on %s", ErrUnknownProperty, prop, kind)
	}
	if !p.Type.Accepts(v) {
		return fmt.Errorf("%w: %s declared %s, got %s", ErrPropertyTypeMismatch, prop, p.Type, v.Kind)
	}
	return nil
}

// joinPath joins hierarchical path segments for error context.
func joinPath(path, seg string) string {
	if path == "" {
		return seg
	}
	return path + "." + seg
}
