package elab

import (
	"sync"
	"testing"
)

func TestSpecialize_MyRegScenarios(t *testing.T) {
	cases := []struct {
		name       string
		overrides  map[string]Value
		wantWidth  int64
		wantShared bool
	}{
		{"no overrides", nil, 32, true},
		{"SIZE(16)", map[string]Value{"SIZE": IntVal(16)}, 16, true},
		{"SIZE(8) SHARED(false)", map[string]Value{"SIZE": IntVal(8), "SHARED": BoolVal(false)}, 8, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := NewEngine(fixtureRegistry(t))
			spec, err := eng.Specialize("myReg", tc.overrides)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v, ok := spec.Property("regwidth"); !ok || v.Int != tc.wantWidth {
				t.Fatalf("regwidth: expected %d, got %v", tc.wantWidth, v)
			}
			if v, ok := spec.Property("shared"); !ok || v.Bool != tc.wantShared {
				t.Fatalf("shared: expected %v, got %v", tc.wantShared, v)
			}
		})
	}
}

func TestSpecialize_CacheSharesValueEqualEnvironments(t *testing.T) {
	eng := NewEngine(fixtureRegistry(t))

	// Textually different override sets with equal values must share one
	// specialized result, verified by identity.
	a, err := eng.Specialize("myReg", map[string]Value{"SIZE": IntVal(16)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := eng.Specialize("myReg", map[string]Value{"SIZE": IntVal(16), "SHARED": BoolVal(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatal("value-equal environments produced distinct specializations")
	}

	c, err := eng.Specialize("myReg", map[string]Value{"SIZE": IntVal(8)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == c {
		t.Fatal("different environments share a specialization")
	}
}

func TestSpecialize_StructuralKeyForStructOverrides(t *testing.T) {
	eng := NewEngine(fixtureRegistry(t))
	reg := eng.Registry()

	v1 := mustEval(t, reg, NewScope(), s2Fixture())
	v2 := mustEval(t, reg, NewScope(), s2Fixture())
	if v1.Struct == v2.Struct {
		t.Fatal("fixture should build distinct struct instances")
	}

	a, err := eng.Specialize("my_reg_t", map[string]Value{"S": v1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := eng.Specialize("my_reg_t", map[string]Value{"S": v2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatal("deep-equal struct overrides did not share one specialization")
	}
}

func TestSpecialize_ConcurrentAtMostOnce(t *testing.T) {
	eng := NewEngine(fixtureRegistry(t))

	const goroutines = 64
	results := make([]*SpecializedComponent, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = eng.Specialize("myReg", map[string]Value{"SIZE": IntVal(16)})
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatal("concurrent specializations observed distinct objects")
		}
	}
}

func TestSpecialize_CycleRejected(t *testing.T) {
	reg := fixtureRegistry(t)
	loop := &ComponentDef{
		Name: "loop",
		Kind: CompRegfile,
		Body: []Stmt{
			InstStmt{Def: "loop", Name: "inner"},
		},
	}
	if err := reg.RegisterComponent(loop); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(reg)
	_, err := eng.Specialize("loop", nil)
	mustErrIs(t, err, ErrInstantiationCycle)
	mustContain(t, err.Error(), "phase=specialize", "loop")
}

func TestSpecialize_PropertyChecks(t *testing.T) {
	t.Run("unknown property", func(t *testing.T) {
		reg := fixtureRegistry(t)
		def := &ComponentDef{
			Name: "bad",
			Kind: CompReg,
			Body: []Stmt{AssignStmt{Prop: "no_such_prop", Value: IntLit{Val: 1}}},
		}
		if err := reg.RegisterComponent(def); err != nil {
			t.Fatal(err)
		}
		_, err := NewEngine(reg).Specialize("bad", nil)
		mustErrIs(t, err, ErrUnknownProperty)
	})

	t.Run("property not applicable to component kind", func(t *testing.T) {
		reg := fixtureRegistry(t)
		def := &ComponentDef{
			Name: "field_with_regwidth",
			Kind: CompField,
			Body: []Stmt{AssignStmt{Prop: "regwidth", Value: IntLit{Val: 32}}},
		}
		if err := reg.RegisterComponent(def); err != nil {
			t.Fatal(err)
		}
		_, err := NewEngine(reg).Specialize("field_with_regwidth", nil)
		mustErrIs(t, err, ErrUnknownProperty)
	})

	t.Run("property type mismatch", func(t *testing.T) {
		reg := fixtureRegistry(t)
		def := &ComponentDef{
			Name: "bad_type",
			Kind: CompReg,
			Body: []Stmt{AssignStmt{Prop: "regwidth", Value: StrLit{Val: "wide"}}},
		}
		if err := reg.RegisterComponent(def); err != nil {
			t.Fatal(err)
		}
		_, err := NewEngine(reg).Specialize("bad_type", nil)
		mustErrIs(t, err, ErrPropertyTypeMismatch)
	})

	t.Run("last write wins in body order", func(t *testing.T) {
		reg := fixtureRegistry(t)
		def := &ComponentDef{
			Name: "rewrite",
			Kind: CompReg,
			Body: []Stmt{
				AssignStmt{Prop: "regwidth", Value: IntLit{Val: 32}},
				AssignStmt{Prop: "regwidth", Value: IntLit{Val: 64}},
			},
		}
		if err := reg.RegisterComponent(def); err != nil {
			t.Fatal(err)
		}
		spec, err := NewEngine(reg).Specialize("rewrite", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, _ := spec.Property("regwidth"); v.Int != 64 {
			t.Fatalf("expected 64, got %v", v)
		}
	})
}

func TestSpecialize_FailFastStopsBodyWalk(t *testing.T) {
	reg := fixtureRegistry(t)
	def := &ComponentDef{
		Name: "failfast",
		Kind: CompReg,
		Body: []Stmt{
			AssignStmt{Prop: "regwidth", Value: Ref{Name: "missing"}},
			// Never reached: the walk stops at the first error.
			AssignStmt{Prop: "shared", Value: BoolLit{Val: true}},
		},
	}
	if err := reg.RegisterComponent(def); err != nil {
		t.Fatal(err)
	}
	_, err := NewEngine(reg).Specialize("failfast", nil)
	mustErrIs(t, err, ErrUndefinedReference)
}

func TestSpecialize_LocalsAndChildAssignment(t *testing.T) {
	reg := fixtureRegistry(t)
	field := &ComponentDef{
		Name: "basic_field",
		Kind: CompField,
		Body: []Stmt{
			AssignStmt{Prop: "fieldwidth", Value: IntLit{Val: 1}},
		},
	}
	if err := reg.RegisterComponent(field); err != nil {
		t.Fatal(err)
	}
	parent := &ComponentDef{
		Name: "parent",
		Kind: CompReg,
		Body: []Stmt{
			LocalStmt{Name: "FIELD_SLICES", Value: ArrayLit{Elems: []Expr{StrLit{Val: "a"}, StrLit{Val: "b"}}}},
			InstStmt{Def: "basic_field", Name: "data"},
			AssignStmt{Target: "data", Prop: "hdl_path_slice", Value: Ref{Name: "FIELD_SLICES"}},
		},
	}
	if err := reg.RegisterComponent(parent); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(reg)
	spec, err := eng.Specialize("parent", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, ok := spec.Child("data")
	if !ok {
		t.Fatal("child data missing")
	}
	v, ok := data.Property("hdl_path_slice")
	if !ok || v.Kind != KindArray || len(v.Array.Elems) != 2 {
		t.Fatalf("hdl_path_slice: got %v", v)
	}

	// The overlay must not leak into the shared child definition.
	if _, ok := data.Def.Property("hdl_path_slice"); ok {
		t.Fatal("instance overlay leaked into the shared definition")
	}

	t.Run("assignment to unknown target", func(t *testing.T) {
		bad := &ComponentDef{
			Name: "bad_target",
			Kind: CompReg,
			Body: []Stmt{
				AssignStmt{Target: "ghost", Prop: "fieldwidth", Value: IntLit{Val: 1}},
			},
		}
		if err := reg.RegisterComponent(bad); err != nil {
			t.Fatal(err)
		}
		_, err := eng.Specialize("bad_target", nil)
		mustErrIs(t, err, ErrUndefinedReference)
	})
}
