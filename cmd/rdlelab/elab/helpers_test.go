package elab

import (
	"errors"
	"strings"
	"testing"
)

func intp(n int) *int {
	return &n
}

func mustContain(t *testing.T, got string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(got, sub) {
			t.Fatalf("expected %q to contain %q", got, sub)
		}
	}
}

func mustErrIs(t *testing.T, err, want error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %v, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected error %v, got: %v", want, err)
	}
}

func mustValue(t *testing.T, v Value, err error) Value {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func mustEval(t *testing.T, reg *Registry, sc *Scope, e Expr) Value {
	t.Helper()
	v, err := Evaluate(reg, sc, e)
	return mustValue(t, v, err)
}

// fixtureRegistry builds the registry shared by most tests: the s1_t/s2_t
// struct types, the p_int/p_bool/p_s1 user properties, and the myReg and
// my_reg_t register definitions.
func fixtureRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()

	s1 := &StructType{
		Name: "s1_t",
		Members: []StructMember{
			{Name: "bool", Type: BoolType()},
			{Name: "str", Type: StringType()},
			{Name: "n_arr", Type: ArrayType(IntType())},
		},
	}
	if err := reg.RegisterStruct(s1); err != nil {
		t.Fatal(err)
	}
	s2 := &StructType{
		Name: "s2_t",
		Members: []StructMember{
			{Name: "nest", Type: StructTypeRef("s1_t")},
			{Name: "nest_arr", Type: ArrayType(StructTypeRef("s1_t"))},
		},
	}
	if err := reg.RegisterStruct(s2); err != nil {
		t.Fatal(err)
	}

	for _, p := range []*PropertyType{
		{Name: "p_int", Type: IntType()},
		{Name: "p_bool", Type: BoolType()},
		{Name: "p_s1", Type: StructTypeRef("s1_t")},
	} {
		if err := reg.RegisterProperty(p); err != nil {
			t.Fatal(err)
		}
	}

	myReg := &ComponentDef{
		Name: "myReg",
		Kind: CompReg,
		Formals: []Formal{
			{Name: "SIZE", Type: IntType(), Default: IntLit{Val: 32}},
			{Name: "SHARED", Type: BoolType(), Default: BoolLit{Val: true}},
		},
		Body: []Stmt{
			AssignStmt{Prop: "regwidth", Value: Ref{Name: "SIZE"}},
			AssignStmt{Prop: "shared", Value: Ref{Name: "SHARED"}},
		},
	}
	if err := reg.RegisterComponent(myReg); err != nil {
		t.Fatal(err)
	}

	myRegT := &ComponentDef{
		Name: "my_reg_t",
		Kind: CompReg,
		Formals: []Formal{
			{Name: "S", Type: StructTypeRef("s2_t")},
		},
		Body: []Stmt{
			AssignStmt{Prop: "desc", Value: Member{Base: Member{Base: Ref{Name: "S"}, Field: "nest"}, Field: "str"}},
			AssignStmt{Prop: "name", Value: Member{
				Base:  Index{Base: Member{Base: Ref{Name: "S"}, Field: "nest_arr"}, Index: IntLit{Val: 0}},
				Field: "str",
			}},
			AssignStmt{Prop: "p_int", Value: Index{
				Base:  Member{Base: Index{Base: Member{Base: Ref{Name: "S"}, Field: "nest_arr"}, Index: IntLit{Val: 1}}, Field: "n_arr"},
				Index: IntLit{Val: 2},
			}},
		},
	}
	if err := reg.RegisterComponent(myRegT); err != nil {
		t.Fatal(err)
	}

	return reg
}

// s1Lit builds an s1_t literal expression.
func s1Lit(b bool, str string, nArr ...int64) StructLit {
	elems := make([]Expr, len(nArr))
	for i, n := range nArr {
		elems[i] = IntLit{Val: n}
	}
	return StructLit{
		Type: "s1_t",
		Fields: []FieldInit{
			{Name: "bool", Value: BoolLit{Val: b}},
			{Name: "str", Value: StrLit{Val: str}},
			{Name: "n_arr", Value: ArrayLit{Elems: elems}},
		},
	}
}

// s2Fixture is the nested s2_t literal from the end-to-end scenario:
// nest.str = "hey", nest_arr[0].str = "foo", nest_arr[1].n_arr[2] = 61.
func s2Fixture() StructLit {
	return StructLit{
		Type: "s2_t",
		Fields: []FieldInit{
			{Name: "nest", Value: s1Lit(true, "hey")},
			{Name: "nest_arr", Value: ArrayLit{Elems: []Expr{
				s1Lit(false, "foo"),
				s1Lit(true, "bar", 5, 7, 61),
			}}},
		},
	}
}
