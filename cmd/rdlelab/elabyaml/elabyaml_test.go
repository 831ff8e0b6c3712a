package elabyaml

import (
	"errors"
	"strings"
	"testing"

	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elab"
)

const sampleDoc = `
structs:
  coords_t:
    x: longint
    y: longint
properties:
  p_int:
    type: longint
    component: all
components:
  basic_field:
    kind: field
    params:
      W: { type: longint, default: 1 }
    body:
      - assign: fieldwidth
        value: { ref: W }
      - assign: sw
        value: AccessType::rw
  myReg:
    kind: reg
    params:
      SIZE: { type: longint, default: 32 }
      ORIGIN: coords_t
    body:
      - assign: regwidth
        value: { ref: SIZE }
      - assign: p_int
        value: { member: { ref: ORIGIN }, field: x }
      - local: HALF
        value: { op: "/", left: { ref: SIZE }, right: 2 }
      - inst: basic_field
        name: data
        with: { W: { ref: HALF } }
      - inst: basic_field
        name: flags
        count: { op: "-", left: { ref: SIZE }, right: 14 }
top:
  - component: myReg
    name: ctrl
    with:
      SIZE: 16
      ORIGIN: { struct: coords_t, fields: { x: 7, y: 9 } }
`

func mustParse(t *testing.T, doc string) Document {
	t.Helper()
	d, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func TestParse_FullDocumentElaborates(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	if len(doc.Tops) != 1 {
		t.Fatalf("expected one top, got %d", len(doc.Tops))
	}
	top := doc.Tops[0]
	if top.Component != "myReg" || top.Name != "ctrl" {
		t.Fatalf("unexpected top: %+v", top)
	}
	if v := top.Overrides["SIZE"]; v.Int != 16 {
		t.Fatalf("SIZE override: got %v", v)
	}
	if v := top.Overrides["ORIGIN"]; v.Kind != elab.KindStruct {
		t.Fatalf("ORIGIN override: got %v", v)
	}

	tree, err := elab.NewEngine(doc.Registry).Elaborate(top.Component, top.Overrides)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}

	root := tree.Root
	if v, _ := root.Property("regwidth"); v.Int != 16 {
		t.Fatalf("regwidth: expected 16, got %v", v)
	}
	if v, _ := root.Property("p_int"); v.Int != 7 {
		t.Fatalf("p_int: expected ORIGIN.x = 7, got %v", v)
	}

	children := root.Children()
	// data plus flags[0..1] from count SIZE-14.
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	data := children[0]
	if v, _ := data.Property("fieldwidth"); v.Int != 8 {
		t.Fatalf("data fieldwidth: expected HALF = 8, got %v", v)
	}
	if v, _ := data.Property("sw"); v.Kind != elab.KindEnum || v.Enum.Name != "rw" {
		t.Fatalf("data sw: got %v", v)
	}
	if children[1].PathSegment() != "flags[0]" || children[2].PathSegment() != "flags[1]" {
		t.Fatalf("flags segments: %s, %s", children[1].PathSegment(), children[2].PathSegment())
	}
}

func TestParse_StructMemberOrderPreserved(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	st, ok := doc.Registry.Struct("coords_t")
	if !ok {
		t.Fatal("coords_t not registered")
	}
	if len(st.Members) != 2 || st.Members[0].Name != "x" || st.Members[1].Name != "y" {
		t.Fatalf("member order lost: %+v", st.Members)
	}
}

func TestParse_TypeNames(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"longint", "longint"},
		{"boolean", "boolean"},
		{"string", "string"},
		{"longint[]", "longint[]"},
		{"coords_t", "coords_t"},
		{"AccessType", "AccessType"},
		{"coords_t[]", "coords_t[]"},
	}
	for _, tc := range cases {
		got, err := parseTypeName(tc.in, "t")
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("%s: got %s", tc.in, got.String())
		}
	}

	if _, err := parseTypeName("", "t"); err == nil {
		t.Fatal("empty type name accepted")
	}
}

func TestParse_EnumScalarRequiresBuiltinType(t *testing.T) {
	doc := mustParse(t, `
components:
  r:
    kind: reg
    body:
      - assign: name
        value: "NotAnEnum::rw"
`)
	// An unknown enum type before :: stays a plain string literal.
	tree, err := elab.NewEngine(doc.Registry).Elaborate("r", nil)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if v, _ := tree.Root.Property("name"); v.Str != "NotAnEnum::rw" {
		t.Fatalf("expected literal string, got %v", v)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown section", "widgets: {}", "unknown section"},
		{"unknown component kind", "components: { r: { kind: widget } }", "unknown component kind"},
		{"body not a sequence", "components: { r: { kind: reg, body: {} } }", "body must be a sequence"},
		{"statement without verb", "components: { r: { kind: reg, body: [ { frob: 1 } ] } }", "one of: assign, inst, local"},
		{"bad expression mapping", "components: { r: { kind: reg, body: [ { assign: name, value: { frob: 1 } } ] } }", "one of: ref, member, index, struct, op, if"},
		{"missing property type", "properties: { p: { component: all } }", "missing type"},
		{"top missing component", "top: [ { name: x } ]", "missing component"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got: %v", tc.want, err)
			}
		})
	}

	t.Run("top override evaluation failure is surfaced", func(t *testing.T) {
		_, err := Parse([]byte(`
components:
  r:
    kind: reg
top:
  - component: r
    with: { SIZE: { ref: NOPE } }
`))
		if !errors.Is(err, elab.ErrUndefinedReference) {
			t.Fatalf("expected ErrUndefinedReference, got %v", err)
		}
	})

	t.Run("duplicate component registration", func(t *testing.T) {
		_, err := Parse([]byte(`
components:
  r:
    kind: reg
  r:
    kind: reg
`))
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}
