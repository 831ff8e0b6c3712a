// Package elabyaml decodes YAML design documents into the structural AST
// consumed by the elab engine. It is the stand-in for a full SystemRDL
// parser: declarations and expressions are written structurally, so no
// textual expression grammar is involved.
//
// Document layout:
//
//	structs:
//	  s1_t: { bool: boolean, str: string, n_arr: longint[] }
//	properties:
//	  p_int: { type: longint, component: all }
//	components:
//	  myReg:
//	    kind: reg
//	    params:
//	      SIZE: { type: longint, default: 32 }
//	    body:
//	      - assign: regwidth
//	        value: { ref: SIZE }
//	top:
//	  - component: myReg
//	    name: my_reg
//	    with: { SIZE: 16 }
//
// Expressions: YAML scalars are literals (a string of the form
// "Type::member" names a builtin enum member), sequences are array
// literals, and mappings select a form by key: ref, member/field,
// index/at, struct/fields, op/left/right (or op/operand), if/then/else.
package elabyaml

import (
	"fmt"
	"strings"

	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elab"

	"gopkg.in/yaml.v3"
)

// Document is the decoded form of one design file: a populated registry
// plus the top-level instantiations it declares.
type Document struct {
	Registry *elab.Registry
	Tops     []TopInst
}

// TopInst is one top-level instantiation statement with its literal
// parameter overrides, already evaluated to concrete values.
type TopInst struct {
	Component string
	Name      string
	Overrides map[string]elab.Value
}

// Parse decodes a YAML design document into a fresh registry.
func Parse(in []byte) (Document, error) {
	doc := Document{Registry: elab.NewRegistry()}
	tops, err := ParseInto(doc.Registry, in)
	if err != nil {
		return Document{}, err
	}
	doc.Tops = tops
	return doc, nil
}

// ParseInto decodes one document into an existing registry, so several
// files can contribute declarations to a single design.
func ParseInto(reg *elab.Registry, in []byte) ([]TopInst, error) {
	var docNode yaml.Node
	if err := yaml.Unmarshal(in, &docNode); err != nil {
		return nil, err
	}
	if len(docNode.Content) == 0 {
		return nil, fmt.Errorf("phase=parse path=<doc>: empty YAML")
	}
	root := docNode.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("phase=parse path=<doc>: document must be a mapping, got kind %d", root.Kind)
	}

	// The sections are decoded in a fixed order regardless of document
	// order, since components may reference structs and properties.
	sections := map[string]*yaml.Node{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		sections[root.Content[i].Value] = root.Content[i+1]
	}
	for key := range sections {
		switch key {
		case "structs", "properties", "components", "top":
		default:
			return nil, fmt.Errorf("phase=parse path=<doc>: unknown section %q", key)
		}
	}

	if n := sections["structs"]; n != nil {
		if err := parseStructs(reg, n); err != nil {
			return nil, err
		}
	}
	if n := sections["properties"]; n != nil {
		if err := parseProperties(reg, n); err != nil {
			return nil, err
		}
	}
	if n := sections["components"]; n != nil {
		if err := parseComponents(reg, n); err != nil {
			return nil, err
		}
	}
	if n := sections["top"]; n != nil {
		return parseTops(reg, n)
	}
	return nil, nil
}

// ---- Sections --------------------------------------------------------------

func parseStructs(reg *elab.Registry, node *yaml.Node) error {
	return eachMapping(node, "structs", func(name string, body *yaml.Node) error {
		if body.Kind != yaml.MappingNode {
			return fmt.Errorf("phase=parse path=%s: struct body must be a mapping", name)
		}
		st := &elab.StructType{Name: name}
		err := eachMapping(body, name, func(member string, tn *yaml.Node) error {
			t, err := parseTypeRef(tn, name+"."+member)
			if err != nil {
				return err
			}
			st.Members = append(st.Members, elab.StructMember{Name: member, Type: t})
			return nil
		})
		if err != nil {
			return err
		}
		return reg.RegisterStruct(st)
	})
}

func parseProperties(reg *elab.Registry, node *yaml.Node) error {
	return eachMapping(node, "properties", func(name string, body *yaml.Node) error {
		var raw struct {
			Type      yaml.Node `yaml:"type"`
			Component yaml.Node `yaml:"component"`
		}
		if err := body.Decode(&raw); err != nil {
			return fmt.Errorf("phase=parse path=%s: %w", name, err)
		}
		t, err := parseTypeRef(&raw.Type, name)
		if err != nil {
			return err
		}
		p := &elab.PropertyType{Name: name, Type: t}
		if raw.Component.Kind != 0 {
			applies, err := parseApplicability(&raw.Component, name)
			if err != nil {
				return err
			}
			p.AppliesTo = applies
		}
		return reg.RegisterProperty(p)
	})
}

// parseApplicability decodes `component: all`, a single kind, or a list of
// kinds. A nil result means the property applies everywhere.
func parseApplicability(node *yaml.Node, path string) (map[elab.CompKind]bool, error) {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "all" {
			return nil, nil
		}
		k, err := parseCompKind(node.Value, path)
		if err != nil {
			return nil, err
		}
		return map[elab.CompKind]bool{k: true}, nil
	}
	var kinds []string
	if err := node.Decode(&kinds); err != nil {
		return nil, fmt.Errorf("phase=parse path=%s: component: %w", path, err)
	}
	out := map[elab.CompKind]bool{}
	for _, s := range kinds {
		k, err := parseCompKind(s, path)
		if err != nil {
			return nil, err
		}
		out[k] = true
	}
	return out, nil
}

func parseComponents(reg *elab.Registry, node *yaml.Node) error {
	return eachMapping(node, "components", func(name string, body *yaml.Node) error {
		var raw struct {
			Kind   string    `yaml:"kind"`
			Params yaml.Node `yaml:"params"`
			Body   yaml.Node `yaml:"body"`
		}
		if err := body.Decode(&raw); err != nil {
			return fmt.Errorf("phase=parse path=%s: %w", name, err)
		}

		kind, err := parseCompKind(raw.Kind, name)
		if err != nil {
			return err
		}
		def := &elab.ComponentDef{Name: name, Kind: kind}

		if raw.Params.Kind != 0 {
			err := eachMapping(&raw.Params, name, func(pname string, pn *yaml.Node) error {
				f, err := parseFormal(pname, pn, name)
				if err != nil {
					return err
				}
				def.Formals = append(def.Formals, f)
				return nil
			})
			if err != nil {
				return err
			}
		}

		if raw.Body.Kind != 0 {
			if raw.Body.Kind != yaml.SequenceNode {
				return fmt.Errorf("phase=parse path=%s: body must be a sequence", name)
			}
			for i, sn := range raw.Body.Content {
				stmt, err := parseStmt(sn, fmt.Sprintf("%s.body[%d]", name, i))
				if err != nil {
					return err
				}
				def.Body = append(def.Body, stmt)
			}
		}

		return reg.RegisterComponent(def)
	})
}

// parseFormal decodes one parameter declaration. The compact form
// `SIZE: longint` declares a required parameter; the mapping form adds an
// optional default expression.
func parseFormal(name string, node *yaml.Node, comp string) (elab.Formal, error) {
	path := comp + "#" + name
	if node.Kind == yaml.ScalarNode {
		t, err := parseTypeRef(node, path)
		if err != nil {
			return elab.Formal{}, err
		}
		return elab.Formal{Name: name, Type: t}, nil
	}

	var raw struct {
		Type    yaml.Node `yaml:"type"`
		Default yaml.Node `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return elab.Formal{}, fmt.Errorf("phase=parse path=%s: %w", path, err)
	}
	t, err := parseTypeRef(&raw.Type, path)
	if err != nil {
		return elab.Formal{}, err
	}
	f := elab.Formal{Name: name, Type: t}
	if raw.Default.Kind != 0 {
		d, err := parseExpr(&raw.Default, path)
		if err != nil {
			return elab.Formal{}, err
		}
		f.Default = d
	}
	return f, nil
}

func parseStmt(node *yaml.Node, path string) (elab.Stmt, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("phase=parse path=%s: statement must be a mapping", path)
	}
	keys := mappingKeys(node)

	switch {
	case keys["assign"]:
		var raw struct {
			Assign string    `yaml:"assign"`
			On     string    `yaml:"on"`
			Value  yaml.Node `yaml:"value"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		v, err := parseExpr(&raw.Value, path)
		if err != nil {
			return nil, err
		}
		return elab.AssignStmt{Target: raw.On, Prop: raw.Assign, Value: v}, nil

	case keys["inst"]:
		var raw struct {
			Inst  string    `yaml:"inst"`
			Name  string    `yaml:"name"`
			With  yaml.Node `yaml:"with"`
			Count yaml.Node `yaml:"count"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		st := elab.InstStmt{Def: raw.Inst, Name: raw.Name}
		if raw.With.Kind != 0 {
			err := eachMapping(&raw.With, path, func(formal string, vn *yaml.Node) error {
				v, err := parseExpr(vn, path+"."+formal)
				if err != nil {
					return err
				}
				st.Overrides = append(st.Overrides, elab.Override{Formal: formal, Value: v})
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		if raw.Count.Kind != 0 {
			c, err := parseExpr(&raw.Count, path)
			if err != nil {
				return nil, err
			}
			st.Extent = c
		}
		return st, nil

	case keys["local"]:
		var raw struct {
			Local string    `yaml:"local"`
			Value yaml.Node `yaml:"value"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		v, err := parseExpr(&raw.Value, path)
		if err != nil {
			return nil, err
		}
		return elab.LocalStmt{Name: raw.Local, Value: v}, nil
	}

	return nil, fmt.Errorf("phase=parse path=%s: statement must have one of: assign, inst, local", path)
}

func parseTops(reg *elab.Registry, node *yaml.Node) ([]TopInst, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("phase=parse path=top: must be a sequence")
	}
	var tops []TopInst
	for i, tn := range node.Content {
		path := fmt.Sprintf("top[%d]", i)
		var raw struct {
			Component string    `yaml:"component"`
			Name      string    `yaml:"name"`
			With      yaml.Node `yaml:"with"`
		}
		if err := tn.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		if raw.Component == "" {
			return nil, fmt.Errorf("phase=parse path=%s: missing component", path)
		}
		top := TopInst{Component: raw.Component, Name: raw.Name}
		if top.Name == "" {
			top.Name = raw.Component
		}
		if raw.With.Kind != 0 {
			top.Overrides = map[string]elab.Value{}
			// Top-level overrides are literal expressions: evaluated
			// here, against an empty scope.
			err := eachMapping(&raw.With, path, func(formal string, vn *yaml.Node) error {
				e, err := parseExpr(vn, path+"."+formal)
				if err != nil {
					return err
				}
				v, err := elab.Evaluate(reg, elab.NewScope(), e)
				if err != nil {
					return fmt.Errorf("phase=parse path=%s.%s: %w", path, formal, err)
				}
				top.Overrides[formal] = v
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		tops = append(tops, top)
	}
	return tops, nil
}

// ---- Expressions -----------------------------------------------------------

func parseExpr(node *yaml.Node, path string) (elab.Expr, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return parseScalarExpr(node, path)

	case yaml.SequenceNode:
		lit := elab.ArrayLit{}
		for i, en := range node.Content {
			e, err := parseExpr(en, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			lit.Elems = append(lit.Elems, e)
		}
		return lit, nil

	case yaml.MappingNode:
		return parseMappingExpr(node, path)
	}
	return nil, fmt.Errorf("phase=parse path=%s: unsupported expression node kind %d", path, node.Kind)
}

func parseScalarExpr(node *yaml.Node, path string) (elab.Expr, error) {
	switch node.Tag {
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		return elab.IntLit{Val: n}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		return elab.BoolLit{Val: b}, nil
	case "!!str":
		if typ, member, ok := strings.Cut(node.Value, "::"); ok && elab.IsBuiltinEnum(typ) {
			return elab.EnumLit{Type: typ, Member: member}, nil
		}
		return elab.StrLit{Val: node.Value}, nil
	}
	return nil, fmt.Errorf("phase=parse path=%s: unsupported scalar tag %s", path, node.Tag)
}

func parseMappingExpr(node *yaml.Node, path string) (elab.Expr, error) {
	keys := mappingKeys(node)

	switch {
	case keys["ref"]:
		var raw struct {
			Ref string `yaml:"ref"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		return elab.Ref{Name: raw.Ref}, nil

	case keys["member"]:
		var raw struct {
			Member yaml.Node `yaml:"member"`
			Field  string    `yaml:"field"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		base, err := parseExpr(&raw.Member, path)
		if err != nil {
			return nil, err
		}
		return elab.Member{Base: base, Field: raw.Field}, nil

	case keys["index"]:
		var raw struct {
			Index yaml.Node `yaml:"index"`
			At    yaml.Node `yaml:"at"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		base, err := parseExpr(&raw.Index, path)
		if err != nil {
			return nil, err
		}
		at, err := parseExpr(&raw.At, path)
		if err != nil {
			return nil, err
		}
		return elab.Index{Base: base, Index: at}, nil

	case keys["struct"]:
		var raw struct {
			Struct string    `yaml:"struct"`
			Fields yaml.Node `yaml:"fields"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		lit := elab.StructLit{Type: raw.Struct}
		err := eachMapping(&raw.Fields, path, func(fname string, fn *yaml.Node) error {
			e, err := parseExpr(fn, path+"."+fname)
			if err != nil {
				return err
			}
			lit.Fields = append(lit.Fields, elab.FieldInit{Name: fname, Value: e})
			return nil
		})
		if err != nil {
			return nil, err
		}
		return lit, nil

	case keys["op"]:
		var raw struct {
			Op      string    `yaml:"op"`
			Left    yaml.Node `yaml:"left"`
			Right   yaml.Node `yaml:"right"`
			Operand yaml.Node `yaml:"operand"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		if raw.Operand.Kind != 0 {
			operand, err := parseExpr(&raw.Operand, path)
			if err != nil {
				return nil, err
			}
			return elab.Unary{Op: raw.Op, Operand: operand}, nil
		}
		left, err := parseExpr(&raw.Left, path)
		if err != nil {
			return nil, err
		}
		right, err := parseExpr(&raw.Right, path)
		if err != nil {
			return nil, err
		}
		return elab.Binary{Op: raw.Op, Left: left, Right: right}, nil

	case keys["if"]:
		var raw struct {
			If   yaml.Node `yaml:"if"`
			Then yaml.Node `yaml:"then"`
			Else yaml.Node `yaml:"else"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
		}
		cond, err := parseExpr(&raw.If, path)
		if err != nil {
			return nil, err
		}
		then, err := parseExpr(&raw.Then, path)
		if err != nil {
			return nil, err
		}
		els, err := parseExpr(&raw.Else, path)
		if err != nil {
			return nil, err
		}
		return elab.Ternary{Cond: cond, Then: then, Else: els}, nil
	}

	return nil, fmt.Errorf("phase=parse path=%s: expression mapping must have one of: ref, member, index, struct, op, if", path)
}

// ---- Type references -------------------------------------------------------

// parseTypeRef decodes a type name: longint, boolean, string, a builtin
// enum name, a declared struct name, or any of those with a [] suffix.
func parseTypeRef(node *yaml.Node, path string) (elab.TypeRef, error) {
	if node == nil || node.Kind == 0 {
		return elab.TypeRef{}, fmt.Errorf("phase=parse path=%s: missing type", path)
	}
	if node.Kind != yaml.ScalarNode {
		return elab.TypeRef{}, fmt.Errorf("phase=parse path=%s: type must be a scalar", path)
	}
	return parseTypeName(node.Value, path)
}

func parseTypeName(s, path string) (elab.TypeRef, error) {
	if elem, ok := strings.CutSuffix(s, "[]"); ok {
		t, err := parseTypeName(elem, path)
		if err != nil {
			return elab.TypeRef{}, err
		}
		return elab.ArrayType(t), nil
	}
	switch s {
	case "longint":
		return elab.IntType(), nil
	case "boolean":
		return elab.BoolType(), nil
	case "string":
		return elab.StringType(), nil
	case "":
		return elab.TypeRef{}, fmt.Errorf("phase=parse path=%s: missing type", path)
	}
	if elab.IsBuiltinEnum(s) {
		return elab.EnumType(s), nil
	}
	// Anything else is a struct type name, checked against the registry
	// during the raw validation phase.
	return elab.StructTypeRef(s), nil
}

func parseCompKind(s, path string) (elab.CompKind, error) {
	switch s {
	case "addrmap":
		return elab.CompAddrmap, nil
	case "regfile":
		return elab.CompRegfile, nil
	case "reg":
		return elab.CompReg, nil
	case "field":
		return elab.CompField, nil
	case "mem":
		return elab.CompMem, nil
	case "signal":
		return elab.CompSignal, nil
	}
	return 0, fmt.Errorf("phase=parse path=%s: unknown component kind %q", path, s)
}

// ---- Node helpers ----------------------------------------------------------

// eachMapping walks a mapping node's key/value pairs in document order.
func eachMapping(node *yaml.Node, path string, fn func(key string, value *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("phase=parse path=%s: expected a mapping", path)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func mappingKeys(node *yaml.Node) map[string]bool {
	keys := map[string]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = true
	}
	return keys
}
