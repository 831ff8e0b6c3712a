package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elab"
	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elabyaml"

	"github.com/spf13/cobra"
)

// appName is the single source of truth for the application name.
const appName = "rdlelab"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Register-description elaborator",
	Long: "Register-description elaborator\n\n" +
		"Reads YAML design files describing parameterized components and\n" +
		"resolves them into concrete instance trees.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// design is the merged content of all -f files.
type design struct {
	reg  *elab.Registry
	tops []elabyaml.TopInst
}

func loadDesign(paths []string) (*design, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no design files given; pass at least one with -f")
	}
	d := &design{reg: elab.NewRegistry()}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		tops, err := elabyaml.ParseInto(d.reg, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		d.tops = append(d.tops, tops...)
	}
	return d, nil
}

// namedTree pairs an elaborated tree with the instance name it was
// declared under.
type namedTree struct {
	name string
	tree *elab.ElaboratedTree
}

// elaborateAll builds one tree per requested top. An explicit component
// argument elaborates just that component; otherwise the design's top
// section drives elaboration, with -P overrides applied on top of each
// declared override set.
func elaborateAll(d *design, topArg string, overrides map[string]elab.Value) ([]namedTree, error) {
	eng := elab.NewEngine(d.reg)

	if topArg != "" {
		tree, err := eng.Elaborate(topArg, overrides)
		if err != nil {
			return nil, err
		}
		return []namedTree{{name: topArg, tree: tree}}, nil
	}

	if len(d.tops) == 0 {
		return nil, fmt.Errorf("design declares no top; name a component to elaborate")
	}
	var trees []namedTree
	for _, t := range d.tops {
		merged := map[string]elab.Value{}
		for k, v := range t.Overrides {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		tree, err := eng.Elaborate(t.Component, merged)
		if err != nil {
			return nil, err
		}
		tree.Root.Name = t.Name
		trees = append(trees, namedTree{name: t.Name, tree: tree})
	}
	return trees, nil
}

// parseOverrides turns repeated NAME=VALUE flags into parameter values.
func parseOverrides(pairs []string) (map[string]elab.Value, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := map[string]elab.Value{}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid override %q: expected NAME=VALUE", pair)
		}
		v, err := parseLiteral(raw)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// parseLiteral decodes a scalar override value: an integer, a boolean,
// an enum member written Type::member, or (failing those) a string.
func parseLiteral(raw string) (elab.Value, error) {
	if n, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return elab.IntVal(n), nil
	}
	switch raw {
	case "true":
		return elab.BoolVal(true), nil
	case "false":
		return elab.BoolVal(false), nil
	}
	if typ, member, ok := strings.Cut(raw, "::"); ok {
		m, found := elab.LookupEnum(typ, member)
		if !found {
			return elab.Value{}, fmt.Errorf("unknown enum member %q", raw)
		}
		return elab.EnumVal(m), nil
	}
	return elab.StrVal(raw), nil
}
