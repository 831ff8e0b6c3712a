package main

import (
	"fmt"

	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elab"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagInteractive bool

var elaborateCmd = &cobra.Command{
	Use:   "elaborate [component]",
	Short: "Resolve a component into a concrete instance tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDesign(flagFiles)
		if err != nil {
			return err
		}
		overrides, err := parseOverrides(flagOverrides)
		if err != nil {
			return err
		}

		topArg := ""
		if len(args) == 1 {
			topArg = args[0]
		}
		if flagInteractive {
			if topArg == "" {
				return fmt.Errorf("-i needs an explicit component argument")
			}
			if overrides == nil {
				overrides = map[string]elab.Value{}
			}
			if err := promptParameters(d.reg, topArg, overrides); err != nil {
				return err
			}
		}

		trees, err := elaborateAll(d, topArg, overrides)
		if err != nil {
			return err
		}
		for _, nt := range trees {
			fmt.Print(renderTree(nt.tree))
		}
		return nil
	},
}

func init() {
	elaborateCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false,
		"prompt for parameter values not given with -P")
}

// promptParameters collects values for the component's scalar parameters
// that were not supplied on the command line. Struct- and array-typed
// parameters have no one-line syntax and are skipped; a missing required
// one still fails during binding.
func promptParameters(reg *elab.Registry, top string, overrides map[string]elab.Value) error {
	def, ok := reg.Component(top)
	if !ok {
		return fmt.Errorf("unknown component %q", top)
	}

	inputs := map[string]*string{}
	var fields []huh.Field
	for _, f := range def.Formals {
		if _, done := overrides[f.Name]; done {
			continue
		}
		switch f.Type.Kind {
		case elab.TypeStruct, elab.TypeArray:
			continue
		}
		s := new(string)
		inputs[f.Name] = s
		in := huh.NewInput().
			Title(f.Name).
			Description(f.Type.String()).
			Value(s)
		if f.Default != nil {
			in = in.Placeholder("default")
		}
		fields = append(fields, in)
	}
	if len(fields) == 0 {
		return nil
	}

	form := huh.NewForm(huh.NewGroup(fields...).Title(top + " parameters"))
	if err := form.Run(); err != nil {
		return err
	}

	for name, s := range inputs {
		if *s == "" {
			continue
		}
		v, err := parseLiteral(*s)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		overrides[name] = v
	}
	return nil
}
