package main

import (
	"fmt"
	"strings"

	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elab"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <component>",
	Short: "Show a component's specialized form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDesign(flagFiles)
		if err != nil {
			return err
		}
		overrides, err := parseOverrides(flagOverrides)
		if err != nil {
			return err
		}
		spec, err := elab.NewEngine(d.reg).Specialize(args[0], overrides)
		if err != nil {
			return err
		}
		fmt.Print(renderSpecialized(spec, args[0], 0))
		return nil
	},
}

// renderSpecialized prints a specialized component and its children as an
// indented outline.
func renderSpecialized(spec *elab.SpecializedComponent, label string, depth int) string {
	indent := strings.Repeat("  ", depth)

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(stylePath.Render(label))
	b.WriteString(" ")
	b.WriteString(styleKind.Render(spec.Kind.String()))
	b.WriteByte('\n')
	for _, name := range spec.PropertyNames() {
		v, _ := spec.Property(name)
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(styleProp.Render(name))
		b.WriteString(" = ")
		b.WriteString(styleValue.Render(v.String()))
		b.WriteByte('\n')
	}
	for _, child := range spec.Children {
		b.WriteString(renderChild(child, depth+1))
	}
	return b.String()
}

// renderChild prints a child instance, merging its local property
// assignments over the shared specialized definition.
func renderChild(inst *elab.Instance, depth int) string {
	indent := strings.Repeat("  ", depth)

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(stylePath.Render(inst.PathSegment()))
	b.WriteString(" ")
	b.WriteString(styleKind.Render(inst.Kind().String()))
	b.WriteByte('\n')
	for _, name := range inst.PropertyNames() {
		v, _ := inst.Property(name)
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(styleProp.Render(name))
		b.WriteString(" = ")
		b.WriteString(styleValue.Render(v.String()))
		b.WriteByte('\n')
	}
	for _, c := range inst.Children() {
		b.WriteString(renderChild(c, depth+1))
	}
	return b.String()
}
