package main

import (
	"strings"

	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elab"

	"github.com/charmbracelet/lipgloss"
)

var (
	stylePath = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	styleKind = lipgloss.NewStyle().
			Foreground(lipgloss.Color("36"))

	styleProp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("35"))
)

// renderTree prints one line per instance: dotted path, kind, then the
// resolved properties in assignment order.
func renderTree(tree *elab.ElaboratedTree) string {
	var b strings.Builder
	tree.Walk(func(path string, inst *elab.Instance) {
		b.WriteString(stylePath.Render(path))
		b.WriteString(" ")
		b.WriteString(styleKind.Render(inst.Kind().String()))
		for _, name := range inst.PropertyNames() {
			v, _ := inst.Property(name)
			b.WriteString(" ")
			b.WriteString(styleProp.Render(name + "="))
			b.WriteString(styleValue.Render(v.String()))
		}
		b.WriteByte('\n')
	})
	return b.String()
}

// renderInstance prints a single instance in long form, one property per
// line.
func renderInstance(path string, inst *elab.Instance) string {
	var b strings.Builder
	b.WriteString(stylePath.Render(path))
	b.WriteString("  ")
	b.WriteString(styleKind.Render(inst.Kind().String()))
	b.WriteByte('\n')
	for _, name := range inst.PropertyNames() {
		v, _ := inst.Property(name)
		b.WriteString("  ")
		b.WriteString(styleProp.Render(name))
		b.WriteString(" = ")
		b.WriteString(styleValue.Render(v.String()))
		b.WriteByte('\n')
	}
	if children := inst.Children(); len(children) > 0 {
		b.WriteString("  ")
		b.WriteString(styleProp.Render("children: "))
		segs := make([]string, len(children))
		for i, c := range children {
			segs[i] = c.PathSegment()
		}
		b.WriteString(strings.Join(segs, ", "))
		b.WriteByte('\n')
	}
	return b.String()
}
