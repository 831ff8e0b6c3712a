package main

import (
	"errors"
	"fmt"

	"github.com/CFAndy/systemrdl-compiler/cmd/rdlelab/elab"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find [component]",
	Short: "Fuzzy-search instance paths in the elaborated tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := collectInstances(args)
		if err != nil {
			return err
		}

		idx, err := fuzzyfinder.Find(
			entries,
			func(i int) string { return entries[i].path },
			fuzzyfinder.WithPromptString("instance: "),
			fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
				if i < 0 {
					return ""
				}
				return renderInstance(entries[i].path, entries[i].inst)
			}),
		)
		if err != nil {
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				return nil
			}
			return err
		}

		fmt.Print(renderInstance(entries[idx].path, entries[idx].inst))
		return nil
	},
}

// instanceEntry is one row of the flattened tree.
type instanceEntry struct {
	path string
	inst *elab.Instance
}

// collectInstances elaborates the requested tops and flattens every tree
// into path-addressed rows.
func collectInstances(args []string) ([]instanceEntry, error) {
	d, err := loadDesign(flagFiles)
	if err != nil {
		return nil, err
	}
	overrides, err := parseOverrides(flagOverrides)
	if err != nil {
		return nil, err
	}

	topArg := ""
	if len(args) == 1 {
		topArg = args[0]
	}
	trees, err := elaborateAll(d, topArg, overrides)
	if err != nil {
		return nil, err
	}

	var entries []instanceEntry
	for _, nt := range trees {
		nt.tree.Walk(func(path string, inst *elab.Instance) {
			entries = append(entries, instanceEntry{path: path, inst: inst})
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("nothing to search: the elaborated design is empty")
	}
	return entries, nil
}
