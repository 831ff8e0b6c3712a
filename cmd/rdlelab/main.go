package main

import (
	"github.com/CFAndy/systemrdl-compiler/pkg/lib"
)

var (
	flagFiles     []string
	flagOverrides []string
)

func main() {
	rootCmd.AddCommand(elaborateCmd, showCmd, findCmd, browseCmd, replCmd)

	rootCmd.PersistentFlags().StringArrayVarP(&flagFiles, "file", "f", nil,
		"design YAML file (repeatable)")
	rootCmd.PersistentFlags().StringArrayVarP(&flagOverrides, "param", "P", nil,
		"top-level parameter override, NAME=VALUE (repeatable)")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		lib.Exit(err)
	}
}
