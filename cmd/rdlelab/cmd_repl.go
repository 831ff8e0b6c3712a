package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl [component]",
	Short: "Query the elaborated tree interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := collectInstances(args)
		if err != nil {
			return err
		}
		return runRepl(entries)
	},
}

func runRepl(entries []instanceEntry) error {
	byPath := map[string]instanceEntry{}
	paths := make([]string, len(entries))
	for i, e := range entries {
		byPath[e.path] = e
		paths[i] = e.path
	}

	completer := readline.NewPrefixCompleter(
		readline.PcItem("ls", pcPaths(paths)...),
		readline.PcItem("props", pcPaths(paths)...),
		readline.PcItem("tree"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          appName + "> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("commands: ls [path], props <path>, tree, help, exit")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return nil

		case "help":
			fmt.Println("ls [path]     list instance paths, optionally under a prefix")
			fmt.Println("props <path>  show an instance's resolved properties")
			fmt.Println("tree          dump every instance with its properties")
			fmt.Println("exit          leave the shell")

		case "ls":
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			for _, p := range paths {
				if strings.HasPrefix(p, prefix) {
					fmt.Println(p)
				}
			}

		case "props":
			if len(args) != 1 {
				fmt.Println("usage: props <path>")
				continue
			}
			e, ok := byPath[args[0]]
			if !ok {
				fmt.Printf("no instance at %q (try ls)\n", args[0])
				continue
			}
			fmt.Print(renderInstance(e.path, e.inst))

		case "tree":
			for _, p := range paths {
				e := byPath[p]
				fmt.Print(renderInstance(e.path, e.inst))
			}

		default:
			fmt.Printf("unknown command %q (try help)\n", cmd)
		}
	}
}

// pcPaths builds completer items for every instance path.
func pcPaths(paths []string) []readline.PrefixCompleterInterface {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	items := make([]readline.PrefixCompleterInterface, len(sorted))
	for i, p := range sorted {
		items[i] = readline.PcItem(p)
	}
	return items
}
