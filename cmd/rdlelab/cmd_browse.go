package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [component]",
	Short: "Browse the elaborated instance tree in a TUI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := collectInstances(args)
		if err != nil {
			return err
		}
		p := tea.NewProgram(newBrowseModel(entries))
		_, err = p.Run()
		return err
	},
}

type browseState int

const (
	stateTable browseState = iota
	stateDetail
)

var (
	styleBase = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	styleOverlay = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 3).
			MarginLeft(2)
)

type browseModel struct {
	table   table.Model
	entries []instanceEntry
	state   browseState
}

func newBrowseModel(entries []instanceEntry) browseModel {
	columns := []table.Column{
		{Title: "PATH", Width: 44},
		{Title: "KIND", Width: 8},
		{Title: "PROPS", Width: 6},
		{Title: "CHILDREN", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(toRows(entries)),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("99"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return browseModel{table: t, entries: entries, state: stateTable}
}

func toRows(entries []instanceEntry) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			e.path,
			e.inst.Kind().String(),
			strconv.Itoa(len(e.inst.PropertyNames())),
			strconv.Itoa(len(e.inst.Children())),
		}
	}
	return rows
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if m.state == stateTable && len(m.entries) > 0 {
				m.state = stateDetail
			}
			return m, nil
		case "esc":
			m.state = stateTable
			return m, nil
		}
	}
	if m.state == stateTable {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m browseModel) View() string {
	title := styleTitle.Render(fmt.Sprintf("%s — %d instances", appName, len(m.entries)))
	tableView := styleBase.Render(m.table.View())

	if m.state == stateDetail {
		var detail string
		if idx := m.table.Cursor(); idx >= 0 && idx < len(m.entries) {
			e := m.entries[idx]
			detail = renderInstance(e.path, e.inst)
		}
		overlay := styleOverlay.Render(detail)
		help := styleHelp.Render("esc  back    q  quit")
		return title + "\n" + tableView + "\n" + overlay + "\n" + help
	}

	help := styleHelp.Render("up/down  navigate    enter  details    q  quit")
	return title + "\n" + tableView + "\n" + help
}
