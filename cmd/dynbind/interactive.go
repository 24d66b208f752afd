package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/veldtlabs/dynbind/meta"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	docStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func runInteractive(dir string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newBrowseModel(dir))
	_, err := p.Run()
	return err
}

type entry struct {
	module string
	class  string
	fn     *meta.FunctionSpec
}

func (e entry) label() string {
	owner := e.module
	if e.class != "" {
		owner = e.module + "." + e.class
	}
	return owner + "." + e.fn.Name
}

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

type browseModel struct {
	err      error
	dir      string
	pkg      string
	entries  []entry
	visible  []int
	filter   textinput.Model
	selected int
	state    modelState
}

func newBrowseModel(dir string) *browseModel {
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Prompt = "/ "
	filter.Width = 40
	return &browseModel{
		dir:    dir,
		filter: filter,
		state:  stateBrowse,
	}
}

type loadedMsg struct {
	err     error
	pkg     string
	entries []entry
}

func (m *browseModel) Init() tea.Cmd {
	return m.load
}

func (m *browseModel) load() tea.Msg {
	result, err := meta.ExtractDir(m.dir)
	if err != nil {
		return loadedMsg{err: err}
	}

	var entries []entry
	for _, mod := range result.Modules {
		for _, fn := range mod.Functions {
			entries = append(entries, entry{module: mod.Name, fn: fn})
		}
		for _, cls := range mod.Classes {
			if cls.Constructor != nil {
				entries = append(entries, entry{module: mod.Name, class: cls.Name, fn: cls.Constructor})
			}
			for _, fn := range cls.Methods {
				entries = append(entries, entry{module: mod.Name, class: cls.Name, fn: fn})
			}
		}
	}
	return loadedMsg{pkg: result.Package, entries: entries}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "/":
			if m.state == stateBrowse {
				m.filter.Focus()
			}

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateBrowse && len(m.visible) > 0 {
				m.state = stateDetail
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateBrowse
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.pkg = msg.pkg
		m.entries = msg.entries
		m.applyFilter()
	}

	return m, nil
}

func (m *browseModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if needle == "" || strings.Contains(strings.ToLower(e.label()), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n" +
			helpStyle.Render("q: quit") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("dynbind "+m.dir) + "\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View() + "\n\n")
		if len(m.entries) == 0 {
			b.WriteString("loading...\n")
			break
		}
		for row, idx := range m.visible {
			e := m.entries[idx]
			line := e.label() + typeStyle.Render("  "+signature(e.fn))
			if row == m.selected {
				b.WriteString(selectedStyle.Render("> "+e.label()) + typeStyle.Render("  "+signature(e.fn)) + "\n")
			} else {
				b.WriteString("  " + funcStyle.Render(line) + "\n")
			}
		}
		b.WriteString("\n" + helpStyle.Render("enter: details • /: filter • q: quit") + "\n")

	case stateDetail:
		e := m.entries[m.visible[m.selected]]
		fn := e.fn
		b.WriteString(funcStyle.Render(e.label()) + "\n\n")
		if fn.Doc != "" {
			b.WriteString(docStyle.Render(fn.Doc) + "\n\n")
		}
		b.WriteString(fmt.Sprintf("kind:     %s\n", fn.Kind))
		b.WriteString(fmt.Sprintf("go func:  %s.%s\n", m.pkg, fn.GoName))
		b.WriteString(fmt.Sprintf("location: %s\n", fn.Location()))
		b.WriteString(fmt.Sprintf("declared: %s\n", fn.Pos))
		if len(fn.Params) > 0 {
			b.WriteString("\nparameters:\n")
			for _, p := range fn.Params {
				detail := string(p.Guest)
				if p.Optional {
					detail += ", optional"
				}
				if p.KeywordOnly {
					detail += ", keyword-only"
				}
				b.WriteString(fmt.Sprintf("  %s  %s(%s)\n", p.Name, typeStyle.Render(p.GoType), detail))
			}
		}
		if fn.Return.Guest != meta.GuestNone {
			b.WriteString("\nreturns: " + typeStyle.Render(string(fn.Return.Guest)) + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("esc: back • q: quit") + "\n")
	}

	return b.String()
}
