package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/classfile/classdef"
	"github.com/wippyai/classfile/jvm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	def      *classdef.Class
	asm      *jvm.Assembly
	filter   textinput.Model
	selected int
	offset   int
	height   int
	state    modelState
}

type modelState int

const (
	stateMethods modelState = iota
	stateMethodDetail
	statePool
)

type assembledMsg struct {
	err error
	asm *jvm.Assembly
}

func newInteractiveModel(def *classdef.Class) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter entries"
	ti.Prompt = "/ "
	ti.Width = 40
	return &interactiveModel{
		def:    def,
		filter: ti,
		height: 20,
		state:  stateMethods,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.assemble
}

func (m *interactiveModel) assemble() tea.Msg {
	asm, err := assemble(m.def)
	return assembledMsg{asm: asm, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Height > 8 {
			m.height = msg.Height - 8
		}

	case assembledMsg:
		m.asm = msg.asm
		m.err = msg.err

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.offset = 0
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			m.moveUp()

		case "down", "j":
			m.moveDown()

		case "tab", "p":
			if m.state == statePool {
				m.state = stateMethods
			} else {
				m.state = statePool
				m.offset = 0
			}

		case "/":
			if m.state == statePool {
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if m.state == stateMethods && m.asm != nil && len(m.asm.Methods) > 0 {
				m.state = stateMethodDetail
			}

		case "esc":
			switch m.state {
			case stateMethodDetail:
				m.state = stateMethods
			case statePool:
				m.filter.SetValue("")
				m.offset = 0
			}
		}
	}

	return m, nil
}

func (m *interactiveModel) moveUp() {
	switch m.state {
	case stateMethods:
		if m.selected > 0 {
			m.selected--
		}
	case statePool:
		if m.offset > 0 {
			m.offset--
		}
	}
}

func (m *interactiveModel) moveDown() {
	switch m.state {
	case stateMethods:
		if m.asm != nil && m.selected < len(m.asm.Methods)-1 {
			m.selected++
		}
	case statePool:
		if m.offset < len(m.poolLines())-m.height {
			m.offset++
		}
	}
}

// poolLines renders the pool snapshot one entry per line, keeping only
// entries that match the filter.
func (m *interactiveModel) poolLines() []string {
	if m.asm == nil {
		return nil
	}
	query := strings.ToLower(m.filter.Value())
	lines := make([]string, 0, len(m.asm.Entries))
	for i, e := range m.asm.Entries {
		text := e.String()
		if query != "" && !strings.Contains(strings.ToLower(text), query) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", indexStyle.Render(fmt.Sprintf("#%-5d", m.asm.Indices[i])), text))
	}
	return lines
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.asm == nil {
		return "Assembling class..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Class Inspector"))
	b.WriteString(" ")
	b.WriteString(m.asm.Name)
	b.WriteString(" extends ")
	b.WriteString(typeStyle.Render(m.asm.Super))
	b.WriteString(fmt.Sprintf("  (%d bytes, pool count %d)", len(m.asm.Bytes), m.asm.PoolCount))
	b.WriteString("\n\n")

	switch m.state {
	case stateMethods:
		b.WriteString("Methods:\n\n")
		for i, s := range m.asm.Methods {
			line := m.formatMethod(s)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter code • tab pool • q quit"))

	case stateMethodDetail:
		s := m.asm.Methods[m.selected]
		b.WriteString(m.formatMethod(s))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("flags 0x%04x  max_stack %d  max_locals %d  code %d bytes\n\n",
			s.AccessFlags, s.MaxStack, s.MaxLocals, s.CodeLength))
		for i, text := range m.def.Methods[m.selected].Code {
			b.WriteString(fmt.Sprintf("  %3d  %s\n", i, text))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • tab pool • q quit"))

	case statePool:
		lines := m.poolLines()
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		start, end := m.offset, m.offset+m.height
		if end > len(lines) {
			end = len(lines)
		}
		if start > end {
			start = end
		}
		for _, line := range lines[start:end] {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("\n%d/%d entries\n", len(lines), len(m.asm.Entries)))
		b.WriteString(helpStyle.Render("↑/↓ scroll • / filter • esc clear • tab methods • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatMethod(s jvm.MethodSummary) string {
	return methodStyle.Render(s.Name) + typeStyle.Render(s.Descriptor)
}

func runInteractive(def *classdef.Class) error {
	p := tea.NewProgram(newInteractiveModel(def), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
