package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/tvm-disasm/shape"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	regionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectRegion modelState = iota
	stateView
	stateJump
)

// chromeLines is the number of lines around the viewport: title, blank
// line, blank line, help.
const chromeLines = 4

type interactiveModel struct {
	err      error
	listing  *listing
	filename string
	view     viewport.Model
	jump     textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(filename string, l *listing) *interactiveModel {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	ti := textinput.New()
	ti.Placeholder = "method id"
	ti.Prompt = "jump to: "
	ti.Width = 20
	return &interactiveModel{
		listing:  l,
		filename: filename,
		view:     viewport.New(width, max(height-chromeLines, 1)),
		jump:     ti,
		state:    stateSelectRegion,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) open() {
	s := m.listing.sections[m.selected]
	text := s.text()
	if m.selected == 0 {
		text = m.listing.preamble + text
	}
	m.view.SetContent(text)
	m.view.GotoTop()
	m.state = stateView
}

// jumpTo scrolls to the entry point header of method id.
func (m *interactiveModel) jumpTo(id string) {
	id = strings.TrimSpace(id)
	needle := ".internal :function_" + id
	lines := strings.Split(m.listing.sections[m.selected].text(), "\n")
	if m.selected == 0 {
		lines = append(strings.Split(strings.TrimSuffix(m.listing.preamble, "\n"), "\n"), lines...)
	}
	for i, line := range lines {
		if line == needle {
			m.view.SetYOffset(i)
			m.err = nil
			return
		}
	}
	m.err = fmt.Errorf("no method %s in this region", id)
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-chromeLines, 1)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateJump {
			switch msg.String() {
			case "enter":
				m.jumpTo(m.jump.Value())
				m.jump.Blur()
				m.jump.SetValue("")
				m.state = stateView
				return m, nil
			case "esc":
				m.jump.Blur()
				m.jump.SetValue("")
				m.state = stateView
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.jump, cmd = m.jump.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectRegion && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectRegion && m.selected < len(m.listing.sections)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectRegion && len(m.listing.sections) > 0 {
				m.open()
				return m, nil
			}

		case "/":
			if m.state == stateView {
				m.state = stateJump
				return m, m.jump.Focus()
			}

		case "esc":
			if m.state == stateView {
				m.state = stateSelectRegion
				m.err = nil
				return m, nil
			}
		}
	}

	if m.state == stateView {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TVM Disassembler"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(" ")
	b.WriteString(countStyle.Render(m.listing.layout))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectRegion:
		b.WriteString("Select a region:\n\n")
		for i, s := range m.listing.sections {
			line := m.formatSection(s)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateView, stateJump:
		b.WriteString(m.view.View())
		b.WriteString("\n")
		switch {
		case m.state == stateJump:
			b.WriteString(m.jump.View())
		case m.err != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		default:
			b.WriteString(helpStyle.Render(fmt.Sprintf("%3.f%% • ↑/↓ scroll • / jump to method • esc back • q quit",
				m.view.ScrollPercent()*100)))
		}
	}

	return b.String()
}

func (m *interactiveModel) formatSection(s *section) string {
	title := s.title
	if title == "" {
		title = s.region.Name
	}
	out := regionStyle.Render(title)
	if s.kind == shape.RegionDict {
		out += " " + countStyle.Render(fmt.Sprintf("(%d methods)", len(s.pieces)))
	}
	return out
}

func runInteractive(filename string, l *listing) error {
	if len(l.sections) == 0 {
		return fmt.Errorf("nothing to browse")
	}
	p := tea.NewProgram(newInteractiveModel(filename, l), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
