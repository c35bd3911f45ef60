package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	confirmDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConfirmModel - yes/no prompt
// =============================================================================

// ConfirmModel asks a yes/no question. It defaults to no.
type ConfirmModel struct {
	Question  string
	Yes       bool // current selection
	Confirmed bool // set when the user accepted
	Done      bool
}

// NewConfirmModel creates a prompt with "No" preselected.
func NewConfirmModel(question string) ConfirmModel {
	return ConfirmModel{Question: question}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.Yes, m.Confirmed, m.Done = true, true, true
		return m, tea.Quit
	case "n", "N", "q", "esc", "ctrl+c":
		m.Yes, m.Confirmed, m.Done = false, false, true
		return m, tea.Quit
	case "left", "right", "h", "l", "tab":
		m.Yes = !m.Yes
	case "enter":
		m.Confirmed, m.Done = m.Yes, true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.Done {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleWarning.Render(m.Question))
	b.WriteString("  ")

	yes, no := confirmDimStyle.Render(" Yes "), confirmSelectedStyle.Render("[No]")
	if m.Yes {
		yes, no = confirmSelectedStyle.Render("[Yes]"), confirmDimStyle.Render(" No ")
	}
	b.WriteString(yes + " " + no)
	b.WriteString("\n")
	b.WriteString(confirmDimStyle.Render("y/n  ←/→ toggle  ⏎ confirm"))
	b.WriteString("\n")
	return b.String()
}

// confirm runs the prompt on the CLI's input and stderr. Without a terminal
// it answers no.
func (c *CLI) confirm(question string) (bool, error) {
	if !c.interactive {
		return false, nil
	}
	p := tea.NewProgram(NewConfirmModel(question), tea.WithInput(c.in), tea.WithOutput(c.err))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(ConfirmModel).Confirmed, nil
}
