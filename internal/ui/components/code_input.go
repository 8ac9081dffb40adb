package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yuki/internal/ui/theme"
)

// CodeSubmitMsg is emitted when the user confirms a code.
type CodeSubmitMsg struct{ Code string }

// CodeCancelMsg is emitted when the user presses esc.
type CodeCancelMsg struct{}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

var inputStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.Peach).
	Padding(0, 1)

// CodeInput is a six character text field backed by bubbles/textinput.
// Characters outside the code alphabet are dropped as they are typed.
type CodeInput struct {
	input textinput.Model
}

func NewCodeInput(length int) CodeInput {
	ti := textinput.New()
	ti.Placeholder = "Enter Code"
	ti.CharLimit = length
	ti.Width = length + 1
	return CodeInput{input: ti}
}

func (c *CodeInput) Focus() tea.Cmd { return c.input.Focus() }

func (c *CodeInput) Blur() { c.input.Blur() }

func (c *CodeInput) Reset() { c.input.SetValue("") }

func (c CodeInput) Value() string { return c.input.Value() }

func (c CodeInput) Update(msg tea.Msg) (CodeInput, tea.Cmd) {
	if !c.input.Focused() {
		return c, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return c, func() tea.Msg { return CodeCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(c.input.Value())
			return c, func() tea.Msg { return CodeSubmitMsg{Code: val} }
		}
		if key.Type == tea.KeyRunes {
			key.Runes = filterRunes(key.Runes)
			if len(key.Runes) == 0 {
				return c, nil
			}
			msg = key
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c CodeInput) View() string {
	return inputStyle.Render(c.input.View())
}

func filterRunes(in []rune) []rune {
	out := in[:0]
	for _, r := range in {
		if strings.ContainsRune(codeAlphabet, r) {
			out = append(out, r)
		}
	}
	return out
}
