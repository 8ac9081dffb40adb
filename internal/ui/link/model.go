// Package link is the account link popup: code entry while unlinked, the
// linked account with an unlink action otherwise.
package link

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	accountdto "yuki/internal/modules/account/dto"
	"yuki/internal/ui/components"
	"yuki/internal/ui/theme"
)

const codeLength = 6

type linkPort interface {
	Link(ctx context.Context, code string, accountID int, username string) (accountdto.LinkResult, error)
	Unlink(ctx context.Context) error
	Status(ctx context.Context) (accountdto.StateOutput, error)
	NormalizeCode(code string) (string, error)
}

type phase int

const (
	phaseLoading phase = iota
	phaseUnlinked
	phaseLinking
	phaseLinked
	phaseConfirmUnlink
)

type statusLoadedMsg struct {
	state accountdto.StateOutput
	err   error
}

type linkDoneMsg struct {
	result accountdto.LinkResult
	err    error
}

type unlinkedMsg struct{ err error }

type keyMap struct {
	Unlink key.Binding
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Unlink: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unlink")),
		Yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		No:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "close")),
	}
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Unlink, k.Quit} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// Model drives one popup session. Link requests run as tea commands; closing
// the popup while one is in flight cancels it.
type Model struct {
	ctx       context.Context
	port      linkPort
	accountID int
	username  string
	serverURL string

	phase       phase
	input       components.CodeInput
	spinner     spinner.Model
	keys        keyMap
	help        help.Model
	displayName string
	status      string
	statusBad   bool
	cancelLink  context.CancelFunc
}

func NewModel(ctx context.Context, port linkPort, accountID int, username, serverURL string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Hot
	return Model{
		ctx:       ctx,
		port:      port,
		accountID: accountID,
		username:  username,
		serverURL: strings.TrimRight(serverURL, "/"),
		input:     components.NewCodeInput(codeLength),
		spinner:   sp,
		keys:      defaultKeys(),
		help:      help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadStatusCmd()
}

func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.port.Status(m.ctx)
		return statusLoadedMsg{state: state, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("read link state: %v", msg.err), true)
			return m, tea.Quit
		}
		if msg.state.Linked {
			m.phase = phaseLinked
			m.displayName = msg.state.DisplayName
			return m, nil
		}
		m.phase = phaseUnlinked
		return m, m.input.Focus()

	case components.CodeSubmitMsg:
		return m.submit(msg.Code)

	case components.CodeCancelMsg:
		return m, tea.Quit

	case linkDoneMsg:
		m.cancelLink = nil
		if msg.err != nil {
			m.phase = phaseUnlinked
			m.setStatus(msg.err.Error(), true)
			return m, m.input.Focus()
		}
		if msg.result.Success {
			m.phase = phaseLinked
			m.displayName = msg.result.Message
			m.setStatus("Successfully linked!", false)
			return m, nil
		}
		m.phase = phaseUnlinked
		m.setStatus(msg.result.Message, true)
		return m, m.input.Focus()

	case unlinkedMsg:
		if msg.err != nil {
			m.phase = phaseLinked
			m.setStatus(fmt.Sprintf("unlink: %v", msg.err), true)
			return m, nil
		}
		m.phase = phaseUnlinked
		m.displayName = ""
		m.setStatus("Your account has been unlinked.", false)
		m.input.Reset()
		return m, m.input.Focus()

	case spinner.TickMsg:
		if m.phase != phaseLinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}
	switch m.phase {
	case phaseUnlinked:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case phaseLinking:
		if key.Matches(msg, m.keys.Cancel) {
			m.cancel()
		}
	case phaseLinked:
		switch {
		case key.Matches(msg, m.keys.Unlink):
			m.phase = phaseConfirmUnlink
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
	case phaseConfirmUnlink:
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m, func() tea.Msg { return unlinkedMsg{err: m.port.Unlink(m.ctx)} }
		case key.Matches(msg, m.keys.No):
			m.phase = phaseLinked
		}
	}
	return m, nil
}

func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	code, err := m.port.NormalizeCode(raw)
	if err != nil {
		m.setStatus(presentCodeError(err), true)
		return m, nil
	}
	if m.accountID == 0 {
		m.setStatus("Please log into your GD account first", true)
		return m, nil
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelLink = cancel
	m.phase = phaseLinking
	m.input.Blur()
	m.setStatus("Linking...", false)
	accountID, username := m.accountID, m.username
	link := func() tea.Msg {
		defer cancel()
		result, err := m.port.Link(ctx, code, accountID, username)
		return linkDoneMsg{result: result, err: err}
	}
	return m, tea.Batch(link, m.spinner.Tick)
}

func (m *Model) cancel() {
	if m.cancelLink != nil {
		m.cancelLink()
	}
}

func (m *Model) setStatus(s string, bad bool) {
	m.status = s
	m.statusBad = bad
}

// presentCodeError strips the error class prefix for display.
func presentCodeError(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Discord Account") + "\n\n")
	switch m.phase {
	case phaseLoading:
		sb.WriteString(theme.Muted.Render("loading…") + "\n")
	case phaseUnlinked:
		sb.WriteString("1. Open " + theme.Hot.Render(m.serverURL+"/link") + " to get your code\n")
		sb.WriteString("2. Authorize with Discord\n")
		sb.WriteString("3. Enter the 6-character code below\n\n")
		sb.WriteString(m.input.View() + "\n")
	case phaseLinking:
		sb.WriteString(m.spinner.View() + " " + theme.Muted.Render("esc to cancel") + "\n")
	case phaseLinked:
		sb.WriteString(theme.Good.Render("Linked to: "+m.displayName) + "\n\n")
		sb.WriteString(m.help.View(m.keys) + "\n")
	case phaseConfirmUnlink:
		sb.WriteString("Are you sure you want to " + theme.Bad.Render("unlink") + " your Discord account? (y/n)\n")
	}
	if m.status != "" {
		style := theme.Muted
		if m.statusBad {
			style = theme.Bad
		}
		sb.WriteString("\n" + style.Render(m.status) + "\n")
	}
	pane := theme.Pane
	if m.phase == phaseLinking {
		pane = theme.PaneActive
	}
	return pane.Render(sb.String())
}
