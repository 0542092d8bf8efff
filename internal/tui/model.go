// ABOUTME: bubbletea model for the interactive Clara chat over a session
// ABOUTME: Submits turns asynchronously, shows a spinner while waiting and renders the last 50 turns
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/harper/clara/internal/models"
	"github.com/harper/clara/internal/persona"
	"github.com/harper/clara/internal/session"
)

// DisplayLimit is the number of most recent turns rendered
const DisplayLimit = 50

const (
	headerHeight = 2
	statusHeight = 1
	inputHeight  = 1
	footerHeight = 1
)

// Chatter is the part of a session the UI drives
type Chatter interface {
	Submit(ctx context.Context, text string) (session.View, error)
	Resend(ctx context.Context) (session.View, error)
	Clear() session.View
	View() session.View
}

// replyMsg carries the outcome of an asynchronous Submit or Resend.
// seq ties it to the request that produced it.
type replyMsg struct {
	seq  int
	view session.View
	err  error
}

// Model is the chat screen
type Model struct {
	ctx      context.Context
	chat     Chatter
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	view     session.View
	pending  string // user text echoed while its turn is in flight
	waiting  bool
	seq      int // bumped per request and on clear; older replies are dropped
	err      error
	showTips bool
	ready    bool
	width    int
	height   int
}

// New creates the chat model for chat
func New(ctx context.Context, chat Chatter) Model {
	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return Model{
		ctx:      ctx,
		chat:     chat,
		input:    ti,
		spinner:  sp,
		view:     chat.View(),
		showTips: true,
		width:    80,
		height:   24,
	}
}

// Run starts the full-screen chat and blocks until the user quits
func Run(ctx context.Context, chat Chatter) error {
	p := tea.NewProgram(New(ctx, chat), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.viewportHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.viewportHeight()
		}
		m.input.Width = msg.Width - 4
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(20, msg.Width-4)),
		)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			m.view = m.chat.Clear()
			m.seq++
			m.pending = ""
			m.waiting = false
			m.err = nil
			m.refresh()
			return m, nil

		case "ctrl+t":
			m.showTips = !m.showTips
			if m.ready {
				m.viewport.Height = m.viewportHeight()
			}
			m.refresh()
			return m, nil

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			if m.view.Pending() {
				// keep the typed text; the failed turn has to be resent or cleared first
				m.err = &session.Error{Kind: session.KindValidation, Err: session.ErrUnanswered}
				return m, nil
			}
			m.input.Reset()
			m.seq++
			m.pending = text
			m.waiting = true
			m.err = nil
			m.refresh()
			return m, tea.Batch(m.submit(text), m.spinner.Tick)

		case "ctrl+r":
			if m.waiting || !m.view.Pending() {
				return m, nil
			}
			m.seq++
			m.waiting = true
			m.err = nil
			m.refresh()
			return m, tea.Batch(m.resend(), m.spinner.Tick)
		}

	case replyMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.view = msg.view
		m.pending = ""
		m.waiting = false
		m.err = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(Title))
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.conversation())
	}
	b.WriteString("\n")

	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.showTips {
		b.WriteString(tipsPanel(m.width))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter send • ctrl+r resend • ctrl+l clear chat • ctrl+t tips • esc quit"))

	return b.String()
}

func (m Model) submit(text string) tea.Cmd {
	ctx, chat, seq := m.ctx, m.chat, m.seq
	return func() tea.Msg {
		view, err := chat.Submit(ctx, text)
		return replyMsg{seq: seq, view: view, err: err}
	}
}

func (m Model) resend() tea.Cmd {
	ctx, chat, seq := m.ctx, m.chat, m.seq
	return func() tea.Msg {
		view, err := chat.Resend(ctx)
		return replyMsg{seq: seq, view: view, err: err}
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.conversation())
	m.viewport.GotoBottom()
}

func (m Model) conversation() string {
	turns := m.view.Turns
	if m.pending != "" {
		turns = append(append([]session.TurnView(nil), turns...), session.TurnView{Role: models.RoleUser, Text: m.pending})
	}
	return RenderTurns(turns, DisplayLimit, m.renderMarkdown)
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func (m Model) status() string {
	switch {
	case m.waiting:
		return m.spinner.View() + " " + statusStyle.Render(SpinnerText)
	case m.err != nil:
		return errorStyle.Render("⚠ " + m.err.Error())
	default:
		return ""
	}
}

func (m Model) viewportHeight() int {
	h := m.height - headerHeight - statusHeight - inputHeight - footerHeight - 1
	if m.showTips {
		h -= lipgloss.Height(tipsPanel(m.width))
	}
	return max(3, h)
}

// DisplayName returns the speaker label for role
func DisplayName(role models.Role) string {
	if role == models.RoleUser {
		return "You"
	}
	return persona.Name
}

// RenderTurns renders the last limit turns as labelled blocks. Assistant text is
// passed through render; user text is shown as typed.
func RenderTurns(turns []session.TurnView, limit int, render func(string) string) string {
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		if t.Role == models.RoleUser {
			blocks = append(blocks, fmt.Sprintf("%s %s", userLabelStyle.Render(DisplayName(t.Role)+":"), t.Text))
			continue
		}
		text := t.Text
		if render != nil {
			text = render(text)
		}
		blocks = append(blocks, fmt.Sprintf("%s %s", claraLabelStyle.Render(DisplayName(t.Role)+":"), text))
	}
	return strings.Join(blocks, "\n\n")
}

func tipsPanel(width int) string {
	var b strings.Builder
	b.WriteString("🔹 Quick Tips\n")
	for _, tip := range Tips {
		b.WriteString("  - " + tip + "\n")
	}
	b.WriteString("⚠️ " + Disclaimer)

	style := tipsStyle
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(b.String())
}
