package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/purrfect/internal/chat"
	"github.com/diogo/purrfect/internal/models"
	"github.com/diogo/purrfect/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// sessionChangedMsg is sent whenever the chat session mutates its turns
type sessionChangedMsg struct{}

// ChatController is the part of chat.Session the TUI drives
type ChatController interface {
	Send(ctx context.Context, text string) (*chat.Exchange, error)
	Turns() []models.ChatTurn
	PendingIndex() int
	Thinking() bool
	Dispose()
}

// Info describes the active backend in the header
type Info struct {
	Backend string
	Model   string
}

// Model represents the TUI state
type Model struct {
	ctx        context.Context
	session    ChatController
	info       Info
	renderOpts render.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	ready          bool
	err            error
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model over session
func NewChatModel(ctx context.Context, session ChatController, info Info, opts render.Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about pricing, branding, suppliers..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	if ctx == nil {
		ctx = context.Background()
	}

	return Model{
		ctx:        ctx,
		session:    session,
		info:       info,
		renderOpts: opts,
		textarea:   ta,
		spinner:    s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// quit tears the session down so late replies cannot touch it
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.session.Dispose()
	return m, tea.Quit
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m.quit()

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			switch input {
			case "exit", "quit", "/exit", "/quit":
				return m.quit()
			}

			// Sending while a reply is pending replaces the older request
			if _, err := m.session.Send(m.ctx, m.textarea.Value()); err != nil {
				m.err = err
				return m, nil
			}

			m.err = nil
			m.animationFrame = 0
			m.textarea.Reset()
			m.updateViewport()
			m.viewport.GotoBottom()

			return m, tea.Batch(m.spinner.Tick, animationTick())
		}

	case sessionChangedMsg:
		m.updateViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.session.Thinking() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.session.Thinking() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only key presses reach the textarea to keep escape sequences out of it
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("🐾 Purrfect Business Guru"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.info.String()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	sections = append(sections, messagesPanel)

	inputParts := []string{inputLabelStyle.Render("You"), m.textarea.View()}
	if m.session.Thinking() {
		inputParts = append([]string{m.renderLoadingAnimation()}, inputParts...)
	}
	inputPanel := inputPanelStyle.Width(contentWidth).Render(lipgloss.JoinVertical(lipgloss.Left, inputParts...))
	sections = append(sections, inputPanel)

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// String renders the header subtitle
func (i Info) String() string {
	if i.Model == "" {
		return i.Backend
	}
	return i.Backend + " · " + i.Model
}

// renderLoadingAnimation renders the thinking indicator
func (m Model) renderLoadingAnimation() string {
	paws := []string{"🐾", "  ", "🐾", "  "}
	frame := m.animationFrame

	spin := lipgloss.NewStyle().
		Foreground(gradientColors[frame%len(gradientColors)]).
		Bold(true).
		Render(m.spinner.View())

	var trail strings.Builder
	for i := 0; i < 4; i++ {
		trail.WriteString(paws[(i+frame/3)%len(paws)])
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Guru is thinking ")
	return fmt.Sprintf("%s%s%s", spin, text, trail.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport redraws every turn of the session
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	pending := m.session.PendingIndex()

	for i, turn := range m.session.Turns() {
		if i > 0 {
			content.WriteString("\n")
		}
		stamp := timestampStyle.Render(" " + turn.Clock())

		switch {
		case turn.IsUser():
			content.WriteString(userLabelStyle.Render("● You") + stamp + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(turn.Text))

		case turn.IsError:
			content.WriteString(guruLabelStyle.Render("🐾 Guru") + stamp + "\n")
			content.WriteString(errorBubbleStyle.Width(bubbleWidth).Render(turn.Text))

		case turn.Text == "" && i == pending:
			content.WriteString(guruLabelStyle.Render("🐾 Guru") + stamp + "\n")
			content.WriteString(guruBubbleStyle.Width(bubbleWidth).Render(hintStyle.Render("…")))

		case turn.Text == "":
			// reply to a message that was replaced before it arrived
			content.WriteString(guruLabelStyle.Render("🐾 Guru") + stamp + "\n")
			content.WriteString(hintStyle.Render("  (no reply)"))

		default:
			content.WriteString(guruLabelStyle.Render("🐾 Guru") + stamp + "\n")
			rendered := render.MarkdownOrPlain(turn.Text, m.renderOpts.WithWidth(bubbleWidth-4))
			rendered = strings.TrimRight(rendered, "\n")
			content.WriteString(guruBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI. build creates the session with the hook it
// must call after every change made outside the event loop.
func RunChat(ctx context.Context, build func(onChange func()) ChatController, info Info, opts render.Options) error {
	p, session := newChatProgram(ctx, build, info, opts, tea.WithAltScreen())
	defer session.Dispose()

	_, err := p.Run()
	return err
}

// newChatProgram wires the session hook to the program. The hook only
// fires from request goroutines; Program.Send from inside Update would
// block the event loop on itself.
func newChatProgram(ctx context.Context, build func(onChange func()) ChatController, info Info, opts render.Options, progOpts ...tea.ProgramOption) (*tea.Program, ChatController) {
	var program atomic.Pointer[tea.Program]

	session := build(func() {
		if p := program.Load(); p != nil {
			p.Send(sessionChangedMsg{})
		}
	})

	p := tea.NewProgram(NewChatModel(ctx, session, info, opts), progOpts...)
	program.Store(p)
	return p, session
}
