// Package tui is the interactive terminal front end of a prompt authoring
// session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/core/prompts"
)

// Session is the part of an authoring session the UI drives.
type Session interface {
	Submit(ctx context.Context, instruction string) error
	SubmitInitial(ctx context.Context, instruction string) (bool, error)
	Abort() bool
	Close()
}

type submitDoneMsg struct {
	sent bool
	err  error
}

type Option func(*Model)

func WithModelName(name string) Option {
	return func(m *Model) { m.modelName = name }
}

// WithInitialInstruction is submitted once when the program starts.
func WithInitialInstruction(instruction string) Option {
	return func(m *Model) { m.initial = instruction }
}

// WithDocument sets where the summary strip and clipboard copy read the
// current document from.
func WithDocument(document func() prompts.Document) Option {
	return func(m *Model) { m.document = document }
}

// WithGlamourStyle selects the markdown style of assistant turns, "auto"
// detects it from the terminal.
func WithGlamourStyle(style string) Option {
	return func(m *Model) { m.glamourStyle = style }
}

func WithClipboard(copy func(string) error) Option {
	return func(m *Model) { m.copy = copy }
}

type Model struct {
	ctx     context.Context
	session Session
	bridge  *Bridge

	modelName    string
	initial      string
	document     func() prompts.Document
	glamourStyle string
	copy         func(string) error

	input    textarea.Model
	spinner  spinner.Model
	viewport viewport.Model
	markdown *glamour.TermRenderer

	width  int
	height int

	phase      authoring.Phase
	live       string
	turns      []prompts.Turn
	status     string
	suggestion int
	quitting   bool
}

func NewModel(ctx context.Context, session Session, bridge *Bridge, opts ...Option) Model {
	input := textarea.New()
	input.Placeholder = "Describe the prompt you want to build..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(3)
	input.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	m := Model{
		ctx:          ctx,
		session:      session,
		bridge:       bridge,
		document:     prompts.NewDocument,
		glamourStyle: "dark",
		copy:         clipboard.WriteAll,
		input:        input,
		spinner:      sp,
		viewport:     viewport.New(80, 20),
		width:        80,
		height:       30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.markdown = newMarkdownRenderer(m.glamourStyle, m.width)
	m.resize()
	m.refresh()
	return m
}

func newMarkdownRenderer(style string, width int) *glamour.TermRenderer {
	styleOption := glamour.WithStandardStyle(style)
	if style == "auto" {
		styleOption = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(styleOption, glamour.WithWordWrap(max(width-4, 20)))
	if err != nil {
		logger.Warn("markdown renderer unavailable, falling back to plain text", "style", style, "error", err)
		return nil
	}
	return renderer
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.bridge.listen()}
	if strings.TrimSpace(m.initial) != "" {
		cmds = append(cmds, m.submitInitialCmd(m.initial))
	}
	return tea.Batch(cmds...)
}

func (m Model) submitCmd(instruction string) tea.Cmd {
	return func() tea.Msg {
		err := m.session.Submit(m.ctx, instruction)
		return submitDoneMsg{sent: err == nil, err: err}
	}
}

func (m Model) submitInitialCmd(instruction string) tea.Cmd {
	return func() tea.Msg {
		sent, err := m.session.SubmitInitial(m.ctx, instruction)
		return submitDoneMsg{sent: sent, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.markdown = newMarkdownRenderer(m.glamourStyle, m.width)
		m.resize()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.phase != authoring.PhaseSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case phaseMsg:
		m.phase = msg.phase
		cmds := []tea.Cmd{m.bridge.listen()}
		if msg.phase == authoring.PhaseSending {
			m.status = ""
			cmds = append(cmds, m.spinner.Tick)
		}
		m.refresh()
		return m, tea.Batch(cmds...)

	case liveTextMsg:
		m.live = msg.text
		m.refresh()
		return m, m.bridge.listen()

	case turnMsg:
		m.turns = append(m.turns, msg.turn)
		m.live = ""
		m.refresh()
		return m, m.bridge.listen()

	case snapshotAppliedMsg:
		m.status = digestStatus(msg.digest)
		return m, m.bridge.listen()

	case frameSkippedMsg:
		return m, m.bridge.listen()

	case bridgeClosedMsg:
		return m, nil

	case submitDoneMsg:
		switch {
		case errors.Is(msg.err, authoring.ErrBusy):
			m.status = "Wait for the current response to finish"
		case errors.Is(msg.err, authoring.ErrClosed):
			m.status = "Session closed"
		case msg.err != nil && !errors.Is(msg.err, authoring.ErrEmptyInstruction):
			m.status = fmt.Sprintf("Request failed: %v", msg.err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.session.Close()
		m.bridge.Close()
		return m, tea.Quit

	case "ctrl+x":
		if m.session.Abort() {
			m.status = "Aborting..."
		}
		return m, nil

	case "ctrl+y":
		content := m.document().Content
		if content == "" {
			m.status = "Nothing to copy yet"
			return m, nil
		}
		if err := m.copy(content); err != nil {
			m.status = fmt.Sprintf("Copy failed: %v", err)
			return m, nil
		}
		m.status = "Prompt copied to clipboard"
		return m, nil

	case "tab":
		if len(m.turns) > 0 || m.phase.Busy() {
			return m, nil
		}
		suggestions := starterSuggestions(m.document())
		m.input.SetValue(suggestions[m.suggestion%len(suggestions)])
		m.suggestion++
		return m, nil

	case "enter":
		instruction := strings.TrimSpace(m.input.Value())
		if instruction == "" {
			return m, nil
		}
		if m.phase.Busy() {
			m.status = "Wait for the current response to finish"
			return m, nil
		}
		m.input.Reset()
		return m, m.submitCmd(instruction)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	m.input.SetWidth(max(m.width-2, 10))
	// summary strip, status line, input and footer
	reserved := m.input.Height() + 6
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-reserved, 3)
}

// refresh re-renders the transcript into the viewport and keeps the
// newest content in view.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func digestStatus(digest prompts.Digest) string {
	switch changed := digest.ChangedCount(); changed {
	case 0:
		return "Prompt unchanged"
	case 1:
		return "Updated 1 field"
	default:
		return fmt.Sprintf("Updated %d fields", changed)
	}
}
