package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/core/prompts"
)

type fakeSession struct {
	mu        sync.Mutex
	submitted []string
	initial   []string
	aborts    int
	closed    bool
	submitErr error
}

func (s *fakeSession) Submit(_ context.Context, instruction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, instruction)
	return s.submitErr
}

func (s *fakeSession) SubmitInitial(_ context.Context, instruction string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = append(s.initial, instruction)
	return true, nil
}

func (s *fakeSession) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborts++
	return true
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func newTestModel(t *testing.T, session Session, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{WithGlamourStyle("notty")}, opts...)
	m := NewModel(context.Background(), session, NewBridge(), opts...)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return model, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	return m
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func TestEnterSubmitsTrimmedInstruction(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(t, session)
	m = typeText(t, m, "  Write a haiku prompt  ")

	m, cmd := update(t, m, keyMsg("enter"))
	if cmd == nil {
		t.Fatalf("expected submit command")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared, got %q", m.input.Value())
	}

	msg := cmd()
	done, ok := msg.(submitDoneMsg)
	if !ok {
		t.Fatalf("expected submitDoneMsg, got %T", msg)
	}
	if !done.sent || done.err != nil {
		t.Fatalf("expected sent without error, got sent=%v err=%v", done.sent, done.err)
	}
	if len(session.submitted) != 1 || session.submitted[0] != "Write a haiku prompt" {
		t.Fatalf("unexpected submissions: %v", session.submitted)
	}
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(t, session)
	m = typeText(t, m, "   ")

	_, cmd := update(t, m, keyMsg("enter"))
	if cmd != nil {
		t.Fatalf("expected no command for blank input")
	}
}

func TestEnterWhileBusyKeepsInput(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(t, session)
	m, _ = update(t, m, phaseMsg{phase: authoring.PhaseStreaming})
	m = typeText(t, m, "another one")

	m, cmd := update(t, m, keyMsg("enter"))
	if cmd != nil {
		t.Fatalf("expected no submit while busy")
	}
	if m.input.Value() != "another one" {
		t.Fatalf("expected input to be kept, got %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "Wait for the current response") {
		t.Fatalf("expected busy status in view")
	}
}

func TestSubmitErrorsShowInStatus(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	m, _ = update(t, m, submitDoneMsg{err: authoring.ErrBusy})
	if m.status != "Wait for the current response to finish" {
		t.Fatalf("unexpected status %q", m.status)
	}
	m, _ = update(t, m, submitDoneMsg{err: errors.New("boom")})
	if !strings.Contains(m.status, "boom") {
		t.Fatalf("expected error in status, got %q", m.status)
	}
}

func TestTabCyclesStarterSuggestions(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	for i := range len(exampleSuggestions) + 1 {
		m, _ = update(t, m, keyMsg("tab"))
		want := exampleSuggestions[i%len(exampleSuggestions)]
		if m.input.Value() != want {
			t.Fatalf("tab %d: expected %q, got %q", i, want, m.input.Value())
		}
	}
}

func TestTabOffersEditActionsForExistingContent(t *testing.T) {
	document := prompts.NewDocument()
	document.Content = "You are a helpful assistant."
	m := newTestModel(t, &fakeSession{}, WithDocument(func() prompts.Document { return document }))

	m, _ = update(t, m, keyMsg("tab"))
	if m.input.Value() != editSuggestions[0] {
		t.Fatalf("expected edit action, got %q", m.input.Value())
	}
	if !strings.Contains(m.View(), editSuggestions[1]) {
		t.Fatalf("expected edit actions in welcome view")
	}
}

func TestTabDoesNothingOnceConversationStarted(t *testing.T) {
	m := newTestModel(t, &fakeSession{})
	m, _ = update(t, m, turnMsg{turn: prompts.NewUserTurn("hello")})

	m, _ = update(t, m, keyMsg("tab"))
	if m.input.Value() != "" {
		t.Fatalf("expected no suggestion, got %q", m.input.Value())
	}
}

func TestWaitingIndicatorUntilFirstText(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	m, cmd := update(t, m, phaseMsg{phase: authoring.PhaseSending})
	if cmd == nil {
		t.Fatalf("expected spinner and listen commands")
	}
	if !strings.Contains(m.View(), "Thinking...") {
		t.Fatalf("expected waiting indicator while sending")
	}

	m, _ = update(t, m, liveTextMsg{text: "Working on it"})
	view := m.View()
	if strings.Contains(view, "Thinking...") {
		t.Fatalf("expected waiting indicator to disappear once text arrived")
	}
	if !strings.Contains(view, "Working on it"+cursorMarker) {
		t.Fatalf("expected live text with cursor, got:\n%s", view)
	}
}

func TestFinalizedTurnReplacesLiveText(t *testing.T) {
	m := newTestModel(t, &fakeSession{})
	m, _ = update(t, m, turnMsg{turn: prompts.NewUserTurn("Build a code review prompt")})
	m, _ = update(t, m, phaseMsg{phase: authoring.PhaseStreaming})
	m, _ = update(t, m, liveTextMsg{text: "Partial"})

	turn := prompts.NewAssistantTurn("Done, the prompt is ready.",
		[]prompts.ToolCall{
			{ID: "1", Name: "set_title", Result: prompts.ToolResult{Success: true, Data: []byte(`{"title":"Code Reviewer"}`)}},
			{ID: "2", Name: "search_prompts", Result: prompts.ToolResult{Success: true, Data: []byte(`{"prompts":[{"id":"a","title":"Review Bot"},{"id":"b","title":"Lint Helper"}]}`)}},
		},
		[]prompts.PromptSummary{{ID: "a", Title: "Review Bot"}, {ID: "b", Title: "Lint Helper"}},
	)
	m, _ = update(t, m, liveTextMsg{text: ""})
	m, _ = update(t, m, turnMsg{turn: turn})
	m, _ = update(t, m, phaseMsg{phase: authoring.PhaseIdle})

	if m.live != "" {
		t.Fatalf("expected live text to be cleared, got %q", m.live)
	}
	content := m.renderTranscript()
	for _, want := range []string{"Build a code review prompt", "Set Title", "Code Reviewer", "Found 2 examples", "Review Bot", "Lint Helper", "prompt is ready"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in transcript, got:\n%s", want, content)
		}
	}
	if strings.Contains(content, "Partial") {
		t.Fatalf("expected live text to be gone from transcript")
	}
}

func TestSnapshotDigestShowsInStatus(t *testing.T) {
	m := newTestModel(t, &fakeSession{})
	m, _ = update(t, m, snapshotAppliedMsg{digest: prompts.Digest{Carried: 3, Changed: []prompts.Field{prompts.FieldTitle, prompts.FieldContent}}})

	if !strings.Contains(m.View(), "Updated 2 fields") {
		t.Fatalf("expected digest status in view")
	}
}

func TestSummaryStripTruncatesTitle(t *testing.T) {
	document := prompts.NewDocument()
	document.Title = "An Exceptionally Long Prompt Title"
	document.Content = "héllo"
	document.TagIDs = []string{"t1", "t2"}

	badges := summaryBadges(document)
	want := []string{"Title: An Exceptionally Lon...", "Content: 5 chars", "2 tags"}
	if len(badges) != len(want) {
		t.Fatalf("expected %v, got %v", want, badges)
	}
	for i := range want {
		if badges[i] != want[i] {
			t.Fatalf("badge %d: expected %q, got %q", i, want[i], badges[i])
		}
	}

	if badges := summaryBadges(prompts.NewDocument()); badges != nil {
		t.Fatalf("expected no summary for an empty document, got %v", badges)
	}
}

func TestCopyWritesDocumentContent(t *testing.T) {
	document := prompts.NewDocument()
	var copied string
	m := newTestModel(t, &fakeSession{},
		WithDocument(func() prompts.Document { return document }),
		WithClipboard(func(text string) error {
			copied = text
			return nil
		}),
	)

	m, _ = update(t, m, keyMsg("ctrl+y"))
	if m.status != "Nothing to copy yet" || copied != "" {
		t.Fatalf("expected nothing copied, got status=%q copied=%q", m.status, copied)
	}

	document.Content = "Summarize {{notes}}"
	m, _ = update(t, m, keyMsg("ctrl+y"))
	if copied != "Summarize {{notes}}" {
		t.Fatalf("expected content copied, got %q", copied)
	}
	if m.status != "Prompt copied to clipboard" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestAbortAndQuitKeys(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(t, session)

	m, _ = update(t, m, keyMsg("ctrl+x"))
	if session.aborts != 1 {
		t.Fatalf("expected one abort, got %d", session.aborts)
	}

	m, cmd := update(t, m, keyMsg("esc"))
	if !session.closed {
		t.Fatalf("expected session to be closed")
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if _, ok := m.bridge.listen()().(bridgeClosedMsg); !ok {
		t.Fatalf("expected bridge to be closed")
	}
}

func TestInitialInstructionUsesSubmitInitial(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(t, session, WithInitialInstruction("Make a SQL prompt"))

	msg := m.submitInitialCmd(m.initial)()
	if done, ok := msg.(submitDoneMsg); !ok || !done.sent {
		t.Fatalf("expected sent submitDoneMsg, got %#v", msg)
	}
	if len(session.initial) != 1 || session.initial[0] != "Make a SQL prompt" {
		t.Fatalf("unexpected initial submissions: %v", session.initial)
	}
	if len(session.submitted) != 0 {
		t.Fatalf("expected no regular submissions")
	}
}

func TestFooterShowsModelName(t *testing.T) {
	m := newTestModel(t, &fakeSession{}, WithModelName("gpt-4o-mini"))
	if !strings.Contains(m.View(), "gpt-4o-mini") {
		t.Fatalf("expected model name in footer")
	}
}
