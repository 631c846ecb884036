package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/core/prompts"
)

type phaseMsg struct {
	phase authoring.Phase
}

type liveTextMsg struct {
	text string
}

type turnMsg struct {
	turn prompts.Turn
}

type snapshotAppliedMsg struct {
	digest prompts.Digest
}

type frameSkippedMsg struct{}

type bridgeClosedMsg struct{}

// Bridge turns session callbacks into bubbletea messages. Callbacks run on
// the session's request goroutine, the model reads them back on the UI
// loop.
type Bridge struct {
	ch        chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		ch:   make(chan tea.Msg, 64),
		done: make(chan struct{}),
	}
}

// SessionOptions returns the callback options that feed the bridge.
func (b *Bridge) SessionOptions() []authoring.SessionOption {
	return []authoring.SessionOption{
		authoring.WithPhaseCallback(func(phase authoring.Phase) {
			b.send(phaseMsg{phase: phase})
		}),
		authoring.WithLiveTextCallback(func(text string) {
			b.send(liveTextMsg{text: text})
		}),
		authoring.WithTurnCallback(func(turn prompts.Turn) {
			b.send(turnMsg{turn: turn})
		}),
		authoring.WithSnapshotAppliedCallback(func(_ prompts.StateSnapshot, digest prompts.Digest) {
			b.send(snapshotAppliedMsg{digest: digest})
		}),
		authoring.WithSkippedFrameCallback(func([]byte, error) {
			b.send(frameSkippedMsg{})
		}),
	}
}

// send drops messages once the bridge is closed so a request finishing
// after the UI quit never blocks.
func (b *Bridge) send(msg tea.Msg) {
	select {
	case <-b.done:
	case b.ch <- msg:
	}
}

func (b *Bridge) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return bridgeClosedMsg{}
		}
	}
}

func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
