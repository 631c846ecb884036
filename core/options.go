package authoring

import (
	"strings"

	"github.com/koscakluka/promptbuilder/core/framing"
	"github.com/koscakluka/promptbuilder/core/prompts"
)

const DefaultFailureMessage = "Sorry, something went wrong. Please try again."

type SessionOption func(*SessionOptions)

type SessionOptions struct {
	form          Form
	stateProvider func() prompts.StateSnapshot
	reference     prompts.ReferenceData

	failureMessage string
	framing        framing.Config

	onPhaseChange     func(Phase)
	onLiveText        func(string)
	onTurn            func(prompts.Turn)
	onSnapshotApplied func(prompts.StateSnapshot, prompts.Digest)
	onSkippedFrame    func(line []byte, err error)
}

func defaultSessionOptions() SessionOptions {
	return SessionOptions{
		failureMessage: DefaultFailureMessage,
		framing:        framing.DefaultConfig(),
	}
}

// WithForm sets the document snapshots are applied to. When the form can
// also report its state, it becomes the state provider unless one is set
// explicitly.
func WithForm(form Form) SessionOption {
	return func(o *SessionOptions) { o.form = form }
}

// WithStateProvider sets where the current document state of each request
// comes from.
func WithStateProvider(provider func() prompts.StateSnapshot) SessionOption {
	return func(o *SessionOptions) { o.stateProvider = provider }
}

func WithReferenceData(reference prompts.ReferenceData) SessionOption {
	return func(o *SessionOptions) { o.reference = reference }
}

// WithFailureMessage replaces the text of the assistant turn appended when a
// request fails.
func WithFailureMessage(message string) SessionOption {
	return func(o *SessionOptions) {
		if strings.TrimSpace(message) != "" {
			o.failureMessage = message
		}
	}
}

func WithFramingConfig(config framing.Config) SessionOption {
	return func(o *SessionOptions) {
		if config.Marker != "" {
			o.framing.Marker = config.Marker
		}
		if config.Sentinel != "" {
			o.framing.Sentinel = config.Sentinel
		}
	}
}

func WithPhaseCallback(callback func(phase Phase)) SessionOption {
	return func(o *SessionOptions) { o.onPhaseChange = callback }
}

// WithLiveTextCallback receives the whole response text so far after every
// text delta, and an empty string when the live text is cleared.
func WithLiveTextCallback(callback func(text string)) SessionOption {
	return func(o *SessionOptions) { o.onLiveText = callback }
}

// WithTurnCallback is called for every turn appended to the transcript,
// user and assistant alike.
func WithTurnCallback(callback func(turn prompts.Turn)) SessionOption {
	return func(o *SessionOptions) { o.onTurn = callback }
}

func WithSnapshotAppliedCallback(callback func(snapshot prompts.StateSnapshot, digest prompts.Digest)) SessionOption {
	return func(o *SessionOptions) { o.onSnapshotApplied = callback }
}

func WithSkippedFrameCallback(callback func(line []byte, err error)) SessionOption {
	return func(o *SessionOptions) { o.onSkippedFrame = callback }
}
