package authoring

import "github.com/koscakluka/promptbuilder/core/prompts"

type sessionEvent interface{ sessionEvent() }

type phaseChanged struct{ phase Phase }

type liveTextUpdated struct{ text string }

type turnAppended struct{ turn prompts.Turn }

type snapshotApplied struct {
	snapshot prompts.StateSnapshot
	digest   prompts.Digest
}

type frameSkipped struct {
	line []byte
	err  error
}

func (phaseChanged) sessionEvent()    {}
func (liveTextUpdated) sessionEvent() {}
func (turnAppended) sessionEvent()    {}
func (snapshotApplied) sessionEvent() {}
func (frameSkipped) sessionEvent()    {}

type eventEmitter func(sessionEvent)

func newCallbackEventEmitter(opts SessionOptions) eventEmitter {
	return func(event sessionEvent) {
		switch typedEvent := event.(type) {
		case phaseChanged:
			if opts.onPhaseChange != nil {
				opts.onPhaseChange(typedEvent.phase)
			}
		case liveTextUpdated:
			if opts.onLiveText != nil {
				opts.onLiveText(typedEvent.text)
			}
		case turnAppended:
			if opts.onTurn != nil {
				opts.onTurn(typedEvent.turn.Clone())
			}
		case snapshotApplied:
			if opts.onSnapshotApplied != nil {
				opts.onSnapshotApplied(typedEvent.snapshot.Clone(), typedEvent.digest)
			}
		case frameSkipped:
			if opts.onSkippedFrame != nil {
				opts.onSkippedFrame(typedEvent.line, typedEvent.err)
			}
		}
	}
}
