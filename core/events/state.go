package events

import "github.com/koscakluka/promptbuilder/core/prompts"

const KindState Kind = "state"

// State carries the document state the backend ended the request with.
type State struct {
	header
	Snapshot prompts.StateSnapshot
}

func NewState(snapshot prompts.StateSnapshot) State {
	return State{header: newHeader(KindState), Snapshot: snapshot}
}
