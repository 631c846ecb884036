package authoring

import (
	"github.com/koscakluka/promptbuilder/core/events"
	"github.com/koscakluka/promptbuilder/core/prompts"
)

// draftTurn folds the events of one request into an assistant turn. It is
// never part of the transcript; finalize produces the value that is.
type draftTurn struct {
	text          *textBuffer
	toolCalls     []prompts.ToolCall
	searchResults []prompts.PromptSummary
	snapshot      *prompts.StateSnapshot

	done bool
}

func newDraftTurn(text *textBuffer) *draftTurn {
	text.Clear()
	return &draftTurn{text: text}
}

type draftUpdate struct {
	liveText    string
	textChanged bool
	// replacedSnapshot is set when a second state event replaced a held one.
	replacedSnapshot bool
}

func (d *draftTurn) apply(event events.Event) draftUpdate {
	if d.done {
		return draftUpdate{}
	}

	switch typedEvent := event.(type) {
	case events.Text:
		return draftUpdate{liveText: d.text.AddChunk(typedEvent.Delta), textChanged: true}

	case events.ToolCall:
		d.toolCalls = append(d.toolCalls, typedEvent.Call)
		d.searchResults = append(d.searchResults, typedEvent.Call.SearchResults()...)

	case events.State:
		replaced := d.snapshot != nil
		snapshot := typedEvent.Snapshot.Clone()
		d.snapshot = &snapshot
		return draftUpdate{replacedSnapshot: replaced}

	case events.Done:
		d.done = true
	}

	return draftUpdate{}
}

// finalize builds the assistant turn and returns the held snapshot, if any.
// The live text is cleared.
func (d *draftTurn) finalize() (prompts.Turn, *prompts.StateSnapshot) {
	turn := prompts.NewAssistantTurn(d.text.String(), d.toolCalls, d.searchResults)
	d.text.Clear()
	return turn, d.snapshot
}
