package backend

import "github.com/koscakluka/promptbuilder/core/prompts"

type Message struct {
	Role    prompts.Role `json:"role" jsonschema:"enum=user,enum=assistant"`
	Content string       `json:"content"`
}

// Request is the body of a single authoring request: the conversation so
// far, the current document state and the reference data needed to resolve
// tag and category names.
type Request struct {
	Messages     []Message             `json:"messages" jsonschema:"required"`
	CurrentState prompts.StateSnapshot `json:"currentState" jsonschema:"required"`
	prompts.ReferenceData
}

// NewRequest builds a request from the transcript. Only role and content
// are sent, tool calls and search results stay on the client.
func NewRequest(turns []prompts.Turn, state prompts.StateSnapshot, reference prompts.ReferenceData) Request {
	messages := make([]Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, Message{Role: turn.Role, Content: turn.Content})
	}

	if state.TagIDs == nil {
		state.TagIDs = []string{}
	}
	if reference.Tags == nil {
		reference.Tags = []prompts.Tag{}
	}
	if reference.Categories == nil {
		reference.Categories = []prompts.Category{}
	}

	return Request{
		Messages:      messages,
		CurrentState:  state,
		ReferenceData: reference,
	}
}
