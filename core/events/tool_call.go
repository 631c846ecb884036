package events

import "github.com/koscakluka/promptbuilder/core/prompts"

const KindToolCall Kind = "tool_call"

// ToolCall carries one completed backend-side tool invocation.
type ToolCall struct {
	header
	Call prompts.ToolCall
}

func NewToolCall(call prompts.ToolCall) ToolCall {
	return ToolCall{header: newHeader(KindToolCall), Call: call}
}
