package prompts

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message unit in the authoring transcript.
//
// User turns are immutable from creation. Assistant turns only exist as
// Turn values once their response has been finalised, a partially streamed
// response is never represented as a Turn.
type Turn struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	// Content is the instruction for user turns and the accumulated
	// response text for assistant turns.
	Content string `json:"content"`

	// ToolCalls is nil when the response did not invoke any tools.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// SearchResults holds prompts extracted from successful search_prompts
	// tool calls, nil when there were none.
	SearchResults []PromptSummary `json:"searchResults,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func NewUserTurn(instruction string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   instruction,
		CreatedAt: time.Now(),
	}
}

func NewAssistantTurn(content string, toolCalls []ToolCall, searchResults []PromptSummary) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if len(toolCalls) > 0 {
		turn.ToolCalls = toolCalls
	}
	if len(searchResults) > 0 {
		turn.SearchResults = searchResults
	}
	return turn
}

// Clone returns a deep copy of the turn, tool call payloads included.
func (t Turn) Clone() Turn {
	var clone Turn
	if err := copier.CopyWithOption(&clone, &t, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for
		// identical types
		return t
	}

	// copier allocates empty slices for nil ones, and nil means absent here
	if t.ToolCalls == nil {
		clone.ToolCalls = nil
	}
	for i, call := range t.ToolCalls {
		if call.Result.Data == nil {
			clone.ToolCalls[i].Result.Data = nil
		}
	}
	if t.SearchResults == nil {
		clone.SearchResults = nil
	}
	for i, result := range t.SearchResults {
		if result.Tags == nil {
			clone.SearchResults[i].Tags = nil
		}
	}
	return clone
}

// CloneTurns deep copies a list of turns, preserving nil.
func CloneTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}

	clones := make([]Turn, len(turns))
	for i, turn := range turns {
		clones[i] = turn.Clone()
	}
	return clones
}

// ToolCall describes one backend-side tool invocation and its outcome.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Arguments are the raw serialized arguments, opaque to the client.
	Arguments string     `json:"arguments"`
	Result    ToolResult `json:"result"`
}

type ToolResult struct {
	Success bool `json:"success"`
	// Data is untyped and possibly partial, use [ToolResult.Fields] to
	// inspect it.
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Fields decodes Data as a JSON object. It returns nil when Data is absent
// or is not an object.
func (r ToolResult) Fields() map[string]any {
	if len(r.Data) == 0 {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return nil
	}
	return fields
}

const SearchPromptsTool = "search_prompts"

// SearchResults extracts the prompts returned by a successful search_prompts
// call. Entries that are not objects are dropped, the order of the rest is
// kept.
func (c ToolCall) SearchResults() []PromptSummary {
	if c.Name != SearchPromptsTool || !c.Result.Success || len(c.Result.Data) == 0 {
		return nil
	}

	var data struct {
		Prompts []json.RawMessage `json:"prompts"`
	}
	if err := json.Unmarshal(c.Result.Data, &data); err != nil {
		return nil
	}

	summaries := make([]PromptSummary, 0, len(data.Prompts))
	for _, raw := range data.Prompts {
		var summary PromptSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// PromptSummary is a compact view of an existing prompt, as returned by
// prompt searches.
type PromptSummary struct {
	ID               string   `json:"id"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	ContentPreview   string   `json:"contentPreview,omitempty"`
	Type             string   `json:"type,omitempty"`
	StructuredFormat string   `json:"structuredFormat,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Source           string   `json:"source,omitempty"`
	Similarity       string   `json:"similarity,omitempty"`
}
