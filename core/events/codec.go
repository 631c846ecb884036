package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/koscakluka/promptbuilder/core/prompts"
)

var ErrMalformed = errors.New("malformed event payload")

// Envelope is the serialized form of every event.
type Envelope struct {
	Type     Kind                   `json:"type" jsonschema:"required,enum=text,enum=tool_call,enum=state,enum=done,enum=error"`
	Content  *string                `json:"content,omitempty" jsonschema:"description=Text delta, required for text events"`
	ToolCall *prompts.ToolCall      `json:"toolCall,omitempty" jsonschema:"description=Completed tool invocation, required for tool_call events"`
	State    *prompts.StateSnapshot `json:"state,omitempty" jsonschema:"description=Document state after the request, required for state events"`
	Error    string                 `json:"error,omitempty" jsonschema:"description=Backend failure message for error events"`
}

// Decode parses one serialized event.
//
// Payloads with an unrecognised type decode to [Unknown] without error.
// Payloads that are not JSON objects, or that lack the field their type
// requires, fail with [ErrMalformed].
func Decode(payload []byte) (Event, error) {
	var header struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	// the fields of unknown kinds may mean anything
	if !header.Type.Known() {
		return NewUnknown(header.Type, payload), nil
	}

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch envelope.Type {
	case KindText:
		if envelope.Content == nil {
			return nil, fmt.Errorf("%w: text event without content", ErrMalformed)
		}
		return NewText(*envelope.Content), nil

	case KindToolCall:
		if envelope.ToolCall == nil {
			return nil, fmt.Errorf("%w: tool_call event without toolCall", ErrMalformed)
		}
		return NewToolCall(*envelope.ToolCall), nil

	case KindState:
		if envelope.State == nil {
			return nil, fmt.Errorf("%w: state event without state", ErrMalformed)
		}
		return NewState(*envelope.State), nil

	case KindDone:
		return NewDone(), nil

	case KindError:
		return NewError(envelope.Error), nil

	default:
		return NewUnknown(envelope.Type, payload), nil
	}
}

// Encode serializes an event into its wire payload, without framing.
func Encode(event Event) ([]byte, error) {
	envelope := Envelope{Type: event.Kind()}
	switch typedEvent := event.(type) {
	case Text:
		envelope.Content = &typedEvent.Delta
	case ToolCall:
		envelope.ToolCall = &typedEvent.Call
	case State:
		envelope.State = &typedEvent.Snapshot
	case Done:
	case Error:
		envelope.Error = typedEvent.Message
	case Unknown:
		return append([]byte(nil), typedEvent.Payload...), nil
	default:
		return nil, fmt.Errorf("cannot encode event of kind %q", event.Kind())
	}

	return json.Marshal(envelope)
}
