// Package contract publishes the JSON Schemas of the authoring protocol so a
// backend implementation can be checked against what the client sends and
// accepts.
package contract

import (
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/promptbuilder/core/backend"
	"github.com/koscakluka/promptbuilder/core/events"
	"github.com/koscakluka/promptbuilder/core/prompts"
)

const (
	Request = "request"
	Event   = "event"
	State   = "state"
)

var documents = map[string]struct {
	value       any
	title       string
	description string
}{
	Request: {backend.Request{}, "Authoring request", "Body of a single request to the prompt builder backend"},
	Event:   {events.Envelope{}, "Wire event", "Payload of one line of the response stream, without the line marker"},
	State:   {prompts.StateSnapshot{}, "State snapshot", "Document state after all tool calls of a request; absent fields are left untouched"},
}

// Names lists the available schemas in a stable order.
func Names() []string {
	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Schema reflects the schema registered under name.
func Schema(name string) (*jsonschema.Schema, error) {
	document, ok := documents[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q, expected one of %v", name, Names())
	}

	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(document.value)
	schema.Title = document.title
	schema.Description = document.description
	return schema, nil
}
