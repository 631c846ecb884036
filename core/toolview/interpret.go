// Package toolview turns tool call records into short, human readable
// transcript lines.
package toolview

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/koscakluka/promptbuilder/core/prompts"
)

const noFurtherDetail = "No further detail"

// DisplayLine is the rendered summary of one tool call.
type DisplayLine struct {
	Label   string
	Detail  string
	Success bool
	// Error is the failure message reported by the backend, if any.
	Error string
}

type interpreter func(data fields) string

var interpreters = map[string]interpreter{
	"set_title": func(data fields) string {
		if title, ok := data.string("title"); ok {
			return "Title → " + clip(title, 30)
		}
		return "Title updated"
	},
	"set_description": func(data fields) string {
		if description, ok := data.string("description"); ok {
			return "Description → " + clip(description, 25)
		}
		return "Description updated"
	},
	"set_content": func(data fields) string {
		content, _ := data.string("content")
		return fmt.Sprintf("Content set (%d chars)", len([]rune(content)))
	},
	"set_type": func(data fields) string {
		promptType, ok := data.string("type")
		if !ok {
			return "Type updated"
		}
		if format, ok := data.string("structuredFormat"); ok && format != "" {
			return fmt.Sprintf("Type → %s (%s)", promptType, format)
		}
		return "Type → " + promptType
	},
	"set_tags": func(data fields) string {
		if tags := data.strings("appliedTags"); len(tags) > 0 {
			return "Tags → " + strings.Join(tags, ", ")
		}
		return "No matching tags"
	},
	"set_category": func(data fields) string {
		if category, ok := data.string("category"); ok && category != "" {
			return "Category → " + category
		}
		return "Category → not found"
	},
	"set_privacy": func(data fields) string {
		if isPrivate, _ := data.bool("isPrivate"); isPrivate {
			return "Set to Private"
		}
		return "Set to Public"
	},
	"set_media_requirements": func(data fields) string {
		if required, _ := data.bool("requiresMediaUpload"); !required {
			return "No media required"
		}
		count, ok := data.int("mediaCount")
		if !ok || count == 0 {
			count = 1
		}
		mediaType, ok := data.string("mediaType")
		if !ok || mediaType == "" {
			mediaType = "file"
		}
		return fmt.Sprintf("Requires %d %s(s)", count, mediaType)
	},
	prompts.SearchPromptsTool: func(data fields) string {
		count := data.length("prompts")
		return fmt.Sprintf("Found %d %s", count, plural(count, "example", "examples"))
	},
	"get_available_tags": func(data fields) string {
		return fmt.Sprintf("%d tags available", data.length("tags"))
	},
	"get_available_categories": func(data fields) string {
		return fmt.Sprintf("%d categories", data.length("categories"))
	},
	"get_current_state": func(fields) string {
		return "Retrieved current state"
	},
}

// Interpret summarises a tool call. It never fails: missing or mistyped
// result fields fall back to a neutral phrase and unknown tools get a
// humanized label with a generic detail.
func Interpret(call prompts.ToolCall) DisplayLine {
	line := DisplayLine{
		Label:   Humanize(call.Name),
		Success: call.Result.Success,
		Error:   call.Result.Error,
	}

	if interpret, ok := interpreters[call.Name]; ok {
		line.Detail = interpret(fields(call.Result.Fields()))
	} else {
		line.Detail = noFurtherDetail
	}
	return line
}

// InterpretAll interprets calls in the order they are stored on the turn.
func InterpretAll(calls []prompts.ToolCall) []DisplayLine {
	lines := make([]DisplayLine, 0, len(calls))
	for _, call := range calls {
		lines = append(lines, Interpret(call))
	}
	return lines
}

// Humanize turns a tool name such as "set_media_requirements" into
// "Set Media Requirements".
func Humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return "Tool"
	}

	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// clip keeps the first limit runes of s, whatever their display width.
func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func plural(count int, singular, pluralForm string) string {
	if count == 1 {
		return singular
	}
	return pluralForm
}

// fields is the untyped result payload of a tool call. Every accessor
// reports a missing or mistyped field as absent.
type fields map[string]any

func (f fields) string(key string) (string, bool) {
	value, ok := f[key].(string)
	return value, ok
}

func (f fields) bool(key string) (bool, bool) {
	value, ok := f[key].(bool)
	return value, ok
}

func (f fields) int(key string) (int, bool) {
	switch value := f[key].(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	}
	return 0, false
}

func (f fields) length(key string) int {
	value, _ := f[key].([]any)
	return len(value)
}

func (f fields) strings(key string) []string {
	values, _ := f[key].([]any)
	result := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
