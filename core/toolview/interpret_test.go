package toolview

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/koscakluka/promptbuilder/core/prompts"
)

func call(name string, success bool, data string) prompts.ToolCall {
	return prompts.ToolCall{
		ID:   "call-1",
		Name: name,
		Result: prompts.ToolResult{
			Success: success,
			Data:    json.RawMessage(data),
		},
	}
}

func TestInterpretKnownTools(t *testing.T) {
	testCases := []struct {
		name     string
		call     prompts.ToolCall
		label    string
		expected string
	}{
		{"title", call("set_title", true, `{"title":"My Title"}`), "Set Title", "Title → My Title"},
		{"long title", call("set_title", true, `{"title":"An exceptionally long prompt title here"}`), "Set Title", "Title → An exceptionally long prompt t..."},
		{"description", call("set_description", true, `{"description":"Short"}`), "Set Description", "Description → Short"},
		{"wide title", call("set_title", true, `{"title":"日本語のプロンプトのタイトルをここに書きます"}`), "Set Title", "Title → 日本語のプロンプトのタイトルをここに書きます"},
		{"long wide description", call("set_description", true, `{"description":"説明説明説明説明説明説明説明説明説明説明説明説明説明説明説明"}`), "Set Description", "Description → 説明説明説明説明説明説明説明説明説明説明説明説明説..."},
		{"content", call("set_content", true, `{"content":"héllo"}`), "Set Content", "Content set (5 chars)"},
		{"type", call("set_type", true, `{"type":"STRUCTURED","structuredFormat":"JSON"}`), "Set Type", "Type → STRUCTURED (JSON)"},
		{"plain type", call("set_type", true, `{"type":"TEXT"}`), "Set Type", "Type → TEXT"},
		{"tags", call("set_tags", true, `{"appliedTags":["writing","seo"]}`), "Set Tags", "Tags → writing, seo"},
		{"no tags", call("set_tags", true, `{"appliedTags":[]}`), "Set Tags", "No matching tags"},
		{"category", call("set_category", true, `{"category":"Marketing"}`), "Set Category", "Category → Marketing"},
		{"private", call("set_privacy", true, `{"isPrivate":true}`), "Set Privacy", "Set to Private"},
		{"public", call("set_privacy", true, `{"isPrivate":false}`), "Set Privacy", "Set to Public"},
		{"media", call("set_media_requirements", true, `{"requiresMediaUpload":true,"mediaCount":2,"mediaType":"IMAGE"}`), "Set Media Requirements", "Requires 2 IMAGE(s)"},
		{"media defaults", call("set_media_requirements", true, `{"requiresMediaUpload":true}`), "Set Media Requirements", "Requires 1 file(s)"},
		{"no media", call("set_media_requirements", true, `{"requiresMediaUpload":false}`), "Set Media Requirements", "No media required"},
		{"one example", call("search_prompts", true, `{"prompts":[{"id":"a"}]}`), "Search Prompts", "Found 1 example"},
		{"examples", call("search_prompts", true, `{"prompts":[{"id":"a"},{"id":"b"}]}`), "Search Prompts", "Found 2 examples"},
		{"tag list", call("get_available_tags", true, `{"tags":[{},{},{}]}`), "Get Available Tags", "3 tags available"},
		{"category list", call("get_available_categories", true, `{"categories":[{}]}`), "Get Available Categories", "1 categories"},
		{"state", call("get_current_state", true, `{}`), "Get Current State", "Retrieved current state"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			line := Interpret(testCase.call)
			if line.Label != testCase.label {
				t.Fatalf("expected label %q, got %q", testCase.label, line.Label)
			}
			if line.Detail != testCase.expected {
				t.Fatalf("expected detail %q, got %q", testCase.expected, line.Detail)
			}
			if !line.Success {
				t.Fatalf("expected successful line")
			}
		})
	}
}

func TestInterpretDegradesOnMissingOrMistypedData(t *testing.T) {
	testCases := []struct {
		call     prompts.ToolCall
		expected string
	}{
		{call("set_title", true, ``), "Title updated"},
		{call("set_title", true, `{"title":42}`), "Title updated"},
		{call("set_description", true, `null`), "Description updated"},
		{call("set_content", true, `"not an object"`), "Content set (0 chars)"},
		{call("set_type", true, `[]`), "Type updated"},
		{call("set_tags", true, `{"appliedTags":"seo"}`), "No matching tags"},
		{call("set_category", true, `{}`), "Category → not found"},
		{call("search_prompts", true, `{"prompts":null}`), "Found 0 examples"},
		{call("get_available_tags", true, `{"tags":{}}`), "0 tags available"},
	}

	for _, testCase := range testCases {
		if line := Interpret(testCase.call); line.Detail != testCase.expected {
			t.Fatalf("%s with %q: expected %q, got %q", testCase.call.Name, testCase.call.Result.Data, testCase.expected, line.Detail)
		}
	}
}

func TestInterpretFallsBackForUnknownTools(t *testing.T) {
	line := Interpret(call("generate_cover-image", true, `{"url":"x"}`))

	if line.Label != "Generate Cover Image" {
		t.Fatalf("expected humanized label, got %q", line.Label)
	}
	if line.Detail != "No further detail" {
		t.Fatalf("expected generic detail, got %q", line.Detail)
	}
}

func TestInterpretFailureCarriesError(t *testing.T) {
	failed := call("set_category", false, ``)
	failed.Result.Error = "category not found"

	line := Interpret(failed)
	if line.Success {
		t.Fatalf("expected failed line")
	}
	if got := line.Plain(); got != "✗ Set Category: Category → not found (category not found)" {
		t.Fatalf("unexpected plain rendering %q", got)
	}
}

func TestRenderShowsIndicatorAndTruncates(t *testing.T) {
	line := Interpret(call("set_title", true, `{"title":"My Title"}`))

	if got := line.Plain(); got != "✓ Set Title: Title → My Title" {
		t.Fatalf("unexpected plain rendering %q", got)
	}

	rendered := line.Render(0)
	if !strings.Contains(rendered, "✓") || !strings.Contains(rendered, "Title → My Title") {
		t.Fatalf("expected indicator and detail in %q", rendered)
	}

	if truncated := line.Render(10); strings.Contains(truncated, "My Title") {
		t.Fatalf("expected render to be truncated, got %q", truncated)
	}
}

func TestInterpretAllKeepsOrder(t *testing.T) {
	lines := InterpretAll([]prompts.ToolCall{
		call("set_title", true, `{"title":"A"}`),
		call("set_privacy", false, `{}`),
	})

	if len(lines) != 2 || lines[0].Label != "Set Title" || lines[1].Label != "Set Privacy" {
		t.Fatalf("unexpected lines %#v", lines)
	}
}
