package tui

import "github.com/koscakluka/promptbuilder/core/prompts"

var exampleSuggestions = []string{
	"Create a prompt that reviews code for bugs and style issues",
	"Build a prompt that turns meeting notes into action items",
	"Make a JSON prompt that extracts contacts from an email",
}

var editSuggestions = []string{
	"Make it more concise",
	"Add variables for the parts that change",
	"Suggest a better title and description",
	"Pick fitting tags and a category",
}

// starterSuggestions are offered while the transcript is empty. A document
// that already has content gets edit actions instead of new prompt ideas.
func starterSuggestions(document prompts.Document) []string {
	if document.Content != "" {
		return editSuggestions
	}
	return exampleSuggestions
}
