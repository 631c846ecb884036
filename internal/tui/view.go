package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/core/prompts"
	"github.com/koscakluka/promptbuilder/core/toolview"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

var (
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	badgeStyle   = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("237"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorMarker = "▌"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.viewport.View()}
	if summary := m.renderSummary(); summary != "" {
		sections = append(sections, summary)
	}
	sections = append(sections, m.renderStatus(), m.input.View(), m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTranscript() string {
	width := m.viewport.Width
	if len(m.turns) == 0 && m.live == "" && !m.phase.Busy() {
		return m.renderWelcome(width)
	}

	var b strings.Builder
	for _, turn := range m.turns {
		switch turn.Role {
		case prompts.RoleUser:
			b.WriteString(userStyle.Render("You") + "\n")
			b.WriteString(wordwrap.String(turn.Content, max(width, 20)) + "\n\n")
		default:
			b.WriteString(m.renderAssistantTurn(turn, width))
			b.WriteString("\n")
		}
	}

	if m.live != "" {
		b.WriteString(wordwrap.String(m.live, max(width, 20)) + cursorMarker + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderWelcome(width int) string {
	lines := []string{
		headerStyle.Render("Prompt builder"),
		mutedStyle.Render("Describe the prompt you want and it will be built for you."),
		"",
		mutedStyle.Render("Try asking (tab to fill in):"),
	}
	for _, suggestion := range starterSuggestions(m.document()) {
		lines = append(lines, "  • "+truncate.StringWithTail(suggestion, uint(max(width-4, 10)), "…"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderAssistantTurn(turn prompts.Turn, width int) string {
	var b strings.Builder
	for _, line := range toolview.InterpretAll(turn.ToolCalls) {
		b.WriteString(line.Render(width) + "\n")
	}
	if len(turn.SearchResults) > 0 {
		b.WriteString(mutedStyle.Render(foundExamples(len(turn.SearchResults))) + "\n")
		for _, result := range turn.SearchResults {
			b.WriteString(truncate.StringWithTail("  "+searchResultLine(result), uint(max(width, 10)), "…") + "\n")
		}
	}
	if turn.Content != "" {
		b.WriteString(m.renderMarkdown(turn.Content) + "\n")
	}
	return b.String()
}

func (m Model) renderMarkdown(content string) string {
	if m.markdown == nil {
		return content
	}
	rendered, err := m.markdown.Render(content)
	if err != nil {
		logger.Debug("failed to render markdown", "error", err)
		return content
	}
	return strings.Trim(rendered, "\n")
}

// renderSummary shows the current prompt once it has a title or content.
func (m Model) renderSummary() string {
	badges := summaryBadges(m.document())
	if len(badges) == 0 {
		return ""
	}

	rendered := make([]string, len(badges))
	for i, badge := range badges {
		rendered[i] = badgeStyle.Render(badge)
	}
	return mutedStyle.Render("Current prompt ") + strings.Join(rendered, " ")
}

func (m Model) renderStatus() string {
	switch {
	case m.phase == authoring.PhaseSending && m.live == "":
		return m.spinner.View() + " Thinking..."
	case m.status != "":
		return statusStyle.Render(m.status)
	default:
		return ""
	}
}

func (m Model) renderFooter() string {
	help := "enter send • alt+enter newline • ctrl+x abort • ctrl+y copy • esc quit"
	if m.modelName == "" {
		return mutedStyle.Render(help)
	}
	return mutedStyle.Render(m.modelName + " • " + help)
}

func summaryBadges(document prompts.Document) []string {
	if document.Title == "" && document.Content == "" {
		return nil
	}

	var badges []string
	if document.Title != "" {
		badges = append(badges, "Title: "+clipTitle(document.Title))
	}
	if document.Content != "" {
		badges = append(badges, fmt.Sprintf("Content: %d chars", utf8.RuneCountInString(document.Content)))
	}
	if len(document.TagIDs) > 0 {
		badges = append(badges, fmt.Sprintf("%d tags", len(document.TagIDs)))
	}
	return badges
}

func clipTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 20 {
		return title
	}
	return string(runes[:20]) + "..."
}

func foundExamples(count int) string {
	if count == 1 {
		return "Found 1 example"
	}
	return fmt.Sprintf("Found %d examples", count)
}

func searchResultLine(result prompts.PromptSummary) string {
	title := result.Title
	if title == "" {
		title = result.ID
	}
	line := "• " + title
	if result.Type != "" {
		line += " [" + result.Type + "]"
	}
	if result.Description != "" {
		line += " " + mutedStyle.Render(result.Description)
	}
	return line
}

// PlainTurn renders a finalized turn without styling, for line mode and
// one-shot output.
func PlainTurn(turn prompts.Turn) string {
	if turn.Role == prompts.RoleUser {
		return "> " + turn.Content
	}

	var lines []string
	for _, line := range toolview.InterpretAll(turn.ToolCalls) {
		lines = append(lines, line.Plain())
	}
	if len(turn.SearchResults) > 0 {
		lines = append(lines, foundExamples(len(turn.SearchResults)))
		for _, result := range turn.SearchResults {
			title := result.Title
			if title == "" {
				title = result.ID
			}
			lines = append(lines, "  • "+title)
		}
	}
	if turn.Content != "" {
		lines = append(lines, turn.Content)
	}
	return strings.Join(lines, "\n")
}

// PlainDigest summarizes an applied snapshot in one line.
func PlainDigest(digest prompts.Digest) string {
	status := digestStatus(digest)
	if len(digest.Changed) == 0 {
		return status
	}

	fields := make([]string, len(digest.Changed))
	for i, field := range digest.Changed {
		fields[i] = string(field)
	}
	return status + ": " + strings.Join(fields, ", ")
}
