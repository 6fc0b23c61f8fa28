// ABOUTME: ContextBuilder turns retrieved notes into citations and prompt context
// ABOUTME: Enforces the per-note content budget and the conversation window
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/harper/voicenotes/internal/models"
)

const (
	// MaxSnippetChars bounds a citation snippet
	MaxSnippetChars = 400
	// MaxContextChars bounds each note's content in the prompt
	MaxContextChars = 2000

	contextSeparator = "\n\n---\n\n"
	dateLayout       = "January 2, 2006"
)

// AskContext is everything the answer step needs from retrieval
type AskContext struct {
	Citations    []models.Citation
	NoteContext  string
	Conversation string
}

// ContextBuilder assembles bounded prompt context from retrieved notes
type ContextBuilder struct {
	maxSnippet int
	maxContent int
}

// NewContextBuilder creates a ContextBuilder with the standard budgets
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{
		maxSnippet: MaxSnippetChars,
		maxContent: MaxContextChars,
	}
}

// Build numbers matches 1..K in retrieval order and renders their context
// blocks and the recent conversation
func (cb *ContextBuilder) Build(matches []models.NoteMatch, history []models.ConversationTurn) AskContext {
	citations := make([]models.Citation, 0, len(matches))
	blocks := make([]string, 0, len(matches))

	for i := range matches {
		note := &matches[i].Note
		id := strconv.Itoa(i + 1)
		text := note.BestText()

		citations = append(citations, models.Citation{
			ID:            id,
			NoteID:        note.ID,
			NoteTitle:     note.DisplayTitle(),
			Snippet:       cb.snippet(text),
			CreatedAt:     note.CreatedAt.UTC().Format(timeLayoutRFC3339Milli),
			TemplateLabel: note.TemplateLabel(),
		})
		blocks = append(blocks, cb.formatBlock(id, note, text))
	}

	return AskContext{
		Citations:    citations,
		NoteContext:  strings.Join(blocks, contextSeparator),
		Conversation: RenderConversation(history),
	}
}

// formatBlock renders one note's context block
func (cb *ContextBuilder) formatBlock(id string, note *models.Note, text string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] Title: %s\n", id, note.DisplayTitle()))
	sb.WriteString(fmt.Sprintf("Date: %s\n", note.CreatedAt.Format(dateLayout)))
	sb.WriteString("Content:\n")
	sb.WriteString(truncateRunes(text, cb.maxContent))
	return sb.String()
}

// snippetEllipsis marks a cut snippet and counts against the budget
const snippetEllipsis = "..."

// snippet cuts text to the snippet budget, marking the cut with "..."
func (cb *ContextBuilder) snippet(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= cb.maxSnippet {
		return text
	}
	return truncateRunes(text, cb.maxSnippet-len(snippetEllipsis)) + snippetEllipsis
}

// RenderConversation renders the last MaxConversationTurns turns as
// "Label: content" lines
func RenderConversation(history []models.ConversationTurn) string {
	recent := models.RecentTurns(history)
	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Label(), content))
	}
	return strings.Join(lines, "\n")
}

// timeLayoutRFC3339Milli matches the timestamp shape clients parse
const timeLayoutRFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
