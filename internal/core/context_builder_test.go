// ABOUTME: Tests for citation numbering, snippets, context budgets, and history
// ABOUTME: Verifies the per-note content cut is exact and history keeps six turns
package core

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/harper/voicenotes/internal/models"
)

func matchesFor(notes ...models.Note) []models.NoteMatch {
	out := make([]models.NoteMatch, len(notes))
	for i, n := range notes {
		out[i] = models.NoteMatch{Note: n, Similarity: 0.9 - float64(i)*0.1}
	}
	return out
}

func TestBuildCitationsFollowRetrievalOrder(t *testing.T) {
	created := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	matches := matchesFor(
		models.Note{ID: "b", Title: "Second", Content: "bbb", CreatedAt: created, TemplateType: "meeting"},
		models.Note{ID: "a", Content: "aaa", CreatedAt: created},
		models.Note{ID: "c", Title: "Third", Transcript: "ccc", CreatedAt: created},
	)

	got := NewContextBuilder().Build(matches, nil)

	if len(got.Citations) != 3 {
		t.Fatalf("citations = %d, want 3", len(got.Citations))
	}
	for i, c := range got.Citations {
		if c.ID != fmt.Sprint(i+1) {
			t.Errorf("citation %d id = %q, want %d", i, c.ID, i+1)
		}
		if c.NoteID != matches[i].Note.ID {
			t.Errorf("citation %d note = %q, want %q", i, c.NoteID, matches[i].Note.ID)
		}
	}

	if got.Citations[1].NoteTitle != models.UntitledNote {
		t.Errorf("untitled note title = %q", got.Citations[1].NoteTitle)
	}
	if got.Citations[0].TemplateLabel == nil || *got.Citations[0].TemplateLabel != "Meeting Notes" {
		t.Errorf("template label = %v, want Meeting Notes", got.Citations[0].TemplateLabel)
	}
	if got.Citations[1].TemplateLabel != nil {
		t.Error("note without template should have nil label")
	}
	if got.Citations[0].CreatedAt != "2024-06-03T14:00:00.000Z" {
		t.Errorf("CreatedAt = %q", got.Citations[0].CreatedAt)
	}
}

func TestBuildContextBlocks(t *testing.T) {
	created := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	matches := matchesFor(
		models.Note{ID: "a", Title: "Roadmap", Content: "ship v2", CreatedAt: created},
		models.Note{ID: "b", Title: "Hiring", Content: "two engineers", CreatedAt: created},
	)

	got := NewContextBuilder().Build(matches, nil)

	want := "[1] Title: Roadmap\nDate: June 3, 2024\nContent:\nship v2" +
		"\n\n---\n\n" +
		"[2] Title: Hiring\nDate: June 3, 2024\nContent:\ntwo engineers"
	if got.NoteContext != want {
		t.Errorf("NoteContext =\n%s\nwant\n%s", got.NoteContext, want)
	}
}

func TestBuildContextCutsContentExactly(t *testing.T) {
	long := strings.Repeat("x", MaxContextChars) + strings.Repeat("y", 500)
	got := NewContextBuilder().Build(matchesFor(models.Note{ID: "a", Title: "T", Content: long}), nil)

	content := got.NoteContext[strings.Index(got.NoteContext, "Content:\n")+len("Content:\n"):]
	if utf8.RuneCountInString(content) != MaxContextChars {
		t.Errorf("content length = %d, want %d", utf8.RuneCountInString(content), MaxContextChars)
	}
	if strings.Contains(content, "y") {
		t.Error("content beyond the budget leaked into the prompt")
	}
}

func TestSnippet(t *testing.T) {
	builder := NewContextBuilder()

	short := builder.Build(matchesFor(models.Note{ID: "a", Content: "short text"}), nil)
	if short.Citations[0].Snippet != "short text" {
		t.Errorf("snippet = %q", short.Citations[0].Snippet)
	}

	exact := builder.Build(matchesFor(models.Note{ID: "a", Content: strings.Repeat("a", MaxSnippetChars)}), nil)
	if n := utf8.RuneCountInString(exact.Citations[0].Snippet); n != MaxSnippetChars {
		t.Errorf("snippet at the budget = %d runes, want it untouched", n)
	}

	for _, size := range []int{MaxSnippetChars + 1, 450, 1000} {
		long := builder.Build(matchesFor(models.Note{ID: "a", Content: strings.Repeat("é", size)}), nil)
		snippet := long.Citations[0].Snippet
		if !strings.HasSuffix(snippet, "...") {
			t.Errorf("%d-rune note: cut snippet should end with ...", size)
		}
		if n := utf8.RuneCountInString(snippet); n != MaxSnippetChars {
			t.Errorf("%d-rune note: snippet = %d runes, want %d including the ellipsis", size, n, MaxSnippetChars)
		}
	}
}

func TestRenderConversationKeepsLastSix(t *testing.T) {
	var history []models.ConversationTurn
	for i := 0; i < 10; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history = append(history, models.ConversationTurn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	rendered := RenderConversation(history)
	lines := strings.Split(rendered, "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6:\n%s", len(lines), rendered)
	}
	if lines[0] != "User: turn 4" {
		t.Errorf("first line = %q, want User: turn 4", lines[0])
	}
	if lines[5] != "Assistant: turn 9" {
		t.Errorf("last line = %q, want Assistant: turn 9", lines[5])
	}
	if strings.Contains(rendered, "turn 3") {
		t.Error("older turns must not be rendered")
	}
}

func TestRenderConversationEmpty(t *testing.T) {
	if got := RenderConversation(nil); got != "" {
		t.Errorf("RenderConversation(nil) = %q, want empty", got)
	}
}
