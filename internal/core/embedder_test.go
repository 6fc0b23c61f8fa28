// ABOUTME: Tests for embedding text construction and note indexing
// ABOUTME: Covers fallback order, the rune budget, and the external mirror
package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/harper/voicenotes/internal/models"
)

func TestNoteEmbeddingText(t *testing.T) {
	tests := []struct {
		name string
		note models.Note
		want string
	}{
		{"title and formatted", models.Note{Title: "Plan", FormattedContent: "**bold**", Content: "raw"}, "Plan\n\n**bold**"},
		{"falls back to content", models.Note{Title: "Plan", Content: "raw"}, "Plan\n\nraw"},
		{"falls back to transcript", models.Note{Transcript: "spoken words"}, "spoken words"},
		{"title only", models.Note{Title: "  Just a title  "}, "Just a title"},
		{"blank formatted skipped", models.Note{FormattedContent: "   ", Content: "raw"}, "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NoteEmbeddingText(&tt.note)
			if err != nil {
				t.Fatalf("NoteEmbeddingText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NoteEmbeddingText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNoteEmbeddingTextEmpty(t *testing.T) {
	_, err := NoteEmbeddingText(&models.Note{Title: " ", Transcript: "\n"})
	if !errors.Is(err, ErrNoEmbeddableText) {
		t.Errorf("error = %v, want ErrNoEmbeddableText", err)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("truncateRunes = %q, want hé", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("truncateRunes = %q, want abc", got)
	}
	if got := truncateRunes("abc", 0); got != "" {
		t.Errorf("truncateRunes = %q, want empty", got)
	}
}

func TestEmbedNoteTruncates(t *testing.T) {
	client := newFakeEmbedder()
	embedder := NewEmbedder(client, nil, nil)

	long := strings.Repeat("a", MaxEmbeddingChars+500)
	if _, err := embedder.EmbedNote(context.Background(), &models.Note{Content: long}); err != nil {
		t.Fatalf("EmbedNote() error = %v", err)
	}

	calls := client.calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if n := utf8.RuneCountInString(calls[0]); n != MaxEmbeddingChars {
		t.Errorf("submitted %d runes, want %d", n, MaxEmbeddingChars)
	}
	if !strings.HasPrefix(long, calls[0]) {
		t.Error("truncation must be a prefix cut")
	}
}

func TestEmbedNoteRejectsEmptyWithoutCallingModel(t *testing.T) {
	client := newFakeEmbedder()
	embedder := NewEmbedder(client, nil, nil)

	_, err := embedder.EmbedNote(context.Background(), &models.Note{})
	if !errors.Is(err, ErrNoEmbeddableText) {
		t.Errorf("error = %v, want ErrNoEmbeddableText", err)
	}
	if len(client.calls()) != 0 {
		t.Error("empty note text must not reach the model")
	}
}

func TestEmbedQueryIsNotTruncated(t *testing.T) {
	client := newFakeEmbedder()
	embedder := NewEmbedder(client, nil, nil)

	query := strings.Repeat("q", MaxEmbeddingChars+10)
	if _, err := embedder.EmbedQuery(context.Background(), query); err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if got := client.calls()[0]; got != query {
		t.Errorf("query submitted with %d chars, want %d", len(got), len(query))
	}
}

func TestIndexNoteSavesAndMirrors(t *testing.T) {
	store := newStore(t)
	client := newFakeEmbedder()
	mirror := &fakeMirror{}
	embedder := NewEmbedder(client, store, mirror)
	ctx := context.Background()

	note := seedNote(t, store, &models.Note{ID: "n1", UserID: "u1", Title: "t", Content: "body"})

	vector, err := embedder.IndexNote(ctx, note)
	if err != nil {
		t.Fatalf("IndexNote() error = %v", err)
	}
	if len(vector) != models.EmbeddingDimension {
		t.Errorf("dimension = %d", len(vector))
	}

	stored, err := store.GetNote(ctx, "u1", "n1")
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if stored.Embedding == nil {
		t.Error("embedding was not persisted")
	}
	if len(mirror.ids) != 1 || mirror.ids[0] != "n1" {
		t.Errorf("mirror ids = %v, want [n1]", mirror.ids)
	}
}

func TestIndexNoteMirrorFailure(t *testing.T) {
	store := newStore(t)
	embedder := NewEmbedder(newFakeEmbedder(), store, &fakeMirror{err: errBoom})
	note := seedNote(t, store, &models.Note{ID: "n1", UserID: "u1", Content: "body"})

	if _, err := embedder.IndexNote(context.Background(), note); !errors.Is(err, errBoom) {
		t.Errorf("error = %v, want mirror failure", err)
	}

	stored, err := store.GetNote(context.Background(), "u1", "n1")
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if stored.Embedding != nil {
		t.Error("a failed mirror must leave the note unindexed")
	}
}

func TestBackfillRetriesAfterMirrorFailure(t *testing.T) {
	store := newStore(t)
	mirror := &fakeMirror{err: errBoom}
	b := NewBackfiller(store, NewEmbedder(newFakeEmbedder(), store, mirror), 0, nil)
	seedNote(t, store, &models.Note{ID: "n1", UserID: "u1", Content: "body"})
	ctx := context.Background()

	first, err := b.Backfill(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	if first.Processed != 0 || first.Errors != 1 || first.Remaining != 1 {
		t.Errorf("first run = %+v, want the failed note still remaining", first)
	}

	mirror.err = nil
	second, err := b.Backfill(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	if second.Processed != 1 || second.Errors != 0 || second.Remaining != 0 {
		t.Errorf("second run = %+v, want the note indexed", second)
	}
	if len(mirror.ids) != 2 {
		t.Errorf("mirror attempts = %d, want 2", len(mirror.ids))
	}
}
