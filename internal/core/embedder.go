// ABOUTME: Embedder builds note embedding text and indexes notes
// ABOUTME: Note text is cut to a fixed rune budget; queries are embedded as given
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/voicenotes/internal/models"
)

// MaxEmbeddingChars is the prefix of note text sent to the embedding model
const MaxEmbeddingChars = 8000

// ErrNoEmbeddableText means a note has neither title nor body text
var ErrNoEmbeddableText = errors.New("note has no embeddable text")

// NoteEmbeddingText joins the title and best-available text with a blank line
func NoteEmbeddingText(note *models.Note) (string, error) {
	var parts []string
	if title := strings.TrimSpace(note.Title); title != "" {
		parts = append(parts, title)
	}
	if body := strings.TrimSpace(note.BestText()); body != "" {
		parts = append(parts, body)
	}

	text := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if text == "" {
		return "", ErrNoEmbeddableText
	}
	return text, nil
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Embedder generates and persists note embeddings
type Embedder struct {
	client EmbeddingClient
	notes  NoteRepository
	mirror IndexWriter
}

// NewEmbedder creates an Embedder. mirror may be nil.
func NewEmbedder(client EmbeddingClient, notes NoteRepository, mirror IndexWriter) *Embedder {
	return &Embedder{client: client, notes: notes, mirror: mirror}
}

// EmbedNote embeds the note's title and text
func (e *Embedder) EmbedNote(ctx context.Context, note *models.Note) (*models.Vector, error) {
	text, err := NoteEmbeddingText(note)
	if err != nil {
		return nil, err
	}
	return e.client.GenerateEmbedding(ctx, truncateRunes(text, MaxEmbeddingChars))
}

// EmbedQuery embeds a live query without truncation
func (e *Embedder) EmbedQuery(ctx context.Context, query string) (*models.Vector, error) {
	return e.client.GenerateEmbedding(ctx, query)
}

// IndexNote embeds the note, mirrors it into the external index when one is
// configured, then saves the vector on the note row. The row is written
// last so a failed mirror leaves the note pending for the next backfill.
func (e *Embedder) IndexNote(ctx context.Context, note *models.Note) (*models.Vector, error) {
	vector, err := e.EmbedNote(ctx, note)
	if err != nil {
		return nil, err
	}

	if e.mirror != nil {
		if err := e.mirror.UpsertNote(ctx, note, vector); err != nil {
			return nil, fmt.Errorf("failed to mirror embedding: %w", err)
		}
	}

	if err := e.notes.SaveNoteEmbedding(ctx, note.ID, vector); err != nil {
		return nil, fmt.Errorf("failed to save embedding: %w", err)
	}

	note.Embedding = vector
	return vector, nil
}
