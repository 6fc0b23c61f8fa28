// ABOUTME: NoteService saves new and edited notes and queues their embeddings
// ABOUTME: Edits move updated_at past smartified_at so Smartify can run again
package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage"
)

// Enqueuer schedules background embedding
type Enqueuer interface {
	Enqueue(userID, noteID string) bool
}

// NewNote is the content of a note being created
type NewNote struct {
	Title            string `json:"title"`
	FormattedContent string `json:"formattedContent"`
	Content          string `json:"content"`
	Transcript       string `json:"transcript"`
	AudioURL         string `json:"audioUrl"`
	TemplateType     string `json:"templateType"`
}

// NoteUpdate holds the fields an edit changes; nil leaves a field alone
type NoteUpdate struct {
	Title            *string `json:"title"`
	FormattedContent *string `json:"formattedContent"`
	Content          *string `json:"content"`
	Transcript       *string `json:"transcript"`
	TemplateType     *string `json:"templateType"`
}

// NoteService handles note intake
type NoteService struct {
	notes NoteRepository
	queue Enqueuer
	now   func() time.Time
}

// NewNoteService creates a NoteService. queue may be nil.
func NewNoteService(notes NoteRepository, queue Enqueuer) *NoteService {
	return &NoteService{notes: notes, queue: queue, now: time.Now}
}

// Create saves a note and queues it for embedding
func (s *NoteService) Create(ctx context.Context, userID string, in NewNote) (*models.Note, error) {
	if userID == "" {
		return nil, errUnauthorized(StageValidating)
	}

	now := s.now().UTC()
	note := &models.Note{
		ID:               uuid.New().String(),
		UserID:           userID,
		Title:            strings.TrimSpace(in.Title),
		FormattedContent: in.FormattedContent,
		Content:          in.Content,
		Transcript:       in.Transcript,
		AudioURL:         strings.TrimSpace(in.AudioURL),
		TemplateType:     strings.TrimSpace(in.TemplateType),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := NoteEmbeddingText(note); err != nil {
		return nil, newError(KindInvalid, StageValidating, "Note content is required", nil)
	}

	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to save note", err)
	}

	s.enqueue(note)
	return note, nil
}

// Update applies an edit, bumps updated_at, and re-queues embedding
func (s *NoteService) Update(ctx context.Context, userID, noteID string, in NoteUpdate) (*models.Note, error) {
	if userID == "" {
		return nil, errUnauthorized(StageValidating)
	}

	note, err := s.notes.GetNote(ctx, userID, noteID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newError(KindNotFound, StageValidating, "Note not found", nil)
	}
	if err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to load note", err)
	}

	apply(&note.Title, in.Title)
	apply(&note.FormattedContent, in.FormattedContent)
	apply(&note.Content, in.Content)
	apply(&note.Transcript, in.Transcript)
	apply(&note.TemplateType, in.TemplateType)

	note.UpdatedAt = s.editTime(note)

	if err := s.notes.UpdateNoteContent(ctx, note); err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to update note", err)
	}

	s.enqueue(note)
	return note, nil
}

// editTime is now, nudged past smartified_at when both fall in the same
// stored millisecond
func (s *NoteService) editTime(note *models.Note) time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if note.SmartifiedAt != nil && !now.After(*note.SmartifiedAt) {
		return note.SmartifiedAt.Add(time.Millisecond)
	}
	return now
}

func (s *NoteService) enqueue(note *models.Note) {
	if s.queue != nil {
		s.queue.Enqueue(note.UserID, note.ID)
	}
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
