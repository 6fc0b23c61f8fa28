// ABOUTME: Recording storage operations for SQLite
// ABOUTME: Lookup by audio URL or note, and lazy creation for extraction
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage"
)

// RecordingStore handles recording persistence
type RecordingStore struct {
	db *DB
}

// NewRecordingStore creates a new RecordingStore
func NewRecordingStore(db *DB) *RecordingStore {
	return &RecordingStore{db: db}
}

// CreateRecording inserts a recording row
func (s *RecordingStore) CreateRecording(ctx context.Context, rec *models.Recording) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recordings (id, user_id, note_id, audio_url, raw_transcript, clean_transcript, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.NoteID, rec.AudioURL, rec.RawTranscript, rec.CleanTranscript, toMillis(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}
	return nil
}

// FindRecordingByAudioURL returns the user's earliest recording for the audio URL
func (s *RecordingStore) FindRecordingByAudioURL(ctx context.Context, userID, audioURL string) (*models.Recording, error) {
	return s.findOne(ctx, `
		SELECT id, user_id, note_id, audio_url, raw_transcript, clean_transcript, created_at
		FROM recordings
		WHERE user_id = ? AND audio_url = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, userID, audioURL)
}

// FindRecordingByNoteID returns the user's earliest recording linked to the note
func (s *RecordingStore) FindRecordingByNoteID(ctx context.Context, userID, noteID string) (*models.Recording, error) {
	return s.findOne(ctx, `
		SELECT id, user_id, note_id, audio_url, raw_transcript, clean_transcript, created_at
		FROM recordings
		WHERE user_id = ? AND note_id = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, userID, noteID)
}

func (s *RecordingStore) findOne(ctx context.Context, query string, args ...any) (*models.Recording, error) {
	var (
		rec       models.Recording
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &rec.UserID, &rec.NoteID,
		&rec.AudioURL, &rec.RawTranscript, &rec.CleanTranscript, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.CreatedAt = fromMillis(createdAt)
	return &rec, nil
}
