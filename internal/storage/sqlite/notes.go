// ABOUTME: Note storage operations for SQLite
// ABOUTME: CRUD, embedding persistence, index counts, and similarity search over notes
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage"
)

// NoteStore handles note persistence
type NoteStore struct {
	db *DB
}

// NewNoteStore creates a new NoteStore
func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db}
}

const noteColumns = `id, user_id, title, formatted_content, content, transcript,
	audio_url, template_type, embedding, created_at, updated_at, smartified_at`

// CreateNote inserts a new note
func (s *NoteStore) CreateNote(ctx context.Context, note *models.Note) error {
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, formatted_content, content, transcript,
			audio_url, template_type, embedding, created_at, updated_at, smartified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID, note.UserID, note.Title, note.FormattedContent, note.Content, note.Transcript,
		note.AudioURL, note.TemplateType, vectorToBlob(note.Embedding),
		toMillis(note.CreatedAt), toMillis(note.UpdatedAt), nullMillis(note.SmartifiedAt))
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// UpdateNoteContent saves edited text fields and bumps updated_at
func (s *NoteStore) UpdateNoteContent(ctx context.Context, note *models.Note) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, formatted_content = ?, content = ?, transcript = ?,
			template_type = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, note.Title, note.FormattedContent, note.Content, note.Transcript,
		note.TemplateType, toMillis(note.UpdatedAt), note.ID, note.UserID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return requireRow(res)
}

// GetNote retrieves a note owned by userID
func (s *NoteStore) GetNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE id = ? AND user_id = ?
	`, noteID, userID)

	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// GetNotesByIDs retrieves the user's notes with the given ids, keyed by id
func (s *NoteStore) GetNotesByIDs(ctx context.Context, userID string, ids []string) (map[string]*models.Note, error) {
	result := make(map[string]*models.Note, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = ? AND id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result[note.ID] = note
	}
	return result, rows.Err()
}

// hasTextCondition matches rows with something to embed. It mirrors the
// title and best-text fallback, so blank notes are never selected for
// backfill and never count as pending.
const hasTextCondition = `(
	trim(title, ' '||char(9)||char(10)||char(13)) != ''
	OR trim(formatted_content, ' '||char(9)||char(10)||char(13)) != ''
	OR trim(content, ' '||char(9)||char(10)||char(13)) != ''
	OR trim(transcript, ' '||char(9)||char(10)||char(13)) != ''
)`

// ListNotesMissingEmbedding returns up to limit unindexed notes that have
// text, newest first
func (s *NoteStore) ListNotesMissingEmbedding(ctx context.Context, userID string, limit int) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = ? AND embedding IS NULL AND `+hasTextCondition+`
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var notes []models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

// CountNotes returns the user's total and indexed note counts, plus how
// many unindexed notes have text to embed
func (s *NoteStore) CountNotes(ctx context.Context, userID string) (total, indexed, pending int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(embedding),
			COALESCE(SUM(CASE WHEN embedding IS NULL AND `+hasTextCondition+` THEN 1 ELSE 0 END), 0)
		FROM notes
		WHERE user_id = ?
	`, userID).Scan(&total, &indexed, &pending)
	return total, indexed, pending, err
}

// SaveNoteEmbedding stores the note's vector
func (s *NoteStore) SaveNoteEmbedding(ctx context.Context, noteID string, vector *models.Vector) error {
	if vector == nil {
		return fmt.Errorf("cannot save nil embedding for note %s", noteID)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET embedding = ? WHERE id = ?`, vectorToBlob(vector), noteID)
	if err != nil {
		return fmt.Errorf("failed to save embedding: %w", err)
	}
	return requireRow(res)
}

// MarkSmartified stamps smartified_at
func (s *NoteStore) MarkSmartified(ctx context.Context, noteID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET smartified_at = ? WHERE id = ?`, toMillis(at), noteID)
	if err != nil {
		return fmt.Errorf("failed to mark note smartified: %w", err)
	}
	return requireRow(res)
}

// SearchNotes returns the user's notes most similar to q.Vector, best first.
// Ties keep the scan order; there is no secondary sort.
func (s *NoteStore) SearchNotes(ctx context.Context, q models.SimilarityQuery) ([]models.NoteMatch, error) {
	if q.Vector == nil {
		return nil, fmt.Errorf("similarity search requires a query vector")
	}

	start := int64(math.MinInt64)
	if !q.Start.IsZero() {
		start = toMillis(q.Start)
	}
	end := int64(math.MaxInt64)
	if !q.End.IsZero() {
		end = toMillis(q.End)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`, score FROM (
			SELECT `+noteColumns+`, `+SimilarityFunction+`(embedding, ?) AS score
			FROM notes
			WHERE user_id = ? AND embedding IS NOT NULL
				AND created_at >= ? AND created_at <= ?
		)
		WHERE score >= ?
		ORDER BY score DESC
		LIMIT ?
	`, vectorToBlob(q.Vector), q.UserID, start, end, q.Threshold, q.Limit)
	if err != nil {
		if storage.IsMissingIndex(err) {
			return nil, fmt.Errorf("%w: %v", storage.ErrIndexNotProvisioned, err)
		}
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []models.NoteMatch
	for rows.Next() {
		var score float64
		note, err := scanNote(rows, &score)
		if err != nil {
			return nil, err
		}
		matches = append(matches, models.NoteMatch{Note: *note, Similarity: score})
	}
	return matches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanNote scans noteColumns followed by any extra destinations
func scanNote(row rowScanner, extra ...any) (*models.Note, error) {
	var (
		note         models.Note
		blob         []byte
		createdAt    int64
		updatedAt    int64
		smartifiedAt sql.NullInt64
	)

	dest := []any{&note.ID, &note.UserID, &note.Title, &note.FormattedContent, &note.Content,
		&note.Transcript, &note.AudioURL, &note.TemplateType, &blob, &createdAt, &updatedAt, &smartifiedAt}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	vector, err := blobToVector(blob)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", note.ID, err)
	}
	note.Embedding = vector
	note.CreatedAt = fromMillis(createdAt)
	note.UpdatedAt = fromMillis(updatedAt)
	if smartifiedAt.Valid {
		t := fromMillis(smartifiedAt.Int64)
		note.SmartifiedAt = &t
	}

	return &note, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}
