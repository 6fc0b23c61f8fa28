// ABOUTME: Extracted record storage for the five Smartify record types
// ABOUTME: Inserts are append-only; each batch commits in its own transaction
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/voicenotes/internal/models"
)

// ExtractionStore handles extracted record persistence
type ExtractionStore struct {
	db *DB
}

// NewExtractionStore creates a new ExtractionStore
func NewExtractionStore(db *DB) *ExtractionStore {
	return &ExtractionStore{db: db}
}

var recordTables = map[models.RecordKind]string{
	models.KindActionItem:     "action_items",
	models.KindInvestorUpdate: "investor_updates",
	models.KindProgressLog:    "progress_logs",
	models.KindProductIdea:    "product_ideas",
	models.KindBrainDump:      "brain_dump_items",
}

// InsertActionItems appends action items
func (s *ExtractionStore) InsertActionItems(ctx context.Context, items []models.ActionItem) error {
	return s.insertAll(ctx, len(items), func(tx *sql.Tx, i int) error {
		it := &items[i]
		fillMeta(&it.RecordMeta)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO action_items (id, recording_id, user_id, task, assignee, due_date, priority, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, it.ID, it.RecordingID, it.UserID, it.Task, it.Assignee, it.DueDate, it.Priority, toMillis(it.CreatedAt))
		return err
	})
}

// InsertInvestorUpdates appends investor updates
func (s *ExtractionStore) InsertInvestorUpdates(ctx context.Context, updates []models.InvestorUpdate) error {
	return s.insertAll(ctx, len(updates), func(tx *sql.Tx, i int) error {
		u := &updates[i]
		fillMeta(&u.RecordMeta)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO investor_updates (id, recording_id, user_id, summary, wins, challenges, asks, metrics, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, u.ID, u.RecordingID, u.UserID, u.Summary, jsonList(u.Wins), jsonList(u.Challenges),
			jsonList(u.Asks), jsonList(u.Metrics), toMillis(u.CreatedAt))
		return err
	})
}

// InsertProgressLogs appends progress logs
func (s *ExtractionStore) InsertProgressLogs(ctx context.Context, logs []models.ProgressLog) error {
	return s.insertAll(ctx, len(logs), func(tx *sql.Tx, i int) error {
		l := &logs[i]
		fillMeta(&l.RecordMeta)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO progress_logs (id, recording_id, user_id, project, summary, status, blockers, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, l.RecordingID, l.UserID, l.Project, l.Summary, l.Status, jsonList(l.Blockers), toMillis(l.CreatedAt))
		return err
	})
}

// InsertProductIdeas appends product ideas
func (s *ExtractionStore) InsertProductIdeas(ctx context.Context, ideas []models.ProductIdea) error {
	return s.insertAll(ctx, len(ideas), func(tx *sql.Tx, i int) error {
		p := &ideas[i]
		fillMeta(&p.RecordMeta)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_ideas (id, recording_id, user_id, title, description, problem, category, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.RecordingID, p.UserID, p.Title, p.Description, p.Problem, p.Category, toMillis(p.CreatedAt))
		return err
	})
}

// InsertBrainDumpItems appends brain dump entries
func (s *ExtractionStore) InsertBrainDumpItems(ctx context.Context, items []models.BrainDumpItem) error {
	return s.insertAll(ctx, len(items), func(tx *sql.Tx, i int) error {
		b := &items[i]
		fillMeta(&b.RecordMeta)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO brain_dump_items (id, recording_id, user_id, content, category, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, b.ID, b.RecordingID, b.UserID, b.Content, b.Category, toMillis(b.CreatedAt))
		return err
	})
}

// CountExtractions returns how many records of each kind the recording has
func (s *ExtractionStore) CountExtractions(ctx context.Context, recordingID string) (models.ExtractionCounts, error) {
	var counts models.ExtractionCounts

	for _, kind := range models.AllRecordKinds {
		var n int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+recordTables[kind]+" WHERE recording_id = ?", recordingID).Scan(&n)
		if err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", kind, err)
		}
		counts.Set(kind, n)
	}

	return counts, nil
}

// insertAll runs n inserts in one transaction
func (s *ExtractionStore) insertAll(ctx context.Context, n int, insert func(tx *sql.Tx, i int) error) error {
	if n == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i := 0; i < n; i++ {
		if err := insert(tx, i); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func fillMeta(meta *models.RecordMeta) {
	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
}

func jsonList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}
