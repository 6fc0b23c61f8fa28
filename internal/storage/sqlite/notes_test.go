// ABOUTME: Tests for note persistence and similarity search
// ABOUTME: Covers ownership scoping, embedding counts, thresholds, and date ranges
package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreInMemory()
	if err != nil {
		t.Fatalf("NewStoreInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustCreateNote(t *testing.T, store *Store, note *models.Note) *models.Note {
	t.Helper()
	if err := store.CreateNote(context.Background(), note); err != nil {
		t.Fatalf("CreateNote(%s) error = %v", note.ID, err)
	}
	return note
}

func TestCreateAndGetNote(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	mustCreateNote(t, store, &models.Note{
		ID:           "n1",
		UserID:       "u1",
		Title:        "Standup",
		Transcript:   "we shipped the thing",
		TemplateType: "meeting",
		CreatedAt:    created,
	})

	got, err := store.GetNote(ctx, "u1", "n1")
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if got.Title != "Standup" || got.Transcript != "we shipped the thing" {
		t.Errorf("unexpected note %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if !got.UpdatedAt.Equal(created) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, created)
	}
	if got.Embedding != nil {
		t.Error("new note should not have an embedding")
	}
	if got.SmartifiedAt != nil {
		t.Error("new note should not be smartified")
	}
}

func TestGetNoteScopedToUser(t *testing.T) {
	store := newTestStore(t)
	mustCreateNote(t, store, &models.Note{ID: "n1", UserID: "u1", Title: "mine"})

	_, err := store.GetNote(context.Background(), "u2", "n1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	_, err = store.GetNote(context.Background(), "u1", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateNoteContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	note := mustCreateNote(t, store, &models.Note{ID: "n1", UserID: "u1", Title: "old"})

	note.Title = "new"
	note.UpdatedAt = note.CreatedAt.Add(time.Minute)
	if err := store.UpdateNoteContent(ctx, note); err != nil {
		t.Fatalf("UpdateNoteContent() error = %v", err)
	}

	got, err := store.GetNote(ctx, "u1", "n1")
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if got.Title != "new" {
		t.Errorf("Title = %q, want new", got.Title)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("UpdatedAt should move forward")
	}

	other := *note
	other.UserID = "u2"
	if err := store.UpdateNoteContent(ctx, &other); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update by other user error = %v, want ErrNotFound", err)
	}
}

func TestEmbeddingCountsAndBackfillListing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		mustCreateNote(t, store, &models.Note{ID: id, UserID: "u1", Title: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	mustCreateNote(t, store, &models.Note{ID: "other", UserID: "u2", Title: "x"})

	if err := store.SaveNoteEmbedding(ctx, "b", unitVector(0)); err != nil {
		t.Fatalf("SaveNoteEmbedding() error = %v", err)
	}

	total, indexed, pending, err := store.CountNotes(ctx, "u1")
	if err != nil {
		t.Fatalf("CountNotes() error = %v", err)
	}
	if total != 4 || indexed != 1 || pending != 3 {
		t.Errorf("CountNotes() = %d, %d, %d; want 4, 1, 3", total, indexed, pending)
	}

	missing, err := store.ListNotesMissingEmbedding(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListNotesMissingEmbedding() error = %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("len = %d, want 2", len(missing))
	}
	if missing[0].ID != "d" || missing[1].ID != "c" {
		t.Errorf("order = %s, %s; want newest first (d, c)", missing[0].ID, missing[1].ID)
	}

	got, err := store.GetNote(ctx, "u1", "b")
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if got.Embedding == nil || got.Embedding[0] != 1 {
		t.Error("embedding did not round trip through the store")
	}
}

func TestBackfillListingSkipsBlankNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mustCreateNote(t, store, &models.Note{ID: "old", UserID: "u1", Transcript: "call Sam", CreatedAt: base})
	mustCreateNote(t, store, &models.Note{ID: "blank", UserID: "u1", Content: " \n\t ", CreatedAt: base.Add(time.Hour)})
	mustCreateNote(t, store, &models.Note{ID: "empty", UserID: "u1", CreatedAt: base.Add(2 * time.Hour)})

	listed, err := store.ListNotesMissingEmbedding(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("ListNotesMissingEmbedding() error = %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "old" {
		t.Errorf("listed = %v, want only the note with text", listed)
	}

	total, indexed, pending, err := store.CountNotes(ctx, "u1")
	if err != nil {
		t.Fatalf("CountNotes() error = %v", err)
	}
	if total != 3 || indexed != 0 || pending != 1 {
		t.Errorf("CountNotes() = %d, %d, %d; want 3, 0, 1", total, indexed, pending)
	}
}

func TestSaveNoteEmbeddingErrors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveNoteEmbedding(ctx, "missing", unitVector(0)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	mustCreateNote(t, store, &models.Note{ID: "n1", UserID: "u1"})
	if err := store.SaveNoteEmbedding(ctx, "n1", nil); err == nil {
		t.Error("expected error for nil vector")
	}
}

func TestMarkSmartified(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mustCreateNote(t, store, &models.Note{ID: "n1", UserID: "u1", CreatedAt: created})

	if err := store.MarkSmartified(ctx, "n1", created); err != nil {
		t.Fatalf("MarkSmartified() error = %v", err)
	}

	got, err := store.GetNote(ctx, "u1", "n1")
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if got.SmartifiedAt == nil || !got.SmartifiedAt.Equal(created) {
		t.Fatalf("SmartifiedAt = %v, want %v", got.SmartifiedAt, created)
	}
	if got.CanSmartify() {
		t.Error("note smartified at its update time should not be eligible")
	}
}

func TestGetNotesByIDs(t *testing.T) {
	store := newTestStore(t)
	mustCreateNote(t, store, &models.Note{ID: "n1", UserID: "u1"})
	mustCreateNote(t, store, &models.Note{ID: "n2", UserID: "u1"})
	mustCreateNote(t, store, &models.Note{ID: "n3", UserID: "u2"})

	got, err := store.GetNotesByIDs(context.Background(), "u1", []string{"n1", "n3", "missing"})
	if err != nil {
		t.Fatalf("GetNotesByIDs() error = %v", err)
	}
	if len(got) != 1 || got["n1"] == nil {
		t.Errorf("got %v, want only n1", got)
	}

	empty, err := store.GetNotesByIDs(context.Background(), "u1", nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetNotesByIDs(nil) = %v, %v", empty, err)
	}
}

func TestSearchNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seed := []struct {
		id     string
		user   string
		weight float64
		at     time.Time
	}{
		{"close", "u1", 0.95, base},
		{"medium", "u1", 0.7, base.Add(24 * time.Hour)},
		{"far", "u1", 0.2, base},
		{"old", "u1", 0.99, base.AddDate(0, -2, 0)},
		{"foreign", "u2", 1.0, base},
	}
	for _, s := range seed {
		mustCreateNote(t, store, &models.Note{ID: s.id, UserID: s.user, Title: s.id, CreatedAt: s.at})
		if err := store.SaveNoteEmbedding(ctx, s.id, mixedVector(s.weight)); err != nil {
			t.Fatalf("SaveNoteEmbedding(%s) error = %v", s.id, err)
		}
	}
	mustCreateNote(t, store, &models.Note{ID: "unindexed", UserID: "u1", CreatedAt: base})

	query := unitVector(0)

	t.Run("threshold and ordering", func(t *testing.T) {
		matches, err := store.SearchNotes(ctx, models.SimilarityQuery{
			UserID: "u1", Vector: query, Threshold: 0.5, Limit: 5,
		})
		if err != nil {
			t.Fatalf("SearchNotes() error = %v", err)
		}
		ids := matchIDs(matches)
		want := []string{"old", "close", "medium"}
		if len(ids) != len(want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Errorf("ids = %v, want %v", ids, want)
				break
			}
		}
		for _, m := range matches {
			if m.Similarity < 0.5 {
				t.Errorf("%s similarity %v below threshold", m.Note.ID, m.Similarity)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		matches, err := store.SearchNotes(ctx, models.SimilarityQuery{
			UserID: "u1", Vector: query, Threshold: 0.5, Limit: 1,
		})
		if err != nil {
			t.Fatalf("SearchNotes() error = %v", err)
		}
		if len(matches) != 1 || matches[0].Note.ID != "old" {
			t.Errorf("ids = %v, want [old]", matchIDs(matches))
		}
	})

	t.Run("date range", func(t *testing.T) {
		matches, err := store.SearchNotes(ctx, models.SimilarityQuery{
			UserID: "u1", Vector: query, Threshold: 0.5, Limit: 5,
			Start: base.Add(-time.Hour), End: base.Add(48 * time.Hour),
		})
		if err != nil {
			t.Fatalf("SearchNotes() error = %v", err)
		}
		ids := matchIDs(matches)
		if len(ids) != 2 || ids[0] != "close" || ids[1] != "medium" {
			t.Errorf("ids = %v, want [close medium]", ids)
		}
	})

	t.Run("other user sees only their notes", func(t *testing.T) {
		matches, err := store.SearchNotes(ctx, models.SimilarityQuery{
			UserID: "u2", Vector: query, Threshold: 0.5, Limit: 5,
		})
		if err != nil {
			t.Fatalf("SearchNotes() error = %v", err)
		}
		if ids := matchIDs(matches); len(ids) != 1 || ids[0] != "foreign" {
			t.Errorf("ids = %v, want [foreign]", ids)
		}
	})

	t.Run("nil vector", func(t *testing.T) {
		if _, err := store.SearchNotes(ctx, models.SimilarityQuery{UserID: "u1", Limit: 5}); err == nil {
			t.Error("expected error for nil vector")
		}
	})
}

func TestSearchNotesMissingTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.DB().ExecContext(ctx, "DROP TABLE notes"); err != nil {
		t.Fatalf("drop error = %v", err)
	}

	_, err := store.SearchNotes(ctx, models.SimilarityQuery{UserID: "u1", Vector: unitVector(0), Threshold: 0.5, Limit: 5})
	if !errors.Is(err, storage.ErrIndexNotProvisioned) {
		t.Errorf("error = %v, want ErrIndexNotProvisioned", err)
	}
}

func matchIDs(matches []models.NoteMatch) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Note.ID
	}
	return ids
}
