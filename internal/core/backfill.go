// ABOUTME: Backfiller indexes a user's unembedded notes in paced batches
// ABOUTME: Also answers index status and single-note generation requests
package core

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/harper/voicenotes/internal/llm"
	"github.com/harper/voicenotes/internal/storage"
	"golang.org/x/time/rate"
)

const (
	DefaultBackfillBatch = 10
	MaxBackfillBatch     = 50
)

// BackfillResult reports one batch. Remaining and Total are counted after
// the batch so callers can poll to completion.
type BackfillResult struct {
	Processed int      `json:"processed"`
	Errors    int      `json:"errors"`
	ErrorIDs  []string `json:"errorIds,omitempty"`
	Remaining int      `json:"remaining"`
	Total     int      `json:"total"`
}

// IndexStatus is a read-only view of embedding coverage
type IndexStatus struct {
	Total           int `json:"total"`
	Indexed         int `json:"indexed"`
	Pending         int `json:"pending"`
	PercentComplete int `json:"percentComplete"`
}

// Backfiller coordinates embedding generation across a user's notes
type Backfiller struct {
	notes    NoteRepository
	embedder *Embedder
	delay    time.Duration
	metrics  Recorder
}

// NewBackfiller creates a Backfiller that spaces notes delay apart
func NewBackfiller(notes NoteRepository, embedder *Embedder, delay time.Duration, metrics Recorder) *Backfiller {
	return &Backfiller{
		notes:    notes,
		embedder: embedder,
		delay:    delay,
		metrics:  recorderOrNop(metrics),
	}
}

// ClampBatchSize applies the default and the hard cap
func ClampBatchSize(batchSize int) int {
	if batchSize <= 0 {
		return DefaultBackfillBatch
	}
	if batchSize > MaxBackfillBatch {
		return MaxBackfillBatch
	}
	return batchSize
}

// Backfill embeds up to batchSize of the user's unindexed notes, newest
// first, one at a time. A failed note is recorded and skipped.
func (b *Backfiller) Backfill(ctx context.Context, userID string, batchSize int) (*BackfillResult, error) {
	if userID == "" {
		return nil, errUnauthorized(StageValidating)
	}
	start := time.Now()
	defer observe(b.metrics, "backfill", start)

	batchSize = ClampBatchSize(batchSize)

	notes, err := b.notes.ListNotesMissingEmbedding(ctx, userID, batchSize)
	if err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to list notes", err)
	}

	limiter := b.newLimiter()
	result := &BackfillResult{}

	for i := range notes {
		note := &notes[i]
		if err := limiter.Wait(ctx); err != nil {
			return nil, newError(KindUpstream, StageEmbedding, "Backfill interrupted", err)
		}

		if _, err := b.embedder.IndexNote(ctx, note); err != nil {
			log.Printf("[Backfill] note %s failed: %v", note.ID, err)
			b.metrics.RecordError("backfill_note", errorType(err))
			result.Errors++
			result.ErrorIDs = append(result.ErrorIDs, note.ID)
			continue
		}
		result.Processed++
	}

	total, _, pending, err := b.notes.CountNotes(ctx, userID)
	if err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to count notes", err)
	}
	result.Total = total
	result.Remaining = pending

	log.Printf("[Backfill] user %s: processed=%d errors=%d remaining=%d", userID, result.Processed, result.Errors, result.Remaining)
	b.metrics.RecordOperation("backfill", "success")
	return result, nil
}

// Status reports how many of the user's notes are indexed
func (b *Backfiller) Status(ctx context.Context, userID string) (*IndexStatus, error) {
	if userID == "" {
		return nil, errUnauthorized(StageValidating)
	}

	total, indexed, pending, err := b.notes.CountNotes(ctx, userID)
	if err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to count notes", err)
	}

	// Blank notes are neither indexed nor pending
	status := &IndexStatus{
		Total:   total,
		Indexed: indexed,
		Pending: pending,
	}
	if total > 0 {
		status.PercentComplete = int(math.Round(float64(indexed) * 100 / float64(total)))
	}
	return status, nil
}

// GenerateForNote embeds one note on demand and returns the vector's dimension
func (b *Backfiller) GenerateForNote(ctx context.Context, userID, noteID string) (int, error) {
	if userID == "" {
		return 0, errUnauthorized(StageValidating)
	}
	if noteID == "" {
		return 0, newError(KindInvalid, StageValidating, "noteId is required", nil)
	}

	note, err := b.notes.GetNote(ctx, userID, noteID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, newError(KindNotFound, StageValidating, "Note not found", nil)
	}
	if err != nil {
		return 0, newError(KindUpstream, StagePersisting, "Failed to load note", err)
	}

	vector, err := b.embedder.IndexNote(ctx, note)
	if errors.Is(err, ErrNoEmbeddableText) {
		return 0, newError(KindInvalid, StageValidating, "Note has no content to embed", nil)
	}
	if err != nil {
		b.metrics.RecordError("generate_embedding", errorType(err))
		return 0, newError(KindUpstream, StageEmbedding, "Failed to generate embedding", err)
	}

	b.metrics.RecordOperation("generate_embedding", "success")
	return len(vector), nil
}

func (b *Backfiller) newLimiter() *rate.Limiter {
	if b.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(b.delay), 1)
}

// errorType labels an error for metrics
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrNoEmbeddableText):
		return "validation"
	case llm.IsRateLimited(err):
		return KindRateLimited.String()
	default:
		return KindOf(err).String()
	}
}
