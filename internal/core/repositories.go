// ABOUTME: Interfaces the core depends on for storage, search, and model calls
// ABOUTME: Satisfied by internal/storage/sqlite, internal/storage/chroma, and internal/llm
package core

import (
	"context"
	"time"

	"github.com/harper/voicenotes/internal/llm"
	"github.com/harper/voicenotes/internal/models"
)

// EmbeddingClient turns text into a vector
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) (*models.Vector, error)
}

// ChatCompleter runs a single system+user chat completion
type ChatCompleter interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// NoteRepository persists notes and their embeddings
type NoteRepository interface {
	CreateNote(ctx context.Context, note *models.Note) error
	UpdateNoteContent(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, userID, noteID string) (*models.Note, error)
	ListNotesMissingEmbedding(ctx context.Context, userID string, limit int) ([]models.Note, error)
	CountNotes(ctx context.Context, userID string) (total, indexed, pending int, err error)
	SaveNoteEmbedding(ctx context.Context, noteID string, vector *models.Vector) error
	MarkSmartified(ctx context.Context, noteID string, at time.Time) error
}

// RecordingRepository persists recordings
type RecordingRepository interface {
	CreateRecording(ctx context.Context, rec *models.Recording) error
	FindRecordingByAudioURL(ctx context.Context, userID, audioURL string) (*models.Recording, error)
	FindRecordingByNoteID(ctx context.Context, userID, noteID string) (*models.Recording, error)
}

// ExtractionRepository appends extracted records
type ExtractionRepository interface {
	InsertActionItems(ctx context.Context, items []models.ActionItem) error
	InsertInvestorUpdates(ctx context.Context, updates []models.InvestorUpdate) error
	InsertProgressLogs(ctx context.Context, logs []models.ProgressLog) error
	InsertProductIdeas(ctx context.Context, ideas []models.ProductIdea) error
	InsertBrainDumpItems(ctx context.Context, items []models.BrainDumpItem) error
	CountExtractions(ctx context.Context, recordingID string) (models.ExtractionCounts, error)
}

// VectorIndex is the similarity search collaborator
type VectorIndex interface {
	SearchNotes(ctx context.Context, q models.SimilarityQuery) ([]models.NoteMatch, error)
}

// IndexWriter mirrors note vectors into an external index
type IndexWriter interface {
	UpsertNote(ctx context.Context, note *models.Note, vector *models.Vector) error
}
