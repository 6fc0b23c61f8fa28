// ABOUTME: AskService answers questions over a user's notes with citations
// ABOUTME: Runs validate, embed, retrieve, build context, generate in order
package core

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/harper/voicenotes/internal/llm"
	"github.com/harper/voicenotes/internal/models"
)

// SetupRequiredAnswer is returned when similarity search is not provisioned
const SetupRequiredAnswer = "Ask isn't ready yet: your notes haven't been indexed for search. " +
	"Run the embedding backfill, then try again."

const (
	DefaultSimilarityThreshold = 0.5
	DefaultTopK                = 5
)

// AskRequest is one question from a caller
type AskRequest struct {
	UserID              string
	Query               string
	ConversationHistory []models.ConversationTurn
	TimeFilter          string
}

// AskResult is the normalized Ask response
type AskResult struct {
	Answer        string            `json:"answer"`
	Citations     []models.Citation `json:"citations"`
	NoteCount     int               `json:"noteCount"`
	SetupRequired bool              `json:"setupRequired,omitempty"`
}

// AskOptions tune retrieval
type AskOptions struct {
	Threshold float64
	TopK      int
	Now       func() time.Time
}

// AskService orchestrates retrieval-augmented answers
type AskService struct {
	embedder *Embedder
	index    VectorIndex
	builder  *ContextBuilder
	answers  *AnswerGenerator
	opts     AskOptions
	metrics  Recorder
}

// NewAskService creates an AskService. Zero options fall back to defaults.
func NewAskService(embedder *Embedder, index VectorIndex, answers *AnswerGenerator, opts AskOptions, metrics Recorder) *AskService {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultSimilarityThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AskService{
		embedder: embedder,
		index:    index,
		builder:  NewContextBuilder(),
		answers:  answers,
		opts:     opts,
		metrics:  recorderOrNop(metrics),
	}
}

// Ask answers req.Query from the caller's notes
func (s *AskService) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	start := time.Now()
	defer observe(s.metrics, "ask", start)

	result, err := s.ask(ctx, req)
	switch {
	case err != nil:
		s.metrics.RecordOperation("ask", "error")
		s.metrics.RecordError("ask", KindOf(err).String())
	case result.SetupRequired:
		s.metrics.RecordOperation("ask", "degraded")
	default:
		s.metrics.RecordOperation("ask", "success")
	}
	return result, err
}

func (s *AskService) ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	// Validating
	if req.UserID == "" {
		return nil, errUnauthorized(StageValidating)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, newError(KindInvalid, StageValidating, "Query is required", nil)
	}
	filter := ParseTimeFilter(req.TimeFilter)

	// Embedding
	stageStart := time.Now()
	vector, err := s.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		log.Printf("[Ask] query embedding failed: %v", err)
		return nil, newError(KindUpstream, StageEmbedding, "Failed to process query", err)
	}
	observe(s.metrics, "ask_embedding", stageStart)

	// Retrieving
	stageStart = time.Now()
	matches, err := s.index.SearchNotes(ctx, models.SimilarityQuery{
		UserID:    req.UserID,
		Vector:    vector,
		Start:     TimeRangeStart(filter, s.opts.Now()),
		Threshold: s.opts.Threshold,
		Limit:     s.opts.TopK,
	})
	if errors.Is(err, ErrIndexNotProvisioned) {
		log.Printf("[Ask] similarity search not provisioned: %v", err)
		return &AskResult{
			Answer:        SetupRequiredAnswer,
			Citations:     []models.Citation{},
			NoteCount:     0,
			SetupRequired: true,
		}, nil
	}
	if err != nil {
		log.Printf("[Ask] similarity search failed: %v", err)
		return nil, newError(KindUpstream, StageRetrieving, "Failed to search notes", err)
	}
	observe(s.metrics, "ask_retrieval", stageStart)

	// ContextBuilding
	askCtx := s.builder.Build(matches, req.ConversationHistory)

	// Generating
	stageStart = time.Now()
	answer, err := s.answers.Generate(ctx, query, askCtx)
	if err != nil {
		log.Printf("[Ask] answer generation failed: %v", err)
		if llm.IsRateLimited(err) {
			return nil, newError(KindRateLimited, StageGenerating, "Rate limit exceeded. Please try again shortly.", err)
		}
		return nil, newError(KindUpstream, StageGenerating, "Failed to generate answer", err)
	}
	observe(s.metrics, "ask_generation", stageStart)

	log.Printf("[Ask] answered with %d notes (filter=%s)", len(matches), filter)
	return &AskResult{
		Answer:    answer,
		Citations: askCtx.Citations,
		NoteCount: len(matches),
	}, nil
}
