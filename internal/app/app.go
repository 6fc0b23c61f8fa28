// ABOUTME: Assembles storage, model clients, and core services from configuration
// ABOUTME: Shared by the HTTP server, the MCP server, and the CLI commands
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/harper/voicenotes/internal/config"
	"github.com/harper/voicenotes/internal/core"
	"github.com/harper/voicenotes/internal/llm"
	"github.com/harper/voicenotes/internal/metrics"
	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage/chroma"
	"github.com/harper/voicenotes/internal/storage/sqlite"
	"github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned by model calls when OPENAI_API_KEY is unset
var ErrNoAPIKey = errors.New("OPENAI_API_KEY not set")

// App holds the wired services for one process
type App struct {
	Config  *config.Config
	Store   *sqlite.Store
	Metrics *metrics.Metrics

	Ask      *core.AskService
	Smartify *core.SmartifyService
	Indexer  *core.Backfiller
	Notes    *core.NoteService
	Queue    *core.IndexQueue

	chroma *chroma.Index
}

// New opens storage and builds every service
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := sqlite.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	m, err := metrics.NewMetrics(metrics.NewRegistry())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	a := &App{Config: cfg, Store: store, Metrics: m}

	// SQLite serves similarity search unless Chroma is configured
	var (
		index  core.VectorIndex = store
		mirror core.IndexWriter
	)
	if cfg.VectorBackend == config.BackendChroma {
		a.chroma, err = chroma.Open(ctx, cfg.ChromaURL, cfg.ChromaCollection, store)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to open chroma index: %w", err)
		}
		index, mirror = a.chroma, a.chroma
	}
	log.Printf("[Storage] database %s, vector backend %s", store.DB().Path(), cfg.VectorBackend)

	embeddings, chat := modelClients(cfg)

	embedder := core.NewEmbedder(embeddings, store, mirror)
	a.Queue = core.NewIndexQueue(store, embedder, cfg.IndexWorkers, 0, m)
	a.Indexer = core.NewBackfiller(store, embedder, cfg.BackfillDelay, m)
	a.Notes = core.NewNoteService(store, a.Queue)
	a.Smartify = core.NewSmartifyService(store, store, store, chat, m)
	a.Ask = core.NewAskService(embedder, index, core.NewAnswerGenerator(chat, cfg.AskTemperature), core.AskOptions{
		Threshold: cfg.SimilarityThreshold,
		TopK:      cfg.TopK,
	}, m)

	return a, nil
}

// Close drains the index queue, then closes the vector index and storage
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Queue != nil {
		if err := a.Queue.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("index queue: %w", err))
		}
	}
	if a.chroma != nil {
		if err := a.chroma.Close(); err != nil {
			errs = append(errs, fmt.Errorf("chroma: %w", err))
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	return errors.Join(errs...)
}

// modelClients returns the OpenAI client for both roles, or a stand-in
// that fails every call when no key is configured
func modelClients(cfg *config.Config) (core.EmbeddingClient, core.ChatCompleter) {
	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - Ask, Smartify, and embeddings will fail")
		return noKeyClient{}, noKeyClient{}
	}

	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		return noKeyClient{}, noKeyClient{}
	}
	return client, client
}

type noKeyClient struct{}

func (noKeyClient) GenerateEmbedding(context.Context, string) (*models.Vector, error) {
	return nil, &llm.EmbeddingError{Err: ErrNoAPIKey}
}

func (noKeyClient) Complete(context.Context, llm.CompletionRequest) (string, error) {
	return "", ErrNoAPIKey
}
