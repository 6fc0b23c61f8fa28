// ABOUTME: HTTP transport for Ask, Smartify, embeddings, and note intake
// ABOUTME: Gin router with caller identity, request budgets, and Prometheus metrics
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harper/voicenotes/internal/core"
	"github.com/harper/voicenotes/internal/metrics"
	"github.com/harper/voicenotes/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Asker answers questions over a user's notes
type Asker interface {
	Ask(ctx context.Context, req core.AskRequest) (*core.AskResult, error)
}

// Smartifier runs or previews extraction for a note
type Smartifier interface {
	Smartify(ctx context.Context, userID, noteID string) (*core.SmartifyResult, error)
	Preview(ctx context.Context, userID, noteID string) (models.ExtractionCounts, error)
}

// Indexer maintains note embeddings
type Indexer interface {
	GenerateForNote(ctx context.Context, userID, noteID string) (int, error)
	Backfill(ctx context.Context, userID string, batchSize int) (*core.BackfillResult, error)
	Status(ctx context.Context, userID string) (*core.IndexStatus, error)
}

// NoteWriter creates and edits notes
type NoteWriter interface {
	Create(ctx context.Context, userID string, in core.NewNote) (*models.Note, error)
	Update(ctx context.Context, userID, noteID string, in core.NoteUpdate) (*models.Note, error)
}

// Deps are the services the server routes to. Metrics may be nil.
type Deps struct {
	Ask      Asker
	Smartify Smartifier
	Indexer  Indexer
	Notes    NoteWriter
	Metrics  *metrics.Metrics

	AskTimeout      time.Duration
	SmartifyTimeout time.Duration
}

// Server is the voicenotes HTTP server
type Server struct {
	deps   Deps
	router *gin.Engine
}

// NewServer builds the router
func NewServer(deps Deps) *Server {
	if deps.AskTimeout <= 0 {
		deps.AskTimeout = time.Minute
	}
	if deps.SmartifyTimeout <= 0 {
		deps.SmartifyTimeout = 5 * time.Minute
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		deps:   deps,
		router: router,
	}

	if deps.Metrics != nil {
		router.Use(recordRequests(deps.Metrics))
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	router.GET("/health", s.handleHealth)

	api := router.Group("/api", requireUser())
	{
		api.POST("/ask", s.handleAsk)
		api.POST("/smartify", s.handleSmartify)
		api.POST("/smartify/preview", s.handlePreview)
		api.POST("/embeddings/generate", s.handleGenerateEmbedding)
		api.POST("/embeddings/backfill", s.handleBackfill)
		api.GET("/embeddings/backfill", s.handleBackfillStatus)
		api.POST("/notes", s.handleCreateNote)
		api.PATCH("/notes/:id", s.handleUpdateNote)
	}

	return s
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx ends, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voicenotes",
	})
}
