// ABOUTME: Request handlers for the /api routes
// ABOUTME: Bind the body, call one service under a deadline, and shape the JSON reply
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harper/voicenotes/internal/core"
	"github.com/harper/voicenotes/internal/models"
)

type askRequest struct {
	Query               string                    `json:"query"`
	ConversationHistory []models.ConversationTurn `json:"conversationHistory"`
	TimeFilter          string                    `json:"timeFilter"`
}

type noteRequest struct {
	NoteID string `json:"noteId"`
}

type backfillRequest struct {
	BatchSize int `json:"batchSize"`
}

type backfillResponse struct {
	Success bool `json:"success"`
	*core.BackfillResult
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, s.deps.AskTimeout)
	defer cancel()

	result, err := s.deps.Ask.Ask(ctx, core.AskRequest{
		UserID:              userID(c),
		Query:               req.Query,
		ConversationHistory: req.ConversationHistory,
		TimeFilter:          req.TimeFilter,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSmartify(c *gin.Context) {
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, s.deps.SmartifyTimeout)
	defer cancel()

	result, err := s.deps.Smartify.Smartify(ctx, userID(c), req.NoteID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"extracted": result.Extracted,
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, s.deps.AskTimeout)
	defer cancel()

	preview, err := s.deps.Smartify.Preview(ctx, userID(c), req.NoteID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"preview": preview,
		"noteId":  req.NoteID,
	})
}

func (s *Server) handleGenerateEmbedding(c *gin.Context) {
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c, s.deps.AskTimeout)
	defer cancel()

	dimensions, err := s.deps.Indexer.GenerateForNote(ctx, userID(c), req.NoteID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"noteId":              req.NoteID,
		"embeddingDimensions": dimensions,
	})
}

func (s *Server) handleBackfill(c *gin.Context) {
	var req backfillRequest
	// The body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(c, err)
		return
	}

	ctx, cancel := withTimeout(c, s.deps.SmartifyTimeout)
	defer cancel()

	result, err := s.deps.Indexer.Backfill(ctx, userID(c), req.BatchSize)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, backfillResponse{Success: true, BackfillResult: result})
}

func (s *Server) handleBackfillStatus(c *gin.Context) {
	status, err := s.deps.Indexer.Status(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) handleCreateNote(c *gin.Context) {
	var req core.NewNote
	if !bindJSON(c, &req) {
		return
	}

	note, err := s.deps.Notes.Create(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"note":    note,
	})
}

func (s *Server) handleUpdateNote(c *gin.Context) {
	var req core.NoteUpdate
	if !bindJSON(c, &req) {
		return
	}

	note, err := s.deps.Notes.Update(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"note":    note,
	})
}

// bindJSON decodes the body or writes a 400
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeBadRequest(c, err)
		return false
	}
	return true
}

func withTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}
