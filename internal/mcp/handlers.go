// ABOUTME: MCP tool handler implementations for the voicenotes server
// ABOUTME: Each handler calls one core service and returns its result as JSON text
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/voicenotes/internal/core"
	"github.com/harper/voicenotes/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Services are the core operations the tools call
type Services struct {
	Ask interface {
		Ask(ctx context.Context, req core.AskRequest) (*core.AskResult, error)
	}
	Smartify interface {
		Smartify(ctx context.Context, userID, noteID string) (*core.SmartifyResult, error)
		Preview(ctx context.Context, userID, noteID string) (models.ExtractionCounts, error)
	}
	Indexer interface {
		GenerateForNote(ctx context.Context, userID, noteID string) (int, error)
		Backfill(ctx context.Context, userID string, batchSize int) (*core.BackfillResult, error)
		Status(ctx context.Context, userID string) (*core.IndexStatus, error)
	}
	Notes interface {
		Create(ctx context.Context, userID string, in core.NewNote) (*models.Note, error)
	}
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	services Services
	userID   string
}

// NewHandlers creates handlers acting on behalf of userID
func NewHandlers(services Services, userID string) *Handlers {
	return &Handlers{services: services, userID: userID}
}

// AskNotes handles the ask_notes tool
func (h *Handlers) AskNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	result, err := h.services.Ask.Ask(ctx, core.AskRequest{
		UserID:     h.userID,
		Query:      query,
		TimeFilter: request.GetString("time_filter", string(models.FilterAll)),
	})
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(result)
}

// SmartifyNote handles the smartify_note tool
func (h *Handlers) SmartifyNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := request.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError("note_id argument is required and must be a string"), nil
	}

	result, err := h.services.Smartify.Smartify(ctx, h.userID, noteID)
	if err != nil {
		return toolError(err), nil
	}

	failed := make([]string, 0)
	for _, kind := range result.Failed() {
		failed = append(failed, string(kind))
	}

	return jsonResult(map[string]interface{}{
		"success":      true,
		"recording_id": result.RecordingID,
		"extracted":    result.Extracted,
		"failed_jobs":  failed,
	})
}

// PreviewSmartify handles the preview_smartify tool
func (h *Handlers) PreviewSmartify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := request.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError("note_id argument is required and must be a string"), nil
	}

	preview, err := h.services.Smartify.Preview(ctx, h.userID, noteID)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"success": true,
		"note_id": noteID,
		"preview": preview,
	})
}

// GenerateEmbedding handles the generate_embedding tool
func (h *Handlers) GenerateEmbedding(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := request.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError("note_id argument is required and must be a string"), nil
	}

	dimensions, err := h.services.Indexer.GenerateForNote(ctx, h.userID, noteID)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"success":              true,
		"note_id":              noteID,
		"embedding_dimensions": dimensions,
	})
}

// BackfillEmbeddings handles the backfill_embeddings tool
func (h *Handlers) BackfillEmbeddings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	batchSize := request.GetInt("batch_size", core.DefaultBackfillBatch)

	result, err := h.services.Indexer.Backfill(ctx, h.userID, batchSize)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(result)
}

// EmbeddingStatus handles the embedding_status tool
func (h *Handlers) EmbeddingStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.services.Indexer.Status(ctx, h.userID)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(status)
}

// AddNote handles the add_note tool
func (h *Handlers) AddNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	note, err := h.services.Notes.Create(ctx, h.userID, core.NewNote{
		Title:      request.GetString("title", ""),
		Content:    content,
		Transcript: request.GetString("transcript", ""),
	})
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"success": true,
		"note_id": note.ID,
	})
}

// toolError reports a failure to the agent. Core errors carry their kind so
// the agent can tell a missing note from an upstream outage.
func toolError(err error) *mcp.CallToolResult {
	var ce *core.Error
	if !errors.As(err, &ce) {
		return mcp.NewToolResultError(err.Error())
	}
	if details := ce.Details(); details != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s (%s): %s", ce.Message, ce.Kind, details))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s (%s)", ce.Message, ce.Kind))
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
