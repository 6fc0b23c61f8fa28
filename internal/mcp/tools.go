// ABOUTME: MCP tool definitions and registration for the voicenotes server
// ABOUTME: Exposes Ask, Smartify, and embedding maintenance to LLM agents
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server, acting for userID
func RegisterTools(server *mcpserver.MCPServer, services Services, userID string) *Handlers {
	handlers := NewHandlers(services, userID)

	noteIDSchema := mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"note_id": map[string]interface{}{
				"type":        "string",
				"description": "ID of the note",
			},
		},
		Required: []string{"note_id"},
	}

	// 1. ask_notes - Answer a question from the user's notes with citations
	server.AddTool(mcp.Tool{
		Name:        "ask_notes",
		Description: "Answer a question using only the user's notes. Returns the answer with numbered citations to the notes it drew from.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer from the notes",
				},
				"time_filter": map[string]interface{}{
					"type":        "string",
					"description": "Only search notes created in this window (default: all)",
					"enum":        []string{"week", "month", "3months", "all"},
					"default":     "all",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.AskNotes)

	// 2. smartify_note - Extract structured records from a note
	server.AddTool(mcp.Tool{
		Name:        "smartify_note",
		Description: "Extract action items, investor updates, progress logs, product ideas, and brain dump items from a note's transcript. A note can be smartified again only after it is edited.",
		InputSchema: noteIDSchema,
	}, handlers.SmartifyNote)

	// 3. preview_smartify - Estimate extraction counts without writing
	server.AddTool(mcp.Tool{
		Name:        "preview_smartify",
		Description: "Estimate how many records of each type smartify_note would extract. Writes nothing.",
		InputSchema: noteIDSchema,
	}, handlers.PreviewSmartify)

	// 4. generate_embedding - Embed one note now
	server.AddTool(mcp.Tool{
		Name:        "generate_embedding",
		Description: "Generate and store the search embedding for one note.",
		InputSchema: noteIDSchema,
	}, handlers.GenerateEmbedding)

	// 5. backfill_embeddings - Embed a batch of unindexed notes
	server.AddTool(mcp.Tool{
		Name:        "backfill_embeddings",
		Description: "Embed a batch of notes that have no embedding yet, newest first. Call repeatedly until remaining is 0.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"batch_size": map[string]interface{}{
					"type":        "number",
					"description": "Notes to embed in this call (default: 10, max: 50)",
					"default":     10,
				},
			},
		},
	}, handlers.BackfillEmbeddings)

	// 6. embedding_status - Report index coverage
	server.AddTool(mcp.Tool{
		Name:        "embedding_status",
		Description: "Report how many of the user's notes are indexed for search.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.EmbeddingStatus)

	// 7. add_note - Save a new note
	server.AddTool(mcp.Tool{
		Name:        "add_note",
		Description: "Save a new note. It is indexed for search in the background.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Optional note title",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Note text",
				},
				"transcript": map[string]interface{}{
					"type":        "string",
					"description": "Optional raw voice transcript",
				},
			},
			Required: []string{"content"},
		},
	}, handlers.AddNote)

	return handlers
}
