// ABOUTME: Tests for service wiring
// ABOUTME: Uses a temp SQLite file and no API key
package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/voicenotes/internal/config"
	"github.com/harper/voicenotes/internal/core"
	"github.com/harper/voicenotes/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DBPath:              filepath.Join(t.TempDir(), "voicenotes.db"),
		VectorBackend:       config.BackendSQLite,
		SimilarityThreshold: 0.5,
		TopK:                5,
		AskTemperature:      0.5,
		IndexWorkers:        1,
	}
}

func TestNewWithoutAPIKey(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, a.Config.DBPath, a.Store.DB().Path())

	note, err := a.Notes.Create(ctx, "u1", core.NewNote{Title: "Standup", Content: "shipped"})
	require.NoError(t, err)

	// The queued embedding fails without a key, leaving the note pending
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Close(shutdownCtx))

	b, err := New(ctx, &config.Config{
		DBPath:        a.Config.DBPath,
		VectorBackend: config.BackendSQLite,
		IndexWorkers:  1,
	})
	require.NoError(t, err)
	defer func() { _ = b.Close(ctx) }()

	status, err := b.Indexer.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &core.IndexStatus{Total: 1, Indexed: 0, Pending: 1, PercentComplete: 0}, status)

	_, err = b.Ask.Ask(ctx, core.AskRequest{UserID: "u1", Query: "what shipped?"})
	assert.True(t, core.IsKind(err, core.KindUpstream), "got %v", err)

	_, err = b.Indexer.GenerateForNote(ctx, "u1", note.ID)
	assert.True(t, core.IsKind(err, core.KindUpstream), "got %v", err)
}

func TestNoKeyClient(t *testing.T) {
	_, err := noKeyClient{}.Complete(context.Background(), llm.CompletionRequest{System: "s", User: "u"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = noKeyClient{}.GenerateEmbedding(context.Background(), "text")
	var embedErr *llm.EmbeddingError
	assert.ErrorAs(t, err, &embedErr)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
