// ABOUTME: Shared fakes and fixtures for core tests
// ABOUTME: Real in-memory SQLite for storage, scripted fakes for model calls
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/harper/voicenotes/internal/llm"
	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStoreInMemory()
	if err != nil {
		t.Fatalf("NewStoreInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedNote(t *testing.T, store *sqlite.Store, note *models.Note) *models.Note {
	t.Helper()
	if err := store.CreateNote(context.Background(), note); err != nil {
		t.Fatalf("CreateNote(%s) error = %v", note.ID, err)
	}
	return note
}

// axis returns a unit vector on axis i
func axis(i int) *models.Vector {
	var v models.Vector
	v[i] = 1
	return &v
}

// fakeEmbedder returns a fixed vector per input text, axis(0) otherwise
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string]*models.Vector
	fail    map[string]error
	inputs  []string
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string]*models.Vector{}, fail: map[string]error{}}
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) (*models.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, text)
	if err, ok := f.fail[text]; ok {
		return nil, &llm.EmbeddingError{Err: err}
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return axis(0), nil
}

func (f *fakeEmbedder) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

// fakeChat answers completions by system prompt
type fakeChat struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	fallback  func(req llm.CompletionRequest) (string, error)
	requests  []llm.CompletionRequest
}

func newFakeChat() *fakeChat {
	return &fakeChat{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeChat) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	resp, hasResp := f.responses[req.System]
	err, hasErr := f.errs[req.System]
	fallback := f.fallback
	f.mu.Unlock()

	switch {
	case hasErr:
		return "", err
	case hasResp:
		return resp, nil
	case fallback != nil:
		return fallback(req)
	}
	return "", fmt.Errorf("no scripted response")
}

func (f *fakeChat) lastRequest() llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return llm.CompletionRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// fakeIndex returns scripted matches or an error
type fakeIndex struct {
	matches []models.NoteMatch
	err     error
	queries []models.SimilarityQuery
}

func (f *fakeIndex) SearchNotes(_ context.Context, q models.SimilarityQuery) ([]models.NoteMatch, error) {
	f.queries = append(f.queries, q)
	return f.matches, f.err
}

// fakeMirror records upserts
type fakeMirror struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeMirror) UpsertNote(_ context.Context, note *models.Note, _ *models.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, note.ID)
	return f.err
}

// fakeRecorder counts operations by "operation/status"
type fakeRecorder struct {
	mu         sync.Mutex
	operations map[string]int
	errors     map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{operations: map[string]int{}, errors: map[string]int{}}
}

func (f *fakeRecorder) RecordOperation(operation, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations[operation+"/"+status]++
}

func (f *fakeRecorder) RecordDuration(string, float64) {}

func (f *fakeRecorder) RecordError(operation, errorType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[operation+"/"+errorType]++
}

func (f *fakeRecorder) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.operations[key]
}

var errBoom = errors.New("boom")

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !IsKind(err, kind) {
		t.Fatalf("error = %v (kind %s), want kind %s", err, KindOf(err), kind)
	}
}

func noteWith(id, title, content string) models.Note {
	return models.Note{
		ID:        id,
		UserID:    "u1",
		Title:     title,
		Content:   content,
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}
