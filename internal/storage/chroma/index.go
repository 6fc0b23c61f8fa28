// ABOUTME: Chroma-backed similarity search over note embeddings
// ABOUTME: Mirrors note vectors into a collection and hydrates matches from the row store
package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage"
)

const (
	metaUserID    = "user_id"
	metaCreatedAt = "created_at"
	metaTitle     = "title"

	// rangeOverfetch widens the candidate pool when a date range will
	// discard some nearest neighbours after the query
	rangeOverfetch = 4
)

// NoteLookup hydrates note ids returned by the collection
type NoteLookup interface {
	GetNotesByIDs(ctx context.Context, userID string, ids []string) (map[string]*models.Note, error)
}

// Index is a VectorIndex backed by a Chroma collection
type Index struct {
	client     chromago.Client
	collection chromago.Collection
	notes      NoteLookup
}

// Open connects to Chroma at baseURL and gets or creates the collection
func Open(ctx context.Context, baseURL, collectionName string, notes NoteLookup) (*Index, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "voice note embeddings"),
				chromago.NewStringAttribute("created_by", "voicenotes"),
			),
		),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to get or create collection %s: %w", collectionName, err)
	}

	log.Printf("[Chroma] using collection '%s' at %s", collectionName, baseURL)
	return &Index{client: client, collection: collection, notes: notes}, nil
}

// New wraps an existing collection
func New(collection chromago.Collection, notes NoteLookup) *Index {
	return &Index{collection: collection, notes: notes}
}

// Close releases the client
func (i *Index) Close() error {
	if i.client != nil {
		return i.client.Close()
	}
	return nil
}

// UpsertNote writes the note's vector into the collection
func (i *Index) UpsertNote(ctx context.Context, note *models.Note, vector *models.Vector) error {
	if vector == nil {
		return fmt.Errorf("cannot index nil embedding for note %s", note.ID)
	}

	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute(metaUserID, note.UserID),
		chromago.NewIntAttribute(metaCreatedAt, note.CreatedAt.UnixMilli()),
		chromago.NewStringAttribute(metaTitle, note.DisplayTitle()),
	)

	err := i.collection.Upsert(ctx,
		chromago.WithIDs(chromago.DocumentID(note.ID)),
		chromago.WithTexts(note.BestText()),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector[:])),
		chromago.WithMetadatas(metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert note %s into chroma: %w", note.ID, err)
	}
	return nil
}

// SearchNotes queries the collection and hydrates matches that pass the
// threshold and date range, best first
func (i *Index) SearchNotes(ctx context.Context, q models.SimilarityQuery) ([]models.NoteMatch, error) {
	if q.Vector == nil {
		return nil, fmt.Errorf("similarity search requires a query vector")
	}

	nResults := q.Limit
	if !q.Start.IsZero() || !q.End.IsZero() {
		nResults *= rangeOverfetch
	}

	results, err := i.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(q.Vector[:])),
		chromago.WithNResults(nResults),
		chromago.WithWhereQuery(chromago.EqString(metaUserID, q.UserID)),
	)
	if err != nil {
		if storage.IsMissingIndex(err) {
			return nil, fmt.Errorf("%w: %v", storage.ErrIndexNotProvisioned, err)
		}
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	candidates := collectCandidates(results, q)
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, len(candidates))
	for n, c := range candidates {
		ids[n] = c.id
	}
	notes, err := i.notes.GetNotesByIDs(ctx, q.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate chroma matches: %w", err)
	}

	return hydrate(candidates, notes, q.Limit), nil
}

type candidate struct {
	id         string
	similarity float64
}

// collectCandidates flattens the first query group into candidates that
// pass the threshold and date range
func collectCandidates(results chromago.QueryResult, q models.SimilarityQuery) []candidate {
	idGroups := results.GetIDGroups()
	if len(idGroups) == 0 {
		return nil
	}
	distanceGroups := results.GetDistancesGroups()
	metadataGroups := results.GetMetadatasGroups()

	var out []candidate
	for n, id := range idGroups[0] {
		if len(distanceGroups) == 0 || n >= len(distanceGroups[0]) {
			break
		}
		var meta map[string]any
		if len(metadataGroups) > 0 && n < len(metadataGroups[0]) {
			meta = metadataMap(metadataGroups[0][n])
		}
		c, ok := evaluate(string(id), float64(distanceGroups[0][n]), meta, q)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// evaluate applies ownership, threshold, and date range to one result row
func evaluate(id string, distance float64, meta map[string]any, q models.SimilarityQuery) (candidate, bool) {
	if owner, ok := meta[metaUserID].(string); ok && owner != q.UserID {
		return candidate{}, false
	}

	similarity := similarityFromDistance(distance)
	if similarity < q.Threshold {
		return candidate{}, false
	}

	if !q.Start.IsZero() || !q.End.IsZero() {
		createdAt, ok := metaTime(meta)
		if !ok {
			return candidate{}, false
		}
		if !q.Start.IsZero() && createdAt.Before(q.Start) {
			return candidate{}, false
		}
		if !q.End.IsZero() && createdAt.After(q.End) {
			return candidate{}, false
		}
	}

	return candidate{id: id, similarity: similarity}, true
}

// hydrate joins candidates to notes, drops ids the store no longer has,
// and keeps the best limit
func hydrate(candidates []candidate, notes map[string]*models.Note, limit int) []models.NoteMatch {
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].similarity > candidates[b].similarity
	})

	matches := make([]models.NoteMatch, 0, len(candidates))
	for _, c := range candidates {
		note, ok := notes[c.id]
		if !ok {
			continue
		}
		matches = append(matches, models.NoteMatch{Note: *note, Similarity: c.similarity})
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	return matches
}

// similarityFromDistance converts Chroma's default squared L2 distance to
// cosine similarity. Embeddings are unit length, so d = 2 - 2cos.
func similarityFromDistance(distance float64) float64 {
	return 1 - distance/2
}

// metadataMap converts document metadata to a plain map. DocumentMetadata
// exposes no accessor for all values, so it goes through JSON.
func metadataMap(metadata chromago.DocumentMetadata) map[string]any {
	out := make(map[string]any)
	if metadata == nil {
		return out
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("[Chroma] could not marshal metadata: %v", err)
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("[Chroma] could not unmarshal metadata: %v", err)
	}
	return out
}

func metaTime(meta map[string]any) (time.Time, bool) {
	switch v := meta[metaCreatedAt].(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
