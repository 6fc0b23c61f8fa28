// ABOUTME: Embedding models for vector storage and semantic search
// ABOUTME: Defines the fixed-length Vector and similarity search query/result types
package models

import (
	"fmt"
	"time"
)

// EmbeddingDimension is the vector size of text-embedding-3-small
const EmbeddingDimension = 1536

// Vector is a dense note or query embedding
type Vector [EmbeddingDimension]float32

// VectorFromSlice copies a model response into a Vector, rejecting any
// other dimensionality.
func VectorFromSlice(values []float32) (*Vector, error) {
	if len(values) != EmbeddingDimension {
		return nil, fmt.Errorf("invalid embedding dimension: expected %d, got %d", EmbeddingDimension, len(values))
	}
	var v Vector
	copy(v[:], values)
	return &v, nil
}

// SimilarityQuery scopes a nearest-neighbour search to one user's notes
// created inside [Start, End]. A zero Start means unbounded.
type SimilarityQuery struct {
	UserID    string
	Vector    *Vector
	Start     time.Time
	End       time.Time
	Threshold float64
	Limit     int
}

// NoteMatch is a retrieved note with its similarity to the query
type NoteMatch struct {
	Note       Note    `json:"note"`
	Similarity float64 `json:"similarity"`
}
