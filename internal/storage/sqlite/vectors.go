// ABOUTME: Vector serialization and the cosine_similarity SQL function
// ABOUTME: Vectors live in note rows as little-endian float32 blobs
package sqlite

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/harper/voicenotes/internal/models"
	msqlite "modernc.org/sqlite"
)

// SimilarityFunction is the SQL function similarity search depends on
const SimilarityFunction = "cosine_similarity"

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs the similarity function for every connection
// opened afterwards. Registration is process-wide, so it runs once.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = msqlite.RegisterDeterministicScalarFunction(SimilarityFunction, 2, cosineSimilarityFunc)
	})
	return registerErr
}

// cosineSimilarityFunc compares two stored vector blobs. NULL in, NULL out,
// so unindexed rows never pass a threshold filter.
func cosineSimilarityFunc(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, ok := args[0].([]byte)
	if !ok || a == nil {
		return nil, nil
	}
	b, ok := args[1].([]byte)
	if !ok || b == nil {
		return nil, nil
	}
	if len(a) != len(b) || len(a)%4 != 0 {
		return nil, fmt.Errorf("%s: blob sizes differ (%d vs %d)", SimilarityFunction, len(a), len(b))
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i += 4 {
		x := float64(math.Float32frombits(binary.LittleEndian.Uint32(a[i:])))
		y := float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0, nil
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// vectorToBlob converts a vector to a binary blob
func vectorToBlob(vector *models.Vector) []byte {
	if vector == nil {
		return nil
	}
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// blobToVector converts a binary blob back to a vector
func blobToVector(blob []byte) (*models.Vector, error) {
	if blob == nil {
		return nil, nil
	}
	if len(blob) != models.EmbeddingDimension*4 {
		return nil, fmt.Errorf("invalid embedding blob: expected %d bytes, got %d", models.EmbeddingDimension*4, len(blob))
	}
	var vector models.Vector
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return &vector, nil
}
