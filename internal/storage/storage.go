// ABOUTME: Storage contracts shared by the SQLite and Chroma adapters
// ABOUTME: Sentinel errors the core matches with errors.Is
package storage

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means the row does not exist or belongs to another user
	ErrNotFound = errors.New("not found")

	// ErrIndexNotProvisioned means the similarity search backend is not set
	// up yet (missing search function, table, or collection)
	ErrIndexNotProvisioned = errors.New("similarity index not provisioned")
)

// missingIndexMarkers are backend error fragments meaning the search
// function or its backing table does not exist
var missingIndexMarkers = []string{
	"no such function",
	"no such table",
	"function not found",
	"does not exist",
}

// IsMissingIndex reports whether a backend error means the similarity
// search is not provisioned
func IsMissingIndex(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrIndexNotProvisioned) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range missingIndexMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
