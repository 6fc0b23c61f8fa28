// ABOUTME: Tests for backend error classification
package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMissingIndex(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrIndexNotProvisioned, true},
		{"wrapped sentinel", fmt.Errorf("search: %w", ErrIndexNotProvisioned), true},
		{"sqlite missing function", errors.New("SQL logic error: no such function: cosine_similarity (1)"), true},
		{"sqlite missing table", errors.New("no such table: notes"), true},
		{"rpc missing", errors.New("Could not find the function public.match_notes; function not found"), true},
		{"collection missing", errors.New("Collection voicenotes does not exist."), true},
		{"other", errors.New("database is locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMissingIndex(tt.err); got != tt.want {
				t.Errorf("IsMissingIndex(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
