// ABOUTME: Tests for Vector construction from model responses
// ABOUTME: Verifies dimension checking for embedding consistency
package models

import (
	"strings"
	"testing"
)

func TestVectorFromSlice(t *testing.T) {
	tests := []struct {
		name        string
		values      []float32
		wantErr     bool
		errContains string
	}{
		{
			name:   "exact dimension",
			values: make([]float32, EmbeddingDimension),
		},
		{
			name:        "empty",
			values:      nil,
			wantErr:     true,
			errContains: "expected 1536, got 0",
		},
		{
			name:        "too short",
			values:      make([]float32, 768),
			wantErr:     true,
			errContains: "got 768",
		},
		{
			name:        "too long",
			values:      make([]float32, 3072),
			wantErr:     true,
			errContains: "got 3072",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := VectorFromSlice(tt.values)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %q, want containing %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(v) != EmbeddingDimension {
				t.Errorf("len = %d, want %d", len(v), EmbeddingDimension)
			}
		})
	}
}

func TestVectorFromSlice_CopiesValues(t *testing.T) {
	values := make([]float32, EmbeddingDimension)
	values[0] = 0.5
	values[EmbeddingDimension-1] = -0.25

	v, err := VectorFromSlice(values)
	if err != nil {
		t.Fatalf("VectorFromSlice() error = %v", err)
	}

	values[0] = 9
	if v[0] != 0.5 {
		t.Errorf("v[0] = %v, want 0.5 (vector must not alias input)", v[0])
	}
	if v[EmbeddingDimension-1] != -0.25 {
		t.Errorf("v[last] = %v, want -0.25", v[EmbeddingDimension-1])
	}
}
