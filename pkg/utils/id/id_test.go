package id

import (
	"strings"
	"testing"
)

func TestNewDocumentID(t *testing.T) {
	a := NewDocumentID()
	b := NewDocumentID()

	if a == b {
		t.Error("document IDs should be unique")
	}
	if !IsValidDocumentID(a) {
		t.Errorf("generated ID %q should be a valid UUID", a)
	}
	if IsValidDocumentID("not-a-uuid") {
		t.Error("IsValidDocumentID should reject malformed input")
	}
}

func TestNewRequestID(t *testing.T) {
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 100; i++ {
		id := NewRequestID()
		if len(id) != 26 {
			t.Fatalf("request ID %q should have ULID length 26", id)
		}
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
		if prev != "" && id <= prev {
			t.Fatalf("request IDs should sort monotonically: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestChunkKey(t *testing.T) {
	tests := []struct {
		documentID string
		seq        int
		want       string
	}{
		{"doc-1", 0, "doc-1_chunk_0"},
		{"doc-1", 7, "doc-1_chunk_7"},
		{"550e8400-e29b-41d4-a716-446655440000", 12, "550e8400-e29b-41d4-a716-446655440000_chunk_12"},
	}

	for _, tt := range tests {
		if got := ChunkKey(tt.documentID, tt.seq); got != tt.want {
			t.Errorf("ChunkKey(%q, %d) = %q, want %q", tt.documentID, tt.seq, got, tt.want)
		}
	}

	// Same inputs always produce the same key.
	if ChunkKey("d", 3) != ChunkKey("d", 3) {
		t.Error("chunk keys must be deterministic")
	}
	if !strings.HasPrefix(ChunkKey("d", 3), "d_chunk_") {
		t.Error("chunk key should embed the document ID prefix")
	}
}
