package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunk(key, docID, ownerID, sessionID, content string, seq int64, embedding []float32) *Chunk {
	return &Chunk{
		Key:        key,
		DocumentID: docID,
		OwnerID:    ownerID,
		SessionID:  sessionID,
		Filename:   "test.pdf",
		Seq:        seq,
		Content:    content,
		Embedding:  embedding,
	}
}

func TestMemoryStoreUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	chunks := []*Chunk{
		newTestChunk("doc1_chunk_0", "doc1", "alice", "sess1", "first", 0, []float32{1, 0, 0}),
		newTestChunk("doc1_chunk_1", "doc1", "alice", "sess1", "second", 1, []float32{0, 1, 0}),
	}
	require.NoError(t, s.Upsert(ctx, chunks))

	results, err := s.Search(ctx, Scope{OwnerID: "alice"}, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "doc1_chunk_0", results[0].Key)
	assert.Equal(t, "first", results[0].Content)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryStoreTenantIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, []*Chunk{
		newTestChunk("doc1_chunk_0", "doc1", "alice", "sess1", "alice data", 0, []float32{1, 0}),
		newTestChunk("doc2_chunk_0", "doc2", "bob", "sess2", "bob data", 0, []float32{1, 0}),
	}))

	results, err := s.Search(ctx, Scope{OwnerID: "alice"}, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice data", results[0].Content)

	count, err := s.CountChunks(ctx, Scope{OwnerID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStoreScopeFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, []*Chunk{
		newTestChunk("doc1_chunk_0", "doc1", "alice", "sess1", "a", 0, []float32{1, 0}),
		newTestChunk("doc2_chunk_0", "doc2", "alice", "sess1", "b", 0, []float32{1, 0}),
		newTestChunk("doc3_chunk_0", "doc3", "alice", "sess2", "c", 0, []float32{1, 0}),
	}))

	results, err := s.Search(ctx, Scope{OwnerID: "alice", SessionID: "sess1"}, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.Search(ctx, Scope{OwnerID: "alice", DocumentID: "doc3"}, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].Content)
}

func TestMemoryStoreIdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, []*Chunk{
		newTestChunk("doc1_chunk_0", "doc1", "alice", "sess1", "old content", 0, []float32{1, 0}),
	}))
	require.NoError(t, s.Upsert(ctx, []*Chunk{
		newTestChunk("doc1_chunk_0", "doc1", "alice", "sess1", "new content", 0, []float32{0, 1}),
	}))

	count, err := s.CountChunks(ctx, Scope{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	results, err := s.Search(ctx, Scope{OwnerID: "alice"}, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new content", results[0].Content)
}

func TestMemoryStoreDeleteByScope(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, []*Chunk{
		newTestChunk("doc1_chunk_0", "doc1", "alice", "sess1", "a", 0, []float32{1, 0}),
		newTestChunk("doc1_chunk_1", "doc1", "alice", "sess1", "b", 1, []float32{1, 0}),
		newTestChunk("doc2_chunk_0", "doc2", "alice", "sess2", "c", 0, []float32{1, 0}),
		newTestChunk("doc3_chunk_0", "doc3", "bob", "sess3", "d", 0, []float32{1, 0}),
	}))

	deleted, err := s.DeleteByScope(ctx, Scope{OwnerID: "alice", DocumentID: "doc1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = s.DeleteByScope(ctx, Scope{OwnerID: "alice", SessionID: "sess2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	total, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	count, err := s.CountChunks(ctx, Scope{OwnerID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStoreSearchRequiresOwner(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Search(context.Background(), Scope{}, []float32{1}, 5)
	assert.Error(t, err)
}
