package store

import (
	"context"
	"sort"
	"sync"

	"github.com/chopper-ai/chopper-docs/internal/pkg/textutil"
)

// MemoryStore 是内存实现的向量存储，用于测试与本地开发。
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  map[string]*memChunk
	nextOrd int64
}

// memChunk 记录写入顺序，相似度相同时按写入顺序稳定排序。
type memChunk struct {
	Chunk
	ord int64
}

// NewMemoryStore 创建内存存储实例。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]*memChunk)}
}

// EnsureCollection 内存实现无需建表，直接返回。
func (s *MemoryStore) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	return nil
}

// Upsert 批量写入文档块，主键相同的块被覆盖。
func (s *MemoryStore) Upsert(ctx context.Context, chunks []*Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		mc := &memChunk{Chunk: *chunk}
		if existing, ok := s.chunks[chunk.Key]; ok {
			mc.ord = existing.ord
		} else {
			mc.ord = s.nextOrd
			s.nextOrd++
		}
		s.chunks[chunk.Key] = mc
	}
	return nil
}

// Search 在租户范围内按余弦相似度排序返回前 topK 个结果。
func (s *MemoryStore) Search(ctx context.Context, scope Scope, embedding []float32, topK int) ([]*SearchResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		result *SearchResult
		ord    int64
	}
	matches := make([]scored, 0)
	for _, chunk := range s.chunks {
		if !scopeMatches(scope, &chunk.Chunk) {
			continue
		}
		matches = append(matches, scored{
			result: &SearchResult{
				Key:        chunk.Key,
				DocumentID: chunk.DocumentID,
				SessionID:  chunk.SessionID,
				Filename:   chunk.Filename,
				Seq:        chunk.Seq,
				Content:    chunk.Content,
				Score:      float32(textutil.CosineSimilarity(embedding, chunk.Embedding)),
			},
			ord: chunk.ord,
		})
	}

	// 相似度相同时按写入顺序排序，保证结果稳定
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].result.Score != matches[j].result.Score {
			return matches[i].result.Score > matches[j].result.Score
		}
		return matches[i].ord < matches[j].ord
	})

	results := make([]*SearchResult, len(matches))
	for i, m := range matches {
		results[i] = m.result
	}
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByScope 删除范围内的所有块，返回删除数量。
func (s *MemoryStore) DeleteByScope(ctx context.Context, scope Scope) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, chunk := range s.chunks {
		if scopeMatches(scope, &chunk.Chunk) {
			delete(s.chunks, key)
			deleted++
		}
	}
	return deleted, nil
}

// CountChunks 统计范围内的块数量。
func (s *MemoryStore) CountChunks(ctx context.Context, scope Scope) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, chunk := range s.chunks {
		if scopeMatches(scope, &chunk.Chunk) {
			count++
		}
	}
	return count, nil
}

// Stats 返回存储中的总块数。
func (s *MemoryStore) Stats(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks)), nil
}

// Close 内存实现无资源需要释放。
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func scopeMatches(scope Scope, chunk *Chunk) bool {
	if chunk.OwnerID != scope.OwnerID {
		return false
	}
	if scope.SessionID != "" && chunk.SessionID != scope.SessionID {
		return false
	}
	if scope.DocumentID != "" && chunk.DocumentID != scope.DocumentID {
		return false
	}
	return true
}

var _ VectorStore = (*MemoryStore)(nil)
