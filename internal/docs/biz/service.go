package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/chopper-ai/chopper-docs/internal/docs/metrics"
	"github.com/chopper-ai/chopper-docs/internal/docs/store"
	"github.com/chopper-ai/chopper-docs/pkg/llm"
	"github.com/chopper-ai/chopper-docs/pkg/utils/errors"
)

// ChunkSource 查询结果中的来源块。
type ChunkSource struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Seq        int64   `json:"seq"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

// QueryResult 查询结果：组装好的提示词与来源块。
type QueryResult struct {
	Prompt   string        `json:"prompt"`
	Sources  []ChunkSource `json:"sources"`
	Degraded bool          `json:"degraded,omitempty"`
}

// BatchIngestItem 批量摄取中单个文件的结果。
type BatchIngestItem struct {
	Filename string        `json:"filename"`
	Result   *IngestResult `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// BatchIngestResult 批量摄取结果：逐文件报告成功或失败原因。
type BatchIngestResult struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Items     []*BatchIngestItem `json:"items"`
}

// Service 定义文档服务接口。
type Service interface {
	// Ingest 摄取文档：提取、分块、嵌入、写入索引。
	Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error)
	// IngestBatch 批量摄取：单个文件失败不影响其他文件。
	IngestBatch(ctx context.Context, reqs []*IngestRequest, replaceSession bool) (*BatchIngestResult, error)
	// Query 在租户范围内检索并组装上下文提示词。
	Query(ctx context.Context, scope store.Scope, query string) (*QueryResult, error)
	// DeleteDocument 删除指定文档的所有块。
	DeleteDocument(ctx context.Context, ownerID, documentID string) (int64, error)
	// DeleteSession 删除会话内的所有文档块。
	DeleteSession(ctx context.Context, ownerID, sessionID string) (int64, error)
	// CountChunks 统计范围内的块数量。
	CountChunks(ctx context.Context, scope store.Scope) (int64, error)
	// GetStats 获取服务统计信息。
	GetStats(ctx context.Context) (map[string]any, error)
}

// DocsService 组合 Ingestor、Retriever 和 Assembler 提供完整的文档服务。
type DocsService struct {
	ingestor  *Ingestor
	retriever *Retriever
	assembler *Assembler
	cache     *QueryCache
	store     store.VectorStore
	provider  llm.EmbeddingProvider
	metrics   *metrics.DocsMetrics
}

// ServiceConfig 文档服务配置。
type ServiceConfig struct {
	IngestorConfig   *IngestorConfig
	RetrieverConfig  *RetrieverConfig
	AssemblerConfig  *AssemblerConfig
	QueryCacheConfig *QueryCacheConfig
}

// NewDocsService 创建文档服务实例。
func NewDocsService(
	vectorStore store.VectorStore,
	provider llm.EmbeddingProvider,
	cache *QueryCache,
	config *ServiceConfig,
) *DocsService {
	if config == nil {
		config = &ServiceConfig{}
	}
	return &DocsService{
		ingestor:  NewIngestor(vectorStore, provider, config.IngestorConfig),
		retriever: NewRetriever(vectorStore, provider, config.RetrieverConfig),
		assembler: NewAssembler(config.AssemblerConfig),
		cache:     cache,
		store:     vectorStore,
		provider:  provider,
		metrics:   metrics.GetDocsMetrics(),
	}
}

// Ingest 摄取文档。
func (s *DocsService) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	result, err := s.ingestor.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return result, nil
}

// IngestBatch 批量摄取文档。每个文件独立处理，失败的文件在结果中
// 携带具体原因，不影响批次内其他文件。
// replaceSession 为 true 时，先清除会话内现有文档再摄取新批次。
func (s *DocsService) IngestBatch(ctx context.Context, reqs []*IngestRequest, replaceSession bool) (*BatchIngestResult, error) {
	if len(reqs) == 0 {
		return nil, errors.ErrDocInvalidRequest.WithMessage("at least one file is required")
	}

	if replaceSession {
		scope := store.Scope{OwnerID: reqs[0].OwnerID, SessionID: reqs[0].SessionID}
		if scope.SessionID == "" {
			return nil, errors.ErrDocInvalidRequest.WithMessage("session_id is required to replace a session")
		}
		if err := scope.Validate(); err != nil {
			return nil, errors.ErrDocInvalidRequest.WithCause(err)
		}
		deleted, err := s.store.DeleteByScope(ctx, scope)
		if err != nil {
			return nil, errors.ErrDocIndexWriteFailed.WithCause(err)
		}
		if deleted > 0 {
			logger.Infow("session documents purged before re-ingest",
				"owner_id", scope.OwnerID,
				"session_id", scope.SessionID,
				"chunks_deleted", deleted,
			)
		}
	}

	batch := &BatchIngestResult{Items: make([]*BatchIngestItem, 0, len(reqs))}
	for _, req := range reqs {
		item := &BatchIngestItem{Filename: req.Filename}
		result, err := s.ingestor.Ingest(ctx, req)
		if err != nil {
			item.Error = errors.FromError(err).MessageEN
			batch.Failed++
		} else {
			item.Result = result
			batch.Succeeded++
		}
		batch.Items = append(batch.Items, item)
	}

	if batch.Succeeded > 0 {
		s.invalidateCache(ctx)
	}
	return batch, nil
}

// Query 在租户范围内检索相关块并组装提示词。
// 检索降级时返回仅包含原始查询的结果。
func (s *DocsService) Query(ctx context.Context, scope store.Scope, query string) (*QueryResult, error) {
	if query == "" {
		return nil, errors.ErrDocInvalidRequest.WithMessage("query is required")
	}

	// 1. 尝试从缓存获取
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, scope, query)
		if err == nil && cached != nil {
			s.metrics.RecordQuery(true, nil)
			return cached, nil
		}
	}

	// 2. 检索相关块
	retrieval, err := s.retriever.Retrieve(ctx, scope, query)
	if err != nil {
		s.metrics.RecordQuery(false, err)
		return nil, err
	}

	// 3. 组装提示词
	prompt := s.assembler.BuildPrompt(query, retrieval.Results)

	sources := make([]ChunkSource, len(retrieval.Results))
	for i, result := range retrieval.Results {
		sources[i] = ChunkSource{
			DocumentID: result.DocumentID,
			Filename:   result.Filename,
			Seq:        result.Seq,
			Content:    result.Content,
			Score:      result.Score,
		}
	}

	result := &QueryResult{
		Prompt:   prompt,
		Sources:  sources,
		Degraded: retrieval.Degraded,
	}

	// 4. 写入缓存，降级结果不缓存
	if s.cache != nil && !retrieval.Degraded {
		_ = s.cache.Set(ctx, scope, query, result)
	}

	s.metrics.RecordQuery(false, nil)
	return result, nil
}

// DeleteDocument 删除指定文档的所有块。
func (s *DocsService) DeleteDocument(ctx context.Context, ownerID, documentID string) (int64, error) {
	if documentID == "" {
		return 0, errors.ErrDocInvalidRequest.WithMessage("document_id is required")
	}
	scope := store.Scope{OwnerID: ownerID, DocumentID: documentID}
	if err := scope.Validate(); err != nil {
		return 0, errors.ErrDocInvalidRequest.WithCause(err)
	}

	deleted, err := s.store.DeleteByScope(ctx, scope)
	if err != nil {
		return 0, errors.ErrDocIndexWriteFailed.WithCause(err)
	}
	if deleted == 0 {
		return 0, errors.ErrDocNotFound
	}

	s.metrics.RecordDeletion(deleted)
	s.invalidateCache(ctx)
	logger.Infow("document deleted",
		"owner_id", ownerID,
		"document_id", documentID,
		"chunks_deleted", deleted,
	)
	return deleted, nil
}

// DeleteSession 删除会话内的所有文档块。
func (s *DocsService) DeleteSession(ctx context.Context, ownerID, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, errors.ErrDocInvalidRequest.WithMessage("session_id is required")
	}
	scope := store.Scope{OwnerID: ownerID, SessionID: sessionID}
	if err := scope.Validate(); err != nil {
		return 0, errors.ErrDocInvalidRequest.WithCause(err)
	}

	deleted, err := s.store.DeleteByScope(ctx, scope)
	if err != nil {
		return 0, errors.ErrDocIndexWriteFailed.WithCause(err)
	}

	s.metrics.RecordDeletion(deleted)
	s.invalidateCache(ctx)
	logger.Infow("session documents deleted",
		"owner_id", ownerID,
		"session_id", sessionID,
		"chunks_deleted", deleted,
	)
	return deleted, nil
}

// CountChunks 统计范围内的块数量。
func (s *DocsService) CountChunks(ctx context.Context, scope store.Scope) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, errors.ErrDocInvalidRequest.WithCause(err)
	}
	count, err := s.store.CountChunks(ctx, scope)
	if err != nil {
		return 0, errors.ErrDocIndexQueryFailed.WithCause(err)
	}
	return count, nil
}

// GetStats 获取服务统计信息。
func (s *DocsService) GetStats(ctx context.Context) (map[string]any, error) {
	count, err := s.store.Stats(ctx)
	if err != nil {
		return nil, errors.ErrDocIndexQueryFailed.WithCause(err)
	}

	stats := map[string]any{
		"chunk_count":    count,
		"embed_provider": s.provider.Name(),
	}

	if s.cache != nil {
		cacheStats, err := s.cache.GetStats(ctx)
		if err == nil {
			stats["cache"] = cacheStats
		}
	}

	stats["metrics"] = s.metrics.Stats()

	return stats, nil
}

// invalidateCache 在索引发生任何变更后清除查询缓存。
// 缓存键是范围加查询文本的哈希，无法按范围选择性失效，只能整体清除。
func (s *DocsService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		logger.Debugw("failed to clear query cache", "error", err.Error())
	}
}

// 确保 DocsService 实现了 Service 接口。
var _ Service = (*DocsService)(nil)
