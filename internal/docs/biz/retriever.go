package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/chopper-ai/chopper-docs/internal/docs/metrics"
	"github.com/chopper-ai/chopper-docs/internal/docs/store"
	"github.com/chopper-ai/chopper-docs/pkg/llm"
	"github.com/chopper-ai/chopper-docs/pkg/utils/errors"
)

// RetrieverConfig 检索器配置。
type RetrieverConfig struct {
	// TopK 返回的最大结果数。
	TopK int
}

// RetrievalResult 检索结果。
type RetrievalResult struct {
	// Results 按相似度降序排列的块。
	Results []*store.SearchResult
	// Degraded 表示检索失败后降级为空结果。
	Degraded bool
}

// Retriever 负责在租户范围内检索相关文档块。
type Retriever struct {
	store    store.VectorStore
	provider llm.EmbeddingProvider
	config   *RetrieverConfig
	metrics  *metrics.DocsMetrics
}

// NewRetriever 创建检索器实例。
func NewRetriever(vectorStore store.VectorStore, provider llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	if config == nil {
		config = &RetrieverConfig{}
	}
	if config.TopK <= 0 {
		config.TopK = 5
	}
	return &Retriever{
		store:    vectorStore,
		provider: provider,
		config:   config,
		metrics:  metrics.GetDocsMetrics(),
	}
}

// Retrieve 在指定范围内检索与查询最相关的块。
// 嵌入或检索失败时降级为空结果并记录日志，不向调用方返回错误。
func (r *Retriever) Retrieve(ctx context.Context, scope store.Scope, query string) (*RetrievalResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, errors.ErrDocInvalidRequest.WithCause(err)
	}
	if query == "" {
		return &RetrievalResult{Results: nil}, nil
	}

	embedStart := time.Now()
	embedding, err := r.provider.EmbedSingle(ctx, query)
	r.metrics.RecordEmbedCall(time.Since(embedStart), err)
	if err != nil {
		logger.Warnw("query embedding failed, degrading to empty results",
			"owner_id", scope.OwnerID,
			"error", err.Error(),
		)
		r.metrics.RecordDegradedQuery()
		return &RetrievalResult{Degraded: true}, nil
	}

	results, err := r.store.Search(ctx, scope, embedding, r.config.TopK)
	if err != nil {
		logger.Warnw("vector search failed, degrading to empty results",
			"owner_id", scope.OwnerID,
			"error", err.Error(),
		)
		r.metrics.RecordDegradedQuery()
		return &RetrievalResult{Degraded: true}, nil
	}

	logger.Debugw("retrieved chunks",
		"owner_id", scope.OwnerID,
		"count", len(results),
	)
	return &RetrievalResult{Results: results}, nil
}
