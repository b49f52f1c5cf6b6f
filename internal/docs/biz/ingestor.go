package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/chopper-ai/chopper-docs/internal/docs/metrics"
	"github.com/chopper-ai/chopper-docs/internal/docs/store"
	"github.com/chopper-ai/chopper-docs/internal/pkg/extract"
	"github.com/chopper-ai/chopper-docs/internal/pkg/textutil"
	"github.com/chopper-ai/chopper-docs/pkg/llm"
	"github.com/chopper-ai/chopper-docs/pkg/utils/errors"
	"github.com/chopper-ai/chopper-docs/pkg/utils/id"
)

// IngestorConfig 摄取器配置。
type IngestorConfig struct {
	// ChunkSize 分块大小（按字符数）。
	ChunkSize int
	// ChunkOverlap 相邻块的重叠长度。
	ChunkOverlap int
	// MaxUploadBytes 单个文档的最大字节数，0 表示不限制。
	MaxUploadBytes int64
	// EmbedBatchSize 每批嵌入的块数。
	EmbedBatchSize int
}

// IngestRequest 文档摄取请求。
type IngestRequest struct {
	// OwnerID 文档所有者，必填。
	OwnerID string
	// SessionID 所属会话 ID，可选。
	SessionID string
	// DocumentID 文档 ID，为空时自动生成；指定时替换同 ID 文档。
	DocumentID string
	// Filename 原始文件名。
	Filename string
	// MimeType 文件 MIME 类型，可为空。
	MimeType string
	// Content 文件原始字节。
	Content []byte
}

// IngestResult 文档摄取结果。
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	TextLength int    `json:"text_length"`
}

// Ingestor 负责文档摄取流水线：提取、分块、嵌入、索引写入。
type Ingestor struct {
	store    store.VectorStore
	provider llm.EmbeddingProvider
	config   *IngestorConfig
	metrics  *metrics.DocsMetrics
}

// NewIngestor 创建摄取器实例。
func NewIngestor(vectorStore store.VectorStore, provider llm.EmbeddingProvider, config *IngestorConfig) *Ingestor {
	if config == nil {
		config = &IngestorConfig{}
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	}
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = 32
	}
	return &Ingestor{
		store:    vectorStore,
		provider: provider,
		config:   config,
		metrics:  metrics.GetDocsMetrics(),
	}
}

// Ingest 执行完整的摄取流水线。
// 索引写入失败时回滚已写入的块，避免残留部分文档。
func (i *Ingestor) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	if req.OwnerID == "" {
		return nil, errors.ErrDocInvalidRequest.WithMessage("owner_id is required")
	}
	if len(req.Content) == 0 {
		return nil, errors.ErrDocEmpty
	}
	if i.config.MaxUploadBytes > 0 && int64(len(req.Content)) > i.config.MaxUploadBytes {
		i.metrics.RecordIngest(0, 0, errors.ErrDocTooLarge)
		return nil, errors.ErrDocTooLarge.WithMessagef(
			"document size %d exceeds limit %d bytes", len(req.Content), i.config.MaxUploadBytes)
	}

	// 1. 提取文本
	text, err := extract.Extract(req.Filename, req.MimeType, req.Content)
	if err != nil {
		i.metrics.RecordIngest(0, 0, err)
		return nil, err
	}

	// 2. 分块
	chunks := textutil.SplitIntoChunks(text, i.config.ChunkSize, i.config.ChunkOverlap)
	if len(chunks) == 0 {
		i.metrics.RecordIngest(0, 0, errors.ErrDocNoExtractableText)
		return nil, errors.ErrDocNoExtractableText
	}

	documentID := req.DocumentID
	replacing := documentID != ""
	if documentID == "" {
		documentID = id.NewDocumentID()
	}

	// 3. 重新摄取时先清除旧块，防止块数减少后残留陈旧内容
	docScope := store.Scope{OwnerID: req.OwnerID, DocumentID: documentID}
	if replacing {
		if deleted, err := i.store.DeleteByScope(ctx, docScope); err != nil {
			logger.Warnw("failed to clear previous chunks before re-ingest",
				"document_id", documentID,
				"error", err.Error(),
			)
		} else if deleted > 0 {
			logger.Infow("cleared previous chunks for re-ingest",
				"document_id", documentID,
				"deleted", deleted,
			)
		}
	}

	// 4. 批量计算嵌入
	embeddings, err := i.embedChunks(ctx, chunks)
	if err != nil {
		i.metrics.RecordIngest(0, 0, err)
		return nil, errors.ErrDocEmbeddingFailed.WithCause(err)
	}

	// 5. 构造块并写入索引
	now := time.Now().Unix()
	records := make([]*store.Chunk, len(chunks))
	for seq, content := range chunks {
		records[seq] = &store.Chunk{
			Key:        id.ChunkKey(documentID, seq),
			DocumentID: documentID,
			OwnerID:    req.OwnerID,
			SessionID:  req.SessionID,
			Filename:   req.Filename,
			Seq:        int64(seq),
			Content:    content,
			Embedding:  embeddings[seq],
			CreatedAt:  now,
		}
	}

	if err := i.store.Upsert(ctx, records); err != nil {
		// 回滚：删除本次可能已写入的块
		if _, rbErr := i.store.DeleteByScope(ctx, docScope); rbErr != nil {
			logger.Errorw("rollback after index write failure also failed",
				"document_id", documentID,
				"error", rbErr.Error(),
			)
		}
		i.metrics.RecordRollback()
		i.metrics.RecordIngest(0, 0, err)
		return nil, errors.ErrDocIndexWriteFailed.WithCause(err)
	}

	i.metrics.RecordIngest(1, len(records), nil)
	logger.Infow("document ingested",
		"document_id", documentID,
		"owner_id", req.OwnerID,
		"filename", req.Filename,
		"chunks", len(records),
		"text_length", len(text),
	)

	return &IngestResult{
		DocumentID: documentID,
		Filename:   req.Filename,
		ChunkCount: len(records),
		TextLength: len(text),
	}, nil
}

// embedChunks 分批计算块嵌入。
func (i *Ingestor) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))
	batchSize := i.config.EmbedBatchSize

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		embedStart := time.Now()
		batch, err := i.provider.Embed(ctx, chunks[start:end])
		i.metrics.RecordEmbedCall(time.Since(embedStart), err)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}
