package store

import (
	"context"
	"fmt"
)

// Chunk 表示带向量的文档块。
// Key 是确定性主键（{document_id}_chunk_{seq}），重复摄取同一文档
// 会原地覆盖旧块而不是产生重复。
type Chunk struct {
	// Key 文档块主键。
	Key string
	// DocumentID 所属文档 ID。
	DocumentID string
	// OwnerID 文档所有者。
	OwnerID string
	// SessionID 所属会话 ID。
	SessionID string
	// Filename 原始文件名。
	Filename string
	// Seq 块在文档中的序号。
	Seq int64
	// Content 文档块内容。
	Content string
	// Embedding 归一化后的嵌入向量。
	Embedding []float32
	// CreatedAt 写入时间（Unix 秒）。
	CreatedAt int64
}

// Scope 限定操作的租户范围。
// OwnerID 必填，所有读写都无条件按所有者过滤；
// SessionID 和 DocumentID 为可选的叠加过滤条件。
type Scope struct {
	OwnerID    string
	SessionID  string
	DocumentID string
}

// Validate 校验范围是否可用。
func (s Scope) Validate() error {
	if s.OwnerID == "" {
		return fmt.Errorf("scope requires owner_id")
	}
	return nil
}

// SearchResult 表示检索结果。
type SearchResult struct {
	// Key 文档块主键。
	Key string
	// DocumentID 所属文档 ID。
	DocumentID string
	// SessionID 所属会话 ID。
	SessionID string
	// Filename 原始文件名。
	Filename string
	// Seq 块在文档中的序号。
	Seq int64
	// Content 文档块内容。
	Content string
	// Score 相似度分数。
	Score float32
}

// CollectionConfig 集合配置。
type CollectionConfig struct {
	// Name 集合名称。
	Name string
	// Description 集合描述。
	Description string
	// Dimension 向量维度。
	Dimension int
}

// VectorStore 定义租户隔离的向量存储接口。
type VectorStore interface {
	// EnsureCollection 创建并加载集合（幂等）。
	EnsureCollection(ctx context.Context, config *CollectionConfig) error

	// Upsert 批量写入文档块，主键相同的块被覆盖。
	Upsert(ctx context.Context, chunks []*Chunk) error

	// Search 在指定范围内执行向量相似度搜索。
	Search(ctx context.Context, scope Scope, embedding []float32, topK int) ([]*SearchResult, error)

	// DeleteByScope 删除范围内的所有块，返回删除数量。
	DeleteByScope(ctx context.Context, scope Scope) (int64, error)

	// CountChunks 统计范围内的块数量。
	CountChunks(ctx context.Context, scope Scope) (int64, error)

	// Stats 返回集合中的总块数。
	Stats(ctx context.Context) (int64, error)

	// Close 关闭连接。
	Close(ctx context.Context) error
}
