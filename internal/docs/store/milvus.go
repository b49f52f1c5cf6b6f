package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/chopper-ai/chopper-docs/pkg/component/milvus"
)

const (
	pkField      = "chunk_key"
	pkMaxLen     = 128
	ownerMaxLen  = 64
	idMaxLen     = 64
	nameMaxLen   = 255
	contentMax   = 65535
	outputFields = "document_id,owner_id,session_id,filename,seq,content"
)

// MilvusStore 实现基于 Milvus 的向量存储。
type MilvusStore struct {
	client     *milvus.Client
	collection string
}

// NewMilvusStore 创建 Milvus 存储实例。
func NewMilvusStore(client *milvus.Client, collection string) *MilvusStore {
	return &MilvusStore{client: client, collection: collection}
}

// EnsureCollection 创建并加载 Milvus 集合。
func (s *MilvusStore) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		PKName:      pkField,
		PKMaxLen:    pkMaxLen,
		MetaFields: []milvus.MetaField{
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: idMaxLen},
			{Name: "owner_id", DataType: entity.FieldTypeVarChar, MaxLen: ownerMaxLen},
			{Name: "session_id", DataType: entity.FieldTypeVarChar, MaxLen: idMaxLen},
			{Name: "filename", DataType: entity.FieldTypeVarChar, MaxLen: nameMaxLen},
			{Name: "seq", DataType: entity.FieldTypeInt64},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: contentMax},
			{Name: "created_at", DataType: entity.FieldTypeInt64},
		},
	}
	s.collection = config.Name
	return s.client.EnsureCollection(ctx, schema)
}

// Upsert 批量写入文档块。
func (s *MilvusStore) Upsert(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	keys := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"document_id": make([]any, len(chunks)),
		"owner_id":    make([]any, len(chunks)),
		"session_id":  make([]any, len(chunks)),
		"filename":    make([]any, len(chunks)),
		"seq":         make([]any, len(chunks)),
		"content":     make([]any, len(chunks)),
		"created_at":  make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		keys[i] = chunk.Key
		embeddings[i] = chunk.Embedding
		metadata["document_id"][i] = chunk.DocumentID
		metadata["owner_id"][i] = chunk.OwnerID
		metadata["session_id"][i] = chunk.SessionID
		metadata["filename"][i] = chunk.Filename
		metadata["seq"][i] = chunk.Seq
		metadata["content"][i] = chunk.Content
		metadata["created_at"][i] = chunk.CreatedAt
	}

	data := &milvus.UpsertData{
		PKName:     pkField,
		Keys:       keys,
		Embeddings: embeddings,
		Metadata:   metadata,
	}

	if err := s.client.Upsert(ctx, s.collection, data); err != nil {
		return fmt.Errorf("failed to upsert into milvus: %w", err)
	}
	return nil
}

// Search 在租户范围内执行向量相似度搜索。
func (s *MilvusStore) Search(ctx context.Context, scope Scope, embedding []float32, topK int) ([]*SearchResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	expr := BuildFilterExpr(scope)
	results, err := s.client.SearchWithFilter(ctx, s.collection, embedding, expr, topK,
		strings.Split(outputFields, ","))
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		sr := &SearchResult{
			Key:   r.Key,
			Score: r.Score,
		}
		if v, ok := r.Metadata["document_id"].(string); ok {
			sr.DocumentID = v
		}
		if v, ok := r.Metadata["session_id"].(string); ok {
			sr.SessionID = v
		}
		if v, ok := r.Metadata["filename"].(string); ok {
			sr.Filename = v
		}
		if v, ok := r.Metadata["seq"].(int64); ok {
			sr.Seq = v
		}
		if v, ok := r.Metadata["content"].(string); ok {
			sr.Content = v
		}
		searchResults = append(searchResults, sr)
	}

	return searchResults, nil
}

// DeleteByScope 删除范围内的所有块。
func (s *MilvusStore) DeleteByScope(ctx context.Context, scope Scope) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	return s.client.DeleteByFilter(ctx, s.collection, BuildFilterExpr(scope))
}

// CountChunks 统计范围内的块数量。
func (s *MilvusStore) CountChunks(ctx context.Context, scope Scope) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	return s.client.CountByFilter(ctx, s.collection, BuildFilterExpr(scope))
}

// Stats 返回集合中的总块数。
func (s *MilvusStore) Stats(ctx context.Context) (int64, error) {
	return s.client.GetCollectionStats(ctx, s.collection)
}

// Close 关闭 Milvus 连接。
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// BuildFilterExpr 构造租户过滤表达式。
// owner_id 过滤无条件存在，session_id / document_id 按需叠加 AND 条件。
func BuildFilterExpr(scope Scope) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`owner_id == "%s"`, escapeFilterValue(scope.OwnerID)))
	if scope.SessionID != "" {
		sb.WriteString(fmt.Sprintf(` and session_id == "%s"`, escapeFilterValue(scope.SessionID)))
	}
	if scope.DocumentID != "" {
		sb.WriteString(fmt.Sprintf(` and document_id == "%s"`, escapeFilterValue(scope.DocumentID)))
	}
	return sb.String()
}

// escapeFilterValue 转义过滤表达式中的字符串值。
func escapeFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

// 确保 MilvusStore 实现了 VectorStore 接口。
var _ VectorStore = (*MilvusStore)(nil)
