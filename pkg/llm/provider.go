// Package llm 提供统一的 Embedding 供应商抽象层。
// 文档摄取和查询使用同一个供应商实例，保证向量空间一致。
package llm

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// EmbeddingProvider 定义 Embedding 供应商接口。
type EmbeddingProvider interface {
	// Embed 为多个文本生成向量嵌入。
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle 为单个文本生成向量嵌入。
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name 返回供应商名称。
	Name() string
}

// EmbeddingProviderFactory Embedding 供应商工厂函数类型。
type EmbeddingProviderFactory func(config map[string]any) (EmbeddingProvider, error)

// registry 供应商注册表。
var registry = &providerRegistry{
	embeddingProviders: make(map[string]EmbeddingProviderFactory),
}

type providerRegistry struct {
	mu                 sync.RWMutex
	embeddingProviders map[string]EmbeddingProviderFactory
}

// RegisterEmbeddingProvider 注册 Embedding 供应商工厂。
func RegisterEmbeddingProvider(name string, factory EmbeddingProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.embeddingProviders[name] = factory
}

// NewEmbeddingProvider 根据名称创建 Embedding 供应商实例。
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.embeddingProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown embedding provider: %s", name)
	}

	return factory(config)
}

// ListProviders 列出所有已注册的供应商名称。
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.embeddingProviders))
	for name := range registry.embeddingProviders {
		names = append(names, name)
	}
	return names
}

// Normalize 将向量归一化为单位长度（L2 范数）。
// 零向量保持不变，归一化后余弦相似度等价于内积。
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

// NormalizedProvider 包装底层供应商，对输出向量做归一化和维度校验。
type NormalizedProvider struct {
	provider   EmbeddingProvider
	dimensions int
}

// NewNormalizedProvider 创建归一化包装器。
// dimensions 为 0 时跳过维度校验。
func NewNormalizedProvider(provider EmbeddingProvider, dimensions int) *NormalizedProvider {
	return &NormalizedProvider{
		provider:   provider,
		dimensions: dimensions,
	}
}

// Embed 为多个文本生成归一化向量嵌入。
func (n *NormalizedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := n.provider.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		if n.dimensions > 0 && len(emb) != n.dimensions {
			return nil, fmt.Errorf("provider %s returned %d-dimensional vector, expected %d",
				n.provider.Name(), len(emb), n.dimensions)
		}
		out[i] = Normalize(emb)
	}
	return out, nil
}

// EmbedSingle 为单个文本生成归一化向量嵌入。
func (n *NormalizedProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := n.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("provider %s returned no embedding", n.provider.Name())
	}
	return embeddings[0], nil
}

// Name 返回底层供应商名称。
func (n *NormalizedProvider) Name() string {
	return n.provider.Name()
}

// Dimensions 返回配置的向量维度。
func (n *NormalizedProvider) Dimensions() int {
	return n.dimensions
}

var _ EmbeddingProvider = (*NormalizedProvider)(nil)
