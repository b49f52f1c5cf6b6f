package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cacheProviderFor(providerName, model string) *CachedEmbeddingProvider {
	config := DefaultEmbeddingCacheConfig()
	config.Model = model
	return NewCachedEmbeddingProvider(&fakeProvider{name: providerName, dimensions: 4}, nil, config)
}

func TestEmbeddingCacheKeyIncludesModel(t *testing.T) {
	old := cacheProviderFor("ollama", "nomic-embed-text")
	swapped := cacheProviderFor("ollama", "mxbai-embed-large")

	// 同一供应商下切换模型后不能命中旧模型缓存的向量
	assert.NotEqual(t,
		old.generateCacheKey("shared text"),
		swapped.generateCacheKey("shared text"),
	)
}

func TestEmbeddingCacheKeyDeterministic(t *testing.T) {
	a := cacheProviderFor("ollama", "nomic-embed-text")
	b := cacheProviderFor("ollama", "nomic-embed-text")

	assert.Equal(t, a.generateCacheKey("same text"), b.generateCacheKey("same text"))
	assert.NotEqual(t, a.generateCacheKey("text one"), a.generateCacheKey("text two"))
}

func TestEmbeddingCacheKeyIncludesProvider(t *testing.T) {
	ollama := cacheProviderFor("ollama", "m")
	openai := cacheProviderFor("openai", "m")

	assert.NotEqual(t,
		ollama.generateCacheKey("shared text"),
		openai.generateCacheKey("shared text"),
	)
}
