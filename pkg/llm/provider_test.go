package llm

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name       string
	dimensions int
	vectors    map[string][]float32
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := f.vectors[text]; ok {
			out[i] = vec
			continue
		}
		vec := make([]float32, f.dimensions)
		for j := range vec {
			vec[j] = float32(len(text) + j)
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (f *fakeProvider) Name() string { return f.name }

func TestRegistry(t *testing.T) {
	RegisterEmbeddingProvider("fake-registry-test", func(config map[string]any) (EmbeddingProvider, error) {
		return &fakeProvider{name: "fake-registry-test", dimensions: 4}, nil
	})

	p, err := NewEmbeddingProvider("fake-registry-test", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake-registry-test", p.Name())

	_, err = NewEmbeddingProvider("does-not-exist", nil)
	assert.Error(t, err)

	assert.Contains(t, ListProviders(), "fake-registry-test")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
	}{
		{"unit_axis", []float32{3, 4}},
		{"already_normalized", []float32{1, 0, 0}},
		{"negative_components", []float32{-2, 2, -2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.in)
			var sum float64
			for _, v := range out {
				sum += float64(v) * float64(v)
			}
			assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
		})
	}

	// 零向量保持不变
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, Normalize(zero))
}

func TestNormalizedProvider(t *testing.T) {
	inner := &fakeProvider{name: "fake", dimensions: 3, vectors: map[string][]float32{
		"hello": {3, 0, 4},
	}}
	p := NewNormalizedProvider(inner, 3)

	vec, err := p.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, float64(vec[0]), 1e-5)
	assert.InDelta(t, 0.8, float64(vec[2]), 1e-5)
	assert.Equal(t, "fake", p.Name())
	assert.Equal(t, 3, p.Dimensions())
}

func TestNormalizedProviderDimensionMismatch(t *testing.T) {
	inner := &fakeProvider{name: "fake", dimensions: 3}
	p := NewNormalizedProvider(inner, 8)

	_, err := p.Embed(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("expected %d", 8))
}

func TestNormalizedProviderBatch(t *testing.T) {
	inner := &fakeProvider{name: "fake", dimensions: 4}
	p := NewNormalizedProvider(inner, 4)

	embeddings, err := p.Embed(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	for _, vec := range embeddings {
		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	}
}
