package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		want      int // expected chunk count, -1 to skip
	}{
		{
			name:      "empty_text",
			text:      "",
			chunkSize: 100,
			overlap:   10,
			want:      0,
		},
		{
			name:      "short_text_single_chunk",
			text:      "short text",
			chunkSize: 100,
			overlap:   10,
			want:      1,
		},
		{
			name:      "invalid_chunk_size",
			text:      "some text",
			chunkSize: 0,
			overlap:   0,
			want:      0,
		},
		{
			name:      "long_text_multiple_chunks",
			text:      strings.Repeat("word ", 100), // 500 chars
			chunkSize: 100,
			overlap:   10,
			want:      -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitIntoChunks(tt.text, tt.chunkSize, tt.overlap)
			if tt.want >= 0 {
				assert.Len(t, chunks, tt.want)
			} else {
				assert.Greater(t, len(chunks), 1)
			}
		})
	}
}

func TestSplitIntoChunksSentenceBoundary(t *testing.T) {
	// 第一句结束点在窗口中点之后，应在句子边界切分
	text := strings.Repeat("a", 60) + ". " + strings.Repeat("b", 200)
	chunks := SplitIntoChunks(text, 100, 0)

	require.NotEmpty(t, chunks)
	assert.Equal(t, strings.Repeat("a", 60)+".", chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "b"))
}

func TestSplitIntoChunksBoundaryBeforeMidpointIgnored(t *testing.T) {
	// 边界在中点之前时忽略，按窗口大小硬切
	text := strings.Repeat("a", 20) + ". " + strings.Repeat("b", 300)
	chunks := SplitIntoChunks(text, 100, 0)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 100, len([]rune(chunks[0])))
}

func TestSplitIntoChunksWordBoundaryFallback(t *testing.T) {
	// 无句子边界时退回到词边界
	text := strings.Repeat("a", 70) + " " + strings.Repeat("b", 200)
	chunks := SplitIntoChunks(text, 100, 0)

	require.NotEmpty(t, chunks)
	assert.Equal(t, strings.Repeat("a", 70), chunks[0])
}

func TestSplitIntoChunksOverlap(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := SplitIntoChunks(text, 100, 20)

	require.GreaterOrEqual(t, len(chunks), 3)
	// 相邻块应共享 overlap 部分
	first := []rune(chunks[0])
	second := []rune(chunks[1])
	assert.Equal(t, string(first[len(first)-20:]), string(second[:20]))
}

func TestSplitIntoChunksCoversAllText(t *testing.T) {
	// 无空格无边界的文本也必须被完整覆盖
	text := strings.Repeat("x", 1050)
	chunks := SplitIntoChunks(text, 1000, 100)

	var total int
	for _, c := range chunks {
		total += len([]rune(c))
	}
	assert.GreaterOrEqual(t, total, len([]rune(text)))
}

func TestSplitIntoChunksDeterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)
	a := SplitIntoChunks(text, 200, 30)
	b := SplitIntoChunks(text, 200, 30)
	assert.Equal(t, a, b)
}

func TestSplitIntoChunksUnicode(t *testing.T) {
	text := strings.Repeat("日本語のテキストです。", 50)
	chunks := SplitIntoChunks(text, 100, 10)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 100)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("a", 4000), 1000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.text), "text length %d", len(tt.text))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"length_mismatch", []float32{1, 0}, []float32{1}, 0.0},
		{"zero_vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "日本", TruncateString("日本語テキスト", 2))
}
