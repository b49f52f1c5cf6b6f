// Package textutil 提供文档处理相关的文本工具函数。
package textutil

import (
	"math"
	"strings"
	"unicode/utf8"
)

// chunkBoundaries 按优先级排列的切分边界。
// 先找句子边界，找不到再退回到词边界。
var chunkBoundaries = []string{". ", ".\n", "! ", "!\n", "? ", "?\n", "\n\n"}

// SplitIntoChunks 将文本分割成重叠的块。
// chunkSize 是每个块的最大大小（Unicode 字符数），overlap 是块之间的重叠大小。
// 边界只在超过窗口中点时生效，避免产生过小的块；
// 空白块被丢弃，下一个窗口从 end-overlap 开始。
func SplitIntoChunks(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	half := float64(chunkSize) * 0.5
	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + chunkSize
		if end < len(runes) {
			window := string(runes[start:end])

			// 优先句子边界
			found := false
			for _, boundary := range chunkBoundaries {
				if idx := strings.LastIndex(window, boundary); idx >= 0 {
					rel := utf8.RuneCountInString(window[:idx])
					if float64(rel) > half {
						end = start + rel + utf8.RuneCountInString(boundary)
						found = true
						break
					}
				}
			}

			// 退回到词边界
			if !found {
				if idx := strings.LastIndex(window, " "); idx >= 0 {
					rel := utf8.RuneCountInString(window[:idx])
					if float64(rel) > half {
						end = start + rel + 1
					}
				}
			}
		} else {
			end = len(runes)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end < len(runes) {
			next := end - overlap
			// 大 overlap 加上提前的边界可能让窗口不前进
			if next <= start {
				next = start + 1
			}
			start = next
		} else {
			start = end
		}
	}

	return chunks
}

// TokenEstimator 估算文本的 token 数。
type TokenEstimator func(text string) int

// EstimateTokens 粗略估算 token 数（约 4 个字符一个 token）。
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

// CosineSimilarity 计算两个向量的余弦相似度。
// 返回值范围为 [-1, 1]，1 表示完全相同，-1 表示完全相反。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TruncateString 截断字符串到指定的最大 Unicode 字符数。
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}
