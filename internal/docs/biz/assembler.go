package biz

import (
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/chopper-ai/chopper-docs/internal/docs/store"
	"github.com/chopper-ai/chopper-docs/internal/pkg/textutil"
)

// promptFrame 包裹文档上下文与用户查询的提示词模板。
const promptFrame = "I have uploaded a document. Here are the relevant sections from it:\n\n" +
	"--- DOCUMENT CONTENT ---\n%s\n--- END OF DOCUMENT ---\n\n" +
	"My question/request: %s\n\n" +
	"Please analyze the document content above and respond to my request. " +
	"If I'm asking you to explain or summarize, provide a clear and comprehensive explanation. " +
	"If I'm asking a specific question, answer based on the document content."

// AssemblerConfig 上下文组装器配置。
type AssemblerConfig struct {
	// MaxContextTokens 上下文的 token 预算。
	MaxContextTokens int
	// Estimator token 估算函数，默认按字符数近似。
	Estimator textutil.TokenEstimator
}

// Assembler 将检索结果组装为带 token 预算的提示词。
type Assembler struct {
	config *AssemblerConfig
}

// NewAssembler 创建上下文组装器实例。
func NewAssembler(config *AssemblerConfig) *Assembler {
	if config == nil {
		config = &AssemblerConfig{}
	}
	if config.MaxContextTokens <= 0 {
		config.MaxContextTokens = 4000
	}
	if config.Estimator == nil {
		config.Estimator = textutil.EstimateTokens
	}
	return &Assembler{config: config}
}

// BuildPrompt 在 token 预算内拼接检索到的块并包裹查询。
// 没有可用块时返回原始查询。
func (a *Assembler) BuildPrompt(query string, results []*store.SearchResult) string {
	if len(results) == 0 {
		return query
	}

	parts := make([]string, 0, len(results))
	totalTokens := 0
	for i, result := range results {
		chunkTokens := a.config.Estimator(result.Content)
		if totalTokens+chunkTokens > a.config.MaxContextTokens {
			break
		}
		parts = append(parts, fmt.Sprintf("[Section %d]:\n%s", i+1, result.Content))
		totalTokens += chunkTokens
	}

	if len(parts) == 0 {
		logger.Warnw("no retrieved chunk fits within the context budget",
			"budget", a.config.MaxContextTokens,
		)
		return query
	}

	logger.Debugw("assembled context",
		"sections", len(parts),
		"tokens", totalTokens,
		"budget", a.config.MaxContextTokens,
	)

	context := strings.Join(parts, "\n\n")
	return fmt.Sprintf(promptFrame, context, query)
}
