// Package metrics 提供文档服务的业务指标收集。
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DocsMetrics 文档服务业务指标。
type DocsMetrics struct {
	// 查询指标
	queriesTotal       uint64 // 总查询次数
	queriesCacheHits   uint64 // 缓存命中次数
	queriesCacheMisses uint64 // 缓存未命中次数
	queriesDegraded    uint64 // 降级为空结果的查询次数
	queriesErrors      uint64 // 查询错误次数

	// 嵌入调用指标
	embedCallsTotal    uint64  // 嵌入总调用次数
	embedCallsDuration float64 // 嵌入调用总耗时（秒）
	embedCallsErrors   uint64  // 嵌入调用错误次数

	// 摄取指标
	documentsIngested uint64 // 已摄取文档数
	chunksIngested    uint64 // 已摄取分块数
	ingestErrors      uint64 // 摄取错误次数
	ingestRollbacks   uint64 // 摄取回滚次数

	// 删除指标
	deletionsTotal uint64 // 删除操作次数
	chunksDeleted  uint64 // 已删除分块数

	startTime  time.Time
	durationMu sync.Mutex
}

// globalDocsMetrics 全局指标实例。
var (
	globalDocsMetrics *DocsMetrics
	docsMetricsOnce   sync.Once
)

// GetDocsMetrics 获取全局指标实例。
func GetDocsMetrics() *DocsMetrics {
	docsMetricsOnce.Do(func() {
		globalDocsMetrics = &DocsMetrics{
			startTime: time.Now(),
		}
	})
	return globalDocsMetrics
}

// RecordQuery 记录查询。
func (m *DocsMetrics) RecordQuery(cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	} else {
		atomic.AddUint64(&m.queriesCacheMisses, 1)
	}
}

// RecordDegradedQuery 记录降级为空结果的查询。
func (m *DocsMetrics) RecordDegradedQuery() {
	atomic.AddUint64(&m.queriesDegraded, 1)
}

// RecordEmbedCall 记录嵌入调用。
func (m *DocsMetrics) RecordEmbedCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.embedCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.embedCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.embedCallsDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordIngest 记录摄取操作。
func (m *DocsMetrics) RecordIngest(documents, chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.ingestErrors, 1)
		return
	}
	atomic.AddUint64(&m.documentsIngested, uint64(documents))
	atomic.AddUint64(&m.chunksIngested, uint64(chunks))
}

// RecordRollback 记录摄取回滚。
func (m *DocsMetrics) RecordRollback() {
	atomic.AddUint64(&m.ingestRollbacks, 1)
}

// RecordDeletion 记录删除操作。
func (m *DocsMetrics) RecordDeletion(chunks int64) {
	atomic.AddUint64(&m.deletionsTotal, 1)
	if chunks > 0 {
		atomic.AddUint64(&m.chunksDeleted, uint64(chunks))
	}
}

// Export 导出 Prometheus 格式指标。
func (m *DocsMetrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	writeCounter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}

	// 查询指标
	writeCounter("queries_total", "Total number of document queries.", atomic.LoadUint64(&m.queriesTotal))
	writeCounter("queries_cache_hits_total", "Number of cache hits.", atomic.LoadUint64(&m.queriesCacheHits))
	writeCounter("queries_cache_misses_total", "Number of cache misses.", atomic.LoadUint64(&m.queriesCacheMisses))
	writeCounter("queries_degraded_total", "Number of queries degraded to empty results.", atomic.LoadUint64(&m.queriesDegraded))
	writeCounter("queries_errors_total", "Number of query errors.", atomic.LoadUint64(&m.queriesErrors))

	// 缓存命中率
	cacheHits := atomic.LoadUint64(&m.queriesCacheHits)
	cacheMisses := atomic.LoadUint64(&m.queriesCacheMisses)
	total := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total)
	}
	sb.WriteString(fmt.Sprintf("# HELP %s_cache_hit_rate Cache hit rate (0-1).\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_cache_hit_rate gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_cache_hit_rate %.4f\n\n", prefix, cacheHitRate))

	// 嵌入调用指标
	writeCounter("embed_calls_total", "Total number of embedding calls.", atomic.LoadUint64(&m.embedCallsTotal))
	writeCounter("embed_calls_errors_total", "Number of embedding call errors.", atomic.LoadUint64(&m.embedCallsErrors))

	m.durationMu.Lock()
	embedDuration := m.embedCallsDuration
	m.durationMu.Unlock()

	sb.WriteString(fmt.Sprintf("# HELP %s_embed_calls_duration_seconds_total Total embedding call duration.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_embed_calls_duration_seconds_total counter\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_embed_calls_duration_seconds_total %.6f\n\n", prefix, embedDuration))

	// 摄取指标
	writeCounter("documents_ingested_total", "Total documents ingested.", atomic.LoadUint64(&m.documentsIngested))
	writeCounter("chunks_ingested_total", "Total chunks ingested.", atomic.LoadUint64(&m.chunksIngested))
	writeCounter("ingest_errors_total", "Number of ingestion errors.", atomic.LoadUint64(&m.ingestErrors))
	writeCounter("ingest_rollbacks_total", "Number of ingestion rollbacks.", atomic.LoadUint64(&m.ingestRollbacks))

	// 删除指标
	writeCounter("deletions_total", "Total deletion operations.", atomic.LoadUint64(&m.deletionsTotal))
	writeCounter("chunks_deleted_total", "Total chunks deleted.", atomic.LoadUint64(&m.chunksDeleted))

	// 运行时间
	uptime := time.Since(m.startTime).Seconds()
	sb.WriteString(fmt.Sprintf("# HELP %s_uptime_seconds Service uptime in seconds.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_uptime_seconds gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_uptime_seconds %.2f\n\n", prefix, uptime))

	return sb.String()
}

// Stats 返回当前统计信息（用于 API）。
func (m *DocsMetrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	embedDuration := m.embedCallsDuration
	m.durationMu.Unlock()

	cacheHits := atomic.LoadUint64(&m.queriesCacheHits)
	cacheMisses := atomic.LoadUint64(&m.queriesCacheMisses)
	cacheTotal := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if cacheTotal > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheTotal)
	}

	embedTotal := atomic.LoadUint64(&m.embedCallsTotal)
	avgEmbedDuration := 0.0
	if embedTotal > 0 {
		avgEmbedDuration = embedDuration / float64(embedTotal)
	}

	return map[string]interface{}{
		"queries": map[string]interface{}{
			"total":          atomic.LoadUint64(&m.queriesTotal),
			"cache_hits":     cacheHits,
			"cache_misses":   cacheMisses,
			"cache_hit_rate": cacheHitRate,
			"degraded":       atomic.LoadUint64(&m.queriesDegraded),
			"errors":         atomic.LoadUint64(&m.queriesErrors),
		},
		"embedding": map[string]interface{}{
			"calls_total":         embedTotal,
			"total_duration_secs": embedDuration,
			"avg_duration_secs":   avgEmbedDuration,
			"errors":              atomic.LoadUint64(&m.embedCallsErrors),
		},
		"ingestion": map[string]interface{}{
			"documents_ingested": atomic.LoadUint64(&m.documentsIngested),
			"chunks_ingested":    atomic.LoadUint64(&m.chunksIngested),
			"errors":             atomic.LoadUint64(&m.ingestErrors),
			"rollbacks":          atomic.LoadUint64(&m.ingestRollbacks),
		},
		"deletion": map[string]interface{}{
			"total":          atomic.LoadUint64(&m.deletionsTotal),
			"chunks_deleted": atomic.LoadUint64(&m.chunksDeleted),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset 重置所有指标（仅用于测试）。
func (m *DocsMetrics) Reset() {
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.queriesCacheHits, 0)
	atomic.StoreUint64(&m.queriesCacheMisses, 0)
	atomic.StoreUint64(&m.queriesDegraded, 0)
	atomic.StoreUint64(&m.queriesErrors, 0)
	atomic.StoreUint64(&m.embedCallsTotal, 0)
	atomic.StoreUint64(&m.embedCallsErrors, 0)
	atomic.StoreUint64(&m.documentsIngested, 0)
	atomic.StoreUint64(&m.chunksIngested, 0)
	atomic.StoreUint64(&m.ingestErrors, 0)
	atomic.StoreUint64(&m.ingestRollbacks, 0)
	atomic.StoreUint64(&m.deletionsTotal, 0)
	atomic.StoreUint64(&m.chunksDeleted, 0)

	m.durationMu.Lock()
	m.embedCallsDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
