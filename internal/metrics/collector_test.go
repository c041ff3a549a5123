package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.httpRequestDuration)
	assert.NotNil(t, collector.toolDispatchesTotal)
	assert.NotNil(t, collector.summaryRequestsTotal)
	assert.NotNil(t, collector.summaryTokensUsed)
	assert.NotNil(t, collector.persistenceFailuresTotal)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 记录请求
	collector.RecordHTTPRequest("POST", "/api/v1/query", 200, 100*time.Millisecond, 1024, 2048)

	// 验证指标
	count := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.Greater(t, count, 0)

	// 再记录一次相同的请求
	collector.RecordHTTPRequest("POST", "/api/v1/query", 200, 50*time.Millisecond, 512, 1024)

	// 验证计数增加
	newCount := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.GreaterOrEqual(t, newCount, count)
}

func TestCollector_RecordToolDispatch(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 记录工具调度
	collector.RecordToolDispatch("web-search", "success", 700*time.Millisecond)
	collector.RecordToolDispatch("calculator", "error", 1*time.Millisecond)

	// 验证指标
	count := testutil.CollectAndCount(collector.toolDispatchesTotal)
	assert.Greater(t, count, 0)

	value := testutil.ToFloat64(collector.toolDispatchesTotal.WithLabelValues("web-search", "success"))
	assert.Equal(t, 1.0, value)
}

func TestCollector_RecordSummaryRequest(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 记录摘要请求
	collector.RecordSummaryRequest(
		"gemini",
		"gemini-2.0-flash",
		"success",
		500*time.Millisecond,
		150, // total tokens
	)

	// 验证指标
	count := testutil.CollectAndCount(collector.summaryRequestsTotal)
	assert.Greater(t, count, 0)

	tokens := testutil.ToFloat64(collector.summaryTokensUsed.WithLabelValues("gemini", "gemini-2.0-flash"))
	assert.Equal(t, 150.0, tokens)
}

func TestCollector_RecordCacheOperation(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 记录缓存命中
	collector.RecordCacheHit("redis")

	// 记录缓存未命中
	collector.RecordCacheMiss("redis")

	// 验证指标
	hitCount := testutil.CollectAndCount(collector.cacheHits)
	assert.Greater(t, hitCount, 0)

	missCount := testutil.CollectAndCount(collector.cacheMisses)
	assert.Greater(t, missCount, 0)
}

func TestCollector_RecordPersistenceFailure(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordPersistenceFailure("cache")
	collector.RecordPersistenceFailure("database")
	collector.RecordPersistenceFailure("database")

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.persistenceFailuresTotal.WithLabelValues("cache")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.persistenceFailuresTotal.WithLabelValues("database")))
}

func TestCollector_RecordDatabaseQuery(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 记录数据库查询
	collector.RecordDBQuery("postgres", "INSERT", 20*time.Millisecond)

	// 验证指标
	count := testutil.CollectAndCount(collector.dbQueryDuration)
	assert.Greater(t, count, 0)
}

func TestCollector_UpdateConnectionPool(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 更新连接池状态
	collector.RecordDBConnections("postgres", 10, 5)

	// 验证指标
	openCount := testutil.CollectAndCount(collector.dbConnectionsOpen)
	assert.Greater(t, openCount, 0)

	idleCount := testutil.CollectAndCount(collector.dbConnectionsIdle)
	assert.Greater(t, idleCount, 0)
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 并发记录多个指标
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			collector.RecordHTTPRequest("POST", "/api/v1/query", 200, 100*time.Millisecond, 1024, 2048)
			collector.RecordSummaryRequest("gemini", "gemini-2.0-flash", "success", 500*time.Millisecond, 100)
			collector.RecordCacheHit("redis")
			done <- true
		}(i)
	}

	// 等待所有 goroutine 完成
	for i := 0; i < 10; i++ {
		<-done
	}

	// 验证指标被正确记录
	httpCount := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.Greater(t, httpCount, 0)

	summaryCount := testutil.CollectAndCount(collector.summaryRequestsTotal)
	assert.Greater(t, summaryCount, 0)

	cacheCount := testutil.CollectAndCount(collector.cacheHits)
	assert.Greater(t, cacheCount, 0)
}

func TestCollector_MetricsRegistration(t *testing.T) {
	logger := zap.NewNop()

	// 创建自定义 registry
	registry := prometheus.NewRegistry()

	// 创建 collector（会自动注册到默认 registry）
	collector := NewCollector(nextTestNamespace(), logger)

	// 手动注册到自定义 registry
	registry.MustRegister(collector.httpRequestsTotal)
	registry.MustRegister(collector.httpRequestDuration)

	// 记录一些数据
	collector.RecordHTTPRequest("POST", "/api/v1/query", 200, 100*time.Millisecond, 0, 0)

	// 验证可以从自定义 registry 收集指标
	count := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.Greater(t, count, 0)
}
