package internal

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names recorded by the collector
const (
	OpParse     = "parse"
	OpSerialize = "serialize"
)

// MetricsCollector collects parse and serialize statistics. When created with
// a registerer it mirrors every record into Prometheus collectors.
type MetricsCollector struct {
	totalOperations     int64
	successfulOps       int64
	failedOps           int64
	parallelOps         int64
	fallbackOps         int64
	totalTokens         int64
	totalBytes          int64
	totalProcessingTime int64
	maxProcessingTime   int64
	minProcessingTime   int64
	errorsByType        sync.Map
	startTime           time.Time

	prom *promMetrics
}

type promMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	fallbacks  *prometheus.CounterVec
	chunks     *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	return &promMetrics{
		operations: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parjson",
			Name:      "operations_total",
			Help:      "Total number of parse and serialize operations.",
		}, []string{"op", "result"})),
		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parjson",
			Name:      "operation_duration_seconds",
			Help:      "Time spent per parse or serialize operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"})),
		fallbacks: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parjson",
			Name:      "fallbacks_total",
			Help:      "Operations that fell back to a single worker.",
		}, []string{"op"})),
		chunks: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parjson",
			Name:      "chunks",
			Help:      "Number of chunks or segments processed per operation.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
		}, []string{"op"})),
		bytes: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parjson",
			Name:      "bytes_total",
			Help:      "Bytes parsed or produced.",
		}, []string{"op"})),
	}
}

// register adds c to reg. Parsers sharing a registerer share the collectors
// of the first one registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// NewMetricsCollector creates a new metrics collector. reg may be nil.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		startTime:         time.Now(),
		minProcessingTime: 1<<63 - 1,
	}
	if reg != nil {
		mc.prom = newPromMetrics(reg)
	}
	return mc
}

// RecordOperation records a completed parse or serialize
func (mc *MetricsCollector) RecordOperation(op string, duration time.Duration, success bool, tokens, bytes int) {
	atomic.AddInt64(&mc.totalOperations, 1)

	result := "success"
	if success {
		atomic.AddInt64(&mc.successfulOps, 1)
		atomic.AddInt64(&mc.totalTokens, int64(tokens))
		atomic.AddInt64(&mc.totalBytes, int64(bytes))
	} else {
		atomic.AddInt64(&mc.failedOps, 1)
		result = "failure"
	}

	if ns := duration.Nanoseconds(); ns > 0 {
		atomic.AddInt64(&mc.totalProcessingTime, ns)
		updateMax(&mc.maxProcessingTime, ns)
		updateMin(&mc.minProcessingTime, ns)
	}

	if mc.prom != nil {
		mc.prom.operations.WithLabelValues(op, result).Inc()
		mc.prom.duration.WithLabelValues(op).Observe(duration.Seconds())
		if success {
			mc.prom.bytes.WithLabelValues(op).Add(float64(bytes))
		}
	}
}

// RecordChunks records how many chunks or segments an operation used
func (mc *MetricsCollector) RecordChunks(op string, n int) {
	if n > 1 {
		atomic.AddInt64(&mc.parallelOps, 1)
	}
	if mc.prom != nil {
		mc.prom.chunks.WithLabelValues(op).Observe(float64(n))
	}
}

// RecordFallback records a planner degeneracy that forced a single worker
func (mc *MetricsCollector) RecordFallback(op string) {
	atomic.AddInt64(&mc.fallbackOps, 1)
	if mc.prom != nil {
		mc.prom.fallbacks.WithLabelValues(op).Inc()
	}
}

// RecordError records an error by type
func (mc *MetricsCollector) RecordError(errorType string) {
	actual, _ := mc.errorsByType.LoadOrStore(errorType, new(int64))
	atomic.AddInt64(actual.(*int64), 1)
}

// GetMetrics returns a snapshot of the collected values
func (mc *MetricsCollector) GetMetrics() Metrics {
	totalOps := atomic.LoadInt64(&mc.totalOperations)
	totalTime := atomic.LoadInt64(&mc.totalProcessingTime)

	var avg time.Duration
	if totalOps > 0 {
		avg = time.Duration(totalTime / totalOps)
	}

	minTime := atomic.LoadInt64(&mc.minProcessingTime)
	if minTime == 1<<63-1 {
		minTime = 0
	}

	errorsByType := make(map[string]int64)
	mc.errorsByType.Range(func(key, value any) bool {
		errorsByType[key.(string)] = atomic.LoadInt64(value.(*int64))
		return true
	})

	return Metrics{
		TotalOperations:     totalOps,
		SuccessfulOps:       atomic.LoadInt64(&mc.successfulOps),
		FailedOps:           atomic.LoadInt64(&mc.failedOps),
		ParallelOps:         atomic.LoadInt64(&mc.parallelOps),
		FallbackOps:         atomic.LoadInt64(&mc.fallbackOps),
		TotalTokens:         atomic.LoadInt64(&mc.totalTokens),
		TotalBytes:          atomic.LoadInt64(&mc.totalBytes),
		TotalProcessingTime: time.Duration(totalTime),
		AvgProcessingTime:   avg,
		MaxProcessingTime:   time.Duration(atomic.LoadInt64(&mc.maxProcessingTime)),
		MinProcessingTime:   time.Duration(minTime),
		Uptime:              time.Since(mc.startTime),
		ErrorsByType:        errorsByType,
	}
}

// GetSummary returns a formatted summary of metrics
func (mc *MetricsCollector) GetSummary() string {
	m := mc.GetMetrics()
	return fmt.Sprintf(`Metrics Summary:
  Operations: %d total (%d successful, %d failed)
  Parallelism: %d parallel, %d fallbacks
  Volume: %d tokens, %d bytes
  Performance: avg %v, max %v, min %v
  Uptime: %v`,
		m.TotalOperations, m.SuccessfulOps, m.FailedOps,
		m.ParallelOps, m.FallbackOps,
		m.TotalTokens, m.TotalBytes,
		m.AvgProcessingTime, m.MaxProcessingTime, m.MinProcessingTime,
		m.Uptime,
	)
}

// Metrics is a point-in-time copy of the collector
type Metrics struct {
	TotalOperations int64 `json:"total_operations"`
	SuccessfulOps   int64 `json:"successful_ops"`
	FailedOps       int64 `json:"failed_ops"`
	ParallelOps     int64 `json:"parallel_ops"`
	FallbackOps     int64 `json:"fallback_ops"`

	TotalTokens int64 `json:"total_tokens"`
	TotalBytes  int64 `json:"total_bytes"`

	TotalProcessingTime time.Duration `json:"total_processing_time"`
	AvgProcessingTime   time.Duration `json:"avg_processing_time"`
	MaxProcessingTime   time.Duration `json:"max_processing_time"`
	MinProcessingTime   time.Duration `json:"min_processing_time"`

	Uptime       time.Duration    `json:"uptime"`
	ErrorsByType map[string]int64 `json:"errors_by_type"`
}

// updateMax atomically updates target to value if value is greater
func updateMax(target *int64, value int64) {
	for {
		current := atomic.LoadInt64(target)
		if value <= current || atomic.CompareAndSwapInt64(target, current, value) {
			return
		}
	}
}

// updateMin atomically updates target to value if value is smaller
func updateMin(target *int64, value int64) {
	for {
		current := atomic.LoadInt64(target)
		if value >= current || atomic.CompareAndSwapInt64(target, current, value) {
			return
		}
	}
}
