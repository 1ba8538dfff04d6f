package internal

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCollector(t *testing.T) {
	t.Run("Creation", func(t *testing.T) {
		mc := NewMetricsCollector(nil)
		if mc == nil {
			t.Fatal("NewMetricsCollector returned nil")
		}
		if mc.startTime.IsZero() {
			t.Error("Start time should be set")
		}
		if mc.prom != nil {
			t.Error("Prometheus collectors created without a registerer")
		}
	})

	t.Run("RecordOperation", func(t *testing.T) {
		mc := NewMetricsCollector(nil)

		mc.RecordOperation(OpParse, 100*time.Millisecond, true, 12, 1024)

		if got := atomic.LoadInt64(&mc.totalOperations); got != 1 {
			t.Errorf("Expected 1 operation, got %d", got)
		}
		if got := atomic.LoadInt64(&mc.successfulOps); got != 1 {
			t.Errorf("Expected 1 successful operation, got %d", got)
		}
		if got := atomic.LoadInt64(&mc.totalTokens); got != 12 {
			t.Errorf("Expected 12 tokens, got %d", got)
		}
		if got := atomic.LoadInt64(&mc.totalBytes); got != 1024 {
			t.Errorf("Expected 1024 bytes, got %d", got)
		}
	})

	t.Run("RecordFailedOperation", func(t *testing.T) {
		mc := NewMetricsCollector(nil)

		mc.RecordOperation(OpSerialize, 50*time.Millisecond, false, 99, 99)

		if got := atomic.LoadInt64(&mc.failedOps); got != 1 {
			t.Errorf("Expected 1 failed operation, got %d", got)
		}
		if got := atomic.LoadInt64(&mc.totalBytes); got != 0 {
			t.Errorf("Failed operation counted %d bytes", got)
		}
	})

	t.Run("TimingMetrics", func(t *testing.T) {
		mc := NewMetricsCollector(nil)

		for _, d := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 50 * time.Millisecond} {
			mc.RecordOperation(OpParse, d, true, 0, 0)
		}

		m := mc.GetMetrics()
		if m.MaxProcessingTime != 200*time.Millisecond {
			t.Errorf("Max time = %v, want 200ms", m.MaxProcessingTime)
		}
		if m.MinProcessingTime != 50*time.Millisecond {
			t.Errorf("Min time = %v, want 50ms", m.MinProcessingTime)
		}
		if m.AvgProcessingTime != 350*time.Millisecond/3 {
			t.Errorf("Avg time = %v", m.AvgProcessingTime)
		}
	})

	t.Run("ChunksAndFallbacks", func(t *testing.T) {
		mc := NewMetricsCollector(nil)

		mc.RecordChunks(OpParse, 1)
		mc.RecordChunks(OpParse, 4)
		mc.RecordChunks(OpSerialize, 2)
		mc.RecordFallback(OpSerialize)

		m := mc.GetMetrics()
		if m.ParallelOps != 2 {
			t.Errorf("Expected 2 parallel operations, got %d", m.ParallelOps)
		}
		if m.FallbackOps != 1 {
			t.Errorf("Expected 1 fallback, got %d", m.FallbackOps)
		}
	})

	t.Run("ErrorTracking", func(t *testing.T) {
		mc := NewMetricsCollector(nil)

		mc.RecordError("ERR_GRAMMAR")
		mc.RecordError("ERR_GRAMMAR")
		mc.RecordError("ERR_ENCODING")

		m := mc.GetMetrics()
		if m.ErrorsByType["ERR_GRAMMAR"] != 2 {
			t.Errorf("Expected 2 grammar errors, got %d", m.ErrorsByType["ERR_GRAMMAR"])
		}
		if m.ErrorsByType["ERR_ENCODING"] != 1 {
			t.Errorf("Expected 1 encoding error, got %d", m.ErrorsByType["ERR_ENCODING"])
		}
	})

	t.Run("EmptySnapshot", func(t *testing.T) {
		m := NewMetricsCollector(nil).GetMetrics()
		if m.AvgProcessingTime != 0 || m.MinProcessingTime != 0 {
			t.Errorf("Empty collector reports avg %v min %v", m.AvgProcessingTime, m.MinProcessingTime)
		}
	})

	t.Run("Summary", func(t *testing.T) {
		mc := NewMetricsCollector(nil)
		mc.RecordOperation(OpParse, time.Millisecond, true, 3, 10)
		mc.RecordChunks(OpParse, 3)

		summary := mc.GetSummary()
		for _, want := range []string{"1 total", "1 parallel", "3 tokens", "10 bytes"} {
			if !strings.Contains(summary, want) {
				t.Errorf("Summary missing %q:\n%s", want, summary)
			}
		}
	})
}

func TestMetricsCollector_Prometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := NewMetricsCollector(reg)

	mc.RecordOperation(OpParse, time.Millisecond, true, 5, 100)
	mc.RecordOperation(OpParse, time.Millisecond, false, 0, 0)
	mc.RecordFallback(OpSerialize)
	mc.RecordChunks(OpParse, 4)

	if got := testutil.ToFloat64(mc.prom.operations.WithLabelValues(OpParse, "success")); got != 1 {
		t.Errorf("success counter = %v", got)
	}
	if got := testutil.ToFloat64(mc.prom.operations.WithLabelValues(OpParse, "failure")); got != 1 {
		t.Errorf("failure counter = %v", got)
	}
	if got := testutil.ToFloat64(mc.prom.bytes.WithLabelValues(OpParse)); got != 100 {
		t.Errorf("bytes counter = %v", got)
	}
	if got := testutil.ToFloat64(mc.prom.fallbacks.WithLabelValues(OpSerialize)); got != 1 {
		t.Errorf("fallback counter = %v", got)
	}
	if n := testutil.CollectAndCount(mc.prom.chunks); n != 1 {
		t.Errorf("chunk histogram series = %d", n)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 5 {
		t.Errorf("registered %d metric families, want 5", len(families))
	}
}

func TestMetricsCollector_SharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetricsCollector(reg)
	second := NewMetricsCollector(reg)

	first.RecordOperation(OpParse, time.Millisecond, true, 1, 1)
	second.RecordOperation(OpParse, time.Millisecond, true, 1, 1)

	if first.prom.operations != second.prom.operations {
		t.Error("second collector did not reuse the registered counter")
	}
	if got := testutil.ToFloat64(first.prom.operations.WithLabelValues(OpParse, "success")); got != 2 {
		t.Errorf("shared success counter = %v, want 2", got)
	}
	if got := second.GetMetrics().TotalOperations; got != 1 {
		t.Errorf("local operations = %d, want 1", got)
	}
}

func TestMetricsCollector_ConflictingRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parjson",
		Name:      "operations_total",
		Help:      "Total number of parse and serialize operations.",
	}, []string{"other"}))

	defer func() {
		if recover() == nil {
			t.Error("conflicting collector did not panic")
		}
	}()
	NewMetricsCollector(reg)
}

func TestMetricsCollector_Concurrent(t *testing.T) {
	mc := NewMetricsCollector(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mc.RecordOperation(OpParse, time.Microsecond, j%2 == 0, 1, 1)
				mc.RecordError("ERR_GRAMMAR")
			}
		}()
	}
	wg.Wait()

	m := mc.GetMetrics()
	if m.TotalOperations != 5000 {
		t.Errorf("Expected 5000 operations, got %d", m.TotalOperations)
	}
	if m.SuccessfulOps+m.FailedOps != m.TotalOperations {
		t.Errorf("success %d + failed %d != total %d", m.SuccessfulOps, m.FailedOps, m.TotalOperations)
	}
	if m.ErrorsByType["ERR_GRAMMAR"] != 5000 {
		t.Errorf("Expected 5000 errors, got %d", m.ErrorsByType["ERR_GRAMMAR"])
	}
}
