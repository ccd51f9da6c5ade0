package prometheus

import (
	"testing"
	"time"

	"github.com/Swind/go-parallel/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("parallel", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordTaskDuration("pool-a", 250*time.Millisecond)
	exporter.RecordTaskPanic("pool-a", "panic")
	exporter.RecordQueueDepth("pool-a", 7)
	exporter.RecordTaskRejected("pool-a", "closed")

	panicTotal := testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("pool-a"))
	if panicTotal != 1 {
		t.Fatalf("panic total = %v, want 1", panicTotal)
	}

	queueDepth := testutil.ToFloat64(exporter.queueDepth.WithLabelValues("pool-a"))
	if queueDepth != 7 {
		t.Fatalf("queue depth = %v, want 7", queueDepth)
	}

	rejected := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("pool-a", "closed"))
	if rejected != 1 {
		t.Fatalf("rejected total = %v, want 1", rejected)
	}

	histCount, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("pool-a"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("duration sample count = %d, want 1", histCount)
	}
}

func TestMetricsExporter_RecordBatch(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordBatch("pool-a", 4, 10*time.Millisecond, core.BatchOutcomeOK)
	exporter.RecordBatch("pool-a", 2, 5*time.Millisecond, core.BatchOutcomeOK)
	exporter.RecordBatch("pool-a", 3, time.Millisecond, core.BatchOutcomeInterrupted)
	exporter.RecordBatch("", 1, time.Millisecond, "bogus")

	if got := testutil.ToFloat64(exporter.batchTotal.WithLabelValues("pool-a", "ok")); got != 2 {
		t.Fatalf("ok batches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.batchTotal.WithLabelValues("pool-a", "interrupted")); got != 1 {
		t.Fatalf("interrupted batches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.batchTotal.WithLabelValues("unknown", "unknown")); got != 1 {
		t.Fatalf("unlabelled batches = %v, want 1", got)
	}

	sizeCount, err := histogramSampleCount(exporter.batchSize.WithLabelValues("pool-a"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if sizeCount != 3 {
		t.Fatalf("batch size sample count = %d, want 3", sizeCount)
	}

	// Collectors are registered under the default namespace.
	if n := testutil.CollectAndCount(exporter.batchTotal, "parallel_batch_total"); n != 3 {
		t.Fatalf("batch_total series = %d, want 3", n)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("parallel", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("parallel", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordTaskPanic("pool-a", nil)
	second.RecordTaskPanic("pool-a", nil)

	got := testutil.ToFloat64(first.taskPanicTotal.WithLabelValues("pool-a"))
	if got != 2 {
		t.Fatalf("shared panic counter = %v, want 2", got)
	}
}

func TestMetricsExporter_NilSafe(t *testing.T) {
	var exporter *MetricsExporter
	exporter.RecordTaskDuration("pool-a", time.Second)
	exporter.RecordTaskPanic("pool-a", nil)
	exporter.RecordQueueDepth("pool-a", 1)
	exporter.RecordTaskRejected("pool-a", "closed")
	exporter.RecordBatch("pool-a", 1, time.Second, core.BatchOutcomeOK)
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
