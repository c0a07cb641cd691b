package slq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational
// metrics from a driver run. Implement this to integrate with a
// monitoring system such as Prometheus (see cmd/slqbench for an example).
type MetricsCollector interface {
	// RecordSample is called after each completed or failed sample.
	// kEff is the number of Lanczos steps actually taken; err is nil on
	// success.
	RecordSample(duration time.Duration, kEff int, err error)

	// RecordEarlyTermination is called when a sample's Lanczos run stops
	// before k steps due to residual convergence.
	RecordEarlyTermination()

	// RecordRun is called once when a driver invocation finishes.
	RecordRun(duration time.Duration, samples int, err error)
}

// NoopMetricsCollector discards all metrics. It is the default when no
// collector is configured.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSample(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordEarlyTermination()                {}
func (NoopMetricsCollector) RecordRun(time.Duration, int, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection,
// useful for debugging without an external dependency.
type BasicMetricsCollector struct {
	SampleCount           atomic.Int64
	SampleErrors          atomic.Int64
	SampleTotalNanos      atomic.Int64
	EarlyTerminationCount atomic.Int64
	RunCount              atomic.Int64
	RunErrors             atomic.Int64
}

// RecordSample implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSample(duration time.Duration, kEff int, err error) {
	b.SampleCount.Add(1)
	b.SampleTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SampleErrors.Add(1)
	}
}

// RecordEarlyTermination implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEarlyTermination() {
	b.EarlyTerminationCount.Add(1)
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, samples int, err error) {
	b.RunCount.Add(1)
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	count := b.SampleCount.Load()
	var avg int64
	if count > 0 {
		avg = b.SampleTotalNanos.Load() / count
	}
	return BasicMetricsStats{
		SampleCount:           count,
		SampleErrors:          b.SampleErrors.Load(),
		SampleAvgNanos:        avg,
		EarlyTerminationCount: b.EarlyTerminationCount.Load(),
		RunCount:              b.RunCount.Load(),
		RunErrors:             b.RunErrors.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SampleCount           int64
	SampleErrors          int64
	SampleAvgNanos        int64
	EarlyTerminationCount int64
	RunCount              int64
	RunErrors             int64
}
