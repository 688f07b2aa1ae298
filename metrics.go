package tunego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics
// from a searcher stack. Implement this interface to integrate with
// monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    suggestCounter prometheus.Counter
//	    pendingGauge   prometheus.Gauge
//	}
//
//	func (p *PrometheusCollector) RecordSuggest(duration time.Duration, suggested bool, err error) {
//	    p.suggestCounter.Inc()
//	    // ... record outcome, duration, etc.
//	}
type MetricsCollector interface {
	// RecordSuggest is called after each suggest call. suggested is false
	// when the call returned the no-suggestion sentinel.
	RecordSuggest(duration time.Duration, suggested bool, err error)

	// RecordComplete is called after each trial completion. failed mirrors
	// the scheduler-reported trial outcome.
	RecordComplete(failed bool, err error)

	// RecordSave is called after each checkpoint save.
	RecordSave(duration time.Duration, err error)

	// RecordRestore is called after each checkpoint restore.
	RecordRestore(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSuggest(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordComplete(bool, error)               {}
func (NoopMetricsCollector) RecordSave(time.Duration, error)          {}
func (NoopMetricsCollector) RecordRestore(time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SuggestCount      atomic.Int64
	SuggestEmpty      atomic.Int64
	SuggestErrors     atomic.Int64
	SuggestTotalNanos atomic.Int64
	CompleteCount     atomic.Int64
	CompleteFailed    atomic.Int64
	CompleteErrors    atomic.Int64
	SaveCount         atomic.Int64
	SaveErrors        atomic.Int64
	RestoreCount      atomic.Int64
	RestoreErrors     atomic.Int64
}

// RecordSuggest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSuggest(duration time.Duration, suggested bool, err error) {
	b.SuggestCount.Add(1)
	b.SuggestTotalNanos.Add(duration.Nanoseconds())
	if !suggested {
		b.SuggestEmpty.Add(1)
	}
	if err != nil {
		b.SuggestErrors.Add(1)
	}
}

// RecordComplete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordComplete(failed bool, err error) {
	b.CompleteCount.Add(1)
	if failed {
		b.CompleteFailed.Add(1)
	}
	if err != nil {
		b.CompleteErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(duration time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordRestore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestore(duration time.Duration, err error) {
	b.RestoreCount.Add(1)
	if err != nil {
		b.RestoreErrors.Add(1)
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector counters.
type BasicMetricsStats struct {
	SuggestCount     int64
	SuggestEmpty     int64
	SuggestErrors    int64
	SuggestAvgNanos  int64
	CompleteCount    int64
	CompleteFailed   int64
	CompleteErrors   int64
	SaveCount        int64
	SaveErrors       int64
	RestoreCount     int64
	RestoreErrors    int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SuggestCount:    b.SuggestCount.Load(),
		SuggestEmpty:    b.SuggestEmpty.Load(),
		SuggestErrors:   b.SuggestErrors.Load(),
		SuggestAvgNanos: b.getAvgSuggestNanos(),
		CompleteCount:   b.CompleteCount.Load(),
		CompleteFailed:  b.CompleteFailed.Load(),
		CompleteErrors:  b.CompleteErrors.Load(),
		SaveCount:       b.SaveCount.Load(),
		SaveErrors:      b.SaveErrors.Load(),
		RestoreCount:    b.RestoreCount.Load(),
		RestoreErrors:   b.RestoreErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSuggestNanos() int64 {
	count := b.SuggestCount.Load()
	if count == 0 {
		return 0
	}
	return b.SuggestTotalNanos.Load() / count
}
