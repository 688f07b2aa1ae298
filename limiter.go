package tunego

import (
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/tunego/checkpoint"
	"github.com/hupe1980/tunego/param"
)

const (
	limiterClass             = "concurrency-limiter"
	limiterCheckpointVersion = 1
)

// LimiterOptions contains configuration for the ConcurrencyLimiter.
type LimiterOptions struct {
	// Logger is the structured logger for operation tracing.
	Logger *Logger

	// Metrics is the collector for operational metrics.
	Metrics MetricsCollector
}

// ConcurrencyLimiter wraps another Searcher and caps the number of
// outstanding (suggested but not yet completed) configurations. Sequential
// optimization engines degrade or are unsafe under high suggestion
// concurrency; the limiter shields them without their cooperation.
//
// At the cap, Suggest returns the no-suggestion sentinel without consulting
// the delegate. All other calls forward transparently; delegate errors are
// propagated unchanged, never interpreted.
type ConcurrencyLimiter struct {
	delegate Searcher
	limit    int
	sem      *semaphore.Weighted
	pending  map[string]struct{}
	logger   *Logger
	metrics  MetricsCollector
	used     bool
}

var _ Searcher = (*ConcurrencyLimiter)(nil)

// NewConcurrencyLimiter wraps delegate with an outstanding-suggestion cap.
func NewConcurrencyLimiter(delegate Searcher, limit int, optFns ...func(*LimiterOptions)) (*ConcurrencyLimiter, error) {
	opts := LimiterOptions{
		Logger:  NoopLogger(),
		Metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	return &ConcurrencyLimiter{
		delegate: delegate,
		limit:    limit,
		sem:      semaphore.NewWeighted(int64(limit)),
		pending:  make(map[string]struct{}),
		logger:   opts.Logger.WithSearcher(limiterClass),
		metrics:  opts.Metrics,
	}, nil
}

// Limit returns the configured concurrency cap.
func (c *ConcurrencyLimiter) Limit() int { return c.limit }

// Pending returns the number of outstanding suggestions.
func (c *ConcurrencyLimiter) Pending() int { return len(c.pending) }

// Metric returns the delegate's target metric name.
func (c *ConcurrencyLimiter) Metric() string { return c.delegate.Metric() }

// Mode returns the delegate's optimization direction.
func (c *ConcurrencyLimiter) Mode() Mode { return c.delegate.Mode() }

// Suggest returns nil while the cap is reached; otherwise the delegate's
// suggestion is returned and the trial becomes outstanding.
func (c *ConcurrencyLimiter) Suggest(trialID string) (param.Configuration, error) {
	start := time.Now()
	cfg, err := c.suggest(trialID)
	c.metrics.RecordSuggest(time.Since(start), cfg != nil, err)
	c.logger.LogSuggest(trialID, cfg != nil, err)
	return cfg, err
}

func (c *ConcurrencyLimiter) suggest(trialID string) (param.Configuration, error) {
	c.used = true

	if _, ok := c.pending[trialID]; ok {
		return nil, &ErrDuplicateTrial{TrialID: trialID}
	}

	if !c.sem.TryAcquire(1) {
		c.logger.Debug("concurrency cap reached", "trial", trialID, "limit", c.limit, "pending", len(c.pending))
		return nil, nil
	}

	cfg, err := c.delegate.Suggest(trialID)
	if err != nil || cfg == nil {
		c.sem.Release(1)
		return nil, err
	}

	c.pending[trialID] = struct{}{}
	return cfg, nil
}

// OnTrialResult forwards unchanged; outstanding bookkeeping is unaffected by
// intermediate reports.
func (c *ConcurrencyLimiter) OnTrialResult(trialID string, metrics Metrics) error {
	c.used = true
	return c.delegate.OnTrialResult(trialID, metrics)
}

// OnTrialComplete releases the trial's slot and forwards the completion.
// Completions for trials the limiter never tracked (possible after a
// restore from an older checkpoint) release nothing but still forward, so
// the delegate decides whether the call violates its contract.
func (c *ConcurrencyLimiter) OnTrialComplete(trialID string, metrics Metrics, failed bool) error {
	c.used = true

	if _, ok := c.pending[trialID]; ok {
		delete(c.pending, trialID)
		c.sem.Release(1)
	}

	err := c.delegate.OnTrialComplete(trialID, metrics, failed)
	c.metrics.RecordComplete(failed, err)
	c.logger.LogComplete(trialID, failed, err)
	return err
}

type limiterState struct {
	Limit    int                    `json:"limit"`
	Pending  []string               `json:"pending"`
	Delegate *checkpoint.Checkpoint `json:"delegate"`
}

// Save persists the outstanding trial set plus the delegate's nested
// checkpoint.
func (c *ConcurrencyLimiter) Save() (*checkpoint.Checkpoint, error) {
	start := time.Now()
	cp, err := c.save()
	c.metrics.RecordSave(time.Since(start), err)
	return cp, err
}

func (c *ConcurrencyLimiter) save() (*checkpoint.Checkpoint, error) {
	delegateCP, err := c.delegate.Save()
	if err != nil {
		return nil, err
	}
	state := limiterState{
		Limit:    c.limit,
		Pending:  sortedKeys(c.pending),
		Delegate: delegateCP,
	}
	return checkpoint.New(limiterClass, limiterCheckpointVersion, state)
}

// Restore loads the outstanding trial set and restores the delegate from its
// nested checkpoint. Must be called on a fresh instance; the outcomes of the
// restored outstanding trials are still unknown and their slots stay taken
// until the scheduler completes them.
func (c *ConcurrencyLimiter) Restore(cp *checkpoint.Checkpoint) error {
	start := time.Now()
	err := c.restore(cp)
	c.metrics.RecordRestore(time.Since(start), err)
	return err
}

func (c *ConcurrencyLimiter) restore(cp *checkpoint.Checkpoint) error {
	if c.used {
		return ErrNotFresh
	}

	var state limiterState
	if err := cp.Decode(limiterClass, limiterCheckpointVersion, &state); err != nil {
		return err
	}
	if state.Limit != c.limit {
		return fmt.Errorf("checkpoint limit %d does not match configured limit %d", state.Limit, c.limit)
	}
	if len(state.Pending) > c.limit {
		return fmt.Errorf("checkpoint has %d pending trials, above limit %d", len(state.Pending), c.limit)
	}
	if state.Delegate == nil {
		return fmt.Errorf("checkpoint is missing the delegate state")
	}

	if err := c.delegate.Restore(state.Delegate); err != nil {
		return err
	}

	c.pending = make(map[string]struct{}, len(state.Pending))
	for _, id := range state.Pending {
		if _, ok := c.pending[id]; ok {
			continue
		}
		c.pending[id] = struct{}{}
		if !c.sem.TryAcquire(1) {
			return fmt.Errorf("checkpoint pending set exceeds semaphore capacity")
		}
	}
	return nil
}
