package tunego

import (
	"fmt"
	"time"

	"github.com/hupe1980/tunego/checkpoint"
	"github.com/hupe1980/tunego/param"
)

const (
	repeaterClass             = "repeater"
	repeaterCheckpointVersion = 1
)

// ErrMissingMetric indicates a successful completion that did not report the
// target metric the searcher aggregates on.
type ErrMissingMetric struct {
	TrialID string
	Metric  string
}

func (e *ErrMissingMetric) Error() string {
	return fmt.Sprintf("trial %q completed without target metric %q", e.TrialID, e.Metric)
}

// RepeaterOptions contains configuration for the Repeater.
type RepeaterOptions struct {
	// Logger is the structured logger for operation tracing.
	Logger *Logger

	// Metrics is the collector for operational metrics.
	Metrics MetricsCollector
}

// Repeater wraps another Searcher and evaluates each of its suggestions
// repeatCount times, forwarding only the arithmetic mean of the target
// metric. This trades sample efficiency for variance reduction on noisy
// objectives.
//
// Grouping is keyed purely by suggestion order: each delegate suggestion
// opens a group, and subsequent Suggest calls join it until repeatCount
// members are assigned. The delegate sees one completion per group, tagged
// with the group's base (first) trial identifier. With repeatCount 1 the
// Repeater is a transparent passthrough.
//
// Do not combine the Repeater with schedulers that early-stop individual
// trials: a stopped repeat leaves its group open until the scheduler reports
// it as failed, and partial-progress comparisons across repeats are not
// meaningful. This is a documented caller responsibility, not a validated
// invariant.
type Repeater struct {
	delegate Searcher
	repeat   int
	logger   *Logger
	metrics  MetricsCollector

	groups map[string]*repeatGroup // member trial id -> group
	live   []*repeatGroup          // open + in-flight groups, in creation order
	open   *repeatGroup            // group still needing member assignments
	used   bool
}

var _ Searcher = (*Repeater)(nil)

// repeatGroup tracks one delegate suggestion and its repeat trials.
//
// NOTE: This is the checkpoint payload schema; keep it stable.
type repeatGroup struct {
	BaseID    string              `json:"base_id"`
	Config    param.Configuration `json:"config"`
	Members   []string            `json:"members"`
	Values    []float64           `json:"values"`
	Completed []string            `json:"completed"`
	Failed    int                 `json:"failed"`
}

func (g *repeatGroup) isCompleted(trialID string) bool {
	for _, id := range g.Completed {
		if id == trialID {
			return true
		}
	}
	return false
}

// NewRepeater wraps delegate so that every suggested configuration is
// evaluated repeat times before the delegate sees its aggregated result.
func NewRepeater(delegate Searcher, repeat int, optFns ...func(*RepeaterOptions)) (*Repeater, error) {
	opts := RepeaterOptions{
		Logger:  NoopLogger(),
		Metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if repeat <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRepeat, repeat)
	}

	return &Repeater{
		delegate: delegate,
		repeat:   repeat,
		logger:   opts.Logger.WithSearcher(repeaterClass),
		metrics:  opts.Metrics,
		groups:   make(map[string]*repeatGroup),
	}, nil
}

// Repeat returns the configured evaluations per configuration.
func (r *Repeater) Repeat() int { return r.repeat }

// Metric returns the delegate's target metric name.
func (r *Repeater) Metric() string { return r.delegate.Metric() }

// Mode returns the delegate's optimization direction.
func (r *Repeater) Mode() Mode { return r.delegate.Mode() }

// Suggest assigns the trial to the open repeat group if one still needs
// members, otherwise asks the delegate for a fresh configuration and opens a
// new group around it.
func (r *Repeater) Suggest(trialID string) (param.Configuration, error) {
	start := time.Now()
	cfg, err := r.suggest(trialID)
	r.metrics.RecordSuggest(time.Since(start), cfg != nil, err)
	r.logger.LogSuggest(trialID, cfg != nil, err)
	return cfg, err
}

func (r *Repeater) suggest(trialID string) (param.Configuration, error) {
	r.used = true

	if _, ok := r.groups[trialID]; ok {
		return nil, &ErrDuplicateTrial{TrialID: trialID}
	}

	if r.open != nil {
		g := r.open
		g.Members = append(g.Members, trialID)
		r.groups[trialID] = g
		if len(g.Members) == r.repeat {
			r.open = nil
		}
		return g.Config, nil
	}

	cfg, err := r.delegate.Suggest(trialID)
	if err != nil || cfg == nil {
		return nil, err
	}

	g := &repeatGroup{
		BaseID:  trialID,
		Config:  cfg,
		Members: []string{trialID},
	}
	r.groups[trialID] = g
	r.live = append(r.live, g)
	if r.repeat > 1 {
		r.open = g
	}
	return cfg, nil
}

// OnTrialResult forwards the intermediate report to the delegate re-tagged
// with the group's base identifier. Per-repeat intermediate values are not
// aggregated: repeats progress at different rates, so an intermediate
// average would compare unlike points.
func (r *Repeater) OnTrialResult(trialID string, metrics Metrics) error {
	r.used = true

	g, ok := r.groups[trialID]
	if !ok {
		return &ErrUnknownTrial{TrialID: trialID}
	}
	return r.delegate.OnTrialResult(g.BaseID, metrics)
}

// OnTrialComplete records the member's terminal metric. The delegate is
// contacted only when the last member of the group completes: it then
// receives the mean of the non-failed members' target metric, or a failed
// completion when every member failed. The group is discarded afterwards.
func (r *Repeater) OnTrialComplete(trialID string, metrics Metrics, failed bool) error {
	r.used = true

	err := r.complete(trialID, metrics, failed)
	r.metrics.RecordComplete(failed, err)
	r.logger.LogComplete(trialID, failed, err)
	return err
}

func (r *Repeater) complete(trialID string, metrics Metrics, failed bool) error {
	g, ok := r.groups[trialID]
	if !ok {
		return &ErrUnknownTrial{TrialID: trialID}
	}
	if g.isCompleted(trialID) {
		return &ErrDuplicateTrial{TrialID: trialID}
	}
	g.Completed = append(g.Completed, trialID)

	var memberErr error
	switch {
	case failed:
		g.Failed++
	default:
		value, ok := metrics[r.Metric()]
		if !ok {
			// Surface the scheduler bug, but keep the group coherent by
			// counting the member as failed.
			g.Failed++
			memberErr = &ErrMissingMetric{TrialID: trialID, Metric: r.Metric()}
		} else {
			g.Values = append(g.Values, value)
		}
	}

	if len(g.Completed) < r.repeat {
		return memberErr
	}

	if err := r.finalize(g); err != nil {
		return err
	}
	return memberErr
}

// finalize forwards the aggregated outcome under the base identifier and
// discards the group. Called exactly once per group.
func (r *Repeater) finalize(g *repeatGroup) error {
	for _, id := range g.Members {
		delete(r.groups, id)
	}
	for i, lg := range r.live {
		if lg == g {
			r.live = append(r.live[:i], r.live[i+1:]...)
			break
		}
	}

	if len(g.Values) == 0 {
		r.logger.Warn("all repeats failed", "trial", g.BaseID, "repeat", r.repeat)
		return r.delegate.OnTrialComplete(g.BaseID, nil, true)
	}

	var sum float64
	for _, v := range g.Values {
		sum += v
	}
	mean := sum / float64(len(g.Values))

	r.logger.Debug("repeat group aggregated",
		"trial", g.BaseID,
		"reported", len(g.Values),
		"failed", g.Failed,
		"mean", mean,
	)
	return r.delegate.OnTrialComplete(g.BaseID, Metrics{r.Metric(): mean}, false)
}

type repeaterState struct {
	Repeat   int                    `json:"repeat"`
	Groups   []*repeatGroup         `json:"groups"`
	Open     int                    `json:"open"` // index into Groups, -1 if none
	Delegate *checkpoint.Checkpoint `json:"delegate"`
}

// Save persists all live repeat groups plus the delegate's nested
// checkpoint.
func (r *Repeater) Save() (*checkpoint.Checkpoint, error) {
	start := time.Now()
	cp, err := r.save()
	r.metrics.RecordSave(time.Since(start), err)
	return cp, err
}

func (r *Repeater) save() (*checkpoint.Checkpoint, error) {
	delegateCP, err := r.delegate.Save()
	if err != nil {
		return nil, err
	}

	state := repeaterState{
		Repeat:   r.repeat,
		Groups:   r.live,
		Open:     -1,
		Delegate: delegateCP,
	}
	for i, g := range r.live {
		if g == r.open {
			state.Open = i
		}
	}
	return checkpoint.New(repeaterClass, repeaterCheckpointVersion, state)
}

// Restore loads the live groups and restores the delegate from its nested
// checkpoint. Must be called on a fresh instance; in-flight groups finish
// exactly as if the process had not restarted.
func (r *Repeater) Restore(cp *checkpoint.Checkpoint) error {
	start := time.Now()
	err := r.restore(cp)
	r.metrics.RecordRestore(time.Since(start), err)
	return err
}

func (r *Repeater) restore(cp *checkpoint.Checkpoint) error {
	if r.used {
		return ErrNotFresh
	}

	var state repeaterState
	if err := cp.Decode(repeaterClass, repeaterCheckpointVersion, &state); err != nil {
		return err
	}
	if state.Repeat != r.repeat {
		return fmt.Errorf("checkpoint repeat count %d does not match configured %d", state.Repeat, r.repeat)
	}
	if state.Delegate == nil {
		return fmt.Errorf("checkpoint is missing the delegate state")
	}
	if state.Open >= len(state.Groups) {
		return fmt.Errorf("checkpoint open group index %d out of range", state.Open)
	}

	if err := r.delegate.Restore(state.Delegate); err != nil {
		return err
	}

	r.live = state.Groups
	r.groups = make(map[string]*repeatGroup)
	for _, g := range r.live {
		for _, id := range g.Members {
			if _, ok := r.groups[id]; ok {
				return fmt.Errorf("checkpoint assigns trial %q to multiple groups", id)
			}
			r.groups[id] = g
		}
	}
	r.open = nil
	if state.Open >= 0 {
		r.open = r.live[state.Open]
	}
	return nil
}
