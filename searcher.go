package tunego

import (
	"github.com/hupe1980/tunego/checkpoint"
	"github.com/hupe1980/tunego/param"
)

// Mode is the optimization direction for the target metric.
type Mode uint8

const (
	// ModeMin minimizes the target metric (loss-like).
	ModeMin Mode = iota
	// ModeMax maximizes the target metric (accuracy-like).
	ModeMax
)

// String returns "min" or "max".
func (m Mode) String() string {
	if m == ModeMax {
		return "max"
	}
	return "min"
}

// Metrics is a set of named metric values reported by a trial.
type Metrics map[string]float64

// Clone returns a copy of the metrics map.
func (m Metrics) Clone() Metrics {
	if m == nil {
		return nil
	}
	out := make(Metrics, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Searcher is the capability contract every search strategy implements,
// whether it is a native generator, an adapter around an external
// optimization engine, or a control wrapper around another Searcher.
//
// The trial scheduler drives all methods synchronously from a single control
// loop. No method may block on I/O or on an engine's long-running
// computation: when a suggestion cannot be produced right now, Suggest
// returns a nil Configuration and the scheduler polls again later.
//
// Trial identifiers are chosen by the scheduler, not by the Searcher. For a
// given identifier the scheduler calls Suggest at most once and
// OnTrialComplete at most once, in that order; violating this ordering is a
// caller error and surfaces as ErrUnknownTrial or ErrDuplicateTrial.
type Searcher interface {
	// Suggest returns a new configuration to evaluate under trialID, or nil
	// if no suggestion is currently available (exhausted space, concurrency
	// cap reached, engine not ready). A nil configuration is a normal
	// result, not an error.
	Suggest(trialID string) (param.Configuration, error)

	// OnTrialResult informs the searcher of a non-terminal report from a
	// running trial. Strategies without intermediate support treat this as
	// a no-op after validating the trial identity.
	OnTrialResult(trialID string, metrics Metrics) error

	// OnTrialComplete informs the searcher that a trial ended. When failed
	// is true, metrics are absent and the searcher penalizes or ignores the
	// trial in its model; a failed trial is a first-class outcome, never a
	// reason to crash.
	OnTrialComplete(trialID string, metrics Metrics, failed bool) error

	// Save serializes the searcher's full internal state into an opaque
	// versioned checkpoint. Wrappers nest their delegate's checkpoint
	// without inspecting it.
	Save() (*checkpoint.Checkpoint, error)

	// Restore loads a checkpoint into a freshly constructed instance of the
	// same searcher class, before any Suggest call. Suggestion behavior
	// after Restore matches the state at Save time exactly, modulo any
	// documented non-determinism of the strategy.
	Restore(cp *checkpoint.Checkpoint) error

	// Metric returns the target metric name fixed at construction.
	Metric() string

	// Mode returns the optimization direction fixed at construction.
	Mode() Mode
}
