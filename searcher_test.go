package tunego

import (
	"github.com/hupe1980/tunego/checkpoint"
	"github.com/hupe1980/tunego/param"
)

// stubSearcher is a scripted delegate for wrapper tests. It hands out a
// fixed list of configurations in order, then reports no suggestion, and
// records every call it receives.
type stubSearcher struct {
	metric  string
	mode    Mode
	configs []param.Configuration
	next    int

	suggested   []string
	results     []stubResult
	completions []stubCompletion

	suggestErr  error
	completeErr error
}

type stubResult struct {
	trialID string
	metrics Metrics
}

type stubCompletion struct {
	trialID string
	metrics Metrics
	failed  bool
}

func newStubSearcher(configs ...param.Configuration) *stubSearcher {
	return &stubSearcher{metric: "loss", mode: ModeMin, configs: configs}
}

func (s *stubSearcher) Metric() string {
	if s.metric == "" {
		return "loss"
	}
	return s.metric
}

func (s *stubSearcher) Mode() Mode { return s.mode }

func (s *stubSearcher) Suggest(trialID string) (param.Configuration, error) {
	if s.suggestErr != nil {
		return nil, s.suggestErr
	}
	if s.next >= len(s.configs) {
		return nil, nil
	}
	cfg := s.configs[s.next]
	s.next++
	s.suggested = append(s.suggested, trialID)
	return cfg, nil
}

func (s *stubSearcher) OnTrialResult(trialID string, metrics Metrics) error {
	s.results = append(s.results, stubResult{trialID: trialID, metrics: metrics.Clone()})
	return nil
}

func (s *stubSearcher) OnTrialComplete(trialID string, metrics Metrics, failed bool) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completions = append(s.completions, stubCompletion{trialID: trialID, metrics: metrics.Clone(), failed: failed})
	return nil
}

type stubState struct {
	Next int `json:"next"`
}

func (s *stubSearcher) Save() (*checkpoint.Checkpoint, error) {
	return checkpoint.New("stub", 1, stubState{Next: s.next})
}

func (s *stubSearcher) Restore(cp *checkpoint.Checkpoint) error {
	var state stubState
	if err := cp.Decode("stub", 1, &state); err != nil {
		return err
	}
	s.next = state.Next
	return nil
}

// cfg is a shorthand for single-parameter test configurations.
func cfg(name string, v float64) param.Configuration {
	return param.Configuration{name: param.Float(v)}
}
