// Package tunego provides a uniform abstraction over hyperparameter search
// strategies.
//
// This file implements the fluent builder API for composing searcher stacks.
// Builders are immutable - each method returns a new builder with the
// updated configuration.
package tunego

import (
	"github.com/hupe1980/tunego/param"
)

// Random creates a builder for a sampling VariantGenerator over the given
// space. Grid axes in the space are still enumerated exhaustively.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents accidental
// state sharing.
//
// Example:
//
//	s, err := tunego.Random(space).
//	    Metric("val_loss").
//	    Minimize().
//	    Seed(42).
//	    MaxConcurrent(4).
//	    Repeat(3).
//	    Build()
func Random(space *param.Space) Builder {
	return Builder{algorithm: "random", space: space, metric: "loss"}
}

// Grid creates a builder for an enumerating VariantGenerator over the given
// space. Identical to Random except for the registered algorithm name; the
// space's axes decide what is enumerated and what is sampled.
func Grid(space *param.Space) Builder {
	return Builder{algorithm: "grid", space: space, metric: "loss"}
}

// Algorithm creates a builder for a named algorithm from the default
// factory, with algorithm-specific passthrough options.
func Algorithm(name string, extra map[string]any) Builder {
	return Builder{algorithm: name, extra: extra, metric: "loss"}
}

// Builder is an immutable fluent builder for composing a searcher stack:
// a base strategy, optionally capped by a ConcurrencyLimiter, optionally
// wrapped by a Repeater (outermost).
type Builder struct {
	algorithm     string
	space         *param.Space
	metric        string
	mode          Mode
	seed          *int64
	maxTrials     int
	maxConcurrent int
	repeat        int
	logger        *Logger
	metrics       MetricsCollector
	extra         map[string]any
	factory       *Factory
}

// Space sets the declarative search space.
func (b Builder) Space(space *param.Space) Builder {
	b.space = space
	return b
}

// Metric sets the target metric name.
// Default: "loss".
func (b Builder) Metric(name string) Builder {
	b.metric = name
	return b
}

// Minimize sets the optimization direction to minimize the target metric.
func (b Builder) Minimize() Builder {
	b.mode = ModeMin
	return b
}

// Maximize sets the optimization direction to maximize the target metric.
func (b Builder) Maximize() Builder {
	b.mode = ModeMax
	return b
}

// Seed fixes the random stream for deterministic sampling.
// If not set, a time-based seed is used.
func (b Builder) Seed(seed int64) Builder {
	b.seed = &seed
	return b
}

// MaxTrials caps the total number of suggestions.
// Default: 0 (no cap).
func (b Builder) MaxTrials(n int) Builder {
	b.maxTrials = n
	return b
}

// MaxConcurrent caps the number of outstanding suggestions by wrapping the
// base strategy in a ConcurrencyLimiter.
// Default: 0 (no cap).
func (b Builder) MaxConcurrent(n int) Builder {
	b.maxConcurrent = n
	return b
}

// Repeat evaluates every configuration n times and forwards only the mean
// of the target metric, by wrapping the stack in a Repeater.
// Default: 1 (no repetition; the Repeater wrapper is omitted since a
// single-member group is a transparent passthrough).
func (b Builder) Repeat(n int) Builder {
	b.repeat = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b Builder) Logger(l *Logger) Builder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	b.metrics = mc
	return b
}

// Factory sets the algorithm registry to build from.
// Default: the package default factory.
func (b Builder) Factory(f *Factory) Builder {
	b.factory = f
	return b
}

// Build creates the composed searcher stack:
// Repeater(ConcurrencyLimiter(base)), with wrappers omitted when not
// configured.
func (b Builder) Build() (Searcher, error) {
	factory := b.factory
	if factory == nil {
		factory = defaultFactory
	}

	s, err := factory.New(b.algorithm, AlgorithmOptions{
		Metric:    b.metric,
		Mode:      b.mode,
		Space:     b.space,
		Seed:      b.seed,
		MaxTrials: b.maxTrials,
		Logger:    b.logger,
		Metrics:   b.metrics,
		Extra:     b.extra,
	})
	if err != nil {
		return nil, err
	}

	if b.maxConcurrent > 0 {
		s, err = NewConcurrencyLimiter(s, b.maxConcurrent, func(o *LimiterOptions) {
			if b.logger != nil {
				o.Logger = b.logger
			}
			if b.metrics != nil {
				o.Metrics = b.metrics
			}
		})
		if err != nil {
			return nil, err
		}
	}

	if b.repeat > 1 {
		s, err = NewRepeater(s, b.repeat, func(o *RepeaterOptions) {
			if b.logger != nil {
				o.Logger = b.logger
			}
			if b.metrics != nil {
				o.Metrics = b.metrics
			}
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustBuild creates the searcher stack, panicking on error.
func (b Builder) MustBuild() Searcher {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
