// Package tunego orchestrates hyperparameter search for experiment runners.
//
// Tunego decides which parameter configuration to try next, mediates how
// many such decisions may be in flight concurrently, and optionally repeats
// a configuration multiple times to average out noisy evaluation results.
// It does not run training code: an external trial scheduler drives the
// Searcher contract and reports results back.
//
// # Quick Start
//
//	space := param.NewSpace().
//	    LogUniform("lr", 1e-4, 1e-1).
//	    Grid("batch_size", param.Span(16, 64, 16)...).
//	    Choice("optimizer", param.String("adam"), param.String("sgd"))
//
//	s, _ := tunego.Random(space).
//	    Metric("val_loss").
//	    Minimize().
//	    Seed(42).
//	    MaxConcurrent(4).
//	    Repeat(3).
//	    Build()
//
//	cfg, _ := s.Suggest("trial-0")   // nil means: nothing available yet, poll again
//	// ... run the trial ...
//	_ = s.OnTrialComplete("trial-0", tunego.Metrics{"val_loss": 0.42}, false)
//
// # The Searcher Contract
//
// Every strategy - the built-in VariantGenerator, adapters around external
// optimization engines, and the control wrappers - implements Searcher:
// non-blocking Suggest, out-of-order tolerant completion callbacks, and
// opaque versioned checkpointing. Wrappers hold a delegate and compose by
// decoration, so Repeater(ConcurrencyLimiter(adapter)) nests without
// combinatorial subclassing.
//
// # Checkpointing
//
// Save returns an opaque versioned envelope; Restore consumes it on a
// freshly constructed instance of the same class. Persistence is explicit
// and scheduler-driven:
//
//	cp, _ := s.Save()
//	st, _ := store.NewLocalStore("./checkpoints")
//	_ = checkpoint.Write(ctx, st, "experiment-7", cp)
//
// The checkpoint and store packages also provide zstd/lz4 compression and
// S3/MinIO-backed stores for durable experiment state.
package tunego
