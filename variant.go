package tunego

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/hupe1980/tunego/checkpoint"
	"github.com/hupe1980/tunego/param"
)

const (
	variantClass             = "variant"
	variantCheckpointVersion = 1
)

// VariantOptions contains configuration for the VariantGenerator.
type VariantOptions struct {
	// Metric is the target metric name. The generator carries no model, but
	// the name travels with it so wrappers and adapters above it agree on
	// the target. Default: "loss".
	Metric string

	// Mode is the optimization direction. Default: ModeMin.
	Mode Mode

	// Seed fixes the random stream for reproducible sampling. When nil, a
	// time-based seed is used and exact reproduction across constructions
	// is not guaranteed (checkpoint restore still is).
	Seed *int64

	// MaxTrials caps the total number of suggestions. 0 means no cap:
	// spaces with random axes then never exhaust, while purely enumerated
	// spaces still exhaust after one full grid pass.
	MaxTrials int

	// Logger is the structured logger for operation tracing.
	Logger *Logger

	// Metrics is the collector for operational metrics.
	Metrics MetricsCollector
}

// VariantGenerator deterministically expands a search space into concrete
// configurations: grid axes are enumerated as their full Cartesian product
// in declaration order (outermost axis varying slowest), random axes are
// freshly sampled for each suggestion.
//
// Purely enumerated spaces exhaust after one full pass and return the
// no-suggestion sentinel thereafter. Spaces containing random axes cycle the
// grid with fresh random draws and never exhaust unless MaxTrials is set.
//
// The generator carries no optimization model: trial results and
// completions only validate trial identity.
type VariantGenerator struct {
	metric    string
	mode      Mode
	space     *param.Space
	maxTrials int
	logger    *Logger
	metrics   MetricsCollector

	src    *rand.PCG
	rng    *rand.Rand
	grid   []param.GridEntry
	cursor []int
	done   bool
	issued int

	known     map[string]struct{}
	completed map[string]struct{}
	used      bool
}

var _ Searcher = (*VariantGenerator)(nil)

// NewVariantGenerator creates a VariantGenerator over the given space.
func NewVariantGenerator(space *param.Space, optFns ...func(*VariantOptions)) (*VariantGenerator, error) {
	opts := VariantOptions{
		Metric:  "loss",
		Mode:    ModeMin,
		Logger:  NoopLogger(),
		Metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := space.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxTrials < 0 {
		return nil, fmt.Errorf("max trials must not be negative: %d", opts.MaxTrials)
	}

	var seed1, seed2 uint64
	if opts.Seed != nil {
		seed1 = uint64(*opts.Seed)
		seed2 = uint64(*opts.Seed) ^ 0x9E3779B97F4A7C15
	} else {
		seed1 = uint64(time.Now().UnixNano())
		seed2 = rand.Uint64()
	}
	src := rand.NewPCG(seed1, seed2)

	grid := space.GridEntries()

	return &VariantGenerator{
		metric:    opts.Metric,
		mode:      opts.Mode,
		space:     space,
		maxTrials: opts.MaxTrials,
		logger:    opts.Logger.WithSearcher(variantClass),
		metrics:   opts.Metrics,
		src:       src,
		rng:       rand.New(src),
		grid:      grid,
		cursor:    make([]int, len(grid)),
		known:     make(map[string]struct{}),
		completed: make(map[string]struct{}),
	}, nil
}

// Metric returns the target metric name.
func (v *VariantGenerator) Metric() string { return v.metric }

// Mode returns the optimization direction.
func (v *VariantGenerator) Mode() Mode { return v.mode }

// Suggest produces the next configuration, or nil once the space is
// exhausted or the trial cap is reached.
func (v *VariantGenerator) Suggest(trialID string) (param.Configuration, error) {
	start := time.Now()
	cfg, err := v.suggest(trialID)
	v.metrics.RecordSuggest(time.Since(start), cfg != nil, err)
	v.logger.LogSuggest(trialID, cfg != nil, err)
	return cfg, err
}

func (v *VariantGenerator) suggest(trialID string) (param.Configuration, error) {
	if _, ok := v.known[trialID]; ok {
		return nil, &ErrDuplicateTrial{TrialID: trialID}
	}
	v.used = true

	if v.done {
		return nil, nil
	}
	if v.maxTrials > 0 && v.issued >= v.maxTrials {
		return nil, nil
	}

	cfg := v.space.Sample(v.rng)
	for i, e := range v.grid {
		param.SetPath(cfg, e.Path, e.Values[v.cursor[i]])
	}
	v.advanceCursor()

	v.issued++
	v.known[trialID] = struct{}{}

	return cfg, nil
}

// advanceCursor increments the mixed-radix grid cursor, innermost axis
// fastest. A full wrap-around exhausts purely enumerated spaces.
func (v *VariantGenerator) advanceCursor() {
	for i := len(v.cursor) - 1; i >= 0; i-- {
		v.cursor[i]++
		if v.cursor[i] < len(v.grid[i].Values) {
			return
		}
		v.cursor[i] = 0
	}
	// Wrapped past the outermost axis: one full pass finished.
	if !v.space.HasRandom() {
		v.done = true
	}
}

// OnTrialResult validates the trial identity; the generator has no model to
// feed intermediate results into.
func (v *VariantGenerator) OnTrialResult(trialID string, _ Metrics) error {
	if _, ok := v.known[trialID]; !ok {
		return &ErrUnknownTrial{TrialID: trialID}
	}
	return nil
}

// OnTrialComplete validates the trial identity and records the completion;
// metrics and failure state do not influence future suggestions.
func (v *VariantGenerator) OnTrialComplete(trialID string, _ Metrics, failed bool) error {
	var err error
	switch {
	case !v.has(trialID):
		err = &ErrUnknownTrial{TrialID: trialID}
	case v.isCompleted(trialID):
		err = &ErrDuplicateTrial{TrialID: trialID}
	default:
		v.completed[trialID] = struct{}{}
	}
	v.metrics.RecordComplete(failed, err)
	v.logger.LogComplete(trialID, failed, err)
	return err
}

func (v *VariantGenerator) has(trialID string) bool {
	_, ok := v.known[trialID]
	return ok
}

func (v *VariantGenerator) isCompleted(trialID string) bool {
	_, ok := v.completed[trialID]
	return ok
}

type variantState struct {
	Metric    string   `json:"metric"`
	Mode      uint8    `json:"mode"`
	RNG       []byte   `json:"rng"`
	Cursor    []int    `json:"cursor"`
	Done      bool     `json:"done"`
	Issued    int      `json:"issued"`
	MaxTrials int      `json:"max_trials"`
	Known     []string `json:"known"`
	Completed []string `json:"completed"`
}

// Save serializes the generation cursor and random state. Together they make
// the post-restore suggestion stream bit-identical to the saved one.
func (v *VariantGenerator) Save() (*checkpoint.Checkpoint, error) {
	start := time.Now()
	cp, err := v.save()
	v.metrics.RecordSave(time.Since(start), err)
	return cp, err
}

func (v *VariantGenerator) save() (*checkpoint.Checkpoint, error) {
	rngState, err := v.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal rng state: %w", err)
	}
	state := variantState{
		Metric:    v.metric,
		Mode:      uint8(v.mode),
		RNG:       rngState,
		Cursor:    append([]int(nil), v.cursor...),
		Done:      v.done,
		Issued:    v.issued,
		MaxTrials: v.maxTrials,
		Known:     sortedKeys(v.known),
		Completed: sortedKeys(v.completed),
	}
	return checkpoint.New(variantClass, variantCheckpointVersion, state)
}

// Restore loads a checkpoint produced by a VariantGenerator over the same
// space. Must be called on a fresh instance.
func (v *VariantGenerator) Restore(cp *checkpoint.Checkpoint) error {
	start := time.Now()
	err := v.restore(cp)
	v.metrics.RecordRestore(time.Since(start), err)
	return err
}

func (v *VariantGenerator) restore(cp *checkpoint.Checkpoint) error {
	if v.used {
		return ErrNotFresh
	}

	var state variantState
	if err := cp.Decode(variantClass, variantCheckpointVersion, &state); err != nil {
		return err
	}
	if len(state.Cursor) != len(v.grid) {
		return fmt.Errorf("checkpoint grid cursor has %d axes, space has %d", len(state.Cursor), len(v.grid))
	}
	for i, c := range state.Cursor {
		if c < 0 || c >= len(v.grid[i].Values) {
			return fmt.Errorf("checkpoint grid cursor out of range on axis %d", i)
		}
	}
	if err := v.src.UnmarshalBinary(state.RNG); err != nil {
		return fmt.Errorf("unmarshal rng state: %w", err)
	}

	v.metric = state.Metric
	v.mode = Mode(state.Mode)
	v.cursor = state.Cursor
	v.done = state.Done
	v.issued = state.Issued
	v.maxTrials = state.MaxTrials
	v.known = make(map[string]struct{}, len(state.Known))
	for _, id := range state.Known {
		v.known[id] = struct{}{}
	}
	v.completed = make(map[string]struct{}, len(state.Completed))
	for _, id := range state.Completed {
		v.completed[id] = struct{}{}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
