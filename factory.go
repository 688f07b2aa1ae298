package tunego

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/tunego/param"
)

// AlgorithmOptions is the uniform option set every registered searcher
// constructor accepts. Algorithm-specific options travel in Extra.
type AlgorithmOptions struct {
	// Metric is the target metric name. Default: "loss".
	Metric string

	// Mode is the optimization direction. Default: ModeMin.
	Mode Mode

	// Space is the declarative search space. Adapter constructors translate
	// it once into their engine's native format.
	Space *param.Space

	// Seed fixes random streams for reproducibility, where the algorithm
	// supports it.
	Seed *int64

	// MaxTrials caps the total number of suggestions. 0 means no cap.
	MaxTrials int

	// Logger is the structured logger for operation tracing.
	Logger *Logger

	// Metrics is the collector for operational metrics.
	Metrics MetricsCollector

	// Extra holds algorithm-specific passthrough options, keyed by name.
	Extra map[string]any
}

// Constructor builds a Searcher from uniform options.
type Constructor func(opts AlgorithmOptions) (Searcher, error)

// Factory is a named-constructor registry for search algorithms. It lets
// configuration-driven callers build a searcher from a string without
// linking against each adapter's constructor signature.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewFactory creates a Factory with the built-in algorithms registered:
// "variant" with its aliases "grid" and "random" (all VariantGenerator; the
// space's axes decide whether it enumerates, samples, or both).
func NewFactory() *Factory {
	f := &Factory{ctors: make(map[string]Constructor)}
	for _, name := range []string{"variant", "grid", "random"} {
		f.ctors[name] = newVariantFromOptions
	}
	return f
}

func newVariantFromOptions(opts AlgorithmOptions) (Searcher, error) {
	if opts.Space == nil {
		return nil, fmt.Errorf("variant generator requires a search space")
	}
	return NewVariantGenerator(opts.Space, func(o *VariantOptions) {
		if opts.Metric != "" {
			o.Metric = opts.Metric
		}
		o.Mode = opts.Mode
		o.Seed = opts.Seed
		o.MaxTrials = opts.MaxTrials
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
		if opts.Metrics != nil {
			o.Metrics = opts.Metrics
		}
	})
}

// Register adds a constructor under name. Registering an already-taken name
// is an error; adapters should pick distinctive names.
func (f *Factory) Register(name string, ctor Constructor) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.ctors[name]; ok {
		return fmt.Errorf("search algorithm %q already registered", name)
	}
	f.ctors[name] = ctor
	return nil
}

// Names returns the registered algorithm names, sorted.
func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.ctors))
	for name := range f.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named searcher. Unknown names yield ErrUnknownAlgorithm
// listing the registered names.
func (f *Factory) New(name string, opts AlgorithmOptions) (Searcher, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &ErrUnknownAlgorithm{Name: name, Known: f.Names()}
	}
	return ctor(opts)
}

// defaultFactory backs the package-level registry functions.
var defaultFactory = NewFactory()

// Register adds a constructor to the default factory.
func Register(name string, ctor Constructor) error {
	return defaultFactory.Register(name, ctor)
}

// NewSearcher builds a named searcher from the default factory.
func NewSearcher(name string, opts AlgorithmOptions) (Searcher, error) {
	return defaultFactory.New(name, opts)
}
