package param

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/exp/constraints"
)

type axisKind uint8

const (
	axisInvalid axisKind = iota
	axisUniform
	axisLogUniform
	axisUniformInt
	axisChoice
	axisGrid
	axisSubSpace
)

// ErrEmptySpace is returned when a search space declares no parameters.
var ErrEmptySpace = errors.New("search space has no parameters")

// ErrDuplicateParam indicates a parameter name declared more than once.
type ErrDuplicateParam struct {
	Name string
}

func (e *ErrDuplicateParam) Error() string {
	return fmt.Sprintf("duplicate parameter: %q", e.Name)
}

// ErrInvalidAxis indicates an axis whose sampling specification is unusable.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidAxis struct {
	Name   string
	Reason string
	cause  error
}

func (e *ErrInvalidAxis) Error() string {
	return fmt.Sprintf("invalid axis %q: %s", e.Name, e.Reason)
}

func (e *ErrInvalidAxis) Unwrap() error { return e.cause }

// Axis is the sampling specification for a single parameter: a continuous
// distribution, a discrete choice set, a grid to enumerate, or a nested
// search space.
type Axis struct {
	kind   axisKind
	min    float64
	max    float64
	imin   int64
	imax   int64
	values []Value
	space  *Space
}

// Uniform samples uniformly from [min, max).
func Uniform(min, max float64) Axis {
	return Axis{kind: axisUniform, min: min, max: max}
}

// LogUniform samples log-uniformly from [min, max). Both bounds must be
// positive.
func LogUniform(min, max float64) Axis {
	return Axis{kind: axisLogUniform, min: min, max: max}
}

// UniformInt samples an integer uniformly from [min, max] inclusive.
func UniformInt(min, max int64) Axis {
	return Axis{kind: axisUniformInt, imin: min, imax: max}
}

// Choice samples uniformly from a discrete set of values.
func Choice(values ...Value) Axis {
	return Axis{kind: axisChoice, values: values}
}

// Grid enumerates the given values exhaustively, in declaration order,
// instead of sampling them.
func Grid(values ...Value) Axis {
	return Axis{kind: axisGrid, values: values}
}

// SubSpace nests a search space under a single parameter name. The sampled
// value is a nested Configuration.
func SubSpace(s *Space) Axis {
	return Axis{kind: axisSubSpace, space: s}
}

// IsGrid reports whether the axis is enumerated rather than sampled.
func (a Axis) IsGrid() bool { return a.kind == axisGrid }

func (a Axis) validate(name string) error {
	switch a.kind {
	case axisUniform:
		if !(a.min < a.max) {
			return &ErrInvalidAxis{Name: name, Reason: fmt.Sprintf("min %v must be below max %v", a.min, a.max)}
		}
	case axisLogUniform:
		if a.min <= 0 || a.max <= 0 {
			return &ErrInvalidAxis{Name: name, Reason: "log-uniform bounds must be positive"}
		}
		if !(a.min < a.max) {
			return &ErrInvalidAxis{Name: name, Reason: fmt.Sprintf("min %v must be below max %v", a.min, a.max)}
		}
	case axisUniformInt:
		if a.imin > a.imax {
			return &ErrInvalidAxis{Name: name, Reason: fmt.Sprintf("min %d must not exceed max %d", a.imin, a.imax)}
		}
	case axisChoice, axisGrid:
		if len(a.values) == 0 {
			return &ErrInvalidAxis{Name: name, Reason: "no values declared"}
		}
	case axisSubSpace:
		if a.space == nil {
			return &ErrInvalidAxis{Name: name, Reason: "nil nested space"}
		}
		if err := a.space.Validate(); err != nil {
			return &ErrInvalidAxis{Name: name, Reason: "nested space invalid", cause: err}
		}
	default:
		return &ErrInvalidAxis{Name: name, Reason: "unknown axis kind"}
	}
	return nil
}

// sample draws a value for a non-grid axis. Grid axes are filled in by the
// enumeration cursor, not sampled.
func (a Axis) sample(rng *rand.Rand) Value {
	switch a.kind {
	case axisUniform:
		return Float(a.min + rng.Float64()*(a.max-a.min))
	case axisLogUniform:
		lo, hi := math.Log(a.min), math.Log(a.max)
		return Float(math.Exp(lo + rng.Float64()*(hi-lo)))
	case axisUniformInt:
		return Int(a.imin + rng.Int64N(a.imax-a.imin+1))
	case axisChoice:
		return a.values[rng.IntN(len(a.values))]
	case axisSubSpace:
		return Nested(a.space.Sample(rng))
	default:
		return Value{}
	}
}

// Space is an ordered mapping from parameter name to Axis. Declaration order
// is significant: grid enumeration is lexicographic over it, outer to inner.
type Space struct {
	params []spaceParam
}

type spaceParam struct {
	name string
	axis Axis
}

// NewSpace creates an empty search space.
func NewSpace() *Space {
	return &Space{}
}

// Add appends a parameter with an explicit axis.
func (s *Space) Add(name string, a Axis) *Space {
	s.params = append(s.params, spaceParam{name: name, axis: a})
	return s
}

// Uniform appends a uniformly sampled float parameter.
func (s *Space) Uniform(name string, min, max float64) *Space {
	return s.Add(name, Uniform(min, max))
}

// LogUniform appends a log-uniformly sampled float parameter.
func (s *Space) LogUniform(name string, min, max float64) *Space {
	return s.Add(name, LogUniform(min, max))
}

// UniformInt appends a uniformly sampled integer parameter.
func (s *Space) UniformInt(name string, min, max int64) *Space {
	return s.Add(name, UniformInt(min, max))
}

// Choice appends a randomly sampled discrete parameter.
func (s *Space) Choice(name string, values ...Value) *Space {
	return s.Add(name, Choice(values...))
}

// Grid appends an exhaustively enumerated parameter.
func (s *Space) Grid(name string, values ...Value) *Space {
	return s.Add(name, Grid(values...))
}

// Sub appends a nested search space.
func (s *Space) Sub(name string, nested *Space) *Space {
	return s.Add(name, SubSpace(nested))
}

// Len returns the number of declared parameters.
func (s *Space) Len() int { return len(s.params) }

// Names returns the parameter names in declaration order.
func (s *Space) Names() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.name
	}
	return names
}

// Validate checks the space for duplicate names and unusable axes,
// recursively through nested spaces.
func (s *Space) Validate() error {
	if len(s.params) == 0 {
		return ErrEmptySpace
	}
	seen := make(map[string]struct{}, len(s.params))
	for _, p := range s.params {
		if _, ok := seen[p.name]; ok {
			return &ErrDuplicateParam{Name: p.name}
		}
		seen[p.name] = struct{}{}
		if err := p.axis.validate(p.name); err != nil {
			return err
		}
	}
	return nil
}

// GridEntry is one enumerable axis of the flattened grid, addressed by its
// path through nested spaces.
type GridEntry struct {
	Path   []string
	Values []Value
}

// GridEntries flattens all grid axes, outermost declaration first, including
// those inside nested spaces.
func (s *Space) GridEntries() []GridEntry {
	return s.gridEntries(nil)
}

func (s *Space) gridEntries(prefix []string) []GridEntry {
	var entries []GridEntry
	for _, p := range s.params {
		path := append(append([]string(nil), prefix...), p.name)
		switch p.axis.kind {
		case axisGrid:
			entries = append(entries, GridEntry{Path: path, Values: p.axis.values})
		case axisSubSpace:
			entries = append(entries, p.axis.space.gridEntries(path)...)
		}
	}
	return entries
}

// GridSize returns the size of the Cartesian product over all grid axes, or
// 1 if the space has none.
func (s *Space) GridSize() int {
	size := 1
	for _, e := range s.GridEntries() {
		size *= len(e.Values)
	}
	return size
}

// HasRandom reports whether any axis (recursively) is sampled rather than
// enumerated.
func (s *Space) HasRandom() bool {
	for _, p := range s.params {
		switch p.axis.kind {
		case axisGrid:
			continue
		case axisSubSpace:
			if p.axis.space.HasRandom() {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// Sample draws one value for every non-grid axis, leaving grid axes unset.
// Nested spaces materialize as nested configurations so that grid values can
// be placed into them afterwards.
func (s *Space) Sample(rng *rand.Rand) Configuration {
	cfg := make(Configuration, len(s.params))
	for _, p := range s.params {
		if p.axis.kind == axisGrid {
			continue
		}
		cfg[p.name] = p.axis.sample(rng)
	}
	return cfg
}

// SetPath assigns a value at a (possibly nested) parameter path, creating
// intermediate nested configurations as needed. Used to place grid values
// into a sampled configuration.
func SetPath(c Configuration, path []string, v Value) {
	for len(path) > 1 {
		next, ok := c[path[0]]
		if !ok || next.Kind != KindConfig {
			next = Nested(make(Configuration))
			c[path[0]] = next
		}
		c = next.C
		path = path[1:]
	}
	c[path[0]] = v
}

// Span builds grid values over an inclusive numeric range with a fixed step.
// Handy for declaring integer or float grids:
//
//	space.Grid("batch_size", param.Span(16, 128, 16)...)
func Span[T constraints.Integer | constraints.Float](from, to, step T) []Value {
	if step <= 0 {
		return nil
	}
	var values []Value
	switch any(from).(type) {
	case float32, float64:
		// Half-step tolerance keeps the endpoint inclusive despite float
		// accumulation error.
		for v := float64(from); v <= float64(to)+float64(step)/2; v += float64(step) {
			values = append(values, Float(v))
		}
	default:
		for v := int64(from); v <= int64(to); v += int64(step) {
			values = append(values, Int(v))
		}
	}
	return values
}
