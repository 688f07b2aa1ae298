package param

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
	// KindConfig represents a nested configuration.
	KindConfig
)

// Value is a small typed value assigned to a search-space parameter.
//
// The representation avoids reflection and fmt-based stringification so that
// configurations stay cheap to compare, hash and persist.
//
// NOTE: This is also used for checkpoint payloads; keep it stable.
type Value struct {
	Kind Kind          `json:"k"`
	I64  int64         `json:"i,omitempty"`
	F64  float64       `json:"f,omitempty"`
	S    string        `json:"s,omitempty"`
	B    bool          `json:"b,omitempty"`
	C    Configuration `json:"c,omitempty"`
}

// Int returns an integer Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Nested returns a Value holding a nested configuration.
func Nested(c Configuration) Value { return Value{Kind: KindConfig, C: c} }

// Float64 returns the value as float64 for numeric kinds, else 0.
func (v Value) Float64() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I64)
	case KindFloat:
		return v.F64
	default:
		return 0
	}
}

// Equal reports whether two values are identical in kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		return v.F64 == o.F64 || (math.IsNaN(v.F64) && math.IsNaN(o.F64))
	case KindString:
		return v.S == o.S
	case KindBool:
		return v.B == o.B
	case KindConfig:
		return v.C.Equal(o.C)
	default:
		return true
	}
}

// Key returns a stable string representation for use in maps.
//
// It must remain stable across versions because it participates in persisted
// checkpoint payloads.
func (v Value) Key() string {
	switch v.Kind {
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindString:
		return "s:" + v.S
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindConfig:
		return "c:{" + v.C.Key() + "}"
	default:
		return "invalid"
	}
}

// Configuration is a concrete assignment of values to search-space
// parameters. A Configuration is immutable by convention once issued by a
// Searcher; callers must not mutate it.
//
// A nil Configuration is the "no suggestion" sentinel.
type Configuration map[string]Value

// Equal reports whether two configurations assign identical values to
// identical parameter names.
func (c Configuration) Equal(o Configuration) bool {
	if len(c) != len(o) {
		return false
	}
	for k, v := range c {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the configuration.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}
	out := make(Configuration, len(c))
	for k, v := range c {
		if v.Kind == KindConfig {
			v.C = v.C.Clone()
		}
		out[k] = v
	}
	return out
}

// Key returns a stable string representation of the configuration, with
// parameter names in sorted order.
func (c Configuration) Key() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(c[name].Key())
	}
	return sb.String()
}
