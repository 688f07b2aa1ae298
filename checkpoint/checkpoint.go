// Package checkpoint models opaque, versioned snapshots of searcher state.
//
// A Checkpoint is a tagged envelope: the searcher class that produced it, a
// schema version, and an encoded payload. Wrapping searchers nest their
// delegate's envelope inside their own payload without inspecting it, so
// arbitrary decorator stacks persist and restore transparently.
//
// Persistence is explicit: the embedding scheduler decides when to write a
// checkpoint and where. Nothing in this package runs in the background.
package checkpoint

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/tunego/codec"
)

// ErrClassMismatch indicates a checkpoint restored into the wrong searcher
// class.
type ErrClassMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrClassMismatch) Error() string {
	return fmt.Sprintf("checkpoint class mismatch: expected %q, got %q", e.Expected, e.Actual)
}

// ErrVersionMismatch indicates a checkpoint whose schema version is not
// understood by the running searcher class.
type ErrVersionMismatch struct {
	Class    string
	Expected uint32
	Actual   uint32
}

func (e *ErrVersionMismatch) Error() string {
	return fmt.Sprintf("checkpoint version mismatch for %q: expected %d, got %d", e.Class, e.Expected, e.Actual)
}

// Checkpoint is an opaque, versioned snapshot of a searcher's internal
// state.
//
// The payload schema is private to the producing class; only class identity
// and version are inspected by anyone else.
type Checkpoint struct {
	Class   string          `json:"class"`
	Version uint32          `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// New encodes payload with the default codec and wraps it in an envelope.
func New(class string, version uint32, payload any) (*Checkpoint, error) {
	return NewWithCodec(class, version, payload, codec.Default)
}

// NewWithCodec encodes payload with an explicit codec.
func NewWithCodec(class string, version uint32, payload any, c codec.Codec) (*Checkpoint, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s checkpoint payload: %w", class, err)
	}
	return &Checkpoint{Class: class, Version: version, Payload: data}, nil
}

// Decode verifies the envelope against the expected class and version, then
// decodes the payload into v.
func (c *Checkpoint) Decode(class string, version uint32, v any) error {
	return c.DecodeWithCodec(class, version, v, codec.Default)
}

// DecodeWithCodec is Decode with an explicit codec.
func (c *Checkpoint) DecodeWithCodec(class string, version uint32, v any, cd codec.Codec) error {
	if c.Class != class {
		return &ErrClassMismatch{Expected: class, Actual: c.Class}
	}
	if c.Version != version {
		return &ErrVersionMismatch{Class: class, Expected: version, Actual: c.Version}
	}
	if cd == nil {
		cd = codec.Default
	}
	if err := cd.Unmarshal(c.Payload, v); err != nil {
		return fmt.Errorf("decode %s checkpoint payload: %w", class, err)
	}
	return nil
}
