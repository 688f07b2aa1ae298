package checkpoint

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor compresses encoded checkpoint blobs.
// Implementations must be safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

// CompressorByName returns a built-in compressor by its stable name.
//
// Persisted blobs store the compressor name in their header so the matching
// implementation can be selected on load.
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "none":
		return None{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// None is the identity compressor.
type None struct{}

// Compress returns the data unchanged.
func (None) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns the data unchanged.
func (None) Decompress(data []byte) ([]byte, error) { return data, nil }

// Name returns the unique name of the compressor ("none").
func (None) Name() string { return "none" }

// Zstd compresses with klauspost zstd at the default level. Checkpoint
// payloads are JSON-heavy and typically shrink 2-3x.
type Zstd struct{}

// Compress encodes the data as a zstd frame.
func (Zstd) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// Decompress decodes a zstd frame.
func (Zstd) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Name returns the unique name of the compressor ("zstd").
func (Zstd) Name() string { return "zstd" }

// LZ4 compresses with pierrec lz4 framing. Faster than zstd with a lower
// ratio; useful when checkpoints are written on a tight cadence.
type LZ4 struct{}

// Compress encodes the data as an lz4 frame.
func (LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decodes an lz4 frame.
func (LZ4) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	return io.ReadAll(r)
}

// Name returns the unique name of the compressor ("lz4").
func (LZ4) Name() string { return "lz4" }
