package checkpoint

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/tunego/codec"
	"github.com/hupe1980/tunego/store"
)

const (
	// blobMagic identifies tunego checkpoint blobs (ASCII: "TCK1").
	blobMagic = 0x54434B31
	// blobFormatVersion is the current blob layout version.
	blobFormatVersion = 1
)

var (
	// ErrInvalidMagic is returned when a blob does not start with the
	// checkpoint magic number.
	ErrInvalidMagic = errors.New("invalid checkpoint magic number")
	// ErrInvalidFormat is returned when a blob header cannot be parsed.
	ErrInvalidFormat = errors.New("invalid checkpoint blob format")
	// ErrUnsupportedFormat is returned for a blob layout version this
	// library does not understand.
	ErrUnsupportedFormat = errors.New("unsupported checkpoint blob version")
	// ErrChecksum is returned when the payload checksum does not match.
	ErrChecksum = errors.New("checkpoint payload checksum mismatch")
	// ErrUnknownCodec is returned when a blob names a codec this build does
	// not provide.
	ErrUnknownCodec = errors.New("unknown checkpoint codec")
	// ErrUnknownCompressor is returned when a blob names a compressor this
	// build does not provide.
	ErrUnknownCompressor = errors.New("unknown checkpoint compressor")
)

// BlobOptions configure how checkpoint blobs are written.
type BlobOptions struct {
	// Codec encodes the envelope. Defaults to codec.Default. The codec name
	// is recorded in the blob header.
	Codec codec.Codec

	// Compressor compresses the encoded envelope. Defaults to Zstd. The
	// compressor name is recorded in the blob header.
	Compressor Compressor
}

func applyBlobOptions(optFns []func(*BlobOptions)) BlobOptions {
	opts := BlobOptions{
		Codec:      codec.Default,
		Compressor: Zstd{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Compressor == nil {
		opts.Compressor = None{}
	}
	return opts
}

// Write encodes, compresses and stores a checkpoint under name.
//
// The blob is self-describing: a fixed header records the codec and
// compressor names, so Read needs no out-of-band configuration.
func Write(ctx context.Context, s store.Store, name string, cp *Checkpoint, optFns ...func(*BlobOptions)) error {
	opts := applyBlobOptions(optFns)

	encoded, err := opts.Codec.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint envelope: %w", err)
	}
	payload, err := opts.Compressor.Compress(encoded)
	if err != nil {
		return fmt.Errorf("compress checkpoint: %w", err)
	}

	blob := appendHeader(nil, opts.Codec.Name(), opts.Compressor.Name(), payload)
	blob = append(blob, payload...)

	return s.Put(ctx, name, blob)
}

// Read loads, decompresses and decodes the checkpoint stored under name.
func Read(ctx context.Context, s store.Store, name string) (*Checkpoint, error) {
	blob, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	codecName, compName, payload, err := splitHeader(blob)
	if err != nil {
		return nil, err
	}

	comp, ok := CompressorByName(compName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompressor, compName)
	}
	cd, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, codecName)
	}

	encoded, err := comp.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("decompress checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := cd.Unmarshal(encoded, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint envelope: %w", err)
	}
	return &cp, nil
}

// appendHeader writes the fixed blob header:
//
//	magic(4) | version(4) | crc32(payload)(4) | len(codec)(1) | codec |
//	len(compressor)(1) | compressor
func appendHeader(dst []byte, codecName, compName string, payload []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, blobMagic)
	dst = binary.LittleEndian.AppendUint32(dst, blobFormatVersion)
	dst = binary.LittleEndian.AppendUint32(dst, crc32.ChecksumIEEE(payload))
	dst = append(dst, byte(len(codecName)))
	dst = append(dst, codecName...)
	dst = append(dst, byte(len(compName)))
	dst = append(dst, compName...)
	return dst
}

func splitHeader(blob []byte) (codecName, compName string, payload []byte, err error) {
	if len(blob) < 13 {
		return "", "", nil, ErrInvalidFormat
	}
	if binary.LittleEndian.Uint32(blob[0:4]) != blobMagic {
		return "", "", nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(blob[4:8]); v != blobFormatVersion {
		return "", "", nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, v)
	}
	sum := binary.LittleEndian.Uint32(blob[8:12])

	rest := blob[12:]
	codecName, rest, err = readString(rest)
	if err != nil {
		return "", "", nil, err
	}
	compName, rest, err = readString(rest)
	if err != nil {
		return "", "", nil, err
	}

	if crc32.ChecksumIEEE(rest) != sum {
		return "", "", nil, ErrChecksum
	}
	return codecName, compName, rest, nil
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 1 {
		return "", nil, ErrInvalidFormat
	}
	n := int(b[0])
	if len(b) < 1+n {
		return "", nil, ErrInvalidFormat
	}
	return string(b[1 : 1+n]), b[1+n:], nil
}
