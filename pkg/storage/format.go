package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// ArtifactFormat identifies the artifact layout. Artifacts carrying any
	// other value are rejected as corrupt.
	ArtifactFormat = "hippodb/1"

	// Magic bytes to identify the packed file format
	MagicBytes = "HIPO"
	// Current packed format version
	FormatVersion = 1

	JSONExtension   = ".json"
	PackedExtension = ".hdb"
)

// Artifact is the on-disk representation of one collection. Documents are
// kept in insertion order.
type Artifact struct {
	Format    string                   `json:"format" msgpack:"format"`
	Name      string                   `json:"name" msgpack:"name"`
	Indexes   []string                 `json:"indexes,omitempty" msgpack:"indexes,omitempty"`
	Documents []map[string]interface{} `json:"documents" msgpack:"documents"`
}

// Codec encodes and decodes collection artifacts.
type Codec interface {
	Name() string
	Extension() string
	Encode(w io.Writer, art *Artifact) error
	Decode(r io.Reader) (*Artifact, error)
}

// JSONCodec stores artifacts as a single JSON object.
type JSONCodec struct{}

func (JSONCodec) Name() string      { return "json" }
func (JSONCodec) Extension() string { return JSONExtension }

func (JSONCodec) Encode(w io.Writer, art *Artifact) error {
	return json.NewEncoder(w).Encode(art)
}

func (JSONCodec) Decode(r io.Reader) (*Artifact, error) {
	var art Artifact
	if err := json.NewDecoder(r).Decode(&art); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return &art, nil
}

// Compression selects the block compression of a packed artifact. It is
// recorded in the header flags, so files written with one setting can be
// read by an engine configured with another.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// ParseCompression maps a flag value to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	case "none", "":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// FileHeader represents the header of a packed artifact
type FileHeader struct {
	Magic    [4]byte // "HIPO"
	Version  uint8   // Format version
	Flags    uint8   // Compression
	Reserved [2]byte // Reserved for future use
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, compression Compression) error {
	header := FileHeader{
		Magic:    [4]byte{'H', 'I', 'P', 'O'},
		Version:  FormatVersion,
		Flags:    uint8(compression),
		Reserved: [2]byte{0, 0},
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Validate magic bytes
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %q", MagicBytes, string(header.Magic[:]))
	}

	// Validate version
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	if Compression(header.Flags) > CompressionZstd {
		return nil, fmt.Errorf("unknown compression flag: %d", header.Flags)
	}

	return &header, nil
}

// PackedCodec stores artifacts as a header followed by a MessagePack body,
// optionally compressed.
type PackedCodec struct {
	Compression Compression
}

func (c PackedCodec) Name() string      { return "packed+" + c.Compression.String() }
func (c PackedCodec) Extension() string { return PackedExtension }

func (c PackedCodec) Encode(w io.Writer, art *Artifact) error {
	if err := WriteHeader(w, c.Compression); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var body io.WriteCloser
	switch c.Compression {
	case CompressionLZ4:
		body = lz4.NewWriter(w)
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		body = enc
	default:
		body = nopWriteCloser{w}
	}

	if err := msgpack.NewEncoder(body).Encode(art); err != nil {
		body.Close()
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	if err := body.Close(); err != nil {
		return fmt.Errorf("failed to finish compressed stream: %w", err)
	}
	return nil
}

func (c PackedCodec) Decode(r io.Reader) (*Artifact, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	switch Compression(header.Flags) {
	case CompressionLZ4:
		body = lz4.NewReader(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		body = dec
	default:
		body = r
	}

	var art Artifact
	if err := msgpack.NewDecoder(body).Decode(&art); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return &art, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// CodecFor returns the codec for a format name ("json" or "packed").
func CodecFor(format string, compression Compression) (Codec, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return JSONCodec{}, nil
	case "packed":
		return PackedCodec{Compression: compression}, nil
	default:
		return nil, fmt.Errorf("unknown storage format %q", format)
	}
}
