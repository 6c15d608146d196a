package caseio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/DataDog/zstd"

	"github.com/san-kum/phaseavg/internal/field"
)

const (
	// MagicNumber starts every field file and identifies the format.
	MagicNumber = 0x70a5e1f0
	Version     = 1

	headerSize = 32

	DefaultCompressionLevel = 3

	// maxCompressionRatio bounds RawBytes/Payload. zstd RLE blocks stay
	// well below it.
	maxCompressionRatio = 1 << 16
)

// FileHeader is the fixed-size, little-endian prefix of a field file.
type FileHeader struct {
	Magic    uint32
	Version  uint16
	Kind     uint8
	Reserved uint8
	// Count is the number of entities.
	Count uint64
	// Payload is the compressed payload size in bytes.
	Payload uint64
	// RawBytes is the uncompressed payload size in bytes.
	RawBytes uint64
}

// FieldKind returns the value kind recorded in the header.
func (hd FileHeader) FieldKind() field.Kind {
	return field.Kind(hd.Kind)
}

// Encode serializes raw into the field file format. The output depends only
// on raw and level.
func Encode(raw *field.Raw, level int) ([]byte, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	payload := make([]byte, len(raw.Data)*8)
	for i, v := range raw.Data {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}

	var compressed []byte
	if len(payload) > 0 {
		var err error
		compressed, err = zstd.CompressLevel(nil, payload, level)
		if err != nil {
			return nil, fmt.Errorf("caseio: compress payload: %w", err)
		}
	}

	hd := FileHeader{
		Magic:    MagicNumber,
		Version:  Version,
		Kind:     uint8(raw.Kind),
		Count:    uint64(raw.Count),
		Payload:  uint64(len(compressed)),
		RawBytes: uint64(len(payload)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(compressed)))
	if err := binary.Write(buf, binary.LittleEndian, hd); err != nil {
		return nil, err
	}
	buf.Write(compressed)
	return buf.Bytes(), nil
}

// ReadHeader decodes and checks the header at the start of rd.
func ReadHeader(rd io.Reader) (FileHeader, error) {
	var hd FileHeader
	if err := binary.Read(rd, binary.LittleEndian, &hd); err != nil {
		return hd, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if hd.Magic != MagicNumber {
		return hd, fmt.Errorf("%w: bad magic number 0x%x", ErrCorrupt, hd.Magic)
	}
	if hd.Version != Version {
		return hd, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, hd.Version)
	}
	kind := hd.FieldKind()
	if !kind.Valid() {
		return hd, fmt.Errorf("%w: unknown kind %d", ErrCorrupt, hd.Kind)
	}
	if want := hd.Count * uint64(kind.Components()) * 8; hd.RawBytes != want {
		return hd, fmt.Errorf("%w: %d entities of %s need %d bytes, header says %d",
			ErrCorrupt, hd.Count, kind, want, hd.RawBytes)
	}
	return hd, nil
}

// Decode parses a complete field file. Scratch space comes from pool. The
// header sizes are checked against the payload before anything is allocated
// for the field itself.
func Decode(data []byte, pool *bufferPool) (*field.Raw, error) {
	hd, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	payload := data[headerSize:]
	if uint64(len(payload)) != hd.Payload {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(payload), hd.Payload)
	}
	if hd.Count > uint64(maxEntities(hd.FieldKind())) {
		return nil, fmt.Errorf("%w: entity count %d out of range", ErrCorrupt, hd.Count)
	}
	if hd.RawBytes == 0 {
		return field.NewRaw(hd.FieldKind(), int(hd.Count)), nil
	}
	if hd.Payload == 0 {
		return nil, fmt.Errorf("%w: header says %d bytes but the payload is empty", ErrCorrupt, hd.RawBytes)
	}
	if hd.RawBytes/maxCompressionRatio > hd.Payload {
		return nil, fmt.Errorf("%w: %d payload bytes cannot expand to %d", ErrCorrupt, hd.Payload, hd.RawBytes)
	}

	// An empty dst would make zstd trust the size declared in the frame.
	buf := pool.Get(int(hd.RawBytes))
	defer pool.Put(buf)

	out, err := zstd.Decompress(*buf, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrCorrupt, err)
	}
	if uint64(len(out)) != hd.RawBytes {
		return nil, fmt.Errorf("%w: decompressed %d bytes, header says %d", ErrCorrupt, len(out), hd.RawBytes)
	}

	raw := field.NewRaw(hd.FieldKind(), int(hd.Count))
	for i := range raw.Data {
		raw.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(out[i*8:]))
	}
	return raw, nil
}

// maxEntities is the largest entity count whose payload size fits in an int.
func maxEntities(kind field.Kind) int {
	return math.MaxInt / kind.Components() / 8
}
