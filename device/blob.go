package device

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Blob is an opaque payload handed to the device for upload.
type Blob interface {
	// Bytes returns the payload in device byte order.
	Bytes() []byte
}

// BytesBlob is a payload that is already raw bytes.
type BytesBlob []byte

// Bytes implements Blob
func (b BytesBlob) Bytes() []byte {
	return b
}

// Float32Blob is a payload of little-endian floats.
type Float32Blob []float32

// Bytes implements Blob
func (b Float32Blob) Bytes() []byte {
	out := make([]byte, 4*len(b))
	for i, f := range b {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

// Uint16Blob is a payload of little-endian 16-bit integers, usually indices.
type Uint16Blob []uint16

// Bytes implements Blob
func (b Uint16Blob) Bytes() []byte {
	out := make([]byte, 2*len(b))
	for i, v := range b {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}

// StructBlob encodes a fixed-size value, or a slice of them, the way
// encoding/binary lays it out.
func StructBlob(data interface{}) (BytesBlob, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return BytesBlob(buf.Bytes()), nil
}
