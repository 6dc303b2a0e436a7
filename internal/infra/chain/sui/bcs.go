package sui

import (
	"encoding/binary"
)

// Encoder writes Binary Canonical Serialization (BCS) values.
type Encoder struct {
	buf []byte
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte { return e.buf }

// ULEB128 writes an unsigned LEB128 integer, used for lengths and enum tags.
func (e *Encoder) ULEB128(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

func (e *Encoder) U8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) U16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }

func (e *Encoder) U64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

func (e *Encoder) Bool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

// Fixed writes bytes without a length prefix.
func (e *Encoder) Fixed(b []byte) { e.buf = append(e.buf, b...) }

// Vec writes a length-prefixed byte vector.
func (e *Encoder) Vec(b []byte) {
	e.ULEB128(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *Encoder) String(s string) { e.Vec([]byte(s)) }

// Variant writes an enum tag.
func (e *Encoder) Variant(tag uint64) { e.ULEB128(tag) }
