// Package streamtest builds little-endian byte fixtures for decoder tests.
package streamtest

import (
	"encoding/binary"
	"math"
)

// Builder appends little-endian values to a byte slice.
type Builder struct {
	buf []byte
}

func (b *Builder) Bytes() []byte { return b.buf }
func (b *Builder) Len() int      { return len(b.buf) }

func (b *Builder) U8(v ...uint8) *Builder {
	b.buf = append(b.buf, v...)
	return b
}

func (b *Builder) I8(v int8) *Builder {
	return b.U8(uint8(v))
}

func (b *Builder) U16(v ...uint16) *Builder {
	for _, x := range v {
		b.buf = binary.LittleEndian.AppendUint16(b.buf, x)
	}
	return b
}

func (b *Builder) I16(v int16) *Builder {
	return b.U16(uint16(v))
}

func (b *Builder) U32(v ...uint32) *Builder {
	for _, x := range v {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, x)
	}
	return b
}

func (b *Builder) I32(v ...int32) *Builder {
	for _, x := range v {
		b.U32(uint32(x))
	}
	return b
}

func (b *Builder) F32(v ...float32) *Builder {
	for _, x := range v {
		b.U32(math.Float32bits(x))
	}
	return b
}

// Zeros appends n zero bytes.
func (b *Builder) Zeros(n int) *Builder {
	b.buf = append(b.buf, make([]byte, n)...)
	return b
}

// Raw appends p unchanged.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// Fixed appends s padded with zeros to n bytes.
func (b *Builder) Fixed(s string, n int) *Builder {
	field := make([]byte, n)
	copy(field, s)
	b.buf = append(b.buf, field...)
	return b
}

// RF1String appends s with a 16-bit length prefix.
func (b *Builder) RF1String(s string) *Builder {
	b.U16(uint16(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

// StringZ appends s and a terminating zero.
func (b *Builder) StringZ(s string) *Builder {
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
	return b
}

// Align pads with zeros to a multiple of n.
func (b *Builder) Align(n int) *Builder {
	if r := len(b.buf) % n; r != 0 {
		b.Zeros(n - r)
	}
	return b
}

// Identity appends an identity rotation in stored row order.
func (b *Builder) Identity() *Builder {
	return b.F32(0, 0, 1, 1, 0, 0, 0, 1, 0)
}

// Section appends a tag/size framed block.
func (b *Builder) Section(tag uint32, body []byte) *Builder {
	b.U32(tag, uint32(len(body)))
	b.buf = append(b.buf, body...)
	return b
}
