// Package stream provides the little-endian byte cursor shared by every
// Red Faction format decoder.
package stream

import (
	"encoding/binary"
	"math"
)

// Cursor is a read position over an immutable byte buffer.
//
// Reads come in two flavours. ReadXxx returns (value, error). The short
// forms (U8, U32, Vec3, ...) return only the value and record the first
// failure, which is then reported by Err. After a failure every further
// read returns the zero value and leaves the offset untouched, so record
// decoders can read a whole struct and check Err once.
type Cursor struct {
	data []byte
	off  int
	err  error
}

// New returns a cursor at offset 0 of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current read offset.
func (c *Cursor) Offset() int { return c.off }

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Bytes returns the whole underlying buffer.
func (c *Cursor) Bytes() []byte { return c.data }

// Err returns the first read error, if any.
func (c *Cursor) Err() error { return c.err }

// Fail records err as the cursor error unless one is already set.
func (c *Cursor) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Seek moves to an absolute offset. Seeking past the end is an error.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		err := &OutOfBoundsError{Offset: c.off, Want: off - c.off, Len: len(c.data)}
		c.Fail(err)
		return err
	}
	c.off = off
	return nil
}

// Skip advances by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

func (c *Cursor) take(n int) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if n < 0 || n > len(c.data)-c.off {
		c.err = &OutOfBoundsError{Offset: c.off, Want: n, Len: len(c.data)}
		return nil, c.err
	}
	b := c.data[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// Align advances to the next multiple of boundary. It never moves
// backwards and is a no-op on an empty buffer.
func (c *Cursor) Align(boundary int) error {
	if len(c.data) == 0 || boundary <= 1 {
		return c.err
	}
	if r := c.off % boundary; r != 0 {
		return c.Skip(boundary - r)
	}
	return c.err
}

// ReadSlice returns a view of the next n bytes. The slice aliases the
// cursor's buffer.
func (c *Cursor) ReadSlice(n int) ([]byte, error) {
	return c.take(n)
}

// ReadBlob returns a copy of the next n bytes.
func (c *Cursor) ReadBlob(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Sub returns a cursor over the next n bytes and advances past them.
// Offsets in the returned cursor start at zero.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

// ReadCount reads a u32 element count and rejects it when count elements
// of at least minElemSize bytes cannot fit in the remaining buffer.
func (c *Cursor) ReadCount(minElemSize int) (int, error) {
	start := c.off
	n, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	if minElemSize < 1 {
		minElemSize = 1
	}
	if uint64(n)*uint64(minElemSize) > uint64(c.Remaining()) {
		c.err = &OutOfBoundsError{Offset: start, Want: int(min(uint64(n)*uint64(minElemSize), math.MaxInt32)), Len: len(c.data)}
		return 0, c.err
	}
	return int(n), nil
}

// Short forms. Each returns the zero value after a failure.

func (c *Cursor) U8() uint8 {
	v, _ := c.ReadU8()
	return v
}

func (c *Cursor) I8() int8 {
	v, _ := c.ReadI8()
	return v
}

func (c *Cursor) U16() uint16 {
	v, _ := c.ReadU16()
	return v
}

func (c *Cursor) I16() int16 {
	v, _ := c.ReadI16()
	return v
}

func (c *Cursor) U32() uint32 {
	v, _ := c.ReadU32()
	return v
}

func (c *Cursor) I32() int32 {
	v, _ := c.ReadI32()
	return v
}

func (c *Cursor) F32() float32 {
	v, _ := c.ReadF32()
	return v
}

func (c *Cursor) Blob(n int) []byte {
	b, _ := c.ReadBlob(n)
	return b
}

// Count is the short form of ReadCount.
func (c *Cursor) Count(minElemSize int) int {
	n, _ := c.ReadCount(minElemSize)
	return n
}
