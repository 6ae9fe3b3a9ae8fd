package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a read would run past the end of the buffer.
	ErrOutOfBounds = errors.New("read out of bounds")
	// ErrBadMagic is returned when a header constant does not match.
	ErrBadMagic = errors.New("bad magic")
)

// OutOfBoundsError describes a read that did not fit in the buffer.
type OutOfBoundsError struct {
	Offset int // cursor offset at the failed read
	Want   int // bytes requested
	Len    int // buffer length
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read %d bytes at offset %d: buffer is %d bytes: %v", e.Want, e.Offset, e.Len, ErrOutOfBounds)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// MagicError reports a header magic mismatch.
type MagicError struct {
	Format string
	Got    uint32
	Want   []uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("%s: magic 0x%08X, want %s: %v", e.Format, e.Got, hexList(e.Want), ErrBadMagic)
}

func (e *MagicError) Unwrap() error {
	return ErrBadMagic
}

func hexList(vals []uint32) string {
	s := ""
	for i, v := range vals {
		if i > 0 {
			s += " or "
		}
		s += fmt.Sprintf("0x%08X", v)
	}
	return s
}

// CheckMagic reads a u32 and compares it against the accepted values.
// It returns the magic that was read.
func (c *Cursor) CheckMagic(format string, want ...uint32) (uint32, error) {
	got, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	for _, w := range want {
		if got == w {
			return got, nil
		}
	}
	return got, &MagicError{Format: format, Got: got, Want: want}
}
