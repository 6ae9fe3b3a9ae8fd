package stream

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeANSI converts Windows-1252 text to UTF-8. Pure ASCII is returned
// without going through the decoder.
func decodeANSI(b []byte) string {
	ascii := true
	for _, ch := range b {
		if ch >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// ReadFixedString reads n bytes as a string and advances by consumed bytes.
// With nullTerminated set the string ends at the first zero byte.
func (c *Cursor) ReadFixedString(n, consumed int, nullTerminated bool) (string, error) {
	start := c.off
	b, err := c.take(max(n, consumed))
	if err != nil {
		return "", err
	}
	b = b[:n]
	c.off = start + consumed
	if nullTerminated {
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
	}
	return decodeANSI(b), nil
}

// ReadRF1String reads a string prefixed by a signed 16-bit length.
// A negative length reads nothing.
func (c *Cursor) ReadRF1String() (string, error) {
	n, err := c.ReadI16()
	if err != nil {
		return "", err
	}
	if n < 0 {
		n = 0
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	return decodeANSI(b), nil
}

// ReadStringZ reads up to and including the next zero byte.
func (c *Cursor) ReadStringZ() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	i := bytes.IndexByte(c.data[c.off:], 0)
	if i < 0 {
		c.err = &OutOfBoundsError{Offset: c.off, Want: c.Remaining() + 1, Len: len(c.data)}
		return "", c.err
	}
	s := decodeANSI(c.data[c.off : c.off+i])
	c.off += i + 1
	return s, nil
}

// RF1String is the short form of ReadRF1String.
func (c *Cursor) RF1String() string {
	s, _ := c.ReadRF1String()
	return s
}

// Fixed is the short form of ReadFixedString with null termination.
func (c *Cursor) Fixed(n int) string {
	s, _ := c.ReadFixedString(n, n, true)
	return s
}

// StringZ is the short form of ReadStringZ.
func (c *Cursor) StringZ() string {
	s, _ := c.ReadStringZ()
	return s
}
