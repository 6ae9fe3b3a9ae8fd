// Package diag carries non-fatal decode warnings back to the caller.
package diag

import "fmt"

// Code classifies a warning.
type Code int

const (
	// UnknownSectionTag: a section tag the decoder does not know. The bytes
	// are kept and the stream resynchronised to the declared end.
	UnknownSectionTag Code = iota + 1
	// LengthMismatch: a section or nested buffer was not consumed exactly.
	LengthMismatch
	// MissingDependency: a referenced asset could not be found.
	MissingDependency
	// Malformed: a text record could not be interpreted and was skipped.
	Malformed
)

func (c Code) String() string {
	switch c {
	case UnknownSectionTag:
		return "unknown-section-tag"
	case LengthMismatch:
		return "length-mismatch"
	case MissingDependency:
		return "missing-dependency"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Warning is one diagnostic. Offset and Tag are zero when not applicable.
type Warning struct {
	Code   Code   `json:"-"`
	Kind   string `json:"kind"`
	Offset int    `json:"offset,omitempty"`
	Tag    uint32 `json:"tag,omitempty"`
	Msg    string `json:"msg"`
}

func (w Warning) String() string {
	if w.Tag != 0 {
		return fmt.Sprintf("%s @%d tag=0x%X: %s", w.Code, w.Offset, w.Tag, w.Msg)
	}
	if w.Offset != 0 {
		return fmt.Sprintf("%s @%d: %s", w.Code, w.Offset, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Msg)
}

// Collector accumulates warnings. The zero value is ready to use.
// It is not safe for concurrent use.
type Collector struct {
	list []Warning
}

// Add records a warning.
func (c *Collector) Add(code Code, offset int, tag uint32, format string, args ...any) {
	c.list = append(c.list, Warning{
		Code:   code,
		Kind:   code.String(),
		Offset: offset,
		Tag:    tag,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// Missing records a MissingDependency warning.
func (c *Collector) Missing(format string, args ...any) {
	c.Add(MissingDependency, 0, 0, format, args...)
}

// Merge appends warnings produced elsewhere.
func (c *Collector) Merge(ws []Warning) {
	c.list = append(c.list, ws...)
}

// Warnings returns the collected warnings.
func (c *Collector) Warnings() []Warning {
	return c.list
}

// Count returns how many warnings carry code.
func Count(ws []Warning, code Code) int {
	n := 0
	for _, w := range ws {
		if w.Code == code {
			n++
		}
	}
	return n
}
