// Package level decodes RFL level files into typed sections.
package level

import (
	"fmt"

	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/stream"
)

// Magic is the RFL header constant.
const Magic = 0xD4BADA55

// Header is the fixed part of an RFL file.
type Header struct {
	Magic             uint32
	Version           uint32
	Timestamp         uint32
	PlayerStartOffset uint32
	LevelInfoOffset   uint32
	SectionCount      uint32
	SectionsSize      uint32
	Name              string
	ModName           string
}

// Level is a decoded RFL file.
type Level struct {
	Header   Header
	Sections []Section
	Warnings []diag.Warning
}

// SectionError reports a section that could not be framed.
type SectionError struct {
	Tag    Tag
	Offset int
	Err    error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %s at %d: %v", e.Tag, e.Offset, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

// Decode parses an RFL level.
//
// Each section body is decoded on a cursor bounded to its declared size.
// Trailing bytes the decoder did not consume are skipped. A body that
// cannot be decoded inside its declared size is kept as Raw with a
// LengthMismatch warning, so one bad section never desynchronises the
// rest of the file. A section whose declared size runs past the end of
// the buffer is fatal.
func Decode(data []byte) (*Level, error) {
	c := stream.New(data)
	if _, err := c.CheckMagic("rfl", Magic); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	h := Header{
		Magic:             Magic,
		Version:           c.U32(),
		Timestamp:         c.U32(),
		PlayerStartOffset: c.U32(),
		LevelInfoOffset:   c.U32(),
		SectionCount:      c.U32(),
		SectionsSize:      c.U32(),
		Name:              c.RF1String(),
		ModName:           c.RF1String(),
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("level: read header: %w", err)
	}

	lvl := &Level{Header: h}
	var warn diag.Collector
	for c.Remaining() > 0 {
		start := c.Offset()
		tag := Tag(c.U32())
		size := c.U32()
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("level: %w", &SectionError{Tag: tag, Offset: start, Err: err})
		}
		body, err := c.Sub(int(size))
		if err != nil {
			return nil, fmt.Errorf("level: %w", &SectionError{Tag: tag, Offset: start, Err: err})
		}
		sec := decodeSection(body, tag, h.Version, start, &warn)
		*sec.base() = frame{tag: tag, offset: start, size: int(size)}
		lvl.Sections = append(lvl.Sections, sec)
	}
	lvl.Warnings = warn.Warnings()
	return lvl, nil
}

func decodeSection(body *stream.Cursor, tag Tag, version uint32, start int, warn *diag.Collector) Section {
	if tag == TagEnd {
		return &End{Data: body.Bytes()}
	}
	fn, ok := decoders[tag]
	if !ok {
		warn.Add(diag.UnknownSectionTag, start, uint32(tag), "%d bytes kept raw", body.Len())
		return &Raw{Data: body.Bytes()}
	}
	sec := fn(body, tag, version)
	if err := body.Err(); err != nil {
		warn.Add(diag.LengthMismatch, start, uint32(tag), "%s overruns its %d bytes: %v", tag, body.Len(), err)
		return &Raw{Data: body.Bytes()}
	}
	if body.Remaining() != 0 {
		warn.Add(diag.LengthMismatch, start, uint32(tag), "%d of %d bytes not decoded", body.Remaining(), body.Len())
	}
	return sec
}

// Filter returns the sections with the given tag, in file order.
func (l *Level) Filter(tag Tag) []Section {
	var out []Section
	for _, s := range l.Sections {
		if s.Tag() == tag {
			out = append(out, s)
		}
	}
	return out
}

// SectionsOf returns every section of concrete type T, in file order.
//
//	rooms := level.SectionsOf[*level.Rooms](lvl)
func SectionsOf[T Section](l *Level) []T {
	var out []T
	for _, s := range l.Sections {
		if t, ok := s.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// First returns the first section of type T.
func First[T Section](l *Level) (T, bool) {
	for _, s := range l.Sections {
		if t, ok := s.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
