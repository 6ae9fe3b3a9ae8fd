// Package mesh decodes RF3D meshes (.v3d, .v3m, .v3c).
package mesh

import (
	"fmt"

	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/stream"
)

// Accepted header magics.
const (
	MagicRF3D = 0x52463344 // "RF3D", static meshes
	MagicRFCM = 0x5246434D // "RFCM", character meshes
)

// Tag identifies a mesh section. Tags are four ASCII characters read as a
// little-endian u32.
type Tag uint32

const (
	TagEnd       Tag = 0x00000000
	TagSubmesh   Tag = 0x5355424D // SUBM
	TagColSphere Tag = 0x43535048 // CSPH
	TagBone      Tag = 0x424F4E45 // BONE
	TagDumb      Tag = 0x44554D42 // DUMB
)

func (t Tag) String() string {
	if t == TagEnd {
		return "END"
	}
	b := [4]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)}
	for _, ch := range b {
		if ch < 0x20 || ch > 0x7E {
			return fmt.Sprintf("tag(0x%08X)", uint32(t))
		}
	}
	return string(b[:])
}

// Header is the fixed mesh file header. The totals are zeroed by the
// game's mesh compiler and are informational only.
type Header struct {
	Magic          uint32
	Version        uint32
	Submeshes      uint32
	TotalVertices  uint32
	TotalTriangles uint32
	Unknown0       uint32
	TotalMaterials uint32
	Unknown2       uint32
	Unknown3       uint32
	ColSpheres     uint32
}

// Character reports whether the mesh uses the RFCM magic.
func (h Header) Character() bool { return h.Magic == MagicRFCM }

// Mesh is a decoded mesh file.
type Mesh struct {
	Header   Header
	Sections []Section
	Warnings []diag.Warning
}

// Decode parses a mesh file.
//
// Section sizes are often written as 0, so a section is decoded from the
// stream and its size is only checked when it is nonzero. An unknown tag
// with a nonzero size is kept as Raw; an unknown tag without a size
// cannot be skipped and ends decoding with a warning.
func Decode(data []byte) (*Mesh, error) {
	c := stream.New(data)
	magic, err := c.CheckMagic("rf3d", MagicRF3D, MagicRFCM)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	h := Header{
		Magic:          magic,
		Version:        c.U32(),
		Submeshes:      c.U32(),
		TotalVertices:  c.U32(),
		TotalTriangles: c.U32(),
		Unknown0:       c.U32(),
		TotalMaterials: c.U32(),
		Unknown2:       c.U32(),
		Unknown3:       c.U32(),
		ColSpheres:     c.U32(),
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("mesh: read header: %w", err)
	}

	m := &Mesh{Header: h}
	var warn diag.Collector
	for c.Remaining() > 0 {
		start := c.Offset()
		tag := Tag(c.U32())
		size := int(c.U32())
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("mesh: section frame at %d: %w", start, err)
		}

		sec, stop, err := decodeSection(c, tag, size, start, &warn)
		if err != nil {
			return nil, fmt.Errorf("mesh: section %s at %d: %w", tag, start, err)
		}
		if sec != nil {
			*sec.base() = frame{tag: tag, offset: start, size: size}
			m.Sections = append(m.Sections, sec)
		}
		if stop {
			break
		}
	}
	if c.Remaining() > 0 {
		warn.Add(diag.LengthMismatch, c.Offset(), 0, "%d trailing bytes after the last section", c.Remaining())
	}
	m.Warnings = warn.Warnings()
	return m, nil
}

func decodeSection(c *stream.Cursor, tag Tag, size, start int, warn *diag.Collector) (Section, bool, error) {
	read, known := decoders[tag]
	switch {
	case tag == TagEnd:
		return &End{}, true, nil
	case !known && size == 0:
		warn.Add(diag.UnknownSectionTag, start, uint32(tag), "no section size, decoding stopped")
		return nil, true, nil
	case !known:
		data, err := c.ReadSlice(size)
		if err != nil {
			return nil, false, err
		}
		warn.Add(diag.UnknownSectionTag, start, uint32(tag), "%d bytes kept raw", size)
		return &Raw{Data: data}, false, nil
	case size == 0:
		sec := read(c, warn)
		return sec, false, c.Err()
	}

	// A declared size bounds the section like a level section.
	body, err := c.Sub(size)
	if err != nil {
		return nil, false, err
	}
	sec := read(body, warn)
	if err := body.Err(); err != nil {
		warn.Add(diag.LengthMismatch, start, uint32(tag), "overruns its %d bytes: %v", size, err)
		return &Raw{Data: body.Bytes()}, false, nil
	}
	if body.Remaining() != 0 {
		warn.Add(diag.LengthMismatch, start, uint32(tag), "%d of %d bytes not decoded", body.Remaining(), size)
	}
	return sec, false, nil
}

// Filter returns the sections with the given tag, in file order.
func (m *Mesh) Filter(tag Tag) []Section {
	var out []Section
	for _, s := range m.Sections {
		if s.Tag() == tag {
			out = append(out, s)
		}
	}
	return out
}

// SectionsOf returns every section of concrete type T, in file order.
func SectionsOf[T Section](m *Mesh) []T {
	var out []T
	for _, s := range m.Sections {
		if t, ok := s.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Submeshes is shorthand for SectionsOf[*Submesh].
func (m *Mesh) Submeshes() []*Submesh {
	return SectionsOf[*Submesh](m)
}

// Bones returns the bone list, or nil when the mesh has no BONE section.
func (m *Mesh) Bones() []Bone {
	for _, b := range SectionsOf[*Bones](m) {
		return b.Bones
	}
	return nil
}
