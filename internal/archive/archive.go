// Package archive decodes VPP packfiles.
package archive

import (
	"fmt"
	"path"
	"strings"

	"rf-asset-tools/internal/stream"
)

// Magic is the VPP header constant.
const Magic = 0x51890ACE

const (
	sectorSize = 2048
	nameSize   = 60
)

// Kind is the coarse file type inferred from an entry's extension.
type Kind string

const (
	KindTexture Kind = "texture"
	KindMesh    Kind = "mesh"
	KindTable   Kind = "table"
	KindLevel   Kind = "level"
	KindFile    Kind = "file"
)

// KindOf infers a Kind from a file name.
func KindOf(name string) Kind {
	switch strings.ToLower(path.Ext(name)) {
	case ".tga", ".vbm":
		return KindTexture
	case ".v3d", ".v3m", ".v3c", ".vfx":
		return KindMesh
	case ".tbl":
		return KindTable
	case ".rfl":
		return KindLevel
	}
	return KindFile
}

// BaseName lower-cases name and strips a known asset extension.
// Unknown extensions are kept.
func BaseName(name string) string {
	name = strings.ToLower(name)
	ext := path.Ext(name)
	switch ext {
	case ".tga", ".vbm", ".v3d", ".v3m", ".v3c", ".vfx", ".tbl", ".rfl":
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// Entry is one file in a packfile. Data aliases the buffer passed to Decode.
type Entry struct {
	RawName string // name field as stored, up to the first NUL
	Name    string // lower-cased
	Base    string // Name without a known extension
	Ext     string // extension without the dot
	Kind    Kind
	Size    int
	Data    []byte
}

// Header is the fixed packfile header.
type Header struct {
	Version   uint32
	FileCount int
	TotalSize uint32 // declared, not checked against the buffer
}

// Archive is a decoded packfile.
type Archive struct {
	Header  Header
	Entries []Entry

	byName map[string]int
	byBase map[string]int
}

// Decode parses a packfile held in data.
func Decode(data []byte) (*Archive, error) {
	c := stream.New(data)
	if _, err := c.CheckMagic("vpp", Magic); err != nil {
		return nil, fmt.Errorf("archive: decode: %w", err)
	}

	var h Header
	h.Version = c.U32()
	count, err := c.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("archive: read header: %w", err)
	}
	h.TotalSize = c.U32()
	if err := c.Align(sectorSize); err != nil {
		return nil, fmt.Errorf("archive: read header: %w", err)
	}
	if uint64(count)*(nameSize+4) > uint64(c.Remaining()) {
		return nil, fmt.Errorf("archive: %d entries: %w", count, &stream.OutOfBoundsError{Offset: c.Offset(), Want: int(min(uint64(count)*(nameSize+4), 1<<31-1)), Len: c.Len()})
	}
	h.FileCount = int(count)

	entries := make([]Entry, h.FileCount)
	for i := range entries {
		raw, err := c.ReadFixedString(nameSize, nameSize, true)
		if err != nil {
			return nil, fmt.Errorf("archive: read entry %d: %w", i, err)
		}
		size, err := c.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("archive: read entry %d: %w", i, err)
		}
		entries[i] = newEntry(raw, int(size))
	}

	if err := c.Align(sectorSize); err != nil {
		return nil, fmt.Errorf("archive: align directory: %w", err)
	}
	for i := range entries {
		b, err := c.ReadSlice(entries[i].Size)
		if err != nil {
			return nil, fmt.Errorf("archive: read %s: %w", entries[i].Name, err)
		}
		entries[i].Data = b
		// The final entry may end exactly at the buffer end without padding.
		if c.Remaining() > 0 {
			if err := c.Align(sectorSize); err != nil {
				return nil, fmt.Errorf("archive: align %s: %w", entries[i].Name, err)
			}
		}
	}

	return New(h, entries), nil
}

// New builds an archive from already decoded entries.
func New(h Header, entries []Entry) *Archive {
	a := &Archive{
		Header:  h,
		Entries: entries,
		byName:  make(map[string]int, len(entries)),
		byBase:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		a.byName[e.Name] = i
		if _, dup := a.byBase[e.Base]; !dup {
			a.byBase[e.Base] = i
		}
	}
	return a
}

func newEntry(raw string, size int) Entry {
	name := strings.ToLower(raw)
	return Entry{
		RawName: raw,
		Name:    name,
		Base:    BaseName(name),
		Ext:     strings.TrimPrefix(path.Ext(name), "."),
		Kind:    KindOf(name),
		Size:    size,
	}
}

// Find returns the entry with the given name, matched case-insensitively.
func (a *Archive) Find(name string) (*Entry, bool) {
	i, ok := a.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return &a.Entries[i], true
}

// FindBase returns the first entry whose base name matches.
func (a *Archive) FindBase(base string) (*Entry, bool) {
	i, ok := a.byBase[strings.ToLower(base)]
	if !ok {
		return nil, false
	}
	return &a.Entries[i], true
}

// OfKind returns the entries of one kind in directory order.
func (a *Archive) OfKind(k Kind) []*Entry {
	var out []*Entry
	for i := range a.Entries {
		if a.Entries[i].Kind == k {
			out = append(out, &a.Entries[i])
		}
	}
	return out
}
