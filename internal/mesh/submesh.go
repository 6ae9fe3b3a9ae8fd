package mesh

import (
	"path"
	"strings"

	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/stream"
)

// LOD flags.
const (
	LODExtraData = 0x01 // each batch carries Unknown0*2 trailing bytes
	LODCharacter = 0x02
	LODPlanes    = 0x20 // each batch carries per-triangle planes
)

// MaterialTwoSided disables back-face culling.
const MaterialTwoSided = 0x10

// Submesh is one named piece of a mesh with up to three LODs.
type Submesh struct {
	frame
	Name         string
	Unknown      string
	Version      uint32
	LODDistances []float32
	Center       stream.Vec3 // bounding sphere; batch positions are relative to it
	Radius       float32
	Bounds       stream.AABB
	LODs         []LOD
	Materials    []Material
	Unknown4     []SubmeshUnknown4
}

type SubmeshUnknown4 struct {
	Name    string
	Unknown float32
}

// LOD is one level of detail. The batch headers and geometry live in a
// nested payload of DataSize bytes; BatchInfo and Textures follow that
// payload in the outer stream.
type LOD struct {
	Flags     uint32
	Unknown0  uint32
	DataSize  uint32
	Unknown1  int32
	BatchInfo []BatchInfo
	Textures  []TextureRef
	Headers   []BatchHeader
	Batches   []Batch
	Props     []LODProp
	// Raw holds the nested payload when it could not be decoded. Headers
	// and Batches are nil in that case.
	Raw []byte
}

type BatchInfo struct {
	Vertices      uint16
	Triangles     uint16
	PositionsSize uint16
	IndicesSize   uint16
	UnknownSize   uint16
	BoneLinksSize uint16
	TexCoordsSize uint16
	Unknown3      uint32
}

type TextureRef struct {
	Material uint8
	Name     string
}

// BatchHeader is a 56-byte record at the start of the nested payload.
type BatchHeader struct {
	Unknown1 []byte
	Material uint8 // index into Submesh.Materials
	Unknown2 []byte
}

type Batch struct {
	Positions []stream.Vec3
	Normals   []stream.Vec3
	UVs       []stream.Vec2
	Triangles []Triangle
	Planes    []float32 // four per triangle, set with LODPlanes
	Unknown   []byte
	BoneLinks []BoneLink
	Extra     []byte // set with LODExtraData
}

type Triangle struct {
	Indices [3]uint16
	Flags   uint16
}

// BoneLink weights a vertex to up to four bones. Unused slots have
// weight 0 and bone 0xFF.
type BoneLink struct {
	Weights [4]uint8
	Bones   [4]uint8
}

type LODProp struct {
	Name     string
	Unknown  [7]float32
	Unknown2 int32
}

type Material struct {
	Diffuse     string
	Coefficient float32
	Unknown     [2]float32
	Reflection  float32
	RefMap      string
	Flags       uint32
}

// TwoSided reports whether MaterialTwoSided is set.
func (m *Material) TwoSided() bool { return m.Flags&MaterialTwoSided != 0 }

// TextureBase returns the diffuse texture name without its extension,
// lower-cased.
func (m *Material) TextureBase() string {
	return TextureBase(m.Diffuse)
}

// TextureBase strips a .tga or .vbm extension and lower-cases name.
func TextureBase(name string) string {
	name = strings.ToLower(name)
	switch path.Ext(name) {
	case ".tga", ".vbm":
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return name
}

// BatchMaterial returns the material of batch i of LOD lod, or nil when
// the header points outside the material list.
func (s *Submesh) BatchMaterial(lod, i int) *Material {
	if lod >= len(s.LODs) || i >= len(s.LODs[lod].Headers) {
		return nil
	}
	idx := int(s.LODs[lod].Headers[i].Material)
	if idx >= len(s.Materials) {
		return nil
	}
	return &s.Materials[idx]
}

func readSubmesh(c *stream.Cursor, warn *diag.Collector) Section {
	s := &Submesh{
		Name:    c.Fixed(24),
		Unknown: c.Fixed(24),
		Version: c.U32(),
	}
	s.LODDistances = readList(c, 4, (*stream.Cursor).F32)
	s.Center = c.Vec3()
	s.Radius = c.F32()
	s.Bounds = c.AABB()
	for i := 0; i < len(s.LODDistances) && c.Err() == nil; i++ {
		s.LODs = append(s.LODs, readLOD(c, s.Name, i, warn))
	}
	s.Materials = readList(c, 84, func(c *stream.Cursor) Material {
		return Material{
			Diffuse:     c.Fixed(32),
			Coefficient: c.F32(),
			Unknown:     [2]float32{c.F32(), c.F32()},
			Reflection:  c.F32(),
			RefMap:      c.Fixed(32),
			Flags:       c.U32(),
		}
	})
	s.Unknown4 = readList(c, 28, func(c *stream.Cursor) SubmeshUnknown4 {
		return SubmeshUnknown4{Name: c.Fixed(24), Unknown: c.F32()}
	})
	return s
}

func readLOD(c *stream.Cursor, name string, idx int, warn *diag.Collector) LOD {
	l := LOD{
		Flags:    c.U32(),
		Unknown0: c.U32(),
	}
	batches := int(c.U16())
	l.DataSize = c.U32()
	if c.Err() != nil {
		return l
	}
	nested, err := c.Sub(int(l.DataSize))
	if err != nil {
		return l
	}

	// The outer stream continues after the nested span.
	l.Unknown1 = c.I32()
	l.BatchInfo = readN(c, batches, 18, func(c *stream.Cursor) BatchInfo {
		return BatchInfo{
			Vertices:      c.U16(),
			Triangles:     c.U16(),
			PositionsSize: c.U16(),
			IndicesSize:   c.U16(),
			UnknownSize:   c.U16(),
			BoneLinksSize: c.U16(),
			TexCoordsSize: c.U16(),
			Unknown3:      c.U32(),
		}
	})
	props := c.U32()
	l.Textures = readList(c, 2, func(c *stream.Cursor) TextureRef {
		return TextureRef{Material: c.U8(), Name: c.StringZ()}
	})
	if c.Err() != nil {
		return l
	}

	decodeLODData(nested, &l, int(props))
	switch {
	case nested.Err() != nil:
		warn.Add(diag.LengthMismatch, 0, uint32(TagSubmesh), "submesh %q lod %d: %v", name, idx, nested.Err())
		l.Headers, l.Batches, l.Props = nil, nil, nil
		l.Raw = nested.Bytes()
	case nested.Offset() != int(l.DataSize):
		warn.Add(diag.LengthMismatch, 0, uint32(TagSubmesh), "submesh %q lod %d: decoded %d of %d bytes", name, idx, nested.Offset(), l.DataSize)
	}
	return l
}

// decodeLODData reads the nested payload: batch headers, then per-batch
// geometry, then the LOD props. Every array is padded to 16 bytes.
func decodeLODData(c *stream.Cursor, l *LOD, props int) {
	l.Headers = readN(c, len(l.BatchInfo), 56, func(c *stream.Cursor) BatchHeader {
		return BatchHeader{Unknown1: c.Blob(32), Material: c.U8(), Unknown2: c.Blob(23)}
	})
	c.Align(16)
	for _, info := range l.BatchInfo {
		if c.Err() != nil {
			return
		}
		l.Batches = append(l.Batches, readBatch(c, info, l.Flags, l.Unknown0))
	}
	c.Align(16)
	if props > 0 {
		l.Props = readN(c, props, 0x44+32, func(c *stream.Cursor) LODProp {
			p := LODProp{Name: c.Fixed(0x44)}
			for i := range p.Unknown {
				p.Unknown[i] = c.F32()
			}
			p.Unknown2 = c.I32()
			return p
		})
	}
}

func readBatch(c *stream.Cursor, info BatchInfo, flags, unknown0 uint32) Batch {
	verts, tris := int(info.Vertices), int(info.Triangles)
	var b Batch
	b.Positions = readN(c, verts, 12, (*stream.Cursor).Vec3)
	c.Align(16)
	b.Normals = readN(c, verts, 12, (*stream.Cursor).Vec3)
	c.Align(16)
	b.UVs = readN(c, verts, 8, (*stream.Cursor).Vec2)
	c.Align(16)
	b.Triangles = readN(c, tris, 8, func(c *stream.Cursor) Triangle {
		return Triangle{Indices: [3]uint16{c.U16(), c.U16(), c.U16()}, Flags: c.U16()}
	})
	c.Align(16)
	if flags&LODPlanes != 0 {
		b.Planes = readN(c, tris*4, 4, (*stream.Cursor).F32)
		c.Align(16)
	}
	b.Unknown = c.Blob(int(info.UnknownSize))
	c.Align(16)
	if info.BoneLinksSize > 0 {
		b.BoneLinks = readN(c, verts, 8, func(c *stream.Cursor) BoneLink {
			return BoneLink{
				Weights: [4]uint8{c.U8(), c.U8(), c.U8(), c.U8()},
				Bones:   [4]uint8{c.U8(), c.U8(), c.U8(), c.U8()},
			}
		})
		c.Align(16)
	}
	if flags&LODExtraData != 0 {
		b.Extra = c.Blob(int(unknown0) * 2)
		c.Align(16)
	}
	return b
}
