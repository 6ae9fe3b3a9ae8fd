package scene

import (
	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/filter"
	"rf-asset-tools/internal/level"
	"rf-asset-tools/internal/mathutil"
	"rf-asset-tools/internal/mesh"
	"rf-asset-tools/internal/stream"
	"rf-asset-tools/internal/texture"
)

// Surface is a triangle list sharing one texture. Vertices are not shared
// between faces because UVs are stored per face vertex.
type Surface struct {
	Texture  string // lower-case base name, "" when the material is unknown
	Material int    // mesh material slot, -1 for level faces
	Room     int    // level room index, -1 when not part of a room
	TwoSided bool

	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	// LightUVs and Layers are set on lightmapped level surfaces only.
	// Layers holds the lightmap frame of each vertex.
	LightUVs [][2]float32
	Layers   []uint16
	// Joints and Weights are set on skinned mesh surfaces.
	Joints  [][4]uint8
	Weights [][4]uint8
	Indices []uint32
}

// Lit reports whether the surface carries lightmap coordinates.
func (s *Surface) Lit() bool { return s.LightUVs != nil }

// Triangles returns the triangle count.
func (s *Surface) Triangles() int { return len(s.Indices) / 3 }

// Geometry is a named set of surfaces placed by Transform.
type Geometry struct {
	Name      string
	UID       int32
	Transform mathutil.Mat4
	Surfaces  []*Surface
}

// Triangles returns the triangle count of every surface.
func (g *Geometry) Triangles() int {
	n := 0
	for _, s := range g.Surfaces {
		n += s.Triangles()
	}
	return n
}

// Bounds returns the local-space bounding box, or ok=false when g has no
// vertices.
func (g *Geometry) Bounds() (box stream.AABB, ok bool) {
	for _, s := range g.Surfaces {
		for _, p := range s.Positions {
			if !ok {
				box = stream.AABB{Min: p, Max: p}
				ok = true
				continue
			}
			for k := 0; k < 3; k++ {
				box.Min[k] = min(box.Min[k], p[k])
				box.Max[k] = max(box.Max[k], p[k])
			}
		}
	}
	return box, ok
}

type surfaceKey struct {
	room    int
	texture string
	lit     bool
}

// faceSet is the face data shared by rooms and brushes.
type faceSet struct {
	tag      level.Tag
	vertices []stream.Vec3
	textures []string
	faces    []level.Face
	refs     []level.LightmapRef
	rooms    int // faces with a room index below this are grouped per room
}

type faceBuilder struct {
	g     *Geometry
	show  bool
	byKey map[surfaceKey]*Surface
	warn  *diag.Collector
}

func newFaceBuilder(g *Geometry, showInvisible bool, warn *diag.Collector) *faceBuilder {
	return &faceBuilder{g: g, show: showInvisible, byKey: make(map[surfaceKey]*Surface), warn: warn}
}

func (b *faceBuilder) surface(k surfaceKey) *Surface {
	if s, ok := b.byKey[k]; ok {
		return s
	}
	s := &Surface{Texture: k.texture, Material: -1, Room: k.room}
	if k.lit {
		s.LightUVs = [][2]float32{}
	}
	b.byKey[k] = s
	b.g.Surfaces = append(b.g.Surfaces, s)
	return s
}

// add fan-triangulates every renderable face of fs.
func (b *faceBuilder) add(fs faceSet) {
	for i := range fs.faces {
		f := &fs.faces[i]
		if !filter.IsRenderable(f) {
			continue
		}
		if int(f.Texture) >= len(fs.textures) {
			b.warn.Add(diag.Malformed, 0, uint32(fs.tag), "%s face %d: texture %d of %d", b.g.Name, i, f.Texture, len(fs.textures))
			continue
		}
		tex := texture.StemOf(fs.textures[f.Texture])
		if !b.show && filter.IsInvisibleTexture(tex) {
			continue
		}
		if !validVertices(f, len(fs.vertices)) {
			b.warn.Add(diag.Malformed, 0, uint32(fs.tag), "%s face %d: vertex index out of range", b.g.Name, i)
			continue
		}

		layer, lit := -1, false
		if f.HasLightmap() {
			if l := int(f.Lightmap); l >= 0 && l < len(fs.refs) {
				layer, lit = int(fs.refs[l].Lightmap), true
			}
		}
		room := -1
		if int(f.Room) < fs.rooms {
			room = int(f.Room)
		}
		s := b.surface(surfaceKey{room: room, texture: tex, lit: lit})

		base := uint32(len(s.Positions))
		for _, v := range f.Vertices {
			s.Positions = append(s.Positions, fs.vertices[v.Index])
			s.Normals = append(s.Normals, f.Normal)
			s.UVs = append(s.UVs, v.UV)
			if lit {
				s.LightUVs = append(s.LightUVs, v.LightUV)
				s.Layers = append(s.Layers, uint16(layer))
			}
		}
		for j := uint32(1); j+1 < uint32(len(f.Vertices)); j++ {
			s.Indices = append(s.Indices, base, base+j, base+j+1)
		}
	}
}

func validVertices(f *level.Face, n int) bool {
	for _, v := range f.Vertices {
		if int(v.Index) >= n {
			return false
		}
	}
	return true
}

// ModelGeometry flattens LOD 0 of every submesh of m into one surface per
// batch. Positions are moved out of the submesh's bounding-sphere frame.
func ModelGeometry(name string, m *mesh.Mesh) *Geometry {
	g := &Geometry{Name: name, Transform: mathutil.Mat4Identity()}
	for _, sm := range m.Submeshes() {
		if len(sm.LODs) == 0 {
			continue
		}
		lod := &sm.LODs[0]
		for i := range lod.Batches {
			batch := &lod.Batches[i]
			s := &Surface{Material: -1, Room: -1}
			if mat := sm.BatchMaterial(0, i); mat != nil {
				s.Texture = mat.TextureBase()
				s.Material = int(lod.Headers[i].Material)
				s.TwoSided = mat.TwoSided()
			}
			s.Positions = make([][3]float32, len(batch.Positions))
			for j, p := range batch.Positions {
				s.Positions[j] = [3]float32{p[0] + sm.Center[0], p[1] + sm.Center[1], p[2] + sm.Center[2]}
			}
			s.Normals = make([][3]float32, len(batch.Positions))
			for j := range s.Normals {
				if j < len(batch.Normals) {
					s.Normals[j] = batch.Normals[j]
				}
			}
			s.UVs = make([][2]float32, len(batch.Positions))
			for j := range s.UVs {
				if j < len(batch.UVs) {
					s.UVs[j] = batch.UVs[j]
				}
			}
			if len(batch.BoneLinks) > 0 && len(batch.BoneLinks) == len(batch.Positions) {
				s.Joints, s.Weights = boneLinks(batch.BoneLinks)
			}
			n := uint16(len(batch.Positions))
			for _, t := range batch.Triangles {
				if t.Indices[0] >= n || t.Indices[1] >= n || t.Indices[2] >= n {
					continue
				}
				s.Indices = append(s.Indices, uint32(t.Indices[0]), uint32(t.Indices[1]), uint32(t.Indices[2]))
			}
			g.Surfaces = append(g.Surfaces, s)
		}
	}
	return g
}

// boneLinks splits bone links into joint and weight lists. Unused slots
// (bone 0xFF) point at joint 0 with weight 0.
func boneLinks(links []mesh.BoneLink) (joints, weights [][4]uint8) {
	joints = make([][4]uint8, len(links))
	weights = make([][4]uint8, len(links))
	for i, l := range links {
		for k := 0; k < 4; k++ {
			if l.Bones[k] == 0xFF {
				continue
			}
			joints[i][k] = l.Bones[k]
			weights[i][k] = l.Weights[k]
		}
	}
	return joints, weights
}

// placement converts a stored position and rotation into a model matrix.
func placement(pos stream.Vec3, rot stream.Mat3) mathutil.Mat4 {
	return mathutil.FromMat3Translation(mathutil.Mat3F32(rot), mathutil.Vec3F32(pos))
}
