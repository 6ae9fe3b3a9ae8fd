package mesh

import (
	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/stream"
)

// Section is one decoded mesh section: *Submesh, *ColSphere, *Bones,
// *Dumb, *Raw or *End.
type Section interface {
	Tag() Tag
	// Offset is the position of the section's tag in the mesh buffer.
	Offset() int
	// Size is the declared body length. Compiled meshes store 0.
	Size() int
	base() *frame
}

type frame struct {
	tag    Tag
	offset int
	size   int
}

func (f *frame) Tag() Tag     { return f.tag }
func (f *frame) Offset() int  { return f.offset }
func (f *frame) Size() int    { return f.size }
func (f *frame) base() *frame { return f }

// Raw keeps a section that was not decoded.
type Raw struct {
	frame
	Data []byte
}

// End is the terminating section.
type End struct {
	frame
}

type decodeFunc func(c *stream.Cursor, warn *diag.Collector) Section

var decoders = map[Tag]decodeFunc{
	TagSubmesh:   readSubmesh,
	TagColSphere: readColSphere,
	TagBone:      readBones,
	TagDumb:      readDumb,
}

// ColSphere is a collision sphere, optionally attached to a bone.
type ColSphere struct {
	frame
	Name   string
	Bone   int32 // -1 when unattached
	Pos    stream.Vec3
	Radius float32
}

func readColSphere(c *stream.Cursor, _ *diag.Collector) Section {
	return &ColSphere{
		Name:   c.Fixed(24),
		Bone:   c.I32(),
		Pos:    c.Vec3(),
		Radius: c.F32(),
	}
}

// Bones is the skeleton of a character mesh.
type Bones struct {
	frame
	Bones []Bone
}

// Bone is a node of the skeleton. Rot and Pos transform model space into
// bone space.
type Bone struct {
	Name   string
	Rot    stream.Vec4 // quaternion x, y, z, w
	Pos    stream.Vec3
	Parent int32 // -1 for the root
}

func readBones(c *stream.Cursor, _ *diag.Collector) Section {
	return &Bones{Bones: readList(c, 56, func(c *stream.Cursor) Bone {
		return Bone{Name: c.Fixed(24), Rot: c.Vec4(), Pos: c.Vec3(), Parent: c.I32()}
	})}
}

// Dumb is an editor dummy written by the 3ds max exporter. The mesh
// compiler strips it.
type Dumb struct {
	frame
	Name    string
	Unknown [8]int32
}

func readDumb(c *stream.Cursor, _ *diag.Collector) Section {
	d := &Dumb{Name: c.Fixed(24)}
	for i := range d.Unknown {
		d.Unknown[i] = c.I32()
	}
	return d
}

func readList[T any](c *stream.Cursor, minSize int, read func(*stream.Cursor) T) []T {
	n := c.Count(minSize)
	if c.Err() != nil {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n && c.Err() == nil; i++ {
		out = append(out, read(c))
	}
	return out
}

// readN reads exactly n records whose count came from elsewhere.
func readN[T any](c *stream.Cursor, n, minSize int, read func(*stream.Cursor) T) []T {
	if n*minSize > c.Remaining() {
		c.Fail(&stream.OutOfBoundsError{Offset: c.Offset(), Want: n * minSize, Len: c.Len()})
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n && c.Err() == nil; i++ {
		out = append(out, read(c))
	}
	return out
}
