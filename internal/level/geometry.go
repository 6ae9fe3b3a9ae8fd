package level

import (
	"rf-asset-tools/internal/stream"
)

// Version thresholds that change record layouts.
const (
	VersionLegacy = 0xB4 // stock maps
	VersionRF12   = 0xC8 // RF 1.0 / 1.2 editor output
)

// Face flags.
const (
	FaceShowSky    = 0x01
	FaceMirrored   = 0x02
	FaceFullBright = 0x20
)

// Face is one polygon of a room or brush.
type Face struct {
	Normal      stream.Vec3
	Dist        float32
	Texture     uint32 // index into the owner's texture list
	Lightmap    int32  // -1 when the face has no lightmap
	Unknown     uint32
	Unknown2    []byte
	Portal      uint32 // nonzero for portal faces
	Flags       uint8
	LightmapRes uint8
	Unknown3    []byte
	Smoothing   uint32
	Room        uint32
	Vertices    []FaceVertex
}

// HasLightmap reports whether the vertices carry lightmap coordinates.
func (f *Face) HasLightmap() bool { return f.Lightmap != -1 }

// FaceVertex references a position in the owner's vertex list.
type FaceVertex struct {
	Index   uint32
	UV      stream.Vec2
	LightUV stream.Vec2
}

func readFace(c *stream.Cursor) Face {
	f := Face{
		Normal:      c.Vec3(),
		Dist:        c.F32(),
		Texture:     c.U32(),
		Lightmap:    c.I32(),
		Unknown:     c.U32(),
		Unknown2:    c.Blob(8),
		Portal:      c.U32(),
		Flags:       c.U8(),
		LightmapRes: c.U8(),
		Unknown3:    c.Blob(2),
		Smoothing:   c.U32(),
		Room:        c.U32(),
	}
	lit := f.HasLightmap()
	f.Vertices = readList(c, 12, func(c *stream.Cursor) FaceVertex {
		v := FaceVertex{Index: c.U32(), UV: c.Vec2()}
		if lit {
			v.LightUV = c.Vec2()
		}
		return v
	})
	return f
}

// Rooms is the compiled static geometry.
type Rooms struct {
	frame
	Unknown       []byte // 6 bytes up to VersionLegacy, 10 after
	Textures      []string
	Scrolls       []FaceScroll
	Rooms         []Room
	RoomLinks     []RoomLinks
	Unknown3      []byte // 32 bytes per record
	Vertices      []stream.Vec3
	Faces         []Face
	LightmapRefs  []LightmapRef
	LegacyTriples []uint32 // VersionLegacy and older only, three per record
}

type FaceScroll struct {
	Face     uint32
	Velocity stream.Vec2
}

type Room struct {
	ID           uint32
	Bounds       stream.AABB
	Sky          uint8
	Cold         uint8
	Outside      uint8
	Airlock      uint8
	Liquid       uint8
	Ambient      uint8
	SubRoom      uint8
	Unknown      uint8
	Life         float32
	EAXEffect    string
	LiquidProps  *LiquidProps  // set when Liquid == 1
	AmbientColor *stream.Color // set when Ambient == 1
}

type LiquidProps struct {
	Depth          float32
	Color          stream.Color
	SurfaceTexture string
	Visibility     float32
	Type           uint32
	Alpha          uint32
	Unknown        []byte
	Waveform       float32
	Scroll         stream.Vec2
}

// RoomLinks lists the detail meshes contained in a room.
type RoomLinks struct {
	Mesh  uint32
	Links []uint32
}

// LightmapRef ties a face to an entry of the LIGHTMAPS section.
type LightmapRef struct {
	Lightmap uint32
	Unknown  []byte
	Face     uint32
}

func readRooms(c *stream.Cursor, _ Tag, version uint32) Section {
	r := &Rooms{}
	if version <= VersionLegacy {
		r.Unknown = c.Blob(6)
	} else {
		r.Unknown = c.Blob(10)
	}
	r.Textures = readStrings(c)
	r.Scrolls = readList(c, 12, func(c *stream.Cursor) FaceScroll {
		return FaceScroll{Face: c.U32(), Velocity: c.Vec2()}
	})
	r.Rooms = readList(c, 42, readRoom)
	r.RoomLinks = readList(c, 8, func(c *stream.Cursor) RoomLinks {
		return RoomLinks{Mesh: c.U32(), Links: readU32s(c)}
	})
	n := c.Count(32)
	r.Unknown3 = c.Blob(n * 32)
	r.Vertices = readVec3s(c)
	r.Faces = readList(c, 56, readFace)
	r.LightmapRefs = readList(c, 96, func(c *stream.Cursor) LightmapRef {
		return LightmapRef{Lightmap: c.U32(), Unknown: c.Blob(88), Face: c.U32()}
	})
	if version <= VersionLegacy {
		n := c.Count(12)
		r.LegacyTriples = make([]uint32, 0, n*3)
		for i := 0; i < n*3 && c.Err() == nil; i++ {
			r.LegacyTriples = append(r.LegacyTriples, c.U32())
		}
	}
	return r
}

func readRoom(c *stream.Cursor) Room {
	r := Room{
		ID:      c.U32(),
		Bounds:  c.AABB(),
		Sky:     c.U8(),
		Cold:    c.U8(),
		Outside: c.U8(),
		Airlock: c.U8(),
		Liquid:  c.U8(),
		Ambient: c.U8(),
		SubRoom: c.U8(),
		Unknown: c.U8(),
		Life:    c.F32(),
	}
	r.EAXEffect = c.RF1String()
	if r.Liquid == 1 {
		r.LiquidProps = &LiquidProps{
			Depth:          c.F32(),
			Color:          c.Color(),
			SurfaceTexture: c.RF1String(),
			Visibility:     c.F32(),
			Type:           c.U32(),
			Alpha:          c.U32(),
			Unknown:        c.Blob(13),
			Waveform:       c.F32(),
			Scroll:         c.Vec2(),
		}
	}
	if r.Ambient == 1 {
		col := c.Color()
		r.AmbientColor = &col
	}
	return r
}

// Brush flags.
const (
	BrushPortal    = 0x01
	BrushAir       = 0x02
	BrushDetail    = 0x04
	BrushEmitSteam = 0x10
)

// Brushes holds editor brushes (TagBrushes) or compiled movers (TagMovers).
type Brushes struct {
	frame
	Brushes []Brush
}

type Brush struct {
	UID           int32
	Pos           stream.Vec3
	Rot           stream.Mat3
	Unknown1      []byte
	Unknown1b     []byte // VersionRF12 and newer only
	Textures      []string
	Unknown2      []byte // 12 bytes per record
	Unknown3      []byte
	Vertices      []stream.Vec3
	Faces         []Face
	Unknown4      []BrushUnknown4
	LegacyTriples [][3]int32 // VersionLegacy and older only
	Flags         uint32
	Life          int32
	State         uint32
}

type BrushUnknown4 struct {
	Helper uint32
	Data   []byte
	F1     float32
	F2     float32
}

func readBrushes(c *stream.Cursor, _ Tag, version uint32) Section {
	return &Brushes{Brushes: readList(c, 100, func(c *stream.Cursor) Brush {
		return readBrush(c, version)
	})}
}

func readBrush(c *stream.Cursor, version uint32) Brush {
	b := Brush{
		UID:      c.I32(),
		Pos:      c.Vec3(),
		Rot:      c.RotMat(),
		Unknown1: c.Blob(6),
	}
	// The two version gates are independent.
	if version >= VersionRF12 {
		b.Unknown1b = c.Blob(4)
	}
	b.Textures = readStrings(c)
	n := c.Count(12)
	b.Unknown2 = c.Blob(n * 12)
	b.Unknown3 = c.Blob(12)
	b.Vertices = readVec3s(c)
	b.Faces = readList(c, 56, readFace)
	b.Unknown4 = readList(c, 96, func(c *stream.Cursor) BrushUnknown4 {
		return BrushUnknown4{Helper: c.U32(), Data: c.Blob(4 * 0x15), F1: c.F32(), F2: c.F32()}
	})
	if version <= VersionLegacy {
		b.LegacyTriples = readList(c, 12, func(c *stream.Cursor) [3]int32 {
			return [3]int32{c.I32(), c.I32(), c.I32()}
		})
	}
	b.Flags = c.U32()
	b.Life = c.I32()
	b.State = c.U32()
	return b
}

// Lightmaps holds raw 24-bit lightmap images.
type Lightmaps struct {
	frame
	Lightmaps []Lightmap
}

type Lightmap struct {
	Width  uint32
	Height uint32
	Pix    []byte // RGB, Width*Height*3 bytes
}

func readLightmaps(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Lightmaps{Lightmaps: readList(c, 8, func(c *stream.Cursor) Lightmap {
		lm := Lightmap{Width: c.U32(), Height: c.U32()}
		n := uint64(lm.Width) * uint64(lm.Height) * 3
		if n > uint64(c.Remaining()) {
			c.Fail(&stream.OutOfBoundsError{Offset: c.Offset(), Want: int(min(n, 1<<31-1)), Len: c.Len()})
			return lm
		}
		lm.Pix = c.Blob(int(n))
		return lm
	})}
}

// Group types.
const (
	GroupUserDefined = 0
	GroupMoving      = 1
)

// Groups holds editor groups (TagGroups) or moving groups (TagMovingGroups).
type Groups struct {
	frame
	Groups []Group
}

type Group struct {
	Name    string
	Unknown uint8
	Type    uint8
	Mover   *MoverInfo // set for GroupMoving
	Objects []int32
	Brushes []int32
}

type MoverInfo struct {
	Keyframes []Keyframe
	Items     []GroupItem
	Props     MoverProps
}

type Keyframe struct {
	UID           int32
	Pos           stream.Vec3
	Rot           stream.Mat3
	Script        string
	Unknown       uint8
	PauseTime     float32
	DepartTime    float32
	ReturnTime    float32
	AccelTime     float32
	DecelTime     float32
	TriggerEvent  int32
	Item1         int32
	Item2         int32
	RotateDegrees float32
}

type GroupItem struct {
	UID    int32
	Offset stream.Vec3
	Rot    stream.Mat3
}

// Mover sound slots.
const (
	SoundStart = iota
	SoundLoop
	SoundStop
	SoundClose
)

type MoverProps struct {
	IsDoor               uint8
	RotateInPlace        uint8
	StartBackwards       uint8
	TravelTimeAsVelocity uint8
	ForceOrient          uint8
	NoPlayerCollide      uint8
	MovementType         uint32
	StartKeyframe        int32
	Sounds               [4]MoverSound
}

type MoverSound struct {
	File   string
	Volume float32
}

func readGroups(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Groups{Groups: readList(c, 12, readGroup)}
}

func readGroup(c *stream.Cursor) Group {
	g := Group{Name: c.RF1String(), Unknown: c.U8(), Type: c.U8()}
	if g.Type == GroupMoving {
		m := &MoverInfo{}
		m.Keyframes = readList(c, 90, func(c *stream.Cursor) Keyframe {
			return Keyframe{
				UID:           c.I32(),
				Pos:           c.Vec3(),
				Rot:           c.RotMat(),
				Script:        c.RF1String(),
				Unknown:       c.U8(),
				PauseTime:     c.F32(),
				DepartTime:    c.F32(),
				ReturnTime:    c.F32(),
				AccelTime:     c.F32(),
				DecelTime:     c.F32(),
				TriggerEvent:  c.I32(),
				Item1:         c.I32(),
				Item2:         c.I32(),
				RotateDegrees: c.F32(),
			}
		})
		m.Items = readList(c, 52, func(c *stream.Cursor) GroupItem {
			return GroupItem{UID: c.I32(), Offset: c.Vec3(), Rot: c.RotMat()}
		})
		p := &m.Props
		p.IsDoor = c.U8()
		p.RotateInPlace = c.U8()
		p.StartBackwards = c.U8()
		p.TravelTimeAsVelocity = c.U8()
		p.ForceOrient = c.U8()
		p.NoPlayerCollide = c.U8()
		p.MovementType = c.U32()
		p.StartKeyframe = c.I32()
		for i := range p.Sounds {
			p.Sounds[i] = MoverSound{File: c.RF1String(), Volume: c.F32()}
		}
		g.Mover = m
	}
	g.Objects = readI32s(c)
	g.Brushes = readI32s(c)
	return g
}
