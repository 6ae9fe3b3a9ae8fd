package level

import (
	"errors"
	"fmt"
	"testing"

	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/stream"
	"rf-asset-tools/internal/stream/streamtest"
)

func levelHeader(version uint32) *streamtest.Builder {
	return new(streamtest.Builder).
		U32(Magic, version, 0, 0, 0, 1, 0).
		RF1String("test level").
		RF1String("")
}

// decodeBody runs one section routine and checks that it consumed the
// body exactly.
func decodeBody(t *testing.T, tag Tag, version uint32, body []byte) Section {
	t.Helper()
	c := stream.New(body)
	sec := decoders[tag](c, tag, version)
	if err := c.Err(); err != nil {
		t.Fatalf("decode %s: %v", tag, err)
	}
	if c.Remaining() != 0 {
		t.Fatalf("decode %s: %d of %d bytes left", tag, c.Remaining(), len(body))
	}
	return sec
}

func TestDecode_PlayerStart(t *testing.T) {
	body := new(streamtest.Builder).
		F32(1, 2, 3).
		F32(7, 8, 9). // third row
		F32(1, 2, 3). // first row
		F32(4, 5, 6). // second row
		Bytes()
	data := levelHeader(0xC8).Section(uint32(TagPlayerStart), body).Bytes()

	lvl, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(lvl.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(lvl.Sections))
	}
	ps, ok := lvl.Sections[0].(*PlayerStart)
	if !ok {
		t.Fatalf("section type = %T, want *PlayerStart", lvl.Sections[0])
	}
	if ps.Pos != (stream.Vec3{1, 2, 3}) {
		t.Errorf("Pos = %v", ps.Pos)
	}
	want := stream.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if ps.Rot != want {
		t.Errorf("Rot = %v, want %v", ps.Rot, want)
	}
	if ps.Tag() != TagPlayerStart || ps.Size() != 48 {
		t.Errorf("frame = %s/%d", ps.Tag(), ps.Size())
	}
	if len(lvl.Warnings) != 0 {
		t.Errorf("Warnings = %v", lvl.Warnings)
	}
	if lvl.Header.Name != "test level" || lvl.Header.Version != 0xC8 {
		t.Errorf("Header = %+v", lvl.Header)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", new(streamtest.Builder).U32(0x12345678).Zeros(32).Bytes(), stream.ErrBadMagic},
		{"short header", new(streamtest.Builder).U32(Magic, 0xC8).Bytes(), stream.ErrOutOfBounds},
		{"truncated section", levelHeader(0xC8).U32(uint32(TagPlayerStart), 48).F32(1, 2).Bytes(), stream.ErrOutOfBounds},
		{"partial frame", levelHeader(0xC8).U8(1, 2).Bytes(), stream.ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_TruncatedSectionError(t *testing.T) {
	data := levelHeader(0xC8).U32(uint32(TagLights), 100).U32(0).Bytes()
	_, err := Decode(data)
	var se *SectionError
	if !errors.As(err, &se) {
		t.Fatalf("Decode() error = %v, want *SectionError", err)
	}
	if se.Tag != TagLights {
		t.Errorf("Tag = %s, want lights", se.Tag)
	}
}

func TestDecode_UnknownTagKeptRaw(t *testing.T) {
	ps := new(streamtest.Builder).F32(1, 2, 3).Identity().Bytes()
	data := levelHeader(0xC8).
		Section(0xDEAD, []byte{1, 2, 3, 4, 5}).
		Section(uint32(TagPlayerStart), ps).
		Section(uint32(TagEnd), nil).
		Bytes()

	lvl, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(lvl.Sections) != 3 {
		t.Fatalf("len(Sections) = %d, want 3", len(lvl.Sections))
	}
	raw, ok := lvl.Sections[0].(*Raw)
	if !ok || len(raw.Data) != 5 || raw.Tag() != 0xDEAD {
		t.Fatalf("section 0 = %#v", lvl.Sections[0])
	}
	if _, ok := lvl.Sections[1].(*PlayerStart); !ok {
		t.Errorf("section 1 = %T, want *PlayerStart", lvl.Sections[1])
	}
	if _, ok := lvl.Sections[2].(*End); !ok {
		t.Errorf("section 2 = %T, want *End", lvl.Sections[2])
	}
	if n := diag.Count(lvl.Warnings, diag.UnknownSectionTag); n != 1 {
		t.Errorf("unknown-tag warnings = %d, want 1", n)
	}
}

func TestDecode_OverReadResyncs(t *testing.T) {
	// A light count of 1 with no record: the routine runs past the body.
	bad := new(streamtest.Builder).U32(1).Zeros(8).Bytes()
	ps := new(streamtest.Builder).F32(4, 5, 6).Identity().Bytes()
	data := levelHeader(0xC8).
		Section(uint32(TagLights), bad).
		Section(uint32(TagPlayerStart), ps).
		Bytes()

	lvl, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, ok := lvl.Sections[0].(*Raw); !ok {
		t.Errorf("section 0 = %T, want *Raw", lvl.Sections[0])
	}
	start, ok := First[*PlayerStart](lvl)
	if !ok || start.Pos != (stream.Vec3{4, 5, 6}) {
		t.Errorf("player start not decoded after bad section: %+v", start)
	}
	if n := diag.Count(lvl.Warnings, diag.LengthMismatch); n != 1 {
		t.Errorf("length-mismatch warnings = %d, want 1", n)
	}
}

func TestDecode_UnderReadSkipsTail(t *testing.T) {
	body := new(streamtest.Builder).F32(1, 2, 3).Identity().Zeros(7).Bytes()
	data := levelHeader(0xC8).
		Section(uint32(TagPlayerStart), body).
		Section(uint32(TagEnd), nil).
		Bytes()

	lvl, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(lvl.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(lvl.Sections))
	}
	if lvl.Sections[1].Offset() != len(data)-8 {
		t.Errorf("End offset = %d, want %d", lvl.Sections[1].Offset(), len(data)-8)
	}
	if _, ok := lvl.Sections[0].(*PlayerStart); !ok {
		t.Errorf("section 0 = %T, want *PlayerStart", lvl.Sections[0])
	}
	if n := diag.Count(lvl.Warnings, diag.LengthMismatch); n != 1 {
		t.Errorf("length-mismatch warnings = %d, want 1", n)
	} else if w := lvl.Warnings[0]; w.Offset != lvl.Sections[0].Offset() || w.Tag != uint32(TagPlayerStart) {
		t.Errorf("warning = %+v, want player start at %d", w, lvl.Sections[0].Offset())
	}
}

func writeFace(b *streamtest.Builder, lightmap int32, verts ...uint32) {
	b.F32(0, 0, 1, 0).U32(0).I32(lightmap).U32(0).Zeros(8).U32(0).U8(0, 1).Zeros(2).U32(0).U32(0)
	b.U32(uint32(len(verts)))
	for _, v := range verts {
		b.U32(v).F32(0.5, 0.25)
		if lightmap != -1 {
			b.F32(0.75, 1)
		}
	}
}

func roomsBody(version uint32) []byte {
	b := new(streamtest.Builder)
	if version <= VersionLegacy {
		b.Zeros(6)
	} else {
		b.Zeros(10)
	}
	b.U32(1).RF1String("rck_wall.tga")
	b.U32(1).U32(0).F32(0.1, 0)
	// one liquid room with ambient light
	b.U32(1).U32(5).F32(0, 0, 0, 1, 1, 1).U8(0, 0, 0, 0, 1, 1, 0, 0).F32(100).RF1String("")
	b.F32(2).U8(0, 0, 255, 255).RF1String("water.tga").F32(10).U32(1, 128).Zeros(13).F32(1).F32(0, 0)
	b.U8(10, 20, 30, 255)
	b.U32(1).U32(0).U32(2).U32(4, 5)
	b.U32(1).Zeros(32)
	b.U32(4).F32(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0)
	b.U32(2)
	writeFace(b, -1, 0, 1, 2)
	writeFace(b, 0, 0, 2, 3)
	b.U32(1).U32(0).Zeros(88).U32(1)
	if version <= VersionLegacy {
		b.U32(1).U32(7, 8, 9)
	}
	return b.Bytes()
}

func TestRooms_VersionGates(t *testing.T) {
	tests := []struct {
		version     uint32
		wantUnknown int
		wantTriples int
	}{
		{0xB4, 6, 3},
		{0xB5, 10, 0},
		{0xC8, 10, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("v%X", tt.version), func(t *testing.T) {
			r := decodeBody(t, TagStaticGeometry, tt.version, roomsBody(tt.version)).(*Rooms)
			if len(r.Unknown) != tt.wantUnknown {
				t.Errorf("len(Unknown) = %d, want %d", len(r.Unknown), tt.wantUnknown)
			}
			if len(r.LegacyTriples) != tt.wantTriples {
				t.Errorf("len(LegacyTriples) = %d, want %d", len(r.LegacyTriples), tt.wantTriples)
			}
			if len(r.Rooms) != 1 || r.Rooms[0].LiquidProps == nil || r.Rooms[0].AmbientColor == nil {
				t.Fatalf("rooms = %+v", r.Rooms)
			}
			if got := r.Rooms[0].LiquidProps.SurfaceTexture; got != "water.tga" {
				t.Errorf("SurfaceTexture = %q", got)
			}
			if *r.Rooms[0].AmbientColor != (stream.Color{10, 20, 30, 255}) {
				t.Errorf("AmbientColor = %v", *r.Rooms[0].AmbientColor)
			}
			if len(r.Faces) != 2 {
				t.Fatalf("len(Faces) = %d", len(r.Faces))
			}
			if r.Faces[0].HasLightmap() || r.Faces[0].Vertices[0].LightUV != (stream.Vec2{}) {
				t.Errorf("face 0 should carry no lightmap UVs: %+v", r.Faces[0])
			}
			if !r.Faces[1].HasLightmap() || r.Faces[1].Vertices[2].LightUV != (stream.Vec2{0.75, 1}) {
				t.Errorf("face 1 lightmap UV = %+v", r.Faces[1].Vertices[2])
			}
			if len(r.LightmapRefs) != 1 || r.LightmapRefs[0].Face != 1 {
				t.Errorf("LightmapRefs = %+v", r.LightmapRefs)
			}
			if len(r.RoomLinks) != 1 || len(r.RoomLinks[0].Links) != 2 {
				t.Errorf("RoomLinks = %+v", r.RoomLinks)
			}
		})
	}
}

func brushBody(version uint32) []byte {
	b := new(streamtest.Builder).U32(1)
	b.I32(7).F32(1, 2, 3).Identity().Zeros(6)
	if version >= VersionRF12 {
		b.Zeros(4)
	}
	b.U32(1).RF1String("wall.tga")
	b.U32(2).Zeros(24)
	b.Zeros(12)
	b.U32(3).F32(0, 0, 0, 1, 0, 0, 0, 1, 0)
	b.U32(1)
	writeFace(b, -1, 0, 1, 2)
	b.U32(1).U32(9).Zeros(84).F32(1, 2)
	if version <= VersionLegacy {
		b.U32(1).I32(1, 2, 3)
	}
	b.U32(0x10).I32(100).U32(2)
	return b.Bytes()
}

func TestBrushes_IndependentVersionGates(t *testing.T) {
	tests := []struct {
		version     uint32
		wantExtra   bool
		wantTriples bool
	}{
		{0xB4, false, true},
		{0xB5, false, false},
		{0xC8, true, false},
	}
	for _, tt := range tests {
		for _, tag := range []Tag{TagBrushes, TagMovers} {
			sec := decodeBody(t, tag, tt.version, brushBody(tt.version)).(*Brushes)
			if len(sec.Brushes) != 1 {
				t.Fatalf("v%X %s: len(Brushes) = %d", tt.version, tag, len(sec.Brushes))
			}
			br := sec.Brushes[0]
			if (br.Unknown1b != nil) != tt.wantExtra {
				t.Errorf("v%X: Unknown1b = %v, want present=%v", tt.version, br.Unknown1b, tt.wantExtra)
			}
			if (len(br.LegacyTriples) == 1) != tt.wantTriples {
				t.Errorf("v%X: LegacyTriples = %v, want present=%v", tt.version, br.LegacyTriples, tt.wantTriples)
			}
			if br.UID != 7 || br.Flags != 0x10 || br.Life != 100 || br.State != 2 {
				t.Errorf("v%X: trailer = %d/%x/%d/%d", tt.version, br.UID, br.Flags, br.Life, br.State)
			}
			if br.Rot != stream.Identity3() {
				t.Errorf("v%X: Rot = %v", tt.version, br.Rot)
			}
			if len(br.Unknown2) != 24 || len(br.Unknown4) != 1 || len(br.Unknown4[0].Data) != 84 {
				t.Errorf("v%X: opaque blobs wrong: %d %d", tt.version, len(br.Unknown2), len(br.Unknown4))
			}
		}
	}
}

func eventRecord(b *streamtest.Builder, class string, withRot bool) {
	b.I32(1).RF1String(class).F32(1, 1, 1).RF1String("").U8(0).F32(0.5).U8(1, 0).I32(2, 3).F32(0, 0)
	b.RF1String("a").RF1String("b").U32(2).U32(10, 11)
	if withRot {
		b.Identity()
	}
	b.U8(1, 2, 3, 4)
}

func TestEvents_RotationByClass(t *testing.T) {
	b := new(streamtest.Builder).U32(4)
	eventRecord(b, "Teleport", true)
	eventRecord(b, "PLAY_VCLIP", true)
	eventRecord(b, "Explode", false)
	eventRecord(b, "alarm", true)

	ev := decodeBody(t, TagEvents, 0xC8, b.Bytes()).(*Events)
	wantRot := []bool{true, true, false, true}
	for i, e := range ev.Events {
		if (e.Rot != nil) != wantRot[i] {
			t.Errorf("event %d (%s): rot present = %v", i, e.Class, e.Rot != nil)
		}
		if e.Color != (stream.Color{1, 2, 3, 4}) || len(e.Links) != 2 {
			t.Errorf("event %d: %+v", i, e)
		}
	}
}

func TestRegions_ShapeSelection(t *testing.T) {
	geo := new(streamtest.Builder).U32(3).
		I32(1).U8(GeoRegionSphere).Zeros(3).F32(0, 0, 0).F32(5).
		I32(2).U8(GeoRegionBox).Zeros(3).F32(0, 0, 0).Identity().F32(1, 2, 3).
		I32(3).U8(GeoRegionSphere|GeoRegionShallow).Zeros(3).F32(0.5).F32(0, 0, 0).F32(6).
		Bytes()
	g := decodeBody(t, TagGeoRegions, 0xC8, geo).(*GeoRegions)
	if !g.Regions[0].Sphere() || g.Regions[0].Radius != 5 {
		t.Errorf("geo 0 = %+v", g.Regions[0])
	}
	if g.Regions[1].Sphere() || g.Regions[1].Dims != (stream.Vec3{1, 2, 3}) {
		t.Errorf("geo 1 = %+v", g.Regions[1])
	}
	if g.Regions[2].ShallowDepth != 0.5 || g.Regions[2].Radius != 6 {
		t.Errorf("geo 2 = %+v", g.Regions[2])
	}

	obj := func(b *streamtest.Builder) *streamtest.Builder {
		return b.I32(1).RF1String("c").F32(0, 0, 0).Identity().RF1String("").U8(0)
	}
	gas := new(streamtest.Builder).U32(2)
	obj(gas).U32(ShapeSphere).F32(4).U8(1, 1, 1, 1).F32(0.5)
	obj(gas).U32(ShapeBox).F32(1, 2, 3).U8(1, 1, 1, 1).F32(0.5)
	gr := decodeBody(t, TagGasRegions, 0xC8, gas.Bytes()).(*GasRegions)
	if gr.Regions[0].Radius != 4 || gr.Regions[1].Dims != (stream.Vec3{1, 2, 3}) {
		t.Errorf("gas regions = %+v", gr.Regions)
	}

	push := new(streamtest.Builder).U32(2)
	obj(push).I32(ShapeSphere).F32(4).F32(9).U8(1, 0).U16(3)
	obj(push).I32(ShapeOBB).F32(1, 2, 3).F32(9).U8(1, 0).U16(3)
	pr := decodeBody(t, TagPushRegions, 0xC8, push.Bytes()).(*PushRegions)
	if pr.Regions[0].Radius != 4 || pr.Regions[1].Dims != (stream.Vec3{1, 2, 3}) || pr.Regions[1].Turbulence != 3 {
		t.Errorf("push regions = %+v", pr.Regions)
	}
}

func TestTriggers_BoxOrSphere(t *testing.T) {
	trig := func(b *streamtest.Builder, box bool) {
		var isBox uint8
		if box {
			isBox = 1
		}
		b.I32(1).RF1String("t").U8(0, isBox).Zeros(3).F32(1).I16(-1).U16(0).U8(0).RF1String("key")
		b.U8(0, ActivatedByAll, 0, 1, 0).F32(1, 2, 3)
		if box {
			b.Identity().F32(4, 5, 6).U8(1)
		} else {
			b.F32(2.5)
		}
		b.I32(-1, -1, -1).U8(0).F32(0, 0).U32(0).U32(1).I32(42)
	}
	b := new(streamtest.Builder).U32(2)
	trig(b, false)
	trig(b, true)

	tr := decodeBody(t, TagTriggers, 0xC8, b.Bytes()).(*Triggers)
	s, x := tr.Triggers[0], tr.Triggers[1]
	if s.Radius != 2.5 || s.OneWay != 0 {
		t.Errorf("sphere trigger = %+v", s)
	}
	if x.Dims != (stream.Vec3{4, 5, 6}) || x.OneWay != 1 || x.KeyName != "key" || x.ResetsCount != -1 {
		t.Errorf("box trigger = %+v", x)
	}
	if len(x.Links) != 1 || x.Links[0] != 42 {
		t.Errorf("Links = %v", x.Links)
	}
}

func TestNavPoints_SecondPassConnections(t *testing.T) {
	b := new(streamtest.Builder).U32(2)
	b.I32(1).U8(0).F32(1).F32(0, 0, 0).F32(2).Zeros(4).U8(1).Identity().U8(0, 0, 0).F32(0).U32(1).I32(2)
	b.I32(2).U8(0).F32(1).F32(1, 0, 0).F32(2).Zeros(4).U8(0).U8(1, 0, 1).F32(3).U32(0)
	b.U8(1).U32(1)
	b.U8(2).U32(0, 5)

	np := decodeBody(t, TagNavPoints, 0xC8, b.Bytes()).(*NavPoints)
	if np.Points[0].Rot == nil || np.Points[1].Rot != nil {
		t.Errorf("directional rot presence wrong")
	}
	if len(np.Points[0].Connections) != 1 || len(np.Points[1].Connections) != 2 || np.Points[1].Connections[1] != 5 {
		t.Errorf("connections = %v / %v", np.Points[0].Connections, np.Points[1].Connections)
	}
}

func TestFiles_NamesAndValues(t *testing.T) {
	tga := new(streamtest.Builder).U32(2).RF1String("a.tga").RF1String("b.tga").Bytes()
	f := decodeBody(t, TagTGAFiles, 0xC8, tga).(*Files)
	if len(f.Names) != 2 || f.Values != nil {
		t.Errorf("tga files = %+v", f)
	}

	v3d := new(streamtest.Builder).U32(2).RF1String("a.v3d").RF1String("b.v3d").U32(1, 3).Bytes()
	f = decodeBody(t, TagV3DFiles, 0xC8, v3d).(*Files)
	if len(f.Names) != 2 || len(f.Values) != 2 || f.Values[1] != 3 {
		t.Errorf("v3d files = %+v", f)
	}
}

func TestLightmaps(t *testing.T) {
	b := new(streamtest.Builder).U32(2).
		U32(2, 1).U8(1, 2, 3, 4, 5, 6).
		U32(1, 1).U8(9, 9, 9)
	lm := decodeBody(t, TagLightmaps, 0xC8, b.Bytes()).(*Lightmaps)
	if len(lm.Lightmaps) != 2 || len(lm.Lightmaps[0].Pix) != 6 || lm.Lightmaps[1].Pix[0] != 9 {
		t.Errorf("lightmaps = %+v", lm.Lightmaps)
	}

	huge := new(streamtest.Builder).U32(1).U32(0xFFFF, 0xFFFF).Bytes()
	c := stream.New(huge)
	readLightmaps(c, TagLightmaps, 0xC8)
	if !errors.Is(c.Err(), stream.ErrOutOfBounds) {
		t.Errorf("huge lightmap err = %v", c.Err())
	}
}

func TestGroups_MovingGroup(t *testing.T) {
	b := new(streamtest.Builder).U32(2)
	b.RF1String("door").U8(0, GroupMoving)
	b.U32(1).I32(5).F32(0, 0, 0).Identity().RF1String("").U8(0).F32(1, 2, 3, 4, 5).I32(0, 0, 0).F32(90)
	b.U32(1).I32(6).F32(1, 1, 1).Identity()
	b.U8(1, 0, 0, 0, 0, 0).U32(1).I32(0)
	for _, snd := range []string{"start.wav", "loop.wav", "stop.wav", "close.wav"} {
		b.RF1String(snd).F32(1)
	}
	b.U32(0).U32(1).I32(6)
	b.RF1String("misc").U8(0, GroupUserDefined).U32(1).I32(3).U32(0)

	g := decodeBody(t, TagMovingGroups, 0xC8, b.Bytes()).(*Groups)
	door := g.Groups[0]
	if door.Mover == nil || len(door.Mover.Keyframes) != 1 || door.Mover.Keyframes[0].RotateDegrees != 90 {
		t.Fatalf("door = %+v", door)
	}
	if door.Mover.Props.Sounds[SoundClose].File != "close.wav" {
		t.Errorf("close sound = %q", door.Mover.Props.Sounds[SoundClose].File)
	}
	if g.Groups[1].Mover != nil || len(g.Groups[1].Objects) != 1 {
		t.Errorf("misc = %+v", g.Groups[1])
	}
}

func TestSectionsOfAndFilter(t *testing.T) {
	ps := new(streamtest.Builder).F32(0, 0, 0).Identity().Bytes()
	lights := new(streamtest.Builder).U32(0).Bytes()
	data := levelHeader(0xC8).
		Section(uint32(TagLights), lights).
		Section(uint32(TagPlayerStart), ps).
		Section(uint32(TagEditorLights), lights).
		Bytes()

	lvl, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := len(SectionsOf[*Lights](lvl)); got != 2 {
		t.Errorf("SectionsOf[*Lights] = %d, want 2", got)
	}
	if got := len(lvl.Filter(TagEditorLights)); got != 1 {
		t.Errorf("Filter(editor_lights) = %d, want 1", got)
	}
	if _, ok := First[*Rooms](lvl); ok {
		t.Errorf("First[*Rooms] found a section in a level without geometry")
	}
}

func TestTagString(t *testing.T) {
	if TagPlayerStart.String() != "player_start" {
		t.Errorf("String() = %q", TagPlayerStart.String())
	}
	if Tag(0x1234).Known() {
		t.Errorf("Known() true for unknown tag")
	}
	if !TagEnd.Known() || !TagBrushes.Known() {
		t.Errorf("Known() false for decoded tag")
	}
}
