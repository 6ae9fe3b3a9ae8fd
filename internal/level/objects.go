package level

import (
	"strings"

	"rf-asset-tools/internal/stream"
)

// objectSize is the smallest encoded Object.
const objectSize = 4 + 2 + 12 + 36 + 2 + 1

// Object is the header shared by most placed level objects.
type Object struct {
	UID     int32
	Class   string
	Pos     stream.Vec3
	Rot     stream.Mat3
	Script  string
	Unknown uint8
}

func readObject(c *stream.Cursor) Object {
	return Object{
		UID:     c.I32(),
		Class:   c.RF1String(),
		Pos:     c.Vec3(),
		Rot:     c.RotMat(),
		Script:  c.RF1String(),
		Unknown: c.U8(),
	}
}

// Objects holds sections that carry nothing but object headers
// (TagTargets, TagCutscenePathNodes).
type Objects struct {
	frame
	Objects []Object
}

func readObjects(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Objects{Objects: readList(c, objectSize, readObject)}
}

// Geo region flags.
const (
	GeoRegionSphere  = 0x02
	GeoRegionBox     = 0x04
	GeoRegionShallow = 0x20
	GeoRegionIce     = 0x40
)

type GeoRegions struct {
	frame
	Regions []GeoRegion
}

type GeoRegion struct {
	UID          int32
	Flags        uint8
	Unknown      []byte
	ShallowDepth float32 // set with GeoRegionShallow
	Pos          stream.Vec3
	Radius       float32 // sphere
	Rot          stream.Mat3
	Dims         stream.Vec3
}

// Sphere reports whether the region is a sphere rather than a box.
func (g *GeoRegion) Sphere() bool { return g.Flags&GeoRegionSphere != 0 }

func readGeoRegions(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &GeoRegions{Regions: readList(c, 24, func(c *stream.Cursor) GeoRegion {
		g := GeoRegion{UID: c.I32(), Flags: c.U8(), Unknown: c.Blob(3)}
		if g.Flags&GeoRegionShallow != 0 {
			g.ShallowDepth = c.F32()
		}
		g.Pos = c.Vec3()
		if g.Sphere() {
			g.Radius = c.F32()
		} else {
			g.Rot = c.RotMat()
			g.Dims = c.Vec3()
		}
		return g
	})}
}

// Lights holds compiled lights (TagLights) or editor-only lights
// (TagEditorLights).
type Lights struct {
	frame
	Lights []Light
}

type Light struct {
	Object
	Flags1              uint8
	Flags2              uint8
	Unknown2            uint8
	Unknown3            uint8
	Color               stream.Color
	Range               float32
	FOV                 float32
	FOVDropoff          float32
	IntensityAtMaxRange float32
	Dropoff             int32
	TubeWidth           float32
	OnIntensity         float32
	OnTime              float32
	OnTimeVariance      float32
	OffIntensity        float32
	OffTime             float32
	OffTimeVariance     float32
}

func readLights(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Lights{Lights: readList(c, objectSize+56, func(c *stream.Cursor) Light {
		return Light{
			Object:              readObject(c),
			Flags1:              c.U8(),
			Flags2:              c.U8(),
			Unknown2:            c.U8(),
			Unknown3:            c.U8(),
			Color:               c.Color(),
			Range:               c.F32(),
			FOV:                 c.F32(),
			FOVDropoff:          c.F32(),
			IntensityAtMaxRange: c.F32(),
			Dropoff:             c.I32(),
			TubeWidth:           c.F32(),
			OnIntensity:         c.F32(),
			OnTime:              c.F32(),
			OnTimeVariance:      c.F32(),
			OffIntensity:        c.F32(),
			OffTime:             c.F32(),
			OffTimeVariance:     c.F32(),
		}
	})}
}

type CutsceneCameras struct {
	frame
	Cameras []Object
}

func readCutsceneCameras(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &CutsceneCameras{Cameras: readList(c, objectSize, readObject)}
}

type AmbientSounds struct {
	frame
	Sounds []AmbientSound
}

type AmbientSound struct {
	UID         int32
	Pos         stream.Vec3
	Unknown     uint8
	File        string
	MinDist     float32
	VolumeScale float32
	Rolloff     float32
	StartDelay  int32
}

func readAmbientSounds(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &AmbientSounds{Sounds: readList(c, 35, func(c *stream.Cursor) AmbientSound {
		return AmbientSound{
			UID:         c.I32(),
			Pos:         c.Vec3(),
			Unknown:     c.U8(),
			File:        c.RF1String(),
			MinDist:     c.F32(),
			VolumeScale: c.F32(),
			Rolloff:     c.F32(),
			StartDelay:  c.I32(),
		}
	})}
}

// rotatedEvents are the event classes that store an orientation.
var rotatedEvents = map[string]bool{
	"alarm":           true,
	"teleport":        true,
	"teleport_player": true,
	"play_vclip":      true,
}

type Events struct {
	frame
	Events []Event
}

type Event struct {
	UID     int32
	Class   string
	Pos     stream.Vec3
	Script  string
	Unknown uint8
	Delay   float32
	Bool1   uint8
	Bool2   uint8
	Int1    int32
	Int2    int32
	Float1  float32
	Float2  float32
	String1 string
	String2 string
	Links   []uint32
	Rot     *stream.Mat3 // set for alarm, teleport, teleport_player and play_vclip
	Color   stream.Color
}

func readEvents(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Events{Events: readList(c, 51, readEvent)}
}

func readEvent(c *stream.Cursor) Event {
	e := Event{
		UID:     c.I32(),
		Class:   c.RF1String(),
		Pos:     c.Vec3(),
		Script:  c.RF1String(),
		Unknown: c.U8(),
		Delay:   c.F32(),
		Bool1:   c.U8(),
		Bool2:   c.U8(),
		Int1:    c.I32(),
		Int2:    c.I32(),
		Float1:  c.F32(),
		Float2:  c.F32(),
		String1: c.RF1String(),
		String2: c.RF1String(),
	}
	e.Links = readU32s(c)
	if rotatedEvents[strings.ToLower(e.Class)] {
		rot := c.RotMat()
		e.Rot = &rot
	}
	e.Color = c.Color()
	return e
}

type Respawns struct {
	frame
	Respawns []Respawn
}

type Respawn struct {
	UID      int32
	Pos      stream.Vec3
	Rot      stream.Mat3
	Script   string
	Unknown  uint8
	Team     int32
	RedTeam  uint8
	BlueTeam uint8
	Bot      uint8
}

func readRespawns(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Respawns{Respawns: readList(c, 62, func(c *stream.Cursor) Respawn {
		return Respawn{
			UID:      c.I32(),
			Pos:      c.Vec3(),
			Rot:      c.RotMat(),
			Script:   c.RF1String(),
			Unknown:  c.U8(),
			Team:     c.I32(),
			RedTeam:  c.U8(),
			BlueTeam: c.U8(),
			Bot:      c.U8(),
		}
	})}
}

type LevelProperties struct {
	frame
	GeomodTexture string
	Hardness      uint32
	Ambient       stream.Color
	Unknown       uint8
	Fog           stream.Color
	FogNear       float32
	FogFar        float32
}

func readLevelProperties(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &LevelProperties{
		GeomodTexture: c.RF1String(),
		Hardness:      c.U32(),
		Ambient:       c.Color(),
		Unknown:       c.U8(),
		Fog:           c.Color(),
		FogNear:       c.F32(),
		FogFar:        c.F32(),
	}
}

type ParticleEmitters struct {
	frame
	Emitters []ParticleEmitter
}

type ParticleEmitter struct {
	Object
	Type               int32
	SphereRadius       float32
	PlaneWidth         float32
	PlaneDepth         float32
	Bitmap             string
	SpawnDelay         float32
	SpawnDelayVariance float32
	Velocity           float32
	VelocityVariance   float32
	Acceleration       float32
	Decay              float32
	DecayVariance      float32
	Radius             float32
	RadiusVariance     float32
	GrowthRate         float32
	Gravity            float32
	RandomDirection    float32
	Color              stream.Color
	FadeColor          stream.Color
	Flags              uint8
	Unknown2           []byte
	ParticleFlags1     uint8
	ParticleFlags2     uint8
	BounceStick        uint8
	SwirlPush          uint8
	InitiallyOn        uint8
	OnTime             float32
	OnTimeVariance     float32
	OffTime            float32
	OffTimeVariance    float32
	ActiveDistance     float32
}

func readParticleEmitters(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &ParticleEmitters{Emitters: readList(c, objectSize+100, func(c *stream.Cursor) ParticleEmitter {
		return ParticleEmitter{
			Object:             readObject(c),
			Type:               c.I32(),
			SphereRadius:       c.F32(),
			PlaneWidth:         c.F32(),
			PlaneDepth:         c.F32(),
			Bitmap:             c.RF1String(),
			SpawnDelay:         c.F32(),
			SpawnDelayVariance: c.F32(),
			Velocity:           c.F32(),
			VelocityVariance:   c.F32(),
			Acceleration:       c.F32(),
			Decay:              c.F32(),
			DecayVariance:      c.F32(),
			Radius:             c.F32(),
			RadiusVariance:     c.F32(),
			GrowthRate:         c.F32(),
			Gravity:            c.F32(),
			RandomDirection:    c.F32(),
			Color:              c.Color(),
			FadeColor:          c.Color(),
			Flags:              c.U8(),
			Unknown2:           c.Blob(3),
			ParticleFlags1:     c.U8(),
			ParticleFlags2:     c.U8(),
			BounceStick:        c.U8(),
			SwirlPush:          c.U8(),
			InitiallyOn:        c.U8(),
			OnTime:             c.F32(),
			OnTimeVariance:     c.F32(),
			OffTime:            c.F32(),
			OffTimeVariance:    c.F32(),
			ActiveDistance:     c.F32(),
		}
	})}
}

// Gas and push region shapes.
const (
	ShapeSphere = 1
	ShapeBox    = 2
	ShapeOBB    = 3 // push regions only
)

type GasRegions struct {
	frame
	Regions []GasRegion
}

type GasRegion struct {
	Object
	Type    uint32
	Radius  float32 // ShapeSphere
	Dims    stream.Vec3
	Color   stream.Color
	Density float32
}

func readGasRegions(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &GasRegions{Regions: readList(c, objectSize+16, func(c *stream.Cursor) GasRegion {
		g := GasRegion{Object: readObject(c), Type: c.U32()}
		if g.Type == ShapeSphere {
			g.Radius = c.F32()
		} else {
			g.Dims = c.Vec3()
		}
		g.Color = c.Color()
		g.Density = c.F32()
		return g
	})}
}

// Room effect types.
const (
	EffectSkyRoom      = 1
	EffectLiquidRoom   = 2
	EffectAmbientLight = 3
	EffectNone         = 4
)

type RoomEffects struct {
	frame
	Effects []RoomEffect
}

type RoomEffect struct {
	Type    uint32
	Ambient *stream.Color // EffectAmbientLight
	Liquid  *LiquidEffect // EffectLiquidRoom
	Cold    uint8
	Outside uint8
	Airlock uint8
	Object
}

type LiquidEffect struct {
	Waveform       uint32
	Depth          float32
	SurfaceTexture string
	Color          stream.Color
	Visibility     float32
	Type           uint32
	Plankton       uint8
	PixelsPerMeter [2]int32
	Angle          float32
	Scroll         stream.Vec2
}

func readRoomEffects(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &RoomEffects{Effects: readList(c, objectSize+7, func(c *stream.Cursor) RoomEffect {
		e := RoomEffect{Type: c.U32()}
		switch e.Type {
		case EffectAmbientLight:
			col := c.Color()
			e.Ambient = &col
		case EffectLiquidRoom:
			e.Liquid = &LiquidEffect{
				Waveform:       c.U32(),
				Depth:          c.F32(),
				SurfaceTexture: c.RF1String(),
				Color:          c.Color(),
				Visibility:     c.F32(),
				Type:           c.U32(),
				Plankton:       c.U8(),
				PixelsPerMeter: [2]int32{c.I32(), c.I32()},
				Angle:          c.F32(),
				Scroll:         c.Vec2(),
			}
		}
		e.Cold = c.U8()
		e.Outside = c.U8()
		e.Airlock = c.U8()
		e.Object = readObject(c)
		return e
	})}
}

type ClimbingRegions struct {
	frame
	Regions []ClimbingRegion
}

type ClimbingRegion struct {
	Object
	Type uint32 // 1 ladder, 2 chain fence
	Dims stream.Vec3
}

func readClimbingRegions(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &ClimbingRegions{Regions: readList(c, objectSize+16, func(c *stream.Cursor) ClimbingRegion {
		return ClimbingRegion{Object: readObject(c), Type: c.U32(), Dims: c.Vec3()}
	})}
}

type BoltEmitters struct {
	frame
	Emitters []BoltEmitter
}

type BoltEmitter struct {
	Object
	Target             uint32
	SourceControl      float32
	TargetControl      float32
	Thickness          float32
	Jitter             float32
	Segments           int32
	SpawnDelay         float32
	SpawnDelayVariance float32
	Decay              float32
	DecayVariance      float32
	Color              stream.Color
	Bitmap             string
	Flags              uint8
	Unknown2           []byte
	InitiallyOn        uint8
}

func readBoltEmitters(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &BoltEmitters{Emitters: readList(c, objectSize+51, func(c *stream.Cursor) BoltEmitter {
		return BoltEmitter{
			Object:             readObject(c),
			Target:             c.U32(),
			SourceControl:      c.F32(),
			TargetControl:      c.F32(),
			Thickness:          c.F32(),
			Jitter:             c.F32(),
			Segments:           c.I32(),
			SpawnDelay:         c.F32(),
			SpawnDelayVariance: c.F32(),
			Decay:              c.F32(),
			DecayVariance:      c.F32(),
			Color:              c.Color(),
			Bitmap:             c.RF1String(),
			Flags:              c.U8(),
			Unknown2:           c.Blob(3),
			InitiallyOn:        c.U8(),
		}
	})}
}

type Decals struct {
	frame
	Decals []Decal
}

type Decal struct {
	Object
	Dims            stream.Vec3
	Bitmap          string
	Alpha           uint8
	Unknown2        []byte
	SelfIlluminated uint8
	Tiling          uint8
	Unknown3        []byte
	Scale           float32
}

func readDecals(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Decals{Decals: readList(c, objectSize+27, func(c *stream.Cursor) Decal {
		return Decal{
			Object:          readObject(c),
			Dims:            c.Vec3(),
			Bitmap:          c.RF1String(),
			Alpha:           c.U8(),
			Unknown2:        c.Blob(3),
			SelfIlluminated: c.U8(),
			Tiling:          c.U8(),
			Unknown3:        c.Blob(3),
			Scale:           c.F32(),
		}
	})}
}

type PushRegions struct {
	frame
	Regions []PushRegion
}

type PushRegion struct {
	Object
	Type       int32
	Radius     float32 // ShapeSphere
	Dims       stream.Vec3
	Strength   float32
	Flags      uint8
	Unknown2   uint8
	Turbulence uint16
}

func readPushRegions(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &PushRegions{Regions: readList(c, objectSize+16, func(c *stream.Cursor) PushRegion {
		p := PushRegion{Object: readObject(c), Type: c.I32()}
		if p.Type == ShapeSphere {
			p.Radius = c.F32()
		} else {
			p.Dims = c.Vec3()
		}
		p.Strength = c.F32()
		p.Flags = c.U8()
		p.Unknown2 = c.U8()
		p.Turbulence = c.U16()
		return p
	})}
}

type Cutscenes struct {
	frame
	Cutscenes []Cutscene
}

type Cutscene struct {
	UID        int32
	HidePlayer uint8
	FOV        float32
	Shots      []Shot
}

type Shot struct {
	Camera   int32
	PreWait  float32
	PathTime float32
	PostWait float32
	LookAt   int32
	Trigger  int32
	Path     string
}

func readCutscenes(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Cutscenes{Cutscenes: readList(c, 13, func(c *stream.Cursor) Cutscene {
		cs := Cutscene{UID: c.I32(), HidePlayer: c.U8(), FOV: c.F32()}
		cs.Shots = readList(c, 26, func(c *stream.Cursor) Shot {
			return Shot{
				Camera:   c.I32(),
				PreWait:  c.F32(),
				PathTime: c.F32(),
				PostWait: c.F32(),
				LookAt:   c.I32(),
				Trigger:  c.I32(),
				Path:     c.RF1String(),
			}
		})
		return cs
	})}
}

type CutscenePaths struct {
	frame
	Paths []CutscenePath
}

type CutscenePath struct {
	Name  string
	Nodes []int32
}

func readCutscenePaths(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &CutscenePaths{Paths: readList(c, 6, func(c *stream.Cursor) CutscenePath {
		return CutscenePath{Name: c.RF1String(), Nodes: readI32s(c)}
	})}
}

// Files lists file names referenced by the level. TagTGAFiles carries
// names only; the other file sections pair each name with a value.
type Files struct {
	frame
	Names  []string
	Values []uint32
}

func readFiles(c *stream.Cursor, tag Tag, _ uint32) Section {
	if tag == TagTGAFiles {
		return &Files{Names: readStrings(c)}
	}
	f := &Files{}
	n := c.Count(6)
	f.Names = make([]string, 0, n)
	for i := 0; i < n && c.Err() == nil; i++ {
		f.Names = append(f.Names, c.RF1String())
	}
	f.Values = make([]uint32, 0, n)
	for i := 0; i < n && c.Err() == nil; i++ {
		f.Values = append(f.Values, c.U32())
	}
	return f
}

type EAXEffects struct {
	frame
	Effects []EAXEffect
}

type EAXEffect struct {
	Effect string
	Object
}

func readEAXEffects(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &EAXEffects{Effects: readList(c, objectSize+2, func(c *stream.Cursor) EAXEffect {
		return EAXEffect{Effect: c.RF1String(), Object: readObject(c)}
	})}
}

type WaypointLists struct {
	frame
	Lists []WaypointList
}

type WaypointList struct {
	Name      string
	NavPoints []uint32
}

func readWaypointLists(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &WaypointLists{Lists: readList(c, 6, func(c *stream.Cursor) WaypointList {
		return WaypointList{Name: c.RF1String(), NavPoints: readU32s(c)}
	})}
}

type NavPoints struct {
	frame
	Points []NavPoint
}

type NavPoint struct {
	UID         int32
	Unknown     uint8
	Height      float32
	Pos         stream.Vec3
	Radius      float32
	Unknown2    []byte
	Directional uint8
	Rot         *stream.Mat3 // set when Directional == 1
	Cover       uint8
	Hide        uint8
	Crouch      uint8
	PauseTime   float32
	Links       []int32
	// Connections is stored in a second pass after all points.
	Connections []uint32
}

func readNavPoints(c *stream.Cursor, _ Tag, _ uint32) Section {
	n := c.Count(42)
	pts := make([]NavPoint, 0, n)
	for i := 0; i < n && c.Err() == nil; i++ {
		p := NavPoint{
			UID:      c.I32(),
			Unknown:  c.U8(),
			Height:   c.F32(),
			Pos:      c.Vec3(),
			Radius:   c.F32(),
			Unknown2: c.Blob(4),
		}
		p.Directional = c.U8()
		if p.Directional == 1 {
			rot := c.RotMat()
			p.Rot = &rot
		}
		p.Cover = c.U8()
		p.Hide = c.U8()
		p.Crouch = c.U8()
		p.PauseTime = c.F32()
		p.Links = readI32s(c)
		pts = append(pts, p)
	}
	for i := range pts {
		if c.Err() != nil {
			break
		}
		m := int(c.U8())
		pts[i].Connections = make([]uint32, 0, m)
		for j := 0; j < m && c.Err() == nil; j++ {
			pts[i].Connections = append(pts[i].Connections, c.U32())
		}
	}
	return &NavPoints{Points: pts}
}

type Entities struct {
	frame
	Entities []Entity
}

type Entity struct {
	Object
	Cooperation            uint32
	Friendliness           uint32
	Team                   uint32
	WaypointList           string
	WaypointMethod         string
	Unknown2               uint8
	Boarded                uint8
	ReadyToFire            uint8
	OnlyAttackPlayer       uint8
	WeaponHolstered        uint8
	Deaf                   uint8
	SweepMinAngle          float32
	SweepMaxAngle          float32
	IgnoreTerrainFiring    uint8
	Unknown3               uint8
	StartCrouched          uint8
	Life                   float32
	Armor                  float32
	FOV                    int32
	PrimaryWeapon          string
	SecondaryWeapon        string
	ItemDrop               string
	StateAnim              string
	CorpsePose             string
	Skin                   string
	DeathAnim              string
	AIMode                 uint8
	AIAttackStyle          uint8
	Unknown4               []byte
	TurretUID              int32
	AlertCameraUID         int32
	AlarmEventUID          int32
	Run                    uint8
	StartHidden            uint8
	WearHelmet             uint8
	EndGameIfKilled        uint8
	CoverFromWeapon        uint8
	QuestionUnarmedPlayer  uint8
	DontHum                uint8
	NoShadow               uint8
	AlwaysSimulate         uint8
	PerfectAim             uint8
	PermanentCorpse        uint8
	NeverFly               uint8
	NeverLeave             uint8
	NoPersonaMessages      uint8
	FadeCorpseImmediately  uint8
	NeverCollideWithPlayer uint8
	UseCustomAttackRange   uint8
	CustomAttackRange      float32 // set when UseCustomAttackRange == 1
	LeftHand               string
	RightHand              string
}

func readEntities(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Entities{Entities: readList(c, objectSize+90, readEntity)}
}

func readEntity(c *stream.Cursor) Entity {
	e := Entity{
		Object:              readObject(c),
		Cooperation:         c.U32(),
		Friendliness:        c.U32(),
		Team:                c.U32(),
		WaypointList:        c.RF1String(),
		WaypointMethod:      c.RF1String(),
		Unknown2:            c.U8(),
		Boarded:             c.U8(),
		ReadyToFire:         c.U8(),
		OnlyAttackPlayer:    c.U8(),
		WeaponHolstered:     c.U8(),
		Deaf:                c.U8(),
		SweepMinAngle:       c.F32(),
		SweepMaxAngle:       c.F32(),
		IgnoreTerrainFiring: c.U8(),
		Unknown3:            c.U8(),
		StartCrouched:       c.U8(),
		Life:                c.F32(),
		Armor:               c.F32(),
		FOV:                 c.I32(),
		PrimaryWeapon:       c.RF1String(),
		SecondaryWeapon:     c.RF1String(),
		ItemDrop:            c.RF1String(),
		StateAnim:           c.RF1String(),
		CorpsePose:          c.RF1String(),
		Skin:                c.RF1String(),
		DeathAnim:           c.RF1String(),
		AIMode:              c.U8(),
		AIAttackStyle:       c.U8(),
		Unknown4:            c.Blob(4),
		TurretUID:           c.I32(),
		AlertCameraUID:      c.I32(),
		AlarmEventUID:       c.I32(),
	}
	flags := [...]*uint8{
		&e.Run, &e.StartHidden, &e.WearHelmet, &e.EndGameIfKilled,
		&e.CoverFromWeapon, &e.QuestionUnarmedPlayer, &e.DontHum, &e.NoShadow,
		&e.AlwaysSimulate, &e.PerfectAim, &e.PermanentCorpse, &e.NeverFly,
		&e.NeverLeave, &e.NoPersonaMessages, &e.FadeCorpseImmediately,
		&e.NeverCollideWithPlayer, &e.UseCustomAttackRange,
	}
	for _, f := range flags {
		*f = c.U8()
	}
	if e.UseCustomAttackRange == 1 {
		e.CustomAttackRange = c.F32()
	}
	e.LeftHand = c.RF1String()
	e.RightHand = c.RF1String()
	return e
}

type Items struct {
	frame
	Items []Item
}

type Item struct {
	Object
	Count       int32
	RespawnTime int32
	Team        int32
}

func readItems(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Items{Items: readList(c, objectSize+12, func(c *stream.Cursor) Item {
		return Item{Object: readObject(c), Count: c.I32(), RespawnTime: c.I32(), Team: c.I32()}
	})}
}

type Clutter struct {
	frame
	Clutter []ClutterObject
}

// ClutterObject has the object header layout except for a 5-byte blob
// in place of the trailing unknown byte.
type ClutterObject struct {
	UID     int32
	Class   string
	Pos     stream.Vec3
	Rot     stream.Mat3
	Script  string
	Unknown []byte
	Skin    string
	Links   []int32
}

func readClutter(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Clutter{Clutter: readList(c, objectSize+4+2+4, func(c *stream.Cursor) ClutterObject {
		return ClutterObject{
			UID:     c.I32(),
			Class:   c.RF1String(),
			Pos:     c.Vec3(),
			Rot:     c.RotMat(),
			Script:  c.RF1String(),
			Unknown: c.Blob(5),
			Skin:    c.RF1String(),
			Links:   readI32s(c),
		}
	})}
}

// Trigger activators.
const (
	ActivatedByPlayers = iota
	ActivatedByAll
	ActivatedByLinked
	ActivatedByAI
	ActivatedByVehicle
	ActivatedByGeomods
)

type Triggers struct {
	frame
	Triggers []Trigger
}

type Trigger struct {
	UID              int32
	Script           string
	Unknown          uint8
	IsBox            uint8
	Unknown2         []byte
	ResetsAfter      float32
	ResetsCount      int16
	Unknown3         uint16
	UseKeyRequired   uint8
	KeyName          string
	WeaponActivates  uint8
	ActivatedBy      uint8
	IsNPC            uint8
	IsAuto           uint8
	PlayerInVehicle  uint8
	Pos              stream.Vec3
	Radius           float32 // sphere triggers
	Rot              stream.Mat3
	Dims             stream.Vec3
	OneWay           uint8
	AirlockRoom      int32
	AttachedTo       int32
	UseClutter       int32
	Disabled         uint8
	ButtonActiveTime float32
	InsideTime       float32
	Team             uint32
	Links            []int32
}

func readTriggers(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &Triggers{Triggers: readList(c, 66, readTrigger)}
}

func readTrigger(c *stream.Cursor) Trigger {
	t := Trigger{
		UID:             c.I32(),
		Script:          c.RF1String(),
		Unknown:         c.U8(),
		IsBox:           c.U8(),
		Unknown2:        c.Blob(3),
		ResetsAfter:     c.F32(),
		ResetsCount:     c.I16(),
		Unknown3:        c.U16(),
		UseKeyRequired:  c.U8(),
		KeyName:         c.RF1String(),
		WeaponActivates: c.U8(),
		ActivatedBy:     c.U8(),
		IsNPC:           c.U8(),
		IsAuto:          c.U8(),
		PlayerInVehicle: c.U8(),
		Pos:             c.Vec3(),
	}
	if t.IsBox == 0 {
		t.Radius = c.F32()
	} else {
		t.Rot = c.RotMat()
		t.Dims = c.Vec3()
		t.OneWay = c.U8()
	}
	t.AirlockRoom = c.I32()
	t.AttachedTo = c.I32()
	t.UseClutter = c.I32()
	t.Disabled = c.U8()
	t.ButtonActiveTime = c.F32()
	t.InsideTime = c.F32()
	t.Team = c.U32()
	t.Links = readI32s(c)
	return t
}

type PlayerStart struct {
	frame
	Pos stream.Vec3
	Rot stream.Mat3
}

func readPlayerStart(c *stream.Cursor, _ Tag, _ uint32) Section {
	return &PlayerStart{Pos: c.Vec3(), Rot: c.RotMat()}
}

// ViewportFreeLook is the only viewport type without a zoom value.
const ViewportFreeLook = 0

type LevelInfo struct {
	frame
	Unknown     uint32
	Name        string
	Author      string
	Date        string
	Unknown2    uint8
	Multiplayer uint8
	// Viewports are top-left, top-right, bottom-left, bottom-right.
	Viewports [4]Viewport
}

type Viewport struct {
	Type uint32
	Zoom float32
	Pos  stream.Vec3
	Rot  stream.Mat3
}

func readLevelInfo(c *stream.Cursor, _ Tag, _ uint32) Section {
	li := &LevelInfo{
		Unknown:     c.U32(),
		Name:        c.RF1String(),
		Author:      c.RF1String(),
		Date:        c.RF1String(),
		Unknown2:    c.U8(),
		Multiplayer: c.U8(),
	}
	for i := range li.Viewports {
		v := &li.Viewports[i]
		v.Type = c.U32()
		if v.Type != ViewportFreeLook {
			v.Zoom = c.F32()
		}
		v.Pos = c.Vec3()
		v.Rot = c.RotMat()
	}
	return li
}
