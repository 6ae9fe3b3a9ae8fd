package level

import "rf-asset-tools/internal/stream"

// Section is one decoded level section. The concrete types are the
// pointer types in this package; Raw holds sections that were not decoded.
type Section interface {
	Tag() Tag
	// Offset is the position of the section's tag in the level buffer.
	Offset() int
	// Size is the declared body length, excluding the 8-byte frame.
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

// Raw keeps the bytes of a section with an unknown tag, or of one whose
// body could not be decoded within its declared length.
type Raw struct {
	frame
	Data []byte
}

// End is the terminating section. Data is normally empty.
type End struct {
	frame
	Data []byte
}

// decodeFunc decodes a section body. The cursor is bounded to the body.
type decodeFunc func(c *stream.Cursor, tag Tag, version uint32) Section

var decoders = map[Tag]decodeFunc{
	TagStaticGeometry:    readRooms,
	TagGeoRegions:        readGeoRegions,
	TagLights:            readLights,
	TagEditorLights:      readLights,
	TagCutsceneCameras:   readCutsceneCameras,
	TagAmbientSounds:     readAmbientSounds,
	TagEvents:            readEvents,
	TagMPRespawns:        readRespawns,
	TagLevelProperties:   readLevelProperties,
	TagParticleEmitters:  readParticleEmitters,
	TagGasRegions:        readGasRegions,
	TagRoomEffects:       readRoomEffects,
	TagClimbingRegions:   readClimbingRegions,
	TagBoltEmitters:      readBoltEmitters,
	TagTargets:           readObjects,
	TagCutscenePathNodes: readObjects,
	TagDecals:            readDecals,
	TagPushRegions:       readPushRegions,
	TagLightmaps:         readLightmaps,
	TagMovers:            readBrushes,
	TagBrushes:           readBrushes,
	TagMovingGroups:      readGroups,
	TagGroups:            readGroups,
	TagCutscenes:         readCutscenes,
	TagCutscenePaths:     readCutscenePaths,
	TagTGAFiles:          readFiles,
	TagVCMFiles:          readFiles,
	TagMVFFiles:          readFiles,
	TagV3DFiles:          readFiles,
	TagVFXFiles:          readFiles,
	TagEAXEffects:        readEAXEffects,
	TagWaypointLists:     readWaypointLists,
	TagNavPoints:         readNavPoints,
	TagEntities:          readEntities,
	TagItems:             readItems,
	TagClutter:           readClutter,
	TagTriggers:          readTriggers,
	TagPlayerStart:       readPlayerStart,
	TagLevelInfo:         readLevelInfo,
}

// readList reads a u32 count followed by that many records. minSize is the
// smallest encoded record and bounds the count against the bytes left.
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

func readI32s(c *stream.Cursor) []int32 {
	return readList(c, 4, (*stream.Cursor).I32)
}

func readU32s(c *stream.Cursor) []uint32 {
	return readList(c, 4, (*stream.Cursor).U32)
}

func readStrings(c *stream.Cursor) []string {
	return readList(c, 2, (*stream.Cursor).RF1String)
}

func readVec3s(c *stream.Cursor) []stream.Vec3 {
	return readList(c, 12, (*stream.Cursor).Vec3)
}
