package level

import "fmt"

// Tag identifies a level section.
type Tag uint32

const (
	TagEnd               Tag = 0x00000000
	TagStaticGeometry    Tag = 0x00000100
	TagGeoRegions        Tag = 0x00000200
	TagLights            Tag = 0x00000300
	TagCutsceneCameras   Tag = 0x00000400
	TagAmbientSounds     Tag = 0x00000500
	TagEvents            Tag = 0x00000600
	TagMPRespawns        Tag = 0x00000700
	TagLevelProperties   Tag = 0x00000900
	TagParticleEmitters  Tag = 0x00000A00
	TagGasRegions        Tag = 0x00000B00
	TagRoomEffects       Tag = 0x00000C00
	TagClimbingRegions   Tag = 0x00000D00
	TagBoltEmitters      Tag = 0x00000E00
	TagTargets           Tag = 0x00000F00
	TagDecals            Tag = 0x00001000
	TagPushRegions       Tag = 0x00001100
	TagLightmaps         Tag = 0x00001200
	TagMovers            Tag = 0x00002000
	TagMovingGroups      Tag = 0x00003000
	TagCutscenes         Tag = 0x00004000
	TagCutscenePathNodes Tag = 0x00005000
	TagCutscenePaths     Tag = 0x00006000
	TagTGAFiles          Tag = 0x00007000
	TagVCMFiles          Tag = 0x00007001
	TagMVFFiles          Tag = 0x00007002
	TagV3DFiles          Tag = 0x00007003
	TagVFXFiles          Tag = 0x00007004
	TagEAXEffects        Tag = 0x00008000
	TagWaypointLists     Tag = 0x00010000
	TagNavPoints         Tag = 0x00020000
	TagEntities          Tag = 0x00030000
	TagItems             Tag = 0x00040000
	TagClutter           Tag = 0x00050000
	TagTriggers          Tag = 0x00060000
	TagPlayerStart       Tag = 0x00070000
	TagLevelInfo         Tag = 0x01000000
	TagBrushes           Tag = 0x02000000
	TagGroups            Tag = 0x03000000
	TagEditorLights      Tag = 0x04000000
)

var tagNames = map[Tag]string{
	TagEnd:               "end",
	TagStaticGeometry:    "static_geometry",
	TagGeoRegions:        "geo_regions",
	TagLights:            "lights",
	TagCutsceneCameras:   "cutscene_cameras",
	TagAmbientSounds:     "ambient_sounds",
	TagEvents:            "events",
	TagMPRespawns:        "mp_respawns",
	TagLevelProperties:   "level_properties",
	TagParticleEmitters:  "particle_emitters",
	TagGasRegions:        "gas_regions",
	TagRoomEffects:       "room_effects",
	TagClimbingRegions:   "climbing_regions",
	TagBoltEmitters:      "bolt_emitters",
	TagTargets:           "targets",
	TagDecals:            "decals",
	TagPushRegions:       "push_regions",
	TagLightmaps:         "lightmaps",
	TagMovers:            "movers",
	TagMovingGroups:      "moving_groups",
	TagCutscenes:         "cutscenes",
	TagCutscenePathNodes: "cutscene_path_nodes",
	TagCutscenePaths:     "cutscene_paths",
	TagTGAFiles:          "tga_files",
	TagVCMFiles:          "vcm_files",
	TagMVFFiles:          "mvf_files",
	TagV3DFiles:          "v3d_files",
	TagVFXFiles:          "vfx_files",
	TagEAXEffects:        "eax_effects",
	TagWaypointLists:     "waypoint_lists",
	TagNavPoints:         "nav_points",
	TagEntities:          "entities",
	TagItems:             "items",
	TagClutter:           "clutter",
	TagTriggers:          "triggers",
	TagPlayerStart:       "player_start",
	TagLevelInfo:         "level_info",
	TagBrushes:           "brushes",
	TagGroups:            "groups",
	TagEditorLights:      "editor_lights",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tag(0x%08X)", uint32(t))
}

// Known reports whether the decoder has a routine for t.
func (t Tag) Known() bool {
	_, ok := decoders[t]
	return ok || t == TagEnd
}
