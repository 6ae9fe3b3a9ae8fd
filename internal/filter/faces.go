// Package filter decides which level faces and textures end up in exported
// geometry.
package filter

import (
	"regexp"
	"strings"

	"rf-asset-tools/internal/level"
	"rf-asset-tools/internal/texture"
)

// invisibleRE matches editor-only textures: clip brushes, invisible walls
// and trigger volumes. Stock data names them "*invisible*.tga".
var invisibleRE = regexp.MustCompile(`invisible`)

// editorPrefixes must match at the START of the texture stem only.
// "sld_" is the solid-color editor palette; "clip" would match "eclipse" if
// used as a substring.
var editorPrefixes = []string{"sld_invis", "clip_", "nodraw"}

// IsPortal reports whether f is a room portal. Portals separate rooms and
// are never drawn.
func IsPortal(f *level.Face) bool { return f.Portal != 0 }

// IsSky reports whether f shows the sky room instead of its texture.
func IsSky(f *level.Face) bool { return f.Flags&level.FaceShowSky != 0 }

// IsRenderable reports whether f contributes visible triangles.
func IsRenderable(f *level.Face) bool {
	return !IsPortal(f) && !IsSky(f) && len(f.Vertices) >= 3
}

// IsInvisibleTexture reports whether name is an editor-only texture.
func IsInvisibleTexture(name string) bool {
	stem := texture.StemOf(name)
	if invisibleRE.MatchString(stem) {
		return true
	}
	for _, p := range editorPrefixes {
		if strings.HasPrefix(stem, p) {
			return true
		}
	}
	return false
}
