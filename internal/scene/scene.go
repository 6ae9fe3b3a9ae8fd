// Package scene turns a decoded level into placed, textured geometry ready
// for export: static rooms, movers, and the clutter, items and entities
// resolved through the object tables.
package scene

import (
	"fmt"
	"sort"
	"strings"

	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/filter"
	"rf-asset-tools/internal/level"
	"rf-asset-tools/internal/mathutil"
	"rf-asset-tools/internal/mesh"
	"rf-asset-tools/internal/tbl"
	"rf-asset-tools/internal/texture"
)

// Model file extensions, in lookup order.
var (
	ObjectModelExts = []string{"v3d", "v3m", "v3c"}
	EntityModelExts = []string{"v3d", "v3m", "v3c", "vcm"}
)

// Source opens game files by name. vfs.FS implements it.
type Source interface {
	Open(name string) ([]byte, bool)
}

// Options controls scene building.
type Options struct {
	// ShowInvisible keeps editor-only textures such as invisible walls.
	ShowInvisible bool
}

// Kind classifies a placed object.
type Kind string

const (
	KindClutter Kind = "clutter"
	KindItem    Kind = "item"
	KindEntity  Kind = "entity"
)

// Model is a decoded mesh file shared by every instance that uses it.
type Model struct {
	File     string // name in the VFS, e.g. "crate01.v3m"
	Mesh     *mesh.Mesh
	Geometry *Geometry
}

// Instance is one placed object.
type Instance struct {
	Kind      Kind
	UID       int32
	Class     string
	Model     *Model
	Transform mathutil.Mat4
	// Skin replaces the texture of each mesh material slot. Slots past
	// its end keep the mesh's own texture.
	Skin     []string
	SkinName string
}

// TextureFor returns the texture s is drawn with on this instance.
func (in *Instance) TextureFor(s *Surface) string {
	if s.Material >= 0 && s.Material < len(in.Skin) {
		return texture.StemOf(in.Skin[s.Material])
	}
	return s.Texture
}

// Scene is a level ready for export.
type Scene struct {
	Name      string
	Level     *level.Level
	Options   Options
	Static    *Geometry
	Movers    []*Geometry
	Instances []Instance
	Models    map[string]*Model // keyed by File
	// Lightmaps holds one frame per lightmap. nil when the level has none.
	Lightmaps *texture.Bitmap
	Textures  []string
	Warnings  []diag.Warning
}

// Visible reports whether geometry with texture tex is exported.
func (s *Scene) Visible(tex string) bool {
	return s.Options.ShowInvisible || !filter.IsInvisibleTexture(tex)
}

type builder struct {
	sc      *Scene
	src     Source
	tables  *tbl.Tables
	warn    diag.Collector
	missing map[string]bool // classes and models already reported
}

// Build assembles the scene of lvl. Objects whose class or model cannot be
// found are skipped with a MissingDependency warning. tables may be nil,
// in which case no objects are placed.
func Build(lvl *level.Level, name string, src Source, tables *tbl.Tables, opts Options) *Scene {
	b := &builder{
		sc: &Scene{
			Name:    name,
			Level:   lvl,
			Options: opts,
			Models:  make(map[string]*Model),
		},
		src:     src,
		tables:  tables,
		missing: make(map[string]bool),
	}
	if b.tables == nil {
		b.tables = &tbl.Tables{}
	}
	b.buildStatic()
	b.buildMovers()
	b.buildLightmaps()
	b.buildClutter()
	b.buildItems()
	b.buildEntities()
	b.collectTextures()
	b.sc.Warnings = b.warn.Warnings()
	return b.sc
}

func (b *builder) buildStatic() {
	g := &Geometry{Name: "static", Transform: mathutil.Mat4Identity()}
	fb := newFaceBuilder(g, b.sc.Options.ShowInvisible, &b.warn)
	for _, r := range level.SectionsOf[*level.Rooms](b.sc.Level) {
		fb.add(faceSet{
			tag:      level.TagStaticGeometry,
			vertices: r.Vertices,
			textures: r.Textures,
			faces:    r.Faces,
			refs:     r.LightmapRefs,
			rooms:    len(r.Rooms),
		})
	}
	b.sc.Static = g
}

// buildMovers places every compiled mover except air brushes. Movers share
// the lightmap table of the first static geometry section.
func (b *builder) buildMovers() {
	var refs []level.LightmapRef
	if r, ok := level.First[*level.Rooms](b.sc.Level); ok {
		refs = r.LightmapRefs
	}
	for _, sec := range b.sc.Level.Filter(level.TagMovers) {
		brushes, ok := sec.(*level.Brushes)
		if !ok {
			continue
		}
		for _, br := range brushes.Brushes {
			if br.Flags&level.BrushAir != 0 {
				continue
			}
			g := &Geometry{
				Name:      fmt.Sprintf("mover_%d", br.UID),
				UID:       br.UID,
				Transform: placement(br.Pos, br.Rot),
			}
			newFaceBuilder(g, b.sc.Options.ShowInvisible, &b.warn).add(faceSet{
				tag:      level.TagMovers,
				vertices: br.Vertices,
				textures: br.Textures,
				faces:    br.Faces,
				refs:     refs,
			})
			b.sc.Movers = append(b.sc.Movers, g)
		}
	}
}

func (b *builder) buildLightmaps() {
	lm, ok := level.First[*level.Lightmaps](b.sc.Level)
	if !ok || len(lm.Lightmaps) == 0 {
		return
	}
	maps := make([]texture.RGB, len(lm.Lightmaps))
	for i, l := range lm.Lightmaps {
		maps[i] = texture.RGB{Width: int(l.Width), Height: int(l.Height), Pix: l.Pix}
	}
	b.sc.Lightmaps = texture.LightmapArray(maps)
}

func (b *builder) buildClutter() {
	for _, sec := range level.SectionsOf[*level.Clutter](b.sc.Level) {
		for _, obj := range sec.Clutter {
			class := strings.ToLower(obj.Class)
			def, ok := b.tables.Clutter[class]
			if !ok {
				b.missingOnce("class:clutter:"+class, "clutter %q not in %s", class, tbl.ClutterFile)
				continue
			}
			m := b.model(def.Model, ObjectModelExts, string(KindClutter), class)
			if m == nil {
				continue
			}
			in := Instance{
				Kind:      KindClutter,
				UID:       obj.UID,
				Class:     class,
				Model:     m,
				Transform: placement(obj.Pos, obj.Rot),
			}
			if skin := strings.ToLower(obj.Skin); skin != "" {
				if mats, ok := def.Skins[skin]; ok {
					in.Skin, in.SkinName = mats, skin
				} else {
					b.missingOnce("skin:"+class+":"+skin, "skin %q for clutter %q not in %s", skin, class, tbl.ClutterFile)
				}
			}
			b.sc.Instances = append(b.sc.Instances, in)
		}
	}
}

func (b *builder) buildItems() {
	for _, sec := range level.SectionsOf[*level.Items](b.sc.Level) {
		for _, obj := range sec.Items {
			class := strings.ToLower(obj.Class)
			def, ok := b.tables.Items[class]
			if !ok {
				b.missingOnce("class:item:"+class, "item %q not in %s", class, tbl.ItemsFile)
				continue
			}
			if m := b.model(def.Model, ObjectModelExts, string(KindItem), class); m != nil {
				b.place(KindItem, obj.Object, class, m)
			}
		}
	}
}

func (b *builder) buildEntities() {
	for _, sec := range level.SectionsOf[*level.Entities](b.sc.Level) {
		for _, obj := range sec.Entities {
			class := strings.ToLower(obj.Class)
			def, ok := b.tables.Entities[class]
			if !ok {
				b.missingOnce("class:entity:"+class, "entity %q not in %s", class, tbl.EntityFile)
				continue
			}
			if m := b.model(def.Model, EntityModelExts, string(KindEntity), class); m != nil {
				b.place(KindEntity, obj.Object, class, m)
			}
		}
	}
}

func (b *builder) place(k Kind, obj level.Object, class string, m *Model) {
	b.sc.Instances = append(b.sc.Instances, Instance{
		Kind:      k,
		UID:       obj.UID,
		Class:     class,
		Model:     m,
		Transform: placement(obj.Pos, obj.Rot),
	})
}

// model finds and decodes the mesh named base, trying exts in order.
// Results, including failures, are cached per base name.
func (b *builder) model(base string, exts []string, kind, class string) *Model {
	base = strings.ToLower(base)
	if b.missing["model:"+base] || b.src == nil {
		return nil
	}
	for _, ext := range exts {
		file := base + "." + ext
		if m, ok := b.sc.Models[file]; ok {
			return m
		}
		data, ok := b.src.Open(file)
		if !ok {
			continue
		}
		msh, err := mesh.Decode(data)
		if err != nil {
			b.warn.Add(diag.Malformed, 0, 0, "%s: %v", file, err)
			b.missing["model:"+base] = true
			return nil
		}
		b.warn.Merge(msh.Warnings)
		m := &Model{File: file, Mesh: msh, Geometry: ModelGeometry(file, msh)}
		b.sc.Models[file] = m
		return m
	}
	b.missingOnce("model:"+base, "model %q for %s %q not found", base, kind, class)
	return nil
}

func (b *builder) missingOnce(key, format string, args ...any) {
	if b.missing[key] {
		return
	}
	b.missing[key] = true
	b.warn.Missing(format, args...)
}

// collectTextures lists every visible texture the scene draws.
func (b *builder) collectTextures() {
	seen := make(map[string]bool)
	add := func(tex string) {
		if tex != "" && b.sc.Visible(tex) {
			seen[tex] = true
		}
	}
	for _, g := range append([]*Geometry{b.sc.Static}, b.sc.Movers...) {
		for _, s := range g.Surfaces {
			add(s.Texture)
		}
	}
	for i := range b.sc.Instances {
		in := &b.sc.Instances[i]
		for _, s := range in.Model.Geometry.Surfaces {
			add(in.TextureFor(s))
		}
	}
	b.sc.Textures = make([]string, 0, len(seen))
	for tex := range seen {
		b.sc.Textures = append(b.sc.Textures, tex)
	}
	sort.Strings(b.sc.Textures)
}
