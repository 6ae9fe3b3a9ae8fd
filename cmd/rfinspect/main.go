package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rf-asset-tools/internal/archive"
	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/level"
	"rf-asset-tools/internal/mesh"
	"rf-asset-tools/internal/scene"
	"rf-asset-tools/internal/skeleton"
	"rf-asset-tools/internal/texture"
	"rf-asset-tools/internal/vfs"
)

func main() {
	verbose := flag.Bool("v", false, "Print every warning")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rfinspect [-v] file... (a file inside a packfile is written archive.vpp:name)\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	for _, arg := range flag.Args() {
		name, data, err := readInput(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error %s: %v\n", arg, err)
			continue
		}
		fmt.Printf("\n=== %s (%d bytes) ===\n", arg, len(data))

		var warnings []diag.Warning
		switch ext := strings.ToLower(filepath.Ext(name)); ext {
		case ".rfl":
			warnings, err = inspectLevel(data)
		case ".v3d", ".v3m", ".v3c", ".vcm":
			warnings, err = inspectMesh(name, data)
		case ".tga", ".vbm":
			err = inspectTexture(name, data)
		default:
			err = fmt.Errorf("unsupported file type %q", ext)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", arg, err)
			continue
		}
		printWarnings(warnings, *verbose)
	}
}

// readInput reads a file from disk, or an entry from a packfile when arg
// has the form archive.vpp:name.
func readInput(arg string) (string, []byte, error) {
	if i := strings.LastIndex(arg, ".vpp"); i >= 0 {
		rest := arg[i+len(".vpp"):]
		if j := strings.Index(rest, ":"); j >= 0 {
			path, name := arg[:i+len(".vpp")+j], rest[j+1:]
			a, err := vfs.ReadArchive(path)
			if err != nil {
				return "", nil, err
			}
			e, ok := a.Find(name)
			if !ok {
				return "", nil, fmt.Errorf("%s not in %s", name, path)
			}
			return e.Name, e.Data, nil
		}
	}
	data, err := os.ReadFile(arg)
	return arg, data, err
}

func inspectLevel(data []byte) ([]diag.Warning, error) {
	lvl, err := level.Decode(data)
	if err != nil {
		return nil, err
	}
	h := lvl.Header
	fmt.Printf("version=0x%X sections=%d name=%q\n", h.Version, len(lvl.Sections), h.Name)
	if info, ok := level.First[*level.LevelInfo](lvl); ok {
		fmt.Printf("level %q by %q (%s) multiplayer=%d\n", info.Name, info.Author, info.Date, info.Multiplayer)
	}

	fmt.Println("--- SECTIONS ---")
	for _, s := range lvl.Sections {
		fmt.Printf("  %-20s @%-9d size=%-9d %s\n", s.Tag(), s.Offset(), s.Size(), levelSummary(s))
	}

	sc := scene.Build(lvl, "level", nil, nil, scene.Options{})
	fmt.Println("--- GEOMETRY ---")
	fmt.Printf("  static: %d surfaces, %d triangles", len(sc.Static.Surfaces), sc.Static.Triangles())
	if box, ok := sc.Static.Bounds(); ok {
		fmt.Printf(", bounds [%.1f %.1f %.1f]..[%.1f %.1f %.1f]",
			box.Min[0], box.Min[1], box.Min[2], box.Max[0], box.Max[1], box.Max[2])
	}
	fmt.Println()
	fmt.Printf("  movers: %d, textures: %d", len(sc.Movers), len(sc.Textures))
	if sc.Lightmaps != nil {
		fmt.Printf(", lightmaps: %d (%dx%d)", sc.Lightmaps.Frames, sc.Lightmaps.Width, sc.Lightmaps.Height)
	}
	fmt.Println()
	return append(append([]diag.Warning(nil), lvl.Warnings...), sc.Warnings...), nil
}

func levelSummary(s level.Section) string {
	switch v := s.(type) {
	case *level.Rooms:
		return fmt.Sprintf("textures=%d rooms=%d vertices=%d faces=%d lightmap_refs=%d",
			len(v.Textures), len(v.Rooms), len(v.Vertices), len(v.Faces), len(v.LightmapRefs))
	case *level.Brushes:
		faces := 0
		for _, b := range v.Brushes {
			faces += len(b.Faces)
		}
		return fmt.Sprintf("brushes=%d faces=%d", len(v.Brushes), faces)
	case *level.Lightmaps:
		return fmt.Sprintf("lightmaps=%d", len(v.Lightmaps))
	case *level.Groups:
		return fmt.Sprintf("groups=%d", len(v.Groups))
	case *level.Clutter:
		return fmt.Sprintf("clutter=%d", len(v.Clutter))
	case *level.Items:
		return fmt.Sprintf("items=%d", len(v.Items))
	case *level.Entities:
		return fmt.Sprintf("entities=%d", len(v.Entities))
	case *level.Triggers:
		return fmt.Sprintf("triggers=%d", len(v.Triggers))
	case *level.Events:
		return fmt.Sprintf("events=%d", len(v.Events))
	case *level.Lights:
		return fmt.Sprintf("lights=%d", len(v.Lights))
	case *level.Raw:
		return fmt.Sprintf("raw %d bytes", len(v.Data))
	}
	return fmt.Sprintf("%T", s)
}

func inspectMesh(name string, data []byte) ([]diag.Warning, error) {
	m, err := mesh.Decode(data)
	if err != nil {
		return nil, err
	}
	h := m.Header
	fmt.Printf("version=0x%X submeshes=%d materials=%d col_spheres=%d character=%v\n",
		h.Version, h.Submeshes, h.TotalMaterials, h.ColSpheres, h.Character())

	fmt.Println("--- SECTIONS ---")
	for _, s := range m.Sections {
		fmt.Printf("  %-12s @%-9d size=%-9d %T\n", s.Tag(), s.Offset(), s.Size(), s)
	}

	fmt.Println("--- SUBMESHES ---")
	for i, sm := range m.Submeshes() {
		fmt.Printf("  Submesh[%d] %q: lods=%d materials=%d radius=%.2f\n", i, sm.Name, len(sm.LODs), len(sm.Materials), sm.Radius)
		for li, lod := range sm.LODs {
			verts, tris := 0, 0
			for _, b := range lod.Batches {
				verts += len(b.Positions)
				tris += len(b.Triangles)
			}
			fmt.Printf("    LOD[%d] flags=0x%X batches=%d vertices=%d triangles=%d\n", li, lod.Flags, len(lod.Batches), verts, tris)
		}
		for mi := range sm.Materials {
			mat := &sm.Materials[mi]
			fmt.Printf("    Material[%d] %s two_sided=%v\n", mi, mat.TextureBase(), mat.TwoSided())
		}
	}

	g := scene.ModelGeometry(name, m)
	if box, ok := g.Bounds(); ok {
		fmt.Printf("  LOD0 bounds [%.2f %.2f %.2f]..[%.2f %.2f %.2f]\n",
			box.Min[0], box.Min[1], box.Min[2], box.Max[0], box.Max[1], box.Max[2])
	}

	if bones := m.Bones(); len(bones) > 0 {
		fmt.Printf("--- BONES (%d) ---\n", len(bones))
		world := skeleton.BuildWorldMatrices(bones)
		for i, b := range bones {
			p := world[i].Translation()
			fmt.Printf("  Bone[%d] %-20s parent=%-3d pos=[%.2f %.2f %.2f]\n", i, b.Name, b.Parent, p[0], p[1], p[2])
		}
	}
	spheres := mesh.SectionsOf[*mesh.ColSphere](m)
	for i, p := range skeleton.SpherePositions(m) {
		s := spheres[i]
		fmt.Printf("  ColSphere %-16s bone=%-3d r=%.2f at [%.2f %.2f %.2f]\n", s.Name, s.Bone, s.Radius, p[0], p[1], p[2])
	}
	return m.Warnings, nil
}

func inspectTexture(name string, data []byte) error {
	levels, err := texture.Decode(data, texture.FormatFromName(name))
	if err != nil {
		return err
	}
	fmt.Printf("format=%s kind=%s levels=%d\n", texture.FormatFromName(name), archive.KindOf(name), len(levels))
	for i, bm := range levels {
		minA, maxA := uint8(255), uint8(0)
		for j := 3; j < len(bm.Pix); j += 4 {
			minA = min(minA, bm.Pix[j])
			maxA = max(maxA, bm.Pix[j])
		}
		fmt.Printf("  Level[%d] %dx%d frames=%d fps=%d alpha=%v (min=%d max=%d)\n",
			i, bm.Width, bm.Height, bm.Frames, bm.FrameRate, bm.UsesAlpha, minA, maxA)
	}
	return nil
}

func printWarnings(ws []diag.Warning, verbose bool) {
	if len(ws) == 0 {
		return
	}
	fmt.Printf("--- WARNINGS (%d) ---\n", len(ws))
	limit := len(ws)
	if !verbose && limit > 10 {
		limit = 10
	}
	for _, w := range ws[:limit] {
		fmt.Printf("  %s\n", w)
	}
	if limit < len(ws) {
		fmt.Printf("  ... %d more (use -v)\n", len(ws)-limit)
	}
}
