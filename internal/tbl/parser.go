// Package tbl parses the object tables (clutter.tbl, items.tbl,
// entity.tbl) that map level object classes to meshes.
package tbl

import (
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"rf-asset-tools/internal/diag"
)

// Table file names inside the game archives.
const (
	ClutterFile = "clutter.tbl"
	ItemsFile   = "items.tbl"
	EntityFile  = "entity.tbl"
)

var (
	commentRE     = regexp.MustCompile(`//.*`)
	classNameRE   = regexp.MustCompile(`\$class name:\s+"(.+)"`)
	entityNameRE  = regexp.MustCompile(`\$name:\s+"(.+)"`)
	modelRE       = regexp.MustCompile(`\$v3d filename:\s+"(.+)\.(?:v3d|v3m|v3c|vfx)"`)
	entityModelRE = regexp.MustCompile(`\$v3d filename:\s+"(.+)\.(?:v3d|v3m|v3c|vfx|vcm)"`)
	modelTypeRE   = regexp.MustCompile(`\$v3d type:\s+"(.+)"`)
	skinRE        = regexp.MustCompile(`\$skin:\s+"(.+)"\s+\((.+)\)`)
	skinTexRE     = regexp.MustCompile(`"(.+?)\.(?:tga|vbm)"`)
	flagsRE       = regexp.MustCompile(`\$flags:\s+\((.+)\)`)
	flags2RE      = regexp.MustCompile(`\$flags2:\s+\((.+)\)`)
	quotedRE      = regexp.MustCompile(`"(.+?)"`)
)

// Source opens files by name. vfs.FS implements it.
type Source interface {
	Open(name string) ([]byte, bool)
}

// Load parses the three tables from src. A missing table is reported as
// a warning and leaves its map empty.
func Load(src Source) (*Tables, []diag.Warning) {
	var warn diag.Collector
	t := &Tables{
		Clutter:  map[string]*Clutter{},
		Items:    map[string]*Item{},
		Entities: map[string]*Entity{},
	}
	if data, ok := src.Open(ClutterFile); ok {
		var ws []diag.Warning
		t.Clutter, ws = ParseClutter(data)
		warn.Merge(ws)
	} else {
		warn.Missing("%s not found", ClutterFile)
	}
	if data, ok := src.Open(ItemsFile); ok {
		var ws []diag.Warning
		t.Items, ws = ParseItems(data)
		warn.Merge(ws)
	} else {
		warn.Missing("%s not found", ItemsFile)
	}
	if data, ok := src.Open(EntityFile); ok {
		var ws []diag.Warning
		t.Entities, ws = ParseEntities(data)
		warn.Merge(ws)
	} else {
		warn.Missing("%s not found", EntityFile)
	}
	return t, warn.Warnings()
}

// lines decodes a table as Windows-1252 and returns its non-empty lines,
// lower-cased with comments removed. Line numbers are 1-based.
func lines(data []byte, fn func(n int, line string)) {
	if text, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		data = text
	}
	for i, line := range strings.Split(strings.ReplaceAll(string(data), "\r", ""), "\n") {
		line = strings.ToLower(commentRE.ReplaceAllString(line, ""))
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(i+1, line)
	}
}

func match(re *regexp.Regexp, line string) (string, bool) {
	if m := re.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}

func quoted(list string) []string {
	var out []string
	for _, m := range quotedRE.FindAllStringSubmatch(list, -1) {
		out = append(out, m[1])
	}
	return out
}

func orphan(warn *diag.Collector, file string, n int) {
	warn.Add(diag.Malformed, 0, 0, "%s:%d: property before any class", file, n)
}

// ParseClutter parses clutter.tbl. Keys and values are lower-cased.
func ParseClutter(data []byte) (map[string]*Clutter, []diag.Warning) {
	var warn diag.Collector
	out := map[string]*Clutter{}
	var cur *Clutter
	lines(data, func(n int, line string) {
		if name, ok := match(classNameRE, line); ok {
			cur = &Clutter{Class: name}
			out[name] = cur
		}
		if model, ok := match(modelRE, line); ok {
			if cur == nil {
				orphan(&warn, ClutterFile, n)
				return
			}
			cur.Model = model
		}
		if m := skinRE.FindStringSubmatch(line); m != nil {
			if cur == nil {
				orphan(&warn, ClutterFile, n)
				return
			}
			if cur.Skins == nil {
				cur.Skins = map[string][]string{}
			}
			var mats []string
			for _, tex := range skinTexRE.FindAllStringSubmatch(m[2], -1) {
				mats = append(mats, tex[1])
			}
			cur.Skins[m[1]] = mats
		}
	})
	return out, warn.Warnings()
}

// ParseItems parses items.tbl.
func ParseItems(data []byte) (map[string]*Item, []diag.Warning) {
	var warn diag.Collector
	out := map[string]*Item{}
	var cur *Item
	lines(data, func(n int, line string) {
		if name, ok := match(classNameRE, line); ok {
			cur = &Item{Class: name}
			out[name] = cur
		}
		model, hasModel := match(modelRE, line)
		typ, hasType := match(modelTypeRE, line)
		flags, hasFlags := match(flagsRE, line)
		if !hasModel && !hasType && !hasFlags {
			return
		}
		if cur == nil {
			orphan(&warn, ItemsFile, n)
			return
		}
		if hasModel {
			cur.Model = model
		}
		if hasType {
			cur.ModelType = typ
		}
		if hasFlags {
			cur.Flags = append(cur.Flags, quoted(flags)...)
		}
	})
	return out, warn.Warnings()
}

// ParseEntities parses entity.tbl. Entities are keyed by "$name:" and
// their models may be character meshes (.vcm).
func ParseEntities(data []byte) (map[string]*Entity, []diag.Warning) {
	var warn diag.Collector
	out := map[string]*Entity{}
	var cur *Entity
	lines(data, func(n int, line string) {
		if name, ok := match(entityNameRE, line); ok {
			cur = &Entity{Class: name}
			out[name] = cur
		}
		model, hasModel := match(entityModelRE, line)
		flags, hasFlags := match(flagsRE, line)
		flags2, hasFlags2 := match(flags2RE, line)
		if !hasModel && !hasFlags && !hasFlags2 {
			return
		}
		if cur == nil {
			orphan(&warn, EntityFile, n)
			return
		}
		if hasModel {
			cur.Model = model
		}
		if hasFlags {
			cur.Flags = append(cur.Flags, quoted(flags)...)
		}
		if hasFlags2 {
			cur.Flags = append(cur.Flags, quoted(flags2)...)
		}
	})
	return out, warn.Warnings()
}
