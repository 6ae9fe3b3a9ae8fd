package texture

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var mipNameRE = regexp.MustCompile(`^(.+)-mip([0-9]+)\.tga$`)

// Index maps lowercase texture base names to the archive files that hold
// them. A VBM shadows a TGA of the same base name.
type Index struct {
	entries map[string]*indexEntry
}

type indexEntry struct {
	vbm  string
	tga  string
	mips map[int]string // mip level → file name, for "<base>-mipN.tga"
}

// BuildIndex indexes texture file names.
func BuildIndex(names []string) *Index {
	idx := &Index{entries: make(map[string]*indexEntry)}
	for _, name := range names {
		name = strings.ToLower(name)
		if m := mipNameRE.FindStringSubmatch(name); m != nil {
			level, err := strconv.Atoi(m[2])
			if err != nil || level == 0 {
				continue
			}
			e := idx.entry(m[1])
			if e.mips == nil {
				e.mips = make(map[int]string)
			}
			e.mips[level] = name
			continue
		}
		ext := path.Ext(name)
		base := strings.TrimSuffix(name, ext)
		switch ext {
		case ".vbm":
			idx.entry(base).vbm = name
		case ".tga":
			idx.entry(base).tga = name
		}
	}
	return idx
}

func (idx *Index) entry(base string) *indexEntry {
	e, ok := idx.entries[base]
	if !ok {
		e = &indexEntry{}
		idx.entries[base] = e
	}
	return e
}

// ResolveFiles returns the files that make up a texture in mip order.
// A VBM is a single file; a TGA may be followed by -mipN.tga levels.
func (idx *Index) ResolveFiles(texName string) ([]string, bool) {
	e, ok := idx.entries[StemOf(texName)]
	if !ok {
		return nil, false
	}
	if e.vbm != "" {
		return []string{e.vbm}, true
	}
	if e.tga == "" {
		return nil, false
	}
	files := []string{e.tga}
	for level := 1; ; level++ {
		mip, ok := e.mips[level]
		if !ok {
			break
		}
		files = append(files, mip)
	}
	return files, true
}

// Names returns every indexed base name, sorted.
func (idx *Index) Names() []string {
	out := make([]string, 0, len(idx.entries))
	for base, e := range idx.entries {
		if e.vbm != "" || e.tga != "" {
			out = append(out, base)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.Names())
}

// StemOf lower-cases a texture reference and strips any directory and
// .tga/.vbm extension.
func StemOf(texName string) string {
	texName = strings.ToLower(strings.ReplaceAll(texName, "\\", "/"))
	texName = path.Base(texName)
	switch path.Ext(texName) {
	case ".tga", ".vbm":
		texName = strings.TrimSuffix(texName, path.Ext(texName))
	}
	return texName
}
