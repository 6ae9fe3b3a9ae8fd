// Package vfs merges several packfiles into one lookup namespace.
package vfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"rf-asset-tools/internal/archive"
)

// Mounted is one packfile in mount order.
type Mounted struct {
	Path    string
	Archive *archive.Archive
}

// File is an entry visible through the overlay.
type File struct {
	*archive.Entry
	Archive string // base name of the packfile that provides it
	Hash    uint64 // xxhash of the payload
}

// Shadow records an entry hidden by an earlier archive.
type Shadow struct {
	Name      string
	Archive   string // the hidden copy's packfile
	Winner    string // the packfile that provides the visible copy
	Identical bool   // same payload hash as the visible copy
}

// FS is a read-only overlay of mounted packfiles. Earlier archives win on
// a name clash. It is safe for concurrent reads.
type FS struct {
	mounted  []Mounted
	files    map[string]*File
	bases    map[string]*File
	shadowed []Shadow
}

// Mount reads and decodes the packfiles at paths in parallel and merges
// them in argument order. Files ending in .zst or .lz4 are decompressed
// first.
func Mount(ctx context.Context, paths ...string) (*FS, error) {
	mounted := make([]Mounted, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := ReadArchive(p)
			if err != nil {
				return err
			}
			mounted[i] = Mounted{Path: p, Archive: a}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(mounted...), nil
}

// ReadArchive reads one packfile from disk.
func ReadArchive(path string) (*archive.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vfs: read %s: %w", path, err)
	}
	data, err = Decompress(data, CodecOf(path))
	if err != nil {
		return nil, fmt.Errorf("vfs: %s: %w", path, err)
	}
	a, err := archive.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("vfs: %s: %w", path, err)
	}
	return a, nil
}

// New merges already decoded archives.
func New(mounted ...Mounted) *FS {
	fs := &FS{
		mounted: mounted,
		files:   make(map[string]*File),
		bases:   make(map[string]*File),
	}
	for _, m := range mounted {
		label := ArchiveName(m.Path)
		for i := range m.Archive.Entries {
			e := &m.Archive.Entries[i]
			f := &File{Entry: e, Archive: label, Hash: xxhash.Sum64(e.Data)}
			if prev, ok := fs.files[e.Name]; ok {
				fs.shadowed = append(fs.shadowed, Shadow{
					Name:      e.Name,
					Archive:   label,
					Winner:    prev.Archive,
					Identical: prev.Hash == f.Hash,
				})
				continue
			}
			fs.files[e.Name] = f
			if _, ok := fs.bases[e.Base]; !ok {
				fs.bases[e.Base] = f
			}
		}
	}
	return fs
}

// ArchiveName strips the directory and any compression suffix from path.
func ArchiveName(path string) string {
	name := strings.ToLower(filepath.Base(path))
	return strings.TrimSuffix(name, CodecOf(name).Ext())
}

// Discover lists the packfiles in dir, including compressed ones, sorted
// by name. A compressed copy is skipped when the plain file exists.
func Discover(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("vfs: discover %s: %w", dir, err)
	}
	seen := make(map[string]bool)
	var plain, packed []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(ArchiveName(name), ".vpp") {
			continue
		}
		if CodecOf(name) == CodecNone {
			plain = append(plain, name)
			seen[ArchiveName(name)] = true
		} else {
			packed = append(packed, name)
		}
	}
	for _, name := range packed {
		if !seen[ArchiveName(name)] {
			plain = append(plain, name)
			seen[ArchiveName(name)] = true
		}
	}
	sort.Slice(plain, func(i, j int) bool { return ArchiveName(plain[i]) < ArchiveName(plain[j]) })
	out := make([]string, len(plain))
	for i, name := range plain {
		out[i] = filepath.Join(dir, name)
	}
	return out, nil
}

// Open returns the payload of name, matched case-insensitively.
func (fs *FS) Open(name string) ([]byte, bool) {
	f, ok := fs.Stat(name)
	if !ok {
		return nil, false
	}
	return f.Data, true
}

// Stat returns the visible entry for name.
func (fs *FS) Stat(name string) (*File, bool) {
	f, ok := fs.files[strings.ToLower(name)]
	return f, ok
}

// StatBase returns the first visible entry with the given base name.
func (fs *FS) StatBase(base string) (*File, bool) {
	f, ok := fs.bases[strings.ToLower(base)]
	return f, ok
}

// Find tries base+ext for each extension in order and returns the first
// entry found.
func (fs *FS) Find(base string, exts ...string) (*File, bool) {
	for _, ext := range exts {
		if f, ok := fs.Stat(base + "." + ext); ok {
			return f, true
		}
	}
	return nil, false
}

// Hash returns the payload hash of name.
func (fs *FS) Hash(name string) (uint64, bool) {
	f, ok := fs.Stat(name)
	if !ok {
		return 0, false
	}
	return f.Hash, true
}

// Entries returns the visible entries of kind k sorted by name. An empty
// kind returns every entry.
func (fs *FS) Entries(k archive.Kind) []*File {
	var out []*File
	for _, f := range fs.files {
		if k == "" || f.Kind == k {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the names of the visible entries of kind k, sorted.
func (fs *FS) Names(k archive.Kind) []string {
	files := fs.Entries(k)
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

// Mounted returns the archives in mount order.
func (fs *FS) Mounted() []Mounted { return fs.mounted }

// Shadowed returns the entries hidden by an earlier archive.
func (fs *FS) Shadowed() []Shadow { return fs.shadowed }

// Len returns the number of visible entries.
func (fs *FS) Len() int { return len(fs.files) }
