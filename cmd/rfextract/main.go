package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rf-asset-tools/internal/archive"
	"rf-asset-tools/internal/vfs"
)

func main() {
	list := flag.Bool("l", false, "List entries instead of extracting")
	outDir := flag.String("o", ".", "Output directory")
	kind := flag.String("kind", "", "Only entries of this kind: texture, mesh, table, level, file")
	pack := flag.String("pack", "", "Write a compressed copy of the archive (zst or lz4) instead of extracting")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rfextract [flags] archive.vpp[.zst|.lz4] [name...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if *pack != "" {
		if err := packArchive(path, *pack, *outDir); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			os.Exit(1)
		}
		return
	}

	a, err := vfs.ReadArchive(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}

	entries := selectEntries(a, archive.Kind(*kind), flag.Args()[1:])
	if *list {
		fmt.Printf("%s: version %d, %d entries\n", path, a.Header.Version, len(a.Entries))
		for _, e := range entries {
			fmt.Printf("  %-40s %-8s %10d\n", e.RawName, e.Kind, e.Size)
		}
		return
	}

	errors := 0
	for _, e := range entries {
		dst := filepath.Join(*outDir, e.Name)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
			continue
		}
		if err := os.WriteFile(dst, e.Data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERR write %s: %v\n", dst, err)
			errors++
			continue
		}
		fmt.Printf("OK  %s (%d bytes)\n", e.Name, e.Size)
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Printf("\nDone. %d entries extracted to %s.\n", len(entries), *outDir)
}

// selectEntries filters a's entries by kind and by the given names, which
// are matched case-insensitively against full or base names.
func selectEntries(a *archive.Archive, k archive.Kind, names []string) []*archive.Entry {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	var out []*archive.Entry
	for i := range a.Entries {
		e := &a.Entries[i]
		if k != "" && e.Kind != k {
			continue
		}
		if len(want) > 0 && !want[e.Name] && !want[e.Base] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// packArchive validates the packfile at path and writes it, compressed
// with codec, into outDir. The packfile bytes themselves are unchanged.
func packArchive(path, codec, outDir string) error {
	c, err := vfs.ParseCodec(codec)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	data, err = vfs.Decompress(data, vfs.CodecOf(path))
	if err != nil {
		return err
	}
	a, err := archive.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := vfs.Compress(&buf, data, c); err != nil {
		return err
	}
	dst := filepath.Join(outDir, vfs.ArchiveName(path)+c.Ext())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	fmt.Printf("OK  %s -> %s  (%d entries, %d -> %d bytes)\n", path, dst, len(a.Entries), len(data), buf.Len())
	return nil
}
