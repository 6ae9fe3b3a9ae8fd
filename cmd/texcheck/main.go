package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rf-asset-tools/internal/archive"
	"rf-asset-tools/internal/texture"
	"rf-asset-tools/internal/vfs"
)

type tgaFile struct {
	name string
	data []byte
}

func main() {
	tolerance := flag.Int("tolerance", 0, "Allowed per-channel difference")
	showPixels := flag.Int("pixels", 3, "Mismatching pixels to print per file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: texcheck [flags] file.tga|archive.vpp...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	var files []tgaFile
	for _, arg := range flag.Args() {
		if strings.HasSuffix(vfs.ArchiveName(arg), ".vpp") {
			a, err := vfs.ReadArchive(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERR %v\n", err)
				continue
			}
			for _, e := range a.OfKind(archive.KindTexture) {
				if e.Ext == "tga" {
					files = append(files, tgaFile{name: filepath.Base(arg) + ":" + e.Name, data: e.Data})
				}
			}
			continue
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			continue
		}
		files = append(files, tgaFile{name: arg, data: data})
	}

	mismatched, skipped := 0, 0
	for _, f := range files {
		ok, err := check(f, uint8(*tolerance), *showPixels)
		switch {
		case err != nil:
			fmt.Printf("SKIP %s: %v\n", f.name, err)
			skipped++
		case !ok:
			mismatched++
		}
	}
	fmt.Printf("\nChecked %d TGA files: %d match, %d differ, %d skipped\n",
		len(files), len(files)-mismatched-skipped, mismatched, skipped)
	if mismatched > 0 {
		os.Exit(1)
	}
}

// check compares the built-in decoder with the reference decoder. An
// error means one of the decoders rejected the file.
func check(f tgaFile, tolerance uint8, show int) (bool, error) {
	own, err := texture.DecodeTGA(f.data)
	if err != nil {
		return false, err
	}
	ref, err := texture.ReferenceDecode(f.data)
	if err != nil {
		return false, err
	}
	img := own.Frame(0)
	if img.Bounds().Size() != ref.Bounds().Size() {
		fmt.Printf("DIFF %s: size %v, reference %v\n", f.name, img.Bounds().Size(), ref.Bounds().Size())
		return false, nil
	}

	b := img.Bounds()
	bad := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := img.PixOffset(x, y)
			j := ref.PixOffset(ref.Rect.Min.X+x, ref.Rect.Min.Y+y)
			if near(img.Pix[i:i+4], ref.Pix[j:j+4], tolerance) {
				continue
			}
			if bad < show {
				fmt.Printf("  %s (%d,%d): got %v, reference %v\n", f.name, x, y, img.Pix[i:i+4], ref.Pix[j:j+4])
			}
			bad++
		}
	}
	if bad > 0 {
		fmt.Printf("DIFF %s: %dx%d, %d pixels differ\n", f.name, b.Dx(), b.Dy(), bad)
		return false, nil
	}
	fmt.Printf("OK   %s: %dx%d alpha=%v\n", f.name, b.Dx(), b.Dy(), own.UsesAlpha)
	return true, nil
}

func near(a, b []uint8, tolerance uint8) bool {
	for k := range a {
		d := int(a[k]) - int(b[k])
		if d < -int(tolerance) || d > int(tolerance) {
			return false
		}
	}
	return true
}
