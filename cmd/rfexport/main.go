package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rf-asset-tools/internal/archive"
	"rf-asset-tools/internal/batch"
	"rf-asset-tools/internal/config"
	"rf-asset-tools/internal/tbl"
	"rf-asset-tools/internal/texture"
	"rf-asset-tools/internal/vfs"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Export only the first N files for testing")
	only := flag.String("only", "", "Export only files whose name contains this string")
	kinds := flag.String("kinds", "", "Comma-separated kinds to export: texture,mesh,level (default: all)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	gameDir := flag.String("game", "", "Path to the game directory holding .vpp files (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: <game>/export)")
	maxSize := flag.Int("max-texture", 0, "Downscale textures larger than this (default: keep size)")
	preview := flag.Int("preview", 0, "Also render mesh previews of this size (default: off)")
	showInvisible := flag.Bool("show-invisible", false, "Keep invisible and editor-only faces in levels")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		GameDir:        *gameDir,
		OutputDir:      *outputDir,
		MaxTextureSize: *maxSize,
		PreviewSize:    *preview,
		Workers:        *workers,
		ShowInvisible:  *showInvisible,
		Kinds:          *kinds,
	})

	archives, err := cfg.ArchivePaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v. Use -game flag or config.json.\n", err)
		os.Exit(1)
	}

	// Mount archives
	fs, err := vfs.Mount(context.Background(), archives...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error mounting archives: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Archives: %d mounted, %d files, %d shadowed\n", len(fs.Mounted()), fs.Len(), len(fs.Shadowed()))

	// Load object tables
	tables, warnings := tbl.Load(fs)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	fmt.Printf("Tables: %d clutter, %d items, %d entities\n", len(tables.Clutter), len(tables.Items), len(tables.Entities))

	// Build texture index
	texIndex := texture.BuildIndex(fs.Names(archive.KindTexture))
	texCache := texture.NewCache(fs, texIndex, cfg.DefaultTexture)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	// Select jobs
	jobs := batch.Jobs(fs.Names(""), cfg.Exports)
	if *only != "" {
		var filtered []batch.Job
		for _, j := range jobs {
			if strings.Contains(j.Name, strings.ToLower(*only)) {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	// Limit for testing
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}

	if len(jobs) == 0 {
		fmt.Println("No files to export.")
		os.Exit(0)
	}

	// Print summary
	mode := ""
	if *only != "" {
		mode = fmt.Sprintf(" (matching %q)", *only)
	} else if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Red Faction assets → GLB/WebP%s\n", mode)
	fmt.Printf("Files: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		Source:         fs,
		Tables:         tables,
		Textures:       texCache,
		OutputDir:      cfg.OutputDir,
		MaxTextureSize: cfg.MaxTextureSize,
		PreviewSize:    cfg.PreviewSize,
		ShowInvisible:  cfg.ShowInvisible,
		Workers:        cfg.Workers,
		Progress: func(done, total int, rate float64) {
			fmt.Printf("  [%d/%d] %.1f files/sec\n", done, total, rate)
		},
	}

	results := batch.Run(batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed, warned := 0, 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
		if len(r.Warnings) > 0 {
			warned++
		}
	}

	fmt.Printf("Exported: %d/%d (%d with warnings)\n", success, len(jobs), warned)
	texWarnings := texCache.Warnings()
	if len(texWarnings) > 0 {
		fmt.Printf("Missing textures: %d\n", len(texWarnings))
	}

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	manifest := batch.NewManifest(archives, results, texWarnings)
	if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
