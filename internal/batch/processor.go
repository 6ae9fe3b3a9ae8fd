package batch

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"rf-asset-tools/internal/archive"
	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/export"
	"rf-asset-tools/internal/level"
	"rf-asset-tools/internal/mesh"
	"rf-asset-tools/internal/raster"
	"rf-asset-tools/internal/scene"
	"rf-asset-tools/internal/tbl"
	"rf-asset-tools/internal/texture"
)

// Source opens game files by name. vfs.FS implements it.
type Source interface {
	Open(name string) ([]byte, bool)
}

// Config holds all shared resources for a batch run.
type Config struct {
	Source         Source
	Tables         *tbl.Tables
	Textures       texture.Resolver
	OutputDir      string
	MaxTextureSize int
	PreviewSize    int // side of the mesh preview images; 0 disables them
	ShowInvisible  bool
	Workers        int
	// Progress receives the periodic progress line. nil disables it.
	Progress func(done, total int, rate float64)
}

// Job is one file to export.
type Job struct {
	Name string
	Kind archive.Kind
}

// Result holds the outcome of exporting one file. Outputs are relative to
// the output directory.
type Result struct {
	Name     string         `json:"name"`
	Kind     archive.Kind   `json:"kind"`
	Outputs  []string       `json:"outputs,omitempty"`
	Warnings []diag.Warning `json:"warnings,omitempty"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
}

// Output subdirectories per kind.
const (
	TextureDir = "textures"
	MeshDir    = "meshes"
	LevelDir   = "levels"
)

// JobKind returns the export kind of a file name, or "" when the file is
// not exported.
func JobKind(name string) archive.Kind {
	ext := path.Ext(name)
	if ext == ".vcm" {
		return archive.KindMesh
	}
	switch k := archive.KindOf(name); k {
	case archive.KindTexture, archive.KindLevel:
		return k
	case archive.KindMesh:
		if ext == ".vfx" {
			return ""
		}
		return k
	}
	return ""
}

// Jobs selects the exportable names for which want returns true, sorted by
// name.
func Jobs(names []string, want func(archive.Kind) bool) []Job {
	var jobs []Job
	for _, n := range names {
		k := JobKind(n)
		if k == "" || (want != nil && !want(k)) {
			continue
		}
		jobs = append(jobs, Job{Name: n, Kind: k})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// Run exports all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && cfg.Progress != nil {
					elapsed := time.Since(start).Seconds()
					cfg.Progress(int(p), total, float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job Job) Result {
	res := Result{Name: job.Name, Kind: job.Kind}
	data, ok := cfg.Source.Open(job.Name)
	if !ok {
		res.Error = fmt.Sprintf("%s not found", job.Name)
		return res
	}

	var err error
	switch job.Kind {
	case archive.KindTexture:
		err = exportTexture(cfg, job.Name, data, &res)
	case archive.KindMesh:
		err = exportMesh(cfg, job.Name, data, &res)
	case archive.KindLevel:
		err = exportLevel(cfg, job.Name, data, &res)
	default:
		err = fmt.Errorf("unsupported kind %q", job.Kind)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

// exportTexture writes every frame of every level. A single-frame,
// single-level texture becomes <base>.webp; otherwise names carry -mipN
// and _fNN suffixes.
func exportTexture(cfg Config, name string, data []byte, res *Result) error {
	levels, err := texture.Decode(data, texture.FormatFromName(name))
	if err != nil {
		return err
	}
	base := archive.BaseName(name)
	opts := export.ImageOptions{MaxSize: cfg.MaxTextureSize}
	for li, bm := range levels {
		for fi, img := range export.BitmapFrames(bm) {
			out := base
			if li > 0 {
				out += fmt.Sprintf("-mip%d", li)
			}
			if bm.Frames > 1 {
				out += fmt.Sprintf("_f%02d", fi)
			}
			rel := path.Join(TextureDir, out+".webp")
			if err := export.WriteWebP(filepath.Join(cfg.OutputDir, rel), img, opts); err != nil {
				return err
			}
			res.Outputs = append(res.Outputs, rel)
		}
	}
	return nil
}

// exportMesh writes the mesh as GLB and, when enabled, a preview image
// rendered at PreviewSize with 2x supersampling.
func exportMesh(cfg Config, name string, data []byte, res *Result) error {
	m, err := mesh.Decode(data)
	if err != nil {
		return err
	}
	res.Warnings = m.Warnings
	base := archive.BaseName(name)
	rel := path.Join(MeshDir, base+".glb")
	if err := export.SaveGLB(export.MeshGLB(m, name, cfg.Textures), filepath.Join(cfg.OutputDir, rel)); err != nil {
		return err
	}
	res.Outputs = append(res.Outputs, rel)

	if cfg.PreviewSize > 0 {
		opts := raster.DefaultOptions()
		opts.Size = cfg.PreviewSize
		img := raster.RenderGeometry(scene.ModelGeometry(name, m), cfg.Textures, opts)
		img = export.Downscale(img, cfg.PreviewSize)
		rel := path.Join(MeshDir, base+".webp")
		if err := export.WriteWebP(filepath.Join(cfg.OutputDir, rel), img, export.ImageOptions{}); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, rel)
	}
	return nil
}

// exportLevel writes the level scene as GLB and each lightmap as
// <base>/lightmap_NNN.webp next to it.
func exportLevel(cfg Config, name string, data []byte, res *Result) error {
	lvl, err := level.Decode(data)
	if err != nil {
		return err
	}
	base := archive.BaseName(name)
	sc := scene.Build(lvl, base, cfg.Source, cfg.Tables, scene.Options{ShowInvisible: cfg.ShowInvisible})
	res.Warnings = append(append([]diag.Warning(nil), lvl.Warnings...), sc.Warnings...)

	rel := path.Join(LevelDir, base+".glb")
	if err := export.SaveGLB(export.LevelGLB(sc, cfg.Textures), filepath.Join(cfg.OutputDir, rel)); err != nil {
		return err
	}
	res.Outputs = append(res.Outputs, rel)

	for i, img := range export.BitmapFrames(sc.Lightmaps) {
		rel := path.Join(LevelDir, base, fmt.Sprintf("lightmap_%03d.webp", i))
		if err := export.WriteWebP(filepath.Join(cfg.OutputDir, rel), img, export.ImageOptions{}); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, rel)
	}
	return nil
}
