package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"rf-asset-tools/internal/archive"
	"rf-asset-tools/internal/level"
	"rf-asset-tools/internal/mesh"
	"rf-asset-tools/internal/stream/streamtest"
	"rf-asset-tools/internal/texture"
)

type mapSource map[string][]byte

func (m mapSource) Open(name string) ([]byte, bool) {
	data, ok := m[name]
	return data, ok
}

func testTGA() []byte {
	return new(streamtest.Builder).
		U8(0, 0, 2).U16(0, 0).U8(0).
		U16(0, 0, 2, 1).U8(32, 8).
		U8(0, 0, 255, 255, 255, 0, 0, 128).Bytes()
}

func testVBM() []byte {
	// 4x2, 565, 2 frames, 1 extra mip
	b := new(streamtest.Builder).U32(texture.VBMMagic, 1, 4, 2, texture.VBMFormat565, 15, 2, 1)
	for frame := 0; frame < 2; frame++ {
		for i := 0; i < 10; i++ {
			b.U16(0xF800)
		}
	}
	return b.Bytes()
}

func testMesh() []byte {
	return new(streamtest.Builder).U32(mesh.MagicRF3D, 0x40000, 0, 0, 0, 0, 0, 0, 0, 0).Section(0, nil).Bytes()
}

func testLevel() []byte {
	return new(streamtest.Builder).
		U32(level.Magic, 0xC8, 0, 0, 0, 1, 0).RF1String("test").RF1String("").
		Section(uint32(level.TagLightmaps), new(streamtest.Builder).U32(2).U32(2, 2).Zeros(12).U32(1, 1).Zeros(3).Bytes()).
		Bytes()
}

func TestJobs(t *testing.T) {
	names := []string{"l1s1.rfl", "rck_wall.tga", "fire.vbm", "miner.vcm", "crate.v3m", "explode.vfx", "items.tbl", "music.wav"}
	got := Jobs(names, nil)
	want := []Job{
		{"crate.v3m", archive.KindMesh},
		{"fire.vbm", archive.KindTexture},
		{"l1s1.rfl", archive.KindLevel},
		{"miner.vcm", archive.KindMesh},
		{"rck_wall.tga", archive.KindTexture},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Jobs() = %v, want %v", got, want)
	}

	onlyLevels := Jobs(names, func(k archive.Kind) bool { return k == archive.KindLevel })
	if len(onlyLevels) != 1 || onlyLevels[0].Name != "l1s1.rfl" {
		t.Errorf("Jobs(levels) = %v", onlyLevels)
	}
}

func TestRun(t *testing.T) {
	src := mapSource{
		"rck_wall.tga": testTGA(),
		"fire.vbm":     testVBM(),
		"crate.v3m":    testMesh(),
		"l1s1.rfl":     testLevel(),
		"broken.v3m":   []byte("nope"),
	}
	out := t.TempDir()
	cfg := Config{Source: src, OutputDir: out, Workers: 2, PreviewSize: 16}
	jobs := Jobs([]string{"rck_wall.tga", "fire.vbm", "crate.v3m", "l1s1.rfl", "broken.v3m", "gone.tga"}, nil)

	results := Run(cfg, jobs)
	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(jobs))
	}
	byName := make(map[string]Result)
	for _, r := range results {
		byName[r.Name] = r
	}

	tests := []struct {
		name    string
		success bool
		outputs []string
	}{
		{"rck_wall.tga", true, []string{"textures/rck_wall.webp"}},
		{"fire.vbm", true, []string{
			"textures/fire_f00.webp", "textures/fire_f01.webp",
			"textures/fire-mip1_f00.webp", "textures/fire-mip1_f01.webp",
		}},
		{"crate.v3m", true, []string{"meshes/crate.glb", "meshes/crate.webp"}},
		{"l1s1.rfl", true, []string{"levels/l1s1.glb", "levels/l1s1/lightmap_000.webp", "levels/l1s1/lightmap_001.webp"}},
		{"broken.v3m", false, nil},
		{"gone.tga", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := byName[tt.name]
			if !ok {
				t.Fatal("no result")
			}
			if r.Success != tt.success {
				t.Fatalf("Success = %v (error %q), want %v", r.Success, r.Error, tt.success)
			}
			if !tt.success {
				if r.Error == "" {
					t.Error("failed result has no error")
				}
				return
			}
			if !reflect.DeepEqual(r.Outputs, tt.outputs) {
				t.Errorf("Outputs = %q, want %q", r.Outputs, tt.outputs)
			}
			for _, o := range r.Outputs {
				if _, err := os.Stat(filepath.Join(out, o)); err != nil {
					t.Errorf("output %s: %v", o, err)
				}
			}
		})
	}
}

func TestWriteManifest(t *testing.T) {
	results := []Result{
		{Name: "a.tga", Kind: archive.KindTexture, Outputs: []string{"textures/a.webp"}, Success: true},
		{Name: "b.rfl", Kind: archive.KindLevel, Error: "level: bad magic"},
	}
	m := NewManifest([]string{"levels1.vpp"}, results, nil)
	if m.Exported != 1 || m.Failed != 1 {
		t.Errorf("Exported/Failed = %d/%d", m.Exported, m.Failed)
	}

	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Manifest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if len(got.Results) != 2 || got.Results[1].Error != "level: bad magic" {
		t.Errorf("reloaded manifest = %+v", got)
	}
}
