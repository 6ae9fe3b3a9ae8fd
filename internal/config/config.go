package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"rf-asset-tools/internal/archive"
	"rf-asset-tools/internal/texture"
	"rf-asset-tools/internal/vfs"
)

// Config holds all configurable paths and export settings.
type Config struct {
	// Paths
	GameDir   string   `json:"game_dir"`
	Archives  []string `json:"archives"` // mount order; every packfile in GameDir when empty
	OutputDir string   `json:"output_dir"`

	// Export settings
	MaxTextureSize int      `json:"max_texture_size"`
	PreviewSize    int      `json:"preview_size"` // mesh preview images; 0 disables
	Workers        int      `json:"workers"`
	DefaultTexture string   `json:"default_texture"`
	ShowInvisible  bool     `json:"show_invisible"`
	Kinds          []string `json:"kinds"` // "texture", "mesh", "level"; all when empty
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.GameDir != "" {
		c.GameDir = flags.GameDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.MaxTextureSize > 0 {
		c.MaxTextureSize = flags.MaxTextureSize
	}
	if flags.PreviewSize > 0 {
		c.PreviewSize = flags.PreviewSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.ShowInvisible {
		c.ShowInvisible = true
	}
	if flags.Kinds != "" {
		c.Kinds = splitList(flags.Kinds)
	}

	// Auto-detect game dir if still empty
	if c.GameDir == "" {
		c.GameDir = detectGameDir()
	}

	// Resolve relative paths against game dir
	if c.GameDir != "" {
		for i, a := range c.Archives {
			if !filepath.IsAbs(a) {
				c.Archives[i] = filepath.Join(c.GameDir, a)
			}
		}
		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.GameDir, "export")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.GameDir, c.OutputDir)
		}
	}

	if c.DefaultTexture == "" {
		c.DefaultTexture = texture.DefaultTexture
	}
	if c.MaxTextureSize < 0 {
		c.MaxTextureSize = 0
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// ArchivePaths returns the packfiles to mount: Archives when set,
// otherwise every packfile found in GameDir.
func (c *Config) ArchivePaths() ([]string, error) {
	if len(c.Archives) > 0 {
		return c.Archives, nil
	}
	if c.GameDir == "" {
		return nil, fmt.Errorf("config: no game dir and no archives")
	}
	paths, err := vfs.Discover(c.GameDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("config: no .vpp files in %s", c.GameDir)
	}
	return paths, nil
}

// Exports reports whether entries of kind k are selected for export.
func (c *Config) Exports(k archive.Kind) bool {
	if len(c.Kinds) == 0 {
		return k == archive.KindTexture || k == archive.KindMesh || k == archive.KindLevel
	}
	for _, want := range c.Kinds {
		if archive.Kind(want) == k {
			return true
		}
	}
	return false
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	GameDir        string
	OutputDir      string
	MaxTextureSize int
	PreviewSize    int
	Workers        int
	ShowInvisible  bool
	Kinds          string // comma-separated
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func detectGameDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if hasPackfiles(base) {
				return base
			}
		}
	}

	// Try current working directory, then its parent
	cwd, _ := os.Getwd()
	if hasPackfiles(cwd) {
		return cwd
	}
	if parent := filepath.Dir(cwd); hasPackfiles(parent) {
		return parent
	}

	return ""
}

func hasPackfiles(dir string) bool {
	paths, err := vfs.Discover(dir)
	return err == nil && len(paths) > 0
}
