package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"rf-asset-tools/internal/diag"
)

// Manifest is the summary written next to the exported files.
type Manifest struct {
	Archives []string `json:"archives"`
	Exported int      `json:"exported"`
	Failed   int      `json:"failed"`
	Results  []Result `json:"results"`
	// Textures lists missing-texture warnings gathered across all jobs.
	Textures []diag.Warning `json:"textures,omitempty"`
}

// NewManifest summarises results.
func NewManifest(archives []string, results []Result, textures []diag.Warning) Manifest {
	m := Manifest{Archives: archives, Results: results, Textures: textures}
	for _, r := range results {
		if r.Success {
			m.Exported++
		} else {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
