package texture

import (
	"sync"
	"testing"

	"rf-asset-tools/internal/diag"
	"rf-asset-tools/internal/stream/streamtest"
)

// countingSource serves files from a map and counts every open.
type countingSource struct {
	mu    sync.Mutex
	files map[string][]byte
	opens map[string]int
}

func (s *countingSource) Open(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens[name]++
	data, ok := s.files[name]
	return data, ok
}

func newCacheFixture() (*Cache, *countingSource) {
	src := &countingSource{
		files: map[string][]byte{
			"rck_default.tga": tgaHeader(2, 0, 0, 0, 1, 1, 32, 8).U8(0, 0, 255, 255).Bytes(),
			"wall.vbm":        new(streamtest.Builder).U32(VBMMagic, 1, 1, 1, VBMFormat1555, 0, 1, 0).U16(0xFFFF).Bytes(),
			"wall.tga":        tgaHeader(2, 0, 0, 0, 1, 1, 32, 8).U8(0, 255, 0, 255).Bytes(),
			"broken.tga":      []byte("not a tga"),
		},
		opens: make(map[string]int),
	}
	var names []string
	for n := range src.files {
		names = append(names, n)
	}
	return NewCache(src, BuildIndex(names), ""), src
}

func TestCache_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		wantFiles []string
		fallback  bool
	}{
		{"vbm preferred over tga", "Wall.tga", []string{"wall.vbm"}, false},
		{"undecodable uses default", "broken.tga", []string{"rck_default.tga"}, true},
		{"unknown uses default", "nowhere", []string{"rck_default.tga"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCacheFixture()
			tex := c.Resolve(tt.ref)
			if tex == nil {
				t.Fatal("Resolve() = nil")
			}
			if tex.Fallback != tt.fallback || tex.Name != StemOf(tt.ref) {
				t.Errorf("Resolve() name=%q fallback=%v, want %q %v", tex.Name, tex.Fallback, StemOf(tt.ref), tt.fallback)
			}
			if len(tex.Files) != 1 || tex.Files[0] != tt.wantFiles[0] {
				t.Errorf("Files = %q, want %q", tex.Files, tt.wantFiles)
			}
		})
	}
}

func TestCache_LoadsOnce(t *testing.T) {
	c, src := newCacheFixture()

	first := c.Resolve("wall")
	if second := c.Resolve("WALL.vbm"); second != first {
		t.Errorf("second Resolve() = %p, want cached %p", second, first)
	}
	if n := src.opens["wall.vbm"]; n != 1 {
		t.Errorf("wall.vbm opened %d times, want 1", n)
	}

	// A failed load is cached too: the broken file is read once, and each
	// reference still reports the substitution.
	for i := 0; i < 3; i++ {
		if tex := c.Resolve("broken"); tex == nil || !tex.Fallback {
			t.Fatalf("Resolve(broken) = %+v, want fallback", tex)
		}
	}
	if n := src.opens["broken.tga"]; n != 1 {
		t.Errorf("broken.tga opened %d times, want 1", n)
	}
	if n := src.opens["rck_default.tga"]; n != 1 {
		t.Errorf("rck_default.tga opened %d times, want 1", n)
	}
	// one decode failure plus one substitution per reference
	if n := diag.Count(c.Warnings(), diag.MissingDependency); n != 4 {
		t.Errorf("missing warnings = %d, want 4: %v", n, c.Warnings())
	}
}

func TestCache_Concurrent(t *testing.T) {
	c, src := newCacheFixture()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tex := c.Resolve("wall"); tex == nil || tex.Fallback {
				t.Errorf("Resolve(wall) = %+v", tex)
			}
		}()
	}
	wg.Wait()
	if n := src.opens["wall.vbm"]; n < 1 {
		t.Errorf("wall.vbm never opened")
	}
}
