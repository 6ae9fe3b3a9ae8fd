package archive

import (
	"bytes"
	"errors"
	"testing"

	"rf-asset-tools/internal/stream"
	"rf-asset-tools/internal/stream/streamtest"
)

type fixture struct {
	name string
	data []byte
}

func buildVPP(files ...fixture) []byte {
	b := new(streamtest.Builder).U32(Magic, 1, uint32(len(files)), 0).Align(sectorSize)
	for _, f := range files {
		b.Fixed(f.name, nameSize).U32(uint32(len(f.data)))
	}
	b.Align(sectorSize)
	for _, f := range files {
		b.Raw(f.data).Align(sectorSize)
	}
	return b.Bytes()
}

func TestDecode_SingleTexture(t *testing.T) {
	data := buildVPP(fixture{"TEST.TGA", make([]byte, 18)})

	a, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(a.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(a.Entries))
	}
	e := a.Entries[0]
	if e.Name != "test.tga" || e.Base != "test" || e.Kind != KindTexture || e.Size != 18 {
		t.Errorf("entry = {Name:%q Base:%q Kind:%q Size:%d}", e.Name, e.Base, e.Kind, e.Size)
	}
	if e.RawName != "TEST.TGA" {
		t.Errorf("RawName = %q, want TEST.TGA", e.RawName)
	}
	if len(e.Data) != 18 {
		t.Errorf("len(Data) = %d, want 18", len(e.Data))
	}
}

func TestDecode_PayloadsAndLookup(t *testing.T) {
	files := []fixture{
		{"L1S1.rfl", bytes.Repeat([]byte{1}, 3000)},
		{"Clutter.tbl", []byte("$Class Name: \"box\"")},
		{"barrel.V3M", bytes.Repeat([]byte{3}, 2048)},
		{"readme.txt", nil},
		{"sky.vbm", []byte{9, 9}},
	}
	data := buildVPP(files...)

	a, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	wantKinds := []Kind{KindLevel, KindTable, KindMesh, KindFile, KindTexture}
	total := 0
	for i, e := range a.Entries {
		if e.Kind != wantKinds[i] {
			t.Errorf("Entries[%d].Kind = %q, want %q", i, e.Kind, wantKinds[i])
		}
		if len(e.Data) != e.Size {
			t.Errorf("Entries[%d]: len(Data) = %d, Size = %d", i, len(e.Data), e.Size)
		}
		if !bytes.Equal(e.Data, files[i].data) && !(len(e.Data) == 0 && len(files[i].data) == 0) {
			t.Errorf("Entries[%d] payload mismatch", i)
		}
		total += e.Size
	}

	// sizes plus padding account for the whole buffer
	if total > len(data) || len(data)-total >= sectorSize*(2+len(files)) {
		t.Errorf("payload total %d does not fit buffer of %d bytes", total, len(data))
	}

	if e, ok := a.Find("BARREL.v3m"); !ok || e.Base != "barrel" {
		t.Errorf("Find(BARREL.v3m) = %v, %v", e, ok)
	}
	if e, ok := a.FindBase("l1s1"); !ok || e.Name != "l1s1.rfl" {
		t.Errorf("FindBase(l1s1) = %v, %v", e, ok)
	}
	if _, ok := a.Find("missing.tga"); ok {
		t.Error("Find(missing.tga) should fail")
	}
	if got := a.OfKind(KindMesh); len(got) != 1 || got[0].Name != "barrel.v3m" {
		t.Errorf("OfKind(mesh) = %v", got)
	}
	if e, _ := a.Find("readme.txt"); e.Base != "readme.txt" {
		t.Errorf("unknown extension base = %q, want readme.txt", e.Base)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", new(streamtest.Builder).U32(0xCAFEBABE, 1, 0, 0).Align(sectorSize).Bytes(), stream.ErrBadMagic},
		{"empty", nil, stream.ErrOutOfBounds},
		{"header only", new(streamtest.Builder).U32(Magic, 1, 1, 0).Bytes(), stream.ErrOutOfBounds},
		{"huge count", new(streamtest.Builder).U32(Magic, 1, 0xFFFFFF, 0).Align(sectorSize).Bytes(), stream.ErrOutOfBounds},
		{"truncated payload", buildVPP(fixture{"a.tga", make([]byte, 100)})[:sectorSize*2+50], stream.ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"ROCK01.TGA": "rock01",
		"mesh.v3c":   "mesh",
		"fx.vfx":     "fx",
		"music.wav":  "music.wav",
		"dm01.rfl":   "dm01",
		"noext":      "noext",
		"a.b.tga":    "a.b",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}
