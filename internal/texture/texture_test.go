package texture

import (
	"bytes"
	"errors"
	"testing"

	"rf-asset-tools/internal/stream"
	"rf-asset-tools/internal/stream/streamtest"
)

func tgaHeader(imgType, cmapType uint8, mapLen uint16, mapEntry uint8, w, h uint16, depth, desc uint8) *streamtest.Builder {
	return new(streamtest.Builder).
		U8(0, cmapType, imgType).
		U16(0, mapLen).U8(mapEntry).
		U16(0, 0, w, h).U8(depth, desc)
}

func pixelAt(b *Bitmap, x, y int) [4]uint8 {
	i := (y*b.Width + x) * 4
	return [4]uint8{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

func TestExpandRoundTrip(t *testing.T) {
	for v := 0; v < 16; v++ {
		if got := Expand4(uint8(v)) >> 4; int(got) != v {
			t.Errorf("Expand4(%d)>>4 = %d", v, got)
		}
	}
	for v := 0; v < 32; v++ {
		if got := Expand5(uint8(v)) >> 3; int(got) != v {
			t.Errorf("Expand5(%d)>>3 = %d", v, got)
		}
	}
	for v := 0; v < 64; v++ {
		if got := Expand6(uint8(v)) >> 2; int(got) != v {
			t.Errorf("Expand6(%d)>>2 = %d", v, got)
		}
	}
	if Expand5(31) != 255 || Expand6(63) != 255 || Expand4(15) != 255 {
		t.Error("full-scale channel should expand to 255")
	}
	if Expand5(16) != 0x84 {
		t.Errorf("Expand5(16) = %#x, want 0x84", Expand5(16))
	}
}

func TestDecodeVBM_ARGB1555(t *testing.T) {
	data := new(streamtest.Builder).
		U32(VBMMagic, 1, 2, 1, VBMFormat1555, 0, 1, 0).
		U16(0x8000, 0x0000).
		Bytes()

	levels, err := DecodeVBM(data)
	if err != nil {
		t.Fatalf("DecodeVBM() error = %v", err)
	}
	if len(levels) != 1 {
		t.Fatalf("len(levels) = %d, want 1", len(levels))
	}
	bm := levels[0]
	if bm.Width != 2 || bm.Height != 1 || bm.Frames != 1 {
		t.Errorf("bitmap = %dx%d x%d", bm.Width, bm.Height, bm.Frames)
	}
	if got := pixelAt(bm, 0, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("pixel 0 = %v, want [0 0 0 255]", got)
	}
	if got := pixelAt(bm, 1, 0); got != [4]uint8{0, 0, 0, 0} {
		t.Errorf("pixel 1 = %v, want [0 0 0 0]", got)
	}
	if !bm.UsesAlpha {
		t.Error("UsesAlpha = false, want true")
	}
}

func TestDecodeVBM_FramesAndMips(t *testing.T) {
	// 4x2, 565, 2 frames, 2 mips (stored 1): frame-major, mip-minor
	b := new(streamtest.Builder).U32(VBMMagic, 1, 4, 2, VBMFormat565, 15, 2, 1)
	for frame := 0; frame < 2; frame++ {
		for i := 0; i < 8; i++ {
			b.U16(0xF800) // red
		}
		for i := 0; i < 2; i++ {
			b.U16(0x001F) // blue
		}
	}

	levels, err := DecodeVBM(b.Bytes())
	if err != nil {
		t.Fatalf("DecodeVBM() error = %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("len(levels) = %d, want 2", len(levels))
	}
	if levels[1].Width != 2 || levels[1].Height != 1 {
		t.Errorf("mip 1 = %dx%d, want 2x1", levels[1].Width, levels[1].Height)
	}
	for m, bm := range levels {
		if bm.Frames != 2 || bm.FrameRate != 15 {
			t.Errorf("mip %d: Frames=%d FrameRate=%d", m, bm.Frames, bm.FrameRate)
		}
		if len(bm.Pix) != bm.Width*bm.Height*4*2 {
			t.Errorf("mip %d: len(Pix) = %d", m, len(bm.Pix))
		}
		if bm.UsesAlpha {
			t.Errorf("mip %d: 565 should not use alpha", m)
		}
	}
	if got := levels[0].Frame(1).NRGBAAt(3, 1); got.R != 255 || got.B != 0 || got.A != 255 {
		t.Errorf("mip 0 frame 1 = %v, want red", got)
	}
	if got := levels[1].Frame(1).NRGBAAt(1, 0); got.B != 255 || got.R != 0 {
		t.Errorf("mip 1 frame 1 = %v, want blue", got)
	}
}

func TestDecodeVBM_4444(t *testing.T) {
	data := new(streamtest.Builder).
		U32(VBMMagic, 1, 1, 1, VBMFormat4444, 0, 1, 0).
		U16(0x8F0A).
		Bytes()
	levels, err := DecodeVBM(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := pixelAt(levels[0], 0, 0); got != [4]uint8{0xFF, 0x00, 0xAA, 0x88} {
		t.Errorf("pixel = %v", got)
	}
}

func TestDecodeVBM_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", new(streamtest.Builder).U32(1, 1, 1, 1, 0, 0, 1, 0).U16(0).Bytes(), stream.ErrBadMagic},
		{"truncated", new(streamtest.Builder).U32(VBMMagic, 1, 4, 4, 0, 0, 1, 0).U16(0).Bytes(), stream.ErrOutOfBounds},
		{"huge", new(streamtest.Builder).U32(VBMMagic, 1, 0xFFFF, 0xFFFF, 0, 0, 0xFFFF, 0).Bytes(), stream.ErrOutOfBounds},
		{"mip count wraps", new(streamtest.Builder).U32(VBMMagic, 1, 1, 1, VBMFormat1555, 0, 1, 0xFFFFFFFF).U16(0xFFFF).Bytes(), ErrBadHeader},
		{"zero width", new(streamtest.Builder).U32(VBMMagic, 1, 0, 4, VBMFormat1555, 0, 1, 0).U16(0).Bytes(), ErrBadHeader},
		{"zero height", new(streamtest.Builder).U32(VBMMagic, 1, 4, 0, VBMFormat1555, 0, 1, 0).U16(0).Bytes(), ErrBadHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeVBM(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("DecodeVBM() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeVBM_MipCountCapped(t *testing.T) {
	tests := []struct {
		name   string
		w, h   uint32
		mips   uint32
		pixels int
		want   []int // widths per level
	}{
		{"1x1 claims a billion mips", 1, 1, 0x3FFFFFFF, 1, []int{1}},
		{"4x1 claims 9 mips", 4, 1, 8, 4, []int{4, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(streamtest.Builder).U32(VBMMagic, 1, tt.w, tt.h, VBMFormat1555, 0, 1, tt.mips)
			for i := 0; i < tt.pixels; i++ {
				b.U16(0xFFFF)
			}
			levels, err := DecodeVBM(b.Bytes())
			if err != nil {
				t.Fatalf("DecodeVBM() error = %v", err)
			}
			if len(levels) != len(tt.want) {
				t.Fatalf("levels = %d, want %d", len(levels), len(tt.want))
			}
			for i, bm := range levels {
				if bm.Width != tt.want[i] {
					t.Errorf("level %d width = %d, want %d", i, bm.Width, tt.want[i])
				}
			}
		})
	}
}

func TestDecodeTGA_RLERepeat(t *testing.T) {
	// 5x1, top-left origin, one repeat packet of 5 pixels
	data := tgaHeader(tgaRLETrueColor, 0, 0, 0, 5, 1, 24, tgaDescTopBottom).
		U8(0x80|4, 30, 20, 10).
		Bytes()

	bm, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA() error = %v", err)
	}
	if len(bm.Pix) != 5*4 {
		t.Fatalf("len(Pix) = %d, want 20", len(bm.Pix))
	}
	for x := 0; x < 5; x++ {
		if got := pixelAt(bm, x, 0); got != [4]uint8{10, 20, 30, 255} {
			t.Errorf("pixel %d = %v, want [10 20 30 255]", x, got)
		}
	}
	if bm.UsesAlpha {
		t.Error("UsesAlpha = true, want false")
	}
}

func TestDecodeTGA_RLEExactLength(t *testing.T) {
	tests := []struct {
		name    string
		imgType uint8
		depth   uint8
		pixel   []byte
		cmap    bool
	}{
		{"gray", tgaRLEGray, 8, []byte{7}, false},
		{"16-bit", tgaRLETrueColor, 16, []byte{0xFF, 0x7F}, false},
		{"24-bit", tgaRLETrueColor, 24, []byte{1, 2, 3}, false},
		{"32-bit", tgaRLETrueColor, 32, []byte{1, 2, 3, 4}, false},
		{"indexed", tgaRLEColorMap, 8, []byte{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const w, h = 7, 3 // 21 pixels
			var b *streamtest.Builder
			if tt.cmap {
				b = tgaHeader(tt.imgType, 1, 2, 24, w, h, tt.depth, 0).U8(0, 0, 0, 9, 9, 9)
			} else {
				b = tgaHeader(tt.imgType, 0, 0, 0, w, h, tt.depth, 0)
			}
			// raw packet of 3, repeat of 16, then a repeat of 128 that
			// must be clamped to the last 2 pixels
			b.U8(2)
			for i := 0; i < 3; i++ {
				b.Raw(tt.pixel)
			}
			b.U8(0x80 | 15).Raw(tt.pixel)
			b.U8(0x80 | 127).Raw(tt.pixel)

			bm, err := DecodeTGA(b.Bytes())
			if err != nil {
				t.Fatalf("DecodeTGA() error = %v", err)
			}
			if len(bm.Pix) != w*h*4 {
				t.Errorf("len(Pix) = %d, want %d", len(bm.Pix), w*h*4)
			}
		})
	}
}

func TestDecodeTGA_RawDepths(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		want  [4]uint8
		alpha bool
	}{
		{
			"24-bit bgr",
			tgaHeader(tgaTrueColor, 0, 0, 0, 1, 1, 24, 0).U8(3, 2, 1).Bytes(),
			[4]uint8{1, 2, 3, 255}, false,
		},
		{
			"32-bit with alpha",
			tgaHeader(tgaTrueColor, 0, 0, 0, 1, 1, 32, 8).U8(3, 2, 1, 128).Bytes(),
			[4]uint8{1, 2, 3, 128}, true,
		},
		{
			"16-bit alpha ignored without descriptor bits",
			tgaHeader(tgaTrueColor, 0, 0, 0, 1, 1, 16, 0).U16(0x7C00).Bytes(),
			[4]uint8{255, 0, 0, 255}, false,
		},
		{
			"15-bit treated as 16",
			tgaHeader(tgaTrueColor, 0, 0, 0, 1, 1, 15, 1).U16(0x001F).Bytes(),
			[4]uint8{0, 0, 255, 0}, true,
		},
		{
			"gray",
			tgaHeader(tgaGray, 0, 0, 0, 1, 1, 8, 0).U8(77).Bytes(),
			[4]uint8{77, 77, 77, 255}, false,
		},
		{
			"color mapped",
			tgaHeader(tgaColorMapped, 1, 2, 24, 1, 1, 8, 0).U8(0, 0, 0, 30, 20, 10).U8(1).Bytes(),
			[4]uint8{10, 20, 30, 255}, false,
		},
		{
			"color mapped 32-bit entries on 8-bit image",
			tgaHeader(tgaColorMapped, 1, 1, 32, 1, 1, 8, 8).U8(30, 20, 10, 5).U8(0).Bytes(),
			[4]uint8{10, 20, 30, 5}, true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm, err := DecodeTGA(tt.data)
			if err != nil {
				t.Fatalf("DecodeTGA() error = %v", err)
			}
			if got := pixelAt(bm, 0, 0); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
			if bm.UsesAlpha != tt.alpha {
				t.Errorf("UsesAlpha = %v, want %v", bm.UsesAlpha, tt.alpha)
			}
		})
	}
}

func TestDecodeTGA_Orientation(t *testing.T) {
	// 2x2 gray: stored rows are [1 2] [3 4]
	tests := []struct {
		name string
		desc uint8
		want [4]uint8 // row-major top-left first, red channel
	}{
		{"bottom-left origin", 0, [4]uint8{3, 4, 1, 2}},
		{"top-left origin", tgaDescTopBottom, [4]uint8{1, 2, 3, 4}},
		{"bottom-right origin", tgaDescRightLeft, [4]uint8{4, 3, 2, 1}},
		{"top-right origin", tgaDescRightLeft | tgaDescTopBottom, [4]uint8{2, 1, 4, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tgaHeader(tgaGray, 0, 0, 0, 2, 2, 8, tt.desc).U8(1, 2, 3, 4).Bytes()
			bm, err := DecodeTGA(data)
			if err != nil {
				t.Fatal(err)
			}
			got := [4]uint8{pixelAt(bm, 0, 0)[0], pixelAt(bm, 1, 0)[0], pixelAt(bm, 0, 1)[0], pixelAt(bm, 1, 1)[0]}
			if got != tt.want {
				t.Errorf("pixels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0, 2}, stream.ErrOutOfBounds},
		{"truncated pixels", tgaHeader(tgaTrueColor, 0, 0, 0, 4, 4, 24, 0).U8(1, 2, 3).Bytes(), stream.ErrOutOfBounds},
		{"truncated rle", tgaHeader(tgaRLETrueColor, 0, 0, 0, 4, 4, 24, 0).U8(0x81, 1, 2, 3).Bytes(), stream.ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("DecodeTGA() error = %v, want %v", err, tt.want)
			}
		})
	}

	bad := tgaHeader(tgaColorMapped, 1, 1, 24, 1, 1, 8, 0).U8(0, 0, 0).U8(5).Bytes()
	if _, err := DecodeTGA(bad); err == nil {
		t.Error("palette index out of range should fail")
	}
	if _, err := DecodeTGA(tgaHeader(32, 0, 0, 0, 1, 1, 8, 0).U8(0).Bytes()); err == nil {
		t.Error("huffman image type should be rejected")
	}
}

func TestFlipInvolution(t *testing.T) {
	bm := newBitmap(3, 2, 2)
	for i := range bm.Pix {
		bm.Pix[i] = byte(i * 7)
	}
	orig := append([]byte(nil), bm.Pix...)

	bm.FlipX()
	if bytes.Equal(bm.Pix, orig) {
		t.Fatal("FlipX() did not change the bitmap")
	}
	bm.FlipX()
	if !bytes.Equal(bm.Pix, orig) {
		t.Error("FlipX twice is not the identity")
	}

	bm.FlipY()
	if bytes.Equal(bm.Pix, orig) {
		t.Fatal("FlipY() did not change the bitmap")
	}
	bm.FlipY()
	if !bytes.Equal(bm.Pix, orig) {
		t.Error("FlipY twice is not the identity")
	}
}

func TestReferenceDecodeMatches(t *testing.T) {
	b := tgaHeader(tgaTrueColor, 0, 0, 0, 3, 2, 24, 0)
	for i := 0; i < 6; i++ {
		b.U8(uint8(i*40), uint8(i*20), uint8(i*10))
	}
	data := b.Bytes()

	ours, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := ReferenceDecode(data)
	if err != nil {
		t.Fatalf("ReferenceDecode() error = %v", err)
	}
	if !bytes.Equal(ours.Frame(0).Pix, ref.Pix) {
		t.Errorf("decoders disagree:\n ours %v\n ref  %v", ours.Pix, ref.Pix)
	}
}

func TestDecode_Dispatch(t *testing.T) {
	tga := tgaHeader(tgaGray, 0, 0, 0, 1, 1, 8, 0).U8(1).Bytes()
	if got, err := Decode(tga, FormatFromName("A.TGA")); err != nil || len(got) != 1 {
		t.Errorf("Decode(tga) = %d bitmaps, %v", len(got), err)
	}
	if _, err := Decode(tga, FormatFromName("a.png")); err == nil {
		t.Error("Decode() with unknown format should fail")
	}
}
