package texture

import (
	"errors"
	"fmt"

	"rf-asset-tools/internal/stream"
)

// VBMMagic is the ".vbm" header constant.
const VBMMagic = 0x6D62762E

// VBM pixel formats.
const (
	VBMFormat1555 = 0
	VBMFormat4444 = 1
	VBMFormat565  = 2
)

// ErrBadHeader is returned for header fields that cannot describe an image.
var ErrBadHeader = errors.New("bad header")

// maxMips bounds the mip chain: a 32-bit side halves to zero within 32 steps.
const maxMips = 32

// VBMHeader is the fixed animated bitmap header.
type VBMHeader struct {
	Version   uint32
	Width     uint32
	Height    uint32
	Format    uint32
	FrameRate uint32
	Frames    uint32
	Mips      uint32 // stored count minus one, already adjusted
}

// mipLevels returns the number of levels before both sides reach zero.
func (h VBMHeader) mipLevels() uint32 {
	n := uint32(0)
	for w, ht := h.Width, h.Height; (w > 0 || ht > 0) && n < maxMips; w, ht = w>>1, ht>>1 {
		n++
	}
	return n
}

func readVBMHeader(c *stream.Cursor) (VBMHeader, error) {
	if _, err := c.CheckMagic("vbm", VBMMagic); err != nil {
		return VBMHeader{}, err
	}
	h := VBMHeader{
		Version:   c.U32(),
		Width:     c.U32(),
		Height:    c.U32(),
		Format:    c.U32(),
		FrameRate: c.U32(),
		Frames:    c.U32(),
		Mips:      c.U32() + 1,
	}
	return h, c.Err()
}

// DecodeVBM decodes an animated bitmap into one Bitmap per mip level.
// Every level carries all frames.
func DecodeVBM(data []byte) ([]*Bitmap, error) {
	c := stream.New(data)
	h, err := readVBMHeader(c)
	if err != nil {
		return nil, fmt.Errorf("vbm: read header: %w", err)
	}
	switch h.Format {
	case VBMFormat1555, VBMFormat4444, VBMFormat565:
	default:
		return nil, fmt.Errorf("vbm: unsupported pixel format %d", h.Format)
	}
	if h.Mips == 0 {
		return nil, fmt.Errorf("vbm: mip count overflows: %w", ErrBadHeader)
	}
	if (h.Width == 0 || h.Height == 0) && h.Frames > 0 {
		return nil, fmt.Errorf("vbm: %dx%d with %d frames: %w", h.Width, h.Height, h.Frames, ErrBadHeader)
	}
	h.Mips = min(h.Mips, h.mipLevels())

	// every pixel is two bytes, so the mip chain must fit in what is left
	need := uint64(0)
	for m, w, ht := uint32(0), uint64(h.Width), uint64(h.Height); m < h.Mips; m, w, ht = m+1, w>>1, ht>>1 {
		need += w * ht * 2
	}
	if need*uint64(h.Frames) > uint64(c.Remaining()) {
		return nil, fmt.Errorf("vbm: %dx%d, %d frames, %d mips: %w", h.Width, h.Height, h.Frames, h.Mips,
			&stream.OutOfBoundsError{Offset: c.Offset(), Want: int(min(need*uint64(h.Frames), 1<<31-1)), Len: c.Len()})
	}

	frames := int(h.Frames)
	levels := make([]*Bitmap, h.Mips)
	writers := make([]*pixelWriter, h.Mips)
	w, ht := int(h.Width), int(h.Height)
	for m := range levels {
		levels[m] = newBitmap(w, ht, frames)
		levels[m].FrameRate = int(h.FrameRate)
		writers[m] = &pixelWriter{pix: levels[m].Pix}
		w >>= 1
		ht >>= 1
	}

	usesAlpha := false
	for f := 0; f < frames; f++ {
		for m, bm := range levels {
			pw := writers[m]
			for i := 0; i < bm.Width*bm.Height; i++ {
				v, err := c.ReadU16()
				if err != nil {
					return nil, fmt.Errorf("vbm: frame %d mip %d: %w", f, m, err)
				}
				switch h.Format {
				case VBMFormat1555:
					pw.put(unpack1555(v))
				case VBMFormat4444:
					pw.put(unpack4444(v))
				case VBMFormat565:
					r, g, b := unpack565(v)
					pw.put(r, g, b, 255)
				}
			}
			usesAlpha = usesAlpha || pw.usesAlpha
		}
	}
	for _, bm := range levels {
		bm.UsesAlpha = usesAlpha
	}
	return levels, nil
}
