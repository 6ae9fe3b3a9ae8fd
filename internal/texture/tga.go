package texture

import (
	"fmt"

	"rf-asset-tools/internal/stream"
)

// TGA image types.
const (
	tgaNoImage       = 0
	tgaColorMapped   = 1
	tgaTrueColor     = 2
	tgaGray          = 3
	tgaRLEColorMap   = 9
	tgaRLETrueColor  = 10
	tgaRLEGray       = 11
	tgaHeaderSize    = 18
	tgaDescAlphaBits = 0x0F
	tgaDescRightLeft = 0x10
	tgaDescTopBottom = 0x20
)

// TGAHeader is the fixed 18-byte header.
type TGAHeader struct {
	IDLength     uint8
	ColorMapType uint8
	ImageType    uint8
	MapFirst     uint16
	MapLength    uint16
	MapEntrySize uint8
	XOrigin      uint16
	YOrigin      uint16
	Width        uint16
	Height       uint16
	Depth        uint8
	Descriptor   uint8
}

// Alpha reports whether the image carries a meaningful alpha channel.
func (h TGAHeader) Alpha() bool {
	return h.Descriptor&tgaDescAlphaBits != 0 || h.Depth == 32
}

// FlipX reports a right-to-left pixel order.
func (h TGAHeader) FlipX() bool { return h.Descriptor&tgaDescRightLeft != 0 }

// FlipY reports a bottom-up row order, the TGA default.
func (h TGAHeader) FlipY() bool { return h.Descriptor&tgaDescTopBottom == 0 }

func readTGAHeader(c *stream.Cursor) (TGAHeader, error) {
	h := TGAHeader{
		IDLength:     c.U8(),
		ColorMapType: c.U8(),
		ImageType:    c.U8(),
		MapFirst:     c.U16(),
		MapLength:    c.U16(),
		MapEntrySize: c.U8(),
		XOrigin:      c.U16(),
		YOrigin:      c.U16(),
		Width:        c.U16(),
		Height:       c.U16(),
		Depth:        c.U8(),
		Descriptor:   c.U8(),
	}
	if h.MapEntrySize == 15 {
		h.MapEntrySize = 16
	}
	if h.Depth == 15 {
		h.Depth = 16
	}
	return h, c.Err()
}

// tgaPixels decodes one pixel at a time from the stream.
type tgaPixels struct {
	c       *stream.Cursor
	depth   uint8
	alpha   bool
	palette []stream.Color // nil unless color mapped
	first   int
}

func (p *tgaPixels) next() (r, g, b, a uint8, err error) {
	if p.palette != nil {
		var idx int
		if p.depth == 16 {
			idx = int(p.c.U16())
		} else {
			idx = int(p.c.U8())
		}
		if err := p.c.Err(); err != nil {
			return 0, 0, 0, 0, err
		}
		i := idx - p.first
		if i < 0 || i >= len(p.palette) {
			return 0, 0, 0, 0, fmt.Errorf("color index %d outside map [%d,%d)", idx, p.first, p.first+len(p.palette))
		}
		col := p.palette[i]
		return col[0], col[1], col[2], col[3], nil
	}
	return readTGAColor(p.c, p.depth, p.alpha)
}

// readTGAColor reads one gray, 16, 24 or 32-bit color.
func readTGAColor(c *stream.Cursor, depth uint8, alpha bool) (r, g, b, a uint8, err error) {
	a = 255
	switch depth {
	case 8:
		r = c.U8()
		g, b = r, r
	case 16:
		r, g, b, a = unpack1555(c.U16())
	case 24, 32:
		b, g, r = c.U8(), c.U8(), c.U8()
		if depth == 32 {
			a = c.U8()
		}
	default:
		return 0, 0, 0, 0, fmt.Errorf("unsupported pixel depth %d", depth)
	}
	if !alpha {
		a = 255
	}
	return r, g, b, a, c.Err()
}

// DecodeTGA decodes a TGA image into a single-frame bitmap.
func DecodeTGA(data []byte) (*Bitmap, error) {
	c := stream.New(data)
	h, err := readTGAHeader(c)
	if err != nil {
		return nil, fmt.Errorf("tga: read header: %w", err)
	}
	if err := c.Skip(int(h.IDLength)); err != nil {
		return nil, fmt.Errorf("tga: skip id: %w", err)
	}

	var palette []stream.Color
	switch h.ColorMapType {
	case 0:
	case 1:
		palette, err = readTGAColorMap(c, h)
		if err != nil {
			return nil, fmt.Errorf("tga: read color map: %w", err)
		}
	default:
		return nil, fmt.Errorf("tga: unsupported color map type %d", h.ColorMapType)
	}

	bm := newBitmap(int(h.Width), int(h.Height), 1)
	w := &pixelWriter{pix: bm.Pix}
	src := &tgaPixels{c: c, depth: h.Depth, alpha: h.Alpha(), first: int(h.MapFirst)}

	switch h.ImageType {
	case tgaNoImage:
	case tgaColorMapped, tgaRLEColorMap:
		if palette == nil {
			return nil, fmt.Errorf("tga: image type %d without a color map", h.ImageType)
		}
		src.palette = palette
	case tgaGray, tgaRLEGray:
		src.depth = 8
	case tgaTrueColor, tgaRLETrueColor:
	default:
		return nil, fmt.Errorf("tga: unsupported image type %d", h.ImageType)
	}

	switch h.ImageType {
	case tgaColorMapped, tgaTrueColor, tgaGray:
		err = decodeRaw(src, w)
	case tgaRLEColorMap, tgaRLETrueColor, tgaRLEGray:
		err = decodeRLE(src, w)
	}
	if err != nil {
		return nil, fmt.Errorf("tga: decode %dx%d type %d: %w", h.Width, h.Height, h.ImageType, err)
	}
	bm.UsesAlpha = w.usesAlpha

	if h.FlipX() {
		bm.FlipX()
	}
	if h.FlipY() {
		bm.FlipY()
	}
	return bm, nil
}

func readTGAColorMap(c *stream.Cursor, h TGAHeader) ([]stream.Color, error) {
	entry := int(h.MapEntrySize)
	switch entry {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported entry size %d", h.MapEntrySize)
	}
	if int(h.MapLength)*entry/8 > c.Remaining() {
		return nil, &stream.OutOfBoundsError{Offset: c.Offset(), Want: int(h.MapLength) * entry / 8, Len: c.Len()}
	}
	palette := make([]stream.Color, h.MapLength)
	for i := range palette {
		r, g, b, a, err := readTGAColor(c, uint8(entry), h.Alpha())
		if err != nil {
			return nil, err
		}
		palette[i] = stream.Color{r, g, b, a}
	}
	return palette, nil
}

func decodeRaw(src *tgaPixels, w *pixelWriter) error {
	for !w.full() {
		r, g, b, a, err := src.next()
		if err != nil {
			return err
		}
		w.put(r, g, b, a)
	}
	return nil
}

// decodeRLE expands run-length packets until the bitmap is full. A packet
// running past the last pixel is clamped.
func decodeRLE(src *tgaPixels, w *pixelWriter) error {
	for !w.full() {
		ctrl, err := src.c.ReadU8()
		if err != nil {
			return err
		}
		n := int(ctrl&0x7F) + 1
		if ctrl&0x80 != 0 {
			r, g, b, a, err := src.next()
			if err != nil {
				return err
			}
			for i := 0; i < n && !w.full(); i++ {
				w.put(r, g, b, a)
			}
			continue
		}
		for i := 0; i < n && !w.full(); i++ {
			r, g, b, a, err := src.next()
			if err != nil {
				return err
			}
			w.put(r, g, b, a)
		}
	}
	return nil
}
