package texture

import (
	"image"
)

// Bitmap is a decoded texture level. Pix holds Frames consecutive RGBA8
// images of Width×Height pixels each.
type Bitmap struct {
	Width     int
	Height    int
	Frames    int
	FrameRate int
	UsesAlpha bool // some pixel has alpha below 255
	Pix       []byte
}

func newBitmap(w, h, frames int) *Bitmap {
	return &Bitmap{
		Width:  w,
		Height: h,
		Frames: frames,
		Pix:    make([]byte, w*h*4*frames),
	}
}

// FrameSize returns the byte size of one frame.
func (b *Bitmap) FrameSize() int {
	return b.Width * b.Height * 4
}

// Frame returns frame i as an image sharing b's pixel memory.
func (b *Bitmap) Frame(i int) *image.NRGBA {
	if i < 0 || i >= b.Frames {
		return nil
	}
	n := b.FrameSize()
	return &image.NRGBA{
		Pix:    b.Pix[i*n : (i+1)*n : (i+1)*n],
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FlipX mirrors every row of every frame in place.
func (b *Bitmap) FlipX() {
	stride := b.Width * 4
	for row := 0; row < b.Height*b.Frames; row++ {
		line := b.Pix[row*stride : (row+1)*stride]
		for l, r := 0, b.Width-1; l < r; l, r = l+1, r-1 {
			for k := 0; k < 4; k++ {
				line[l*4+k], line[r*4+k] = line[r*4+k], line[l*4+k]
			}
		}
	}
}

// FlipY reverses the row order of every frame in place.
func (b *Bitmap) FlipY() {
	stride := b.Width * 4
	tmp := make([]byte, stride)
	for f := 0; f < b.Frames; f++ {
		frame := b.Pix[f*b.FrameSize() : (f+1)*b.FrameSize()]
		for top, bot := 0, b.Height-1; top < bot; top, bot = top+1, bot-1 {
			t := frame[top*stride : (top+1)*stride]
			u := frame[bot*stride : (bot+1)*stride]
			copy(tmp, t)
			copy(t, u)
			copy(u, tmp)
		}
	}
}

// Expand4 widens a 4-bit channel to 8 bits by bit replication.
func Expand4(v uint8) uint8 { return v<<4 | v&0x0F }

// Expand5 widens a 5-bit channel to 8 bits by bit replication.
func Expand5(v uint8) uint8 { return v<<3 | (v&0x1F)>>2 }

// Expand6 widens a 6-bit channel to 8 bits by bit replication.
func Expand6(v uint8) uint8 { return v<<2 | (v&0x3F)>>4 }

// pixel writer with alpha tracking
type pixelWriter struct {
	pix       []byte
	off       int
	usesAlpha bool
}

func (w *pixelWriter) put(r, g, b, a uint8) {
	w.pix[w.off] = r
	w.pix[w.off+1] = g
	w.pix[w.off+2] = b
	w.pix[w.off+3] = a
	w.off += 4
	if a < 255 {
		w.usesAlpha = true
	}
}

func (w *pixelWriter) full() bool {
	return w.off >= len(w.pix)
}

// unpack1555 splits an A1R5G5B5 word.
func unpack1555(v uint16) (r, g, b, a uint8) {
	a = uint8(v>>15) * 255
	r = Expand5(uint8(v>>10) & 0x1F)
	g = Expand5(uint8(v>>5) & 0x1F)
	b = Expand5(uint8(v) & 0x1F)
	return
}

func unpack4444(v uint16) (r, g, b, a uint8) {
	a = Expand4(uint8(v>>12) & 0x0F)
	r = Expand4(uint8(v>>8) & 0x0F)
	g = Expand4(uint8(v>>4) & 0x0F)
	b = Expand4(uint8(v) & 0x0F)
	return
}

func unpack565(v uint16) (r, g, b uint8) {
	r = Expand5(uint8(v>>11) & 0x1F)
	g = Expand6(uint8(v>>5) & 0x3F)
	b = Expand5(uint8(v) & 0x1F)
	return
}
