package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	_ "github.com/ftrvxmtrx/tga"
)

// Texture is a resolved texture: one bitmap per mip level.
type Texture struct {
	Name     string // requested base name
	Files    []string
	Levels   []*Bitmap
	Fallback bool // the default texture was substituted
}

// Frames returns the frame count of the base level.
func (t *Texture) Frames() int {
	if len(t.Levels) == 0 {
		return 0
	}
	return t.Levels[0].Frames
}

// UsesAlpha reports whether any level has partial alpha.
func (t *Texture) UsesAlpha() bool {
	for _, l := range t.Levels {
		if l.UsesAlpha {
			return true
		}
	}
	return false
}

// LoadTexture decodes the files of one texture from src. A VBM gives all
// levels at once; TGA files give one level each.
func LoadTexture(src Source, name string, files []string) (*Texture, error) {
	t := &Texture{Name: name, Files: files}
	for _, f := range files {
		data, ok := src.Open(f)
		if !ok {
			return nil, fmt.Errorf("texture: open %s: not found", f)
		}
		levels, err := Decode(data, FormatFromName(f))
		if err != nil {
			return nil, fmt.Errorf("texture: decode %s: %w", f, err)
		}
		t.Levels = append(t.Levels, levels...)
	}
	if len(t.Levels) == 0 {
		return nil, fmt.Errorf("texture: %s: no levels", name)
	}
	return t, nil
}

// ReferenceDecode decodes a TGA through the image package registry, which
// uses the third-party TGA decoder. It is used to cross-check DecodeTGA.
func ReferenceDecode(data []byte) (*image.NRGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture: reference decode: %w", err)
	}
	if format != "tga" {
		return nil, fmt.Errorf("texture: reference decode: got %s, want tga", format)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch src.(type) {
	case *image.Gray, *image.RGBA:
		draw.Draw(dst, b, src, b.Min, draw.Src)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
