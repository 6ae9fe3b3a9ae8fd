package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"rf-asset-tools/internal/texture"
)

// ImageOptions controls WebP output.
type ImageOptions struct {
	// MaxSize caps the longer side; larger images are downscaled. 0 keeps
	// the original size.
	MaxSize int
}

// WriteWebP encodes img as lossless WebP at path, creating parent
// directories as needed.
func WriteWebP(path string, img image.Image, opts ImageOptions) error {
	if opts.MaxSize > 0 {
		img = Downscale(toNRGBA(img), opts.MaxSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("export: webp encode %s: %w", path, err)
	}
	return f.Close()
}

// BitmapFrames returns every frame of b as a separate image. The images
// share b's pixel memory.
func BitmapFrames(b *texture.Bitmap) []*image.NRGBA {
	if b == nil {
		return nil
	}
	out := make([]*image.NRGBA, b.Frames)
	for i := range out {
		out[i] = b.Frame(i)
	}
	return out
}

// Downscale shrinks img so its longer side is at most maxSize, keeping the
// aspect ratio. Filtering runs on premultiplied alpha so transparent
// texels do not bleed dark fringes into their neighbours.
func Downscale(img *image.NRGBA, maxSize int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	if w >= h {
		w, h = maxSize, max(1, h*maxSize/w)
	} else {
		w, h = max(1, w*maxSize/h), maxSize
	}

	// Premultiply alpha
	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	// Unpremultiply alpha
	result := image.NewNRGBA(dst.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := dst.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = dst.Pix[si+3]
		}
	}
	return result
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
