package raster

import (
	"image"
	"math"
)

// SampleTexture performs bilinear filtering with UV wrapping, the way the
// game's textures tile. Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	// Texel centres sit at half-integer positions.
	fx := (u-math.Floor(u))*float64(w) - 0.5
	fy := (v-math.Floor(v))*float64(h) - 0.5
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	dx, dy := fx-x0f, fy-y0f
	x0, y0 := wrap(int(x0f), w), wrap(int(y0f), h)
	x1, y1 := wrap(x0+1, w), wrap(y0+1, h)

	stride := tex.Stride
	pix := tex.Pix
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]uint8
	for c := 0; c < 4; c++ {
		f := float64(pix[i00+c])*w00 + float64(pix[i10+c])*w10 + float64(pix[i01+c])*w01 + float64(pix[i11+c])*w11
		out[c] = uint8(f + 0.5)
	}
	return out[0], out[1], out[2], out[3]
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
