package raster

import (
	"image"
	"image/color"
	"math"

	"rf-asset-tools/internal/mathutil"
)

// Projected holds screen-space vertex positions of one surface: x right,
// y down, z towards the viewer. UVs are indexed like the positions.
type Projected struct {
	X, Y, Z []float64
	UVs     [][2]float32
}

// RasterizeTriangle rasterizes one triangle with texture mapping, z-buffer,
// flat lighting in linear space and ACES tone mapping. tex may be nil, in
// which case fill is used.
//
// This is the hot path: no allocation in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, p *Projected, vi [3]int, tex *image.NRGBA, fill color.NRGBA, lc *LightConfig) {
	nv := len(p.X)
	for _, i := range vi {
		if i < 0 || i >= nv {
			return
		}
	}

	x0, y0, z0 := p.X[vi[0]], p.Y[vi[0]], p.Z[vi[0]]
	x1, y1, z1 := p.X[vi[1]], p.Y[vi[1]], p.Z[vi[1]]
	x2, y2, z2 := p.X[vi[2]], p.Y[vi[2]], p.Z[vi[2]]

	hasUV := tex != nil && vi[0] < len(p.UVs) && vi[1] < len(p.UVs) && vi[2] < len(p.UVs)
	var u0, v0, u1, v1, u2, v2 float64
	if hasUV {
		u0, v0 = float64(p.UVs[vi[0]][0]), float64(p.UVs[vi[0]][1])
		u1, v1 = float64(p.UVs[vi[1]][0]), float64(p.UVs[vi[1]][1])
		u2, v2 = float64(p.UVs[vi[2]][0]), float64(p.UVs[vi[2]][1])
	}

	// Face normal for flat shading
	n := mathutil.Vec3{x1 - x0, y1 - y0, z1 - z0}.Cross(mathutil.Vec3{x2 - x0, y2 - y0, z2 - z0})
	if n.Len() < 1e-8 {
		return
	}
	shade := lc.ComputeShade(n.Normalize())

	// Bounding box, clipped to the buffer
	minX := max(int(math.Floor(min(x0, x1, x2))), 0)
	maxX := min(int(math.Ceil(max(x0, x1, x2))), fb.Width-1)
	minY := max(int(math.Floor(min(y0, y1, y2))), 0)
	maxY := min(int(math.Ceil(max(y0, y1, y2))), fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			c := fill
			if hasUV {
				c.R, c.G, c.B, c.A = SampleTexture(tex, w0*u0+w1*u1+w2*u2, w0*v0+w1*v1+w2*v2)
			}
			// Skip transparent texels
			if c.A < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			px := zIdx * 4
			fb.Color[px] = lc.shadeTexel(c.R, shade)
			fb.Color[px+1] = lc.shadeTexel(c.G, shade)
			fb.Color[px+2] = lc.shadeTexel(c.B, shade)
			fb.Color[px+3] = c.A
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
