// Package raster is a small software rasterizer for mesh preview images.
package raster

import (
	"image"
	"image/color"
	"math"

	"rf-asset-tools/internal/mathutil"
	"rf-asset-tools/internal/scene"
	"rf-asset-tools/internal/texture"
)

// Options controls a preview render.
type Options struct {
	Size        int     // output side in pixels
	Supersample int     // the buffer side is Size*Supersample
	Yaw         float64 // degrees around the vertical axis
	Pitch       float64 // degrees looking down
}

// DefaultOptions returns a three-quarter front view.
func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Yaw: 35, Pitch: 20}
}

// View returns the transform from model space to screen space. The camera
// sits on the model's +Z (forward) axis; the mirror on X turns the game's
// left-handed frame into the right-handed screen frame.
func View(yaw, pitch float64) mathutil.Mat3 {
	face := mathutil.Mat3Diag(-1, 1, 1)
	return mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(pitch)), mathutil.Mat3Mul(mathutil.RotY(mathutil.Deg2Rad(yaw)), face))
}

var fallbackColor = color.NRGBA{160, 160, 170, 255}

// RenderGeometry renders g to a square image of side
// opts.Size*opts.Supersample, fitted to the frame with a margin. Surfaces
// are textured through tex when it resolves them. The background is
// transparent.
func RenderGeometry(g *scene.Geometry, tex texture.Resolver, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	ss := max(opts.Supersample, 1)
	renderSize := opts.Size * ss
	fb := NewFrameBuffer(renderSize, renderSize)

	R := View(opts.Yaw, opts.Pitch)
	view := make([][]mathutil.Vec3, len(g.Surfaces))

	// Bounding box of all transformed vertices
	allMin := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	allMax := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, s := range g.Surfaces {
		view[i] = make([]mathutil.Vec3, len(s.Positions))
		for j, p := range s.Positions {
			v := R.MulVec3(g.Transform.MulPoint(mathutil.Vec3F32(p)))
			view[i][j] = v
			for k := 0; k < 3; k++ {
				allMin[k] = min(allMin[k], v[k])
				allMax[k] = max(allMax[k], v[k])
			}
		}
	}
	if math.IsInf(allMin[0], 1) {
		return fb.Image()
	}

	center := allMin.Add(allMax).Scale(0.5)
	extent := allMax.Sub(allMin)
	span := max(extent[0], extent[1], 0.001)
	margin := 8 * ss
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2

	lc := DefaultLightConfig()
	for i, s := range g.Surfaces {
		p := &Projected{
			X:   make([]float64, len(view[i])),
			Y:   make([]float64, len(view[i])),
			Z:   make([]float64, len(view[i])),
			UVs: s.UVs,
		}
		for j, v := range view[i] {
			p.X[j] = half + (v[0]-center[0])*scale
			p.Y[j] = half - (v[1]-center[1])*scale
			p.Z[j] = (v[2] - center[2]) * scale
		}

		img, fill := surfaceTexture(s, tex)
		for t := 0; t+2 < len(s.Indices); t += 3 {
			vi := [3]int{int(s.Indices[t]), int(s.Indices[t+1]), int(s.Indices[t+2])}
			RasterizeTriangle(fb, p, vi, img, fill, &lc)
		}
	}
	return fb.Image()
}

// surfaceTexture returns the first frame of the surface's texture and its
// average color, or nil and a neutral grey.
func surfaceTexture(s *scene.Surface, tex texture.Resolver) (*image.NRGBA, color.NRGBA) {
	if tex == nil || s.Texture == "" {
		return nil, fallbackColor
	}
	t := tex.Resolve(s.Texture)
	if t == nil || len(t.Levels) == 0 {
		return nil, fallbackColor
	}
	img := t.Levels[0].Frame(0)
	return img, averageColor(img)
}

func averageColor(tex *image.NRGBA) color.NRGBA {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return fallbackColor
	}

	var sumR, sumG, sumB float64
	for y := 0; y < h; y++ {
		off := y * tex.Stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(tex.Pix[i])
			sumG += float64(tex.Pix[i+1])
			sumB += float64(tex.Pix[i+2])
		}
	}
	n := float64(w * h)
	return color.NRGBA{uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), 255}
}
