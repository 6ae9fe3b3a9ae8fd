package texture

// RGB is a tightly packed 24-bit image, the layout of level lightmaps.
type RGB struct {
	Width  int
	Height int
	Pix    []byte
}

// LightmapArray packs lightmaps into one opaque bitmap with a frame per
// lightmap. Frames use the largest lightmap size; smaller lightmaps are
// stretched with nearest sampling so normalized UVs stay valid.
func LightmapArray(maps []RGB) *Bitmap {
	w, h := 0, 0
	for _, m := range maps {
		w = max(w, m.Width)
		h = max(h, m.Height)
	}
	if len(maps) == 0 || w == 0 || h == 0 {
		return nil
	}
	bm := newBitmap(w, h, len(maps))
	pw := &pixelWriter{pix: bm.Pix}
	for _, m := range maps {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if m.Width == 0 || m.Height == 0 {
					pw.put(0, 0, 0, 255)
					continue
				}
				sx := x * m.Width / w
				sy := y * m.Height / h
				i := (sy*m.Width + sx) * 3
				if i+2 >= len(m.Pix) {
					pw.put(0, 0, 0, 255)
					continue
				}
				pw.put(m.Pix[i], m.Pix[i+1], m.Pix[i+2], 255)
			}
		}
	}
	return bm
}
