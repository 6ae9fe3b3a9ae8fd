package texture

import (
	"fmt"
	"path"
	"strings"
)

// Format selects an image decoder.
type Format int

const (
	FormatUnknown Format = iota
	FormatTGA
	FormatVBM
)

func (f Format) String() string {
	switch f {
	case FormatTGA:
		return "tga"
	case FormatVBM:
		return "vbm"
	}
	return "unknown"
}

// FormatFromName picks a format from a file extension.
func FormatFromName(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".tga":
		return FormatTGA
	case ".vbm":
		return FormatVBM
	}
	return FormatUnknown
}

// Decode decodes data in the given format. TGA yields one bitmap, VBM one
// bitmap per mip level.
func Decode(data []byte, f Format) ([]*Bitmap, error) {
	switch f {
	case FormatTGA:
		bm, err := DecodeTGA(data)
		if err != nil {
			return nil, err
		}
		return []*Bitmap{bm}, nil
	case FormatVBM:
		return DecodeVBM(data)
	}
	return nil, fmt.Errorf("texture: decode: unknown format %d", int(f))
}
