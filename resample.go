package hdrgainmap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// Interpolation selects the gain-map upsampling mode.
type Interpolation int

const (
	// InterpolationBilinear is linear sampling, the default.
	InterpolationBilinear Interpolation = iota
	// InterpolationNearest is nearest-neighbor sampling.
	InterpolationNearest
)

// ResampleGainMap scales a gain map to the base-image dimensions. When the
// dimensions already match, the input grid is returned unchanged. A gain map
// larger than the base image has no valid resampling path and is rejected.
//
// Boundary policy is clamp-to-edge: samples outside the source grid read the
// nearest edge sample.
func ResampleGainMap(gm *GainMap, width, height int, interp Interpolation) (*GainMap, error) {
	if gm.Width == width && gm.Height == height {
		return gm, nil
	}
	if gm.Width > width || gm.Height > height {
		return nil, fmt.Errorf("gain map %dx%d is larger than base image %dx%d",
			gm.Width, gm.Height, width, height)
	}

	src := &image.Gray{
		Pix:    gm.Pix,
		Stride: gm.Width,
		Rect:   image.Rect(0, 0, gm.Width, gm.Height),
	}
	fn := resize.Bilinear
	if interp == InterpolationNearest {
		fn = resize.NearestNeighbor
	}
	scaled := resize.Resize(uint(width), uint(height), src, fn)

	out := &GainMap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
	if gray, ok := scaled.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			copy(out.Pix[y*width:(y+1)*width], gray.Pix[y*gray.Stride:y*gray.Stride+width])
		}
		return out, nil
	}
	b := scaled.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.GrayModel.Convert(scaled.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			out.Pix[y*width+x] = c.Y
		}
	}
	return out, nil
}
