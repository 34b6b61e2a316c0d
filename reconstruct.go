package hdrgainmap

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/kovidgoyal/go-parallel"
)

// Reconstruct combines an SDR base image with a gain map of the same
// dimensions into scene-linear HDR RGB.
//
// Each SDR sample is decoded to linear light with the sRGB EOTF, then all
// three channels are multiplied by boost^g, where g is the gain-map sample
// normalized to [0, 1]. The boost is uniform across channels, so hue and
// saturation of the SDR pixel are preserved. Values above 1.0 are expected
// and kept.
func Reconstruct(base *SDRImage, gain *GainMap, opts *ReconstructOptions) (*HDRImage, error) {
	if base.Width != gain.Width || base.Height != gain.Height {
		return nil, fmt.Errorf("dimension mismatch: base %dx%d, gain map %dx%d",
			base.Width, base.Height, gain.Width, gain.Height)
	}
	boost := float32(DefaultBoost)
	if opts != nil && opts.Boost > 0 {
		boost = opts.Boost
	}

	out := &HDRImage{
		Width:    base.Width,
		Height:   base.Height,
		Pix:      make([]float32, base.Width*base.Height*3),
		Gamut:    base.Gamut,
		Transfer: TransferLinear,
	}

	// The 256-entry boost table folds math32.Pow out of the pixel loop.
	var boostLUT [256]float32
	for i := range boostLUT {
		boostLUT[i] = math32.Pow(boost, float32(i)/255.0)
	}

	width := base.Width
	f := func(start, limit int) {
		for y := start; y < limit; y++ {
			si := y * width * 3
			gi := y * width
			for x := 0; x < width; x++ {
				factor := boostLUT[gain.Pix[gi+x]]
				out.Pix[si] = srgbLUT[base.Pix[si]] * factor
				out.Pix[si+1] = srgbLUT[base.Pix[si+1]] * factor
				out.Pix[si+2] = srgbLUT[base.Pix[si+2]] * factor
				si += 3
			}
		}
	}
	if err := parallel.Run_in_parallel_over_range(0, f, 0, base.Height); err != nil {
		return nil, err
	}
	return out, nil
}
