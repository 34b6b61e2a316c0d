package hdrgainmap

import "errors"

// LuminanceStats summarizes scene-referred luminance of a linear image,
// relative to SDR white (1.0). MaxCLL is the brightest pixel, MaxFALL the
// frame average. Both are estimates in the HDR-metadata sense, not
// display-referred measurements.
type LuminanceStats struct {
	MaxCLL  float32
	MaxFALL float32
}

// Luminance computes luminance statistics over a scene-linear image.
func Luminance(img *HDRImage) (LuminanceStats, error) {
	if img.Transfer != TransferLinear {
		return LuminanceStats{}, errors.New("luminance statistics expect linear samples")
	}
	w, ok := lumWeights[img.Gamut]
	if !ok {
		return LuminanceStats{}, errors.New("luminance weights unknown for this gamut")
	}
	n := img.Width * img.Height
	if n == 0 {
		return LuminanceStats{}, nil
	}
	var maxY float32
	var sum float64
	for i := 0; i < n; i++ {
		y := w[0]*img.Pix[i*3] + w[1]*img.Pix[i*3+1] + w[2]*img.Pix[i*3+2]
		if y > maxY {
			maxY = y
		}
		sum += float64(y)
	}
	return LuminanceStats{MaxCLL: maxY, MaxFALL: float32(sum / float64(n))}, nil
}
