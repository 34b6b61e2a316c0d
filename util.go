package hdrgainmap

import "github.com/chewxy/math32"

func srgbInvOetf(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}

// srgbLUT maps 8-bit sRGB codes to linear light. Indexing by the raw sample
// byte keeps out-of-range input structurally impossible.
var srgbLUT = func() [256]float32 {
	var lut [256]float32
	for i := range lut {
		lut[i] = srgbInvOetf(float32(i) / 255.0)
	}
	return lut
}()

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampToUint16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 65535 {
		return 65535
	}
	return uint16(v + 0.5)
}
