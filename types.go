package hdrgainmap

// ColorGamut identifies a set of RGB primaries.
type ColorGamut int

const (
	GamutUnspecified ColorGamut = iota
	GamutBT709
	GamutDisplayP3
	GamutBT2020
	GamutACESAP0
)

// ColorTransfer identifies a transfer function.
type ColorTransfer int

const (
	TransferUnspecified ColorTransfer = iota
	TransferSRGB
	TransferLinear
	TransferPQ
)

// OutputSpace selects one of the supported HDR output encodings.
type OutputSpace int

const (
	SpaceACES2065 OutputSpace = iota // ACES2065-1, AP0 primaries, linear
	SpaceSCRGB                       // scRGB, BT.709 primaries, linear extended range
	SpaceBT2100PQ                    // BT.2100, BT.2020 primaries, PQ
)

func (s OutputSpace) String() string {
	switch s {
	case SpaceACES2065:
		return "aces"
	case SpaceSCRGB:
		return "scrgb"
	case SpaceBT2100PQ:
		return "pq"
	default:
		return "unknown"
	}
}

// SDRImage is an 8-bit RGB sample grid, three samples per pixel.
type SDRImage struct {
	Width  int
	Height int
	Pix    []uint8 // len = Width*Height*3
	Gamut  ColorGamut
}

// GainMap is an 8-bit single-channel sample grid. A sample of 0 means no
// boost, 255 means maximum boost.
type GainMap struct {
	Width  int
	Height int
	Pix    []uint8 // len = Width*Height
}

// HDRImage stores an HDR image in RGB float32, three samples per pixel.
// With TransferLinear, values are scene-linear relative to SDR white
// (1.0 = SDR white) and may exceed 1.0. With TransferPQ, values are
// non-linear PQ codewords in [0, 1].
type HDRImage struct {
	Width    int
	Height   int
	Pix      []float32 // len = Width*Height*3
	Gamut    ColorGamut
	Transfer ColorTransfer
}

// At returns the pixel at (x, y), clamped to the image bounds.
func (h *HDRImage) At(x, y int) (r, g, b float32) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= h.Width {
		x = h.Width - 1
	}
	if y >= h.Height {
		y = h.Height - 1
	}
	i := (y*h.Width + x) * 3
	return h.Pix[i], h.Pix[i+1], h.Pix[i+2]
}

// AuxiliaryKind identifies a known HEIF auxiliary image type.
type AuxiliaryKind int

const (
	AuxUnknown AuxiliaryKind = iota
	AuxAppleHDRGainMap
)

// ReconstructOptions controls HDR reconstruction.
type ReconstructOptions struct {
	Boost float32 // boost constant, 8.0 if zero
}

// EncodeOptions controls color space encoding.
type EncodeOptions struct {
	// SDRWhiteNits maps linear 1.0 to a PQ luminance for SpaceBT2100PQ.
	// Defaults to PNGSDRWhiteNits; the Y4M writer uses Y4MSDRWhiteNits.
	SDRWhiteNits float32
}
