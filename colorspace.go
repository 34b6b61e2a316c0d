package hdrgainmap

import (
	"fmt"

	"github.com/chewxy/math32"
)

// SMPTE ST 2084 (PQ) constants.
const (
	pqM1 = 2610.0 / 16384.0
	pqM2 = 2523.0 / 4096.0 * 128.0
	pqC1 = 3424.0 / 4096.0
	pqC2 = 2413.0 / 4096.0 * 32.0
	pqC3 = 2392.0 / 4096.0 * 32.0
)

// pqOetf maps absolute luminance in cd/m^2 to a PQ codeword in [0, 1].
// Negative light is clamped to 0.
func pqOetf(nits float32) float32 {
	if nits <= 0 {
		return 0
	}
	y := nits / pqMaxNits
	yp := math32.Pow(y, pqM1)
	return math32.Pow((pqC1+pqC2*yp)/(1+pqC3*yp), pqM2)
}

// Linear RGB to linear RGB primaries conversions, D65 adapted
// (D60 for the AP0 targets). Matrices are row-major.
var (
	// BT.709 to ACES2065-1 (AP0), from TB-2014-004.
	bt709ToAP0 = [9]float32{
		0.4397010, 0.3829780, 0.1773350,
		0.0897923, 0.8134230, 0.0967616,
		0.0175440, 0.1115440, 0.8707040,
	}
	// BT.709 to BT.2020, from BT.2087.
	bt709ToBT2020 = [9]float32{
		0.6274040, 0.3292820, 0.0433136,
		0.0690970, 0.9195400, 0.0113612,
		0.0163916, 0.0880132, 0.8956110,
	}
	// Display P3 to ACES2065-1.
	p3ToAP0 = [9]float32{
		0.5189335, 0.28625659, 0.19480993,
		0.073859383, 0.81984516, 0.10629545,
		-0.00030701137, 0.0438070503, 0.95649996,
	}
	// Display P3 to BT.2020.
	p3ToBT2020 = [9]float32{
		0.753833034, 0.198597369, 0.0475695966,
		0.0457438490, 0.941777220, 0.0124789312,
		-0.00121034035, 0.0176017173, 0.983608623,
	}
	// Display P3 to BT.709/scRGB.
	p3ToBT709 = [9]float32{
		1.22494018, -0.224940176, 0,
		-0.042056955, 1.04205695, 0,
		-0.019637555, -0.078636046, 1.09827360,
	}
)

// Luminance (CIE Y) rows of the RGB-to-XYZ matrices per gamut.
var lumWeights = map[ColorGamut][3]float32{
	GamutBT709:     {0.2126729, 0.7151522, 0.0721750},
	GamutDisplayP3: {0.22897456, 0.69173852, 0.07928691},
	GamutBT2020:    {0.2627002, 0.6779981, 0.0593017},
	GamutACESAP0:   {0.3439664, 0.7281661, -0.0721325},
}

func mul3x3(m *[9]float32, r, g, b float32) (float32, float32, float32) {
	return m[0]*r + m[1]*g + m[2]*b,
		m[3]*r + m[4]*g + m[5]*b,
		m[6]*r + m[7]*g + m[8]*b
}

// encoding is one concrete output variant: a primaries matrix (nil for
// identity) plus an optional non-linear transfer.
type encoding struct {
	matrix   *[9]float32
	gamut    ColorGamut
	transfer ColorTransfer
	// oetf maps a linear channel value to the non-linear codeword.
	// nil means the output stays linear.
	oetf func(float32) float32
}

func encodingFor(space OutputSpace, base ColorGamut, sdrWhiteNits float32) (*encoding, error) {
	if sdrWhiteNits <= 0 {
		sdrWhiteNits = PNGSDRWhiteNits
	}
	switch space {
	case SpaceACES2065:
		switch base {
		case GamutBT709:
			return &encoding{matrix: &bt709ToAP0, gamut: GamutACESAP0, transfer: TransferLinear}, nil
		case GamutDisplayP3:
			return &encoding{matrix: &p3ToAP0, gamut: GamutACESAP0, transfer: TransferLinear}, nil
		}
	case SpaceSCRGB:
		switch base {
		case GamutBT709:
			// scRGB shares BT.709 primaries, no conversion.
			return &encoding{gamut: GamutBT709, transfer: TransferLinear}, nil
		case GamutDisplayP3:
			return &encoding{matrix: &p3ToBT709, gamut: GamutBT709, transfer: TransferLinear}, nil
		}
	case SpaceBT2100PQ:
		nits := sdrWhiteNits
		oetf := func(v float32) float32 { return pqOetf(v * nits) }
		switch base {
		case GamutBT709:
			return &encoding{matrix: &bt709ToBT2020, gamut: GamutBT2020, transfer: TransferPQ, oetf: oetf}, nil
		case GamutDisplayP3:
			return &encoding{matrix: &p3ToBT2020, gamut: GamutBT2020, transfer: TransferPQ, oetf: oetf}, nil
		}
	}
	return nil, fmt.Errorf("unsupported output space %v for base gamut %d", space, base)
}
