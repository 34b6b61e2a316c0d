package hdrgainmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func invert3x3(m *[9]float32) [9]float64 {
	a := [9]float64{}
	for i, v := range m {
		a[i] = float64(v)
	}
	det := a[0]*(a[4]*a[8]-a[5]*a[7]) - a[1]*(a[3]*a[8]-a[5]*a[6]) + a[2]*(a[3]*a[7]-a[4]*a[6])
	inv := [9]float64{
		(a[4]*a[8] - a[5]*a[7]) / det, (a[2]*a[7] - a[1]*a[8]) / det, (a[1]*a[5] - a[2]*a[4]) / det,
		(a[5]*a[6] - a[3]*a[8]) / det, (a[0]*a[8] - a[2]*a[6]) / det, (a[2]*a[3] - a[0]*a[5]) / det,
		(a[3]*a[7] - a[4]*a[6]) / det, (a[1]*a[6] - a[0]*a[7]) / det, (a[0]*a[4] - a[1]*a[3]) / det,
	}
	return inv
}

func TestACESMatrixRoundTrip(t *testing.T) {
	hdr := &HDRImage{Width: 1, Height: 1, Gamut: GamutBT709, Transfer: TransferLinear,
		Pix: []float32{0.25, 1.5, 4.0}}

	out, err := EncodeColorSpace(hdr, SpaceACES2065, nil)
	require.NoError(t, err)
	require.Equal(t, GamutACESAP0, out.Gamut)
	require.Equal(t, TransferLinear, out.Transfer)

	inv := invert3x3(&bt709ToAP0)
	r := inv[0]*float64(out.Pix[0]) + inv[1]*float64(out.Pix[1]) + inv[2]*float64(out.Pix[2])
	g := inv[3]*float64(out.Pix[0]) + inv[4]*float64(out.Pix[1]) + inv[5]*float64(out.Pix[2])
	b := inv[6]*float64(out.Pix[0]) + inv[7]*float64(out.Pix[1]) + inv[8]*float64(out.Pix[2])
	require.InDelta(t, 0.25, r, 1e-4)
	require.InDelta(t, 1.5, g, 1e-4)
	require.InDelta(t, 4.0, b, 1e-4)
}

func TestACESWhitePointRow(t *testing.T) {
	// Each matrix row must sum to 1 so that white maps to white.
	for _, m := range []*[9]float32{&bt709ToAP0, &bt709ToBT2020, &p3ToAP0, &p3ToBT2020, &p3ToBT709} {
		for row := 0; row < 3; row++ {
			sum := m[row*3] + m[row*3+1] + m[row*3+2]
			require.InDelta(t, 1.0, sum, 1e-3, "row %d", row)
		}
	}
}

func TestSCRGBEncodeIsIdentity(t *testing.T) {
	hdr := &HDRImage{Width: 1, Height: 1, Gamut: GamutBT709, Transfer: TransferLinear,
		Pix: []float32{0.1, 2.0, 7.0}}
	out, err := EncodeColorSpace(hdr, SpaceSCRGB, nil)
	require.NoError(t, err)
	require.Equal(t, hdr.Pix, out.Pix, "scRGB shares BT.709 primaries and stays linear")
	require.Equal(t, GamutBT709, out.Gamut)
}

func TestPQBoundaries(t *testing.T) {
	require.Equal(t, float32(0), pqOetf(0), "zero light must encode to codeword 0")
	require.Equal(t, float32(0), pqOetf(-5), "negative light clamps to 0")
	require.InDelta(t, 1.0, pqOetf(pqMaxNits), 1e-6, "reference peak must hit the maximum codeword")
	require.Equal(t, uint16(65535), clampToUint16(pqOetf(pqMaxNits)*65535.0))
}

func TestPQMonotonic(t *testing.T) {
	prev := float32(-1)
	for nits := float32(0); nits <= 10000; nits += 25 {
		v := pqOetf(nits)
		require.Greater(t, v, prev)
		prev = v
	}
}

func TestPQEncodeKnownValue(t *testing.T) {
	// 100 nits is a commonly tabulated PQ point (~0.508).
	require.InDelta(t, 0.508, pqOetf(100), 0.002)
}

func TestEncodePQScaledBySDRWhite(t *testing.T) {
	hdr := &HDRImage{Width: 1, Height: 1, Gamut: GamutBT709, Transfer: TransferLinear,
		Pix: []float32{1, 1, 1}}
	out, err := EncodeColorSpace(hdr, SpaceBT2100PQ, &EncodeOptions{SDRWhiteNits: 100})
	require.NoError(t, err)
	require.Equal(t, GamutBT2020, out.Gamut)
	require.Equal(t, TransferPQ, out.Transfer)
	// BT.709 white maps to BT.2020 white, 100 nits under PQ.
	for c := 0; c < 3; c++ {
		require.InDelta(t, pqOetf(100), out.Pix[c], 1e-3)
	}
}

func TestEncodeRejectsNonLinearInput(t *testing.T) {
	hdr := &HDRImage{Width: 1, Height: 1, Gamut: GamutBT2020, Transfer: TransferPQ,
		Pix: []float32{0.5, 0.5, 0.5}}
	_, err := EncodeColorSpace(hdr, SpaceBT2100PQ, nil)
	require.Error(t, err)
}

func TestEncodeDisplayP3Base(t *testing.T) {
	hdr := &HDRImage{Width: 1, Height: 1, Gamut: GamutDisplayP3, Transfer: TransferLinear,
		Pix: []float32{1, 1, 1}}
	out, err := EncodeColorSpace(hdr, SpaceSCRGB, nil)
	require.NoError(t, err)
	for c := 0; c < 3; c++ {
		require.InDelta(t, 1.0, out.Pix[c], 1e-3, "P3 white is scRGB white")
	}
}
