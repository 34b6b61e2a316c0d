package hdrgainmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func solidSDR(w, h int, r, g, b uint8) *SDRImage {
	img := &SDRImage{Width: w, Height: h, Pix: make([]uint8, w*h*3), Gamut: GamutBT709}
	for i := 0; i < w*h; i++ {
		img.Pix[i*3] = r
		img.Pix[i*3+1] = g
		img.Pix[i*3+2] = b
	}
	return img
}

func solidGain(w, h int, v uint8) *GainMap {
	gm := &GainMap{Width: w, Height: h, Pix: make([]uint8, w*h)}
	for i := range gm.Pix {
		gm.Pix[i] = v
	}
	return gm
}

func TestReconstructZeroGainIsIdentity(t *testing.T) {
	base := solidSDR(4, 4, 10, 128, 250)
	hdr, err := Reconstruct(base, solidGain(4, 4, 0), nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.Equal(t, srgbLUT[base.Pix[i]], hdr.Pix[i], "channel %d must be SDR linear exactly", i)
	}
	require.Equal(t, TransferLinear, hdr.Transfer)
	require.Equal(t, GamutBT709, hdr.Gamut)
}

func TestReconstructFullGainIsBoost(t *testing.T) {
	base := solidSDR(2, 2, 200, 200, 200)
	hdr, err := Reconstruct(base, solidGain(2, 2, 255), nil)
	require.NoError(t, err)

	want := srgbLUT[200] * DefaultBoost
	for i := 0; i < 3; i++ {
		require.InDelta(t, want, hdr.Pix[i], 1e-6)
	}
}

func TestReconstructCustomBoost(t *testing.T) {
	base := solidSDR(1, 1, 255, 255, 255)
	hdr, err := Reconstruct(base, solidGain(1, 1, 255), &ReconstructOptions{Boost: 4})
	require.NoError(t, err)
	require.InDelta(t, 4.0, hdr.Pix[0], 1e-6)
}

func TestReconstructMonotonicInGain(t *testing.T) {
	base := solidSDR(1, 1, 188, 90, 40)
	prev := []float32{-1, -1, -1}
	for g := 0; g <= 255; g++ {
		hdr, err := Reconstruct(base, solidGain(1, 1, uint8(g)), nil)
		require.NoError(t, err)
		for c := 0; c < 3; c++ {
			require.GreaterOrEqual(t, hdr.Pix[c], prev[c], "gain %d channel %d", g, c)
			prev[c] = hdr.Pix[c]
		}
	}
}

func TestReconstructScenario2x2(t *testing.T) {
	base := &SDRImage{Width: 2, Height: 2, Gamut: GamutBT709, Pix: []uint8{
		255, 255, 255, 188, 188, 188,
		0, 0, 0, 128, 64, 32,
	}}
	gain := &GainMap{Width: 2, Height: 2, Pix: []uint8{0, 255, 0, 0}}

	hdr, err := Reconstruct(base, gain, nil)
	require.NoError(t, err)

	// SDR white with no boost reconstructs to 1.0.
	for c := 0; c < 3; c++ {
		require.InDelta(t, 1.0, hdr.Pix[c], 1e-5)
	}
	// Mid-gray (linear ~0.5) at full boost lands near 4.0.
	for c := 3; c < 6; c++ {
		require.InDelta(t, 4.0, hdr.Pix[c], 0.05)
	}
	// Black stays black regardless of gain.
	for c := 6; c < 9; c++ {
		require.Equal(t, float32(0), hdr.Pix[c])
	}
}

func TestReconstructDimensionMismatch(t *testing.T) {
	_, err := Reconstruct(solidSDR(4, 4, 1, 2, 3), solidGain(2, 2, 0), nil)
	require.Error(t, err)
}

func TestReconstructHueIsPreserved(t *testing.T) {
	base := solidSDR(1, 1, 200, 100, 50)
	hdr, err := Reconstruct(base, solidGain(1, 1, 200), nil)
	require.NoError(t, err)

	// Uniform boost keeps channel ratios.
	require.InDelta(t, srgbLUT[200]/srgbLUT[100], hdr.Pix[0]/hdr.Pix[1], 1e-4)
	require.InDelta(t, srgbLUT[100]/srgbLUT[50], hdr.Pix[1]/hdr.Pix[2], 1e-4)
}
