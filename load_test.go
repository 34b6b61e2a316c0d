package hdrgainmap

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestLoadBasePNG(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(2, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	path := filepath.Join(dir, "base.png")
	writePNG(t, path, src)

	base, err := LoadBase(path)
	require.NoError(t, err)
	require.Equal(t, 3, base.Width)
	require.Equal(t, 2, base.Height)
	require.Equal(t, GamutBT709, base.Gamut)
	require.Equal(t, []uint8{10, 20, 30}, base.Pix[0:3])
	require.Equal(t, []uint8{200, 100, 50}, base.Pix[(1*3+2)*3:(1*3+2)*3+3])
}

func TestLoadBaseMissingFile(t *testing.T) {
	_, err := LoadBase(filepath.Join(t.TempDir(), "nope.png"))
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	require.Contains(t, ie.Path, "nope.png")
}

func TestLoadGainMapGray(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(0, 0, color.Gray{Y: 0})
	src.SetGray(1, 1, color.Gray{Y: 255})
	path := filepath.Join(dir, "gain.png")
	writePNG(t, path, src)

	gm, err := LoadGainMap(path)
	require.NoError(t, err)
	require.Equal(t, uint8(0), gm.Pix[0])
	require.Equal(t, uint8(255), gm.Pix[3])
}

func TestLoadGainMapReplicatedRGB(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 77, G: 77, B: 77, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	path := filepath.Join(dir, "gain_rgb.png")
	writePNG(t, path, src)

	gm, err := LoadGainMap(path)
	require.NoError(t, err)
	require.Equal(t, []uint8{77, 200}, gm.Pix)
}

func TestLoadGainMapRejectsColor(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	path := filepath.Join(dir, "color.png")
	writePNG(t, path, src)

	_, err := LoadGainMap(path)
	var ie *InputError
	require.ErrorAs(t, err, &ie)
}

func TestLoadGainMapAuxKindMismatch(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray(image.Rect(0, 0, 1, 1))
	// Depth map aux from the same extractor must be rejected.
	path := filepath.Join(dir, "IMG-urn_com_apple_photo_2020_aux_semanticskymatte.png")
	writePNG(t, path, src)

	_, err := LoadGainMap(path)
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	require.Contains(t, ie.Reason, "not an HDR gain map")
}

func TestAuxKindFromName(t *testing.T) {
	require.Equal(t, AuxAppleHDRGainMap,
		AuxKindFromName("IMG_0000-urn_com_apple_photo_2020_aux_hdrgainmap.png"))
	require.Equal(t, AuxAppleHDRGainMap,
		AuxKindFromName("IMG_0000-urn:com:apple:photo:2020:aux:hdrgainmap.png"))
	require.Equal(t, AuxUnknown, AuxKindFromName("IMG_0000.png"))
	require.Equal(t, AuxUnknown,
		AuxKindFromName("IMG-urn_com_apple_photo_2020_aux_semanticskymatte.png"))
}
