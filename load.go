package hdrgainmap

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/heic"
)

// appleHDRGainMapURN is the auxiliary-image type Apple assigns to HDR gain
// maps. heif-convert embeds it in the extracted file name, with ":" sometimes
// replaced by "_".
const appleHDRGainMapURN = "urn:com:apple:photo:2020:aux:hdrgainmap"

// AuxKindFromName classifies an extracted auxiliary image by the type URN
// embedded in its file name. Names without a recognizable URN return
// AuxUnknown.
func AuxKindFromName(name string) AuxiliaryKind {
	n := strings.ToLower(strings.ReplaceAll(name, "_", ":"))
	if strings.Contains(n, appleHDRGainMapURN) {
		return AuxAppleHDRGainMap
	}
	return AuxUnknown
}

// LoadBase reads the primary SDR image. HEIC/HEIF containers are decoded
// with libheif (via gen2brain/heic); PNG and JPEG fall back to the standard
// decoders. The base image is assumed to carry BT.709/sRGB primaries; this
// assumption is inherited from the input format and not verified.
func LoadBase(path string) (*SDRImage, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &InputError{Path: path, Reason: "cannot read file", Err: err}
	}

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		img, err = heic.Decode(bytes.NewReader(data))
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, &InputError{Path: path, Reason: "cannot decode image", Err: err}
	}

	b := img.Bounds()
	out := &SDRImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]uint8, b.Dx()*b.Dy()*3),
		Gamut:  GamutBT709,
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.Pix[i] = uint8(r >> 8)
			out.Pix[i+1] = uint8(g >> 8)
			out.Pix[i+2] = uint8(bl >> 8)
			i += 3
		}
	}
	return out, nil
}

// LoadGainMap reads an extracted gain-map image. The image must be grayscale
// or carry three identical color channels; the file name, when it declares an
// Apple auxiliary type URN, must declare the HDR gain map kind.
func LoadGainMap(path string) (*GainMap, error) {
	name := filepath.Base(path)
	if strings.Contains(strings.ToLower(strings.ReplaceAll(name, "_", ":")), "urn:com:apple:photo") {
		if AuxKindFromName(name) != AuxAppleHDRGainMap {
			return nil, &InputError{Path: path, Reason: "auxiliary image is not an HDR gain map"}
		}
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &InputError{Path: path, Reason: "cannot read file", Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &InputError{Path: path, Reason: "cannot decode image", Err: err}
	}

	b := img.Bounds()
	out := &GainMap{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]uint8, b.Dx()*b.Dy()),
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < out.Height; y++ {
			copy(out.Pix[y*out.Width:(y+1)*out.Width], src.Pix[y*src.Stride:y*src.Stride+out.Width])
		}
	case *image.Gray16:
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Pix[i] = uint8(src.Gray16At(x, y).Y >> 8)
				i++
			}
		}
	default:
		// Some extractors store the gain map as RGB with replicated channels.
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c.R != c.G || c.G != c.B {
					return nil, &InputError{Path: path, Reason: "gain map has differing color channels"}
				}
				out.Pix[i] = c.R
				i++
			}
		}
	}
	return out, nil
}
