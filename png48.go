package hdrgainmap

import (
	"errors"
	"image"
	"image/png"
	"io"
)

// EncodePNG48 writes img as a 16-bit-per-channel PNG.
//
// Linear BT.709 input is stored with the scRGB 16-bit integer encoding
// (code = 8192*v + 4096), which preserves values above 1.0 up to the
// encoding's +7.5 ceiling. PQ input is stored as codeword*65535 with the
// full-range interpretation. Values outside the representable range are
// clamped; that loss is deliberate.
func EncodePNG48(w io.Writer, img *HDRImage) error {
	var quantize func(v float32) uint16
	switch img.Transfer {
	case TransferLinear:
		if img.Gamut != GamutBT709 {
			return errors.New("linear PNG output expects BT.709 (scRGB) primaries")
		}
		quantize = func(v float32) uint16 {
			return clampToUint16(v*scrgbScale + scrgbOffset)
		}
	case TransferPQ:
		quantize = func(v float32) uint16 {
			return clampToUint16(clamp01(v) * 65535.0)
		}
	default:
		return errors.New("unsupported transfer function for PNG output")
	}

	out := image.NewRGBA64(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		si := y * img.Width * 3
		di := y * out.Stride
		for x := 0; x < img.Width; x++ {
			r := quantize(img.Pix[si])
			g := quantize(img.Pix[si+1])
			b := quantize(img.Pix[si+2])
			p := out.Pix[di : di+8 : di+8]
			p[0], p[1] = uint8(r>>8), uint8(r)
			p[2], p[3] = uint8(g>>8), uint8(g)
			p[4], p[5] = uint8(b>>8), uint8(b)
			p[6], p[7] = 0xFF, 0xFF
			si += 3
			di += 8
		}
	}
	return png.Encode(w, out)
}
