package hdrgainmap

import (
	"errors"

	"github.com/kovidgoyal/go-parallel"
)

// EncodeColorSpace maps a scene-linear HDR image into the requested output
// representation. ACES2065-1 and scRGB stay linear; BT.2100 produces PQ
// codewords in [0, 1]. Negative light produced by the primaries matrix is
// clamped to the representable range; this is deliberate information loss,
// not an error.
func EncodeColorSpace(h *HDRImage, space OutputSpace, opts *EncodeOptions) (*HDRImage, error) {
	if h.Transfer != TransferLinear {
		return nil, errors.New("color space encoding expects linear input")
	}
	var nits float32
	if opts != nil {
		nits = opts.SDRWhiteNits
	}
	enc, err := encodingFor(space, h.Gamut, nits)
	if err != nil {
		return nil, err
	}

	out := &HDRImage{
		Width:    h.Width,
		Height:   h.Height,
		Pix:      make([]float32, len(h.Pix)),
		Gamut:    enc.gamut,
		Transfer: enc.transfer,
	}

	width := h.Width
	f := func(start, limit int) {
		for y := start; y < limit; y++ {
			i := y * width * 3
			for x := 0; x < width; x++ {
				r, g, b := h.Pix[i], h.Pix[i+1], h.Pix[i+2]
				if enc.matrix != nil {
					r, g, b = mul3x3(enc.matrix, r, g, b)
				}
				if enc.oetf != nil {
					r, g, b = enc.oetf(r), enc.oetf(g), enc.oetf(b)
				} else if space == SpaceACES2065 {
					// AP0 covers all visible colors; clip numeric residue.
					r, g, b = max(r, 0), max(g, 0), max(b, 0)
				}
				out.Pix[i] = r
				out.Pix[i+1] = g
				out.Pix[i+2] = b
				i += 3
			}
		}
	}
	if err := parallel.Run_in_parallel_over_range(0, f, 0, h.Height); err != nil {
		return nil, err
	}
	return out, nil
}
