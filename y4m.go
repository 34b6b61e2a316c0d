package hdrgainmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// EncodeY4M writes a PQ-encoded BT.2020 image as a single-frame YUV4MPEG2
// stream, 4:4:4 planar 12-bit full range. RGB codewords are converted to
// Y'Cb'Cr' with the BT.2100 non-constant-luminance matrix (Table 6).
//
// 12 bits is the minimal depth that avoids visible banding without
// dithering; reduce to 10 bits downstream if a consumer requires it.
func EncodeY4M(w io.Writer, img *HDRImage) error {
	if img.Transfer != TransferPQ || img.Gamut != GamutBT2020 {
		return errors.New("Y4M output expects PQ-encoded BT.2020 samples")
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw,
		"YUV4MPEG2 W%d H%d F1:1 Ip A1:1 C444p%d XYSCSS=444P%d XCOLORRANGE=FULL\nFRAME\n",
		img.Width, img.Height, y4mBitDepth, y4mBitDepth); err != nil {
		return err
	}

	const maxCode = 1<<y4mBitDepth - 1
	const chromaMid = 1 << (y4mBitDepth - 1)
	n := img.Width * img.Height
	planes := make([]uint16, 3*n)

	for i := 0; i < n; i++ {
		r, g, b := img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2]
		y := 0.2627*r + 0.6780*g + 0.0593*b
		cb := (b - y) / 1.8814
		cr := (r - y) / 1.4746
		planes[i] = quantizeY4M(y*maxCode, maxCode)
		planes[n+i] = quantizeY4M(cb*maxCode+chromaMid, maxCode)
		planes[2*n+i] = quantizeY4M(cr*maxCode+chromaMid, maxCode)
	}

	var sample [2]byte
	for _, v := range planes {
		sample[0] = byte(v)
		sample[1] = byte(v >> 8)
		if _, err := bw.Write(sample[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quantizeY4M(v float32, maxCode int) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= float32(maxCode) {
		return uint16(maxCode)
	}
	return uint16(v + 0.5)
}
