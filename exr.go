package hdrgainmap

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const exrMagic = 20000630

const (
	exrCompressionNone = 0
	exrCompressionZips = 2
	exrCompressionZip  = 3
)

const (
	exrPixelUint  = 0
	exrPixelHalf  = 1
	exrPixelFloat = 2
)

// exrZipBlockLines is the scanline count per ZIP compression block.
const exrZipBlockLines = 16

// chromaticities attribute payloads (rx, ry, gx, gy, bx, by, wx, wy).
var (
	ap0Chromaticities = [8]float32{
		0.73470, 0.26530, 0.00000, 1.00000, 0.00010, -0.07700, 0.32168, 0.33767,
	}
	bt709Chromaticities = [8]float32{
		0.640, 0.330, 0.300, 0.600, 0.150, 0.060, 0.3127, 0.3290,
	}
)

// EncodeEXR writes img as a scanline OpenEXR file with float32 R, G, B
// channels and ZIP compression. The image gamut, when known, is recorded in
// the chromaticities attribute.
func EncodeEXR(w io.Writer, img *HDRImage) error {
	if img.Transfer != TransferLinear {
		return errors.New("OpenEXR output expects linear samples")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return errors.New("invalid image dimensions")
	}

	var hdr bytes.Buffer
	writeU32(&hdr, exrMagic)
	writeU32(&hdr, 2) // version 2, scanline

	writeEXRAttr(&hdr, "channels", "chlist", exrChannelList())
	switch img.Gamut {
	case GamutACESAP0:
		writeEXRAttr(&hdr, "chromaticities", "chromaticities", chromaticitiesPayload(ap0Chromaticities))
	case GamutBT709:
		writeEXRAttr(&hdr, "chromaticities", "chromaticities", chromaticitiesPayload(bt709Chromaticities))
	}
	writeEXRAttr(&hdr, "compression", "compression", []byte{exrCompressionZip})

	var box bytes.Buffer
	writeU32(&box, 0)
	writeU32(&box, 0)
	writeU32(&box, uint32(img.Width-1))
	writeU32(&box, uint32(img.Height-1))
	writeEXRAttr(&hdr, "dataWindow", "box2i", box.Bytes())
	writeEXRAttr(&hdr, "displayWindow", "box2i", box.Bytes())

	writeEXRAttr(&hdr, "lineOrder", "lineOrder", []byte{0})
	writeEXRAttr(&hdr, "pixelAspectRatio", "float", floatPayload(1))
	writeEXRAttr(&hdr, "screenWindowCenter", "v2f", append(floatPayload(0), floatPayload(0)...))
	writeEXRAttr(&hdr, "screenWindowWidth", "float", floatPayload(1))
	hdr.WriteByte(0) // end of header

	blockCount := (img.Height + exrZipBlockLines - 1) / exrZipBlockLines
	blocks := make([][]byte, blockCount)
	for i := range blocks {
		startY := i * exrZipBlockLines
		lines := exrZipBlockLines
		if startY+lines > img.Height {
			lines = img.Height - startY
		}
		blocks[i] = exrEncodeBlock(img, startY, lines)
	}

	offset := uint64(hdr.Len()) + uint64(blockCount)*8
	var table bytes.Buffer
	for _, b := range blocks {
		writeU64(&table, offset)
		offset += 8 + uint64(len(b))
	}

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}
	if _, err := w.Write(table.Bytes()); err != nil {
		return err
	}
	for i, b := range blocks {
		var head [8]byte
		binary.LittleEndian.PutUint32(head[0:4], uint32(i*exrZipBlockLines))
		binary.LittleEndian.PutUint32(head[4:8], uint32(len(b)))
		if _, err := w.Write(head[:]); err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// exrEncodeBlock packs lines of float32 samples in channel-list order
// (B, G, R per row) and ZIP-compresses them. Blocks that do not shrink are
// stored raw, which readers detect by the block size.
func exrEncodeBlock(img *HDRImage, startY, lines int) []byte {
	raw := make([]byte, 0, lines*img.Width*3*4)
	var scratch [4]byte
	for row := 0; row < lines; row++ {
		y := startY + row
		base := y * img.Width * 3
		for _, ch := range [3]int{2, 1, 0} { // B, G, R
			for x := 0; x < img.Width; x++ {
				binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(img.Pix[base+x*3+ch]))
				raw = append(raw, scratch[:]...)
			}
		}
	}

	shuffled := shuffleBytes(raw)
	applyPredictor(shuffled)
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	_, _ = zw.Write(shuffled)
	_ = zw.Close()
	if z.Len() >= len(raw) {
		return raw
	}
	return z.Bytes()
}

func exrChannelList() []byte {
	var buf bytes.Buffer
	for _, name := range [3]string{"B", "G", "R"} {
		buf.WriteString(name)
		buf.WriteByte(0)
		writeU32(&buf, exrPixelFloat)
		buf.Write([]byte{0, 0, 0, 0}) // pLinear + reserved
		writeU32(&buf, 1)             // xSampling
		writeU32(&buf, 1)             // ySampling
	}
	buf.WriteByte(0)
	return buf.Bytes()
}

func chromaticitiesPayload(c [8]float32) []byte {
	var buf bytes.Buffer
	for _, v := range c {
		writeU32(&buf, math.Float32bits(v))
	}
	return buf.Bytes()
}

func floatPayload(v float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return b[:]
}

func writeEXRAttr(buf *bytes.Buffer, name, typ string, payload []byte) {
	buf.WriteString(name)
	buf.WriteByte(0)
	buf.WriteString(typ)
	buf.WriteByte(0)
	writeU32(buf, uint32(len(payload)))
	buf.Write(payload)
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

type exrChannel struct {
	name      string
	pixelType int32
	role      int
}

const (
	exrChanOther = -2
	exrChanY     = -1
	exrChanR     = 0
	exrChanG     = 1
	exrChanB     = 2
)

// DecodeEXR reads a scanline OpenEXR file with R/G/B or Y channels in half,
// float, or uint format, with no, ZIPS, or ZIP compression. The gamut is
// recovered from the chromaticities attribute when present.
func DecodeEXR(data []byte) (*HDRImage, error) {
	r := bytes.NewReader(data)
	magic, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if magic != exrMagic {
		return nil, errors.New("not an OpenEXR file")
	}
	version, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if version&0x00000200 != 0 {
		return nil, errors.New("tiled OpenEXR not supported")
	}
	if version&0x00000C00 != 0 {
		return nil, errors.New("deep or multipart OpenEXR not supported")
	}

	var channels []exrChannel
	var dataWindow [4]int32
	var hasDataWindow bool
	var compression byte = exrCompressionNone
	gamut := GamutUnspecified

	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		typ, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		size, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, errors.New("invalid EXR attribute size")
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}

		switch name {
		case "channels":
			if typ != "chlist" {
				return nil, errors.New("unexpected channels attribute type")
			}
			channels, err = parseEXRChannels(payload)
			if err != nil {
				return nil, err
			}
		case "dataWindow":
			if typ != "box2i" || len(payload) != 16 {
				return nil, errors.New("invalid dataWindow attribute")
			}
			for i := range dataWindow {
				dataWindow[i] = int32(binary.LittleEndian.Uint32(payload[i*4 : i*4+4]))
			}
			hasDataWindow = true
		case "compression":
			if typ != "compression" || len(payload) < 1 {
				return nil, errors.New("invalid compression attribute")
			}
			compression = payload[0]
		case "chromaticities":
			if typ == "chromaticities" && len(payload) == 32 {
				gamut = gamutFromChromaticities(payload)
			}
		case "tiles":
			return nil, errors.New("tiled OpenEXR not supported")
		}
	}

	if len(channels) == 0 {
		return nil, errors.New("OpenEXR missing channels")
	}
	if !hasDataWindow {
		return nil, errors.New("OpenEXR missing dataWindow")
	}
	if compression != exrCompressionNone && compression != exrCompressionZips && compression != exrCompressionZip {
		return nil, fmt.Errorf("unsupported OpenEXR compression %d", compression)
	}

	width := int(dataWindow[2]-dataWindow[0]) + 1
	height := int(dataWindow[3]-dataWindow[1]) + 1
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid OpenEXR dimensions")
	}

	blockLines := 1
	if compression == exrCompressionZip {
		blockLines = exrZipBlockLines
	}
	blockCount := (height + blockLines - 1) / blockLines
	offsets := make([]uint64, blockCount)
	for i := range offsets {
		if offsets[i], err = readU64(r); err != nil {
			return nil, err
		}
	}

	img := &HDRImage{
		Width:    width,
		Height:   height,
		Pix:      make([]float32, width*height*3),
		Gamut:    gamut,
		Transfer: TransferLinear,
	}

	baseY := int(dataWindow[1])
	for block := 0; block < blockCount; block++ {
		if offsets[block] == 0 {
			continue
		}
		if _, err := r.Seek(int64(offsets[block]), io.SeekStart); err != nil {
			return nil, err
		}
		y, err := readI32(r)
		if err != nil {
			return nil, err
		}
		dataSize, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if dataSize < 0 {
			return nil, errors.New("invalid OpenEXR block size")
		}
		raw := make([]byte, dataSize)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}

		startY := int(y) - baseY
		if startY < 0 || startY >= height {
			return nil, errors.New("OpenEXR scanline out of bounds")
		}
		lines := blockLines
		if startY+lines > height {
			lines = height - startY
		}

		expected := exrExpectedBlockBytes(width, lines, channels)
		unpacked, err := exrDecompress(compression, raw, expected)
		if err != nil {
			return nil, err
		}
		if err := exrDecodeBlock(img, channels, startY, width, lines, unpacked); err != nil {
			return nil, err
		}
	}

	if !hasRGBOrY(channels) {
		return nil, errors.New("OpenEXR missing R/G/B or Y channels")
	}
	return img, nil
}

func gamutFromChromaticities(payload []byte) ColorGamut {
	var c [8]float32
	for i := range c {
		c[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4 : i*4+4]))
	}
	match := func(want [8]float32) bool {
		for i := range c {
			if math.Abs(float64(c[i]-want[i])) > 1e-4 {
				return false
			}
		}
		return true
	}
	switch {
	case match(ap0Chromaticities):
		return GamutACESAP0
	case match(bt709Chromaticities):
		return GamutBT709
	default:
		return GamutUnspecified
	}
}

func parseEXRChannels(data []byte) ([]exrChannel, error) {
	r := bytes.NewReader(data)
	var channels []exrChannel
	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		pixelType, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if pixelType != exrPixelHalf && pixelType != exrPixelFloat && pixelType != exrPixelUint {
			return nil, fmt.Errorf("unsupported OpenEXR pixel type %d", pixelType)
		}
		if _, err := r.Seek(4, io.SeekCurrent); err != nil { // pLinear + reserved
			return nil, err
		}
		xSampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		ySampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if xSampling != 1 || ySampling != 1 {
			return nil, errors.New("OpenEXR subsampled channels are not supported")
		}
		role := exrChanOther
		switch strings.ToUpper(name) {
		case "R":
			role = exrChanR
		case "G":
			role = exrChanG
		case "B":
			role = exrChanB
		case "Y":
			role = exrChanY
		}
		channels = append(channels, exrChannel{name: name, pixelType: pixelType, role: role})
	}
	return channels, nil
}

func exrExpectedBlockBytes(width, lines int, channels []exrChannel) int {
	total := 0
	for _, ch := range channels {
		total += width * lines * exrBytesPerSample(ch.pixelType)
	}
	return total
}

func exrBytesPerSample(pixelType int32) int {
	if pixelType == exrPixelHalf {
		return 2
	}
	return 4
}

func exrDecompress(compression byte, data []byte, expected int) ([]byte, error) {
	if compression == exrCompressionNone || len(data) == expected {
		// ZIP blocks that did not shrink are stored raw.
		if expected > 0 && len(data) != expected {
			return nil, errors.New("unexpected OpenEXR block size")
		}
		return data, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	uncompressed, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if expected > 0 && len(uncompressed) != expected {
		return nil, errors.New("unexpected OpenEXR decompressed size")
	}
	if len(uncompressed)%2 != 0 {
		return nil, errors.New("invalid OpenEXR ZIP payload size")
	}
	undoPredictor(uncompressed)
	return unshuffleBytes(uncompressed), nil
}

func applyPredictor(data []byte) {
	if len(data) == 0 {
		return
	}
	prev := data[0]
	for i := 1; i < len(data); i++ {
		cur := data[i]
		data[i] = byte(int(cur) - int(prev) + 128)
		prev = cur
	}
}

func undoPredictor(data []byte) {
	for i := 1; i < len(data); i++ {
		data[i] = byte(int(data[i]) + int(data[i-1]) - 128)
	}
}

func shuffleBytes(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[i] = data[2*i]
		out[i+n] = data[2*i+1]
	}
	if len(data)%2 != 0 {
		out[len(data)-1] = data[len(data)-1]
	}
	return out
}

func unshuffleBytes(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[2*i] = data[i]
		out[2*i+1] = data[i+n]
	}
	return out
}

func exrDecodeBlock(dst *HDRImage, channels []exrChannel, startY, width, lines int, data []byte) error {
	offset := 0
	for row := 0; row < lines; row++ {
		y := startY + row
		for _, ch := range channels {
			lineBytes := width * exrBytesPerSample(ch.pixelType)
			if offset+lineBytes > len(data) {
				return errors.New("OpenEXR block truncated")
			}
			line := data[offset : offset+lineBytes]
			offset += lineBytes
			if ch.role == exrChanOther {
				continue
			}
			exrApplyLine(dst, ch.role, y, width, ch.pixelType, line)
		}
	}
	return nil
}

func exrApplyLine(dst *HDRImage, role, y, width int, pixelType int32, line []byte) {
	for x := 0; x < width; x++ {
		var v float32
		switch pixelType {
		case exrPixelHalf:
			v = halfToFloat32(binary.LittleEndian.Uint16(line[x*2 : x*2+2]))
		case exrPixelFloat:
			v = math.Float32frombits(binary.LittleEndian.Uint32(line[x*4 : x*4+4]))
		case exrPixelUint:
			v = float32(binary.LittleEndian.Uint32(line[x*4 : x*4+4]))
		}
		idx := (y*dst.Width + x) * 3
		switch role {
		case exrChanR:
			dst.Pix[idx] = v
		case exrChanG:
			dst.Pix[idx+1] = v
		case exrChanB:
			dst.Pix[idx+2] = v
		case exrChanY:
			dst.Pix[idx] = v
			dst.Pix[idx+1] = v
			dst.Pix[idx+2] = v
		}
	}
}

func hasRGBOrY(channels []exrChannel) bool {
	for _, ch := range channels {
		if ch.role != exrChanOther {
			return true
		}
	}
	return false
}

func readNullString(r *bytes.Reader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readI32(r *bytes.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := int32(h>>10) & 0x1F
	mant := int32(h & 0x03FF)

	if exp == 0 {
		if mant == 0 {
			return math.Float32frombits(sign << 31)
		}
		for mant&0x0400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x03FF
	} else if exp == 31 {
		if mant == 0 {
			return math.Float32frombits((sign << 31) | 0x7F800000)
		}
		return math.Float32frombits((sign << 31) | 0x7F800000 | (uint32(mant) << 13))
	}

	exp += 127 - 15
	mant <<= 13
	return math.Float32frombits((sign << 31) | (uint32(exp) << 23) | uint32(mant))
}
