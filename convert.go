package hdrgainmap

import (
	"path/filepath"
	"strings"
)

// ConvertOptions controls a full reconstruction run.
type ConvertOptions struct {
	// Space selects the output encoding. When left at the zero value the
	// space is derived from the output extension (SpaceFromPath).
	Space OutputSpace
	// SpaceSet marks Space as explicitly chosen.
	SpaceSet bool
	// Boost is the gain applied at the maximum gain-map sample; DefaultBoost
	// if zero.
	Boost float32
	// BaseGamut overrides the assumed primaries of the base image. GamutBT709
	// by default; GamutDisplayP3 matches what Apple's pipeline most likely
	// produces.
	BaseGamut ColorGamut
	// Interpolation selects the gain-map upsampling mode.
	Interpolation Interpolation
	// SDRWhiteNits maps linear 1.0 to a PQ luminance; defaults per container
	// (PNGSDRWhiteNits for .png, Y4MSDRWhiteNits for .y4m).
	SDRWhiteNits float32
	// OnStats receives luminance statistics of the reconstructed image.
	OnStats func(LuminanceStats)
	// OnStage receives a short progress note before each pipeline stage.
	OnStage func(stage string)
}

// SpaceFromPath derives the default output space from a file extension:
// .exr is ACES2065-1, .png is scRGB, .y4m is BT.2100 PQ.
func SpaceFromPath(path string) (OutputSpace, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exr":
		return SpaceACES2065, true
	case ".png":
		return SpaceSCRGB, true
	case ".y4m":
		return SpaceBT2100PQ, true
	default:
		return SpaceACES2065, false
	}
}

// ConvertFile runs the whole pipeline: load base image and gain map,
// resample the gain map to the base resolution, reconstruct HDR linear
// light, encode the requested color space, and write the output file.
func ConvertFile(inPath, gainPath, outPath string, opts ...func(*ConvertOptions)) error {
	opt := ConvertOptions{BaseGamut: GamutBT709}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if !opt.SpaceSet {
		space, ok := SpaceFromPath(outPath)
		if !ok {
			return &OutputError{Path: outPath, Reason: "cannot derive output space from extension"}
		}
		opt.Space = space
	}
	if opt.SDRWhiteNits == 0 && strings.EqualFold(filepath.Ext(outPath), ".y4m") {
		opt.SDRWhiteNits = Y4MSDRWhiteNits
	}

	stage := func(s string) {
		if opt.OnStage != nil {
			opt.OnStage(s)
		}
	}

	stage("read image: " + inPath)
	base, err := LoadBase(inPath)
	if err != nil {
		return err
	}
	base.Gamut = opt.BaseGamut

	stage("read gain map: " + gainPath)
	gain, err := LoadGainMap(gainPath)
	if err != nil {
		return err
	}

	stage("converting")
	gain, err = ResampleGainMap(gain, base.Width, base.Height, opt.Interpolation)
	if err != nil {
		return &InputError{Path: gainPath, Reason: "cannot resample gain map", Err: err}
	}

	hdr, err := Reconstruct(base, gain, &ReconstructOptions{Boost: opt.Boost})
	if err != nil {
		return &InputError{Path: inPath, Reason: "reconstruction failed", Err: err}
	}

	if opt.OnStats != nil {
		if stats, err := Luminance(hdr); err == nil {
			opt.OnStats(stats)
		}
	}

	out, err := EncodeColorSpace(hdr, opt.Space, &EncodeOptions{SDRWhiteNits: opt.SDRWhiteNits})
	if err != nil {
		return &OutputError{Path: outPath, Reason: "color space encoding failed", Err: err}
	}

	stage("write image: " + outPath)
	return WriteOutputFile(outPath, out)
}
