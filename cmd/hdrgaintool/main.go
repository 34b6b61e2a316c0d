package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vearutop/hdrgainmap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "convert":
		if err := runConvert(os.Args[2:]); err != nil {
			fail(err)
		}
	case "info":
		if err := runInfo(os.Args[2:]); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: hdrgaintool <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  convert [-space aces|scrgb|pq] [-boost 8] [-gamut bt709|p3] [-interp bilinear|nearest] [-nits N] <input.heic> <gainmap.png> <output.exr|png|y4m>")
	fmt.Fprintln(os.Stderr, "  info    <image.exr>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "To obtain the HDR gain map from a HEIC photo:")
	fmt.Fprintln(os.Stderr, "  % heif-convert --with-aux --no-colons IMG_0000.heic IMG_0000.png")
	fmt.Fprintln(os.Stderr, "which writes the gain map as IMG_0000-urn_com_apple_photo_2020_aux_hdrgainmap.png.")
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	space := fs.String("space", "", "output color space: aces, scrgb or pq (default from output extension)")
	boost := fs.Float64("boost", hdrgainmap.DefaultBoost, "boost applied at maximum gain")
	gamut := fs.String("gamut", "bt709", "assumed base image primaries: bt709 or p3")
	interp := fs.String("interp", "bilinear", "gain map upsampling: bilinear or nearest")
	nits := fs.Float64("nits", 0, "luminance of SDR white in PQ output (default 80 for png, 100 for y4m)")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 3 {
		fs.Usage()
		return errors.New("convert needs <input> <gainmap> <output>")
	}

	var opts []func(*hdrgainmap.ConvertOptions)
	opts = append(opts, func(o *hdrgainmap.ConvertOptions) {
		o.Boost = float32(*boost)
		o.SDRWhiteNits = float32(*nits)
		o.OnStage = func(stage string) { fmt.Fprintln(os.Stderr, stage) }
		o.OnStats = func(s hdrgainmap.LuminanceStats) {
			fmt.Printf("MaxFALL: %.2f (scene referenced, estimate)\n", s.MaxFALL)
			fmt.Printf("MaxCLL:  %.2f (scene referenced, estimate)\n", s.MaxCLL)
		}
	})

	switch *space {
	case "":
	case "aces":
		opts = append(opts, withSpace(hdrgainmap.SpaceACES2065))
	case "scrgb":
		opts = append(opts, withSpace(hdrgainmap.SpaceSCRGB))
	case "pq":
		opts = append(opts, withSpace(hdrgainmap.SpaceBT2100PQ))
	default:
		return fmt.Errorf("unknown color space %q", *space)
	}

	switch *gamut {
	case "bt709":
	case "p3":
		opts = append(opts, func(o *hdrgainmap.ConvertOptions) { o.BaseGamut = hdrgainmap.GamutDisplayP3 })
	default:
		return fmt.Errorf("unknown base gamut %q", *gamut)
	}

	switch *interp {
	case "bilinear":
	case "nearest":
		opts = append(opts, func(o *hdrgainmap.ConvertOptions) { o.Interpolation = hdrgainmap.InterpolationNearest })
	default:
		return fmt.Errorf("unknown interpolation %q", *interp)
	}

	return hdrgainmap.ConvertFile(rest[0], rest[1], rest[2], opts...)
}

func withSpace(s hdrgainmap.OutputSpace) func(*hdrgainmap.ConvertOptions) {
	return func(o *hdrgainmap.ConvertOptions) {
		o.Space = s
		o.SpaceSet = true
	}
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return errors.New("info needs <image.exr>")
	}
	data, err := os.ReadFile(filepath.Clean(rest[0]))
	if err != nil {
		return err
	}
	img, err := hdrgainmap.DecodeEXR(data)
	if err != nil {
		return err
	}
	fmt.Printf("%dx%d, RGB float\n", img.Width, img.Height)
	if stats, err := hdrgainmap.Luminance(img); err == nil {
		fmt.Printf("MaxFALL: %.2f (scene referenced, estimate)\n", stats.MaxFALL)
		fmt.Printf("MaxCLL:  %.2f (scene referenced, estimate)\n", stats.MaxCLL)
	}
	return nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
