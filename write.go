package hdrgainmap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteOutputFile writes img to path, choosing the container by extension:
// .exr (OpenEXR), .png (PNG-48), .y4m (YUV4MPEG2). The file is written to a
// temporary name in the destination directory and renamed on success, so a
// failed run never leaves a truncated output behind.
func WriteOutputFile(path string, img *HDRImage) error {
	var encode func(io.Writer, *HDRImage) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exr":
		encode = EncodeEXR
	case ".png":
		encode = EncodePNG48
	case ".y4m":
		encode = EncodeY4M
	default:
		return &OutputError{Path: path, Reason: fmt.Sprintf("unsupported output format %q", filepath.Ext(path))}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &OutputError{Path: path, Reason: "cannot create output file", Err: err}
	}
	if err := encode(tmp, img); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &OutputError{Path: path, Reason: "encoding failed", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return &OutputError{Path: path, Reason: "cannot finish output file", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return &OutputError{Path: path, Reason: "cannot replace output file", Err: err}
	}
	return nil
}
