package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/term"
)

// format is an output image encoding.
type format string

const (
	formatPNG  format = "png"
	formatJPEG format = "jpeg"
	formatBMP  format = "bmp"
	formatTIFF format = "tiff"
)

// parseFormat resolves an explicit -format value, or the extension of path
// when name is empty. PNG is the fallback.
func parseFormat(name, path string) (format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
		if name == "" {
			return formatPNG, nil
		}
	}
	switch strings.ToLower(name) {
	case "png":
		return formatPNG, nil
	case "jpg", "jpeg":
		return formatJPEG, nil
	case "bmp":
		return formatBMP, nil
	case "tif", "tiff":
		return formatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", name)
	}
}

func (f format) encode(w io.Writer, img image.Image, quality int) error {
	switch f {
	case formatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case formatBMP:
		return bmp.Encode(w, img)
	case formatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}

// writeImage encodes img to path, or to stdout when path is "-".
func writeImage(path string, f format, img image.Image, quality int) error {
	if path == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // fd fits int
			return fmt.Errorf("refusing to write a %s image to a terminal; redirect stdout or use -output", f)
		}
		return f.encode(os.Stdout, img, quality)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.encode(file, img, quality); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}
