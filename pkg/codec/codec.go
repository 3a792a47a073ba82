// Package codec reads and writes image files as pixel buffers.
package codec

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-photobooth/pkg/pixel"
)

var (
	// ErrDecode wraps every failure to open or decode an input image.
	ErrDecode = errors.New("failed to read image")
	// ErrEncode wraps every failure to encode or write an output image.
	ErrEncode = errors.New("failed to write image")
)

// Decode opens path and decodes it into an origin-anchored buffer. It also
// returns the format name reported by the decoder.
func Decode(path string) (*image.RGBA, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode %s: %w", ErrDecode, path, err)
	}

	return pixel.FromImage(img), format, nil
}

// Encode writes img to path in the given format (png, jpeg, gif, bmp, tiff).
func Encode(path string, img image.Image, format string) error {
	enc, err := encoder(format)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	if err := enc(file, img); err != nil {
		file.Close()
		return fmt.Errorf("%w: encode %s: %w", ErrEncode, path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

func encoder(format string) (func(io.Writer, image.Image) error, error) {
	switch normalizeFormat(format) {
	case "png":
		return png.Encode, nil
	case "jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
		}, nil
	case "gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, nil
	case "bmp":
		return bmp.Encode, nil
	case "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	}
	return nil, fmt.Errorf("%w: unsupported format %q", ErrEncode, format)
}

// CanEncode reports whether Encode can write format. Some formats, such as
// webp, can be read but not written.
func CanEncode(format string) bool {
	_, err := encoder(format)
	return err == nil
}

func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	switch f {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return f
}

// FormatFromPath returns the normalized format name for path's extension.
func FormatFromPath(path string) string {
	return normalizeFormat(filepath.Ext(path))
}

// OutputPath derives the output file for input and filter name:
// dir/photo.png with "Sketch" becomes dir/photo_sketch.png. Inputs in a
// format Encode cannot write get a .png output.
func OutputPath(input, filterName string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if ext != "" && !CanEncode(ext) {
		ext = ".png"
	}
	return base + "_" + strings.ToLower(filterName) + ext
}

// OutputPathIn is OutputPath with the result placed in dir.
func OutputPathIn(dir, input, filterName string) string {
	return filepath.Join(dir, filepath.Base(OutputPath(input, filterName)))
}

// IsImage reports whether path has an extension Decode understands.
func IsImage(path string) bool {
	switch FormatFromPath(path) {
	case "png", "jpeg", "gif", "bmp", "tiff", "webp":
		return true
	}
	return false
}

// FindImages lists the images directly inside dir, skipping files that
// already carry a filter suffix from a previous run.
func FindImages(dir string, filterNames []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		if hasFilterSuffix(e.Name(), filterNames) {
			continue
		}
		images = append(images, filepath.Join(dir, e.Name()))
	}
	return images, nil
}

func hasFilterSuffix(name string, filterNames []string) bool {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	for _, f := range filterNames {
		if strings.HasSuffix(stem, "_"+strings.ToLower(f)) {
			return true
		}
	}
	return false
}
