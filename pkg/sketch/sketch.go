// Package sketch renders a pencil-sketch look from inverted Sobel magnitudes.
package sketch

import (
	"image"

	"go-photobooth/pkg/gray"
	"go-photobooth/pkg/pixel"
	"go-photobooth/pkg/sobel"
)

// Apply grayscales img, then replaces every pixel with 255 minus its Sobel
// magnitude folded into [0, 256). Magnitudes are read from a snapshot taken
// after the grayscale pass, so writes never feed back into pending lookups.
func Apply(img *image.RGBA, workers int) {
	gray.Apply(img, workers)
	src := pixel.Clone(img)

	w, h := pixel.Size(img)
	pixel.Rows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				pixel.SetGray(img, x, y, Shade(sobel.Magnitude(sobel.Response(src, x, y))))
			}
		}
	})
}

// Shade folds magnitude into [0, 256) and inverts it.
func Shade(magnitude int) uint8 {
	m := (magnitude + 4*256) % 256
	if m < 0 {
		m += 256
	}
	return uint8(255 - m)
}
