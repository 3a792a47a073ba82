// Package gray converts buffers to luminance grayscale.
package gray

import (
	"image"
	"math"

	"go-photobooth/pkg/pixel"
)

// Rec. 709 luma weights.
const (
	WeightR = 0.2126
	WeightG = 0.7152
	WeightB = 0.0722
)

// Luminance returns the rounded weighted luminance of r, g, b.
func Luminance(r, g, b uint8) uint8 {
	l := math.Round(WeightR*float64(r) + WeightG*float64(g) + WeightB*float64(b))
	if l > 255 {
		return 255
	}
	return uint8(l)
}

// Apply replaces R, G and B of every pixel with its luminance. Alpha is left
// untouched.
func Apply(img *image.RGBA, workers int) {
	w, h := pixel.Size(img)
	pixel.Rows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				c := pixel.At(img, x, y)
				pixel.SetGray(img, x, y, Luminance(c.R, c.G, c.B))
			}
		}
	})
}
