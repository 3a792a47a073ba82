// Package edges implements Canny-style edge detection: blur, grayscale, Sobel
// gradient, non-maximum suppression, double threshold and hysteresis linking.
package edges

import (
	"image"
	"image/color"

	"go-photobooth/pkg/blur"
	"go-photobooth/pkg/gray"
	"go-photobooth/pkg/pixel"
	"go-photobooth/pkg/sobel"
)

// Class labels a pixel after double thresholding.
type Class uint8

// Edge classes.
const (
	NotEdge Class = iota
	WeakEdge
	StrongEdge
)

func (c Class) String() string {
	switch c {
	case WeakEdge:
		return "weak"
	case StrongEdge:
		return "strong"
	}
	return "none"
}

// Thresholds used by Detect.
const (
	HighThreshold = 100
	LowThreshold  = 0
)

// Suppressed marks a magnitude that is not a local maximum.
const Suppressed = -1

// Output colours.
var (
	EdgeColor    = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	NonEdgeColor = color.RGBA{A: 0xFF}
)

// neighbourOffset is (sign(sin d), sign(cos d)) for each direction class.
var neighbourOffset = map[sobel.Direction][2]int{
	sobel.Deg0:   {0, 1},
	sobel.Deg45:  {1, 1},
	sobel.Deg90:  {1, 0},
	sobel.Deg135: {1, -1},
}

// Detect runs the full pipeline on img. Afterwards every pixel is either
// EdgeColor or NonEdgeColor.
func Detect(img *image.RGBA, workers int) {
	blur.Apply(img, workers)
	gray.Apply(img, workers)
	field := sobel.Gradient(img, workers)
	kept := Suppress(field, workers)
	classes := Threshold(kept, HighThreshold, LowThreshold, workers)
	Link(img, classes, workers)
}

// Suppress keeps a pixel's magnitude only when it is strictly greater than
// both wrap-addressed neighbours along its gradient direction; every other
// pixel becomes Suppressed.
func Suppress(field sobel.Field, workers int) pixel.Grid[int] {
	w, h := field.Magnitude.W, field.Magnitude.H
	out := pixel.NewGrid[int](w, h)

	pixel.Rows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				mag := field.Magnitude.At(x, y)
				off := neighbourOffset[field.Direction.At(x, y)]

				ax, ay, _ := pixel.Wrap{}.Resolve(x+off[0], y+off[1], w, h)
				bx, by, _ := pixel.Wrap{}.Resolve(x-off[0], y-off[1], w, h)

				if mag > field.Magnitude.At(ax, ay) && mag > field.Magnitude.At(bx, by) {
					out.Set(x, y, mag)
				} else {
					out.Set(x, y, Suppressed)
				}
			}
		}
	})

	return out
}

// Threshold classifies every value: above high is strong, above low is weak,
// the rest is not an edge.
func Threshold(values pixel.Grid[int], high, low, workers int) pixel.Grid[Class] {
	out := pixel.NewGrid[Class](values.W, values.H)

	pixel.Rows(values.H, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < values.W; x++ {
				out.Set(x, y, classify(values.At(x, y), high, low))
			}
		}
	})

	return out
}

func classify(v, high, low int) Class {
	switch {
	case v > high:
		return StrongEdge
	case v > low:
		return WeakEdge
	}
	return NotEdge
}

// Link writes the final edge map into img. Strong pixels are edges, weak
// pixels are edges when one of their 8 wrap-addressed neighbours is strong.
func Link(img *image.RGBA, classes pixel.Grid[Class], workers int) {
	w, h := classes.W, classes.H

	pixel.Rows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				c := NonEdgeColor
				switch classes.At(x, y) {
				case StrongEdge:
					c = EdgeColor
				case WeakEdge:
					if strongNeighbour(classes, x, y) {
						c = EdgeColor
					}
				}
				pixel.Set(img, x, y, c)
			}
		}
	})
}

func strongNeighbour(classes pixel.Grid[Class], x, y int) bool {
	found := false
	pixel.Neighborhood(x, y, 1, classes.W, classes.H, pixel.Wrap{}, func(i, j, nx, ny int) {
		if classes.At(nx, ny) == StrongEdge {
			found = true
		}
	})
	return found
}
