// Package sobel computes Sobel gradients over grayscale buffers, addressing
// neighbours as a torus so border pixels get a full 3x3 window.
package sobel

import (
	"image"
	"math"

	"go-photobooth/pkg/pixel"
)

// Direction is a gradient orientation quantized to 45 degree classes.
type Direction int

// Quantized directions, in degrees.
const (
	Deg0   Direction = 0
	Deg45  Direction = 45
	Deg90  Direction = 90
	Deg135 Direction = 135
)

// Sobel kernels, indexed [i+1][j+1] with i the x offset and j the y offset.
var (
	kernelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	kernelY = [3][3]int{
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	}
)

// Field holds the gradient magnitude and direction of every pixel.
type Field struct {
	Magnitude pixel.Grid[int]
	Direction pixel.Grid[Direction]
}

// Response returns the horizontal and vertical kernel sums at (x, y) of the
// grayscale buffer img.
func Response(img *image.RGBA, x, y int) (xSum, ySum int) {
	w, h := pixel.Size(img)
	pixel.Neighborhood(x, y, 1, w, h, pixel.Wrap{}, func(i, j, nx, ny int) {
		v := int(pixel.Gray(img, nx, ny))
		xSum += v * kernelX[i+1][j+1]
		ySum += v * kernelY[i+1][j+1]
	})
	return xSum, ySum
}

// Magnitude is the L1 gradient magnitude |xSum| + |ySum|.
func Magnitude(xSum, ySum int) int {
	return abs(xSum) + abs(ySum)
}

// Quantize maps a gradient to one of four direction classes. The comparisons
// are evaluated in a fixed order; boundary angles fall into the class whose
// range is closed on that side.
func Quantize(xSum, ySum int) Direction {
	if xSum == 0 {
		if ySum == 0 {
			return Deg0
		}
		return Deg90
	}

	deg := math.Atan(float64(ySum)/float64(xSum)) * 180 / math.Pi
	switch {
	case -22.5 < deg && deg < 22.5:
		return Deg0
	case 22.5 <= deg && deg < 67.5:
		return Deg45
	case -90 < deg && deg <= -67.5, 67.5 <= deg && deg < 90:
		return Deg90
	case -67.5 < deg && deg <= -22.5:
		return Deg135
	}
	return Deg0
}

// Gradient computes the gradient field of the grayscale buffer img.
func Gradient(img *image.RGBA, workers int) Field {
	w, h := pixel.Size(img)
	field := Field{
		Magnitude: pixel.NewGrid[int](w, h),
		Direction: pixel.NewGrid[Direction](w, h),
	}

	pixel.Rows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				xSum, ySum := Response(img, x, y)
				field.Magnitude.Set(x, y, Magnitude(xSum, ySum))
				field.Direction.Set(x, y, Quantize(xSum, ySum))
			}
		}
	})

	return field
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
