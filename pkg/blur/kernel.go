package blur

import (
	"math"
)

// Kernel is a square convolution kernel with odd side 2r+1, indexed
// kernel[i+r][j+r] where i is the x offset and j the y offset.
type Kernel [][]float64

// Radius returns r for a kernel of side 2r+1.
func (k Kernel) Radius() int {
	return len(k) / 2
}

// Sum returns the total of all weights.
func (k Kernel) Sum() float64 {
	sum := 0.0
	for _, row := range k {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// GaussianKernel builds a (2r+1)x(2r+1) Gaussian kernel with standard
// deviation sigma, normalized so the weights sum to 1. A radius <= 0 yields
// the 1x1 identity kernel.
func GaussianKernel(radius int, sigma float64) Kernel {
	if radius <= 0 {
		return Kernel{{1}}
	}

	size := 2*radius + 1
	kernel := make(Kernel, size)
	twoSigmaSq := 2 * sigma * sigma
	constant := 1 / (math.Pi * twoSigmaSq)
	sum := 0.0

	for i := -radius; i <= radius; i++ {
		kernel[i+radius] = make([]float64, size)
		for j := -radius; j <= radius; j++ {
			v := constant * math.Exp(-float64(i*i+j*j)/twoSigmaSq)
			kernel[i+radius][j+radius] = v
			sum += v
		}
	}

	// Without this the image brightness drifts.
	for i := range kernel {
		for j := range kernel[i] {
			kernel[i][j] /= sum
		}
	}

	return kernel
}
