// Package blur builds Gaussian kernels and convolves buffers with them.
package blur

import (
	"image"

	"go-photobooth/pkg/pixel"
)

// Fixed blur parameters: a 5x5 kernel with a wide standard deviation.
const (
	Radius = 2
	Sigma  = 10.0
)

// truncGuard absorbs floating-point error before truncating a channel sum.
const truncGuard = 1e-9

// Apply blurs img in place with the fixed Gaussian kernel. The convolution
// reads from img and writes into a fresh buffer, which is then copied back.
func Apply(img *image.RGBA, workers int) {
	blurred := Convolve(img, GaussianKernel(Radius, Sigma), pixel.Skip{}, workers)
	pixel.Copy(img, blurred)
}

// Convolve applies kernel to the R, G and B channels of src and returns the
// result in a new origin-anchored buffer with opaque alpha. Neighbours that
// boundary leaves out contribute neither to the weighted sum nor to the weight
// total, so the sum is divided by the weight of the samples that were read.
func Convolve(src *image.RGBA, kernel Kernel, boundary pixel.Boundary, workers int) *image.RGBA {
	w, h := pixel.Size(src)
	dst := pixel.NewBuffer(w, h)
	radius := kernel.Radius()

	pixel.Rows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var rSum, gSum, bSum, weight float64

				pixel.Neighborhood(x, y, radius, w, h, boundary, func(i, j, nx, ny int) {
					p := pixel.At(src, nx, ny)
					k := kernel[i+radius][j+radius]

					rSum += float64(p.R) * k
					gSum += float64(p.G) * k
					bSum += float64(p.B) * k
					weight += k
				})

				dst.Pix[y*dst.Stride+x*4+0] = channel(rSum / weight)
				dst.Pix[y*dst.Stride+x*4+1] = channel(gSum / weight)
				dst.Pix[y*dst.Stride+x*4+2] = channel(bSum / weight)
				dst.Pix[y*dst.Stride+x*4+3] = 0xFF
			}
		}
	})

	return dst
}

// channel truncates v and clamps it into [0, 255].
func channel(v float64) uint8 {
	n := int(v + truncGuard)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
