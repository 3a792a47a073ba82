// Package pixel holds the buffer, grid and neighbourhood helpers shared by
// every filter. A pixel buffer is an *image.RGBA addressed in zero-based
// coordinates relative to Bounds().Min.
package pixel

import (
	"image"
	"image/color"
	"image/draw"
)

// NewBuffer allocates a w x h buffer anchored at the origin.
func NewBuffer(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// FromImage converts img into an origin-anchored *image.RGBA. An *image.RGBA
// that already starts at the origin is returned as is.
func FromImage(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) {
		return rgba
	}

	rgba := NewBuffer(bounds.Dx(), bounds.Dy())
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Clone returns a deep copy of img with the same bounds.
func Clone(img *image.RGBA) *image.RGBA {
	out := &image.RGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(out.Pix, img.Pix)
	return out
}

// Copy copies the pixels of src into dst. Both must have the same size.
func Copy(dst, src *image.RGBA) {
	w, h := Size(src)
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
	}
}

// Size reports the width and height of img.
func Size(img *image.RGBA) (int, int) {
	return img.Rect.Dx(), img.Rect.Dy()
}

// At returns the pixel at zero-based (x, y).
func At(img *image.RGBA, x, y int) color.RGBA {
	i := offset(img, x, y)
	s := img.Pix[i : i+4 : i+4]
	return color.RGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// Set writes c at zero-based (x, y).
func Set(img *image.RGBA, x, y int, c color.RGBA) {
	i := offset(img, x, y)
	s := img.Pix[i : i+4 : i+4]
	s[0] = c.R
	s[1] = c.G
	s[2] = c.B
	s[3] = c.A
}

// Gray returns the gray sample of a grayscale buffer at (x, y). Only the
// lowest byte of the packed pixel (blue) is read.
func Gray(img *image.RGBA, x, y int) uint8 {
	return img.Pix[offset(img, x, y)+2]
}

// SetGray writes v into R, G and B at (x, y), leaving alpha untouched.
func SetGray(img *image.RGBA, x, y int, v uint8) {
	i := offset(img, x, y)
	s := img.Pix[i : i+3 : i+3]
	s[0] = v
	s[1] = v
	s[2] = v
}

func offset(img *image.RGBA, x, y int) int {
	return y*img.Stride + x*4
}
