package edges

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-photobooth/pkg/pixel"
	"go-photobooth/pkg/sobel"
)

func gridOf(rows [][]int) pixel.Grid[int] {
	g := pixel.NewGrid[int](len(rows[0]), len(rows))
	for y, row := range rows {
		for x, v := range row {
			g.Set(x, y, v)
		}
	}
	return g
}

func TestThresholdBoundaries(t *testing.T) {
	values := gridOf([][]int{{-1, 0, 1, 100, 101}})

	classes := Threshold(values, HighThreshold, LowThreshold, 1)

	want := []Class{NotEdge, NotEdge, WeakEdge, WeakEdge, StrongEdge}
	assert.Equal(t, want, classes.Cells)
}

func TestLinkStrongCenterPromotesNeighbours(t *testing.T) {
	classes := pixel.NewGrid[Class](3, 3)
	for i := range classes.Cells {
		classes.Cells[i] = WeakEdge
	}
	classes.Set(1, 1, StrongEdge)

	img := pixel.NewBuffer(3, 3)
	Link(img, classes, 1)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, EdgeColor, pixel.At(img, x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestLinkIsolatedWeakDropped(t *testing.T) {
	classes := pixel.NewGrid[Class](5, 5)
	classes.Set(0, 0, StrongEdge)
	classes.Set(2, 2, WeakEdge) // two steps from anything strong
	classes.Set(4, 4, WeakEdge) // wraps onto (0, 0)

	img := pixel.NewBuffer(5, 5)
	Link(img, classes, 1)

	assert.Equal(t, EdgeColor, pixel.At(img, 0, 0))
	assert.Equal(t, NonEdgeColor, pixel.At(img, 2, 2))
	assert.Equal(t, EdgeColor, pixel.At(img, 4, 4))
	assert.Equal(t, NonEdgeColor, pixel.At(img, 3, 1))
}

func TestSuppressKeepsStrictMaxima(t *testing.T) {
	// Direction 0 compares along y.
	field := sobel.Field{
		Magnitude: gridOf([][]int{
			{1, 5, 1},
			{2, 9, 5},
			{1, 5, 1},
		}),
		Direction: pixel.NewGrid[sobel.Direction](3, 3),
	}

	kept := Suppress(field, 1)

	assert.Equal(t, 9, kept.At(1, 1))
	assert.Equal(t, Suppressed, kept.At(1, 0))
	assert.Equal(t, Suppressed, kept.At(1, 2), "ties its wrapped neighbour at (1, 0)")
	assert.Equal(t, 2, kept.At(0, 1))
	assert.Equal(t, 5, kept.At(2, 1))
}

func TestSuppressFollowsDirection(t *testing.T) {
	mags := gridOf([][]int{
		{0, 0, 0},
		{3, 4, 3},
		{0, 0, 0},
	})

	tests := []struct {
		dir  sobel.Direction
		want int
	}{
		{sobel.Deg0, 4},   // neighbours above and below are 0
		{sobel.Deg90, 4},  // neighbours left and right are 3
		{sobel.Deg45, 4},  // diagonal neighbours are 0
		{sobel.Deg135, 4}, // anti-diagonal neighbours are 0
	}

	for _, tt := range tests {
		dirs := pixel.NewGrid[sobel.Direction](3, 3)
		for i := range dirs.Cells {
			dirs.Cells[i] = tt.dir
		}
		kept := Suppress(sobel.Field{Magnitude: mags, Direction: dirs}, 1)
		assert.Equal(t, tt.want, kept.At(1, 1), "direction %d", tt.dir)
	}

	// Along x the pixel is no maximum when a neighbour ties it.
	tied := gridOf([][]int{
		{0, 0, 0},
		{4, 4, 3},
		{0, 0, 0},
	})
	dirs := pixel.NewGrid[sobel.Direction](3, 3)
	for i := range dirs.Cells {
		dirs.Cells[i] = sobel.Deg90
	}
	kept := Suppress(sobel.Field{Magnitude: tied, Direction: dirs}, 1)
	assert.Equal(t, Suppressed, kept.At(1, 1))
}

func fill(w, h int, c color.RGBA) *image.RGBA {
	img := pixel.NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixel.Set(img, x, y, c)
		}
	}
	return img
}

func TestDetectUniformIsAllNonEdge(t *testing.T) {
	img := fill(8, 6, color.RGBA{R: 120, G: 40, B: 220, A: 255})

	Detect(img, 1)

	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, NonEdgeColor, pixel.At(img, x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestDetectThinLine(t *testing.T) {
	// A one pixel white line at x=6. The blur spreads it to columns 4..8
	// (50, 51, 51, 51, 50); the gradient peaks at columns 4 and 8, which are
	// the only local maxima above the high threshold.
	img := fill(12, 12, color.RGBA{A: 255})
	for y := 0; y < 12; y++ {
		pixel.Set(img, 6, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}

	Detect(img, 1)

	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			want := NonEdgeColor
			if x == 4 || x == 8 {
				want = EdgeColor
			}
			require.Equal(t, want, pixel.At(img, x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestDetectParallelMatchesSequential(t *testing.T) {
	seq := pixel.NewBuffer(15, 11)
	for y := 0; y < 11; y++ {
		for x := 0; x < 15; x++ {
			v := uint8(0)
			if (x/4+y/3)%2 == 0 {
				v = 230
			}
			pixel.Set(seq, x, y, color.RGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	par := pixel.Clone(seq)

	Detect(seq, 1)
	Detect(par, 6)

	assert.Equal(t, seq.Pix, par.Pix)
}

func TestNeighbourOffsets(t *testing.T) {
	assert.Equal(t, [2]int{0, 1}, neighbourOffset[sobel.Deg0])
	assert.Equal(t, [2]int{1, 1}, neighbourOffset[sobel.Deg45])
	assert.Equal(t, [2]int{1, 0}, neighbourOffset[sobel.Deg90])
	assert.Equal(t, [2]int{1, -1}, neighbourOffset[sobel.Deg135])
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "none", NotEdge.String())
	assert.Equal(t, "weak", WeakEdge.String())
	assert.Equal(t, "strong", StrongEdge.String())
}
