package pixel

// Grid is a dense W x H grid of values, stored row-major.
type Grid[T any] struct {
	W, H  int
	Cells []T
}

// NewGrid allocates a zeroed w x h grid.
func NewGrid[T any](w, h int) Grid[T] {
	return Grid[T]{W: w, H: h, Cells: make([]T, w*h)}
}

// At returns the value at (x, y).
func (g Grid[T]) At(x, y int) T {
	return g.Cells[y*g.W+x]
}

// Set stores v at (x, y).
func (g Grid[T]) Set(x, y int, v T) {
	g.Cells[y*g.W+x] = v
}
