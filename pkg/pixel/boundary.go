package pixel

// Boundary decides how a neighbour coordinate outside [0,w) x [0,h) is
// treated. Resolve returns the in-bounds coordinate to read, or ok=false when
// the neighbour must be left out.
type Boundary interface {
	Resolve(x, y, w, h int) (rx, ry int, ok bool)
}

// Skip drops out-of-range neighbours. Convolution uses it.
type Skip struct{}

// Resolve implements Boundary.
func (Skip) Resolve(x, y, w, h int) (int, int, bool) {
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, 0, false
	}
	return x, y, true
}

// Wrap addresses the grid as a torus, so every neighbour exists. The Sobel
// based stages use it.
type Wrap struct{}

// Resolve implements Boundary.
func (Wrap) Resolve(x, y, w, h int) (int, int, bool) {
	return mod(x, w), mod(y, h), true
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Neighborhood calls fn for every offset (i, j) in [-radius, radius]^2 around
// (x, y) that b resolves, passing the offsets and the resolved coordinate.
// Offsets are visited with i (x offset) in the outer loop.
func Neighborhood(x, y, radius, w, h int, b Boundary, fn func(i, j, nx, ny int)) {
	for i := -radius; i <= radius; i++ {
		for j := -radius; j <= radius; j++ {
			nx, ny, ok := b.Resolve(x+i, y+j, w, h)
			if !ok {
				continue
			}
			fn(i, j, nx, ny)
		}
	}
}
