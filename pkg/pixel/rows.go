package pixel

import (
	"golang.org/x/sync/errgroup"
)

// Rows splits [0, height) into contiguous bands and calls fn(y0, y1) for each,
// running at most workers bands at once. With workers <= 1 the whole range is
// handled inline. Rows returns after every band has finished.
//
// Bands must only write rows they own and must not read data another band is
// writing.
func Rows(height, workers int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if workers <= 1 || height == 1 {
		fn(0, height)
		return
	}
	if workers > height {
		workers = height
	}

	band := (height + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
