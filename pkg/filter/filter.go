// Package filter exposes the image filters by name.
//
// Each filter mutates an *image.RGBA in place. The four entry points
// ApplyBlur, ApplyEdgeDetection, ApplyGrayscale and ApplySketch run with
// default options; Lookup resolves a filter from a user-supplied name.
package filter

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"go-photobooth/pkg/blur"
	"go-photobooth/pkg/edges"
	"go-photobooth/pkg/gray"
	"go-photobooth/pkg/sketch"
)

// ErrUnknownFilter is returned by Lookup for names that match no filter.
var ErrUnknownFilter = errors.New("filter not recognized")

// Options tune how a filter runs. They never change its result.
type Options struct {
	// Workers bounds the number of row bands processed at once.
	// Values <= 1 run sequentially.
	Workers int
}

// DefaultOptions uses one worker per available CPU.
func DefaultOptions() Options {
	return Options{Workers: runtime.GOMAXPROCS(0)}
}

// Filter is a named in-place image filter.
type Filter struct {
	Name        string
	Description string
	run         func(img *image.RGBA, workers int)
}

// Apply runs the filter on img.
func (f Filter) Apply(img *image.RGBA, opts Options) {
	start := time.Now()
	f.run(img, opts.Workers)

	Logger().Debug("filter applied",
		slog.String("filter", f.Name),
		slog.Int("width", img.Rect.Dx()),
		slog.Int("height", img.Rect.Dy()),
		slog.Int("workers", opts.Workers),
		slog.Duration("elapsed", time.Since(start)),
	)
}

var filters = []Filter{
	{Name: "blur", Description: "5x5 Gaussian blur", run: blur.Apply},
	{Name: "edges", Description: "Canny-style edge detection", run: edges.Detect},
	{Name: "grayscale", Description: "luminance grayscale", run: gray.Apply},
	{Name: "sketch", Description: "inverted Sobel pencil sketch", run: sketch.Apply},
}

// Lookup returns the filter called name, ignoring case and surrounding space.
func Lookup(name string) (Filter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, f := range filters {
		if f.Name == key {
			return f, nil
		}
	}
	return Filter{}, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

// All returns every filter in a stable order.
func All() []Filter {
	out := make([]Filter, len(filters))
	copy(out, filters)
	return out
}

// Names returns the filter names in a stable order.
func Names() []string {
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = f.Name
	}
	return names
}

// ApplyBlur blurs img with the fixed 5x5 Gaussian kernel.
func ApplyBlur(img *image.RGBA) {
	mustLookup("blur").Apply(img, DefaultOptions())
}

// ApplyEdgeDetection replaces img with its black and white edge map.
func ApplyEdgeDetection(img *image.RGBA) {
	mustLookup("edges").Apply(img, DefaultOptions())
}

// ApplyGrayscale converts img to luminance grayscale.
func ApplyGrayscale(img *image.RGBA) {
	mustLookup("grayscale").Apply(img, DefaultOptions())
}

// ApplySketch renders img as a pencil sketch.
func ApplySketch(img *image.RGBA) {
	mustLookup("sketch").Apply(img, DefaultOptions())
}

func mustLookup(name string) Filter {
	f, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}
