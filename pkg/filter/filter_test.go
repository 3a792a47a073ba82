package filter

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-photobooth/pkg/edges"
	"go-photobooth/pkg/pixel"
)

func TestLookupCaseInsensitive(t *testing.T) {
	for _, name := range []string{"blur", "BLUR", "Edges", " grayscale ", "SkEtCh"} {
		f, err := Lookup(name)
		require.NoError(t, err, "Lookup(%q)", name)
		assert.NotEmpty(t, f.Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, name := range []string{"", "sharpen", "blurry", "-help"} {
		_, err := Lookup(name)
		assert.ErrorIs(t, err, ErrUnknownFilter, "Lookup(%q)", name)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"blur", "edges", "grayscale", "sketch"}, Names())
	assert.Len(t, All(), 4)
}

func sample() *image.RGBA {
	img := pixel.NewBuffer(6, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			pixel.Set(img, x, y, color.RGBA{R: uint8(40 * x), G: uint8(50 * y), B: 77, A: 255})
		}
	}
	return img
}

func TestEntryPointsMatchNamedFilters(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*image.RGBA)
	}{
		{"blur", ApplyBlur},
		{"edges", ApplyEdgeDetection},
		{"grayscale", ApplyGrayscale},
		{"sketch", ApplySketch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := sample()
			f, err := Lookup(tt.name)
			require.NoError(t, err)
			f.Apply(want, Options{Workers: 1})

			got := sample()
			tt.apply(got)

			assert.Equal(t, want.Pix, got.Pix)
		})
	}
}

func TestApplyEdgeDetectionUniform(t *testing.T) {
	img := pixel.NewBuffer(5, 5)
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}

	ApplyEdgeDetection(img)

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, edges.NonEdgeColor, pixel.At(img, x, y))
		}
	}
}

func TestApplyLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	f, err := Lookup("grayscale")
	require.NoError(t, err)
	f.Apply(sample(), Options{Workers: 2})

	assert.Contains(t, buf.String(), "filter=grayscale")
	assert.Contains(t, buf.String(), "workers=2")
}

func TestSetLoggerNilIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
