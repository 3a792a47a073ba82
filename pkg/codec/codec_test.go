package codec

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-photobooth/pkg/pixel"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, filter, want string
	}{
		{"photo.png", "blur", "photo_blur.png"},
		{"dir/photo.jpg", "Sketch", "dir/photo_sketch.jpg"},
		{"a.b.gif", "EDGES", "a.b_edges.gif"},
		{"photo.webp", "blur", "photo_blur.png"},
		{"noext", "blur", "noext_blur"},
	}

	for _, tt := range tests {
		assert.Equal(t, filepath.FromSlash(tt.want), OutputPath(filepath.FromSlash(tt.input), tt.filter))
	}
}

func TestOutputPathIn(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "photo_grayscale.png"), OutputPathIn("out", filepath.Join("in", "photo.png"), "grayscale"))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "jpeg", FormatFromPath("x.JPG"))
	assert.Equal(t, "jpeg", FormatFromPath("x.jpeg"))
	assert.Equal(t, "tiff", FormatFromPath("x.tif"))
	assert.Equal(t, "png", FormatFromPath("x.png"))
	assert.Equal(t, "", FormatFromPath("noext"))
}

func TestRoundTrip(t *testing.T) {
	img := pixel.NewBuffer(3, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			pixel.Set(img, x, y, color.RGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}
	pixel.Set(img, 0, 0, color.RGBA{R: 255, A: 255})
	pixel.Set(img, 2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	for _, format := range []string{"png", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "img."+format)
			require.NoError(t, Encode(path, img, format))

			got, gotFormat, err := Decode(path)
			require.NoError(t, err)
			assert.Equal(t, format, gotFormat)
			assert.Equal(t, img.Bounds(), got.Bounds())
			assert.Equal(t, pixel.At(img, 0, 0), pixel.At(got, 0, 0))
			assert.Equal(t, pixel.At(img, 2, 1), pixel.At(got, 2, 1))
		})
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, _, err := Decode(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, _, err := Decode(path)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrEncode)
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	err := Encode(filepath.Join(t.TempDir(), "x.webp"), pixel.NewBuffer(1, 1), "webp")
	assert.ErrorIs(t, err, ErrEncode)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestCanEncode(t *testing.T) {
	for _, f := range []string{"png", ".jpg", "JPEG", "gif", "bmp", "tif", "tiff"} {
		assert.True(t, CanEncode(f), f)
	}
	assert.False(t, CanEncode("webp"))
	assert.False(t, CanEncode(""))
}

func TestEncodeMissingDir(t *testing.T) {
	err := Encode(filepath.Join(t.TempDir(), "nope", "x.png"), pixel.NewBuffer(1, 1), "png")
	assert.ErrorIs(t, err, ErrEncode)
}

func TestFindImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "c_blur.png", "notes.txt", "d.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	got, err := FindImages(dir, []string{"blur", "sketch"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.JPG"),
		filepath.Join(dir, "d.webp"),
	}, got)
}
