package imageio

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(80 * x), G: uint8(100 * y), B: 43, A: 255})
		}
	}
	return img
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.png", "c.JPG", "notes.txt", "jpg"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	names, err := ListImages(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.jpg"}, names)

	names, err = ListImages(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.jpg", "c.JPG"}, names)
}

func TestListImagesEmptyAndMissing(t *testing.T) {
	names, err := ListImages(t.TempDir(), false)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = ListImages(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)
}

func TestSaveLoadPNGRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	src := testImage()

	require.NoError(t, Save(path, src, DefaultEncodeOptions()))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), loaded.Bounds())
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, src.NRGBAAt(x, y), color.NRGBAModel.Convert(loaded.At(x, y)))
		}
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "out.png", entries[0].Name())
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, Save(path, testImage(), EncodeOptions{JPEGQuality: 90}))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), loaded.Bounds())
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	touch(t, path)

	require.NoError(t, Save(path, testImage(), DefaultEncodeOptions()))

	_, err := Load(path)
	assert.NoError(t, err)
}

func TestSaveUnsupportedFormatIsEncodeError(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "out.txt"), testImage(), DefaultEncodeOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncode))
}

func TestSaveMissingDirIsWriteError(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "out.png"), testImage(), DefaultEncodeOptions())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEncode))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	touch(t, path)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParsePNGCompression(t *testing.T) {
	tests := map[string]png.CompressionLevel{
		"":        png.DefaultCompression,
		"default": png.DefaultCompression,
		"speed":   png.BestSpeed,
		"BEST":    png.BestCompression,
		"none":    png.NoCompression,
	}
	for in, want := range tests {
		got, err := ParsePNGCompression(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePNGCompression("ultra")
	assert.Error(t, err)
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "modified", "rojo")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.True(t, Exists(dir))
}
