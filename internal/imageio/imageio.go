// Package imageio reads, writes and lists the photos a batch works on.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// Extensions lists the file suffixes treated as images.
var Extensions = []string{".jpg", ".png"}

// ErrEncode marks failures of the image encoder as opposed to the filesystem.
var ErrEncode = errors.New("encode failed")

// DefaultJPEGQuality matches the quality most photo tools write by default.
const DefaultJPEGQuality = 95

// EncodeOptions controls how output images are written.
type EncodeOptions struct {
	JPEGQuality    int
	PNGCompression png.CompressionLevel
}

// DefaultEncodeOptions returns quality 95 JPEGs and default PNG compression.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		JPEGQuality:    DefaultJPEGQuality,
		PNGCompression: png.DefaultCompression,
	}
}

// ParsePNGCompression maps a compression name (default, speed, best, none)
// to a png.CompressionLevel.
func ParsePNGCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "speed", "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	case "none", "no":
		return png.NoCompression, nil
	default:
		return png.DefaultCompression, fmt.Errorf("invalid png compression %q (use default, speed, best, none)", s)
	}
}

// IsImageName reports whether name ends in one of Extensions. With anyCase
// the comparison ignores letter case.
func IsImageName(name string, anyCase bool) bool {
	if anyCase {
		name = strings.ToLower(name)
	}
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ListImages returns the names of regular image files directly inside dir,
// sorted by name. Subdirectories are not descended into.
func ListImages(dir string, anyCase bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if IsImageName(e.Name(), anyCase) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// Load decodes the image at path, applying any EXIF orientation.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save encodes img in the format implied by the extension of path. The data
// goes to a temporary file next to path that is renamed into place once
// complete, so path never holds a partial image. Encoder failures wrap
// ErrEncode.
func Save(path string, img image.Image, opts EncodeOptions) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // nolint:errcheck // no-op after a successful rename

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	if err := imaging.Encode(tmp, img, format,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(opts.PNGCompression),
	); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	return nil
}
