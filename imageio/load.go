// Package imageio decodes image files and converts them into color grids.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	UnsupportedFormatError error = errors.New("Unsupported image format")
)

var supportedExtensions = map[string]struct{}{
	".jpg":  struct{}{},
	".jpeg": struct{}{},
	".png":  struct{}{},
	".gif":  struct{}{},
	".bmp":  struct{}{},
	".tif":  struct{}{},
	".tiff": struct{}{},
	".webp": struct{}{},
}

func IsSupported(path string) bool {
	_, exists := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return exists
}

func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err == image.ErrFormat {
		return nil, fmt.Errorf("%w: %s", UnsupportedFormatError, path)
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// List returns the supported image files directly inside dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Fit scales img down so that neither side exceeds maxSize, keeping its aspect
// ratio. Images that already fit, and a maxSize <= 0, return img unchanged.
func Fit(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	if maxSize <= 0 || (bounds.Dx() <= maxSize && bounds.Dy() <= maxSize) {
		return img
	}
	return resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Bilinear)
}
