package volume

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// LoadStack reads a labeled volume from a directory of 16-bit grayscale
// PNG slices. Slices are ordered by the numeric part of their filenames,
// so "slice_2.png" sorts before "slice_10.png". PNG is used because label
// identity must survive the round-trip exactly; lossy formats would
// corrupt labels along region boundaries.
//
// All slices must share the dimensions of the first one.
func LoadStack(dir string) (*Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read slice directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".png" {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no PNG slices found in %s", dir)
	}

	// Numeric sort keeps the anatomical section order regardless of
	// zero-padding in the filenames.
	sort.Slice(names, func(i, j int) bool {
		return extractNumber(names[i]) < extractNumber(names[j])
	})

	var vol *Volume
	for z, name := range names {
		img, err := loadPNG(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load slice %s: %w", name, err)
		}

		bounds := img.Bounds()
		if vol == nil {
			vol = New(bounds.Dx(), bounds.Dy(), len(names))
		} else if bounds.Dx() != vol.Width || bounds.Dy() != vol.Height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d: %w",
				name, bounds.Dx(), bounds.Dy(), vol.Width, vol.Height, ErrSizeMismatch)
		}

		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				// 16-bit gray value used directly as the label ID.
				r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				vol.Set(x, y, z, float64(r))
			}
		}
	}

	return vol, nil
}

// SaveStack writes a volume as a sequence of 16-bit grayscale PNG slices,
// one per z position. Labels must fit in uint16.
func SaveStack(dir string, vol *Volume) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create slice directory: %w", err)
	}

	for z := 0; z < vol.Depth; z++ {
		img := image.NewGray16(image.Rect(0, 0, vol.Width, vol.Height))
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(vol.At(x, y, z))})
			}
		}

		name := filepath.Join(dir, fmt.Sprintf("%04d.png", z))
		if err := savePNG(name, img); err != nil {
			return fmt.Errorf("failed to save slice %d: %w", z, err)
		}
	}

	return nil
}

// extractNumber pulls the concatenated digits out of a filename, so that
// slices can be ordered numerically.
func extractNumber(filename string) int {
	numStr := ""
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}
	if numStr != "" {
		if num, err := strconv.Atoi(numStr); err == nil {
			return num
		}
	}
	return 0
}

func loadPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return png.Decode(file)
}

func savePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
