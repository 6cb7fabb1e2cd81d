package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"
	"os"

	disintegration "github.com/disintegration/imaging"
)

// Load reads and decodes an image file.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats
//     are PNG, JPEG, and GIF.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the
//     source format (e.g. *image.NRGBA, *image.YCbCr).
//   - error: Non-nil if the file cannot be opened or decoded.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// LoadBytes decodes an image held in memory, e.g. one extracted from a PDF.
func LoadBytes(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Downscale resizes img so its width does not exceed maxWidth, preserving
// the aspect ratio. Images already narrow enough are returned as-is.
//
// Returns the (possibly unchanged) image and the applied scale factor, i.e.
// the ratio of the returned width to the original width. Callers use the
// factor to map coordinates found on the small image back onto the original.
func Downscale(img image.Image, maxWidth int) (image.Image, float64) {
	w := img.Bounds().Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img, 1.0
	}
	scaled := disintegration.Resize(img, maxWidth, 0, disintegration.Lanczos)
	return scaled, float64(scaled.Bounds().Dx()) / float64(w)
}

// Upscale resizes img so its width is at least minWidth, preserving the
// aspect ratio. Used to blow small regions up to a size OCR handles well.
func Upscale(img image.Image, minWidth int) image.Image {
	if img.Bounds().Dx() >= minWidth {
		return img
	}
	return disintegration.Resize(img, minWidth, 0, disintegration.Lanczos)
}

// ToGrid converts an image to a row-major grid of luminance values in
// [0, 1]. Row index is y, column index is x.
func ToGrid(img image.Image) [][]float64 {
	b := img.Bounds()
	grid := make([][]float64, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := make([]float64, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// ITU-R BT.601 luma on 16-bit channel values.
			row[x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 65535.0
		}
		grid[y] = row
	}
	return grid
}

// GridToGray renders a [0,1] luminance grid as an 8-bit grayscale image.
func GridToGray(grid [][]float64) *image.Gray {
	h := len(grid)
	w := 0
	if h > 0 {
		w = len(grid[0])
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := grid[y][x]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			out.SetGray(x, y, color.Gray{Y: uint8(math.Round(v * 255))})
		}
	}
	return out
}

// MaskFill reports the fraction of set cells in a boolean mask.
func MaskFill(mask [][]bool) float64 {
	total, set := 0, 0
	for _, row := range mask {
		for _, v := range row {
			total++
			if v {
				set++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(set) / float64(total)
}

// MeanLuma reports the average of a luminance grid. An almost-white scan
// (mean close to 1) suggests the downscaling step erased the text.
func MeanLuma(grid [][]float64) float64 {
	sum, n := 0.0, 0
	for _, row := range grid {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
