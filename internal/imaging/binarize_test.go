package imaging

import (
	"image"
	"image/color"
	"testing"
)

// strokeBandImage builds a white image carrying a horizontal band of short
// vertical strokes, the texture machine-readable print produces.
func strokeBandImage(w, h, y0, y1 int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for y := y0; y < y1; y++ {
		for x := 4; x < w-4; x++ {
			if x%4 < 2 {
				img.SetGray(x, y, color.Gray{Y: 16})
			}
		}
	}
	return img
}

func uniformImage(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestBinarizeUniform(t *testing.T) {
	for _, v := range []uint8{0, 128, 255} {
		mask := Binarize(uniformImage(64, 32, v))
		if fill := MaskFill(mask); fill != 0 {
			t.Errorf("uniform %d: fill = %v, want 0", v, fill)
		}
	}
}

func TestBinarizeStrokeBand(t *testing.T) {
	const y0, y1 = 20, 36
	mask := Binarize(strokeBandImage(120, 60, y0, y1))
	if MaskFill(mask) == 0 {
		t.Fatal("stroke band produced an empty mask")
	}
	for y, row := range mask {
		for x, v := range row {
			if v && (y < y0-5 || y > y1+5) {
				t.Fatalf("set cell (%d,%d) far outside the stroke band", x, y)
			}
		}
	}
}

func TestBinarizeMaskShape(t *testing.T) {
	mask := Binarize(strokeBandImage(90, 40, 10, 20))
	if len(mask) != 40 {
		t.Fatalf("mask height = %d, want 40", len(mask))
	}
	for y, row := range mask {
		if len(row) != 90 {
			t.Fatalf("row %d width = %d, want 90", y, len(row))
		}
	}
}

func TestOtsuSeparatesBimodal(t *testing.T) {
	grid := [][]float64{
		{0.1, 0.1, 0.9, 0.9},
		{0.1, 0.1, 0.9, 0.9},
	}
	tr := otsu(grid)
	if tr <= 0.1 || tr >= 0.9 {
		t.Fatalf("threshold = %v, want between the modes", tr)
	}
	mask := thresholdGrid(grid, tr)
	for y := range mask {
		for x := range mask[y] {
			want := grid[y][x] > 0.5
			if mask[y][x] != want {
				t.Errorf("cell (%d,%d) = %v", x, y, mask[y][x])
			}
		}
	}
}

func TestBlackTophatWhiteInput(t *testing.T) {
	out := BlackTophat(uniformImage(32, 16, 255))
	b := out.Bounds()
	if b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("bounds = %v", b)
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if out.GrayAt(x, y).Y < 250 {
				t.Fatalf("pixel (%d,%d) = %d, want near white", x, y, out.GrayAt(x, y).Y)
			}
		}
	}
}

func TestMaskFill(t *testing.T) {
	mask := [][]bool{
		{true, false},
		{false, false},
	}
	if got := MaskFill(mask); got != 0.25 {
		t.Errorf("MaskFill = %v, want 0.25", got)
	}
	if got := MaskFill(nil); got != 0 {
		t.Errorf("MaskFill(nil) = %v, want 0", got)
	}
}
