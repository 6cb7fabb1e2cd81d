package imaging

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.png")
	src := strokeBandImage(40, 20, 5, 10)

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	img2, err := LoadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if img2.Bounds() != img.Bounds() {
		t.Errorf("bounds differ: %v vs %v", img2.Bounds(), img.Bounds())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBytesGarbage(t *testing.T) {
	if _, err := LoadBytes([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDownscale(t *testing.T) {
	img := uniformImage(1000, 500, 200)
	small, factor := Downscale(img, 250)
	if small.Bounds().Dx() != 250 {
		t.Errorf("width = %d, want 250", small.Bounds().Dx())
	}
	if small.Bounds().Dy() != 125 {
		t.Errorf("height = %d, want 125", small.Bounds().Dy())
	}
	if factor != 0.25 {
		t.Errorf("factor = %v, want 0.25", factor)
	}
}

func TestDownscaleNoop(t *testing.T) {
	img := uniformImage(200, 100, 200)
	same, factor := Downscale(img, 250)
	if same != img || factor != 1.0 {
		t.Errorf("narrow image should pass through, factor = %v", factor)
	}
}

func TestUpscale(t *testing.T) {
	img := uniformImage(100, 40, 200)
	big := Upscale(img, 1000)
	if big.Bounds().Dx() != 1000 || big.Bounds().Dy() != 400 {
		t.Errorf("bounds = %v", big.Bounds())
	}
	if same := Upscale(img, 50); same != image.Image(img) {
		t.Error("wide-enough image should pass through")
	}
}

func TestToGridValues(t *testing.T) {
	grid := ToGrid(uniformImage(8, 4, 255))
	if len(grid) != 4 || len(grid[0]) != 8 {
		t.Fatalf("shape = %dx%d", len(grid), len(grid[0]))
	}
	for _, row := range grid {
		for _, v := range row {
			if v < 0.99 || v > 1.0 {
				t.Fatalf("white pixel luma = %v", v)
			}
		}
	}
	if m := MeanLuma(grid); m < 0.99 {
		t.Errorf("MeanLuma = %v", m)
	}
}

func TestGridToGrayClamps(t *testing.T) {
	out := GridToGray([][]float64{{-1, 0, 0.5, 1, 2}})
	want := []uint8{0, 0, 128, 255, 255}
	for x, w := range want {
		if got := out.GrayAt(x, 0).Y; got != w {
			t.Errorf("pixel %d = %d, want %d", x, got, w)
		}
	}
}

func TestRenderBoxes(t *testing.T) {
	img := uniformImage(50, 50, 255)
	polys := [][4]image.Point{
		{{10, 10}, {40, 10}, {40, 20}, {10, 20}},
	}
	out := RenderBoxes(img, polys)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}
	c := out.NRGBAAt(10, 10)
	if c.R == 255 && c.G == 255 && c.B == 255 {
		t.Error("corner pixel was not painted")
	}
}
