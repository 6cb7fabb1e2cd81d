package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
)

// elementRadius is the radius of the structuring element used for the
// morphological steps, equivalent to a 5x5 square.
const elementRadius = 2.0

// Binarize highlights regions of small dark print on a light background and
// returns them as a boolean mask aligned with the input pixels.
//
// The transform runs in four steps:
//
//  1. black tophat: morphological closing of the grayscale image minus the
//     image itself, which isolates dark details smaller than the element;
//  2. absolute horizontal derivative (Sobel), responding to the dense
//     vertical strokes machine-readable print is made of;
//  3. a second closing, fusing per-stroke responses into solid line bands;
//  4. Otsu thresholding of the result.
//
// A uniform input produces an all-false mask. The mask is intended for
// connected-component analysis, not for display.
func Binarize(img image.Image) [][]bool {
	gray := effect.Grayscale(img)
	g := ToGrid(gray)

	closed := ToGrid(effect.Erode(effect.Dilate(gray, elementRadius), elementRadius))
	tophat := subtractClamped(closed, g)

	grad := horizontalGradient(tophat)

	gradImg := GridToGray(grad)
	fused := ToGrid(effect.Erode(effect.Dilate(gradImg, elementRadius), elementRadius))

	return thresholdGrid(fused, otsu(fused))
}

// subtractClamped computes max(a-b, 0) elementwise. The grids must have the
// same shape.
func subtractClamped(a, b [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for y := range a {
		row := make([]float64, len(a[y]))
		for x := range a[y] {
			d := a[y][x] - b[y][x]
			if d < 0 {
				d = 0
			}
			row[x] = d
		}
		out[y] = row
	}
	return out
}

// horizontalGradient applies the horizontal Sobel kernel and returns the
// absolute response normalized to [0, 1]. Border pixels are left at zero.
func horizontalGradient(grid [][]float64) [][]float64 {
	h := len(grid)
	w := 0
	if h > 0 {
		w = len(grid[0])
	}
	out := make([][]float64, h)
	for y := range out {
		out[y] = make([]float64, w)
	}
	maxV := 0.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := -grid[y-1][x-1] + grid[y-1][x+1] +
				-2*grid[y][x-1] + 2*grid[y][x+1] +
				-grid[y+1][x-1] + grid[y+1][x+1]
			v = math.Abs(v)
			out[y][x] = v
			if v > maxV {
				maxV = v
			}
		}
	}
	if maxV > 0 {
		for y := range out {
			for x := range out[y] {
				out[y][x] /= maxV
			}
		}
	}
	return out
}

// otsu picks the threshold maximizing between-class variance over a 256-bin
// histogram of the grid values, which must lie in [0, 1].
func otsu(grid [][]float64) float64 {
	const bins = 256
	var hist [bins]int
	total := 0
	for _, row := range grid {
		for _, v := range row {
			i := int(v * (bins - 1))
			if i < 0 {
				i = 0
			} else if i >= bins {
				i = bins - 1
			}
			hist[i]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	sumAll := 0.0
	for i, n := range hist {
		sumAll += float64(i) * float64(n)
	}
	var (
		best     = 0
		bestVar  = -1.0
		wBack    = 0
		sumBack  = 0.0
		variance float64
	)
	for t := 0; t < bins; t++ {
		wBack += hist[t]
		if wBack == 0 {
			continue
		}
		wFore := total - wBack
		if wFore == 0 {
			break
		}
		sumBack += float64(t) * float64(hist[t])
		mB := sumBack / float64(wBack)
		mF := (sumAll - sumBack) / float64(wFore)
		variance = float64(wBack) * float64(wFore) * (mB - mF) * (mB - mF)
		if variance > bestVar {
			bestVar = variance
			best = t
		}
	}
	// Bin i holds values in [i, i+1)/(bins-1). Return the winning bin's
	// upper edge so every value that hashed into it stays on the
	// background side of the strict comparison in thresholdGrid.
	return (float64(best) + 1) / float64(bins-1)
}

// thresholdGrid returns the mask of cells strictly above t.
func thresholdGrid(grid [][]float64, t float64) [][]bool {
	out := make([][]bool, len(grid))
	for y, row := range grid {
		r := make([]bool, len(row))
		for x, v := range row {
			r[x] = v > t
		}
		out[y] = r
	}
	return out
}

// BlackTophat exposes step one of Binarize on its own. Recognition retries
// use it to re-enhance a region whose first OCR pass produced garbage.
func BlackTophat(img image.Image) *image.Gray {
	gray := effect.Grayscale(img)
	g := ToGrid(gray)
	closed := ToGrid(effect.Erode(effect.Dilate(gray, elementRadius), elementRadius))
	tophat := subtractClamped(closed, g)
	// Invert so the extracted print reads dark on light, as OCR expects.
	for y := range tophat {
		for x := range tophat[y] {
			tophat[y][x] = 1 - tophat[y][x]
		}
	}
	return GridToGray(tophat)
}
