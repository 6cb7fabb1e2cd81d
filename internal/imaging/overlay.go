package imaging

import (
	"image"
	"image/color"

	disintegration "github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RenderBoxes draws the outlines of quadrilaterals over a copy of img,
// cycling through well-separated hues so adjacent boxes stay tellable
// apart. Used by the ROI debugging output.
func RenderBoxes(img image.Image, polys [][4]image.Point) *image.NRGBA {
	out := disintegration.Clone(img)
	for i, poly := range polys {
		// Golden-angle hue stepping keeps consecutive colors distinct.
		c := colorful.Hsv(float64((i*137)%360), 0.9, 1.0)
		r, g, b := c.RGB255()
		col := color.NRGBA{R: r, G: g, B: b, A: 255}
		for j := 0; j < 4; j++ {
			drawLine(out, poly[j], poly[(j+1)%4], col)
		}
	}
	return out
}

// drawLine draws a 1px segment by sampling along its longer axis.
func drawLine(img *image.NRGBA, a, b image.Point, col color.NRGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		img.SetNRGBA(a.X, a.Y, col)
		return
	}
	for i := 0; i <= steps; i++ {
		x := a.X + dx*i/steps
		y := a.Y + dy*i/steps
		if image.Pt(x, y).In(img.Bounds()) {
			img.SetNRGBA(x, y, col)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
