package detection

import (
	"image"
	"image/color"
	"math"
	"sort"

	disintegration "github.com/disintegration/imaging"
)

// SelectorOptions tunes how line boxes are grouped into one multi-line zone
// and which zone wins.
type SelectorOptions struct {
	// MinLines and MaxLines bound the number of stacked line boxes a zone
	// may consist of. Standard documents carry two or three lines.
	MinLines int
	MaxLines int
	// MinScore rejects zones whose plausibility score falls below it.
	MinScore float64
	// Margin is padding added around the extracted region, in mask pixels.
	Margin float64
	// MaxLineSkip is the largest vertical center distance between adjacent
	// lines, as a multiple of their average height.
	MaxLineSkip float64
}

// DefaultSelectorOptions returns the grouping configuration used by the
// recognition pipeline.
func DefaultSelectorOptions() SelectorOptions {
	return SelectorOptions{
		MinLines:    2,
		MaxLines:    4,
		MinScore:    0.1,
		Margin:      5,
		MaxLineSkip: 2.5,
	}
}

// Zone is a scored group of vertically stacked line boxes believed to form
// one machine-readable zone.
type Zone struct {
	Boxes []CandidateBox `json:"boxes"`
	Score float64        `json:"score"`
}

// GroupZones clusters boxes into runs of stacked, similarly shaped lines
// and scores each run. Zones are returned sorted by descending score.
//
// A zone's score combines three signals in [0, 1]: how plausible the line
// count is, how densely the boxes are filled with component pixels, and how
// consistent the line widths are. All must be decent for the product to
// clear the usual threshold.
func GroupZones(boxes []CandidateBox, opts SelectorOptions) []Zone {
	sorted := append([]CandidateBox(nil), boxes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CY < sorted[j].CY })

	var zones []Zone
	used := make([]bool, len(sorted))
	for i := range sorted {
		if used[i] {
			continue
		}
		run := []CandidateBox{sorted[i]}
		for j := i + 1; j < len(sorted) && len(run) < opts.MaxLines; j++ {
			if used[j] || !stacked(run[len(run)-1], sorted[j], opts) {
				// Noise between two genuine lines must not cut the
				// run short; keep scanning downward.
				continue
			}
			run = append(run, sorted[j])
		}
		if len(run) >= opts.MinLines {
			for k := range run {
				markUsed(sorted, used, run[k])
			}
			zones = append(zones, Zone{Boxes: run, Score: scoreRun(run)})
		}
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].Score > zones[j].Score })
	return zones
}

func markUsed(sorted []CandidateBox, used []bool, b CandidateBox) {
	for i := range sorted {
		if !used[i] && sorted[i].CX == b.CX && sorted[i].CY == b.CY {
			used[i] = true
			return
		}
	}
}

// stacked reports whether b reads as the line printed directly below a.
func stacked(a, b CandidateBox, opts SelectorOptions) bool {
	if a.Width <= 0 || b.Width <= 0 {
		return false
	}
	ratio := b.Width / a.Width
	if ratio < 0.75 || ratio > 1.33 {
		return false
	}
	hRatio := b.Height / a.Height
	if hRatio < 0.5 || hRatio > 2 {
		return false
	}
	if math.Abs(b.CX-a.CX) > 0.2*math.Max(a.Width, b.Width) {
		return false
	}
	avgH := (a.Height + b.Height) / 2
	gap := b.CY - a.CY
	return gap > 0 && gap < opts.MaxLineSkip*avgH
}

// scoreRun rates a run of stacked boxes.
func scoreRun(run []CandidateBox) float64 {
	countScore := 0.7
	if n := len(run); n == 2 || n == 3 {
		countScore = 1.0
	}
	density := 0.0
	minW, maxW := math.Inf(1), math.Inf(-1)
	for _, b := range run {
		density += b.FillDensity
		minW = math.Min(minW, b.Width)
		maxW = math.Max(maxW, b.Width)
	}
	density /= float64(len(run))
	consistency := 0.0
	if maxW > 0 {
		consistency = minW / maxW
	}
	return countScore * density * consistency
}

// ROI is the region of the original image selected for recognition.
type ROI struct {
	// Image is the leveled crop, at original resolution.
	Image image.Image
	// Zone is the mask-scale zone the crop was built from.
	Zone Zone
}

// SelectROI picks the best zone among the boxes and extracts the matching
// region from the original full-resolution image.
//
// The boxes live in mask coordinates; scale is the mask width divided by
// the original width, used to map the region back. When the winning zone
// is tilted, the original image is rotated to level the text before
// cropping.
//
// Returns nil when no zone clears opts.MinScore. Near-tied zones are broken
// toward the lower one, since documents carry the zone near the bottom.
func SelectROI(orig image.Image, boxes []CandidateBox, scale float64, opts SelectorOptions) *ROI {
	zones := GroupZones(boxes, opts)
	if len(zones) == 0 || zones[0].Score < opts.MinScore {
		return nil
	}
	best := zones[0]
	for _, z := range zones[1:] {
		if best.Score-z.Score < 0.05 && meanCY(z) > meanCY(best) {
			best = z
		}
	}

	enclosing := enclosingBox(best.Boxes)
	crop := extractLeveled(orig, enclosing, scale, opts.Margin)
	if crop == nil {
		return nil
	}
	return &ROI{Image: crop, Zone: best}
}

func meanCY(z Zone) float64 {
	sum := 0.0
	for _, b := range z.Boxes {
		sum += b.CY
	}
	return sum / float64(len(z.Boxes))
}

// enclosingBox fits one rotated box around all member boxes, reusing the
// mean member angle as the axis.
func enclosingBox(run []CandidateBox) CandidateBox {
	angle := 0.0
	for _, b := range run {
		angle += b.Angle
	}
	angle = normalizeAngle(angle / float64(len(run)))
	if math.Abs(angle) <= angleSnap {
		angle = 0
	}

	var cx, cy float64
	for _, b := range run {
		cx += b.CX
		cy += b.CY
	}
	cx /= float64(len(run))
	cy /= float64(len(run))

	u := [2]float64{math.Cos(angle), math.Sin(angle)}
	v := [2]float64{-u[1], u[0]}
	minA, maxA := math.Inf(1), math.Inf(-1)
	minB, maxB := math.Inf(1), math.Inf(-1)
	for _, b := range run {
		for _, c := range b.Corners() {
			dx, dy := c[0]-cx, c[1]-cy
			a := dx*u[0] + dy*u[1]
			bb := dx*v[0] + dy*v[1]
			minA = math.Min(minA, a)
			maxA = math.Max(maxA, a)
			minB = math.Min(minB, bb)
			maxB = math.Max(maxB, bb)
		}
	}
	return CandidateBox{
		CX:     cx + (minA+maxA)/2*u[0] + (minB+maxB)/2*v[0],
		CY:     cy + (minA+maxA)/2*u[1] + (minB+maxB)/2*v[1],
		Width:  maxA - minA,
		Height: maxB - minB,
		Angle:  angle,
	}
}

// extractLeveled maps a mask-scale box onto the original image, levels any
// tilt, and returns the crop. Returns nil when the mapped region leaves no
// pixels inside the image.
func extractLeveled(orig image.Image, box CandidateBox, scale float64, margin float64) image.Image {
	if scale <= 0 {
		scale = 1
	}
	inv := 1 / scale
	cx := box.CX * inv
	cy := box.CY * inv
	hw := (box.Width/2 + margin) * inv
	hh := (box.Height/2 + margin) * inv

	src := orig
	if box.Angle != 0 {
		deg := box.Angle * 180 / math.Pi
		rotated := disintegration.Rotate(orig, deg, color.NRGBA{255, 255, 255, 255})
		// Rotation by theta maps p to R(-theta)(p-c1)+c2 in pixel
		// coordinates, c1 and c2 being the old and new canvas centers.
		ob := orig.Bounds()
		rb := rotated.Bounds()
		c1x := float64(ob.Min.X) + float64(ob.Dx())/2
		c1y := float64(ob.Min.Y) + float64(ob.Dy())/2
		c2x := float64(rb.Min.X) + float64(rb.Dx())/2
		c2y := float64(rb.Min.Y) + float64(rb.Dy())/2
		sin, cos := math.Sin(box.Angle), math.Cos(box.Angle)
		dx, dy := cx-c1x, cy-c1y
		cx = cos*dx + sin*dy + c2x
		cy = -sin*dx + cos*dy + c2y
		src = rotated
	}

	rect := image.Rect(
		int(math.Floor(cx-hw)), int(math.Floor(cy-hh)),
		int(math.Ceil(cx+hw)), int(math.Ceil(cy+hh)),
	).Intersect(src.Bounds())
	if rect.Empty() {
		return nil
	}
	return disintegration.Crop(src, rect)
}
