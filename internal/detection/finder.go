package detection

import (
	"image"
	"math"
	"sort"
)

// FinderOptions tunes the connected-component box search. The defaults are
// calibrated for scans downscaled to roughly 250 pixels of width.
type FinderOptions struct {
	// MinPoints is the smallest component, in pixels, worth fitting.
	MinPoints int
	// MinArea is the smallest acceptable fitted box area.
	MinArea float64
	// MinAspect is the minimum width to height ratio. Machine-readable
	// lines are much wider than tall.
	MinAspect float64
	// MinHeightFrac and MaxHeightFrac bound the box height as a fraction
	// of the mask height.
	MinHeightFrac float64
	MaxHeightFrac float64
	// AngleTolerance is the largest angle difference, in radians, between
	// two boxes that may be merged as fragments of one printed line.
	AngleTolerance float64
	// MaxBoxes caps how many boxes are kept, largest area first.
	MaxBoxes int
}

// DefaultFinderOptions returns the finder configuration used by the
// recognition pipeline.
func DefaultFinderOptions() FinderOptions {
	return FinderOptions{
		MinPoints:      50,
		MinArea:        500,
		MinAspect:      5,
		MinHeightFrac:  0.01,
		MaxHeightFrac:  0.15,
		AngleTolerance: 0.1,
		MaxBoxes:       4,
	}
}

// FindCandidateBoxes extracts rotated boxes around the connected components
// of a binarized mask that look like single lines of machine print: wide,
// thin, and within a plausible height band.
//
// Fragments of one broken line (similar angle, lying on the same axis with
// a small gap) are merged back into a single box. Vertically stacked lines
// are deliberately left as separate boxes so the caller can group them into
// multi-line zones.
//
// The result is sorted by descending area and capped at MaxBoxes.
func FindCandidateBoxes(mask [][]bool, opts FinderOptions) []CandidateBox {
	h := len(mask)
	if h == 0 {
		return nil
	}
	w := len(mask[0])

	minHeight := math.Max(2, opts.MinHeightFrac*float64(h))
	maxHeight := opts.MaxHeightFrac * float64(h)

	var boxes []CandidateBox
	visited := make([][]bool, h)
	for y := range visited {
		visited[y] = make([]bool, w)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y][x] || visited[y][x] {
				continue
			}
			pts := floodCollect(mask, visited, x, y)
			if len(pts) < opts.MinPoints {
				continue
			}
			boxes = append(boxes, fitBox(pts))
		}
	}

	boxes = mergeLineFragments(boxes, opts)

	var kept []CandidateBox
	for _, b := range boxes {
		if b.Area() < opts.MinArea {
			continue
		}
		if b.Height <= 0 || b.Width/b.Height < opts.MinAspect {
			continue
		}
		if b.Height < minHeight || b.Height > maxHeight {
			continue
		}
		kept = append(kept, b)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Area() > kept[j].Area() })
	if opts.MaxBoxes > 0 && len(kept) > opts.MaxBoxes {
		kept = kept[:opts.MaxBoxes]
	}
	return kept
}

// floodCollect gathers one 8-connected component starting at (x, y),
// marking everything it touches as visited.
func floodCollect(mask, visited [][]bool, x, y int) []image.Point {
	h, w := len(mask), len(mask[0])
	var pts []image.Point
	stack := []image.Point{{X: x, Y: y}}
	visited[y][x] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pts = append(pts, p)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if mask[ny][nx] && !visited[ny][nx] {
					visited[ny][nx] = true
					stack = append(stack, image.Point{X: nx, Y: ny})
				}
			}
		}
	}
	return pts
}

// mergeLineFragments repeatedly joins box pairs that read as pieces of the
// same printed line until no pair qualifies.
func mergeLineFragments(boxes []CandidateBox, opts FinderOptions) []CandidateBox {
	for {
		merged := false
		for i := 0; i < len(boxes) && !merged; i++ {
			for j := i + 1; j < len(boxes); j++ {
				if !sameLine(boxes[i], boxes[j], opts.AngleTolerance) {
					continue
				}
				joined := boxes[i].merge(boxes[j])
				boxes[i] = joined
				boxes = append(boxes[:j], boxes[j+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			return boxes
		}
	}
}

// sameLine reports whether two boxes are horizontally adjacent fragments of
// one line: near-parallel, near-collinear, and separated along the shared
// axis by less than twice the taller height.
func sameLine(a, b CandidateBox, angleTol float64) bool {
	if math.Abs(normalizeAngle(a.Angle-b.Angle)) > angleTol {
		return false
	}
	maxH := math.Max(a.Height, b.Height)
	// Offset of b's center from a's axis.
	angle := (a.Angle + b.Angle) / 2
	dx := b.CX - a.CX
	dy := b.CY - a.CY
	across := math.Abs(-math.Sin(angle)*dx + math.Cos(angle)*dy)
	if across > 0.5*maxH {
		return false
	}
	along := math.Abs(math.Cos(angle)*dx + math.Sin(angle)*dy)
	gap := along - (a.Width+b.Width)/2
	return gap < 2*maxH
}
