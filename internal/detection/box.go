package detection

import (
	"image"
	"math"
)

// angleSnap is the absolute angle in radians below which a fitted box is
// treated as perfectly horizontal. Scanner output is usually level and
// snapping avoids pointless sub-degree rotations downstream.
const angleSnap = 0.01

// CandidateBox is a rotated rectangle fitted around one connected component
// of a binarized image. Coordinates are in mask pixels, y growing downward.
//
// Angle is the rotation of the long axis from the horizontal, in radians,
// normalized to (-pi/2, pi/2]. Width measures along that axis, Height
// across it.
type CandidateBox struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`

	// PointCount is the number of component pixels the box was fitted to.
	PointCount int `json:"point_count"`
	// FillDensity is PointCount divided by the box area.
	FillDensity float64 `json:"fill_density"`

	points []image.Point
}

// fitBox computes the principal-axis bounding box of a point set.
//
// The axis direction comes from the covariance matrix of the points; the
// box extents are the projections of the points onto that axis and its
// perpendicular. Returns the zero box for an empty set.
func fitBox(points []image.Point) CandidateBox {
	n := len(points)
	if n == 0 {
		return CandidateBox{}
	}
	var mx, my float64
	for _, p := range points {
		mx += float64(p.X)
		my += float64(p.Y)
	}
	mx /= float64(n)
	my /= float64(n)

	var cxx, cyy, cxy float64
	for _, p := range points {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		cxx += dx * dx
		cyy += dy * dy
		cxy += dx * dy
	}
	angle := 0.5 * math.Atan2(2*cxy, cxx-cyy)
	angle = normalizeAngle(angle)
	if math.Abs(angle) <= angleSnap {
		angle = 0
	}

	u := [2]float64{math.Cos(angle), math.Sin(angle)}
	v := [2]float64{-u[1], u[0]}
	minA, maxA := math.Inf(1), math.Inf(-1)
	minB, maxB := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		a := dx*u[0] + dy*u[1]
		b := dx*v[0] + dy*v[1]
		minA = math.Min(minA, a)
		maxA = math.Max(maxA, a)
		minB = math.Min(minB, b)
		maxB = math.Max(maxB, b)
	}
	// A one-pixel-thin set still occupies one pixel of extent.
	w := maxA - minA + 1
	h := maxB - minB + 1
	if w < h {
		// The variance axis came out across the shape; swap so Width is
		// always the long side.
		w, h = h, w
		angle = normalizeAngle(angle + math.Pi/2)
		if math.Abs(angle) <= angleSnap {
			angle = 0
		}
	}
	box := CandidateBox{
		CX:         mx,
		CY:         my,
		Width:      w,
		Height:     h,
		Angle:      angle,
		PointCount: n,
		points:     points,
	}
	if w > 0 && h > 0 {
		box.FillDensity = float64(n) / (w * h)
	}
	return box
}

// normalizeAngle folds an angle into (-pi/2, pi/2].
func normalizeAngle(a float64) float64 {
	for a > math.Pi/2 {
		a -= math.Pi
	}
	for a <= -math.Pi/2 {
		a += math.Pi
	}
	return a
}

// Corners returns the box corner coordinates in mask pixels, in
// circular order.
func (b CandidateBox) Corners() [4][2]float64 {
	u := [2]float64{math.Cos(b.Angle), math.Sin(b.Angle)}
	v := [2]float64{-u[1], u[0]}
	hw, hh := b.Width/2, b.Height/2
	var out [4][2]float64
	signs := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, s := range signs {
		out[i] = [2]float64{
			b.CX + s[0]*hw*u[0] + s[1]*hh*v[0],
			b.CY + s[0]*hw*u[1] + s[1]*hh*v[1],
		}
	}
	return out
}

// Area returns the box area in mask pixels.
func (b CandidateBox) Area() float64 {
	return b.Width * b.Height
}

// merge refits a single box over the union of two components.
func (b CandidateBox) merge(o CandidateBox) CandidateBox {
	pts := make([]image.Point, 0, len(b.points)+len(o.points))
	pts = append(pts, b.points...)
	pts = append(pts, o.points...)
	return fitBox(pts)
}
