package detection

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func whiteImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	return img
}

func lineBox(cx, cy, w, h float64) CandidateBox {
	return fitBox(rectPoints(int(cx-w/2), int(cy-h/2), int(w), int(h)))
}

func TestGroupZonesStack(t *testing.T) {
	boxes := []CandidateBox{
		lineBox(110, 40, 200, 5),
		lineBox(110, 48, 200, 5),
		lineBox(110, 56, 200, 5),
	}
	zones := GroupZones(boxes, DefaultSelectorOptions())
	if len(zones) != 1 {
		t.Fatalf("got %d zones, want 1", len(zones))
	}
	if n := len(zones[0].Boxes); n != 3 {
		t.Errorf("zone has %d boxes, want 3", n)
	}
	if zones[0].Score < 0.5 {
		t.Errorf("score = %v, want high for a clean stack", zones[0].Score)
	}
}

func TestGroupZonesRejectsSingles(t *testing.T) {
	boxes := []CandidateBox{lineBox(110, 40, 200, 5)}
	if zones := GroupZones(boxes, DefaultSelectorOptions()); len(zones) != 0 {
		t.Errorf("got %d zones from a single box", len(zones))
	}
}

func TestGroupZonesSplitsDistantLines(t *testing.T) {
	boxes := []CandidateBox{
		lineBox(110, 20, 200, 5),
		// Far below: the vertical skip limit keeps it out of the run.
		lineBox(110, 80, 200, 5),
	}
	if zones := GroupZones(boxes, DefaultSelectorOptions()); len(zones) != 0 {
		t.Errorf("distant lines grouped into %d zones", len(zones))
	}
}

// A stray box lying between two genuine lines must not cut the run short;
// the scan skips it and still pairs the lines around it.
func TestGroupZonesSkipsInterleavedNoise(t *testing.T) {
	boxes := []CandidateBox{
		lineBox(110, 40, 200, 5),
		lineBox(40, 44, 40, 5),
		lineBox(110, 48, 200, 5),
	}
	zones := GroupZones(boxes, DefaultSelectorOptions())
	if len(zones) != 1 {
		t.Fatalf("got %d zones, want 1", len(zones))
	}
	if n := len(zones[0].Boxes); n != 2 {
		t.Errorf("zone has %d boxes, want 2", n)
	}
}

func TestGroupZonesRejectsWidthMismatch(t *testing.T) {
	boxes := []CandidateBox{
		lineBox(110, 40, 200, 5),
		lineBox(110, 48, 80, 5),
	}
	if zones := GroupZones(boxes, DefaultSelectorOptions()); len(zones) != 0 {
		t.Errorf("mismatched widths grouped into %d zones", len(zones))
	}
}

func TestSelectROIExtractsRegion(t *testing.T) {
	// Mask at quarter resolution of an 880x240 original.
	orig := whiteImage(880, 240)
	boxes := []CandidateBox{
		lineBox(110, 40, 200, 5),
		lineBox(110, 48, 200, 5),
	}
	opts := DefaultSelectorOptions()
	roi := SelectROI(orig, boxes, 0.25, opts)
	if roi == nil {
		t.Fatal("no region selected")
	}
	if len(roi.Zone.Boxes) != 2 {
		t.Errorf("zone has %d boxes", len(roi.Zone.Boxes))
	}
	b := roi.Image.Bounds()
	// Zone spans x 10..210 and y 37..51 in mask pixels; with the margin
	// and the 4x upscale the crop lands near 840x96.
	if math.Abs(float64(b.Dx())-840) > 8 {
		t.Errorf("crop width = %d", b.Dx())
	}
	if math.Abs(float64(b.Dy())-96) > 8 {
		t.Errorf("crop height = %d", b.Dy())
	}
}

func TestSelectROINoBoxes(t *testing.T) {
	if roi := SelectROI(whiteImage(100, 100), nil, 1, DefaultSelectorOptions()); roi != nil {
		t.Error("expected nil region")
	}
}

func TestSelectROITilted(t *testing.T) {
	orig := whiteImage(880, 240)
	boxes := []CandidateBox{
		fitBox(tiltedPoints(110, 40, 200, 5, 0.1)),
		fitBox(tiltedPoints(112, 48, 200, 5, 0.1)),
	}
	roi := SelectROI(orig, boxes, 0.25, DefaultSelectorOptions())
	if roi == nil {
		t.Fatal("no region selected for tilted zone")
	}
	if roi.Image.Bounds().Empty() {
		t.Error("empty crop")
	}
}

// When two zones score alike, the lower one on the page wins.
func TestSelectROIPrefersLowerZone(t *testing.T) {
	orig := whiteImage(880, 400)
	upper := []CandidateBox{
		lineBox(110, 20, 200, 5),
		lineBox(110, 28, 200, 5),
	}
	lower := []CandidateBox{
		lineBox(110, 80, 200, 5),
		lineBox(110, 88, 200, 5),
	}
	roi := SelectROI(orig, append(upper, lower...), 0.25, DefaultSelectorOptions())
	if roi == nil {
		t.Fatal("no region selected")
	}
	if cy := meanCY(roi.Zone); cy < 60 {
		t.Errorf("selected zone at cy %v, want the lower one", cy)
	}
}
