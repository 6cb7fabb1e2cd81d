package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	disintegration "github.com/disintegration/imaging"

	"github.com/docsight/mrzscan/internal/detection"
	"github.com/docsight/mrzscan/internal/imaging"
	"github.com/docsight/mrzscan/internal/mrz"
	"github.com/docsight/mrzscan/internal/ocr"
	"github.com/docsight/mrzscan/internal/pdfimg"
)

// Options configures a recognition run.
type Options struct {
	// Engine performs the OCR step. Required.
	Engine ocr.Engine

	// MaxWidth is the working width for zone detection. Detection does
	// not need resolution, it needs shape; small inputs are fast.
	MaxWidth int
	// RetryMaxWidth is the working width for the second detection pass,
	// used when the first downscale washed the text out.
	RetryMaxWidth int
	// MinROIWidth is the width the selected region is upscaled to for
	// the rescaled OCR retry.
	MinROIWidth int

	Finder   detection.FinderOptions
	Selector detection.SelectorOptions
}

// DefaultOptions returns the standard configuration around the given
// engine.
func DefaultOptions(engine ocr.Engine) Options {
	return Options{
		Engine:        engine,
		MaxWidth:      250,
		RetryMaxWidth: 1000,
		MinROIWidth:   1050,
		Finder:        detection.DefaultFinderOptions(),
		Selector:      detection.DefaultSelectorOptions(),
	}
}

// minMaskFill is the mask density below which the first detection pass is
// considered washed out and retried at RetryMaxWidth.
const minMaskFill = 0.005

// Result is the outcome of one recognition run. Record is nil when no
// machine-readable zone was found or the found text fit no known format;
// the remaining fields still describe how far the run got.
type Result struct {
	// Record is the parsed zone, nil when none was recognized.
	Record *mrz.Record
	// ROI is the image region OCR ran on, nil when no zone was selected.
	ROI image.Image
	// RawText is the OCR output of the best attempt.
	RawText string
	// Mask is the working binary mask the candidate search ran on.
	Mask [][]bool
	// Boxes are the candidate line boxes found on the working mask.
	Boxes []detection.CandidateBox
	// ScaleFactor maps working-mask coordinates back to the input image.
	ScaleFactor float64
}

// ReadFile recognizes the machine-readable zone in an image or PDF file.
//
// PDF inputs contribute their first embedded raster image. Infrastructure
// failures (unreadable file, missing OCR engine, canceled context) return
// an error; an image in which no zone is found returns a Result with a nil
// Record and no error.
func ReadFile(ctx context.Context, path string, opts Options) (*Result, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		img, err = loadPDF(path)
	} else {
		img, err = imaging.Load(path)
	}
	if err != nil {
		return nil, err
	}
	return ReadImage(ctx, img, opts)
}

func loadPDF(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	raw, err := pdfimg.FirstImage(data)
	if err != nil {
		return nil, fmt.Errorf("no usable page image in %s: %w", filepath.Base(path), err)
	}
	return imaging.LoadBytes(raw)
}

// ReadImage recognizes the machine-readable zone in a decoded image.
//
// The image is downscaled for zone detection, the best zone is cut from
// the full-resolution input, and OCR plus parsing run over it with up to
// three retries: flipped 180 degrees when the text reads upside down,
// upscaled when the region is small, and contrast-enhanced as a last
// resort. The best-scoring parse wins.
func ReadImage(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ocr.ErrEngineUnavailable)
	}

	scaled, factor := imaging.Downscale(img, opts.MaxWidth)
	mask := imaging.Binarize(scaled)
	if imaging.MaskFill(mask) < minMaskFill && opts.RetryMaxWidth > opts.MaxWidth {
		// Nearly empty mask: fine print may not have survived the
		// downscale. Try again with more pixels.
		scaled, factor = imaging.Downscale(img, opts.RetryMaxWidth)
		mask = imaging.Binarize(scaled)
	}

	res := &Result{ScaleFactor: factor, Mask: mask}
	res.Boxes = detection.FindCandidateBoxes(mask, opts.Finder)
	roi := detection.SelectROI(img, res.Boxes, factor, opts.Selector)
	if roi == nil {
		return res, nil
	}
	res.ROI = roi.Image

	best, bestText, err := recognize(ctx, roi.Image, opts)
	if err != nil {
		return nil, err
	}
	res.Record = best
	res.RawText = bestText
	return res, nil
}

// attempt is one OCR-and-parse pass over a prepared region.
type attempt struct {
	method string
	img    image.Image
}

// recognize runs the retry ladder and returns the best parse, if any,
// along with the raw text of the attempt that produced it.
func recognize(ctx context.Context, region image.Image, opts Options) (*mrz.Record, string, error) {
	var (
		best     *mrz.Record
		bestText string
	)
	consider := func(rec *mrz.Record, text, method string) bool {
		if rec == nil {
			return false
		}
		rec.Method = method
		if best == nil || rec.ValidScore > best.ValidScore {
			best = rec
			bestText = text
		}
		return best.Valid
	}

	text, err := opts.Engine.Recognize(ctx, region)
	if err != nil {
		return nil, "", err
	}
	rec, _ := mrz.ParseOCR(text)
	if consider(rec, text, "direct") {
		return best, bestText, nil
	}
	if bestText == "" {
		bestText = text
	}

	queue := []attempt{}
	if looksReversed(text) {
		queue = append(queue, attempt{"reversed", disintegration.Rotate180(region)})
	}
	if region.Bounds().Dx() < opts.MinROIWidth {
		queue = append(queue, attempt{"rescaled", imaging.Upscale(region, opts.MinROIWidth)})
	}
	queue = append(queue, attempt{"enhanced", imaging.BlackTophat(region)})

	for _, a := range queue {
		text, err := opts.Engine.Recognize(ctx, a.img)
		if err != nil {
			return nil, "", err
		}
		rec, _ := mrz.ParseOCR(text)
		if consider(rec, text, a.method) {
			break
		}
	}
	return best, bestText, nil
}

// looksReversed reports whether OCR output suggests the region was read
// upside down: the filler '<' flips into '>'.
func looksReversed(text string) bool {
	if strings.Contains(text, ">>") {
		return true
	}
	return strings.Contains(text, ">") && !strings.Contains(text, "<")
}
