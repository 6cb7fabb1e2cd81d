package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrEngineUnavailable is returned when the OCR backend cannot run at all,
// e.g. Tesseract is not installed. Callers should surface it to the user
// rather than treating it as "no text found".
var ErrEngineUnavailable = errors.New("ocr: engine unavailable")

// Engine recognizes text in an image. Implementations must be safe for
// concurrent use; the batch pipeline calls Recognize from several
// goroutines.
type Engine interface {
	// Recognize runs OCR over the whole image and returns the raw text,
	// newlines included. The context cancels a recognition in flight.
	Recognize(ctx context.Context, img image.Image) (string, error)
}
