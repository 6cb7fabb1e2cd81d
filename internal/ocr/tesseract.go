package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// Whitelist is the character set machine-readable zones are printed in.
// Constraining Tesseract to it removes most lookalike errors up front.
const Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// Tesseract is an Engine backed by the system Tesseract installation via
// gosseract. The zero value is not usable; call NewTesseract.
type Tesseract struct {
	// Language is the Tesseract language code, "eng" by default. MRZ
	// glyphs are close enough to the English set that the standard
	// training data works well.
	Language string
}

// NewTesseract returns a Tesseract engine with default settings.
func NewTesseract() *Tesseract {
	return &Tesseract{Language: "eng"}
}

// Available verifies that the Tesseract libraries can be initialized.
//
// Returns nil when the engine is usable, or an error wrapping
// ErrEngineUnavailable describing what is missing.
func (t *Tesseract) Available() error {
	client := gosseract.NewClient()
	defer client.Close()
	if v := client.Version(); v == "" {
		return fmt.Errorf("%w: tesseract libraries not found", ErrEngineUnavailable)
	}
	return nil
}

// Recognize runs Tesseract over the image in single-block page segmentation
// mode with the MRZ character whitelist.
//
// gosseract consumes files, not in-memory images, so the image is written
// to a temporary PNG first and removed afterwards.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp("", "mrzscan-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := recognizeFile(tmpPath, t.Language)
		done <- result{text: text, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

// recognizeFile holds the actual gosseract calls so the goroutine above
// stays trivial.
func recognizeFile(path, language string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("%w: failed to set language: %v", ErrEngineUnavailable, err)
	}
	if err := client.SetWhitelist(Whitelist); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
