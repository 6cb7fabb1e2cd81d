// Package ocr recognizes machine-readable text in document regions.
//
// The package defines the Engine interface the recognition pipeline is
// built against, plus two implementations: Tesseract (via gosseract/v2)
// for real use and Static for tests.
//
// # Prerequisites
//
// The Tesseract engine requires the system libraries and English training
// data:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Use (*Tesseract).Available to check the installation; a missing one
// yields an error wrapping ErrEngineUnavailable.
//
// # Recognition settings
//
// Machine-readable zones use a 37-character alphabet (A-Z, 0-9, '<') in a
// single printed block, so the engine runs with that whitelist and the
// single-block page segmentation mode. Both settings matter: without the
// whitelist Tesseract happily reads '<' runs as punctuation soup.
//
// # Temporary files
//
// Tesseract consumes image files. Recognize writes its input to a
// temporary PNG and removes it when done; the system temporary directory
// needs room for one region-sized image per concurrent recognition.
package ocr
