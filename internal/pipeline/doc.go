// Package pipeline wires zone detection, OCR and parsing into one
// recognition flow for images and PDFs.
//
// ReadFile and ReadImage process a single input; RunBatch fans a list of
// files out over a worker pool. The pipeline never treats "no zone found"
// as an error: a Result with a nil Record means the input was readable but
// carried no recognizable machine-readable zone. Errors are reserved for
// infrastructure problems such as unreadable files or a missing OCR
// engine.
package pipeline
