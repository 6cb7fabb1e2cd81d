// Package pdfimg pulls scanned pages out of PDF files.
//
// Identity documents frequently arrive as PDFs wrapping a single photo or
// scan. The package extracts the embedded raster images so the recognition
// pipeline can treat PDFs like any other input image.
package pdfimg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNoImage is returned for a well-formed PDF that embeds no raster image.
var ErrNoImage = errors.New("pdfimg: no embedded image found")

// ErrNotPDF is returned for input that does not start with a PDF header.
var ErrNotPDF = errors.New("pdfimg: input is not a PDF file")

// pdfHeader opens every PDF. pdfcpu's xref scan can spin on inputs that
// lack one (an empty reader in particular), so reject them up front.
var pdfHeader = []byte("%PDF-")

// FirstImage returns the encoded bytes of the first raster image embedded
// in the PDF, scanning pages front to back.
//
// The returned bytes are in the image's native encoding (typically JPEG or
// PNG) and can be handed straight to an image decoder. Returns ErrNoImage
// when no page embeds one.
func FirstImage(data []byte) (img []byte, err error) {
	if !bytes.HasPrefix(data, pdfHeader) {
		return nil, ErrNotPDF
	}

	// pdfcpu can panic on malformed cross-reference tables; contain it.
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("failed to extract PDF image: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read and validate PDF: %w", err)
	}

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			continue
		}
		// Map order is random; walk object numbers in order so the same
		// PDF always yields the same image.
		objNrs := make([]int, 0, len(images))
		for nr := range images {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)
		for _, nr := range objNrs {
			b, err := io.ReadAll(images[nr])
			if err != nil || len(b) == 0 {
				continue
			}
			return b, nil
		}
	}
	return nil, ErrNoImage
}
