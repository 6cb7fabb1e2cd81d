// Package imaging provides the image processing steps of document
// recognition: loading, scaling, binarization and debug rendering.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward. Luminance grids ([][]float64 in
// [0,1]) and boolean masks are indexed row-first: grid[y][x].
//
// # Binarization
//
// Binarize implements a transform tuned to machine-readable print: a black
// tophat isolates small dark detail, a horizontal Sobel responds to the
// dense vertical strokes of OCR-B glyphs, a morphological closing fuses the
// responses into per-line bands, and Otsu's method thresholds the result.
// Photographs, guilloche patterns and large dark areas mostly cancel out,
// so the surviving mask components are good zone candidates.
//
// # Thread Safety
//
// All functions are stateless and safe to call concurrently on different
// images.
package imaging
