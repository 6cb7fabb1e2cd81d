// Package mrz parses the machine-readable zone of travel documents as
// standardized by ICAO Doc 9303.
//
// The package is purely textual: it takes OCR output and produces a
// structured Record. Image handling and OCR live elsewhere; this keeps the
// parsing logic deterministic and trivially testable.
//
// # Formats
//
// Five fixed layouts are supported, identified by line count and width:
//
//	TD1   3 lines x 30   identity cards
//	TD2   2 lines x 36   identity cards
//	TD3   2 lines x 44   passports
//	MRVA  2 lines x 44   visas, format A
//	MRVB  2 lines x 36   visas, format B
//
// Resolve picks the layout from the shape of the text alone, tolerating a
// couple of characters of OCR length drift per line.
//
// # Processing steps
//
// CleanOCR removes spaces and junk lines from raw engine output and maps
// confusable characters to the class each position requires (a letter
// position cannot hold '0', so an OCR '0' there must have been an 'O').
// Parse then extracts the fixed-offset fields, verifies every check digit
// the layout declares, and attempts a single check-digit-guided character
// repair for each failing checked field.
//
// The resulting Record reports per-check flags, the fraction of checks that
// passed (ValidScore) and the overall Valid verdict.
package mrz
