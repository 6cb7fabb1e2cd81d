package mrz

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies one of the fixed MRZ layouts standardized by ICAO 9303.
//
// The set of layouts is closed: TD1 (ID cards, 3x30), TD2 (ID cards, 2x36),
// TD3 (passports, 2x44), MRVA (visas, 2x44) and MRVB (visas, 2x36).
type Format int

const (
	FormatUnknown Format = iota
	TD1
	TD2
	TD3
	MRVA
	MRVB
)

// String returns the conventional name of the format.
func (f Format) String() string {
	switch f {
	case TD1:
		return "TD1"
	case TD2:
		return "TD2"
	case TD3:
		return "TD3"
	case MRVA:
		return "MRVA"
	case MRVB:
		return "MRVB"
	}
	return "unknown"
}

// ErrFormatMismatch is returned when OCR output does not fit any known MRZ
// layout by line count and line length.
var ErrFormatMismatch = errors.New("mrz: text does not match any known format")

// FieldKind classifies how a fixed-width field is interpreted and which
// OCR confusable substitutions may legally apply to it.
type FieldKind int

const (
	// KindName holds "SURNAME<<GIVEN<NAMES"; fillers become word separators.
	KindName FieldKind = iota
	// KindNumber is a document number: alphanumeric plus filler.
	KindNumber
	// KindDate is a YYMMDD date.
	KindDate
	// KindSex is a single M/F/< character.
	KindSex
	// KindCountry is a 3-letter issuing-state or nationality code.
	KindCountry
	// KindOptional is free-form optional data (alnum plus filler).
	KindOptional
)

// span addresses the half-open character range [start,end) of one MRZ line.
type span struct {
	line  int
	start int
	end   int
}

// field is one fixed-offset entry of a layout's field table.
type field struct {
	name string
	kind FieldKind
	pos  span
}

// checkRule binds a field value to the position of its declared check digit.
type checkRule struct {
	field string
	digit span
	// date additionally requires the value to be a real calendar date
	date bool
	// optional allows an all-filler value with a '<' or '0' check digit
	// (the TD3 personal number is defined this way)
	optional bool
}

// layout is the immutable description of one MRZ format: geometry, field
// offsets, check-digit bindings and the per-position character classes used
// for OCR cleanup.
type layout struct {
	format    Format
	lineCount int
	lineLen   int
	// docChars are the characters permitted as the first character of line 1.
	docChars string
	fields   []field
	checks   []checkRule
	// composite lists the line ranges whose concatenation is protected by
	// the composite check digit; nil for formats without one (visas).
	composite      []span
	compositeDigit span
	// classes holds one template string per line; see classAlpha and friends.
	classes []string
}

// Per-position character classes, as used by the OCR cleaner:
//
//	a - strictly alphabetic
//	A - alphabetic or filler
//	n - strictly numeric
//	N - numeric or filler
//	* - anything (alphanumeric or filler)
const (
	classAlpha       = 'a'
	classAlphaFill   = 'A'
	classNumeric     = 'n'
	classNumericFill = 'N'
	classAny         = '*'
)

var layouts = map[Format]*layout{
	TD1: {
		format:    TD1,
		lineCount: 3,
		lineLen:   30,
		docChars:  "IAC",
		fields: []field{
			{"type", KindOptional, span{0, 0, 2}},
			{"country", KindCountry, span{0, 2, 5}},
			{"number", KindNumber, span{0, 5, 14}},
			{"optional1", KindOptional, span{0, 15, 30}},
			{"date_of_birth", KindDate, span{1, 0, 6}},
			{"sex", KindSex, span{1, 7, 8}},
			{"expiration_date", KindDate, span{1, 8, 14}},
			{"nationality", KindCountry, span{1, 15, 18}},
			{"optional2", KindOptional, span{1, 18, 29}},
			{"name", KindName, span{2, 0, 30}},
		},
		checks: []checkRule{
			{field: "number", digit: span{0, 14, 15}},
			{field: "date_of_birth", digit: span{1, 6, 7}, date: true},
			{field: "expiration_date", digit: span{1, 14, 15}, date: true},
		},
		composite:      []span{{0, 5, 30}, {1, 0, 7}, {1, 8, 15}, {1, 18, 29}},
		compositeDigit: span{1, 29, 30},
		classes: []string{
			"a*" + strings.Repeat("A", 3) + strings.Repeat("*", 9) + "N" + strings.Repeat("*", 15),
			strings.Repeat("n", 7) + "A" + strings.Repeat("n", 7) + strings.Repeat("A", 3) + strings.Repeat("*", 11) + "n",
			strings.Repeat("A", 30),
		},
	},
	TD2: {
		format:    TD2,
		lineCount: 2,
		lineLen:   36,
		docChars:  "ACI",
		fields: []field{
			{"type", KindOptional, span{0, 0, 2}},
			{"country", KindCountry, span{0, 2, 5}},
			{"name", KindName, span{0, 5, 36}},
			{"number", KindNumber, span{1, 0, 9}},
			{"nationality", KindCountry, span{1, 10, 13}},
			{"date_of_birth", KindDate, span{1, 13, 19}},
			{"sex", KindSex, span{1, 20, 21}},
			{"expiration_date", KindDate, span{1, 21, 27}},
			{"optional1", KindOptional, span{1, 28, 35}},
		},
		checks: []checkRule{
			{field: "number", digit: span{1, 9, 10}},
			{field: "date_of_birth", digit: span{1, 19, 20}, date: true},
			{field: "expiration_date", digit: span{1, 27, 28}, date: true},
		},
		composite:      []span{{1, 0, 10}, {1, 13, 20}, {1, 21, 35}},
		compositeDigit: span{1, 35, 36},
		classes: []string{
			"a" + strings.Repeat("A", 35),
			strings.Repeat("*", 9) + "n" + strings.Repeat("A", 3) + strings.Repeat("n", 7) + "A" + strings.Repeat("n", 7) + strings.Repeat("*", 7) + "n",
		},
	},
	TD3: {
		format:    TD3,
		lineCount: 2,
		lineLen:   44,
		docChars:  "P",
		fields: []field{
			{"type", KindOptional, span{0, 0, 2}},
			{"country", KindCountry, span{0, 2, 5}},
			{"name", KindName, span{0, 5, 44}},
			{"number", KindNumber, span{1, 0, 9}},
			{"nationality", KindCountry, span{1, 10, 13}},
			{"date_of_birth", KindDate, span{1, 13, 19}},
			{"sex", KindSex, span{1, 20, 21}},
			{"expiration_date", KindDate, span{1, 21, 27}},
			{"personal_number", KindOptional, span{1, 28, 42}},
		},
		checks: []checkRule{
			{field: "number", digit: span{1, 9, 10}},
			{field: "date_of_birth", digit: span{1, 19, 20}, date: true},
			{field: "expiration_date", digit: span{1, 27, 28}, date: true},
			{field: "personal_number", digit: span{1, 42, 43}, optional: true},
		},
		composite:      []span{{1, 0, 10}, {1, 13, 20}, {1, 21, 43}},
		compositeDigit: span{1, 43, 44},
		classes: []string{
			"a" + strings.Repeat("A", 43),
			strings.Repeat("*", 9) + "n" + strings.Repeat("A", 3) + strings.Repeat("n", 7) + "A" + strings.Repeat("n", 7) + strings.Repeat("*", 14) + strings.Repeat("n", 2),
		},
	},
	MRVA: {
		format:    MRVA,
		lineCount: 2,
		lineLen:   44,
		docChars:  "V",
		fields: []field{
			{"type", KindOptional, span{0, 0, 2}},
			{"country", KindCountry, span{0, 2, 5}},
			{"name", KindName, span{0, 5, 44}},
			{"number", KindNumber, span{1, 0, 9}},
			{"nationality", KindCountry, span{1, 10, 13}},
			{"date_of_birth", KindDate, span{1, 13, 19}},
			{"sex", KindSex, span{1, 20, 21}},
			{"expiration_date", KindDate, span{1, 21, 27}},
			{"optional1", KindOptional, span{1, 28, 44}},
		},
		checks: []checkRule{
			{field: "number", digit: span{1, 9, 10}},
			{field: "date_of_birth", digit: span{1, 19, 20}},
			{field: "expiration_date", digit: span{1, 27, 28}},
		},
		classes: []string{
			"a" + strings.Repeat("A", 43),
			strings.Repeat("*", 9) + "n" + strings.Repeat("A", 3) + strings.Repeat("n", 7) + "A" + strings.Repeat("n", 7) + strings.Repeat("*", 16),
		},
	},
	MRVB: {
		format:    MRVB,
		lineCount: 2,
		lineLen:   36,
		docChars:  "V",
		fields: []field{
			{"type", KindOptional, span{0, 0, 2}},
			{"country", KindCountry, span{0, 2, 5}},
			{"name", KindName, span{0, 5, 36}},
			{"number", KindNumber, span{1, 0, 9}},
			{"nationality", KindCountry, span{1, 10, 13}},
			{"date_of_birth", KindDate, span{1, 13, 19}},
			{"sex", KindSex, span{1, 20, 21}},
			{"expiration_date", KindDate, span{1, 21, 27}},
			{"optional1", KindOptional, span{1, 28, 36}},
		},
		checks: []checkRule{
			{field: "number", digit: span{1, 9, 10}},
			{field: "date_of_birth", digit: span{1, 19, 20}},
			{field: "expiration_date", digit: span{1, 27, 28}},
		},
		classes: []string{
			"a" + strings.Repeat("A", 35),
			strings.Repeat("*", 9) + "n" + strings.Repeat("A", 3) + strings.Repeat("n", 7) + "A" + strings.Repeat("n", 7) + strings.Repeat("*", 8),
		},
	},
}

// lengthTolerance is how far an OCR line length may drift from a layout's
// nominal length and still be considered compatible. OCR occasionally drops
// or inserts a character at line ends.
const lengthTolerance = 2

// Resolve determines which MRZ format the given lines belong to.
//
// Resolution uses only the shape of the text: the line count and the line
// lengths, compared against the format table within a small tolerance. The
// two-line layouts are further disambiguated by the leading 'V' that marks
// visa documents; when a line length is compatible with both a 36- and a
// 44-character layout, the longer one is preferred.
//
// Returns ErrFormatMismatch when no table entry fits.
func Resolve(lines []string) (Format, error) {
	switch len(lines) {
	case 3:
		for _, ln := range lines {
			if !lengthCompatible(len(ln), 30) {
				return FormatUnknown, fmt.Errorf("%w: 3 lines of length %d/%d/%d",
					ErrFormatMismatch, len(lines[0]), len(lines[1]), len(lines[2]))
			}
		}
		return TD1, nil
	case 2:
		visa := len(lines[0]) > 0 && (lines[0][0] == 'V' || lines[0][0] == 'v')
		long := lengthCompatible(len(lines[0]), 44) && lengthCompatible(len(lines[1]), 44)
		short := lengthCompatible(len(lines[0]), 36) && lengthCompatible(len(lines[1]), 36)
		switch {
		case long:
			// Prefer the longer layout when both are plausible.
			if visa {
				return MRVA, nil
			}
			return TD3, nil
		case short:
			if visa {
				return MRVB, nil
			}
			return TD2, nil
		}
		return FormatUnknown, fmt.Errorf("%w: 2 lines of length %d/%d",
			ErrFormatMismatch, len(lines[0]), len(lines[1]))
	}
	return FormatUnknown, fmt.Errorf("%w: %d lines", ErrFormatMismatch, len(lines))
}

func lengthCompatible(got, want int) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= lengthTolerance
}

// LineCount returns the number of MRZ lines the format defines.
func (f Format) LineCount() int {
	if lt, ok := layouts[f]; ok {
		return lt.lineCount
	}
	return 0
}

// LineLength returns the fixed per-line character count of the format.
func (f Format) LineLength() int {
	if lt, ok := layouts[f]; ok {
		return lt.lineLen
	}
	return 0
}
