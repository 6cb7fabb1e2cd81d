package mrz

import "strings"

// Confusable substitution tables applied during OCR cleanup. At a position
// that must be alphabetic, digits are mapped back to the letters Tesseract
// most often mistakes them for, and vice versa at numeric positions.
// Positions that admit any character are left untouched.
var (
	digitToAlpha = map[byte]byte{
		'0': 'O', '1': 'I', '2': 'Z', '4': 'A', '5': 'S', '6': 'G', '8': 'B',
	}
	alphaToDigit = map[byte]byte{
		'B': '8', 'C': '0', 'D': '0', 'G': '6', 'I': '1',
		'O': '0', 'Q': '0', 'S': '5', 'Z': '2',
	}
)

// minLineLength is the shortest space-stripped line the cleaner will keep,
// unless the line carries the '<<' marker that only MRZ text contains.
const minLineLength = 20

// CleanOCR turns raw OCR engine output into candidate MRZ lines.
//
// Cleanup is intentionally conservative:
//   - spaces are removed (the MRZ alphabet has none),
//   - lines too short to be MRZ lines are dropped,
//   - everything is uppercased,
//   - if the surviving lines already determine a format, each character is
//     corrected against the per-position character class of that format
//     (e.g. an 'O' at a digits-only position becomes '0').
//
// The returned lines are not validated; feed them to Parse.
func CleanOCR(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.ReplaceAll(ln, " ", "")
		if len(ln) >= minLineLength || strings.Contains(ln, "<<") {
			lines = append(lines, strings.ToUpper(ln))
		}
	}
	f, err := Resolve(lines)
	if err != nil {
		return lines
	}
	lt := layouts[f]
	for i := range lines {
		if i < len(lt.classes) {
			lines[i] = fixLine(lines[i], lt.classes[i])
		}
	}
	return lines
}

// fixLine applies the class template to one line. Characters beyond the
// template (length drift) are passed through unchanged.
func fixLine(line, classes string) string {
	b := []byte(line)
	for i := range b {
		if i >= len(classes) {
			break
		}
		b[i] = fixChar(b[i], classes[i])
	}
	return string(b)
}

func fixChar(c, class byte) byte {
	switch class {
	case classAlpha, classAlphaFill:
		if r, ok := digitToAlpha[c]; ok {
			return r
		}
	case classNumeric, classNumericFill:
		if r, ok := alphaToDigit[c]; ok {
			return r
		}
	}
	return c
}
