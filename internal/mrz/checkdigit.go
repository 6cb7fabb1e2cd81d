package mrz

// Filler is the '<' padding character used throughout MRZ fields.
const Filler = '<'

// checkWeights is the repeating weight cycle of the ICAO 9303 check digit.
var checkWeights = [3]int{7, 3, 1}

// charValue maps an MRZ character to its check-digit value: '0'-'9' map to
// 0-9, 'A'-'Z' to 10-35 and the filler '<' to 0. Any other character is
// reported as invalid.
func charValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	case c == Filler:
		return 0, true
	}
	return 0, false
}

// ComputeCheckDigit computes the ICAO 9303 check digit over s: each
// character's value is multiplied by the weight 7, 3 or 1 according to its
// position, and the sum is reduced modulo 10.
//
// The computation is deterministic and includes filler characters (value 0).
// For an empty string or a string containing characters outside the MRZ
// alphabet the empty string is returned, which never equals a declared
// digit and therefore reads as a failed check.
func ComputeCheckDigit(s string) string {
	if s == "" {
		return ""
	}
	sum := 0
	for i := 0; i < len(s); i++ {
		v, ok := charValue(s[i])
		if !ok {
			return ""
		}
		sum += v * checkWeights[i%3]
	}
	return string(rune('0' + sum%10))
}
