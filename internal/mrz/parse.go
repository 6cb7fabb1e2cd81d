package mrz

import (
	"strings"
	"time"
)

// confusables maps each MRZ character to the single character OCR most often
// mistakes it for. The pairs are symmetric so a repair can run in either
// direction depending on what the check digit demands.
var confusables = map[byte]byte{
	'0': 'O', 'O': '0',
	'1': 'I', 'I': '1',
	'2': 'Z', 'Z': '2',
	'5': 'S', 'S': '5',
	'6': 'G', 'G': '6',
	'8': 'B', 'B': '8',
}

// Parse resolves the format of the given MRZ lines and extracts a Record.
//
// Lines shorter than the format's nominal length are padded with fillers and
// longer lines are truncated, so OCR length drift within the Resolve
// tolerance still yields a parse. Before fields are extracted, every
// checked field that fails its check digit gets one repair attempt: the
// leftmost single confusable substitution that makes the check pass is
// written back into the line, so the composite check and the extracted
// value see the corrected character.
//
// Returns ErrFormatMismatch when the lines fit no known layout. A record
// with failing check digits is not an error; inspect Valid and ValidScore.
func Parse(lines []string) (*Record, error) {
	f, err := Resolve(lines)
	if err != nil {
		return nil, err
	}
	lt := layouts[f]

	rec := &Record{
		Format:           f,
		RawText:          strings.Join(lines, "\n"),
		ValidLineLengths: true,
	}
	buf := make([][]byte, lt.lineCount)
	for i := range buf {
		var ln string
		if i < len(lines) {
			ln = lines[i]
		}
		if len(ln) != lt.lineLen {
			rec.ValidLineLengths = false
		}
		buf[i] = padLine(ln, lt.lineLen)
	}
	rec.ValidDocType = strings.IndexByte(lt.docChars, buf[0][0]) >= 0

	// Check digits first: repairs mutate buf and must land before the
	// fields and the composite are read.
	passed, total := 0, 0
	for _, ck := range lt.checks {
		pos, ok := lt.fieldSpan(ck.field)
		if !ok {
			continue
		}
		valid := checkPasses(buf, pos, ck)
		if !valid {
			valid = repairField(buf, pos, ck)
		}
		setCheckFlag(rec, ck.field, valid)
		total++
		if valid {
			passed++
		}
	}
	if lt.composite != nil {
		var b strings.Builder
		for _, sp := range lt.composite {
			b.Write(buf[sp.line][sp.start:sp.end])
		}
		decl := buf[lt.compositeDigit.line][lt.compositeDigit.start]
		rec.ValidComposite = ComputeCheckDigit(b.String()) == string(decl)
		total++
		if rec.ValidComposite {
			passed++
		}
	}
	rec.ValidScore = float64(passed) / float64(total)
	rec.Valid = passed == total

	for _, fd := range lt.fields {
		val := string(buf[fd.pos.line][fd.pos.start:fd.pos.end])
		setField(rec, fd, val)
	}
	return rec, nil
}

// ParseOCR is Parse preceded by CleanOCR on raw engine output.
func ParseOCR(text string) (*Record, error) {
	return Parse(CleanOCR(text))
}

// fieldSpan looks up the span of a named field in the layout table.
func (lt *layout) fieldSpan(name string) (span, bool) {
	for _, fd := range lt.fields {
		if fd.name == name {
			return fd.pos, true
		}
	}
	return span{}, false
}

// checkPasses evaluates one check rule against the current line buffers.
func checkPasses(buf [][]byte, pos span, ck checkRule) bool {
	val := string(buf[pos.line][pos.start:pos.end])
	decl := string(buf[ck.digit.line][ck.digit.start])
	if ck.optional && strings.Trim(val, string(Filler)) == "" {
		// An absent optional field may carry '<' or '0' as its digit.
		return decl == string(Filler) || decl == "0"
	}
	if ck.date && !validDate(val) {
		return false
	}
	return ComputeCheckDigit(val) == decl
}

// repairField tries single confusable substitutions left to right and keeps
// the first one that satisfies the check digit. Reports whether a repair
// succeeded; on failure the buffer is unchanged.
func repairField(buf [][]byte, pos span, ck checkRule) bool {
	line := buf[pos.line]
	for i := pos.start; i < pos.end; i++ {
		alt, ok := confusables[line[i]]
		if !ok {
			continue
		}
		orig := line[i]
		line[i] = alt
		if checkPasses(buf, pos, ck) {
			return true
		}
		line[i] = orig
	}
	return false
}

// validDate reports whether s is a real YYMMDD calendar date.
func validDate(s string) bool {
	if len(s) != 6 {
		return false
	}
	_, err := time.Parse("060102", s)
	return err == nil
}

// padLine right-pads s with fillers to width n, truncating if longer.
func padLine(s string, n int) []byte {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = Filler
		}
	}
	return b
}

func setCheckFlag(rec *Record, field string, valid bool) {
	switch field {
	case "number":
		rec.ValidNumber = valid
	case "date_of_birth":
		rec.ValidDateOfBirth = valid
	case "expiration_date":
		rec.ValidExpirationDate = valid
	case "personal_number":
		rec.ValidPersonalNumber = valid
	}
}

func setField(rec *Record, fd field, val string) {
	switch fd.name {
	case "type":
		rec.Type = val
	case "country":
		rec.Country = val
	case "number":
		rec.Number = val
	case "name":
		rec.Surname, rec.Names = splitName(val)
	case "nationality":
		rec.Nationality = val
	case "date_of_birth":
		rec.DateOfBirth = val
	case "sex":
		rec.Sex = val
	case "expiration_date":
		rec.ExpirationDate = val
	case "personal_number":
		rec.PersonalNumber = val
	case "optional1":
		rec.Optional1 = val
	case "optional2":
		rec.Optional2 = val
	}
}

// splitName separates "SURNAME<<GIVEN<NAMES" into its two halves, turning
// fillers into spaces.
func splitName(v string) (surname, names string) {
	v = strings.TrimRight(v, string(Filler))
	if i := strings.Index(v, "<<"); i >= 0 {
		surname, names = v[:i], v[i+2:]
	} else {
		surname = v
	}
	surname = strings.TrimSpace(strings.ReplaceAll(surname, string(Filler), " "))
	names = strings.TrimSpace(strings.ReplaceAll(names, string(Filler), " "))
	return surname, names
}
