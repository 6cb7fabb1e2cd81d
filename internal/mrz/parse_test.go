package mrz

import (
	"errors"
	"testing"
)

// ICAO 9303 specimen documents, one per layout.
var (
	td3Lines = []string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<",
		"L898902C<3UTO6908061F9406236ZE184226B<<<<<14",
	}
	td1Lines = []string{
		"IDD<<T220001293<<<<<<<<<<<<<<<",
		"6408125<2010315D<<<<<<<<<<<<<4",
		"MUSTERMANN<<ERIKA<<<<<<<<<<<<<",
	}
	td2Lines = []string{
		"I<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<",
		"D231458907UTO7408122F1204159<<<<<<<6",
	}
	mrvaLines = []string{
		"V<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L8988901C4XXX4009078F96121096ZE184226B<<<<<<",
	}
)

func TestParseTD3(t *testing.T) {
	rec, err := Parse(td3Lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Format != TD3 {
		t.Fatalf("format = %v, want TD3", rec.Format)
	}
	want := map[string]string{
		"type":            "P<",
		"country":         "UTO",
		"surname":         "ERIKSSON",
		"names":           "ANNA MARIA",
		"number":          "L898902C<",
		"nationality":     "UTO",
		"date_of_birth":   "690806",
		"sex":             "F",
		"expiration_date": "940623",
		"personal_number": "ZE184226B<<<<<",
	}
	got := map[string]string{
		"type":            rec.Type,
		"country":         rec.Country,
		"surname":         rec.Surname,
		"names":           rec.Names,
		"number":          rec.Number,
		"nationality":     rec.Nationality,
		"date_of_birth":   rec.DateOfBirth,
		"sex":             rec.Sex,
		"expiration_date": rec.ExpirationDate,
		"personal_number": rec.PersonalNumber,
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %q, want %q", k, got[k], w)
		}
	}
	if !rec.Valid || rec.ValidScore != 1.0 {
		t.Errorf("valid = %v score = %v, want all checks passing", rec.Valid, rec.ValidScore)
	}
	if !rec.ValidNumber || !rec.ValidDateOfBirth || !rec.ValidExpirationDate ||
		!rec.ValidPersonalNumber || !rec.ValidComposite {
		t.Errorf("check flags: %+v", rec)
	}
	// The specimen's first line is one character short of 44.
	if rec.ValidLineLengths {
		t.Error("ValidLineLengths should report the short first line")
	}
	if !rec.ValidDocType {
		t.Error("ValidDocType should accept 'P'")
	}
}

func TestParseTD1(t *testing.T) {
	rec, err := Parse(td1Lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Format != TD1 {
		t.Fatalf("format = %v, want TD1", rec.Format)
	}
	if rec.Surname != "MUSTERMANN" || rec.Names != "ERIKA" {
		t.Errorf("name = %q / %q", rec.Surname, rec.Names)
	}
	if rec.Number != "T22000129" {
		t.Errorf("number = %q", rec.Number)
	}
	if rec.DateOfBirth != "640812" || rec.ExpirationDate != "201031" {
		t.Errorf("dates = %q / %q", rec.DateOfBirth, rec.ExpirationDate)
	}
	if rec.Nationality != "D<<" {
		t.Errorf("nationality = %q", rec.Nationality)
	}
	if rec.Sex != "<" {
		t.Errorf("sex = %q", rec.Sex)
	}
	// Optional data keeps its fixed-width raw form, fillers included.
	if rec.Optional1 != "<<<<<<<<<<<<<<<" || rec.Optional2 != "<<<<<<<<<<<" {
		t.Errorf("optionals = %q / %q, want raw filler runs", rec.Optional1, rec.Optional2)
	}
	if !rec.Valid || rec.ValidScore != 1.0 {
		t.Errorf("valid = %v score = %v", rec.Valid, rec.ValidScore)
	}
	if !rec.ValidComposite {
		t.Error("composite check should pass")
	}
}

func TestParseTD2(t *testing.T) {
	rec, err := Parse(td2Lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Format != TD2 {
		t.Fatalf("format = %v, want TD2", rec.Format)
	}
	if rec.Surname != "ERIKSSON" || rec.Names != "ANNA MARIA" {
		t.Errorf("name = %q / %q", rec.Surname, rec.Names)
	}
	if rec.Number != "D23145890" {
		t.Errorf("number = %q", rec.Number)
	}
	if !rec.Valid || rec.ValidScore != 1.0 {
		t.Errorf("valid = %v score = %v", rec.Valid, rec.ValidScore)
	}
}

func TestParseMRVA(t *testing.T) {
	rec, err := Parse(mrvaLines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Format != MRVA {
		t.Fatalf("format = %v, want MRVA", rec.Format)
	}
	if rec.Number != "L8988901C" || rec.Nationality != "XXX" {
		t.Errorf("number = %q nationality = %q", rec.Number, rec.Nationality)
	}
	if rec.DateOfBirth != "400907" || rec.ExpirationDate != "961210" {
		t.Errorf("dates = %q / %q", rec.DateOfBirth, rec.ExpirationDate)
	}
	// Visas define no composite digit: three checks total.
	if !rec.Valid || rec.ValidScore != 1.0 {
		t.Errorf("valid = %v score = %v", rec.Valid, rec.ValidScore)
	}
	if rec.ValidComposite {
		t.Error("MRVA has no composite check")
	}
}

// A single confusable OCR error in a checked field must be repaired using
// the check digit, and the repaired value must flow into the composite.
func TestParseRepairsConfusable(t *testing.T) {
	corrupt := []string{
		td3Lines[0],
		"L8989O2C<3UTO6908061F9406236ZE184226B<<<<<14",
	}
	rec, err := Parse(corrupt)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Number != "L898902C<" {
		t.Errorf("number = %q, want repaired L898902C<", rec.Number)
	}
	if !rec.ValidNumber || !rec.ValidComposite {
		t.Errorf("repair did not restore checks: %+v", rec)
	}
	if rec.ValidScore != 1.0 {
		t.Errorf("score = %v, want 1.0", rec.ValidScore)
	}
}

// Repair must not fire when no single substitution satisfies the digit.
func TestParseUnrepairable(t *testing.T) {
	corrupt := []string{
		td3Lines[0],
		"X898902C<3UTO6908061F9406236ZE184226B<<<<<14",
	}
	rec, err := Parse(corrupt)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ValidNumber {
		t.Error("number check should fail")
	}
	if rec.Valid {
		t.Error("record should not be fully valid")
	}
	if rec.ValidScore >= 1.0 {
		t.Errorf("score = %v", rec.ValidScore)
	}
	if rec.Number != "X898902C<" {
		t.Errorf("value must stay untouched, got %q", rec.Number)
	}
}

// Parsing is idempotent: feeding a parsed record's lines back in yields the
// same fields and score.
func TestParseIdempotent(t *testing.T) {
	first, err := Parse(td3Lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse(td3Lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if first.ValidScore != second.ValidScore || first.Number != second.Number {
		t.Errorf("reparse drift: %v vs %v", first, second)
	}
}

// A date field holding an impossible calendar date fails its check even
// when the weighted digit happens to match.
func TestParseRejectsImpossibleDate(t *testing.T) {
	// 991332: month 13. Digit for "991332" is computed so it matches.
	d := ComputeCheckDigit("991332")
	line2 := "L898902C<3UTO" + "991332" + d + "F9406236ZE184226B<<<<<14"
	rec, err := Parse([]string{td3Lines[0], line2})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ValidDateOfBirth {
		t.Error("month 13 should not validate")
	}
}

func TestParseFormatMismatch(t *testing.T) {
	_, err := Parse([]string{"TOO<SHORT<<"})
	if !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("err = %v, want ErrFormatMismatch", err)
	}
}

// Absent TD3 personal number passes with a '<' or '0' check digit.
func TestParseOptionalPersonalNumber(t *testing.T) {
	for _, digit := range []string{"<", "0"} {
		line2 := "L898902C<3UTO6908061F9406236" + "<<<<<<<<<<<<<<" + digit
		line2 += ComputeCheckDigit(line2[0:10] + line2[13:20] + line2[21:43])
		rec, err := Parse([]string{td3Lines[0], line2})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !rec.ValidPersonalNumber {
			t.Errorf("digit %q: empty personal number should pass", digit)
		}
	}
}

func TestRecordToMap(t *testing.T) {
	rec, err := Parse(td3Lines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := rec.ToMap()
	if m["mrz_type"] != "TD3" || m["surname"] != "ERIKSSON" {
		t.Errorf("map = %v", m)
	}
	if m["valid_score"] != "1.00" || m["valid"] != "true" {
		t.Errorf("score rendering: %q / %q", m["valid_score"], m["valid"])
	}
}
