package mrz

import (
	"encoding/json"
	"strconv"
)

// Record is the structured result of parsing one machine-readable zone.
//
// Field values are kept in their raw MRZ form (uppercase, '<' fillers
// preserved) except for the name, which is split into Surname and Names with
// fillers rendered as spaces. Dates stay in YYMMDD form; century resolution
// is left to the caller.
//
// The Valid* flags report the outcome of the individual check digits defined
// by the document's format. ValidScore is the fraction of those checks that
// passed, and Valid is true only when all of them did. ValidLineLengths and
// ValidDocType are informative only and do not affect the score.
type Record struct {
	Format Format `json:"mrz_type"`

	Type           string `json:"type"`
	Country        string `json:"country"`
	Number         string `json:"number"`
	Surname        string `json:"surname"`
	Names          string `json:"names"`
	Nationality    string `json:"nationality"`
	DateOfBirth    string `json:"date_of_birth"`
	Sex            string `json:"sex"`
	ExpirationDate string `json:"expiration_date"`
	PersonalNumber string `json:"personal_number,omitempty"`
	Optional1      string `json:"optional1,omitempty"`
	Optional2      string `json:"optional2,omitempty"`

	ValidNumber         bool `json:"valid_number"`
	ValidDateOfBirth    bool `json:"valid_date_of_birth"`
	ValidExpirationDate bool `json:"valid_expiration_date"`
	ValidPersonalNumber bool `json:"valid_personal_number"`
	ValidComposite      bool `json:"valid_composite"`

	ValidScore float64 `json:"valid_score"`
	Valid      bool    `json:"valid"`

	ValidLineLengths bool `json:"valid_line_lengths"`
	ValidDocType     bool `json:"valid_doc_type"`

	// RawText is the cleaned OCR text the record was parsed from.
	RawText string `json:"raw_text"`
	// Method records which recognition attempt produced the record
	// (direct, reversed, rescaled).
	Method string `json:"method,omitempty"`
}

// MarshalJSON renders the format by its conventional name.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// ToMap flattens the record into printable key/value pairs, mirroring the
// JSON field names. Empty optional fields are omitted.
func (r *Record) ToMap() map[string]string {
	m := map[string]string{
		"mrz_type":              r.Format.String(),
		"type":                  r.Type,
		"country":               r.Country,
		"number":                r.Number,
		"surname":               r.Surname,
		"names":                 r.Names,
		"nationality":           r.Nationality,
		"date_of_birth":         r.DateOfBirth,
		"sex":                   r.Sex,
		"expiration_date":       r.ExpirationDate,
		"valid_number":          strconv.FormatBool(r.ValidNumber),
		"valid_date_of_birth":   strconv.FormatBool(r.ValidDateOfBirth),
		"valid_expiration_date": strconv.FormatBool(r.ValidExpirationDate),
		"valid_composite":       strconv.FormatBool(r.ValidComposite),
		"valid_score":           strconv.FormatFloat(r.ValidScore, 'f', 2, 64),
		"valid":                 strconv.FormatBool(r.Valid),
	}
	if r.PersonalNumber != "" {
		m["personal_number"] = r.PersonalNumber
		m["valid_personal_number"] = strconv.FormatBool(r.ValidPersonalNumber)
	}
	if r.Optional1 != "" {
		m["optional1"] = r.Optional1
	}
	if r.Optional2 != "" {
		m["optional2"] = r.Optional2
	}
	if r.Method != "" {
		m["method"] = r.Method
	}
	return m
}
