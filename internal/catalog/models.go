package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Scalar holds a catalog field that the source emits either as a JSON number
// or as a JSON string (year, exercise number, points). Filters compare its
// string form, so 5 and "5" are the same value.
type Scalar struct {
	s      string
	number bool
}

func String(s string) Scalar {
	return Scalar{s: s}
}

func Int(i int) Scalar {
	return Scalar{s: strconv.Itoa(i), number: true}
}

func (v Scalar) String() string { return v.s }

// IsZero reports whether the field was absent or null.
func (v Scalar) IsZero() bool { return v.s == "" }

func (v Scalar) MarshalJSON() ([]byte, error) {
	if v.s == "" {
		return []byte("null"), nil
	}
	if v.number {
		return []byte(v.s), nil
	}
	return json.Marshal(v.s)
}

func (v *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Scalar{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Scalar{s: s}
	case bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")):
		*v = Scalar{s: string(data)}
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("catalog: scalar %s: %w", data, err)
		}
		*v = Scalar{s: strconv.FormatFloat(f, 'f', -1, 64), number: true}
	}
	return nil
}

// Value stores the JSON form so that numbers and strings survive a round
// trip through a text column.
func (v Scalar) Value() (driver.Value, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a value written by Value. Plain text that is not JSON is kept
// as a string.
func (v *Scalar) Scan(src any) error {
	var data []byte
	switch t := src.(type) {
	case nil:
		*v = Scalar{}
		return nil
	case []byte:
		data = t
	case string:
		data = []byte(t)
	case int64:
		*v = Scalar{s: strconv.FormatInt(t, 10), number: true}
		return nil
	case float64:
		*v = Scalar{s: strconv.FormatFloat(t, 'f', -1, 64), number: true}
		return nil
	default:
		return fmt.Errorf("catalog: cannot scan %T into Scalar", src)
	}
	if err := v.UnmarshalJSON(data); err != nil {
		*v = Scalar{s: string(data)}
	}
	return nil
}

// Correction is one published correction of a subject.
type Correction struct {
	URL       string `json:"url,omitempty"`
	LocalFile string `json:"local_file,omitempty"`
	Label     string `json:"label,omitempty"`
}

// Exercise is one exercise of one exam subject.
type Exercise struct {
	ID               Scalar       `json:"id,omitzero"`
	SubjectID        Scalar       `json:"subject_id,omitzero"`
	Year             Scalar       `json:"year"`
	Session          string       `json:"session"`
	SubjectLabel     string       `json:"subject_label"`
	Code             string       `json:"code"`
	Exercise         Scalar       `json:"exercise"`
	Points           Scalar       `json:"points"`
	Topics           []string     `json:"topics"`
	Raw              string       `json:"raw"`
	LocalSubjectFile string       `json:"local_subject_file,omitempty"`
	PDFSubjectURL    string       `json:"pdf_subject_url,omitempty"`
	Corriges         []Correction `json:"corriges"`
}

// SelectableCorrections returns the corrections that can be opened, which
// are the ones carrying a url.
func (e *Exercise) SelectableCorrections() []Correction {
	var out []Correction
	for _, c := range e.Corriges {
		if strings.TrimSpace(c.URL) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CorrectionLabel is the label shown for the i-th selectable correction.
func CorrectionLabel(c Correction, i int) string {
	if c.Label != "" {
		return c.Label
	}
	return fmt.Sprintf("Corrigé %d", i+1)
}

// Title renders the one-line heading used by listings.
func (e *Exercise) Title() string {
	return fmt.Sprintf("%s — %s — %s — Ex %s (%s pts)", e.Year, e.Session, e.SubjectLabel, e.Exercise, e.Points)
}
