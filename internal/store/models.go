package store

import (
	"time"

	"github.com/arawak/annales/internal/catalog"
)

type exerciseRow struct {
	ID               int64          `db:"id"`
	Position         int            `db:"position"`
	ExternalID       catalog.Scalar `db:"external_id"`
	SubjectID        catalog.Scalar `db:"subject_id"`
	Year             catalog.Scalar `db:"year"`
	Session          string         `db:"session"`
	SubjectLabel     string         `db:"subject_label"`
	Code             string         `db:"code"`
	Exercise         catalog.Scalar `db:"exercise"`
	Points           catalog.Scalar `db:"points"`
	Raw              string         `db:"raw"`
	LocalSubjectFile string         `db:"local_subject_file"`
	PDFSubjectURL    string         `db:"pdf_subject_url"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (r *exerciseRow) toExercise() catalog.Exercise {
	return catalog.Exercise{
		ID:               r.ExternalID,
		SubjectID:        r.SubjectID,
		Year:             r.Year,
		Session:          r.Session,
		SubjectLabel:     r.SubjectLabel,
		Code:             r.Code,
		Exercise:         r.Exercise,
		Points:           r.Points,
		Raw:              r.Raw,
		LocalSubjectFile: r.LocalSubjectFile,
		PDFSubjectURL:    r.PDFSubjectURL,
	}
}

type topicRow struct {
	ExerciseID int64  `db:"exercise_id"`
	Topic      string `db:"topic"`
}

type correctionRow struct {
	ExerciseID int64  `db:"exercise_id"`
	URL        string `db:"url"`
	LocalFile  string `db:"local_file"`
	Label      string `db:"label"`
}

// ImportStats summarises an import.
type ImportStats struct {
	Exercises   int
	Tags        int
	Corrections int
}
