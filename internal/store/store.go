package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/arawak/annales/internal/catalog"
)

var ErrEmpty = errors.New("catalog is empty")

// Store persists the exercise catalog in MySQL. It also acts as a
// catalog.Source.
type Store struct {
	db *sqlx.DB
}

var _ catalog.Source = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ImportExercises replaces the stored catalog with exercises, keeping their
// order and their topics exactly as given.
func (s *Store) ImportExercises(ctx context.Context, exercises []catalog.Exercise) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM exercise_tag", "DELETE FROM correction", "DELETE FROM exercise", "DELETE FROM tag"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return stats, fmt.Errorf("clear catalog: %w", err)
		}
	}

	tagIDs := make(map[string]int64)
	for pos := range exercises {
		ex := &exercises[pos]
		res, err := tx.ExecContext(ctx, `INSERT INTO exercise (position, external_id, subject_id, year, session, subject_label, code, exercise, points, raw, local_subject_file, pdf_subject_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pos, ex.ID, ex.SubjectID, ex.Year, ex.Session, ex.SubjectLabel, ex.Code, ex.Exercise, ex.Points, ex.Raw, ex.LocalSubjectFile, ex.PDFSubjectURL,
		)
		if err != nil {
			return stats, fmt.Errorf("insert exercise %d: %w", pos, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return stats, err
		}
		if err := s.insertTopicsTx(ctx, tx, id, ex.Topics, tagIDs); err != nil {
			return stats, fmt.Errorf("insert topics of exercise %d: %w", pos, err)
		}
		for i, c := range ex.Corriges {
			if _, err := tx.ExecContext(ctx, "INSERT INTO correction (exercise_id, position, url, local_file, label) VALUES (?, ?, ?, ?, ?)",
				id, i, c.URL, c.LocalFile, c.Label); err != nil {
				return stats, fmt.Errorf("insert correction of exercise %d: %w", pos, err)
			}
			stats.Corrections++
		}
		stats.Exercises++
	}
	stats.Tags = len(tagIDs)

	if err := tx.Commit(); err != nil {
		return stats, err
	}
	return stats, nil
}

// insertTopicsTx stores every topic occurrence verbatim, in order. Blank and
// repeated topics are kept so that a reloaded catalog equals the imported one.
func (s *Store) insertTopicsTx(ctx context.Context, tx *sqlx.Tx, exerciseID int64, topics []string, tagIDs map[string]int64) error {
	for i, topic := range topics {
		var tagID sql.NullInt64
		if name := strings.TrimSpace(topic); name != "" {
			id, ok := tagIDs[name]
			if !ok {
				res, err := tx.ExecContext(ctx, "INSERT INTO tag (name) VALUES (?) ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)", name)
				if err != nil {
					return err
				}
				id, err = res.LastInsertId()
				if err != nil {
					return err
				}
				tagIDs[name] = id
			}
			tagID = sql.NullInt64{Int64: id, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO exercise_tag (exercise_id, position, tag_id, topic) VALUES (?, ?, ?, ?)", exerciseID, i, tagID, topic); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the stored exercises in import order.
func (s *Store) Load(ctx context.Context) ([]catalog.Exercise, error) {
	var rows []exerciseRow
	query := "SELECT id, position, external_id, subject_id, year, session, subject_label, code, exercise, points, raw, local_subject_file, pdf_subject_url, created_at FROM exercise ORDER BY position"
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	out := make([]catalog.Exercise, len(rows))
	index := make(map[int64]*catalog.Exercise, len(rows))
	for i := range rows {
		out[i] = rows[i].toExercise()
		index[rows[i].ID] = &out[i]
	}
	if err := s.attachTopics(ctx, index); err != nil {
		return nil, err
	}
	if err := s.attachCorrections(ctx, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachTopics(ctx context.Context, index map[int64]*catalog.Exercise) error {
	ids := keys(index)
	q, args, err := sqlx.In("SELECT exercise_id, topic FROM exercise_tag WHERE exercise_id IN (?) ORDER BY exercise_id, position", ids)
	if err != nil {
		return err
	}
	var rows []topicRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, r := range rows {
		ex := index[r.ExerciseID]
		ex.Topics = append(ex.Topics, r.Topic)
	}
	for _, ex := range index {
		if ex.Topics == nil {
			ex.Topics = []string{}
		}
	}
	return nil
}

func (s *Store) attachCorrections(ctx context.Context, index map[int64]*catalog.Exercise) error {
	ids := keys(index)
	q, args, err := sqlx.In("SELECT exercise_id, url, local_file, label FROM correction WHERE exercise_id IN (?) ORDER BY exercise_id, position", ids)
	if err != nil {
		return err
	}
	var rows []correctionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, r := range rows {
		ex := index[r.ExerciseID]
		ex.Corriges = append(ex.Corriges, catalog.Correction{URL: r.URL, LocalFile: r.LocalFile, Label: r.Label})
	}
	return nil
}

func keys(index map[int64]*catalog.Exercise) []int64 {
	out := make([]int64, 0, len(index))
	for id := range index {
		out = append(out, id)
	}
	return out
}
