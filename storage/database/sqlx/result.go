package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/result"
)

type examRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	ClassID      int         `db:"class_id"`
	TotalMarks   float64     `db:"total_marks"`
	PassingMarks float64     `db:"passing_marks"`
	AcademicYear null.String `db:"academic_year"`
}

type resultRow struct {
	ID            int         `db:"id"`
	StudentID     int         `db:"student_id"`
	ExamID        int         `db:"exam_id"`
	SubjectID     int         `db:"subject_id"`
	MarksObtained float64     `db:"marks_obtained"`
	TotalMarks    float64     `db:"total_marks"`
	AcademicYear  null.String `db:"academic_year"`
}

func toRecords(rows []resultRow) []result.Record {
	recs := make([]result.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, result.Record{
			ID:            r.ID,
			StudentID:     r.StudentID,
			ExamID:        r.ExamID,
			SubjectID:     r.SubjectID,
			MarksObtained: r.MarksObtained,
			TotalMarks:    r.TotalMarks,
			AcademicYear:  r.AcademicYear.String,
		})
	}
	return recs
}

const resultColumns = "r.id, r.student_id, r.exam_id, r.subject_id, r.marks_obtained, r.total_marks, r.academic_year"

type resultRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*resultRepository)(nil)

func NewResultRepository(db *sqlx.DB) result.Repository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) GetExam(ctx context.Context, id int) (result.Exam, error) {
	var row examRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT id, name, class_id, total_marks, passing_marks, academic_year FROM exams WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return result.Exam{}, result.ErrExamNotFound
		}
		return result.Exam{}, errors.Wrap(err, "selecting exam")
	}
	return result.Exam{
		ID:           row.ID,
		Name:         row.Name,
		ClassID:      row.ClassID,
		TotalMarks:   row.TotalMarks,
		PassingMarks: row.PassingMarks,
		AcademicYear: row.AcademicYear.String,
	}, nil
}

func (repo *resultRepository) QueryResults(ctx context.Context, filter result.Filter) ([]result.Record, error) {
	var w where
	w.add("r.exam_id = ?", filter.ExamID)
	if filter.ClassID != nil {
		w.add("s.class_id = ?", *filter.ClassID)
	}
	q := "SELECT " + resultColumns + " FROM results r JOIN students s ON s.id = r.student_id" +
		w.String() + " ORDER BY r.id"

	var rows []resultRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting results")
	}
	return toRecords(rows), nil
}

func (repo *resultRepository) QueryResultsByYear(ctx context.Context, year string) ([]result.Record, error) {
	var rows []resultRow
	q := "SELECT " + resultColumns + " FROM results r WHERE r.academic_year = $1 ORDER BY r.student_id, r.id"
	if err := repo.db.SelectContext(ctx, &rows, q, year); err != nil {
		return nil, errors.Wrap(err, "selecting results")
	}
	return toRecords(rows), nil
}

func (repo *resultRepository) CountEnrolledStudents(ctx context.Context, classID int) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM students WHERE class_id = $1", classID)
	return n, errors.Wrap(err, "counting students")
}

func (repo *resultRepository) ClassExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "classes", id)
}
