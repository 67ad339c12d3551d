package sqlxrepos

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/student"
)

type studentRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	ClassID      int         `db:"class_id"`
	AcademicYear null.String `db:"academic_year"`
	Status       string      `db:"status"`
}

type latestRow struct {
	StudentID int       `db:"student_id"`
	Date      core.Date `db:"date"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows,
		"SELECT id, name, class_id, academic_year, status FROM students ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, student.Student{
			ID:           r.ID,
			Name:         r.Name,
			ClassID:      r.ClassID,
			AcademicYear: r.AcademicYear.String,
			Status:       student.Status(r.Status),
		})
	}
	return students, nil
}

func (repo *studentRepository) QueryClasses(ctx context.Context) ([]student.Class, error) {
	var classes []student.Class
	err := repo.db.SelectContext(ctx, &classes, "SELECT id, name FROM classes ORDER BY id")
	return classes, errors.Wrap(err, "selecting classes")
}

func (repo *studentRepository) LatestAttendanceDates(ctx context.Context) (map[int]core.Date, error) {
	var rows []latestRow
	if err := repo.db.SelectContext(ctx, &rows,
		"SELECT student_id, MAX(date) AS date FROM attendance GROUP BY student_id"); err != nil {
		return nil, errors.Wrap(err, "selecting latest attendance")
	}
	latest := make(map[int]core.Date, len(rows))
	for _, r := range rows {
		latest[r.StudentID] = r.Date
	}
	return latest, nil
}

func (repo *studentRepository) ApplyMutation(ctx context.Context, m student.Mutation) error {
	return applyMutation(ctx, repo.db, m)
}

func (repo *studentRepository) ApplyMutations(ctx context.Context, ms ...student.Mutation) error {
	return inTx(ctx, repo.db, func(tx core.DBExecutor) error {
		for _, m := range ms {
			if err := applyMutation(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyMutation(ctx context.Context, exec core.DBExecutor, m student.Mutation) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if m.ClassID != nil {
		set("class_id", *m.ClassID)
	}
	if m.AcademicYear != nil {
		set("academic_year", *m.AcademicYear)
	}
	if m.Status != nil {
		set("status", string(*m.Status))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, m.StudentID)

	q := "UPDATE students SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	res, err := exec.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrapf(err, "updating student %d", m.StudentID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(core.NewNotFoundError("student"), "updating student %d", m.StudentID)
	}
	return nil
}
