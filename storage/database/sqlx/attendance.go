package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
)

var attendanceOrderings = map[string]string{
	"date":       "a.date",
	"student_id": "a.student_id",
}

type attendanceRow struct {
	ID          int         `db:"id"`
	StudentID   int         `db:"student_id"`
	ClassID     int         `db:"class_id"`
	Date        core.Date   `db:"date"`
	Status      string      `db:"status"`
	StudentName null.String `db:"student_name"`
}

func (r attendanceRow) toRecord() attendance.Record {
	return attendance.Record{
		ID:          r.ID,
		StudentID:   r.StudentID,
		ClassID:     r.ClassID,
		Date:        r.Date,
		Status:      attendance.Status(r.Status),
		StudentName: r.StudentName.String,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	var w where
	w.add("a.date >= ?", filter.StartDate)
	w.add("a.date <= ?", filter.EndDate)
	if filter.StudentID != nil {
		w.add("a.student_id = ?", *filter.StudentID)
	}
	if filter.ClassID != nil {
		w.add("a.class_id = ?", *filter.ClassID)
	}

	q := `SELECT a.id, a.student_id, a.class_id, a.date, a.status, s.name AS student_name
		FROM attendance a LEFT JOIN students s ON s.id = a.student_id` +
		w.String() +
		orderBy(filter.Orderings, attendanceOrderings, "a.date ASC", "a.student_id ASC")

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	recs := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.toRecord())
	}
	return recs, nil
}

func (repo *attendanceRepository) UpsertRecords(ctx context.Context, records ...attendance.Record) (int, error) {
	var n int
	err := inTx(ctx, repo.db, func(tx core.DBExecutor) error {
		for _, rec := range records {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO attendance (student_id, class_id, date, status) VALUES ($1, $2, $3, $4)
				ON CONFLICT (student_id, date) DO UPDATE SET class_id = EXCLUDED.class_id, status = EXCLUDED.status`,
				rec.StudentID, rec.ClassID, rec.Date, string(rec.Status),
			)
			if err != nil {
				return errors.Wrapf(err, "upserting attendance of student %d", rec.StudentID)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (repo *attendanceRepository) StudentExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "students", id)
}

func (repo *attendanceRepository) ClassExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "classes", id)
}
