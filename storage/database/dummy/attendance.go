package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendance {
		if rec.Date.Before(filter.StartDate) || rec.Date.After(filter.EndDate) {
			continue
		}
		if filter.StudentID != nil && rec.StudentID != *filter.StudentID {
			continue
		}
		if filter.ClassID != nil && rec.ClassID != *filter.ClassID {
			continue
		}
		r := *rec
		if std, ok := repo.db.students[r.StudentID]; ok {
			r.StudentName = std.Name
		}
		recs = append(recs, r)
	}

	orderings := append(append([]core.DBOrdering(nil), filter.Orderings...),
		core.DBOrdering{Field: "date", Ascending: true},
		core.DBOrdering{Field: "student_id", Ascending: true},
	)
	sort.SliceStable(recs, func(i, j int) bool {
		for _, ord := range orderings {
			var cmp int
			switch ord.Field {
			case "date":
				cmp = compareDates(recs[i].Date, recs[j].Date)
			case "student_id":
				cmp = recs[i].StudentID - recs[j].StudentID
			}
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return recs, nil
}

func compareDates(a, b core.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// UpsertRecords checks every record before writing any of them.
func (repo *attendanceRepository) UpsertRecords(_ context.Context, records ...attendance.Record) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, rec := range records {
		if err := repo.db.checkAttendance(rec); err != nil {
			return 0, err
		}
	}
	for _, rec := range records {
		repo.db.upsertAttendance(rec)
	}
	return len(records), nil
}

func (repo *attendanceRepository) StudentExists(_ context.Context, id int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	_, ok := repo.db.students[id]
	return ok, nil
}

func (repo *attendanceRepository) ClassExists(_ context.Context, id int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	_, ok := repo.db.classes[id]
	return ok, nil
}
