package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/academia/core/result"
)

type resultRepository struct {
	db *DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *DB) result.Repository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) GetExam(_ context.Context, id int) (result.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if exam, ok := repo.db.exams[id]; ok {
		return *exam, nil
	}
	return result.Exam{}, result.ErrExamNotFound
}

func (repo *resultRepository) query(keep func(r result.Record) bool) []result.Record {
	recs := make([]result.Record, 0)
	for _, r := range repo.db.results {
		if keep(*r) {
			recs = append(recs, *r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

func (repo *resultRepository) QueryResults(_ context.Context, filter result.Filter) ([]result.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(r result.Record) bool {
		if r.ExamID != filter.ExamID {
			return false
		}
		if filter.ClassID != nil {
			std, ok := repo.db.students[r.StudentID]
			return ok && std.ClassID == *filter.ClassID
		}
		return true
	}), nil
}

func (repo *resultRepository) QueryResultsByYear(_ context.Context, year string) ([]result.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(r result.Record) bool { return r.AcademicYear == year }), nil
}

func (repo *resultRepository) CountEnrolledStudents(_ context.Context, classID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, std := range repo.db.students {
		if std.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (repo *resultRepository) ClassExists(_ context.Context, id int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	_, ok := repo.db.classes[id]
	return ok, nil
}
