package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryStudents(context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) QueryClasses(context.Context) ([]student.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]student.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *studentRepository) LatestAttendanceDates(context.Context) (map[int]core.Date, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	latest := make(map[int]core.Date)
	for _, rec := range repo.db.attendance {
		if last, ok := latest[rec.StudentID]; !ok || rec.Date.After(last) {
			latest[rec.StudentID] = rec.Date
		}
	}
	return latest, nil
}

func (repo *studentRepository) ApplyMutation(_ context.Context, m student.Mutation) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.check(m); err != nil {
		return err
	}
	repo.apply(m)
	return nil
}

// ApplyMutations checks every mutation before applying any of them.
func (repo *studentRepository) ApplyMutations(_ context.Context, ms ...student.Mutation) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, m := range ms {
		if err := repo.check(m); err != nil {
			return err
		}
	}
	for _, m := range ms {
		repo.apply(m)
	}
	return nil
}

func (repo *studentRepository) check(m student.Mutation) error {
	if _, ok := repo.db.students[m.StudentID]; !ok {
		return errors.Wrapf(core.NewNotFoundError("student"), "updating student %d", m.StudentID)
	}
	if m.ClassID != nil {
		if _, ok := repo.db.classes[*m.ClassID]; !ok {
			return errors.Wrapf(core.NewNotFoundError("class"), "updating student %d", m.StudentID)
		}
	}
	return nil
}

func (repo *studentRepository) apply(m student.Mutation) {
	std := repo.db.students[m.StudentID]
	if m.ClassID != nil {
		std.ClassID = *m.ClassID
	}
	if m.AcademicYear != nil {
		std.AcademicYear = *m.AcademicYear
	}
	if m.Status != nil {
		std.Status = *m.Status
	}
}
