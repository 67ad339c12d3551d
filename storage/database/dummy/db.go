// Package dummydb is an in-memory database for local runs and tests.
package dummydb

import (
	"context"
	"sync"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/result"
	"github.com/trezcool/academia/core/student"
)

type attendanceKey struct {
	studentID int
	date      core.Date
}

type DB struct {
	sync.RWMutex
	pkCount int

	classes    map[int]*student.Class
	students   map[int]*student.Student
	attendance map[attendanceKey]*attendance.Record
	exams      map[int]*result.Exam
	results    map[int]*result.Record
}

func Open() (*DB, error) {
	db := new(DB)
	db.Reset()
	return db, nil
}

// Reset empties every table.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()

	db.classes = make(map[int]*student.Class)
	db.students = make(map[int]*student.Student)
	db.attendance = make(map[attendanceKey]*attendance.Record)
	db.exams = make(map[int]*result.Exam)
	db.results = make(map[int]*result.Record)
}

func (db *DB) Close() error { return nil }

func (db *DB) PingContext(context.Context) error { return nil }

// nextPK must be called with the lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

func (db *DB) CreateClass(c student.Class) student.Class {
	db.Lock()
	defer db.Unlock()

	if c.ID == 0 {
		c.ID = db.nextPK()
	}
	db.classes[c.ID] = &c
	return c
}

func (db *DB) CreateStudent(s student.Student) (student.Student, error) {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.classes[s.ClassID]; !ok {
		return student.Student{}, core.NewNotFoundError("class")
	}
	if s.Status == "" {
		s.Status = student.StatusActive
	}
	s.ID = db.nextPK()
	db.students[s.ID] = &s
	return s, nil
}

func (db *DB) CreateAttendance(rec attendance.Record) (attendance.Record, error) {
	db.Lock()
	defer db.Unlock()

	if err := db.checkAttendance(rec); err != nil {
		return attendance.Record{}, err
	}
	return db.upsertAttendance(rec), nil
}

func (db *DB) CreateExam(e result.Exam) (result.Exam, error) {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.classes[e.ClassID]; !ok {
		return result.Exam{}, core.NewNotFoundError("class")
	}
	e.ID = db.nextPK()
	db.exams[e.ID] = &e
	return e, nil
}

func (db *DB) CreateResult(r result.Record) (result.Record, error) {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.students[r.StudentID]; !ok {
		return result.Record{}, core.NewNotFoundError("student")
	}
	if _, ok := db.exams[r.ExamID]; !ok {
		return result.Record{}, core.NewNotFoundError("exam")
	}
	r.ID = db.nextPK()
	db.results[r.ID] = &r
	return r, nil
}

// GetStudent returns a copy of a student row.
func (db *DB) GetStudent(id int) (student.Student, bool) {
	db.RLock()
	defer db.RUnlock()

	if s, ok := db.students[id]; ok {
		return *s, true
	}
	return student.Student{}, false
}

// checkAttendance must be called with the lock held.
func (db *DB) checkAttendance(rec attendance.Record) error {
	if _, ok := db.students[rec.StudentID]; !ok {
		return core.NewNotFoundError("student")
	}
	if _, ok := db.classes[rec.ClassID]; !ok {
		return core.NewNotFoundError("class")
	}
	if !rec.Status.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}
	return nil
}

// upsertAttendance must be called with the lock held.
func (db *DB) upsertAttendance(rec attendance.Record) attendance.Record {
	key := attendanceKey{studentID: rec.StudentID, date: rec.Date}
	if existing, ok := db.attendance[key]; ok {
		existing.ClassID = rec.ClassID
		existing.Status = rec.Status
		return *existing
	}
	rec.ID = db.nextPK()
	db.attendance[key] = &rec
	return rec
}
