package testutil

import (
	"testing"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/result"
	"github.com/trezcool/academia/core/student"
	dummydb "github.com/trezcool/academia/storage/database/dummy"
)

// NewConfig returns the config of a quiet test app backed by the dummy DB.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Database.Engine = "dummy"
	conf.Server.DisableReqLogs = true
	conf.ReportRecipients = nil
	return conf
}

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func PrepareDB(t *testing.T) *dummydb.DB {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateClass(t *testing.T, db *dummydb.DB, name string) student.Class {
	t.Helper()
	return db.CreateClass(student.Class{Name: name})
}

func CreateStudent(
	t *testing.T,
	db *dummydb.DB,
	name string,
	classID int,
	year string,
	status ...student.Status,
) student.Student {
	t.Helper()
	s := student.Student{
		Name:         name,
		ClassID:      classID,
		AcademicYear: year,
		Status:       student.StatusActive,
	}
	if len(status) > 0 {
		s.Status = status[0]
	}
	s, err := db.CreateStudent(s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateAttendance(
	t *testing.T,
	db *dummydb.DB,
	studentID, classID int,
	date string,
	status attendance.Status,
) attendance.Record {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	rec, err := db.CreateAttendance(attendance.Record{
		StudentID: studentID,
		ClassID:   classID,
		Date:      d,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return rec
}

func CreateExam(
	t *testing.T,
	db *dummydb.DB,
	name string,
	classID int,
	totalMarks, passingMarks float64,
	year string,
) result.Exam {
	t.Helper()
	exam, err := db.CreateExam(result.Exam{
		Name:         name,
		ClassID:      classID,
		TotalMarks:   totalMarks,
		PassingMarks: passingMarks,
		AcademicYear: year,
	})
	if err != nil {
		t.Fatalf("CreateExam() failed: %v", err)
	}
	return exam
}

func CreateResult(
	t *testing.T,
	db *dummydb.DB,
	studentID, examID, subjectID int,
	marksObtained, totalMarks float64,
	year string,
) result.Record {
	t.Helper()
	rec, err := db.CreateResult(result.Record{
		StudentID:     studentID,
		ExamID:        examID,
		SubjectID:     subjectID,
		MarksObtained: marksObtained,
		TotalMarks:    totalMarks,
		AcademicYear:  year,
	})
	if err != nil {
		t.Fatalf("CreateResult() failed: %v", err)
	}
	return rec
}
