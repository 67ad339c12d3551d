package dummydb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/result"
	"github.com/trezcool/academia/core/student"
)

func setup(t *testing.T) (*DB, student.Class, student.Student, student.Student) {
	db, err := Open()
	require.NoError(t, err)
	class := db.CreateClass(student.Class{Name: "Grade 1"})
	s1, err := db.CreateStudent(student.Student{Name: "Amani", ClassID: class.ID})
	require.NoError(t, err)
	s2, err := db.CreateStudent(student.Student{Name: "Baraka", ClassID: class.ID})
	require.NoError(t, err)
	return db, class, s1, s2
}

func TestAttendanceRepository_UpsertRecords(t *testing.T) {
	ctx := context.Background()
	db, class, s1, s2 := setup(t)
	repo := NewAttendanceRepository(db)
	day := core.NewDate(2024, 3, 1)

	n, err := repo.UpsertRecords(ctx,
		attendance.Record{StudentID: s1.ID, ClassID: class.ID, Date: day, Status: attendance.StatusAbsent},
		attendance.Record{StudentID: s2.ID, ClassID: class.ID, Date: day, Status: attendance.StatusPresent},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// same (student, date): updated in place
	_, err = repo.UpsertRecords(ctx, attendance.Record{StudentID: s1.ID, ClassID: class.ID, Date: day, Status: attendance.StatusLate})
	require.NoError(t, err)

	// all or nothing
	_, err = repo.UpsertRecords(ctx,
		attendance.Record{StudentID: s2.ID, ClassID: class.ID, Date: day, Status: attendance.StatusAbsent},
		attendance.Record{StudentID: 999, ClassID: class.ID, Date: day, Status: attendance.StatusAbsent},
	)
	assert.True(t, core.IsNotFound(err))

	recs, err := repo.QueryRecords(ctx, attendance.Filter{StartDate: day, EndDate: day.AddDays(1)})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, attendance.StatusLate, recs[0].Status)
	assert.Equal(t, "Amani", recs[0].StudentName)
	assert.Equal(t, attendance.StatusPresent, recs[1].Status)
}

func TestAttendanceRepository_QueryRecords_ordering(t *testing.T) {
	ctx := context.Background()
	db, class, s1, s2 := setup(t)
	repo := NewAttendanceRepository(db)
	d1, d2 := core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 2)

	for _, rec := range []attendance.Record{
		{StudentID: s2.ID, ClassID: class.ID, Date: d1, Status: attendance.StatusPresent},
		{StudentID: s1.ID, ClassID: class.ID, Date: d2, Status: attendance.StatusPresent},
		{StudentID: s1.ID, ClassID: class.ID, Date: d1, Status: attendance.StatusPresent},
	} {
		_, err := db.CreateAttendance(rec)
		require.NoError(t, err)
	}

	recs, err := repo.QueryRecords(ctx, attendance.Filter{
		StartDate: d1, EndDate: d2,
		Orderings: []core.DBOrdering{{Field: "student_id", Ascending: false}},
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []int{s2.ID, s1.ID, s1.ID}, []int{recs[0].StudentID, recs[1].StudentID, recs[2].StudentID})
	assert.Equal(t, d1, recs[1].Date)
	assert.Equal(t, d2, recs[2].Date)
}

func TestStudentRepository_ApplyMutations(t *testing.T) {
	ctx := context.Background()
	db, class, s1, s2 := setup(t)
	repo := NewStudentRepository(db)
	year := "2025"
	inactive := student.StatusInactive
	unknownClass := 404

	err := repo.ApplyMutations(ctx,
		student.Mutation{StudentID: s1.ID, AcademicYear: &year},
		student.Mutation{StudentID: s2.ID, ClassID: &unknownClass},
	)
	assert.True(t, core.IsNotFound(err))
	got, _ := db.GetStudent(s1.ID)
	assert.Empty(t, got.AcademicYear, "nothing applied")

	require.NoError(t, repo.ApplyMutations(ctx,
		student.Mutation{StudentID: s1.ID, AcademicYear: &year},
		student.Mutation{StudentID: s2.ID, Status: &inactive},
	))
	got, _ = db.GetStudent(s1.ID)
	assert.Equal(t, student.Student{ID: s1.ID, Name: "Amani", ClassID: class.ID, AcademicYear: "2025", Status: student.StatusActive}, got)
	got, _ = db.GetStudent(s2.ID)
	assert.Equal(t, student.StatusInactive, got.Status)
}

func TestStudentRepository_LatestAttendanceDates(t *testing.T) {
	db, class, s1, _ := setup(t)
	for _, d := range []core.Date{core.NewDate(2024, 3, 5), core.NewDate(2024, 4, 1), core.NewDate(2024, 3, 9)} {
		_, err := db.CreateAttendance(attendance.Record{StudentID: s1.ID, ClassID: class.ID, Date: d, Status: attendance.StatusAbsent})
		require.NoError(t, err)
	}

	latest, err := NewStudentRepository(db).LatestAttendanceDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]core.Date{s1.ID: core.NewDate(2024, 4, 1)}, latest)
}

func TestResultRepository(t *testing.T) {
	ctx := context.Background()
	db, class, s1, s2 := setup(t)
	other := db.CreateClass(student.Class{Name: "Grade 2"})
	s3, err := db.CreateStudent(student.Student{Name: "Chausiku", ClassID: other.ID})
	require.NoError(t, err)
	exam, err := db.CreateExam(result.Exam{Name: "Finals", ClassID: class.ID, TotalMarks: 50, PassingMarks: 25})
	require.NoError(t, err)
	for _, std := range []student.Student{s1, s2, s3} {
		_, err = db.CreateResult(result.Record{StudentID: std.ID, ExamID: exam.ID, SubjectID: 1, MarksObtained: 30, TotalMarks: 50, AcademicYear: "2024"})
		require.NoError(t, err)
	}
	repo := NewResultRepository(db)

	recs, err := repo.QueryResults(ctx, result.Filter{ExamID: exam.ID})
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = repo.QueryResults(ctx, result.Filter{ExamID: exam.ID, ClassID: &other.ID})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	n, err := repo.CountEnrolledStudents(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.GetExam(ctx, 12345)
	assert.Equal(t, result.ErrExamNotFound, err)
}
