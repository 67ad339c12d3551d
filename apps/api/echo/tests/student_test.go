package tests

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/student"
	"github.com/trezcool/academia/tests"
)

func setNow(t *testing.T, now time.Time) {
	orig := student.NowFunc
	student.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { student.NowFunc = orig })
}

func Test_studentApi_promote(t *testing.T) {
	path := "/api/students/promote"

	type fixtures struct {
		app                          *testApp
		grade1, grade2               student.Class
		passing, failing, top, fresh student.Student
	}
	prepare := func(t *testing.T) fixtures {
		app := setup(t)
		f := fixtures{app: app}
		f.grade1 = testutil.CreateClass(t, app.db, "Grade 1")
		f.grade2 = testutil.CreateClass(t, app.db, "Grade 2")
		f.passing = testutil.CreateStudent(t, app.db, "Amani", f.grade1.ID, "2024")
		f.failing = testutil.CreateStudent(t, app.db, "Baraka", f.grade1.ID, "2024")
		f.top = testutil.CreateStudent(t, app.db, "Chausiku", f.grade2.ID, "2024")
		f.fresh = testutil.CreateStudent(t, app.db, "Dalila", f.grade1.ID, "2024")

		exam := testutil.CreateExam(t, app.db, "Final", f.grade1.ID, 100, 50, "2024")
		testutil.CreateResult(t, app.db, f.passing.ID, exam.ID, 1, 70, 100, "2024")
		testutil.CreateResult(t, app.db, f.passing.ID, exam.ID, 2, 50, 100, "2024") // avg 60
		testutil.CreateResult(t, app.db, f.failing.ID, exam.ID, 1, 59, 100, "2024")
		testutil.CreateResult(t, app.db, f.top.ID, exam.ID, 1, 90, 100, "2024")
		testutil.CreateResult(t, app.db, f.fresh.ID, exam.ID, 1, 90, 100, "2023") // other year
		return f
	}

	t.Run("permissions", func(t *testing.T) {
		f := prepare(t)
		runHTTPTests(t, f.app, []httpTest{
			{
				name:     "no token",
				method:   http.MethodPost,
				path:     path,
				wantCode: http.StatusUnauthorized,
				wantData: marchallObj(t, errMissingToken),
			},
			{
				name:     "teacher",
				method:   http.MethodPost,
				path:     path,
				token:    f.app.token(t, echoapi.RoleTeacher),
				wantCode: http.StatusForbidden,
				wantData: marchallObj(t, errForbidden),
			},
		})
	})

	t.Run("invalid year", func(t *testing.T) {
		f := prepare(t)
		for _, body := range []string{`{"academic_year": "20x4"}`, `{"academic_year": true}`} {
			req, rec := newAuthRequest(http.MethodPost, path, f.app.token(t, echoapi.RoleAdmin), []byte(body))
			f.app.srv.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		}
		got, _ := f.app.db.GetStudent(f.passing.ID)
		assert.Equal(t, f.passing, got)
	})

	t.Run("promote", func(t *testing.T) {
		f := prepare(t)
		f.app.conf.ReportRecipients = []mail.Address{{Name: "Principal", Address: "principal@test.cd"}}

		req, rec := newAuthRequest(http.MethodPost, path, f.app.token(t, "admin:principal"), []byte(`{"academic_year": 2024}`))
		f.app.srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.PromoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Promotion complete", resp.Message)
		assert.Equal(t, 1, resp.Promoted)
		assert.NotEmpty(t, resp.Result.RunID)
		assert.Equal(t, "2024", resp.Result.Year)
		assert.Equal(t, 1, resp.Result.Repeated)
		assert.Equal(t, 2, resp.Result.Skipped)
		assert.Equal(t, 0, resp.Result.Failed)

		got, _ := f.app.db.GetStudent(f.passing.ID)
		assert.Equal(t, f.grade2.ID, got.ClassID)
		assert.Equal(t, "2025", got.AcademicYear)

		got, _ = f.app.db.GetStudent(f.failing.ID)
		assert.Equal(t, f.grade1.ID, got.ClassID)
		assert.Equal(t, "2025", got.AcademicYear)

		got, _ = f.app.db.GetStudent(f.top.ID)
		assert.Equal(t, f.top, got)
		got, _ = f.app.db.GetStudent(f.fresh.ID)
		assert.Equal(t, f.fresh, got)

		sent := f.app.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "Promotion report", sent[0].Subject)
		assert.Contains(t, sent[0].TextContent, resp.Result.RunID)
	})

	t.Run("current year by default", func(t *testing.T) {
		f := prepare(t)
		setNow(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

		req, rec := newAuthRequest(http.MethodPost, path, f.app.token(t, echoapi.RoleAdmin))
		f.app.srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.PromoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "2024", resp.Result.Year)
		assert.Equal(t, 1, resp.Promoted)
		assert.Empty(t, f.app.mailSvc.SentMessages())
	})
}

func Test_studentApi_checkInactivity(t *testing.T) {
	app := setup(t)
	setNow(t, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))

	class := testutil.CreateClass(t, app.db, "Grade 1")
	regular := testutil.CreateStudent(t, app.db, "Amani", class.ID, "2024")
	gone := testutil.CreateStudent(t, app.db, "Baraka", class.ID, "2024")
	never := testutil.CreateStudent(t, app.db, "Chausiku", class.ID, "2024")
	graduated := testutil.CreateStudent(t, app.db, "Dalila", class.ID, "2024", student.StatusGraduated)
	back := testutil.CreateStudent(t, app.db, "Eshe", class.ID, "2024", student.StatusInactive)

	testutil.CreateAttendance(t, app.db, regular.ID, class.ID, "2024-01-31", attendance.StatusPresent) // 30 days
	testutil.CreateAttendance(t, app.db, gone.ID, class.ID, "2024-01-30", attendance.StatusPresent)    // 31 days
	testutil.CreateAttendance(t, app.db, back.ID, class.ID, "2024-02-28", attendance.StatusLate)

	token := app.token(t, echoapi.RoleAdmin)
	path := "/api/students/check-inactivity"

	check := func(method string) echoapi.InactivityResponse {
		req, rec := newAuthRequest(method, path, token)
		app.srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.InactivityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Inactivity check complete", resp.Message)
		return resp
	}

	resp := check(http.MethodPost)
	assert.Equal(t, 2, resp.Inactive)
	assert.Equal(t, 1, resp.Result.Activated)

	status := func(s student.Student) student.Status {
		got, _ := app.db.GetStudent(s.ID)
		return got.Status
	}
	assert.Equal(t, student.StatusActive, status(regular))
	assert.Equal(t, student.StatusInactive, status(gone))
	assert.Equal(t, student.StatusInactive, status(never))
	assert.Equal(t, student.StatusGraduated, status(graduated))
	assert.Equal(t, student.StatusActive, status(back))

	// nothing left to change
	resp = check(http.MethodGet)
	assert.Equal(t, 0, resp.Inactive)
	assert.Equal(t, 0, resp.Result.Activated)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "teacher",
			method:   http.MethodGet,
			path:     path,
			token:    app.token(t, echoapi.RoleTeacher),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})
}
