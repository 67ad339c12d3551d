package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/tests"
)

func Test_attendanceApi_report(t *testing.T) {
	app := setup(t)

	class := testutil.CreateClass(t, app.db, "Grade 1")
	std1 := testutil.CreateStudent(t, app.db, "Amani", class.ID, "2024")
	std2 := testutil.CreateStudent(t, app.db, "Baraka", class.ID, "2024")

	var recs []attendance.Record
	for i, status := range []attendance.Status{
		attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusLate, attendance.StatusPresent,
	} {
		rec := testutil.CreateAttendance(t, app.db, std1.ID, class.ID, fmt.Sprintf("2024-01-0%d", i+1), status)
		rec.StudentName = std1.Name
		recs = append(recs, rec)
	}
	other := testutil.CreateAttendance(t, app.db, std2.ID, class.ID, "2024-01-02", attendance.StatusPresent)
	other.StudentName = std2.Name

	staffToken := app.token(t, echoapi.RoleTeacher)
	path := func(query string) string { return "/api/attendance/report?" + query }
	dates := "start_date=2024-01-01&end_date=2024-01-31"

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     path(dates),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "not staff",
			method:   http.MethodGet,
			path:     path(dates),
			token:    app.token(t, "student"),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "missing dates",
			method:   http.MethodGet,
			path:     path(""),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "invalid data",
				Errors: map[string]string{
					"start_date": "this field is required",
					"end_date":   "this field is required",
				},
			}),
		},
		{
			name:     "invalid date",
			method:   http.MethodGet,
			path:     path("start_date=2024-13-01&end_date=2024-01-31"),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "invalid data",
				Errors:  map[string]string{"start_date": "must be a valid date (YYYY-MM-DD)"},
			}),
		},
		{
			name:     "end before start",
			method:   http.MethodGet,
			path:     path("start_date=2024-01-31&end_date=2024-01-01"),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "end_date: must be after start_date",
				Errors:  map[string]string{"end_date": "must be after start_date"},
			}),
		},
		{
			name:     "non numeric student",
			method:   http.MethodGet,
			path:     path(dates + "&student_id=abc"),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "unknown student",
			method:   http.MethodGet,
			path:     path(dates + "&student_id=999"),
			token:    staffToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "student not found"}),
		},
		{
			name:     "unknown class",
			method:   http.MethodGet,
			path:     path(dates + "&class_id=999"),
			token:    staffToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "class not found"}),
		},
		{
			name:     "student report",
			method:   http.MethodGet,
			path:     path(fmt.Sprintf("%s&student_id=%d", dates, std1.ID)),
			token:    staffToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.AttendanceReportResponse{
				Success: true,
				Data: attendance.Report{
					Records: recs,
					Statistics: attendance.Statistics{
						TotalDays:            4,
						PresentDays:          2,
						AbsentDays:           1,
						LateDays:             1,
						AttendancePercentage: 75,
					},
				},
			}),
		},
		{
			name:     "same start and end",
			method:   http.MethodGet,
			path:     path("start_date=2024-01-02&end_date=2024-01-02"),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "end_date: must be after start_date",
				Errors:  map[string]string{"end_date": "must be after start_date"},
			}),
		},
		{
			name:     "class report ordered by -student_id",
			method:   http.MethodGet,
			path:     path(fmt.Sprintf("start_date=2024-01-02&end_date=2024-01-03&class_id=%d&ordering=-student_id", class.ID)),
			token:    staffToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.AttendanceReportResponse{
				Success: true,
				Data: attendance.Report{
					Records: []attendance.Record{other, recs[1], recs[2]},
					Statistics: attendance.Statistics{
						TotalDays:            3,
						PresentDays:          1,
						AbsentDays:           1,
						LateDays:             1,
						AttendancePercentage: 66.67,
					},
				},
			}),
		},
		{
			name:     "invalid ordering",
			method:   http.MethodGet,
			path:     path(dates + "&ordering=name"),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "invalid ordering",
				Errors:  map[string]string{"ordering": "cannot order by name"},
			}),
		},
		{
			name:     "empty range",
			method:   http.MethodGet,
			path:     path("start_date=2023-01-01&end_date=2023-01-31"),
			token:    staffToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.AttendanceReportResponse{
				Success: true,
				Data:    attendance.Report{Records: []attendance.Record{}},
			}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_attendanceApi_markBulk(t *testing.T) {
	app := setup(t)

	class := testutil.CreateClass(t, app.db, "Grade 1")
	std1 := testutil.CreateStudent(t, app.db, "Amani", class.ID, "2024")
	std2 := testutil.CreateStudent(t, app.db, "Baraka", class.ID, "2024")
	testutil.CreateAttendance(t, app.db, std1.ID, class.ID, "2024-02-01", attendance.StatusAbsent)

	staffToken := app.token(t, echoapi.RoleTeacher)
	path := "/api/attendance/bulk"
	body := func(classID int, date string, marks ...attendance.Mark) []byte {
		return marchallObj(t, attendance.BulkMark{ClassID: classID, Date: date, Marks: marks})
	}

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodPost,
			path:     path,
			body:     body(class.ID, "2024-02-01", attendance.Mark{StudentID: std1.ID, Status: attendance.StatusPresent}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "malformed body",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{"class_id": "one"`),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{Message: "invalid request body"}),
		},
		{
			name:     "no records",
			method:   http.MethodPost,
			path:     path,
			body:     body(class.ID, "2024-02-01"),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "invalid data",
				Errors:  map[string]string{"records": "this field is required"},
			}),
		},
		{
			name:   "duplicate student",
			method: http.MethodPost,
			path:   path,
			body: body(class.ID, "2024-02-01",
				attendance.Mark{StudentID: std1.ID, Status: attendance.StatusPresent},
				attendance.Mark{StudentID: std1.ID, Status: attendance.StatusLate},
			),
			token:    staffToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "invalid data",
				Errors:  map[string]string{"records": "a student can only be marked once per day"},
			}),
		},
		{
			name:     "unknown class",
			method:   http.MethodPost,
			path:     path,
			body:     body(999, "2024-02-01", attendance.Mark{StudentID: std1.ID, Status: attendance.StatusPresent}),
			token:    staffToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "class not found"}),
		},
		{
			name:   "unknown student",
			method: http.MethodPost,
			path:   path,
			body: body(class.ID, "2024-02-01",
				attendance.Mark{StudentID: std1.ID, Status: attendance.StatusPresent},
				attendance.Mark{StudentID: 999, Status: attendance.StatusPresent},
			),
			token:    staffToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "student not found"}),
		},
		{
			name:   "success",
			method: http.MethodPost,
			path:   path,
			body: body(class.ID, "2024-02-01",
				attendance.Mark{StudentID: std1.ID, Status: "Present"},
				attendance.Mark{StudentID: std2.ID, Status: attendance.StatusLate},
			),
			token:    staffToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.BulkMarkResponse{
				Success: true,
				Message: "Attendance marked successfully",
				Count:   2,
			}),
		},
	}
	runHTTPTests(t, app, tests)

	// failed batches wrote nothing; the existing record was updated in place
	req, rec := newAuthRequest(
		http.MethodGet,
		fmt.Sprintf("/api/attendance/report?start_date=2024-02-01&end_date=2024-02-02&class_id=%d", class.ID),
		staffToken,
	)
	app.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp echoapi.AttendanceReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Records, 2)
	assert.Equal(t, attendance.StatusPresent, resp.Data.Records[0].Status)
	assert.Equal(t, attendance.StatusLate, resp.Data.Records[1].Status)
	assert.Equal(t, 100.0, resp.Data.Statistics.AttendancePercentage)
}
