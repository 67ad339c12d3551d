package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/result"
	"github.com/trezcool/academia/core/student"
	appfs "github.com/trezcool/academia/fs"
	"github.com/trezcool/academia/services/email"
	"github.com/trezcool/academia/services/metrics"
	"github.com/trezcool/academia/storage/database/dummy"
	"github.com/trezcool/academia/tests"
)

type testApp struct {
	conf    *core.Config
	db      *dummydb.DB
	mailSvc *emailsvc.ConsoleService
	srv     *Server
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig()
	logger := testutil.NopLogger{}

	// set up DB & repos
	db := testutil.PrepareDB(t)
	attendanceRepo := dummydb.NewAttendanceRepository(db)
	resultRepo := dummydb.NewResultRepository(db)
	studentRepo := dummydb.NewStudentRepository(db)

	// set up services
	templates, err := core.ParseEmailTemplates(appfs.EmailTemplates(), conf.AppName, true)
	if err != nil {
		t.Fatalf("ParseEmailTemplates() failed: %v", err)
	}
	mailSvc := emailsvc.NewConsoleServiceMock(conf, templates, logger)
	metrics, err := metricsvc.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metricsvc.New() failed: %v", err)
	}
	resultSvc := result.NewService(resultRepo)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	// set up server
	srv := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		DB:            db,
		Metrics:       metrics,
		AttendanceSvc: attendance.NewService(attendanceRepo),
		ResultSvc:     resultSvc,
		StudentSvc:    student.NewService(studentRepo, resultSvc, mailSvc, metrics, logger, conf),
		Validate:      validate,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = srv.Close() })

	return &testApp{conf: conf, db: db, mailSvc: mailSvc, srv: srv}
}

func (app *testApp) token(t *testing.T, roles ...string) string {
	claims := NewClaims(app.conf, "1", "tester", "tester@test.cd", roles...)
	token, err := GenerateToken(app.conf, claims)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

var (
	errMissingToken = httpErr{Message: "authentication credentials were not provided"}
	errForbidden    = httpErr{Message: "permission denied"}
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
