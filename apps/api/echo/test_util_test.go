package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tracerhq/tracer/core"
	"github.com/tracerhq/tracer/core/student"
	"github.com/tracerhq/tracer/core/teacher"
	"github.com/tracerhq/tracer/core/token"
	emailsvc "github.com/tracerhq/tracer/services/email"
	dummydb "github.com/tracerhq/tracer/storage/database/dummy"
)

type testEnv struct {
	server     Server
	conf       *core.Config
	teacherSvc *teacher.Service
	studentSvc *student.Service
	tokenSvc   *token.Service

	teacherRepo teacher.Repository
	studentRepo student.Repository
}

// testLogger swallows log output; 500s in tests still exercise the handler.
type testLogger struct{}

var _ core.Logger = (*testLogger)(nil)

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		AppName:          "Tracer",
		SecretKey:        []byte("secret"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@test.cd",
		WorkDir:          core.Getwd(),
		Server: core.ServerConfig{
			JWTExpirationDelta:       10 * time.Minute,
			EmailConfirmTimeoutDelta: 3 * 24 * time.Hour,
		},
	}
}

func setup(t *testing.T, opts ...teacher.Option) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}

	conf := newTestConfig()
	emailsvc.ResetSentMessages()

	teacherRepo := dummydb.NewTeacherRepository(db)
	studentRepo := dummydb.NewStudentRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	env := &testEnv{
		conf:        conf,
		teacherSvc:  teacher.NewService(conf, teacherRepo, mailSvc, opts...),
		studentSvc:  student.NewService(studentRepo),
		tokenSvc:    token.NewService(conf),
		teacherRepo: teacherRepo,
		studentRepo: studentRepo,
	}
	env.server = NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         testLogger{},
		TeacherSvc:     env.teacherSvc,
		StudentSvc:     env.studentSvc,
		TokenSvc:       env.tokenSvc,
		SignalShutdown: func() {},
	})
	return env
}

func (env *testEnv) registerTeacher(t *testing.T, name, uname, email string) teacher.Teacher {
	t.Helper()

	acct, err := env.teacherSvc.Register(context.Background(), teacher.NewTeacher{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        "L0c@lh0st!",
		PasswordConfirm: "L0c@lh0st!",
	})
	if err != nil {
		t.Fatalf("registerTeacher() failed, %v", err)
	}
	return acct
}

func (env *testEnv) createStudent(t *testing.T, teacherID, name string, period int) student.Student {
	t.Helper()

	st, err := env.teacherRepo.CreateStudent(context.Background(), student.Student{
		TeacherID: teacherID,
		Name:      name,
		Period:    period,
		Score:     student.DefaultScore,
	})
	if err != nil {
		t.Fatalf("createStudent() failed, %v", err)
	}
	return st
}

func (env *testEnv) getToken(t *testing.T, acct teacher.Teacher) string {
	t.Helper()

	tok, err := env.tokenSvc.GenerateSessionToken(acct.Username, acct.Roles)
	if err != nil {
		t.Fatalf("getToken() failed, %v", err)
	}
	return tok
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

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q failed: %v", rec.Body.String(), err)
	}
}
