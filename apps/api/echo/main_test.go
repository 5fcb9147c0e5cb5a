package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/course"
	"github.com/mjuric/labtrack/core/lab"
	"github.com/mjuric/labtrack/core/user"
	logsvc "github.com/mjuric/labtrack/services/logger"
	dummydb "github.com/mjuric/labtrack/storage/database/dummy"
)

type testEnv struct {
	conf    *core.Config
	app     Server
	usrRepo user.Repository
	crsRepo course.Repository
	labRepo lab.Repository
	usrSvc  *user.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	conf := core.NewTestConfig()

	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	labRepo := dummydb.NewLabRepository(db)

	usrSvc := user.NewService(usrRepo)
	crsSvc := course.NewService(crsRepo, usrSvc)
	labSvc := lab.NewService(labRepo, usrSvc, conf)

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	app := NewServer("", ServerDeps{
		Conf:       conf,
		Logger:     logsvc.NewConsoleLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags)),
		UserSvc:    usrSvc,
		CourseSvc:  crsSvc,
		LabSvc:     labSvc,
		Validate:   validate,
		Translator: translator,
	})

	return &testEnv{
		conf:    conf,
		app:     app,
		usrRepo: usrRepo,
		crsRepo: crsRepo,
		labRepo: labRepo,
		usrSvc:  usrSvc,
	}
}

func (env *testEnv) createUser(t *testing.T, uname, pwd, role string) user.User {
	t.Helper()

	usr := user.User{
		Username: uname,
		Name:     "Test",
		Surname:  "User",
		Role:     role,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) createCourse(t *testing.T, name, code string) course.Course {
	t.Helper()

	crs, err := env.crsRepo.CreateCourse(context.Background(), course.Course{Name: name, Code: code, Semester: 1})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func (env *testEnv) createExercise(t *testing.T, courseID, maxPoints int) lab.Exercise {
	t.Helper()

	ex, err := env.labRepo.CreateExercise(context.Background(), lab.Exercise{
		CourseID:  courseID,
		Name:      "Lab 1",
		DateTime:  time.Now().UTC().Truncate(time.Second),
		MaxPoints: maxPoints,
	})
	if err != nil {
		t.Fatalf("createExercise() failed: %v", err)
	}
	return ex
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := user.IssueToken(usr, env.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

var (
	bodyMissingToken = httpErr{Error: "missing or malformed authorization header"}
	bodyUnauthorized = httpErr{Error: "Please log in"}
	bodyTokenExpired = httpErr{Error: "Token has expired. Please log in again."}
	bodyForbidden    = httpErr{Error: "permission denied"}
	bodyUserNotFound = httpErr{Error: "User not found"}
	bodyBadRequest   = httpErr{Error: "bad request"}
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

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (env *testEnv) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	env.app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
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
	t.Helper()

	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, wantCode, rec.Body.String())
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
