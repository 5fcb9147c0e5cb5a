package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/mjuric/labtrack/core/lab"
	"github.com/mjuric/labtrack/core/user"
)

func Test_labApi_exercises(t *testing.T) {
	env := setup(t)

	prof := env.createUser(t, "prof", "", user.RoleProfessor)
	profToken := env.getToken(t, prof)
	crs := env.createCourse(t, "Operating Systems", "OS101")
	ex := env.createExercise(t, crs.ID, 10)

	path := fmt.Sprintf("/v1/courses/%d/exercises", crs.ID)

	tests := []httpTest{
		{name: "List is public", path: path, wantData: marchallList(t, ex)},
		{name: "List of unknown course is empty", path: "/v1/courses/999/exercises", wantData: marchallList(t)},
		{
			name: "Create", method: http.MethodPost, path: path, token: profToken,
			body:     []byte(`{"name": "Lab 2", "date_time": "2026-10-01T10:00:00Z", "max_points": 20}`),
			wantCode: http.StatusCreated,
		},
		{
			name: "Create requires staff", method: http.MethodPost, path: path,
			body:     []byte(`{"name": "Lab 3", "date_time": "2026-10-01T10:00:00Z", "max_points": 20}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, bodyMissingToken),
		},
		{
			name: "Create with missing fields", method: http.MethodPost, path: path, token: profToken,
			body: []byte(`{"name": "Lab 4"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"date_time":  "this field is required",
				"max_points": "this field is required",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

func Test_labApi_generateQR(t *testing.T) {
	env := setup(t)

	student := env.createUser(t, "ana", "", user.RoleStudent)
	crs := env.createCourse(t, "Operating Systems", "OS101")
	ex := env.createExercise(t, crs.ID, 10)

	// no token: generation is open
	tt := httpTest{path: fmt.Sprintf("/v1/generate_qr/%d/%d", ex.ID, student.ID)}
	rec := env.do(tt)
	checkCodeAndData(t, tt, rec)

	var resp QRResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling QRResponse: %v", err)
	}
	if !strings.HasPrefix(resp.Image, "data:image/png;base64,") {
		t.Errorf("image is not a PNG data URI: %.40q...", resp.Image)
	}

	tests := []httpTest{
		{
			name: "Unknown exercise", path: fmt.Sprintf("/v1/generate_qr/999/%d", student.ID),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: lab.ErrExerciseNotFound.Error()}),
		},
		{
			name: "Unknown student", path: fmt.Sprintf("/v1/generate_qr/%d/999", ex.ID),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: lab.ErrStudentNotFound.Error()}),
		},
		{
			name: "Non-numeric pair", path: "/v1/generate_qr/a/b",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, bodyBadRequest),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

func Test_labApi_redeem(t *testing.T) {
	env := setup(t)

	student := env.createUser(t, "ana", "", user.RoleStudent)
	assistant := env.createUser(t, "assist", "", user.RoleAssistant)
	assistToken := env.getToken(t, assistant)
	crs := env.createCourse(t, "Operating Systems", "OS101")
	ex := env.createExercise(t, crs.ID, 10)

	gradePath := fmt.Sprintf("/v1/grade/%d/%d", ex.ID, student.ID)

	// redemption is staff-gated
	authTests := []httpTest{
		{name: "No token", path: gradePath, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, bodyMissingToken)},
		{
			name: "Students cannot redeem", path: gradePath, token: env.getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, bodyForbidden),
		},
	}
	for _, tt := range authTests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}

	// first scan creates the record with zero points
	tt := httpTest{path: gradePath, token: assistToken}
	rec := env.do(tt)
	checkCodeAndData(t, tt, rec)
	var first lab.StudentPoints
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshalling StudentPoints: %v", err)
	}
	if first.Points != 0 {
		t.Errorf("first redemption points = %v; want 0", first.Points)
	}

	// grade it, then scan again: the stored value survives
	setTT := httpTest{
		method: http.MethodPut, path: gradePath, token: assistToken,
		body: []byte(`{"points": 7}`),
	}
	checkCodeAndData(t, setTT, env.do(setTT))

	rec = env.do(httpTest{path: gradePath, token: assistToken})
	var second lab.StudentPoints
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshalling StudentPoints: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second redemption hit a different record: id = %v; want %v", second.ID, first.ID)
	}
	if second.Points != 7 {
		t.Errorf("second redemption points = %v; want 7", second.Points)
	}

	// still a single record for the pair
	listTT := httpTest{
		path: fmt.Sprintf("/v1/exercises/%d/points", ex.ID), token: assistToken,
		wantData: marchallList(t, second),
	}
	checkCodeAndData(t, listTT, env.do(listTT))
}

func Test_labApi_setPoints(t *testing.T) {
	env := setup(t)

	student := env.createUser(t, "ana", "", user.RoleStudent)
	prof := env.createUser(t, "prof", "", user.RoleProfessor)
	profToken := env.getToken(t, prof)
	crs := env.createCourse(t, "Operating Systems", "OS101")
	ex := env.createExercise(t, crs.ID, 10)

	gradePath := fmt.Sprintf("/v1/grade/%d/%d", ex.ID, student.ID)

	tests := []httpTest{
		{name: "Set within maximum", body: []byte(`{"points": 10}`)},
		{
			name: "Exceeds maximum", body: []byte(`{"points": 11}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"points": "points exceed the exercise maximum of 10"}),
		},
		{
			name: "Negative points", body: []byte(`{"points": -1}`), wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.path = gradePath
		tt.token = profToken
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}

	// the rejected updates left the last valid value in place
	rec := env.do(httpTest{path: gradePath, token: profToken})
	var current lab.StudentPoints
	if err := json.Unmarshal(rec.Body.Bytes(), &current); err != nil {
		t.Fatalf("unmarshalling StudentPoints: %v", err)
	}
	if current.Points != 10 {
		t.Errorf("points = %v; want 10", current.Points)
	}
}
