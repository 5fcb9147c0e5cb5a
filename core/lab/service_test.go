package lab_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/lab"
	"github.com/mjuric/labtrack/core/user"
	dummydb "github.com/mjuric/labtrack/storage/database/dummy"
)

type labEnv struct {
	svc     *lab.Service
	repo    lab.Repository
	usrRepo user.Repository
}

func newLabEnv(t *testing.T) *labEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	labRepo := dummydb.NewLabRepository(db)
	svc := lab.NewService(labRepo, user.NewService(usrRepo), core.NewTestConfig())
	return &labEnv{svc: svc, repo: labRepo, usrRepo: usrRepo}
}

func (env *labEnv) createUser(t *testing.T, username, role string) user.User {
	t.Helper()

	usr := user.User{Username: username, Name: "Test", Surname: "User", Role: role}
	created, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return created
}

func (env *labEnv) createExercise(t *testing.T, maxPoints int) lab.Exercise {
	t.Helper()

	ex := lab.Exercise{CourseID: 1, Name: "Lab 1", DateTime: time.Now(), MaxPoints: maxPoints}
	created, err := env.repo.CreateExercise(context.Background(), ex)
	if err != nil {
		t.Fatalf("CreateExercise() failed: %v", err)
	}
	return created
}

func TestRedeemIdempotent(t *testing.T) {
	env := newLabEnv(t)
	ctx := context.Background()
	student := env.createUser(t, "student", user.RoleStudent)
	ex := env.createExercise(t, 10)

	first, err := env.svc.Redeem(ctx, ex.ID, student.ID)
	if err != nil {
		t.Fatalf("Redeem() failed: %v", err)
	}
	assert.Equal(t, 0, first.Points)

	// a stored grade survives later scans
	_, err = env.svc.SetPoints(ctx, ex.ID, student.ID, lab.SetPoints{Points: 7})
	if err != nil {
		t.Fatalf("SetPoints() failed: %v", err)
	}

	second, err := env.svc.Redeem(ctx, ex.ID, student.ID)
	if err != nil {
		t.Fatalf("Redeem() failed: %v", err)
	}
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 7, second.Points)

	recs, err := env.svc.ListPointsByExercise(ctx, ex.ID)
	if err != nil {
		t.Fatalf("ListPointsByExercise() failed: %v", err)
	}
	assert.Len(t, recs, 1)
}

func TestRedeemConcurrent(t *testing.T) {
	env := newLabEnv(t)
	ctx := context.Background()
	student := env.createUser(t, "student", user.RoleStudent)
	ex := env.createExercise(t, 10)

	const n = 8
	results := make([]lab.StudentPoints, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.svc.Redeem(ctx, ex.ID, student.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("Redeem() #%d failed: %v", i, errs[i])
		}
		assert.Equal(t, results[0].ID, results[i].ID)
	}

	recs, err := env.svc.ListPointsByExercise(ctx, ex.ID)
	if err != nil {
		t.Fatalf("ListPointsByExercise() failed: %v", err)
	}
	assert.Len(t, recs, 1)
}

func TestRedeemChecksPair(t *testing.T) {
	env := newLabEnv(t)
	ctx := context.Background()
	student := env.createUser(t, "student", user.RoleStudent)
	prof := env.createUser(t, "prof", user.RoleProfessor)
	ex := env.createExercise(t, 10)

	tests := []struct {
		name       string
		exerciseID int
		studentID  int
		wantErr    error
	}{
		{name: "ok", exerciseID: ex.ID, studentID: student.ID},
		{name: "unknown exercise", exerciseID: 999, studentID: student.ID, wantErr: lab.ErrExerciseNotFound},
		{name: "unknown student", exerciseID: ex.ID, studentID: 999, wantErr: lab.ErrStudentNotFound},
		{name: "staff is not a student", exerciseID: ex.ID, studentID: prof.ID, wantErr: lab.ErrStudentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Redeem(ctx, tt.exerciseID, tt.studentID)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestGenerateQR(t *testing.T) {
	env := newLabEnv(t)
	ctx := context.Background()
	student := env.createUser(t, "student", user.RoleStudent)
	ex := env.createExercise(t, 10)

	uri, err := env.svc.GenerateQR(ctx, ex.ID, student.ID)
	if err != nil {
		t.Fatalf("GenerateQR() failed: %v", err)
	}
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.Greater(t, len(uri), len("data:image/png;base64,"))

	// generation does not create a points record
	recs, err := env.svc.ListPointsByExercise(ctx, ex.ID)
	if err != nil {
		t.Fatalf("ListPointsByExercise() failed: %v", err)
	}
	assert.Len(t, recs, 0)

	_, err = env.svc.GenerateQR(ctx, 999, student.ID)
	assert.Equal(t, lab.ErrExerciseNotFound, err)
}

func TestRedeemURL(t *testing.T) {
	env := newLabEnv(t)
	assert.Equal(t, "http://localhost:8000/v1/grade/3/7", env.svc.RedeemURL(3, 7))
}

func TestSetPointsClampedToMax(t *testing.T) {
	env := newLabEnv(t)
	ctx := context.Background()
	student := env.createUser(t, "student", user.RoleStudent)
	ex := env.createExercise(t, 10)

	if _, err := env.svc.Redeem(ctx, ex.ID, student.ID); err != nil {
		t.Fatalf("Redeem() failed: %v", err)
	}

	_, err := env.svc.SetPoints(ctx, ex.ID, student.ID, lab.SetPoints{Points: 11})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("SetPoints() error = %v; want *core.ValidationError", err)
	}

	rec, err := env.svc.SetPoints(ctx, ex.ID, student.ID, lab.SetPoints{Points: 10})
	if err != nil {
		t.Fatalf("SetPoints() failed: %v", err)
	}
	assert.Equal(t, 10, rec.Points)
}
