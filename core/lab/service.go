package lab

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/user"
)

var (
	// errors
	ErrExerciseNotFound = errors.New("laboratory exercise not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrPointsNotFound   = errors.New("points record not found")
)

const qrImageSize = 256 // px

type (
	Repository interface {
		CreateExercise(ctx context.Context, ex Exercise) (Exercise, error)
		QueryExercisesByCourse(ctx context.Context, courseID int) ([]Exercise, error)
		GetExerciseByID(ctx context.Context, id int) (Exercise, error)
		// GetOrCreatePoints atomically inserts a zero-points record for the
		// (exercise, student) pair, or returns the existing one unchanged.
		// Two concurrent calls must resolve to the same single row.
		GetOrCreatePoints(ctx context.Context, exerciseID, studentID int) (StudentPoints, error)
		UpdatePoints(ctx context.Context, rec StudentPoints) (StudentPoints, error)
		QueryPointsByExercise(ctx context.Context, exerciseID int) ([]StudentPoints, error)
	}

	Service struct {
		repo    Repository
		usrSvc  user.ServiceInterface
		baseURL string
	}
)

func NewService(repo Repository, usrSvc user.ServiceInterface, conf *core.Config) *Service {
	return &Service{repo: repo, usrSvc: usrSvc, baseURL: conf.Server.BaseURL}
}

func (svc *Service) CreateExercise(ctx context.Context, courseID int, ne NewExercise) (Exercise, error) {
	ex := Exercise{
		CourseID:  courseID,
		Name:      ne.Name,
		DateTime:  ne.DateTime,
		MaxPoints: ne.MaxPoints,
	}
	return svc.repo.CreateExercise(ctx, ex)
}

func (svc *Service) ListByCourse(ctx context.Context, courseID int) ([]Exercise, error) {
	return svc.repo.QueryExercisesByCourse(ctx, courseID)
}

func (svc *Service) GetExercise(ctx context.Context, id int) (Exercise, error) {
	return svc.repo.GetExerciseByID(ctx, id)
}

// RedeemURL is the grading reference encoded into the QR image. Any holder
// of the URL can redeem it; the redemption endpoint itself is role-gated.
func (svc *Service) RedeemURL(exerciseID, studentID int) string {
	return fmt.Sprintf("%s/v1/grade/%d/%d", svc.baseURL, exerciseID, studentID)
}

// GenerateQR validates the (exercise, student) pair and returns the grading
// reference as a base64 PNG data URI.
func (svc *Service) GenerateQR(ctx context.Context, exerciseID, studentID int) (string, error) {
	if _, err := svc.repo.GetExerciseByID(ctx, exerciseID); err != nil {
		return "", err
	}
	if err := svc.checkStudent(ctx, studentID); err != nil {
		return "", err
	}

	png, err := qrcode.Encode(svc.RedeemURL(exerciseID, studentID), qrcode.Medium, qrImageSize)
	if err != nil {
		return "", errors.Wrap(err, "encoding QR image")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Redeem records the student's attendance for the exercise: the first scan
// creates the points record with zero points, every later one returns the
// existing record unchanged. It never overwrites an already stored value.
func (svc *Service) Redeem(ctx context.Context, exerciseID, studentID int) (StudentPoints, error) {
	if _, err := svc.repo.GetExerciseByID(ctx, exerciseID); err != nil {
		return StudentPoints{}, err
	}
	if err := svc.checkStudent(ctx, studentID); err != nil {
		return StudentPoints{}, err
	}
	return svc.repo.GetOrCreatePoints(ctx, exerciseID, studentID)
}

// SetPoints updates an existing points record, clamped to the exercise maximum.
func (svc *Service) SetPoints(ctx context.Context, exerciseID, studentID int, sp SetPoints) (StudentPoints, error) {
	ex, err := svc.repo.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return StudentPoints{}, err
	}
	if sp.Points > ex.MaxPoints {
		return StudentPoints{}, core.NewValidationError(nil, core.FieldError{
			Field: "points",
			Error: fmt.Sprintf("points exceed the exercise maximum of %d", ex.MaxPoints),
		})
	}

	rec, err := svc.repo.GetOrCreatePoints(ctx, exerciseID, studentID)
	if err != nil {
		return StudentPoints{}, err
	}
	rec.Points = sp.Points
	return svc.repo.UpdatePoints(ctx, rec)
}

func (svc *Service) ListPointsByExercise(ctx context.Context, exerciseID int) ([]StudentPoints, error) {
	if _, err := svc.repo.GetExerciseByID(ctx, exerciseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryPointsByExercise(ctx, exerciseID)
}

func (svc *Service) checkStudent(ctx context.Context, studentID int) error {
	usr, err := svc.usrSvc.GetByID(ctx, studentID)
	if err != nil {
		if err == user.ErrNotFound {
			return ErrStudentNotFound
		}
		return errors.Wrap(err, "finding student")
	}
	if !usr.IsStudent() {
		return ErrStudentNotFound
	}
	return nil
}
