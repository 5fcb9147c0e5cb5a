package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrCodeExists      = errors.New("a course with this code already exists")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrAlreadyAssigned = errors.New("professor is already assigned to this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		// CreateEnrollment inserts atomically and fails with ErrAlreadyEnrolled
		// when the (student, course) pair already exists.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		QueryEnrolledStudents(ctx context.Context, courseID int) ([]user.User, error)
		// CreateProfessorCourse inserts atomically and fails with
		// ErrAlreadyAssigned on a duplicate (professor, course) pair.
		CreateProfessorCourse(ctx context.Context, pc ProfessorCourse) (ProfessorCourse, error)
	}

	Service struct {
		repo   Repository
		usrSvc user.ServiceInterface
	}
)

func NewService(repo Repository, usrSvc user.ServiceInterface) *Service {
	return &Service{repo: repo, usrSvc: usrSvc}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	crs := Course{
		Name:     nc.Name,
		Code:     nc.Code,
		Semester: nc.Semester,
	}
	crs, err := svc.repo.CreateCourse(ctx, crs)
	if err != nil {
		if err == ErrCodeExists {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// Enroll adds a student to a course. The duplicate check lives in the
// storage layer (unique constraint), never as a separate existence check,
// so concurrent duplicate enrollments cannot slip through.
func (svc *Service) Enroll(ctx context.Context, courseID int, es EnrollStudent) (Enrollment, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	usr, err := svc.usrSvc.GetByID(ctx, es.StudentID)
	if err != nil {
		return Enrollment{}, err
	}
	if !usr.IsStudent() {
		return Enrollment{}, core.NewValidationError(nil,
			core.FieldError{Field: "student_id", Error: "user is not a student"})
	}

	enr := Enrollment{
		StudentID:     es.StudentID,
		CourseID:      courseID,
		TimeDetailsID: es.TimeDetailsID,
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *Service) ListStudents(ctx context.Context, courseID int) ([]user.User, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrolledStudents(ctx, courseID)
}

func (svc *Service) AssignProfessor(ctx context.Context, courseID int, ap AssignProfessor) (ProfessorCourse, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return ProfessorCourse{}, err
	}
	usr, err := svc.usrSvc.GetByID(ctx, ap.ProfessorID)
	if err != nil {
		return ProfessorCourse{}, err
	}
	if !usr.IsStaff() {
		return ProfessorCourse{}, core.NewValidationError(nil,
			core.FieldError{Field: "professor_id", Error: "user is not teaching staff"})
	}

	pc := ProfessorCourse{
		ProfessorID: ap.ProfessorID,
		CourseID:    courseID,
	}
	return svc.repo.CreateProfessorCourse(ctx, pc)
}
