package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mjuric/labtrack/core/course"
	"github.com/mjuric/labtrack/core/user"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO courses (name, code, semester) VALUES ($1, $2, $3) RETURNING id`,
		crs.Name, crs.Code, crs.Semester,
	).Scan(&crs.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	err := repo.db.SelectContext(ctx, &courses,
		`SELECT id, name, code, semester FROM courses ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs,
		`SELECT id, name, code, semester FROM courses WHERE id = $1`, id)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	return crs, nil
}

func (repo courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO course_assignments (student_id, course_id, time_details_id)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		enr.StudentID, enr.CourseID, enr.TimeDetailsID,
	).Scan(&enr.ID)
	if err != nil {
		if isUniqueViolation(err, "uq_enrollment") {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo courseRepository) QueryEnrolledStudents(ctx context.Context, courseID int) ([]user.User, error) {
	var users []user.User
	err := repo.db.SelectContext(ctx, &users,
		`SELECT u.id, u.username, u.name, u.surname, u.role, u.password_hash, u.photo
		 FROM users u
		 JOIN course_assignments ca ON ca.student_id = u.id
		 WHERE ca.course_id = $1
		 ORDER BY u.id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrolled students")
	}
	return users, nil
}

func (repo courseRepository) CreateProfessorCourse(ctx context.Context, pc course.ProfessorCourse) (course.ProfessorCourse, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO professor_courses (professor_id, course_id)
		 VALUES ($1, $2)
		 RETURNING id`,
		pc.ProfessorID, pc.CourseID,
	).Scan(&pc.ID)
	if err != nil {
		if isUniqueViolation(err, "uq_professor_course") {
			return course.ProfessorCourse{}, course.ErrAlreadyAssigned
		}
		return course.ProfessorCourse{}, errors.Wrap(err, "inserting professor course")
	}
	return pc, nil
}
