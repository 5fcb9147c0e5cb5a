package dummydb

import (
	"context"
	"sort"

	"github.com/mjuric/labtrack/core/course"
	"github.com/mjuric/labtrack/core/user"
)

type courseRepository struct {
	db    *courseTable
	users *userTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, users: db.user}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, c := range repo.db.table {
		if c.Code == crs.Code {
			return course.Course{}, course.ErrCodeExists
		}
	}

	repo.db.pkCount++
	crs.ID = repo.db.pkCount
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id int) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// same invariant as the uq_enrollment constraint
	for _, e := range repo.db.enrollments {
		if e.StudentID == enr.StudentID && e.CourseID == enr.CourseID {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
	}

	repo.db.pkCount++
	enr.ID = repo.db.pkCount
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) QueryEnrolledStudents(_ context.Context, courseID int) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.users.RLock()
	defer repo.users.RUnlock()

	var students []user.User
	for _, enr := range repo.db.enrollments {
		if enr.CourseID != courseID {
			continue
		}
		if usr, ok := repo.users.table[enr.StudentID]; ok {
			students = append(students, *usr)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *courseRepository) CreateProfessorCourse(_ context.Context, pc course.ProfessorCourse) (course.ProfessorCourse, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// same invariant as the uq_professor_course constraint
	for _, p := range repo.db.professors {
		if p.ProfessorID == pc.ProfessorID && p.CourseID == pc.CourseID {
			return course.ProfessorCourse{}, course.ErrAlreadyAssigned
		}
	}

	repo.db.pkCount++
	pc.ID = repo.db.pkCount
	repo.db.professors[pc.ID] = &pc
	return pc, nil
}
