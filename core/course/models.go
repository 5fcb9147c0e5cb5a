package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/mjuric/labtrack/core"
)

type Course struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Code     string `json:"code" db:"code"`
	Semester int    `json:"semester" db:"semester"`
}

// TimeDetails is the lab slot (group, room, time) an enrollment may point at.
type TimeDetails struct {
	ID        int    `json:"id" db:"id"`
	GroupName string `json:"group_name" db:"group_name"`
	Room      string `json:"room" db:"room"`
	Time      string `json:"time" db:"time"`
}

// Enrollment links a student to a course, optionally to a TimeDetails slot.
// At most one enrollment per (student, course) pair; the storage layer
// enforces this with a unique constraint.
type Enrollment struct {
	ID            int  `json:"id" db:"id"`
	StudentID     int  `json:"student_id" db:"student_id"`
	CourseID      int  `json:"course_id" db:"course_id"`
	TimeDetailsID *int `json:"time_details_id,omitempty" db:"time_details_id"`
}

// ProfessorCourse links teaching staff to a course. Unique per
// (professor, course) pair at the storage level.
type ProfessorCourse struct {
	ID          int `json:"id" db:"id"`
	ProfessorID int `json:"professor_id" db:"professor_id"`
	CourseID    int `json:"course_id" db:"course_id"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required,max=30"`
	Semester int    `json:"semester" validate:"required,min=1"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)
	return validate.Struct(nc)
}

// EnrollStudent is the payload of the enrollment endpoint.
type EnrollStudent struct {
	StudentID     int  `json:"student_id" validate:"required"`
	TimeDetailsID *int `json:"time_details_id"`
}

func (es EnrollStudent) Validate(validate *validator.Validate) error {
	return validate.Struct(es)
}

// AssignProfessor is the payload of the staff-assignment endpoint.
type AssignProfessor struct {
	ProfessorID int `json:"professor_id" validate:"required"`
}

func (ap AssignProfessor) Validate(validate *validator.Validate) error {
	return validate.Struct(ap)
}
