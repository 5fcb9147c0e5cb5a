package lab

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mjuric/labtrack/core"
)

// Exercise is a scheduled laboratory exercise belonging to a course.
type Exercise struct {
	ID        int       `json:"id" db:"id"`
	CourseID  int       `json:"course_id" db:"course_id"`
	Name      string    `json:"name" db:"name"`
	DateTime  time.Time `json:"date_time" db:"date_time"`
	MaxPoints int       `json:"max_points" db:"max_points"`
}

// StudentPoints is the (exercise, student) grade record. At most one per
// pair; created lazily with zero points on the first QR redemption.
type StudentPoints struct {
	ID         int `json:"id" db:"id"`
	ExerciseID int `json:"lab_exercise_id" db:"lab_exercise_id"`
	StudentID  int `json:"student_id" db:"student_id"`
	Points     int `json:"points" db:"points"`
}

// NewExercise contains information needed to create a new Exercise.
type NewExercise struct {
	Name      string    `json:"name" validate:"required"`
	DateTime  time.Time `json:"date_time" validate:"required"`
	MaxPoints int       `json:"max_points" validate:"required,min=1"`
}

func (ne *NewExercise) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}

// SetPoints is the payload of the grade-update endpoint.
type SetPoints struct {
	Points int `json:"points" validate:"min=0"`
}

func (sp SetPoints) Validate(validate *validator.Validate) error {
	return validate.Struct(sp)
}
