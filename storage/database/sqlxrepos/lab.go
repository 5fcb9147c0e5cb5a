package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mjuric/labtrack/core/lab"
)

type labRepository struct {
	db *sqlx.DB
}

var _ lab.Repository = (*labRepository)(nil) // interface compliance check

func NewLabRepository(db *sqlx.DB) *labRepository {
	return &labRepository{db: db}
}

func (repo labRepository) CreateExercise(ctx context.Context, ex lab.Exercise) (lab.Exercise, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO laboratory_exercises (course_id, name, date_time, max_points)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		ex.CourseID, ex.Name, ex.DateTime.UTC(), ex.MaxPoints,
	).Scan(&ex.ID)
	if err != nil {
		return lab.Exercise{}, errors.Wrap(err, "inserting exercise")
	}
	return ex, nil
}

func (repo labRepository) QueryExercisesByCourse(ctx context.Context, courseID int) ([]lab.Exercise, error) {
	var exercises []lab.Exercise
	err := repo.db.SelectContext(ctx, &exercises,
		`SELECT id, course_id, name, date_time, max_points
		 FROM laboratory_exercises WHERE course_id = $1 ORDER BY date_time`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying exercises")
	}
	return exercises, nil
}

func (repo labRepository) GetExerciseByID(ctx context.Context, id int) (lab.Exercise, error) {
	var ex lab.Exercise
	err := repo.db.GetContext(ctx, &ex,
		`SELECT id, course_id, name, date_time, max_points
		 FROM laboratory_exercises WHERE id = $1`, id)
	if err != nil {
		return lab.Exercise{}, trapNoRowsErr(err, lab.ErrExerciseNotFound, "finding exercise by ID")
	}
	return ex, nil
}

// GetOrCreatePoints is a single conditional insert: the unique constraint on
// (lab_exercise_id, student_id) decides the winner under concurrency and the
// loser falls through to fetching the winner's row.
func (repo labRepository) GetOrCreatePoints(ctx context.Context, exerciseID, studentID int) (lab.StudentPoints, error) {
	rec := lab.StudentPoints{ExerciseID: exerciseID, StudentID: studentID}
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO student_points (lab_exercise_id, student_id, points)
		 VALUES ($1, $2, 0)
		 ON CONFLICT ON CONSTRAINT uq_student_points DO NOTHING
		 RETURNING id, points`,
		exerciseID, studentID,
	).Scan(&rec.ID, &rec.Points)
	if err == nil {
		return rec, nil
	}
	if err != sql.ErrNoRows {
		return lab.StudentPoints{}, errors.Wrap(err, "inserting points record")
	}

	// conflict: the row already exists, return it unchanged
	err = repo.db.GetContext(ctx, &rec,
		`SELECT id, lab_exercise_id, student_id, points
		 FROM student_points WHERE lab_exercise_id = $1 AND student_id = $2`,
		exerciseID, studentID)
	if err != nil {
		return lab.StudentPoints{}, trapNoRowsErr(err, lab.ErrPointsNotFound, "fetching points record")
	}
	return rec, nil
}

func (repo labRepository) UpdatePoints(ctx context.Context, rec lab.StudentPoints) (lab.StudentPoints, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE student_points SET points = $1 WHERE id = $2`, rec.Points, rec.ID)
	if err != nil {
		return lab.StudentPoints{}, errors.Wrap(err, "updating points record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lab.StudentPoints{}, lab.ErrPointsNotFound
	}
	return rec, nil
}

func (repo labRepository) QueryPointsByExercise(ctx context.Context, exerciseID int) ([]lab.StudentPoints, error) {
	var recs []lab.StudentPoints
	err := repo.db.SelectContext(ctx, &recs,
		`SELECT id, lab_exercise_id, student_id, points
		 FROM student_points WHERE lab_exercise_id = $1 ORDER BY student_id`, exerciseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying points records")
	}
	return recs, nil
}
