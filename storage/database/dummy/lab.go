package dummydb

import (
	"context"
	"sort"

	"github.com/mjuric/labtrack/core/lab"
)

type labRepository struct {
	db *labTable
}

var _ lab.Repository = (*labRepository)(nil) // interface compliance check

func NewLabRepository(db *DB) lab.Repository {
	return &labRepository{db: db.lab}
}

func (repo *labRepository) CreateExercise(_ context.Context, ex lab.Exercise) (lab.Exercise, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	ex.ID = repo.db.pkCount
	repo.db.exercises[ex.ID] = &ex
	return ex, nil
}

func (repo *labRepository) QueryExercisesByCourse(_ context.Context, courseID int) ([]lab.Exercise, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var exercises []lab.Exercise
	for _, ex := range repo.db.exercises {
		if ex.CourseID == courseID {
			exercises = append(exercises, *ex)
		}
	}
	sort.Slice(exercises, func(i, j int) bool { return exercises[i].DateTime.Before(exercises[j].DateTime) })
	return exercises, nil
}

func (repo *labRepository) GetExerciseByID(_ context.Context, id int) (lab.Exercise, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ex, ok := repo.db.exercises[id]; ok {
		return *ex, nil
	}
	return lab.Exercise{}, lab.ErrExerciseNotFound
}

// GetOrCreatePoints holds the write lock for the whole check-and-insert,
// matching the atomicity the uq_student_points constraint gives Postgres.
func (repo *labRepository) GetOrCreatePoints(_ context.Context, exerciseID, studentID int) (lab.StudentPoints, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, rec := range repo.db.points {
		if rec.ExerciseID == exerciseID && rec.StudentID == studentID {
			return *rec, nil
		}
	}

	repo.db.pkCount++
	rec := lab.StudentPoints{
		ID:         repo.db.pkCount,
		ExerciseID: exerciseID,
		StudentID:  studentID,
		Points:     0,
	}
	repo.db.points[rec.ID] = &rec
	return rec, nil
}

func (repo *labRepository) UpdatePoints(_ context.Context, rec lab.StudentPoints) (lab.StudentPoints, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.points[rec.ID]
	if !ok {
		return lab.StudentPoints{}, lab.ErrPointsNotFound
	}
	stored.Points = rec.Points
	return *stored, nil
}

func (repo *labRepository) QueryPointsByExercise(_ context.Context, exerciseID int) ([]lab.StudentPoints, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []lab.StudentPoints
	for _, rec := range repo.db.points {
		if rec.ExerciseID == exerciseID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].StudentID < recs[j].StudentID })
	return recs, nil
}
