// Package dummydb provides in-memory repositories for tests. They enforce
// the same uniqueness invariants as the Postgres schema so handler tests
// exercise identical conflict semantics.
package dummydb

import (
	"sync"

	"github.com/mjuric/labtrack/core/course"
	"github.com/mjuric/labtrack/core/lab"
	"github.com/mjuric/labtrack/core/user"
)

type (
	DB struct {
		user   *userTable
		course *courseTable
		lab    *labTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	courseTable struct {
		sync.RWMutex
		pkCount     int
		table       map[int]*course.Course
		enrollments map[int]*course.Enrollment
		professors  map[int]*course.ProfessorCourse
	}

	labTable struct {
		sync.RWMutex
		pkCount   int
		exercises map[int]*lab.Exercise
		points    map[int]*lab.StudentPoints
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[int]*user.User)},
		course: &courseTable{
			table:       make(map[int]*course.Course),
			enrollments: make(map[int]*course.Enrollment),
			professors:  make(map[int]*course.ProfessorCourse),
		},
		lab: &labTable{
			exercises: make(map[int]*lab.Exercise),
			points:    make(map[int]*lab.StudentPoints),
		},
	}
	return db, nil
}
