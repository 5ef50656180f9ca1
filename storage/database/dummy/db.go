// Package dummydb provides in-memory repository implementations used by
// tests and local hacking; production binaries wire the sqlx repositories.
package dummydb

import (
	"sync"

	"github.com/tracerhq/tracer/core/student"
	"github.com/tracerhq/tracer/core/teacher"
)

type (
	teacherTable struct {
		sync.RWMutex
		table map[string]*teacher.Teacher
	}

	studentTable struct {
		sync.RWMutex
		table map[int]*student.Student
		pk    int
	}

	assignmentTable struct {
		sync.RWMutex
		table map[int]*student.Assignment
		pk    int
	}

	DB struct {
		teachers    *teacherTable
		students    *studentTable
		assignments *assignmentTable
	}
)

func Open() (*DB, error) {
	return &DB{
		teachers:    &teacherTable{table: make(map[string]*teacher.Teacher)},
		students:    &studentTable{table: make(map[int]*student.Student)},
		assignments: &assignmentTable{table: make(map[int]*student.Assignment)},
	}, nil
}
