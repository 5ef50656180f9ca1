package dummydb

import (
	"context"
	"sort"

	"github.com/tracerhq/tracer/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.students.RLock()
	defer repo.db.students.RUnlock()

	if st, ok := repo.db.students.table[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) AssignmentsByStudentID(_ context.Context, studentID int) ([]student.Assignment, error) {
	repo.db.assignments.RLock()
	defer repo.db.assignments.RUnlock()

	asgs := make([]student.Assignment, 0)
	for _, asg := range repo.db.assignments.table {
		if asg.StudentID == studentID {
			asgs = append(asgs, *asg)
		}
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[i].ID < asgs[j].ID })
	return asgs, nil
}

func (repo *studentRepository) GetAssignmentByID(_ context.Context, id int) (student.Assignment, error) {
	repo.db.assignments.RLock()
	defer repo.db.assignments.RUnlock()

	if asg, ok := repo.db.assignments.table[id]; ok {
		return *asg, nil
	}
	return student.Assignment{}, student.ErrAssignmentNotFound
}

func (repo *studentRepository) CreateAssignment(_ context.Context, asg student.Assignment) (student.Assignment, error) {
	repo.db.assignments.Lock()
	defer repo.db.assignments.Unlock()

	repo.db.assignments.pk++
	asg.ID = repo.db.assignments.pk
	repo.db.assignments.table[asg.ID] = &asg
	return asg, nil
}

func (repo *studentRepository) UpdateAssignment(_ context.Context, asg student.Assignment) (student.Assignment, error) {
	repo.db.assignments.Lock()
	defer repo.db.assignments.Unlock()

	if _, ok := repo.db.assignments.table[asg.ID]; !ok {
		return student.Assignment{}, student.ErrAssignmentNotFound
	}
	repo.db.assignments.table[asg.ID] = &asg
	return asg, nil
}

func (repo *studentRepository) DeleteAssignment(_ context.Context, id int) error {
	repo.db.assignments.Lock()
	defer repo.db.assignments.Unlock()
	delete(repo.db.assignments.table, id)
	return nil
}
