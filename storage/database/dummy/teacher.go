package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tracerhq/tracer/core/student"
	"github.com/tracerhq/tracer/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers.table))
	for _, t := range repo.db.teachers.table {
		teachers = append(teachers, *t)
	}
	return teachers
}

func isExcluded(t teacher.Teacher, excluded []teacher.Teacher) bool {
	for _, ex := range excluded {
		if ex.ID == t.ID {
			return true
		}
	}
	return false
}

func (repo *teacherRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedTeachers ...teacher.Teacher) error {
	repo.db.teachers.RLock()
	defer repo.db.teachers.RUnlock()

	for _, t := range repo.query() {
		if isExcluded(t, excludedTeachers) {
			continue
		}
		if t.Username == username {
			return teacher.ErrUsernameExists
		}
		if t.Email == email {
			return teacher.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.teachers.Lock()
	defer repo.db.teachers.Unlock()

	t.ID = uuid.New().String()
	repo.db.teachers.table[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id string) (teacher.Teacher, error) {
	repo.db.teachers.RLock()
	defer repo.db.teachers.RUnlock()

	if t, ok := repo.db.teachers.table[id]; ok {
		return *t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByUsername(_ context.Context, username string) (teacher.Teacher, error) {
	repo.db.teachers.RLock()
	defer repo.db.teachers.RUnlock()

	for _, t := range repo.query() {
		if t.Username == username {
			return t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByEmail(_ context.Context, email string) (teacher.Teacher, error) {
	repo.db.teachers.RLock()
	defer repo.db.teachers.RUnlock()

	for _, t := range repo.query() {
		if t.Email == email {
			return t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByUsernameOrEmail(_ context.Context, username string) (teacher.Teacher, error) {
	repo.db.teachers.RLock()
	defer repo.db.teachers.RUnlock()

	for _, t := range repo.query() {
		if t.Username == username || t.Email == username {
			return t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.teachers.Lock()
	defer repo.db.teachers.Unlock()

	if _, ok := repo.db.teachers.table[t.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	repo.db.teachers.table[t.ID] = &t
	return t, nil
}

// roster

func (repo *teacherRepository) StudentsByTeacherID(_ context.Context, teacherID string) ([]student.Student, error) {
	repo.db.students.RLock()
	defer repo.db.students.RUnlock()

	roster := make([]student.Student, 0)
	for _, st := range repo.db.students.table {
		if st.TeacherID == teacherID {
			roster = append(roster, *st)
		}
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster, nil
}

func (repo *teacherRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.students.Lock()
	defer repo.db.students.Unlock()

	repo.db.students.pk++
	st.ID = repo.db.students.pk
	repo.db.students.table[st.ID] = &st
	return st, nil
}

func (repo *teacherRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.students.Lock()
	defer repo.db.students.Unlock()

	if _, ok := repo.db.students.table[st.ID]; !ok {
		return student.Student{}, teacher.ErrStudentNotFound
	}
	repo.db.students.table[st.ID] = &st
	return st, nil
}

func (repo *teacherRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.students.Lock()
	defer repo.db.students.Unlock()
	delete(repo.db.students.table, id)

	// owned assignments go with the student, like the FK cascade in postgres
	repo.db.assignments.Lock()
	defer repo.db.assignments.Unlock()
	for aid, asg := range repo.db.assignments.table {
		if asg.StudentID == id {
			delete(repo.db.assignments.table, aid)
		}
	}
	return nil
}
