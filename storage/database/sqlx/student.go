package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tracerhq/tracer/core/student"
)

type studentRow struct {
	ID        int       `db:"id"`
	TeacherID string    `db:"teacher_id"`
	Name      string    `db:"name"`
	Period    int       `db:"period"`
	Score     float64   `db:"score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) model() student.Student {
	return student.Student{
		ID:        r.ID,
		TeacherID: r.TeacherID,
		Name:      r.Name,
		Period:    r.Period,
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newStudentRow(st student.Student) studentRow {
	return studentRow{
		ID:        st.ID,
		TeacherID: st.TeacherID,
		Name:      st.Name,
		Period:    st.Period,
		Score:     st.Score,
		CreatedAt: st.CreatedAt.UTC(),
		UpdatedAt: st.UpdatedAt.UTC(),
	}
}

type assignmentRow struct {
	ID          int       `db:"id"`
	StudentID   int       `db:"student_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	DueDate     null.Time `db:"due_date"`
	Complete    bool      `db:"complete"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r assignmentRow) model() student.Assignment {
	return student.Assignment{
		ID:          r.ID,
		StudentID:   r.StudentID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Complete:    r.Complete,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func newAssignmentRow(asg student.Assignment) assignmentRow {
	return assignmentRow{
		ID:          asg.ID,
		StudentID:   asg.StudentID,
		Title:       asg.Title,
		Description: asg.Description,
		DueDate:     asg.DueDate,
		Complete:    asg.Complete,
		CreatedAt:   asg.CreatedAt.UTC(),
		UpdatedAt:   asg.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student by ID")
	}
	return row.model(), nil
}

func (repo *studentRepository) AssignmentsByStudentID(ctx context.Context, studentID int) ([]student.Assignment, error) {
	var rows []assignmentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM assignment WHERE student_id = $1 ORDER BY id`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]student.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.model())
	}
	return asgs, nil
}

func (repo *studentRepository) GetAssignmentByID(ctx context.Context, id int) (student.Assignment, error) {
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		return student.Assignment{}, trapNoRowsErr(err, student.ErrAssignmentNotFound, "getting assignment by ID")
	}
	return row.model(), nil
}

func (repo *studentRepository) CreateAssignment(ctx context.Context, asg student.Assignment) (student.Assignment, error) {
	row := newAssignmentRow(asg)
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO assignment (student_id, title, description, due_date, complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		row.StudentID, row.Title, row.Description, row.DueDate, row.Complete, row.CreatedAt, row.UpdatedAt,
	).Scan(&asg.ID)
	if err != nil {
		return student.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo *studentRepository) UpdateAssignment(ctx context.Context, asg student.Assignment) (student.Assignment, error) {
	row := newAssignmentRow(asg)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE assignment
		SET title = :title, description = :description, due_date = :due_date,
		    complete = :complete, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return student.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Assignment{}, student.ErrAssignmentNotFound
	}
	return asg, nil
}

func (repo *studentRepository) DeleteAssignment(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id)
	return errors.Wrap(err, "deleting assignment")
}
