package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tracerhq/tracer/core/student"
	"github.com/tracerhq/tracer/core/teacher"
)

const uniqueViolation = "23505"

type teacherRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Username          string         `db:"username"`
	Email             string         `db:"email"`
	EmailVerified     bool           `db:"email_verified"`
	IsActive          bool           `db:"is_active"`
	Roles             pq.StringArray `db:"roles"`
	PasswordHash      []byte         `db:"password_hash"`
	VerificationToken null.String    `db:"verification_token"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	LastLogin         null.Time      `db:"last_login"`
}

func (r teacherRow) model() teacher.Teacher {
	return teacher.Teacher{
		ID:                r.ID,
		Name:              r.Name,
		Username:          r.Username,
		Email:             r.Email,
		EmailVerified:     r.EmailVerified,
		IsActive:          r.IsActive,
		Roles:             r.Roles,
		PasswordHash:      r.PasswordHash,
		VerificationToken: r.VerificationToken.String,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		LastLogin:         r.LastLogin.Time,
	}
}

func newTeacherRow(t teacher.Teacher) teacherRow {
	return teacherRow{
		ID:                t.ID,
		Name:              t.Name,
		Username:          t.Username,
		Email:             t.Email,
		EmailVerified:     t.EmailVerified,
		IsActive:          t.IsActive,
		Roles:             t.Roles,
		PasswordHash:      t.PasswordHash,
		VerificationToken: null.NewString(t.VerificationToken, t.VerificationToken != ""),
		CreatedAt:         t.CreatedAt.UTC(),
		UpdatedAt:         t.UpdatedAt.UTC(),
		LastLogin:         null.NewTime(t.LastLogin.UTC(), !t.LastLogin.IsZero()),
	}
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" to the given domain error.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps a unique constraint violation to the matching domain error.
func trapUniqueErr(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pqErr.Constraint, "username"):
			return teacher.ErrUsernameExists
		case strings.Contains(pqErr.Constraint, "email"):
			return teacher.ErrEmailExists
		case pqErr.Constraint == "student_roster_identity":
			return teacher.ErrStudentExists
		}
	}
	return errors.Wrap(err, msg)
}

func (repo *teacherRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedTeachers ...teacher.Teacher) error {
	query := `SELECT username, email FROM teacher WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedTeachers) > 0 {
		ids := make([]string, 0, len(excludedTeachers))
		for _, t := range excludedTeachers {
			ids = append(ids, t.ID)
		}
		query += ` AND NOT (id = ANY($3))`
		args = append(args, pq.StringArray(ids))
	}

	var row struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	err := repo.db.GetContext(ctx, &row, query+` LIMIT 1`, args...)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking teacher uniqueness")
	}
	if row.Username == username {
		return teacher.ErrUsernameExists
	}
	return teacher.ErrEmailExists
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	t.ID = uuid.New().String()
	row := newTeacherRow(t)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO teacher (id, name, username, email, email_verified, is_active, roles,
		                     password_hash, verification_token, created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :email_verified, :is_active, :roles,
		        :password_hash, :verification_token, :created_at, :updated_at, :last_login)`,
		row,
	)
	if err != nil {
		return teacher.Teacher{}, trapUniqueErr(err, "inserting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE id = $1`, id); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "getting teacher by ID")
	}
	return row.model(), nil
}

func (repo *teacherRepository) GetTeacherByUsername(ctx context.Context, username string) (teacher.Teacher, error) {
	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE username = $1`, username); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "getting teacher by username")
	}
	return row.model(), nil
}

func (repo *teacherRepository) GetTeacherByEmail(ctx context.Context, email string) (teacher.Teacher, error) {
	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE email = $1`, email); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "getting teacher by email")
	}
	return row.model(), nil
}

func (repo *teacherRepository) GetTeacherByUsernameOrEmail(ctx context.Context, username string) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE username = $1 OR email = $1`, username)
	if err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "getting teacher by username or email")
	}
	return row.model(), nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	row := newTeacherRow(t)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE teacher
		SET name = :name, username = :username, email = :email,
		    email_verified = :email_verified, is_active = :is_active, roles = :roles,
		    password_hash = :password_hash, verification_token = :verification_token,
		    updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return teacher.Teacher{}, trapUniqueErr(err, "updating teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return t, nil
}

// roster

func (repo *teacherRepository) StudentsByTeacherID(ctx context.Context, teacherID string) ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student WHERE teacher_id = $1 ORDER BY id`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying roster")
	}
	roster := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		roster = append(roster, row.model())
	}
	return roster, nil
}

func (repo *teacherRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	row := newStudentRow(st)
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO student (teacher_id, name, period, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		row.TeacherID, row.Name, row.Period, row.Score, row.CreatedAt, row.UpdatedAt,
	).Scan(&st.ID)
	if err != nil {
		return student.Student{}, trapUniqueErr(err, "inserting student")
	}
	return st, nil
}

func (repo *teacherRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	row := newStudentRow(st)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE student
		SET name = :name, period = :period, score = :score, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return student.Student{}, trapUniqueErr(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, teacher.ErrStudentNotFound
	}
	return st, nil
}

func (repo *teacherRepository) DeleteStudent(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	return errors.Wrap(err, "deleting student")
}
