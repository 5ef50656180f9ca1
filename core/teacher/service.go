package teacher

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/tracerhq/tracer/core"
	"github.com/tracerhq/tracer/core/student"
	"github.com/tracerhq/tracer/core/token"
)

var (
	// errors
	ErrNotFound        = errors.New("teacher not found")
	ErrUsernameExists  = errors.New("a teacher with this username already exists")
	ErrEmailExists     = errors.New("a teacher with this email already exists")
	ErrStudentExists   = errors.New("a student with this name and period already exists")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedTeachers ...Teacher) error
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		GetTeacherByUsername(ctx context.Context, username string) (Teacher, error)
		GetTeacherByEmail(ctx context.Context, email string) (Teacher, error)
		GetTeacherByUsernameOrEmail(ctx context.Context, username string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)

		// roster
		StudentsByTeacherID(ctx context.Context, teacherID string) ([]student.Student, error)
		CreateStudent(ctx context.Context, st student.Student) (student.Student, error)
		UpdateStudent(ctx context.Context, st student.Student) (student.Student, error)
		DeleteStudent(ctx context.Context, id int) error
	}

	// Service enforces the roster consistency rules: no two students of one
	// teacher may share the same (name, period) identity, and all roster
	// mutations go through an existing teacher resolved by username.
	Service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService

		// lenientMisses restores the historical contract where edit/delete of
		// an unknown student id is a silent no-op instead of ErrStudentNotFound.
		lenientMisses bool
	}

	Option func(*Service)
)

// WithLenientMisses makes EditStudent/DeleteStudent treat an unknown student
// id as a no-op rather than an error.
func WithLenientMisses() Option {
	return func(svc *Service) { svc.lenientMisses = true }
}

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, opts ...Option) *Service {
	svc := &Service{conf: conf, repo: repo, mailSvc: mailSvc}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) checkUniqueness(uname, email string, exclTeachers ...Teacher) error {
	err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, exclTeachers...)
	if err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Register creates a new Teacher account and sends an email confirmation link
// carrying the account's verification token signature.
func (svc *Service) Register(ctx context.Context, nt NewTeacher) (Teacher, error) {
	verifTok, err := token.GenerateVerificationToken()
	if err != nil {
		return Teacher{}, errors.Wrap(err, "generating verification token")
	}

	now := time.Now().UTC()
	t := Teacher{
		Name:              nt.Name,
		Username:          nt.Username,
		Email:             nt.Email,
		IsActive:          true,
		Roles:             []string{RoleTeacher},
		CreatedAt:         now,
		UpdatedAt:         now,
		VerificationToken: verifTok,
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, errors.Wrap(err, "setting password")
	}

	t, err = svc.repo.CreateTeacher(ctx, t)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}

	svc.sendConfirmationEmail(t)
	return t, nil
}

func (svc *Service) sendConfirmationEmail(t Teacher) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      "Please confirm your email address",
		TemplateName: "email-confirm",
		TemplateData: struct{ Name, UID, Token string }{
			Name:  t.Name,
			UID:   EncodeUID(t),
			Token: MakeEmailConfirmToken(svc.conf, t),
		},
	})
}

// ConfirmEmail marks the account behind uid as verified if the signed link
// token is authentic and unexpired. Confirming clears the stored verification
// token, so a link can only be used once.
func (svc *Service) ConfirmEmail(ctx context.Context, uid, linkToken string) (Teacher, error) {
	id, err := DecodeUID(uid)
	if err != nil {
		return Teacher{}, err
	}
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Teacher{}, ErrInvalidToken
		}
		return Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	if err := VerifyEmailConfirmToken(svc.conf, t, linkToken); err != nil {
		return Teacher{}, err
	}

	t.EmailVerified = true
	t.VerificationToken = ""
	t.UpdatedAt = time.Now().UTC()
	t, err = svc.repo.UpdateTeacher(ctx, t)
	return t, errors.Wrap(err, "updating teacher")
}

// Identity resolution

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Teacher, error) {
	return svc.repo.GetTeacherByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (Teacher, error) {
	return svc.repo.GetTeacherByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, t Teacher) (Teacher, error) {
	t.LastLogin = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, t)
}

// Roster operations

// StudentsByUsername returns the full roster of the teacher behind username.
func (svc *Service) StudentsByUsername(ctx context.Context, username string) ([]student.Student, error) {
	t, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return svc.repo.StudentsByTeacherID(ctx, t.ID)
}

// StudentsByName returns the roster entries whose name equals the query.
// Duplicate names across periods are legal, so the result may hold several
// students, or none at all.
func (svc *Service) StudentsByName(ctx context.Context, username, name string) ([]student.Student, error) {
	roster, err := svc.StudentsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	name = normalizeName(name)
	matches := make([]student.Student, 0, len(roster))
	for _, st := range roster {
		if normalizeName(st.Name) == name {
			matches = append(matches, st)
		}
	}
	return matches, nil
}

// AddStudent inserts a new roster entry with the default score. A student
// equal by (name, period) to an existing entry is rejected with
// ErrStudentExists and leaves the roster untouched.
func (svc *Service) AddStudent(ctx context.Context, username string, add AddStudent) ([]student.Student, error) {
	t, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	roster, err := svc.repo.StudentsByTeacherID(ctx, t.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying roster")
	}

	if _, dup := rosterIndex(roster)[rosterKey{normalizeName(add.Name), add.Period}]; dup {
		return nil, ErrStudentExists
	}

	now := time.Now().UTC()
	st := student.Student{
		TeacherID: t.ID,
		Name:      add.Name,
		Period:    add.Period,
		Score:     student.DefaultScore,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := svc.repo.CreateStudent(ctx, st); err != nil {
		return nil, errors.Wrap(err, "creating student")
	}
	return svc.repo.StudentsByTeacherID(ctx, t.ID)
}

// EditStudent applies the provided fields to a roster entry. An empty name or
// absent period keeps the current value. An unknown student id is
// ErrStudentNotFound unless the service runs with WithLenientMisses, in which
// case the roster is returned unchanged.
func (svc *Service) EditStudent(ctx context.Context, username string, edit EditStudent) ([]student.Student, error) {
	t, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	roster, err := svc.repo.StudentsByTeacherID(ctx, t.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying roster")
	}

	target, ok := findStudent(roster, edit.StudentID)
	if !ok {
		if svc.lenientMisses {
			return roster, nil
		}
		return nil, ErrStudentNotFound
	}

	if edit.Name != "" {
		target.Name = edit.Name
	}
	if edit.Period.Valid {
		target.Period = edit.Period.Int
	}

	// the edited identity must not collide with another roster entry
	idx := rosterIndex(roster)
	if other, dup := idx[rosterKey{normalizeName(target.Name), target.Period}]; dup && other.ID != target.ID {
		return nil, ErrStudentExists
	}

	target.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateStudent(ctx, target); err != nil {
		return nil, errors.Wrap(err, "updating student")
	}
	return svc.repo.StudentsByTeacherID(ctx, t.ID)
}

// DeleteStudent removes a roster entry. An unknown student id is
// ErrStudentNotFound unless the service runs with WithLenientMisses, in which
// case nothing is mutated and no error is raised.
func (svc *Service) DeleteStudent(ctx context.Context, username string, studentID int) error {
	t, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	roster, err := svc.repo.StudentsByTeacherID(ctx, t.ID)
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}

	target, ok := findStudent(roster, studentID)
	if !ok {
		if svc.lenientMisses {
			return nil
		}
		return ErrStudentNotFound
	}
	return errors.Wrap(svc.repo.DeleteStudent(ctx, target.ID), "deleting student")
}

// rosterIndex builds the (name, period) identity index used for O(1)
// duplicate detection. The same constraint exists in the database schema to
// close the concurrent-add race.
func rosterIndex(roster []student.Student) map[rosterKey]student.Student {
	idx := make(map[rosterKey]student.Student, len(roster))
	for _, st := range roster {
		idx[rosterKey{normalizeName(st.Name), st.Period}] = st
	}
	return idx
}

func findStudent(roster []student.Student, id int) (student.Student, bool) {
	for _, st := range roster {
		if st.ID == id {
			return st, true
		}
	}
	return student.Student{}, false
}

// String implements fmt.Stringer without leaking credentials into logs.
func (t Teacher) String() string {
	return fmt.Sprintf("Teacher(%s)", t.Username)
}
