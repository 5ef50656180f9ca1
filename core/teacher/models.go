package teacher

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/tracerhq/tracer/core"
)

// Authorities granted to accounts; they surface in the session token's
// `roles` claim.
const (
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleTeacher, RoleAdmin}

// Teacher is an authenticated account owning a roster of students.
type Teacher struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	Roles         []string  `json:"roles"`
	PasswordHash  []byte    `json:"-"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
	LastLogin     time.Time `json:"last_login"` // UTC

	// VerificationToken is the opaque email-verification credential; cleared
	// once the address is confirmed.
	VerificationToken string `json:"-"`
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

func (t *Teacher) HasRole(role string) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (t *Teacher) IsAdmin() bool { return t.HasRole(RoleAdmin) }

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"required,min=3,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nt *NewTeacher) Validate(svc *Service) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return svc.checkUniqueness(nt.Username, nt.Email)
}

// AddStudent contains information needed to add a Student to a roster.
type AddStudent struct {
	Name   string `json:"name" validate:"required"`
	Period int    `json:"period" validate:"required,min=1,max=12"`
}

func (as *AddStudent) Validate() error {
	as.Name = core.CleanString(as.Name)
	return core.Validate.Struct(as)
}

// EditStudent defines what may be modified on a roster entry. An empty Name
// keeps the current name; an absent Period keeps the current period. The
// presence flag is explicit, never an empty-value sentinel.
type EditStudent struct {
	StudentID int      `json:"student_id" validate:"required"`
	Name      string   `json:"name"`
	Period    null.Int `json:"period"`
}

func (es *EditStudent) Validate() error {
	es.Name = core.CleanString(es.Name)
	return core.Validate.Struct(es)
}

// rosterKey indexes a roster by the value identity of its students.
type rosterKey struct {
	name   string
	period int
}

func normalizeName(name string) string {
	return strings.ToLower(core.CleanString(name))
}
