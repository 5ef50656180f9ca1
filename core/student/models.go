package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tracerhq/tracer/core"
)

// DefaultScore is assigned to every student added to a roster.
const DefaultScore float64 = 100

type Student struct {
	ID        int       `json:"id"`
	TeacherID string    `json:"teacher_id"`
	Name      string    `json:"name"`
	Period    int       `json:"period"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Assignment struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"student_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     null.Time `json:"due_date,omitempty"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// AddAssignment contains information needed to attach a new Assignment to a Student.
type AddAssignment struct {
	StudentID   int       `json:"student_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	DueDate     null.Time `json:"due_date"`
}

func (aa *AddAssignment) Validate() error {
	aa.Title = core.CleanString(aa.Title)
	aa.Description = core.CleanString(aa.Description)
	return core.Validate.Struct(aa)
}

// EditAssignment defines what may be modified on an existing Assignment.
// Empty optional fields are no-ops, not clearing operations.
type EditAssignment struct {
	AssignmentID int       `json:"assignment_id" validate:"required"`
	StudentID    int       `json:"student_id" validate:"required"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DueDate      null.Time `json:"due_date"`
}

func (ea *EditAssignment) Validate() error {
	ea.Title = core.CleanString(ea.Title)
	ea.Description = core.CleanString(ea.Description)
	return core.Validate.Struct(ea)
}

type DeleteAssignment struct {
	StudentID    int `json:"student_id" validate:"required"`
	AssignmentID int `json:"assignment_id" validate:"required"`
}

func (da *DeleteAssignment) Validate() error { return core.Validate.Struct(da) }

type UpdateAssignmentStatus struct {
	StudentID    int `json:"student_id" validate:"required"`
	AssignmentID int `json:"assignment_id" validate:"required"`
}

func (us *UpdateAssignmentStatus) Validate() error { return core.Validate.Struct(us) }
