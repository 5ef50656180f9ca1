package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound           = errors.New("student not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrNotOwned           = errors.New("assignment does not belong to this student")
)

type (
	Repository interface {
		GetStudentByID(ctx context.Context, id int) (Student, error)
		AssignmentsByStudentID(ctx context.Context, studentID int) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int) error
	}

	// Service is the assignment access layer: it enforces ownership and
	// status-transition rules for assignments attached to a student.
	// Token validation is the request boundary's job, never this layer's.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetStudent(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// AssignmentsByStudent returns all assignments owned by the given student.
func (svc *Service) AssignmentsByStudent(ctx context.Context, studentID int) ([]Assignment, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.AssignmentsByStudentID(ctx, studentID)
}

// AddAssignment attaches a new incomplete assignment to the student and
// returns the student's updated assignment collection.
func (svc *Service) AddAssignment(ctx context.Context, add AddAssignment) ([]Assignment, error) {
	if _, err := svc.repo.GetStudentByID(ctx, add.StudentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	asg := Assignment{
		StudentID:   add.StudentID,
		Title:       add.Title,
		Description: add.Description,
		DueDate:     add.DueDate,
		Complete:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := svc.repo.CreateAssignment(ctx, asg); err != nil {
		return nil, errors.Wrap(err, "creating assignment")
	}
	return svc.repo.AssignmentsByStudentID(ctx, add.StudentID)
}

// EditAssignment applies the provided fields to an existing assignment.
// Empty optional fields keep the current values.
func (svc *Service) EditAssignment(ctx context.Context, edit EditAssignment) ([]Assignment, error) {
	asg, err := svc.getOwned(ctx, edit.StudentID, edit.AssignmentID)
	if err != nil {
		return nil, err
	}

	if edit.Title != "" {
		asg.Title = edit.Title
	}
	if edit.Description != "" {
		asg.Description = edit.Description
	}
	if edit.DueDate.Valid {
		asg.DueDate = edit.DueDate
	}
	asg.UpdatedAt = time.Now().UTC()

	if _, err := svc.repo.UpdateAssignment(ctx, asg); err != nil {
		return nil, errors.Wrap(err, "updating assignment")
	}
	return svc.repo.AssignmentsByStudentID(ctx, edit.StudentID)
}

// UpdateCompleteStatus toggles the completion flag of the target assignment.
func (svc *Service) UpdateCompleteStatus(ctx context.Context, studentID, assignmentID int) ([]Assignment, error) {
	asg, err := svc.getOwned(ctx, studentID, assignmentID)
	if err != nil {
		return nil, err
	}

	asg.Complete = !asg.Complete
	asg.UpdatedAt = time.Now().UTC()

	if _, err := svc.repo.UpdateAssignment(ctx, asg); err != nil {
		return nil, errors.Wrap(err, "updating assignment status")
	}
	return svc.repo.AssignmentsByStudentID(ctx, studentID)
}

// DeleteAssignment removes the target assignment and returns the student's
// remaining assignments.
func (svc *Service) DeleteAssignment(ctx context.Context, del DeleteAssignment) ([]Assignment, error) {
	asg, err := svc.getOwned(ctx, del.StudentID, del.AssignmentID)
	if err != nil {
		return nil, err
	}

	if err := svc.repo.DeleteAssignment(ctx, asg.ID); err != nil {
		return nil, errors.Wrap(err, "deleting assignment")
	}
	return svc.repo.AssignmentsByStudentID(ctx, del.StudentID)
}

// getOwned resolves both ids and enforces the student↔assignment ownership
// invariant: an assignment owned by another student is ErrNotOwned.
func (svc *Service) getOwned(ctx context.Context, studentID, assignmentID int) (Assignment, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		return Assignment{}, err
	}
	asg, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if asg.StudentID != studentID {
		return Assignment{}, ErrNotOwned
	}
	return asg, nil
}
