package student_test

import (
	"context"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/tracerhq/tracer/core/student"
	dummydb "github.com/tracerhq/tracer/storage/database/dummy"
)

func setup(t *testing.T) (*student.Service, student.Student, student.Student) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}

	teacherRepo := dummydb.NewTeacherRepository(db)
	ctx := context.Background()
	ana, err := teacherRepo.CreateStudent(ctx, student.Student{TeacherID: "t1", Name: "Ana", Period: 3, Score: student.DefaultScore})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}
	bob, err := teacherRepo.CreateStudent(ctx, student.Student{TeacherID: "t1", Name: "Bob", Period: 4, Score: student.DefaultScore})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	return student.NewService(dummydb.NewStudentRepository(db)), ana, bob
}

func addAssignment(t *testing.T, svc *student.Service, studentID int, title string) []student.Assignment {
	t.Helper()

	asgs, err := svc.AddAssignment(context.Background(), student.AddAssignment{
		StudentID: studentID,
		Title:     title,
	})
	if err != nil {
		t.Fatalf("AddAssignment(%s) failed, %v", title, err)
	}
	return asgs
}

func TestService_GetStudent(t *testing.T) {
	svc, ana, _ := setup(t)
	ctx := context.Background()

	got, err := svc.GetStudent(ctx, ana.ID)
	if err != nil {
		t.Fatalf("GetStudent() failed, %v", err)
	}
	if got.Name != "Ana" || got.Score != student.DefaultScore {
		t.Errorf("GetStudent() = %+v", got)
	}

	if _, err = svc.GetStudent(ctx, 999); err != student.ErrNotFound {
		t.Errorf("GetStudent() error = %v, wantErr %v", err, student.ErrNotFound)
	}
}

func TestService_AddAssignment(t *testing.T) {
	svc, ana, _ := setup(t)
	ctx := context.Background()

	asgs := addAssignment(t, svc, ana.ID, "Essay")
	if len(asgs) != 1 {
		t.Fatalf("assignments = %d, want 1", len(asgs))
	}
	if asgs[0].Complete {
		t.Error("expected a new assignment to be incomplete")
	}

	// unknown student
	if _, err := svc.AddAssignment(ctx, student.AddAssignment{StudentID: 999, Title: "Nope"}); err != student.ErrNotFound {
		t.Errorf("AddAssignment() error = %v, wantErr %v", err, student.ErrNotFound)
	}
}

func TestService_EditAssignment(t *testing.T) {
	svc, ana, bob := setup(t)
	ctx := context.Background()

	asgs := addAssignment(t, svc, ana.ID, "Essay")
	asg := asgs[0]

	// empty fields keep current values
	asgs, err := svc.EditAssignment(ctx, student.EditAssignment{
		AssignmentID: asg.ID,
		StudentID:    ana.ID,
		Description:  "500 words",
	})
	if err != nil {
		t.Fatalf("EditAssignment() failed, %v", err)
	}
	if asgs[0].Title != "Essay" {
		t.Errorf("Title = %s, want Essay", asgs[0].Title)
	}
	if asgs[0].Description != "500 words" {
		t.Errorf("Description = %s, want '500 words'", asgs[0].Description)
	}

	// a due date can be set later
	due := null.TimeFrom(asg.CreatedAt.AddDate(0, 0, 7))
	asgs, err = svc.EditAssignment(ctx, student.EditAssignment{
		AssignmentID: asg.ID,
		StudentID:    ana.ID,
		DueDate:      due,
	})
	if err != nil {
		t.Fatalf("EditAssignment() failed, %v", err)
	}
	if !asgs[0].DueDate.Valid || !asgs[0].DueDate.Time.Equal(due.Time) {
		t.Errorf("DueDate = %v, want %v", asgs[0].DueDate, due)
	}

	// another student's assignment is off limits
	_, err = svc.EditAssignment(ctx, student.EditAssignment{
		AssignmentID: asg.ID,
		StudentID:    bob.ID,
		Title:        "Hijack",
	})
	if err != student.ErrNotOwned {
		t.Errorf("EditAssignment() error = %v, wantErr %v", err, student.ErrNotOwned)
	}
}

func TestService_UpdateCompleteStatus(t *testing.T) {
	svc, ana, bob := setup(t)
	ctx := context.Background()

	asgs := addAssignment(t, svc, ana.ID, "Essay")
	asg := asgs[0]

	asgs, err := svc.UpdateCompleteStatus(ctx, ana.ID, asg.ID)
	if err != nil {
		t.Fatalf("UpdateCompleteStatus() failed, %v", err)
	}
	if !asgs[0].Complete {
		t.Error("expected the assignment to be complete")
	}

	// toggles back
	asgs, err = svc.UpdateCompleteStatus(ctx, ana.ID, asg.ID)
	if err != nil {
		t.Fatalf("UpdateCompleteStatus() failed, %v", err)
	}
	if asgs[0].Complete {
		t.Error("expected the assignment to be incomplete again")
	}

	// ownership
	if _, err = svc.UpdateCompleteStatus(ctx, bob.ID, asg.ID); err != student.ErrNotOwned {
		t.Errorf("UpdateCompleteStatus() error = %v, wantErr %v", err, student.ErrNotOwned)
	}

	// unknown assignment
	if _, err = svc.UpdateCompleteStatus(ctx, ana.ID, 999); err != student.ErrAssignmentNotFound {
		t.Errorf("UpdateCompleteStatus() error = %v, wantErr %v", err, student.ErrAssignmentNotFound)
	}
}

func TestService_DeleteAssignment(t *testing.T) {
	svc, ana, bob := setup(t)
	ctx := context.Background()

	asgs := addAssignment(t, svc, ana.ID, "Essay")
	addAssignment(t, svc, ana.ID, "Quiz")
	asg := asgs[0]

	// ownership is enforced before deletion
	_, err := svc.DeleteAssignment(ctx, student.DeleteAssignment{StudentID: bob.ID, AssignmentID: asg.ID})
	if err != student.ErrNotOwned {
		t.Errorf("DeleteAssignment() error = %v, wantErr %v", err, student.ErrNotOwned)
	}

	asgs, err = svc.DeleteAssignment(ctx, student.DeleteAssignment{StudentID: ana.ID, AssignmentID: asg.ID})
	if err != nil {
		t.Fatalf("DeleteAssignment() failed, %v", err)
	}
	if len(asgs) != 1 || asgs[0].Title != "Quiz" {
		t.Errorf("assignments = %+v, want only Quiz", asgs)
	}
}

func TestService_AssignmentsByStudent(t *testing.T) {
	svc, ana, bob := setup(t)
	ctx := context.Background()

	addAssignment(t, svc, ana.ID, "Essay")
	addAssignment(t, svc, ana.ID, "Quiz")

	asgs, err := svc.AssignmentsByStudent(ctx, ana.ID)
	if err != nil {
		t.Fatalf("AssignmentsByStudent() failed, %v", err)
	}
	if len(asgs) != 2 {
		t.Errorf("assignments = %d, want 2", len(asgs))
	}

	asgs, err = svc.AssignmentsByStudent(ctx, bob.ID)
	if err != nil {
		t.Fatalf("AssignmentsByStudent() failed, %v", err)
	}
	if len(asgs) != 0 {
		t.Errorf("assignments = %d, want 0", len(asgs))
	}

	if _, err = svc.AssignmentsByStudent(ctx, 999); err != student.ErrNotFound {
		t.Errorf("AssignmentsByStudent() error = %v, wantErr %v", err, student.ErrNotFound)
	}
}
