package main

import (
	"context"
	"time"

	"github.com/tracerhq/tracer/core"
	"github.com/tracerhq/tracer/core/teacher"
	"github.com/tracerhq/tracer/core/token"
)

// addTeacher updates or creates a teacher.Teacher
func (cli *commandLine) addTeacher(name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	t, err := cli.teacherRepo.GetTeacherByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != teacher.ErrNotFound {
			return err
		}
		verifTok, err := token.GenerateVerificationToken()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		t = teacher.Teacher{
			Name:              core.CleanString(name),
			Username:          uname,
			Email:             email,
			Roles:             []string{teacher.RoleTeacher},
			CreatedAt:         now,
			UpdatedAt:         now,
			VerificationToken: verifTok,
		}
		if isAdmin {
			t.Roles = teacher.AllRoles
		}
		t.IsActive = true
		if err := t.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.teacherRepo.CreateTeacher(ctx, t)
		return err
	}

	if isAdmin {
		t.Roles = teacher.AllRoles
	}
	t.IsActive = true
	t.UpdatedAt = time.Now().UTC()
	if err := t.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.teacherRepo.UpdateTeacher(ctx, t)
	return err
}
