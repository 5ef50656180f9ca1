package main

import (
	"context"
	"time"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	t, err := cli.teacherRepo.GetTeacherByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	if err := t.SetPassword(pwd); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	if _, err := cli.teacherRepo.UpdateTeacher(ctx, t); err != nil {
		return err
	}
	return nil
}
