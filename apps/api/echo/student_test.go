package echoapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracerhq/tracer/core/student"
)

func Test_studentApi_retrieve(t *testing.T) {
	env := setup(t)
	acct := env.registerTeacher(t, "Jane Poe", "jane", "jane@test.cd")
	ana := env.createStudent(t, acct.ID, "Ana", 3)

	// no auth required
	req, rec := newRequest(http.MethodGet, fmt.Sprintf("/v1/student/get-student?id=%d", ana.ID))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got student.Student
	decodeBody(t, rec, &got)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, student.DefaultScore, got.Score)

	// unknown student
	req, rec = newRequest(http.MethodGet, "/v1/student/get-student?id=999")
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	// bad id
	req, rec = newRequest(http.MethodGet, "/v1/student/get-student?id=lol")
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func Test_studentApi_assignments(t *testing.T) {
	env := setup(t)
	acct := env.registerTeacher(t, "Jane Poe", "jane", "jane@test.cd")
	ana := env.createStudent(t, acct.ID, "Ana", 3)
	bob := env.createStudent(t, acct.ID, "Bob", 4)
	tok := env.getToken(t, acct)

	// auth is required
	req, rec := newRequest(http.MethodGet, fmt.Sprintf("/v1/student/get-all?id=%d", ana.ID))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())

	// empty collection
	req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/student/get-all?id=%d", ana.ID), tok)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var asgs []student.Assignment
	decodeBody(t, rec, &asgs)
	assert.Empty(t, asgs)

	// unknown student
	req, rec = newAuthRequest(http.MethodGet, "/v1/student/get-all?id=999", tok)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	// add an assignment
	addBody := marshallObj(t, student.AddAssignment{StudentID: ana.ID, Title: "Essay", Description: "500 words"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/student/add", tok, addBody)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	decodeBody(t, rec, &asgs)
	require.Len(t, asgs, 1)
	essay := asgs[0]
	assert.Equal(t, "Essay", essay.Title)
	assert.False(t, essay.Complete)

	// toggle completion
	statusBody := marshallObj(t, student.UpdateAssignmentStatus{StudentID: ana.ID, AssignmentID: essay.ID})
	req, rec = newAuthRequest(http.MethodPost, "/v1/student/update-status", tok, statusBody)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decodeBody(t, rec, &asgs)
	require.Len(t, asgs, 1)
	assert.True(t, asgs[0].Complete)

	// another student cannot touch it
	hijack := marshallObj(t, student.UpdateAssignmentStatus{StudentID: bob.ID, AssignmentID: essay.ID})
	req, rec = newAuthRequest(http.MethodPost, "/v1/student/update-status", tok, hijack)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	// edit keeps empty fields
	editBody := marshallObj(t, student.EditAssignment{
		AssignmentID: essay.ID,
		StudentID:    ana.ID,
		Description:  "800 words",
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/student/edit", tok, editBody)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decodeBody(t, rec, &asgs)
	require.Len(t, asgs, 1)
	assert.Equal(t, "Essay", asgs[0].Title)
	assert.Equal(t, "800 words", asgs[0].Description)

	// unknown assignment
	req, rec = newAuthRequest(http.MethodPost, "/v1/student/update-status", tok,
		marshallObj(t, student.UpdateAssignmentStatus{StudentID: ana.ID, AssignmentID: 999}))
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	// delete
	req, rec = newAuthRequest(http.MethodDelete, "/v1/student/delete", tok,
		marshallObj(t, student.DeleteAssignment{StudentID: ana.ID, AssignmentID: essay.ID}))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decodeBody(t, rec, &asgs)
	assert.Empty(t, asgs)
}

func Test_studentApi_validation(t *testing.T) {
	env := setup(t)
	acct := env.registerTeacher(t, "Jane Poe", "jane", "jane@test.cd")
	ana := env.createStudent(t, acct.ID, "Ana", 3)
	tok := env.getToken(t, acct)

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
	}{
		{
			name: "add: missing title", method: http.MethodPut, path: "/v1/student/add",
			body: marshallObj(t, student.AddAssignment{StudentID: ana.ID}),
		},
		{
			name: "edit: missing assignment id", method: http.MethodPost, path: "/v1/student/edit",
			body: marshallObj(t, student.EditAssignment{StudentID: ana.ID, Title: "X"}),
		},
		{
			name: "delete: missing student id", method: http.MethodDelete, path: "/v1/student/delete",
			body: marshallObj(t, student.DeleteAssignment{AssignmentID: 1}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tok, tt.body)
			env.server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}
