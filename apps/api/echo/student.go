package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracerhq/tracer/core"
	"github.com/tracerhq/tracer/core/student"
)

type studentApi struct {
	svc *student.Service
}

// registerStudentAPI mounts the student portal routes. The route shapes are
// verb-style paths with payload-carried ids, kept for client compatibility.
func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/student")

	// un-authed endpoint
	sg.GET("/get-student", api.retrieve)

	// authed endpoints
	ag := sg.Group("", jwt)
	ag.GET("/get-all", api.queryAssignments)
	ag.PUT("/add", api.addAssignment)
	ag.POST("/update-status", api.updateStatus)
	ag.POST("/edit", api.editAssignment)
	ag.DELETE("/delete", api.deleteAssignment)
}

// Handlers

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := queryID(ctx)
	if err != nil {
		return err
	}

	st, err := api.svc.GetStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) queryAssignments(ctx echo.Context) error {
	id, err := queryID(ctx)
	if err != nil {
		return err
	}

	asgs, err := api.svc.AssignmentsByStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []student.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *studentApi) addAssignment(ctx echo.Context) error {
	var data student.AddAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asgs, err := api.svc.AddAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding assignment")
	}
	return ctx.JSON(http.StatusCreated, asgs)
}

func (api *studentApi) updateStatus(ctx echo.Context) error {
	var data student.UpdateAssignmentStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignmentStatus")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asgs, err := api.svc.UpdateCompleteStatus(ctx.Request().Context(), data.StudentID, data.AssignmentID)
	if err != nil {
		return errors.Wrap(err, "updating assignment status")
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *studentApi) editAssignment(ctx echo.Context) error {
	var data student.EditAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asgs, err := api.svc.EditAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "editing assignment")
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *studentApi) deleteAssignment(ctx echo.Context) error {
	var data student.DeleteAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asgs, err := api.svc.DeleteAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func queryID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.QueryParam("id"))
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "a positive integer id is required"})
	}
	return id, nil
}
