package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tracerhq/tracer/core"
	"github.com/tracerhq/tracer/core/student"
	"github.com/tracerhq/tracer/core/teacher"
	"github.com/tracerhq/tracer/core/token"
)

type teacherApi struct {
	svc      *teacher.Service
	tokenSvc *token.Service
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *teacher.Service, tokenSvc *token.Service) {
	api := teacherApi{svc: svc, tokenSvc: tokenSvc}

	tg := g.Group("/teachers")

	// un-authed endpoints
	tg.POST("/register", api.register)
	tg.POST("/login", api.login)
	tg.GET("/confirm-email", api.confirmEmail)

	// authed endpoints; the account is resolved from the token subject
	ag := tg.Group("", jwt)
	ag.GET("/students", api.queryStudents)
	ag.PUT("/students", api.addStudent)
	ag.POST("/students/edit", api.editStudent)
	ag.DELETE("/students", api.deleteStudent)
}

// Handlers

func (api *teacherApi) register(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	t, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering teacher")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *teacherApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tok, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc, api.tokenSvc)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: tok})
}

func (api *teacherApi) confirmEmail(ctx echo.Context) error {
	uid, tok := ctx.QueryParam("uid"), ctx.QueryParam("token")
	if uid == "" || tok == "" {
		return teacher.ErrInvalidToken
	}

	if _, err := api.svc.ConfirmEmail(ctx.Request().Context(), uid, tok); err != nil {
		return errors.Wrap(err, "confirming email")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Email address confirmed."})
}

func (api *teacherApi) queryStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var roster []student.Student
	if name := ctx.QueryParam("name"); name != "" {
		roster, err = api.svc.StudentsByName(ctx.Request().Context(), claims.Subject, name)
	} else {
		roster, err = api.svc.StudentsByUsername(ctx.Request().Context(), claims.Subject)
	}
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	if roster == nil {
		roster = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *teacherApi) addStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data teacher.AddStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	roster, err := api.svc.AddStudent(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, roster)
}

func (api *teacherApi) editStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data teacher.EditStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	roster, err := api.svc.EditStudent(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "editing student")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *teacherApi) deleteStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data DeleteStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteStudentRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if err := api.svc.DeleteStudent(reqCtx, claims.Subject, data.StudentID); err != nil {
		return errors.Wrap(err, "deleting student")
	}

	roster, err := api.svc.StudentsByUsername(reqCtx, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DeleteStudentRequest struct {
		StudentID int `json:"student_id" validate:"required"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func (dr *DeleteStudentRequest) Validate() error {
	return core.Validate.Struct(dr)
}
