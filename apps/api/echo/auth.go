package echoapi

import (
	"context"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tracerhq/tracer/core/teacher"
	"github.com/tracerhq/tracer/core/token"
)

const (
	tokenContextKey   = "teacherToken"
	teacherContextKey = "teacher"
)

// newJWTConfig builds the JWT auth middleware config around the token
// service's signing key. Claims are parsed into token.Claims so handlers can
// read the subject and authorities directly.
func newJWTConfig(tokenSvc *token.Service) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    tokenSvc.SigningKey(),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(token.Claims),
	}
}

// authenticate checks the credentials and, on success, records the login and
// returns a fresh session token.
func authenticate(ctx context.Context, uname, pwd string, svc *teacher.Service, tokenSvc *token.Service) (string, error) {
	t, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return "", errAuthenticationFailed
		}
		return "", errors.Wrap(err, "finding teacher by username or email")
	}
	if err = t.CheckPassword(pwd); err != nil {
		return "", errAuthenticationFailed
	}
	if !t.IsActive {
		return "", errAccountDeactivated
	}
	if _, err = svc.SetLastLogin(ctx, t); err != nil {
		return "", errors.Wrap(err, "setting lastLogin")
	}
	return tokenSvc.GenerateSessionToken(t.Username, t.Roles)
}

func getContextClaims(ctx echo.Context) (token.Claims, error) {
	if tok, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := tok.Claims.(*token.Claims); ok {
			return *claims, nil
		}
	}
	return token.Claims{}, errUnauthorized
}

// getContextTeacher resolves the account behind the session token's subject,
// caching it on the request context.
func getContextTeacher(ctx echo.Context, svc *teacher.Service) (teacher.Teacher, error) {
	if t, ok := ctx.Get(teacherContextKey).(teacher.Teacher); ok {
		return t, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
	}

	t, err := svc.GetByUsername(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by username")
	}
	ctx.Set(teacherContextKey, t)
	return t, nil
}
