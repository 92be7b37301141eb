package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"ordering/internal/adapters/in/auth"
	"ordering/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StatusClientClosedRequest is logged when the caller went away before the
// handler finished. Nothing is written back.
const StatusClientClosedRequest = 499

var errUnauthenticated = fmt.Errorf("%w: no actor in request", auth.ErrInvalidToken)

// toError classifies err into a status code and a response body.
// PreconditionFailed and LockHeld carry what the UI needs to explain the
// refusal: the remaining cooldown or the name of the current editor.
func toError(err error) Error {
	var precondition *errs.PreconditionFailedError
	if errors.As(err, &precondition) {
		body := Error{Code: http.StatusPreconditionFailed, Message: err.Error()}
		if remaining := precondition.RemainingSeconds(); remaining > 0 {
			body.RemainingSeconds = &remaining
		}
		body.EditingByUserName = precondition.HolderName
		return body
	}

	var lockHeld *errs.LockHeldError
	if errors.As(err, &lockHeld) {
		return Error{Code: http.StatusLocked, Message: err.Error(), HolderName: lockHeld.HolderName}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return Error{Code: http.StatusUnauthorized, Message: "Invalid or missing token"}
	case errors.Is(err, errs.ErrObjectNotFound):
		return Error{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrVersionIsInvalid):
		return Error{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, errs.ErrForbidden):
		return Error{Code: http.StatusForbidden, Message: err.Error()}
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return Error{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, errs.ErrExternalUnavailable):
		return Error{Code: http.StatusServiceUnavailable, Message: err.Error()}
	case errors.Is(err, context.Canceled):
		return Error{Code: StatusClientClosedRequest, Message: "Request cancelled"}
	default:
		return Error{Code: http.StatusInternalServerError, Message: "Internal server error"}
	}
}

func (s *Server) fail(ctx echo.Context, err error) error {
	body := toError(err)

	switch {
	case body.Code == StatusClientClosedRequest:
		s.logger.Debug("request cancelled", slog.String("path", ctx.Path()))
		return nil
	case body.Code >= http.StatusInternalServerError:
		s.logger.Error("request failed",
			slog.String("method", ctx.Request().Method),
			slog.String("path", ctx.Path()),
			slog.Any("error", err),
		)
	}

	return ctx.JSON(body.Code, body)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
