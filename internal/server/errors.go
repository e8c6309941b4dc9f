package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/satindergrewal/astrochart"
)

// AppError is the JSON error body returned by the API.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return &AppError{Code: "ERR_BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

// chartError maps engine errors to API errors.
func chartError(err error) *AppError {
	switch {
	case errors.Is(err, astrochart.ErrInvalidAngle),
		errors.Is(err, astrochart.ErrInvalidCuspCount),
		errors.Is(err, astrochart.ErrDuplicatePoint),
		errors.Is(err, astrochart.ErrInvalidRadius):
		return &AppError{Code: "ERR_INVALID_CHART", Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, astrochart.ErrNoFreeSector),
		errors.Is(err, astrochart.ErrOverlapImpossible):
		return &AppError{Code: "ERR_LAYOUT", Message: err.Error(), Status: http.StatusUnprocessableEntity, Err: err}
	default:
		return &AppError{Code: "ERR_INTERNAL", Message: "Internal Server Error", Status: http.StatusInternalServerError, Err: err}
	}
}

// errorKind labels an error for metrics.
func errorKind(e *AppError) string {
	switch e.Code {
	case "ERR_INVALID_CHART", "ERR_BAD_REQUEST", "ERR_VALIDATION":
		return "invalid_input"
	case "ERR_LAYOUT":
		return "layout"
	default:
		return "internal"
	}
}

// errorHandler writes AppError, echo.HTTPError and anything else as JSON.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *AppError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &he):
			appErr = &AppError{Code: "ERR_HTTP", Message: fmt.Sprint(he.Message), Status: he.Code}
		default:
			appErr = &AppError{Code: "ERR_INTERNAL", Message: "Internal Server Error", Status: http.StatusInternalServerError, Err: err}
		}

		if appErr.Status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		if werr := c.JSON(appErr.Status, appErr); werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}
