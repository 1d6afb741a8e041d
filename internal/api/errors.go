package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/gradeassist/internal/findings"
	"github.com/gradeassist/internal/session"
	"github.com/gradeassist/pkg/models"
)

var errProfileNotFound = errors.New("profile not found")

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Error   string          `json:"error"`
	Current *models.Version `json:"current,omitempty"`
}

// errorStatus maps the error taxonomy onto HTTP statuses
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case models.IsUnknownAction(err),
		errors.Is(err, models.ErrInvalidProfile),
		errors.Is(err, models.ErrUnstructuredDraft),
		errors.Is(err, findings.ErrInvalidFinding):
		return http.StatusBadRequest
	case errors.Is(err, errProfileNotFound):
		return http.StatusNotFound
	case models.IsStale(err),
		errors.Is(err, session.ErrSuperseded),
		errors.Is(err, session.ErrNotStarted),
		errors.Is(err, models.ErrDraftTextDiverged):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	status := errorStatus(err)
	body := errorResponse{Error: err.Error()}

	var stale *models.StaleRevisionError
	if errors.As(err, &stale) {
		current := stale.Current
		body.Current = &current
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		body.Error = "internal error"
		if status == http.StatusGatewayTimeout {
			body.Error = "request timed out"
		}
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
