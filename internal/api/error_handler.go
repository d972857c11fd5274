package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// ErrorPages renders the HTML error pages of the UI.
type ErrorPages interface {
	ErrorPage(c echo.Context, code int) error
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": "<message>"} under /api and an HTML page elsewhere.
func NewHTTPErrorHandler(log zerolog.Logger, pages ErrorPages) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if isJSONPath(c.Request().URL.Path) || pages == nil {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}

		switch {
		case code == http.StatusNotFound || code >= http.StatusInternalServerError:
			if rerr := pages.ErrorPage(c, code); rerr != nil {
				log.Error().Err(rerr).Msg("render error page")
				_ = c.String(code, msg)
			}
		default:
			_ = c.String(code, msg)
		}
	}
}

func isJSONPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/health")
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, domain.ErrCustomerNotFound.Error()
	case errors.Is(err, domain.ErrLeadNotFound):
		return http.StatusNotFound, domain.ErrLeadNotFound.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required."
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "already exists"
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, "internal server error"
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
}
