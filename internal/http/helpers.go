package http

import (
	"errors"
	"net/http"
	"strings"

	"moneyflow/internal/core"
	applog "moneyflow/internal/log"
	"moneyflow/internal/services"
)

// stripControl removes control characters except tab, newline and carriage return.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// writeServiceError maps service and domain errors onto status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		NotFoundError(err.Error()).Write(w)
	case errors.Is(err, services.ErrNoAddTarget), errors.Is(err, core.ErrInvalidInput):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, services.ErrTooManySessions):
		ServiceUnavailableError(err.Error()).Header("Retry-After", "60").Write(w)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		InternalServerError("internal error").Write(w)
	}
}

// writeParseError answers a body that could not be read into a request.
func writeParseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, ErrBodyTooLarge):
		ErrorResponse(http.StatusRequestEntityTooLarge, "too_large", err.Error()).Write(w)
	default:
		BadRequestError("malformed request body").Write(w)
	}
}
