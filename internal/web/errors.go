package web

// errors.go turns errors into JSON responses.
//
// The technical error is logged with the request id; the client gets the
// coded user message from core.MapError and a status derived from the error.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/LeadParser/internal/auth"
	"github.com/JonMunkholm/LeadParser/internal/core"
	"github.com/JonMunkholm/LeadParser/internal/logging"
	"github.com/JonMunkholm/LeadParser/internal/workbook"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the body of every error reply. Code is the support code
// (FILE001, SES002, ...).
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// fail responds with the status statusFor picks for err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// respondError logs err and writes its user message with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := core.MapError(err)

	log := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error")
	} else {
		log.Warn("request error")
	}

	writeJSON(w, r, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSavedUploadNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrInvalidRequest),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrRowOutOfRange),
		errors.Is(err, core.ErrSheetOutOfRange),
		errors.Is(err, core.ErrUnknownField),
		errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrStaleValidation),
		errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict

	case errors.Is(err, workbook.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, workbook.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType

	case errors.Is(err, workbook.ErrEmptyFile),
		errors.Is(err, workbook.ErrCorruptWorkbook),
		errors.Is(err, workbook.ErrInvalidCSV),
		errors.Is(err, workbook.ErrEncoding),
		errors.Is(err, workbook.ErrNothingToExport):
		return http.StatusUnprocessableEntity

	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
