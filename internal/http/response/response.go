// Package response writes the JSON envelope used by every API response.
//
// Huma operations are wrapped by the API's transformer; raw chi handlers
// (media files) use the helpers here so both paths produce
// the same shape:
//
//	{"v":1,"success":true,"data":{...}}
//	{"v":1,"success":false,"error":"post not found","code":"NOT_FOUND","message":"post not found"}
package response

import (
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Version is the envelope format version, sent as "v".
const Version = 1

// Envelope wraps successful responses and errors without a code.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope wraps coded errors. Error repeats Message so clients that
// only read "error" keep working.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data in a success envelope, or as a plain error envelope for
// statuses >= 400.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	env := Envelope{Version: Version, Success: status < 400, Data: data}
	write(w, status, env, logger)
}

// Success writes a 200 response.
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Error writes a coded error response.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	write(w, status, ErrorEnvelope{
		Version: Version,
		Error:   message,
		Code:    string(code),
		Message: message,
	}, logger)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, message, logger)
}

// HandleError maps a domain error to its status and code. Anything else is
// logged and reported as a 500 without leaking the cause.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		write(w, domainErr.HTTPStatus(), ErrorEnvelope{
			Version: Version,
			Error:   domainErr.Message,
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, logger)
		return
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, domainerrors.CodeInternal, "internal server error", logger)
}

func write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}
