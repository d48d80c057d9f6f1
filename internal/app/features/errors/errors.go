// Package errors writes JSON error responses and logs the cause with
// request context. Handlers pass a short log message, the underlying error,
// and the generic message the client should see.
package errors

import (
	"net/http"

	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/inputval"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and writes the matching JSON response.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger. A nil logger discards logs.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}

// LogServerError logs at Error and responds 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	httpx.WriteError(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs at Warn and responds 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	httpx.WriteError(w, http.StatusBadRequest, userMsg)
}

// LogForbidden logs at Warn and responds 403 with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, userMsg string) {
	e.Log.Warn(logMsg, e.fields(r, nil)...)
	httpx.WriteError(w, http.StatusForbidden, userMsg)
}

// LogNotFound logs at Debug and responds 404 with userMsg.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Debug(logMsg, e.fields(r, err)...)
	httpx.WriteError(w, http.StatusNotFound, userMsg)
}

// LogConflict logs at Info and responds 409 with userMsg.
func (e *ErrorLogger) LogConflict(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Info(logMsg, e.fields(r, err)...)
	httpx.WriteError(w, http.StatusConflict, userMsg)
}

// Invalid responds 400 with the per-field messages of a validation failure.
func (e *ErrorLogger) Invalid(w http.ResponseWriter, r *http.Request, fields inputval.Errors) {
	e.Log.Debug("validation failed", e.fields(r, fields)...)
	httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{
		Error:  "Please correct the highlighted fields.",
		Fields: fields,
	})
}

// Validate runs inputval.Struct on v. When it fails the response has
// already been written and Validate returns false.
func (e *ErrorLogger) Validate(w http.ResponseWriter, r *http.Request, v any) bool {
	err := inputval.Struct(v)
	if err == nil {
		return true
	}
	if fe, ok := err.(inputval.Errors); ok {
		e.Invalid(w, r, fe)
		return false
	}
	e.LogServerError(w, r, "validator failed", err, "Something went wrong.")
	return false
}

// Unauthorized responds 401.
func Unauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
}

// Forbidden responds 403 without logging.
func Forbidden(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden, "you do not have access to this resource")
}
