// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Body is the JSON error envelope: {"error": {...}}.
type Body struct {
	Error Detail `json:"error"`
}

// Detail carries a stable code, a user-facing message and optional
// per-field messages.
type Detail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Status maps an error kind to its HTTP status.
func Status(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindProfileNotFound, apperr.KindAssignmentNotFound, apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAlreadySubmitted, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteCode writes an error envelope for a bare status and code.
func WriteCode(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, Body{Error: Detail{Code: code, Message: msg}})
}

// ErrorLogger writes classified errors as JSON and logs the ones that are
// the server's fault.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// Write responds with err. Errors that are not *apperr.Error become 500s
// with a generic message; the detail only goes to the log.
func (l *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		l.LogServerError(w, r, "unclassified error", err, "Something went wrong.")
		return
	}
	status := Status(ae.Kind)
	if status >= 500 {
		l.Log.Error(ae.Op,
			zap.String("code", ae.Kind.Code()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(ae.Err))
	}
	msg := ae.Msg
	if msg == "" {
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, Body{Error: Detail{Code: ae.Kind.Code(), Message: msg, Fields: ae.Fields}})
}

// LogServerError logs err and responds 500 with userMsg.
func (l *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	l.Log.Error(msg, zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	WriteCode(w, http.StatusInternalServerError, apperr.KindInternal.Code(), userMsg)
}

// LogBadRequest logs err at warn level and responds 400 with userMsg.
func (l *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	l.Log.Warn(msg, zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	WriteCode(w, http.StatusBadRequest, apperr.KindValidation.Code(), userMsg)
}

// Handler serves the fallback error routes.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	WriteCode(w, http.StatusForbidden, "forbidden", "You don't have permission to view this page.")
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteCode(w, http.StatusUnauthorized, "unauthorized", "Please sign in to continue.")
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteCode(w, http.StatusNotFound, apperr.KindNotFound.Code(), "Not found.")
}

// MethodNotAllowed is the router's fallback for unsupported methods.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteCode(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.")
}
