package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dahabiya-site/internal/logger"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// NotFound builds a 404 AppError.
func NotFound(err error) *AppError {
	return &AppError{Error: err, Message: "Not Found", Code: http.StatusNotFound}
}

// BadRequest builds a 400 AppError whose message is shown to the client.
func BadRequest(err error) *AppError {
	return &AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
}

// Internal builds a 500 AppError.
func Internal(err error, msg string) *AppError {
	return &AppError{Error: err, Message: msg, Code: http.StatusInternalServerError}
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Renderer renders a named template.
type Renderer interface {
	Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error
}

// Error is a middleware that converts handler errors into user-friendly error pages.
func Error(log logger.Logger, v Renderer) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					renderError(w, r, v, log, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			if err := next(w, r); err != nil {
				logAppError(log, r, err)
				renderError(w, r, v, log, err.Code, err.Message)
			}
		})
	}
}

// RenderError writes the error page for code.
func RenderError(w http.ResponseWriter, r *http.Request, v Renderer, log logger.Logger, code int) {
	renderError(w, r, v, log, code, http.StatusText(code))
}

func renderError(w http.ResponseWriter, r *http.Request, v Renderer, log logger.Logger, code int, text string) {
	data := map[string]interface{}{
		"StatusCode": code,
		"StatusText": text,
		"Title":      text,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := v.Render(w, r, "error.html", data); err != nil {
		log.Error(err, "failed to render error page")
	}
}

// API is the JSON counterpart of Error: failures are written as {"error": message}.
func API(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					WriteJSONError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			if err := next(w, r); err != nil {
				logAppError(log, r, err)
				WriteJSONError(w, err.Code, err.Message)
			}
		})
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes {"error": msg}.
func WriteJSONError(w http.ResponseWriter, code int, msg string) {
	_ = WriteJSON(w, code, map[string]string{"error": msg})
}

func logAppError(log logger.Logger, r *http.Request, err *AppError) {
	l := log.With(map[string]interface{}{"path": r.URL.Path, "status": err.Code})
	if err.Code >= http.StatusInternalServerError {
		l.Error(err.Error, err.Message)
		return
	}
	msg := err.Message
	if err.Error != nil {
		msg += ": " + err.Error.Error()
	}
	l.Debug(msg)
}
