package shared

import (
	"encoding/json"
	"errors"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as an application/json response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// StatusFor maps the error taxonomy to an HTTP status. UserNotFound and
// DependencyUnavailable get distinct codes so a calling UI can tell
// "fix your input" from "retry later".
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps err through StatusFor and writes it. Unauthorized
// responses stay generic so callers cannot probe which check failed.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusUnauthorized {
		Error(w, status, http.StatusText(http.StatusUnauthorized))
		return
	}
	if status == http.StatusInternalServerError {
		Error(w, status, http.StatusText(http.StatusInternalServerError))
		return
	}
	Error(w, status, err.Error())
}
