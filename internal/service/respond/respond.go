// Package respond holds the JSON response helpers shared by the HTTP services.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/nikhil/sprintboard/internal/apperrors"
)

// JSON writes the payload with the given status code.
func JSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Error writes {"error": message} with the given status code.
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, map[string]string{"error": message})
}

// AppError maps the classified error onto a response. Client errors carry
// the human-readable message; server errors carry a generic message plus
// the underlying error text.
func AppError(w http.ResponseWriter, appErr *apperrors.AppError, generic string) {
	status := appErr.HTTPStatus()
	if status < http.StatusInternalServerError {
		Error(w, status, appErr.Message)
		return
	}
	JSON(w, status, map[string]string{"error": generic, "details": appErr.Details()})
}
