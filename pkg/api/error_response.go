package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(response)
}

// StatusFor maps a storage error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDocument),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDiskFull):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

// writeStorageError logs a failed operation and writes the mapped response.
func writeStorageError(w http.ResponseWriter, op, collName string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s failed for collection '%s': %v", op, collName, err)
	} else {
		log.Printf("WARN: %s rejected for collection '%s': %v", op, collName, err)
	}
	WriteJSONError(w, status, err.Error())
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}
