package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/bookshelf/server/internal/apperr"
)

// respondJSON writes a JSON response body with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError translates a service error into the stable error body.
// Unexpected errors are logged server-side and returned as a generic
// message so internals never reach the client.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	respondJSON(w, status, map[string]string{
		"status":  "error",
		"message": apperr.Message(err),
	})
}

// respondValidation writes a 400 for malformed request bodies
func respondValidation(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{
		"status":  "error",
		"message": message,
	})
}
