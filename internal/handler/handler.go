// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/faceforge/faceforge/internal/handler/dto"
)

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// APIIndex lists the available endpoints.
// GET /api
func APIIndex(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"name":    "FaceForge API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /api/submit":                       "Create a submission (multipart: name, email, phone, terms, image)",
			"GET /api/submissions":                   "List submissions (page, limit, sort, order)",
			"GET /api/submissions/{id}":              "Get a submission",
			"GET /api/submissions/{id}/download":     "Download the transformed image",
			"DELETE /api/submissions/{id}":           "Delete a submission (requires X-Admin-Key)",
			"GET /api/stats":                         "Submission statistics",
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: code, Message: message},
	})
}
