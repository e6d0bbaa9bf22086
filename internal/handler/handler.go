// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"
)

// Service identity reported by Hello.
const (
	ServiceName    = "enroll"
	ServiceVersion = "0.1.0"
)

// Handler serves the root, 404 and 405 responses.
type Handler struct {
	prefix string
}

// New creates a new Handler. prefix is the route prefix of the API.
func New(prefix string) *Handler {
	return &Handler{prefix: prefix}
}

// Hello reports service info.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"service":  ServiceName,
		"version":  ServiceVersion,
		"register": "POST /" + h.prefix + "/user/register",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "resource not found",
		"code":  "NOT_FOUND",
	}
	writeJSON(w, http.StatusNotFound, response)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "method not allowed",
		"code":  "METHOD_NOT_ALLOWED",
	}
	writeJSON(w, http.StatusMethodNotAllowed, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; a failed write means the client went away.
	_ = json.NewEncoder(w).Encode(data)
}
