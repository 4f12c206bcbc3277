// Package handlers implements the JSON HTTP API consumed by the mobile
// clients.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON writes a success envelope: {"data": v}.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"data": v}); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError writes an error envelope: {"error": {"message": msg}}.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg},
	})
}

// writeFieldErrors writes a validation envelope with per-field messages.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": "validation failed",
			"fields":  fields,
		},
	})
}
