package utils

import (
	"encoding/json"
	"net/http"

	"github.com/ilkin0/bomprobe/internal/api/types"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(v)
}

func Ok(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// Error writes the {"error": msg} body the extraction service uses for failures.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, types.ErrorResponse{Error: msg})
}
