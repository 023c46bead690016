package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError sends the JSON error envelope shared with the handlers
func writeError(w http.ResponseWriter, code, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}
