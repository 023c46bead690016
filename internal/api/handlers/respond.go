package handlers

import (
	"encoding/json"
	"net/http"
)

func jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// jsonError writes {"error": code, "message": msg}
func jsonError(w http.ResponseWriter, code, msg string, status int) {
	jsonResponse(w, map[string]string{"error": code, "message": msg}, status)
}

func badInput(w http.ResponseWriter, msg string) {
	jsonError(w, "bad_input", msg, http.StatusBadRequest)
}
