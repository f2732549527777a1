package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as the response body. Maps gain "success": true unless
// they set it themselves.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if m, ok := v.(map[string]any); ok {
		if _, set := m["success"]; !set {
			m["success"] = true
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"success": false, "message": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{
		"success": false,
		"message": msg,
	})
}
