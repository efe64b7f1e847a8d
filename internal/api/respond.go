// Package api holds the JSON response helpers shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as the response body. Encoding failures are ignored: the
// status line is already on the wire.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes the {success,message} envelope.
func Success(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"success": true, "message": message})
}

// Fail writes the failure envelope. The message must stay generic: no
// tokens, identifiers or internal detail.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"success": false, "message": message})
}
