// Package handlers contains the HTTP handlers for the blog API.
// Handlers are grouped by concern (public, comments, auth, contact, admin)
// and receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodySize caps JSON request bodies (1 MB) to keep decode cheap.
const maxBodySize = 1 << 20

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body. message is user-facing.
func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondMessage writes a JSON success body with a user-facing message.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// decodeJSON reads the request body into v, enforcing the size cap.
// Unknown fields are tolerated so clients can echo back full objects.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return err
	}
	// A second value means trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON body")
	}
	return nil
}
