package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// decodeJSON reads the request body into v. The body is limited to 1MB.
// Unknown fields are ignored because browser clients send extra keys.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return errors.New("extra data in request body")
	}
	return nil
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error shape shared by every endpoint.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondJSONError writes {"error": msg}.
func respondJSONError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

// respondJSONDetails writes {"error": msg, "details": err}.
func respondJSONDetails(w http.ResponseWriter, status int, msg string, err error) {
	respondJSON(w, status, errorBody{Error: msg, Details: err.Error()})
}
