// Package httpx holds the JSON request/response helpers shared by every
// feature handler. Encoding and decoding go through waffle's httputil; this
// package adds the error envelope with per-field messages and body limits.
package httpx

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/waffle/httputil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxBody bounds JSON request bodies.
const DefaultMaxBody = 1 << 20

// ErrorBody is the envelope for every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSON(w, status, ErrorBody{Error: msg})
}

// NoContent writes 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON decodes a single JSON object from r into dst. The body is
// capped at DefaultMaxBody; unknown fields and trailing data are rejected.
// Error messages are safe to show to clients.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, DefaultMaxBody)
	}
	return httputil.BindJSON(r, dst)
}

// ObjectIDs parses hex ids, skipping blanks. The first malformed id is an error.
func ObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if h == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", h)
		}
		out = append(out, oid)
	}
	return out, nil
}
