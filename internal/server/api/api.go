// Package api provides the HTTP API handlers for Mudra.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/starfield"
	"github.com/ayusman/mudra/internal/store"
)

// Engine is the slice of the running app the handlers drive.
type Engine interface {
	Snapshot() control.State
	SelectShape(k shape.Kind) shape.Kind
	SetColor(color string) error
	ApplyProfile(id string) (*store.Profile, error)
}

// StarSource exposes the background starfield.
type StarSource interface {
	WithStars(fn func(f *starfield.Field))
}

const timeFormat = time.RFC3339

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
