// Package hook runs external executables in response to swipe and shape events.
package hook

import (
	"encoding/json"
	"slices"
	"time"
)

// EventType names an engine event a hook can subscribe to.
type EventType string

const (
	// EventSwipe fires once per accepted swipe.
	EventSwipe EventType = "swipe"
	// EventShape fires when the target shape changes.
	EventShape EventType = "shape"
)

// Manifest describes a hook's metadata and subscriptions.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []EventType     `json:"events"`
	Params      json.RawMessage `json:"params,omitempty"`
}

// Event is written as JSON to a hook's stdin.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Direction string          `json:"direction,omitempty"`
	Shape     string          `json:"shape"`
	Color     string          `json:"color"`
	Expansion float64         `json:"expansion"`
	Timestamp time.Time       `json:"timestamp"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Response is read as JSON from a hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribes to t.
func (h *Hook) Handles(t EventType) bool {
	return slices.Contains(h.Manifest.Events, t)
}
