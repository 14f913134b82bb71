package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/shape"
)

// ControlHandler serves the control state, shape selection and colour.
type ControlHandler struct {
	engine Engine
}

// NewControlHandler creates a ControlHandler backed by e.
func NewControlHandler(e Engine) *ControlHandler {
	return &ControlHandler{engine: e}
}

type shapeRequest struct {
	Shape string `json:"shape"`
}

type shapeResponse struct {
	Shape  string   `json:"shape"`
	Shapes []string `json:"shapes"`
}

type colorRequest struct {
	Color string `json:"color"`
}

type colorResponse struct {
	Color   string   `json:"color"`
	Presets []string `json:"presets"`
}

// ServeHTTP routes /api/state, /api/shape and /api/color.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/state":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.engine.Snapshot())
	case "/api/shape":
		switch r.Method {
		case http.MethodGet:
			h.writeShape(w, h.engine.Snapshot().Shape)
		case http.MethodPut:
			h.setShape(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "/api/color":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, colorResponse{Color: h.engine.Snapshot().Color, Presets: control.ColorPresets})
		case http.MethodPut:
			h.setColor(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func (h *ControlHandler) writeShape(w http.ResponseWriter, k shape.Kind) {
	kinds := shape.Kinds()
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}
	writeJSON(w, http.StatusOK, shapeResponse{Shape: k.String(), Shapes: names})
}

// setShape handles PUT /api/shape.
func (h *ControlHandler) setShape(w http.ResponseWriter, r *http.Request) {
	var req shapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	k, ok := shape.Parse(req.Shape)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown shape: "+req.Shape)
		return
	}
	h.writeShape(w, h.engine.SelectShape(k))
}

// setColor handles PUT /api/color.
func (h *ControlHandler) setColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.engine.SetColor(req.Color); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, colorResponse{Color: h.engine.Snapshot().Color, Presets: control.ColorPresets})
}
