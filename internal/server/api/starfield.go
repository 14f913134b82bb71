package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/starfield"
)

// StarfieldHandler serves the background stars with their current opacity.
type StarfieldHandler struct {
	source StarSource
}

// NewStarfieldHandler creates a StarfieldHandler.
func NewStarfieldHandler(s StarSource) *StarfieldHandler {
	return &StarfieldHandler{source: s}
}

type starfieldResponse struct {
	Stars     []starfield.Star `json:"stars"`
	Opacity   []float64        `json:"opacity"`
	RotationX float64          `json:"rotation_x"`
	RotationY float64          `json:"rotation_y"`
	Clock     float64          `json:"clock"`
}

// ServeHTTP handles GET /api/starfield.
func (h *StarfieldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resp starfieldResponse
	h.source.WithStars(func(f *starfield.Field) {
		resp.Stars = append([]starfield.Star(nil), f.Stars()...)
		resp.Opacity = f.Opacities(nil)
		resp.RotationX, resp.RotationY = f.Rotation()
		resp.Clock = f.Clock()
	})
	writeJSON(w, http.StatusOK, resp)
}
