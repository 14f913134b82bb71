package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// ProfileHandler handles calibration profile resources.
type ProfileHandler struct {
	store  *store.Store
	engine Engine
}

// NewProfileHandler creates a ProfileHandler. engine may be nil, in which
// case profiles can be stored but not applied.
func NewProfileHandler(s *store.Store, e Engine) *ProfileHandler {
	return &ProfileHandler{store: s, engine: e}
}

type createProfileRequest struct {
	Name   string          `json:"name"`
	Config *gesture.Config `json:"config"`
}

type profileResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Config    gesture.Config `json:"config"`
	Active    bool           `json:"active"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

func toProfileResponse(p *store.Profile, activeID string) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Config:    p.Config,
		Active:    p.ID == activeID,
		CreatedAt: p.CreatedAt.Format(timeFormat),
		UpdatedAt: p.UpdatedAt.Format(timeFormat),
	}
}

// ServeHTTP routes /api/profiles, /api/profiles/{id} and /api/profiles/{id}/apply.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/apply"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.apply(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, path)
	case http.MethodDelete:
		h.delete(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) activeID() string {
	id, err := h.store.Settings().Get(store.KeyActiveProfile)
	if err != nil {
		return ""
	}
	return id
}

// list handles GET /api/profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	active := h.activeID()
	response := listProfilesResponse{Profiles: make([]profileResponse, 0, len(profiles))}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toProfileResponse(p, active))
	}
	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/profiles. Omitted thresholds take their defaults.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	req := createProfileRequest{}
	cfg := gesture.DefaultConfig()
	req.Config = &cfg
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Config == nil {
		req.Config = &cfg
	}
	if err := req.Config.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.store.Profiles().GetByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, "Profile name already exists")
		return
	}

	p := &store.Profile{Name: req.Name, Config: *req.Config}
	if err := h.store.Profiles().Create(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, toProfileResponse(p, h.activeID()))
}

// get handles GET /api/profiles/{id}.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p, h.activeID()))
}

// delete handles DELETE /api/profiles/{id}.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apply handles POST /api/profiles/{id}/apply.
func (h *ProfileHandler) apply(w http.ResponseWriter, r *http.Request, id string) {
	if h.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "No running engine")
		return
	}
	p, err := h.engine.ApplyProfile(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p, p.ID))
}
