package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
)

type locationRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) GetAllLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (h *Handlers) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "location name is required"))
		return
	}

	loc := domain.Location{ID: uuid.New(), Name: req.Name}
	if err := h.locations.Create(r.Context(), loc); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (h *Handlers) GetLocationByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid location id"))
		return
	}

	loc, err := h.locations.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *Handlers) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid location id"))
		return
	}

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "location name is required"))
		return
	}

	if err := h.locations.Rename(r.Context(), id, req.Name); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid location id"))
		return
	}

	if err := h.locations.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
