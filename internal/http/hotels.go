package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
)

type createHotelRequest struct {
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Rooms       int     `json:"rooms"`
}

func (req createHotelRequest) validate() error {
	if req.Name == "" || req.Image == "" || req.Location == "" || req.Description == "" {
		return errors.Wrap(domain.ErrInvalidInput, "invalid hotel data")
	}
	if req.Price <= 0 {
		return errors.Wrap(domain.ErrInvalidInput, "price must be positive")
	}
	if req.Rooms < 1 {
		return errors.Wrap(domain.ErrInvalidInput, "rooms must be positive")
	}
	return nil
}

func (h *Handlers) GetAllHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.hotels.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

// CreateHotel also provisions the embedding used by semantic search and the
// payment-processor price handle for the nightly rate.
func (h *Handlers) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var req createHotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel data"))
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, err)
		return
	}

	embedding, err := h.embedder.Embed(r.Context(),
		fmt.Sprintf("%s %s %s %g", req.Name, req.Description, req.Location, req.Price))
	if err != nil {
		h.writeError(w, err)
		return
	}

	priceID, err := h.pricer.CreateNightlyPrice(r.Context(), req.Name, req.Description, req.Price)
	if err != nil {
		h.writeError(w, err)
		return
	}

	hotel := domain.Hotel{
		ID:            uuid.New(),
		Name:          req.Name,
		Location:      req.Location,
		Image:         req.Image,
		Description:   req.Description,
		Price:         req.Price,
		Rooms:         req.Rooms,
		StripePriceID: priceID,
		Embedding:     embedding,
	}
	if err := h.hotels.Create(r.Context(), hotel); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func (h *Handlers) SearchHotels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "query is required"))
		return
	}

	queryEmbedding, err := h.embedder.Embed(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}

	matches, err := h.hotels.Search(r.Context(), queryEmbedding)
	if err != nil {
		h.writeError(w, err)
		return
	}

	type hit struct {
		Hotel domain.Hotel `json:"hotel"`
		Score float64      `json:"score"`
	}
	hits := make([]hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, hit{Hotel: m.Hotel, Score: m.Score})
	}
	writeJSON(w, http.StatusOK, hits)
}

// RecommendHotel answers vibe queries with the assistant. Conversation state
// is per request; nothing is accumulated across callers.
func (h *Handlers) RecommendHotel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "query is required"))
		return
	}

	hotels, err := h.hotels.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	answer, err := h.assistant.RecommendHotel(r.Context(), req.Query, hotels)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

func (h *Handlers) GetHotelByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel id"))
		return
	}

	hotel, err := h.hotels.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel id"))
		return
	}

	var req createHotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel data"))
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, err)
		return
	}

	hotel := domain.Hotel{
		ID:          id,
		Name:        req.Name,
		Location:    req.Location,
		Image:       req.Image,
		Description: req.Description,
		Price:       req.Price,
		Rooms:       req.Rooms,
	}
	if err := h.hotels.Update(r.Context(), hotel); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) PatchHotelPrice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel id"))
		return
	}

	var req struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price <= 0 {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "price is required"))
		return
	}

	if err := h.hotels.PatchPrice(r.Context(), id, req.Price); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel id"))
		return
	}

	if err := h.hotels.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CreateHotelPrice (re)creates the payment-processor price handle for an
// existing hotel.
func (h *Handlers) CreateHotelPrice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel id"))
		return
	}

	hotel, err := h.hotels.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	priceID, err := h.pricer.CreateNightlyPrice(r.Context(), hotel.Name, hotel.Description, hotel.Price)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.hotels.SetStripePrice(r.Context(), id, priceID); err != nil {
		h.writeError(w, err)
		return
	}

	hotel.StripePriceID = priceID
	writeJSON(w, http.StatusOK, hotel)
}
