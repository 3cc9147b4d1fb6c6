package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
)

type createReviewRequest struct {
	HotelID uuid.UUID `json:"hotelId"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
}

func (h *Handlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid review data"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "rating must be between 1 and 5"))
		return
	}

	// Hotel must exist before the review is attached to it.
	if _, err := h.hotels.Get(r.Context(), req.HotelID); err != nil {
		h.writeError(w, err)
		return
	}

	review := domain.Review{
		ID:      uuid.New(),
		UserID:  userID,
		HotelID: req.HotelID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.reviews.Create(r.Context(), review); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.hotels.AttachReview(r.Context(), req.HotelID, review.ID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handlers) GetReviewsForHotel(w http.ResponseWriter, r *http.Request) {
	hotelID, err := uuid.Parse(chi.URLParam(r, "hotelId"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel id"))
		return
	}

	reviews, err := h.reviews.ListByHotel(r.Context(), hotelID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reviewId"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid review id"))
		return
	}

	if err := h.reviews.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
