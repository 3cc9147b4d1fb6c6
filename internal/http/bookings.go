package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
)

type createBookingRequest struct {
	HotelID  uuid.UUID `json:"hotelId"`
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}

type bookingResponse struct {
	ID            uuid.UUID            `json:"_id"`
	UserID        string               `json:"userId"`
	HotelID       uuid.UUID            `json:"hotelId"`
	CheckIn       time.Time            `json:"checkIn"`
	CheckOut      time.Time            `json:"checkOut"`
	RoomNumber    int                  `json:"roomNumber"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		HotelID:       b.HotelID,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		RoomNumber:    b.RoomNumber,
		PaymentStatus: b.PaymentStatus,
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid booking data"))
		return
	}

	stay, err := domain.NewStay(req.CheckIn, req.CheckOut)
	if err != nil {
		h.writeError(w, err)
		return
	}

	hotel, err := h.hotels.Get(r.Context(), req.HotelID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	booking, err := h.allocator.Allocate(r.Context(), *hotel, userID, stay)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (h *Handlers) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}

func (h *Handlers) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid booking id"))
		return
	}

	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(*booking))
}

func (h *Handlers) GetBookingsForHotel(w http.ResponseWriter, r *http.Request) {
	hotelID, err := uuid.Parse(chi.URLParam(r, "hotelId"))
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid hotel id"))
		return
	}

	bookings, err := h.bookings.ListByHotel(r.Context(), hotelID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}

func (h *Handlers) GetBookingsForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid user id"))
		return
	}

	bookings, err := h.bookings.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}
