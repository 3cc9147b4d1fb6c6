package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
)

func (h *Handlers) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID uuid.UUID `json:"bookingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingID == uuid.Nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "booking id is required"))
		return
	}

	clientSecret, err := h.payments.CreateCheckout(r.Context(), req.BookingID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": clientSecret})
}

func (h *Handlers) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "session id is required"))
		return
	}

	status, err := h.payments.SessionStatus(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// StripeWebhook receives raw signed payloads from the payment processor. A
// failed signature never touches booking state; duplicate deliveries and
// already-applied transitions are success.
func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "unreadable payload"))
		return
	}

	err = h.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Webhook Error: " + err.Error()})
			return
		}
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
