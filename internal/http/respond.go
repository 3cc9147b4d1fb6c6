package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors onto the stable status contract. Nothing is
// swallowed: unknown errors surface as 500 with a generic message.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, message = http.StatusConflict, "conflict, try again"
	case errors.Is(err, domain.ErrRoomsExhausted):
		status, message = http.StatusServiceUnavailable, "no rooms available for the requested dates"
	case errors.Is(err, domain.ErrExternalService):
		status, message = http.StatusBadGateway, "upstream service failure"
	default:
		h.logger.Error("unhandled error", err)
	}

	writeJSON(w, status, map[string]string{"message": message})
}
