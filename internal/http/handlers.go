package http

import (
	"net/http"

	"github.com/horizone/hotel-bookings-and-payments/internal/config"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
)

type Handlers struct {
	cfg       *config.Config
	bookings  BookingStore
	hotels    HotelStore
	locations LocationStore
	reviews   ReviewStore
	allocator RoomAllocator
	payments  PaymentService
	embedder  Embedder
	assistant Assistant
	pricer    PriceProvisioner
	logger    observability.Logger
}

func NewHandlers(
	cfg *config.Config,
	bookings BookingStore,
	hotels HotelStore,
	locations LocationStore,
	reviews ReviewStore,
	allocator RoomAllocator,
	payments PaymentService,
	embedder Embedder,
	assistant Assistant,
	pricer PriceProvisioner,
	logger observability.Logger,
) *Handlers {
	return &Handlers{
		cfg:       cfg,
		bookings:  bookings,
		hotels:    hotels,
		locations: locations,
		reviews:   reviews,
		allocator: allocator,
		payments:  payments,
		embedder:  embedder,
		assistant: assistant,
		pricer:    pricer,
		logger:    logger,
	}
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
