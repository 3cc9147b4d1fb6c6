package http

import (
	"context"

	"github.com/google/uuid"
	mongoadapter "github.com/horizone/hotel-bookings-and-payments/internal/adapters/mongo"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/payments"
)

type BookingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

type HotelStore interface {
	Create(ctx context.Context, hotel domain.Hotel) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)
	List(ctx context.Context) ([]domain.Hotel, error)
	Update(ctx context.Context, hotel domain.Hotel) error
	PatchPrice(ctx context.Context, id uuid.UUID, price float64) error
	SetStripePrice(ctx context.Context, id uuid.UUID, priceID string) error
	Delete(ctx context.Context, id uuid.UUID) error
	AttachReview(ctx context.Context, hotelID, reviewID uuid.UUID) error
	Search(ctx context.Context, queryEmbedding []float32) ([]mongoadapter.HotelMatch, error)
}

type LocationStore interface {
	Create(ctx context.Context, loc domain.Location) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Location, error)
	List(ctx context.Context) ([]domain.Location, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReviewStore interface {
	Create(ctx context.Context, review domain.Review) error
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RoomAllocator interface {
	Allocate(ctx context.Context, hotel domain.Hotel, userID string, stay domain.Stay) (domain.Booking, error)
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, bookingID uuid.UUID) (string, error)
	SessionStatus(ctx context.Context, sessionID string) (*payments.SessionStatus, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Assistant interface {
	RecommendHotel(ctx context.Context, query string, hotels []domain.Hotel) (string, error)
}

// PriceProvisioner creates the payment-processor price handle for a hotel's
// nightly rate.
type PriceProvisioner interface {
	CreateNightlyPrice(ctx context.Context, name, description string, price float64) (string, error)
}
