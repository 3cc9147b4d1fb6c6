package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Booking is the only aggregate this service owns. It is created PENDING by the
// room allocator and moved to PAID exactly once by the payment reconciler.
type Booking struct {
	ID            uuid.UUID
	UserID        string
	HotelID       uuid.UUID
	CheckIn       time.Time
	CheckOut      time.Time
	RoomNumber    int
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}

type Hotel struct {
	ID            uuid.UUID
	Name          string
	Location      string
	Image         string
	Description   string
	Price         float64
	Rating        float64
	Rooms         int
	Reviews       []uuid.UUID
	StripePriceID string
	Embedding     []float32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Location struct {
	ID   uuid.UUID
	Name string
}

type Review struct {
	ID        uuid.UUID
	UserID    string
	HotelID   uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
}
