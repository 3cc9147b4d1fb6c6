// Package allocator assigns room numbers to new bookings. The room timeline is
// never locked: each attempt draws a candidate room from the hotel's inventory
// and tries a conditional insert, retrying on conflict up to a configured
// budget. Correctness rests on the store's insert being atomic under a unique
// (hotel, room, check-in) constraint.
package allocator

import (
	"context"
	"encoding/json"
	"math/rand/v2"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

// BookingStore inserts a booking only if no booking for the same hotel and
// room overlaps its [check-in, check-out) interval. A lost race returns
// domain.ErrConflict.
type BookingStore interface {
	InsertIfRoomFree(ctx context.Context, booking domain.Booking) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

type Allocator struct {
	store       BookingStore
	pub         EventPublisher
	maxAttempts int
	logger      observability.Logger
	draw        func(rooms int) int
}

func New(store BookingStore, pub EventPublisher, maxAttempts int, logger observability.Logger) *Allocator {
	return &Allocator{
		store:       store,
		pub:         pub,
		maxAttempts: maxAttempts,
		logger:      logger,
		draw: func(rooms int) int {
			return rand.IntN(rooms) + 1
		},
	}
}

// Allocate creates a PENDING booking with a room number that does not overlap
// any existing booking for the hotel. Transient store failures consume
// attempts like conflicts do; once the budget is spent the caller gets
// domain.ErrRoomsExhausted rather than an unbounded loop.
func (a *Allocator) Allocate(ctx context.Context, hotel domain.Hotel, userID string, stay domain.Stay) (domain.Booking, error) {
	if _, err := domain.NewStay(stay.CheckIn, stay.CheckOut); err != nil {
		return domain.Booking{}, err
	}
	if hotel.Rooms < 1 {
		return domain.Booking{}, errors.Wrapf(domain.ErrRoomsExhausted, "hotel %s has no rooms", hotel.ID)
	}

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Booking{}, err
		}

		booking := domain.NewBooking(hotel.ID, userID, stay, a.draw(hotel.Rooms))
		err := a.store.InsertIfRoomFree(ctx, booking)
		if err == nil {
			observability.AllocatorAttempts.Observe(float64(attempt))
			a.publishCreated(ctx, booking)
			return booking, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		a.logger.WithField("attempt", attempt).Error("allocation insert failed", err)
		lastErr = err
	}

	observability.AllocatorExhausted.Inc()
	if lastErr != nil {
		return domain.Booking{}, errors.WithSecondaryError(
			errors.Wrapf(domain.ErrRoomsExhausted, "no free room after %d attempts", a.maxAttempts), lastErr)
	}
	return domain.Booking{}, errors.Wrapf(domain.ErrRoomsExhausted, "no free room after %d attempts", a.maxAttempts)
}

// The booking is durable once the insert lands; event delivery is best effort.
func (a *Allocator) publishCreated(ctx context.Context, booking domain.Booking) {
	if a.pub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"booking_id":  booking.ID,
		"hotel_id":    booking.HotelID,
		"user_id":     booking.UserID,
		"room_number": booking.RoomNumber,
	})
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        payload,
	}
	if err := a.pub.Publish(ctx, "booking.created", msg); err != nil {
		a.logger.WithField("booking_id", booking.ID).Error("failed to publish booking.created", err)
	}
}
