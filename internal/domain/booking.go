package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stay is a half-open [CheckIn, CheckOut) date range.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	if !checkIn.Before(checkOut) {
		return Stay{}, fmt.Errorf("%w: check-in must be before check-out", ErrInvalidInput)
	}
	return Stay{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}, nil
}

// Overlaps reports whether an existing booking interval conflicts with the
// stay: existing.checkIn <= stay.checkOut AND existing.checkOut >= stay.checkIn.
func (s Stay) Overlaps(checkIn, checkOut time.Time) bool {
	return !checkIn.After(s.CheckOut) && !checkOut.Before(s.CheckIn)
}

// Nights rounds partial nights up, matching how the charge amount is computed.
func (s Stay) Nights() int {
	d := s.CheckOut.Sub(s.CheckIn)
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

func NewBooking(hotelID uuid.UUID, userID string, stay Stay, roomNumber int) Booking {
	return Booking{
		ID:            uuid.New(),
		UserID:        userID,
		HotelID:       hotelID,
		CheckIn:       stay.CheckIn,
		CheckOut:      stay.CheckOut,
		RoomNumber:    roomNumber,
		PaymentStatus: PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}
}
