package payments

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

type BookingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// MarkPaid transitions payment status PENDING -> PAID only if it is
	// currently PENDING, and reports whether the update matched.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
}

type HotelStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

// Deduper remembers webhook event ids so redelivered events are dropped before
// they reach the reconciler. The reconciler itself is idempotent; dedupe only
// saves the round trip. An event id is marked seen only after its reconcile
// succeeded, so a transient store failure leaves redelivery able to retry.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string) error
}

// SessionStatus is what the status-poll endpoint renders back to the user.
type SessionStatus struct {
	BookingID     uuid.UUID            `json:"bookingId"`
	Booking       *domain.Booking      `json:"booking"`
	Hotel         *domain.Hotel        `json:"hotel"`
	Status        Outcome              `json:"status"`
	CustomerEmail string               `json:"customerEmail,omitempty"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
}

type Service struct {
	gateway  Gateway
	bookings BookingStore
	hotels   HotelStore
	pub      EventPublisher
	dedupe   Deduper
	logger   observability.Logger
}

func NewService(gateway Gateway, bookings BookingStore, hotels HotelStore, pub EventPublisher, dedupe Deduper, logger observability.Logger) *Service {
	return &Service{
		gateway:  gateway,
		bookings: bookings,
		hotels:   hotels,
		pub:      pub,
		dedupe:   dedupe,
		logger:   logger,
	}
}

// Reconcile applies a payment outcome to a booking at most once. Duplicate
// delivery and webhook/poll races both land on the same conditional update, so
// the second writer sees applied=false and treats it as success.
func (s *Service) Reconcile(ctx context.Context, bookingID uuid.UUID, outcome Outcome) (bool, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return false, err
	}

	if outcome != OutcomePaid {
		return false, nil
	}

	applied, err := s.bookings.MarkPaid(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if !applied {
		observability.ReconcileNoop.Inc()
		return false, nil
	}
	observability.ReconcileApplied.Inc()

	payload, _ := json.Marshal(map[string]interface{}{
		"booking_id": booking.ID,
		"hotel_id":   booking.HotelID,
		"user_id":    booking.UserID,
	})
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        payload,
	}
	if err := s.pub.Publish(ctx, "booking.paid", msg); err != nil {
		// The transition is durable; event delivery is best effort.
		s.logger.WithField("booking_id", booking.ID).Error("failed to publish booking.paid", err)
	}

	return true, nil
}

// CreateCheckout builds a checkout session for a PENDING booking, priced as
// the hotel's nightly price handle times the number of nights.
func (s *Service) CreateCheckout(ctx context.Context, bookingID uuid.UUID) (string, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.PaymentStatus == domain.PaymentPaid {
		return "", errors.Wrap(domain.ErrInvalidInput, "booking is already paid")
	}

	hotel, err := s.hotels.Get(ctx, booking.HotelID)
	if err != nil {
		return "", err
	}
	if hotel.StripePriceID == "" {
		return "", errors.Wrap(domain.ErrInvalidInput, "hotel does not have a price handle")
	}

	stay := domain.Stay{CheckIn: booking.CheckIn, CheckOut: booking.CheckOut}
	session, err := s.gateway.CreateCheckoutSession(ctx, hotel.StripePriceID, stay.Nights(), booking.ID)
	if err != nil {
		return "", err
	}
	return session.ClientSecret, nil
}

// SessionStatus resolves a session to its booking, runs the reconciler with
// the session's outcome and returns the combined view. This is the poll half
// of the delivery model; it funnels through the same conditional update as the
// webhook.
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	bookingID, err := uuid.Parse(session.BookingID)
	if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidInput, "session has no booking reference")
	}

	if _, err := s.Reconcile(ctx, bookingID, session.Outcome); err != nil {
		return nil, err
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	hotel, err := s.hotels.Get(ctx, booking.HotelID)
	if err != nil {
		return nil, err
	}

	return &SessionStatus{
		BookingID:     booking.ID,
		Booking:       booking,
		Hotel:         hotel,
		Status:        session.Outcome,
		CustomerEmail: session.CustomerEmail,
		PaymentStatus: booking.PaymentStatus,
	}, nil
}

// HandleWebhook verifies and applies a pushed payment event. A signature
// failure is fatal for the event and never touches booking state. Redelivered
// event ids and already-applied transitions both succeed as no-ops.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		return err
	}

	if event.Type != EventCheckoutCompleted && event.Type != EventAsyncPaymentSucceeded {
		return nil
	}

	seen, err := s.dedupe.Seen(ctx, event.ID)
	if err != nil {
		s.logger.Error("webhook dedupe unavailable, reconciling anyway", err)
	} else if seen {
		return nil
	}

	bookingID, err := uuid.Parse(event.Session.BookingID)
	if err != nil {
		return errors.Wrap(domain.ErrInvalidInput, "event session has no booking reference")
	}

	if _, err := s.Reconcile(ctx, bookingID, event.Session.Outcome); err != nil {
		return err
	}

	// Marked only after the transition is durable: a reconcile failure must
	// leave the event id unseen so the processor's redelivery can retry.
	if err := s.dedupe.MarkSeen(ctx, event.ID); err != nil {
		s.logger.WithField("event_id", event.ID).Error("failed to record webhook event id", err)
	}
	return nil
}
