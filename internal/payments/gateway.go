package payments

import (
	"context"

	"github.com/google/uuid"
)

// Outcome is the payment result reported by the processor for a checkout
// session. Anything other than OutcomePaid leaves the booking untouched.
type Outcome string

const (
	OutcomePaid   Outcome = "paid"
	OutcomeUnpaid Outcome = "unpaid"
)

// Session is the processor-neutral view of a checkout session. BookingID is
// the correlation id carried in the session metadata.
type Session struct {
	ID            string
	ClientSecret  string
	BookingID     string
	Outcome       Outcome
	CustomerEmail string
}

// WebhookEvent is a verified event pushed by the payment processor.
type WebhookEvent struct {
	ID      string
	Type    string
	Session Session
}

const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Gateway is the boundary to the external payment processor. Signature
// verification failures from ParseWebhookEvent wrap domain.ErrInvalidInput;
// transport failures wrap domain.ErrExternalService.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, priceID string, nights int, bookingID uuid.UUID) (*Session, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error)
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}
