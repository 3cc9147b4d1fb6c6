package stripe

import (
	"context"
	"encoding/json"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	"github.com/horizone/hotel-bookings-and-payments/internal/payments"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/product"
	"github.com/stripe/stripe-go/v82/webhook"
)

// metadata key carrying the correlation id on checkout sessions
const bookingMetadataKey = "bookingid"

// Gateway implements payments.Gateway against the Stripe API.
type Gateway struct {
	endpointSecret string
	returnURL      string
	logger         observability.Logger
}

func NewGateway(apiKey, endpointSecret, frontendURL string, logger observability.Logger) *Gateway {
	stripe.Key = apiKey
	return &Gateway{
		endpointSecret: endpointSecret,
		returnURL:      frontendURL + "/booking/complete?session_id={CHECKOUT_SESSION_ID}",
		logger:         logger,
	}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, priceID string, nights int, bookingID uuid.UUID) (*payments.Session, error) {
	params := &stripe.CheckoutSessionParams{
		UIMode: stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(int64(nights)),
			},
		},
		ReturnURL: stripe.String(g.returnURL),
	}
	params.Context = ctx
	params.AddMetadata(bookingMetadataKey, bookingID.String())

	s, err := session.New(params)
	if err != nil {
		return nil, errors.Wrap(domain.ErrExternalService, err.Error())
	}
	return fromCheckoutSession(s), nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payments.Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, errors.Wrap(domain.ErrExternalService, err.Error())
	}
	return fromCheckoutSession(s), nil
}

// ParseWebhookEvent verifies the payload signature against the shared endpoint
// secret and extracts the checkout session it describes. A bad signature wraps
// domain.ErrInvalidInput so the handler answers 4xx without touching state.
func (g *Gateway) ParseWebhookEvent(payload []byte, signature string) (*payments.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.endpointSecret)
	if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidInput, err.Error())
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, errors.Wrap(domain.ErrInvalidInput, "malformed event object")
	}

	return &payments.WebhookEvent{
		ID:      event.ID,
		Type:    string(event.Type),
		Session: *fromCheckoutSession(&s),
	}, nil
}

// CreateNightlyPrice provisions a product with a default price for the hotel's
// nightly rate and returns the price handle stored on the hotel document.
func (g *Gateway) CreateNightlyPrice(ctx context.Context, name, description string, price float64) (string, error) {
	params := &stripe.ProductParams{
		Name:        stripe.String(name),
		Description: stripe.String(description),
		DefaultPriceData: &stripe.ProductDefaultPriceDataParams{
			UnitAmount: stripe.Int64(int64(math.Round(price * 100))),
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
		},
	}
	params.Context = ctx

	p, err := product.New(params)
	if err != nil {
		return "", errors.Wrap(domain.ErrExternalService, err.Error())
	}
	if p.DefaultPrice == nil {
		return "", errors.Wrap(domain.ErrExternalService, "product created without default price")
	}
	return p.DefaultPrice.ID, nil
}

func fromCheckoutSession(s *stripe.CheckoutSession) *payments.Session {
	out := &payments.Session{
		ID:           s.ID,
		ClientSecret: s.ClientSecret,
		BookingID:    s.Metadata[bookingMetadataKey],
		Outcome:      payments.Outcome(s.PaymentStatus),
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}
