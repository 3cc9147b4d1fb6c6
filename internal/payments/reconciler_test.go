package payments_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	"github.com/horizone/hotel-bookings-and-payments/internal/payments"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingStore implements the conditional PENDING -> PAID update with the
// same at-most-once semantics as the mongo repository.
type fakeBookingStore struct {
	mu               sync.Mutex
	bookings         map[uuid.UUID]*domain.Booking
	markPaidFailures int
}

func newFakeBookingStore(bookings ...*domain.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: make(map[uuid.UUID]*domain.Booking)}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeBookingStore) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "booking %s", id)
	}
	copied := *b
	return &copied, nil
}

func (s *fakeBookingStore) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markPaidFailures > 0 {
		s.markPaidFailures--
		return false, errors.New("store unavailable")
	}
	b, ok := s.bookings[id]
	if !ok || b.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	b.PaymentStatus = domain.PaymentPaid
	return true, nil
}

type fakeHotelStore struct {
	hotels map[uuid.UUID]*domain.Hotel
}

func (s *fakeHotelStore) Get(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	h, ok := s.hotels[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "hotel %s", id)
	}
	copied := *h
	return &copied, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) Publish(ctx context.Context, key string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (d *fakeDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	return d.seen[eventID], nil
}

func (d *fakeDeduper) MarkSeen(ctx context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	d.seen[eventID] = true
	return nil
}

type fakeGateway struct {
	session  *payments.Session
	event    *payments.WebhookEvent
	parseErr error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, priceID string, nights int, bookingID uuid.UUID) (*payments.Session, error) {
	return &payments.Session{ID: "cs_test", ClientSecret: "secret_" + priceID, BookingID: bookingID.String()}, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payments.Session, error) {
	return g.session, nil
}

func (g *fakeGateway) ParseWebhookEvent(payload []byte, signature string) (*payments.WebhookEvent, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

func pendingBooking(hotelID uuid.UUID) *domain.Booking {
	return &domain.Booking{
		ID:            uuid.New(),
		UserID:        "user-1",
		HotelID:       hotelID,
		CheckIn:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		RoomNumber:    4,
		PaymentStatus: domain.PaymentPending,
	}
}

func newService(gateway payments.Gateway, bookings *fakeBookingStore, hotels *fakeHotelStore, pub *fakePublisher, dedupe *fakeDeduper) *payments.Service {
	if hotels == nil {
		hotels = &fakeHotelStore{hotels: map[uuid.UUID]*domain.Hotel{}}
	}
	return payments.NewService(gateway, bookings, hotels, pub, dedupe, observability.NewLogger())
}

func TestReconcile_AppliedThenNoop(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	pub := &fakePublisher{}
	svc := newService(&fakeGateway{}, store, nil, pub, &fakeDeduper{})

	applied, err := svc.Reconcile(context.Background(), booking.ID, payments.OutcomePaid)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = svc.Reconcile(context.Background(), booking.ID, payments.OutcomePaid)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, []string{"booking.paid"}, pub.published())
}

func TestReconcile_UnpaidOutcomeLeavesBooking(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	pub := &fakePublisher{}
	svc := newService(&fakeGateway{}, store, nil, pub, &fakeDeduper{})

	applied, err := svc.Reconcile(context.Background(), booking.ID, payments.OutcomeUnpaid)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	assert.Empty(t, pub.published())
}

func TestReconcile_UnknownBooking(t *testing.T) {
	svc := newService(&fakeGateway{}, newFakeBookingStore(), nil, &fakePublisher{}, &fakeDeduper{})

	_, err := svc.Reconcile(context.Background(), uuid.New(), payments.OutcomePaid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_ConcurrentExactlyOnce(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	pub := &fakePublisher{}
	svc := newService(&fakeGateway{}, store, nil, pub, &fakeDeduper{})

	const writers = 8
	var wg sync.WaitGroup
	results := make([]bool, writers)
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Reconcile(context.Background(), booking.ID, payments.OutcomePaid)
		}(i)
	}
	wg.Wait()

	appliedCount := 0
	for i, applied := range results {
		require.NoError(t, errs[i], "writer %d", i)
		if applied {
			appliedCount++
		}
	}
	assert.Equal(t, 1, appliedCount)
	assert.Equal(t, []string{"booking.paid"}, pub.published())
}

func TestCreateCheckout(t *testing.T) {
	hotel := &domain.Hotel{ID: uuid.New(), Name: "Grand", StripePriceID: "price_123", Rooms: 10}
	booking := pendingBooking(hotel.ID)
	store := newFakeBookingStore(booking)
	hotels := &fakeHotelStore{hotels: map[uuid.UUID]*domain.Hotel{hotel.ID: hotel}}
	svc := newService(&fakeGateway{}, store, hotels, &fakePublisher{}, &fakeDeduper{})

	clientSecret, err := svc.CreateCheckout(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret_price_123", clientSecret)
}

func TestCreateCheckout_AlreadyPaid(t *testing.T) {
	booking := pendingBooking(uuid.New())
	booking.PaymentStatus = domain.PaymentPaid
	svc := newService(&fakeGateway{}, newFakeBookingStore(booking), nil, &fakePublisher{}, &fakeDeduper{})

	_, err := svc.CreateCheckout(context.Background(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateCheckout_MissingPriceHandle(t *testing.T) {
	hotel := &domain.Hotel{ID: uuid.New(), Name: "Grand", Rooms: 10}
	booking := pendingBooking(hotel.ID)
	hotels := &fakeHotelStore{hotels: map[uuid.UUID]*domain.Hotel{hotel.ID: hotel}}
	svc := newService(&fakeGateway{}, newFakeBookingStore(booking), hotels, &fakePublisher{}, &fakeDeduper{})

	_, err := svc.CreateCheckout(context.Background(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionStatus_ReconcilesThroughPoll(t *testing.T) {
	hotel := &domain.Hotel{ID: uuid.New(), Name: "Grand", StripePriceID: "price_123", Rooms: 10}
	booking := pendingBooking(hotel.ID)
	store := newFakeBookingStore(booking)
	hotels := &fakeHotelStore{hotels: map[uuid.UUID]*domain.Hotel{hotel.ID: hotel}}
	gateway := &fakeGateway{session: &payments.Session{
		ID:            "cs_test",
		BookingID:     booking.ID.String(),
		Outcome:       payments.OutcomePaid,
		CustomerEmail: "guest@example.com",
	}}
	svc := newService(gateway, store, hotels, &fakePublisher{}, &fakeDeduper{})

	status, err := svc.SessionStatus(context.Background(), "cs_test")
	require.NoError(t, err)
	assert.Equal(t, booking.ID, status.BookingID)
	assert.Equal(t, payments.OutcomePaid, status.Status)
	assert.Equal(t, domain.PaymentPaid, status.PaymentStatus)
	assert.Equal(t, "guest@example.com", status.CustomerEmail)
	assert.Equal(t, hotel.ID, status.Hotel.ID)
}

func TestHandleWebhook_BadSignatureTouchesNothing(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	pub := &fakePublisher{}
	gateway := &fakeGateway{parseErr: errors.Wrap(domain.ErrInvalidInput, "signature verification failed")}
	svc := newService(gateway, store, nil, pub, &fakeDeduper{})

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "bad-sig")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	assert.Empty(t, pub.published())
}

func TestHandleWebhook_AppliesAndDedupes(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	pub := &fakePublisher{}
	gateway := &fakeGateway{event: &payments.WebhookEvent{
		ID:   "evt_1",
		Type: payments.EventCheckoutCompleted,
		Session: payments.Session{
			BookingID: booking.ID.String(),
			Outcome:   payments.OutcomePaid,
		},
	}}
	svc := newService(gateway, store, nil, pub, &fakeDeduper{})

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	got, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)

	// Redelivery of the same event id is dropped before the reconciler.
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Equal(t, []string{"booking.paid"}, pub.published())
}

func TestHandleWebhook_RedeliveryAfterTransientFailure(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	store.markPaidFailures = 1
	pub := &fakePublisher{}
	gateway := &fakeGateway{event: &payments.WebhookEvent{
		ID:   "evt_retry",
		Type: payments.EventCheckoutCompleted,
		Session: payments.Session{
			BookingID: booking.ID.String(),
			Outcome:   payments.OutcomePaid,
		},
	}}
	svc := newService(gateway, store, nil, pub, &fakeDeduper{})

	// First delivery hits a transient store failure; the event id must not be
	// recorded as seen, or the redelivery below would be dropped.
	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.Error(t, err)

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	got, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, []string{"booking.paid"}, pub.published())
}

func TestHandleWebhook_IgnoresUnrelatedEvents(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	gateway := &fakeGateway{event: &payments.WebhookEvent{
		ID:   "evt_2",
		Type: "invoice.paid",
		Session: payments.Session{
			BookingID: booking.ID.String(),
			Outcome:   payments.OutcomePaid,
		},
	}}
	svc := newService(gateway, store, nil, &fakePublisher{}, &fakeDeduper{})

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	got, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
}

func TestHandleWebhook_DedupeOutageStillReconciles(t *testing.T) {
	booking := pendingBooking(uuid.New())
	store := newFakeBookingStore(booking)
	gateway := &fakeGateway{event: &payments.WebhookEvent{
		ID:   "evt_3",
		Type: payments.EventAsyncPaymentSucceeded,
		Session: payments.Session{
			BookingID: booking.ID.String(),
			Outcome:   payments.OutcomePaid,
		},
	}}
	svc := newService(gateway, store, nil, &fakePublisher{}, &fakeDeduper{err: errors.New("redis down")})

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	got, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
}
