package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/config"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	"github.com/horizone/hotel-bookings-and-payments/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHotels struct {
	HotelStore
	hotel *domain.Hotel
	err   error
}

func (s *stubHotels) Get(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hotel, nil
}

type stubAllocator struct {
	booking domain.Booking
	err     error
}

func (s *stubAllocator) Allocate(ctx context.Context, hotel domain.Hotel, userID string, stay domain.Stay) (domain.Booking, error) {
	if s.err != nil {
		return domain.Booking{}, s.err
	}
	b := s.booking
	b.UserID = userID
	b.HotelID = hotel.ID
	return b, nil
}

type stubPayments struct {
	clientSecret string
	status       *payments.SessionStatus
	webhookErr   error
	checkoutErr  error
}

func (s *stubPayments) CreateCheckout(ctx context.Context, bookingID uuid.UUID) (string, error) {
	return s.clientSecret, s.checkoutErr
}

func (s *stubPayments) SessionStatus(ctx context.Context, sessionID string) (*payments.SessionStatus, error) {
	return s.status, nil
}

func (s *stubPayments) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.webhookErr
}

type stubReviews struct {
	ReviewStore
	created *domain.Review
}

func (s *stubReviews) Create(ctx context.Context, review domain.Review) error {
	s.created = &review
	return nil
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	return &Handlers{
		cfg:    &config.Config{},
		logger: observability.NewLogger(),
	}
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

func TestCreateBooking(t *testing.T) {
	hotel := &domain.Hotel{ID: uuid.New(), Name: "Grand", Rooms: 10}
	h := newTestHandlers(t)
	h.hotels = &stubHotels{hotel: hotel}
	h.allocator = &stubAllocator{booking: domain.Booking{
		ID:            uuid.New(),
		RoomNumber:    3,
		PaymentStatus: domain.PaymentPending,
	}}

	body, _ := json.Marshal(map[string]interface{}{
		"hotelId":  hotel.ID,
		"checkIn":  "2026-03-10T00:00:00Z",
		"checkOut": "2026-03-12T00:00:00Z",
	})
	w := httptest.NewRecorder()
	h.CreateBooking(w, authedRequest(http.MethodPost, "/api/bookings", body, "user-1"))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp bookingResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, hotel.ID, resp.HotelID)
	assert.Equal(t, 3, resp.RoomNumber)
	assert.Equal(t, domain.PaymentPending, resp.PaymentStatus)
}

func TestCreateBooking_InvalidStay(t *testing.T) {
	h := newTestHandlers(t)

	body, _ := json.Marshal(map[string]interface{}{
		"hotelId":  uuid.New(),
		"checkIn":  "2026-03-12T00:00:00Z",
		"checkOut": "2026-03-10T00:00:00Z",
	})
	w := httptest.NewRecorder()
	h.CreateBooking(w, authedRequest(http.MethodPost, "/api/bookings", body, "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBooking_Unauthenticated(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.CreateBooking(w, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader("{}")))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBooking_RoomsExhausted(t *testing.T) {
	hotel := &domain.Hotel{ID: uuid.New(), Name: "Grand", Rooms: 1}
	h := newTestHandlers(t)
	h.hotels = &stubHotels{hotel: hotel}
	h.allocator = &stubAllocator{err: errors.Wrap(domain.ErrRoomsExhausted, "no free room after 25 attempts")}

	body, _ := json.Marshal(map[string]interface{}{
		"hotelId":  hotel.ID,
		"checkIn":  "2026-03-10T00:00:00Z",
		"checkOut": "2026-03-12T00:00:00Z",
	})
	w := httptest.NewRecorder()
	h.CreateBooking(w, authedRequest(http.MethodPost, "/api/bookings", body, "user-1"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "no rooms available for the requested dates", resp["message"])
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	h := newTestHandlers(t)
	h.payments = &stubPayments{webhookErr: errors.Wrap(domain.ErrInvalidInput, "signature verification failed")}

	r := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader("{}"))
	r.Header.Set("Stripe-Signature", "bad")
	w := httptest.NewRecorder()
	h.StripeWebhook(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, strings.HasPrefix(resp["message"], "Webhook Error: "))
}

func TestStripeWebhook_OK(t *testing.T) {
	h := newTestHandlers(t)
	h.payments = &stubPayments{}

	r := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader("{}"))
	r.Header.Set("Stripe-Signature", "good")
	w := httptest.NewRecorder()
	h.StripeWebhook(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCheckoutSession(t *testing.T) {
	h := newTestHandlers(t)
	h.payments = &stubPayments{clientSecret: "secret_abc"}

	body, _ := json.Marshal(map[string]interface{}{"bookingId": uuid.New()})
	w := httptest.NewRecorder()
	h.CreateCheckoutSession(w, authedRequest(http.MethodPost, "/api/payments/create-checkout-session", body, "user-1"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "secret_abc", resp["clientSecret"])
}

func TestCreateCheckoutSession_MissingBookingID(t *testing.T) {
	h := newTestHandlers(t)
	h.payments = &stubPayments{}

	w := httptest.NewRecorder()
	h.CreateCheckoutSession(w, authedRequest(http.MethodPost, "/api/payments/create-checkout-session", []byte("{}"), "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSessionStatus_MissingSessionID(t *testing.T) {
	h := newTestHandlers(t)
	h.payments = &stubPayments{}

	w := httptest.NewRecorder()
	h.GetSessionStatus(w, authedRequest(http.MethodGet, "/api/payments/session-status", nil, "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReview_InvalidRating(t *testing.T) {
	h := newTestHandlers(t)
	h.hotels = &stubHotels{hotel: &domain.Hotel{ID: uuid.New()}}
	h.reviews = &stubReviews{}

	body, _ := json.Marshal(map[string]interface{}{
		"hotelId": uuid.New(),
		"rating":  6,
		"comment": "too good",
	})
	w := httptest.NewRecorder()
	h.CreateReview(w, authedRequest(http.MethodPost, "/api/reviews", body, "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWriteError_StatusMapping(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		err    error
		status int
	}{
		{errors.Wrap(domain.ErrInvalidInput, "bad"), http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.Wrap(domain.ErrNotFound, "missing"), http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrRoomsExhausted, http.StatusServiceUnavailable},
		{domain.ErrExternalService, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.writeError(w, tt.err)
		assert.Equal(t, tt.status, w.Code, "error %v", tt.err)
	}
}

func signToken(t *testing.T, secret, sub, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = userIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(secret)(next)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user-1", ""))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, secret, "user-1", ""))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", gotUserID)
	})
}

func TestAdminMiddleware(t *testing.T) {
	const secret = "test-secret"
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(secret)(AdminMiddleware(next))

	t.Run("non-admin forbidden", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodDelete, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, secret, "user-1", ""))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodDelete, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, secret, "admin-1", "admin"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
