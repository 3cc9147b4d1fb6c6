package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewBookingRepository(db *mongo.Database, logger observability.Logger) *BookingRepository {
	return &BookingRepository{
		coll:   db.Collection("bookings"),
		logger: logger,
	}
}

type bookingDoc struct {
	ID            uuid.UUID            `bson:"_id"`
	UserID        string               `bson:"user_id"`
	HotelID       uuid.UUID            `bson:"hotel_id"`
	CheckIn       time.Time            `bson:"check_in"`
	CheckOut      time.Time            `bson:"check_out"`
	RoomNumber    int                  `bson:"room_number"`
	PaymentStatus domain.PaymentStatus `bson:"payment_status"`
	CreatedAt     time.Time            `bson:"created_at"`
}

func toBookingDoc(b domain.Booking) bookingDoc {
	return bookingDoc(b)
}

func (d bookingDoc) toDomain() domain.Booking {
	return domain.Booking(d)
}

// EnsureIndexes creates the compound unique index that backstops the
// allocator's optimistic loop: two racing inserts for the same hotel, room and
// check-in collide here instead of double-booking.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "hotel_id", Value: 1},
				{Key: "room_number", Value: 1},
				{Key: "check_in", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	return err
}

// InsertIfRoomFree re-checks the room timeline and inserts in two steps. The
// read keeps obviously taken rooms out; the unique index decides the race when
// two allocations pass the read concurrently.
func (r *BookingRepository) InsertIfRoomFree(ctx context.Context, booking domain.Booking) error {
	overlap := bson.M{
		"hotel_id":    booking.HotelID,
		"room_number": booking.RoomNumber,
		"check_in":    bson.M{"$lte": booking.CheckOut},
		"check_out":   bson.M{"$gte": booking.CheckIn},
	}
	err := r.coll.FindOne(ctx, overlap).Err()
	if err == nil {
		return domain.ErrConflict
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrap(err, "overlap check")
	}

	if _, err := r.coll.InsertOne(ctx, toBookingDoc(booking)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return errors.Wrap(err, "insert booking")
	}
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var doc bookingDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrapf(domain.ErrNotFound, "booking %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get booking")
	}
	b := doc.toDomain()
	return &b, nil
}

// MarkPaid is the reconciler's conditional update: a single atomic
// read-modify-write keyed on both id and current status.
func (r *BookingRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": domain.PaymentPending},
		bson.M{"$set": bson.M{"payment_status": domain.PaymentPaid}},
	)
	if err != nil {
		return false, errors.Wrap(err, "mark paid")
	}
	return res.ModifiedCount == 1, nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return r.list(ctx, bson.M{})
}

func (r *BookingRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]domain.Booking, error) {
	return r.list(ctx, bson.M{"hotel_id": hotelID})
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]domain.Booking, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list bookings")
	}
	defer cur.Close(ctx)

	var bookings []domain.Booking
	for cur.Next(ctx) {
		var doc bookingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode booking")
		}
		bookings = append(bookings, doc.toDomain())
	}
	return bookings, cur.Err()
}
