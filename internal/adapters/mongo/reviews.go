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
)

type ReviewRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewReviewRepository(db *mongo.Database, logger observability.Logger) *ReviewRepository {
	return &ReviewRepository{
		coll:   db.Collection("reviews"),
		logger: logger,
	}
}

type reviewDoc struct {
	ID        uuid.UUID `bson:"_id"`
	UserID    string    `bson:"user_id"`
	HotelID   uuid.UUID `bson:"hotel_id"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) error {
	doc := reviewDoc(review)
	doc.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, doc)
	return errors.Wrap(err, "create review")
}

func (r *ReviewRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]domain.Review, error) {
	cur, err := r.coll.Find(ctx, bson.M{"hotel_id": hotelID})
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	defer cur.Close(ctx)

	var reviews []domain.Review
	for cur.Next(ctx) {
		var doc reviewDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode review")
		}
		reviews = append(reviews, domain.Review(doc))
	}
	return reviews, cur.Err()
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete review")
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "review %s", id)
	}
	return nil
}
