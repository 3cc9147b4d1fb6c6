package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type LocationRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewLocationRepository(db *mongo.Database, logger observability.Logger) *LocationRepository {
	return &LocationRepository{
		coll:   db.Collection("locations"),
		logger: logger,
	}
}

type locationDoc struct {
	ID   uuid.UUID `bson:"_id"`
	Name string    `bson:"name"`
}

func (r *LocationRepository) Create(ctx context.Context, loc domain.Location) error {
	_, err := r.coll.InsertOne(ctx, locationDoc(loc))
	return errors.Wrap(err, "create location")
}

func (r *LocationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	var doc locationDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrapf(domain.ErrNotFound, "location %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get location")
	}
	loc := domain.Location(doc)
	return &loc, nil
}

func (r *LocationRepository) List(ctx context.Context) ([]domain.Location, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "list locations")
	}
	defer cur.Close(ctx)

	var locations []domain.Location
	for cur.Next(ctx) {
		var doc locationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode location")
		}
		locations = append(locations, domain.Location(doc))
	}
	return locations, cur.Err()
}

func (r *LocationRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return errors.Wrap(err, "rename location")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "location %s", id)
	}
	return nil
}

func (r *LocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete location")
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "location %s", id)
	}
	return nil
}
