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

const (
	vectorIndexName     = "hotel_vector_index"
	vectorNumCandidates = 25
	vectorSearchLimit   = 4
)

type HotelRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewHotelRepository(db *mongo.Database, logger observability.Logger) *HotelRepository {
	return &HotelRepository{
		coll:   db.Collection("hotels"),
		logger: logger,
	}
}

type hotelDoc struct {
	ID            uuid.UUID   `bson:"_id"`
	Name          string      `bson:"name"`
	Location      string      `bson:"location"`
	Image         string      `bson:"image"`
	Description   string      `bson:"description"`
	Price         float64     `bson:"price"`
	Rating        float64     `bson:"rating,omitempty"`
	Rooms         int         `bson:"rooms"`
	Reviews       []uuid.UUID `bson:"reviews"`
	StripePriceID string      `bson:"stripe_price_id,omitempty"`
	Embedding     []float32   `bson:"embedding,omitempty"`
	CreatedAt     time.Time   `bson:"created_at"`
	UpdatedAt     time.Time   `bson:"updated_at"`
}

func toHotelDoc(h domain.Hotel) hotelDoc {
	return hotelDoc(h)
}

func (d hotelDoc) toDomain() domain.Hotel {
	return domain.Hotel(d)
}

// HotelMatch is a semantic-search hit with its vector similarity score.
type HotelMatch struct {
	Hotel domain.Hotel
	Score float64
}

func (r *HotelRepository) Create(ctx context.Context, hotel domain.Hotel) error {
	doc := toHotelDoc(hotel)
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	if doc.Reviews == nil {
		doc.Reviews = []uuid.UUID{}
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "create hotel")
	}
	return nil
}

func (r *HotelRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	var doc hotelDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrapf(domain.ErrNotFound, "hotel %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get hotel")
	}
	h := doc.toDomain()
	return &h, nil
}

func (r *HotelRepository) List(ctx context.Context) ([]domain.Hotel, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "list hotels")
	}
	defer cur.Close(ctx)

	var hotels []domain.Hotel
	for cur.Next(ctx) {
		var doc hotelDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode hotel")
		}
		hotels = append(hotels, doc.toDomain())
	}
	return hotels, cur.Err()
}

func (r *HotelRepository) Update(ctx context.Context, hotel domain.Hotel) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": hotel.ID}, bson.M{"$set": bson.M{
		"name":        hotel.Name,
		"location":    hotel.Location,
		"image":       hotel.Image,
		"description": hotel.Description,
		"price":       hotel.Price,
		"rooms":       hotel.Rooms,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return errors.Wrap(err, "update hotel")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "hotel %s", hotel.ID)
	}
	return nil
}

func (r *HotelRepository) PatchPrice(ctx context.Context, id uuid.UUID, price float64) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"price":      price,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return errors.Wrap(err, "patch hotel price")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "hotel %s", id)
	}
	return nil
}

func (r *HotelRepository) SetStripePrice(ctx context.Context, id uuid.UUID, priceID string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"stripe_price_id": priceID,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return errors.Wrap(err, "set stripe price")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "hotel %s", id)
	}
	return nil
}

func (r *HotelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete hotel")
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "hotel %s", id)
	}
	return nil
}

func (r *HotelRepository) AttachReview(ctx context.Context, hotelID, reviewID uuid.UUID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": hotelID}, bson.M{
		"$push": bson.M{"reviews": reviewID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return errors.Wrap(err, "attach review")
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(domain.ErrNotFound, "hotel %s", hotelID)
	}
	return nil
}

// Search runs an Atlas $vectorSearch over the hotel embeddings.
func (r *HotelRepository) Search(ctx context.Context, queryEmbedding []float32) ([]HotelMatch, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: vectorIndexName},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: queryEmbedding},
			{Key: "numCandidates", Value: vectorNumCandidates},
			{Key: "limit", Value: vectorSearchLimit},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "location", Value: 1},
			{Key: "image", Value: 1},
			{Key: "description", Value: 1},
			{Key: "price", Value: 1},
			{Key: "rating", Value: 1},
			{Key: "rooms", Value: 1},
			{Key: "reviews", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "vector search")
	}
	defer cur.Close(ctx)

	var matches []HotelMatch
	for cur.Next(ctx) {
		var doc struct {
			Hotel hotelDoc `bson:",inline"`
			Score float64  `bson:"score"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode search hit")
		}
		matches = append(matches, HotelMatch{Hotel: doc.Hotel.toDomain(), Score: doc.Score})
	}
	return matches, cur.Err()
}
