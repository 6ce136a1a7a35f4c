package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"listing-marketplace/internal/model"
)

type ListingRepository struct {
	coll *mongo.Collection
}

func NewListingRepository(db *mongo.Database, collection string) *ListingRepository {
	return &ListingRepository{coll: db.Collection(collection)}
}

// Find returns one page of matching listings, newest first, and the total match count.
func (r *ListingRepository) Find(ctx context.Context, q model.ListingQuery, skip, limit int) ([]model.Listing, int64, error) {
	filter := buildFilter(q)
	if skip < 0 {
		skip = 0
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("ListingRepository.Find count: %w", err)
	}
	if total == 0 || int64(skip) >= total {
		return []model.Listing{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("ListingRepository.Find: %w", err)
	}

	var list []model.Listing
	if err := cur.All(ctx, &list); err != nil {
		return nil, 0, fmt.Errorf("ListingRepository.Find decode: %w", err)
	}
	return list, total, nil
}

// GeoNear runs a $geoNear aggregation. Results come back nearest first with their distance
// in metres.
func (r *ListingRepository) GeoNear(ctx context.Context, origin model.GeoPoint, maxDistanceMeters float64, q model.ListingQuery, limit int) ([]model.Listing, error) {
	cur, err := r.coll.Aggregate(ctx, geoNearPipeline(origin, maxDistanceMeters, q, limit))
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.GeoNear: %w", err)
	}
	var list []model.Listing
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("ListingRepository.GeoNear decode: %w", err)
	}
	return list, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, "ListingRepository.GetByID")
}

func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (*model.Listing, error) {
	return r.findOne(ctx, bson.D{{Key: "slug", Value: slug}}, "ListingRepository.GetBySlug")
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, l *model.Listing) error {
	res, err := r.coll.UpdateByID(ctx, l.ID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "slug", Value: l.Slug},
		{Key: "title", Value: l.Title},
		{Key: "description", Value: l.Description},
		{Key: "address", Value: l.Address},
		{Key: "photos", Value: l.Photos},
		{Key: "propertyType", Value: l.PropertyType},
		{Key: "action", Value: l.Action},
		{Key: "price", Value: l.Price},
		{Key: "bedrooms", Value: l.Bedrooms},
		{Key: "bathrooms", Value: l.Bathrooms},
		{Key: "carpark", Value: l.Carpark},
		{Key: "landsize", Value: l.Landsize},
		{Key: "landsizeType", Value: l.LandsizeType},
		{Key: "location", Value: l.Location},
		{Key: "inspectionTime", Value: l.InspectionTime},
		{Key: "updatedAt", Value: l.UpdatedAt},
	}}})
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("ListingRepository.Update: %w", model.ErrNotFound)
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("ListingRepository.Delete: %w", model.ErrNotFound)
	}
	return nil
}

func (r *ListingRepository) SetStatus(ctx context.Context, id string, status model.Status) error {
	return r.updateOne(ctx, id, "ListingRepository.SetStatus", bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

// TogglePublished negates the published flag server-side and returns the updated listing.
func (r *ListingRepository) TogglePublished(ctx context.Context, id string) (*model.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "published", Value: bson.D{{Key: "$not", Value: "$published"}}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var l model.Listing
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("ListingRepository.TogglePublished: %w", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.TogglePublished: %w", err)
	}
	return &l, nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, "ListingRepository.IncrementViews",
		bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
}

func (r *ListingRepository) AddPhoto(ctx context.Context, id, fileID string) error {
	return r.updateOne(ctx, id, "ListingRepository.AddPhoto",
		bson.D{{Key: "$push", Value: bson.D{{Key: "photos", Value: fileID}}}})
}

// RemovePhoto detaches fileID from the listing. Detaching an absent id is not an error.
func (r *ListingRepository) RemovePhoto(ctx context.Context, id, fileID string) error {
	return r.updateOne(ctx, id, "ListingRepository.RemovePhoto",
		bson.D{{Key: "$pull", Value: bson.D{{Key: "photos", Value: fileID}}}})
}

func (r *ListingRepository) updateOne(ctx context.Context, id, op string, update bson.D) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return nil
}

func (r *ListingRepository) findOne(ctx context.Context, filter bson.D, op string) (*model.Listing, error) {
	var l model.Listing
	err := r.coll.FindOne(ctx, filter).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}

// objectID parses a hex id. A malformed id names no listing.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("listing %q: %w", id, model.ErrNotFound)
	}
	return oid, nil
}
