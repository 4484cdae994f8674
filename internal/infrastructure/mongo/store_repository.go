package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// StoreRepository implements application.StoreRepository using MongoDB.
// The review collection name is needed for the top-stores $lookup.
type StoreRepository struct {
	collection  *mongo.Collection
	reviewsName string
}

// NewStoreRepository creates a new Mongo-backed store repository.
func NewStoreRepository(db *mongo.Database, storeCollection, reviewCollection string) *StoreRepository {
	return &StoreRepository{
		collection:  db.Collection(storeCollection),
		reviewsName: reviewCollection,
	}
}

// Create inserts a new store. The slug is derived from the name and made
// unique against existing slugs before the insert; ID, slug and creation
// time are written back onto the passed store.
func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) error {
	author, err := primitive.ObjectIDFromHex(strings.TrimSpace(store.AuthorID))
	if err != nil {
		return err
	}

	uniqueSlug, err := r.uniqueSlug(ctx, store.Name)
	if err != nil {
		return err
	}

	doc := StoreDocument{
		ID:          primitive.NewObjectID(),
		Name:        store.Name,
		Slug:        uniqueSlug,
		Description: store.Description,
		Tags:        store.Tags,
		Location:    buildLocationDocument(store.Location),
		Photo:       store.Photo,
		Author:      author,
		Created:     time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}

	store.ID = doc.ID.Hex()
	store.Slug = doc.Slug
	store.Created = doc.Created
	return nil
}

// FindByID returns a single store by its identifier.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc StoreDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// FindBySlug returns a single store by its URL slug.
func (r *StoreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	var doc StoreDocument
	if err := r.collection.FindOne(ctx, bson.M{"slug": strings.TrimSpace(slug)}).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// FindByIDs returns the stores whose id is in ids, newest first. Unknown
// ids are silently skipped.
func (r *StoreRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Store, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}
	if len(objectIDs) == 0 {
		return []domain.Store{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeStores(ctx, cursor)
}

// List returns one page of stores sorted by creation time descending,
// together with the total store count.
func (r *StoreRepository) List(ctx context.Context, skip, limit int64) ([]domain.Store, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	stores, err := decodeStores(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return stores, count, nil
}

// ListByTag returns stores carrying the exact tag, or any tagged store when
// tag is empty.
func (r *StoreRepository) ListByTag(ctx context.Context, tag string) ([]domain.Store, error) {
	filter := bson.M{"tags": bson.M{"$exists": true}}
	if tag = strings.TrimSpace(tag); tag != "" {
		filter = bson.M{"tags": tag}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeStores(ctx, cursor)
}

// DistinctTags unwinds the tags arrays and returns each tag with the number
// of stores carrying it, most used first.
func (r *StoreRepository) DistinctTags(ctx context.Context) ([]domain.TagCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{"_id": "$tags", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tags := make([]domain.TagCount, 0)
	for cursor.Next(ctx) {
		var row struct {
			Tag   string `bson:"_id"`
			Count int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		tags = append(tags, domain.TagCount{Tag: row.Tag, Count: row.Count})
	}
	return tags, cursor.Err()
}

// SearchText runs a full-text query against the name/description text index
// and returns results ranked by relevance score descending.
func (r *StoreRepository) SearchText(ctx context.Context, query string, limit int64) ([]domain.Store, error) {
	filter := bson.M{"$text": bson.M{"$search": query}}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeStores(ctx, cursor)
}

// Near returns stores ordered by distance from the given point, closest
// first, using the 2dsphere index. maxDistanceMeters bounds the search
// radius.
func (r *StoreRepository) Near(ctx context.Context, lng, lat float64, maxDistanceMeters, limit int64) ([]domain.Store, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": maxDistanceMeters,
			},
		},
	}
	opts := options.Find().
		SetProjection(bson.M{"slug": 1, "name": 1, "description": 1, "location": 1, "photo": 1, "author": 1, "created": 1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeStores(ctx, cursor)
}

// TopStores joins each store with its reviews, keeps stores with at least
// two reviews and ranks them by average rating descending.
func (r *StoreRepository) TopStores(ctx context.Context, limit int64) ([]domain.TopStore, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         r.reviewsName,
			"localField":   "_id",
			"foreignField": "store",
			"as":           "reviews",
		}}},
		{{Key: "$match", Value: bson.M{"reviews.1": bson.M{"$exists": true}}}},
		{{Key: "$addFields", Value: bson.M{
			"averageRating": bson.M{"$avg": "$reviews.rating"},
			"reviewCount":   bson.M{"$size": "$reviews"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averageRating", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stores := make([]domain.TopStore, 0)
	for cursor.Next(ctx) {
		var row struct {
			StoreDocument `bson:",inline"`
			AverageRating float64 `bson:"averageRating"`
			ReviewCount   int     `bson:"reviewCount"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		stores = append(stores, domain.TopStore{
			Store:         mapStoreDocument(row.StoreDocument),
			AverageRating: row.AverageRating,
			ReviewCount:   row.ReviewCount,
		})
	}
	return stores, cursor.Err()
}

// Update merges the given attributes into the store document and returns
// the updated document. The slug is left untouched; renames do not break
// published URLs.
func (r *StoreRepository) Update(ctx context.Context, id string, attrs domain.StoreUpdate) (*domain.Store, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	set := bson.M{
		"name":        attrs.Name,
		"description": attrs.Description,
		"tags":        attrs.Tags,
	}
	if attrs.Location != nil {
		set["location"] = buildLocationDocument(attrs.Location)
	}
	if attrs.Photo != "" {
		set["photo"] = attrs.Photo
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc StoreDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// Delete removes the store and returns the removed document. Cascading the
// removal of reviews and hearts is the caller's responsibility.
func (r *StoreRepository) Delete(ctx context.Context, id string) (*domain.Store, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc StoreDocument
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// uniqueSlug derives a slug from name and suffixes it when stores with the
// same base slug already exist (slug, slug-1, slug-2, ...).
func (r *StoreRepository) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := makeSlug(name)

	pattern := "^(" + regexp.QuoteMeta(base) + ")((-[0-9]*$)?)$"
	filter := bson.M{"slug": primitive.Regex{Pattern: pattern}}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"slug": 1}))
	if err != nil {
		return "", err
	}
	defer cursor.Close(ctx)

	existing := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			Slug string `bson:"slug"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return "", err
		}
		existing = append(existing, doc.Slug)
	}
	if err := cursor.Err(); err != nil {
		return "", err
	}
	return resolveSlugCollision(base, existing), nil
}

func decodeStores(ctx context.Context, cursor *mongo.Cursor) ([]domain.Store, error) {
	stores := make([]domain.Store, 0)
	for cursor.Next(ctx) {
		var doc StoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stores = append(stores, mapStoreDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

func translateErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}
