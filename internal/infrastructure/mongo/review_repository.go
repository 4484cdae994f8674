package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// ReviewRepository はレビューと参照先店舗の 2 コレクションを扱う Mongo 実装。
type ReviewRepository struct {
	reviews *mongo.Collection
	stores  *mongo.Collection
}

// NewReviewRepository binds the review and store collections.
func NewReviewRepository(db *mongo.Database, reviewCollection, storeCollection string) *ReviewRepository {
	return &ReviewRepository{
		reviews: db.Collection(reviewCollection),
		stores:  db.Collection(storeCollection),
	}
}

// Create inserts a review; ID and creation time are written back onto the
// passed review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	author, err := primitive.ObjectIDFromHex(strings.TrimSpace(review.AuthorID))
	if err != nil {
		return err
	}
	store, err := primitive.ObjectIDFromHex(strings.TrimSpace(review.StoreID))
	if err != nil {
		return err
	}

	doc := ReviewDocument{
		ID:         primitive.NewObjectID(),
		Author:     author,
		AuthorName: review.AuthorName,
		Store:      store,
		Text:       review.Text,
		Rating:     review.Rating,
		Created:    time.Now().UTC(),
	}
	if _, err := r.reviews.InsertOne(ctx, doc); err != nil {
		return err
	}

	review.ID = doc.ID.Hex()
	review.Created = doc.Created
	return nil
}

// FindByID returns a single review.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc ReviewDocument
	if err := r.reviews.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	review := mapReviewDocument(doc)
	return &review, nil
}

// FindByStore returns all reviews referencing the store, newest first.
func (r *ReviewRepository) FindByStore(ctx context.Context, storeID string) ([]domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	cursor, err := r.reviews.Find(ctx, bson.M{"store": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reviews = append(reviews, mapReviewDocument(doc))
	}
	return reviews, cursor.Err()
}

// Update applies the new text and rating, returning the updated review with
// its store slug resolved so callers can redirect to the store page.
func (r *ReviewRepository) Update(ctx context.Context, id string, attrs domain.ReviewUpdate) (*domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	update := bson.M{"$set": bson.M{"text": attrs.Text, "rating": attrs.Rating}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc ReviewDocument
	if err := r.reviews.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}

	review := mapReviewDocument(doc)
	if err := r.resolveStoreSlug(ctx, &review, doc.Store); err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes the review and returns the removed document.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (*domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc ReviewDocument
	if err := r.reviews.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	review := mapReviewDocument(doc)
	return &review, nil
}

// DeleteAllForStore purges every review referencing the store and returns
// the number removed. Used by the store delete cascade.
func (r *ReviewRepository) DeleteAllForStore(ctx context.Context, storeID string) (int64, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return 0, domain.ErrNotFound
	}
	result, err := r.reviews.DeleteMany(ctx, bson.M{"store": objectID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// resolveStoreSlug loads the referenced store's slug. A missing store is
// tolerated: the cascade is best-effort and a review can briefly outlive
// its store.
func (r *ReviewRepository) resolveStoreSlug(ctx context.Context, review *domain.Review, storeID primitive.ObjectID) error {
	var store struct {
		Slug string `bson:"slug"`
	}
	err := r.stores.FindOne(ctx, bson.M{"_id": storeID}, options.FindOne().SetProjection(bson.M{"slug": 1})).Decode(&store)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}
	review.StoreSlug = store.Slug
	return nil
}
