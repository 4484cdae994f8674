package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// UserRepository exposes the hearts set on user accounts. Account creation
// and credentials live with the auth collaborator; this repository only
// reads users and mutates hearts.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new Mongo-backed user repository.
func NewUserRepository(db *mongo.Database, collectionName string) *UserRepository {
	return &UserRepository{collection: db.Collection(collectionName)}
}

// FindByID returns a single user by its identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc UserDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	user := mapUserDocument(doc)
	return &user, nil
}

// AddHeart inserts the store into the user's hearts set. $addToSet keeps
// the operation idempotent: concurrent adds can never produce a duplicate
// entry.
func (r *UserRepository) AddHeart(ctx context.Context, userID, storeID string) (*domain.User, error) {
	userObjID, storeObjID, err := heartIDs(userID, storeID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$addToSet": bson.M{"hearts": storeObjID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": userObjID}, update, opts).Decode(&doc); err != nil {
		return nil, translateErr(err)
	}
	user := mapUserDocument(doc)
	return &user, nil
}

// RemoveHeart pulls the store from the user's hearts set. The filter
// matches only when the heart is present, so the membership probe and the
// removal are one conditional update rather than two round trips.
func (r *UserRepository) RemoveHeart(ctx context.Context, userID, storeID string) (*domain.User, bool, error) {
	userObjID, storeObjID, err := heartIDs(userID, storeID)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{"_id": userObjID, "hearts": storeObjID}
	update := bson.M{"$pull": bson.M{"hearts": storeObjID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Heart was not present; nothing removed.
			return nil, false, nil
		}
		return nil, false, err
	}
	user := mapUserDocument(doc)
	return &user, true, nil
}

// PullHeartFromAll removes the store from every user's hearts set and
// returns the number of users touched. Used by the store delete cascade.
func (r *UserRepository) PullHeartFromAll(ctx context.Context, storeID string) (int64, error) {
	storeObjID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return 0, domain.ErrNotFound
	}

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"hearts": storeObjID},
		bson.M{"$pull": bson.M{"hearts": storeObjID}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func heartIDs(userID, storeID string) (primitive.ObjectID, primitive.ObjectID, error) {
	userObjID, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, domain.ErrNotFound
	}
	storeObjID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, domain.ErrNotFound
	}
	return userObjID, storeObjID, nil
}
