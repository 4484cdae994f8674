package application

import (
	"context"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// StoreRepository abstracts persistence for the stores collection.
// StoreRepository は店舗コレクションへの永続化ポート。
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	FindByID(ctx context.Context, id string) (*domain.Store, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Store, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Store, error)
	List(ctx context.Context, skip, limit int64) ([]domain.Store, int64, error)
	ListByTag(ctx context.Context, tag string) ([]domain.Store, error)
	DistinctTags(ctx context.Context) ([]domain.TagCount, error)
	SearchText(ctx context.Context, query string, limit int64) ([]domain.Store, error)
	Near(ctx context.Context, lng, lat float64, maxDistanceMeters, limit int64) ([]domain.Store, error)
	TopStores(ctx context.Context, limit int64) ([]domain.TopStore, error)
	Update(ctx context.Context, id string, attrs domain.StoreUpdate) (*domain.Store, error)
	Delete(ctx context.Context, id string) (*domain.Store, error)
}

// ReviewRepository abstracts persistence for the reviews collection.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	FindByStore(ctx context.Context, storeID string) ([]domain.Review, error)
	Update(ctx context.Context, id string, attrs domain.ReviewUpdate) (*domain.Review, error)
	Delete(ctx context.Context, id string) (*domain.Review, error)
	DeleteAllForStore(ctx context.Context, storeID string) (int64, error)
}

// UserRepository exposes the account fields this service touches: lookup
// and the hearts set. AddHeart and RemoveHeart must each be a single
// conditional update at the storage layer so concurrent toggles by the same
// user cannot produce duplicates or lost updates.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// AddHeart inserts storeID into the hearts set (no duplicates) and
	// returns the updated user.
	AddHeart(ctx context.Context, userID, storeID string) (*domain.User, error)
	// RemoveHeart removes storeID from the hearts set. changed is false when
	// the store was not hearted, in which case user is nil.
	RemoveHeart(ctx context.Context, userID, storeID string) (user *domain.User, changed bool, err error)
	// PullHeartFromAll removes storeID from every user's hearts set and
	// returns the number of users touched.
	PullHeartFromAll(ctx context.Context, storeID string) (int64, error)
}
