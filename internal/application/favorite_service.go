package application

import (
	"context"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// FavoriteService implements the heart toggle and the hearted-stores view.
type FavoriteService interface {
	// Toggle flips storeID's membership in the user's hearts set and
	// returns the updated user.
	Toggle(ctx context.Context, userID, storeID string) (*domain.User, error)
	// Hearts returns the stores the user has hearted.
	Hearts(ctx context.Context, userID string) ([]domain.Store, error)
}

type favoriteService struct {
	users  UserRepository
	stores StoreRepository
}

// NewFavoriteService wires the favorite use-cases to their repositories.
func NewFavoriteService(users UserRepository, stores StoreRepository) FavoriteService {
	return &favoriteService{users: users, stores: stores}
}

// Toggle first attempts a conditional removal; the filter only matches when
// the heart is present, so each branch is a single atomic update and two
// sessions toggling at once cannot insert duplicates.
func (s *favoriteService) Toggle(ctx context.Context, userID, storeID string) (*domain.User, error) {
	user, changed, err := s.users.RemoveHeart(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	if changed {
		return user, nil
	}
	return s.users.AddHeart(ctx, userID, storeID)
}

func (s *favoriteService) Hearts(ctx context.Context, userID string) ([]domain.Store, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Hearts) == 0 {
		return []domain.Store{}, nil
	}
	return s.stores.FindByIDs(ctx, user.Hearts)
}
