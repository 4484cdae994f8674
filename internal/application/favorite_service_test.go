package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/localbites/localbites-services/api/internal/application"
	"github.com/localbites/localbites-services/api/internal/domain"
)

// fakeUserRepository backs the heart set with a real map so toggle semantics
// can be exercised across calls.
type fakeUserRepository struct {
	users map[string]*domain.User
}

func newFakeUserRepository(users ...*domain.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepository) AddHeart(_ context.Context, userID, storeID string) (*domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, h := range user.Hearts {
		if h == storeID {
			copied := *user
			return &copied, nil
		}
	}
	user.Hearts = append(user.Hearts, storeID)
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepository) RemoveHeart(_ context.Context, userID, storeID string) (*domain.User, bool, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, false, nil
	}
	for i, h := range user.Hearts {
		if h == storeID {
			user.Hearts = append(user.Hearts[:i], user.Hearts[i+1:]...)
			copied := *user
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeUserRepository) PullHeartFromAll(_ context.Context, storeID string) (int64, error) {
	var touched int64
	for _, user := range f.users {
		for i, h := range user.Hearts {
			if h == storeID {
				user.Hearts = append(user.Hearts[:i], user.Hearts[i+1:]...)
				touched++
				break
			}
		}
	}
	return touched, nil
}

func TestFavoriteService_Toggle(t *testing.T) {
	users := newFakeUserRepository(&domain.User{ID: "u1", Name: "Debbie"})
	service := application.NewFavoriteService(users, new(MockStoreRepository))

	user, err := service.Toggle(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, user.Hearts)

	// The second toggle removes the heart again.
	user, err = service.Toggle(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Empty(t, user.Hearts)

	// And a third puts it back, with no duplicates.
	user, err = service.Toggle(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, user.Hearts)
}

func TestFavoriteService_Toggle_IndependentStores(t *testing.T) {
	users := newFakeUserRepository(&domain.User{ID: "u1"})
	service := application.NewFavoriteService(users, new(MockStoreRepository))

	_, err := service.Toggle(context.Background(), "u1", "s1")
	require.NoError(t, err)
	user, err := service.Toggle(context.Background(), "u1", "s2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, user.Hearts)

	user, err = service.Toggle(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, user.Hearts)
}

func TestFavoriteService_Hearts(t *testing.T) {
	users := newFakeUserRepository(&domain.User{ID: "u1", Hearts: []string{"s1", "s2"}})
	stores := new(MockStoreRepository)
	service := application.NewFavoriteService(users, stores)

	hearted := []domain.Store{{ID: "s1"}, {ID: "s2"}}
	stores.On("FindByIDs", mock.Anything, []string{"s1", "s2"}).Return(hearted, nil).Once()

	result, err := service.Hearts(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, hearted, result)
	stores.AssertExpectations(t)
}

func TestFavoriteService_Hearts_Empty(t *testing.T) {
	users := newFakeUserRepository(&domain.User{ID: "u1"})
	stores := new(MockStoreRepository)
	service := application.NewFavoriteService(users, stores)

	result, err := service.Hearts(context.Background(), "u1")

	require.NoError(t, err)
	assert.Empty(t, result)
	stores.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}
