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

func newStoreService(stores *MockStoreRepository, reviews *MockReviewRepository, users *MockUserRepository) application.StoreService {
	return application.NewStoreService(stores, reviews, users, application.DefaultPageSize)
}

func validLocation() *domain.Location {
	return &domain.Location{Longitude: -79.39, Latitude: 43.64, Address: "401 Richmond St W"}
}

func TestStoreService_Create(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	stores.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Store) bool {
		return s.Name == "Cupcake Cafe" && s.AuthorID == "user-1"
	})).Return(nil).Once()

	store, err := service.Create(context.Background(), "user-1", application.StoreInput{
		Name:     "  Cupcake Cafe  ",
		Tags:     []string{"Cafe", "Cafe", " ", "Wifi"},
		Location: validLocation(),
	})

	require.NoError(t, err)
	assert.Equal(t, "Cupcake Cafe", store.Name)
	assert.Equal(t, []string{"Cafe", "Wifi"}, store.Tags)
	stores.AssertExpectations(t)
}

func TestStoreService_Create_Validation(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	cases := []struct {
		name  string
		input application.StoreInput
		field string
	}{
		{
			name:  "missing name",
			input: application.StoreInput{Location: validLocation()},
			field: "name",
		},
		{
			name:  "missing location",
			input: application.StoreInput{Name: "Nameless"},
			field: "location",
		},
		{
			name: "longitude out of range",
			input: application.StoreInput{
				Name:     "Far Away",
				Location: &domain.Location{Longitude: 181, Latitude: 0, Address: "nowhere"},
			},
			field: "location",
		},
		{
			name: "missing address",
			input: application.StoreInput{
				Name:     "No Address",
				Location: &domain.Location{Longitude: 0, Latitude: 0},
			},
			field: "location",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), "user-1", tc.input)
			require.Error(t, err)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	stores.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStoreService_Page(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	listed := []domain.Store{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}, {ID: "s4"}}
	stores.On("List", mock.Anything, int64(4), int64(4)).Return(listed, int64(10), nil).Once()

	page, err := service.Page(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, int64(10), page.Count)
	assert.Zero(t, page.RedirectTo)
	assert.Len(t, page.Stores, 4)
	stores.AssertExpectations(t)
}

func TestStoreService_Page_RedirectsPastEnd(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	// Ten stores means three pages of four; page 4 is empty.
	stores.On("List", mock.Anything, int64(12), int64(4)).Return([]domain.Store{}, int64(10), nil).Once()

	page, err := service.Page(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, 3, page.RedirectTo)
	assert.Equal(t, "This page 4 does not exist! Last available page here is 3.", page.Notice)
	assert.Empty(t, page.Stores)
	stores.AssertExpectations(t)
}

func TestStoreService_Page_EmptyFirstPageDoesNotRedirect(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	stores.On("List", mock.Anything, int64(0), int64(4)).Return([]domain.Store{}, int64(0), nil).Once()

	page, err := service.Page(context.Background(), 1)

	require.NoError(t, err)
	assert.Zero(t, page.RedirectTo)
	assert.Empty(t, page.Notice)
	stores.AssertExpectations(t)
}

func TestStoreService_DetailBySlug(t *testing.T) {
	stores := new(MockStoreRepository)
	reviews := new(MockReviewRepository)
	service := newStoreService(stores, reviews, new(MockUserRepository))

	stores.On("FindBySlug", mock.Anything, "thai-basil").Return(&domain.Store{ID: "s1", Slug: "thai-basil"}, nil).Once()
	reviews.On("FindByStore", mock.Anything, "s1").Return([]domain.Review{{ID: "r1"}, {ID: "r2"}}, nil).Once()

	store, err := service.DetailBySlug(context.Background(), "thai-basil")

	require.NoError(t, err)
	assert.Len(t, store.Reviews, 2)
	stores.AssertExpectations(t)
	reviews.AssertExpectations(t)
}

func TestStoreService_Update_GuardsOwnership(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	stores.On("FindByID", mock.Anything, "s1").Return(&domain.Store{ID: "s1", AuthorID: "owner"}, nil).Once()

	_, err := service.Update(context.Background(), "s1", "intruder", application.StoreInput{Name: "Taken Over"})

	assert.ErrorIs(t, err, domain.ErrNotOwner)
	stores.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestStoreService_Update(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	stores.On("FindByID", mock.Anything, "s1").Return(&domain.Store{ID: "s1", AuthorID: "owner", Slug: "thai-basil"}, nil).Once()
	updated := &domain.Store{ID: "s1", Name: "Thai Basil II", Slug: "thai-basil"}
	stores.On("Update", mock.Anything, "s1", mock.MatchedBy(func(attrs domain.StoreUpdate) bool {
		return attrs.Name == "Thai Basil II"
	})).Return(updated, nil).Once()

	store, err := service.Update(context.Background(), "s1", "owner", application.StoreInput{Name: "Thai Basil II"})

	require.NoError(t, err)
	// Renames never touch the slug.
	assert.Equal(t, "thai-basil", store.Slug)
	stores.AssertExpectations(t)
}

func TestStoreService_Delete_Cascades(t *testing.T) {
	stores := new(MockStoreRepository)
	reviews := new(MockReviewRepository)
	users := new(MockUserRepository)
	service := newStoreService(stores, reviews, users)

	removed := &domain.Store{ID: "s1", Name: "Thai Basil", AuthorID: "owner"}
	stores.On("FindByID", mock.Anything, "s1").Return(removed, nil).Once()
	stores.On("Delete", mock.Anything, "s1").Return(removed, nil).Once()
	reviews.On("DeleteAllForStore", mock.Anything, "s1").Return(int64(3), nil).Once()
	users.On("PullHeartFromAll", mock.Anything, "s1").Return(int64(2), nil).Once()

	store, err := service.Delete(context.Background(), "s1", "owner")

	require.NoError(t, err)
	assert.Equal(t, "Thai Basil", store.Name)
	stores.AssertExpectations(t)
	reviews.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestStoreService_Delete_GuardsOwnership(t *testing.T) {
	stores := new(MockStoreRepository)
	reviews := new(MockReviewRepository)
	users := new(MockUserRepository)
	service := newStoreService(stores, reviews, users)

	stores.On("FindByID", mock.Anything, "s1").Return(&domain.Store{ID: "s1", AuthorID: "owner"}, nil).Once()

	_, err := service.Delete(context.Background(), "s1", "intruder")

	assert.ErrorIs(t, err, domain.ErrNotOwner)
	stores.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	reviews.AssertNotCalled(t, "DeleteAllForStore", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "PullHeartFromAll", mock.Anything, mock.Anything)
}

func TestStoreService_ByTag(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	tagCounts := []domain.TagCount{{Tag: "Wifi", Count: 3}, {Tag: "Licensed", Count: 1}}
	tagged := []domain.Store{{ID: "s1"}}
	stores.On("DistinctTags", mock.Anything).Return(tagCounts, nil).Once()
	stores.On("ListByTag", mock.Anything, "Wifi").Return(tagged, nil).Once()

	tags, matched, err := service.ByTag(context.Background(), "Wifi")

	require.NoError(t, err)
	assert.Equal(t, tagCounts, tags)
	assert.Equal(t, tagged, matched)
	stores.AssertExpectations(t)
}

func TestStoreService_Search(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	found := []domain.Store{{ID: "s1"}}
	stores.On("SearchText", mock.Anything, "coffee", int64(application.SearchLimit)).Return(found, nil).Once()

	results, err := service.Search(context.Background(), "  coffee  ")
	require.NoError(t, err)
	assert.Equal(t, found, results)

	// Blank queries short-circuit without touching the repository.
	results, err = service.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
	stores.AssertExpectations(t)
}

func TestStoreService_Near(t *testing.T) {
	stores := new(MockStoreRepository)
	service := newStoreService(stores, new(MockReviewRepository), new(MockUserRepository))

	found := []domain.Store{{ID: "s1"}, {ID: "s2"}}
	stores.On("Near", mock.Anything, -79.39, 43.64, int64(application.NearMaxDistanceM), int64(application.NearLimit)).
		Return(found, nil).Once()

	results, err := service.Near(context.Background(), -79.39, 43.64)

	require.NoError(t, err)
	assert.Equal(t, found, results)
	stores.AssertExpectations(t)
}
