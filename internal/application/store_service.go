package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// Fixed query limits, matching the public listing behaviour.
const (
	DefaultPageSize  = 4
	SearchLimit      = 5
	NearLimit        = 10
	NearMaxDistanceM = 10000
	TopStoresLimit   = 10
)

// StoreInput carries the user-supplied fields for creating or updating a
// store. Location is required on create; a nil Location on update keeps the
// stored point untouched.
type StoreInput struct {
	Name        string `validate:"required"`
	Description string
	Tags        []string
	Location    *domain.Location
	Photo       string
}

// StorePage is one page of the listing plus its pagination metadata. When
// the requested page lies beyond the available data, RedirectTo names the
// last page that exists and Notice carries the informational message; this
// is control flow, not an error.
type StorePage struct {
	Stores     []domain.Store
	Page       int
	Pages      int
	Count      int64
	RedirectTo int
	Notice     string
}

// StoreService bundles the store use-cases behind the HTTP layer.
// StoreService は店舗ユースケースの入口となるアプリケーションサービス。
type StoreService interface {
	Create(ctx context.Context, authorID string, input StoreInput) (*domain.Store, error)
	Page(ctx context.Context, page int) (*StorePage, error)
	DetailBySlug(ctx context.Context, slug string) (*domain.Store, error)
	EditForm(ctx context.Context, storeID, userID string) (*domain.Store, error)
	Update(ctx context.Context, storeID, userID string, input StoreInput) (*domain.Store, error)
	Delete(ctx context.Context, storeID, userID string) (*domain.Store, error)
	ByTag(ctx context.Context, tag string) ([]domain.TagCount, []domain.Store, error)
	Search(ctx context.Context, query string) ([]domain.Store, error)
	Near(ctx context.Context, lng, lat float64) ([]domain.Store, error)
	Top(ctx context.Context) ([]domain.TopStore, error)
}

type storeService struct {
	stores   StoreRepository
	reviews  ReviewRepository
	users    UserRepository
	validate *validator.Validate
	pageSize int
}

// NewStoreService wires the store use-cases to their repositories. pageSize
// falls back to DefaultPageSize when zero.
func NewStoreService(stores StoreRepository, reviews ReviewRepository, users UserRepository, pageSize int) StoreService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &storeService{
		stores:   stores,
		reviews:  reviews,
		users:    users,
		validate: validator.New(),
		pageSize: pageSize,
	}
}

func (s *storeService) Create(ctx context.Context, authorID string, input StoreInput) (*domain.Store, error) {
	if err := s.checkInput(input, true); err != nil {
		return nil, err
	}

	store := &domain.Store{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Tags:        cleanTags(input.Tags),
		Location:    input.Location,
		Photo:       input.Photo,
		AuthorID:    authorID,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// Page translates a page number into skip/limit, fetches the page together
// with the total count and applies the out-of-range redirect policy.
func (s *storeService) Page(ctx context.Context, page int) (*StorePage, error) {
	if page < 1 {
		page = 1
	}
	limit := int64(s.pageSize)
	skip := int64(page-1) * limit

	stores, count, err := s.stores.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	pages := int((count + limit - 1) / limit)

	if len(stores) == 0 && skip > 0 {
		return &StorePage{
			Page:       page,
			Pages:      pages,
			Count:      count,
			RedirectTo: pages,
			Notice:     fmt.Sprintf("This page %d does not exist! Last available page here is %d.", page, pages),
		}, nil
	}

	return &StorePage{
		Stores: stores,
		Page:   page,
		Pages:  pages,
		Count:  count,
	}, nil
}

// DetailBySlug loads a store with its reviews populated.
func (s *storeService) DetailBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	store, err := s.stores.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	store.Reviews = reviews
	return store, nil
}

func (s *storeService) EditForm(ctx context.Context, storeID, userID string) (*domain.Store, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if err := domain.AssertOwner(store.AuthorID, userID); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *storeService) Update(ctx context.Context, storeID, userID string, input StoreInput) (*domain.Store, error) {
	current, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if err := domain.AssertOwner(current.AuthorID, userID); err != nil {
		return nil, err
	}
	if err := s.checkInput(input, false); err != nil {
		return nil, err
	}

	attrs := domain.StoreUpdate{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Tags:        cleanTags(input.Tags),
		Location:    input.Location,
		Photo:       input.Photo,
	}
	return s.stores.Update(ctx, storeID, attrs)
}

// Delete removes the store and cascades: its reviews are purged and it is
// pulled from every user's hearts set. The three operations run
// concurrently and are joined, not wrapped in a transaction; a crash mid
// cascade can leave orphans, which is the accepted consistency policy.
func (s *storeService) Delete(ctx context.Context, storeID, userID string) (*domain.Store, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if err := domain.AssertOwner(store.AuthorID, userID); err != nil {
		return nil, err
	}

	var removed *domain.Store
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		removed, err = s.stores.Delete(gctx, storeID)
		return err
	})
	g.Go(func() error {
		_, err := s.reviews.DeleteAllForStore(gctx, storeID)
		return err
	})
	g.Go(func() error {
		_, err := s.users.PullHeartFromAll(gctx, storeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return removed, nil
}

// ByTag returns the tag cloud and the stores matching tag. An empty tag
// means "any tagged store". Both queries are independent and run
// concurrently.
func (s *storeService) ByTag(ctx context.Context, tag string) ([]domain.TagCount, []domain.Store, error) {
	var (
		tags   []domain.TagCount
		stores []domain.Store
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = s.stores.DistinctTags(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = s.stores.ListByTag(gctx, tag)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tags, stores, nil
}

func (s *storeService) Search(ctx context.Context, query string) ([]domain.Store, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Store{}, nil
	}
	return s.stores.SearchText(ctx, query, SearchLimit)
}

func (s *storeService) Near(ctx context.Context, lng, lat float64) ([]domain.Store, error) {
	return s.stores.Near(ctx, lng, lat, NearMaxDistanceM, NearLimit)
}

func (s *storeService) Top(ctx context.Context) ([]domain.TopStore, error) {
	return s.stores.TopStores(ctx, TopStoresLimit)
}

// checkInput validates user-supplied store fields. Location presence is only
// enforced on create; coordinate ranges are checked whenever a point is
// given.
func (s *storeService) checkInput(input StoreInput, requireLocation bool) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			return domain.NewValidationError(field, "is required")
		}
		return err
	}
	if input.Location == nil {
		if requireLocation {
			return domain.NewValidationError("location", "is required")
		}
		return nil
	}
	if input.Location.Longitude < -180 || input.Location.Longitude > 180 {
		return domain.NewValidationError("location", "longitude out of range")
	}
	if input.Location.Latitude < -90 || input.Location.Latitude > 90 {
		return domain.NewValidationError("location", "latitude out of range")
	}
	if strings.TrimSpace(input.Location.Address) == "" {
		return domain.NewValidationError("location", "address is required")
	}
	return nil
}

func cleanTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}
