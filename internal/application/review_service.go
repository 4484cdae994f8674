package application

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// ReviewInput carries the user-supplied fields of a review.
type ReviewInput struct {
	Text   string `validate:"required"`
	Rating int    `validate:"gte=1,lte=5"`
}

// ReviewService bundles the review use-cases. Every mutation is owner
// scoped; the original behaviour of leaving review edit/delete unguarded
// was an oversight and is fixed here.
type ReviewService interface {
	Create(ctx context.Context, storeID string, author domain.User, input ReviewInput) (*domain.Review, error)
	EditForm(ctx context.Context, reviewID, userID string) (*domain.Review, error)
	Update(ctx context.Context, reviewID, userID string, input ReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, reviewID, userID string) (*domain.Review, error)
}

type reviewService struct {
	reviews  ReviewRepository
	stores   StoreRepository
	validate *validator.Validate
}

// NewReviewService wires the review use-cases to their repositories.
func NewReviewService(reviews ReviewRepository, stores StoreRepository) ReviewService {
	return &reviewService{
		reviews:  reviews,
		stores:   stores,
		validate: validator.New(),
	}
}

// Create persists a review with author and store fixed to the caller and
// the addressed store. The store must exist at creation time.
func (s *reviewService) Create(ctx context.Context, storeID string, author domain.User, input ReviewInput) (*domain.Review, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		StoreID:    store.ID,
		Text:       strings.TrimSpace(input.Text),
		Rating:     input.Rating,
		StoreSlug:  store.Slug,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) EditForm(ctx context.Context, reviewID, userID string) (*domain.Review, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := domain.AssertOwner(review.AuthorID, userID); err != nil {
		return nil, err
	}
	return review, nil
}

// Update applies the new text and rating and returns the review with its
// store slug resolved so the handler can redirect to the store page.
func (s *reviewService) Update(ctx context.Context, reviewID, userID string, input ReviewInput) (*domain.Review, error) {
	current, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := domain.AssertOwner(current.AuthorID, userID); err != nil {
		return nil, err
	}
	if err := s.checkInput(input); err != nil {
		return nil, err
	}
	return s.reviews.Update(ctx, reviewID, domain.ReviewUpdate{
		Text:   strings.TrimSpace(input.Text),
		Rating: input.Rating,
	})
}

func (s *reviewService) Delete(ctx context.Context, reviewID, userID string) (*domain.Review, error) {
	current, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := domain.AssertOwner(current.AuthorID, userID); err != nil {
		return nil, err
	}
	return s.reviews.Delete(ctx, reviewID)
}

func (s *reviewService) checkInput(input ReviewInput) error {
	if strings.TrimSpace(input.Text) == "" {
		return domain.NewValidationError("text", "is required")
	}
	if err := s.validate.Struct(input); err != nil {
		if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
			return domain.NewValidationError("rating", "must be between 1 and 5")
		}
		return err
	}
	return nil
}
