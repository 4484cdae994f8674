package public

import (
	"time"

	"github.com/localbites/localbites-services/api/internal/domain"
)

type locationResponse struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	Address   string  `json:"address,omitempty"`
}

type storeResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Location    *locationResponse `json:"location,omitempty"`
	Photo       string            `json:"photo"`
	Author      string            `json:"author"`
	Created     time.Time         `json:"created"`
}

type reviewResponse struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName,omitempty"`
	Store      string    `json:"store"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"`
	Created    time.Time `json:"created"`
}

type userResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"email"`
	Hearts []string `json:"hearts"`
}

func buildStoreResponse(store domain.Store) storeResponse {
	resp := storeResponse{
		ID:          store.ID,
		Name:        store.Name,
		Slug:        store.Slug,
		Description: store.Description,
		Tags:        store.Tags,
		Photo:       store.PhotoOrDefault(),
		Author:      store.AuthorID,
		Created:     store.Created,
	}
	if store.Location != nil {
		resp.Location = &locationResponse{
			Longitude: store.Location.Longitude,
			Latitude:  store.Location.Latitude,
			Address:   store.Location.Address,
		}
	}
	return resp
}

func buildStoreResponses(stores []domain.Store) []storeResponse {
	result := make([]storeResponse, 0, len(stores))
	for _, store := range stores {
		result = append(result, buildStoreResponse(store))
	}
	return result
}

func buildReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:         review.ID,
		Author:     review.AuthorID,
		AuthorName: review.AuthorName,
		Store:      review.StoreID,
		Text:       review.Text,
		Rating:     review.Rating,
		Created:    review.Created,
	}
}

func buildUserResponse(user domain.User) userResponse {
	hearts := user.Hearts
	if hearts == nil {
		hearts = []string{}
	}
	return userResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Hearts: hearts,
	}
}
