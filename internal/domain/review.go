package domain

import "time"

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rated comment a user leaves on a store. Author and store
// references are fixed at creation time.
type Review struct {
	ID         string
	AuthorID   string
	AuthorName string
	StoreID    string
	Text       string
	Rating     int
	Created    time.Time

	// StoreSlug is resolved from the referenced store when a handler needs
	// to redirect back to the store page. Not stored on the review itself.
	StoreSlug string
}

// ReviewUpdate carries the mutable fields of a review.
type ReviewUpdate struct {
	Text   string
	Rating int
}
