package domain

import "time"

// DefaultPhoto is served when a store was created without an uploaded photo.
const DefaultPhoto = "store.png"

// Location is a geographic point with a free-text street address.
// Coordinates follow the GeoJSON convention: longitude first.
type Location struct {
	Longitude float64
	Latitude  float64
	Address   string
}

// Store represents a listed local business.
type Store struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Tags        []string
	Location    *Location
	Photo       string
	AuthorID    string
	Created     time.Time

	// Reviews is a derived relation, populated only on detail reads.
	Reviews []Review
}

// PhotoOrDefault returns the stored photo filename, falling back to the
// placeholder image.
func (s Store) PhotoOrDefault() string {
	if s.Photo == "" {
		return DefaultPhoto
	}
	return s.Photo
}

// StoreUpdate carries the merge payload for a store update. Slug and author
// are never touched by an update.
type StoreUpdate struct {
	Name        string
	Description string
	Tags        []string
	Location    *Location
	Photo       string
}

// TagCount pairs a tag label with the number of stores carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// TopStore is a store projected with its aggregate review score.
type TopStore struct {
	Store
	AverageRating float64
	ReviewCount   int
}
