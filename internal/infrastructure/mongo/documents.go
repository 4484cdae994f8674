package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// LocationDocument は GeoJSON Point に住所を加えた埋め込みドキュメント。
// coordinates は [longitude, latitude] の順。
type LocationDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
	Address     string    `bson:"address,omitempty"`
}

// StoreDocument は MongoDB 上での店舗スキーマを Go 構造体として表現したもの。
type StoreDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	Tags        []string           `bson:"tags,omitempty"`
	Location    *LocationDocument  `bson:"location,omitempty"`
	Photo       string             `bson:"photo,omitempty"`
	Author      primitive.ObjectID `bson:"author"`
	Created     time.Time          `bson:"created"`
}

// ReviewDocument holds a review. Author name is denormalised at write time
// so listing reviews does not require a user lookup.
type ReviewDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Author     primitive.ObjectID `bson:"author"`
	AuthorName string             `bson:"authorName,omitempty"`
	Store      primitive.ObjectID `bson:"store"`
	Text       string             `bson:"text"`
	Rating     int                `bson:"rating"`
	Created    time.Time          `bson:"created"`
}

// UserDocument carries the account fields this service reads or mutates.
type UserDocument struct {
	ID     primitive.ObjectID   `bson:"_id"`
	Name   string               `bson:"name,omitempty"`
	Email  string               `bson:"email"`
	Hearts []primitive.ObjectID `bson:"hearts,omitempty"`
}

func mapStoreDocument(doc StoreDocument) domain.Store {
	store := domain.Store{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Slug:        doc.Slug,
		Description: doc.Description,
		Tags:        append([]string{}, doc.Tags...),
		Photo:       doc.Photo,
		AuthorID:    doc.Author.Hex(),
		Created:     doc.Created,
	}
	if doc.Location != nil && len(doc.Location.Coordinates) == 2 {
		store.Location = &domain.Location{
			Longitude: doc.Location.Coordinates[0],
			Latitude:  doc.Location.Coordinates[1],
			Address:   doc.Location.Address,
		}
	}
	return store
}

func buildLocationDocument(loc *domain.Location) *LocationDocument {
	if loc == nil {
		return nil
	}
	return &LocationDocument{
		Type:        "Point",
		Coordinates: []float64{loc.Longitude, loc.Latitude},
		Address:     loc.Address,
	}
}

func mapReviewDocument(doc ReviewDocument) domain.Review {
	return domain.Review{
		ID:         doc.ID.Hex(),
		AuthorID:   doc.Author.Hex(),
		AuthorName: doc.AuthorName,
		StoreID:    doc.Store.Hex(),
		Text:       doc.Text,
		Rating:     doc.Rating,
		Created:    doc.Created,
	}
}

func mapUserDocument(doc UserDocument) domain.User {
	hearts := make([]string, 0, len(doc.Hearts))
	for _, id := range doc.Hearts {
		hearts = append(hearts, id.Hex())
	}
	return domain.User{
		ID:     doc.ID.Hex(),
		Name:   doc.Name,
		Email:  doc.Email,
		Hearts: hearts,
	}
}
