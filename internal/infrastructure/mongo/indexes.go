package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureStoreIndexes は店舗コレクションに必要なインデックスを起動時に用意する。
// slug のユニーク制約、name/description のテキスト検索、location の 2dsphere、
// tags のマルチキーを揃える。
func EnsureStoreIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := db.Collection(collectionName).Indexes()
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
			},
			Options: options.Index().SetName("store_text"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags_index"),
		},
		{
			Keys:    bson.D{{Key: "created", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
	}

	_, err := indexes.CreateMany(ctx, models)
	return err
}

// EnsureReviewIndexes はレビューコレクションの store/author 参照インデックスを用意する。
func EnsureReviewIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := db.Collection(collectionName).Indexes()
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "store", Value: 1}},
			Options: options.Index().SetName("store_index"),
		},
		{
			Keys:    bson.D{{Key: "author", Value: 1}},
			Options: options.Index().SetName("author_index"),
		},
	}

	_, err := indexes.CreateMany(ctx, models)
	return err
}

// EnsureUserIndexes はユーザーコレクションの email ユニーク制約と hearts の
// マルチキーインデックスを用意する。
func EnsureUserIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := db.Collection(collectionName).Indexes()
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "hearts", Value: 1}},
			Options: options.Index().SetName("hearts_index"),
		},
	}

	_, err := indexes.CreateMany(ctx, models)
	return err
}
