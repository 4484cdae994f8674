package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodoc "github.com/localbites/localbites-services/api/internal/infrastructure/mongo"
)

type seedOptions struct {
	userCount       int
	reviewCount     int
	heartCount      int
	dropCollections bool
	randomSeed      int64
}

type collections struct {
	stores  string
	reviews string
	users   string
}

type userDocument struct {
	ID     primitive.ObjectID   `bson:"_id"`
	Name   string               `bson:"name"`
	Email  string               `bson:"email"`
	Hearts []primitive.ObjectID `bson:"hearts"`
}

type storeDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	Tags        []string           `bson:"tags,omitempty"`
	Location    bson.M             `bson:"location,omitempty"`
	Photo       string             `bson:"photo,omitempty"`
	Author      primitive.ObjectID `bson:"author"`
	Created     time.Time          `bson:"created"`
}

type reviewDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Author     primitive.ObjectID `bson:"author"`
	AuthorName string             `bson:"authorName,omitempty"`
	Store      primitive.ObjectID `bson:"store"`
	Text       string             `bson:"text"`
	Rating     int                `bson:"rating"`
	Created    time.Time          `bson:"created"`
}

func main() {
	opts := parseFlags()

	_ = godotenv.Load()

	cfg := collections{
		stores:  envOrDefault("STORE_COLLECTION", "stores"),
		reviews: envOrDefault("REVIEW_COLLECTION", "reviews"),
		users:   envOrDefault("USER_COLLECTION", "users"),
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "localbites")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		if err := dropCollections(ctx, db, cfg); err != nil {
			log.Fatalf("コレクション削除に失敗しました: %v", err)
		}
		log.Printf("既存コレクションを削除しました")
	}

	if err := ensureIndexes(ctx, db, cfg); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))

	userDocs := generateUsers(opts.userCount)
	if err := insertMany(ctx, db.Collection(cfg.users), toAnySlice(userDocs)); err != nil {
		log.Fatalf("ユーザーデータの挿入に失敗しました: %v", err)
	}

	storeDocs := generateStores(rng, userDocs)
	if err := insertMany(ctx, db.Collection(cfg.stores), toAnySlice(storeDocs)); err != nil {
		log.Fatalf("店舗データの挿入に失敗しました: %v", err)
	}

	reviewDocs := generateReviews(rng, userDocs, storeDocs, opts.reviewCount)
	if err := insertMany(ctx, db.Collection(cfg.reviews), toAnySlice(reviewDocs)); err != nil {
		log.Fatalf("レビューデータの挿入に失敗しました: %v", err)
	}

	hearts := applyHearts(ctx, rng, db.Collection(cfg.users), userDocs, storeDocs, opts.heartCount)

	log.Printf("Seed 完了: users=%d stores=%d reviews=%d hearts=%d",
		len(userDocs), len(storeDocs), len(reviewDocs), hearts)
	log.Printf("Mongo: %s / %s", mongoURI, dbName)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.IntVar(&opts.userCount, "users", 3, "生成するユーザー数")
	flag.IntVar(&opts.reviewCount, "reviews", 40, "生成するレビュー総数")
	flag.IntVar(&opts.heartCount, "hearts", 10, "生成するお気に入り数")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.userCount <= 0 {
		log.Fatal("users は 1 以上を指定してください")
	}
	if opts.reviewCount < 0 {
		opts.reviewCount = 0
	}
	if opts.heartCount < 0 {
		opts.heartCount = 0
	}
	return opts
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func dropCollections(ctx context.Context, db *mongo.Database, cfg collections) error {
	for _, name := range []string{cfg.stores, cfg.reviews, cfg.users} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			// Drop は存在しない場合も err を返すので warning ログにとどめる
			log.Printf("WARN: コレクション %s の削除に失敗: %v", name, err)
		}
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, cfg collections) error {
	if err := mongodoc.EnsureStoreIndexes(ctx, db, cfg.stores); err != nil {
		return err
	}
	if err := mongodoc.EnsureReviewIndexes(ctx, db, cfg.reviews); err != nil {
		return err
	}
	return mongodoc.EnsureUserIndexes(ctx, db, cfg.users)
}

func generateUsers(count int) []userDocument {
	if count > len(userFixtures) {
		count = len(userFixtures)
	}
	docs := make([]userDocument, 0, count)
	for i := 0; i < count; i++ {
		fixture := userFixtures[i]
		docs = append(docs, userDocument{
			ID:     primitive.NewObjectID(),
			Name:   fixture.name,
			Email:  fixture.email,
			Hearts: []primitive.ObjectID{},
		})
	}
	return docs
}

func generateStores(rng *rand.Rand, users []userDocument) []storeDocument {
	now := time.Now().UTC()
	docs := make([]storeDocument, 0, len(storeFixtures))
	for i, fixture := range storeFixtures {
		author := users[rng.Intn(len(users))]
		created := now.Add(-time.Duration(rng.Intn(365)) * 24 * time.Hour)
		docs = append(docs, storeDocument{
			ID:          primitive.NewObjectID(),
			Name:        fixture.name,
			Slug:        slug.Make(fixture.name),
			Description: fixture.description,
			Tags:        fixture.tags,
			Location: bson.M{
				"type":        "Point",
				"coordinates": []float64{fixture.lng, fixture.lat},
				"address":     fixture.address,
			},
			Photo:   fmt.Sprintf("store-%d.jpg", i+1),
			Author:  author.ID,
			Created: created,
		})
	}
	return docs
}

func generateReviews(rng *rand.Rand, users []userDocument, stores []storeDocument, total int) []reviewDocument {
	now := time.Now().UTC()
	docs := make([]reviewDocument, 0, total)
	for i := 0; i < total; i++ {
		author := users[rng.Intn(len(users))]
		store := stores[rng.Intn(len(stores))]
		docs = append(docs, reviewDocument{
			ID:         primitive.NewObjectID(),
			Author:     author.ID,
			AuthorName: author.Name,
			Store:      store.ID,
			Text:       reviewTexts[rng.Intn(len(reviewTexts))],
			Rating:     1 + rng.Intn(5),
			Created:    now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour),
		})
	}
	return docs
}

func applyHearts(ctx context.Context, rng *rand.Rand, users *mongo.Collection, userDocs []userDocument, stores []storeDocument, desired int) int {
	applied := 0
	for i := 0; i < desired; i++ {
		user := userDocs[rng.Intn(len(userDocs))]
		store := stores[rng.Intn(len(stores))]
		_, err := users.UpdateByID(ctx, user.ID, bson.M{"$addToSet": bson.M{"hearts": store.ID}})
		if err != nil {
			log.Printf("WARN: お気に入りの設定に失敗: %v", err)
			continue
		}
		applied++
	}
	return applied
}

func insertMany(ctx context.Context, col *mongo.Collection, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := col.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}

type userFixture struct {
	name  string
	email string
}

type storeFixture struct {
	name        string
	description string
	address     string
	lng         float64
	lat         float64
	tags        []string
}

var (
	userFixtures = []userFixture{
		{name: "Debbie Downer", email: "debbie@example.com"},
		{name: "Beau Drinker", email: "beau@example.com"},
		{name: "Wes Snacks", email: "wes@example.com"},
	}

	storeFixtures = []storeFixture{
		{
			name:        "Thai Basil",
			description: "Family run Thai kitchen with a short menu that changes weekly.",
			address:     "891 Notre-Dame Street West, Montreal",
			lng:         -73.561668, lat: 45.493835,
			tags: []string{"Wifi", "Family Friendly"},
		},
		{
			name:        "Cupcake Cafe",
			description: "Buttercream-forward bakery with a rotating cast of seasonal flavours.",
			address:     "401 Richmond Street West, Toronto",
			lng:         -79.394834, lat: 43.648144,
			tags: []string{"Family Friendly", "Wifi"},
		},
		{
			name:        "Federal House Bar",
			description: "Wood panelled bar with local taps and a late kitchen.",
			address:     "600 Terry Avenue North, Seattle",
			lng:         -122.336655, lat: 47.623085,
			tags: []string{"Bar", "Licensed", "Open Late"},
		},
		{
			name:        "The Sandwich Shack",
			description: "Overstuffed sandwiches on bread baked in house every morning.",
			address:     "166 Sunrise Avenue, Toronto",
			lng:         -79.303542, lat: 43.706345,
			tags: []string{"Vegetarian", "Wifi"},
		},
		{
			name:        "Kingfisher Oyster Bar",
			description: "Raw bar and small plates right on the water.",
			address:     "1480 Lower Water Street, Halifax",
			lng:         -63.570385, lat: 44.645474,
			tags: []string{"Bar", "Licensed"},
		},
		{
			name:        "Mission Chinese Food",
			description: "Loud, busy and worth the wait. Order the kung pao pastrami.",
			address:     "2234 Mission Street, San Francisco",
			lng:         -122.419416, lat: 37.761081,
			tags: []string{"Licensed", "Open Late"},
		},
		{
			name:        "Little Jumbo",
			description: "Hidden cocktail room at the end of a long hallway.",
			address:     "506 Fort Street, Victoria",
			lng:         -123.366571, lat: 48.424386,
			tags: []string{"Bar", "Licensed", "Open Late"},
		},
		{
			name:        "Green Bowl",
			description: "Build-your-own grain bowls with an all-vegetarian counter.",
			address:     "128 West Hastings Street, Vancouver",
			lng:         -123.107077, lat: 49.281554,
			tags: []string{"Vegetarian", "Family Friendly"},
		},
	}

	reviewTexts = []string{
		"Came for lunch, stayed for the dessert case. Will absolutely be back.",
		"Service was slow on a busy night but the food made up for it.",
		"Best spot in the neighbourhood, hands down.",
		"Decent but overpriced for what you get.",
		"The patio alone is worth the visit in summer.",
		"Staff remembered our order from last time. That kind of place.",
	}
)
