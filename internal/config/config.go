package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr              string
	MongoURI          string
	MongoDatabase     string
	StoreCollection   string
	ReviewCollection  string
	UserCollection    string
	Timeout           time.Duration
	ServerLog         *log.Logger
	JWTConfigs        []JWTConfig
	JWTAudience       string
	FlashCookieSecret []byte
	FlashCookieSecure bool
	UploadsDir        string
	TemplatesGlob     string
	PublicDir         string
	AllowedOrigins    []string
}

// Load reads environment variables and returns a fully populated Config.
// A local .env file, if present, is applied first without overriding the
// real environment.
func Load() Config {
	_ = godotenv.Load()

	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	flashSecret := strings.TrimSpace(os.Getenv("FLASH_COOKIE_SECRET"))
	if flashSecret == "" {
		log.Fatal("FLASH_COOKIE_SECRET must be configured")
	}
	flashCookieSecure := strings.EqualFold(strings.TrimSpace(os.Getenv("FLASH_COOKIE_SECURE")), "true")

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "localbites-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_LEGACY_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_LEGACY_JWT_ISSUER", "localbites-legacy-auth"),
			Secret: []byte(secret),
		})
	}

	if len(jwtConfigs) == 0 {
		log.Fatal("JWT secrets not configured. Set AUTH_JWT_SECRET or AUTH_LEGACY_JWT_SECRET.")
	}

	jwtAudience := strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE"))

	cfg := Config{
		Addr:              envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:          envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:     envOrDefault("MONGO_DB", "localbites"),
		StoreCollection:   envOrDefault("STORE_COLLECTION", "stores"),
		ReviewCollection:  envOrDefault("REVIEW_COLLECTION", "reviews"),
		UserCollection:    envOrDefault("USER_COLLECTION", "users"),
		Timeout:           timeout,
		ServerLog:         log.New(os.Stdout, "[localbites-api] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:        jwtConfigs,
		JWTAudience:       jwtAudience,
		FlashCookieSecret: []byte(flashSecret),
		FlashCookieSecure: flashCookieSecure,
		UploadsDir:        envOrDefault("UPLOADS_DIR", "public/uploads"),
		TemplatesGlob:     envOrDefault("TEMPLATES_GLOB", "templates/*.gohtml"),
		PublicDir:         envOrDefault("PUBLIC_DIR", "public"),
		AllowedOrigins:    parseList("API_ALLOWED_ORIGINS", []string{"*"}),
	}

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
