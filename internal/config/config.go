package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"listing-marketplace/internal/model"
	"listing-marketplace/internal/pagination"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	MongoURI       string
	MongoDB        string
	DatabaseURL    string
	DBMaxOpenConns int

	JWTSecret string

	GoogleMapsAPIKey string
	GeocodeRegion    string
	GeocodeTimeout   time.Duration
	StoreTimeout     time.Duration

	PageSize             int
	SearchRadiusKm       float64
	RelatedMaxDistanceKm float64
	RelatedLimit         int
	PriceMatch           model.PriceMatch
}

// Load reads the .env file (when present) and returns a populated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8000"),
		GinMode:  getEnv("GIN_MODE", "release"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "marketplace"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocodeRegion:    getEnv("GEOCODE_REGION", "au"),
		GeocodeTimeout:   getEnvDuration("GEOCODE_TIMEOUT", 5*time.Second),
		StoreTimeout:     getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		PageSize:             getEnvInt("PAGE_SIZE", pagination.DefaultPageSize),
		SearchRadiusKm:       getEnvFloat("SEARCH_RADIUS_KM", 10),
		RelatedMaxDistanceKm: getEnvFloat("RELATED_MAX_DISTANCE_KM", 50),
		RelatedLimit:         getEnvInt("RELATED_LIMIT", 3),
		PriceMatch:           model.PriceMatch(getEnv("PRICE_MATCH", string(model.PriceMatchRange))),
	}
	return cfg, cfg.validate()
}

// Debug reports whether debug logging is enabled. Debug lines carry searched addresses.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return fmt.Errorf("config: DATABASE_URL is required")
	case c.JWTSecret == "":
		return fmt.Errorf("config: JWT_SECRET is required")
	case c.GoogleMapsAPIKey == "":
		return fmt.Errorf("config: GOOGLE_MAPS_API_KEY is required")
	case c.PageSize <= 0:
		return fmt.Errorf("config: PAGE_SIZE must be positive, got %d", c.PageSize)
	case c.RelatedLimit <= 0:
		return fmt.Errorf("config: RELATED_LIMIT must be positive, got %d", c.RelatedLimit)
	case c.LogLevel != "info" && c.LogLevel != "debug":
		return fmt.Errorf("config: LOG_LEVEL must be \"info\" or \"debug\", got %q", c.LogLevel)
	case !c.PriceMatch.Valid():
		return fmt.Errorf("config: PRICE_MATCH must be %q or %q, got %q",
			model.PriceMatchRange, model.PriceMatchEdges, c.PriceMatch)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
