package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	DataSource    string
	DataDir       string
	PetitionsFile string
	CitiesFile    string
	CarsFile      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CachePrefix   string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	R2Endpoint      string
	R2AccessKey     string
	R2SecretKey     string
	R2Bucket        string
	R2PublicBaseURL string

	OTELCollectorURL string
	CORSOrigins      []string
	USAtlasURL       string

	OutlierZ float64
	TopN     int
}

// Load reads the environment, pulling in a .env file outside production.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:   getEnvString("PORT", "8000"),
		AppEnv: getEnvString("APP_ENV", "development"),

		DataSource:    getEnvString("DATA_SOURCE", "file"),
		DataDir:       getEnvString("DATA_DIR", "data"),
		PetitionsFile: getEnvString("PETITIONS_FILE", "h1b_data.csv"),
		CitiesFile:    getEnvString("CITIES_FILE", "us_cities.csv"),
		CarsFile:      getEnvString("CARS_FILE", "cars.csv"),

		DatabaseURL: getEnvString("DATABASE_URL", ""),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),
		CachePrefix:   getEnvString("CACHE_PREFIX", "dataviz:"),

		JWTSecret:     getEnvString("JWT_SECRET", ""),
		AdminEmail:    getEnvString("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnvString("ADMIN_PASSWORD", ""),

		R2Endpoint:      getEnvString("R2_ENDPOINT", ""),
		R2AccessKey:     getEnvString("R2_ACCESS_KEY", ""),
		R2SecretKey:     getEnvString("R2_SECRET_KEY", ""),
		R2Bucket:        getEnvString("R2_BUCKET_NAME", ""),
		R2PublicBaseURL: getEnvString("R2_PUBLIC_BASE_URL", ""),

		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		USAtlasURL:       getEnvString("US_ATLAS_URL", "https://cdn.jsdelivr.net/npm/us-atlas@3/states-10m.json"),

		OutlierZ: getEnvFloat("OUTLIER_Z", 3),
		TopN:     getEnvInt("TOP_N", 20),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.DataSource != "file" && cfg.DataSource != "r2" {
		return nil, errors.New("DATA_SOURCE must be file or r2")
	}
	if cfg.DataSource == "r2" && !cfg.HasR2() {
		return nil, errors.New("DATA_SOURCE=r2 requires R2_ENDPOINT and R2_BUCKET_NAME")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) HasR2() bool {
	return c.R2Endpoint != "" && c.R2Bucket != ""
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
