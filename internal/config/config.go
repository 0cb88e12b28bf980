package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port      string
	Env       string
	PublicURL string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

// Configured reports whether a database host was provided. Without it the
// service runs with persistence disabled.
func (c PostgresConfig) Configured() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

type BlobConfig struct {
	Dir    string
	Bucket string
}

type AdminConfig struct {
	Email        string
	PasswordHash string
}

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Blob     BlobConfig
	Admin    AdminConfig
}

// NewConfig reads an optional .env file from the working directory and then
// the process environment.
func NewConfig() (*Config, error) {
	return Load(".env")
}

func Load(path string) (*Config, error) {
	if path != "" {
		err := godotenv.Load(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.PublicURL = getEnv("APP_PUBLIC_URL", "http://localhost:"+cfg.App.Port)

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.User = getEnv("DB_USER", "postgres")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = getEnv("DB_NAME", "storefront")
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MaxConns = int32(maxConns)
	cfg.Postgres.MinConns = int32(minConns)

	cfg.Postgres.MaxConnLifetime, err = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.Configured() && cfg.Postgres.Password == "" {
		return nil, errors.New("DB_PASSWORD is required when DB_HOST is set")
	}

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.CartTTL, err = getEnvDuration("CART_TTL", 0)
	if err != nil {
		return nil, err
	}

	cfg.Blob.Dir = getEnv("BLOB_DIR", "data/blobs")
	cfg.Blob.Bucket = getEnv("BLOB_BUCKET", "assets")

	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.PasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}
