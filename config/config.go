package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
	BackendLocal    = "local"
)

type Config struct {
	Server   ServerConfig
	Supabase SupabaseConfig
	Store    StoreConfig
	Blob     BlobConfig
	Drafts   DraftsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port          string
	CORSOrigins   []string
	MaxUploadMB   int
	PublicBaseURL string
}

// SupabaseConfig holds the hosted service endpoint and its public (anon) key.
type SupabaseConfig struct {
	URL       string
	AnonKey   string
	Bucket    string
	RateLimit int
	Burst     int
}

type StoreConfig struct {
	Backend    string
	DSN        string
	SQLitePath string
}

type BlobConfig struct {
	Backend         string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string
	LocalDir        string
}

type DraftsConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTLMinutes    int
	SweepCron     string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			CORSOrigins:   getEnvAsList("CORS_ORIGINS", []string{"*"}),
			MaxUploadMB:   getEnvAsInt("MAX_UPLOAD_MB", 10),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		},
		Supabase: SupabaseConfig{
			URL:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			AnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
			Bucket:    getEnv("SUPABASE_BUCKET", "project-files"),
			RateLimit: getEnvAsInt("SUPABASE_RATE_LIMIT", 10),
			Burst:     getEnvAsInt("SUPABASE_BURST", 20),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("RECORD_STORE", BackendSupabase)),
			DSN:        getEnv("DB_DSN", ""),
			SQLitePath: getEnv("SQLITE_PATH", "keeper.db"),
		},
		Blob: BlobConfig{
			Backend:         strings.ToLower(getEnv("BLOB_STORE", BackendSupabase)),
			S3Bucket:        getEnv("S3_BUCKET", ""),
			S3Region:        getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:      getEnv("S3_ENDPOINT", ""),
			S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
			LocalDir:        getEnv("LOCAL_BLOB_DIR", "uploads"),
		},
		Drafts: DraftsConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTLMinutes:    getEnvAsInt("DRAFT_TTL_MINUTES", 720),
			SweepCron:     getEnv("DRAFT_SWEEP_CRON", "0 */5 * * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case BackendSupabase, BackendSQLite:
	case BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("DB_DSN is required when RECORD_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown RECORD_STORE %q", c.Store.Backend)
	}

	switch c.Blob.Backend {
	case BackendSupabase, BackendLocal:
	case BackendS3:
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BLOB_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown BLOB_STORE %q", c.Blob.Backend)
	}

	if c.UsesSupabase() {
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.Supabase.AnonKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY is required")
		}
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return nil
}

// UsesSupabase reports whether any backend talks to the hosted service.
func (c *Config) UsesSupabase() bool {
	return c.Store.Backend == BackendSupabase || c.Blob.Backend == BackendSupabase
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
