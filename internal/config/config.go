package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Admin     AdminConfig
	Store     StoreConfig
	Import    ImportConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type AdminConfig struct {
	Password string
}

// StoreConfig holds the storefront constants used in the order message
type StoreConfig struct {
	Name           string
	WhatsAppNumber string
	CountryCode    string
	CurrencySymbol string
	DeliveryFee    float64
}

type ImportConfig struct {
	MaxRows int
}

type StorageConfig struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
	ObjectPrefix    string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

func Load() *Config {
	// .env values become process environment so child tools see them too;
	// variables already set win.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_TTL_MINUTES", 720)
	viper.SetDefault("STORE_NAME", "S-Mart")
	viper.SetDefault("STORE_COUNTRY_CODE", "91")
	viper.SetDefault("STORE_CURRENCY_SYMBOL", "₹")
	viper.SetDefault("STORE_DELIVERY_FEE", 40)
	viper.SetDefault("IMPORT_MAX_ROWS", 500)
	viper.SetDefault("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com")
	viper.SetDefault("GCS_OBJECT_PREFIX", "product-images")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_SERVICE_NAME", "smart-store")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Secret: viper.GetString("SESSION_SECRET"),
			TTL:    time.Duration(viper.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
		},
		Admin: AdminConfig{
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		Store: StoreConfig{
			Name:           viper.GetString("STORE_NAME"),
			WhatsAppNumber: viper.GetString("WHATSAPP_NUMBER"),
			CountryCode:    viper.GetString("STORE_COUNTRY_CODE"),
			CurrencySymbol: viper.GetString("STORE_CURRENCY_SYMBOL"),
			DeliveryFee:    viper.GetFloat64("STORE_DELIVERY_FEE"),
		},
		Import: ImportConfig{
			MaxRows: viper.GetInt("IMPORT_MAX_ROWS"),
		},
		Storage: StorageConfig{
			Bucket:          viper.GetString("GCS_BUCKET"),
			CredentialsFile: viper.GetString("GCS_CREDENTIALS_FILE"),
			PublicBaseURL:   viper.GetString("GCS_PUBLIC_BASE_URL"),
			ObjectPrefix:    viper.GetString("GCS_OBJECT_PREFIX"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Tracing: TracingConfig{
			Enabled:     viper.GetBool("TRACING_ENABLED"),
			ServiceName: viper.GetString("TRACING_SERVICE_NAME"),
		},
	}
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
