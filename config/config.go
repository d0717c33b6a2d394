package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	S3       S3Config
	Redis    RedisConfig
	SMTP     SMTPConfig
	Admin    AdminConfig
	Site     SiteConfig
	Tracking TrackingConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	LogFormat   string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // MinIO / R2 compatible endpoint, empty for AWS
	BaseURL         string // CloudFront or public bucket URL
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outbound mail can be sent.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type AdminConfig struct {
	Emails     []string
	Roles      []string
	SessionTTL time.Duration
}

type SiteConfig struct {
	URL           string
	WhatsAppPhone string
}

type TrackingConfig struct {
	IPSalt         string
	UTMCookieTTL   time.Duration
	ClickRetention time.Duration
}

type CatalogConfig struct {
	DefaultPerPage int
	MaxPerPage     int
	MaxUploadBytes int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "catalogo"),
			Password: getEnv("DB_PASSWORD", "catalogo"),
			DBName:   getEnv("DB_NAME", "catalogo"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxIdleConns:    parseInt(getEnv("DB_MAX_IDLE_CONNS", "5"), 5),
			MaxOpenConns:    parseInt(getEnv("DB_MAX_OPEN_CONNS", "20"), 20),
			ConnMaxLifetime: parseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"), 30*time.Minute),
			SlowQuery:       parseDuration(getEnv("DB_SLOW_QUERY", "500ms"), 500*time.Millisecond),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "change-me"),
			AccessTokenExpiry: parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "12h"), 12*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("STORAGE_BUCKET", "products"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			BaseURL:         strings.TrimRight(getEnv("AWS_S3_BASE_URL", ""), "/"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     parseInt(getEnv("SMTP_PORT", "587"), 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Admin: AdminConfig{
			Emails:     lowerAll(parseSlice(getEnv("ADMIN_EMAILS", ""))),
			Roles:      lowerAll(parseSlice(getEnv("ADMIN_ROLES", "owner,editor"))),
			SessionTTL: parseDuration(getEnv("ADMIN_SESSION_TTL", "12h"), 12*time.Hour),
		},
		Site: SiteConfig{
			URL:           strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
			WhatsAppPhone: strings.TrimSpace(getEnv("WHATSAPP_PHONE", "")),
		},
		Tracking: TrackingConfig{
			IPSalt:         getEnv("UTM_IP_SALT", ""),
			UTMCookieTTL:   parseDuration(getEnv("UTM_COOKIE_TTL", "168h"), 7*24*time.Hour),
			ClickRetention: parseDuration(getEnv("CLICK_EVENT_RETENTION", "8760h"), 365*24*time.Hour),
		},
		Catalog: CatalogConfig{
			DefaultPerPage: parseInt(getEnv("CATALOG_DEFAULT_PER_PAGE", "12"), 12),
			MaxPerPage:     parseInt(getEnv("CATALOG_MAX_PER_PAGE", "60"), 60),
			MaxUploadBytes: int64(parseInt(getEnv("MAX_UPLOAD_BYTES", "8388608"), 8*1024*1024)),
		},
	}

	return config, nil
}

// IsProduction reports whether the server runs with production semantics
// (sitemap enabled, debug routes disabled).
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}
