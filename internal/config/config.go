// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSource          string        `mapstructure:"DB_SOURCE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// JWT / Session Configuration
	JWTSecretKey               string        `mapstructure:"JWT_SECRET_KEY"`
	JWTAccessTokenExpiry       time.Duration `mapstructure:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES"`
	JWTRefreshTokenExpiry      time.Duration `mapstructure:"JWT_REFRESH_TOKEN_EXPIRY_DAYS"`
	AuthCookieDomain           string        `mapstructure:"AUTH_COOKIE_DOMAIN"`
	EmailVerificationTokenTTL  time.Duration `mapstructure:"EMAIL_VERIFICATION_TOKEN_TTL_HOURS"`
	PasswordResetTokenTTL      time.Duration `mapstructure:"PASSWORD_RESET_TOKEN_TTL_MINUTES"`
	CredentialTokenCleanupCron string        `mapstructure:"CREDENTIAL_TOKEN_CLEANUP_SCHEDULE"`

	// Application Specific Configuration
	FrontendBaseURL  string  `mapstructure:"FRONTEND_BASE_URL"`
	ListingUnlockFee float64 `mapstructure:"LISTING_UNLOCK_FEE"`

	// SMTP / Mail Configuration
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	MailFromName string `mapstructure:"MAIL_FROM_NAME"`

	// Kafka Configuration (optional notification event bus)
	KafkaBroker            string `mapstructure:"KAFKA_BROKER"`
	KafkaNotificationTopic string `mapstructure:"KAFKA_NOTIFICATION_TOPIC"`
	KafkaUsername          string `mapstructure:"KAFKA_USERNAME"`
	KafkaPassword          string `mapstructure:"KAFKA_PASSWORD"`

	// Elasticsearch Configuration (optional listing search index)
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "unihomes_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_EXPIRY_DAYS", 7)
	v.SetDefault("AUTH_COOKIE_DOMAIN", "")
	v.SetDefault("EMAIL_VERIFICATION_TOKEN_TTL_HOURS", 24)
	v.SetDefault("PASSWORD_RESET_TOKEN_TTL_MINUTES", 60)
	v.SetDefault("CREDENTIAL_TOKEN_CLEANUP_SCHEDULE", "@daily")

	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("LISTING_UNLOCK_FEE", 2000.0)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "no-reply@unihomes.app")
	v.SetDefault("MAIL_FROM_NAME", "UniHomes")

	v.SetDefault("KAFKA_BROKER", "") // Optional
	v.SetDefault("KAFKA_NOTIFICATION_TOPIC", "unihomes.notifications")
	v.SetDefault("KAFKA_USERNAME", "")
	v.SetDefault("KAFKA_PASSWORD", "")

	v.SetDefault("ELASTICSEARCH_URL", "") // Optional

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.JWTAccessTokenExpiry = time.Duration(v.GetInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES")) * time.Minute
	cfg.JWTRefreshTokenExpiry = time.Duration(v.GetInt("JWT_REFRESH_TOKEN_EXPIRY_DAYS")) * 24 * time.Hour
	cfg.EmailVerificationTokenTTL = time.Duration(v.GetInt("EMAIL_VERIFICATION_TOKEN_TTL_HOURS")) * time.Hour
	cfg.PasswordResetTokenTTL = time.Duration(v.GetInt("PASSWORD_RESET_TOKEN_TTL_MINUTES")) * time.Minute

	// GORM DSN constructed from the individual DB params.
	cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)

	// Signing key misconfiguration is fatal at startup, never a per-request error.
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return nil, fmt.Errorf("FATAL: JWT_SECRET_KEY is not set; tokens cannot be signed")
	}

	return &cfg, nil
}
