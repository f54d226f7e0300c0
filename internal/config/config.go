// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Boond       BoondConfig
	YouSign     YouSignConfig
	Email       EmailConfig
	Portal      PortalConfig
	Vigilance   VigilanceConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

// BoondConfig points at the BoondManager CRM API.
type BoondConfig struct {
	BaseURL  string
	Username string
	Password string
}

// YouSignConfig points at the e-signature provider API.
type YouSignConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// PortalConfig configures the unauthenticated third-party portal.
type PortalConfig struct {
	BaseURL        string
	MagicLinkTTL   int // in hours
	MaxUploadBytes int64
}

// VigilanceConfig tunes the expiration sweep.
type VigilanceConfig struct {
	SweepHour         int // local hour of day the daily sweep runs
	ExpiryWarningDays int
	SweepEnabled      bool
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "talentflow"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "eu-west-3"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "talentflow-documents"),
		},
		Boond: BoondConfig{
			BaseURL:  getEnv("BOOND_BASE_URL", "https://ui.boondmanager.com/api"),
			Username: getEnv("BOOND_USERNAME", ""),
			Password: getEnv("BOOND_PASSWORD", ""),
		},
		YouSign: YouSignConfig{
			BaseURL:       getEnv("YOUSIGN_BASE_URL", "https://api.yousign.app/v3"),
			APIKey:        getEnv("YOUSIGN_API_KEY", ""),
			WebhookSecret: getEnv("YOUSIGN_WEBHOOK_SECRET", ""),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@talentflow.fr"),
			FromName:     getEnv("FROM_NAME", "TalentFlow"),
		},
		Portal: PortalConfig{
			BaseURL:        getEnv("PORTAL_BASE_URL", "http://localhost:3000"),
			MagicLinkTTL:   getEnvAsInt("PORTAL_MAGIC_LINK_TTL", 168), // 7 days
			MaxUploadBytes: int64(getEnvAsInt("PORTAL_MAX_UPLOAD_MB", 10)) * 1024 * 1024,
		},
		Vigilance: VigilanceConfig{
			SweepHour:         getEnvAsInt("VIGILANCE_SWEEP_HOUR", 6),
			ExpiryWarningDays: getEnvAsInt("VIGILANCE_WARNING_DAYS", 30),
			SweepEnabled:      getEnvAsBool("VIGILANCE_SWEEP_ENABLED", true),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Environment == "production" && c.YouSign.WebhookSecret == "" {
		return fmt.Errorf("YouSign webhook secret is required in production")
	}

	return nil
}

// DSN builds the postgres connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
