package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	GinMode  string `mapstructure:"GIN_MODE"`

	// Database configuration.
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBTimeout         time.Duration `mapstructure:"DB_TIMEOUT"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	// Empty disables the distributed car lock and event publishing.
	RedisURL   string        `mapstructure:"REDIS_URL"`
	CarLockTTL time.Duration `mapstructure:"CAR_LOCK_TTL"`

	// Mail configuration.
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      string `mapstructure:"SMTP_PORT"`
	EmailFrom     string `mapstructure:"EMAIL_FROM"`
	EmailPassword string `mapstructure:"EMAIL_PASSWORD"`
	OwnerEmail    string `mapstructure:"OWNER_EMAIL"`

	AWSRegion          string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	SESEnabled         bool   `mapstructure:"SES_ENABLED"`

	FirebaseServiceAccountPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_PATH"`

	// Africa's Talking; both empty disables SMS.
	ATUsername string `mapstructure:"AT_USERNAME"`
	ATAPIKey   string `mapstructure:"AT_API_KEY"`

	NotifyTimeout           time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	AvailabilityConcurrency int           `mapstructure:"AVAILABILITY_CONCURRENCY"`

	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`
	RateLimitBurst  int    `mapstructure:"RATE_LIMIT_BURST"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]interface{}{
	"APP_PORT":  "8080",
	"ENV":       "development",
	"LOG_LEVEL": "info",
	"GIN_MODE":  "debug",

	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "",
	"DB_NAME":              "carrental",
	"DB_SSLMODE":           "disable",
	"DB_MAX_OPEN_CONNS":    100,
	"DB_MAX_IDLE_CONNS":    10,
	"DB_CONN_MAX_LIFETIME": time.Hour,
	"DB_TIMEOUT":           5 * time.Second,

	"JWT_SECRET": "",
	"JWT_TTL":    7 * 24 * time.Hour,

	"REDIS_URL":    "",
	"CAR_LOCK_TTL": 10 * time.Second,

	"SMTP_HOST":      "smtp.gmail.com",
	"SMTP_PORT":      "587",
	"EMAIL_FROM":     "",
	"EMAIL_PASSWORD": "",
	"OWNER_EMAIL":    "",

	"AWS_REGION":            "",
	"AWS_ACCESS_KEY_ID":     "",
	"AWS_SECRET_ACCESS_KEY": "",
	"SES_ENABLED":           false,

	"FIREBASE_SERVICE_ACCOUNT_PATH": "",

	"AT_USERNAME": "",
	"AT_API_KEY":  "",

	"NOTIFY_TIMEOUT":           10 * time.Second,
	"AVAILABILITY_CONCURRENCY": 8,

	"RATE_LIMIT_PER_MIN": 200,
	"RATE_LIMIT_BURST":   50,
	"CORS_ORIGINS":       "*",
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DBTimeout <= 0 {
		return fmt.Errorf("DB_TIMEOUT must be positive")
	}
	if c.AvailabilityConcurrency < 1 {
		c.AvailabilityConcurrency = 1
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN is the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
