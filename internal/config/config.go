package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Export  ExportConfig
	Webhook WebhookConfig
	S3      S3Config
	Log     LogConfig
}

type ServerConfig struct {
	Host string
	Port string
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type ExportConfig struct {
	OutputDir   string
	SubmitDelay time.Duration
	SettleDelay time.Duration
	Timeout     time.Duration
	LogoPath    string // optional
}

// WebhookConfig is optional; an empty URL disables delivery.
type WebhookConfig struct {
	URL     string
	Retries int
}

// S3Config is optional; an empty bucket disables uploads.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from a .env file, if present, and the
// environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Export: ExportConfig{
			OutputDir:   getEnv("OUTPUT_DIR", "exports"),
			SubmitDelay: getEnvDuration("SUBMIT_DELAY", 800*time.Millisecond),
			SettleDelay: getEnvDuration("SETTLE_DELAY", 200*time.Millisecond),
			Timeout:     getEnvDuration("EXPORT_TIMEOUT", 30*time.Second),
			LogoPath:    getEnv("LOGO_PATH", ""),
		},
		Webhook: WebhookConfig{
			URL:     getEnv("WEBHOOK_URL", ""),
			Retries: getEnvInt("WEBHOOK_RETRIES", 3),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects inconsistent values.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Export.OutputDir == "" {
		errs = append(errs, errors.New("OUTPUT_DIR is required"))
	}
	if c.Export.SubmitDelay < 0 {
		errs = append(errs, fmt.Errorf("SUBMIT_DELAY must be >= 0, got %v", c.Export.SubmitDelay))
	}
	if c.Export.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("SETTLE_DELAY must be >= 0, got %v", c.Export.SettleDelay))
	}
	if c.Export.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("EXPORT_TIMEOUT must be > 0, got %v", c.Export.Timeout))
	}
	if c.Webhook.Retries < 0 {
		errs = append(errs, fmt.Errorf("WEBHOOK_RETRIES must be >= 0, got %d", c.Webhook.Retries))
	}
	if c.S3.Enabled() && (c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required when S3_BUCKET is set"))
	}
	return errors.Join(errs...)
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("250ms") or bare milliseconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
