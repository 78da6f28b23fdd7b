package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel   string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	ExplanationModel string `envconfig:"EXPLANATION_MODEL" default:"gpt-4o-mini"`

	// Admin endpoints are unprotected when the key is empty (development mode).
	AdminAPIKey string `envconfig:"ADMIN_API_KEY"`

	HourlyTokenLimit   int64 `envconfig:"HOURLY_TOKEN_LIMIT" default:"10000"`
	RateLimitWindowSec int   `envconfig:"RATE_LIMIT_WINDOW" default:"3600"`
	UsageRetentionDays int   `envconfig:"USAGE_RETENTION_DAYS" default:"7"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"giftai-images"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("GIFTAI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

func (c *Config) UsageRetention() time.Duration {
	return time.Duration(c.UsageRetentionDays) * 24 * time.Hour
}
