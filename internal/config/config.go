package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"dare_webapp/internal/logger"
)

type Config struct {
	AppPort     string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`

	// S3-compatible object storage for proof files; empty endpoint
	// disables uploads
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3AccessKeySecret string `env:"S3_ACCESS_KEY_SECRET"`
	S3Bucket          string `env:"S3_BUCKET"`
	CDNBaseURL        string `env:"CDN_BASE_URL"`

	// Telegram moderation alert bot
	AdminBotEnabled  bool    `env:"ADMIN_BOT_ENABLED" envDefault:"false"`
	AdminBotToken    string  `env:"ADMIN_BOT_TOKEN"`
	AdminTelegramIDs []int64 `env:"ADMIN_TELEGRAM_IDS" envSeparator:","`
}

// Load reads .env when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal("config parse failed", "error", err)
	}
	return cfg
}
