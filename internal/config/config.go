package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// Transport
	// ----------------------------
	Transport        string        `envconfig:"TRANSPORT" default:"telegram"`
	TelegramBotToken string        `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	SMTPHost         string        `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort         int           `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUser         string        `envconfig:"SMTP_USER" default:""`
	SMTPPassword     string        `envconfig:"SMTP_PASSWORD" default:""`
	SMTPFrom         string        `envconfig:"SMTP_FROM" default:"noreply@pulsecast.io"`
	SendTimeout      time.Duration `envconfig:"SEND_TIMEOUT" default:"10s"`

	// ----------------------------
	// Workers
	// ----------------------------
	WorkerCount   int `envconfig:"WORKER_COUNT" default:"5"`
	RateLimit     int `envconfig:"RATE_LIMIT" default:"30"`
	RetryAttempts int `envconfig:"RETRY_ATTEMPTS" default:"3"`
	QueueSize     int `envconfig:"QUEUE_SIZE" default:"1000"`

	// ----------------------------
	// Scheduler
	// ----------------------------
	SchedulerInterval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"30s"`

	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort string `envconfig:"API_PORT" default:"8080"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	// ----------------------------
	// Database
	// ----------------------------
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// ----------------------------
	// Redis (optional dedupe cache; empty addr disables it)
	// ----------------------------
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

func Load() (*Config, error) {
	// A missing .env is fine; real deployments configure the environment.
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	return &cfg, err
}
