// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/you/tg-stickers/internal/logx"
)

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type (
	Config struct {
		BotToken string `env:"BOT_TOKEN"`

		Redis    RedisConfig    `envPrefix:"REDIS_"`
		Registry RegistryConfig `envPrefix:"REGISTRY_"`
		Media    MediaConfig
		HTTP     HTTPConfig   `envPrefix:"HTTP_"`
		Worker   WorkerConfig `envPrefix:"WORKER_"`
		Log      logx.Config
	}

	RedisConfig struct {
		Addr     string `env:"ADDR" envDefault:"localhost:6379"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	}

	// RegistryConfig selects where user -> pack bindings live.
	RegistryConfig struct {
		Backend     string `env:"BACKEND" envDefault:"file"` // file|redis|postgres
		File        string `env:"FILE" envDefault:"sticker_data.json"`
		RedisKey    string `env:"REDIS_KEY" envDefault:"sticker_packs"`
		PostgresDSN string `env:"POSTGRES_DSN"`
	}

	MediaConfig struct {
		ScratchDir      string        `env:"TEMP_DIR" envDefault:"temp"`
		FFmpegBin       string        `env:"FFMPEG_BIN" envDefault:"ffmpeg"`
		DefaultEmoji    string        `env:"DEFAULT_EMOJI" envDefault:"🙂"`
		DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"60s"`
	}

	HTTPConfig struct {
		Addr string `env:"ADDR" envDefault:":8080"`
	}

	WorkerConfig struct {
		Concurrency int    `env:"CONCURRENCY" envDefault:"2"`
		Queue       string `env:"QUEUE" envDefault:"stickers"`
	}
)

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	switch c.Registry.Backend {
	case BackendFile:
		if c.Registry.File == "" {
			return fmt.Errorf("REGISTRY_FILE is required for the file backend")
		}
	case BackendRedis:
		if c.Registry.RedisKey == "" {
			return fmt.Errorf("REGISTRY_REDIS_KEY is required for the redis backend")
		}
	case BackendPostgres:
		if c.Registry.PostgresDSN == "" {
			return fmt.Errorf("REGISTRY_POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown REGISTRY_BACKEND %q", c.Registry.Backend)
	}
	if c.Media.ScratchDir == "" {
		return fmt.Errorf("TEMP_DIR is required")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be >= 1")
	}
	return nil
}

// RedisOpt is the connection option shared by the asynq client and server.
func (c *Config) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}
