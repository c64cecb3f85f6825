package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary     Primary           `koanf:"primary"`
	Server      ServerConfig      `koanf:"server"`
	Storage     StorageConfig     `koanf:"storage"`
	Database    DatabaseConfig    `koanf:"database"`
	Processor   ProcessorConfig   `koanf:"processor"`
	Alert       AlertConfig       `koanf:"alert"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Logger      LoggerConfig      `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

// StorageConfig selects the persistence driver: memory, bolt or postgres.
type StorageConfig struct {
	Driver   string `koanf:"driver" validate:"required,oneof=memory bolt postgres"`
	BoltPath string `koanf:"bolt_path"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// HealthCheckPeriod is how often idle pool connections are checked.
	// Zero means the default of 30 seconds.
	HealthCheckPeriod time.Duration `koanf:"health_check_period"`
}

type ProcessorConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout" validate:"required"`
}

type AlertConfig struct {
	WebhookURL string        `koanf:"webhook_url"`
	Timeout    time.Duration `koanf:"timeout"`
}

type IdempotencyConfig struct {
	ResultTTL     time.Duration `koanf:"result_ttl" validate:"required"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"required"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

// NewLogger builds the process logger at the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("PAYCORE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PAYCORE_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
