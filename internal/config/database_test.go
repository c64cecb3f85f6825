package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpay/paycore/internal/config"
)

func TestPgxConfig(t *testing.T) {
	base := config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "paycore",
		Password:        "secret",
		Name:            "paycore",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}

	t.Run("maps pool settings", func(t *testing.T) {
		cfg := base
		cfg.HealthCheckPeriod = 10 * time.Second

		pgxCfg, err := cfg.PgxConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(10), pgxCfg.MaxConns)
		assert.Equal(t, int32(5), pgxCfg.MinConns)
		assert.Equal(t, time.Hour, pgxCfg.MaxConnLifetime)
		assert.Equal(t, 30*time.Minute, pgxCfg.MaxConnIdleTime)
		assert.Equal(t, 10*time.Second, pgxCfg.HealthCheckPeriod)
		assert.Equal(t, "localhost", pgxCfg.ConnConfig.Host)
		assert.Equal(t, "paycore", pgxCfg.ConnConfig.Database)
	})

	t.Run("defaults the health check period", func(t *testing.T) {
		cfg := base

		pgxCfg, err := cfg.PgxConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, pgxCfg.HealthCheckPeriod)
	})
}
